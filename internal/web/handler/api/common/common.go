// Package common serves the bootstrap endpoints under /api/common: the
// session role info, the RM user list and the categorized reference
// values.
package common

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/GroupCompany-Admin/GroupCompany-Admin/internal/config"
	"github.com/GroupCompany-Admin/GroupCompany-Admin/internal/db/controller/reference"
	"github.com/GroupCompany-Admin/GroupCompany-Admin/internal/db/controller/user"
	"github.com/GroupCompany-Admin/GroupCompany-Admin/internal/web/handler"
)

// Path is the route group prefix of the common endpoints.
const Path = "/api/common"

// Service is the common handler service.
type Service struct {
	cfg *config.Config
	db  *gorm.DB
}

// Handler is the common handler.
var Handler = Service{}

// Init initializes the common handler.
func (s *Service) Init(app *fiber.App, cfg *config.Config, db *gorm.DB) error {
	if app == nil || cfg == nil || db == nil {
		return errors.New("app, cfg or db is nil")
	}

	s.cfg = cfg
	s.db = db

	app.Route(Path, func(router fiber.Router) {
		router.Get("/queryUserByDepartments", s.QueryUserByDepartments)
		router.Get("/queryGroupCompanyUserRole", s.QueryUserRole)
		router.Get("/queryImrReferenceByCategory", s.QueryReference)
		router.Post("/queryImrReferenceByCategory", s.QueryReference)
	})

	return nil
}

// userEntry is the RM dropdown payload.
type userEntry struct {
	UserID   uint64 `json:"userId"`
	UserName string `json:"userName"`
}

// QueryUserByDepartments lists the users of the comma separated
// departments query parameter, for the RM dropdown.
func (s *Service) QueryUserByDepartments(c *fiber.Ctx) error {
	var departments []string

	for _, d := range strings.Split(c.Query("departments"), ",") {
		if d = strings.TrimSpace(d); d != "" {
			departments = append(departments, d)
		}
	}

	list, err := user.ByDepartments(s.db, departments)
	if err != nil {
		log.Error().Err(err).Msg("user department query failed")
		return handler.Fail(c, fiber.StatusInternalServerError, handler.ErrMsgInternal)
	}

	entries := make([]userEntry, 0, len(list))
	for _, u := range list {
		entries = append(entries, userEntry{UserID: u.ID, UserName: u.UserName})
	}

	return handler.OK(c, entries)
}

// QueryUserRole returns the role info of the session user. The console
// fetches it once per session and derives every permission from it.
func (s *Service) QueryUserRole(c *fiber.Ctx) error {
	u := handler.SessionUser(c)
	if u == nil {
		return handler.Fail(c, fiber.StatusUnauthorized, "Session expired, please login again")
	}

	return handler.OK(c, fiber.Map{
		"groupCompanyRole": u.GroupCompanyRole,
		"userId":           u.ID,
		"userName":         u.UserName,
	})
}

type referenceRequest struct {
	Category string `json:"category"`
}

// QueryReference returns the values of one reference category.
func (s *Service) QueryReference(c *fiber.Ctx) error {
	category := c.Query("category")
	if category == "" {
		req := new(referenceRequest)
		if err := c.BodyParser(req); err == nil {
			category = req.Category
		}
	}

	values, err := reference.ByCategory(s.db, category)
	if err != nil {
		if errors.Is(err, reference.ErrCategoryUnknown) {
			return handler.Fail(c, fiber.StatusBadRequest, "Unknown reference category")
		}

		log.Error().Err(err).Msg("reference query failed")

		return handler.Fail(c, fiber.StatusInternalServerError, handler.ErrMsgInternal)
	}

	return handler.OK(c, values)
}
