// Package groupref serves the group reference endpoints under
// /api/groupCompany/{headGroup,wiGroup,wiCustomizedGroup}: the typeahead
// lookups plus the management CRUD of the three group tables.
package groupref

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/GroupCompany-Admin/GroupCompany-Admin/internal/config"
	"github.com/GroupCompany-Admin/GroupCompany-Admin/internal/db/controller/groupref"
	"github.com/GroupCompany-Admin/GroupCompany-Admin/internal/policy"
	"github.com/GroupCompany-Admin/GroupCompany-Admin/internal/web/handler"
)

// Path is the route group prefix of the group reference endpoints.
const Path = "/api/groupCompany"

// Service is the group reference handler service.
type Service struct {
	cfg *config.Config
	db  *gorm.DB
}

// Handler is the group reference handler.
var Handler = Service{}

// Init initializes the group reference handler.
func (s *Service) Init(app *fiber.App, cfg *config.Config, db *gorm.DB) error {
	if app == nil || cfg == nil || db == nil {
		return errors.New("app, cfg or db is nil")
	}

	s.cfg = cfg
	s.db = db

	kinds := []struct {
		segment string
		query   string
		kind    groupref.Kind
	}{
		{"headGroup", "queryHeadGroupFuzzy", groupref.KindHead},
		{"wiGroup", "queryWIGroupFuzzy", groupref.KindWI},
		{"wiCustomizedGroup", "queryWICustomizedGroupFuzzy", groupref.KindWICustomized},
	}

	for _, k := range kinds {
		kind := k.kind

		app.Route(Path+"/"+k.segment, func(router fiber.Router) {
			router.Post("/"+k.query, s.typeahead(kind))
			router.Post("/queryGroupByPage", s.query(kind))
			router.Post("/addGroup", s.add(kind))
			router.Put("/saveGroup", s.save(kind))
			router.Delete("/removeGroup", s.remove(kind))
		})
	}

	return nil
}

type typeaheadRequest struct {
	GroupName string `json:"groupName"`
}

// typeahead serves the suggestion lookup behind the group name inputs.
// The response is a page carrying the total match count; the client asks
// the user to keep typing when the total exceeds the page.
func (s *Service) typeahead(kind groupref.Kind) fiber.Handler {
	return func(c *fiber.Ctx) error {
		req := new(typeaheadRequest)
		if err := c.BodyParser(req); err != nil {
			return handler.Fail(c, fiber.StatusBadRequest, "Invalid request body")
		}

		list, total, err := groupref.Typeahead(s.db, kind, req.GroupName)
		if err != nil {
			log.Error().Err(err).Str("kind", string(kind)).Msg("group typeahead failed")
			return handler.Fail(c, fiber.StatusInternalServerError, handler.ErrMsgInternal)
		}

		return handler.OKPage(c, list, total, 1, groupref.TypeaheadLimit)
	}
}

type queryRequest struct {
	GroupName string `json:"groupName"`
	PageNum   int    `json:"pageNum"`
	PageSize  int    `json:"pageSize"`
}

func (s *Service) query(kind groupref.Kind) fiber.Handler {
	return func(c *fiber.Ctx) error {
		req := new(queryRequest)
		if err := c.BodyParser(req); err != nil {
			return handler.Fail(c, fiber.StatusBadRequest, "Invalid request body")
		}

		list, total, err := groupref.Search(s.db, kind, req.GroupName, req.PageNum, req.PageSize)
		if err != nil {
			log.Error().Err(err).Str("kind", string(kind)).Msg("group search failed")
			return handler.Fail(c, fiber.StatusInternalServerError, handler.ErrMsgInternal)
		}

		pageNum := req.PageNum
		if pageNum < 1 {
			pageNum = 1
		}

		pageSize := req.PageSize
		if pageSize < 1 || pageSize > groupref.MaxPageSize {
			pageSize = groupref.DefaultPageSize
		}

		return handler.OKPage(c, list, total, pageNum, pageSize)
	}
}

type mutateRequest struct {
	GroupID   uint64 `json:"groupId"`
	GroupName string `json:"groupName"`
}

func (s *Service) add(kind groupref.Kind) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !allowed(c, policy.ActionAdd) {
			return handler.Fail(c, fiber.StatusForbidden, handler.ErrMsgPermissionDenied)
		}

		req := new(mutateRequest)
		if err := c.BodyParser(req); err != nil {
			return handler.Fail(c, fiber.StatusBadRequest, "Invalid request body")
		}

		g, err := groupref.Add(s.db, kind, req.GroupName)
		if err != nil {
			return failGroup(c, err)
		}

		return handler.OK(c, g)
	}
}

func (s *Service) save(kind groupref.Kind) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !allowed(c, policy.ActionEdit) {
			return handler.Fail(c, fiber.StatusForbidden, handler.ErrMsgPermissionDenied)
		}

		req := new(mutateRequest)
		if err := c.BodyParser(req); err != nil {
			return handler.Fail(c, fiber.StatusBadRequest, "Invalid request body")
		}

		if err := groupref.Rename(s.db, kind, req.GroupID, req.GroupName); err != nil {
			return failGroup(c, err)
		}

		return handler.OK(c, nil)
	}
}

func (s *Service) remove(kind groupref.Kind) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !allowed(c, policy.ActionDelete) {
			return handler.Fail(c, fiber.StatusForbidden, handler.ErrMsgPermissionDenied)
		}

		groupID, err := strconv.ParseUint(c.Query("groupId"), 10, 64)
		if err != nil {
			return handler.Fail(c, fiber.StatusBadRequest, "Invalid groupId")
		}

		if err := groupref.Remove(s.db, kind, groupID); err != nil {
			return failGroup(c, err)
		}

		return handler.OK(c, nil)
	}
}

// allowed checks the session role against the action. Groups carry no
// RM ownership, so the check runs against an unowned record.
func allowed(c *fiber.Ctx, action policy.Action) bool {
	u := handler.SessionUser(c)
	if u == nil {
		return false
	}

	return policy.CanPerform(action, policy.ParseRole(u.GroupCompanyRole), &policy.Ownership{}, u.UserName)
}

func failGroup(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, groupref.ErrGroupNotFound):
		return handler.Fail(c, fiber.StatusNotFound, "Group not found")
	case errors.Is(err, groupref.ErrGroupExists):
		return handler.Fail(c, fiber.StatusBadRequest, "Group name already exists")
	case errors.Is(err, groupref.ErrGroupNameEmpty):
		return handler.Fail(c, fiber.StatusBadRequest, "Group name must not be empty")
	case errors.Is(err, groupref.ErrGroupInUse):
		return handler.Fail(c, fiber.StatusBadRequest, "Group is still referenced by mapping records")
	default:
		log.Error().Err(err).Msg("group operation failed")
		return handler.Fail(c, fiber.StatusInternalServerError, handler.ErrMsgInternal)
	}
}
