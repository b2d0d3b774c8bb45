// Package groupcompany serves the mapping JSON endpoints under
// /api/groupCompany: fuzzy search, CRUD, GFAS account name resolution
// and the audit trail query.
package groupcompany

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/GroupCompany-Admin/GroupCompany-Admin/internal/config"
	"github.com/GroupCompany-Admin/GroupCompany-Admin/internal/db/controller/auditlog"
	"github.com/GroupCompany-Admin/GroupCompany-Admin/internal/db/controller/gfas"
	"github.com/GroupCompany-Admin/GroupCompany-Admin/internal/db/controller/mapping"
	"github.com/GroupCompany-Admin/GroupCompany-Admin/internal/db/models"
	"github.com/GroupCompany-Admin/GroupCompany-Admin/internal/policy"
	"github.com/GroupCompany-Admin/GroupCompany-Admin/internal/web/handler"
)

// Path is the route group prefix of the mapping endpoints.
const Path = "/api/groupCompany"

// Service is the group company mapping handler service.
type Service struct {
	cfg *config.Config
	db  *gorm.DB
}

// Handler is the group company mapping handler.
var Handler = Service{}

// Init initializes the mapping handler.
func (s *Service) Init(app *fiber.App, cfg *config.Config, db *gorm.DB) error {
	if app == nil || cfg == nil || db == nil {
		return errors.New("app, cfg or db is nil")
	}

	s.cfg = cfg
	s.db = db

	app.Route(Path, func(router fiber.Router) {
		router.Post("/queryGroupCompanyNameMappingFuzzy", s.Query)
		router.Post("/addGroupCompanyMapping", s.Add)
		router.Put("/saveGroupMapping", s.Save)
		router.Delete("/removeGroupMapping", s.Remove)
		router.Get("/queryGfasAccountName", s.QueryGfasAccountName)
		router.Post("/mappingAuditLog", s.AuditLog)
	})

	return nil
}

type queryRequest struct {
	HeadGroupName string `json:"headGroupName"`
	GfasAccountNo string `json:"gfasAccountNo"`
	RM            string `json:"rm"`
	WIGroupName   string `json:"wiGroupName"`
	FundClass     string `json:"fundClass"`
	GlobalClient  string `json:"globalClient"`

	HeadGroupNameFilter         string `json:"headGroupNameFilter"`
	WIGroupNameFilter           string `json:"wiGroupNameFilter"`
	WICustomizedGroupNameFilter string `json:"wiCustomizedGroupNameFilter"`

	PageNum  int `json:"pageNum"`
	PageSize int `json:"pageSize"`
}

// Query handles the paged fuzzy mapping search. At least one search
// form criterion is required; column filters alone do not qualify.
func (s *Service) Query(c *fiber.Ctx) error {
	req := new(queryRequest)
	if err := c.BodyParser(req); err != nil {
		return handler.Fail(c, fiber.StatusBadRequest, "Invalid request body")
	}

	params := mapping.SearchParams{
		HeadGroupName:               req.HeadGroupName,
		GfasAccountNo:               req.GfasAccountNo,
		RM:                          req.RM,
		WIGroupName:                 req.WIGroupName,
		FundClass:                   req.FundClass,
		GlobalClient:                req.GlobalClient,
		HeadGroupNameFilter:         req.HeadGroupNameFilter,
		WIGroupNameFilter:           req.WIGroupNameFilter,
		WICustomizedGroupNameFilter: req.WICustomizedGroupNameFilter,
		PageNum:                     req.PageNum,
		PageSize:                    req.PageSize,
	}

	if params.Empty() {
		return handler.Fail(c, fiber.StatusBadRequest, handler.ErrMsgSearchCriteriaRequired)
	}

	list, total, err := mapping.Search(s.db, params)
	if err != nil {
		log.Error().Err(err).Msg("mapping search failed")
		return handler.Fail(c, fiber.StatusInternalServerError, handler.ErrMsgInternal)
	}

	pageNum := params.PageNum
	if pageNum < 1 {
		pageNum = 1
	}

	pageSize := params.PageSize
	if pageSize < 1 || pageSize > mapping.MaxPageSize {
		pageSize = mapping.DefaultPageSize
	}

	return handler.OKPage(c, list, total, pageNum, pageSize)
}

// Add creates a new mapping. The account name is resolved server-side
// from the GFAS reference table; client supplied names are ignored.
func (s *Service) Add(c *fiber.Ctx) error {
	u := handler.SessionUser(c)
	if u == nil || !policy.CanPerform(policy.ActionAdd, policy.ParseRole(u.GroupCompanyRole), nil, u.UserName) {
		return handler.Fail(c, fiber.StatusForbidden, handler.ErrMsgPermissionDenied)
	}

	m := new(models.GroupCompanyMapping)
	if err := c.BodyParser(m); err != nil {
		return handler.Fail(c, fiber.StatusBadRequest, "Invalid request body")
	}

	name, err := gfas.LookupName(s.db, m.GfasAccountNo, m.AlternativeID)
	if err != nil {
		return s.failMapping(c, err)
	}

	m.GfasAccountName = name

	if err := mapping.Add(s.db, m, u.UserName, isBulk(c)); err != nil {
		return s.failMapping(c, err)
	}

	return handler.OK(c, m)
}

// Save updates an existing mapping. Edits on owned records are limited
// to the owning RM; admins may edit anything.
func (s *Service) Save(c *fiber.Ctx) error {
	m := new(models.GroupCompanyMapping)
	if err := c.BodyParser(m); err != nil {
		return handler.Fail(c, fiber.StatusBadRequest, "Invalid request body")
	}

	existing, err := mapping.Get(s.db, m.MappingID)
	if err != nil {
		return s.failMapping(c, err)
	}

	u := handler.SessionUser(c)
	own := policy.Ownership{RM: existing.RM}

	if u == nil || !policy.CanPerform(policy.ActionEdit, policy.ParseRole(u.GroupCompanyRole), &own, u.UserName) {
		return handler.Fail(c, fiber.StatusForbidden, handler.ErrMsgPermissionDenied)
	}

	if err := mapping.Save(s.db, m, u.UserName, isBulk(c)); err != nil {
		return s.failMapping(c, err)
	}

	return handler.OK(c, m)
}

// Remove deletes the mapping given by the mappingId query parameter.
func (s *Service) Remove(c *fiber.Ctx) error {
	mappingID, err := strconv.ParseUint(c.Query("mappingId"), 10, 64)
	if err != nil {
		return handler.Fail(c, fiber.StatusBadRequest, "Invalid mappingId")
	}

	existing, err := mapping.Get(s.db, mappingID)
	if err != nil {
		return s.failMapping(c, err)
	}

	u := handler.SessionUser(c)
	own := policy.Ownership{RM: existing.RM}

	if u == nil || !policy.CanPerform(policy.ActionDelete, policy.ParseRole(u.GroupCompanyRole), &own, u.UserName) {
		return handler.Fail(c, fiber.StatusForbidden, handler.ErrMsgPermissionDenied)
	}

	if err := mapping.Remove(s.db, mappingID, u.UserName, isBulk(c)); err != nil {
		return s.failMapping(c, err)
	}

	return handler.OK(c, nil)
}

// QueryGfasAccountName resolves the account name for the add workflow.
func (s *Service) QueryGfasAccountName(c *fiber.Ctx) error {
	name, err := gfas.LookupName(s.db, c.Query("gfasAccountNo"), c.Query("alternativeId"))
	if err != nil {
		return s.failMapping(c, err)
	}

	return handler.OK(c, fiber.Map{"gfasAccountName": name})
}

type auditRequest struct {
	GfasAccountNo   string `json:"gfasAccountNo"`
	GfasAccountName string `json:"gfasAccountName"`
	PageNum         int    `json:"pageNum"`
	PageSize        int    `json:"pageSize"`
}

// AuditLog serves the paged audit trail, searchable by account number
// and name. Both criteria are optional; the screen's initial fetch
// sends neither. The audit screen is not available to read-only users.
func (s *Service) AuditLog(c *fiber.Ctx) error {
	u := handler.SessionUser(c)
	if u == nil {
		return handler.Fail(c, fiber.StatusUnauthorized, handler.ErrMsgPermissionDenied)
	}

	role := policy.ParseRole(u.GroupCompanyRole)
	if role != policy.RoleWrite && role != policy.RoleAdmin {
		return handler.Fail(c, fiber.StatusForbidden, handler.ErrMsgPermissionDenied)
	}

	req := new(auditRequest)
	if err := c.BodyParser(req); err != nil {
		return handler.Fail(c, fiber.StatusBadRequest, "Invalid request body")
	}

	list, total, err := auditlog.Query(s.db, req.GfasAccountNo, req.GfasAccountName, req.PageNum, req.PageSize)
	if err != nil {
		log.Error().Err(err).Msg("audit log query failed")
		return handler.Fail(c, fiber.StatusInternalServerError, handler.ErrMsgInternal)
	}

	pageNum := req.PageNum
	if pageNum < 1 {
		pageNum = 1
	}

	pageSize := req.PageSize
	if pageSize < 1 || pageSize > auditlog.MaxPageSize {
		pageSize = auditlog.DefaultPageSize
	}

	return handler.OKPage(c, list, total, pageNum, pageSize)
}

// isBulk reports whether the mutation belongs to a bulk operation, which
// only changes the recorded audit action variant.
func isBulk(c *fiber.Ctx) bool {
	return c.Query("bulk") == "true"
}

// failMapping translates controller errors into envelope responses.
func (s *Service) failMapping(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, mapping.ErrMappingNotFound):
		return handler.Fail(c, fiber.StatusNotFound, "Mapping not found")
	case errors.Is(err, mapping.ErrAccountNoInvalid):
		return handler.Fail(c, fiber.StatusBadRequest, "GFAS account no may only contain letters, digits and spaces")
	case errors.Is(err, mapping.ErrAlternativeIDRequired),
		errors.Is(err, gfas.ErrAltIDRequired):
		return handler.Fail(c, fiber.StatusBadRequest, "Alt Id is required for this GFAS account")
	case errors.Is(err, mapping.ErrMandatoryFieldMissing):
		return handler.Fail(c, fiber.StatusBadRequest, "Please fill in all mandatory fields")
	case errors.Is(err, gfas.ErrAccountNotFound):
		return handler.Fail(c, fiber.StatusBadRequest, "GFAS account not found")
	default:
		log.Error().Err(err).Msg("mapping operation failed")
		return handler.Fail(c, fiber.StatusInternalServerError, handler.ErrMsgInternal)
	}
}
