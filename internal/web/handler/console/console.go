// Package console renders the Group Company console shell. The page is
// a thin server-rendered frame; the screens inside it talk to the JSON
// endpoints.
package console

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/GroupCompany-Admin/GroupCompany-Admin/internal/config"
	"github.com/GroupCompany-Admin/GroupCompany-Admin/internal/policy"
	"github.com/GroupCompany-Admin/GroupCompany-Admin/internal/web/handler"
	"github.com/GroupCompany-Admin/GroupCompany-Admin/internal/web/navigation"
)

const (
	// Path is the path to the console page.
	Path = handler.RootPath + "console"

	// TemplateName is the name of the console template.
	TemplateName = "console/console"
)

// Service is the console page handler service.
type Service struct {
	cfg *config.Config
	db  *gorm.DB
}

// Handler is the console page handler.
var Handler = Service{}

// Init initializes the console page handler.
func (s *Service) Init(app *fiber.App, cfg *config.Config, db *gorm.DB) {
	if app == nil || cfg == nil || db == nil {
		log.Fatal().Msg(handler.ErrNilACDFatalLogMsg)
		return
	}

	s.cfg = cfg
	s.db = db

	app.Get(Path, s.Get)
}

// Get handles the console page rendering.
func (s *Service) Get(c *fiber.Ctx) error {
	u := handler.SessionUser(c)
	if u == nil {
		return c.Redirect("/login")
	}

	nav := navigation.NewContext(s.cfg.Title, "groupCompany", "console").
		AddBreadcrumb("Home", Path, false).
		AddBreadcrumb("Group Company", Path, true)

	role := policy.ParseRole(u.GroupCompanyRole)

	return c.Render(TemplateName, fiber.Map{
		"title":     s.cfg.Title,
		"nav":       nav,
		"userName":  u.UserName,
		"role":      string(role),
		"canAdd":    policy.CanPerform(policy.ActionAdd, role, nil, u.UserName),
		"canUpload": policy.CanPerform(policy.ActionUpload, role, nil, u.UserName),
	}, handler.BaseLayout)
}
