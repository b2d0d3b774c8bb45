package login

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/GroupCompany-Admin/GroupCompany-Admin/internal/config"
	"github.com/GroupCompany-Admin/GroupCompany-Admin/internal/db/controller/user"
	"github.com/GroupCompany-Admin/GroupCompany-Admin/internal/web/handler"
	"github.com/GroupCompany-Admin/GroupCompany-Admin/internal/web/session"
)

const (
	// Path is the path to the login page.
	Path = "/login"
)

// Service is the login handler service.
type Service struct {
	cfg *config.Config
	db  *gorm.DB
}

// Handler is the login handler.
var Handler = Service{}

// Init initializes the login handler.
func (s *Service) Init(app *fiber.App, cfg *config.Config, db *gorm.DB) error {
	if app == nil || cfg == nil || db == nil {
		return errors.New("app or db is nil")
	}

	s.db = db
	s.cfg = cfg

	// register routes
	app.Route(Path, func(router fiber.Router) {
		router.Get(handler.RouterRootPath, s.Get)
		router.Post(handler.RouterRootPath, s.Post)
	})

	return nil
}

// Get handles the login page rendering.
func (s *Service) Get(c *fiber.Ctx) error {
	return c.Render("login", fiber.Map{
		"title": s.cfg.Title,
	})
}

type loginForm struct {
	Username string `form:"username"`
	Password string `form:"password"`
}

// Post handles the login form submission.
func (s *Service) Post(c *fiber.Ctx) error {
	form := new(loginForm)

	if err := c.BodyParser(form); err != nil {
		return err
	}

	dbUser, err := user.ByUsername(s.db, form.Username)
	if err != nil {
		return c.Render("login", fiber.Map{
			"title": s.cfg.Title,
			"error": "Invalid username or password",
		})
	}

	if !dbUser.VerifyPassword(form.Password) {
		return c.Render("login", fiber.Map{
			"title": s.cfg.Title,
			"error": "Invalid username or password",
		})
	}

	sessionID, err := session.GenerateSessionID()
	if err != nil {
		log.Error().Err(err).Msg("failed to generate session ID")
		return c.Render("login", fiber.Map{
			"title": s.cfg.Title,
			"error": handler.ErrMsgInternal,
		})
	}

	userSession := &session.Data{
		User: *dbUser,
	}

	if err = userSession.Write(sessionID, s.cfg.Webserver.Session.ExpiryTime); err != nil {
		log.Error().Err(err).Msg("failed to write session")
		return c.Render("login", fiber.Map{
			"title": s.cfg.Title,
			"error": handler.ErrMsgInternal,
		})
	}

	// set login cookie
	cookieSettings := &fiber.Cookie{
		Name:     "session",
		Value:    sessionID,
		MaxAge:   int(s.cfg.Webserver.Session.ExpiryTime.Seconds()),
		Secure:   true,
		HTTPOnly: true,
		SameSite: "Lax",
	}

	if s.cfg.DevMode {
		cookieSettings.Secure = false
	}

	c.Cookie(cookieSettings)

	return c.Redirect("/console")
}
