// Package web wires the fiber application of the Group Company console:
// template engine, access logging, session gated routes and the JSON
// handlers.
package web

import (
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/filesystem"
	"github.com/gofiber/template/html/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/GroupCompany-Admin/GroupCompany-Admin/internal/config"
	fiberlogger "github.com/GroupCompany-Admin/GroupCompany-Admin/internal/logger/adapter/fiber"
	"github.com/GroupCompany-Admin/GroupCompany-Admin/internal/storage"
	"github.com/GroupCompany-Admin/GroupCompany-Admin/internal/web/handler/api/common"
	feeletterapi "github.com/GroupCompany-Admin/GroupCompany-Admin/internal/web/handler/api/feeletter"
	"github.com/GroupCompany-Admin/GroupCompany-Admin/internal/web/handler/api/groupcompany"
	grouprefapi "github.com/GroupCompany-Admin/GroupCompany-Admin/internal/web/handler/api/groupref"
	"github.com/GroupCompany-Admin/GroupCompany-Admin/internal/web/handler/console"
	"github.com/GroupCompany-Admin/GroupCompany-Admin/internal/web/handler/login"
	"github.com/GroupCompany-Admin/GroupCompany-Admin/internal/web/handler/logout"
)

// CheckAlivePath answers load balancer health checks.
const CheckAlivePath = "/checkalive"

// Service represents the web service.
type Service struct {
	App          *fiber.App
	cfg          *config.Config
	fastShutDown bool
	alive        atomic.Bool
	db           *gorm.DB
}

// Start starts the web service on the given address.
func (s *Service) Start(addr string) error {
	var doneFiber = make(chan bool)

	go func() {
		if err := s.App.Listen(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Msgf("fiber listen error: %v", err)
		}

		doneFiber <- true
	}()

	<-doneFiber // wait for fiber to stop

	return nil
}

// WaitShutdown waits for graceful shutdown of the console.
func (s *Service) WaitShutdown() {
	irqSig := make(chan os.Signal, 1)
	signal.Notify(irqSig, syscall.SIGINT, syscall.SIGTERM)

	sig := <-irqSig
	log.Info().Msgf("shutdown request (signal: %v)", sig)

	// Graceful shutdown for reverse proxies: set status to fail, so checkalive returns fail.
	if !s.fastShutDown {
		log.Info().Msgf(
			"graceful shutdown: return 503 while %d seconds to let LB to remove this pod from active targets",
			s.cfg.Webserver.ShutDownTime,
		)

		s.alive.Store(false)
		time.Sleep(time.Duration(s.cfg.Webserver.ShutDownTime) * time.Second)
	}

	// stop fiber http server
	serverShutdown := make(chan struct{})

	go func() {
		log.Info().Msg("stopping http server ...")

		err := s.App.Shutdown()
		if err != nil {
			log.Error().Err(err).Msg("")
		}

		serverShutdown <- struct{}{}
	}()

	<-serverShutdown
	log.Info().Msg("http server was stopped ... good bye...")
}

// New creates a new web service with the given configuration.
func New(cfg *config.Config, db *gorm.DB, letterStore *storage.LetterStore) *Service {
	if cfg == nil {
		panic("config cannot be nil")
	}

	if db == nil {
		panic("db cannot be nil")
	}

	if letterStore == nil {
		panic("letter store cannot be nil")
	}

	httpFS := http.FS(templateEmbedFS{embeddedTemplates})
	templateEngine := html.NewFileSystem(httpFS, ".gohtml")

	// in debug mode, use local filesystem for templates
	if cfg.DevMode {
		templateEngine = html.New("./internal/web/templates", ".gohtml")
		templateEngine.ShouldReload = true

		log.Warn().Msg("debug mode enabled: using local filesystem for templates")
	}

	// create fiber app
	app := fiber.New(
		fiber.Config{
			ReadBufferSize: 8192,
			AppName:        cfg.Title,
			CaseSensitive:  true,
			Prefork:        false,
			Immutable:      true,
			Views:          templateEngine,
		},
	)

	service := &Service{
		cfg: cfg,
		App: app,
		db:  db,
	}

	service.alive.Store(true)

	// access logging
	app.Use(fiberlogger.New(fiberlogger.Config{
		Config:        cfg.Log,
		CheckAliveURI: CheckAlivePath,
	}))

	app.Get(CheckAlivePath, func(c *fiber.Ctx) error {
		if !service.alive.Load() {
			return c.SendStatus(fiber.StatusServiceUnavailable)
		}

		return c.SendString("OK")
	})

	// serve embedded static files
	app.Use("/static",
		filesystem.New(
			filesystem.Config{
				Root:       http.FS(embeddedStaticFiles),
				PathPrefix: "static",
				Browse:     cfg.Webserver.BrowseStatic,
			},
		),
	)

	// session auth middleware
	app.Use(AuthMiddleware)

	// init handlers (they register their own routes)
	if err := login.Handler.Init(app, cfg, db); err != nil {
		log.Fatal().Err(err).Msg("failed to init login handler")
	}

	logout.Handler.Init(app, cfg)
	console.Handler.Init(app, cfg, db)

	if err := groupcompany.Handler.Init(app, cfg, db); err != nil {
		log.Fatal().Err(err).Msg("failed to init group company handler")
	}

	if err := grouprefapi.Handler.Init(app, cfg, db); err != nil {
		log.Fatal().Err(err).Msg("failed to init group reference handler")
	}

	if err := common.Handler.Init(app, cfg, db); err != nil {
		log.Fatal().Err(err).Msg("failed to init common handler")
	}

	if err := feeletterapi.Handler.Init(app, cfg, db, letterStore); err != nil {
		log.Fatal().Err(err).Msg("failed to init fee letter handler")
	}

	// redirect root to the console page
	app.Get("/", func(c *fiber.Ctx) error {
		return c.Redirect(console.Path)
	})

	return service
}
