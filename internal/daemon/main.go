// Package daemon assembles the running service: database, migrations,
// seed data, session storage, the fee letter store and the web service.
package daemon

import (
	"fmt"

	sessionmysql "github.com/gofiber/storage/mysql/v2"
	sessionpostgres "github.com/gofiber/storage/postgres/v3"
	"github.com/rs/zerolog/log"
	gormmysql "gorm.io/driver/mysql"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/GroupCompany-Admin/GroupCompany-Admin/internal/config"
	"github.com/GroupCompany-Admin/GroupCompany-Admin/internal/db/dsn"
	"github.com/GroupCompany-Admin/GroupCompany-Admin/internal/db/models"
	"github.com/GroupCompany-Admin/GroupCompany-Admin/internal/storage"
	"github.com/GroupCompany-Admin/GroupCompany-Admin/internal/web"
	"github.com/GroupCompany-Admin/GroupCompany-Admin/internal/web/session"
)

// Daemon represents the main application daemon.
type Daemon struct {
	cfg        *config.Config
	webService *web.Service
}

// Start starts the Daemon's web service and blocks until it stops.
func (d *Daemon) Start() error {
	go d.webService.WaitShutdown()

	return d.webService.Start(fmt.Sprintf(":%d", d.cfg.Webserver.Port))
}

// New creates a new Daemon instance with the provided configuration.
func New(cfg *config.Config) *Daemon {
	if cfg == nil {
		log.Fatal().Msg("config is nil")
		return nil
	}

	connection := dsn.Create(cfg)

	var dialector gorm.Dialector

	switch cfg.DB.GormEngine {
	case "postgres":
		dialector = gormpostgres.Open(connection)
	default:
		dialector = gormmysql.Open(connection)
	}

	db, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect database")
		return nil
	}

	if err = db.AutoMigrate(
		&models.User{},
		&models.GroupCompanyMapping{},
		&models.HeadGroup{},
		&models.WIGroup{},
		&models.WICustomizedGroup{},
		&models.GfasAccount{},
		&models.ImrReference{},
		&models.FeeLetter{},
		&models.MappingAuditLog{},
	); err != nil {
		log.Fatal().Err(err).Msg("failed to migrate database")
		return nil
	}

	seed(cfg, db)

	// fiber session store shares the database engine
	switch cfg.DB.GormEngine {
	case "postgres":
		session.Init(sessionpostgres.New(sessionpostgres.Config{
			ConnectionURI: connection,
			Table:         "sessions",
		}))
	default:
		session.Init(sessionmysql.New(sessionmysql.Config{
			ConnectionURI: connection,
			Table:         "sessions",
		}))
	}

	letterStore, err := storage.NewLetterStore(cfg.Storage.LetterPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.Storage.LetterPath).Msg("failed to init letter store")
		return nil
	}

	return &Daemon{
		cfg:        cfg,
		webService: web.New(cfg, db, letterStore),
	}
}
