package container

import (
	"context"
	"fmt"
	"log"

	"github.com/jmoiron/sqlx"

	"fhtsuite/adapters/sqlstore"
	"fhtsuite/app"
	"fhtsuite/domain/fht"
	"fhtsuite/internal"
	"fhtsuite/internal/config"
	"fhtsuite/internal/testkit"
)

// Container holds all application dependencies and manages their lifecycle
type Container struct {
	Config *config.Config

	// Infrastructure
	DB *sqlx.DB

	// Repositories (data access layer)
	RunRepo *sqlstore.RunRepository

	// Core components
	Engine    *fht.Engine
	Generator *testkit.PatternGenerator

	SuiteService *app.SuiteService
}

// New creates a container with the engine and generator but no database.
// The suite service works without persistence until InitWithDatabase is called.
func New(cfg *config.Config) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}

	internal.DefaultLogger.SetLevel(internal.ParseLogLevel(cfg.LogLevel))

	engine, err := fht.NewEngine(cfg.Transform)
	if err != nil {
		return nil, fmt.Errorf("failed to create transform engine: %w", err)
	}

	c := &Container{
		Config:    cfg,
		Engine:    engine,
		Generator: testkit.NewPatternGenerator(),
	}
	c.initService()
	return c, nil
}

// InitWithDatabase opens the configured database, migrates it and enables persistence
func (c *Container) InitWithDatabase(ctx context.Context) error {
	db, err := sqlstore.Open(ctx, c.Config.Database.Driver, c.Config.Database.URL)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}

	c.DB = db
	c.RunRepo = sqlstore.NewRunRepository(db)
	c.initService()

	log.Printf("Container initialized with %s database", db.DriverName())
	return nil
}

func (c *Container) initService() {
	var repo app.RunRepository
	if c.RunRepo != nil {
		repo = c.RunRepo
	}
	c.SuiteService = app.NewSuiteService(c.Engine, c.Generator, repo, c.Config.Output.Dir)
}

// SuiteRequest builds a run request from the configured sweep settings
func (c *Container) SuiteRequest() app.SuiteRequest {
	return app.SuiteRequest{
		Patterns:  c.Config.Suite.Patterns,
		Sizes:     c.Config.Suite.Sizes,
		Seed:      c.Config.Suite.Seed,
		Workers:   c.Config.Suite.Workers,
		MaxWeight: c.Config.Suite.MaxWeight,
	}
}

// Shutdown closes the database connection, if any
func (c *Container) Shutdown(ctx context.Context) error {
	if c.DB != nil {
		return c.DB.Close()
	}
	return nil
}
