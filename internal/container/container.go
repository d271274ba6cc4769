package container

import (
	"context"
	"fmt"
	"log"

	"csvquery/adapters/excel"
	"csvquery/adapters/llm"
	"csvquery/adapters/postgres"
	"csvquery/internal/api"
	"csvquery/internal/config"
	"csvquery/internal/errors"
	"csvquery/internal/migration"
	"csvquery/internal/profiling"
	"csvquery/internal/session"
	"csvquery/internal/usage"
	"csvquery/ports"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

// Container holds all application dependencies and manages their lifecycle
type Container struct {
	Config *config.Config

	// Infrastructure
	DB *sqlx.DB

	// Repositories (data access layer)
	QuestionLog ports.QuestionLogRepository

	// Core components
	Reader *excel.DataReader
	Agent  ports.Agent
	Usage  *usage.Service
	Store  *session.Store
	API    *api.Server
}

// New creates a new dependency injection container. The question log stays
// disabled until InitWithDatabase is called.
func New(cfg *config.Config) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}

	agent, err := llm.NewGroqAgent(llm.Config{
		APIKey:      cfg.AI.GroqKey,
		BaseURL:     cfg.AI.BaseURL,
		Model:       cfg.AI.Model,
		MaxTokens:   cfg.AI.MaxTokens,
		Temperature: cfg.AI.Temperature,
		Timeout:     cfg.AI.Timeout,
		Limits: llm.Limits{
			MaxRows:      cfg.Agent.MaxRows,
			MaxColumns:   cfg.Agent.MaxColumns,
			MaxCellChars: cfg.Agent.MaxCellChars,
		},
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to create agent")
	}

	return NewWithAgent(cfg, agent), nil
}

// NewWithAgent wires the container around an existing agent
func NewWithAgent(cfg *config.Config, agent ports.Agent) *Container {
	c := &Container{
		Config: cfg,
		Reader: excel.NewDataReader(nil),
		Agent:  agent,
		Usage:  usage.NewService(nil),
	}
	c.wireSessions()
	return c
}

func (c *Container) wireSessions() {
	c.Store = session.NewStore(session.Dependencies{
		Reader:   c.Reader,
		Agent:    c.Agent,
		Usage:    c.Usage,
		Timeout:  c.Config.AI.Timeout,
		Overview: profilingOptions(c.Config),
	}, c.Config.Server.SessionIdle)
	c.API = api.NewServer(c.Store, c.Usage, c.Config.Server.MaxUploadBytes)
}

func profilingOptions(cfg *config.Config) profiling.Options {
	return profiling.Options{
		Sections:    cfg.Overview.Sections,
		PreviewRows: cfg.Overview.PreviewRows,
	}
}

// InitWithDatabase connects the question log. Sessions created afterwards record every question.
func (c *Container) InitWithDatabase(ctx context.Context, db *sqlx.DB) error {
	if db == nil {
		return fmt.Errorf("database connection cannot be nil")
	}

	if err := db.PingContext(ctx); err != nil {
		return errors.DatabaseError("failed to ping database", err)
	}

	if err := migration.NewRunner().Run(ctx, db); err != nil {
		return errors.Wrap(err, "database migration failed")
	}

	c.DB = db
	c.QuestionLog = postgres.NewQuestionLogRepository(db)
	c.Usage = usage.NewService(c.QuestionLog)
	c.wireSessions()

	log.Printf("[Container] question log enabled")
	return nil
}

// Connect opens the configured database, if any, and enables the question log
func (c *Container) Connect(ctx context.Context) error {
	if !c.Config.Database.Enabled() {
		log.Printf("[Container] DATABASE_URL not set, question log disabled")
		return nil
	}

	db, err := sqlx.ConnectContext(ctx, "postgres", c.Config.Database.URL)
	if err != nil {
		return errors.DatabaseError("failed to connect to database", err)
	}
	if err := c.InitWithDatabase(ctx, db); err != nil {
		db.Close()
		return err
	}
	return nil
}

// Shutdown gracefully shuts down all components
func (c *Container) Shutdown(ctx context.Context) error {
	// Close database connection
	if c.DB != nil {
		return c.DB.Close()
	}
	return nil
}
