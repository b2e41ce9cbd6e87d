// Package sqlite provides an embedded SQLite persistence implementation for workflows and executions.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	"github.com/dukex/flowsuite/pkg/persistence"
	"github.com/dukex/flowsuite/pkg/persistence/sqlbase"
	_ "modernc.org/sqlite"
)

// Persistence implements the persistence layer on a SQLite database file.
type Persistence struct {
	db            *sql.DB
	logger        *slog.Logger
	workflowRepo  *sqlbase.WorkflowRepository
	executionRepo *sqlbase.ExecutionRepository
}

// NewPersistence opens the database named by databaseURL, e.g. sqlite://./flowsuite.db
// or sqlite://:memory:, and applies the schema.
func NewPersistence(ctx context.Context, logger *slog.Logger, databaseURL string) (*Persistence, error) {
	dsn := strings.TrimPrefix(databaseURL, "sqlite://")
	if dsn == "" {
		return nil, fmt.Errorf("sqlite database path is empty: %w", persistence.ErrUnsupportedScheme)
	}

	database, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}

	// One connection serializes writers and keeps :memory: databases alive across calls.
	database.SetMaxOpenConns(1)

	for _, pragma := range []string{"PRAGMA foreign_keys = ON", "PRAGMA busy_timeout = 5000"} {
		if _, err := database.ExecContext(ctx, pragma); err != nil {
			_ = database.Close()

			return nil, fmt.Errorf("failed to configure SQLite database: %w", err)
		}
	}

	migrationManager := sqlbase.NewMigrationManager(logger, database, sqlbase.DialectSQLite, sqlbase.Migrations())

	err = migrationManager.RunMigrations(ctx)
	if err != nil {
		_ = database.Close()

		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &Persistence{
		db:            database,
		logger:        logger,
		workflowRepo:  sqlbase.NewWorkflowRepository(database, sqlbase.DialectSQLite, logger),
		executionRepo: sqlbase.NewExecutionRepository(database, sqlbase.DialectSQLite, logger),
	}, nil
}

func (p *Persistence) Close(_ context.Context) error {
	if err := p.db.Close(); err != nil {
		return fmt.Errorf("failed to close database connection: %w", err)
	}

	return nil
}

func (p *Persistence) HealthCheck(ctx context.Context) error {
	if err := p.db.PingContext(ctx); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}

	return nil
}

func (p *Persistence) WorkflowRepository() persistence.WorkflowRepository {
	return p.workflowRepo
}

func (p *Persistence) ExecutionRepository() persistence.ExecutionRepository {
	return p.executionRepo
}
