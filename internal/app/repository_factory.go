package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/felixgeelhaar/cadence/internal/productivity/domain/task"
	productivityPersistence "github.com/felixgeelhaar/cadence/internal/productivity/infrastructure/persistence"
	schedulingDomain "github.com/felixgeelhaar/cadence/internal/scheduling/domain"
	schedulingPersistence "github.com/felixgeelhaar/cadence/internal/scheduling/infrastructure/persistence"
	sharedApplication "github.com/felixgeelhaar/cadence/internal/shared/application"
	"github.com/felixgeelhaar/cadence/internal/shared/infrastructure/database"
	_ "github.com/felixgeelhaar/cadence/internal/shared/infrastructure/database/postgres" // Register PostgreSQL driver
	_ "github.com/felixgeelhaar/cadence/internal/shared/infrastructure/database/sqlite"   // Register SQLite driver
	"github.com/felixgeelhaar/cadence/internal/shared/infrastructure/migrations"
	"github.com/felixgeelhaar/cadence/internal/shared/infrastructure/outbox"
	"github.com/felixgeelhaar/cadence/pkg/config"
)

// OpenDatabase connects to the configured store and applies pending
// migrations. An empty DATABASE_URL opens the local SQLite file.
func OpenDatabase(ctx context.Context, cfg *config.Config, logger *slog.Logger) (database.Connection, error) {
	driver := database.Driver(cfg.DatabaseDriver)
	conn, err := database.NewConnection(ctx, database.Config{
		Driver:     driver,
		URL:        cfg.DatabaseURL,
		SQLitePath: cfg.SQLitePath,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := migrations.Run(ctx, conn, logger); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	logger.Debug("connected to database", "driver", conn.Driver())
	return conn, nil
}

// RepositoryFactory creates repositories over one connection. The SQL
// repositories rebind their queries per driver, so every driver shares
// one implementation.
type RepositoryFactory struct {
	conn database.Connection
}

// NewRepositoryFactory creates a new repository factory.
func NewRepositoryFactory(conn database.Connection) *RepositoryFactory {
	return &RepositoryFactory{conn: conn}
}

// Driver reports the driver behind the factory.
func (f *RepositoryFactory) Driver() database.Driver {
	return f.conn.Driver()
}

// TaskRepository creates a task repository.
func (f *RepositoryFactory) TaskRepository() task.Repository {
	return productivityPersistence.NewSQLTaskRepository(f.conn)
}

// BlockRepository creates a calendar block repository.
func (f *RepositoryFactory) BlockRepository() schedulingDomain.BlockRepository {
	return schedulingPersistence.NewSQLBlockRepository(f.conn)
}

// OutboxRepository creates an outbox repository.
func (f *RepositoryFactory) OutboxRepository() outbox.Repository {
	return outbox.NewSQLRepository(f.conn)
}

// UnitOfWork creates a unit of work whose transactions the repositories
// above join through the context.
func (f *RepositoryFactory) UnitOfWork() sharedApplication.UnitOfWork {
	return database.NewUnitOfWork(f.conn)
}
