package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	productivityCommands "github.com/felixgeelhaar/cadence/internal/productivity/application/commands"
	productivityQueries "github.com/felixgeelhaar/cadence/internal/productivity/application/queries"
	productivityServices "github.com/felixgeelhaar/cadence/internal/productivity/application/services"
	"github.com/felixgeelhaar/cadence/internal/productivity/domain/task"
	"github.com/felixgeelhaar/cadence/internal/productivity/infrastructure/advisory"
	"github.com/felixgeelhaar/cadence/internal/productivity/infrastructure/cache"
	scheduleCommands "github.com/felixgeelhaar/cadence/internal/scheduling/application/commands"
	scheduleQueries "github.com/felixgeelhaar/cadence/internal/scheduling/application/queries"
	schedulingServices "github.com/felixgeelhaar/cadence/internal/scheduling/application/services"
	schedulingDomain "github.com/felixgeelhaar/cadence/internal/scheduling/domain"
	sharedApplication "github.com/felixgeelhaar/cadence/internal/shared/application"
	"github.com/felixgeelhaar/cadence/internal/shared/infrastructure/database"
	"github.com/felixgeelhaar/cadence/internal/shared/infrastructure/eventbus"
	"github.com/felixgeelhaar/cadence/internal/shared/infrastructure/outbox"
	"github.com/felixgeelhaar/cadence/pkg/config"
	"github.com/felixgeelhaar/cadence/pkg/observability"
)

// Container holds all application dependencies.
type Container struct {
	Config *config.Config
	Logger *slog.Logger

	// Database
	DB database.Connection

	// Redis is nil when REDIS_URL is unset or unreachable in development.
	Redis *cache.RedisCache

	// Repositories
	TaskRepo   task.Repository
	BlockRepo  schedulingDomain.BlockRepository
	OutboxRepo outbox.Repository

	// Unit of Work
	UnitOfWork sharedApplication.UnitOfWork

	// Publishers
	EventPublisher eventbus.Publisher

	// Scoring
	Advisor        productivityServices.AdvisoryScorer
	PriorityScorer *productivityServices.PriorityScorer

	// Task Command Handlers
	CreateTaskHandler      *productivityCommands.CreateTaskHandler
	UpdateTaskHandler      *productivityCommands.UpdateTaskHandler
	ScorePrioritiesHandler *productivityCommands.ScorePrioritiesHandler

	// Task Query Handlers
	GetTaskHandler   *productivityQueries.GetTaskHandler
	ListTasksHandler *productivityQueries.ListTasksHandler

	// Schedule Command Handlers
	BuildScheduleHandler    *scheduleCommands.BuildScheduleHandler
	ResolveConflictsHandler *scheduleCommands.ResolveConflictsHandler
	TransitionBlockHandler  *scheduleCommands.TransitionBlockHandler

	// Schedule Query Handlers
	GetBlocksHandler          *scheduleQueries.GetBlocksHandler
	FindAvailableSlotsHandler *scheduleQueries.FindAvailableSlotsHandler

	// Health checks the connections acquired above.
	Health *observability.HealthRegistry

	closers []func() error
}

// NewContainer creates and wires all dependencies. Redis and RabbitMQ are
// optional: unset URLs select in-process fallbacks, and in development an
// unreachable server does too.
func NewContainer(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Container, error) {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Container{
		Config: cfg,
		Logger: logger,
	}

	conn, err := OpenDatabase(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	c.DB = conn
	c.closers = append(c.closers, conn.Close)

	factory := NewRepositoryFactory(conn)
	c.TaskRepo = factory.TaskRepository()
	c.BlockRepo = factory.BlockRepository()
	c.OutboxRepo = factory.OutboxRepository()
	c.UnitOfWork = factory.UnitOfWork()

	advisoryCache, err := c.connectCache(ctx)
	if err != nil {
		c.Close()
		return nil, err
	}

	if err := c.connectPublisher(); err != nil {
		c.Close()
		return nil, err
	}

	advisor, err := newAdvisor(ctx, cfg, advisoryCache, logger)
	if err != nil {
		c.Close()
		return nil, err
	}
	c.Advisor = advisor
	c.PriorityScorer = productivityServices.NewPriorityScorer(
		productivityServices.DefaultPriorityScorerConfig(),
		advisor,
		logger,
	)

	// Create task command handlers
	c.CreateTaskHandler = productivityCommands.NewCreateTaskHandler(c.TaskRepo, c.OutboxRepo, c.UnitOfWork)
	c.UpdateTaskHandler = productivityCommands.NewUpdateTaskHandler(c.TaskRepo, c.OutboxRepo, c.UnitOfWork)
	c.ScorePrioritiesHandler = productivityCommands.NewScorePrioritiesHandler(
		c.TaskRepo, c.OutboxRepo, c.UnitOfWork, c.PriorityScorer, logger,
	)

	// Create task query handlers
	c.GetTaskHandler = productivityQueries.NewGetTaskHandler(c.TaskRepo)
	c.ListTasksHandler = productivityQueries.NewListTasksHandler(c.TaskRepo)

	// Create schedule command handlers
	c.BuildScheduleHandler = scheduleCommands.NewBuildScheduleHandler(
		c.TaskRepo, c.BlockRepo, c.OutboxRepo, c.UnitOfWork, c.PriorityScorer, logger,
	).WithPolicy(schedulingServices.BlockPolicy{
		MinBlockMinutes: cfg.ScheduleMinBlockMinutes,
		MaxBlockMinutes: cfg.ScheduleMaxBlockMinutes,
	})
	c.ResolveConflictsHandler = scheduleCommands.NewResolveConflictsHandler(c.BlockRepo, c.OutboxRepo, c.UnitOfWork, logger)
	c.TransitionBlockHandler = scheduleCommands.NewTransitionBlockHandler(c.BlockRepo, c.UnitOfWork)

	// Create schedule query handlers
	c.GetBlocksHandler = scheduleQueries.NewGetBlocksHandler(c.BlockRepo)
	c.FindAvailableSlotsHandler = scheduleQueries.NewFindAvailableSlotsHandler(c.BlockRepo, nil)

	c.Health = c.newHealthRegistry()

	return c, nil
}

// newHealthRegistry registers a checker per live connection. The database
// is required; Redis and RabbitMQ only degrade the service.
func (c *Container) newHealthRegistry() *observability.HealthRegistry {
	registry := observability.NewHealthRegistry(0)
	registry.Register("database", observability.DatabaseHealthChecker(c.DB.Ping))
	if c.Redis != nil {
		registry.Register("redis", observability.RedisHealthChecker(c.Redis.Ping))
	}
	if publisher, ok := c.EventPublisher.(*eventbus.RabbitMQPublisher); ok {
		registry.Register("rabbitmq", observability.RabbitMQHealthChecker(publisher.Ping))
	}
	return registry
}

func (c *Container) connectCache(ctx context.Context) (productivityServices.AdvisoryCache, error) {
	if c.Config.RedisURL == "" {
		return cache.NewMemoryCache(), nil
	}

	redisCache, err := cache.Connect(ctx, c.Config.RedisURL)
	if err != nil {
		if !c.Config.IsDevelopment() {
			return nil, fmt.Errorf("failed to connect to Redis: %w", err)
		}
		c.Logger.Warn("Redis not available, advisory cache will use in-memory fallback", "error", err)
		return cache.NewMemoryCache(), nil
	}

	c.Redis = redisCache
	c.closers = append(c.closers, redisCache.Close)
	c.Logger.Debug("connected to Redis")
	return redisCache, nil
}

func (c *Container) connectPublisher() error {
	if c.Config.RabbitMQURL == "" {
		c.EventPublisher = eventbus.NewNoopPublisher(c.Logger)
		return nil
	}

	publisher, err := eventbus.NewRabbitMQPublisher(c.Config.RabbitMQURL, c.Logger)
	if err != nil {
		if !c.Config.IsDevelopment() {
			return fmt.Errorf("failed to connect to RabbitMQ: %w", err)
		}
		c.Logger.Warn("RabbitMQ not available, using noop publisher", "error", err)
		c.EventPublisher = eventbus.NewNoopPublisher(c.Logger)
		return nil
	}

	c.EventPublisher = publisher
	c.closers = append(c.closers, publisher.Close)
	return nil
}

// newAdvisor builds the advisory chain: the HTTP client, memoized per task
// revision, behind a deadline and circuit breaker. Without ADVISORY_URL
// scoring is heuristic-only.
func newAdvisor(
	ctx context.Context,
	cfg *config.Config,
	advisoryCache productivityServices.AdvisoryCache,
	logger *slog.Logger,
) (productivityServices.AdvisoryScorer, error) {
	if !cfg.AdvisoryEnabled() {
		return productivityServices.NoopAdvisor{}, nil
	}

	client, err := advisory.NewHTTPAdvisor(ctx, advisory.Config{
		URL:          cfg.AdvisoryURL,
		Timeout:      cfg.AdvisoryTimeout,
		ClientID:     cfg.AdvisoryClientID,
		ClientSecret: cfg.AdvisoryClientSecret,
		TokenURL:     cfg.AdvisoryTokenURL,
		Scopes:       cfg.AdvisoryScopes,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create advisory client: %w", err)
	}

	var inner productivityServices.AdvisoryScorer = client
	if cfg.AdvisoryCacheTTL > 0 {
		inner = productivityServices.NewCachedAdvisor(client, advisoryCache, cfg.AdvisoryCacheTTL, logger)
	}

	guard := productivityServices.DefaultGuardedAdvisorConfig()
	guard.Timeout = cfg.AdvisoryTimeout
	return productivityServices.NewGuardedAdvisor(inner, guard, logger), nil
}

// Close releases connections in reverse order of acquisition.
func (c *Container) Close() error {
	var errs []error
	for i := len(c.closers) - 1; i >= 0; i-- {
		if err := c.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	c.closers = nil
	if err := errors.Join(errs...); err != nil {
		c.Logger.Warn("error closing container", "error", err)
		return err
	}
	return nil
}
