package cli

import (
	"errors"

	internalApp "github.com/felixgeelhaar/cadence/internal/app"
	"github.com/felixgeelhaar/cadence/internal/productivity/application/commands"
	"github.com/felixgeelhaar/cadence/internal/productivity/application/queries"
	scheduleCommands "github.com/felixgeelhaar/cadence/internal/scheduling/application/commands"
	scheduleQueries "github.com/felixgeelhaar/cadence/internal/scheduling/application/queries"
	"github.com/felixgeelhaar/cadence/pkg/observability"
)

// ErrNotInitialized is returned by commands run without a wired App.
var ErrNotInitialized = errors.New("application not initialized - database connection required")

// App holds the CLI application dependencies.
type App struct {
	// Task Command Handlers
	CreateTaskHandler      *commands.CreateTaskHandler
	UpdateTaskHandler      *commands.UpdateTaskHandler
	ScorePrioritiesHandler *commands.ScorePrioritiesHandler

	// Task Query Handlers
	GetTaskHandler   *queries.GetTaskHandler
	ListTasksHandler *queries.ListTasksHandler

	// Schedule Command Handlers
	BuildScheduleHandler    *scheduleCommands.BuildScheduleHandler
	ResolveConflictsHandler *scheduleCommands.ResolveConflictsHandler
	TransitionBlockHandler  *scheduleCommands.TransitionBlockHandler

	// Schedule Query Handlers
	GetBlocksHandler          *scheduleQueries.GetBlocksHandler
	FindAvailableSlotsHandler *scheduleQueries.FindAvailableSlotsHandler

	Health *observability.HealthRegistry
}

// NewApp creates a CLI application backed by the container's handlers.
func NewApp(c *internalApp.Container) *App {
	return &App{
		CreateTaskHandler:         c.CreateTaskHandler,
		UpdateTaskHandler:         c.UpdateTaskHandler,
		ScorePrioritiesHandler:    c.ScorePrioritiesHandler,
		GetTaskHandler:            c.GetTaskHandler,
		ListTasksHandler:          c.ListTasksHandler,
		BuildScheduleHandler:      c.BuildScheduleHandler,
		ResolveConflictsHandler:   c.ResolveConflictsHandler,
		TransitionBlockHandler:    c.TransitionBlockHandler,
		GetBlocksHandler:          c.GetBlocksHandler,
		FindAvailableSlotsHandler: c.FindAvailableSlotsHandler,
		Health:                    c.Health,
	}
}

// app is the global CLI application instance
var app *App

// SetApp sets the global CLI application instance.
func SetApp(a *App) {
	app = a
}

// GetApp returns the global CLI application instance.
func GetApp() *App {
	return app
}

// RequireApp returns the global App or ErrNotInitialized.
func RequireApp() (*App, error) {
	if app == nil {
		return nil, ErrNotInitialized
	}
	return app, nil
}
