package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/felixgeelhaar/cadence/internal/productivity/domain/task"
	"github.com/google/uuid"
	"github.com/sony/gobreaker/v2"
)

// ErrAdvisorUnavailable is returned while the breaker is open.
var ErrAdvisorUnavailable = errors.New("advisory scorer unavailable")

// GuardedAdvisorConfig configures timeout and breaker behavior.
type GuardedAdvisorConfig struct {
	// Timeout bounds a single advisory call.
	Timeout time.Duration

	// FailureThreshold is the consecutive failure count that opens the breaker.
	FailureThreshold uint32

	// OpenTimeout is how long the breaker stays open before probing.
	OpenTimeout time.Duration

	// MaxRequests is the number of probes allowed while half-open.
	MaxRequests uint32
}

// DefaultGuardedAdvisorConfig returns sensible defaults.
func DefaultGuardedAdvisorConfig() GuardedAdvisorConfig {
	return GuardedAdvisorConfig{
		Timeout:          5 * time.Second,
		FailureThreshold: 3,
		OpenTimeout:      time.Minute,
		MaxRequests:      1,
	}
}

// GuardedAdvisor bounds an advisory source with a deadline and a circuit
// breaker so a slow or broken upstream cannot stall scoring.
type GuardedAdvisor struct {
	inner   AdvisoryScorer
	timeout time.Duration
	breaker *gobreaker.CircuitBreaker[map[uuid.UUID]Adjustment]
	logger  *slog.Logger
}

// NewGuardedAdvisor wraps inner.
func NewGuardedAdvisor(inner AdvisoryScorer, cfg GuardedAdvisorConfig, logger *slog.Logger) *GuardedAdvisor {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.FailureThreshold == 0 {
		cfg.FailureThreshold = 3
	}

	settings := gobreaker.Settings{
		Name:        "advisory",
		MaxRequests: cfg.MaxRequests,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.FailureThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Info("circuit breaker state changed",
				"breaker", name,
				"from", from.String(),
				"to", to.String(),
			)
		},
	}

	return &GuardedAdvisor{
		inner:   inner,
		timeout: cfg.Timeout,
		breaker: gobreaker.NewCircuitBreaker[map[uuid.UUID]Adjustment](settings),
		logger:  logger,
	}
}

// GetAdjustments implements AdvisoryScorer.
func (g *GuardedAdvisor) GetAdjustments(ctx context.Context, tasks []*task.Task) (map[uuid.UUID]Adjustment, error) {
	adjustments, err := g.breaker.Execute(func() (map[uuid.UUID]Adjustment, error) {
		callCtx := ctx
		if g.timeout > 0 {
			var cancel context.CancelFunc
			callCtx, cancel = context.WithTimeout(ctx, g.timeout)
			defer cancel()
		}
		return g.call(callCtx, tasks)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, ErrAdvisorUnavailable
	}
	if err != nil {
		return nil, err
	}
	return adjustments, nil
}

// State reports the breaker state.
func (g *GuardedAdvisor) State() gobreaker.State {
	return g.breaker.State()
}

func (g *GuardedAdvisor) call(ctx context.Context, tasks []*task.Task) (map[uuid.UUID]Adjustment, error) {
	type reply struct {
		adjustments map[uuid.UUID]Adjustment
		err         error
	}
	done := make(chan reply, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- reply{err: fmt.Errorf("advisory scorer panic: %v", r)}
			}
		}()
		a, e := g.inner.GetAdjustments(ctx, tasks)
		done <- reply{adjustments: a, err: e}
	}()

	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("advisory scorer: %w", ctx.Err())
	case r := <-done:
		return r.adjustments, r.err
	}
}
