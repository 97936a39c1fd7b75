package outbox

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/felixgeelhaar/cadence/internal/shared/infrastructure/eventbus"
)

// RelayConfig holds configuration for the outbox relay.
type RelayConfig struct {
	PollInterval     time.Duration
	BatchSize        int
	MaxRetries       int
	RetryBackoffBase time.Duration
	RetryBackoffMax  time.Duration
	Retention        time.Duration
}

// DefaultRelayConfig returns sensible defaults.
func DefaultRelayConfig() RelayConfig {
	return RelayConfig{
		PollInterval:     time.Second,
		BatchSize:        100,
		MaxRetries:       5,
		RetryBackoffBase: time.Second,
		RetryBackoffMax:  time.Minute,
		Retention:        7 * 24 * time.Hour,
	}
}

// Stats is a snapshot of relay counters.
type Stats struct {
	Published       uint64
	Failed          uint64
	Dead            uint64
	LastError       string
	LastProcessedAt *time.Time
}

// Relay moves messages from the outbox to the event bus with retry and
// dead-lettering.
type Relay struct {
	repo      Repository
	publisher eventbus.Publisher
	config    RelayConfig
	logger    *slog.Logger
	now       func() time.Time

	mu    sync.Mutex
	stats Stats
}

// NewRelay creates a relay.
func NewRelay(repo Repository, publisher eventbus.Publisher, config RelayConfig, logger *slog.Logger) *Relay {
	if logger == nil {
		logger = slog.Default()
	}
	return &Relay{
		repo:      repo,
		publisher: publisher,
		config:    config,
		logger:    logger,
		now:       time.Now,
	}
}

// WithClock overrides the time source.
func (r *Relay) WithClock(now func() time.Time) *Relay {
	r.now = now
	return r
}

// Run polls until ctx is cancelled.
func (r *Relay) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.config.PollInterval)
	defer ticker.Stop()

	r.logger.Info("outbox relay started",
		"poll_interval", r.config.PollInterval,
		"batch_size", r.config.BatchSize,
	)

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("outbox relay stopped")
			return nil
		case <-ticker.C:
			if _, err := r.RelayOnce(ctx); err != nil {
				r.logger.Error("failed to relay outbox batch", "error", err)
			}
		}
	}
}

// RelayOnce publishes one batch and returns how many messages were published.
func (r *Relay) RelayOnce(ctx context.Context) (int, error) {
	now := r.now()
	msgs, err := r.repo.FetchPending(ctx, now, r.config.BatchSize)
	if err != nil {
		r.recordError(err)
		return 0, err
	}

	published := 0
	for _, msg := range msgs {
		if err := r.publisher.Publish(ctx, msg.RoutingKey, msg.Payload); err != nil {
			r.handleFailure(ctx, msg, err)
			continue
		}
		if err := r.repo.MarkPublished(ctx, msg.ID, r.now()); err != nil {
			r.logger.Error("failed to mark message as published",
				"id", msg.ID,
				"event_id", msg.EventID,
				"error", err,
			)
			continue
		}
		published++
	}

	r.mu.Lock()
	r.stats.Published += uint64(published)
	r.stats.LastProcessedAt = &now
	r.mu.Unlock()

	return published, nil
}

func (r *Relay) handleFailure(ctx context.Context, msg *Message, err error) {
	r.logger.Warn("failed to publish message",
		"id", msg.ID,
		"routing_key", msg.RoutingKey,
		"event_id", msg.EventID,
		"correlation_id", msg.CorrelationID(),
		"retry_count", msg.RetryCount,
		"error", err,
	)

	r.recordError(err)
	if r.shouldDeadLetter(msg) {
		r.mu.Lock()
		r.stats.Dead++
		r.mu.Unlock()
		if markErr := r.repo.MarkDead(ctx, msg.ID, err.Error(), r.now()); markErr != nil {
			r.logger.Error("failed to dead-letter message", "id", msg.ID, "error", markErr)
		}
		return
	}

	r.mu.Lock()
	r.stats.Failed++
	r.mu.Unlock()
	next := r.now().Add(r.retryBackoff(msg.RetryCount + 1))
	if markErr := r.repo.MarkFailed(ctx, msg.ID, err.Error(), next); markErr != nil {
		r.logger.Error("failed to mark message as failed", "id", msg.ID, "error", markErr)
	}
}

// Purge removes published messages past the retention window.
func (r *Relay) Purge(ctx context.Context) (int64, error) {
	if r.config.Retention <= 0 {
		return 0, nil
	}
	return r.repo.Purge(ctx, r.now().Add(-r.config.Retention))
}

func (r *Relay) shouldDeadLetter(msg *Message) bool {
	if r.config.MaxRetries <= 0 {
		return true
	}
	return msg.RetryCount+1 >= r.config.MaxRetries
}

func (r *Relay) retryBackoff(attempt int) time.Duration {
	base := r.config.RetryBackoffBase
	if base <= 0 {
		base = time.Second
	}
	ceiling := r.config.RetryBackoffMax
	if ceiling <= 0 {
		ceiling = time.Minute
	}

	backoff := base
	for i := 1; i < attempt; i++ {
		backoff *= 2
		if backoff >= ceiling {
			return ceiling
		}
	}
	return backoff
}

func (r *Relay) recordError(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stats.LastError = err.Error()
}

// Stats returns a snapshot of relay counters.
func (r *Relay) Stats() Stats {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stats
}
