package services

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/felixgeelhaar/cadence/internal/productivity/domain/task"
	"github.com/felixgeelhaar/cadence/internal/productivity/domain/value_objects"
	"github.com/google/uuid"
)

// SizeCapMinutes is the estimate at which the size factor bottoms out (8 hours).
const SizeCapMinutes = 480

// DefaultRationale is used when no reason triggers.
const DefaultRationale = "Standard priority"

// PriorityWeights tunes how the five factors combine. They should sum to 1.
type PriorityWeights struct {
	Importance float64
	Deadline   float64
	Difficulty float64
	Size       float64
	Risk       float64
}

// DefaultPriorityWeights returns the production weighting.
func DefaultPriorityWeights() PriorityWeights {
	return PriorityWeights{
		Importance: 0.50,
		Deadline:   0.15,
		Difficulty: 0.15,
		Size:       0.10,
		Risk:       0.10,
	}
}

// PriorityScorerConfig configures the scorer.
type PriorityScorerConfig struct {
	Weights PriorityWeights
	// AdvisoryWeight is the share of an advisory score in the final blend.
	AdvisoryWeight float64
}

// DefaultPriorityScorerConfig returns the default configuration.
func DefaultPriorityScorerConfig() PriorityScorerConfig {
	return PriorityScorerConfig{
		Weights:        DefaultPriorityWeights(),
		AdvisoryWeight: 0.3,
	}
}

// Factors holds the unweighted factor values, each in [0,1].
type Factors struct {
	Importance float64 `json:"importance"`
	Deadline   float64 `json:"deadline"`
	Difficulty float64 `json:"difficulty"`
	Size       float64 `json:"size"`
	Risk       float64 `json:"risk"`
}

// PriorityResult is the outcome of scoring one task.
type PriorityResult struct {
	TaskID         uuid.UUID `json:"task_id"`
	Title          string    `json:"title"`
	HeuristicScore float64   `json:"heuristic_score"`
	AdvisoryScore  *float64  `json:"advisory_score,omitempty"`
	FinalScore     float64   `json:"final_score"`
	Rationale      string    `json:"rationale"`
	Factors        Factors   `json:"factors"`
}

// PriorityScorer computes deterministic heuristic scores and optionally
// blends in an advisory score.
type PriorityScorer struct {
	config  PriorityScorerConfig
	advisor AdvisoryScorer
	clock   func() time.Time
	logger  *slog.Logger
}

// NewPriorityScorer creates a scorer. A nil advisor disables blending.
func NewPriorityScorer(cfg PriorityScorerConfig, advisor AdvisoryScorer, logger *slog.Logger) *PriorityScorer {
	if logger == nil {
		logger = slog.Default()
	}
	if advisor == nil {
		advisor = NoopAdvisor{}
	}
	return &PriorityScorer{
		config:  cfg,
		advisor: advisor,
		clock:   time.Now,
		logger:  logger,
	}
}

// WithClock overrides the time source.
func (s *PriorityScorer) WithClock(clock func() time.Time) *PriorityScorer {
	s.clock = clock
	return s
}

// Score returns the heuristic score and rationale. It is a pure function of
// the task and now.
func (s *PriorityScorer) Score(t *task.Task, now time.Time) (float64, string) {
	f := s.Factors(t, now)
	return s.weigh(f), rationale(t, now)
}

// Factors computes the unweighted factor values.
func (s *PriorityScorer) Factors(t *task.Task, now time.Time) Factors {
	return Factors{
		Importance: float64(t.Importance().Ordinal()) / float64(value_objects.MaxImportance),
		Deadline:   deadlineUrgency(t.DueDate(), now),
		Difficulty: 1 - float64(t.Difficulty().Ordinal())/float64(value_objects.MaxDifficulty),
		Size:       1 - math.Min(1, float64(t.EstimatedMinutes())/SizeCapMinutes),
		Risk:       riskBoost(t),
	}
}

func (s *PriorityScorer) weigh(f Factors) float64 {
	w := s.config.Weights
	score := f.Importance*w.Importance +
		f.Deadline*w.Deadline +
		f.Difficulty*w.Difficulty +
		f.Size*w.Size +
		f.Risk*w.Risk
	return clamp01(score)
}

// ScoreBatch scores every task, consults the advisory source once for the
// whole batch, and returns results sorted by final score descending.
// Advisory failures never fail the batch.
func (s *PriorityScorer) ScoreBatch(ctx context.Context, tasks []*task.Task) []PriorityResult {
	now := s.clock()
	results := make([]PriorityResult, 0, len(tasks))
	if len(tasks) == 0 {
		return results
	}

	adjustments := s.advise(ctx, tasks)

	for _, t := range tasks {
		factors := s.Factors(t, now)
		heuristic := s.weigh(factors)
		result := PriorityResult{
			TaskID:         t.ID(),
			Title:          t.Title(),
			HeuristicScore: heuristic,
			FinalScore:     heuristic,
			Rationale:      rationale(t, now),
			Factors:        factors,
		}

		if adj, ok := adjustments[t.ID()]; ok && !math.IsNaN(adj.Score) {
			advisory := clamp01(adj.Score)
			result.AdvisoryScore = &advisory
			result.FinalScore = clamp01((1-s.config.AdvisoryWeight)*heuristic + s.config.AdvisoryWeight*advisory)
			if r := strings.TrimSpace(adj.Rationale); r != "" {
				result.Rationale = r
			}
		}

		results = append(results, result)
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].FinalScore > results[j].FinalScore
	})

	return results
}

// advise calls the advisory source and converts every failure mode,
// panics included, into an empty adjustment set.
func (s *PriorityScorer) advise(ctx context.Context, tasks []*task.Task) (adjustments map[uuid.UUID]Adjustment) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Warn("advisory scorer panicked, using heuristic scores", "panic", fmt.Sprint(r))
			adjustments = nil
		}
	}()

	adjustments, err := s.advisor.GetAdjustments(ctx, tasks)
	if err != nil {
		s.logger.Warn("advisory scoring failed, using heuristic scores",
			"tasks", len(tasks),
			"error", err,
		)
		return nil
	}
	return adjustments
}

func deadlineUrgency(due *time.Time, now time.Time) float64 {
	if due == nil {
		return 0
	}
	if due.Before(now) {
		return 1.0
	}
	days := due.Sub(now).Hours() / 24
	switch {
	case days <= 1:
		return 0.9
	case days <= 3:
		return 0.7
	case days <= 7:
		return 0.5
	case days <= 14:
		return 0.3
	default:
		return 0.1
	}
}

func riskBoost(t *task.Task) float64 {
	risk := 0.0
	if t.HasDependencies() {
		risk += 0.2
	}
	if t.Status() == task.StatusBlocked {
		risk += 0.3
	}
	return risk
}

func rationale(t *task.Task, now time.Time) string {
	var reasons []string

	if t.Importance() >= value_objects.ImportanceHigh {
		reasons = append(reasons, "High importance")
	}
	if due := t.DueDate(); due != nil {
		if due.Before(now) {
			reasons = append(reasons, "Overdue")
		} else if due.Sub(now) <= 72*time.Hour {
			reasons = append(reasons, "Due soon")
		}
	}
	if t.EstimatedMinutes() <= 60 && t.Difficulty() <= value_objects.DifficultyEasy {
		reasons = append(reasons, "Quick win")
	}
	if t.HasDependencies() {
		reasons = append(reasons, "Has dependencies")
	}

	if len(reasons) == 0 {
		return DefaultRationale
	}
	return strings.Join(reasons, "; ")
}

func clamp01(value float64) float64 {
	if value < 0 {
		return 0
	}
	if value > 1 {
		return 1
	}
	return value
}
