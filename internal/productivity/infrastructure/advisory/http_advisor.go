// Package advisory talks to an external scoring service that replies in
// free text, one "<task-id>: <score> - <rationale>" line per task.
package advisory

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/felixgeelhaar/cadence/internal/productivity/application/services"
	"github.com/felixgeelhaar/cadence/internal/productivity/domain/task"
	"github.com/google/uuid"
	"golang.org/x/oauth2/clientcredentials"
)

const maxReplyBytes = 1 << 20

var ErrNoEndpoint = errors.New("advisory endpoint not configured")

// Config configures the HTTP advisory client. OAuth2 client credentials are
// used when ClientID is set.
type Config struct {
	URL          string
	Timeout      time.Duration
	ClientID     string
	ClientSecret string
	TokenURL     string
	Scopes       []string
}

// HTTPAdvisor implements services.AdvisoryScorer over HTTP.
type HTTPAdvisor struct {
	url    string
	client *http.Client
	now    func() time.Time
	logger *slog.Logger
}

// NewHTTPAdvisor creates an advisory client.
func NewHTTPAdvisor(ctx context.Context, cfg Config, logger *slog.Logger) (*HTTPAdvisor, error) {
	if cfg.URL == "" {
		return nil, ErrNoEndpoint
	}
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}

	client := &http.Client{Timeout: cfg.Timeout}
	if cfg.ClientID != "" {
		cc := clientcredentials.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			TokenURL:     cfg.TokenURL,
			Scopes:       cfg.Scopes,
		}
		client = cc.Client(ctx)
		client.Timeout = cfg.Timeout
	}

	return &HTTPAdvisor{
		url:    cfg.URL,
		client: client,
		now:    time.Now,
		logger: logger,
	}, nil
}

// WithClock overrides the time source used when describing due dates.
func (a *HTTPAdvisor) WithClock(clock func() time.Time) *HTTPAdvisor {
	a.now = clock
	return a
}

type adviceRequest struct {
	Prompt string   `json:"prompt"`
	Tasks  []string `json:"task_ids"`
}

type adviceResponse struct {
	Reply string `json:"reply"`
}

// GetAdjustments asks the service to rank tasks and parses its reply.
func (a *HTTPAdvisor) GetAdjustments(ctx context.Context, tasks []*task.Task) (map[uuid.UUID]services.Adjustment, error) {
	if len(tasks) == 0 {
		return map[uuid.UUID]services.Adjustment{}, nil
	}

	req := adviceRequest{Prompt: BuildPrompt(tasks, a.now())}
	for _, t := range tasks {
		req.Tasks = append(req.Tasks, t.ID().String())
	}
	body, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, a.url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json, text/plain")

	resp, err := a.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("advisory request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxReplyBytes))
	if err != nil {
		return nil, fmt.Errorf("read advisory reply: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("advisory service returned %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	reply := string(raw)
	if strings.HasPrefix(resp.Header.Get("Content-Type"), "application/json") {
		var decoded adviceResponse
		if err := json.Unmarshal(raw, &decoded); err != nil {
			return nil, fmt.Errorf("decode advisory reply: %w", err)
		}
		reply = decoded.Reply
	}

	known := make(map[uuid.UUID]bool, len(tasks))
	for _, t := range tasks {
		known[t.ID()] = true
	}
	adjustments := ParseReply(reply, known)
	a.logger.Debug("advisory reply parsed", "tasks", len(tasks), "adjustments", len(adjustments))
	return adjustments, nil
}

// BuildPrompt describes each task on its own line.
func BuildPrompt(tasks []*task.Task, now time.Time) string {
	var b strings.Builder
	b.WriteString("Rate the priority of each task from 0.0 to 1.0.\n")
	b.WriteString("Answer with one line per task in the form \"<task-id>: <score> - <reason>\".\n\n")
	for _, t := range tasks {
		fmt.Fprintf(&b, "%s: %s (importance %s, difficulty %s, %d minutes",
			t.ID(), t.Title(), t.Importance(), t.Difficulty(), t.EstimatedMinutes())
		if due := t.DueDate(); due != nil {
			fmt.Fprintf(&b, ", due in %.1f days", due.Sub(now).Hours()/24)
		}
		if t.HasDependencies() {
			fmt.Fprintf(&b, ", %d dependencies", len(t.Dependencies()))
		}
		fmt.Fprintf(&b, ", status %s)\n", t.Status())
	}
	return b.String()
}

var replyLine = regexp.MustCompile(`(?i)([0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12})\W*[:=]\s*([0-9]+(?:\.[0-9]+)?)(?:\s*(?:/\s*(100|10))?)\s*(?:[-–:]\s*)?(.*)$`)

// ParseReply extracts adjustments from free text. Lines that do not match,
// or that name tasks outside known, are ignored. Scores given on a 10 or
// 100 point scale are normalised to [0,1].
func ParseReply(reply string, known map[uuid.UUID]bool) map[uuid.UUID]services.Adjustment {
	out := make(map[uuid.UUID]services.Adjustment)
	for _, line := range strings.Split(reply, "\n") {
		m := replyLine.FindStringSubmatch(strings.TrimSpace(line))
		if m == nil {
			continue
		}
		id, err := uuid.Parse(m[1])
		if err != nil || !known[id] {
			continue
		}
		score, err := strconv.ParseFloat(m[2], 64)
		if err != nil {
			continue
		}
		out[id] = services.Adjustment{
			Score:     normalise(score, m[3]),
			Rationale: strings.TrimSpace(m[4]),
		}
	}
	return out
}

func normalise(score float64, scale string) float64 {
	switch {
	case scale == "100":
		return score / 100
	case scale == "10":
		return score / 10
	case score > 10:
		return score / 100
	case score > 1:
		return score / 10
	}
	return score
}
