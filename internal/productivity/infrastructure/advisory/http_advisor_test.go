package advisory

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/felixgeelhaar/cadence/internal/productivity/domain/task"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

func newTask(t *testing.T, title string) *task.Task {
	t.Helper()
	tk, err := task.NewTask(title, 60, now)
	require.NoError(t, err)
	return tk
}

func TestParseReply(t *testing.T) {
	a, b, c := uuid.New(), uuid.New(), uuid.New()
	known := map[uuid.UUID]bool{a: true, b: true}

	reply := strings.Join([]string{
		"Here is my ranking:",
		fmt.Sprintf("%s: 0.85 - blocks the release", a),
		fmt.Sprintf("- %s: 7/10 – needs focus time", strings.ToUpper(b.String())),
		fmt.Sprintf("%s: 0.9 - unknown task", c),
		"garbage line",
	}, "\n")

	got := ParseReply(reply, known)
	require.Len(t, got, 2)
	assert.InDelta(t, 0.85, got[a].Score, 1e-9)
	assert.Equal(t, "blocks the release", got[a].Rationale)
	assert.InDelta(t, 0.7, got[b].Score, 1e-9)
	assert.Equal(t, "needs focus time", got[b].Rationale)
}

func TestParseReply_Scales(t *testing.T) {
	id := uuid.New()
	known := map[uuid.UUID]bool{id: true}

	tests := []struct {
		line string
		want float64
	}{
		{fmt.Sprintf("%s: 0.4", id), 0.4},
		{fmt.Sprintf("%s: 6", id), 0.6},
		{fmt.Sprintf("%s: 75", id), 0.75},
		{fmt.Sprintf("%s = 30/100 - later", id), 0.3},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			got := ParseReply(tt.line, known)
			require.Contains(t, got, id)
			assert.InDelta(t, tt.want, got[id].Score, 1e-9)
		})
	}
}

func TestBuildPrompt(t *testing.T) {
	tk := newTask(t, "Write report")
	due := now.Add(48 * time.Hour)
	require.NoError(t, tk.SetDueDate(&due, now))

	prompt := BuildPrompt([]*task.Task{tk}, now)
	assert.Contains(t, prompt, tk.ID().String()+": Write report")
	assert.Contains(t, prompt, "importance medium")
	assert.Contains(t, prompt, "due in 2.0 days")
}

func TestHTTPAdvisor_GetAdjustments(t *testing.T) {
	tk := newTask(t, "Write report")

	t.Run("json reply", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			var req adviceRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Equal(t, []string{tk.ID().String()}, req.Tasks)

			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(adviceResponse{Reply: tk.ID().String() + ": 0.9 - urgent"})
		}))
		defer srv.Close()

		advisor, err := NewHTTPAdvisor(context.Background(), Config{URL: srv.URL}, nil)
		require.NoError(t, err)

		got, err := advisor.WithClock(func() time.Time { return now }).GetAdjustments(context.Background(), []*task.Task{tk})
		require.NoError(t, err)
		assert.InDelta(t, 0.9, got[tk.ID()].Score, 1e-9)
		assert.Equal(t, "urgent", got[tk.ID()].Rationale)
	})

	t.Run("plain text reply", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "text/plain")
			_, _ = io.WriteString(w, tk.ID().String()+": 0.2 - can wait\n")
		}))
		defer srv.Close()

		advisor, err := NewHTTPAdvisor(context.Background(), Config{URL: srv.URL}, nil)
		require.NoError(t, err)

		got, err := advisor.GetAdjustments(context.Background(), []*task.Task{tk})
		require.NoError(t, err)
		assert.InDelta(t, 0.2, got[tk.ID()].Score, 1e-9)
	})

	t.Run("server error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, "overloaded", http.StatusServiceUnavailable)
		}))
		defer srv.Close()

		advisor, err := NewHTTPAdvisor(context.Background(), Config{URL: srv.URL}, nil)
		require.NoError(t, err)

		_, err = advisor.GetAdjustments(context.Background(), []*task.Task{tk})
		assert.ErrorContains(t, err, "503")
	})

	t.Run("client credentials", func(t *testing.T) {
		var tokenCalls int
		tokenSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenCalls++
			w.Header().Set("Content-Type", "application/json")
			_, _ = io.WriteString(w, `{"access_token":"abc","token_type":"bearer","expires_in":3600}`)
		}))
		defer tokenSrv.Close()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "Bearer abc", r.Header.Get("Authorization"))
			_, _ = io.WriteString(w, "")
		}))
		defer srv.Close()

		advisor, err := NewHTTPAdvisor(context.Background(), Config{
			URL:          srv.URL,
			ClientID:     "cadence",
			ClientSecret: "secret",
			TokenURL:     tokenSrv.URL,
		}, nil)
		require.NoError(t, err)

		got, err := advisor.GetAdjustments(context.Background(), []*task.Task{tk})
		require.NoError(t, err)
		assert.Empty(t, got)
		assert.Equal(t, 1, tokenCalls)
	})

	t.Run("requires url", func(t *testing.T) {
		_, err := NewHTTPAdvisor(context.Background(), Config{}, nil)
		assert.ErrorIs(t, err, ErrNoEndpoint)
	})
}
