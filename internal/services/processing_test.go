package services

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/siteproof-backend/internal/data/repos/testutil"
	"github.com/yungbote/siteproof-backend/internal/domain/assets"
	"github.com/yungbote/siteproof-backend/internal/domain/processing"
	"github.com/yungbote/siteproof-backend/internal/platform/apierr"
	"github.com/yungbote/siteproof-backend/internal/platform/langgraph"
)

type fakeLangGraph struct {
	failRuns atomic.Bool
	lastRun  atomic.Value
}

func (f *fakeLangGraph) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /threads", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"thread_id":"th-1"}`)
	})
	mux.HandleFunc("POST /threads/{thread}/runs", func(w http.ResponseWriter, r *http.Request) {
		if f.failRuns.Load() {
			http.Error(w, "assistant missing", http.StatusNotFound)
			return
		}
		raw, _ := io.ReadAll(r.Body)
		f.lastRun.Store(string(raw))
		_, _ = io.WriteString(w, `{"run_id":"run-1","thread_id":"th-1","status":"running"}`)
	})
	mux.HandleFunc("GET /threads/{thread}/runs/{run}/stream", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		_, _ = io.WriteString(w, "event: values\ndata: {\"step\":1}\n\n")
	})
	mux.HandleFunc("POST /api/chat/stream", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "overloaded", http.StatusServiceUnavailable)
	})
	return mux
}

func newProcessingFixture(t *testing.T) (*testEnv, ProcessingService, *fakeLangGraph) {
	t.Helper()
	env := newTestEnv(t)
	fake := &fakeLangGraph{}
	srv := httptest.NewServer(fake.handler())
	t.Cleanup(srv.Close)
	ai := langgraph.New(langgraph.Config{BaseURL: srv.URL, GraphRAGURL: srv.URL, AssistantID: "orchestrator"}, testutil.Logger(t))
	return env, NewProcessingService(testutil.Logger(t), ai, env.repos.Runs, env.repos.Assets), fake
}

func TestProcessingTriggerAndStatus(t *testing.T) {
	ctx := userCtx("u1")
	env, svc, fake := newProcessingFixture(t)

	st, err := svc.Status(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, processing.RunStatusIdle, st.Status)
	assert.Nil(t, st.Run)

	run, err := svc.Trigger(ctx, "p1", []string{"d1", " ", "d2"})
	require.NoError(t, err)
	assert.Equal(t, "th-1", run.ThreadID)
	assert.Equal(t, "run-1", run.RunUID)
	assert.Equal(t, "running", run.Status)
	assert.Equal(t, "u1", run.TriggeredBy)

	var sent struct {
		AssistantID string             `json:"assistant_id"`
		Input       langgraph.RunInput `json:"input"`
	}
	require.NoError(t, json.Unmarshal([]byte(fake.lastRun.Load().(string)), &sent))
	assert.Equal(t, "orchestrator", sent.AssistantID)
	assert.Equal(t, []string{"d1", "d2"}, sent.Input.DocumentIDs)

	doc := testutil.SeedAsset(t, ctx, env.db, "p1", assets.TypeDocument, nil)
	testutil.SeedEdge(t, ctx, env.db, "p1", doc.ID, run.ID, assets.EdgeOutputOf)

	st, err = svc.Status(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, "running", st.Status)
	assert.EqualValues(t, 1, st.Outputs)
}

func TestProcessingTriggerFailureRecordsRun(t *testing.T) {
	ctx := userCtx("u1")
	env, svc, fake := newProcessingFixture(t)
	fake.failRuns.Store(true)

	_, err := svc.Trigger(ctx, "p1", []string{"d1"})
	require.Error(t, err)
	assert.Equal(t, http.StatusInternalServerError, apierr.StatusOf(err))

	var row processing.Run
	require.NoError(t, env.db.Where("project_id = ?", "p1").First(&row).Error)
	assert.Equal(t, processing.RunStatusFailed, row.Status)
	assert.Equal(t, "th-1", row.ThreadID)
	assert.Contains(t, row.Error, "404")
	assert.NotNil(t, row.CompletedAt)

	_, err = svc.Trigger(ctx, "p1", nil)
	assert.Equal(t, http.StatusBadRequest, apierr.StatusOf(err))
}

func TestProcessingStreams(t *testing.T) {
	ctx := userCtx("u1")
	_, svc, _ := newProcessingFixture(t)

	_, err := svc.StreamRun(ctx, "p1", "run-1")
	assert.Equal(t, http.StatusNotFound, apierr.StatusOf(err), "run must be known to the project")

	_, err = svc.Trigger(ctx, "p1", []string{"d1"})
	require.NoError(t, err)
	body, err := svc.StreamRun(ctx, "p1", "run-1")
	require.NoError(t, err)
	raw, err := io.ReadAll(body)
	require.NoError(t, body.Close())
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(raw), "event: values"))

	_, err = svc.ChatStream(ctx, []byte(`{"message":"hi"}`))
	assert.Equal(t, http.StatusInternalServerError, apierr.StatusOf(err))
}

func TestProcessingDisabled(t *testing.T) {
	env := newTestEnv(t)
	svc := NewProcessingService(testutil.Logger(t), langgraph.New(langgraph.Config{}, testutil.Logger(t)), env.repos.Runs, env.repos.Assets)
	_, err := svc.Trigger(context.Background(), "p1", []string{"d1"})
	assert.Equal(t, http.StatusInternalServerError, apierr.StatusOf(err))
}
