package aggregates

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/siteproof-backend/internal/platform/apierr"
	"github.com/yungbote/siteproof-backend/internal/platform/dbctx"
)

type scriptedRunner struct {
	errs  []error
	calls int
}

func (r *scriptedRunner) InTx(ctx context.Context, fn func(dbc dbctx.Context) error) error {
	r.calls++
	if len(r.errs) == 0 {
		return fn(dbctx.New(ctx))
	}
	err := r.errs[0]
	r.errs = r.errs[1:]
	return err
}

type recordingHooks struct {
	noopHooks
	statuses  []string
	transient int
	conflicts int
}

func (h *recordingHooks) ObserveOperation(_ string, status string, _ time.Duration) {
	h.statuses = append(h.statuses, status)
}
func (h *recordingHooks) IncTransient(string) { h.transient++ }
func (h *recordingHooks) IncConflict(string)  { h.conflicts++ }

func TestExecuteWriteRunsOnce(t *testing.T) {
	runner := &scriptedRunner{}
	hooks := &recordingHooks{}
	ran := false
	err := executeWrite(context.Background(), BaseDeps{Runner: runner, Hooks: hooks}, "op", func(dbctx.Context) error {
		ran = true
		return nil
	})
	require.NoError(t, err)
	assert.True(t, ran)
	assert.Equal(t, 1, runner.calls)
	assert.Equal(t, []string{"success"}, hooks.statuses)
}

func TestExecuteWriteDoesNotRetryTransientFailures(t *testing.T) {
	runner := &scriptedRunner{errs: []error{TransientError("deadlock"), TransientError("deadlock")}}
	hooks := &recordingHooks{}
	err := executeWrite(context.Background(), BaseDeps{Runner: runner, Hooks: hooks}, "op", func(dbctx.Context) error { return nil })
	require.Error(t, err)
	assert.Equal(t, 1, runner.calls)
	assert.Equal(t, 1, hooks.transient)
	assert.Equal(t, http.StatusInternalServerError, apierr.StatusOf(err))
	assert.Equal(t, []string{"transient"}, hooks.statuses)
}

func TestExecuteWriteDoesNotRetryConflicts(t *testing.T) {
	runner := &scriptedRunner{errs: []error{ConflictError("stale")}}
	hooks := &recordingHooks{}
	err := executeWrite(context.Background(), BaseDeps{Runner: runner, Hooks: hooks}, "op", func(dbctx.Context) error { return nil })
	assert.Equal(t, http.StatusConflict, apierr.StatusOf(err))
	assert.Equal(t, 1, runner.calls)
	assert.Equal(t, 1, hooks.conflicts)
	assert.Equal(t, []string{"conflict"}, hooks.statuses)
}

func TestGormTxRunnerWithoutDB(t *testing.T) {
	err := NewGormTxRunner(nil).InTx(context.Background(), func(dbctx.Context) error { return errors.New("unreachable") })
	assert.Equal(t, http.StatusInternalServerError, apierr.StatusOf(err))
}
