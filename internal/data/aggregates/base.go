package aggregates

import (
	"context"
	"net/http"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/yungbote/siteproof-backend/internal/platform/apierr"
	"github.com/yungbote/siteproof-backend/internal/platform/dbctx"
	"github.com/yungbote/siteproof-backend/internal/platform/logger"
)

type BaseDeps struct {
	DB       *gorm.DB
	Log      *logger.Logger
	Runner   TxRunner
	Hooks    Hooks
	CASGuard CASGuard
}

func (d BaseDeps) withDefaults() BaseDeps {
	if d.Runner == nil {
		d.Runner = NewGormTxRunner(d.DB)
	}
	if d.Hooks == nil {
		d.Hooks = noopHooks{}
	}
	if d.CASGuard.db == nil {
		d.CASGuard = NewCASGuard(d.DB)
	}
	if d.Log == nil {
		d.Log = logger.Nop()
	}
	return d
}

// executeWrite runs fn in one transaction and reports the outcome through the
// hooks. Failed transactions are not retried; resubmitting is up to the caller.
func executeWrite(ctx context.Context, deps BaseDeps, op string, fn func(dbc dbctx.Context) error) error {
	start := time.Now()
	deps = deps.withDefaults()
	op = strings.TrimSpace(op)
	if op == "" {
		op = "write"
	}

	err := deps.Runner.InTx(ctx, fn)
	if isTransient(err) {
		deps.Hooks.IncTransient(op)
		deps.Log.Warn("write failed on transient database error", "op", op, "error", err)
	}

	mapped := MapError(op, err)
	if apierr.IsStatus(mapped, http.StatusConflict) {
		deps.Hooks.IncConflict(op)
	}
	deps.Hooks.ObserveOperation(op, errorStatus(mapped), time.Since(start))
	return mapped
}
