package services

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/yungbote/siteproof-backend/internal/data/aggregates"
	"github.com/yungbote/siteproof-backend/internal/data/repos"
	"github.com/yungbote/siteproof-backend/internal/data/repos/testutil"
	policy "github.com/yungbote/siteproof-backend/internal/domain/access"
	"github.com/yungbote/siteproof-backend/internal/domain/assets"
	"github.com/yungbote/siteproof-backend/internal/platform/ctxutil"
)

type recordingProjector struct {
	mu     sync.Mutex
	assets []*assets.Asset
	edges  []*assets.Edge
	calls  int
	err    error
}

func (p *recordingProjector) Enabled() bool { return true }

func (p *recordingProjector) SyncAssets(_ context.Context, rows []*assets.Asset, edges []*assets.Edge) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	p.assets = append(p.assets, rows...)
	p.edges = append(p.edges, edges...)
	return p.err
}

type testEnv struct {
	db        *gorm.DB
	repos     repos.Set
	runner    aggregates.TxRunner
	access    AccessService
	writer    AssetWriter
	register  RegisterService
	status    StatusService
	projector *recordingProjector
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := testutil.SQLite(t)
	log := testutil.Logger(t)
	set := repos.NewSet(db, log)
	v, err := assets.NewContentValidator()
	require.NoError(t, err)
	p, err := policy.DefaultPolicy()
	require.NoError(t, err)

	runner := aggregates.NewGormTxRunner(db)
	agg := aggregates.NewAssetAggregate(aggregates.AssetAggregateDeps{
		Base:      aggregates.BaseDeps{DB: db, Log: log, Runner: runner},
		Assets:    set.Assets,
		Edges:     set.Edges,
		Audit:     set.Audit,
		Validator: v,
	})
	proj := &recordingProjector{}
	writer := NewAssetWriter(log, agg, proj)
	register := NewRegisterService(log, set.Assets)
	return &testEnv{
		db:        db,
		repos:     set,
		runner:    runner,
		access:    NewAccessService(log, set.Access, p),
		writer:    writer,
		register:  register,
		status:    NewStatusService(log, set.Assets, writer),
		projector: proj,
	}
}

func userCtx(userID string) context.Context {
	return ctxutil.WithRequestData(context.Background(), &ctxutil.RequestData{UserID: userID})
}
