package assets

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"github.com/yungbote/siteproof-backend/internal/data/repos/testutil"
	domain "github.com/yungbote/siteproof-backend/internal/domain/assets"
	"github.com/yungbote/siteproof-backend/internal/platform/dbctx"
)

func TestAssetRepoInsertIfAbsent(t *testing.T) {
	ctx := context.Background()
	db := testutil.SQLite(t)
	repo := NewAssetRepo(db, testutil.Logger(t))
	dbc := dbctx.New(ctx)

	now := time.Now().UTC()
	mk := func() *domain.Asset {
		return &domain.Asset{
			ID: uuid.NewString(), ProjectID: "p1", Type: domain.TypeTimesheet, Version: 1,
			Content: datatypes.JSON(`{"user_id":"u1","hours":8}`), IdempotencyKey: "ts-1",
			CreatedAt: now, UpdatedAt: now,
		}
	}

	inserted, err := repo.InsertIfAbsent(dbc, mk())
	require.NoError(t, err)
	assert.True(t, inserted)

	inserted, err = repo.InsertIfAbsent(dbc, mk())
	require.NoError(t, err)
	assert.False(t, inserted, "second insert with the same key must be a no-op")

	got, err := repo.GetByIdempotencyKey(dbc, "p1", "ts-1")
	require.NoError(t, err)
	require.NotNil(t, got)

	var n int64
	require.NoError(t, db.Model(&domain.Asset{}).Count(&n).Error)
	assert.EqualValues(t, 1, n)
}

func TestAssetRepoListOnlyMatchingRegister(t *testing.T) {
	ctx := context.Background()
	db := testutil.SQLite(t)
	repo := NewAssetRepo(db, testutil.Logger(t))
	dbc := dbctx.New(ctx)

	base := time.Now().UTC().Add(-time.Hour)
	at := func(i int) func(*domain.Asset) {
		return func(a *domain.Asset) { a.CreatedAt = base.Add(time.Duration(i) * time.Minute) }
	}
	keep1 := testutil.SeedAsset(t, ctx, db, "p1", domain.TypeLot, at(1))
	keep2 := testutil.SeedAsset(t, ctx, db, "p1", domain.TypeLot, at(2))
	testutil.SeedAsset(t, ctx, db, "p1", domain.TypeLot, func(a *domain.Asset) { at(3)(a); a.IsDeleted = true })
	testutil.SeedAsset(t, ctx, db, "p2", domain.TypeLot, at(4))
	testutil.SeedAsset(t, ctx, db, "p1", domain.TypeSample, at(5))

	rows, err := repo.List(dbc, Filter{ProjectIDs: []string{"p1"}, Type: domain.TypeLot})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, keep2.ID, rows[0].ID, "newest first")
	assert.Equal(t, keep1.ID, rows[1].ID)
	for _, r := range rows {
		assert.Equal(t, "p1", r.ProjectID)
		assert.Equal(t, domain.TypeLot, r.Type)
		assert.False(t, r.IsDeleted)
	}
}

func TestAssetRepoListFilters(t *testing.T) {
	ctx := context.Background()
	db := testutil.SQLite(t)
	repo := NewAssetRepo(db, testutil.Logger(t))
	dbc := dbctx.New(ctx)

	mine := testutil.SeedAsset(t, ctx, db, "p1", domain.TypeTimesheet, func(a *domain.Asset) {
		a.Content = datatypes.JSON(`{"user_id":"u1","hours":8}`)
	})
	testutil.SeedAsset(t, ctx, db, "p1", domain.TypeTimesheet, func(a *domain.Asset) {
		a.Content = datatypes.JSON(`{"user_id":"u2","hours":4}`)
	})

	rows, err := repo.List(dbc, Filter{ProjectIDs: []string{"p1"}, Type: domain.TypeTimesheet, UserID: "u1"})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, mine.ID, rows[0].ID)

	parent := testutil.SeedAsset(t, ctx, db, "p1", domain.TypeLot, nil)
	child := testutil.SeedAsset(t, ctx, db, "p1", domain.TypeSample, nil)
	testutil.SeedAsset(t, ctx, db, "p1", domain.TypeSample, nil)
	testutil.SeedEdge(t, ctx, db, "p1", parent.ID, child.ID, domain.EdgeParentOf)

	rows, err = repo.List(dbc, Filter{ProjectIDs: []string{"p1"}, Type: domain.TypeSample, ParentID: parent.ID})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, child.ID, rows[0].ID)
}

func TestAssetRepoDocumentNumberOrder(t *testing.T) {
	ctx := context.Background()
	db := testutil.SQLite(t)
	repo := NewAssetRepo(db, testutil.Logger(t))
	dbc := dbctx.New(ctx)

	for _, num := range []string{"ITP-003", "ITP-001", "ITP-002"} {
		num := num
		testutil.SeedAsset(t, ctx, db, "p1", domain.TypeITPDocument, func(a *domain.Asset) { a.DocumentNumber = num })
	}
	rows, err := repo.List(dbc, Filter{ProjectIDs: []string{"p1"}, Type: domain.TypeITPDocument, Order: OrderDocumentNumber})
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"ITP-001", "ITP-002", "ITP-003"}, []string{rows[0].DocumentNumber, rows[1].DocumentNumber, rows[2].DocumentNumber})
}

func TestAssetRepoCounts(t *testing.T) {
	ctx := context.Background()
	db := testutil.SQLite(t)
	repo := NewAssetRepo(db, testutil.Logger(t))
	dbc := dbctx.New(ctx)

	testutil.SeedAsset(t, ctx, db, "p1", domain.TypeLot, func(a *domain.Asset) { a.Status = "open" })
	testutil.SeedAsset(t, ctx, db, "p1", domain.TypeLot, func(a *domain.Asset) { a.Status = "closed" })
	testutil.SeedAsset(t, ctx, db, "p1", domain.TypeLot, func(a *domain.Asset) { a.Status = "closed" })

	stats, err := repo.CountByStatus(dbc, "p1", domain.TypeLot)
	require.NoError(t, err)
	assert.EqualValues(t, 1, stats["open"])
	assert.EqualValues(t, 2, stats["closed"])

	n, err := repo.Count(dbc, []string{"p1"}, domain.TypeLot, []string{"closed"})
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	doc := testutil.SeedAsset(t, ctx, db, "p1", domain.TypeDocument, nil)
	testutil.SeedEdge(t, ctx, db, "p1", doc.ID, "run-1", domain.EdgeOutputOf)
	outputs, err := repo.CountOutputsOf(dbc, "run-1")
	require.NoError(t, err)
	assert.EqualValues(t, 1, outputs)
}

func TestAssetRepoSoftDelete(t *testing.T) {
	ctx := context.Background()
	db := testutil.SQLite(t)
	repo := NewAssetRepo(db, testutil.Logger(t))
	dbc := dbctx.New(ctx)

	a := testutil.SeedAsset(t, ctx, db, "p1", domain.TypePhoto, nil)
	require.NoError(t, repo.SoftDelete(dbc, a.ID))

	got, err := repo.GetInProject(dbc, "p1", a.ID)
	require.NoError(t, err)
	assert.Nil(t, got)

	raw, err := repo.GetByID(dbc, a.ID)
	require.NoError(t, err)
	require.NotNil(t, raw)
	assert.True(t, raw.IsDeleted)
}
