package assets

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/siteproof-backend/internal/data/repos/testutil"
	domain "github.com/yungbote/siteproof-backend/internal/domain/assets"
	"github.com/yungbote/siteproof-backend/internal/platform/dbctx"
)

func TestEdgeRepoInsertIfAbsentSkipsExistingTriples(t *testing.T) {
	ctx := context.Background()
	db := testutil.SQLite(t)
	repo := NewEdgeRepo(db, testutil.Logger(t))
	dbc := dbctx.New(ctx)

	mk := func(to string) *domain.Edge {
		return &domain.Edge{
			ID: uuid.NewString(), ProjectID: "p1", FromAssetID: "a", ToAssetID: to,
			EdgeType: domain.EdgeReferences, CreatedAt: time.Now().UTC(),
		}
	}

	n, err := repo.InsertIfAbsent(dbc, []*domain.Edge{mk("b"), mk("c")})
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	n, err = repo.InsertIfAbsent(dbc, []*domain.Edge{mk("b"), mk("c"), mk("d")})
	require.NoError(t, err)
	assert.EqualValues(t, 1, n, "only the new triple is inserted")

	rows, err := repo.ListFrom(dbc, "a", domain.EdgeReferences)
	require.NoError(t, err)
	assert.Len(t, rows, 3)

	touching, err := repo.ListTouching(dbc, []string{"d"})
	require.NoError(t, err)
	assert.Len(t, touching, 1)

	incoming, err := repo.ListTo(dbc, "b", domain.EdgeReferences)
	require.NoError(t, err)
	require.Len(t, incoming, 1)
	assert.Equal(t, "a", incoming[0].FromAssetID)
	none, err := repo.ListTo(dbc, "b", domain.EdgeSupersedes)
	require.NoError(t, err)
	assert.Empty(t, none)
}
