package services

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/siteproof-backend/internal/domain/assets"
	"github.com/yungbote/siteproof-backend/internal/platform/apierr"
)

func TestAssetRevisions(t *testing.T) {
	env, svc := newAssetFixture(t)
	ctx := userCtx("u1")

	created, err := svc.Create(ctx, "u1", lotSpec("lot-1", "L-001"))
	require.NoError(t, err)
	v1 := created.Asset

	rev, err := svc.Revise(ctx, "u1", v1.ID, CreateRevisionInput{CommitMessage: "rev B", RevisionCode: "B"})
	require.NoError(t, err)
	require.False(t, rev.Replayed)
	v2 := rev.Asset
	assert.Equal(t, 2, v2.Version)
	assert.Equal(t, "L-001", v2.DocumentNumber)
	assert.Equal(t, "B", v2.RevisionCode)
	assert.Equal(t, assets.MachineFor(assets.TypeLot).Initial, v2.Status)
	assert.JSONEq(t, string(v1.Content), string(v2.Content))
	require.Len(t, rev.Edges, 2)

	again, err := svc.Revise(ctx, "u1", v1.ID, CreateRevisionInput{CommitMessage: "rev B"})
	require.NoError(t, err)
	assert.True(t, again.Replayed)
	assert.Equal(t, v2.ID, again.Asset.ID)

	_, err = svc.Revise(ctx, "u1", v1.ID, CreateRevisionInput{IdempotencyKey: "fork"})
	assert.Equal(t, http.StatusConflict, apierr.StatusOf(err), "only the current version can be revised")

	third, err := svc.Revise(ctx, "u1", v2.ID, CreateRevisionInput{CommitMessage: "rev C"})
	require.NoError(t, err)
	v3 := third.Asset
	assert.Equal(t, 3, v3.Version)

	var versionOf []assets.Edge
	require.NoError(t, env.db.Where("edge_type = ?", assets.EdgeVersionOf).Find(&versionOf).Error)
	require.Len(t, versionOf, 2)
	for _, e := range versionOf {
		assert.Equal(t, v1.ID, e.ToAssetID, "every version points at the first")
	}

	for _, from := range []string{v1.ID, v3.ID} {
		revs, err := svc.Revisions(ctx, "u1", from)
		require.NoError(t, err)
		require.Len(t, revs, 3)
		assert.Equal(t, []int{3, 2, 1}, []int{revs[0].Version, revs[1].Version, revs[2].Version})
		assert.True(t, revs[0].IsCurrent)
		assert.False(t, revs[1].IsCurrent)
		assert.False(t, revs[2].IsCurrent)
		assert.Equal(t, "rev C", revs[0].CommitMessage)
		assert.Equal(t, "rev B", revs[1].CommitMessage)
	}

	_, err = svc.Revisions(userCtx("u2"), "u2", v1.ID)
	assert.Equal(t, http.StatusNotFound, apierr.StatusOf(err))
	_, err = svc.Revise(userCtx("u2"), "u2", v3.ID, CreateRevisionInput{})
	assert.Equal(t, http.StatusNotFound, apierr.StatusOf(err))
}
