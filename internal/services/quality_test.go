package services

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/siteproof-backend/internal/data/repos/testutil"
	"github.com/yungbote/siteproof-backend/internal/domain/assets"
	"github.com/yungbote/siteproof-backend/internal/platform/apierr"
)

func TestQualityCreateITP(t *testing.T) {
	ctx := userCtx("u1")
	env := newTestEnv(t)
	tpl := testutil.SeedAsset(t, ctx, env.db, "p1", assets.TypeITPTemplate, func(a *assets.Asset) {
		a.Content = []byte(`{"title":"Earthworks template"}`)
	})
	lot := testutil.SeedAsset(t, ctx, env.db, "p1", assets.TypeLot, nil)
	svc := NewQualityService(testutil.Logger(t), env.register, env.writer, env.repos.Assets)

	in := CreateITPInput{
		DocumentNumber: "ITP-001",
		Name:           "Earthworks ITP",
		RevisionCode:   "A",
		TemplateID:     tpl.ID,
		Content:        json.RawMessage(`{"wbs_node":"1.2"}`),
	}
	out, err := svc.CreateITP(ctx, "p1", in)
	require.NoError(t, err)
	assert.False(t, out.Replayed)
	assert.Equal(t, assets.TypeITPDocument, out.Asset.Type)
	assert.Equal(t, "itp:p1:ITP-001:A", out.Asset.IdempotencyKey)
	assert.Equal(t, "Earthworks ITP", assets.ContentString(out.Asset.Content, "title"))
	assert.Equal(t, tpl.ID, assets.ContentString(out.Asset.Content, "template_id"))
	require.Len(t, out.Edges, 1)
	assert.Equal(t, assets.EdgeInstanceOf, out.Edges[0].EdgeType)

	again, err := svc.CreateITP(ctx, "p1", in)
	require.NoError(t, err)
	assert.True(t, again.Replayed)
	assert.Equal(t, out.Asset.ID, again.Asset.ID)

	_, err = svc.CreateITP(ctx, "p1", CreateITPInput{Name: "x", TemplateID: lot.ID})
	assert.Equal(t, http.StatusBadRequest, apierr.StatusOf(err), "template must be an itp_template")
	_, err = svc.CreateITP(ctx, "p2", CreateITPInput{Name: "x", TemplateID: tpl.ID})
	assert.Equal(t, http.StatusBadRequest, apierr.StatusOf(err), "template of another project")
	_, err = svc.CreateITP(ctx, "p1", CreateITPInput{Content: json.RawMessage(`[1]`)})
	assert.Equal(t, http.StatusBadRequest, apierr.StatusOf(err))
}

func TestQualityRegisterAndLots(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	testutil.SeedAsset(t, ctx, env.db, "p1", assets.TypeITPDocument, func(a *assets.Asset) {
		a.DocumentNumber = "ITP-002"
		a.Content = []byte(`{"title":"b","wbs_node":"1.2"}`)
	})
	testutil.SeedAsset(t, ctx, env.db, "p1", assets.TypeITPDocument, func(a *assets.Asset) {
		a.DocumentNumber = "ITP-001"
		a.Status = "approved"
		a.Content = []byte(`{"title":"a","wbs_node":"3"}`)
	})
	testutil.SeedAsset(t, ctx, env.db, "p1", assets.TypeLot, func(a *assets.Asset) { a.Status = "closed" })
	testutil.SeedAsset(t, ctx, env.db, "p1", assets.TypeLot, nil)
	svc := NewQualityService(testutil.Logger(t), env.register, env.writer, env.repos.Assets)

	reg, err := svc.ITPRegister(ctx, "p1", "", "")
	require.NoError(t, err)
	require.Len(t, reg.Rows, 2)
	assert.Equal(t, "ITP-001", reg.Rows[0].DocumentNumber)
	assert.EqualValues(t, 2, reg.Stats.Total)
	assert.EqualValues(t, 1, reg.Stats.ByStatus["approved"])

	filtered, err := svc.ITPRegister(ctx, "p1", "", "1.2")
	require.NoError(t, err)
	require.Len(t, filtered.Rows, 1)
	assert.Equal(t, "ITP-002", filtered.Rows[0].DocumentNumber)

	lots, err := svc.Lots(ctx, "p1", "closed")
	require.NoError(t, err)
	assert.Len(t, lots, 1)
}
