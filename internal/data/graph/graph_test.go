package graph

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"github.com/yungbote/siteproof-backend/internal/domain/assets"
	"github.com/yungbote/siteproof-backend/internal/platform/logger"
	"github.com/yungbote/siteproof-backend/internal/platform/neo4jdb"
)

func TestParseKind(t *testing.T) {
	for _, k := range AllKinds() {
		got, err := ParseKind(strings.ToUpper(string(k)))
		require.NoError(t, err)
		assert.Equal(t, k, got)
		assert.True(t, Projected(k.AssetType()), k)
	}
	_, err := ParseKind("timesheets")
	assert.Error(t, err)
	assert.False(t, Projected(assets.TypeTimesheet))
}

func TestBuildProjectionGroupsByLabelAndType(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	rows := []*assets.Asset{
		{ID: "lot-1", ProjectID: "p1", Type: assets.TypeLot, DocumentNumber: "L-001", Status: "open", Version: 1, Content: datatypes.JSON(`{"work_type":"earthworks"}`)},
		{ID: "wbs-1", ProjectID: "p1", Type: assets.TypeWBSNode, Name: "1.1", IsDeleted: true},
		{ID: "ts-1", ProjectID: "p1", Type: assets.TypeTimesheet},
		nil,
	}
	edges := []*assets.Edge{
		{ID: "e1", ProjectID: "p1", FromAssetID: "wbs-1", ToAssetID: "lot-1", EdgeType: assets.EdgeParentOf},
		{ID: "e2", ProjectID: "p1", FromAssetID: "lot-1", ToAssetID: "wbs-1", EdgeType: assets.EdgeType("NOT_A_TYPE")},
	}
	p := BuildProjection(rows, edges, now)

	assert.Equal(t, []string{"Lot", "WBSNode"}, p.SortedLabels())
	assert.Equal(t, 2, p.NodeCount())
	lot := p.Nodes["Lot"][0]
	assert.Equal(t, "L-001", lot["document_number"])
	assert.Equal(t, int64(1), lot["version"])
	assert.Equal(t, `{"work_type":"earthworks"}`, lot["content_json"])
	assert.Equal(t, now.Format(time.RFC3339Nano), lot["synced_at"])
	assert.Equal(t, true, p.Nodes["WBSNode"][0]["is_deleted"])

	assert.Equal(t, []string{"PARENT_OF"}, p.SortedRelTypes())
	assert.Equal(t, "wbs-1", p.Rels["PARENT_OF"][0]["from_id"])
}

func TestAssetFromPropsRoundTripsProjection(t *testing.T) {
	created := time.Date(2026, 2, 3, 4, 5, 6, 0, time.UTC)
	src := &assets.Asset{
		ID: "lot-1", ProjectID: "p1", Type: assets.TypeLot, Name: "Lot 1", DocumentNumber: "L-001",
		Status: "closed", Version: 3, Content: datatypes.JSON(`{"wbs_node":"1.1"}`), CreatedAt: created, UpdatedAt: created,
	}
	p := BuildProjection([]*assets.Asset{src}, nil, time.Now())
	got := AssetFromProps(p.Nodes["Lot"][0])

	assert.Equal(t, src.ID, got.ID)
	assert.Equal(t, src.DocumentNumber, got.DocumentNumber)
	assert.Equal(t, "closed", got.Status)
	assert.Equal(t, 3, got.Version)
	assert.JSONEq(t, `{"wbs_node":"1.1"}`, string(got.Content))
	assert.True(t, created.Equal(got.CreatedAt))
}

func TestListQueryUsesKindLabelAndOrder(t *testing.T) {
	q, err := ListQuery(KindPhotos)
	require.NoError(t, err)
	assert.Contains(t, q, "MATCH (n:Photo {project_id: $projectId})")
	assert.Contains(t, q, "ORDER BY n.created_at DESC")

	q, err = ListQuery(KindLots)
	require.NoError(t, err)
	assert.Contains(t, q, "ORDER BY n.document_number ASC")

	_, err = ListQuery(Kind("drop"))
	assert.Error(t, err)
}

func TestDisabledGraph(t *testing.T) {
	var client *neo4jdb.Client
	p := NewProjector(client, logger.Nop())
	assert.False(t, p.Enabled())
	assert.NoError(t, p.SyncAssets(context.Background(), []*assets.Asset{{ID: "x", Type: assets.TypeLot}}, nil))

	r := NewReader(client, logger.Nop())
	assert.False(t, r.Enabled())
	_, err := r.List(context.Background(), KindLots, "p1", ListFilter{})
	assert.True(t, errors.Is(err, neo4jdb.ErrDisabled))
}
