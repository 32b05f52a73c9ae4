package assets

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	domain "github.com/yungbote/siteproof-backend/internal/domain/assets"
	"github.com/yungbote/siteproof-backend/internal/platform/dbctx"
	"github.com/yungbote/siteproof-backend/internal/platform/logger"
)

type EdgeRepo interface {
	// InsertIfAbsent inserts each edge unless its (from, to, type) triple exists
	// and reports how many rows were new.
	InsertIfAbsent(dbc dbctx.Context, rows []*domain.Edge) (int64, error)

	ListFrom(dbc dbctx.Context, fromID string, edgeType domain.EdgeType) ([]*domain.Edge, error)
	ListTo(dbc dbctx.Context, toID string, edgeType domain.EdgeType) ([]*domain.Edge, error)
	ListTouching(dbc dbctx.Context, assetIDs []string) ([]*domain.Edge, error)
	ListByProject(dbc dbctx.Context, projectID string) ([]*domain.Edge, error)
}

type edgeRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewEdgeRepo(db *gorm.DB, baseLog *logger.Logger) EdgeRepo {
	return &edgeRepo{db: db, log: baseLog.With("repo", "EdgeRepo")}
}

func (r *edgeRepo) InsertIfAbsent(dbc dbctx.Context, rows []*domain.Edge) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	var inserted int64
	for _, row := range rows {
		res := dbc.DB(r.db).
			Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "from_asset_id"}, {Name: "to_asset_id"}, {Name: "edge_type"}},
				DoNothing: true,
			}).
			Create(row)
		if res.Error != nil {
			return inserted, res.Error
		}
		inserted += res.RowsAffected
	}
	return inserted, nil
}

func (r *edgeRepo) ListFrom(dbc dbctx.Context, fromID string, edgeType domain.EdgeType) ([]*domain.Edge, error) {
	var out []*domain.Edge
	if fromID == "" {
		return out, nil
	}
	q := dbc.DB(r.db).Where("from_asset_id = ?", fromID)
	if edgeType != "" {
		q = q.Where("edge_type = ?", edgeType)
	}
	if err := q.Order("created_at ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *edgeRepo) ListTo(dbc dbctx.Context, toID string, edgeType domain.EdgeType) ([]*domain.Edge, error) {
	var out []*domain.Edge
	if toID == "" {
		return out, nil
	}
	q := dbc.DB(r.db).Where("to_asset_id = ?", toID)
	if edgeType != "" {
		q = q.Where("edge_type = ?", edgeType)
	}
	if err := q.Order("created_at ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *edgeRepo) ListTouching(dbc dbctx.Context, assetIDs []string) ([]*domain.Edge, error) {
	var out []*domain.Edge
	if len(assetIDs) == 0 {
		return out, nil
	}
	err := dbc.DB(r.db).
		Where("from_asset_id IN ? OR to_asset_id IN ?", assetIDs, assetIDs).
		Order("created_at ASC").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *edgeRepo) ListByProject(dbc dbctx.Context, projectID string) ([]*domain.Edge, error) {
	var out []*domain.Edge
	if projectID == "" {
		return out, nil
	}
	if err := dbc.DB(r.db).Where("project_id = ?", projectID).Order("created_at ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
