package assets

import (
	"strings"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	domain "github.com/yungbote/siteproof-backend/internal/domain/assets"
	"github.com/yungbote/siteproof-backend/internal/platform/dbctx"
	"github.com/yungbote/siteproof-backend/internal/platform/logger"
)

type Order int

const (
	OrderNewest Order = iota
	OrderDocumentNumber
)

const (
	DefaultLimit = 100
	MaxLimit     = 500
)

// Filter selects non-deleted assets of one type within one or more projects.
type Filter struct {
	ProjectIDs     []string
	Type           domain.Type
	ParentID       string
	UserID         string
	Status         string
	DocumentNumber string
	WBSNode        string
	Order          Order
	Limit          int
	Offset         int
}

func (f Filter) limit() int {
	switch {
	case f.Limit <= 0:
		return DefaultLimit
	case f.Limit > MaxLimit:
		return MaxLimit
	default:
		return f.Limit
	}
}

type AssetRepo interface {
	// InsertIfAbsent inserts row unless (project_id, idempotency_key) exists.
	InsertIfAbsent(dbc dbctx.Context, row *domain.Asset) (bool, error)

	GetByID(dbc dbctx.Context, id string) (*domain.Asset, error)
	GetInProject(dbc dbctx.Context, projectID, id string) (*domain.Asset, error)
	GetByIdempotencyKey(dbc dbctx.Context, projectID, key string) (*domain.Asset, error)
	GetByDocumentNumber(dbc dbctx.Context, projectID string, typ domain.Type, number string) (*domain.Asset, error)
	GetByIDs(dbc dbctx.Context, ids []string) ([]*domain.Asset, error)

	List(dbc dbctx.Context, f Filter) ([]*domain.Asset, error)
	ListByProject(dbc dbctx.Context, projectID string, types []domain.Type) ([]*domain.Asset, error)
	CountByStatus(dbc dbctx.Context, projectID string, typ domain.Type) (map[string]int64, error)
	Count(dbc dbctx.Context, projectIDs []string, typ domain.Type, statuses []string) (int64, error)
	CountOutputsOf(dbc dbctx.Context, targetID string) (int64, error)

	UpdateFields(dbc dbctx.Context, id string, updates map[string]interface{}) error
	SoftDelete(dbc dbctx.Context, id string) error
}

type assetRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewAssetRepo(db *gorm.DB, baseLog *logger.Logger) AssetRepo {
	return &assetRepo{db: db, log: baseLog.With("repo", "AssetRepo")}
}

func (r *assetRepo) InsertIfAbsent(dbc dbctx.Context, row *domain.Asset) (bool, error) {
	res := dbc.DB(r.db).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "project_id"}, {Name: "idempotency_key"}},
			DoNothing: true,
		}).
		Create(row)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *assetRepo) first(dbc dbctx.Context, query string, args ...interface{}) (*domain.Asset, error) {
	var out []*domain.Asset
	if err := dbc.DB(r.db).Where(query, args...).Limit(1).Find(&out).Error; err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out[0], nil
}

func (r *assetRepo) GetByID(dbc dbctx.Context, id string) (*domain.Asset, error) {
	if strings.TrimSpace(id) == "" {
		return nil, nil
	}
	return r.first(dbc, "id = ?", id)
}

func (r *assetRepo) GetInProject(dbc dbctx.Context, projectID, id string) (*domain.Asset, error) {
	if projectID == "" || id == "" {
		return nil, nil
	}
	return r.first(dbc, "id = ? AND project_id = ? AND is_deleted = ?", id, projectID, false)
}

func (r *assetRepo) GetByIdempotencyKey(dbc dbctx.Context, projectID, key string) (*domain.Asset, error) {
	if projectID == "" || key == "" {
		return nil, nil
	}
	return r.first(dbc, "project_id = ? AND idempotency_key = ?", projectID, key)
}

func (r *assetRepo) GetByDocumentNumber(dbc dbctx.Context, projectID string, typ domain.Type, number string) (*domain.Asset, error) {
	if projectID == "" || number == "" {
		return nil, nil
	}
	var out []*domain.Asset
	err := dbc.DB(r.db).
		Where("project_id = ? AND type = ? AND document_number = ? AND is_deleted = ?", projectID, typ, number, false).
		Order("version DESC, created_at DESC").
		Limit(1).
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out[0], nil
}

func (r *assetRepo) GetByIDs(dbc dbctx.Context, ids []string) ([]*domain.Asset, error) {
	var out []*domain.Asset
	if len(ids) == 0 {
		return out, nil
	}
	if err := dbc.DB(r.db).Where("id IN ?", ids).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *assetRepo) scoped(dbc dbctx.Context, f Filter) *gorm.DB {
	q := dbc.DB(r.db).Model(&domain.Asset{}).
		Where("project_id IN ?", f.ProjectIDs).
		Where("type = ?", f.Type).
		Where("is_deleted = ?", false)
	if f.ParentID != "" {
		q = q.Where("id IN (SELECT to_asset_id FROM asset_edges WHERE from_asset_id = ? AND edge_type = ?)", f.ParentID, domain.EdgeParentOf)
	}
	if f.UserID != "" {
		q = q.Where(datatypes.JSONQuery("content").Equals(f.UserID, "user_id"))
	}
	if f.WBSNode != "" {
		q = q.Where(datatypes.JSONQuery("content").Equals(f.WBSNode, "wbs_node"))
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.DocumentNumber != "" {
		q = q.Where("document_number = ?", f.DocumentNumber)
	}
	return q
}

func (r *assetRepo) List(dbc dbctx.Context, f Filter) ([]*domain.Asset, error) {
	out := []*domain.Asset{}
	if len(f.ProjectIDs) == 0 || f.Type == "" {
		return out, nil
	}
	q := r.scoped(dbc, f)
	switch f.Order {
	case OrderDocumentNumber:
		q = q.Order("document_number ASC").Order("id ASC")
	default:
		q = q.Order("created_at DESC").Order("id DESC")
	}
	if err := q.Limit(f.limit()).Offset(f.Offset).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *assetRepo) ListByProject(dbc dbctx.Context, projectID string, types []domain.Type) ([]*domain.Asset, error) {
	var out []*domain.Asset
	if projectID == "" {
		return out, nil
	}
	q := dbc.DB(r.db).Where("project_id = ?", projectID)
	if len(types) > 0 {
		q = q.Where("type IN ?", types)
	}
	if err := q.Order("created_at ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *assetRepo) CountByStatus(dbc dbctx.Context, projectID string, typ domain.Type) (map[string]int64, error) {
	var rows []struct {
		Status string
		N      int64
	}
	err := dbc.DB(r.db).Model(&domain.Asset{}).
		Select("status, COUNT(*) AS n").
		Where("project_id = ? AND type = ? AND is_deleted = ?", projectID, typ, false).
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make(map[string]int64, len(rows))
	for _, row := range rows {
		out[row.Status] = row.N
	}
	return out, nil
}

func (r *assetRepo) Count(dbc dbctx.Context, projectIDs []string, typ domain.Type, statuses []string) (int64, error) {
	if len(projectIDs) == 0 {
		return 0, nil
	}
	q := dbc.DB(r.db).Model(&domain.Asset{}).
		Where("project_id IN ? AND type = ? AND is_deleted = ?", projectIDs, typ, false)
	if len(statuses) > 0 {
		q = q.Where("status IN ?", statuses)
	}
	var n int64
	if err := q.Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}

func (r *assetRepo) CountOutputsOf(dbc dbctx.Context, targetID string) (int64, error) {
	if targetID == "" {
		return 0, nil
	}
	var n int64
	err := dbc.DB(r.db).Model(&domain.Asset{}).
		Joins("JOIN asset_edges e ON e.from_asset_id = assets.id").
		Where("e.to_asset_id = ? AND e.edge_type = ? AND assets.is_deleted = ?", targetID, domain.EdgeOutputOf, false).
		Count(&n).Error
	return n, err
}

func (r *assetRepo) UpdateFields(dbc dbctx.Context, id string, updates map[string]interface{}) error {
	if id == "" || len(updates) == 0 {
		return nil
	}
	if _, ok := updates["updated_at"]; !ok {
		updates["updated_at"] = time.Now().UTC()
	}
	return dbc.DB(r.db).Model(&domain.Asset{}).Where("id = ?", id).Updates(updates).Error
}

func (r *assetRepo) SoftDelete(dbc dbctx.Context, id string) error {
	return r.UpdateFields(dbc, id, map[string]interface{}{"is_deleted": true})
}
