package processing

import (
	"gorm.io/gorm"

	domain "github.com/yungbote/siteproof-backend/internal/domain/processing"
	"github.com/yungbote/siteproof-backend/internal/platform/dbctx"
	"github.com/yungbote/siteproof-backend/internal/platform/logger"
)

type RunRepo interface {
	Create(dbc dbctx.Context, row *domain.Run) error
	Latest(dbc dbctx.Context, projectID string) (*domain.Run, error)
	GetByRunUID(dbc dbctx.Context, projectID, runUID string) (*domain.Run, error)
	UpdateFields(dbc dbctx.Context, id string, updates map[string]interface{}) error
}

type runRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewRunRepo(db *gorm.DB, baseLog *logger.Logger) RunRepo {
	return &runRepo{db: db, log: baseLog.With("repo", "ProcessingRunRepo")}
}

func (r *runRepo) Create(dbc dbctx.Context, row *domain.Run) error {
	return dbc.DB(r.db).Create(row).Error
}

func (r *runRepo) Latest(dbc dbctx.Context, projectID string) (*domain.Run, error) {
	var out []*domain.Run
	if projectID == "" {
		return nil, nil
	}
	if err := dbc.DB(r.db).Where("project_id = ?", projectID).Order("started_at DESC").Limit(1).Find(&out).Error; err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out[0], nil
}

func (r *runRepo) GetByRunUID(dbc dbctx.Context, projectID, runUID string) (*domain.Run, error) {
	var out []*domain.Run
	if projectID == "" || runUID == "" {
		return nil, nil
	}
	if err := dbc.DB(r.db).Where("project_id = ? AND (run_uid = ? OR id = ?)", projectID, runUID, runUID).Limit(1).Find(&out).Error; err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out[0], nil
}

func (r *runRepo) UpdateFields(dbc dbctx.Context, id string, updates map[string]interface{}) error {
	if id == "" || len(updates) == 0 {
		return nil
	}
	return dbc.DB(r.db).Model(&domain.Run{}).Where("id = ?", id).Updates(updates).Error
}
