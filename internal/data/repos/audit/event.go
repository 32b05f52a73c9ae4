package audit

import (
	"gorm.io/gorm"

	domain "github.com/yungbote/siteproof-backend/internal/domain/audit"
	"github.com/yungbote/siteproof-backend/internal/platform/dbctx"
	"github.com/yungbote/siteproof-backend/internal/platform/logger"
)

type EventRepo interface {
	Create(dbc dbctx.Context, row *domain.Event) error
	ListByAsset(dbc dbctx.Context, assetID string) ([]*domain.Event, error)
}

type eventRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewEventRepo(db *gorm.DB, baseLog *logger.Logger) EventRepo {
	return &eventRepo{db: db, log: baseLog.With("repo", "AuditEventRepo")}
}

func (r *eventRepo) Create(dbc dbctx.Context, row *domain.Event) error {
	return dbc.DB(r.db).Create(row).Error
}

func (r *eventRepo) ListByAsset(dbc dbctx.Context, assetID string) ([]*domain.Event, error) {
	out := []*domain.Event{}
	if assetID == "" {
		return out, nil
	}
	if err := dbc.DB(r.db).Where("asset_id = ?", assetID).Order("created_at ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
