package projects

import (
	"time"

	"gorm.io/gorm"

	domain "github.com/yungbote/siteproof-backend/internal/domain/projects"
	"github.com/yungbote/siteproof-backend/internal/platform/dbctx"
	"github.com/yungbote/siteproof-backend/internal/platform/logger"
)

type ProjectRepo interface {
	Create(dbc dbctx.Context, row *domain.Project) error
	GetByID(dbc dbctx.Context, id string) (*domain.Project, error)
	ListForUser(dbc dbctx.Context, userID string) ([]*domain.Project, error)
	ListForMemberRole(dbc dbctx.Context, userID, role string) ([]*domain.Project, error)
	CountByStatus(dbc dbctx.Context, ids []string, status string) (int64, error)
	Touch(dbc dbctx.Context, id string) error
}

type projectRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewProjectRepo(db *gorm.DB, baseLog *logger.Logger) ProjectRepo {
	return &projectRepo{db: db, log: baseLog.With("repo", "ProjectRepo")}
}

func (r *projectRepo) Create(dbc dbctx.Context, row *domain.Project) error {
	return dbc.DB(r.db).Create(row).Error
}

func (r *projectRepo) GetByID(dbc dbctx.Context, id string) (*domain.Project, error) {
	var out []*domain.Project
	if id == "" {
		return nil, nil
	}
	if err := dbc.DB(r.db).Where("id = ?", id).Limit(1).Find(&out).Error; err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out[0], nil
}

func (r *projectRepo) ListForUser(dbc dbctx.Context, userID string) ([]*domain.Project, error) {
	out := []*domain.Project{}
	if userID == "" {
		return out, nil
	}
	err := dbc.DB(r.db).
		Joins("JOIN organization_users ou ON ou.organization_id = projects.organization_id").
		Where("ou.user_id = ?", userID).
		Order("projects.updated_at DESC").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *projectRepo) ListForMemberRole(dbc dbctx.Context, userID, role string) ([]*domain.Project, error) {
	out := []*domain.Project{}
	if userID == "" || role == "" {
		return out, nil
	}
	err := dbc.DB(r.db).
		Joins("JOIN project_members pm ON pm.project_id = projects.id").
		Where("pm.user_id = ? AND pm.role = ?", userID, role).
		Order("projects.updated_at DESC").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *projectRepo) CountByStatus(dbc dbctx.Context, ids []string, status string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	var n int64
	err := dbc.DB(r.db).Model(&domain.Project{}).Where("id IN ? AND status = ?", ids, status).Count(&n).Error
	return n, err
}

func (r *projectRepo) Touch(dbc dbctx.Context, id string) error {
	return dbc.DB(r.db).Model(&domain.Project{}).Where("id = ?", id).Update("updated_at", time.Now().UTC()).Error
}
