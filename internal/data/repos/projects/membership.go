package projects

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	domain "github.com/yungbote/siteproof-backend/internal/domain/projects"
	"github.com/yungbote/siteproof-backend/internal/platform/dbctx"
	"github.com/yungbote/siteproof-backend/internal/platform/logger"
)

type OrganizationRepo interface {
	Create(dbc dbctx.Context, row *domain.Organization) error
	AddUser(dbc dbctx.Context, row *domain.OrganizationUser) error
	ListMemberships(dbc dbctx.Context, userID string) ([]*domain.OrganizationUser, error)
	GetMembership(dbc dbctx.Context, orgID, userID string) (*domain.OrganizationUser, error)
}

type organizationRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewOrganizationRepo(db *gorm.DB, baseLog *logger.Logger) OrganizationRepo {
	return &organizationRepo{db: db, log: baseLog.With("repo", "OrganizationRepo")}
}

func (r *organizationRepo) Create(dbc dbctx.Context, row *domain.Organization) error {
	return dbc.DB(r.db).Create(row).Error
}

func (r *organizationRepo) AddUser(dbc dbctx.Context, row *domain.OrganizationUser) error {
	return dbc.DB(r.db).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "organization_id"}, {Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"role"}),
		}).
		Create(row).Error
}

func (r *organizationRepo) ListMemberships(dbc dbctx.Context, userID string) ([]*domain.OrganizationUser, error) {
	out := []*domain.OrganizationUser{}
	if userID == "" {
		return out, nil
	}
	if err := dbc.DB(r.db).Where("user_id = ?", userID).Order("created_at ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *organizationRepo) GetMembership(dbc dbctx.Context, orgID, userID string) (*domain.OrganizationUser, error) {
	var out []*domain.OrganizationUser
	if orgID == "" || userID == "" {
		return nil, nil
	}
	if err := dbc.DB(r.db).Where("organization_id = ? AND user_id = ?", orgID, userID).Limit(1).Find(&out).Error; err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out[0], nil
}

type ProjectMemberRepo interface {
	Upsert(dbc dbctx.Context, row *domain.ProjectMember) error
	Get(dbc dbctx.Context, projectID, userID string) (*domain.ProjectMember, error)
	ListByProject(dbc dbctx.Context, projectID string) ([]*domain.ProjectMember, error)
}

type projectMemberRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewProjectMemberRepo(db *gorm.DB, baseLog *logger.Logger) ProjectMemberRepo {
	return &projectMemberRepo{db: db, log: baseLog.With("repo", "ProjectMemberRepo")}
}

func (r *projectMemberRepo) Upsert(dbc dbctx.Context, row *domain.ProjectMember) error {
	return dbc.DB(r.db).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "project_id"}, {Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"role"}),
		}).
		Create(row).Error
}

func (r *projectMemberRepo) Get(dbc dbctx.Context, projectID, userID string) (*domain.ProjectMember, error) {
	var out []*domain.ProjectMember
	if projectID == "" || userID == "" {
		return nil, nil
	}
	if err := dbc.DB(r.db).Where("project_id = ? AND user_id = ?", projectID, userID).Limit(1).Find(&out).Error; err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out[0], nil
}

func (r *projectMemberRepo) ListByProject(dbc dbctx.Context, projectID string) ([]*domain.ProjectMember, error) {
	out := []*domain.ProjectMember{}
	if projectID == "" {
		return out, nil
	}
	if err := dbc.DB(r.db).Where("project_id = ?", projectID).Order("created_at ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
