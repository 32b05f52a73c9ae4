package projects

import (
	"gorm.io/gorm"

	"github.com/yungbote/siteproof-backend/internal/platform/dbctx"
	"github.com/yungbote/siteproof-backend/internal/platform/logger"
)

// AccessRow is the result of the project/org membership join.
type AccessRow struct {
	ProjectID      string
	OrganizationID string
	OrgRole        string
	ProjectRole    string
}

type AccessRepo interface {
	// Lookup returns nil when the user is not a member of the organization
	// that owns the project.
	Lookup(dbc dbctx.Context, projectID, userID string) (*AccessRow, error)
}

type accessRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewAccessRepo(db *gorm.DB, baseLog *logger.Logger) AccessRepo {
	return &accessRepo{db: db, log: baseLog.With("repo", "AccessRepo")}
}

const accessQuery = `SELECT p.id AS project_id, p.organization_id AS organization_id, ou.role AS org_role, COALESCE(pm.role, '') AS project_role
FROM projects p
JOIN organizations o ON o.id = p.organization_id
JOIN organization_users ou ON ou.organization_id = o.id
LEFT JOIN project_members pm ON pm.project_id = p.id AND pm.user_id = ou.user_id
WHERE p.id = ? AND ou.user_id = ?
LIMIT 1`

func (r *accessRepo) Lookup(dbc dbctx.Context, projectID, userID string) (*AccessRow, error) {
	if projectID == "" || userID == "" {
		return nil, nil
	}
	var rows []AccessRow
	if err := dbc.DB(r.db).Raw(accessQuery, projectID, userID).Scan(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}
