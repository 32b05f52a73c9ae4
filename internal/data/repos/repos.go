package repos

import (
	"gorm.io/gorm"

	"github.com/yungbote/siteproof-backend/internal/data/repos/assets"
	"github.com/yungbote/siteproof-backend/internal/data/repos/audit"
	"github.com/yungbote/siteproof-backend/internal/data/repos/billing"
	"github.com/yungbote/siteproof-backend/internal/data/repos/processing"
	"github.com/yungbote/siteproof-backend/internal/data/repos/projects"
	"github.com/yungbote/siteproof-backend/internal/platform/logger"
)

type AssetRepo = assets.AssetRepo
type EdgeRepo = assets.EdgeRepo
type AssetFilter = assets.Filter

type ProjectRepo = projects.ProjectRepo
type OrganizationRepo = projects.OrganizationRepo
type ProjectMemberRepo = projects.ProjectMemberRepo
type AccessRepo = projects.AccessRepo
type AccessRow = projects.AccessRow

type SubscriptionRepo = billing.SubscriptionRepo
type ProcessingRunRepo = processing.RunRepo
type AuditEventRepo = audit.EventRepo

// Set groups every repository built over one database handle.
type Set struct {
	Assets        AssetRepo
	Edges         EdgeRepo
	Projects      ProjectRepo
	Organizations OrganizationRepo
	Members       ProjectMemberRepo
	Access        AccessRepo
	Subscriptions SubscriptionRepo
	Runs          ProcessingRunRepo
	Audit         AuditEventRepo
}

func NewSet(db *gorm.DB, log *logger.Logger) Set {
	return Set{
		Assets:        assets.NewAssetRepo(db, log),
		Edges:         assets.NewEdgeRepo(db, log),
		Projects:      projects.NewProjectRepo(db, log),
		Organizations: projects.NewOrganizationRepo(db, log),
		Members:       projects.NewProjectMemberRepo(db, log),
		Access:        projects.NewAccessRepo(db, log),
		Subscriptions: billing.NewSubscriptionRepo(db, log),
		Runs:          processing.NewRunRepo(db, log),
		Audit:         audit.NewEventRepo(db, log),
	}
}
