package domain

import (
	"github.com/yungbote/siteproof-backend/internal/domain/assets"
	"github.com/yungbote/siteproof-backend/internal/domain/audit"
	"github.com/yungbote/siteproof-backend/internal/domain/billing"
	"github.com/yungbote/siteproof-backend/internal/domain/processing"
	"github.com/yungbote/siteproof-backend/internal/domain/projects"
)

type (
	Asset            = assets.Asset
	Edge             = assets.Edge
	AssetType        = assets.Type
	EdgeType         = assets.EdgeType
	WriteSpec        = assets.WriteSpec
	Organization     = projects.Organization
	OrganizationUser = projects.OrganizationUser
	Project          = projects.Project
	ProjectMember    = projects.ProjectMember
	Subscription     = billing.Subscription
	ProcessingRun    = processing.Run
	AuditEvent       = audit.Event
)

// Models lists every persisted type, in migration order.
func Models() []any {
	return []any{
		&Organization{},
		&OrganizationUser{},
		&Project{},
		&ProjectMember{},
		&Asset{},
		&Edge{},
		&Subscription{},
		&ProcessingRun{},
		&AuditEvent{},
	}
}
