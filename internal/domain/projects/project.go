package projects

import "time"

const (
	StatusActive    = "active"
	StatusOnHold    = "on_hold"
	StatusCompleted = "completed"
)

type Organization struct {
	ID        string    `gorm:"column:id;primaryKey" json:"id"`
	Name      string    `gorm:"column:name;not null" json:"name"`
	CreatedAt time.Time `gorm:"column:created_at;not null" json:"created_at"`
}

func (Organization) TableName() string { return "organizations" }

const (
	OrgRoleOwner  = "owner"
	OrgRoleAdmin  = "admin"
	OrgRoleMember = "member"
)

type OrganizationUser struct {
	OrganizationID string    `gorm:"column:organization_id;primaryKey" json:"organization_id"`
	UserID         string    `gorm:"column:user_id;primaryKey;index" json:"user_id"`
	Role           string    `gorm:"column:role;not null" json:"role"`
	CreatedAt      time.Time `gorm:"column:created_at;not null" json:"created_at"`
}

func (OrganizationUser) TableName() string { return "organization_users" }

// CanManage reports whether the org role may create projects.
func (ou OrganizationUser) CanManage() bool {
	return ou.Role == OrgRoleOwner || ou.Role == OrgRoleAdmin
}

type Project struct {
	ID             string    `gorm:"column:id;primaryKey" json:"id"`
	OrganizationID string    `gorm:"column:organization_id;not null;index;uniqueIndex:uq_projects_org_name,priority:1" json:"organization_id"`
	Name           string    `gorm:"column:name;not null;uniqueIndex:uq_projects_org_name,priority:2" json:"name"`
	Code           string    `gorm:"column:code" json:"code,omitempty"`
	Description    string    `gorm:"column:description" json:"description,omitempty"`
	Location       string    `gorm:"column:location" json:"location,omitempty"`
	ClientName     string    `gorm:"column:client_name" json:"client_name,omitempty"`
	Status         string    `gorm:"column:status;not null;index" json:"status"`
	CreatedByUser  string    `gorm:"column:created_by_user_id" json:"created_by_user_id,omitempty"`
	CreatedAt      time.Time `gorm:"column:created_at;not null" json:"created_at"`
	UpdatedAt      time.Time `gorm:"column:updated_at;not null;index" json:"updated_at"`
}

func (Project) TableName() string { return "projects" }

// ProjectMember assigns a portal role to a user on one project.
type ProjectMember struct {
	ProjectID string    `gorm:"column:project_id;primaryKey" json:"project_id"`
	UserID    string    `gorm:"column:user_id;primaryKey;index" json:"user_id"`
	Role      string    `gorm:"column:role;not null;index" json:"role"`
	CreatedAt time.Time `gorm:"column:created_at;not null" json:"created_at"`
}

func (ProjectMember) TableName() string { return "project_members" }
