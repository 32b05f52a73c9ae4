package audit

import (
	"time"

	"gorm.io/datatypes"
)

const (
	ActionAssetCreated    = "asset.created"
	ActionAssetUpdated    = "asset.updated"
	ActionAssetDeleted    = "asset.deleted"
	ActionStatusChanged   = "asset.status_changed"
	ActionAssetsLinked    = "asset.linked"
	ActionProjectCreated  = "project.created"
	ActionApprovalDecided = "approval.decided"
)

type Event struct {
	ID             string         `gorm:"column:id;primaryKey" json:"id"`
	ProjectID      string         `gorm:"column:project_id;index" json:"project_id"`
	ActorUserID    string         `gorm:"column:actor_user_id;index" json:"actor_user_id,omitempty"`
	Action         string         `gorm:"column:action;not null" json:"action"`
	AssetID        string         `gorm:"column:asset_id;index" json:"asset_id,omitempty"`
	IdempotencyKey string         `gorm:"column:idempotency_key" json:"idempotency_key,omitempty"`
	Source         string         `gorm:"column:source" json:"source,omitempty"`
	RequestID      string         `gorm:"column:request_id" json:"request_id,omitempty"`
	Details        datatypes.JSON `gorm:"column:details" json:"details,omitempty"`
	CreatedAt      time.Time      `gorm:"column:created_at;not null;index" json:"created_at"`
}

func (Event) TableName() string { return "audit_events" }
