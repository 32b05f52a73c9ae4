package assets

import (
	"time"

	"gorm.io/datatypes"
)

// Asset is the generic project-scoped node behind every register entry.
// Type selects the content schema; hierarchy and provenance live on edges.
type Asset struct {
	ID             string         `gorm:"column:id;primaryKey" json:"id"`
	ProjectID      string         `gorm:"column:project_id;not null;index:idx_assets_project_type,priority:1;uniqueIndex:uq_assets_project_idempotency,priority:1" json:"project_id"`
	Type           Type           `gorm:"column:type;not null;index:idx_assets_project_type,priority:2" json:"type"`
	Name           string         `gorm:"column:name" json:"name"`
	DocumentNumber string         `gorm:"column:document_number;index" json:"document_number,omitempty"`
	RevisionCode   string         `gorm:"column:revision_code" json:"revision_code,omitempty"`
	Version        int            `gorm:"column:version;not null" json:"version"`
	Status         string         `gorm:"column:status;index" json:"status,omitempty"`
	ApprovalState  string         `gorm:"column:approval_state" json:"approval_state,omitempty"`
	Content        datatypes.JSON `gorm:"column:content" json:"content"`
	IdempotencyKey string         `gorm:"column:idempotency_key;not null;uniqueIndex:uq_assets_project_idempotency,priority:2" json:"idempotency_key"`
	IsDeleted      bool           `gorm:"column:is_deleted;not null;index" json:"is_deleted"`
	CreatedByUser  string         `gorm:"column:created_by_user_id" json:"created_by_user_id,omitempty"`
	CreatedAt      time.Time      `gorm:"column:created_at;not null;index" json:"created_at"`
	UpdatedAt      time.Time      `gorm:"column:updated_at;not null" json:"updated_at"`
}

func (Asset) TableName() string { return "assets" }

// Edge is a typed directed relation between two assets of one project.
type Edge struct {
	ID             string         `gorm:"column:id;primaryKey" json:"id"`
	ProjectID      string         `gorm:"column:project_id;not null;index" json:"project_id"`
	FromAssetID    string         `gorm:"column:from_asset_id;not null;uniqueIndex:uq_asset_edges_triple,priority:1" json:"from_asset_id"`
	ToAssetID      string         `gorm:"column:to_asset_id;not null;index;uniqueIndex:uq_asset_edges_triple,priority:2" json:"to_asset_id"`
	EdgeType       EdgeType       `gorm:"column:edge_type;not null;uniqueIndex:uq_asset_edges_triple,priority:3" json:"edge_type"`
	Properties     datatypes.JSON `gorm:"column:properties" json:"properties,omitempty"`
	IdempotencyKey string         `gorm:"column:idempotency_key;index" json:"idempotency_key,omitempty"`
	CreatedAt      time.Time      `gorm:"column:created_at;not null" json:"created_at"`
}

func (Edge) TableName() string { return "asset_edges" }
