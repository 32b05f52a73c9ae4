package processing

import (
	"time"

	"gorm.io/datatypes"
)

const (
	RunStatusPending   = "pending"
	RunStatusRunning   = "running"
	RunStatusSucceeded = "success"
	RunStatusFailed    = "failed"
	RunStatusIdle      = "idle"
)

// Run records one orchestration request sent to the AI service.
type Run struct {
	ID          string         `gorm:"column:id;primaryKey" json:"id"`
	ProjectID   string         `gorm:"column:project_id;not null;index:idx_processing_runs_project_started,priority:1" json:"project_id"`
	ThreadID    string         `gorm:"column:thread_id" json:"thread_id,omitempty"`
	RunUID      string         `gorm:"column:run_uid;index" json:"run_uid,omitempty"`
	Status      string         `gorm:"column:status;not null" json:"status"`
	DocumentIDs datatypes.JSON `gorm:"column:document_ids" json:"document_ids,omitempty"`
	TriggeredBy string         `gorm:"column:triggered_by" json:"triggered_by,omitempty"`
	Error       string         `gorm:"column:error" json:"error,omitempty"`
	StartedAt   time.Time      `gorm:"column:started_at;not null;index:idx_processing_runs_project_started,priority:2" json:"started_at"`
	CompletedAt *time.Time     `gorm:"column:completed_at" json:"completed_at,omitempty"`
}

func (Run) TableName() string { return "processing_runs" }
