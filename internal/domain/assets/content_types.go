package assets

import (
	"encoding/json"
	"fmt"
)

type DocumentContent struct {
	FileName    string `json:"file_name"`
	BlobName    string `json:"blob_name"`
	ContentType string `json:"content_type,omitempty"`
	Size        int64  `json:"size,omitempty"`
	Source      string `json:"source,omitempty"`
}

type TimesheetContent struct {
	UserID string  `json:"user_id"`
	Hours  float64 `json:"hours"`
	Date   string  `json:"date,omitempty"`
	Notes  string  `json:"notes,omitempty"`
	LotID  string  `json:"lot_id,omitempty"`
}

type LotContent struct {
	WorkType    string `json:"work_type,omitempty"`
	Description string `json:"description,omitempty"`
	WBSNode     string `json:"wbs_node,omitempty"`
	LBSNode     string `json:"lbs_node,omitempty"`
	AreaCode    string `json:"area_code,omitempty"`
}

type ApprovalContent struct {
	TargetAssetID string   `json:"target_asset_id"`
	Title         string   `json:"title,omitempty"`
	Approvers     []string `json:"approvers,omitempty"`
	Comment       string   `json:"comment,omitempty"`
}

const (
	ReferenceAttachment    = "attachment"
	ReferenceRowAttachment = "row_attachment"
)

// ReferenceProperties is the payload of REFERENCES edges from an attached
// document to the asset it belongs to.
type ReferenceProperties struct {
	ReferenceType string `json:"reference_type"`
	RowID         string `json:"row_id,omitempty"`
}

// RevisionProperties is the payload of SUPERSEDES edges.
type RevisionProperties struct {
	CommitMessage string `json:"commit_message,omitempty"`
	CreatedBy     string `json:"created_by,omitempty"`
}

// DecisionProperties is the payload of APPROVED_BY and REVIEWED_BY edges.
type DecisionProperties struct {
	DecidedBy string `json:"decided_by"`
	Comment   string `json:"comment,omitempty"`
	DecidedAt string `json:"decided_at,omitempty"`
}

// DecodeContent unmarshals a's content into the typed view T.
func DecodeContent[T any](a *Asset) (T, error) {
	var out T
	if a == nil {
		return out, fmt.Errorf("nil asset")
	}
	if len(a.Content) == 0 {
		return out, nil
	}
	if err := json.Unmarshal(a.Content, &out); err != nil {
		return out, fmt.Errorf("decode %s content: %w", a.Type, err)
	}
	return out, nil
}

// EncodeContent marshals a typed view for storage.
func EncodeContent(v any) ([]byte, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode content: %w", err)
	}
	return b, nil
}

// ContentString reads one top level string field; missing or non-string yields "".
func ContentString(raw []byte, key string) string {
	if len(raw) == 0 {
		return ""
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return ""
	}
	s, _ := m[key].(string)
	return s
}
