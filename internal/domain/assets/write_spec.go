package assets

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// AssetInput is the asset half of a write. ID is optional; a fresh id is
// assigned when it is blank.
type AssetInput struct {
	ID             string          `json:"id,omitempty"`
	Type           Type            `json:"type"`
	ProjectID      string          `json:"project_id"`
	Name           string          `json:"name,omitempty"`
	DocumentNumber string          `json:"document_number,omitempty"`
	RevisionCode   string          `json:"revision_code,omitempty"`
	Version        int             `json:"version,omitempty"`
	Status         string          `json:"status,omitempty"`
	ApprovalState  string          `json:"approval_state,omitempty"`
	Content        json.RawMessage `json:"content,omitempty"`
}

// EdgeInput describes one relation to create with the asset. A blank
// endpoint stands for the asset being written.
type EdgeInput struct {
	FromAssetID string          `json:"from_asset_id,omitempty"`
	ToAssetID   string          `json:"to_asset_id,omitempty"`
	EdgeType    EdgeType        `json:"edge_type"`
	Properties  json.RawMessage `json:"properties,omitempty"`
}

type AuditContext struct {
	ActorUserID string `json:"actor_user_id,omitempty"`
	Action      string `json:"action,omitempty"`
	Source      string `json:"source,omitempty"`
	RequestID   string `json:"request_id,omitempty"`
}

// WriteSpec is the unit of idempotent persistence: one asset, its edges, and
// the key that makes resubmission safe.
type WriteSpec struct {
	Asset          AssetInput    `json:"asset"`
	Edges          []EdgeInput   `json:"edges,omitempty"`
	IdempotencyKey string        `json:"idempotency_key"`
	Audit          *AuditContext `json:"audit_context,omitempty"`
}

var ErrInvalidSpec = errors.New("invalid write spec")

func specError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidSpec, fmt.Sprintf(format, args...))
}

// Normalize trims identifiers and canonicalises type names in place.
func (s *WriteSpec) Normalize() {
	s.IdempotencyKey = strings.TrimSpace(s.IdempotencyKey)
	s.Asset.ID = strings.TrimSpace(s.Asset.ID)
	s.Asset.ProjectID = strings.TrimSpace(s.Asset.ProjectID)
	s.Asset.Type = Type(strings.ToLower(strings.TrimSpace(string(s.Asset.Type))))
	s.Asset.DocumentNumber = strings.TrimSpace(s.Asset.DocumentNumber)
	s.Asset.Status = NormalizeStatus(s.Asset.Status)
	for i := range s.Edges {
		e := &s.Edges[i]
		e.FromAssetID = strings.TrimSpace(e.FromAssetID)
		e.ToAssetID = strings.TrimSpace(e.ToAssetID)
		e.EdgeType = EdgeType(strings.ToUpper(strings.TrimSpace(string(e.EdgeType))))
	}
}

// Validate checks structure and, when v is non-nil, content and property schemas.
func (s *WriteSpec) Validate(v *ContentValidator) error {
	if s.IdempotencyKey == "" {
		return specError("idempotency_key is required")
	}
	if len(s.IdempotencyKey) > 255 {
		return specError("idempotency_key exceeds 255 characters")
	}
	if s.Asset.ProjectID == "" {
		return specError("asset.project_id is required")
	}
	if !s.Asset.Type.Valid() {
		return specError("unknown asset type %q", s.Asset.Type)
	}
	if s.Asset.Version < 0 {
		return specError("asset.version must not be negative")
	}
	if s.Asset.Status != "" {
		if m := MachineFor(s.Asset.Type); !m.Known(s.Asset.Status) {
			return specError("status %q is not valid for %s", s.Asset.Status, s.Asset.Type)
		}
	}
	if v != nil {
		if err := v.ValidateContent(s.Asset.Type, s.Asset.Content); err != nil {
			return specError("%v", err)
		}
	}
	seen := make(map[string]struct{}, len(s.Edges))
	for i, e := range s.Edges {
		if !e.EdgeType.Valid() {
			return specError("edges[%d]: unknown edge type %q", i, e.EdgeType)
		}
		if e.FromAssetID == "" && e.ToAssetID == "" {
			return specError("edges[%d]: an edge cannot point from the asset to itself", i)
		}
		if e.FromAssetID != "" && e.FromAssetID == e.ToAssetID {
			return specError("edges[%d]: self-referencing edge", i)
		}
		if s.Asset.ID != "" && ((e.FromAssetID == s.Asset.ID && e.ToAssetID == "") || (e.ToAssetID == s.Asset.ID && e.FromAssetID == "")) {
			return specError("edges[%d]: self-referencing edge", i)
		}
		if v != nil {
			if err := v.ValidateProperties(e.EdgeType, e.Properties); err != nil {
				return specError("edges[%d]: %v", i, err)
			}
		}
		key := e.FromAssetID + "|" + e.ToAssetID + "|" + string(e.EdgeType)
		if _, dup := seen[key]; dup {
			return specError("edges[%d]: duplicate edge", i)
		}
		seen[key] = struct{}{}
	}
	return nil
}

// Resolve substitutes assetID for blank endpoints.
func (e EdgeInput) Resolve(assetID string) (from, to string) {
	from, to = e.FromAssetID, e.ToAssetID
	if from == "" {
		from = assetID
	}
	if to == "" {
		to = assetID
	}
	return from, to
}
