package graph

import (
	"sort"
	"time"

	"github.com/yungbote/siteproof-backend/internal/domain/assets"
)

// Projection is the parameter payload for one sync, grouped by label and
// relationship type because neither can be a Cypher parameter.
type Projection struct {
	Nodes map[string][]map[string]any
	Rels  map[string][]map[string]any
}

func (p Projection) Empty() bool { return len(p.Nodes) == 0 && len(p.Rels) == 0 }

// NodeCount returns the number of node records across labels.
func (p Projection) NodeCount() int {
	n := 0
	for _, rows := range p.Nodes {
		n += len(rows)
	}
	return n
}

// SortedLabels returns label keys in a stable order.
func (p Projection) SortedLabels() []string { return sortedKeys(p.Nodes) }

// SortedRelTypes returns relationship type keys in a stable order.
func (p Projection) SortedRelTypes() []string { return sortedKeys(p.Rels) }

// BuildProjection converts canonical rows into graph records. Assets of
// unprojected types are skipped; edges are kept whenever their type is known,
// and the write matches both endpoints so edges to unprojected nodes vanish.
func BuildProjection(rows []*assets.Asset, edges []*assets.Edge, now time.Time) Projection {
	synced := now.UTC().Format(time.RFC3339Nano)
	p := Projection{Nodes: map[string][]map[string]any{}, Rels: map[string][]map[string]any{}}
	for _, a := range rows {
		if a == nil || a.ID == "" {
			continue
		}
		label := LabelFor(a.Type)
		if label == "" {
			continue
		}
		p.Nodes[label] = append(p.Nodes[label], nodeRecord(a, synced))
	}
	for _, e := range edges {
		if e == nil || e.FromAssetID == "" || e.ToAssetID == "" || !e.EdgeType.Valid() {
			continue
		}
		rt := string(e.EdgeType)
		p.Rels[rt] = append(p.Rels[rt], map[string]any{
			"id":              e.ID,
			"project_id":      e.ProjectID,
			"from_id":         e.FromAssetID,
			"to_id":           e.ToAssetID,
			"properties_json": jsonString(e.Properties),
			"created_at":      e.CreatedAt.UTC().Format(time.RFC3339Nano),
			"synced_at":       synced,
		})
	}
	return p
}

func nodeRecord(a *assets.Asset, synced string) map[string]any {
	return map[string]any{
		"id":              a.ID,
		"project_id":      a.ProjectID,
		"type":            string(a.Type),
		"name":            a.Name,
		"document_number": a.DocumentNumber,
		"revision_code":   a.RevisionCode,
		"status":          a.Status,
		"approval_state":  a.ApprovalState,
		"version":         int64(a.Version),
		"is_deleted":      a.IsDeleted,
		"content_json":    jsonString(a.Content),
		"created_at":      a.CreatedAt.UTC().Format(time.RFC3339Nano),
		"updated_at":      a.UpdatedAt.UTC().Format(time.RFC3339Nano),
		"synced_at":       synced,
	}
}

func jsonString(raw []byte) string {
	if len(raw) == 0 {
		return ""
	}
	return string(raw)
}

func sortedKeys(m map[string][]map[string]any) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
