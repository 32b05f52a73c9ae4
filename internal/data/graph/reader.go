package graph

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"gorm.io/datatypes"

	"github.com/yungbote/siteproof-backend/internal/domain/assets"
	"github.com/yungbote/siteproof-backend/internal/platform/logger"
	"github.com/yungbote/siteproof-backend/internal/platform/neo4jdb"
)

const (
	defaultListLimit = 100
	maxListLimit     = 500
)

type ListFilter struct {
	Status string
	Limit  int
	Offset int
}

func (f ListFilter) limit() int64 {
	switch {
	case f.Limit <= 0:
		return defaultListLimit
	case f.Limit > maxListLimit:
		return maxListLimit
	default:
		return int64(f.Limit)
	}
}

// Reader answers the graph collection routes from Neo4j.
type Reader interface {
	Enabled() bool
	List(ctx context.Context, kind Kind, projectID string, f ListFilter) ([]*assets.Asset, error)
	// GetLot returns nil when no live lot in the project has that number.
	GetLot(ctx context.Context, projectID, number string) (*assets.Asset, error)
}

type neo4jReader struct {
	client *neo4jdb.Client
	log    *logger.Logger
}

func NewReader(client *neo4jdb.Client, log *logger.Logger) Reader {
	if !client.Enabled() {
		return disabledReader{}
	}
	return &neo4jReader{client: client, log: log.With("graph", "Reader")}
}

func (r *neo4jReader) Enabled() bool { return true }

// ListQuery renders the Cypher for one collection.
func ListQuery(kind Kind) (string, error) {
	spec, ok := kinds[kind]
	if !ok {
		return "", fmt.Errorf("unknown graph collection %q", kind)
	}
	return fmt.Sprintf(`
MATCH (n:%s {project_id: $projectId})
WHERE coalesce(n.is_deleted, false) = false
  AND ($status = '' OR n.status = $status)
RETURN n
ORDER BY %s
SKIP $offset
LIMIT $limit
`, labels[spec.assetType], spec.orderBy), nil
}

const lotQuery = `
MATCH (n:Lot {project_id: $projectId})
WHERE coalesce(n.is_deleted, false) = false
  AND (n.document_number = $number OR n.id = $number)
RETURN n
ORDER BY CASE WHEN n.document_number = $number THEN 0 ELSE 1 END
LIMIT 1
`

func (r *neo4jReader) List(ctx context.Context, kind Kind, projectID string, f ListFilter) ([]*assets.Asset, error) {
	q, err := ListQuery(kind)
	if err != nil {
		return nil, err
	}
	return r.query(ctx, q, map[string]any{
		"projectId": projectID,
		"status":    strings.TrimSpace(f.Status),
		"offset":    int64(max(f.Offset, 0)),
		"limit":     f.limit(),
	})
}

func (r *neo4jReader) GetLot(ctx context.Context, projectID, number string) (*assets.Asset, error) {
	rows, err := r.query(ctx, lotQuery, map[string]any{"projectId": projectID, "number": strings.TrimSpace(number)})
	if err != nil || len(rows) == 0 {
		return nil, err
	}
	return rows[0], nil
}

func (r *neo4jReader) query(ctx context.Context, q string, params map[string]any) ([]*assets.Asset, error) {
	session := r.client.ReadSession(ctx)
	defer session.Close(ctx)

	out, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, q, params)
		if err != nil {
			return nil, err
		}
		records, err := res.Collect(ctx)
		if err != nil {
			return nil, err
		}
		rows := make([]*assets.Asset, 0, len(records))
		for _, rec := range records {
			node, _, err := neo4j.GetRecordValue[neo4j.Node](rec, "n")
			if err != nil {
				return nil, err
			}
			rows = append(rows, AssetFromProps(node.Props))
		}
		return rows, nil
	})
	if err != nil {
		return nil, fmt.Errorf("graph query: %w", err)
	}
	return out.([]*assets.Asset), nil
}

// AssetFromProps rebuilds an asset from the properties written by the projector.
func AssetFromProps(props map[string]any) *assets.Asset {
	a := &assets.Asset{
		ID:             propString(props, "id"),
		ProjectID:      propString(props, "project_id"),
		Type:           assets.Type(propString(props, "type")),
		Name:           propString(props, "name"),
		DocumentNumber: propString(props, "document_number"),
		RevisionCode:   propString(props, "revision_code"),
		Status:         propString(props, "status"),
		ApprovalState:  propString(props, "approval_state"),
		CreatedAt:      propTime(props, "created_at"),
		UpdatedAt:      propTime(props, "updated_at"),
	}
	if v, ok := props["version"].(int64); ok {
		a.Version = int(v)
	}
	if v, ok := props["is_deleted"].(bool); ok {
		a.IsDeleted = v
	}
	if c := propString(props, "content_json"); c != "" {
		a.Content = datatypes.JSON(c)
	}
	return a
}

func propString(props map[string]any, key string) string {
	s, _ := props[key].(string)
	return s
}

func propTime(props map[string]any, key string) time.Time {
	switch v := props[key].(type) {
	case string:
		t, err := time.Parse(time.RFC3339Nano, v)
		if err == nil {
			return t
		}
	case time.Time:
		return v
	}
	return time.Time{}
}

type disabledReader struct{}

func (disabledReader) Enabled() bool { return false }
func (disabledReader) List(context.Context, Kind, string, ListFilter) ([]*assets.Asset, error) {
	return nil, neo4jdb.ErrDisabled
}
func (disabledReader) GetLot(context.Context, string, string) (*assets.Asset, error) {
	return nil, neo4jdb.ErrDisabled
}
