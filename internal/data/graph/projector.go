package graph

import (
	"context"
	"fmt"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/yungbote/siteproof-backend/internal/domain/assets"
	"github.com/yungbote/siteproof-backend/internal/observability"
	"github.com/yungbote/siteproof-backend/internal/platform/logger"
	"github.com/yungbote/siteproof-backend/internal/platform/neo4jdb"
)

var schemaStatements = []string{
	`CREATE CONSTRAINT asset_id_unique IF NOT EXISTS FOR (n:Asset) REQUIRE n.id IS UNIQUE`,
	`CREATE INDEX asset_project_idx IF NOT EXISTS FOR (n:Asset) ON (n.project_id)`,
	`CREATE INDEX lot_number_idx IF NOT EXISTS FOR (n:Lot) ON (n.project_id, n.document_number)`,
}

// Projector mirrors canonical assets and edges into Neo4j.
type Projector interface {
	Enabled() bool
	SyncAssets(ctx context.Context, rows []*assets.Asset, edges []*assets.Edge) error
}

type neo4jProjector struct {
	client *neo4jdb.Client
	log    *logger.Logger
	now    func() time.Time
}

// NewProjector returns a no-op projector when client is nil or disabled.
func NewProjector(client *neo4jdb.Client, log *logger.Logger) Projector {
	if !client.Enabled() {
		return noopProjector{}
	}
	return &neo4jProjector{client: client, log: log.With("graph", "Projector"), now: time.Now}
}

// EnsureSchema creates constraints and indexes, logging failures.
func EnsureSchema(ctx context.Context, client *neo4jdb.Client) {
	if client.Enabled() {
		client.EnsureSchema(ctx, schemaStatements)
	}
}

func (p *neo4jProjector) Enabled() bool { return true }

func (p *neo4jProjector) SyncAssets(ctx context.Context, rows []*assets.Asset, edges []*assets.Edge) error {
	proj := BuildProjection(rows, edges, p.now())
	if proj.Empty() {
		return nil
	}
	session := p.client.WriteSession(ctx)
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		for _, label := range proj.SortedLabels() {
			// label comes from the closed projection table, never from input.
			q := fmt.Sprintf(`
UNWIND $nodes AS n
MERGE (a:Asset {id: n.id})
SET a:%s
SET a += n
`, label)
			if err := run(ctx, tx, q, map[string]any{"nodes": proj.Nodes[label]}); err != nil {
				return nil, fmt.Errorf("merge %s nodes: %w", label, err)
			}
		}
		for _, rt := range proj.SortedRelTypes() {
			q := fmt.Sprintf(`
UNWIND $rels AS r
MATCH (a:Asset {id: r.from_id})
MATCH (b:Asset {id: r.to_id})
MERGE (a)-[e:%s]->(b)
SET e += r
`, rt)
			if err := run(ctx, tx, q, map[string]any{"rels": proj.Rels[rt]}); err != nil {
				return nil, fmt.Errorf("merge %s relationships: %w", rt, err)
			}
		}
		return nil, nil
	})
	if m := observability.Current(); m != nil {
		if err != nil {
			m.IncGraphSync("error")
		} else {
			m.IncGraphSync("ok")
		}
	}
	if err != nil {
		return err
	}
	p.log.Debug("graph synced", "nodes", proj.NodeCount(), "relationship_types", len(proj.Rels))
	return nil
}

func run(ctx context.Context, tx neo4j.ManagedTransaction, q string, params map[string]any) error {
	res, err := tx.Run(ctx, q, params)
	if err != nil {
		return err
	}
	_, err = res.Consume(ctx)
	return err
}

type noopProjector struct{}

func (noopProjector) Enabled() bool { return false }
func (noopProjector) SyncAssets(context.Context, []*assets.Asset, []*assets.Edge) error {
	return nil
}
