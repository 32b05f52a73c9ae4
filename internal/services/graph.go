package services

import (
	"context"

	"github.com/yungbote/siteproof-backend/internal/data/graph"
	"github.com/yungbote/siteproof-backend/internal/data/repos"
	"github.com/yungbote/siteproof-backend/internal/domain/assets"
	"github.com/yungbote/siteproof-backend/internal/platform/apierr"
	"github.com/yungbote/siteproof-backend/internal/platform/dbctx"
	"github.com/yungbote/siteproof-backend/internal/platform/logger"
	"github.com/yungbote/siteproof-backend/internal/platform/neo4jdb"
)

// ResyncResult counts what a projection rebuild pushed to the graph.
type ResyncResult struct {
	Assets int `json:"assets"`
	Edges  int `json:"edges"`
}

// GraphService serves the graph collection routes. Reads go through Neo4j
// when it is configured and healthy, and through Postgres otherwise.
type GraphService interface {
	List(ctx context.Context, projectID string, kind graph.Kind, f graph.ListFilter) ([]*assets.Asset, error)
	GetLot(ctx context.Context, projectID, ref string) (*assets.Asset, error)
	UpdateLotStatus(ctx context.Context, projectID, ref, status string) (*assets.Asset, error)
	Resync(ctx context.Context, projectID string) (*ResyncResult, error)
}

type graphService struct {
	log       *logger.Logger
	reader    graph.Reader
	projector graph.Projector
	register  RegisterService
	status    StatusService
	assets    repos.AssetRepo
	edges     repos.EdgeRepo
}

func NewGraphService(log *logger.Logger, reader graph.Reader, projector graph.Projector, register RegisterService, status StatusService, assetRepo repos.AssetRepo, edgeRepo repos.EdgeRepo) GraphService {
	return &graphService{
		log:       log.With("service", "GraphService"),
		reader:    reader,
		projector: projector,
		register:  register,
		status:    status,
		assets:    assetRepo,
		edges:     edgeRepo,
	}
}

func (s *graphService) List(ctx context.Context, projectID string, kind graph.Kind, f graph.ListFilter) ([]*assets.Asset, error) {
	if s.reader != nil && s.reader.Enabled() {
		rows, err := s.reader.List(ctx, kind, projectID, f)
		if err == nil {
			return rows, nil
		}
		s.log.Warn("graph read failed, using relational register", "project_id", projectID, "kind", kind, "error", err)
	}
	return s.register.List(ctx, RegisterQuery{
		ProjectID: projectID,
		Type:      kind.AssetType(),
		Status:    f.Status,
		Limit:     f.Limit,
		Offset:    f.Offset,
	})
}

func (s *graphService) GetLot(ctx context.Context, projectID, ref string) (*assets.Asset, error) {
	if s.reader != nil && s.reader.Enabled() {
		lot, err := s.reader.GetLot(ctx, projectID, ref)
		switch {
		case err != nil:
			s.log.Warn("graph lot lookup failed, using relational store", "project_id", projectID, "error", err)
		case lot != nil:
			return lot, nil
		}
	}
	return s.status.ResolveLot(ctx, projectID, ref)
}

func (s *graphService) UpdateLotStatus(ctx context.Context, projectID, ref, status string) (*assets.Asset, error) {
	return s.status.TransitionLot(ctx, projectID, ref, status)
}

// Resync rebuilds a project's projection from Postgres, soft-deleted rows included.
func (s *graphService) Resync(ctx context.Context, projectID string) (*ResyncResult, error) {
	if s.projector == nil || !s.projector.Enabled() {
		return nil, apierr.Internal("graph_unconfigured", neo4jdb.ErrDisabled)
	}
	dbc := dbctx.New(ctx)
	rows, err := s.assets.ListByProject(dbc, projectID, graph.ProjectedTypes())
	if err != nil {
		return nil, apierr.Internal("resync_failed", err)
	}
	edges, err := s.edges.ListByProject(dbc, projectID)
	if err != nil {
		return nil, apierr.Internal("resync_failed", err)
	}
	if err := s.projector.SyncAssets(ctx, rows, edges); err != nil {
		s.log.Error("graph resync failed", "project_id", projectID, "error", err)
		return nil, apierr.Internal("resync_failed", err)
	}
	s.log.Info("graph resynced", "project_id", projectID, "assets", len(rows), "edges", len(edges))
	return &ResyncResult{Assets: len(rows), Edges: len(edges)}, nil
}
