package services

import (
	"context"
	"encoding/json"

	"github.com/yungbote/siteproof-backend/internal/data/aggregates"
	"github.com/yungbote/siteproof-backend/internal/data/graph"
	"github.com/yungbote/siteproof-backend/internal/domain/assets"
	"github.com/yungbote/siteproof-backend/internal/platform/ctxutil"
	"github.com/yungbote/siteproof-backend/internal/platform/logger"
)

// AssetWriter is the only write path for assets. Every call commits to
// Postgres first and then refreshes the graph projection.
type AssetWriter interface {
	Apply(ctx context.Context, spec assets.WriteSpec) (*aggregates.WriteResult, error)
	Link(ctx context.Context, projectID, key string, edges []assets.EdgeInput) ([]*assets.Edge, error)
	Transition(ctx context.Context, projectID, assetID, status string) (*aggregates.TransitionResult, error)
	Update(ctx context.Context, projectID, assetID string, name *string, content json.RawMessage) (*assets.Asset, error)
	Delete(ctx context.Context, projectID, assetID string) (*assets.Asset, error)
}

type assetWriter struct {
	log       *logger.Logger
	agg       aggregates.AssetAggregate
	projector graph.Projector
	source    string
}

func NewAssetWriter(log *logger.Logger, agg aggregates.AssetAggregate, projector graph.Projector) AssetWriter {
	if projector == nil {
		projector = graph.NewProjector(nil, log)
	}
	return &assetWriter{
		log:       log.With("service", "AssetWriter"),
		agg:       agg,
		projector: projector,
		source:    "api",
	}
}

// auditFrom fills the actor and request id from ctx where the caller left them blank.
func (w *assetWriter) auditFrom(ctx context.Context, ac *assets.AuditContext) assets.AuditContext {
	out := assets.AuditContext{}
	if ac != nil {
		out = *ac
	}
	if out.ActorUserID == "" {
		out.ActorUserID = ctxutil.UserID(ctx)
	}
	if out.RequestID == "" {
		out.RequestID = ctxutil.RequestID(ctx)
	}
	if out.Source == "" {
		out.Source = w.source
	}
	return out
}

func (w *assetWriter) Apply(ctx context.Context, spec assets.WriteSpec) (*aggregates.WriteResult, error) {
	ac := w.auditFrom(ctx, spec.Audit)
	spec.Audit = &ac
	res, err := w.agg.Apply(ctx, spec)
	if err != nil {
		return nil, err
	}
	w.project(ctx, []*assets.Asset{res.Asset}, res.Edges)
	return res, nil
}

func (w *assetWriter) Link(ctx context.Context, projectID, key string, edges []assets.EdgeInput) ([]*assets.Edge, error) {
	out, err := w.agg.Link(ctx, aggregates.LinkInput{
		ProjectID:      projectID,
		IdempotencyKey: key,
		Edges:          edges,
		Audit:          w.auditFrom(ctx, nil),
	})
	if err != nil {
		return nil, err
	}
	w.project(ctx, nil, out)
	return out, nil
}

func (w *assetWriter) Transition(ctx context.Context, projectID, assetID, status string) (*aggregates.TransitionResult, error) {
	res, err := w.agg.Transition(ctx, aggregates.TransitionInput{
		ProjectID: projectID,
		AssetID:   assetID,
		Status:    status,
		Audit:     w.auditFrom(ctx, nil),
	})
	if err != nil {
		return nil, err
	}
	if res.Changed {
		w.project(ctx, []*assets.Asset{res.Asset}, nil)
	}
	return res, nil
}

func (w *assetWriter) Update(ctx context.Context, projectID, assetID string, name *string, content json.RawMessage) (*assets.Asset, error) {
	row, err := w.agg.Update(ctx, aggregates.UpdateInput{
		ProjectID: projectID,
		AssetID:   assetID,
		Name:      name,
		Content:   content,
		Audit:     w.auditFrom(ctx, nil),
	})
	if err != nil {
		return nil, err
	}
	w.project(ctx, []*assets.Asset{row}, nil)
	return row, nil
}

func (w *assetWriter) Delete(ctx context.Context, projectID, assetID string) (*assets.Asset, error) {
	row, err := w.agg.Delete(ctx, aggregates.DeleteInput{
		ProjectID: projectID,
		AssetID:   assetID,
		Audit:     w.auditFrom(ctx, nil),
	})
	if err != nil {
		return nil, err
	}
	w.project(ctx, []*assets.Asset{row}, nil)
	return row, nil
}

// project is best effort: Postgres already holds the committed write.
func (w *assetWriter) project(ctx context.Context, rows []*assets.Asset, edges []*assets.Edge) {
	if !w.projector.Enabled() {
		return
	}
	if err := w.projector.SyncAssets(ctx, rows, edges); err != nil {
		w.log.Warn("graph projection failed", "assets", len(rows), "edges", len(edges), "error", err)
	}
}
