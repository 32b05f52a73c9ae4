package services

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/yungbote/siteproof-backend/internal/data/aggregates"
	"github.com/yungbote/siteproof-backend/internal/data/repos"
	policy "github.com/yungbote/siteproof-backend/internal/domain/access"
	"github.com/yungbote/siteproof-backend/internal/domain/assets"
	"github.com/yungbote/siteproof-backend/internal/platform/apierr"
	"github.com/yungbote/siteproof-backend/internal/platform/dbctx"
	"github.com/yungbote/siteproof-backend/internal/platform/logger"
)

// WriteOutcome is the response body of an idempotent write.
type WriteOutcome struct {
	Asset    *assets.Asset  `json:"asset"`
	Edges    []*assets.Edge `json:"edges"`
	Replayed bool           `json:"replayed"`
}

func outcomeOf(res *aggregates.WriteResult) *WriteOutcome {
	edges := res.Edges
	if edges == nil {
		edges = []*assets.Edge{}
	}
	return &WriteOutcome{Asset: res.Asset, Edges: edges, Replayed: res.Replayed}
}

type AssetUpdate struct {
	Name    *string         `json:"name"`
	Content json.RawMessage `json:"content"`
}

// AssetService backs the generic asset routes. Each call checks the caller's
// access to the asset's project.
type AssetService interface {
	List(ctx context.Context, userID string, q RegisterQuery) ([]*assets.Asset, error)
	Create(ctx context.Context, userID string, spec assets.WriteSpec) (*WriteOutcome, error)
	Update(ctx context.Context, userID, assetID string, in AssetUpdate) (*assets.Asset, error)
	Delete(ctx context.Context, userID, assetID string) (*assets.Asset, error)
	SetStatus(ctx context.Context, userID, assetID, status string) (*assets.Asset, error)
	Revisions(ctx context.Context, userID, assetID string) ([]*Revision, error)
	Revise(ctx context.Context, userID, assetID string, in CreateRevisionInput) (*WriteOutcome, error)
}

type assetService struct {
	log      *logger.Logger
	access   AccessService
	register RegisterService
	writer   AssetWriter
	status   StatusService
	assets   repos.AssetRepo
	edges    repos.EdgeRepo
}

func NewAssetService(log *logger.Logger, access AccessService, register RegisterService, writer AssetWriter, status StatusService, assetRepo repos.AssetRepo, edgeRepo repos.EdgeRepo) AssetService {
	return &assetService{
		log:      log.With("service", "AssetService"),
		access:   access,
		register: register,
		writer:   writer,
		status:   status,
		assets:   assetRepo,
		edges:    edgeRepo,
	}
}

func (s *assetService) List(ctx context.Context, userID string, q RegisterQuery) ([]*assets.Asset, error) {
	if _, err := s.access.Authorize(ctx, userID, q.ProjectID, policy.ActionRead); err != nil {
		return nil, err
	}
	if q.Type == "" {
		return nil, apierr.BadRequest("invalid_request", "type is required")
	}
	return s.register.List(ctx, q)
}

func (s *assetService) Create(ctx context.Context, userID string, spec assets.WriteSpec) (*WriteOutcome, error) {
	if _, err := s.access.Authorize(ctx, userID, strings.TrimSpace(spec.Asset.ProjectID), policy.ActionWrite); err != nil {
		return nil, err
	}
	res, err := s.writer.Apply(ctx, spec)
	if err != nil {
		return nil, err
	}
	return outcomeOf(res), nil
}

// locate loads a live asset and authorizes action on its project. Assets in
// projects the caller cannot see are reported as missing.
func (s *assetService) locate(ctx context.Context, userID, assetID string, action policy.Action) (*assets.Asset, *ProjectAccess, error) {
	row, err := s.assets.GetByID(dbctx.New(ctx), strings.TrimSpace(assetID))
	if err != nil {
		return nil, nil, apierr.Internal("asset_lookup_failed", err)
	}
	if row == nil || row.IsDeleted {
		return nil, nil, apierr.NotFound("asset %s not found", assetID)
	}
	pa, err := s.access.CheckProjectAccess(ctx, userID, row.ProjectID)
	if err != nil {
		if apierr.IsStatus(err, http.StatusForbidden) {
			return nil, nil, apierr.NotFound("asset %s not found", assetID)
		}
		return nil, nil, err
	}
	if err := s.access.Require(ctx, pa, action); err != nil {
		return nil, nil, err
	}
	return row, pa, nil
}

func (s *assetService) Update(ctx context.Context, userID, assetID string, in AssetUpdate) (*assets.Asset, error) {
	row, _, err := s.locate(ctx, userID, assetID, policy.ActionWrite)
	if err != nil {
		return nil, err
	}
	return s.writer.Update(ctx, row.ProjectID, row.ID, in.Name, in.Content)
}

func (s *assetService) Delete(ctx context.Context, userID, assetID string) (*assets.Asset, error) {
	row, _, err := s.locate(ctx, userID, assetID, policy.ActionWrite)
	if err != nil {
		return nil, err
	}
	return s.writer.Delete(ctx, row.ProjectID, row.ID)
}

// SetStatus is the generic status route. Approval workflows only move through
// the decision route, and review decisions on documents need approve.
func (s *assetService) SetStatus(ctx context.Context, userID, assetID, status string) (*assets.Asset, error) {
	row, pa, err := s.locate(ctx, userID, assetID, policy.ActionWrite)
	if err != nil {
		return nil, err
	}
	if row.Type == assets.TypeApprovalWorkflow {
		return nil, apierr.Conflict("decision_required", "approval workflows are decided via POST /api/v1/approvals/workflows/%s/decision", row.ID)
	}
	if assets.IsReviewDecision(row.Type, assets.NormalizeStatus(status)) {
		if err := s.access.Require(ctx, pa, policy.ActionApprove); err != nil {
			return nil, err
		}
	}
	return s.status.Transition(ctx, row.ProjectID, row.ID, status)
}
