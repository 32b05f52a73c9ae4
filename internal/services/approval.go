package services

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/siteproof-backend/internal/data/repos"
	policy "github.com/yungbote/siteproof-backend/internal/domain/access"
	"github.com/yungbote/siteproof-backend/internal/domain/assets"
	"github.com/yungbote/siteproof-backend/internal/platform/apierr"
	"github.com/yungbote/siteproof-backend/internal/platform/dbctx"
	"github.com/yungbote/siteproof-backend/internal/platform/logger"
)

const (
	DecisionApproved = "approved"
	DecisionRejected = "rejected"
)

type CreateApprovalInput struct {
	ProjectID      string   `json:"projectId"`
	TargetAssetID  string   `json:"targetAssetId"`
	Title          string   `json:"title"`
	Approvers      []string `json:"approvers"`
	Comment        string   `json:"comment"`
	IdempotencyKey string   `json:"idempotencyKey"`
}

type DecisionInput struct {
	Decision string `json:"decision"`
	Comment  string `json:"comment"`
}

type DecisionResult struct {
	Workflow *assets.Asset `json:"workflow"`
	Edge     *assets.Edge  `json:"edge,omitempty"`
}

type ApprovalService interface {
	List(ctx context.Context, userID, projectID, status string) ([]*assets.Asset, error)
	Create(ctx context.Context, userID string, in CreateApprovalInput) (*WriteOutcome, error)
	Decide(ctx context.Context, userID, workflowID string, in DecisionInput) (*DecisionResult, error)
}

type approvalService struct {
	log      *logger.Logger
	access   AccessService
	register RegisterService
	writer   AssetWriter
	assets   repos.AssetRepo
	now      func() time.Time
}

func NewApprovalService(log *logger.Logger, access AccessService, register RegisterService, writer AssetWriter, assetRepo repos.AssetRepo) ApprovalService {
	return &approvalService{
		log:      log.With("service", "ApprovalService"),
		access:   access,
		register: register,
		writer:   writer,
		assets:   assetRepo,
		now:      time.Now,
	}
}

func (s *approvalService) List(ctx context.Context, userID, projectID, status string) ([]*assets.Asset, error) {
	if _, err := s.access.Authorize(ctx, userID, projectID, policy.ActionRead); err != nil {
		return nil, err
	}
	return s.register.List(ctx, RegisterQuery{ProjectID: projectID, Type: assets.TypeApprovalWorkflow, Status: status})
}

func (s *approvalService) Create(ctx context.Context, userID string, in CreateApprovalInput) (*WriteOutcome, error) {
	projectID := strings.TrimSpace(in.ProjectID)
	if _, err := s.access.Authorize(ctx, userID, projectID, policy.ActionWrite); err != nil {
		return nil, err
	}
	target := strings.TrimSpace(in.TargetAssetID)
	if target == "" {
		return nil, apierr.BadRequest("invalid_request", "targetAssetId is required")
	}
	row, err := s.assets.GetInProject(dbctx.New(ctx), projectID, target)
	if err != nil {
		return nil, apierr.Internal("asset_lookup_failed", err)
	}
	if row == nil {
		return nil, apierr.NotFound("asset %s not found", target)
	}
	title := strings.TrimSpace(in.Title)
	if title == "" {
		title = "Approval of " + firstNonBlank(row.Name, row.DocumentNumber, row.ID)
	}
	content, err := assets.EncodeContent(assets.ApprovalContent{
		TargetAssetID: target,
		Title:         title,
		Approvers:     in.Approvers,
		Comment:       strings.TrimSpace(in.Comment),
	})
	if err != nil {
		return nil, apierr.Internal("encode_failed", err)
	}
	key := strings.TrimSpace(in.IdempotencyKey)
	if key == "" {
		key = uuid.NewString()
	}
	res, err := s.writer.Apply(ctx, assets.WriteSpec{
		Asset: assets.AssetInput{
			Type:      assets.TypeApprovalWorkflow,
			ProjectID: projectID,
			Name:      title,
			Content:   content,
		},
		Edges:          []assets.EdgeInput{{ToAssetID: target, EdgeType: assets.EdgeAppliesTo}},
		IdempotencyKey: key,
	})
	if err != nil {
		return nil, err
	}
	return outcomeOf(res), nil
}

// Decide moves a pending workflow to approved or rejected. An approval also
// links the target to the workflow with APPROVED_BY.
func (s *approvalService) Decide(ctx context.Context, userID, workflowID string, in DecisionInput) (*DecisionResult, error) {
	decision := strings.ToLower(strings.TrimSpace(in.Decision))
	if decision != DecisionApproved && decision != DecisionRejected {
		return nil, apierr.BadRequest("invalid_request", "decision must be approved or rejected")
	}
	wf, err := s.assets.GetByID(dbctx.New(ctx), workflowID)
	if err != nil {
		return nil, apierr.Internal("asset_lookup_failed", err)
	}
	if wf == nil || wf.IsDeleted || wf.Type != assets.TypeApprovalWorkflow {
		return nil, apierr.NotFound("approval workflow %s not found", workflowID)
	}
	pa, err := s.access.CheckProjectAccess(ctx, userID, wf.ProjectID)
	if err != nil {
		if apierr.IsStatus(err, http.StatusForbidden) {
			return nil, apierr.NotFound("approval workflow %s not found", workflowID)
		}
		return nil, err
	}
	if err := s.access.Require(ctx, pa, policy.ActionApprove); err != nil {
		return nil, err
	}
	wfContent, err := assets.DecodeContent[assets.ApprovalContent](wf)
	if err != nil {
		return nil, apierr.Internal("decode_failed", err)
	}

	res, err := s.writer.Transition(ctx, wf.ProjectID, wf.ID, decision)
	if err != nil {
		return nil, err
	}
	out := &DecisionResult{Workflow: res.Asset}
	if decision != DecisionApproved || wfContent.TargetAssetID == "" {
		return out, nil
	}

	props, _ := json.Marshal(assets.DecisionProperties{
		DecidedBy: userID,
		Comment:   strings.TrimSpace(in.Comment),
		DecidedAt: s.now().UTC().Format(time.RFC3339),
	})
	edges, err := s.writer.Link(ctx, wf.ProjectID, "approval:"+wf.ID+":"+decision, []assets.EdgeInput{{
		FromAssetID: wfContent.TargetAssetID,
		ToAssetID:   wf.ID,
		EdgeType:    assets.EdgeApprovedBy,
		Properties:  props,
	}})
	if err != nil {
		return nil, err
	}
	if len(edges) > 0 {
		out.Edge = edges[0]
	}
	s.log.Info("approval decided", "project_id", wf.ProjectID, "workflow_id", wf.ID, "decision", decision)
	return out, nil
}

func firstNonBlank(vals ...string) string {
	for _, v := range vals {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
