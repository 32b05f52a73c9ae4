package services

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/google/uuid"

	"github.com/yungbote/siteproof-backend/internal/data/repos"
	"github.com/yungbote/siteproof-backend/internal/domain/assets"
	"github.com/yungbote/siteproof-backend/internal/platform/apierr"
	"github.com/yungbote/siteproof-backend/internal/platform/dbctx"
	"github.com/yungbote/siteproof-backend/internal/platform/logger"
)

type CreateITPInput struct {
	DocumentNumber string          `json:"document_number"`
	Name           string          `json:"name"`
	RevisionCode   string          `json:"revision_code"`
	TemplateID     string          `json:"template_id"`
	IdempotencyKey string          `json:"idempotency_key"`
	Content        json.RawMessage `json:"content"`
}

type ITPRegister struct {
	Rows  []*assets.Asset `json:"itpRegister"`
	Stats *RegisterStats  `json:"stats"`
}

type QualityService interface {
	ITPRegister(ctx context.Context, projectID, status, wbsNode string) (*ITPRegister, error)
	CreateITP(ctx context.Context, projectID string, in CreateITPInput) (*WriteOutcome, error)
	Lots(ctx context.Context, projectID, status string) ([]*assets.Asset, error)
}

type qualityService struct {
	log      *logger.Logger
	register RegisterService
	writer   AssetWriter
	assets   repos.AssetRepo
}

func NewQualityService(log *logger.Logger, register RegisterService, writer AssetWriter, assetRepo repos.AssetRepo) QualityService {
	return &qualityService{
		log:      log.With("service", "QualityService"),
		register: register,
		writer:   writer,
		assets:   assetRepo,
	}
}

func (s *qualityService) ITPRegister(ctx context.Context, projectID, status, wbsNode string) (*ITPRegister, error) {
	rows, err := s.register.List(ctx, RegisterQuery{
		ProjectID: projectID,
		Type:      assets.TypeITPDocument,
		Status:    status,
		WBSNode:   wbsNode,
	})
	if err != nil {
		return nil, err
	}
	stats, err := s.register.Stats(ctx, projectID, assets.TypeITPDocument)
	if err != nil {
		return nil, err
	}
	return &ITPRegister{Rows: rows, Stats: stats}, nil
}

// CreateITP records an ITP document, linked INSTANCE_OF its template when one is named.
func (s *qualityService) CreateITP(ctx context.Context, projectID string, in CreateITPInput) (*WriteOutcome, error) {
	content := map[string]any{}
	if raw := strings.TrimSpace(string(in.Content)); raw != "" && raw != "null" {
		if err := json.Unmarshal(in.Content, &content); err != nil {
			return nil, apierr.BadRequest("invalid_request", "content must be a JSON object")
		}
	}
	name := strings.TrimSpace(in.Name)
	if _, ok := content["title"]; !ok && name != "" {
		content["title"] = name
	}
	if name == "" {
		name, _ = content["title"].(string)
	}

	var edges []assets.EdgeInput
	if tid := strings.TrimSpace(in.TemplateID); tid != "" {
		tpl, err := s.assets.GetInProject(dbctx.New(ctx), projectID, tid)
		if err != nil {
			return nil, apierr.Internal("asset_lookup_failed", err)
		}
		if tpl == nil || tpl.Type != assets.TypeITPTemplate {
			return nil, apierr.BadRequest("invalid_request", "template %s is not an ITP template in this project", tid)
		}
		content["template_id"] = tid
		edges = append(edges, assets.EdgeInput{ToAssetID: tid, EdgeType: assets.EdgeInstanceOf})
	}
	raw, err := json.Marshal(content)
	if err != nil {
		return nil, apierr.Internal("encode_failed", err)
	}

	key := strings.TrimSpace(in.IdempotencyKey)
	number := strings.TrimSpace(in.DocumentNumber)
	if key == "" && number != "" {
		key = "itp:" + projectID + ":" + number + ":" + strings.TrimSpace(in.RevisionCode)
	}
	if key == "" {
		key = uuid.NewString()
	}
	res, err := s.writer.Apply(ctx, assets.WriteSpec{
		Asset: assets.AssetInput{
			Type:           assets.TypeITPDocument,
			ProjectID:      projectID,
			Name:           name,
			DocumentNumber: number,
			RevisionCode:   strings.TrimSpace(in.RevisionCode),
			Content:        raw,
		},
		Edges:          edges,
		IdempotencyKey: key,
	})
	if err != nil {
		return nil, err
	}
	return outcomeOf(res), nil
}

func (s *qualityService) Lots(ctx context.Context, projectID, status string) ([]*assets.Asset, error) {
	return s.register.List(ctx, RegisterQuery{ProjectID: projectID, Type: assets.TypeLot, Status: status})
}
