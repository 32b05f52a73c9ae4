package services

import (
	"context"
	"strings"

	"github.com/yungbote/siteproof-backend/internal/data/repos"
	"github.com/yungbote/siteproof-backend/internal/domain/assets"
	"github.com/yungbote/siteproof-backend/internal/platform/apierr"
	"github.com/yungbote/siteproof-backend/internal/platform/dbctx"
	"github.com/yungbote/siteproof-backend/internal/platform/logger"
)

type StatusService interface {
	Transition(ctx context.Context, projectID, assetID, status string) (*assets.Asset, error)
	// TransitionLot resolves ref as a lot document number first, then as an id.
	TransitionLot(ctx context.Context, projectID, ref, status string) (*assets.Asset, error)
	ResolveLot(ctx context.Context, projectID, ref string) (*assets.Asset, error)
}

type statusService struct {
	log    *logger.Logger
	assets repos.AssetRepo
	writer AssetWriter
}

func NewStatusService(log *logger.Logger, assetRepo repos.AssetRepo, writer AssetWriter) StatusService {
	return &statusService{log: log.With("service", "StatusService"), assets: assetRepo, writer: writer}
}

func (s *statusService) Transition(ctx context.Context, projectID, assetID, status string) (*assets.Asset, error) {
	if strings.TrimSpace(status) == "" {
		return nil, apierr.BadRequest("invalid_status", "status is required")
	}
	res, err := s.writer.Transition(ctx, projectID, assetID, status)
	if err != nil {
		return nil, err
	}
	if res.Changed {
		s.log.Info("status changed", "project_id", projectID, "asset_id", assetID, "from", res.From, "to", res.Asset.Status)
	}
	return res.Asset, nil
}

func (s *statusService) ResolveLot(ctx context.Context, projectID, ref string) (*assets.Asset, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, apierr.BadRequest("invalid_request", "lot id is required")
	}
	dbc := dbctx.New(ctx)
	lot, err := s.assets.GetByDocumentNumber(dbc, projectID, assets.TypeLot, ref)
	if err != nil {
		return nil, apierr.Internal("lot_lookup_failed", err)
	}
	if lot == nil {
		lot, err = s.assets.GetInProject(dbc, projectID, ref)
		if err != nil {
			return nil, apierr.Internal("lot_lookup_failed", err)
		}
	}
	if lot == nil || lot.Type != assets.TypeLot {
		return nil, apierr.NotFound("lot %s not found", ref)
	}
	return lot, nil
}

func (s *statusService) TransitionLot(ctx context.Context, projectID, ref, status string) (*assets.Asset, error) {
	lot, err := s.ResolveLot(ctx, projectID, ref)
	if err != nil {
		return nil, err
	}
	return s.Transition(ctx, projectID, lot.ID, status)
}
