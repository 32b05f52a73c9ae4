package services

import (
	"context"
	"strings"

	"github.com/yungbote/siteproof-backend/internal/data/repos"
	assetrepo "github.com/yungbote/siteproof-backend/internal/data/repos/assets"
	"github.com/yungbote/siteproof-backend/internal/domain/assets"
	"github.com/yungbote/siteproof-backend/internal/platform/apierr"
	"github.com/yungbote/siteproof-backend/internal/platform/dbctx"
	"github.com/yungbote/siteproof-backend/internal/platform/logger"
)

// RegisterQuery selects one project's non-deleted assets of one type.
type RegisterQuery struct {
	ProjectID      string
	Type           assets.Type
	ParentID       string
	UserID         string
	Status         string
	DocumentNumber string
	WBSNode        string
	Limit          int
	Offset         int
}

// RegisterStats counts a register's rows per status.
type RegisterStats struct {
	Total    int64            `json:"total"`
	ByStatus map[string]int64 `json:"by_status"`
}

type RegisterService interface {
	List(ctx context.Context, q RegisterQuery) ([]*assets.Asset, error)
	Stats(ctx context.Context, projectID string, typ assets.Type) (*RegisterStats, error)
}

// registerNames maps URL register names onto asset types.
var registerNames = map[string]assets.Type{
	"documents":         assets.TypeDocument,
	"drawings":          assets.TypeDrawing,
	"lots":              assets.TypeLot,
	"samples":           assets.TypeSample,
	"wbs":               assets.TypeWBSNode,
	"lbs":               assets.TypeLBSNode,
	"area-codes":        assets.TypeAreaCode,
	"photos":            assets.TypePhoto,
	"tests":             assets.TypeTestResult,
	"itp":               assets.TypeITPDocument,
	"itp-templates":     assets.TypeITPTemplate,
	"inspection-points": assets.TypeInspectionPoint,
	"timesheets":        assets.TypeTimesheet,
	"diaries":           assets.TypeDailyDiary,
	"daily-diaries":     assets.TypeDailyDiary,
	"site-instructions": assets.TypeSiteInstruction,
	"plant":             assets.TypePlant,
	"roster":            assets.TypeRosterEntry,
	"ncrs":              assets.TypeNCR,
	"approvals":         assets.TypeApprovalWorkflow,
	"qse":               assets.TypeQSEDocument,
}

// ParseRegister accepts a register name ("area-codes") or an asset type ("area_code").
func ParseRegister(name string) (assets.Type, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if t, ok := registerNames[key]; ok {
		return t, nil
	}
	t, err := assets.ParseType(key)
	if err != nil {
		return "", apierr.BadRequest("invalid_request", "unknown register %q", name)
	}
	return t, nil
}

type registerService struct {
	log    *logger.Logger
	assets repos.AssetRepo
}

func NewRegisterService(log *logger.Logger, assetRepo repos.AssetRepo) RegisterService {
	return &registerService{log: log.With("service", "RegisterService"), assets: assetRepo}
}

func (s *registerService) List(ctx context.Context, q RegisterQuery) ([]*assets.Asset, error) {
	if strings.TrimSpace(q.ProjectID) == "" {
		return nil, apierr.BadRequest("invalid_request", "project id is required")
	}
	if !q.Type.Valid() {
		return nil, apierr.BadRequest("invalid_request", "unknown asset type %q", q.Type)
	}
	if q.Limit < 0 || q.Offset < 0 {
		return nil, apierr.BadRequest("invalid_request", "limit and offset must not be negative")
	}
	order := assetrepo.OrderNewest
	if q.Type == assets.TypeITPDocument {
		order = assetrepo.OrderDocumentNumber
	}
	rows, err := s.assets.List(dbctx.New(ctx), repos.AssetFilter{
		ProjectIDs:     []string{q.ProjectID},
		Type:           q.Type,
		ParentID:       strings.TrimSpace(q.ParentID),
		UserID:         strings.TrimSpace(q.UserID),
		Status:         assets.NormalizeStatus(q.Status),
		DocumentNumber: strings.TrimSpace(q.DocumentNumber),
		WBSNode:        strings.TrimSpace(q.WBSNode),
		Order:          order,
		Limit:          q.Limit,
		Offset:         q.Offset,
	})
	if err != nil {
		s.log.Error("register query failed", "project_id", q.ProjectID, "type", q.Type, "error", err)
		return nil, apierr.Internal("register_query_failed", err)
	}
	return rows, nil
}

func (s *registerService) Stats(ctx context.Context, projectID string, typ assets.Type) (*RegisterStats, error) {
	counts, err := s.assets.CountByStatus(dbctx.New(ctx), projectID, typ)
	if err != nil {
		s.log.Error("register stats failed", "project_id", projectID, "type", typ, "error", err)
		return nil, apierr.Internal("register_stats_failed", err)
	}
	out := &RegisterStats{ByStatus: counts}
	for _, n := range counts {
		out.Total += n
	}
	return out, nil
}
