package services

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/yungbote/siteproof-backend/internal/data/repos"
	"github.com/yungbote/siteproof-backend/internal/domain/assets"
	"github.com/yungbote/siteproof-backend/internal/domain/projects"
	"github.com/yungbote/siteproof-backend/internal/platform/apierr"
	"github.com/yungbote/siteproof-backend/internal/platform/dbctx"
	"github.com/yungbote/siteproof-backend/internal/platform/logger"
)

const recentProjectCount = 2

type DashboardSummary struct {
	ActiveProjects     int64               `json:"activeProjects"`
	PendingInspections int64               `json:"pendingInspections"`
	ClosedLots         int64               `json:"closedLots"`
	RecentProjects     []*projects.Project `json:"recentProjects"`
}

type DashboardService interface {
	Summary(ctx context.Context, userID string) (*DashboardSummary, error)
}

type dashboardService struct {
	log      *logger.Logger
	projects repos.ProjectRepo
	assets   repos.AssetRepo
}

func NewDashboardService(log *logger.Logger, projectRepo repos.ProjectRepo, assetRepo repos.AssetRepo) DashboardService {
	return &dashboardService{log: log.With("service", "DashboardService"), projects: projectRepo, assets: assetRepo}
}

func (s *dashboardService) Summary(ctx context.Context, userID string) (*DashboardSummary, error) {
	if userID == "" {
		return nil, apierr.Unauthorized("authentication required")
	}
	list, err := s.projects.ListForUser(dbctx.New(ctx), userID)
	if err != nil {
		return nil, apierr.Internal("dashboard_failed", err)
	}
	out := &DashboardSummary{RecentProjects: []*projects.Project{}}
	if len(list) == 0 {
		return out, nil
	}
	ids := make([]string, 0, len(list))
	for _, p := range list {
		ids = append(ids, p.ID)
	}
	if len(list) > recentProjectCount {
		out.RecentProjects = list[:recentProjectCount]
	} else {
		out.RecentProjects = list
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		n, err := s.projects.CountByStatus(dbctx.New(gctx), ids, projects.StatusActive)
		out.ActiveProjects = n
		return err
	})
	g.Go(func() error {
		n, err := s.assets.Count(dbctx.New(gctx), ids, assets.TypeInspectionPoint, []string{"pending"})
		out.PendingInspections = n
		return err
	})
	g.Go(func() error {
		n, err := s.assets.Count(dbctx.New(gctx), ids, assets.TypeLot, []string{"closed"})
		out.ClosedLots = n
		return err
	})
	if err := g.Wait(); err != nil {
		s.log.Error("dashboard counts failed", "error", err)
		return nil, apierr.Internal("dashboard_failed", err)
	}
	return out, nil
}
