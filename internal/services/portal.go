package services

import (
	"context"

	"github.com/yungbote/siteproof-backend/internal/data/repos"
	"github.com/yungbote/siteproof-backend/internal/domain/projects"
	"github.com/yungbote/siteproof-backend/internal/platform/apierr"
	"github.com/yungbote/siteproof-backend/internal/platform/dbctx"
	"github.com/yungbote/siteproof-backend/internal/platform/logger"
)

// PortalService lists the projects a user reaches through a portal role.
type PortalService interface {
	ListProjectsForRole(ctx context.Context, userID, role string) ([]*projects.Project, error)
}

type portalService struct {
	log      *logger.Logger
	projects repos.ProjectRepo
}

func NewPortalService(log *logger.Logger, projectRepo repos.ProjectRepo) PortalService {
	return &portalService{log: log.With("service", "PortalService"), projects: projectRepo}
}

func (s *portalService) ListProjectsForRole(ctx context.Context, userID, role string) ([]*projects.Project, error) {
	if userID == "" {
		return nil, apierr.Unauthorized("authentication required")
	}
	rows, err := s.projects.ListForMemberRole(dbctx.New(ctx), userID, role)
	if err != nil {
		s.log.Error("portal project list failed", "role", role, "error", err)
		return nil, apierr.Internal("portal_list_failed", err)
	}
	return rows, nil
}
