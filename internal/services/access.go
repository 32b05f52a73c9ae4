package services

import (
	"context"

	"github.com/yungbote/siteproof-backend/internal/data/repos"
	policy "github.com/yungbote/siteproof-backend/internal/domain/access"
	"github.com/yungbote/siteproof-backend/internal/platform/apierr"
	"github.com/yungbote/siteproof-backend/internal/platform/dbctx"
	"github.com/yungbote/siteproof-backend/internal/platform/logger"
)

// ProjectAccess is the caller's standing on one project.
type ProjectAccess struct {
	UserID         string `json:"user_id"`
	ProjectID      string `json:"project_id"`
	OrganizationID string `json:"organization_id"`
	OrgRole        string `json:"org_role"`
	Role           string `json:"role"`
}

type AccessService interface {
	// CheckProjectAccess returns 403 when the user is not in the project's
	// organization, including when the project does not exist.
	CheckProjectAccess(ctx context.Context, userID, projectID string) (*ProjectAccess, error)
	Require(ctx context.Context, access *ProjectAccess, action policy.Action) error
	// Authorize is CheckProjectAccess followed by Require.
	Authorize(ctx context.Context, userID, projectID string, action policy.Action) (*ProjectAccess, error)
}

type accessService struct {
	log    *logger.Logger
	repo   repos.AccessRepo
	policy *policy.Policy
}

func NewAccessService(log *logger.Logger, repo repos.AccessRepo, p *policy.Policy) AccessService {
	return &accessService{log: log.With("service", "AccessService"), repo: repo, policy: p}
}

func (s *accessService) CheckProjectAccess(ctx context.Context, userID, projectID string) (*ProjectAccess, error) {
	if userID == "" {
		return nil, apierr.Unauthorized("authentication required")
	}
	if projectID == "" {
		return nil, apierr.BadRequest("invalid_request", "project id is required")
	}
	row, err := s.repo.Lookup(dbctx.New(ctx), projectID, userID)
	if err != nil {
		s.log.Error("access lookup failed", "project_id", projectID, "user_id", userID, "error", err)
		return nil, apierr.Internal("access_lookup_failed", err)
	}
	if row == nil {
		return nil, apierr.Forbidden("access denied")
	}
	return &ProjectAccess{
		UserID:         userID,
		ProjectID:      row.ProjectID,
		OrganizationID: row.OrganizationID,
		OrgRole:        row.OrgRole,
		Role:           s.policy.RoleOrDefault(row.ProjectRole),
	}, nil
}

func (s *accessService) Require(_ context.Context, access *ProjectAccess, action policy.Action) error {
	if access == nil {
		return apierr.Forbidden("access denied")
	}
	if !s.policy.Allows(access.Role, action) {
		return apierr.Forbidden("role %s may not %s", access.Role, action)
	}
	return nil
}

func (s *accessService) Authorize(ctx context.Context, userID, projectID string, action policy.Action) (*ProjectAccess, error) {
	pa, err := s.CheckProjectAccess(ctx, userID, projectID)
	if err != nil {
		return nil, err
	}
	if err := s.Require(ctx, pa, action); err != nil {
		return nil, err
	}
	return pa, nil
}

type projectAccessKey struct{}

func ContextWithAccess(ctx context.Context, pa *ProjectAccess) context.Context {
	return context.WithValue(ctx, projectAccessKey{}, pa)
}

// AccessFromContext returns the access resolved by the project middleware.
func AccessFromContext(ctx context.Context) *ProjectAccess {
	pa, _ := ctx.Value(projectAccessKey{}).(*ProjectAccess)
	return pa
}
