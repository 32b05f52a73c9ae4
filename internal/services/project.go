package services

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/yungbote/siteproof-backend/internal/data/aggregates"
	"github.com/yungbote/siteproof-backend/internal/data/db"
	"github.com/yungbote/siteproof-backend/internal/data/repos"
	policy "github.com/yungbote/siteproof-backend/internal/domain/access"
	"github.com/yungbote/siteproof-backend/internal/domain/audit"
	"github.com/yungbote/siteproof-backend/internal/domain/projects"
	"github.com/yungbote/siteproof-backend/internal/platform/apierr"
	"github.com/yungbote/siteproof-backend/internal/platform/ctxutil"
	"github.com/yungbote/siteproof-backend/internal/platform/dbctx"
	"github.com/yungbote/siteproof-backend/internal/platform/logger"
)

type CreateProjectInput struct {
	OrganizationID string `json:"organization_id"`
	Name           string `json:"name"`
	Code           string `json:"code"`
	Description    string `json:"description"`
	Location       string `json:"location"`
	ClientName     string `json:"client_name"`
}

type ProjectService interface {
	ListForUser(ctx context.Context, userID string) ([]*projects.Project, error)
	Get(ctx context.Context, projectID string) (*projects.Project, error)
	Create(ctx context.Context, userID string, in CreateProjectInput) (*projects.Project, error)
	ListMembers(ctx context.Context, projectID string) ([]*projects.ProjectMember, error)
}

type projectService struct {
	log     *logger.Logger
	runner  aggregates.TxRunner
	repos   repos.Set
	nowFunc func() time.Time
}

func NewProjectService(log *logger.Logger, runner aggregates.TxRunner, set repos.Set) ProjectService {
	return &projectService{
		log:     log.With("service", "ProjectService"),
		runner:  runner,
		repos:   set,
		nowFunc: time.Now,
	}
}

func (s *projectService) ListForUser(ctx context.Context, userID string) ([]*projects.Project, error) {
	if userID == "" {
		return nil, apierr.Unauthorized("authentication required")
	}
	rows, err := s.repos.Projects.ListForUser(dbctx.New(ctx), userID)
	if err != nil {
		return nil, apierr.Internal("project_list_failed", err)
	}
	return rows, nil
}

func (s *projectService) Get(ctx context.Context, projectID string) (*projects.Project, error) {
	p, err := s.repos.Projects.GetByID(dbctx.New(ctx), projectID)
	if err != nil {
		return nil, apierr.Internal("project_lookup_failed", err)
	}
	if p == nil {
		return nil, apierr.NotFound("project %s not found", projectID)
	}
	return p, nil
}

func (s *projectService) Create(ctx context.Context, userID string, in CreateProjectInput) (*projects.Project, error) {
	if userID == "" {
		return nil, apierr.Unauthorized("authentication required")
	}
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return nil, apierr.BadRequest("invalid_request", "name is required")
	}
	orgID, err := s.resolveOrganization(ctx, userID, strings.TrimSpace(in.OrganizationID))
	if err != nil {
		return nil, err
	}

	now := s.nowFunc().UTC()
	p := &projects.Project{
		ID:             uuid.NewString(),
		OrganizationID: orgID,
		Name:           in.Name,
		Code:           strings.TrimSpace(in.Code),
		Description:    strings.TrimSpace(in.Description),
		Location:       strings.TrimSpace(in.Location),
		ClientName:     strings.TrimSpace(in.ClientName),
		Status:         projects.StatusActive,
		CreatedByUser:  userID,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	err = s.runner.InTx(ctx, func(dbc dbctx.Context) error {
		if err := s.repos.Projects.Create(dbc, p); err != nil {
			return err
		}
		if err := s.repos.Members.Upsert(dbc, &projects.ProjectMember{
			ProjectID: p.ID,
			UserID:    userID,
			Role:      policy.RoleAdmin,
			CreatedAt: now,
		}); err != nil {
			return err
		}
		details, _ := json.Marshal(map[string]any{"name": p.Name, "organization_id": orgID})
		return s.repos.Audit.Create(dbc, &audit.Event{
			ID:          uuid.NewString(),
			ProjectID:   p.ID,
			ActorUserID: userID,
			Action:      audit.ActionProjectCreated,
			Source:      "api",
			RequestID:   ctxutil.RequestID(ctx),
			Details:     datatypes.JSON(details),
			CreatedAt:   now,
		})
	})
	if err != nil {
		if db.IsUniqueViolation(err) {
			return nil, apierr.Conflict("project_exists", "a project named %q already exists", p.Name)
		}
		s.log.Error("create project failed", "organization_id", orgID, "error", err)
		return nil, apierr.Internal("project_create_failed", err)
	}
	s.log.Info("project created", "project_id", p.ID, "organization_id", orgID, "user_id", userID)
	return p, nil
}

// resolveOrganization picks the requested org, or the caller's only one, and
// requires an owner or admin membership in it.
func (s *projectService) resolveOrganization(ctx context.Context, userID, orgID string) (string, error) {
	dbc := dbctx.New(ctx)
	if orgID == "" {
		memberships, err := s.repos.Organizations.ListMemberships(dbc, userID)
		if err != nil {
			return "", apierr.Internal("membership_lookup_failed", err)
		}
		switch len(memberships) {
		case 0:
			return "", apierr.Forbidden("you do not belong to an organization")
		case 1:
			orgID = memberships[0].OrganizationID
		default:
			return "", apierr.BadRequest("invalid_request", "organization_id is required when you belong to several organizations")
		}
	}
	m, err := s.repos.Organizations.GetMembership(dbc, orgID, userID)
	if err != nil {
		return "", apierr.Internal("membership_lookup_failed", err)
	}
	if m == nil || !m.CanManage() {
		return "", apierr.Forbidden("only organization owners and admins may create projects")
	}
	return orgID, nil
}

func (s *projectService) ListMembers(ctx context.Context, projectID string) ([]*projects.ProjectMember, error) {
	rows, err := s.repos.Members.ListByProject(dbctx.New(ctx), projectID)
	if err != nil {
		return nil, apierr.Internal("member_list_failed", err)
	}
	return rows, nil
}
