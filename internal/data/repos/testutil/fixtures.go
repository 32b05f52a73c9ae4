package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/yungbote/siteproof-backend/internal/domain/assets"
	"github.com/yungbote/siteproof-backend/internal/domain/projects"
)

// SeedTenant creates an organization, a project owned by it and an org member.
func SeedTenant(tb testing.TB, ctx context.Context, tx *gorm.DB, projectID, userID string) *projects.Project {
	tb.Helper()
	now := time.Now().UTC()
	org := &projects.Organization{ID: "org-" + projectID, Name: "Org " + projectID, CreatedAt: now}
	if err := tx.WithContext(ctx).Create(org).Error; err != nil {
		tb.Fatalf("seed organization: %v", err)
	}
	p := &projects.Project{
		ID:             projectID,
		OrganizationID: org.ID,
		Name:           "Project " + projectID,
		Status:         projects.StatusActive,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := tx.WithContext(ctx).Create(p).Error; err != nil {
		tb.Fatalf("seed project: %v", err)
	}
	if userID != "" {
		SeedOrgUser(tb, ctx, tx, org.ID, userID, projects.OrgRoleMember)
	}
	return p
}

func SeedOrgUser(tb testing.TB, ctx context.Context, tx *gorm.DB, orgID, userID, role string) {
	tb.Helper()
	ou := &projects.OrganizationUser{OrganizationID: orgID, UserID: userID, Role: role, CreatedAt: time.Now().UTC()}
	if err := tx.WithContext(ctx).Create(ou).Error; err != nil {
		tb.Fatalf("seed organization user: %v", err)
	}
}

func SeedProjectMember(tb testing.TB, ctx context.Context, tx *gorm.DB, projectID, userID, role string) {
	tb.Helper()
	pm := &projects.ProjectMember{ProjectID: projectID, UserID: userID, Role: role, CreatedAt: time.Now().UTC()}
	if err := tx.WithContext(ctx).Create(pm).Error; err != nil {
		tb.Fatalf("seed project member: %v", err)
	}
}

// SeedAsset inserts an asset directly, bypassing validation.
func SeedAsset(tb testing.TB, ctx context.Context, tx *gorm.DB, projectID string, typ assets.Type, mutate func(*assets.Asset)) *assets.Asset {
	tb.Helper()
	now := time.Now().UTC()
	a := &assets.Asset{
		ID:             uuid.NewString(),
		ProjectID:      projectID,
		Type:           typ,
		Version:        1,
		Status:         assets.MachineFor(typ).Initial,
		Content:        datatypes.JSON([]byte("{}")),
		IdempotencyKey: "seed:" + uuid.NewString(),
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if mutate != nil {
		mutate(a)
	}
	if err := tx.WithContext(ctx).Create(a).Error; err != nil {
		tb.Fatalf("seed asset: %v", err)
	}
	return a
}

func SeedEdge(tb testing.TB, ctx context.Context, tx *gorm.DB, projectID, from, to string, typ assets.EdgeType) *assets.Edge {
	tb.Helper()
	e := &assets.Edge{
		ID:          uuid.NewString(),
		ProjectID:   projectID,
		FromAssetID: from,
		ToAssetID:   to,
		EdgeType:    typ,
		CreatedAt:   time.Now().UTC(),
	}
	if err := tx.WithContext(ctx).Create(e).Error; err != nil {
		tb.Fatalf("seed edge: %v", err)
	}
	return e
}
