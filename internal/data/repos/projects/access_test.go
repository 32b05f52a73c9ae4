package projects

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"github.com/yungbote/siteproof-backend/internal/data/repos/testutil"
	domain "github.com/yungbote/siteproof-backend/internal/domain/projects"
	"github.com/yungbote/siteproof-backend/internal/platform/dbctx"
)

func TestAccessRepoLookup(t *testing.T) {
	ctx := context.Background()
	db := testutil.SQLite(t)
	repo := NewAccessRepo(db, testutil.Logger(t))
	dbc := dbctx.New(ctx)

	testutil.SeedTenant(t, ctx, db, "p1", "u1")
	testutil.SeedTenant(t, ctx, db, "p2", "u2")
	testutil.SeedProjectMember(t, ctx, db, "p1", "u1", "qa_manager")

	row, err := repo.Lookup(dbc, "p1", "u1")
	require.NoError(t, err)
	require.NotNil(t, row)
	assert.Equal(t, "org-p1", row.OrganizationID)
	assert.Equal(t, domain.OrgRoleMember, row.OrgRole)
	assert.Equal(t, "qa_manager", row.ProjectRole)

	row, err = repo.Lookup(dbc, "p1", "u2")
	require.NoError(t, err)
	assert.Nil(t, row, "member of another org must not see p1")

	row, err = repo.Lookup(dbc, "missing", "u1")
	require.NoError(t, err)
	assert.Nil(t, row)
}

func TestAccessRepoLookupPropagatesDriverErrors(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()

	gdb, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger: gormLogger.Default.LogMode(gormLogger.Silent),
	})
	require.NoError(t, err)

	mock.ExpectQuery(regexp.QuoteMeta("JOIN organization_users ou ON ou.organization_id = o.id")).
		WithArgs("p1", "u1").
		WillReturnError(errors.New("connection reset by peer"))

	repo := NewAccessRepo(gdb, testutil.Logger(t))
	row, err := repo.Lookup(dbctx.New(context.Background()), "p1", "u1")
	require.Error(t, err)
	assert.Nil(t, row)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestProjectRepoListings(t *testing.T) {
	ctx := context.Background()
	db := testutil.SQLite(t)
	repo := NewProjectRepo(db, testutil.Logger(t))
	dbc := dbctx.New(ctx)

	testutil.SeedTenant(t, ctx, db, "p1", "u1")
	testutil.SeedTenant(t, ctx, db, "p2", "u2")
	testutil.SeedProjectMember(t, ctx, db, "p2", "u1", "client")

	mine, err := repo.ListForUser(dbc, "u1")
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "p1", mine[0].ID)

	portal, err := repo.ListForMemberRole(dbc, "u1", "client")
	require.NoError(t, err)
	require.Len(t, portal, 1)
	assert.Equal(t, "p2", portal[0].ID)

	active, err := repo.CountByStatus(dbc, []string{"p1", "p2"}, domain.StatusActive)
	require.NoError(t, err)
	assert.EqualValues(t, 2, active)
}
