package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	internaldb "gatecheck/internal/db"
	"gatecheck/internal/domain"
)

func openRepoDB(t *testing.T) *sql.DB {
	t.Helper()
	writeDB, _ := internaldb.OpenTestSQLite(t)
	return writeDB
}

func strPtr(s string) *string { return &s }

func TestUserRepo_CRUD(t *testing.T) {
	writeDB := openRepoDB(t)
	repo := NewUserRepo(writeDB)
	ctx := context.Background()

	created, err := repo.Create(ctx, &domain.User{Username: "alice", Email: strPtr("alice@example.org")})
	require.NoError(t, err)
	assert.NotZero(t, created.ID)
	assert.False(t, created.IsAdmin)

	// Duplicate usernames conflict.
	_, err = repo.Create(ctx, &domain.User{Username: "alice"})
	var conflict *domain.ConflictError
	require.ErrorAs(t, err, &conflict)

	got, err := repo.GetByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
	require.NotNil(t, got.Email)
	assert.Equal(t, "alice@example.org", *got.Email)

	got.IsAdmin = true
	got.Email = nil
	require.NoError(t, repo.Update(ctx, got))
	got, err = repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.True(t, got.IsAdmin)
	assert.Nil(t, got.Email)

	users, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 1)

	require.NoError(t, repo.Delete(ctx, created.ID))
	_, err = repo.GetByID(ctx, created.ID)
	var notFound *domain.NotFoundError
	assert.ErrorAs(t, err, &notFound)
}

func TestGroupRepo_MembersAndProjects(t *testing.T) {
	writeDB := openRepoDB(t)
	users := NewUserRepo(writeDB)
	groups := NewGroupRepo(writeDB)
	projects := NewProjectRepo(writeDB)
	ctx := context.Background()

	alice, err := users.Create(ctx, &domain.User{Username: "alice"})
	require.NoError(t, err)
	group, err := groups.Create(ctx, &domain.Group{Name: "readers"})
	require.NoError(t, err)
	project, err := projects.Create(ctx, &domain.Project{Name: "Project One", AuthID: "phs000001"})
	require.NoError(t, err)

	_, err = groups.Create(ctx, &domain.Group{Name: "readers"})
	var conflict *domain.ConflictError
	require.ErrorAs(t, err, &conflict)

	require.NoError(t, groups.AddMember(ctx, &domain.UserToGroup{UserID: alice.ID, GroupID: group.ID}))
	// Adding twice is a no-op, not an error.
	require.NoError(t, groups.AddMember(ctx, &domain.UserToGroup{UserID: alice.ID, GroupID: group.ID}))

	members, err := groups.ListMembers(ctx, group.ID)
	require.NoError(t, err)
	require.Len(t, members, 1)
	assert.Equal(t, "alice", members[0].Username)

	memberOf, err := groups.GetGroupsForUser(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, memberOf, 1)
	assert.Equal(t, "readers", memberOf[0].Name)

	require.NoError(t, groups.AddProject(ctx, &domain.GroupProject{
		GroupID: group.ID, ProjectID: project.ID, Privilege: domain.PrivilegeRead,
	}))
	// Re-adding with a different level replaces the grant.
	require.NoError(t, groups.AddProject(ctx, &domain.GroupProject{
		GroupID: group.ID, ProjectID: project.ID, Privilege: domain.PrivilegeUpload,
	}))
	grants, err := groups.ListProjects(ctx, group.ID)
	require.NoError(t, err)
	require.Len(t, grants, 1)
	assert.Equal(t, domain.PrivilegeUpload, grants[0].Privilege)

	require.NoError(t, groups.RemoveMember(ctx, &domain.UserToGroup{UserID: alice.ID, GroupID: group.ID}))
	members, err = groups.ListMembers(ctx, group.ID)
	require.NoError(t, err)
	assert.Empty(t, members)
}

func TestProjectRepo(t *testing.T) {
	writeDB := openRepoDB(t)
	repo := NewProjectRepo(writeDB)
	ctx := context.Background()

	created, err := repo.Create(ctx, &domain.Project{Name: "Project One", AuthID: "phs000001"})
	require.NoError(t, err)

	_, err = repo.Create(ctx, &domain.Project{Name: "Other", AuthID: "phs000001"})
	var conflict *domain.ConflictError
	require.ErrorAs(t, err, &conflict)

	got, err := repo.GetByAuthID(ctx, "phs000001")
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)

	_, err = repo.GetByAuthID(ctx, "phs999999")
	var notFound *domain.NotFoundError
	assert.ErrorAs(t, err, &notFound)

	list, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestPrivilegeRepo(t *testing.T) {
	writeDB := openRepoDB(t)
	users := NewUserRepo(writeDB)
	projects := NewProjectRepo(writeDB)
	repo := NewPrivilegeRepo(writeDB)
	ctx := context.Background()

	alice, err := users.Create(ctx, &domain.User{Username: "alice"})
	require.NoError(t, err)
	project, err := projects.Create(ctx, &domain.Project{Name: "Project One", AuthID: "phs000001"})
	require.NoError(t, err)

	require.NoError(t, repo.Upsert(ctx, &domain.AccessPrivilege{
		UserID: alice.ID, ProjectID: project.ID, Privilege: domain.PrivilegeRead,
	}))

	got, err := repo.Get(ctx, alice.ID, project.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.PrivilegeRead, got.Privilege)
	assert.False(t, got.Direct())

	// Group-derived rows don't count as direct grants.
	direct, err := repo.HasDirect(ctx, alice.ID, "phs000001")
	require.NoError(t, err)
	assert.False(t, direct)

	// Upsert replaces the single row per pair.
	require.NoError(t, repo.Upsert(ctx, &domain.AccessPrivilege{
		UserID: alice.ID, ProjectID: project.ID,
		Privilege: domain.PrivilegeAdmin, DirectPrivilege: strPtr(domain.PrivilegeAdmin),
	}))
	rows, err := repo.ListForUser(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, domain.PrivilegeAdmin, rows[0].Privilege)
	assert.True(t, rows[0].Direct())

	direct, err = repo.HasDirect(ctx, alice.ID, "phs000001")
	require.NoError(t, err)
	assert.True(t, direct)

	require.NoError(t, repo.Delete(ctx, alice.ID, project.ID))
	_, err = repo.Get(ctx, alice.ID, project.ID)
	var notFound *domain.NotFoundError
	assert.ErrorAs(t, err, &notFound)
}

func TestRevokedTokenRepo(t *testing.T) {
	writeDB := openRepoDB(t)
	repo := NewRevokedTokenRepo(writeDB)
	ctx := context.Background()
	now := time.Now()

	require.NoError(t, repo.Insert(ctx, &domain.RevokedToken{TokenID: "jti-1", ExpiresAt: now.Add(time.Hour)}))
	// Re-revoking the same token is a no-op.
	require.NoError(t, repo.Insert(ctx, &domain.RevokedToken{TokenID: "jti-1", ExpiresAt: now.Add(time.Hour)}))
	require.NoError(t, repo.Insert(ctx, &domain.RevokedToken{TokenID: "jti-2", ExpiresAt: now.Add(-time.Hour)}))

	revoked, err := repo.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.True(t, revoked)
	revoked, err = repo.IsRevoked(ctx, "unknown")
	require.NoError(t, err)
	assert.False(t, revoked)

	removed, err := repo.DeleteExpired(ctx, now.Unix())
	require.NoError(t, err)
	assert.EqualValues(t, 1, removed)

	revoked, err = repo.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.True(t, revoked)
}

func TestRegistrationRepo(t *testing.T) {
	writeDB := openRepoDB(t)
	repo := NewRegistrationRepo(writeDB)
	ctx := context.Background()
	now := time.Now()

	reg := &domain.ServiceAccountRegistration{
		CloudProjectID: "proj",
		AccountEmail:   "sa@proj.iam.gserviceaccount.com",
		ExpiresAt:      now.Add(time.Hour),
	}
	require.NoError(t, repo.Upsert(ctx, reg))

	got, err := repo.GetByEmail(ctx, reg.AccountEmail)
	require.NoError(t, err)
	assert.Equal(t, "proj", got.CloudProjectID)

	// Renewal extends the expiry in place.
	reg.ExpiresAt = now.Add(48 * time.Hour)
	require.NoError(t, repo.Upsert(ctx, reg))
	regs, err := repo.ListForProject(ctx, "proj")
	require.NoError(t, err)
	require.Len(t, regs, 1)
	assert.Equal(t, reg.ExpiresAt.Unix(), regs[0].ExpiresAt.Unix())

	removed, err := repo.DeleteExpired(ctx, now.Add(72*time.Hour).Unix())
	require.NoError(t, err)
	assert.EqualValues(t, 1, removed)

	_, err = repo.GetByEmail(ctx, reg.AccountEmail)
	var notFound *domain.NotFoundError
	assert.ErrorAs(t, err, &notFound)
}
