package access

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gatecheck/internal/domain"
)

func TestCreateUser(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	user, err := svc.CreateUser(ctx, &domain.CreateUserRequest{
		Username: "alice",
		Role:     "admin",
		Email:    "alice@example.org",
	})
	require.NoError(t, err)
	assert.True(t, user.IsAdmin)
	require.NotNil(t, user.Email)
	assert.Equal(t, "alice@example.org", *user.Email)

	_, err = svc.CreateUser(ctx, &domain.CreateUserRequest{Username: "alice"})
	var conflict *domain.ConflictError
	assert.ErrorAs(t, err, &conflict)

	_, err = svc.CreateUser(ctx, &domain.CreateUserRequest{Username: "bob", Role: "superuser"})
	var verr *domain.ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestGetUserInfo(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	seed(t, svc, "info_user", map[string]map[string]string{
		"test_group_1": {"phs_project": "read"},
	})
	require.NoError(t, svc.AddUserToGroups(ctx, "info_user", []string{"test_group_1"}))

	info, err := svc.GetUserInfo(ctx, "info_user")
	require.NoError(t, err)
	assert.Equal(t, "info_user", info.Username)
	assert.Equal(t, "user", info.Role)
	assert.Equal(t, []string{"test_group_1"}, info.Groups)
	assert.Equal(t, map[string][]string{"phs_project": {"read"}}, info.ProjectAccess)

	_, err = svc.GetUserInfo(ctx, "missing")
	var nf *domain.NotFoundError
	assert.ErrorAs(t, err, &nf)
}

func TestUpdateUser(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.CreateUser(ctx, &domain.CreateUserRequest{Username: "carol"})
	require.NoError(t, err)

	updated, err := svc.UpdateUser(ctx, &domain.UpdateUserRequest{
		Username:    "carol",
		Role:        "admin",
		Email:       "carol@example.org",
		NewUsername: "caroline",
	})
	require.NoError(t, err)
	assert.Equal(t, "caroline", updated.Username)
	assert.True(t, updated.IsAdmin)

	info, err := svc.GetUserInfo(ctx, "caroline")
	require.NoError(t, err)
	assert.Equal(t, "admin", info.Role)

	_, err = svc.GetUserInfo(ctx, "carol")
	var nf *domain.NotFoundError
	assert.ErrorAs(t, err, &nf)
}

func TestDeleteUser_CascadesAccess(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	seed(t, svc, "doomed", map[string]map[string]string{
		"test_group_1": {"phs_project": "read"},
	})
	require.NoError(t, svc.AddUserToGroups(ctx, "doomed", []string{"test_group_1"}))

	require.NoError(t, svc.DeleteUser(ctx, "doomed"))

	_, err := svc.GetUserInfo(ctx, "doomed")
	var nf *domain.NotFoundError
	assert.ErrorAs(t, err, &nf)

	members, err := svc.AllMembers(ctx, "test_group_1")
	require.NoError(t, err)
	assert.Empty(t, members)
}

func TestListUsers(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	for _, name := range []string{"u1", "u2", "u3"} {
		_, err := svc.CreateUser(ctx, &domain.CreateUserRequest{Username: name})
		require.NoError(t, err)
	}
	users, err := svc.ListUsers(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 3)
}

func TestDeleteGroup_RecomputesMemberAccess(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	user := seed(t, svc, "group_user", map[string]map[string]string{
		"test_group_1": {"phs_project": "read"},
		"test_group_2": {"phs_project": "read"},
	})
	require.NoError(t, svc.AddUserToGroups(ctx, "group_user", []string{"test_group_1", "test_group_2"}))

	require.NoError(t, svc.DeleteGroup(ctx, "test_group_1"))

	// The overlapping group still justifies the row.
	projects, err := svc.EffectiveProjects(ctx, user.ID)
	require.NoError(t, err)
	assert.Contains(t, projects, "phs_project")

	require.NoError(t, svc.DeleteGroup(ctx, "test_group_2"))
	projects, err = svc.EffectiveProjects(ctx, user.ID)
	require.NoError(t, err)
	assert.Empty(t, projects)

	var nf *domain.NotFoundError
	err = svc.AddUserToGroups(ctx, "group_user", []string{"test_group_1"})
	assert.ErrorAs(t, err, &nf)
}

func TestCreateProject_Conflicts(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.CreateProject(ctx, "Project One", "phs000001")
	require.NoError(t, err)

	_, err = svc.CreateProject(ctx, "Project Two", "phs000001")
	var conflict *domain.ConflictError
	assert.ErrorAs(t, err, &conflict)

	_, err = svc.CreateProject(ctx, "", "")
	var verr *domain.ValidationError
	assert.ErrorAs(t, err, &verr)
}
