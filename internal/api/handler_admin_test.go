package api

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdminUserLifecycle(t *testing.T) {
	env := newTestEnv(t)
	admin := env.adminToken(t)

	// Create.
	var created userResponse
	status := env.do(t, http.MethodPost, "/admin/users", admin,
		createUserRequest{Username: "alice", Email: "alice@example.org"}, &created)
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, "alice", created.Username)
	assert.Equal(t, "user", created.Role)

	// Duplicate conflicts.
	status = env.do(t, http.MethodPost, "/admin/users", admin,
		createUserRequest{Username: "alice"}, nil)
	assert.Equal(t, http.StatusConflict, status)

	// Update: promote and rename.
	var updated userResponse
	status = env.do(t, http.MethodPut, "/admin/users/alice", admin,
		updateUserRequest{Role: "admin", NewUsername: "alicia"}, &updated)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "alicia", updated.Username)
	assert.Equal(t, "admin", updated.Role)

	// List includes both accounts.
	var users []userResponse
	status = env.do(t, http.MethodGet, "/admin/users", admin, nil, &users)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, users, 2)

	// Delete.
	status = env.do(t, http.MethodDelete, "/admin/users/alicia", admin, nil, nil)
	require.Equal(t, http.StatusNoContent, status)
	status = env.do(t, http.MethodGet, "/admin/users/alicia", admin, nil, nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestAdminAccessGraph(t *testing.T) {
	env := newTestEnv(t)
	admin := env.adminToken(t)

	require.Equal(t, http.StatusCreated, env.do(t, http.MethodPost, "/admin/users", admin,
		createUserRequest{Username: "alice"}, nil))
	require.Equal(t, http.StatusCreated, env.do(t, http.MethodPost, "/admin/groups", admin,
		createGroupRequest{Name: "readers"}, nil))
	require.Equal(t, http.StatusCreated, env.do(t, http.MethodPost, "/admin/projects", admin,
		createProjectRequest{Name: "Project One", AuthID: "phs000001"}, nil))
	require.Equal(t, http.StatusNoContent, env.do(t, http.MethodPost, "/admin/groups/readers/projects", admin,
		groupProjectRequest{Project: "phs000001", Privilege: "read"}, nil))
	require.Equal(t, http.StatusNoContent, env.do(t, http.MethodPost, "/admin/users/alice/groups", admin,
		groupsRequest{Groups: []string{"readers"}}, nil))

	// Membership shows up.
	var members map[string][]string
	require.Equal(t, http.StatusOK, env.do(t, http.MethodGet, "/admin/groups/readers/members", admin, nil, &members))
	assert.Equal(t, []string{"alice"}, members["members"])

	// The user info reflects derived access.
	var info userInfoResponse
	require.Equal(t, http.StatusOK, env.do(t, http.MethodGet, "/admin/users/alice", admin, nil, &info))
	assert.Equal(t, []string{"readers"}, info.Groups)
	assert.Equal(t, map[string][]string{"phs000001": {"read"}}, info.ProjectAccess)

	// Authorization checks, admin-side and self-side.
	var authz authorizeResponse
	require.Equal(t, http.StatusOK, env.do(t, http.MethodGet,
		"/admin/users/alice/authorize?project=phs000001", admin, nil, &authz))
	assert.True(t, authz.Authorized)

	aliceToken, _, err := env.authority.Issue("alice", []string{"user"}, time.Hour)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, env.do(t, http.MethodGet,
		"/projects/phs000001/authorize", aliceToken, nil, &authz))
	assert.True(t, authz.Authorized)
	require.Equal(t, http.StatusOK, env.do(t, http.MethodGet,
		"/projects/phs999999/authorize", aliceToken, nil, &authz))
	assert.False(t, authz.Authorized)

	// Removing the group removes derived access.
	require.Equal(t, http.StatusNoContent, env.do(t, http.MethodDelete, "/admin/users/alice/groups", admin,
		groupsRequest{Groups: []string{"readers"}}, nil))
	require.Equal(t, http.StatusOK, env.do(t, http.MethodGet,
		"/admin/users/alice/authorize?project=phs000001", admin, nil, &authz))
	assert.False(t, authz.Authorized)

	// A direct grant restores it.
	require.Equal(t, http.StatusNoContent, env.do(t, http.MethodPost, "/admin/users/alice/access", admin,
		grantAccessRequest{Project: "phs000001", Privilege: "upload"}, nil))
	require.Equal(t, http.StatusOK, env.do(t, http.MethodGet, "/admin/users/alice", admin, nil, &info))
	assert.Equal(t, map[string][]string{"phs000001": {"upload"}}, info.ProjectAccess)
}

func TestCertifyAndRegister(t *testing.T) {
	env := newTestEnv(t)
	admin := env.adminToken(t)

	var resp certifyResponse
	status := env.do(t, http.MethodPost, "/admin/google/certify", admin,
		certifyRequest{ProjectID: "proj", AccountID: "sa@proj.iam.gserviceaccount.com"}, &resp)
	require.Equal(t, http.StatusOK, status)
	assert.True(t, resp.Certified)

	status = env.do(t, http.MethodPost, "/admin/google/register", admin,
		certifyRequest{ProjectID: "proj", AccountID: "sa@proj.iam.gserviceaccount.com"}, &resp)
	require.Equal(t, http.StatusOK, status)
	assert.True(t, resp.Certified)

	var accounts []map[string]string
	status = env.do(t, http.MethodGet, "/admin/google/projects/proj/service-accounts", admin, nil, &accounts)
	require.Equal(t, http.StatusOK, status)
	require.Len(t, accounts, 1)
	assert.Equal(t, "sa@proj.iam.gserviceaccount.com", accounts[0]["email"])

	status = env.do(t, http.MethodPost, "/admin/google/certify", admin,
		certifyRequest{ProjectID: "proj"}, nil)
	assert.Equal(t, http.StatusBadRequest, status)
}
