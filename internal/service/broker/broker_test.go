package broker

import (
	"context"
	"log/slog"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gatecheck/internal/db"
	"gatecheck/internal/db/repository"
	"gatecheck/internal/domain"
	"gatecheck/internal/service/access"
	"gatecheck/internal/service/token"
)

func newTestBroker(t *testing.T) (*Broker, *access.Service, *token.Authority) {
	t.Helper()
	writeDB, _ := db.OpenTestSQLite(t)
	logger := slog.New(slog.DiscardHandler)

	users := repository.NewUserRepo(writeDB)
	accessSvc := access.New(
		writeDB,
		users,
		repository.NewGroupRepo(writeDB),
		repository.NewProjectRepo(writeDB),
		repository.NewPrivilegeRepo(writeDB),
		logger,
	)

	keypair, err := token.GenerateKeypair("k1")
	require.NoError(t, err)
	ring, err := token.NewKeyRing([]token.Keypair{keypair})
	require.NoError(t, err)
	authority := token.NewAuthority(ring, repository.NewRevokedTokenRepo(writeDB), "gatecheck-test", logger)

	return New(authority, accessSvc, nil, users), accessSvc, authority
}

func TestBroker_Authenticate(t *testing.T) {
	b, accessSvc, authority := newTestBroker(t)
	ctx := context.Background()

	_, err := accessSvc.CreateUser(ctx, &domain.CreateUserRequest{Username: "alice"})
	require.NoError(t, err)

	signed, _, err := authority.Issue("alice", []string{"user"}, time.Hour)
	require.NoError(t, err)

	user, claims, err := b.Authenticate(ctx, signed)
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)
	assert.Equal(t, "alice", claims.Subject)

	// Valid token for an unknown subject does not authenticate.
	ghost, _, err := authority.Issue("ghost", []string{"user"}, time.Hour)
	require.NoError(t, err)
	_, _, err = b.Authenticate(ctx, ghost)
	var nf *domain.NotFoundError
	assert.ErrorAs(t, err, &nf)

	_, _, err = b.Authenticate(ctx, "garbage")
	assert.ErrorIs(t, err, token.ErrInvalidSignature)
}

func TestBroker_Authorize(t *testing.T) {
	b, accessSvc, _ := newTestBroker(t)
	ctx := context.Background()

	_, err := accessSvc.CreateUser(ctx, &domain.CreateUserRequest{Username: "alice"})
	require.NoError(t, err)
	_, err = accessSvc.CreateGroup(ctx, "readers")
	require.NoError(t, err)
	_, err = accessSvc.CreateProject(ctx, "Project One", "phs000001")
	require.NoError(t, err)
	require.NoError(t, accessSvc.AddProjectToGroup(ctx, "readers", "phs000001", "read"))
	require.NoError(t, accessSvc.AddUserToGroups(ctx, "alice", []string{"readers"}))

	ok, err := b.Authorize(ctx, "alice", "phs000001")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = b.Authorize(ctx, "alice", "phs999999")
	require.NoError(t, err)
	assert.False(t, ok)

	// Unknown users are unauthorized, not an error.
	ok, err = b.Authorize(ctx, "nobody", "phs000001")
	require.NoError(t, err)
	assert.False(t, ok)
}
