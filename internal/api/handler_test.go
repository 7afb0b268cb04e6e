package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"

	"gatecheck/internal/db"
	"gatecheck/internal/db/repository"
	"gatecheck/internal/domain"
	"gatecheck/internal/middleware"
	"gatecheck/internal/service/access"
	"gatecheck/internal/service/broker"
	"gatecheck/internal/service/cloudpolicy"
	"gatecheck/internal/service/token"
)

// stubCloudManager answers like a registrable project.
type stubCloudManager struct{}

func (stubCloudManager) HasParentOrganization(context.Context, string) (bool, error) {
	return true, nil
}

func (stubCloudManager) GetProjectMembership(context.Context, string) ([]domain.PolicyMember, error) {
	return []domain.PolicyMember{{MemberType: domain.MemberTypeUser, MemberID: "owner@example.org"}}, nil
}

func (stubCloudManager) GetServiceAccountType(context.Context, string, string) (string, error) {
	return domain.ServiceAccountUserManaged, nil
}

func (stubCloudManager) GetAllServiceAccounts(context.Context, string) ([]string, error) {
	return []string{"sa@proj.iam.gserviceaccount.com"}, nil
}

func (stubCloudManager) GetServiceAccount(_ context.Context, _, accountID string) (*domain.ServiceAccountResponse, error) {
	return &domain.ServiceAccountResponse{Status: 200, Email: accountID, UniqueID: "123"}, nil
}

func (stubCloudManager) GetServiceAccountPolicy(context.Context, string) (*domain.PolicyResponse, error) {
	return &domain.PolicyResponse{Status: 200}, nil
}

func (stubCloudManager) GetServiceAccountKeysInfo(context.Context, string) ([]domain.ServiceAccountKey, error) {
	return nil, nil
}

type testEnv struct {
	server    *httptest.Server
	access    *access.Service
	authority *token.Authority
}

func newTestEnv(t *testing.T) *testEnv {
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

	policy := cloudpolicy.New(stubCloudManager{}, repository.NewRegistrationRepo(writeDB), logger, time.Second)
	brokerSvc := broker.New(authority, accessSvc, policy, users)

	handler := NewHandler(brokerSvc, accessSvc, authority, policy, nil,
		20*time.Minute, 24*time.Hour, 7*24*time.Hour, logger)
	auth := middleware.NewAuthenticator(brokerSvc, logger)
	router := NewRouter(handler, auth, RouterConfig{
		CORSAllowedOrigins: []string{"*"},
		RateLimitRPS:       1000,
		RateLimitBurst:     1000,
	})

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	return &testEnv{server: srv, access: accessSvc, authority: authority}
}

// adminToken creates an admin account and returns a bearer token for it.
func (e *testEnv) adminToken(t *testing.T) string {
	t.Helper()
	_, err := e.access.CreateUser(context.Background(), &domain.CreateUserRequest{
		Username: "root",
		Role:     "admin",
	})
	require.NoError(t, err)
	signed, _, err := e.authority.Issue("root", []string{"user", "admin"}, time.Hour)
	require.NoError(t, err)
	return signed
}

func (e *testEnv) userToken(t *testing.T, username string) string {
	t.Helper()
	_, err := e.access.CreateUser(context.Background(), &domain.CreateUserRequest{Username: username})
	require.NoError(t, err)
	signed, _, err := e.authority.Issue(username, []string{"user"}, time.Hour)
	require.NoError(t, err)
	return signed
}

// do performs a request and decodes the JSON response into out (if non-nil).
func (e *testEnv) do(t *testing.T, method, path, bearer string, body, out interface{}) int {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, e.server.URL+path, reader)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := e.server.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close() //nolint:errcheck

	if out != nil && resp.StatusCode < 300 && resp.StatusCode != http.StatusNoContent {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}
