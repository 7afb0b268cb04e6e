package cli

import (
	"bytes"
	"path/filepath"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// runCmd executes the CLI with the given args against a shared database and
// returns the combined output.
func runCmd(t *testing.T, dbPath string, args ...string) (string, error) {
	t.Helper()
	var buf bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	cmd.SetArgs(append([]string{"--db", dbPath}, args...))
	err := cmd.Execute()
	return buf.String(), err
}

func testDBPath(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "cli.sqlite")
}

func TestUserLifecycle(t *testing.T) {
	dbPath := testDBPath(t)

	out, err := runCmd(t, dbPath, "user", "create", "alice", "--email", "alice@example.org")
	require.NoError(t, err)
	assert.Contains(t, out, "created user alice")

	// Duplicate usernames are rejected.
	_, err = runCmd(t, dbPath, "user", "create", "alice")
	require.Error(t, err)

	out, err = runCmd(t, dbPath, "user", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "alice")
	assert.Contains(t, out, "alice@example.org")

	_, err = runCmd(t, dbPath, "user", "delete", "alice")
	require.NoError(t, err)

	_, err = runCmd(t, dbPath, "user", "info", "alice")
	require.Error(t, err)
}

func TestAccessGraphCommands(t *testing.T) {
	dbPath := testDBPath(t)

	for _, args := range [][]string{
		{"user", "create", "alice"},
		{"group", "create", "readers"},
		{"project", "create", "Project One", "--auth-id", "phs000001"},
		{"group", "add-project", "readers", "phs000001", "--privilege", "read"},
		{"user", "groups", "add", "alice", "readers"},
	} {
		_, err := runCmd(t, dbPath, args...)
		require.NoError(t, err, "args: %v", args)
	}

	out, err := runCmd(t, dbPath, "group", "members", "readers")
	require.NoError(t, err)
	assert.Contains(t, out, "alice")

	out, err = runCmd(t, dbPath, "user", "info", "alice")
	require.NoError(t, err)
	assert.Contains(t, out, "readers")
	assert.Contains(t, out, "phs000001: read")

	// A direct grant widens the effective level.
	_, err = runCmd(t, dbPath, "user", "grant", "alice", "phs000001", "--privilege", "upload")
	require.NoError(t, err)
	out, err = runCmd(t, dbPath, "user", "info", "alice")
	require.NoError(t, err)
	assert.Contains(t, out, "phs000001: upload")

	// Leaving the group keeps the direct grant.
	_, err = runCmd(t, dbPath, "user", "groups", "remove", "alice", "readers")
	require.NoError(t, err)
	out, err = runCmd(t, dbPath, "user", "info", "alice")
	require.NoError(t, err)
	assert.Contains(t, out, "phs000001: upload")
}

func TestKeygenAndTokenIssue(t *testing.T) {
	dbPath := testDBPath(t)
	keyPath := filepath.Join(t.TempDir(), "signing.pem")

	_, err := runCmd(t, dbPath, "keygen", "--kid", "k1", "--out", keyPath)
	require.NoError(t, err)

	_, err = runCmd(t, dbPath, "user", "create", "alice")
	require.NoError(t, err)

	out, err := runCmd(t, dbPath, "token", "issue", "alice", "--key", keyPath, "--kid", "k1")
	require.NoError(t, err)
	assert.NotEmpty(t, out)

	// Unknown subjects cannot be minted for.
	_, err = runCmd(t, dbPath, "token", "issue", "ghost", "--key", keyPath, "--kid", "k1")
	require.Error(t, err)

	out, err = runCmd(t, dbPath, "token", "gc")
	require.NoError(t, err)
	assert.Contains(t, out, "removed 0 expired")
}
