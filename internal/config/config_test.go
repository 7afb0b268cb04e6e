package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "gatecheck.sqlite", cfg.DBPath)
	assert.Equal(t, ":8080", cfg.ListenAddr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "gatecheck", cfg.Token.Issuer)
	assert.Equal(t, 20*time.Minute, cfg.Token.AccessTTL)
	assert.Equal(t, 30*24*time.Hour, cfg.Token.RefreshTTL)
	assert.Equal(t, 30*time.Second, cfg.Google.CallTimeout)
	assert.True(t, cfg.Token.GenerateDevKeys)
	assert.NotEmpty(t, cfg.Warnings)
}

func TestLoad_YAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
db_path: /var/lib/gatecheck/broker.sqlite
listen_addr: ":9090"
log_level: debug
token:
  issuer: broker.example.org
  access_ttl: 10m
  signing_keys:
    - kid: key-2024
      path: /etc/gatecheck/key-2024.pem
    - kid: key-2023
      path: /etc/gatecheck/key-2023.pem
auth:
  issuer_url: https://login.example.org
  audience: gatecheck
google:
  registration_ttl: 168h
`), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/var/lib/gatecheck/broker.sqlite", cfg.DBPath)
	assert.Equal(t, ":9090", cfg.ListenAddr)
	assert.Equal(t, slog.LevelDebug, cfg.SlogLevel())
	assert.Equal(t, "broker.example.org", cfg.Token.Issuer)
	assert.Equal(t, 10*time.Minute, cfg.Token.AccessTTL)
	require.Len(t, cfg.Token.SigningKeys, 2)
	assert.Equal(t, "key-2024", cfg.Token.SigningKeys[0].KID)
	assert.False(t, cfg.Token.GenerateDevKeys)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("listen_addr: \":9090\"\n"), 0o600))

	t.Setenv("LISTEN_ADDR", ":7070")
	t.Setenv("TOKEN_ACCESS_TTL", "5m")
	t.Setenv("RATE_LIMIT_BURST", "50")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":7070", cfg.ListenAddr)
	assert.Equal(t, 5*time.Minute, cfg.Token.AccessTTL)
	assert.Equal(t, 50, cfg.RateLimitBurst)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "tls cert without key",
			mutate:  func(c *Config) { c.TLSCertFile = "cert.pem" },
			wantErr: "tls_cert_file and tls_key_file",
		},
		{
			name: "duplicate signing key id",
			mutate: func(c *Config) {
				c.Token.SigningKeys = []SigningKey{
					{KID: "k1", Path: "a.pem"},
					{KID: "k1", Path: "b.pem"},
				}
			},
			wantErr: "duplicate signing key id",
		},
		{
			name: "signing key without path",
			mutate: func(c *Config) {
				c.Token.SigningKeys = []SigningKey{{KID: "k1"}}
			},
			wantErr: "kid and path",
		},
		{
			name: "issuer url requires audience",
			mutate: func(c *Config) {
				c.Auth.IssuerURL = "https://login.example.org"
			},
			wantErr: "auth.audience is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load("")
			require.NoError(t, err)
			tt.mutate(cfg)
			err = cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidate_ProductionHardening(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	cfg.Env = "production"

	// No signing keys configured is fatal in production.
	err = cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "signing keys")

	cfg.Token.SigningKeys = []SigningKey{{KID: "k1", Path: "k1.pem"}}
	err = cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "CORS wildcard")

	cfg.CORSAllowedOrigins = []string{"https://portal.example.org"}
	err = cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "tls_cert_file")

	cfg.AllowInsecureHTTP = true
	assert.NoError(t, cfg.Validate())
}

func TestLoadDotEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte(`
# comment
DOTENV_TEST_A=hello
DOTENV_TEST_B="quoted value"
`), 0o600))

	t.Setenv("DOTENV_TEST_A", "")
	t.Setenv("DOTENV_TEST_B", "")
	os.Unsetenv("DOTENV_TEST_A")
	os.Unsetenv("DOTENV_TEST_B")
	require.NoError(t, LoadDotEnv(path))
	assert.Equal(t, "hello", os.Getenv("DOTENV_TEST_A"))
	assert.Equal(t, "quoted value", os.Getenv("DOTENV_TEST_B"))

	// Missing file is not an error.
	assert.NoError(t, LoadDotEnv(filepath.Join(t.TempDir(), "missing.env")))
}
