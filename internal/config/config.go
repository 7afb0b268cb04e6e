// Package config handles application configuration: a YAML file overlaid
// with environment variables, plus .env loading for development.
package config

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// SigningKey references one PEM-encoded RSA signing key. The first entry in
// Config.SigningKeys is the primary key; the rest stay valid for tokens they
// already signed.
type SigningKey struct {
	KID  string `yaml:"kid"`
	Path string `yaml:"path"`
}

// AuthConfig holds the external identity provider configuration. Login
// exchanges an identity token from one of these issuers for broker tokens.
type AuthConfig struct {
	IssuerURL      string   `yaml:"issuer_url"`      // OIDC issuer URL
	JWKSURL        string   `yaml:"jwks_url"`        // override JWKS URL (no discovery)
	Audience       string   `yaml:"audience"`        // required audience claim
	AllowedIssuers []string `yaml:"allowed_issuers"` // accepted issuers (defaults to [IssuerURL])
}

// OIDCEnabled returns true when an external identity provider is configured.
func (a *AuthConfig) OIDCEnabled() bool {
	return a.IssuerURL != "" || a.JWKSURL != ""
}

// GoogleConfig holds the cloud policy engine settings.
type GoogleConfig struct {
	CredentialsFile string        `yaml:"credentials_file"` // service-account JSON; empty uses ADC
	CallTimeout     time.Duration `yaml:"call_timeout"`     // per provider call (default 30s)
	RegistrationTTL time.Duration `yaml:"registration_ttl"` // certified registration lifetime (default 7 days)
	CleanupSchedule string        `yaml:"cleanup_schedule"` // cron spec for expired-registration removal
}

// TokenConfig holds token authority settings.
type TokenConfig struct {
	Issuer          string        `yaml:"issuer"`            // iss claim on issued tokens
	AccessTTL       time.Duration `yaml:"access_ttl"`        // access token lifetime (default 20m)
	RefreshTTL      time.Duration `yaml:"refresh_ttl"`       // refresh token lifetime (default 30 days)
	GCSchedule      string        `yaml:"gc_schedule"`       // cron spec for revocation GC
	SigningKeys     []SigningKey  `yaml:"signing_keys"`      // primary first
	GenerateDevKeys bool          `yaml:"generate_dev_keys"` // generate an in-memory keypair when no files given
}

// Config is the root configuration.
type Config struct {
	DBPath             string   `yaml:"db_path"`
	ListenAddr         string   `yaml:"listen_addr"`
	TLSCertFile        string   `yaml:"tls_cert_file"`
	TLSKeyFile         string   `yaml:"tls_key_file"`
	AllowInsecureHTTP  bool     `yaml:"allow_insecure_http"`
	LogLevel           string   `yaml:"log_level"` // debug, info, warn, error
	Env                string   `yaml:"env"`       // "development" (default) or "production"
	RateLimitRPS       float64  `yaml:"rate_limit_rps"`
	RateLimitBurst     int      `yaml:"rate_limit_burst"`
	CORSAllowedOrigins []string `yaml:"cors_allowed_origins"`

	Token  TokenConfig  `yaml:"token"`
	Auth   AuthConfig   `yaml:"auth"`
	Google GoogleConfig `yaml:"google"`

	// Warnings collects non-fatal findings generated during loading. They are
	// logged by the caller after the logger is initialised.
	Warnings []string `yaml:"-"`
}

// SlogLevel maps the LogLevel string to an slog.Level.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// IsProduction returns true when the server is running in production mode.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Env, "production")
}

// Load reads the YAML file (if path is non-empty), overlays environment
// variables, applies defaults, and validates.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	if path != "" {
		data, err := os.ReadFile(path) //nolint:gosec // path is caller-controlled
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	cfg.applyEnv()
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	setString(&c.DBPath, "DB_PATH")
	setString(&c.ListenAddr, "LISTEN_ADDR")
	setString(&c.TLSCertFile, "TLS_CERT_FILE")
	setString(&c.TLSKeyFile, "TLS_KEY_FILE")
	setString(&c.LogLevel, "LOG_LEVEL")
	setString(&c.Env, "ENV")
	setString(&c.Token.Issuer, "TOKEN_ISSUER")
	setString(&c.Auth.IssuerURL, "AUTH_ISSUER_URL")
	setString(&c.Auth.JWKSURL, "AUTH_JWKS_URL")
	setString(&c.Auth.Audience, "AUTH_AUDIENCE")
	setString(&c.Google.CredentialsFile, "GOOGLE_CREDENTIALS_FILE")

	if strings.EqualFold(os.Getenv("ALLOW_INSECURE_HTTP"), "true") {
		c.AllowInsecureHTTP = true
	}
	if v := os.Getenv("RATE_LIMIT_RPS"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			c.RateLimitRPS = f
		}
	}
	if v := os.Getenv("RATE_LIMIT_BURST"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.RateLimitBurst = n
		}
	}
	if v := os.Getenv("CORS_ALLOWED_ORIGINS"); v != "" {
		c.CORSAllowedOrigins = splitTrimmed(v)
	}
	if v := os.Getenv("AUTH_ALLOWED_ISSUERS"); v != "" {
		c.Auth.AllowedIssuers = splitTrimmed(v)
	}
	setDuration(&c.Token.AccessTTL, "TOKEN_ACCESS_TTL")
	setDuration(&c.Token.RefreshTTL, "TOKEN_REFRESH_TTL")
	setDuration(&c.Google.CallTimeout, "GOOGLE_CALL_TIMEOUT")
	setDuration(&c.Google.RegistrationTTL, "GOOGLE_REGISTRATION_TTL")
}

func (c *Config) applyDefaults() {
	if c.DBPath == "" {
		c.DBPath = "gatecheck.sqlite"
	}
	if c.ListenAddr == "" {
		c.ListenAddr = ":8080"
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.RateLimitRPS == 0 {
		c.RateLimitRPS = 100
	}
	if c.RateLimitBurst == 0 {
		c.RateLimitBurst = 200
	}
	if len(c.CORSAllowedOrigins) == 0 {
		c.CORSAllowedOrigins = []string{"*"}
	}
	if c.Token.Issuer == "" {
		c.Token.Issuer = "gatecheck"
	}
	if c.Token.AccessTTL == 0 {
		c.Token.AccessTTL = 20 * time.Minute
	}
	if c.Token.RefreshTTL == 0 {
		c.Token.RefreshTTL = 30 * 24 * time.Hour
	}
	if c.Token.GCSchedule == "" {
		c.Token.GCSchedule = "@hourly"
	}
	if c.Google.CallTimeout == 0 {
		c.Google.CallTimeout = 30 * time.Second
	}
	if c.Google.RegistrationTTL == 0 {
		c.Google.RegistrationTTL = 7 * 24 * time.Hour
	}
	if c.Google.CleanupSchedule == "" {
		c.Google.CleanupSchedule = "@daily"
	}
	if len(c.Token.SigningKeys) == 0 && !c.IsProduction() {
		c.Token.GenerateDevKeys = true
		c.Warnings = append(c.Warnings, "no signing keys configured — generating an ephemeral dev keypair; tokens will not survive restarts")
	}
	if !c.Auth.OIDCEnabled() {
		c.Warnings = append(c.Warnings, "OIDC is not configured — external identity login is disabled")
	}
}

// Validate checks that the configuration is internally consistent. Insecure
// defaults are fatal in production.
func (c *Config) Validate() error {
	if (c.TLSCertFile == "") != (c.TLSKeyFile == "") {
		return fmt.Errorf("both tls_cert_file and tls_key_file must be set together")
	}
	seen := make(map[string]bool, len(c.Token.SigningKeys))
	for _, key := range c.Token.SigningKeys {
		if key.KID == "" || key.Path == "" {
			return fmt.Errorf("signing keys require both kid and path")
		}
		if seen[key.KID] {
			return fmt.Errorf("duplicate signing key id %q", key.KID)
		}
		seen[key.KID] = true
	}
	if c.Auth.IssuerURL != "" && c.Auth.Audience == "" {
		return fmt.Errorf("auth.audience is required when auth.issuer_url is set")
	}

	if c.IsProduction() {
		if len(c.Token.SigningKeys) == 0 {
			return fmt.Errorf("signing keys must be configured in production (ENV=production)")
		}
		if len(c.CORSAllowedOrigins) == 1 && c.CORSAllowedOrigins[0] == "*" {
			return fmt.Errorf("CORS wildcard (*) is not allowed in production (ENV=production)")
		}
		if c.TLSCertFile == "" && !c.AllowInsecureHTTP {
			return fmt.Errorf("tls_cert_file/tls_key_file must be set in production unless ALLOW_INSECURE_HTTP=true")
		}
	}
	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setDuration(dst *time.Duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			*dst = d
		}
	}
}

func splitTrimmed(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// LoadDotEnv reads a .env file and sets any variables not already in the environment.
// Lines must be in KEY=VALUE format. Comments (#) and blank lines are skipped.
func LoadDotEnv(path string) error {
	f, err := os.Open(path) //nolint:gosec // path is caller-controlled
	if err != nil {
		if os.IsNotExist(err) {
			return nil // .env not found is not an error
		}
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close() //nolint:errcheck

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)
		value = stripQuotes(value)
		// Only set if not already in the environment (env vars take precedence)
		if os.Getenv(key) == "" {
			if err := os.Setenv(key, value); err != nil {
				return fmt.Errorf("setenv %s: %w", key, err)
			}
		}
	}
	return scanner.Err()
}

// stripQuotes removes surrounding double or single quotes from a value.
// Only strips if both the first and last characters are matching quotes.
func stripQuotes(s string) string {
	if len(s) >= 2 {
		if (s[0] == '"' && s[len(s)-1] == '"') || (s[0] == '\'' && s[len(s)-1] == '\'') {
			return s[1 : len(s)-1]
		}
	}
	return s
}
