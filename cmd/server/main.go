package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/robfig/cron/v3"
	"golang.org/x/sync/errgroup"
	"google.golang.org/api/option"

	"gatecheck/internal/api"
	"gatecheck/internal/cloud"
	"gatecheck/internal/config"
	internaldb "gatecheck/internal/db"
	"gatecheck/internal/db/repository"
	"gatecheck/internal/domain"
	"gatecheck/internal/middleware"
	"gatecheck/internal/service/access"
	"gatecheck/internal/service/broker"
	"gatecheck/internal/service/cloudpolicy"
	"gatecheck/internal/service/token"
)

// unavailableCloud stands in when no Google client could be built. Every call
// errors, so the fail-closed checks reject and the hard-error paths surface
// the misconfiguration instead of guessing.
type unavailableCloud struct {
	err error
}

func (u unavailableCloud) HasParentOrganization(context.Context, string) (bool, error) {
	return false, u.err
}

func (u unavailableCloud) GetProjectMembership(context.Context, string) ([]domain.PolicyMember, error) {
	return nil, u.err
}

func (u unavailableCloud) GetServiceAccountType(context.Context, string, string) (string, error) {
	return "", u.err
}

func (u unavailableCloud) GetAllServiceAccounts(context.Context, string) ([]string, error) {
	return nil, u.err
}

func (u unavailableCloud) GetServiceAccount(context.Context, string, string) (*domain.ServiceAccountResponse, error) {
	return nil, u.err
}

func (u unavailableCloud) GetServiceAccountPolicy(context.Context, string) (*domain.PolicyResponse, error) {
	return nil, u.err
}

func (u unavailableCloud) GetServiceAccountKeysInfo(context.Context, string) ([]domain.ServiceAccountKey, error) {
	return nil, u.err
}

// curlHostForListenAddr converts a listen address into a host a local client
// can reach, for the startup log line. Wildcard binds become localhost.
func curlHostForListenAddr(listenAddr string) string {
	addr := strings.TrimSpace(listenAddr)
	if addr == "" {
		return "localhost:8080"
	}
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return addr
	}
	switch host {
	case "", "0.0.0.0", "::":
		host = "localhost"
	}
	return net.JoinHostPort(host, port)
}

func buildKeyRing(cfg *config.Config, logger *slog.Logger) (*token.KeyRing, error) {
	if len(cfg.Token.SigningKeys) > 0 {
		files := make([]token.KeypairFile, len(cfg.Token.SigningKeys))
		for i, k := range cfg.Token.SigningKeys {
			files[i] = token.KeypairFile{KID: k.KID, Path: k.Path}
		}
		return token.LoadKeyRing(files)
	}

	// Dev bootstrap: an ephemeral keypair. Refused by config in production.
	keypair, err := token.GenerateKeypair("dev-" + time.Now().UTC().Format("20060102"))
	if err != nil {
		return nil, err
	}
	logger.Warn("using ephemeral signing key", "kid", keypair.KID)
	return token.NewKeyRing([]token.Keypair{keypair})
}

func buildCloudManager(ctx context.Context, cfg *config.Config, logger *slog.Logger) domain.CloudManager {
	var opts []option.ClientOption
	if cfg.Google.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.Google.CredentialsFile))
	}
	manager, err := cloud.NewGoogleManager(ctx, logger, opts...)
	if err != nil {
		logger.Warn("google client unavailable, policy checks will reject", "error", err)
		return unavailableCloud{err: err}
	}
	return manager
}

func run() error {
	configPath := flag.String("config", "", "path to YAML config file")
	flag.Parse()

	if err := config.LoadDotEnv(".env"); err != nil {
		return err
	}
	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	slog.SetDefault(logger)
	for _, warning := range cfg.Warnings {
		logger.Warn(warning)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// writeDB: single-connection pool for serialized writes (WAL + txlock=immediate).
	// readDB:  multi-connection pool for concurrent reads.
	writeDB, readDB, err := internaldb.OpenSQLitePair(cfg.DBPath, 4)
	if err != nil {
		return err
	}
	defer writeDB.Close()
	defer readDB.Close()

	if err := internaldb.RunMigrations(writeDB); err != nil {
		return err
	}

	// Mutations go through the write-pool repositories; the read pool backs
	// the hot lookup paths (authenticate, authorize, listings).
	users := repository.NewUserRepo(writeDB)
	groups := repository.NewGroupRepo(writeDB)
	projects := repository.NewProjectRepo(writeDB)
	privileges := repository.NewPrivilegeRepo(writeDB)
	revocations := repository.NewRevokedTokenRepo(writeDB)
	registrations := repository.NewRegistrationRepo(writeDB)
	readUsers := repository.NewUserRepo(readDB)

	ring, err := buildKeyRing(cfg, logger)
	if err != nil {
		return err
	}
	authority := token.NewAuthority(ring, revocations, cfg.Token.Issuer, logger)
	accessSvc := access.New(writeDB, users, groups, projects, privileges, logger).
		WithReadPool(
			readUsers,
			repository.NewGroupRepo(readDB),
			repository.NewProjectRepo(readDB),
			repository.NewPrivilegeRepo(readDB),
		)
	policy := cloudpolicy.New(buildCloudManager(ctx, cfg, logger), registrations, logger, cfg.Google.CallTimeout)
	brokerSvc := broker.New(authority, accessSvc, policy, readUsers)

	var identity middleware.IdentityValidator
	if cfg.Auth.OIDCEnabled() {
		if cfg.Auth.JWKSURL != "" {
			identity, err = middleware.NewOIDCValidatorFromJWKS(ctx,
				cfg.Auth.JWKSURL, cfg.Auth.IssuerURL, cfg.Auth.Audience, cfg.Auth.AllowedIssuers)
		} else {
			identity, err = middleware.NewOIDCValidator(ctx,
				cfg.Auth.IssuerURL, cfg.Auth.Audience, cfg.Auth.AllowedIssuers)
		}
		if err != nil {
			return err
		}
	}

	handler := api.NewHandler(brokerSvc, accessSvc, authority, policy, identity,
		cfg.Token.AccessTTL, cfg.Token.RefreshTTL, cfg.Google.RegistrationTTL, logger)
	auth := middleware.NewAuthenticator(brokerSvc, logger)
	router := api.NewRouter(handler, auth, api.RouterConfig{
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		RateLimitRPS:       cfg.RateLimitRPS,
		RateLimitBurst:     cfg.RateLimitBurst,
	})

	// Scheduled maintenance: revocation GC and expired-registration cleanup.
	scheduler := cron.New()
	if _, err := scheduler.AddFunc(cfg.Token.GCSchedule, func() {
		if _, err := authority.GarbageCollect(context.Background(), time.Now()); err != nil {
			logger.Error("revocation gc failed", "error", err)
		}
	}); err != nil {
		return err
	}
	if _, err := scheduler.AddFunc(cfg.Google.CleanupSchedule, func() {
		if _, err := policy.DeleteExpiredRegistrations(context.Background()); err != nil {
			logger.Error("registration cleanup failed", "error", err)
		}
	}); err != nil {
		return err
	}
	scheduler.Start()
	defer scheduler.Stop()

	server := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		scheme := "http"
		if cfg.TLSCertFile != "" {
			scheme = "https"
		}
		logger.Info("listening", "addr", cfg.ListenAddr,
			"url", scheme+"://"+curlHostForListenAddr(cfg.ListenAddr))
		var err error
		if cfg.TLSCertFile != "" {
			err = server.ListenAndServeTLS(cfg.TLSCertFile, cfg.TLSKeyFile)
		} else {
			err = server.ListenAndServe()
		}
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func main() {
	if err := run(); err != nil {
		slog.Error("server exited", "error", err)
		os.Exit(1)
	}
}
