// Command server runs the request gate: rate limiting, session resolution,
// silent refresh, onboarding, and role authorization in front of the
// protected application.
package main

import (
	"context"
	"errors"
	"net/http"
	"net/http/httputil"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"aulagate/internal/audit"
	"aulagate/internal/auth/jwtsession"
	authmodels "aulagate/internal/auth/models"
	"aulagate/internal/auth/service"
	"aulagate/internal/auth/store/accesstoken"
	"aulagate/internal/auth/store/onboarding"
	"aulagate/internal/auth/store/refreshtoken"
	sessionstore "aulagate/internal/auth/store/session"
	userstore "aulagate/internal/auth/store/user"
	"aulagate/internal/auth/workers/cleanup"
	"aulagate/internal/gate"
	"aulagate/internal/platform/config"
	"aulagate/internal/platform/health"
	"aulagate/internal/platform/httpserver"
	"aulagate/internal/platform/logger"
	"aulagate/internal/platform/metrics"
	"aulagate/internal/ratelimit/checker"
	rlconfig "aulagate/internal/ratelimit/config"
	"aulagate/internal/ratelimit/store/bucket"
	"aulagate/internal/ratelimit/workers/sweeper"
	httptransport "aulagate/internal/transport/http"
	"aulagate/pkg/secrets"
)

func main() {
	log := logger.New()

	cfg, err := config.FromEnv()
	if err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	log.Info("initializing aulagate",
		"addr", cfg.Addr,
		"environment", cfg.Environment,
		"upstream", cfg.UpstreamURL,
	)

	m := metrics.New()

	auditPublisher := audit.NewPublisher(audit.NewInMemoryStore(), audit.WithPublisherLogger(log))

	users := userstore.NewInMemoryStore()
	refreshTokens := refreshtoken.NewInMemoryStore()
	accessTokens := accesstoken.NewInMemoryStore()
	legacySessions := sessionstore.NewInMemoryStore()
	onboardingStates := onboarding.NewInMemoryStore()

	legacy := jwtsession.New(cfg.SessionSigningKey, legacySessions, cfg.RefreshTokenTTL)

	if !cfg.IsProduction() {
		if err := seedDevUsers(context.Background(), users, onboardingStates); err != nil {
			log.Error("failed to seed development users", "error", err)
			os.Exit(1)
		}
		log.Info("seeded development users", "password", devPassword)
	}

	tokens := service.NewTokenService(refreshTokens, accessTokens,
		service.WithLogger(log),
		service.WithAuditPublisher(auditPublisher),
		service.WithMetrics(m),
		service.WithAccessTTL(cfg.AccessTokenTTL),
		service.WithRefreshTTL(cfg.RefreshTokenTTL, cfg.RememberMeTokenTTL),
		service.WithInactivityCeiling(cfg.InactivityCeiling),
	)
	resolver := service.NewResolver(accessTokens, users, legacy,
		service.WithResolverLogger(log),
		service.WithResolverAuditPublisher(auditPublisher),
		service.WithResolverMetrics(m),
	)

	buckets := bucket.NewInMemoryBucketStore()
	limiter, err := checker.New(buckets, rlconfig.DefaultConfig(),
		checker.WithLogger(log),
		checker.WithMetrics(m),
	)
	if err != nil {
		log.Error("failed to build rate limiter", "error", err)
		os.Exit(1)
	}

	g := gate.New(limiter, resolver, tokens, onboardingStates,
		gate.WithLogger(log),
		gate.WithMetrics(m),
		gate.WithAuditPublisher(auditPublisher),
		gate.WithProduction(cfg.IsProduction()),
	)

	app, err := upstreamHandler(cfg.UpstreamURL)
	if err != nil {
		log.Error("invalid upstream url", "url", cfg.UpstreamURL, "error", err)
		os.Exit(1)
	}

	authHandler := httptransport.NewAuthHandler(users, tokens, resolver, legacy, limiter, log, cfg.IsProduction())
	rateLimitHandler := httptransport.NewRateLimitHandler(limiter, log)
	router := httptransport.NewRouter(g, authHandler, rateLimitHandler, health.New(cfg.Environment), app, log)
	srv := httpserver.New(cfg.Addr, router)

	tokenCleaner := cleanup.New(tokens,
		cleanup.WithLogger(log),
		cleanup.WithInterval(cfg.CleanupInterval),
	)
	bucketSweeper := sweeper.New(buckets,
		sweeper.WithLogger(log),
		sweeper.WithInterval(cfg.SweepInterval),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	grp, ctx := errgroup.WithContext(ctx)
	grp.Go(func() error {
		log.Info("starting http server", "addr", cfg.Addr)
		return srv.Start(ctx)
	})
	grp.Go(func() error { return tokenCleaner.Start(ctx) })
	grp.Go(func() error { return bucketSweeper.Start(ctx) })

	if err := grp.Wait(); err != nil && !isShutdown(err) {
		log.Error("server exited with error", "error", err)
		os.Exit(1)
	}

	log.Info("server stopped")
}

// upstreamHandler returns the protected application surface: a reverse proxy
// when an upstream is configured, otherwise a small echo handler that reports
// the identity the gate resolved. The echo handler keeps the binary usable
// for local smoke testing.
func upstreamHandler(upstream string) (http.Handler, error) {
	if upstream != "" {
		target, err := url.Parse(upstream)
		if err != nil {
			return nil, err
		}
		return httputil.NewSingleHostReverseProxy(target), nil
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity := gate.IdentityFrom(r.Context())
		w.Header().Set("Content-Type", "application/json")
		if identity == nil {
			_, _ = w.Write([]byte(`{"success":true}`))
			return
		}
		_, _ = w.Write([]byte(`{"success":true,"userId":"` + identity.UserID + `","role":"` + string(identity.Role) + `"}`))
	}), nil
}

func isShutdown(err error) bool {
	return errors.Is(err, context.Canceled)
}

const devPassword = "aulagate-dev"

// seedDevUsers provisions one account per role with completed onboarding so a
// development instance is immediately usable. Never runs in production.
func seedDevUsers(ctx context.Context, users userstore.Store, onboardingStates onboarding.Store) error {
	hash, err := secrets.Hash(devPassword)
	if err != nil {
		return err
	}

	for _, role := range []authmodels.Role{
		authmodels.RoleAdministrator,
		authmodels.RoleInstructor,
		authmodels.RoleUser,
		authmodels.RoleBusiness,
	} {
		slug := strings.ToLower(string(role))
		account := &authmodels.User{
			ID:           "dev-" + slug,
			Email:        slug + "@aulagate.local",
			Name:         "Dev " + string(role),
			Role:         string(role),
			PasswordHash: hash,
			CreatedAt:    time.Now(),
		}
		if err := users.Create(ctx, account); err != nil {
			return err
		}
		if err := onboardingStates.SetCompleted(ctx, account.ID, true); err != nil {
			return err
		}
	}
	return nil
}
