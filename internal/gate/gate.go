// Package gate composes rate limiting, credential resolution, silent
// refresh, the onboarding precondition, and role authorization into one
// decision per inbound request.
package gate

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"aulagate/internal/audit"
	"aulagate/internal/auth/device"
	authmodels "aulagate/internal/auth/models"
	"aulagate/internal/auth/service"
	"aulagate/internal/authz"
	"aulagate/internal/platform/metrics"
	"aulagate/internal/platform/middleware"
	"aulagate/internal/ratelimit/checker"
	rlconfig "aulagate/internal/ratelimit/config"
	dErrors "aulagate/pkg/domain-errors"
)

const (
	defaultLoginPath      = "/auth/login"
	defaultOnboardingPath = "/welcome"
	defaultHomePath       = "/dashboard"
)

// defaultExemptPrefixes skip identity and role checks. Rate limiting still
// applies to them.
var defaultExemptPrefixes = []string{
	"/auth",
	"/api/auth",
	"/welcome",
	"/statistics",
	"/static",
	"/favicon.ico",
	"/health",
	"/metrics",
}

// OnboardingStore is the completion lookup the gate depends on. Any error is
// treated as incomplete; the check is fail-secure.
type OnboardingStore interface {
	Completed(ctx context.Context, userID string) (bool, error)
}

// Gate is the per-request decision pipeline. It resolves identity exactly
// once per request and threads the result to downstream handlers through the
// request context.
type Gate struct {
	limiter    *checker.Service
	resolver   *service.Resolver
	tokens     *service.TokenService
	onboarding OnboardingStore

	logger         *slog.Logger
	metrics        *metrics.Metrics
	auditPublisher service.AuditPublisher
	tracer         trace.Tracer

	production     bool
	loginPath      string
	onboardingPath string
	homePath       string
	exemptPrefixes []string
}

type Option func(*Gate)

func WithLogger(logger *slog.Logger) Option {
	return func(g *Gate) {
		g.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(g *Gate) {
		g.metrics = m
	}
}

func WithAuditPublisher(publisher service.AuditPublisher) Option {
	return func(g *Gate) {
		g.auditPublisher = publisher
	}
}

// WithProduction enables Secure cookies.
func WithProduction(production bool) Option {
	return func(g *Gate) {
		g.production = production
	}
}

// WithPaths overrides the login, onboarding, and safe-landing targets.
func WithPaths(login, onboarding, home string) Option {
	return func(g *Gate) {
		if login != "" {
			g.loginPath = login
		}
		if onboarding != "" {
			g.onboardingPath = onboarding
		}
		if home != "" {
			g.homePath = home
		}
	}
}

// WithExemptPrefixes replaces the default exempt prefix list.
func WithExemptPrefixes(prefixes []string) Option {
	return func(g *Gate) {
		if len(prefixes) > 0 {
			g.exemptPrefixes = prefixes
		}
	}
}

func New(limiter *checker.Service, resolver *service.Resolver, tokens *service.TokenService, onboarding OnboardingStore, opts ...Option) *Gate {
	g := &Gate{
		limiter:        limiter,
		resolver:       resolver,
		tokens:         tokens,
		onboarding:     onboarding,
		loginPath:      defaultLoginPath,
		onboardingPath: defaultOnboardingPath,
		homePath:       defaultHomePath,
		exemptPrefixes: defaultExemptPrefixes,
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.logger == nil {
		g.logger = slog.Default()
	}
	if g.tracer == nil {
		g.tracer = otel.Tracer("aulagate/gate")
	}
	return g
}

// Middleware runs the decision pipeline in front of every request. Rate limit
// metadata is stamped on the response before any branch can return, so every
// outcome carries it.
func (g *Gate) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, span := g.tracer.Start(r.Context(), "gate.decide",
			trace.WithAttributes(attribute.String("http.path", r.URL.Path)),
		)
		outcome := "allowed"
		defer func() {
			if rec := recover(); rec != nil {
				// Failures at the orchestration boundary resolve to the
				// safest redirect, never to allow and never to a stack trace.
				g.logger.Error("panic in gate pipeline", "panic", rec, "path", r.URL.Path)
				outcome = "redirect_login"
				redirectWithReason(w, r, g.loginPath, reasonSessionRequired)
			}
			span.SetAttributes(attribute.String("gate.outcome", outcome))
			span.End()
			g.countDecision(outcome)
		}()
		r = r.WithContext(ctx)

		clientIP := middleware.GetClientIP(ctx)
		userAgent := middleware.GetUserAgent(ctx)
		sessionMarker := readCookie(r, AccessTokenCookie)
		if sessionMarker == "" {
			sessionMarker = readCookie(r, LegacySessionCookie)
		}

		// Rate limiting runs before any identity work so abusive traffic is
		// rejected cheaply.
		tier := rlconfig.TierForPath(r.URL.Path, r.Method)
		result := g.limiter.Check(ctx, tier, clientIP, userAgent, sessionMarker)
		stampRateHeaders(w, result)
		if !result.Allowed {
			outcome = "rate_limited"
			writeRateLimited(w, result, g.limiter.Message(tier))
			return
		}

		if g.isExempt(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}

		cred := service.Credential{
			AccessToken:  readCookie(r, AccessTokenCookie),
			LegacyCookie: readCookie(r, LegacySessionCookie),
		}
		identity := g.resolver.Resolve(ctx, cred, clientIP)

		if !identity.Valid {
			switch identity.Classification {
			case authmodels.FailureNoCredential, authmodels.FailureInvalidCredential, authmodels.FailureExpired:
				// A stale or missing access credential with a refresh cookie
				// present gets one silent refresh attempt before we force
				// re-authentication.
				if refresh := readCookie(r, RefreshTokenCookie); refresh != "" {
					identity = g.silentRefresh(ctx, w, refresh, clientIP, userAgent)
					if identity == nil {
						outcome = "redirect_login"
						redirectWithReason(w, r, g.loginPath, reasonSessionExpired)
						return
					}
				} else {
					outcome = "redirect_login"
					g.scrubAuthCookies(w)
					redirectWithReason(w, r, g.loginPath, loginReason(identity.Classification))
					return
				}
			default:
				// Revoked credentials, missing users, and unrecognized roles
				// never reach silent refresh.
				outcome = "redirect_login"
				g.scrubAuthCookies(w)
				redirectWithReason(w, r, g.loginPath, reasonUnauthorized)
				return
			}
		}

		// The onboarding precondition is evaluated for every authenticated
		// request and overrides role hierarchy: an Administrator with
		// unverifiable onboarding state is redirected like anyone else.
		completed, err := g.onboarding.Completed(ctx, identity.UserID)
		if err != nil {
			g.logger.Warn("onboarding lookup failed, treating as incomplete",
				"user_id", identity.UserID,
				"error", err,
			)
			completed = false
		}
		if !completed {
			outcome = "redirect_onboarding"
			if g.metrics != nil {
				g.metrics.OnboardingRedirects.Inc()
			}
			g.emitAudit(ctx, audit.Event{
				UserID:   identity.UserID,
				Action:   string(audit.EventOnboardingRedirect),
				Path:     r.URL.Path,
				ClientIP: clientIP,
				Outcome:  "redirect",
			})
			http.Redirect(w, r, g.onboardingPath, http.StatusFound)
			return
		}

		if !authz.IsAllowed(identity.Role, r.URL.Path) {
			outcome = "denied"
			g.emitAudit(ctx, audit.Event{
				UserID:         identity.UserID,
				Action:         string(audit.EventAccessDenied),
				Classification: reasonInsufficientPermissions,
				Path:           r.URL.Path,
				ClientIP:       clientIP,
				Outcome:        "denied",
			})
			redirectWithReason(w, r, g.homePath, reasonInsufficientPermissions)
			return
		}

		next.ServeHTTP(w, r.WithContext(WithIdentity(ctx, identity)))
	})
}

// silentRefresh exchanges a refresh cookie for a new access credential and
// re-resolves identity through the full chain. Returns nil when refresh
// fails; the caller owns the redirect. Cookies are scrubbed on failure so
// the dead refresh secret stops arriving.
func (g *Gate) silentRefresh(ctx context.Context, w http.ResponseWriter, refreshSecret, clientIP, userAgent string) *authmodels.ResolvedIdentity {
	result, err := g.tokens.RefreshSession(ctx, refreshSecret, authmodels.DeviceContext{
		Fingerprint: device.ComputeFingerprint(userAgent),
		Display:     device.DisplayName(userAgent),
		ClientIP:    clientIP,
		UserAgent:   userAgent,
	})
	if err != nil {
		if g.metrics != nil {
			g.metrics.SilentRefreshFailures.Inc()
		}
		g.logger.Info("silent refresh failed",
			"classification", dErrors.CodeOf(err),
		)
		g.scrubAuthCookies(w)
		return nil
	}

	if g.metrics != nil {
		g.metrics.SilentRefreshes.Inc()
	}
	g.setAuthCookie(w, AccessTokenCookie, result.AccessToken, result.AccessExpiresAt)

	identity := g.resolver.Resolve(ctx, service.Credential{AccessToken: result.AccessToken}, clientIP)
	if !identity.Valid {
		g.scrubAuthCookies(w)
		return nil
	}
	return identity
}

func (g *Gate) isExempt(path string) bool {
	for _, prefix := range g.exemptPrefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

// loginReason picks the redirect reason for an unauthenticated request with
// no refresh cookie to fall back on.
func loginReason(classification authmodels.FailureClassification) string {
	if classification == authmodels.FailureExpired {
		return reasonSessionExpired
	}
	return reasonSessionRequired
}

func (g *Gate) countDecision(outcome string) {
	if g.metrics != nil {
		g.metrics.GateDecisions.WithLabelValues(outcome).Inc()
	}
}

func (g *Gate) emitAudit(ctx context.Context, event audit.Event) {
	if g.auditPublisher == nil {
		return
	}
	if err := g.auditPublisher.Emit(ctx, event); err != nil {
		g.logger.Warn("failed to emit audit event", "action", event.Action, "error", err)
	}
}
