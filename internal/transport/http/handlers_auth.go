package httptransport

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"aulagate/internal/auth/device"
	authmodels "aulagate/internal/auth/models"
	"aulagate/internal/auth/service"
	"aulagate/internal/auth/store/user"
	"aulagate/internal/gate"
	"aulagate/internal/platform/middleware"
	"aulagate/internal/platform/privacy"
	rlmodels "aulagate/internal/ratelimit/models"
	"aulagate/internal/transport/httputil"
	dErrors "aulagate/pkg/domain-errors"
	"aulagate/pkg/secrets"
)

// AuthHandler is the thin HTTP layer for session lifecycle endpoints. It
// delegates to domain services so transport concerns stay isolated.
type AuthHandler struct {
	users      user.Store
	tokens     *service.TokenService
	resolver   *service.Resolver
	legacy     LegacyRevoker
	limiter    RateLimitResetter
	logger     *slog.Logger
	production bool
}

// LegacyRevoker tears down the previous-scheme session cookie on logout.
type LegacyRevoker interface {
	Revoke(ctx context.Context, tokenString string) error
}

// RateLimitResetter clears a client's strict-auth bucket after a successful
// login so earlier failed attempts stop counting against them.
type RateLimitResetter interface {
	Reset(ctx context.Context, tier rlmodels.Tier, clientIP, userAgent, sessionToken string) error
}

func NewAuthHandler(users user.Store, tokens *service.TokenService, resolver *service.Resolver, legacy LegacyRevoker, limiter RateLimitResetter, logger *slog.Logger, production bool) *AuthHandler {
	return &AuthHandler{
		users:      users,
		tokens:     tokens,
		resolver:   resolver,
		legacy:     legacy,
		limiter:    limiter,
		logger:     logger,
		production: production,
	}
}

func (h *AuthHandler) Register(r chi.Router) {
	r.Post("/api/auth/login", h.handleLogin)
	r.Post("/api/auth/refresh", h.handleRefresh)
	r.Post("/api/auth/logout", h.handleLogout)
	r.Get("/api/auth/sessions", h.handleListSessions)
	r.Delete("/api/auth/sessions/{credentialID}", h.handleDestroySession)
}

type loginRequest struct {
	Email      string `json:"email"`
	Password   string `json:"password"`
	RememberMe bool   `json:"rememberMe"`
}

type userResponse struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}

func (h *AuthHandler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	if req.Email == "" || req.Password == "" {
		httputil.WriteError(w, dErrors.New(dErrors.CodeValidation, "email and password are required"))
		return
	}

	ctx := r.Context()
	clientIP := middleware.GetClientIP(ctx)

	// Unknown email and wrong password produce the same response so the
	// endpoint does not leak which accounts exist.
	account, err := h.users.FindByEmail(ctx, req.Email)
	if err != nil {
		h.logger.WarnContext(ctx, "login failed", "reason", "unknown_email", "client_ip", privacy.AnonymizeIP(clientIP))
		httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidCredential, "invalid email or password"))
		return
	}
	if err := secrets.Verify(req.Password, account.PasswordHash); err != nil {
		h.logger.WarnContext(ctx, "login failed", "reason", "bad_password", "user_id", account.ID, "client_ip", privacy.AnonymizeIP(clientIP))
		httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidCredential, "invalid email or password"))
		return
	}

	pair, err := h.tokens.CreateSession(ctx, account.ID, req.RememberMe, deviceContextFromRequest(ctx, clientIP))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	gate.SetSessionCookies(w, pair, h.production)

	// Failed attempts before this success no longer count.
	if err := h.limiter.Reset(ctx, rlmodels.TierStrictAuth, clientIP, middleware.GetUserAgent(ctx), ""); err != nil {
		h.logger.WarnContext(ctx, "failed to reset strict-auth bucket after login", "error", err)
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"user": userResponse{
			ID:    account.ID,
			Email: account.Email,
			Name:  account.Name,
			Role:  account.Role,
		},
		"expiresAt": pair.AccessExpiresAt.UTC().Format(time.RFC3339),
	})
}

func (h *AuthHandler) handleRefresh(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	refreshCookie, err := r.Cookie(gate.RefreshTokenCookie)
	if err != nil || refreshCookie.Value == "" {
		httputil.WriteError(w, dErrors.New(dErrors.CodeNoCredential, "no refresh credential provided"))
		return
	}

	clientIP := middleware.GetClientIP(ctx)
	result, err := h.tokens.RefreshSession(ctx, refreshCookie.Value, deviceContextFromRequest(ctx, clientIP))
	if err != nil {
		gate.ClearSessionCookies(w, h.production)
		httputil.WriteError(w, err)
		return
	}

	gate.SetAccessCookie(w, result.AccessToken, result.AccessExpiresAt, h.production)
	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"success":   true,
		"expiresAt": result.AccessExpiresAt.UTC().Format(time.RFC3339),
	})
}

func (h *AuthHandler) handleLogout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	clientIP := middleware.GetClientIP(ctx)

	identity := h.resolver.Resolve(ctx, credentialFromRequest(r), clientIP)
	if identity.Valid {
		if _, err := h.tokens.RevokeAllUserTokens(ctx, identity.UserID, authmodels.RevocationReasonLogout); err != nil {
			h.logger.WarnContext(ctx, "failed to revoke tokens on logout", "user_id", identity.UserID, "error", err)
		}
	}
	if legacyCookie, err := r.Cookie(gate.LegacySessionCookie); err == nil && legacyCookie.Value != "" {
		if err := h.legacy.Revoke(ctx, legacyCookie.Value); err != nil {
			h.logger.WarnContext(ctx, "failed to revoke legacy session on logout", "error", err)
		}
	}

	// Logout always succeeds from the client's point of view.
	gate.ClearSessionCookies(w, h.production)
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"success": true})
}

func (h *AuthHandler) handleListSessions(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	identity := h.resolver.Resolve(ctx, credentialFromRequest(r), middleware.GetClientIP(ctx))
	if !identity.Valid {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return
	}

	sessions, err := h.tokens.ActiveSessions(ctx, identity.UserID, "")
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]any{"sessions": sessions})
}

func (h *AuthHandler) handleDestroySession(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	identity := h.resolver.Resolve(ctx, credentialFromRequest(r), middleware.GetClientIP(ctx))
	if !identity.Valid {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return
	}

	credentialID := chi.URLParam(r, "credentialID")
	if err := h.tokens.DestroySession(ctx, identity.UserID, credentialID); err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]any{"success": true})
}

func credentialFromRequest(r *http.Request) service.Credential {
	cred := service.Credential{}
	if c, err := r.Cookie(gate.AccessTokenCookie); err == nil {
		cred.AccessToken = c.Value
	}
	if c, err := r.Cookie(gate.LegacySessionCookie); err == nil {
		cred.LegacyCookie = c.Value
	}
	return cred
}

func deviceContextFromRequest(ctx context.Context, clientIP string) authmodels.DeviceContext {
	userAgent := middleware.GetUserAgent(ctx)
	return authmodels.DeviceContext{
		Fingerprint: device.ComputeFingerprint(userAgent),
		Display:     device.DisplayName(userAgent),
		ClientIP:    clientIP,
		UserAgent:   userAgent,
	}
}
