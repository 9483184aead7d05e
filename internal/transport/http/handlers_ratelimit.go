package httptransport

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	rlmodels "aulagate/internal/ratelimit/models"
	"aulagate/internal/transport/httputil"
	dErrors "aulagate/pkg/domain-errors"
)

// RateLimitAdmin is the administrative slice of the checker service: clear a
// bucket after a false positive, saturate an abusive client's bucket, or
// inspect a bucket without consuming from it.
type RateLimitAdmin interface {
	Reset(ctx context.Context, tier rlmodels.Tier, clientIP, userAgent, sessionToken string) error
	Block(ctx context.Context, tier rlmodels.Tier, clientIP, userAgent, sessionToken string) error
	Stats(ctx context.Context, tier rlmodels.Tier, clientIP, userAgent, sessionToken string) (*rlmodels.Stats, error)
}

// RateLimitHandler exposes bucket administration under /admin, so the route
// policy restricts it to administrators before these handlers ever run.
type RateLimitHandler struct {
	limiter RateLimitAdmin
	logger  *slog.Logger
}

func NewRateLimitHandler(limiter RateLimitAdmin, logger *slog.Logger) *RateLimitHandler {
	return &RateLimitHandler{
		limiter: limiter,
		logger:  logger,
	}
}

func (h *RateLimitHandler) Register(r chi.Router) {
	r.Post("/admin/api/rate-limit/reset", h.handleReset)
	r.Post("/admin/api/rate-limit/block", h.handleBlock)
	r.Get("/admin/api/rate-limit/stats", h.handleStats)
}

// bucketRequest identifies one client bucket in one tier. The fields mirror
// the key the checker derives for live traffic.
type bucketRequest struct {
	Tier         string `json:"tier"`
	ClientIP     string `json:"clientIp"`
	UserAgent    string `json:"userAgent"`
	SessionToken string `json:"sessionToken"`
}

func (h *RateLimitHandler) decodeBucket(w http.ResponseWriter, r *http.Request) (bucketRequest, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, 64*1024)

	var req bucketRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return req, false
	}
	if !rlmodels.Tier(req.Tier).IsValid() {
		httputil.WriteError(w, dErrors.New(dErrors.CodeValidation, "unknown rate limit tier"))
		return req, false
	}
	if req.ClientIP == "" {
		httputil.WriteError(w, dErrors.New(dErrors.CodeValidation, "clientIp is required"))
		return req, false
	}
	return req, true
}

func (h *RateLimitHandler) handleReset(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := h.decodeBucket(w, r)
	if !ok {
		return
	}

	if err := h.limiter.Reset(ctx, rlmodels.Tier(req.Tier), req.ClientIP, req.UserAgent, req.SessionToken); err != nil {
		h.logger.ErrorContext(ctx, "failed to reset rate limit bucket", "tier", req.Tier, "error", err)
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeInternal, "failed to reset bucket"))
		return
	}

	h.logger.InfoContext(ctx, "rate limit bucket reset", "tier", req.Tier)
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"success": true})
}

func (h *RateLimitHandler) handleBlock(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := h.decodeBucket(w, r)
	if !ok {
		return
	}

	if err := h.limiter.Block(ctx, rlmodels.Tier(req.Tier), req.ClientIP, req.UserAgent, req.SessionToken); err != nil {
		h.logger.ErrorContext(ctx, "failed to block client bucket", "tier", req.Tier, "error", err)
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeInternal, "failed to block bucket"))
		return
	}

	h.logger.InfoContext(ctx, "client bucket blocked", "tier", req.Tier)
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"success": true})
}

// handleStats implements GET /admin/api/rate-limit/stats. The bucket is
// identified by query parameters so the endpoint stays cacheable by tooling.
func (h *RateLimitHandler) handleStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()

	tier := rlmodels.Tier(q.Get("tier"))
	if !tier.IsValid() {
		httputil.WriteError(w, dErrors.New(dErrors.CodeValidation, "unknown rate limit tier"))
		return
	}
	clientIP := q.Get("clientIp")
	if clientIP == "" {
		httputil.WriteError(w, dErrors.New(dErrors.CodeValidation, "clientIp is required"))
		return
	}

	stats, err := h.limiter.Stats(ctx, tier, clientIP, q.Get("userAgent"), q.Get("sessionToken"))
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to read bucket stats", "tier", tier, "error", err)
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeInternal, "failed to read bucket stats"))
		return
	}
	httputil.WriteJSON(w, http.StatusOK, stats)
}
