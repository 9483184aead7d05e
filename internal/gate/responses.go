package gate

import (
	"net/http"
	"net/url"
	"strconv"
	"time"

	"aulagate/internal/ratelimit/models"
	"aulagate/internal/transport/httputil"
)

// Redirect reason codes carried in the query string so the target page can
// explain what happened.
const (
	reasonSessionRequired         = "session_required"
	reasonSessionExpired          = "session_expired"
	reasonUnauthorized            = "unauthorized"
	reasonInsufficientPermissions = "insufficient_permissions"
)

// rateLimitedBody is the structured 429 response.
type rateLimitedBody struct {
	Success    bool   `json:"success"`
	Error      string `json:"error"`
	RetryAfter int    `json:"retryAfter"`
	Limit      int    `json:"limit"`
	Remaining  int    `json:"remaining"`
}

// stampRateHeaders attaches rate limit metadata to the response. Called on
// every gated response regardless of which branch produced it.
func stampRateHeaders(w http.ResponseWriter, result *models.Result) {
	w.Header().Set("X-RateLimit-Limit", strconv.Itoa(result.Limit))
	w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
	w.Header().Set("X-RateLimit-Reset", result.ResetAt.UTC().Format(time.RFC3339))
}

// writeRateLimited responds 429 with Retry-After and the structured body.
func writeRateLimited(w http.ResponseWriter, result *models.Result, message string) {
	w.Header().Set("Retry-After", strconv.Itoa(result.RetryAfter))
	httputil.WriteJSON(w, http.StatusTooManyRequests, rateLimitedBody{
		Success:    false,
		Error:      message,
		RetryAfter: result.RetryAfter,
		Limit:      result.Limit,
		Remaining:  result.Remaining,
	})
}

// redirectWithReason sends the client to target with an error reason code in
// the query string, preserving any query the target already carries.
func redirectWithReason(w http.ResponseWriter, r *http.Request, target, reason string) {
	u, err := url.Parse(target)
	if err != nil {
		http.Redirect(w, r, target, http.StatusFound)
		return
	}
	q := u.Query()
	q.Set("error", reason)
	u.RawQuery = q.Encode()
	http.Redirect(w, r, u.String(), http.StatusFound)
}
