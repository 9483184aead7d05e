package gate

import (
	"net/http"
	"time"

	"aulagate/internal/auth/models"
)

// Cookie names. aula_session is the signed cookie from the previous auth
// scheme, still honored during the migration window.
const (
	AccessTokenCookie   = "access_token"
	RefreshTokenCookie  = "refresh_token"
	LegacySessionCookie = "aula_session"
)

// readCookie returns a cookie's value or empty if absent.
func readCookie(r *http.Request, name string) string {
	cookie, err := r.Cookie(name)
	if err != nil {
		return ""
	}
	return cookie.Value
}

// setCredentialCookie issues a credential cookie. Always HttpOnly and
// SameSite=Lax; Secure outside development so secrets never cross plain HTTP
// in production.
func setCredentialCookie(w http.ResponseWriter, name, value string, expiresAt time.Time, production bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Expires:  expiresAt,
		HttpOnly: true,
		Secure:   production,
		SameSite: http.SameSiteLaxMode,
	})
}

// SetSessionCookies issues the access and refresh cookies for a freshly
// created credential pair. Shared with the auth transport handlers so cookie
// attributes stay identical everywhere.
func SetSessionCookies(w http.ResponseWriter, pair *models.TokenPair, production bool) {
	setCredentialCookie(w, AccessTokenCookie, pair.AccessToken, pair.AccessExpiresAt, production)
	setCredentialCookie(w, RefreshTokenCookie, pair.RefreshToken, pair.RefreshExpiresAt, production)
}

// SetAccessCookie issues only the access cookie, used after a refresh where
// the refresh secret stays unchanged.
func SetAccessCookie(w http.ResponseWriter, token string, expiresAt time.Time, production bool) {
	setCredentialCookie(w, AccessTokenCookie, token, expiresAt, production)
}

// ClearSessionCookies expires every credential cookie, including the legacy
// one, so stale secrets stop arriving with subsequent requests.
func ClearSessionCookies(w http.ResponseWriter, production bool) {
	for _, name := range []string{AccessTokenCookie, RefreshTokenCookie, LegacySessionCookie} {
		http.SetCookie(w, &http.Cookie{
			Name:     name,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			HttpOnly: true,
			Secure:   production,
			SameSite: http.SameSiteLaxMode,
		})
	}
}

func (g *Gate) setAuthCookie(w http.ResponseWriter, name, value string, expiresAt time.Time) {
	setCredentialCookie(w, name, value, expiresAt, g.production)
}

func (g *Gate) scrubAuthCookies(w http.ResponseWriter) {
	g.ClearAuthCookies(w)
}

// ClearAuthCookies scrubs credential cookies with this gate's Secure setting.
func (g *Gate) ClearAuthCookies(w http.ResponseWriter) {
	ClearSessionCookies(w, g.production)
}
