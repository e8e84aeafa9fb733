package utils

import (
	"encoding/base64"
	"net/http"
)

const (
	// IdentityHeader carries the verified caller email, set by the auth
	// layer in front of this service. The auth layer itself is an external
	// collaborator; handlers only trust what it resolved.
	IdentityHeader = "X-User-Email"

	CookieNameIdentity = "codeshare_identity"
)

// CallerEmail resolves the authenticated caller's email from the request.
// Returns "" when no credential is present.
func CallerEmail(r *http.Request) string {
	if email := r.Header.Get(IdentityHeader); email != "" {
		return email
	}

	return emailFromCookie(r)
}

func emailFromCookie(r *http.Request) string {
	cookie, err := r.Cookie(CookieNameIdentity)
	if err != nil {
		return ""
	}
	decoded, err := base64.StdEncoding.DecodeString(cookie.Value)
	if err != nil {
		return ""
	}
	return string(decoded)
}

// SetIdentityCookie is used by tests and local tooling; production traffic
// arrives with the header already set.
func SetIdentityCookie(w http.ResponseWriter, email string) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieNameIdentity,
		Value:    base64.StdEncoding.EncodeToString([]byte(email)),
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
