package utils

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestCallerEmailFromHeader(t *testing.T) {
	t.Parallel()

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set(IdentityHeader, "owner@x.com")

	if got := CallerEmail(r); got != "owner@x.com" {
		t.Errorf("expected owner@x.com, got %q", got)
	}
}

func TestCallerEmailCookieRoundTrip(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	SetIdentityCookie(rec, "guest@y.com")

	cookies := rec.Result().Cookies()
	if len(cookies) != 1 {
		t.Fatalf("expected 1 cookie, got %d", len(cookies))
	}

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(cookies[0])

	if got := CallerEmail(r); got != "guest@y.com" {
		t.Errorf("expected guest@y.com, got %q", got)
	}
}

func TestCallerEmailHeaderWinsOverCookie(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	SetIdentityCookie(rec, "cookie@y.com")

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(rec.Result().Cookies()[0])
	r.Header.Set(IdentityHeader, "header@x.com")

	if got := CallerEmail(r); got != "header@x.com" {
		t.Errorf("expected header identity to win, got %q", got)
	}
}

func TestCallerEmailAbsent(t *testing.T) {
	t.Parallel()

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	if got := CallerEmail(r); got != "" {
		t.Errorf("expected empty identity, got %q", got)
	}

	r.AddCookie(&http.Cookie{Name: CookieNameIdentity, Value: "not-base64!"})
	if got := CallerEmail(r); got != "" {
		t.Errorf("expected empty identity for garbage cookie, got %q", got)
	}
}
