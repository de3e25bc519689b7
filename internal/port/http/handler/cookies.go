package handler

import (
	"net/http"
	"time"

	"github.com/MaheshMoholkar/ignite-lms/internal/service"
)

const (
	accessTokenCookie     = "access_token"
	refreshTokenCookie    = "refresh_token"
	activationTokenCookie = "activation_token"
)

// CookieWriter issues and clears the auth cookies. All cookies are
// HTTP-only; the Secure flag follows deployment configuration.
type CookieWriter struct {
	secure        bool
	accessTTL     time.Duration
	refreshTTL    time.Duration
	activationTTL time.Duration
}

func NewCookieWriter(secure bool, accessTTL, refreshTTL, activationTTL time.Duration) *CookieWriter {
	return &CookieWriter{
		secure:        secure,
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
		activationTTL: activationTTL,
	}
}

func (c *CookieWriter) setAuthCookies(w http.ResponseWriter, pair *service.TokenPair) {
	http.SetCookie(w, &http.Cookie{
		Name:     accessTokenCookie,
		Value:    pair.Access,
		Path:     "/",
		MaxAge:   int(c.accessTTL.Seconds()),
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: http.SameSiteLaxMode,
	})
	http.SetCookie(w, &http.Cookie{
		Name:     refreshTokenCookie,
		Value:    pair.Refresh,
		Path:     "/",
		MaxAge:   int(c.refreshTTL.Seconds()),
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (c *CookieWriter) setActivationCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     activationTokenCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(c.activationTTL.Seconds()),
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (c *CookieWriter) clearActivationCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     activationTokenCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (c *CookieWriter) clearAuthCookies(w http.ResponseWriter) {
	for _, name := range []string{accessTokenCookie, refreshTokenCookie} {
		http.SetCookie(w, &http.Cookie{
			Name:     name,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			HttpOnly: true,
			Secure:   c.secure,
			SameSite: http.SameSiteLaxMode,
		})
	}
}
