package handler

import (
	"net/http"
	"time"

	"github.com/event-planner-api/internal/config"
	jwtinfra "github.com/event-planner-api/internal/infrastructure/jwt"
	"github.com/event-planner-api/internal/transport/http/middleware"
)

// RefreshTokenCookie is the cookie carrying the refresh token.
const RefreshTokenCookie = "refreshToken"

// CookieWriter sets and clears the auth cookies.
type CookieWriter struct {
	cfg config.CookieConfig
}

func NewCookieWriter(cfg config.CookieConfig) *CookieWriter {
	if cfg.SameSite == 0 {
		cfg.SameSite = http.SameSiteLaxMode
	}
	return &CookieWriter{cfg: cfg}
}

// Set writes both cookies with Max-Age equal to the token lifetimes.
func (c *CookieWriter) Set(w http.ResponseWriter, p *jwtinfra.Pair) {
	http.SetCookie(w, c.cookie(middleware.AccessTokenCookie, p.AccessToken, p.AccessExpiresIn))
	http.SetCookie(w, c.cookie(RefreshTokenCookie, p.RefreshToken, p.RefreshExpiresIn))
}

// Clear expires both cookies immediately.
func (c *CookieWriter) Clear(w http.ResponseWriter) {
	for _, name := range []string{middleware.AccessTokenCookie, RefreshTokenCookie} {
		ck := c.cookie(name, "", 0)
		ck.MaxAge = -1
		http.SetCookie(w, ck)
	}
}

func (c *CookieWriter) cookie(name, value string, ttl time.Duration) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Domain:   c.cfg.Domain,
		MaxAge:   int(ttl / time.Second),
		HttpOnly: true,
		Secure:   c.cfg.Secure,
		SameSite: c.cfg.SameSite,
	}
}
