package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/event-planner-api/internal/domain"
)

// AccessTokenCookie is the cookie carrying the access token.
const AccessTokenCookie = "accessToken"

type contextKey string

const PrincipalKey contextKey = "principal"

// Authenticator resolves an access token to the caller it was issued to.
type Authenticator interface {
	Authenticate(ctx context.Context, accessToken string) (*domain.Principal, error)
}

// Auth returns middleware that validates the access-token cookie and injects
// the caller's principal into the request context.
func Auth(authn Authenticator, log *slog.Logger) func(http.Handler) http.Handler {
	if log == nil {
		log = slog.Default()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			c, err := r.Cookie(AccessTokenCookie)
			if err != nil || c.Value == "" {
				writeJSONError(w, http.StatusUnauthorized, "Access token required")
				return
			}
			p, err := authn.Authenticate(r.Context(), c.Value)
			if err != nil {
				if msg, ok := domain.Message(err); ok && errors.Is(err, domain.ErrUnauthorized) {
					writeJSONError(w, http.StatusUnauthorized, msg)
					return
				}
				log.Error("authentication failed", "path", r.URL.Path, "err", err)
				writeJSONError(w, http.StatusInternalServerError, "Authentication failed")
				return
			}
			next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), p)))
		})
	}
}

// WithPrincipal returns a copy of ctx carrying p.
func WithPrincipal(ctx context.Context, p *domain.Principal) context.Context {
	return context.WithValue(ctx, PrincipalKey, p)
}

// PrincipalFromContext extracts the authenticated caller from the request context.
func PrincipalFromContext(ctx context.Context) (*domain.Principal, bool) {
	p, ok := ctx.Value(PrincipalKey).(*domain.Principal)
	return p, ok && p != nil
}
