package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/event-planner-api/internal/application/auth"
	"github.com/event-planner-api/internal/domain"
	"github.com/event-planner-api/internal/transport/http/middleware"
)

const (
	msgRegistered  = "User registered successfully"
	msgOTPSent     = "OTP sent to your email. Please verify to complete registration."
	msgLoggedIn    = "Login successful"
	msgRefreshed   = "Token refreshed successfully"
	msgLoggedOut   = "Logged out successfully"
	msgInvalidBody = "invalid request body"
)

// AuthHandler handles registration, login and session endpoints.
type AuthHandler struct {
	svc     auth.Service
	cookies *CookieWriter
	log     *slog.Logger
}

func NewAuthHandler(svc auth.Service, cookies *CookieWriter, log *slog.Logger) *AuthHandler {
	if log == nil {
		log = slog.Default()
	}
	return &AuthHandler{svc: svc, cookies: cookies, log: log}
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req domain.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, msgInvalidBody)
		return
	}
	res, err := h.svc.Register(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, h.log, err)
		return
	}
	if res.Session == nil {
		writeJSON(w, http.StatusOK, AuthEnvelope{Message: msgOTPSent, Email: res.PendingEmail})
		return
	}
	h.cookies.Set(w, res.Session.Tokens)
	writeJSON(w, http.StatusCreated, AuthEnvelope{Message: msgRegistered, User: res.Session.User})
}

func (h *AuthHandler) VerifyOTP(w http.ResponseWriter, r *http.Request) {
	var req domain.VerifyOTPRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, msgInvalidBody)
		return
	}
	sess, err := h.svc.VerifyOTP(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, h.log, err)
		return
	}
	h.cookies.Set(w, sess.Tokens)
	writeJSON(w, http.StatusCreated, AuthEnvelope{Message: msgRegistered, User: sess.User})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req domain.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, msgInvalidBody)
		return
	}
	sess, err := h.svc.Login(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, h.log, err)
		return
	}
	h.cookies.Set(w, sess.Tokens)
	writeJSON(w, http.StatusOK, AuthEnvelope{
		Message:     msgLoggedIn,
		User:        sess.User,
		AccessToken: sess.Tokens.AccessToken,
	})
}

func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	sess, err := h.svc.Refresh(r.Context(), refreshCookie(r))
	if err != nil {
		h.cookies.Clear(w)
		writeServiceError(w, r, h.log, err)
		return
	}
	h.cookies.Set(w, sess.Tokens)
	writeJSON(w, http.StatusOK, AuthEnvelope{Message: msgRefreshed, User: sess.User})
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.svc.Logout(r.Context(), refreshCookie(r))
	h.cookies.Clear(w)
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: msgLoggedOut})
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	p, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Access token required")
		return
	}
	u, err := h.svc.Me(r.Context(), p.ID)
	if err != nil {
		writeServiceError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, UserEnvelope{User: u})
}

func refreshCookie(r *http.Request) string {
	c, err := r.Cookie(RefreshTokenCookie)
	if err != nil {
		return ""
	}
	return c.Value
}
