package handler

import (
	"encoding/json"
	"net/http"

	"github.com/event-planner-api/internal/domain"
)

// MessageEnvelope is the generic response wrapper.
type MessageEnvelope struct {
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// AuthEnvelope wraps register/login/refresh responses.
type AuthEnvelope struct {
	Message     string             `json:"message,omitempty"`
	User        *domain.PublicUser `json:"user,omitempty"`
	AccessToken string             `json:"accessToken,omitempty"`
	Email       string             `json:"email,omitempty"`
}

// UserEnvelope wraps the current-user response.
type UserEnvelope struct {
	User *domain.PublicUser `json:"user"`
}

// EventEnvelope wraps single-event responses.
type EventEnvelope struct {
	Message string        `json:"message,omitempty"`
	Event   *domain.Event `json:"event"`
}

// EventsEnvelope wraps unpaginated event lists.
type EventsEnvelope struct {
	Events []domain.Event `json:"events"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, MessageEnvelope{Error: msg})
}
