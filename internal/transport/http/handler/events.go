package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/event-planner-api/internal/application/event"
	"github.com/event-planner-api/internal/domain"
	"github.com/event-planner-api/internal/transport/http/middleware"
	"github.com/go-chi/chi/v5"
)

const (
	msgEventCreated = "Event created successfully"
	msgEventUpdated = "Event updated successfully"
	msgEventDeleted = "Event deleted successfully"
	msgBadEventDate = "Invalid event date"
)

// Layouts accepted for event_date, besides RFC 3339. Dates without an offset
// are read as UTC.
var eventDateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// eventPayload is the wire form of create and update bodies. event_date is a
// string so the looser datetime-local and date-only forms are accepted.
type eventPayload struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	EventDate   *string `json:"event_date"`
	Location    *string `json:"location"`
	EventType   *string `json:"event_type"`
}

// EventHandler handles event endpoints.
type EventHandler struct {
	svc event.Service
	log *slog.Logger
}

func NewEventHandler(svc event.Service, log *slog.Logger) *EventHandler {
	if log == nil {
		log = slog.Default()
	}
	return &EventHandler{svc: svc, log: log}
}

func (h *EventHandler) Create(w http.ResponseWriter, r *http.Request) {
	p, ok := h.principal(w, r)
	if !ok {
		return
	}
	body, date, ok := decodeEvent(w, r)
	if !ok {
		return
	}
	req := domain.CreateEventRequest{
		Title:       deref(body.Title),
		Description: deref(body.Description),
		EventDate:   date,
		Location:    deref(body.Location),
		EventType:   deref(body.EventType),
	}
	e, err := h.svc.Create(r.Context(), p, req)
	if err != nil {
		writeServiceError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, EventEnvelope{Message: msgEventCreated, Event: e})
}

func (h *EventHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, limit := parsePagination(r)
	f := domain.EventFilter{
		EventType: q.Get("event_type"),
		Search:    q.Get("search"),
		Upcoming:  q.Get("upcoming") == "true",
		Page:      page,
		Limit:     limit,
	}
	res, err := h.svc.List(r.Context(), f)
	if err != nil {
		writeServiceError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *EventHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	p, ok := h.principal(w, r)
	if !ok {
		return
	}
	page, limit := parsePagination(r)
	res, err := h.svc.ListMine(r.Context(), p, page, limit)
	if err != nil {
		writeServiceError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *EventHandler) Get(w http.ResponseWriter, r *http.Request) {
	e, err := h.svc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, EventEnvelope{Event: e})
}

func (h *EventHandler) Update(w http.ResponseWriter, r *http.Request) {
	p, ok := h.principal(w, r)
	if !ok {
		return
	}
	body, date, ok := decodeEvent(w, r)
	if !ok {
		return
	}
	req := domain.UpdateEventRequest{
		Title:       body.Title,
		Description: body.Description,
		EventDate:   date,
		Location:    body.Location,
		EventType:   body.EventType,
	}
	e, err := h.svc.Update(r.Context(), p, chi.URLParam(r, "id"), req)
	if err != nil {
		writeServiceError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, EventEnvelope{Message: msgEventUpdated, Event: e})
}

func (h *EventHandler) Delete(w http.ResponseWriter, r *http.Request) {
	p, ok := h.principal(w, r)
	if !ok {
		return
	}
	if err := h.svc.Delete(r.Context(), p, chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: msgEventDeleted})
}

func (h *EventHandler) Upcoming(w http.ResponseWriter, r *http.Request) {
	events, err := h.svc.Upcoming(r.Context(), queryInt(r, "limit", event.DefaultFeedLimit))
	if err != nil {
		writeServiceError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, EventsEnvelope{Events: events})
}

func (h *EventHandler) Past(w http.ResponseWriter, r *http.Request) {
	events, err := h.svc.Past(r.Context(), queryInt(r, "limit", event.DefaultFeedLimit))
	if err != nil {
		writeServiceError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, EventsEnvelope{Events: events})
}

func (h *EventHandler) principal(w http.ResponseWriter, r *http.Request) (*domain.Principal, bool) {
	p, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Access token required")
	}
	return p, ok
}

func decodeEvent(w http.ResponseWriter, r *http.Request) (*eventPayload, *time.Time, bool) {
	var body eventPayload
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, msgInvalidBody)
		return nil, nil, false
	}
	if body.EventDate == nil || strings.TrimSpace(*body.EventDate) == "" {
		return &body, nil, true
	}
	t, err := parseEventDate(*body.EventDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, msgBadEventDate)
		return nil, nil, false
	}
	return &body, &t, true
}

func parseEventDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	var err error
	for _, layout := range eventDateLayouts {
		var t time.Time
		if t, err = time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, err
}

func parsePagination(r *http.Request) (page, limit int) {
	return queryInt(r, "page", 1), queryInt(r, "limit", event.DefaultPageLimit)
}

func queryInt(r *http.Request, key string, fallback int) int {
	if n, err := strconv.Atoi(r.URL.Query().Get(key)); err == nil && n > 0 {
		return n
	}
	return fallback
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
