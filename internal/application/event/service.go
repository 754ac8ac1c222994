package event

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/event-planner-api/internal/domain"
	"github.com/event-planner-api/internal/pkg/id"
)

// DynamoDB attribute names used in partial update maps.
const (
	fieldTitle       = "title"
	fieldDescription = "description"
	fieldEventDate   = "event_date"
	fieldLocation    = "location"
	fieldEventType   = "event_type"
	fieldUpdatedAt   = "updated_at"
)

const (
	MsgCreateRequired = "Title, event date, and location are required"
	MsgDateInPast     = "Event date must be in the future"
	MsgBadEventType   = `Event type must be either "public" or "private"`
	MsgNotFound       = "Event not found"
	MsgNotOwnerEdit   = "Unauthorized: You can only edit your own events"
	MsgNotOwnerDelete = "Unauthorized: You can only delete your own events"
	MsgEmptyTitle     = "Title cannot be empty"
	MsgEmptyLocation  = "Location cannot be empty"
)

type Service interface {
	Create(ctx context.Context, p *domain.Principal, req domain.CreateEventRequest) (*domain.Event, error)
	List(ctx context.Context, f domain.EventFilter) (*domain.EventPage, error)
	ListMine(ctx context.Context, p *domain.Principal, page, limit int) (*domain.EventPage, error)
	Get(ctx context.Context, eventID string) (*domain.Event, error)
	Update(ctx context.Context, p *domain.Principal, eventID string, req domain.UpdateEventRequest) (*domain.Event, error)
	Delete(ctx context.Context, p *domain.Principal, eventID string) error
	Upcoming(ctx context.Context, limit int) ([]domain.Event, error)
	Past(ctx context.Context, limit int) ([]domain.Event, error)
}

type eventStore interface {
	Put(ctx context.Context, e *domain.Event) error
	Get(ctx context.Context, eventID string) (*domain.Event, error)
	Update(ctx context.Context, eventID string, updates map[string]interface{}) (*domain.Event, error)
	Delete(ctx context.Context, eventID string) error
	Scan(ctx context.Context) ([]domain.Event, error)
	ListByCreator(ctx context.Context, userID string) ([]domain.Event, error)
}

type ServiceDeps struct {
	EventRepo eventStore
	Logger    *slog.Logger
	Now       func() time.Time
}

type service struct {
	events eventStore
	log    *slog.Logger
	now    func() time.Time
}

func NewService(deps ServiceDeps) Service {
	s := &service{events: deps.EventRepo, log: deps.Logger, now: deps.Now}
	if s.log == nil {
		s.log = slog.Default()
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

func (s *service) Create(ctx context.Context, p *domain.Principal, req domain.CreateEventRequest) (*domain.Event, error) {
	title := strings.TrimSpace(req.Title)
	location := strings.TrimSpace(req.Location)
	if title == "" || location == "" || req.EventDate == nil || req.EventDate.IsZero() {
		return nil, domain.NewError(domain.ErrBadRequest, MsgCreateRequired)
	}
	now := s.now().UTC()
	if !req.EventDate.After(now) {
		return nil, domain.NewError(domain.ErrBadRequest, MsgDateInPast)
	}
	eventType := req.EventType
	if eventType == "" {
		eventType = domain.EventTypePublic
	}
	if !validType(eventType) {
		return nil, domain.NewError(domain.ErrBadRequest, MsgBadEventType)
	}

	e := &domain.Event{
		EventID:     id.New(),
		Title:       title,
		Description: strings.TrimSpace(req.Description),
		EventDate:   req.EventDate.UTC(),
		Location:    location,
		EventType:   eventType,
		CreatedBy:   p.ID,
		CreatorName: p.Name,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.events.Put(ctx, e); err != nil {
		return nil, fmt.Errorf("store event: %w", err)
	}
	s.log.Info("event created", "event_id", e.EventID, "user_id", p.ID)
	return e, nil
}

func (s *service) List(ctx context.Context, f domain.EventFilter) (*domain.EventPage, error) {
	all, err := s.events.Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("scan events: %w", err)
	}
	return paginate(filterEvents(all, f, s.now()), f.Page, f.Limit), nil
}

func (s *service) ListMine(ctx context.Context, p *domain.Principal, page, limit int) (*domain.EventPage, error) {
	mine, err := s.events.ListByCreator(ctx, p.ID)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	sortByDate(mine, true)
	return paginate(mine, page, limit), nil
}

func (s *service) Get(ctx context.Context, eventID string) (*domain.Event, error) {
	e, err := s.events.Get(ctx, eventID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.NewError(domain.ErrNotFound, MsgNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("load event: %w", err)
	}
	return e, nil
}

func (s *service) Update(ctx context.Context, p *domain.Principal, eventID string, req domain.UpdateEventRequest) (*domain.Event, error) {
	existing, err := s.Get(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if existing.CreatedBy != p.ID {
		return nil, domain.NewError(domain.ErrForbidden, MsgNotOwnerEdit)
	}

	now := s.now().UTC()
	updates := map[string]interface{}{fieldUpdatedAt: now}
	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			return nil, domain.NewError(domain.ErrBadRequest, MsgEmptyTitle)
		}
		updates[fieldTitle] = title
	}
	if req.Description != nil {
		updates[fieldDescription] = strings.TrimSpace(*req.Description)
	}
	if req.EventDate != nil {
		if !req.EventDate.After(now) {
			return nil, domain.NewError(domain.ErrBadRequest, MsgDateInPast)
		}
		updates[fieldEventDate] = req.EventDate.UTC()
	}
	if req.Location != nil {
		location := strings.TrimSpace(*req.Location)
		if location == "" {
			return nil, domain.NewError(domain.ErrBadRequest, MsgEmptyLocation)
		}
		updates[fieldLocation] = location
	}
	if req.EventType != nil {
		if !validType(*req.EventType) {
			return nil, domain.NewError(domain.ErrBadRequest, MsgBadEventType)
		}
		updates[fieldEventType] = *req.EventType
	}

	e, err := s.events.Update(ctx, eventID, updates)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.NewError(domain.ErrNotFound, MsgNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("update event: %w", err)
	}
	return e, nil
}

func (s *service) Delete(ctx context.Context, p *domain.Principal, eventID string) error {
	existing, err := s.Get(ctx, eventID)
	if err != nil {
		return err
	}
	if existing.CreatedBy != p.ID {
		return domain.NewError(domain.ErrForbidden, MsgNotOwnerDelete)
	}
	err = s.events.Delete(ctx, eventID)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.NewError(domain.ErrNotFound, MsgNotFound)
	}
	if err != nil {
		return fmt.Errorf("delete event: %w", err)
	}
	s.log.Info("event deleted", "event_id", eventID, "user_id", p.ID)
	return nil
}

// Upcoming returns public events that have not started, soonest first.
func (s *service) Upcoming(ctx context.Context, limit int) ([]domain.Event, error) {
	all, err := s.events.Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("scan events: %w", err)
	}
	f := domain.EventFilter{EventType: domain.EventTypePublic, Upcoming: true}
	return head(filterEvents(all, f, s.now()), limit), nil
}

// Past returns events whose date has passed, most recent first.
func (s *service) Past(ctx context.Context, limit int) ([]domain.Event, error) {
	all, err := s.events.Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("scan events: %w", err)
	}
	now := s.now()
	past := make([]domain.Event, 0, len(all))
	for _, e := range all {
		if e.EventDate.Before(now) {
			past = append(past, e)
		}
	}
	sortByDate(past, false)
	return head(past, limit), nil
}

func validType(t string) bool {
	return t == domain.EventTypePublic || t == domain.EventTypePrivate
}
