package http

import (
	"context"

	"github.com/event-planner-api/internal/domain"
)

// UserRepository is the minimal interface the router requires from a user store.
type UserRepository interface {
	Create(ctx context.Context, u *domain.User) error
	Get(ctx context.Context, userID string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByPhone(ctx context.Context, phone string) (*domain.User, error)
	GetByRefreshToken(ctx context.Context, token string) (*domain.User, error)
	SetRefreshToken(ctx context.Context, userID, token string) error
	// SwapRefreshToken replaces oldToken only if it is still the stored one.
	SwapRefreshToken(ctx context.Context, userID, oldToken, newToken string) error
	ClearRefreshToken(ctx context.Context, userID, token string) error
}

// EventRepository is the minimal interface the router requires from an event store.
type EventRepository interface {
	Put(ctx context.Context, e *domain.Event) error
	Get(ctx context.Context, eventID string) (*domain.Event, error)
	Update(ctx context.Context, eventID string, updates map[string]interface{}) (*domain.Event, error)
	Delete(ctx context.Context, eventID string) error
	Scan(ctx context.Context) ([]domain.Event, error)
	ListByCreator(ctx context.Context, userID string) ([]domain.Event, error)
}
