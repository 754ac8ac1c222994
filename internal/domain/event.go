package domain

import "time"

const (
	EventTypePublic  = "public"
	EventTypePrivate = "private"
)

type Event struct {
	EventID     string    `json:"id" dynamodbav:"event_id"`
	Title       string    `json:"title" dynamodbav:"title"`
	Description string    `json:"description" dynamodbav:"description"`
	EventDate   time.Time `json:"event_date" dynamodbav:"event_date"`
	Location    string    `json:"location" dynamodbav:"location"`
	EventType   string    `json:"event_type" dynamodbav:"event_type"`
	CreatedBy   string    `json:"created_by" dynamodbav:"created_by"`
	CreatorName string    `json:"creator_name" dynamodbav:"creator_name"`
	CreatedAt   time.Time `json:"created_at" dynamodbav:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" dynamodbav:"updated_at"`
}

type CreateEventRequest struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	EventDate   *time.Time `json:"event_date"`
	Location    string     `json:"location"`
	EventType   string     `json:"event_type"`
}

type UpdateEventRequest struct {
	Title       *string    `json:"title"`
	Description *string    `json:"description"`
	EventDate   *time.Time `json:"event_date"`
	Location    *string    `json:"location"`
	EventType   *string    `json:"event_type"`
}

// EventFilter narrows an event listing.
type EventFilter struct {
	EventType string
	Search    string
	Upcoming  bool
	CreatedBy string
	Page      int
	Limit     int
}

type Pagination struct {
	Page       int  `json:"page"`
	Limit      int  `json:"limit"`
	Total      int  `json:"total"`
	TotalPages int  `json:"totalPages"`
	HasNext    bool `json:"hasNext"`
	HasPrev    bool `json:"hasPrev"`
}

type EventPage struct {
	Events     []Event    `json:"events"`
	Pagination Pagination `json:"pagination"`
}
