package event

import (
	"sort"
	"strings"
	"time"

	"github.com/event-planner-api/internal/domain"
)

const (
	DefaultPageLimit = 20
	MaxPageLimit     = 100
	DefaultFeedLimit = 10
)

// matches reports whether e satisfies every non-zero field of f.
func matches(e *domain.Event, f domain.EventFilter, now time.Time) bool {
	if f.EventType != "" && e.EventType != f.EventType {
		return false
	}
	if f.CreatedBy != "" && e.CreatedBy != f.CreatedBy {
		return false
	}
	if f.Upcoming && e.EventDate.Before(now) {
		return false
	}
	if q := strings.ToLower(strings.TrimSpace(f.Search)); q != "" {
		if !strings.Contains(strings.ToLower(e.Title), q) &&
			!strings.Contains(strings.ToLower(e.Description), q) &&
			!strings.Contains(strings.ToLower(e.Location), q) {
			return false
		}
	}
	return true
}

// filterEvents returns the events matching f, ordered by event date ascending.
func filterEvents(events []domain.Event, f domain.EventFilter, now time.Time) []domain.Event {
	out := make([]domain.Event, 0, len(events))
	for i := range events {
		if matches(&events[i], f, now) {
			out = append(out, events[i])
		}
	}
	sortByDate(out, true)
	return out
}

func sortByDate(events []domain.Event, asc bool) {
	sort.SliceStable(events, func(i, j int) bool {
		a, b := events[i], events[j]
		if !a.EventDate.Equal(b.EventDate) {
			if asc {
				return a.EventDate.Before(b.EventDate)
			}
			return a.EventDate.After(b.EventDate)
		}
		return a.EventID < b.EventID
	})
}

// pageBounds clamps page and limit to their defaults and maximum.
func pageBounds(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = DefaultPageLimit
	}
	if limit > MaxPageLimit {
		limit = MaxPageLimit
	}
	return page, limit
}

// paginate slices an already ordered list into the requested page.
func paginate(events []domain.Event, page, limit int) *domain.EventPage {
	page, limit = pageBounds(page, limit)
	total := len(events)
	totalPages := (total + limit - 1) / limit

	// page can be as large as MaxInt; compare before multiplying.
	start := total
	if page-1 < totalPages {
		start = (page - 1) * limit
	}
	end := start + limit
	if end > total {
		end = total
	}
	items := make([]domain.Event, end-start)
	copy(items, events[start:end])

	return &domain.EventPage{
		Events: items,
		Pagination: domain.Pagination{
			Page:       page,
			Limit:      limit,
			Total:      total,
			TotalPages: totalPages,
			HasNext:    page < totalPages,
			HasPrev:    page > 1,
		},
	}
}

func head(events []domain.Event, limit int) []domain.Event {
	if limit < 1 {
		limit = DefaultFeedLimit
	}
	if limit > MaxPageLimit {
		limit = MaxPageLimit
	}
	if len(events) > limit {
		events = events[:limit]
	}
	return events
}
