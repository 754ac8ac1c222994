package event

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/event-planner-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- mock ---

type mockEventStore struct{ mock.Mock }

func (m *mockEventStore) Put(ctx context.Context, e *domain.Event) error {
	return m.Called(ctx, e).Error(0)
}
func (m *mockEventStore) Get(ctx context.Context, eventID string) (*domain.Event, error) {
	args := m.Called(ctx, eventID)
	if e, _ := args.Get(0).(*domain.Event); e != nil {
		return e, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockEventStore) Update(ctx context.Context, eventID string, updates map[string]interface{}) (*domain.Event, error) {
	args := m.Called(ctx, eventID, updates)
	if e, _ := args.Get(0).(*domain.Event); e != nil {
		return e, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockEventStore) Delete(ctx context.Context, eventID string) error {
	return m.Called(ctx, eventID).Error(0)
}
func (m *mockEventStore) Scan(ctx context.Context) ([]domain.Event, error) {
	args := m.Called(ctx)
	events, _ := args.Get(0).([]domain.Event)
	return events, args.Error(1)
}
func (m *mockEventStore) ListByCreator(ctx context.Context, userID string) ([]domain.Event, error) {
	args := m.Called(ctx, userID)
	events, _ := args.Get(0).([]domain.Event)
	return events, args.Error(1)
}

// --- helpers ---

var now = time.Date(2030, 6, 1, 12, 0, 0, 0, time.UTC)

var ada = &domain.Principal{ID: "u1", Email: "ada@x.com", Name: "Ada"}

func newService(store *mockEventStore) Service {
	return NewService(ServiceDeps{EventRepo: store, Now: func() time.Time { return now }})
}

func ptr[T any](v T) *T { return &v }

func assertMessage(t *testing.T, err error, kind error, msg string) {
	t.Helper()
	require.Error(t, err)
	assert.True(t, errors.Is(err, kind), "expected kind %v, got %v", kind, err)
	got, _ := domain.Message(err)
	assert.Equal(t, msg, got)
}

func ev(id, owner, typ string, at time.Time, title string) domain.Event {
	return domain.Event{EventID: id, CreatedBy: owner, EventType: typ, EventDate: at, Title: title, Location: "Hall"}
}

// --- Create ---

func TestCreate_Success(t *testing.T) {
	store := &mockEventStore{}
	store.On("Put", mock.Anything, mock.AnythingOfType("*domain.Event")).Return(nil)

	e, err := newService(store).Create(context.Background(), ada, domain.CreateEventRequest{
		Title:     "  Launch ",
		EventDate: ptr(now.Add(24 * time.Hour)),
		Location:  "Hall A",
	})
	require.NoError(t, err)
	assert.Equal(t, "Launch", e.Title)
	assert.Equal(t, domain.EventTypePublic, e.EventType)
	assert.Equal(t, "u1", e.CreatedBy)
	assert.Equal(t, "Ada", e.CreatorName)
	assert.NotEmpty(t, e.EventID)
	store.AssertExpectations(t)
}

func TestCreate_Validation(t *testing.T) {
	future := ptr(now.Add(time.Hour))
	cases := []struct {
		name string
		req  domain.CreateEventRequest
		msg  string
	}{
		{"missing title", domain.CreateEventRequest{EventDate: future, Location: "Hall"}, MsgCreateRequired},
		{"missing date", domain.CreateEventRequest{Title: "T", Location: "Hall"}, MsgCreateRequired},
		{"blank location", domain.CreateEventRequest{Title: "T", EventDate: future, Location: "  "}, MsgCreateRequired},
		{"past date", domain.CreateEventRequest{Title: "T", EventDate: ptr(now.Add(-time.Minute)), Location: "Hall"}, MsgDateInPast},
		{"now is not future", domain.CreateEventRequest{Title: "T", EventDate: ptr(now), Location: "Hall"}, MsgDateInPast},
		{"bad type", domain.CreateEventRequest{Title: "T", EventDate: future, Location: "Hall", EventType: "secret"}, MsgBadEventType},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := newService(&mockEventStore{}).Create(context.Background(), ada, c.req)
			assertMessage(t, err, domain.ErrBadRequest, c.msg)
		})
	}
}

// --- List ---

func TestList_FiltersSortsAndPaginates(t *testing.T) {
	store := &mockEventStore{}
	store.On("Scan", mock.Anything).Return([]domain.Event{
		ev("e3", "u1", "public", now.Add(3*time.Hour), "Go meetup"),
		ev("e1", "u2", "public", now.Add(1*time.Hour), "Rust meetup"),
		ev("e2", "u1", "private", now.Add(2*time.Hour), "Board meeting"),
		ev("e0", "u2", "public", now.Add(-time.Hour), "Old meetup"),
	}, nil)
	svc := newService(store)

	page, err := svc.List(context.Background(), domain.EventFilter{Search: "MEETUP", Upcoming: true, Page: 1, Limit: 1})
	require.NoError(t, err)
	require.Len(t, page.Events, 1)
	assert.Equal(t, "e1", page.Events[0].EventID)
	assert.Equal(t, domain.Pagination{Page: 1, Limit: 1, Total: 2, TotalPages: 2, HasNext: true, HasPrev: false}, page.Pagination)

	page, err = svc.List(context.Background(), domain.EventFilter{Search: "meetup", Upcoming: true, Page: 2, Limit: 1})
	require.NoError(t, err)
	require.Len(t, page.Events, 1)
	assert.Equal(t, "e3", page.Events[0].EventID)
	assert.False(t, page.Pagination.HasNext)
	assert.True(t, page.Pagination.HasPrev)

	page, err = svc.List(context.Background(), domain.EventFilter{EventType: "private"})
	require.NoError(t, err)
	require.Len(t, page.Events, 1)
	assert.Equal(t, "e2", page.Events[0].EventID)
	assert.Equal(t, DefaultPageLimit, page.Pagination.Limit)
}

func TestList_SearchesDescriptionAndLocation(t *testing.T) {
	a := ev("a", "u1", "public", now.Add(time.Hour), "A")
	a.Description = "Bring snacks"
	b := ev("b", "u1", "public", now.Add(time.Hour), "B")
	b.Location = "Snackbar"
	c := ev("c", "u1", "public", now.Add(time.Hour), "C")
	store := &mockEventStore{}
	store.On("Scan", mock.Anything).Return([]domain.Event{a, b, c}, nil)

	page, err := newService(store).List(context.Background(), domain.EventFilter{Search: "snack"})
	require.NoError(t, err)
	assert.Equal(t, 2, page.Pagination.Total)
}

func TestList_StoreError(t *testing.T) {
	store := &mockEventStore{}
	store.On("Scan", mock.Anything).Return(nil, errors.New("boom"))
	_, err := newService(store).List(context.Background(), domain.EventFilter{})
	assert.ErrorContains(t, err, "scan events")
}

func TestListMine(t *testing.T) {
	store := &mockEventStore{}
	store.On("ListByCreator", mock.Anything, "u1").Return([]domain.Event{
		ev("b", "u1", "public", now.Add(2*time.Hour), "B"),
		ev("a", "u1", "private", now.Add(time.Hour), "A"),
	}, nil)

	page, err := newService(store).ListMine(context.Background(), ada, 0, 0)
	require.NoError(t, err)
	require.Len(t, page.Events, 2)
	assert.Equal(t, "a", page.Events[0].EventID)
	assert.Equal(t, 1, page.Pagination.TotalPages)
}

// --- Get ---

func TestGet_NotFound(t *testing.T) {
	store := &mockEventStore{}
	store.On("Get", mock.Anything, "nope").Return(nil, domain.ErrNotFound)
	_, err := newService(store).Get(context.Background(), "nope")
	assertMessage(t, err, domain.ErrNotFound, MsgNotFound)
}

// --- Update ---

func TestUpdate_OwnerOnly(t *testing.T) {
	store := &mockEventStore{}
	existing := ev("e1", "someone-else", "public", now.Add(time.Hour), "T")
	store.On("Get", mock.Anything, "e1").Return(&existing, nil)

	_, err := newService(store).Update(context.Background(), ada, "e1", domain.UpdateEventRequest{Title: ptr("New")})
	assertMessage(t, err, domain.ErrForbidden, MsgNotOwnerEdit)
	store.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
}

func TestUpdate_PartialFields(t *testing.T) {
	store := &mockEventStore{}
	existing := ev("e1", "u1", "public", now.Add(time.Hour), "T")
	store.On("Get", mock.Anything, "e1").Return(&existing, nil)
	updated := existing
	updated.Title = "New"
	store.On("Update", mock.Anything, "e1", mock.MatchedBy(func(u map[string]interface{}) bool {
		_, hasLoc := u[fieldLocation]
		return u[fieldTitle] == "New" && u[fieldEventType] == "private" && !hasLoc && u[fieldUpdatedAt] == now
	})).Return(&updated, nil)

	e, err := newService(store).Update(context.Background(), ada, "e1", domain.UpdateEventRequest{
		Title:     ptr(" New "),
		EventType: ptr("private"),
	})
	require.NoError(t, err)
	assert.Equal(t, "New", e.Title)
	store.AssertExpectations(t)
}

func TestUpdate_Validation(t *testing.T) {
	cases := []struct {
		name string
		req  domain.UpdateEventRequest
		msg  string
	}{
		{"empty title", domain.UpdateEventRequest{Title: ptr(" ")}, MsgEmptyTitle},
		{"empty location", domain.UpdateEventRequest{Location: ptr("")}, MsgEmptyLocation},
		{"past date", domain.UpdateEventRequest{EventDate: ptr(now.Add(-time.Hour))}, MsgDateInPast},
		{"bad type", domain.UpdateEventRequest{EventType: ptr("hidden")}, MsgBadEventType},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			store := &mockEventStore{}
			existing := ev("e1", "u1", "public", now.Add(time.Hour), "T")
			store.On("Get", mock.Anything, "e1").Return(&existing, nil)
			_, err := newService(store).Update(context.Background(), ada, "e1", c.req)
			assertMessage(t, err, domain.ErrBadRequest, c.msg)
		})
	}
}

// --- Delete ---

func TestDelete_OwnerOnly(t *testing.T) {
	store := &mockEventStore{}
	existing := ev("e1", "someone-else", "public", now.Add(time.Hour), "T")
	store.On("Get", mock.Anything, "e1").Return(&existing, nil)

	err := newService(store).Delete(context.Background(), ada, "e1")
	assertMessage(t, err, domain.ErrForbidden, MsgNotOwnerDelete)
}

func TestDelete_Success(t *testing.T) {
	store := &mockEventStore{}
	existing := ev("e1", "u1", "public", now.Add(time.Hour), "T")
	store.On("Get", mock.Anything, "e1").Return(&existing, nil)
	store.On("Delete", mock.Anything, "e1").Return(nil)

	require.NoError(t, newService(store).Delete(context.Background(), ada, "e1"))
	store.AssertExpectations(t)
}

// --- Upcoming / Past ---

func TestUpcoming_PublicOnlyAscending(t *testing.T) {
	store := &mockEventStore{}
	store.On("Scan", mock.Anything).Return([]domain.Event{
		ev("late", "u1", "public", now.Add(48*time.Hour), "L"),
		ev("hidden", "u1", "private", now.Add(time.Hour), "H"),
		ev("soon", "u1", "public", now.Add(time.Hour), "S"),
		ev("gone", "u1", "public", now.Add(-time.Hour), "G"),
	}, nil)

	got, err := newService(store).Upcoming(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "soon", got[0].EventID)
	assert.Equal(t, "late", got[1].EventID)
}

func TestPast_DescendingWithLimit(t *testing.T) {
	store := &mockEventStore{}
	store.On("Scan", mock.Anything).Return([]domain.Event{
		ev("oldest", "u1", "public", now.Add(-72*time.Hour), "O"),
		ev("recent", "u1", "private", now.Add(-time.Hour), "R"),
		ev("middle", "u1", "public", now.Add(-24*time.Hour), "M"),
		ev("future", "u1", "public", now.Add(time.Hour), "F"),
	}, nil)

	got, err := newService(store).Past(context.Background(), 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "recent", got[0].EventID)
	assert.Equal(t, "middle", got[1].EventID)
}

func TestPaginate_PageBeyondEnd(t *testing.T) {
	events := []domain.Event{ev("a", "u1", "public", now, "A")}
	page := paginate(events, 5, 10)
	assert.Empty(t, page.Events)
	assert.Equal(t, 1, page.Pagination.Total)
	assert.False(t, page.Pagination.HasNext)
	assert.True(t, page.Pagination.HasPrev)
}

func TestPaginate_HugePage(t *testing.T) {
	events := []domain.Event{ev("a", "u1", "public", now, "A"), ev("b", "u1", "public", now, "B")}
	var page *domain.EventPage
	require.NotPanics(t, func() { page = paginate(events, math.MaxInt, MaxPageLimit) })
	assert.Empty(t, page.Events)
	assert.Equal(t, 2, page.Pagination.Total)
	assert.False(t, page.Pagination.HasNext)
}

func TestListMine_HugePage(t *testing.T) {
	store := &mockEventStore{}
	store.On("ListByCreator", mock.Anything, "u1").Return([]domain.Event{
		ev("a", "u1", "public", now.Add(time.Hour), "A"),
	}, nil)

	page, err := newService(store).ListMine(context.Background(), &domain.Principal{ID: "u1"}, math.MaxInt, 10)
	require.NoError(t, err)
	assert.Empty(t, page.Events)
	assert.Equal(t, 1, page.Pagination.Total)
}

func TestPageBounds(t *testing.T) {
	p, l := pageBounds(0, 1000)
	assert.Equal(t, 1, p)
	assert.Equal(t, MaxPageLimit, l)
}
