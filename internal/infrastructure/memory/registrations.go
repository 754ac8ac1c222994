// Package memory holds process-local stores for single-instance deployments and tests.
package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/event-planner-api/internal/domain"
)

// RegistrationStore keeps pending registrations in a map keyed by email.
// Expired entries are swept on every Put.
type RegistrationStore struct {
	mu      sync.Mutex
	entries map[string]domain.PendingRegistration
	now     func() time.Time
}

func NewRegistrationStore() *RegistrationStore {
	return &RegistrationStore{
		entries: make(map[string]domain.PendingRegistration),
		now:     time.Now,
	}
}

// WithClock replaces the store's time source.
func (s *RegistrationStore) WithClock(now func() time.Time) *RegistrationStore {
	s.now = now
	return s
}

func (s *RegistrationStore) Put(_ context.Context, p *domain.PendingRegistration, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	for email, e := range s.entries {
		if e.Expired(now) {
			delete(s.entries, email)
		}
	}
	if p.ExpiresAt == 0 {
		p.ExpiresAt = now.Add(ttl).Unix()
	}
	s.entries[p.Email] = *p
	return nil
}

func (s *RegistrationStore) Get(_ context.Context, email string) (*domain.PendingRegistration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[email]
	if !ok {
		return nil, fmt.Errorf("pending registration not found: %w", domain.ErrNotFound)
	}
	return &e, nil
}

func (s *RegistrationStore) Delete(_ context.Context, email string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, email)
	return nil
}

// Consume removes and returns the entry if code matches and it has not expired.
func (s *RegistrationStore) Consume(_ context.Context, email, code string) (*domain.PendingRegistration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[email]
	if !ok || e.Code != code || e.Expired(s.now()) {
		return nil, fmt.Errorf("pending registration not found: %w", domain.ErrNotFound)
	}
	delete(s.entries, email)
	return &e, nil
}

// Len reports the number of stored entries, expired ones included.
func (s *RegistrationStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}
