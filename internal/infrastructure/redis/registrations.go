package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/event-planner-api/internal/domain"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "pending_registration:"

// consumeScript deletes the hash only when its code matches ARGV[1].
// It returns the hash fields as a flat list, or an empty list on mismatch.
var consumeScript = redis.NewScript(`
local code = redis.call("HGET", KEYS[1], "code")
if code == false or code ~= ARGV[1] then
	return {}
end
local fields = redis.call("HGETALL", KEYS[1])
redis.call("DEL", KEYS[1])
return fields
`)

// RegistrationStore keeps each pending registration in a hash whose key
// expires with the OTP window.
type RegistrationStore struct {
	db redis.UniversalClient
}

func NewRegistrationStore(db redis.UniversalClient) *RegistrationStore {
	return &RegistrationStore{db: db}
}

func key(email string) string { return keyPrefix + email }

func (s *RegistrationStore) Put(ctx context.Context, p *domain.PendingRegistration, ttl time.Duration) error {
	if p.ExpiresAt == 0 {
		p.ExpiresAt = time.Now().Add(ttl).Unix()
	}
	k := key(p.Email)
	_, err := s.db.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, k)
		pipe.HSet(ctx, k,
			"email", p.Email,
			"code", p.Code,
			"name", p.Name,
			"phone_number", p.PhoneNumber,
			"password_hash", p.PasswordHash,
			"expires_at", p.ExpiresAt,
		)
		pipe.Expire(ctx, k, ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("store pending registration: %w", err)
	}
	return nil
}

func (s *RegistrationStore) Get(ctx context.Context, email string) (*domain.PendingRegistration, error) {
	fields, err := s.db.HGetAll(ctx, key(email)).Result()
	if err != nil {
		return nil, fmt.Errorf("load pending registration: %w", err)
	}
	if len(fields) == 0 {
		return nil, fmt.Errorf("pending registration not found: %w", domain.ErrNotFound)
	}
	return fromHash(fields)
}

func (s *RegistrationStore) Delete(ctx context.Context, email string) error {
	return s.db.Del(ctx, key(email)).Err()
}

// Consume runs a compare-and-delete script so only one caller can take the entry.
func (s *RegistrationStore) Consume(ctx context.Context, email, code string) (*domain.PendingRegistration, error) {
	res, err := consumeScript.Run(ctx, s.db, []string{key(email)}, code).StringSlice()
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("consume pending registration: %w", err)
	}
	if len(res) == 0 {
		return nil, fmt.Errorf("pending registration not found: %w", domain.ErrNotFound)
	}
	fields := make(map[string]string, len(res)/2)
	for i := 0; i+1 < len(res); i += 2 {
		fields[res[i]] = res[i+1]
	}
	p, err := fromHash(fields)
	if err != nil {
		return nil, err
	}
	if p.Expired(time.Now()) {
		return nil, fmt.Errorf("pending registration expired: %w", domain.ErrNotFound)
	}
	return p, nil
}

func fromHash(fields map[string]string) (*domain.PendingRegistration, error) {
	exp, err := strconv.ParseInt(fields["expires_at"], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("parse expires_at: %w", err)
	}
	return &domain.PendingRegistration{
		Email:        fields["email"],
		Code:         fields["code"],
		Name:         fields["name"],
		PhoneNumber:  fields["phone_number"],
		PasswordHash: fields["password_hash"],
		ExpiresAt:    exp,
	}, nil
}
