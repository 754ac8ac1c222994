package domain

import "time"

// PendingRegistration holds a registration awaiting OTP confirmation.
// PK: email. ExpiresAt doubles as the DynamoDB TTL attribute (Unix seconds).
type PendingRegistration struct {
	Email        string `json:"email" dynamodbav:"email"`
	Code         string `json:"-" dynamodbav:"code"`
	Name         string `json:"name" dynamodbav:"name"`
	PhoneNumber  string `json:"phone_number" dynamodbav:"phone_number"`
	PasswordHash string `json:"-" dynamodbav:"password_hash"`
	ExpiresAt    int64  `json:"expires_at" dynamodbav:"expires_at"`
}

// Expired reports whether the entry is past its window at now.
func (p *PendingRegistration) Expired(now time.Time) bool {
	return now.Unix() >= p.ExpiresAt
}
