// Package session holds the server-side session records that tie a browser
// cookie to an authenticated user, plus the stores they live in.
package session

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Roles a session can carry.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// Session represents one authenticated browser. A session with an empty
// UserID is anonymous and treated as logged-out everywhere. Fields are set
// once at creation and never mutated in place.
type Session struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// New creates an authenticated session with a fresh ID and the given TTL.
func New(userID, email, role string, ttl time.Duration) Session {
	now := time.Now()
	return Session{
		ID:        uuid.NewString(),
		UserID:    userID,
		Email:     email,
		Role:      role,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
}

// Expired reports whether the session's TTL has passed.
func (s Session) Expired() bool {
	return time.Now().After(s.ExpiresAt)
}

// Store defines how sessions are stored and retrieved. Get returns
// (nil, nil) when no live session exists for the ID; an expired session is
// never returned. Delete of an absent session is not an error.
type Store interface {
	Create(ctx context.Context, s Session) error
	Get(ctx context.Context, sessionID string) (*Session, error)
	Delete(ctx context.Context, sessionID string) error
}
