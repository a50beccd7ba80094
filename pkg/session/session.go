package session

import (
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
)

// Session is the state kept for one visitor.
type Session struct {
	CreatedAt time.Time      `json:"created_at"`
	ExpiresAt time.Time      `json:"expires_at"`
	Values    map[string]any `json:"values,omitempty"`
	ID        string         `json:"id"`
	UserID    string         `json:"user_id,omitempty"`
	Roles     []string       `json:"roles,omitempty"`

	dirty bool
	isNew bool
}

// New creates an anonymous session with a random id.
func New(ttl time.Duration) *Session {
	now := time.Now()
	return &Session{
		ID:        NewID(),
		Values:    make(map[string]any),
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
		isNew:     true,
		dirty:     true,
	}
}

// NewID returns a random session id.
func NewID() string {
	return uuid.NewString()
}

// Login binds the session to a user with the given roles.
// The id is rotated to prevent fixation.
func (s *Session) Login(userID string, roles ...string) {
	s.ID = NewID()
	s.UserID = userID
	s.Roles = slices.Clone(roles)
	s.dirty = true
}

// Logout clears the user and roles.
func (s *Session) Logout() {
	s.UserID = ""
	s.Roles = nil
	s.dirty = true
}

// IsLogin reports whether a user is bound to the session.
func (s *Session) IsLogin() bool {
	return s.UserID != ""
}

// HasRole reports whether the session user holds role.
func (s *Session) HasRole(role string) bool {
	return slices.Contains(s.Roles, role)
}

// Set stores a value.
func (s *Session) Set(key string, val any) {
	if s.Values == nil {
		s.Values = make(map[string]any)
	}
	s.Values[key] = val
	s.dirty = true
}

// Get returns a stored value.
func (s *Session) Get(key string) (any, bool) {
	val, ok := s.Values[key]
	return val, ok
}

// Delete removes a value.
func (s *Session) Delete(key string) {
	if _, ok := s.Values[key]; ok {
		delete(s.Values, key)
		s.dirty = true
	}
}

// IsDirty reports whether the session changed since it was loaded.
func (s *Session) IsDirty() bool { return s.dirty }

// IsNew reports whether the session was created during this request.
func (s *Session) IsNew() bool { return s.isNew }

// IsExpired reports whether the session is past its expiry.
func (s *Session) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}

func (s *Session) markClean() {
	s.dirty = false
	s.isNew = false
}

// Value returns the value stored under key as T.
func Value[T any](s *Session, key string) (T, error) {
	var zero T
	if s == nil {
		return zero, ErrNotFound
	}
	val, ok := s.Get(key)
	if !ok {
		return zero, fmt.Errorf("%w: %q", ErrNotFound, key)
	}
	typed, ok := val.(T)
	if !ok {
		return zero, fmt.Errorf("%w: %q is %T", ErrTypeMismatch, key, val)
	}
	return typed, nil
}
