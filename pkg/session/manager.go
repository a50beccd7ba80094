package session

import (
	"context"
	"errors"
	"net/http"
	"time"
)

const (
	DefaultCookieName = "sid"
	DefaultTTL        = 24 * time.Hour
)

// Manager loads and persists sessions identified by a cookie.
type Manager struct {
	store  Store
	signer *signer
	cookie string
	ttl    time.Duration
	secure bool
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithCookieName sets the session cookie name.
func WithCookieName(name string) ManagerOption {
	return func(m *Manager) {
		if name != "" {
			m.cookie = name
		}
	}
}

// WithTTL sets the session lifetime.
func WithTTL(ttl time.Duration) ManagerOption {
	return func(m *Manager) {
		if ttl > 0 {
			m.ttl = ttl
		}
	}
}

// WithSecureCookie marks the cookie Secure.
func WithSecureCookie(secure bool) ManagerOption {
	return func(m *Manager) {
		m.secure = secure
	}
}

// WithSecret signs the session cookie with HMAC-SHA256 so that clients
// cannot guess other session IDs. Secrets shorter than MinSecretLength are
// ignored.
func WithSecret(secret string) ManagerOption {
	return func(m *Manager) {
		if len(secret) >= MinSecretLength {
			m.signer = &signer{secret: []byte(secret)}
		}
	}
}

// NewManager creates a manager over store.
func NewManager(store Store, opts ...ManagerOption) *Manager {
	m := &Manager{store: store, cookie: DefaultCookieName, ttl: DefaultTTL}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Load returns the session named by the request cookie, or a new anonymous
// session when there is none.
func (m *Manager) Load(r *http.Request) (*Session, error) {
	c, err := r.Cookie(m.cookie)
	if err != nil || c.Value == "" {
		return New(m.ttl), nil
	}
	id := c.Value
	if m.signer != nil {
		if id, err = m.signer.verify(c.Value); err != nil {
			return New(m.ttl), nil
		}
	}
	s, err := m.store.Load(r.Context(), id)
	if errors.Is(err, ErrNotFound) {
		return New(m.ttl), nil
	}
	if err != nil {
		return nil, err
	}
	return s, nil
}

// Commit persists a changed session and sets the cookie. It must run before
// the response headers are written.
func (m *Manager) Commit(ctx context.Context, w http.ResponseWriter, prevID string, s *Session) error {
	if s == nil || !s.IsDirty() {
		return nil
	}
	if prevID != "" && prevID != s.ID {
		if err := m.store.Delete(ctx, prevID); err != nil {
			return err
		}
	}
	if err := m.store.Save(ctx, s); err != nil {
		return err
	}
	s.markClean()

	value := s.ID
	if m.signer != nil {
		value = m.signer.sign(value)
	}
	http.SetCookie(w, &http.Cookie{
		Name:     m.cookie,
		Value:    value,
		Path:     "/",
		Expires:  s.ExpiresAt,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}
