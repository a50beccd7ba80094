package cache

import (
	"context"
	"net/http"
	"time"
)

// DefaultTTL applies when Set is called with a zero TTL.
const DefaultTTL = time.Minute

// Page is a cached response.
type Page struct {
	StoredAt time.Time   `json:"stored_at"`
	Header   http.Header `json:"header,omitempty"`
	Body     []byte      `json:"body"`
	Status   int         `json:"status"`
}

// Age returns how long ago the page was stored.
func (p *Page) Age(now time.Time) time.Duration {
	if p.StoredAt.IsZero() {
		return 0
	}
	return now.Sub(p.StoredAt)
}

// Store persists pages by key.
type Store interface {
	// Get returns ErrNotFound when the key is missing or expired.
	Get(ctx context.Context, key string) (*Page, error)
	Set(ctx context.Context, key string, page *Page, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

func resolveTTL(ttl, def time.Duration) time.Duration {
	if ttl > 0 {
		return ttl
	}
	if def > 0 {
		return def
	}
	return DefaultTTL
}
