package filters

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrymomot/dispatch/internal"
	"github.com/dmitrymomot/dispatch/pkg/cache"
)

// CacheHeader reports whether a response came from the page cache.
const CacheHeader = "X-Cache"

// Cache serves repeated GET requests from a page store.
//
// Only complete 200 responses with a body are stored, together with their
// Content-Type. Requests from logged-in users skip the cache unless the
// filter varies by user.
type Cache struct {
	store    cache.Store
	now      func() time.Time
	ttl      time.Duration
	varyUser bool
}

// CacheOption configures Cache.
type CacheOption func(*Cache)

// WithCacheVaryUser keys pages by user ID so logged-in users get their own
// copies.
func WithCacheVaryUser() CacheOption {
	return func(f *Cache) {
		f.varyUser = true
	}
}

// WithCacheClock sets the time source used for page timestamps.
func WithCacheClock(now func() time.Time) CacheOption {
	return func(f *Cache) {
		if now != nil {
			f.now = now
		}
	}
}

// NewCache returns a page cache filter backed by store. A zero ttl uses the
// store default.
func NewCache(store cache.Store, ttl time.Duration, opts ...CacheOption) *Cache {
	f := &Cache{store: store, ttl: ttl, now: time.Now}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// CacheFactory builds Cache over an in-memory store from ttl, max_entries and
// vary_user.
func CacheFactory(a map[string]any) (internal.Filter, error) {
	at := attrs(a)
	maxEntries, err := at.int("max_entries", 0)
	if err != nil {
		return nil, err
	}
	return newCacheFromAttrs(cache.NewMemory(cache.WithMaxEntries(maxEntries)), at)
}

// NewCacheFactory returns a factory that builds Cache over a shared store,
// reading ttl and vary_user.
//
//	app := dispatch.New(
//		dispatch.WithFilterClass("pagecache", filters.NewCacheFactory(cache.NewRedis(client, "pages"))),
//	)
func NewCacheFactory(store cache.Store) internal.FilterFactory {
	return func(a map[string]any) (internal.Filter, error) {
		return newCacheFromAttrs(store, attrs(a))
	}
}

func newCacheFromAttrs(store cache.Store, at attrs) (internal.Filter, error) {
	ttl, err := at.duration("ttl", 0)
	if err != nil {
		return nil, err
	}
	vary, err := at.bool("vary_user", false)
	if err != nil {
		return nil, err
	}
	var opts []CacheOption
	if vary {
		opts = append(opts, WithCacheVaryUser())
	}
	return NewCache(store, ttl, opts...), nil
}

// DoFilter implements internal.Filter.
func (f *Cache) DoFilter(c internal.Context, chain *internal.FilterChain) error {
	key, ok := f.key(c)
	if !ok {
		return chain.Proceed(c)
	}

	page, err := f.store.Get(c, key)
	switch {
	case err == nil:
		resp := c.Response()
		if ct := page.Header.Get("Content-Type"); ct != "" {
			resp.Header().Set("Content-Type", ct)
		}
		resp.Header().Set(CacheHeader, "HIT")
		resp.SetStatus(page.Status)
		resp.SetBody(page.Body)
		return nil
	case !errors.Is(err, cache.ErrNotFound):
		c.Logger().WarnContext(c, "page cache read failed", slog.String("key", key), slog.Any("error", err))
	}

	resp := c.Response()
	resp.Header().Set(CacheHeader, "MISS")
	resp.OnBeforeWrite(func() {
		f.save(c, key)
	})
	return chain.Proceed(c)
}

// save stores the response being committed. Error pages and forwarded
// requests reach here too; only direct 200 responses with a body are kept.
func (f *Cache) save(c internal.Context, key string) {
	resp := c.Response()
	if resp.Status() != http.StatusOK || len(resp.Body()) == 0 {
		return
	}
	if route := c.Route(); route == nil || route.Stack().Size() > 1 {
		return
	}

	page := &cache.Page{
		StoredAt: f.now(),
		Status:   resp.Status(),
		Body:     append([]byte(nil), resp.Body()...),
	}
	// The writer has not sniffed the body yet when this hook runs.
	ct := resp.Header().Get("Content-Type")
	if ct == "" {
		ct = http.DetectContentType(page.Body)
	}
	page.Header = http.Header{"Content-Type": {ct}}
	if err := f.store.Set(c, key, page, f.ttl); err != nil {
		c.Logger().WarnContext(c, "page cache write failed", slog.String("key", key), slog.Any("error", err))
	}
}

func (f *Cache) key(c internal.Context) (string, bool) {
	req := c.Request()
	if req.Method() != http.MethodGet {
		return "", false
	}
	entry := c.Entry()
	if entry == nil {
		return "", false
	}

	var b strings.Builder
	b.WriteString(entry.Module())
	b.WriteByte('|')
	b.WriteString(entry.ActionName())
	b.WriteByte('|')
	b.WriteString(req.URI())

	user := c.User()
	if user != nil && user.IsLogin() {
		if !f.varyUser {
			return "", false
		}
		b.WriteString("|user:")
		b.WriteString(user.ID())
	}
	return b.String(), true
}
