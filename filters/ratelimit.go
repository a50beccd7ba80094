package filters

import (
	"fmt"
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/dmitrymomot/dispatch/internal"
	"github.com/dmitrymomot/dispatch/pkg/hostinfo"
)

// Rate limit keys.
const (
	LimitByIP   = "ip"
	LimitByUser = "user"
)

// DefaultLimiterIdle is how long an unused per-client limiter is kept.
const DefaultLimiterIdle = 10 * time.Minute

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimit throttles requests per client with a token bucket.
type RateLimit struct {
	visitors       map[string]*visitor
	now            func() time.Time
	lastSweep      time.Time
	by             string
	idle           time.Duration
	limit          rate.Limit
	burst          int
	mu             sync.Mutex
	trustForwarded bool
}

// RateLimitOption configures RateLimit.
type RateLimitOption func(*RateLimit)

// WithLimitBy selects the client key, LimitByIP or LimitByUser. Anonymous
// users fall back to their address.
func WithLimitBy(by string) RateLimitOption {
	return func(r *RateLimit) {
		r.by = by
	}
}

// WithLimiterIdle sets how long idle limiters are kept.
func WithLimiterIdle(d time.Duration) RateLimitOption {
	return func(r *RateLimit) {
		if d > 0 {
			r.idle = d
		}
	}
}

// WithLimitTrustForwarded reads the client address from X-Forwarded-For.
func WithLimitTrustForwarded() RateLimitOption {
	return func(r *RateLimit) {
		r.trustForwarded = true
	}
}

// WithLimitClock sets the time source.
func WithLimitClock(now func() time.Time) RateLimitOption {
	return func(r *RateLimit) {
		if now != nil {
			r.now = now
		}
	}
}

// NewRateLimit allows perSecond requests per client with the given burst.
func NewRateLimit(perSecond float64, burst int, opts ...RateLimitOption) *RateLimit {
	r := &RateLimit{
		visitors: make(map[string]*visitor),
		limit:    rate.Limit(perSecond),
		burst:    burst,
		by:       LimitByIP,
		idle:     DefaultLimiterIdle,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	r.lastSweep = r.now()
	return r
}

// RateLimitFactory builds RateLimit from rate, burst, by, idle and
// trust_forwarded.
func RateLimitFactory(a map[string]any) (internal.Filter, error) {
	at := attrs(a)
	perSecond, err := at.float("rate", 10)
	if err != nil {
		return nil, err
	}
	if perSecond <= 0 {
		return nil, fmt.Errorf("%w: rate must be positive", ErrInvalidAttribute)
	}
	burst, err := at.int("burst", int(math.Ceil(perSecond)))
	if err != nil {
		return nil, err
	}
	by, err := at.string("by", LimitByIP)
	if err != nil {
		return nil, err
	}
	if by != LimitByIP && by != LimitByUser {
		return nil, fmt.Errorf("%w: by must be %q or %q", ErrInvalidAttribute, LimitByIP, LimitByUser)
	}
	idle, err := at.duration("idle", DefaultLimiterIdle)
	if err != nil {
		return nil, err
	}
	trust, err := at.bool("trust_forwarded", false)
	if err != nil {
		return nil, err
	}
	opts := []RateLimitOption{WithLimitBy(by), WithLimiterIdle(idle)}
	if trust {
		opts = append(opts, WithLimitTrustForwarded())
	}
	return NewRateLimit(perSecond, burst, opts...), nil
}

// DoFilter implements internal.Filter.
func (f *RateLimit) DoFilter(c internal.Context, chain *internal.FilterChain) error {
	key := f.key(c)
	now := f.now()
	lim := f.limiter(key, now)

	res := lim.ReserveN(now, 1)
	if !res.OK() {
		return internal.NewHTTPError(http.StatusTooManyRequests, "")
	}
	if delay := res.DelayFrom(now); delay > 0 {
		res.CancelAt(now)
		c.Response().Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(delay.Seconds()))))
		c.Logger().WarnContext(c, "rate limit exceeded", "key", key)
		return internal.NewHTTPError(http.StatusTooManyRequests, "")
	}
	return chain.Proceed(c)
}

// Len returns the number of tracked clients.
func (f *RateLimit) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.visitors)
}

var userKey = internal.NewExtractor(internal.FromUser())

func (f *RateLimit) key(c internal.Context) string {
	if f.by == LimitByUser {
		if id, ok := userKey.Extract(c); ok {
			return "user:" + id
		}
	}
	return "ip:" + hostinfo.ClientAddr(c.Request().HTTP(), f.trustForwarded).String()
}

func (f *RateLimit) limiter(key string, now time.Time) *rate.Limiter {
	f.mu.Lock()
	defer f.mu.Unlock()

	if now.Sub(f.lastSweep) >= f.idle {
		for k, v := range f.visitors {
			if now.Sub(v.lastSeen) >= f.idle {
				delete(f.visitors, k)
			}
		}
		f.lastSweep = now
	}

	v, ok := f.visitors[key]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(f.limit, f.burst)}
		f.visitors[key] = v
	}
	v.lastSeen = now
	return v.limiter
}
