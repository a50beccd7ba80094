package filters

import (
	"net/http"
	"net/netip"
	"strconv"
	"time"

	"github.com/dmitrymomot/dispatch/internal"
	"github.com/dmitrymomot/dispatch/pkg/hostinfo"
	"github.com/dmitrymomot/dispatch/pkg/router"
)

// Maintenance answers 503 to everyone outside the allowed networks while
// enabled.
type Maintenance struct {
	allow          []netip.Prefix
	retryAfter     time.Duration
	enabled        bool
	trustForwarded bool
}

// MaintenanceOption configures Maintenance.
type MaintenanceOption func(*Maintenance)

// WithMaintenanceAllow lets clients from prefixes through.
func WithMaintenanceAllow(prefixes ...netip.Prefix) MaintenanceOption {
	return func(m *Maintenance) {
		m.allow = append(m.allow, prefixes...)
	}
}

// WithRetryAfter sets the Retry-After header on 503 responses.
func WithRetryAfter(d time.Duration) MaintenanceOption {
	return func(m *Maintenance) {
		m.retryAfter = d
	}
}

// WithMaintenanceTrustForwarded reads the client address from
// X-Forwarded-For.
func WithMaintenanceTrustForwarded() MaintenanceOption {
	return func(m *Maintenance) {
		m.trustForwarded = true
	}
}

// NewMaintenance returns a maintenance filter.
func NewMaintenance(enabled bool, opts ...MaintenanceOption) *Maintenance {
	m := &Maintenance{enabled: enabled}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// MaintenanceFactory builds Maintenance from enabled, allow, retry_after and
// trust_forwarded.
func MaintenanceFactory(a map[string]any) (internal.Filter, error) {
	at := attrs(a)
	enabled, err := at.bool("enabled", true)
	if err != nil {
		return nil, err
	}
	networks, err := at.strings("allow")
	if err != nil {
		return nil, err
	}
	allow, err := router.ParsePrefixes(networks)
	if err != nil {
		return nil, err
	}
	retry, err := at.duration("retry_after", 0)
	if err != nil {
		return nil, err
	}
	trust, err := at.bool("trust_forwarded", false)
	if err != nil {
		return nil, err
	}
	opts := []MaintenanceOption{WithMaintenanceAllow(allow...), WithRetryAfter(retry)}
	if trust {
		opts = append(opts, WithMaintenanceTrustForwarded())
	}
	return NewMaintenance(enabled, opts...), nil
}

// DoFilter implements internal.Filter.
func (f *Maintenance) DoFilter(c internal.Context, chain *internal.FilterChain) error {
	if !f.enabled || f.allowed(c.Request().HTTP()) {
		return chain.Proceed(c)
	}
	if f.retryAfter > 0 {
		c.Response().Header().Set("Retry-After", strconv.Itoa(int(f.retryAfter.Seconds())))
	}
	return c.Response().SendError(http.StatusServiceUnavailable)
}

func (f *Maintenance) allowed(r *http.Request) bool {
	addr := hostinfo.ClientAddr(r, f.trustForwarded)
	if !addr.IsValid() {
		return false
	}
	for _, p := range f.allow {
		if p.Contains(addr) {
			return true
		}
	}
	return false
}
