package health

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

const (
	StatusHealthy   = "healthy"
	StatusUnhealthy = "unhealthy"
)

// CheckFunc reports a dependency problem as an error.
type CheckFunc func(ctx context.Context) error

// Checks maps check names to functions.
type Checks map[string]CheckFunc

// Report is the JSON body of a probe response.
type Report struct {
	Checks map[string]string `json:"checks,omitempty"`
	Status string            `json:"status"`
}

// Option configures Ready.
type Option func(*probe)

type probe struct {
	logger  *slog.Logger
	timeout time.Duration
}

// WithTimeout bounds the total time spent running checks. Default: 5s.
func WithTimeout(d time.Duration) Option {
	return func(p *probe) {
		if d > 0 {
			p.timeout = d
		}
	}
}

// WithLogger logs failed checks at warn level.
func WithLogger(l *slog.Logger) Option {
	return func(p *probe) {
		if l != nil {
			p.logger = l
		}
	}
}

// Live always answers 200.
func Live() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		respond(w, r, http.StatusOK, Report{Status: StatusHealthy})
	}
}

// Ready answers 200 when every check passes and 503 otherwise.
func Ready(checks Checks, opts ...Option) http.HandlerFunc {
	p := &probe{timeout: 5 * time.Second, logger: slog.New(slog.DiscardHandler)}
	for _, opt := range opts {
		opt(p)
	}

	return func(w http.ResponseWriter, r *http.Request) {
		report := p.run(r.Context(), checks)
		status := http.StatusOK
		if report.Status != StatusHealthy {
			status = http.StatusServiceUnavailable
		}
		respond(w, r, status, report)
	}
}

func (p *probe) run(ctx context.Context, checks Checks) Report {
	report := Report{Status: StatusHealthy}
	if len(checks) == 0 {
		return report
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	var mu sync.Mutex
	report.Checks = make(map[string]string, len(checks))

	// Checks never return errors to the group so one failure does not cancel
	// the others.
	var g errgroup.Group
	for name, check := range checks {
		g.Go(func() error {
			result := StatusHealthy
			if err := check(ctx); err != nil {
				result = err.Error()
				p.logger.WarnContext(ctx, "health check failed",
					slog.String("check", name),
					slog.String("error", err.Error()),
				)
			}
			mu.Lock()
			report.Checks[name] = result
			if result != StatusHealthy {
				report.Status = StatusUnhealthy
			}
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()
	return report
}

func respond(w http.ResponseWriter, r *http.Request, status int, report Report) {
	if r.URL.Query().Get("format") == "json" || strings.Contains(r.Header.Get("Accept"), "application/json") {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(report)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(http.StatusText(status)))
}
