package internal

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/dmitrymomot/dispatch/pkg/config"
	"github.com/dmitrymomot/dispatch/pkg/container"
	"github.com/dmitrymomot/dispatch/pkg/health"
	"github.com/dmitrymomot/dispatch/pkg/metrics"
	"github.com/dmitrymomot/dispatch/pkg/router"
	"github.com/dmitrymomot/dispatch/pkg/session"
)

// Option configures the application.
type Option func(*App)

// WithConfig merges a parsed configuration file. Options are applied in
// order, so routes and filters from later options follow earlier ones.
func WithConfig(f *config.File) Option {
	return func(a *App) {
		a.file.Merge(f)
	}
}

// WithConfigFile loads and merges the YAML configuration at path.
func WithConfigFile(path string) Option {
	return func(a *App) {
		f, err := config.Load(path)
		if err != nil {
			a.errs = append(a.errs, err)
			return
		}
		a.file.Merge(f)
	}
}

// WithRoute appends a route definition.
func WithRoute(name string, def router.DefinitionConfig) Option {
	return func(a *App) {
		a.file.Merge(&config.File{Routes: config.Ordered[router.DefinitionConfig]{{Name: name, Value: def}}})
	}
}

// WithFilter appends a global filter.
func WithFilter(id string, f config.Filter) Option {
	return func(a *App) {
		a.file.Merge(&config.File{Filters: config.Ordered[config.Filter]{{Name: id, Value: f}}})
	}
}

// WithModule configures a module.
func WithModule(name string, m config.Module) Option {
	return func(a *App) {
		a.file.Merge(&config.File{Modules: map[string]config.Module{name: m}})
	}
}

// WithUnknownAction sets where requests go when the resolved action cannot
// be loaded.
func WithUnknownAction(module, action string) Option {
	return func(a *App) {
		a.file.Router.Unknown = router.Forward{Module: module, Action: action}
	}
}

// WithSubdomainModules enables taking the module from the leftmost host
// label when the route does not bind one.
func WithSubdomainModules() Option {
	return func(a *App) {
		a.file.Router.SubdomainModules = true
	}
}

// WithTrustForwarded makes access rules use X-Forwarded-For and X-Real-IP.
// Enable only behind a proxy that sets them.
func WithTrustForwarded() Option {
	return func(a *App) {
		a.file.Router.TrustForwarded = true
	}
}

// WithAction registers an action class. subpath is "" for the module root.
func WithAction(module, subpath, class string, factory ActionFactory) Option {
	return func(a *App) {
		if err := a.actions.Register(module, subpath, class, factory); err != nil {
			a.errs = append(a.errs, err)
		}
	}
}

// WithFilterClass registers a filter class usable from configuration.
func WithFilterClass(class string, factory FilterFactory) Option {
	return func(a *App) {
		if err := a.filterClasses.Register(class, factory); err != nil {
			a.errs = append(a.errs, err)
		}
	}
}

// WithComponentClass registers a component class usable from configuration.
func WithComponentClass(name string, class container.Class) Option {
	return func(a *App) {
		if err := a.classes.Register(name, class); err != nil {
			a.errs = append(a.errs, err)
		}
	}
}

// WithComponent declares a component.
func WithComponent(name string, d container.Descriptor) Option {
	return func(a *App) {
		a.file.Merge(&config.File{Components: map[string]container.Descriptor{name: d}})
	}
}

// WithInstance provides a ready-made component shared by all requests.
// It takes precedence over a declared component of the same name.
func WithInstance(name string, v any) Option {
	return func(a *App) {
		a.live[name] = v
	}
}

// WithView sets the view actions render with.
func WithView(v View) Option {
	return WithInstance(ViewComponent, v)
}

// WithSessionStore sets the session store. Defaults to an in-memory store.
func WithSessionStore(store session.Store, opts ...session.ManagerOption) Option {
	return func(a *App) {
		a.sessionStore = store
		a.sessionOpts = append(a.sessionOpts, opts...)
	}
}

// WithLogger sets the application logger. Defaults to a no-op logger.
func WithLogger(l *slog.Logger) Option {
	return func(a *App) {
		if l != nil {
			a.logger = l
		}
	}
}

// WithMetrics enables Prometheus instrumentation and the /metrics endpoint.
func WithMetrics(m *metrics.Metrics) Option {
	return func(a *App) {
		a.metrics = m
	}
}

// WithReadinessCheck adds a named check to the readiness endpoint.
func WithReadinessCheck(name string, fn health.CheckFunc) Option {
	return func(a *App) {
		if fn != nil {
			a.checks[name] = fn
		}
	}
}

// WithErrorHandler sets the renderer for errors that end dispatch.
func WithErrorHandler(h ErrorHandler) Option {
	return func(a *App) {
		a.errorHandler = h
	}
}

// WithRouteResolvedHook adds a hook run after route resolution.
func WithRouteResolvedHook(h RouteResolvedHook) Option {
	return func(a *App) {
		a.onResolved = append(a.onResolved, h)
	}
}

// WithBeforeOutputHook adds a hook that may rewrite the body before flush.
func WithBeforeOutputHook(h BeforeOutputHook) Option {
	return func(a *App) {
		a.beforeOutput = append(a.beforeOutput, h)
	}
}

// WithCompleteHook adds a hook run after the response is sent.
func WithCompleteHook(h CompleteHook) Option {
	return func(a *App) {
		a.onComplete = append(a.onComplete, h)
	}
}

// WithMiddleware adds net/http middleware in front of every endpoint.
func WithMiddleware(mw ...func(http.Handler) http.Handler) Option {
	return func(a *App) {
		a.middlewares = append(a.middlewares, mw...)
	}
}

// WithShutdownHook registers a cleanup function run after the server stops.
func WithShutdownHook(fn func(context.Context) error) Option {
	return func(a *App) {
		if fn != nil {
			a.shutdownHooks = append(a.shutdownHooks, fn)
		}
	}
}

// WithShutdownTimeout bounds graceful shutdown. Defaults to 30s.
func WithShutdownTimeout(d time.Duration) Option {
	return func(a *App) {
		if d > 0 {
			a.shutdownWait = d
		}
	}
}
