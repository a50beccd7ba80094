package internal

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/dispatch/pkg/config"
	"github.com/dmitrymomot/dispatch/pkg/container"
	"github.com/dmitrymomot/dispatch/pkg/health"
	"github.com/dmitrymomot/dispatch/pkg/logger"
	"github.com/dmitrymomot/dispatch/pkg/metrics"
	"github.com/dmitrymomot/dispatch/pkg/router"
	"github.com/dmitrymomot/dispatch/pkg/session"
)

// Health and metrics endpoints.
const (
	LivenessPath  = "/health/live"
	ReadinessPath = "/health/ready"
	MetricsPath   = "/metrics"
)

// App wires configuration, registries and the front controller into an
// http.Handler. It is immutable after New.
type App struct {
	router        chi.Router
	controller    *FrontController
	file          *config.File
	actions       *ActionRegistry
	filterClasses *FilterRegistry
	classes       *container.Registry
	live          map[string]any
	sessionStore  session.Store
	logger        *slog.Logger
	metrics       *metrics.Metrics
	errorHandler  ErrorHandler
	checks        health.Checks
	sessionOpts   []session.ManagerOption
	onResolved    []RouteResolvedHook
	beforeOutput  []BeforeOutputHook
	onComplete    []CompleteHook
	middlewares   []func(http.Handler) http.Handler
	shutdownHooks []func(context.Context) error
	errs          []error
	shutdownWait  time.Duration
}

// New builds an application. Configuration problems (unknown filter
// classes, invalid route definitions, failed registrations) are reported
// here rather than on the first request.
//
//	app, err := dispatch.New(
//		dispatch.WithConfigFile("dispatch.yaml"),
//		dispatch.WithAction("shop", "", "CheckoutAction", NewCheckout),
//		dispatch.WithView(views),
//	)
func New(opts ...Option) (*App, error) {
	a := &App{
		router:        chi.NewRouter(),
		file:          &config.File{},
		actions:       NewActionRegistry(),
		filterClasses: NewFilterRegistry(),
		classes:       container.NewRegistry(),
		live:          make(map[string]any),
		checks:        make(health.Checks),
		logger:        logger.NewNope(),
		shutdownWait:  defaultShutdownTimeout,
	}
	for _, opt := range opts {
		opt(a)
	}
	if len(a.errs) > 0 {
		return nil, errors.Join(a.errs...)
	}
	if err := a.file.Validate(); err != nil {
		return nil, err
	}

	fc, err := a.buildController()
	if err != nil {
		return nil, err
	}
	a.controller = fc
	a.setupRoutes()
	return a, nil
}

func (a *App) buildController() (*FrontController, error) {
	table, err := a.file.Table()
	if err != nil {
		return nil, err
	}

	modules, err := a.buildModules()
	if err != nil {
		return nil, err
	}

	store := a.sessionStore
	if store == nil {
		store = session.NewMemoryStore()
	}
	sessions := session.NewManager(store, a.sessionOpts...)
	if err := registerCoreClasses(a.classes, sessions); err != nil {
		return nil, err
	}

	global, err := filterDescriptors(a.file.Filters)
	if err != nil {
		return nil, err
	}
	filters := NewFilterManager(a.filterClasses, modules, global, a.metrics, a.logger)
	if err := filters.Validate(); err != nil {
		return nil, err
	}

	return &FrontController{
		resolver: router.NewResolver(table, modules,
			router.WithSubdomainModules(a.file.Router.SubdomainModules),
		),
		loader:         NewLoader(a.actions, modules),
		filters:        filters,
		classes:        a.classes,
		components:     coreDescriptors(a.file.Components),
		live:           a.live,
		sessions:       sessions,
		logger:         a.logger,
		metrics:        a.metrics,
		errorHandler:   a.errorHandler,
		onResolved:     a.onResolved,
		beforeOutput:   a.beforeOutput,
		onComplete:     a.onComplete,
		unknown:        router.Forward{Module: a.file.Router.Unknown.Module, Action: router.PascalCase(a.file.Router.Unknown.Action)},
		trustForwarded: a.file.Router.TrustForwarded,
	}, nil
}

// buildModules merges configured modules with every module that registered
// actions.
func (a *App) buildModules() (*Modules, error) {
	seen := make(map[string]bool)
	var mods []*Module
	for name, mc := range a.file.Modules {
		filters, err := filterDescriptors(mc.Filters)
		if err != nil {
			return nil, err
		}
		behaviors := make(map[string]Behavior, len(mc.Behaviors))
		for key, b := range mc.Behaviors {
			behaviors[key] = Behavior{
				Filters:  b.Filters,
				Roles:    b.Roles,
				Login:    b.Login,
				Validate: b.Validate,
			}
		}
		mods = append(mods, &Module{
			Name:          name,
			DefaultAction: router.PascalCase(mc.DefaultAction),
			Allow:         mc.Packages.Allow,
			Deny:          mc.Packages.Deny,
			Filters:       filters,
			Behaviors:     behaviors,
		})
		seen[name] = true
	}
	for _, name := range a.actions.Modules() {
		if !seen[name] {
			mods = append(mods, &Module{Name: name})
		}
	}
	return NewModules(mods...), nil
}

func filterDescriptors(in config.Ordered[config.Filter]) ([]FilterDescriptor, error) {
	out := make([]FilterDescriptor, 0, len(in))
	for _, e := range in {
		if e.Value.Class == "" {
			return nil, errors.Join(config.ErrInvalidConfig, errors.New("filter "+e.Name+" has no class"))
		}
		out = append(out, FilterDescriptor{
			ID:       e.Name,
			Class:    e.Value.Class,
			Enable:   e.Value.Enabled(),
			Bypass:   e.Value.Bypassed(),
			Packages: e.Value.Packages,
			Attrs:    e.Value.Attrs,
		})
	}
	return out, nil
}

func (a *App) setupRoutes() {
	a.router.Use(a.middlewares...)

	a.router.Get(LivenessPath, health.Live())
	a.router.Get(ReadinessPath, health.Ready(a.checks, health.WithLogger(a.logger)))
	if a.metrics != nil {
		a.router.Handle(MetricsPath, a.metrics.Handler())
	}

	a.router.Handle("/*", a.controller)
}

// ServeHTTP implements http.Handler.
func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.router.ServeHTTP(w, r)
}

// Router returns the underlying chi router.
func (a *App) Router() chi.Router {
	return a.router
}

// Controller returns the front controller.
func (a *App) Controller() *FrontController {
	return a.controller
}

// Logger returns the application logger.
func (a *App) Logger() *slog.Logger {
	return a.logger
}
