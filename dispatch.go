package dispatch

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/dmitrymomot/dispatch/filters"
	"github.com/dmitrymomot/dispatch/internal"
	"github.com/dmitrymomot/dispatch/pkg/config"
	"github.com/dmitrymomot/dispatch/pkg/container"
	"github.com/dmitrymomot/dispatch/pkg/health"
	"github.com/dmitrymomot/dispatch/pkg/metrics"
	"github.com/dmitrymomot/dispatch/pkg/router"
	"github.com/dmitrymomot/dispatch/pkg/session"
)

// Type aliases - public API
type (
	// App serves the configured modules over HTTP.
	App = internal.App

	// Option configures the application.
	Option = internal.Option

	// Context is the request-scoped state given to filters, actions and views.
	Context = internal.Context

	// Request wraps the incoming HTTP request.
	Request = internal.Request

	// Response buffers the output of an action.
	Response = internal.Response

	// User is the identity of the current request.
	User = internal.User

	// Action handles one dispatched request and names the view to render.
	Action = internal.Action

	// ActionFunc adapts a function to Action.
	ActionFunc = internal.ActionFunc

	// ActionFactory creates a fresh Action per dispatch.
	ActionFactory = internal.ActionFactory

	// Validator is implemented by actions that validate their input.
	Validator = internal.Validator

	// ActionEntry is a loaded action on the route stack.
	ActionEntry = internal.ActionEntry

	// Filter intercepts dispatch of an action.
	Filter = internal.Filter

	// FilterFunc adapts a function to Filter.
	FilterFunc = internal.FilterFunc

	// FilterFactory builds a Filter from configured attributes.
	FilterFactory = internal.FilterFactory

	// FilterChain continues dispatch to the next filter.
	FilterChain = internal.FilterChain

	// View renders named templates.
	View = internal.View

	// ViewFunc adapts a function to View.
	ViewFunc = internal.ViewFunc

	// TemplView renders templ components.
	TemplView = internal.TemplView

	// Extractor reads a value from the first source that has one.
	Extractor = internal.Extractor

	// ExtractorSource reads one value from the request.
	ExtractorSource = internal.ExtractorSource

	// State is the dispatch lifecycle state of a request.
	State = internal.State

	// ErrorHandler renders errors that end dispatch.
	ErrorHandler = internal.ErrorHandler

	// RouteResolvedHook runs after route resolution.
	RouteResolvedHook = internal.RouteResolvedHook

	// BeforeOutputHook may rewrite the response body before it is sent.
	BeforeOutputHook = internal.BeforeOutputHook

	// CompleteHook runs after the response is sent.
	CompleteHook = internal.CompleteHook

	// HTTPError carries the status code shown to the client.
	HTTPError = internal.HTTPError

	// SecurityError is a 401 or 403 raised by security filters.
	SecurityError = internal.SecurityError

	// Route is a resolved route.
	Route = router.Route

	// RouteDefinition configures a route.
	RouteDefinition = router.DefinitionConfig

	// FilterConfig configures a filter instance.
	FilterConfig = config.Filter

	// ModuleConfig configures a module.
	ModuleConfig = config.Module

	// ComponentDescriptor configures a container component.
	ComponentDescriptor = container.Descriptor

	// ComponentClass constructs container components.
	ComponentClass = container.Class

	// Session is the user session.
	Session = session.Session

	// SessionStore persists sessions.
	SessionStore = session.Store
)

// Lifecycle states.
const (
	StateUninitialized = internal.StateUninitialized
	StateSessionReady  = internal.StateSessionReady
	StateRequestReady  = internal.StateRequestReady
	StateRouteResolved = internal.StateRouteResolved
	StateDispatching   = internal.StateDispatching
	StateFlushed       = internal.StateFlushed
	StateTerminated    = internal.StateTerminated
)

// Errors
var (
	ErrActionNotFound       = internal.ErrActionNotFound
	ErrPackageDenied        = internal.ErrPackageDenied
	ErrUnknownFilterClass   = internal.ErrUnknownFilterClass
	ErrDuplicateFilterClass = internal.ErrDuplicateFilterClass
	ErrInvalidActionClass   = internal.ErrInvalidActionClass
	ErrViewNotConfigured    = internal.ErrViewNotConfigured
	ErrViewNotFound         = internal.ErrViewNotFound
	ErrNoRoute              = router.ErrNoRoute
	ErrStackOverflow        = router.ErrStackOverflow
	ErrForwardConfig        = router.ErrForwardConfig
)

// New creates an application. The built-in filter classes of package
// filters are registered before opts, so a custom class cannot reuse their
// names.
//
//	app, err := dispatch.New(
//		dispatch.WithConfigFile("dispatch.yaml"),
//		dispatch.WithAction("shop", "", "CheckoutAction", NewCheckout),
//	)
//	if err != nil {
//		return err
//	}
//	return app.Run(ctx, ":8080")
func New(opts ...Option) (*App, error) {
	builtin := make([]Option, 0, len(filters.Classes())+len(opts))
	for class, factory := range filters.Classes() {
		builtin = append(builtin, internal.WithFilterClass(class, factory))
	}
	return internal.New(append(builtin, opts...)...)
}

// StateOf returns the lifecycle state of c.
func StateOf(c Context) State {
	return internal.StateOf(c)
}

// StatusOf maps a dispatch error to the HTTP status shown to the client.
func StatusOf(err error) int {
	return internal.StatusOf(err)
}

// Component resolves a named container component as T.
func Component[T any](c Context, name string) (T, error) {
	return internal.Component[T](c, name)
}

// Param returns the request parameter name converted to T.
func Param[T ~string | ~int | ~int64 | ~float64 | ~bool](c Context, name string) T {
	return internal.Param[T](c, name)
}

// ParamDefault returns the request parameter name converted to T, or
// defaultValue.
func ParamDefault[T ~string | ~int | ~int64 | ~float64 | ~bool](c Context, name string, defaultValue T) T {
	return internal.ParamDefault(c, name, defaultValue)
}

// Value returns the request-scoped value stored under key as T.
func Value[T any](c Context, key string) T {
	return internal.Value[T](c, key)
}

// NewExtractor creates an Extractor trying sources in order.
func NewExtractor(sources ...ExtractorSource) Extractor {
	return internal.NewExtractor(sources...)
}

// Extractor sources
var (
	FromHeader      = internal.FromHeader
	FromParam       = internal.FromParam
	FromCookie      = internal.FromCookie
	FromSession     = internal.FromSession
	FromUser        = internal.FromUser
	FromBearerToken = internal.FromBearerToken
)

// NewHTTPError creates an HTTPError. An empty message defaults to the
// status text.
func NewHTTPError(code int, message string) *HTTPError {
	return internal.NewHTTPError(code, message)
}

// Unauthorized returns a 401 SecurityError.
func Unauthorized(reason string) *SecurityError {
	return internal.Unauthorized(reason)
}

// Forbidden returns a 403 SecurityError.
func Forbidden(reason string, roles ...string) *SecurityError {
	return internal.Forbidden(reason, roles...)
}

// NewTemplView creates an empty templ view.
func NewTemplView() *TemplView {
	return internal.NewTemplView()
}

// PackageName returns the package of module at subpath, "module:/subpath".
func PackageName(module, subpath string) string {
	return internal.PackageName(module, subpath)
}

// Configuration

// WithConfig merges a parsed configuration file.
func WithConfig(f *config.File) Option {
	return internal.WithConfig(f)
}

// WithConfigFile loads and merges the YAML file at path.
func WithConfigFile(path string) Option {
	return internal.WithConfigFile(path)
}

// WithRoute adds or replaces a named route. Routes match in declaration
// order.
func WithRoute(name string, def RouteDefinition) Option {
	return internal.WithRoute(name, def)
}

// WithFilter adds or replaces a global filter by id.
func WithFilter(id string, f FilterConfig) Option {
	return internal.WithFilter(id, f)
}

// WithModule adds or replaces a module configuration.
func WithModule(name string, m ModuleConfig) Option {
	return internal.WithModule(name, m)
}

// WithUnknownAction sets the destination for missing or denied actions.
func WithUnknownAction(module, action string) Option {
	return internal.WithUnknownAction(module, action)
}

// WithSubdomainModules selects the module from the leftmost host label.
func WithSubdomainModules() Option {
	return internal.WithSubdomainModules()
}

// WithTrustForwarded trusts X-Forwarded-For when checking route access.
func WithTrustForwarded() Option {
	return internal.WithTrustForwarded()
}

// Registries

// WithAction registers an action class of module. subpath is the package
// below the module root, "" for the root package.
func WithAction(module, subpath, class string, factory ActionFactory) Option {
	return internal.WithAction(module, subpath, class, factory)
}

// WithFilterClass registers a filter class usable from configuration.
func WithFilterClass(class string, factory FilterFactory) Option {
	return internal.WithFilterClass(class, factory)
}

// WithComponentClass registers a container class.
func WithComponentClass(name string, class ComponentClass) Option {
	return internal.WithComponentClass(name, class)
}

// WithComponent adds or replaces a container component descriptor.
func WithComponent(name string, d ComponentDescriptor) Option {
	return internal.WithComponent(name, d)
}

// WithInstance sets a prebuilt component on every request container.
func WithInstance(name string, v any) Option {
	return internal.WithInstance(name, v)
}

// WithView sets the view component.
func WithView(v View) Option {
	return internal.WithView(v)
}

// WithSessionStore sets the session store. Defaults to an in-memory store.
func WithSessionStore(store SessionStore, opts ...session.ManagerOption) Option {
	return internal.WithSessionStore(store, opts...)
}

// Observability

// WithLogger sets the application logger.
func WithLogger(l *slog.Logger) Option {
	return internal.WithLogger(l)
}

// WithMetrics enables Prometheus instrumentation and /metrics.
func WithMetrics(m *metrics.Metrics) Option {
	return internal.WithMetrics(m)
}

// WithReadinessCheck adds a named readiness check.
//
//	dispatch.WithReadinessCheck("redis", redis.Check(client))
func WithReadinessCheck(name string, fn health.CheckFunc) Option {
	return internal.WithReadinessCheck(name, fn)
}

// Hooks

// WithErrorHandler sets the renderer for errors that end dispatch.
func WithErrorHandler(h ErrorHandler) Option {
	return internal.WithErrorHandler(h)
}

// WithRouteResolvedHook adds a hook run after route resolution.
func WithRouteResolvedHook(h RouteResolvedHook) Option {
	return internal.WithRouteResolvedHook(h)
}

// WithBeforeOutputHook adds a hook that may rewrite the body before flush.
func WithBeforeOutputHook(h BeforeOutputHook) Option {
	return internal.WithBeforeOutputHook(h)
}

// WithCompleteHook adds a hook run after the response is sent.
func WithCompleteHook(h CompleteHook) Option {
	return internal.WithCompleteHook(h)
}

// Server

// WithMiddleware adds net/http middleware in front of every endpoint.
func WithMiddleware(mw ...func(http.Handler) http.Handler) Option {
	return internal.WithMiddleware(mw...)
}

// WithShutdownHook registers a cleanup function run after the server stops.
func WithShutdownHook(fn func(context.Context) error) Option {
	return internal.WithShutdownHook(fn)
}

// WithShutdownTimeout bounds graceful shutdown.
func WithShutdownTimeout(d time.Duration) Option {
	return internal.WithShutdownTimeout(d)
}
