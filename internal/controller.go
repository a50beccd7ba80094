package internal

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/dmitrymomot/dispatch/pkg/container"
	"github.com/dmitrymomot/dispatch/pkg/metrics"
	"github.com/dmitrymomot/dispatch/pkg/router"
	"github.com/dmitrymomot/dispatch/pkg/session"
)

// ErrorHandler renders an error that ended dispatch. The response has been
// reset and carries the translated status; returning an error falls back to
// a plain status page.
type ErrorHandler func(c Context, err error) error

// RouteResolvedHook runs after route resolution, before the first action.
type RouteResolvedHook func(c Context) error

// BeforeOutputHook may rewrite the buffered body before it is flushed.
type BeforeOutputHook func(c Context, body []byte) ([]byte, error)

// CompleteHook runs after the response is sent. err is the error that ended
// dispatch, if any.
type CompleteHook func(c Context, err error)

// FrontController is the single entry point of every dispatched request.
type FrontController struct {
	resolver       *router.Resolver
	loader         *Loader
	filters        *FilterManager
	classes        *container.Registry
	components     map[string]container.Descriptor
	live           map[string]any
	sessions       *session.Manager
	logger         *slog.Logger
	metrics        *metrics.Metrics
	errorHandler   ErrorHandler
	onResolved     []RouteResolvedHook
	beforeOutput   []BeforeOutputHook
	onComplete     []CompleteHook
	unknown        router.Forward
	trustForwarded bool
}

// ServeHTTP dispatches one request.
func (fc *FrontController) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	defer fc.metrics.Begin()()

	c := &requestContext{
		Context:   r.Context(),
		logger:    fc.logger,
		container: container.NewContainer(fc.classes, fc.components),
	}
	c.container.Set(HTTPRequestComponent, r)
	c.container.Set(HTTPResponseComponent, w)
	for name, inst := range fc.live {
		c.container.Set(name, inst)
	}

	if err := fc.initialize(c, w); err != nil {
		fc.logger.ErrorContext(c, "dispatch initialization failed", slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	err := fc.dispatch(c)
	if err != nil {
		fc.handleError(c, err)
	}
	if !c.response.Committed() {
		if oerr := fc.output(c); oerr != nil {
			fc.logger.ErrorContext(c, "flush failed", slog.Any("error", oerr))
		}
	}
	c.state = StateFlushed

	for _, hook := range fc.onComplete {
		hook(c, err)
	}
	c.state = StateTerminated

	module, action := dispatchLabels(c)
	fc.metrics.ObserveDispatch(module, action, c.response.Status(), time.Since(start))
}

// unknownLabel stands in for module and action in metrics when no action
// was loaded.
const unknownLabel = "unknown"

// dispatchLabels names the first loaded action of the request. Raw path
// segments are never used, so only registered actions become label values.
func dispatchLabels(c *requestContext) (module, action string) {
	if c.route == nil {
		return unknownLabel, unknownLabel
	}
	entries := c.route.Stack().Entries()
	if len(entries) == 0 {
		return unknownLabel, unknownLabel
	}
	if e, ok := entries[0].(*ActionEntry); ok {
		return e.Module(), e.ActionName()
	}
	return unknownLabel, unknownLabel
}

// initialize builds the session, user, request and response components.
func (fc *FrontController) initialize(c *requestContext, w http.ResponseWriter) error {
	sess, err := container.Resolve[*session.Session](c.container, SessionComponent)
	if err != nil {
		return err
	}
	c.session = sess
	if c.user, err = container.Resolve[User](c.container, UserComponent); err != nil {
		return err
	}
	c.state = StateSessionReady

	if c.request, err = container.Resolve[*Request](c.container, RequestComponent); err != nil {
		return err
	}
	if c.response, err = container.Resolve[*Response](c.container, ResponseComponent); err != nil {
		return err
	}
	c.state = StateRequestReady

	prevID := ""
	if !sess.IsNew() {
		prevID = sess.ID
	}
	c.response.OnBeforeWrite(func() {
		if err := fc.sessions.Commit(c, w, prevID, sess); err != nil {
			fc.logger.ErrorContext(c, "session commit failed", slog.Any("error", err))
		}
	})
	return nil
}

func (fc *FrontController) dispatch(c *requestContext) error {
	route, err := fc.resolver.Resolve(router.InputFromRequest(c.request.HTTP(), fc.trustForwarded))
	if err != nil {
		if errors.Is(err, router.ErrNoRoute) {
			return NewHTTPError(http.StatusNotFound, "").Wrap(err)
		}
		return err
	}

	c.route = route
	c.request.setRoute(route)
	c.state = StateRouteResolved
	c.AddLogAttrs(
		slog.String("route", route.Name()),
		slog.String("module", route.Module()),
		slog.String("action", route.Action()),
	)
	fc.logger.DebugContext(c, "route resolved")

	for _, hook := range fc.onResolved {
		if err := hook(c); err != nil {
			return err
		}
	}

	c.state = StateDispatching
	return fc.run(c, route.Module(), route.Action())
}

// run executes module/action and then every forward it schedules. Each
// iteration pushes one stack entry, so the stack depth bounds the loop.
func (fc *FrontController) run(c *requestContext, module, action string) error {
	for {
		entry, err := fc.load(c, module, action)
		if err != nil {
			return err
		}
		if err := c.route.Stack().Push(entry); err != nil {
			return fmt.Errorf("forward to %s/%s: %w", module, action, err)
		}
		c.AddLogAttrs(
			slog.String("module", entry.Module()),
			slog.String("action", entry.ActionName()),
		)

		chain, err := fc.filters.Build(entry)
		if err != nil {
			return err
		}
		c.forward = nil
		if err := chain.Proceed(c); err != nil {
			return err
		}

		next, ok := c.takeForward()
		if !ok {
			return nil
		}
		fc.logger.DebugContext(c, "forward",
			slog.String("to_module", next.module),
			slog.String("to_action", next.action),
			slog.Int("depth", c.route.Stack().Size()),
		)
		fc.metrics.Forward(next.module, next.action)
		module, action = next.module, next.action
	}
}

// load loads module/action, falling back to the configured unknown action.
func (fc *FrontController) load(c *requestContext, module, action string) (*ActionEntry, error) {
	entry, err := fc.loader.Load(module, action)
	if err == nil {
		return entry, nil
	}
	if !errors.Is(err, ErrActionNotFound) && !errors.Is(err, ErrPackageDenied) {
		return nil, err
	}
	if fc.unknown.IsZero() {
		return nil, fmt.Errorf("%w: no unknown action configured: %w", router.ErrForwardConfig, err)
	}

	fc.logger.InfoContext(c, "action not loadable, forwarding to unknown action",
		slog.String("requested", module+"/"+action),
		slog.String("unknown", fc.unknown.String()),
		slog.Any("reason", err),
	)
	entry, uerr := fc.loader.Load(fc.unknown.Module, fc.unknown.Action)
	if uerr != nil {
		return nil, fmt.Errorf("%w: unknown action %s: %w", router.ErrForwardConfig, fc.unknown, uerr)
	}
	return entry, nil
}

func (fc *FrontController) output(c *requestContext) error {
	body := c.response.Body()
	for _, hook := range fc.beforeOutput {
		var err error
		if body, err = hook(c, body); err != nil {
			fc.handleError(c, err)
			if c.response.Committed() {
				return nil
			}
			return c.response.Flush()
		}
	}
	c.response.SetBody(body)
	return c.response.Flush()
}

// handleError translates err into a client status and renders it.
func (fc *FrontController) handleError(c *requestContext, err error) {
	status := StatusOf(err)
	level := slog.LevelInfo
	if status >= http.StatusInternalServerError {
		level = slog.LevelError
	}
	fc.logger.Log(c, level, "dispatch failed", slog.Int("status", status), slog.Any("error", err))

	if c.response.Committed() {
		return
	}
	c.response.Reset()
	c.response.SetStatus(status)
	if fc.errorHandler != nil {
		herr := fc.errorHandler(c, err)
		if herr == nil {
			return
		}
		fc.logger.ErrorContext(c, "error handler failed", slog.Any("error", herr))
		if c.response.Committed() {
			return
		}
	}
	_ = c.response.SendError(status)
}

// StatusOf maps a dispatch error to the HTTP status shown to the client.
func StatusOf(err error) int {
	if errors.Is(err, router.ErrNoRoute) {
		return http.StatusNotFound
	}
	var se *SecurityError
	if errors.As(err, &se) {
		return se.Code
	}
	if he := AsHTTPError(err); he != nil {
		return he.Code
	}
	return http.StatusInternalServerError
}
