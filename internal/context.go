package internal

import (
	"context"
	"log/slog"

	"github.com/dmitrymomot/dispatch/pkg/container"
	"github.com/dmitrymomot/dispatch/pkg/logger"
	"github.com/dmitrymomot/dispatch/pkg/router"
	"github.com/dmitrymomot/dispatch/pkg/session"
)

// Context is the request-scoped state handed to filters, actions and views.
// It replaces process-wide singletons: everything one request needs is
// reachable from here and nothing outlives the request.
type Context interface {
	context.Context

	Request() *Request
	Response() *Response
	Session() *session.Session
	User() User

	// Route returns the resolved route. It is nil until resolution succeeds.
	Route() *router.Route

	// Entry returns the action at the top of the route's stack.
	Entry() *ActionEntry

	// Component resolves a named component from the request container.
	Component(name string) (any, error)

	// Forward schedules an internal forward to module/action. It takes
	// effect once the current filter chain returns; a later call replaces an
	// earlier one.
	Forward(module, action string)

	// Logger returns the dispatcher logger. Records logged with the Context
	// as their context carry the request and route attributes.
	Logger() *slog.Logger

	// AddLogAttrs attaches attributes to every record logged with this
	// Context from now on. A repeated key replaces the earlier value.
	AddLogAttrs(attrs ...slog.Attr)

	// Set stores a request-scoped value.
	Set(key string, value any)

	// Get returns a value stored with Set.
	Get(key string) any
}

// Component resolves a named component from c as T.
func Component[T any](c Context, name string) (T, error) {
	var zero T
	v, err := c.Component(name)
	if err != nil {
		return zero, err
	}
	typed, ok := v.(T)
	if !ok {
		return zero, container.ErrInvalidArgument
	}
	return typed, nil
}

type pendingForward struct {
	module string
	action string
}

type requestContext struct {
	context.Context
	request   *Request
	response  *Response
	session   *session.Session
	user      User
	route     *router.Route
	container *container.Container
	logger    *slog.Logger
	values    map[string]any
	forward   *pendingForward
	state     State
}

var _ Context = (*requestContext)(nil)

func (c *requestContext) Request() *Request                  { return c.request }
func (c *requestContext) Response() *Response                { return c.response }
func (c *requestContext) Session() *session.Session          { return c.session }
func (c *requestContext) User() User                         { return c.user }
func (c *requestContext) Route() *router.Route               { return c.route }
func (c *requestContext) Component(name string) (any, error) { return c.container.Get(name) }

func (c *requestContext) Entry() *ActionEntry {
	if c.route == nil {
		return nil
	}
	top, _ := c.route.Stack().Top().(*ActionEntry)
	return top
}

func (c *requestContext) Forward(module, action string) {
	c.forward = &pendingForward{module: module, action: router.PascalCase(action)}
}

func (c *requestContext) Logger() *slog.Logger {
	return c.logger
}

func (c *requestContext) Set(key string, value any) {
	if c.values == nil {
		c.values = make(map[string]any)
	}
	c.values[key] = value
}

func (c *requestContext) Get(key string) any {
	return c.values[key]
}

func (c *requestContext) AddLogAttrs(attrs ...slog.Attr) {
	c.Context = logger.WithAttrs(c.Context, attrs...)
}

func (c *requestContext) takeForward() (pendingForward, bool) {
	if c.forward == nil {
		return pendingForward{}, false
	}
	f := *c.forward
	c.forward = nil
	return f, true
}

func (c *requestContext) forwardPending() bool {
	return c.forward != nil
}
