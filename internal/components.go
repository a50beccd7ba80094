package internal

import (
	"net/http"

	"github.com/dmitrymomot/dispatch/pkg/container"
	"github.com/dmitrymomot/dispatch/pkg/session"
)

// Components every request container provides. Applications may replace any
// of them by declaring a component of the same name.
const (
	RequestComponent  = "request"
	ResponseComponent = "response"
	SessionComponent  = "session"
	UserComponent     = "user"

	// Live instances set on every request container.
	HTTPRequestComponent  = "http.request"
	HTTPResponseComponent = "http.response"
)

// Built-in component classes.
const (
	RequestClass     = "dispatch.Request"
	ResponseClass    = "dispatch.Response"
	SessionClass     = "dispatch.Session"
	SessionUserClass = "dispatch.SessionUser"
	TemplViewClass   = "dispatch.TemplView"
)

// registerCoreClasses adds the built-in classes to reg.
func registerCoreClasses(reg *container.Registry, sessions *session.Manager) error {
	classes := map[string]container.Class{
		RequestClass: container.New(1, func(args []any) (any, error) {
			r, err := container.Arg[*http.Request](args, 0)
			if err != nil {
				return nil, err
			}
			return NewRequest(r), nil
		}),
		ResponseClass: container.New(1, func(args []any) (any, error) {
			w, err := container.Arg[http.ResponseWriter](args, 0)
			if err != nil {
				return nil, err
			}
			return NewResponse(w), nil
		}),
		SessionClass: container.New(1, func(args []any) (any, error) {
			r, err := container.Arg[*http.Request](args, 0)
			if err != nil {
				return nil, err
			}
			return sessions.Load(r)
		}),
		SessionUserClass: container.New(1, func(args []any) (any, error) {
			s, err := container.Arg[*session.Session](args, 0)
			if err != nil {
				return nil, err
			}
			return NewSessionUser(s), nil
		}),
		TemplViewClass: container.Value(NewTemplView),
	}
	for name, class := range classes {
		if err := reg.Register(name, class); err != nil {
			return err
		}
	}
	return nil
}

// coreDescriptors returns the default component descriptors, overlaid by
// the application's own.
func coreDescriptors(app map[string]container.Descriptor) map[string]container.Descriptor {
	ref := func(name string) string { return container.RefPrefix + name }
	out := map[string]container.Descriptor{
		RequestComponent:  {Class: RequestClass, Constructor: []any{ref(HTTPRequestComponent)}},
		ResponseComponent: {Class: ResponseClass, Constructor: []any{ref(HTTPResponseComponent)}},
		SessionComponent:  {Class: SessionClass, Constructor: []any{ref(HTTPRequestComponent)}},
		UserComponent:     {Class: SessionUserClass, Constructor: []any{ref(SessionComponent)}},
	}
	for name, d := range app {
		out[name] = d
	}
	return out
}
