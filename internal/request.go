package internal

import (
	"net/http"

	"github.com/dmitrymomot/dispatch/pkg/router"
)

// Request exposes the incoming HTTP request together with its resolved route.
type Request struct {
	r     *http.Request
	route *router.Route
}

// NewRequest wraps r.
func NewRequest(r *http.Request) *Request {
	return &Request{r: r}
}

// HTTP returns the underlying request.
func (r *Request) HTTP() *http.Request { return r.r }

// Method returns the HTTP method.
func (r *Request) Method() string { return r.r.Method }

// URI returns the request URI as sent by the client.
func (r *Request) URI() string { return r.r.RequestURI }

// Route returns the resolved route, nil before resolution.
func (r *Request) Route() *router.Route { return r.route }

// Param returns a route binding, falling back to query and form values.
func (r *Request) Param(name string) string {
	if r.route != nil {
		if v, ok := r.route.Param(name); ok {
			return v
		}
	}
	return r.r.FormValue(name)
}

// HasParam reports whether name is bound by the route or present in the
// query or form.
func (r *Request) HasParam(name string) bool {
	if r.route != nil {
		if _, ok := r.route.Param(name); ok {
			return true
		}
	}
	_ = r.r.ParseForm()
	return r.r.Form.Has(name)
}

func (r *Request) setRoute(route *router.Route) { r.route = route }
