package internal_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/dispatch/internal"
	"github.com/dmitrymomot/dispatch/pkg/config"
	"github.com/dmitrymomot/dispatch/pkg/metrics"
	"github.com/dmitrymomot/dispatch/pkg/router"
)

func write(body string) internal.ActionFactory {
	return func() internal.Action {
		return internal.ActionFunc(func(c internal.Context) (string, error) {
			_, err := c.Response().WriteString(body)
			return "", err
		})
	}
}

func forwardTo(module, action string) internal.ActionFactory {
	return func() internal.Action {
		return internal.ActionFunc(func(c internal.Context) (string, error) {
			c.Forward(module, action)
			return "", nil
		})
	}
}

func fail(err error) internal.ActionFactory {
	return func() internal.Action {
		return internal.ActionFunc(func(internal.Context) (string, error) { return "", err })
	}
}

func newApp(t *testing.T, opts ...internal.Option) *internal.App {
	t.Helper()
	opts = append(opts, internal.WithRoute("default", router.DefinitionConfig{URI: "/:module/:action"}))
	app, err := internal.New(opts...)
	require.NoError(t, err)
	return app
}

func get(app http.Handler, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	app.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

// counter is a filter class that counts invocations per filter id.
type counter struct {
	calls map[string]int
	mu    sync.Mutex
}

func newCounter() *counter {
	return &counter{calls: make(map[string]int)}
}

func (cnt *counter) class(id string) internal.FilterFactory {
	return func(map[string]any) (internal.Filter, error) {
		return internal.FilterFunc(func(c internal.Context, chain *internal.FilterChain) error {
			cnt.mu.Lock()
			cnt.calls[id]++
			cnt.mu.Unlock()
			return chain.Proceed(c)
		}), nil
	}
}

func (cnt *counter) get(id string) int {
	cnt.mu.Lock()
	defer cnt.mu.Unlock()
	return cnt.calls[id]
}

func boolPtr(b bool) *bool { return &b }

func TestDispatch_StaticRoute(t *testing.T) {
	t.Parallel()

	app := newApp(t,
		internal.WithRoute("checkout", router.DefinitionConfig{
			URI:     "/shop/checkout.do",
			Forward: router.Forward{Module: "shop", Action: "Checkout"},
		}),
		internal.WithAction("shop", "", "CheckoutAction", write("checkout")),
	)

	rec := get(app, "/shop/checkout.do")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "checkout", rec.Body.String())

	rec = get(app, "/shop/checkout")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "checkout", rec.Body.String())
}

func TestDispatch_RouteParams(t *testing.T) {
	t.Parallel()

	app := newApp(t,
		internal.WithRoute("item", router.DefinitionConfig{
			URI:      "/items/:id",
			Patterns: map[string]string{"id": `\d+`},
			Forward:  router.Forward{Module: "shop", Action: "Item"},
		}),
		internal.WithAction("shop", "", "ItemAction", func() internal.Action {
			return internal.ActionFunc(func(c internal.Context) (string, error) {
				id := internal.Param[int](c, "id")
				page := internal.ParamDefault(c, "page", 1)
				_, err := fmt.Fprintf(c.Response(), "item=%d page=%d", id, page)
				return "", err
			})
		}),
	)

	rec := get(app, "/items/42?page=3")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "item=42 page=3", rec.Body.String())

	rec = get(app, "/items/42")
	assert.Equal(t, "item=42 page=1", rec.Body.String())

	// A non-numeric id fails the pattern and falls through to the default
	// route, which names an unknown module.
	assert.Equal(t, http.StatusInternalServerError, get(app, "/items/abc").Code)
}

func TestDispatch_NotFound(t *testing.T) {
	t.Parallel()

	var captured error
	app := newApp(t, internal.WithErrorHandler(func(c internal.Context, err error) error {
		captured = err
		return err
	}))

	rec := get(app, "/too/many/segments")
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.ErrorIs(t, captured, router.ErrNoRoute)
}

func TestDispatch_UnknownAction(t *testing.T) {
	t.Parallel()

	notFound := func() internal.Action {
		return internal.ActionFunc(func(c internal.Context) (string, error) {
			c.Response().SetStatus(http.StatusNotFound)
			_, err := c.Response().WriteString("no such page")
			return "", err
		})
	}

	t.Run("not configured", func(t *testing.T) {
		t.Parallel()

		var captured error
		app := newApp(t,
			internal.WithAction("shop", "", "CheckoutAction", write("checkout")),
			internal.WithErrorHandler(func(c internal.Context, err error) error {
				captured = err
				return err
			}),
		)
		require.Equal(t, http.StatusInternalServerError, get(app, "/shop/cart").Code)
		require.ErrorIs(t, captured, router.ErrForwardConfig)
		require.ErrorIs(t, captured, internal.ErrActionNotFound)
	})

	t.Run("missing action", func(t *testing.T) {
		t.Parallel()

		app := newApp(t,
			internal.WithAction("shop", "", "CheckoutAction", write("checkout")),
			internal.WithAction("errors", "", "NotFoundAction", notFound),
			internal.WithUnknownAction("errors", "not-found"),
		)
		rec := get(app, "/shop/cart")
		require.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, "no such page", rec.Body.String())
	})

	t.Run("denied package", func(t *testing.T) {
		t.Parallel()

		app := newApp(t,
			internal.WithModule("shop", config.Module{Packages: config.Packages{Deny: []string{"shop:/internal/*"}}}),
			internal.WithAction("shop", "internal", "ReindexAction", write("reindexed")),
			internal.WithAction("errors", "", "NotFoundAction", notFound),
			internal.WithUnknownAction("errors", "NotFound"),
		)
		rec := get(app, "/shop/reindex")
		require.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, "no such page", rec.Body.String())
	})
}

func TestDispatch_DefaultAction(t *testing.T) {
	t.Parallel()

	app := newApp(t,
		internal.WithRoute("module", router.DefinitionConfig{URI: "/:module"}),
		internal.WithModule("shop", config.Module{DefaultAction: "index"}),
		internal.WithAction("shop", "", "IndexAction", write("shop home")),
	)

	rec := get(app, "/shop")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "shop home", rec.Body.String())
}

func TestDispatch_Forward(t *testing.T) {
	t.Parallel()

	cnt := newCounter()
	app := newApp(t,
		internal.WithFilterClass("pre", cnt.class("pre")),
		internal.WithFilterClass("always", cnt.class("always")),
		internal.WithFilter("pre", config.Filter{Class: "pre"}),
		internal.WithFilter("always", config.Filter{Class: "always", Bypass: boolPtr(false)}),
		internal.WithAction("shop", "", "CheckoutAction", forwardTo("account", "login")),
		internal.WithAction("account", "", "LoginAction", func() internal.Action {
			return internal.ActionFunc(func(c internal.Context) (string, error) {
				stack := c.Route().Stack()
				_, err := fmt.Fprintf(c.Response(), "%s from %s depth %d",
					c.Entry().ActionName(), stack.Previous().ActionName(), stack.Size())
				return "", err
			})
		}),
	)

	rec := get(app, "/shop/checkout")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Login from Checkout depth 2", rec.Body.String())
	assert.Equal(t, 1, cnt.get("pre"))
	assert.Equal(t, 2, cnt.get("always"))
}

func TestDispatch_ForwardOverflow(t *testing.T) {
	t.Parallel()

	var (
		runs     int
		captured error
	)
	app := newApp(t,
		internal.WithAction("shop", "", "LoopAction", func() internal.Action {
			return internal.ActionFunc(func(c internal.Context) (string, error) {
				runs++
				c.Forward("shop", "loop")
				return "", nil
			})
		}),
		internal.WithErrorHandler(func(c internal.Context, err error) error {
			captured = err
			return err
		}),
	)

	rec := get(app, "/shop/loop")
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.ErrorIs(t, captured, router.ErrStackOverflow)
	assert.Equal(t, router.MaxDepth, runs)
}

func TestDispatch_PackageScopedFilter(t *testing.T) {
	t.Parallel()

	cnt := newCounter()
	m := metrics.New("scoped")
	app := newApp(t,
		internal.WithMetrics(m),
		internal.WithFilterClass("admin-only", cnt.class("admin")),
		internal.WithFilter("admin", config.Filter{Class: "admin-only", Packages: []string{"shop:/admin/*"}}),
		internal.WithAction("shop", "", "CheckoutAction", write("checkout")),
		internal.WithAction("shop", "admin", "OrdersAction", write("orders")),
	)

	require.Equal(t, http.StatusOK, get(app, "/shop/checkout").Code)
	assert.Equal(t, 0, cnt.get("admin"))

	require.Equal(t, http.StatusOK, get(app, "/shop/orders").Code)
	assert.Equal(t, 1, cnt.get("admin"))

	body := get(app, "/metrics").Body.String()
	assert.Contains(t, body, `scoped_filter_skipped_total{filter="admin"} 1`)
}

func TestDispatch_BehaviorDisablesFilter(t *testing.T) {
	t.Parallel()

	cnt := newCounter()
	app := newApp(t,
		internal.WithFilterClass("audit", cnt.class("audit")),
		internal.WithFilter("audit", config.Filter{Class: "audit"}),
		internal.WithModule("shop", config.Module{Behaviors: map[string]config.Behavior{
			"shop:/Ping": {Filters: map[string]map[string]any{"audit": {"enable": false}}},
		}}),
		internal.WithAction("shop", "", "CheckoutAction", write("checkout")),
		internal.WithAction("shop", "", "PingAction", write("pong")),
	)

	get(app, "/shop/ping")
	assert.Equal(t, 0, cnt.get("audit"))
	get(app, "/shop/checkout")
	assert.Equal(t, 1, cnt.get("audit"))
}

func TestDispatch_ErrorStatus(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "unauthorized", err: internal.Unauthorized("login required"), want: http.StatusUnauthorized},
		{name: "forbidden", err: internal.Forbidden("admins only", "admin"), want: http.StatusForbidden},
		{name: "http error", err: internal.NewHTTPError(http.StatusTeapot, ""), want: http.StatusTeapot},
		{name: "wrapped http error", err: fmt.Errorf("checkout: %w", internal.NewHTTPError(http.StatusConflict, "stale cart")), want: http.StatusConflict},
		{name: "plain error", err: errors.New("database down"), want: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			app := newApp(t, internal.WithAction("shop", "", "CheckoutAction", fail(tt.err)))
			rec := get(app, "/shop/checkout")
			require.Equal(t, tt.want, rec.Code)
			assert.Equal(t, http.StatusText(tt.want), rec.Body.String())
		})
	}
}

func TestDispatch_ErrorHandlerRendersBody(t *testing.T) {
	t.Parallel()

	app := newApp(t,
		internal.WithAction("shop", "", "CheckoutAction", func() internal.Action {
			return internal.ActionFunc(func(c internal.Context) (string, error) {
				_, _ = c.Response().WriteString("partial output")
				return "", internal.Forbidden("nope")
			})
		}),
		internal.WithErrorHandler(func(c internal.Context, err error) error {
			_, werr := fmt.Fprintf(c.Response(), "error page %d", internal.StatusOf(err))
			return werr
		}),
	)

	rec := get(app, "/shop/checkout")
	require.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "error page 403", rec.Body.String())
}

type signupAction struct{}

func (signupAction) Execute(c internal.Context) (string, error) { return "Success", nil }

func (signupAction) Validate(c internal.Context) bool { return c.Request().Param("email") != "" }

func (signupAction) HandleError(c internal.Context) (string, error) {
	c.Response().SetStatus(http.StatusUnprocessableEntity)
	return "Error", nil
}

func TestDispatch_ViewsAndValidation(t *testing.T) {
	t.Parallel()

	views := internal.NewTemplView().
		Text("SignupSuccess", "<p>welcome</p>").
		Text("SignupError", "<p>email required</p>")

	app := newApp(t,
		internal.WithView(views),
		internal.WithModule("account", config.Module{Behaviors: map[string]config.Behavior{
			"account:/Signup": {Validate: true},
		}}),
		internal.WithAction("account", "", "SignupAction", func() internal.Action { return signupAction{} }),
		internal.WithAction("account", "", "BrokenAction", func() internal.Action {
			return internal.ActionFunc(func(internal.Context) (string, error) { return "Missing", nil })
		}),
	)

	rec := get(app, "/account/signup?email=a@example.com")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "<p>welcome</p>", rec.Body.String())
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))

	rec = get(app, "/account/signup")
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "<p>email required</p>", rec.Body.String())

	require.Equal(t, http.StatusInternalServerError, get(app, "/account/broken").Code)
}

func TestDispatch_ViewNotConfigured(t *testing.T) {
	t.Parallel()

	var captured error
	app := newApp(t,
		internal.WithAction("shop", "", "CheckoutAction", func() internal.Action {
			return internal.ActionFunc(func(internal.Context) (string, error) { return "Success", nil })
		}),
		internal.WithErrorHandler(func(c internal.Context, err error) error {
			captured = err
			return err
		}),
	)

	require.Equal(t, http.StatusInternalServerError, get(app, "/shop/checkout").Code)
	require.ErrorIs(t, captured, internal.ErrViewNotConfigured)
}

func TestDispatch_HooksAndState(t *testing.T) {
	t.Parallel()

	var (
		mu     sync.Mutex
		states []string
	)
	record := func(s internal.State) {
		mu.Lock()
		states = append(states, s.String())
		mu.Unlock()
	}

	app := newApp(t,
		internal.WithAction("shop", "", "CheckoutAction", func() internal.Action {
			return internal.ActionFunc(func(c internal.Context) (string, error) {
				record(internal.StateOf(c))
				_, err := c.Response().WriteString("checkout")
				return "", err
			})
		}),
		internal.WithRouteResolvedHook(func(c internal.Context) error {
			record(internal.StateOf(c))
			return nil
		}),
		internal.WithBeforeOutputHook(func(c internal.Context, body []byte) ([]byte, error) {
			record(internal.StateOf(c))
			return bytes.ToUpper(body), nil
		}),
		internal.WithCompleteHook(func(c internal.Context, err error) {
			record(internal.StateOf(c))
		}),
	)

	rec := get(app, "/shop/checkout")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "CHECKOUT", rec.Body.String())
	assert.Equal(t, []string{"route_resolved", "dispatching", "dispatching", "flushed"}, states)
}

func TestDispatch_RouteResolvedHookError(t *testing.T) {
	t.Parallel()

	app := newApp(t,
		internal.WithAction("shop", "", "CheckoutAction", write("checkout")),
		internal.WithRouteResolvedHook(func(c internal.Context) error {
			return internal.NewHTTPError(http.StatusServiceUnavailable, "")
		}),
	)

	require.Equal(t, http.StatusServiceUnavailable, get(app, "/shop/checkout").Code)
}

func TestDispatch_SessionPersistence(t *testing.T) {
	t.Parallel()

	app := newApp(t,
		internal.WithAction("shop", "", "AddAction", func() internal.Action {
			return internal.ActionFunc(func(c internal.Context) (string, error) {
				c.Session().Set("cart", c.Request().Param("item"))
				return "", nil
			})
		}),
		internal.WithAction("shop", "", "CartAction", func() internal.Action {
			return internal.ActionFunc(func(c internal.Context) (string, error) {
				v, _ := c.Session().Get("cart")
				_, err := fmt.Fprint(c.Response(), v)
				return "", err
			})
		}),
	)

	rec := get(app, "/shop/add?item=book")
	require.Equal(t, http.StatusOK, rec.Code)
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)

	req := httptest.NewRequest(http.MethodGet, "/shop/cart", nil)
	req.AddCookie(cookies[0])
	rec = httptest.NewRecorder()
	app.ServeHTTP(rec, req)
	assert.Equal(t, "book", rec.Body.String())
}

func TestDispatch_Components(t *testing.T) {
	t.Parallel()

	type greeter struct{ greeting string }

	app := newApp(t,
		internal.WithInstance("greeter", &greeter{greeting: "hello"}),
		internal.WithAction("shop", "", "GreetAction", func() internal.Action {
			return internal.ActionFunc(func(c internal.Context) (string, error) {
				g, err := internal.Component[*greeter](c, "greeter")
				if err != nil {
					return "", err
				}
				req, err := internal.Component[*internal.Request](c, internal.RequestComponent)
				if err != nil {
					return "", err
				}
				_, err = fmt.Fprintf(c.Response(), "%s %s", g.greeting, req.Method())
				return "", err
			})
		}),
	)

	assert.Equal(t, "hello GET", get(app, "/shop/greet").Body.String())
}

func TestApp_Endpoints(t *testing.T) {
	t.Parallel()

	m := metrics.New("endpoints")
	app := newApp(t,
		internal.WithMetrics(m),
		internal.WithAction("shop", "", "CheckoutAction", write("checkout")),
		internal.WithReadinessCheck("store", func(ctx context.Context) error { return nil }),
	)

	assert.Equal(t, http.StatusOK, get(app, internal.LivenessPath).Code)
	assert.Equal(t, http.StatusOK, get(app, internal.ReadinessPath).Code)

	get(app, "/shop/checkout")
	body := get(app, internal.MetricsPath).Body.String()
	assert.Contains(t, body, `endpoints_dispatch_requests_total{action="Checkout",module="shop",status="200"} 1`)
}

func TestApp_MetricsLabelsUseLoadedActions(t *testing.T) {
	t.Parallel()

	m := metrics.New("labels")
	app := newApp(t,
		internal.WithMetrics(m),
		internal.WithAction("shop", "", "CheckoutAction", write("checkout")),
	)

	for i := range 20 {
		require.Equal(t, http.StatusInternalServerError, get(app, fmt.Sprintf("/junk%d/x%d", i, i)).Code)
	}
	require.Equal(t, http.StatusNotFound, get(app, "/too/many/segments").Code)
	get(app, "/shop/checkout")

	body := get(app, internal.MetricsPath).Body.String()
	assert.Contains(t, body, `labels_dispatch_requests_total{action="unknown",module="unknown",status="500"} 20`)
	assert.Contains(t, body, `labels_dispatch_requests_total{action="unknown",module="unknown",status="404"} 1`)
	assert.Contains(t, body, `labels_dispatch_requests_total{action="Checkout",module="shop",status="200"} 1`)
	assert.NotContains(t, body, "junk")
	assert.NotContains(t, body, "X0")
}

func TestNew_ConfigErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		opts    []internal.Option
		wantErr error
	}{
		{
			name:    "unknown filter class",
			opts:    []internal.Option{internal.WithFilter("csrf", config.Filter{Class: "csrf"})},
			wantErr: internal.ErrUnknownFilterClass,
		},
		{
			name:    "invalid action class",
			opts:    []internal.Option{internal.WithAction("shop", "", "Checkout", write(""))},
			wantErr: internal.ErrInvalidActionClass,
		},
		{
			name:    "incomplete unknown action",
			opts:    []internal.Option{internal.WithConfig(&config.File{Router: config.Router{Unknown: router.Forward{Module: "errors"}}})},
			wantErr: config.ErrInvalidConfig,
		},
		{
			name:    "missing config file",
			opts:    []internal.Option{internal.WithConfigFile("testdata/does-not-exist.yaml")},
			wantErr: config.ErrReadFile,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			opts := append(tt.opts, internal.WithRoute("default", router.DefinitionConfig{URI: "/:module/:action"}))
			_, err := internal.New(opts...)
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestStatusOf(t *testing.T) {
	t.Parallel()

	assert.Equal(t, http.StatusNotFound, internal.StatusOf(fmt.Errorf("x: %w", router.ErrNoRoute)))
	assert.Equal(t, http.StatusForbidden, internal.StatusOf(internal.Forbidden("no")))
	assert.Equal(t, http.StatusBadRequest, internal.StatusOf(internal.NewHTTPError(http.StatusBadRequest, "")))
	assert.Equal(t, http.StatusInternalServerError, internal.StatusOf(errors.New("boom")))
	assert.True(t, strings.HasPrefix(internal.Forbidden("no").Error(), "security:"))
}
