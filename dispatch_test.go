package dispatch_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/dispatch"
	"github.com/dmitrymomot/dispatch/filters"
	"github.com/dmitrymomot/dispatch/pkg/container"
	"github.com/dmitrymomot/dispatch/pkg/session"
)

type mailer struct {
	from    string
	subject string
}

func (m *mailer) SetSubject(s string) { m.subject = s }

func text(body string) dispatch.ActionFactory {
	return func() dispatch.Action {
		return dispatch.ActionFunc(func(c dispatch.Context) (string, error) {
			_, err := c.Response().WriteString(body)
			return "", err
		})
	}
}

func newApp(t *testing.T, store session.Store) *dispatch.App {
	t.Helper()

	mailerClass := container.New(1, func(args []any) (any, error) {
		from, err := container.Arg[string](args, 0)
		if err != nil {
			return nil, err
		}
		return &mailer{from: from}, nil
	}).With("SetSubject", container.Setter((*mailer).SetSubject))

	app, err := dispatch.New(
		dispatch.WithConfigFile("testdata/dispatch.yaml"),
		dispatch.WithSessionStore(store),
		dispatch.WithComponentClass("app.Mailer", mailerClass),
		dispatch.WithAction("shop", "", "IndexAction", text("shop home")),
		dispatch.WithAction("shop", "", "CheckoutAction", func() dispatch.Action {
			return dispatch.ActionFunc(func(c dispatch.Context) (string, error) {
				m, err := dispatch.Component[*mailer](c, "mailer")
				if err != nil {
					return "", err
				}
				_, err = fmt.Fprintf(c.Response(), "checkout by %s, mail from %s: %s", c.User().ID(), m.from, m.subject)
				return "", err
			})
		}),
		dispatch.WithAction("account", "", "LoginAction", text("please log in")),
		dispatch.WithAction("admin", "", "ReportsAction", func() dispatch.Action {
			return dispatch.ActionFunc(func(c dispatch.Context) (string, error) {
				_, err := fmt.Fprintf(c.Response(), "reports %d", dispatch.Param[int](c, "year"))
				return "", err
			})
		}),
		dispatch.WithAction("admin", "internal", "ReindexAction", text("reindexed")),
		dispatch.WithAction("errors", "", "NotFoundAction", func() dispatch.Action {
			return dispatch.ActionFunc(func(c dispatch.Context) (string, error) {
				c.Response().SetStatus(http.StatusNotFound)
				_, err := c.Response().WriteString("not found")
				return "", err
			})
		}),
		dispatch.WithAction("errors", "", "ForbiddenAction", func() dispatch.Action {
			return dispatch.ActionFunc(func(c dispatch.Context) (string, error) {
				return "", dispatch.Forbidden("network not allowed")
			})
		}),
	)
	require.NoError(t, err)
	return app
}

func TestApp_FromConfigFile(t *testing.T) {
	t.Parallel()

	store := session.NewMemoryStore()
	app := newApp(t, store)

	s := session.New(time.Hour)
	s.Login("u-7")
	require.NoError(t, store.Save(context.Background(), s))
	loggedIn := &http.Cookie{Name: session.DefaultCookieName, Value: s.ID}

	tests := []struct {
		name     string
		path     string
		remote   string
		cookie   *http.Cookie
		wantCode int
		wantBody string
		noChain  bool
	}{
		{name: "default action", path: "/shop/index", wantCode: http.StatusOK, wantBody: "shop home"},
		{name: "anonymous checkout forwards to login", path: "/shop/checkout.do", wantCode: http.StatusOK, wantBody: "please log in"},
		{
			name:     "logged in checkout",
			path:     "/shop/checkout.do",
			cookie:   loggedIn,
			wantCode: http.StatusOK,
			wantBody: "checkout by u-7, mail from noreply@example.com: Order confirmed",
		},
		{name: "missing action", path: "/shop/cart", wantCode: http.StatusNotFound, wantBody: "not found"},
		{name: "denied package", path: "/admin/reindex", wantCode: http.StatusNotFound, wantBody: "not found"},
		{name: "allowed network", path: "/reports/2025", remote: "10.1.1.1:5000", wantCode: http.StatusOK, wantBody: "reports 2025"},
		{name: "denied network", path: "/reports/2025", remote: "192.0.2.9:5000", wantCode: http.StatusForbidden},
		{name: "no route", path: "/a/b/c", wantCode: http.StatusNotFound, wantBody: "Not Found", noChain: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.remote != "" {
				req.RemoteAddr = tt.remote
			}
			if tt.cookie != nil {
				req.AddCookie(tt.cookie)
			}
			rec := httptest.NewRecorder()
			app.ServeHTTP(rec, req)

			require.Equal(t, tt.wantCode, rec.Code)
			if tt.wantBody != "" {
				assert.Equal(t, tt.wantBody, rec.Body.String())
			}
			if !tt.noChain {
				assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
			}
		})
	}
}

func TestNew_RejectsBuiltinClassName(t *testing.T) {
	t.Parallel()

	_, err := dispatch.New(
		dispatch.WithRoute("default", dispatch.RouteDefinition{URI: "/:module/:action"}),
		dispatch.WithFilterClass("recover", filters.RecoverFactory),
	)
	require.ErrorIs(t, err, dispatch.ErrDuplicateFilterClass)
}

func TestApp_Serve(t *testing.T) {
	t.Parallel()

	shutdown := make(chan struct{})
	app, err := dispatch.New(
		dispatch.WithRoute("default", dispatch.RouteDefinition{URI: "/:module/:action"}),
		dispatch.WithAction("shop", "", "IndexAction", text("up")),
		dispatch.WithShutdownHook(func(context.Context) error {
			close(shutdown)
			return nil
		}),
	)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- app.Run(ctx, "127.0.0.1:0") }()

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
	<-shutdown
}
