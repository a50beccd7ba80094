package internal_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/dispatch/internal"
)

func TestExtractor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		sources []internal.ExtractorSource
		setup   func(r *http.Request)
		want    string
		wantOK  bool
	}{
		{
			name:    "header",
			sources: []internal.ExtractorSource{internal.FromHeader("X-Tenant")},
			setup:   func(r *http.Request) { r.Header.Set("X-Tenant", "acme") },
			want:    "acme",
			wantOK:  true,
		},
		{
			name:    "falls back to param",
			sources: []internal.ExtractorSource{internal.FromHeader("X-Tenant"), internal.FromParam("tenant")},
			setup:   func(r *http.Request) {},
			want:    "query-tenant",
			wantOK:  true,
		},
		{
			name:    "cookie",
			sources: []internal.ExtractorSource{internal.FromCookie("tenant")},
			setup:   func(r *http.Request) { r.AddCookie(&http.Cookie{Name: "tenant", Value: "cookie-tenant"}) },
			want:    "cookie-tenant",
			wantOK:  true,
		},
		{
			name:    "bearer token",
			sources: []internal.ExtractorSource{internal.FromBearerToken()},
			setup:   func(r *http.Request) { r.Header.Set("Authorization", "bearer tok-1") },
			want:    "tok-1",
			wantOK:  true,
		},
		{
			name:    "non bearer authorization",
			sources: []internal.ExtractorSource{internal.FromBearerToken()},
			setup:   func(r *http.Request) { r.Header.Set("Authorization", "Basic abc") },
		},
		{
			name:    "anonymous user",
			sources: []internal.ExtractorSource{internal.FromUser()},
			setup:   func(r *http.Request) {},
		},
		{
			name:    "missing session value",
			sources: []internal.ExtractorSource{internal.FromSession("tenant")},
			setup:   func(r *http.Request) {},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var (
				got string
				ok  bool
			)
			extractor := internal.NewExtractor(tt.sources...)
			app := newApp(t, internal.WithAction("shop", "", "ProbeAction", func() internal.Action {
				return internal.ActionFunc(func(c internal.Context) (string, error) {
					got, ok = extractor.Extract(c)
					return "", nil
				})
			}))

			req := httptest.NewRequest(http.MethodGet, "/shop/probe?tenant=query-tenant", nil)
			tt.setup(req)
			app.ServeHTTP(httptest.NewRecorder(), req)

			require.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestValue(t *testing.T) {
	t.Parallel()

	var (
		count int
		name  string
	)
	app := newApp(t, internal.WithAction("shop", "", "ProbeAction", func() internal.Action {
		return internal.ActionFunc(func(c internal.Context) (string, error) {
			c.Set("count", 3)
			count = internal.Value[int](c, "count")
			name = internal.Value[string](c, "count")
			return "", nil
		})
	}))

	app.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/shop/probe", nil))
	assert.Equal(t, 3, count)
	assert.Empty(t, name)
}
