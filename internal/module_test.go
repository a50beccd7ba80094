package internal_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/dispatch/internal"
)

func TestPackageName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		module  string
		subpath string
		want    string
	}{
		{module: "shop", subpath: "", want: "shop:/"},
		{module: "shop", subpath: "/", want: "shop:/"},
		{module: "blog", subpath: "admin", want: "blog:/admin"},
		{module: "blog", subpath: "/admin/users/", want: "blog:/admin/users"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, internal.PackageName(tt.module, tt.subpath))
		})
	}
}

func TestMatchPackage(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		pattern string
		pkg     string
		want    bool
	}{
		{name: "exact", pattern: "blog:/admin", pkg: "blog:/admin", want: true},
		{name: "exact mismatch", pattern: "blog:/admin", pkg: "blog:/admin/users", want: false},
		{name: "wildcard base", pattern: "blog:/admin/*", pkg: "blog:/admin", want: true},
		{name: "wildcard child", pattern: "blog:/admin/*", pkg: "blog:/admin/users", want: true},
		{name: "wildcard grandchild", pattern: "blog:/admin/*", pkg: "blog:/admin/users/roles", want: true},
		{name: "wildcard sibling prefix", pattern: "blog:/admin/*", pkg: "blog:/administrator", want: false},
		{name: "wildcard other package", pattern: "blog:/admin/*", pkg: "blog:/", want: false},
		{name: "module wildcard root", pattern: "blog:/*", pkg: "blog:/", want: true},
		{name: "module wildcard sub", pattern: "blog:/*", pkg: "blog:/admin", want: true},
		{name: "module wildcard other module", pattern: "blog:/*", pkg: "shop:/", want: false},
		{name: "root exact", pattern: "shop:/", pkg: "shop:/", want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, internal.MatchPackage(tt.pattern, tt.pkg))
		})
	}
}

func TestBehaviorKey(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "shop:/Checkout", internal.BehaviorKey("shop:/", "Checkout"))
	assert.Equal(t, "blog:/admin/Users", internal.BehaviorKey("blog:/admin", "Users"))
}

func TestModules_PackageAllowed(t *testing.T) {
	t.Parallel()

	mods := internal.NewModules(
		&internal.Module{Name: "shop"},
		&internal.Module{Name: "blog", Allow: []string{"blog:/", "blog:/admin/*"}, Deny: []string{"blog:/admin/secret"}},
	)

	tests := []struct {
		name   string
		module string
		pkg    string
		want   bool
	}{
		{name: "no lists", module: "shop", pkg: "shop:/internal", want: true},
		{name: "other module package", module: "shop", pkg: "blog:/", want: false},
		{name: "unknown module", module: "news", pkg: "news:/", want: false},
		{name: "allowed root", module: "blog", pkg: "blog:/", want: true},
		{name: "allowed wildcard", module: "blog", pkg: "blog:/admin/users", want: true},
		{name: "denied wins", module: "blog", pkg: "blog:/admin/secret", want: false},
		{name: "outside allow list", module: "blog", pkg: "blog:/drafts", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, mods.PackageAllowed(tt.module, tt.pkg))
		})
	}
}

func TestModules_Lookup(t *testing.T) {
	t.Parallel()

	mods := internal.NewModules(
		&internal.Module{
			Name:          "shop",
			DefaultAction: "Index",
			Behaviors: map[string]internal.Behavior{
				"shop:/Checkout":     {Login: true},
				"shop:/admin/Orders": {Roles: []string{"admin"}},
			},
		},
		&internal.Module{Name: "blog"},
	)

	require.True(t, mods.Has("shop"))
	require.False(t, mods.Has("news"))
	assert.Equal(t, []string{"blog", "shop"}, mods.Names())

	action, ok := mods.DefaultAction("shop")
	require.True(t, ok)
	assert.Equal(t, "Index", action)
	_, ok = mods.DefaultAction("blog")
	assert.False(t, ok)

	assert.True(t, mods.Behavior("shop", "shop:/", "Checkout").Login)
	assert.Equal(t, []string{"admin"}, mods.Behavior("shop", "shop:/admin", "Orders").Roles)
	assert.Equal(t, internal.Behavior{}, mods.Behavior("shop", "shop:/", "Cart"))
	assert.Equal(t, internal.Behavior{}, mods.Behavior("news", "news:/", "Index"))
}
