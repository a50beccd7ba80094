package internal_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/dispatch/internal"
)

func passThrough(map[string]any) (internal.Filter, error) {
	return internal.FilterFunc(func(c internal.Context, chain *internal.FilterChain) error {
		return chain.Proceed(c)
	}), nil
}

func descriptorIDs(ds []internal.FilterDescriptor) []string {
	ids := make([]string, len(ds))
	for i, d := range ds {
		ids[i] = d.ID
	}
	return ids
}

func TestFilterRegistry(t *testing.T) {
	t.Parallel()

	reg := internal.NewFilterRegistry()
	require.NoError(t, reg.Register("pass", passThrough))
	require.ErrorIs(t, reg.Register("pass", passThrough), internal.ErrDuplicateFilterClass)

	_, ok := reg.Lookup("pass")
	assert.True(t, ok)
	_, ok = reg.Lookup("missing")
	assert.False(t, ok)
}

func TestFilterManager_Descriptors(t *testing.T) {
	t.Parallel()

	reg := internal.NewActionRegistry()
	require.NoError(t, reg.Register("shop", "", "CheckoutAction", noop))
	require.NoError(t, reg.Register("shop", "", "CartAction", noop))
	require.NoError(t, reg.Register("blog", "", "IndexAction", noop))

	mods := internal.NewModules(
		&internal.Module{
			Name: "shop",
			Filters: []internal.FilterDescriptor{
				{ID: "auth", Class: "pass", Enable: true, Attrs: map[string]any{"login_module": "account"}},
				{ID: "audit", Class: "pass", Enable: true},
				{ID: "legacy", Class: "pass", Enable: false},
			},
			Behaviors: map[string]internal.Behavior{
				"shop:/Cart": {Filters: map[string]map[string]any{
					"audit": {"enable": false},
					"auth":  {"login_action": "Login"},
				}},
			},
		},
		&internal.Module{Name: "blog"},
	)
	global := []internal.FilterDescriptor{
		{ID: "recover", Class: "pass", Enable: true},
		{ID: "auth", Class: "pass", Enable: true},
		{ID: "logging", Class: "pass", Enable: true},
	}
	fr := internal.NewFilterRegistry()
	require.NoError(t, fr.Register("pass", passThrough))
	manager := internal.NewFilterManager(fr, mods, global, nil, nil)
	require.NoError(t, manager.Validate())
	loader := internal.NewLoader(reg, mods)

	t.Run("module replaces global in place and appends", func(t *testing.T) {
		t.Parallel()
		entry, err := loader.Load("shop", "Checkout")
		require.NoError(t, err)

		ds := manager.Descriptors(entry)
		assert.Equal(t, []string{"recover", "auth", "logging", "audit"}, descriptorIDs(ds))
		assert.Equal(t, "account", ds[1].Attrs["login_module"])
	})

	t.Run("behavior overrides", func(t *testing.T) {
		t.Parallel()
		entry, err := loader.Load("shop", "Cart")
		require.NoError(t, err)

		ds := manager.Descriptors(entry)
		assert.Equal(t, []string{"recover", "auth", "logging"}, descriptorIDs(ds))
		assert.Equal(t, "account", ds[1].Attrs["login_module"])
		assert.Equal(t, "Login", ds[1].Attrs["login_action"])
	})

	t.Run("other module sees globals only", func(t *testing.T) {
		t.Parallel()
		entry, err := loader.Load("blog", "Index")
		require.NoError(t, err)

		assert.Equal(t, []string{"recover", "auth", "logging"}, descriptorIDs(manager.Descriptors(entry)))
	})

	t.Run("chain ends with action filter", func(t *testing.T) {
		t.Parallel()
		entry, err := loader.Load("shop", "Checkout")
		require.NoError(t, err)

		chain, err := manager.Build(entry)
		require.NoError(t, err)
		assert.Equal(t, []string{"recover", "auth", "logging", "audit", "action"}, chain.IDs())
	})
}

func TestFilterManager_Instances(t *testing.T) {
	t.Parallel()

	reg := internal.NewActionRegistry()
	require.NoError(t, reg.Register("shop", "", "CheckoutAction", noop))
	require.NoError(t, reg.Register("shop", "", "CartAction", noop))
	mods := internal.NewModules(&internal.Module{
		Name: "shop",
		Behaviors: map[string]internal.Behavior{
			"shop:/Cart": {Filters: map[string]map[string]any{"count": {"limit": 1}}},
		},
	})

	built := 0
	fr := internal.NewFilterRegistry()
	require.NoError(t, fr.Register("counting", func(attrs map[string]any) (internal.Filter, error) {
		built++
		return passThrough(attrs)
	}))
	manager := internal.NewFilterManager(fr, mods, []internal.FilterDescriptor{{ID: "count", Class: "counting", Enable: true}}, nil, nil)
	loader := internal.NewLoader(reg, mods)

	for _, action := range []string{"Checkout", "Checkout", "Cart", "Cart"} {
		entry, err := loader.Load("shop", action)
		require.NoError(t, err)
		_, err = manager.Build(entry)
		require.NoError(t, err)
	}

	assert.Equal(t, 2, built)
}

func TestFilterManager_Validate(t *testing.T) {
	t.Parallel()

	mods := internal.NewModules(&internal.Module{
		Name:    "shop",
		Filters: []internal.FilterDescriptor{{ID: "csrf", Class: "csrf", Enable: true}},
	})
	manager := internal.NewFilterManager(internal.NewFilterRegistry(), mods, nil, nil, nil)

	require.ErrorIs(t, manager.Validate(), internal.ErrUnknownFilterClass)
}
