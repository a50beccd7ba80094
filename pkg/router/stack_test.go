package router_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/dispatch/pkg/router"
)

type entry struct {
	name string
	pkg  string
}

func (e entry) ActionName() string  { return e.name }
func (e entry) PackageName() string { return e.pkg }

func TestStack_PushBound(t *testing.T) {
	t.Parallel()

	s := &router.Stack{}
	for i := range router.MaxDepth {
		require.NoError(t, s.Push(entry{name: fmt.Sprintf("Action%d", i), pkg: "m:/"}))
	}
	require.Equal(t, 16, s.Size())

	err := s.Push(entry{name: "OneTooMany", pkg: "m:/"})
	require.ErrorIs(t, err, router.ErrStackOverflow)
	assert.Equal(t, 16, s.Size())
	assert.False(t, s.Contains("OneTooMany"))
}

func TestStack_Accessors(t *testing.T) {
	t.Parallel()

	s := &router.Stack{}
	assert.Nil(t, s.Top())
	assert.Nil(t, s.Previous())

	require.NoError(t, s.Push(entry{name: "Login", pkg: "auth:/"}))
	assert.Equal(t, "Login", s.Top().ActionName())
	assert.Nil(t, s.Previous())

	require.NoError(t, s.Push(entry{name: "Edit", pkg: "blog:/admin"}))
	assert.Equal(t, "Edit", s.Top().ActionName())
	assert.Equal(t, "blog:/admin", s.Top().PackageName())
	assert.Equal(t, "Login", s.Previous().ActionName())

	assert.True(t, s.Contains("Login"))
	assert.False(t, s.Contains("Missing"))

	entries := s.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, "Login", entries[0].ActionName())
}

func TestPascalCase(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"checkout":         "Checkout",
		"view-post":        "ViewPost",
		"list_all":         "ListAll",
		"mixed-snake_case": "MixedSnakeCase",
		"alreadyCamel":     "AlreadyCamel",
		"--leading":        "Leading",
		"":                 "",
	}

	for in, want := range tests {
		assert.Equal(t, want, router.PascalCase(in), in)
	}
}
