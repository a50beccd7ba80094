package filters

import (
	"github.com/dmitrymomot/dispatch/internal"
	"github.com/dmitrymomot/dispatch/pkg/router"
)

// Auth rejects anonymous users for actions whose behavior requires login.
// With a login destination set it forwards there instead of failing.
type Auth struct {
	login router.Forward
}

// NewAuth returns an auth filter. An empty module makes it return 401.
func NewAuth(loginModule, loginAction string) *Auth {
	return &Auth{login: router.Forward{Module: loginModule, Action: loginAction}}
}

// AuthFactory builds Auth from login_module and login_action.
func AuthFactory(a map[string]any) (internal.Filter, error) {
	at := attrs(a)
	module, err := at.string("login_module", "")
	if err != nil {
		return nil, err
	}
	action, err := at.string("login_action", "")
	if err != nil {
		return nil, err
	}
	return NewAuth(module, action), nil
}

// DoFilter implements internal.Filter.
func (f *Auth) DoFilter(c internal.Context, chain *internal.FilterChain) error {
	entry := c.Entry()
	if entry == nil || !entry.LoginRequired() || userLoggedIn(c) {
		return chain.Proceed(c)
	}
	if f.login.Module != "" {
		c.Forward(f.login.Module, f.login.Action)
		return nil
	}
	return internal.Unauthorized("login required")
}

func userLoggedIn(c internal.Context) bool {
	u := c.User()
	return u != nil && u.IsLogin()
}
