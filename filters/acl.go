package filters

import (
	"github.com/dmitrymomot/dispatch/internal"
	"github.com/dmitrymomot/dispatch/pkg/router"
)

// ACL requires the user to hold one of the action's roles. Roles come from
// the action behavior; the filter's own roles apply when the behavior
// names none.
type ACL struct {
	deny  router.Forward
	roles []string
}

// NewACL returns an ACL filter with fallback roles.
func NewACL(roles ...string) *ACL {
	return &ACL{roles: roles}
}

// WithDenyForward makes the filter forward to module/action on denial
// instead of returning 403.
func (f *ACL) WithDenyForward(module, action string) *ACL {
	f.deny = router.Forward{Module: module, Action: action}
	return f
}

// ACLFactory builds ACL from roles, deny_module and deny_action.
func ACLFactory(a map[string]any) (internal.Filter, error) {
	at := attrs(a)
	roles, err := at.strings("roles")
	if err != nil {
		return nil, err
	}
	module, err := at.string("deny_module", "")
	if err != nil {
		return nil, err
	}
	action, err := at.string("deny_action", "")
	if err != nil {
		return nil, err
	}
	return NewACL(roles...).WithDenyForward(module, action), nil
}

// DoFilter implements internal.Filter.
func (f *ACL) DoFilter(c internal.Context, chain *internal.FilterChain) error {
	roles := f.roles
	if entry := c.Entry(); entry != nil && len(entry.Roles()) > 0 {
		roles = entry.Roles()
	}
	if len(roles) == 0 {
		return chain.Proceed(c)
	}

	u := c.User()
	if u != nil && u.IsLogin() && internal.HasAnyRole(u, roles) {
		return chain.Proceed(c)
	}
	if f.deny.Module != "" {
		c.Forward(f.deny.Module, f.deny.Action)
		return nil
	}
	if u == nil || !u.IsLogin() {
		return internal.Unauthorized("login required")
	}
	return internal.Forbidden("missing role", roles...)
}
