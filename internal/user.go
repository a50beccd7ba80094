package internal

import "github.com/dmitrymomot/dispatch/pkg/session"

// User is the security view of the current visitor.
type User interface {
	ID() string
	IsLogin() bool
	HasRole(role string) bool
	Roles() []string
}

// SessionUser reads identity and roles from a session.
type SessionUser struct {
	s *session.Session
}

// NewSessionUser wraps s.
func NewSessionUser(s *session.Session) *SessionUser {
	return &SessionUser{s: s}
}

func (u *SessionUser) ID() string               { return u.s.UserID }
func (u *SessionUser) IsLogin() bool            { return u.s.IsLogin() }
func (u *SessionUser) HasRole(role string) bool { return u.s.HasRole(role) }
func (u *SessionUser) Roles() []string          { return u.s.Roles }

// HasAnyRole reports whether u holds at least one of roles.
// An empty role list is always satisfied.
func HasAnyRole(u User, roles []string) bool {
	if len(roles) == 0 {
		return true
	}
	for _, r := range roles {
		if u.HasRole(r) {
			return true
		}
	}
	return false
}
