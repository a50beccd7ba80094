// Package filters provides the built-in dispatch filters.
//
// Every filter can be constructed in Go with functional options or from
// configuration through its FilterFactory; Classes returns all of them keyed
// by the class name used in YAML:
//
//	filters:
//	  recover:   {class: recover}
//	  requestid: {class: requestid, header: X-Request-ID}
//	  logging:   {class: logging}
//	  throttle:  {class: ratelimit, rate: 5, burst: 10}
//	  auth:      {class: auth, login_module: account, login_action: Login}
//	  admin:     {class: acl, roles: [admin], packages: ["blog:/admin/*"]}
//	  pages:     {class: cache, ttl: 30, max_entries: 500, packages: ["blog:/"]}
//
// The cache filter belongs after auth and acl so that cached pages are only
// served to requests those filters let through.
//
// Filters run in the declared order. Place recover first so it sees panics
// from everything after it.
//
// # Security
//
// auth and acl read requirements from the action's behavior (login, roles).
// When a forward target is configured they forward there instead of failing;
// otherwise they return a SecurityError which the dispatcher turns into 401
// or 403.
package filters

import "github.com/dmitrymomot/dispatch/internal"

// Classes returns the factories of all built-in filters by class name.
func Classes() map[string]internal.FilterFactory {
	return map[string]internal.FilterFactory{
		"recover":     RecoverFactory,
		"requestid":   RequestIDFactory,
		"logging":     LoggingFactory,
		"auth":        AuthFactory,
		"acl":         ACLFactory,
		"maintenance": MaintenanceFactory,
		"ratelimit":   RateLimitFactory,
		"cache":       CacheFactory,
	}
}
