// Package config loads dispatcher configuration.
//
// Two sources are supported. Process settings (listen address, log level,
// Redis URL) come from the environment through ParseEnv. The dispatcher
// itself (routes, filters, modules and components) is described by a YAML
// file read with Load:
//
//	router:
//	  subdomain_modules: false
//	  unknown: {module: default, action: NotFound}
//	routes:
//	  checkout:
//	    uri: /shop/:action.do
//	    forward: {module: shop}
//	  fallback:
//	    uri: /:module/:action
//	filters:
//	  requestid: {class: requestid}
//	  auth: {class: auth, packages: ["shop:/*"]}
//	modules:
//	  shop:
//	    default_action: Index
//	    behaviors:
//	      shop:/Checkout: {login: true, roles: [customer], validate: true}
//	components:
//	  view: {class: dispatch.TemplView}
//
// The order of routes and filters is significant and is preserved as written.
package config
