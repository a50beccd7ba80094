// Package router resolves request paths to {module, action} pairs.
//
// A Table holds route definitions in declaration order. The Resolver walks the
// table and the first definition whose pattern and URI template both match the
// request wins; there is no best-match scoring, so declaration order is part of
// the configuration contract.
//
// # URI Templates
//
// Templates are "/"-delimited. A segment is either a literal or a placeholder
// prefixed with ":". A placeholder may carry a literal suffix:
//
//	/:module/:action.do     -> /blog/view-post.do binds module=blog, action=ViewPost
//	/archive/:year/:slug    -> /archive/2024/hello binds year=2024, slug=hello
//
// The :module placeholder binds the raw segment. The :action placeholder binds
// the segment in PascalCase. Every other placeholder is URL-decoded and, when a
// validation pattern is configured for it, must match that pattern.
//
// Any segment mismatch, literal or validated placeholder, rejects the whole
// definition and resolution continues with the next one.
//
// # Defaults
//
// When the path does not bind a module, it comes from the host's leftmost DNS
// label (if subdomain modules are enabled) or the definition's static forward.
// When it does not bind an action, it comes from the static forward or the
// module's default action. A definition that leaves either ambiguous is a
// configuration bug and yields ErrForwardConfig.
//
// # Access Rules
//
// A definition may restrict callers to a list of network prefixes. Callers
// outside the list are silently redirected to the rule's deny forward.
//
// # Action Stack
//
// Every resolved Route owns a Stack recording each action reached during the
// request, the original one and every internal forward. The stack only grows
// and is capped at MaxDepth entries to catch forward loops.
package router
