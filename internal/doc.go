// Package internal implements the dispatcher behind package dispatch.
//
// This package is internal and should not be used directly. Import
// "github.com/dmitrymomot/dispatch" instead, which re-exports the public API.
//
// # Core Types
//
//   - App: builds registries from options and configuration and serves them
//   - FrontController: runs one request from session load to flush
//   - Loader: finds action classes in module packages and checks package scope
//   - FilterManager: merges global, module and behavior filter settings into a
//     FilterChain for one action
//   - Context: request-scoped state for filters, actions and views
//   - Response: buffered output, flushed once after dispatch
//
// # Dispatch Loop
//
// A forward requested with Context.Forward is not executed inside the
// calling filter. The controller loop picks it up after the chain returns,
// loads the next action and pushes it on the route's stack. The stack is
// capped at router.MaxDepth entries, which bounds the loop.
//
// # Containers
//
// Each request gets its own component container, so singleton components
// live for one request only.
package internal
