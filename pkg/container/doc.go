// Package container is a small dependency-injection container for named
// components.
//
// Components are described by a Descriptor (usually loaded from YAML) that
// names a class, the constructor arguments, setter injections, method
// injections and an instance scope. Classes are Go factories registered up
// front in a Registry; nothing is instantiated through reflection over
// arbitrary names.
//
// # Configuration
//
//	components:
//	  mailer:
//	    class: app.Mailer
//	    constructor: [$transport, "noreply@example.com"]
//	    setter:
//	      logger: $logger        # calls SetLogger($logger)
//	    method:
//	      Warmup: [3]            # calls Warmup(3)
//	    instance: singleton      # or prototype
//
// Arguments prefixed with "$" are back-references resolved through Get, so
// dependencies are built transitively. Reference cycles are reported instead
// of recursing forever.
//
// # Scope
//
// Singleton components (the default) are cached for the container's lifetime.
// Prototype components are built on every Get and never cached. A Container is
// meant to live for a single request and is not safe for concurrent use; the
// Registry is shared and safe for concurrent reads.
//
// # Errors
//
// All failures are configuration bugs surfaced on first use:
// ErrNotFound, ErrUnknownClass, ErrInvalidArgument, ErrMissingMethod,
// ErrAccessViolation and ErrCircularReference.
package container
