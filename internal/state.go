package internal

// State is a dispatch lifecycle stage.
type State int

// Dispatch states, in the order a request passes through them.
const (
	StateUninitialized State = iota
	StateSessionReady
	StateRequestReady
	StateRouteResolved
	StateDispatching
	StateFlushed
	StateTerminated
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateSessionReady:
		return "session_ready"
	case StateRequestReady:
		return "request_ready"
	case StateRouteResolved:
		return "route_resolved"
	case StateDispatching:
		return "dispatching"
	case StateFlushed:
		return "flushed"
	case StateTerminated:
		return "terminated"
	default:
		return "unknown"
	}
}

// StateOf returns the lifecycle stage of a dispatcher context.
func StateOf(c Context) State {
	if rc, ok := c.(*requestContext); ok {
		return rc.state
	}
	return StateUninitialized
}
