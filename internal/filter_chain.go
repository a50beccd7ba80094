package internal

import "github.com/dmitrymomot/dispatch/pkg/metrics"

const actionFilterID = "action"

type chainLink struct {
	filter   Filter
	id       string
	packages []string
	bypass   bool
}

// FilterChain runs filters with explicit continuation. It is built for one
// stack entry and used once.
type FilterChain struct {
	metrics *metrics.Metrics
	links   []chainLink
	pos     int
}

// Proceed runs the next applicable filter.
//
// When the current action was reached by an internal forward (the route's
// stack holds more than one entry), filters marked Bypass are skipped, so
// pre-action filters run only on the outermost dispatch. A filter restricted
// to packages is skipped unless the package of the action on top of the stack
// matches. The final action filter always runs.
func (fc *FilterChain) Proceed(c Context) error {
	forwarded := false
	pkg := ""
	if route := c.Route(); route != nil {
		forwarded = route.Stack().Size() > 1
		if top := route.Stack().Top(); top != nil {
			pkg = top.PackageName()
		}
	}

	for fc.pos < len(fc.links) {
		link := fc.links[fc.pos]
		fc.pos++
		last := fc.pos == len(fc.links)

		if !last && forwarded && link.bypass {
			continue
		}
		if !last && len(link.packages) > 0 && !MatchAnyPackage(link.packages, pkg) {
			fc.metrics.FilterSkipped(link.id)
			continue
		}
		return link.filter.DoFilter(c, fc)
	}
	return nil
}

// IDs returns the filter ids in chain order, ending with the action filter.
func (fc *FilterChain) IDs() []string {
	ids := make([]string, len(fc.links))
	for i, l := range fc.links {
		ids[i] = l.id
	}
	return ids
}
