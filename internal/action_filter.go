package internal

import "fmt"

// actionFilter ends every chain: it runs the action on top of the stack and
// renders the view it selects.
type actionFilter struct{}

func (actionFilter) DoFilter(c Context, _ *FilterChain) error {
	entry := c.Entry()
	if entry == nil {
		return ErrActionNotFound
	}

	key, err := runAction(c, entry)
	if err != nil {
		return err
	}
	if key == "" {
		return nil
	}
	if rc, ok := c.(*requestContext); ok && rc.forwardPending() {
		return nil
	}

	v, err := c.Component(ViewComponent)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrViewNotConfigured, err)
	}
	view, ok := v.(View)
	if !ok {
		return fmt.Errorf("%w: component %q is %T", ErrViewNotConfigured, ViewComponent, v)
	}
	return view.Execute(c, entry.ActionName()+key)
}

func runAction(c Context, entry *ActionEntry) (string, error) {
	action := entry.Action()
	if entry.Validate() {
		if v, ok := action.(Validator); ok && !v.Validate(c) {
			return v.HandleError(c)
		}
	}
	return action.Execute(c)
}
