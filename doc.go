// Package dispatch is the request-dispatch core of an MVC web framework.
//
// A request flows through one front controller:
//
//	HTTP request
//	  -> session and user loaded from the container
//	  -> route resolved from the ordered route table
//	  -> action loaded from the registry and pushed on the action stack
//	  -> filter chain (global filters, module filters, action filter)
//	  -> view rendered, before-output hooks, response flushed
//
// # Quick Start
//
//	app, err := dispatch.New(
//		dispatch.WithConfigFile("dispatch.yaml"),
//		dispatch.WithAction("shop", "", "CheckoutAction", func() dispatch.Action {
//			return dispatch.ActionFunc(func(c dispatch.Context) (string, error) {
//				c.Response().WriteString("checkout")
//				return "", nil
//			})
//		}),
//	)
//	if err != nil {
//		log.Fatal(err)
//	}
//	if err := app.Run(ctx, ":8080"); err != nil {
//		log.Fatal(err)
//	}
//
// # Routes
//
// Routes are matched in declaration order against the path. A definition
// either names a forward target or takes module and action from the path:
//
//	routes:
//	  checkout:
//	    uri: /shop/checkout
//	    forward: {module: shop, action: Checkout}
//	  default:
//	    uri: /:module/:action
//
// Without a matching route the request answers 404.
//
// # Actions and packages
//
// An action class "CheckoutAction" registered under module "shop" lives in
// package "shop:/". Registering it with a subpath places it in
// "shop:/admin". Module configuration may restrict packages with allow and
// deny lists of package patterns; "shop:/admin/*" matches the admin package
// and everything below it.
//
// An action returns a view key. A non-empty key renders the template
// ActionName+key through the "view" component; an empty key means the action
// wrote the response itself.
//
// # Filters
//
// Filters wrap action execution and call chain.Proceed to continue:
//
//	func (f *Audit) DoFilter(c dispatch.Context, chain *dispatch.FilterChain) error {
//		err := chain.Proceed(c)
//		f.record(c.Entry().ActionName(), err)
//		return err
//	}
//
// Filters are skipped on internal forwards unless configured with
// bypass: false. Package lists restrict a filter to matching packages.
//
// # Forwards
//
// Context.Forward schedules an internal dispatch to another action once the
// current chain returns. Forwards nest up to 16 actions deep.
//
// # Errors
//
// Errors ending dispatch are translated to a status with StatusOf: 404 for
// unmatched routes, the code of an HTTPError or SecurityError, 500
// otherwise. Missing or denied actions forward to the unknown action when
// one is configured.
package dispatch
