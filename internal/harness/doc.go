// Package harness runs storefront scenarios written in YAML.
//
// A scenario boots a fresh application (in-memory SQLite engine, in-memory
// session storage, sequential order ids, stepping clock), performs its setup
// and flow steps through the same services the CLI uses, and then evaluates
// assertions against the recorded trace, the database and the session.
//
// Every step is recorded as an invocation followed by a completion. The
// completion carries the outcome case ("ok", "validation_error",
// "order_write_error", "not_found", ...) and a small result object, so a
// trace can be compared byte for byte against a golden file.
//
// Scenario format:
//
//	name: checkout-two-items
//	description: Two cart lines become one order
//	setup:
//	  - action: reprice
//	    args: {product_id: "1", price: "40.00"}
//	flow:
//	  - invoke: add_to_cart
//	    args: {product_id: "1", size: M, color: White}
//	    expect:
//	      case: ok
//	      result: {cart_count: 1}
//	assertions:
//	  - type: row_count
//	    table: order_items
//	    count: 2
package harness
