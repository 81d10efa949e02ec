/*
Package scenario defines a declarative description of a settle session: an
initial state, a set of subscribers that may react to changes with further
writes, and a sequence of steps, each applied as one update.

Scenarios are YAML (or JSON, by file extension):

	name: cart
	initial:
	  cart: {items: [], total: 0}
	subscribers:
	  - name: totals
	    watch: [cart.items]
	    reactions:
	      - when: cart.items
	        ops:
	          - {op: set, path: cart.dirty, value: true}
	steps:
	  - name: add item
	    ops:
	      - {op: append, path: cart.items, value: {sku: A1, price: 3}}

Paths are written either as a dotted string or as a list of keys; the list
form is needed for keys that contain a dot.
*/
package scenario
