/*
Package settle is a reentrant state container that tells its listeners exactly
what changed, once a batch of mutations has settled.

All mutation happens inside Update. Updates nest: an Update issued while
another is running joins it, and listeners are notified only when the
outermost one completes. If a listener itself updates the state, the
notification pass restarts from the first listener, so every listener ends up
seeing the changes made by the ones before it.

# Concept

The state is a graph of plain containers (map[string]any and []any) and leaf
values. Reads and writes go through an observe.Object, a handle on one
container. The handle passed to Update intercepts every write and records its
path; the handle returned by State is read-only.

Each listener owns a change window. A write that restores the value a path had
when the window opened cancels out, so a value changed and changed back is not
reported.

# Usage

	m := settle.New(map[string]any{
		"user": map[string]any{"name": "ada", "visits": 0},
	})

	m.Subscribe(func(changed domain.ChangedFunc, state *observe.Object) error {
		if changed("user", "visits") {
			visits, _ := state.At("user", "visits")
			fmt.Println("visits:", visits)
		}
		return nil
	})

	_ = m.Update(func(state *observe.Object) error {
		user, err := state.Child("user")
		if err != nil {
			return err
		}
		return user.Set("visits", 1)
	})

# Errors

Listener errors do not interrupt notification. They are handed to the
after-update hook (see WithAfterUpdate), and the ones it does not retrieve go
to the fault handler (see WithFaultHandler).

A Manager must be used from a single goroutine.
*/
package settle
