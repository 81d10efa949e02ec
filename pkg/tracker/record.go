package tracker

import "github.com/aretw0/settle/pkg/domain"

// SameFunc reports whether two stored values are the same value.
type SameFunc func(a, b any) bool

// Record applies a write of newValue at path, whose value was oldValue, to t.
//
// The first write to an untracked path records oldValue. A write that brings a
// tracked path back to its recorded prior value removes the entry, so a value
// changed and changed back nets out to no change. Any other write keeps the
// first recorded prior value.
func Record(t *Tracker, same SameFunc, path domain.Path, oldValue, newValue any) {
	prior, ok := t.Get(path)
	if !ok {
		t.Set(path, oldValue)
		return
	}
	if same(prior, newValue) {
		t.Delete(path)
	}
}
