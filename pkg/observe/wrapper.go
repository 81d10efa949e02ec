package observe

import (
	"github.com/aretw0/settle/pkg/domain"
)

// ChangeFunc receives every applied write: the path of the written key, the
// value it held before (domain.Missing if absent) and the value it holds now
// (domain.Missing after a deletion). Container values are reported as Refs.
type ChangeFunc func(path domain.Path, oldValue, newValue any)

// Wrapper creates and memoizes façades over the nodes of one arena.
type Wrapper struct {
	arena    *Arena
	hook     ChangeFunc
	readOnly bool
	cache    map[domain.Ref]*Object
}

// NewWrapper creates a wrapper whose façades apply writes and report them to
// hook. hook may be nil.
func NewWrapper(arena *Arena, hook ChangeFunc) *Wrapper {
	return &Wrapper{
		arena: arena,
		hook:  hook,
		cache: make(map[domain.Ref]*Object),
	}
}

// NewReadOnlyWrapper creates a wrapper whose façades reject every write.
func NewReadOnlyWrapper(arena *Arena) *Wrapper {
	return &Wrapper{
		arena:    arena,
		readOnly: true,
		cache:    make(map[domain.Ref]*Object),
	}
}

// Arena returns the arena the wrapper reads from.
func (w *Wrapper) Arena() *Arena {
	return w.arena
}

// ReadOnly reports whether the wrapper's façades reject writes.
func (w *Wrapper) ReadOnly() bool {
	return w.readOnly
}

// Root returns the façade for ref at the empty path.
func (w *Wrapper) Root(ref domain.Ref) *Object {
	return w.Wrap(ref, nil)
}

// Wrap returns the façade for ref, creating it at path on first use.
// Later calls return the same façade, keeping the path it was created with:
// a node reachable from several keys reports its writes under the first
// path it was wrapped at, even after that key is deleted.
func (w *Wrapper) Wrap(ref domain.Ref, path domain.Path) *Object {
	if o, ok := w.cache[ref]; ok {
		return o
	}
	o := &Object{w: w, ref: ref, path: path.Clone()}
	w.cache[ref] = o
	return o
}

// resolve turns a stored value into what readers see.
func (w *Wrapper) resolve(v any, path domain.Path) any {
	if ref, ok := v.(domain.Ref); ok {
		return w.Wrap(ref, path)
	}
	return v
}

func (w *Wrapper) report(path domain.Path, oldValue, newValue any) {
	if w.hook != nil {
		w.hook(path, oldValue, newValue)
	}
}
