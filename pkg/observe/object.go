package observe

import (
	"fmt"
	"strconv"

	"github.com/aretw0/settle/pkg/domain"
)

// Object is a façade over one container of the state graph.
//
// Reads return child containers as further façades and leaves unchanged.
// Writes through a mutable façade are applied to the node and then reported
// exactly once; writes that fail are neither applied nor reported.
type Object struct {
	w    *Wrapper
	ref  domain.Ref
	path domain.Path
}

// Descriptor describes a property definition. A property defined with
// Writable false rejects later writes, redefinitions and deletions.
type Descriptor struct {
	Value    any
	Writable bool
}

// Ref returns the handle of the underlying node.
func (o *Object) Ref() domain.Ref { return o.ref }

// Path returns the location of this façade in the graph.
func (o *Object) Path() domain.Path { return o.path.Clone() }

// ReadOnly reports whether writes through o are rejected.
func (o *Object) ReadOnly() bool { return o.w.readOnly }

// IsList reports whether o is a list.
func (o *Object) IsList() bool { return o.node().list }

// Len returns the number of keys of an object, or the number of slots of a list.
func (o *Object) Len() int { return o.node().size() }

// Keys returns object keys in insertion order, or the indices of a list that
// hold a value.
func (o *Object) Keys() []string { return o.node().keyList() }

// Has reports whether key holds a value.
func (o *Object) Has(key string) bool {
	_, ok := o.node().lookup(key)
	return ok
}

// Lookup returns the value at key and whether it exists.
func (o *Object) Lookup(key string) (any, bool) {
	v, ok := o.node().lookup(key)
	if !ok {
		return nil, false
	}
	return o.w.resolve(v, o.path.Append(key)), true
}

// Get returns the value at key, or nil if absent.
func (o *Object) Get(key string) any {
	v, _ := o.Lookup(key)
	return v
}

// Index returns the list element at i, or nil if absent.
func (o *Object) Index(i int) any {
	return o.Get(strconv.Itoa(i))
}

// At walks path from o and returns the value found there.
func (o *Object) At(path ...string) (any, bool) {
	var cur any = o
	for _, key := range path {
		obj, ok := cur.(*Object)
		if !ok {
			return nil, false
		}
		if cur, ok = obj.Lookup(key); !ok {
			return nil, false
		}
	}
	return cur, true
}

// Child walks path from o and returns the container found there.
func (o *Object) Child(path ...string) (*Object, error) {
	v, ok := o.At(path...)
	if !ok {
		return nil, fmt.Errorf("child %s: %w", o.path.Append(path...), domain.ErrNotContainer)
	}
	obj, ok := v.(*Object)
	if !ok {
		return nil, fmt.Errorf("child %s: %w", o.path.Append(path...), domain.ErrNotContainer)
	}
	return obj, nil
}

// Set writes v at key. Plain containers in v are copied into the graph;
// façades are stored by reference, so the node becomes reachable from both
// keys while its writes stay reported under the façade's original path.
func (o *Object) Set(key string, v any) error {
	path := o.path.Append(key)
	if o.w.readOnly {
		return fmt.Errorf("set %s: %w", path, domain.ErrReadOnly)
	}
	stored := o.w.arena.Ingest(v)
	old, err := o.node().put(key, stored)
	if err != nil {
		return fmt.Errorf("set %s: %w", path, err)
	}
	o.w.report(path, old, stored)
	return nil
}

// Define writes d.Value at key and records whether the property stays writable.
// It is tracked exactly like Set.
func (o *Object) Define(key string, d Descriptor) error {
	path := o.path.Append(key)
	if o.w.readOnly {
		return fmt.Errorf("define %s: %w", path, domain.ErrReadOnly)
	}
	n := o.node()
	stored := o.w.arena.Ingest(d.Value)
	old, err := n.put(key, stored)
	if err != nil {
		return fmt.Errorf("define %s: %w", path, err)
	}
	n.lock(key, d.Writable)
	o.w.report(path, old, stored)
	return nil
}

// Delete removes key. Deleting an absent key is a no-op and is not reported.
// A deleted inner list element leaves an empty slot; deleting the last
// element shortens the list past any trailing empty slots.
func (o *Object) Delete(key string) error {
	path := o.path.Append(key)
	if o.w.readOnly {
		return fmt.Errorf("delete %s: %w", path, domain.ErrReadOnly)
	}
	old, existed, err := o.node().remove(key)
	if err != nil {
		return fmt.Errorf("delete %s: %w", path, err)
	}
	if existed {
		o.w.report(path, old, domain.Missing)
	}
	return nil
}

// Append adds values at the end of a list, reporting one write per value.
func (o *Object) Append(values ...any) error {
	if o.w.readOnly {
		return fmt.Errorf("append %s: %w", o.path, domain.ErrReadOnly)
	}
	if !o.IsList() {
		return fmt.Errorf("append %s: %w", o.path, domain.ErrNotList)
	}
	for _, v := range values {
		if err := o.Set(strconv.Itoa(o.Len()), v); err != nil {
			return err
		}
	}
	return nil
}

// Truncate shrinks a list to n slots, reporting a deletion for every removed
// element that held a value.
func (o *Object) Truncate(n int) error {
	if o.w.readOnly {
		return fmt.Errorf("truncate %s: %w", o.path, domain.ErrReadOnly)
	}
	nd := o.node()
	if !nd.list {
		return fmt.Errorf("truncate %s: %w", o.path, domain.ErrNotList)
	}
	if n < 0 || n > len(nd.items) {
		return fmt.Errorf("truncate %s: %w", o.path, domain.ErrIndexOutOfRange)
	}
	for i := n; i < len(nd.items); i++ {
		if nd.locked[strconv.Itoa(i)] {
			return fmt.Errorf("truncate %s: %w", o.path.Append(strconv.Itoa(i)), domain.ErrNotWritable)
		}
	}
	removed := nd.items[n:]
	nd.items = nd.items[:n:n]
	for i, old := range removed {
		if _, empty := old.(hole); empty {
			continue
		}
		o.w.report(o.path.Append(strconv.Itoa(n+i)), old, domain.Missing)
	}
	return nil
}

func (o *Object) node() *node {
	return o.w.arena.node(o.ref)
}

// String renders the path of the façade, not its content.
func (o *Object) String() string {
	kind := "object"
	if o.IsList() {
		kind = "list"
	}
	return fmt.Sprintf("%s(%s)", kind, o.path)
}
