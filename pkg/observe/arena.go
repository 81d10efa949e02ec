package observe

import (
	"reflect"
	"strconv"

	"github.com/aretw0/settle/pkg/domain"
)

// node is one container of the state graph.
type node struct {
	list   bool
	keys   []string       // object keys in insertion order
	fields map[string]any // object values
	items  []any          // list values, hole marks a deleted slot
	locked map[string]bool
}

// hole marks a list slot whose element was deleted.
type hole struct{}

// Arena owns every container node of one state graph.
// Nodes are never freed while the arena is alive.
type Arena struct {
	nodes []*node
}

// NewArena creates an empty arena.
func NewArena() *Arena {
	return &Arena{}
}

// Len returns the number of nodes ever allocated.
func (a *Arena) Len() int {
	return len(a.nodes)
}

func (a *Arena) alloc(n *node) domain.Ref {
	a.nodes = append(a.nodes, n)
	return domain.Ref(len(a.nodes) - 1)
}

func (a *Arena) node(ref domain.Ref) *node {
	return a.nodes[ref]
}

// Ingest converts v into its stored form. Plain containers become nodes,
// recursively, and a Ref is returned; a façade over this arena yields its own
// Ref; a façade over another arena is exported and ingested as a copy; every
// other value is returned unchanged.
//
// Containers reachable more than once from v (including cycles) become a
// single node.
func (a *Arena) Ingest(v any) any {
	return a.ingest(v, make(map[identity]domain.Ref))
}

type identity struct {
	ptr uintptr
	len int
}

func (a *Arena) ingest(v any, seen map[identity]domain.Ref) any {
	switch val := v.(type) {
	case *Object:
		if val.w.arena == a {
			return val.ref
		}
		return a.ingest(val.Export(), seen)
	case map[string]any:
		id := identity{ptr: reflect.ValueOf(val).Pointer()}
		if id.ptr != 0 {
			if ref, ok := seen[id]; ok {
				return ref
			}
		}
		n := &node{fields: make(map[string]any, len(val))}
		ref := a.alloc(n)
		if id.ptr != 0 {
			seen[id] = ref
		}
		for _, k := range sortedKeys(val) {
			n.keys = append(n.keys, k)
			n.fields[k] = a.ingest(val[k], seen)
		}
		return ref
	case []any:
		id := identity{len: len(val)}
		if cap(val) > 0 {
			id.ptr = reflect.ValueOf(val).Pointer()
			if ref, ok := seen[id]; ok {
				return ref
			}
		}
		n := &node{list: true, items: make([]any, len(val))}
		ref := a.alloc(n)
		if id.ptr != 0 {
			seen[id] = ref
		}
		for i, item := range val {
			n.items[i] = a.ingest(item, seen)
		}
		return ref
	}
	return v
}

// index parses a list key. Only canonical decimal indices are accepted.
func index(key string) (int, bool) {
	i, err := strconv.Atoi(key)
	if err != nil || i < 0 || strconv.Itoa(i) != key {
		return 0, false
	}
	return i, true
}

func (n *node) lookup(key string) (any, bool) {
	if !n.list {
		v, ok := n.fields[key]
		return v, ok
	}
	i, ok := index(key)
	if !ok || i >= len(n.items) {
		return nil, false
	}
	if _, empty := n.items[i].(hole); empty {
		return nil, false
	}
	return n.items[i], true
}

func (n *node) size() int {
	if n.list {
		return len(n.items)
	}
	return len(n.keys)
}

func (n *node) keyList() []string {
	if !n.list {
		out := make([]string, len(n.keys))
		copy(out, n.keys)
		return out
	}
	out := make([]string, 0, len(n.items))
	for i, item := range n.items {
		if _, empty := item.(hole); empty {
			continue
		}
		out = append(out, strconv.Itoa(i))
	}
	return out
}

// put stores v at key and returns the value it replaced.
func (n *node) put(key string, v any) (any, error) {
	if n.locked[key] {
		return nil, domain.ErrNotWritable
	}
	if !n.list {
		old, ok := n.fields[key]
		if !ok {
			n.keys = append(n.keys, key)
			old = domain.Missing
		}
		n.fields[key] = v
		return old, nil
	}

	i, ok := index(key)
	if !ok || i > len(n.items) {
		return nil, domain.ErrIndexOutOfRange
	}
	if i == len(n.items) {
		n.items = append(n.items, v)
		return domain.Missing, nil
	}
	old := n.items[i]
	if _, empty := old.(hole); empty {
		old = domain.Missing
	}
	n.items[i] = v
	return old, nil
}

// trim drops trailing holes so the list length ends at its last element.
func (n *node) trim() {
	end := len(n.items)
	for end > 0 {
		if _, empty := n.items[end-1].(hole); !empty {
			break
		}
		end--
	}
	clear(n.items[end:])
	n.items = n.items[:end]
}

// lock marks key as writable or not.
func (n *node) lock(key string, writable bool) {
	if writable {
		delete(n.locked, key)
		return
	}
	if n.locked == nil {
		n.locked = make(map[string]bool)
	}
	n.locked[key] = true
}

// remove deletes key and returns the removed value. Deleting an absent key
// reports existed=false and changes nothing.
func (n *node) remove(key string) (old any, existed bool, err error) {
	old, existed = n.lookup(key)
	if !existed {
		return domain.Missing, false, nil
	}
	if n.locked[key] {
		return nil, false, domain.ErrNotWritable
	}
	if n.list {
		i, _ := index(key)
		n.items[i] = hole{}
		n.trim()
		return old, true, nil
	}
	delete(n.fields, key)
	for i, k := range n.keys {
		if k == key {
			n.keys = append(n.keys[:i], n.keys[i+1:]...)
			break
		}
	}
	return old, true, nil
}
