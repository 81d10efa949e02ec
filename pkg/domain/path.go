package domain

import "strings"

// Path locates a node in the state graph as an ordered sequence of keys.
// List elements are addressed by their decimal index ("0", "1", ...).
type Path []string

// Append returns a new Path with keys appended. The receiver is never aliased.
func (p Path) Append(keys ...string) Path {
	out := make(Path, len(p), len(p)+len(keys))
	copy(out, p)
	return append(out, keys...)
}

// Equal reports whether both paths have the same length and pairwise-equal keys.
func (p Path) Equal(other Path) bool {
	if len(p) != len(other) {
		return false
	}
	for i := range p {
		if p[i] != other[i] {
			return false
		}
	}
	return true
}

// HasPrefix reports whether prefix is equal to, or an ancestor of, p.
func (p Path) HasPrefix(prefix Path) bool {
	if len(prefix) > len(p) {
		return false
	}
	return p[:len(prefix)].Equal(prefix)
}

// Clone returns an independent copy of p.
func (p Path) Clone() Path {
	if p == nil {
		return nil
	}
	out := make(Path, len(p))
	copy(out, p)
	return out
}

// String renders the path in dotted form. The root renders as ".".
func (p Path) String() string {
	if len(p) == 0 {
		return "."
	}
	return strings.Join(p, ".")
}

// Ref is a stable handle to a container node held in an observe.Arena.
type Ref uint32

// missing marks the absence of a value at a key.
type missing struct{}

func (missing) String() string { return "<missing>" }

// Missing is reported as the old value of a write to a key that did not exist,
// and as the new value of a deletion.
var Missing any = missing{}

// IsMissing reports whether v is the Missing sentinel.
func IsMissing(v any) bool {
	_, ok := v.(missing)
	return ok
}
