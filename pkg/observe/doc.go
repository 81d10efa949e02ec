/*
Package observe wraps a graph of plain containers so that every write is
reported to a hook with the full path of the written location.

Go has no property trapping, so the graph is never handed out raw. Plain
containers (map[string]any and []any) are ingested into an Arena and
referenced by stable domain.Ref handles; callers reach them only through
*Object façades, whose mutators apply the write and then report it.

# Wrappers

A Wrapper produces façades for one purpose: NewWrapper builds intercepting,
mutable façades; NewReadOnlyWrapper builds façades that reject every write with
domain.ErrReadOnly. Each wrapper memoizes one façade per node, so reading the
same child twice yields the same *Object.

# Leaves

Every value that is not a plain container (structs, pointers, funcs, typed
maps or slices) is a leaf. Leaves are stored and returned as-is and are never
observed below their own key.
*/
package observe
