package observe

import (
	"fmt"

	"github.com/aretw0/settle/pkg/domain"
	"github.com/mitchellh/mapstructure"
)

// Export returns a deep plain copy of o: map[string]any for objects, []any
// for lists (empty slots become nil). Shared nodes and cycles are preserved
// as shared maps and slices.
func (o *Object) Export() any {
	return export(o.w.arena, o.ref, make(map[domain.Ref]any))
}

func export(a *Arena, ref domain.Ref, built map[domain.Ref]any) any {
	if v, ok := built[ref]; ok {
		return v
	}
	n := a.node(ref)
	if n.list {
		out := make([]any, len(n.items))
		built[ref] = out
		for i, item := range n.items {
			out[i] = exportValue(a, item, built)
		}
		return out
	}
	out := make(map[string]any, len(n.keys))
	built[ref] = out
	for _, k := range n.keys {
		out[k] = exportValue(a, n.fields[k], built)
	}
	return out
}

func exportValue(a *Arena, v any, built map[domain.Ref]any) any {
	switch val := v.(type) {
	case domain.Ref:
		return export(a, val, built)
	case hole:
		return nil
	}
	return v
}

// Decode copies the content of o into out, which must be a pointer to a
// struct, map or slice. Fields are matched by their mapstructure tags, and
// numeric and string conversions are applied where needed.
func (o *Object) Decode(out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return fmt.Errorf("decode %s: %w", o.path, err)
	}
	if err := dec.Decode(o.Export()); err != nil {
		return fmt.Errorf("decode %s: %w", o.path, err)
	}
	return nil
}

// FromStruct converts a struct (or pointer to struct) into the plain
// map[string]any shape accepted as initial state. Nested structs become nested
// maps; slices keep their element type and are therefore leaves.
func FromStruct(v any) (map[string]any, error) {
	var out map[string]any
	if err := mapstructure.Decode(v, &out); err != nil {
		return nil, fmt.Errorf("failed to convert %T: %w", v, err)
	}
	return out, nil
}
