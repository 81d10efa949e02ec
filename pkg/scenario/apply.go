package scenario

import (
	"fmt"

	"github.com/aretw0/settle/pkg/observe"
)

// Apply performs op against root, which is normally the mutable state handed
// to an update.
func Apply(root *observe.Object, op Op) error {
	if len(op.Path) == 0 {
		return fmt.Errorf("%s: %w", op, ErrEmptyPath)
	}

	if op.Op == OpAppend {
		list, err := root.Child(op.Path...)
		if err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		return list.Append(op.Value)
	}

	parent, err := root.Child(op.Path[:len(op.Path)-1]...)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	key := op.Path[len(op.Path)-1]

	switch op.Op {
	case OpSet:
		value, err := valueOf(root, op)
		if err != nil {
			return err
		}
		return parent.Set(key, value)
	case OpDefine:
		value, err := valueOf(root, op)
		if err != nil {
			return err
		}
		return parent.Define(key, observe.Descriptor{Value: value, Writable: op.Writable})
	case OpDelete:
		return parent.Delete(key)
	}
	return fmt.Errorf("%q: %w", op.Op, ErrUnknownOp)
}

// ApplyAll applies ops in order and stops at the first failure.
func ApplyAll(root *observe.Object, ops []Op) error {
	for i, op := range ops {
		if err := Apply(root, op); err != nil {
			return fmt.Errorf("op %d: %w", i, err)
		}
	}
	return nil
}

func valueOf(root *observe.Object, op Op) (any, error) {
	if op.From == nil {
		return op.Value, nil
	}
	v, ok := root.At(op.From...)
	if !ok {
		return nil, fmt.Errorf("%s: from %s: %w", op, op.From, ErrPathNotFound)
	}
	return v, nil
}
