package scenario

import "fmt"

// Validate checks the whole document and reports every problem at once.
func (d *Document) Validate() error {
	var errs []error
	add := func(key, reason string, value any) {
		errs = append(errs, &ValidationError{Key: key, Reason: reason, Value: value})
	}

	seen := make(map[string]bool, len(d.Subscribers))
	for i, sub := range d.Subscribers {
		key := fmt.Sprintf("subscribers[%d]", i)
		switch {
		case sub.Name == "":
			add(key+".name", "is required", nil)
		case seen[sub.Name]:
			add(key+".name", "is duplicated", sub.Name)
		}
		seen[sub.Name] = true

		for j, r := range sub.Reactions {
			rkey := fmt.Sprintf("%s.reactions[%d]", key, j)
			if len(r.Ops) == 0 {
				add(rkey+".ops", "must not be empty", nil)
			}
			errs = append(errs, validateOps(rkey, r.Ops)...)
		}
	}

	for i, step := range d.Steps {
		errs = append(errs, validateOps(fmt.Sprintf("steps[%d]", i), step.Ops)...)
	}

	if len(errs) > 0 {
		return &AggregateError{Errors: errs}
	}
	return nil
}

func validateOps(prefix string, ops []Op) []error {
	var errs []error
	for i, op := range ops {
		key := fmt.Sprintf("%s.ops[%d]", prefix, i)
		switch op.Op {
		case OpSet, OpDefine:
			if op.From != nil && op.Value != nil {
				errs = append(errs, &ValidationError{Key: key, Reason: "value and from are exclusive"})
			}
		case OpDelete, OpAppend:
			if op.From != nil {
				errs = append(errs, &ValidationError{Key: key + ".from", Reason: "only allowed for set and define"})
			}
		default:
			errs = append(errs, &ValidationError{Key: key + ".op", Reason: ErrUnknownOp.Error(), Value: op.Op})
			continue
		}
		if len(op.Path) == 0 {
			errs = append(errs, &ValidationError{Key: key + ".path", Reason: "must not be empty"})
		}
		if op.Writable && op.Op != OpDefine {
			errs = append(errs, &ValidationError{Key: key + ".writable", Reason: "only allowed for define"})
		}
	}
	return errs
}
