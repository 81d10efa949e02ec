package scenario_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/aretw0/settle"
	"github.com/aretw0/settle/internal/testutils"
	"github.com/aretw0/settle/pkg/domain"
	"github.com/aretw0/settle/pkg/observe"
	"github.com/aretw0/settle/pkg/scenario"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const cartYAML = `
initial:
  cart:
    items: []
    total: 0
  1: numeric key
subscribers:
  - name: totals
    watch: [cart.items, [cart, total]]
    reactions:
      - when: cart.items
        ops:
          - {op: set, path: cart.dirty, value: true}
steps:
  - name: add item
    ops:
      - op: append
        path: cart.items
        value: {sku: A1, price: 3, tags: {1: one}}
      - {op: set, path: [cart, total], value: 3}
`

func TestLoad_YAML(t *testing.T) {
	doc, err := scenario.Load(testutils.WriteScenario(t, "cart.yaml", cartYAML))
	require.NoError(t, err)

	assert.Equal(t, "cart", doc.Name)
	assert.Equal(t, "numeric key", doc.Initial["1"])

	require.Len(t, doc.Subscribers, 1)
	sub := doc.Subscribers[0]
	assert.Equal(t, []scenario.Path{{"cart", "items"}, {"cart", "total"}}, sub.Watch)
	assert.Equal(t, scenario.Path{"cart", "items"}, sub.Reactions[0].When)

	require.Len(t, doc.Steps, 1)
	ops := doc.Steps[0].Ops
	require.Len(t, ops, 2)
	assert.Equal(t, scenario.OpAppend, ops[0].Op)
	item, ok := ops[0].Value.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, 3, item["price"])
	assert.Equal(t, map[string]any{"1": "one"}, item["tags"])
}

func TestLoad_JSON(t *testing.T) {
	path := testutils.WriteScenario(t, "flags.json", `{
		"name": "flags",
		"initial": {"flags": {"beta": false}},
		"steps": [{"name": "enable", "ops": [{"op": "set", "path": "flags.beta", "value": true}]}]
	}`)

	doc, err := scenario.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "flags", doc.Name)
	assert.Equal(t, scenario.Path{"flags", "beta"}, doc.Steps[0].Ops[0].Path)
	assert.Equal(t, true, doc.Steps[0].Ops[0].Value)
}

func TestLoad_Errors(t *testing.T) {
	_, err := scenario.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, err = scenario.Load(testutils.WriteScenario(t, "bad.yaml", "steps: [unclosed"))
	assert.Error(t, err)

	_, err = scenario.Load(testutils.WriteScenario(t, "bad.json", `{"steps": [{"ops": [{"path": 3}]}]}`))
	assert.Error(t, err)
}

func TestValidate_AggregatesEveryProblem(t *testing.T) {
	doc := &scenario.Document{
		Subscribers: []scenario.Subscriber{
			{Name: "a"},
			{Name: "a"},
			{Reactions: []scenario.Reaction{{When: scenario.Path{"x"}}}},
		},
		Steps: []scenario.Step{{Ops: []scenario.Op{
			{Op: "rename", Path: scenario.Path{"x"}},
			{Op: scenario.OpSet},
			{Op: scenario.OpDelete, Path: scenario.Path{"x"}, From: scenario.Path{"y"}},
			{Op: scenario.OpSet, Path: scenario.Path{"x"}, Writable: true},
			{Op: scenario.OpDefine, Path: scenario.Path{"x"}, Value: 1, From: scenario.Path{"y"}},
		}}},
	}

	err := doc.Validate()
	require.Error(t, err)

	errs := scenario.ValidationErrors(err)
	var keys []string
	for _, e := range errs {
		var verr *scenario.ValidationError
		require.ErrorAs(t, e, &verr)
		keys = append(keys, verr.Key)
	}
	assert.Equal(t, []string{
		"subscribers[1].name",
		"subscribers[2].name",
		"subscribers[2].reactions[0].ops",
		"steps[0].ops[0].op",
		"steps[0].ops[1].path",
		"steps[0].ops[2].from",
		"steps[0].ops[3].writable",
		"steps[0].ops[4]",
	}, keys)
	assert.Contains(t, err.Error(), "8 validation errors")
}

func TestValidate_Valid(t *testing.T) {
	doc, err := scenario.Parse([]byte(cartYAML), scenario.FormatYAML)
	require.NoError(t, err)
	assert.NoError(t, doc.Validate())
	assert.Nil(t, scenario.ValidationErrors(nil))
}

func TestParsePath(t *testing.T) {
	assert.Equal(t, scenario.Path{}, scenario.ParsePath(""))
	assert.Equal(t, scenario.Path{}, scenario.ParsePath("."))
	assert.Equal(t, scenario.Path{"a", "0", "b"}, scenario.ParsePath("a.0.b"))
	assert.Equal(t, "a.0.b", scenario.ParsePath("a.0.b").String())
}

func TestFormatOf(t *testing.T) {
	assert.Equal(t, scenario.FormatJSON, scenario.FormatOf("x.JSON"))
	assert.Equal(t, scenario.FormatYAML, scenario.FormatOf("x.yml"))
	assert.Equal(t, scenario.FormatYAML, scenario.FormatOf("x"))
}

func applyAll(t *testing.T, m *settle.Manager, ops ...scenario.Op) error {
	t.Helper()
	return m.Update(func(s *observe.Object) error {
		return scenario.ApplyAll(s, ops)
	})
}

func TestApply(t *testing.T) {
	m := settle.New(map[string]any{
		"cart":  map[string]any{"items": []any{"a"}},
		"saved": map[string]any{"n": 1},
	})

	require.NoError(t, applyAll(t, m,
		scenario.Op{Op: scenario.OpAppend, Path: scenario.Path{"cart", "items"}, Value: "b"},
		scenario.Op{Op: scenario.OpSet, Path: scenario.Path{"cart", "owner"}, Value: map[string]any{"id": 7}},
		scenario.Op{Op: scenario.OpSet, Path: scenario.Path{"alias"}, From: scenario.Path{"saved"}},
		scenario.Op{Op: scenario.OpDelete, Path: scenario.Path{"cart", "items", "0"}},
		scenario.Op{Op: scenario.OpDefine, Path: scenario.Path{"version"}, Value: 2},
	))

	state := m.State()
	items, err := state.Child("cart", "items")
	require.NoError(t, err)
	assert.Equal(t, []string{"1"}, items.Keys())
	assert.Equal(t, "b", items.Index(1))

	id, _ := state.At("cart", "owner", "id")
	assert.Equal(t, 7, id)

	alias, err := state.Child("alias")
	require.NoError(t, err)
	saved, err := state.Child("saved")
	require.NoError(t, err)
	assert.Equal(t, saved.Ref(), alias.Ref())

	err = applyAll(t, m, scenario.Op{Op: scenario.OpSet, Path: scenario.Path{"version"}, Value: 3})
	assert.ErrorIs(t, err, domain.ErrNotWritable)
}

func TestApply_Errors(t *testing.T) {
	m := settle.New(map[string]any{"leaf": 1, "obj": map[string]any{}})

	tests := []struct {
		name string
		op   scenario.Op
		want error
	}{
		{"empty path", scenario.Op{Op: scenario.OpSet}, scenario.ErrEmptyPath},
		{"walk through leaf", scenario.Op{Op: scenario.OpSet, Path: scenario.Path{"leaf", "x"}, Value: 1}, domain.ErrNotContainer},
		{"append to object", scenario.Op{Op: scenario.OpAppend, Path: scenario.Path{"obj"}, Value: 1}, domain.ErrNotList},
		{"missing source", scenario.Op{Op: scenario.OpSet, Path: scenario.Path{"x"}, From: scenario.Path{"nope"}}, scenario.ErrPathNotFound},
		{"unknown op", scenario.Op{Op: "rename", Path: scenario.Path{"x"}}, scenario.ErrUnknownOp},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, applyAll(t, m, tt.op), tt.want)
		})
	}
	assert.False(t, m.HasChanged())
}

func TestLoad_ExampleScenarios(t *testing.T) {
	for _, name := range []string{"cart.yaml", "thermostat.json"} {
		t.Run(name, func(t *testing.T) {
			doc, err := scenario.Load(testutils.ExampleScenario(t, name))
			require.NoError(t, err)
			assert.NotEmpty(t, doc.Steps)
		})
	}
}
