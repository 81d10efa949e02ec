package observe_test

import (
	"testing"

	"github.com/aretw0/settle/pkg/domain"
	"github.com/aretw0/settle/pkg/observe"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIngest_SharedAndCyclic(t *testing.T) {
	shared := map[string]any{"v": 1}
	input := map[string]any{"x": shared, "y": shared}
	input["self"] = input

	arena := observe.NewArena()
	ref := arena.Ingest(input).(domain.Ref)
	root := observe.NewWrapper(arena, nil).Root(ref)

	assert.Same(t, root.Get("x"), root.Get("y"), "shared input maps become one node")
	assert.Same(t, root, root.Get("self"))
	assert.Equal(t, 2, arena.Len())

	out := root.Export().(map[string]any)
	assert.Equal(t, 1, out["x"].(map[string]any)["v"])
}

func TestExport_DeepCopy(t *testing.T) {
	root, _ := setup(t, map[string]any{"a": 1, "l": []any{map[string]any{"k": "v"}}})

	out := root.Export()
	assert.Equal(t, map[string]any{"a": 1, "l": []any{map[string]any{"k": "v"}}}, out)

	out.(map[string]any)["a"] = 99
	assert.Equal(t, 1, root.Get("a"), "exports are detached from the graph")
}

type settings struct {
	Name  string `mapstructure:"name"`
	Size  int    `mapstructure:"size"`
	Inner struct {
		Flag bool `mapstructure:"flag"`
	} `mapstructure:"inner"`
}

func TestDecodeAndFromStruct(t *testing.T) {
	var in settings
	in.Name = "demo"
	in.Size = 3
	in.Inner.Flag = true

	plain, err := observe.FromStruct(in)
	require.NoError(t, err)
	assert.Equal(t, "demo", plain["name"])
	assert.IsType(t, map[string]any{}, plain["inner"])

	root, _ := setup(t, plain)
	inner := root.Get("inner").(*observe.Object)
	require.NoError(t, inner.Set("flag", false))
	require.NoError(t, root.Set("size", "7"))

	var out settings
	require.NoError(t, root.Decode(&out))
	assert.Equal(t, "demo", out.Name)
	assert.Equal(t, 7, out.Size, "weak typing converts numeric strings")
	assert.False(t, out.Inner.Flag)
}

func TestSame(t *testing.T) {
	m := map[string]int{}
	s := []int{1, 2}
	type box struct{ V any }

	tests := []struct {
		name string
		a, b any
		want bool
	}{
		{"equal ints", 1, 1, true},
		{"different types", 1, int64(1), false},
		{"nil pair", nil, nil, true},
		{"nil and value", nil, 0, false},
		{"same ref", domain.Ref(3), domain.Ref(3), true},
		{"different refs", domain.Ref(3), domain.Ref(4), false},
		{"missing", domain.Missing, domain.Missing, true},
		{"same map", m, m, true},
		{"different maps", m, map[string]int{}, false},
		{"same slice", s, s, true},
		{"resliced", s, s[:1], false},
		{"incomparable inside struct", box{[]int{1}}, box{[]int{1}}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, observe.Same(tt.a, tt.b))
		})
	}
}
