package runner_test

import (
	"errors"
	"testing"

	"github.com/aretw0/settle/internal/testutils"
	"github.com/aretw0/settle/pkg/domain"
	"github.com/aretw0/settle/pkg/runner"
	"github.com/aretw0/settle/pkg/scenario"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const cartScenario = `
name: cart
initial:
  cart:
    items: []
    total: 0
subscribers:
  - name: totals
    watch: [cart.items]
    reactions:
      - when: cart.items
        ops:
          - {op: set, path: cart.dirty, value: true}
  - name: audit
    watch: [cart]
  - name: guard
    watch: [locked]
    reactions:
      - when: locked
        ops:
          - {op: set, path: missing.x, value: 1}
steps:
  - name: add item
    ops:
      - {op: append, path: cart.items, value: {sku: A1}}
  - name: broken
    ops:
      - {op: set, path: cart.total.x, value: 1}
  - ops:
      - {op: set, path: locked, value: true}
`

type recorder struct {
	info          runner.RunInfo
	notifications []runner.Notification
	steps         []runner.StepResult
	summary       *runner.Summary
	startErr      error
}

func (r *recorder) Start(info runner.RunInfo) error {
	r.info = info
	return r.startErr
}

func (r *recorder) Notification(n runner.Notification) error {
	r.notifications = append(r.notifications, n)
	return nil
}

func (r *recorder) StepDone(res runner.StepResult) error {
	r.steps = append(r.steps, res)
	return nil
}

func (r *recorder) Finish(sum runner.Summary) error {
	r.summary = &sum
	return nil
}

func parse(t *testing.T, src string) *scenario.Document {
	t.Helper()
	doc, err := scenario.Parse([]byte(src), scenario.FormatYAML)
	require.NoError(t, err)
	return doc
}

func TestRun_Cart(t *testing.T) {
	rec := &recorder{}
	sum, err := runner.Run(parse(t, cartScenario), rec, runner.WithRunID("run-1"))
	require.NoError(t, err)

	assert.Equal(t, runner.RunInfo{
		ID:          "run-1",
		Scenario:    "cart",
		Subscribers: []string{"totals", "audit", "guard"},
		Steps:       3,
	}, rec.info)

	require.Len(t, rec.steps, 3)

	add := rec.steps[0]
	assert.Equal(t, "add item", add.Name)
	assert.Empty(t, add.Error)
	assert.Equal(t, []string{"cart.dirty", "cart.items.0"}, add.Changes)
	assert.Equal(t, 2, add.Passes)
	assert.Equal(t, 4, add.Notifications, "pass 2 also invokes listeners whose filters do not match")
	assert.False(t, add.Failed())

	broken := rec.steps[1]
	assert.Contains(t, broken.Error, domain.ErrNotContainer.Error())
	assert.Empty(t, broken.Changes)
	assert.Zero(t, broken.Passes)

	guarded := rec.steps[2]
	assert.Equal(t, "step 3", guarded.Name)
	assert.Empty(t, guarded.Error)
	require.Len(t, guarded.Faults, 1)
	assert.Equal(t, "guard", guarded.Faults[0].Subscriber)
	assert.Contains(t, guarded.Faults[0].Error, "reaction on locked")

	assert.Equal(t, []runner.Notification{
		{Step: "add item", Subscriber: "totals", Pass: 1, Changed: []string{"cart.items"}, Reactions: 1},
		{Step: "add item", Subscriber: "audit", Pass: 2, Changed: []string{"cart"}},
		{Step: "step 3", Subscriber: "guard", Pass: 1, Changed: []string{"locked"}, Reactions: 1},
	}, rec.notifications)

	require.NotNil(t, rec.summary)
	assert.Equal(t, *rec.summary, *sum)
	assert.Equal(t, "run-1", sum.ID)
	assert.Equal(t, 3, sum.Steps)
	assert.Equal(t, 2, sum.Failed)
	assert.Equal(t, map[string]any{
		"cart": map[string]any{
			"items": []any{map[string]any{"sku": "A1"}},
			"total": 0,
			"dirty": true,
		},
		"locked": true,
	}, sum.State)
}

func TestRun_StopOnError(t *testing.T) {
	rec := &recorder{}
	sum, err := runner.Run(parse(t, cartScenario), rec, runner.WithStopOnError(true))
	require.NoError(t, err)
	assert.Equal(t, 2, sum.Steps)
	assert.Len(t, rec.steps, 2)
}

func TestRun_GeneratesRunID(t *testing.T) {
	sum, err := runner.Run(parse(t, cartScenario), nil)
	require.NoError(t, err)
	_, err = uuid.Parse(sum.ID)
	assert.NoError(t, err)
}

func TestRun_ReactionLimit(t *testing.T) {
	doc := parse(t, `
initial: {items: []}
subscribers:
  - name: echo
    reactions:
      - when: items
        ops: [{op: append, path: items, value: again}]
steps:
  - ops: [{op: append, path: items, value: first}]
`)
	rec := &recorder{}
	sum, err := runner.Run(doc, rec, runner.WithReactionLimit(5))
	require.NoError(t, err)

	require.Len(t, rec.steps, 1)
	require.Len(t, rec.steps[0].Faults, 1)
	assert.Contains(t, rec.steps[0].Faults[0].Error, runner.ErrReactionLimit.Error())

	items := sum.State.(map[string]any)["items"].([]any)
	assert.Len(t, items, 6)
}

func TestRun_Hooks(t *testing.T) {
	settled := 0
	_, err := runner.Run(parse(t, cartScenario), nil, runner.WithHooks(domain.LifecycleHooks{
		OnSettle: func(*domain.SettleEvent) { settled++ },
	}))
	require.NoError(t, err)
	assert.Equal(t, 2, settled, "the failing step never settles")
}

func TestRun_Errors(t *testing.T) {
	_, err := runner.Run(&scenario.Document{Steps: []scenario.Step{{Ops: []scenario.Op{{Op: "nope"}}}}}, nil)
	require.Error(t, err)
	assert.NotEmpty(t, scenario.ValidationErrors(err))

	boom := errors.New("closed")
	_, err = runner.Run(parse(t, cartScenario), &recorder{startErr: boom})
	assert.ErrorIs(t, err, boom)
}

func TestRun_ExampleScenarios(t *testing.T) {
	tests := []struct {
		file   string
		steps  int
		failed int
	}{
		{"cart.yaml", 5, 1},
		{"thermostat.json", 1, 0},
	}
	for _, tt := range tests {
		t.Run(tt.file, func(t *testing.T) {
			doc, err := scenario.Load(testutils.ExampleScenario(t, tt.file))
			require.NoError(t, err)

			rec := &recorder{}
			sum, err := runner.Run(doc, rec)
			require.NoError(t, err)
			assert.Equal(t, tt.steps, sum.Steps)
			assert.Equal(t, tt.failed, sum.Failed)
		})
	}
}

func TestRun_ToggleStepHasNoNotifications(t *testing.T) {
	doc, err := scenario.Load(testutils.ExampleScenario(t, "cart.yaml"))
	require.NoError(t, err)

	rec := &recorder{}
	_, err = runner.Run(doc, rec)
	require.NoError(t, err)

	rename := rec.steps[1]
	assert.Equal(t, "rename user and back", rename.Name)
	assert.Empty(t, rename.Changes)
	assert.Zero(t, rename.Notifications)
	for _, n := range rec.notifications {
		assert.NotEqual(t, "rename user and back", n.Step)
	}
}
