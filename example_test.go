package settle_test

import (
	"fmt"

	"github.com/aretw0/settle"
	"github.com/aretw0/settle/pkg/domain"
	"github.com/aretw0/settle/pkg/observe"
)

// ExampleManager_Update shows that nested updates are notified once.
func ExampleManager_Update() {
	m := settle.New(map[string]any{
		"cart": map[string]any{"items": []any{}, "total": 0},
	})

	m.Subscribe(func(changed domain.ChangedFunc, state *observe.Object) error {
		total, _ := state.At("cart", "total")
		fmt.Printf("cart changed=%v items changed=%v total=%v\n",
			changed("cart"), changed("cart", "items"), total)
		return nil
	})

	addItem := func(price int) error {
		return m.Update(func(state *observe.Object) error {
			cart, err := state.Child("cart")
			if err != nil {
				return err
			}
			items, err := cart.Child("items")
			if err != nil {
				return err
			}
			if err := items.Append(price); err != nil {
				return err
			}
			return cart.Set("total", cart.Get("total").(int)+price)
		})
	}

	err := m.Update(func(*observe.Object) error {
		if err := addItem(3); err != nil {
			return err
		}
		return addItem(4)
	})
	if err != nil {
		fmt.Println("error:", err)
	}
	// Output:
	// cart changed=true items changed=true total=7
}

// ExampleManager_Subscribe shows a listener reacting to another listener's write.
func ExampleManager_Subscribe() {
	m := settle.New(map[string]any{"celsius": 0, "fahrenheit": 32})

	m.Subscribe(func(changed domain.ChangedFunc, state *observe.Object) error {
		if !changed("celsius") {
			return nil
		}
		return m.Update(func(s *observe.Object) error {
			return s.Set("fahrenheit", s.Get("celsius").(int)*9/5+32)
		})
	})
	m.Subscribe(func(changed domain.ChangedFunc, state *observe.Object) error {
		fmt.Printf("celsius=%v fahrenheit=%v\n", state.Get("celsius"), state.Get("fahrenheit"))
		return nil
	})

	_ = m.Update(func(s *observe.Object) error { return s.Set("celsius", 100) })
	// Output:
	// celsius=100 fahrenheit=212
}

func ExampleUpdateValue() {
	m := settle.New(map[string]any{"counter": 41})

	next, err := settle.UpdateValue(m, func(s *observe.Object) (int, error) {
		n := s.Get("counter").(int) + 1
		return n, s.Set("counter", n)
	})
	fmt.Println(next, err, m.HasChanged("counter"))
	// Output:
	// 42 <nil> true
}
