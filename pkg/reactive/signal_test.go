package reactive

import "testing"

func TestSignal_GetSet(t *testing.T) {
	s := NewSignal(3)
	if got := s.Get(); got != 3 {
		t.Errorf("Get() = %d, want 3", got)
	}
	s.Set(7)
	if got := s.Get(); got != 7 {
		t.Errorf("Get() = %d, want 7", got)
	}
}

func TestSignal_Subscribe(t *testing.T) {
	s := NewSignal("")

	var got []string
	unsub := s.Subscribe(func(v string) { got = append(got, v) })

	s.Set("a")
	s.Set("b")
	unsub()
	s.Set("c")

	if len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Errorf("received %v, want [a b]", got)
	}
}

func TestSignal_MultipleSubscribers(t *testing.T) {
	s := NewSignal(0)

	a, b := 0, 0
	s.Subscribe(func(v int) { a = v })
	s.Subscribe(func(v int) { b = v })

	s.Set(42)
	if a != 42 || b != 42 {
		t.Errorf("subscribers saw %d and %d, want 42 for both", a, b)
	}
}
