package arena

import "testing"

func TestAddReturnsSequentialIDs(t *testing.T) {
	var p Pool[int]
	a := p.Add(10)
	b := p.Add(20)
	if a != 0 || b != 1 {
		t.Fatalf("expected sequential IDs 0,1, got %d,%d", a, b)
	}
	if *p.Get(a) != 10 || *p.Get(b) != 20 {
		t.Error("Get did not return the values that were added")
	}
}

func TestReservePreservesPointerStability(t *testing.T) {
	var p Pool[int]
	p.Reserve(8)
	id := p.Add(1)
	ptr := p.Get(id)
	for i := 0; i < 7; i++ {
		p.Add(i)
	}
	if p.Get(id) != ptr {
		t.Error("pointer into a reserved pool must stay stable across Add calls within capacity")
	}
}

func TestGetOutOfRangePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected a panic for an out-of-range ID")
		}
	}()
	var p Pool[int]
	p.Get(0)
}

func TestResetClearsLength(t *testing.T) {
	var p Pool[int]
	p.Add(1)
	p.Add(2)
	p.Reset()
	if p.Len() != 0 {
		t.Errorf("expected length 0 after Reset, got %d", p.Len())
	}
}

func TestAllVisitsInOrder(t *testing.T) {
	var p Pool[int]
	p.Add(5)
	p.Add(6)
	p.Add(7)
	var seen []int
	p.All(func(id ID, v *int) {
		seen = append(seen, *v)
	})
	if len(seen) != 3 || seen[0] != 5 || seen[2] != 7 {
		t.Errorf("unexpected visit order: %v", seen)
	}
}
