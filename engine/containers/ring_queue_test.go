package containers

import (
	"errors"
	"testing"
)

func TestRingQueueFIFO(t *testing.T) {
	rq := NewRingQueue[int](2)
	if _, err := rq.Dequeue(); !errors.Is(err, ErrQueueEmpty) {
		t.Fatalf("expected ErrQueueEmpty, got %v", err)
	}
	for _, v := range []int{1, 2} {
		if err := rq.Enqueue(v); err != nil {
			t.Fatal(err)
		}
	}
	if err := rq.Enqueue(3); !errors.Is(err, ErrQueueFull) {
		t.Fatalf("expected ErrQueueFull, got %v", err)
	}
	if v, _ := rq.Peek(); v != 1 {
		t.Errorf("Peek() = %d, want 1", v)
	}
	if v, _ := rq.Dequeue(); v != 1 {
		t.Errorf("Dequeue() = %d, want 1", v)
	}
	// wraps around the backing slice
	if err := rq.Enqueue(3); err != nil {
		t.Fatal(err)
	}
	var got []int
	rq.Each(func(v int) { got = append(got, v) })
	if len(got) != 2 || got[0] != 2 || got[1] != 3 {
		t.Errorf("Each() visited %v, want [2 3]", got)
	}
}

func TestRingQueuePushDropsOldest(t *testing.T) {
	rq := NewRingQueue[string](3)
	for _, v := range []string{"a", "b", "c", "d", "e"} {
		rq.Push(v)
	}
	if rq.Len() != 3 || !rq.IsFull() {
		t.Fatalf("Len() = %d, want 3", rq.Len())
	}
	if v, _ := rq.Peek(); v != "c" {
		t.Errorf("Peek() = %q, want c", v)
	}

	empty := NewRingQueue[string](0)
	empty.Push("x")
	if !empty.IsEmpty() {
		t.Error("zero sized queue accepted a value")
	}
}
