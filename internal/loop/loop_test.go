package loop

import "testing"

func TestQueueRunsInOrder(t *testing.T) {
	q := NewQueue(4)
	var got []int
	for i := 1; i <= 3; i++ {
		i := i
		q.Post(func() { got = append(got, i) })
	}

	if n := q.Drain(); n != 3 {
		t.Fatalf("drained = %d, want 3", n)
	}
	if len(got) != 3 || got[0] != 1 || got[1] != 2 || got[2] != 3 {
		t.Errorf("order = %v, want [1 2 3]", got)
	}
}

func TestQueuePostAfterClose(t *testing.T) {
	q := NewQueue(1)
	q.Close()
	q.Close()

	ran := false
	q.Post(func() { ran = true })
	q.Post(func() { ran = true }) // must not block on a full buffer

	q.Drain()
	if ran {
		t.Error("closure posted after Close should not run")
	}
}
