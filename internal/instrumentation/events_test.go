package instrumentation

import "testing"

func TestRingBufferEvictsOldestFirst(t *testing.T) {
	rb := NewRingBuffer[int](3)
	for i := 1; i <= 5; i++ {
		rb.Append(i)
	}
	got := rb.Snapshot()
	want := []int{3, 4, 5}
	if len(got) != len(want) {
		t.Fatalf("expected %d items, got %d", len(want), len(got))
	}
	for i, v := range want {
		if got[i] != v {
			t.Errorf("index %d: expected %d, got %d", i, v, got[i])
		}
	}
}

func TestRingBufferUnderCapacity(t *testing.T) {
	rb := NewRingBuffer[string](10)
	rb.Append("a")
	rb.Append("b")
	if rb.Len() != 2 {
		t.Errorf("expected length 2, got %d", rb.Len())
	}
}

func TestBuffersNextSeqMonotonic(t *testing.T) {
	b := NewBuffers(10)
	prev := uint64(0)
	for i := 0; i < 100; i++ {
		seq := b.NextSeq()
		if seq <= prev {
			t.Fatalf("sequence not monotonic: %d after %d", seq, prev)
		}
		prev = seq
	}
}

func TestBuffersRequestLifecycle(t *testing.T) {
	b := NewBuffers(10)
	b.StartRequest("req1", &NetworkEvent{ID: "req1", URL: "/api/x"})

	b.UpdateRequest("req1", func(ev *NetworkEvent) {
		ev.Status = 200
	})

	ev, ok := b.FinishRequest("req1")
	if !ok {
		t.Fatal("expected request to be found")
	}
	if ev.Status != 200 {
		t.Errorf("expected status 200, got %d", ev.Status)
	}
	if b.Network.Len() != 1 {
		t.Errorf("expected 1 network event appended, got %d", b.Network.Len())
	}

	if _, ok := b.FinishRequest("req1"); ok {
		t.Error("expected second finish of same request to fail")
	}
}

func TestBuffersUpdateUnknownRequestIsNoop(t *testing.T) {
	b := NewBuffers(10)
	b.UpdateRequest("missing", func(ev *NetworkEvent) {
		t.Error("update function should not run for unknown request")
	})
}
