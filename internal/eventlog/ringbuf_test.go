package eventlog

import "testing"

func TestRingBufferWraps(t *testing.T) {
	rb := NewRingBuffer(3)
	for i := 1; i <= 5; i++ {
		rb.Push(Event{Kind: KindRequest, Count: i})
	}

	if rb.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", rb.Len())
	}
	got := rb.Last(10)
	for i, want := range []int{3, 4, 5} {
		if got[i].Count != want {
			t.Errorf("Last[%d].Count = %d, want %d", i, got[i].Count, want)
		}
	}
}

func TestRingBufferLastEmpty(t *testing.T) {
	rb := NewRingBuffer(0)
	if got := rb.Last(5); len(got) != 0 {
		t.Errorf("expected empty slice, got %d events", len(got))
	}
	if rb.Last(0) != nil {
		t.Error("Last(0) should be nil")
	}
}

func TestRingBufferCopiesExtra(t *testing.T) {
	rb := NewRingBuffer(2)
	extra := map[string]any{"candidate": "charlles"}
	rb.Push(Event{Kind: KindCandidate, Extra: extra})
	extra["candidate"] = "sheila"

	if got := rb.Last(1)[0].Extra["candidate"]; got != "charlles" {
		t.Errorf("Extra mutated through caller map: %v", got)
	}
}

func TestRingBufferCount(t *testing.T) {
	rb := NewRingBuffer(8)
	rb.Push(Event{Kind: KindRequest})
	rb.Push(Event{Kind: KindRequest})
	rb.Push(Event{Kind: KindRequestError})

	counts := rb.Count()
	if counts[KindRequest] != 2 || counts[KindRequestError] != 1 {
		t.Errorf("unexpected counts: %v", counts)
	}
}
