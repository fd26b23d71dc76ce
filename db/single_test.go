package db

import "testing"

func newTestLog() *Log {
	return &Log{config: Config{NoIO: true}}
}

func TestSingleInsertClear(t *testing.T) {
	s := newSingle[int](1, newTestLog())

	if v, ok := s.Data(); ok || v != 0 {
		t.Fatalf("expected absent zero value, got %v %v", v, ok)
	}

	prev, had, err := s.Insert(42)
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	if had {
		t.Fatalf("expected no previous value")
	}
	_ = prev

	v, ok := s.Data()
	if !ok || v != 42 {
		t.Fatalf("expected present 42, got %v %v", v, ok)
	}

	prev, had, err = s.Insert(43)
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	if !had || prev != 42 {
		t.Fatalf("expected displaced previous 42, got %v %v", prev, had)
	}

	cleared, had, err := s.Clear()
	if err != nil {
		t.Fatalf("clear: %v", err)
	}
	if !had || cleared != 43 {
		t.Fatalf("expected cleared value 43, got %v %v", cleared, had)
	}
	if _, ok := s.Data(); ok {
		t.Fatalf("expected absent after clear")
	}
}

func TestSingleCompactEmptyWhenAbsent(t *testing.T) {
	s := newSingle[string](1, newTestLog())
	out, err := s.compactBytes()
	if err != nil {
		t.Fatalf("compact: %v", err)
	}
	if out != nil {
		t.Fatalf("expected no compact output for an absent Single, got %d bytes", len(out))
	}
}

func TestSingleApplyBytesRoundTrip(t *testing.T) {
	log := newTestLog()
	a := newSingle[int](1, log)
	if _, _, err := a.Insert(7); err != nil {
		t.Fatalf("insert: %v", err)
	}

	framed, err := a.compactBytes()
	if err != nil {
		t.Fatalf("compact: %v", err)
	}
	records, incomplete := parseRecords(framed)
	if incomplete || len(records) != 1 {
		t.Fatalf("unexpected compact framing: incomplete=%v records=%d", incomplete, len(records))
	}

	b := newSingle[int](1, log)
	if err := b.applyBytes(records[0].payload); err != nil {
		t.Fatalf("apply: %v", err)
	}
	v, ok := b.Data()
	if !ok || v != 7 {
		t.Fatalf("expected replayed value 7, got %v %v", v, ok)
	}
}
