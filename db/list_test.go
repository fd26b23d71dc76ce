package db

import (
	"reflect"
	"testing"
)

func TestListPushPopRemoveClear(t *testing.T) {
	l := newList[string](1, newTestLog())

	for _, v := range []string{"a", "b", "c"} {
		if err := l.Push(v); err != nil {
			t.Fatalf("push: %v", err)
		}
	}
	if !reflect.DeepEqual(l.Data(), []string{"a", "b", "c"}) {
		t.Fatalf("unexpected data: %v", l.Data())
	}

	v, ok, err := l.Remove(1)
	if err != nil {
		t.Fatalf("remove: %v", err)
	}
	if !ok || v != "b" {
		t.Fatalf("expected removed value b, got %v %v", v, ok)
	}
	if !reflect.DeepEqual(l.Data(), []string{"a", "c"}) {
		t.Fatalf("unexpected data after remove: %v", l.Data())
	}

	popped, ok, err := l.Pop()
	if err != nil {
		t.Fatalf("pop: %v", err)
	}
	if !ok || popped != "c" {
		t.Fatalf("expected popped c, got %v %v", popped, ok)
	}

	if err := l.Clear(); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if len(l.Data()) != 0 {
		t.Fatalf("expected empty after clear, got %v", l.Data())
	}
}

func TestListRemoveOutOfRange(t *testing.T) {
	l := newList[int](1, newTestLog())
	if _, ok, err := l.Remove(0); err != nil || ok {
		t.Fatalf("expected ok=false, err=nil removing from an empty list, got ok=%v err=%v", ok, err)
	}
}

func TestListInsertShiftsRight(t *testing.T) {
	l := newList[string](1, newTestLog())
	for _, v := range []string{"a", "c"} {
		if err := l.Push(v); err != nil {
			t.Fatalf("push: %v", err)
		}
	}
	if err := l.Insert(1, "b"); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if !reflect.DeepEqual(l.Data(), []string{"a", "b", "c"}) {
		t.Fatalf("unexpected data after insert: %v", l.Data())
	}
}

func TestListCompactReplay(t *testing.T) {
	log := newTestLog()
	a := newList[int](1, log)
	for _, v := range []int{1, 2, 3} {
		if err := a.Push(v); err != nil {
			t.Fatalf("push: %v", err)
		}
	}
	if _, _, err := a.Pop(); err != nil {
		t.Fatalf("pop: %v", err)
	}

	framed, err := a.compactBytes()
	if err != nil {
		t.Fatalf("compact: %v", err)
	}
	records, incomplete := parseRecords(framed)
	if incomplete {
		t.Fatalf("expected complete parse")
	}

	b := newList[int](1, log)
	for _, rec := range records {
		if err := b.applyBytes(rec.payload); err != nil {
			t.Fatalf("apply: %v", err)
		}
	}
	if !reflect.DeepEqual(a.Data(), b.Data()) {
		t.Fatalf("replay mismatch: %v vs %v", a.Data(), b.Data())
	}
}
