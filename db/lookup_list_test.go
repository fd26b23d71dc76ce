package db

import (
	"reflect"
	"testing"
)

func TestLookupListAbsentVsEmpty(t *testing.T) {
	ll := newLookupList[string, int](1, newTestLog(), OrderedLess[string]())

	if _, ok := ll.Data("a"); ok {
		t.Fatalf("expected key absent before creation")
	}

	if err := ll.CreateKey("a"); err != nil {
		t.Fatalf("create key: %v", err)
	}
	seq, ok := ll.Data("a")
	if !ok {
		t.Fatalf("expected key present after CreateKey")
	}
	if len(seq) != 0 {
		t.Fatalf("expected empty sequence right after creation, got %v", seq)
	}

	if err := ll.Push("a", 1); err != nil {
		t.Fatalf("push: %v", err)
	}
	if err := ll.Push("a", 2); err != nil {
		t.Fatalf("push: %v", err)
	}
	seq, ok = ll.Data("a")
	if !ok || !reflect.DeepEqual(seq, []int{1, 2}) {
		t.Fatalf("unexpected sequence: %v %v", seq, ok)
	}

	if err := ll.ClearKey("a"); err != nil {
		t.Fatalf("clear key: %v", err)
	}
	if _, ok := ll.Data("a"); ok {
		t.Fatalf("expected key absent again after ClearKey")
	}
}

func TestLookupListPushCreatesKeyImplicitly(t *testing.T) {
	ll := newLookupList[string, int](1, newTestLog(), OrderedLess[string]())
	if err := ll.Push("b", 9); err != nil {
		t.Fatalf("push: %v", err)
	}
	seq, ok := ll.Data("b")
	if !ok || !reflect.DeepEqual(seq, []int{9}) {
		t.Fatalf("unexpected sequence: %v %v", seq, ok)
	}
}

func TestLookupListRemoveAndCompactReplay(t *testing.T) {
	log := newTestLog()
	a := newLookupList[string, int](1, log, OrderedLess[string]())
	if err := a.Push("k", 1); err != nil {
		t.Fatalf("push: %v", err)
	}
	if err := a.Push("k", 2); err != nil {
		t.Fatalf("push: %v", err)
	}
	if err := a.Push("k", 3); err != nil {
		t.Fatalf("push: %v", err)
	}
	if _, err := a.Remove("k", 1); err != nil {
		t.Fatalf("remove: %v", err)
	}

	framed, err := a.compactBytes()
	if err != nil {
		t.Fatalf("compact: %v", err)
	}
	records, incomplete := parseRecords(framed)
	if incomplete {
		t.Fatalf("expected complete parse")
	}

	b := newLookupList[string, int](1, log, OrderedLess[string]())
	for _, rec := range records {
		if err := b.applyBytes(rec.payload); err != nil {
			t.Fatalf("apply: %v", err)
		}
	}
	wantSeq, _ := a.Data("k")
	gotSeq, ok := b.Data("k")
	if !ok || !reflect.DeepEqual(wantSeq, gotSeq) {
		t.Fatalf("replay mismatch: %v vs %v", wantSeq, gotSeq)
	}
}
