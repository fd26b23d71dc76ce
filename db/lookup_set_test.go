package db

import "testing"

func TestLookupSetInsertReturnsWhetherNew(t *testing.T) {
	ls := newLookupSet[string, int](1, newTestLog(), OrderedLess[string]())

	added, err := ls.Insert("a", 1)
	if err != nil || !added {
		t.Fatalf("expected newly added, got added=%v err=%v", added, err)
	}
	added, err = ls.Insert("a", 1)
	if err != nil || added {
		t.Fatalf("expected duplicate insert to report added=false, got added=%v err=%v", added, err)
	}
	added, err = ls.Insert("a", 2)
	if err != nil || !added {
		t.Fatalf("expected second distinct member to be newly added, got added=%v err=%v", added, err)
	}

	members, ok := ls.Data("a")
	if !ok || len(members) != 2 {
		t.Fatalf("expected 2 members, got %v %v", members, ok)
	}
}

func TestLookupSetRemoveAndClearKey(t *testing.T) {
	ls := newLookupSet[string, int](1, newTestLog(), OrderedLess[string]())
	if _, err := ls.Insert("a", 1); err != nil {
		t.Fatalf("insert: %v", err)
	}

	removed, err := ls.Remove("a", 1)
	if err != nil || !removed {
		t.Fatalf("expected removed=true, got %v %v", removed, err)
	}
	removed, err = ls.Remove("a", 1)
	if err != nil || removed {
		t.Fatalf("expected a second remove to report removed=false, got %v %v", removed, err)
	}

	if _, err := ls.Insert("b", 5); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if err := ls.ClearKey("b"); err != nil {
		t.Fatalf("clear key: %v", err)
	}
	if _, ok := ls.Data("b"); ok {
		t.Fatalf("expected key absent after ClearKey")
	}
}

func TestLookupSetCompactReplay(t *testing.T) {
	log := newTestLog()
	a := newLookupSet[string, int](1, log, OrderedLess[string]())
	for _, v := range []int{1, 2, 3} {
		if _, err := a.Insert("k", v); err != nil {
			t.Fatalf("insert: %v", err)
		}
	}

	framed, err := a.compactBytes()
	if err != nil {
		t.Fatalf("compact: %v", err)
	}
	records, incomplete := parseRecords(framed)
	if incomplete || len(records) != 4 {
		t.Fatalf("unexpected framing: incomplete=%v records=%d", incomplete, len(records))
	}

	b := newLookupSet[string, int](1, log, OrderedLess[string]())
	for _, rec := range records {
		if err := b.applyBytes(rec.payload); err != nil {
			t.Fatalf("apply: %v", err)
		}
	}
	members, ok := b.Data("k")
	if !ok || len(members) != 3 {
		t.Fatalf("expected 3 replayed members, got %v %v", members, ok)
	}
}

func TestLookupSetAbsentVsEmpty(t *testing.T) {
	ls := newLookupSet[string, int](1, newTestLog(), OrderedLess[string]())

	if _, ok := ls.Data("a"); ok {
		t.Fatalf("expected key absent before creation")
	}

	if err := ls.CreateKey("a"); err != nil {
		t.Fatalf("create key: %v", err)
	}
	members, ok := ls.Data("a")
	if !ok {
		t.Fatalf("expected key present after CreateKey")
	}
	if len(members) != 0 {
		t.Fatalf("expected empty set right after creation, got %v", members)
	}

	if _, err := ls.Insert("a", 1); err != nil {
		t.Fatalf("insert: %v", err)
	}
	members, ok = ls.Data("a")
	if !ok || len(members) != 1 {
		t.Fatalf("unexpected members: %v %v", members, ok)
	}

	if err := ls.ClearKey("a"); err != nil {
		t.Fatalf("clear key: %v", err)
	}
	if _, ok := ls.Data("a"); ok {
		t.Fatalf("expected key absent again after ClearKey")
	}
}
