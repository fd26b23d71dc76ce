package db

import (
	"bufio"
	"bytes"
	"strings"
	"testing"

	"golang.org/x/tools/txtar"
)

// goldenFixture is a small multi-file archive: one file per table,
// each a newline-separated "key value" list describing what to insert.
// txtar keeps the fixture readable as plain text instead of as Go
// struct literals scattered through the test.
const goldenFixture = `
-- names.txt --
z site-z
a site-a
m site-m
-- removed.txt --
z
`

func TestLookupTableGoldenCompactionOrder(t *testing.T) {
	arc := txtar.Parse([]byte(goldenFixture))
	files := make(map[string][]byte, len(arc.Files))
	for _, f := range arc.Files {
		files[f.Name] = f.Data
	}

	lt := newLookupTable[string, string](1, newTestLog(), OrderedLess[string]())

	sc := bufio.NewScanner(bytes.NewReader(files["names.txt"]))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		parts := strings.SplitN(line, " ", 2)
		if _, _, err := lt.Insert(parts[0], parts[1]); err != nil {
			t.Fatalf("insert: %v", err)
		}
	}

	sc = bufio.NewScanner(bytes.NewReader(files["removed.txt"]))
	for sc.Scan() {
		key := strings.TrimSpace(sc.Text())
		if key == "" {
			continue
		}
		if _, _, err := lt.Remove(key); err != nil {
			t.Fatalf("remove: %v", err)
		}
	}

	framed, err := lt.compactBytes()
	if err != nil {
		t.Fatalf("compact: %v", err)
	}
	records, incomplete := parseRecords(framed)
	if incomplete {
		t.Fatalf("expected a complete parse")
	}

	var gotKeys []string
	for _, rec := range records {
		raw, err := lt.log.decodeEntryPayload(rec.payload)
		if err != nil {
			t.Fatalf("decode: %v", err)
		}
		var entry lookupEntry[string, string]
		if err := (GobCodec{}).Unmarshal(raw, &entry); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		gotKeys = append(gotKeys, entry.Key)
	}

	want := []string{"a", "m"} // z was removed; remaining keys in key order
	if strings.Join(gotKeys, ",") != strings.Join(want, ",") {
		t.Fatalf("expected compact order %v, got %v", want, gotKeys)
	}
}
