package db

import "testing"

func TestFrameRoundTrip(t *testing.T) {
	framed := frameRecord(3, []byte("hello"))
	records, incomplete := parseRecords(framed)
	if incomplete {
		t.Fatalf("expected a complete parse")
	}
	if len(records) != 1 || records[0].id != 3 || string(records[0].payload) != "hello" {
		t.Fatalf("unexpected records: %+v", records)
	}
}

func TestParseRecordsEnvelopeIsTransparent(t *testing.T) {
	inner := append(frameRecord(1, []byte("a")), frameRecord(2, []byte("bb"))...)
	framed := frameRecord(EngineTableId, inner)

	records, incomplete := parseRecords(framed)
	if incomplete {
		t.Fatalf("expected a complete parse")
	}
	if len(records) != 2 {
		t.Fatalf("expected the envelope's two inner records, got %d", len(records))
	}
	if records[0].id != 1 || string(records[0].payload) != "a" {
		t.Fatalf("unexpected first record: %+v", records[0])
	}
	if records[1].id != 2 || string(records[1].payload) != "bb" {
		t.Fatalf("unexpected second record: %+v", records[1])
	}
}

func TestParseRecordsTruncatedTail(t *testing.T) {
	full := frameRecord(1, []byte("hello world"))
	truncated := full[:len(full)-3]

	records, incomplete := parseRecords(truncated)
	if !incomplete {
		t.Fatalf("expected incomplete=true for a truncated trailing record")
	}
	if len(records) != 0 {
		t.Fatalf("expected no complete records, got %d", len(records))
	}
}

func TestParseRecordsTruncatedHeader(t *testing.T) {
	good := frameRecord(1, []byte("ok"))
	buf := append(good, 9, 0, 0) // 3 stray bytes: not even a full header

	records, incomplete := parseRecords(buf)
	if !incomplete {
		t.Fatalf("expected incomplete=true for a truncated header")
	}
	if len(records) != 1 || string(records[0].payload) != "ok" {
		t.Fatalf("expected the one preceding complete record, got %+v", records)
	}
}
