package record_test

import (
	"strings"
	"testing"

	"github.com/marmotdev/marmot/internal/record"
)

// ─── Encode ──────────────────────────────────────────────────────────────────

func TestEncode_MinimalRecord(t *testing.T) {
	line := record.Encode(record.Record{
		Timestamp: "2026-09-01T10:00:00Z",
		Type:      "decision",
		Scope:     "auth",
		Content:   "use jwt with 15m expiry",
	})

	want := `ts=2026-09-01T10:00:00Z type=decision scope=auth content="use jwt with 15m expiry"`
	if line != want {
		t.Errorf("Encode = %q, want %q", line, want)
	}
}

func TestEncode_OmitsAbsentOptionalFields(t *testing.T) {
	line := record.Encode(record.Record{
		Timestamp: "2026-09-01T10:00:00Z",
		Type:      "learning",
		Scope:     "build",
		Content:   "cgo off by default",
	})

	if strings.Contains(line, "issue=") {
		t.Errorf("line contains issue token for absent issue: %q", line)
	}
	if strings.Contains(line, "tags=") {
		t.Errorf("line contains tags token for absent tags: %q", line)
	}
}

func TestEncode_FullRecord(t *testing.T) {
	line := record.Encode(record.Record{
		Timestamp: "2026-09-01T10:00:00Z",
		Type:      "blocker",
		Scope:     "ci",
		Content:   "runner out of disk",
		Issue:     "OPS-42",
		Tags:      []string{"infra", "urgent"},
	})

	want := `ts=2026-09-01T10:00:00Z type=blocker scope=ci content="runner out of disk" issue=OPS-42 tags=infra,urgent`
	if line != want {
		t.Errorf("Encode = %q, want %q", line, want)
	}
}

// ─── Decode ──────────────────────────────────────────────────────────────────

func TestDecode_MissingScopeDropped(t *testing.T) {
	_, ok := record.Decode(`ts=2026-09-01T10:00:00Z type=decision content="x"`)
	if ok {
		t.Error("line without scope should not decode")
	}
}

func TestDecode_MissingTimestampDropped(t *testing.T) {
	_, ok := record.Decode(`type=decision scope=auth content="x"`)
	if ok {
		t.Error("line without ts should not decode")
	}
}

func TestDecode_EmptyAndGarbageLines(t *testing.T) {
	for _, line := range []string{"", "   ", "not a record", "key value"} {
		if _, ok := record.Decode(line); ok {
			t.Errorf("Decode(%q) ok = true, want false", line)
		}
	}
}

func TestDecode_OrderIndependent(t *testing.T) {
	r, ok := record.Decode(`scope=auth content="x" type=decision ts=2026-09-01T10:00:00Z`)
	if !ok {
		t.Fatal("decode failed")
	}
	if r.Scope != "auth" || r.Type != "decision" || r.Timestamp != "2026-09-01T10:00:00Z" {
		t.Errorf("decoded = %+v", r)
	}
}

func TestDecode_IgnoresUnknownTokens(t *testing.T) {
	r, ok := record.Decode(`ts=2026-09-01T10:00:00Z vsn=3 type=pattern scope=api content="x" future=stuff`)
	if !ok {
		t.Fatal("decode failed")
	}
	if r.Content != "x" {
		t.Errorf("Content = %q, want %q", r.Content, "x")
	}
}

func TestDecode_ContentWithSpacesAndEquals(t *testing.T) {
	r, ok := record.Decode(`ts=2026-09-01T10:00:00Z type=context scope=cfg content="timeout = 30s, retries = 0"`)
	if !ok {
		t.Fatal("decode failed")
	}
	if r.Content != "timeout = 30s, retries = 0" {
		t.Errorf("Content = %q", r.Content)
	}
}

func TestDecode_Tags(t *testing.T) {
	r, ok := record.Decode(`ts=2026-09-01T10:00:00Z type=decision scope=api content="x" tags=a,b,c`)
	if !ok {
		t.Fatal("decode failed")
	}
	if len(r.Tags) != 3 || r.Tags[0] != "a" || r.Tags[2] != "c" {
		t.Errorf("Tags = %v, want [a b c]", r.Tags)
	}
}

// ─── Round trip ──────────────────────────────────────────────────────────────

func TestRoundTrip_AllFieldCombinations(t *testing.T) {
	records := []record.Record{
		{Timestamp: "2026-09-01T10:00:00Z", Type: "decision", Scope: "auth", Content: "plain"},
		{Timestamp: "2026-09-01T10:00:00Z", Type: "learning", Scope: "db", Content: "with issue", Issue: "DB-7"},
		{Timestamp: "2026-09-01T10:00:00Z", Type: "preference", Scope: "ui", Content: "with tags", Tags: []string{"a", "b"}},
		{Timestamp: "2026-09-01T10:00:00Z", Type: "pattern", Scope: "api", Content: "everything", Issue: "X-1", Tags: []string{"t"}},
		{Timestamp: "2026-09-01T10:00:00Z", Type: "context", Scope: "infra", Content: `say "hello" twice`},
		{Timestamp: "2026-09-01T10:00:00Z", Type: "blocker", Scope: "ci", Content: `quoted "mid" and "end"`},
	}

	for _, in := range records {
		line := record.Encode(in)
		out, ok := record.Decode(line)
		if !ok {
			t.Errorf("round trip decode failed for %q", line)
			continue
		}
		if out.Timestamp != in.Timestamp || out.Type != in.Type || out.Scope != in.Scope ||
			out.Content != in.Content || out.Issue != in.Issue {
			t.Errorf("round trip mismatch:\n in  %+v\n out %+v", in, out)
		}
		if len(out.Tags) != len(in.Tags) {
			t.Errorf("tags mismatch: in %v, out %v", in.Tags, out.Tags)
			continue
		}
		for i := range in.Tags {
			if out.Tags[i] != in.Tags[i] {
				t.Errorf("tags mismatch: in %v, out %v", in.Tags, out.Tags)
				break
			}
		}
	}
}

func TestRoundTrip_LineEquivalence(t *testing.T) {
	line := `ts=2026-09-01T10:00:00Z type=decision scope=auth content="use \"short\" tokens" issue=SEC-3 tags=jwt,expiry`
	r, ok := record.Decode(line)
	if !ok {
		t.Fatal("decode failed")
	}
	if got := record.Encode(r); got != line {
		t.Errorf("encode(decode(line)) = %q, want %q", got, line)
	}
}

// ─── Audit lines ─────────────────────────────────────────────────────────────

func TestEncodeAudit_Layout(t *testing.T) {
	line := record.EncodeAudit(record.Audit{
		Timestamp:         "2026-09-02T08:00:00Z",
		OriginalTimestamp: "2026-09-01T10:00:00Z",
		Record: record.Record{
			Timestamp: "2026-09-01T10:00:00Z",
			Type:      "blocker",
			Scope:     "ci",
			Content:   "runner out of disk",
			Issue:     "OPS-42",
		},
		Reason: "resolved upstream",
	})

	want := `ts=2026-09-02T08:00:00Z action=deleted original_ts=2026-09-01T10:00:00Z type=blocker scope=ci content="runner out of disk" issue=OPS-42 reason="resolved upstream"`
	if line != want {
		t.Errorf("EncodeAudit = %q, want %q", line, want)
	}
}

// ─── Types ───────────────────────────────────────────────────────────────────

func TestValidType(t *testing.T) {
	for _, typ := range record.Types {
		if !record.ValidType(typ) {
			t.Errorf("ValidType(%q) = false", typ)
		}
	}
	for _, typ := range []string{"", "Decision", "note", "bug"} {
		if record.ValidType(typ) {
			t.Errorf("ValidType(%q) = true", typ)
		}
	}
}
