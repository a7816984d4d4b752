// Package record implements the line codec for curated memory records.
//
// A record is one newline-terminated line of space-separated key=value
// tokens in fixed field order:
//
//	ts=<RFC3339> type=<enum> scope=<token> content="<escaped>" [issue=<token>] [tags=<t1,t2>]
//
// Decoding is deliberately lenient: fields are extracted independently of
// their position, unknown tokens from newer format versions are ignored,
// and a line that lacks ts, type or scope decodes to nothing rather than
// an error. Deletion audit lines share the same dialect with two extra
// fields after ts and a trailing reason.
package record

import (
	"strings"
	"time"
)

// Valid record types. The set is closed: anything else is rejected at the
// tool boundary, not here — the codec round-trips whatever it is given.
const (
	TypeDecision   = "decision"
	TypeLearning   = "learning"
	TypePreference = "preference"
	TypeBlocker    = "blocker"
	TypeContext    = "context"
	TypePattern    = "pattern"
)

// Types lists the valid record types in display order.
var Types = []string{TypeDecision, TypeLearning, TypePreference, TypeBlocker, TypeContext, TypePattern}

// ValidType reports whether t is one of the closed set of record types.
func ValidType(t string) bool {
	for _, v := range Types {
		if t == v {
			return true
		}
	}
	return false
}

// Record is a single curated memory entry.
type Record struct {
	Timestamp string   `json:"ts"`
	Type      string   `json:"type"`
	Scope     string   `json:"scope"`
	Content   string   `json:"content"`
	Issue     string   `json:"issue,omitempty"`
	Tags      []string `json:"tags,omitempty"`
}

// Audit is a deletion/supersession trail entry derived from a Record.
// Audit lines are append-only and write-only; scans never read them back.
type Audit struct {
	Timestamp         string
	OriginalTimestamp string
	Record            Record
	Reason            string
}

// Now returns the current instant formatted for record timestamps.
func Now() string {
	return time.Now().UTC().Format(time.RFC3339)
}

// Encode serializes a record to its single-line form (no trailing newline).
func Encode(r Record) string {
	var b strings.Builder
	b.WriteString("ts=")
	b.WriteString(r.Timestamp)
	b.WriteString(" type=")
	b.WriteString(r.Type)
	b.WriteString(" scope=")
	b.WriteString(r.Scope)
	b.WriteString(` content="`)
	b.WriteString(escape(r.Content))
	b.WriteString(`"`)
	if r.Issue != "" {
		b.WriteString(" issue=")
		b.WriteString(r.Issue)
	}
	if len(r.Tags) > 0 {
		b.WriteString(" tags=")
		b.WriteString(strings.Join(r.Tags, ","))
	}
	return b.String()
}

// EncodeAudit serializes a deletion audit entry. The layout mirrors Encode
// with action/original_ts inserted after ts and reason appended last.
func EncodeAudit(a Audit) string {
	var b strings.Builder
	b.WriteString("ts=")
	b.WriteString(a.Timestamp)
	b.WriteString(" action=deleted original_ts=")
	b.WriteString(a.OriginalTimestamp)
	b.WriteString(" type=")
	b.WriteString(a.Record.Type)
	b.WriteString(" scope=")
	b.WriteString(a.Record.Scope)
	b.WriteString(` content="`)
	b.WriteString(escape(a.Record.Content))
	b.WriteString(`"`)
	if a.Record.Issue != "" {
		b.WriteString(" issue=")
		b.WriteString(a.Record.Issue)
	}
	if len(a.Record.Tags) > 0 {
		b.WriteString(" tags=")
		b.WriteString(strings.Join(a.Record.Tags, ","))
	}
	b.WriteString(` reason="`)
	b.WriteString(escape(a.Reason))
	b.WriteString(`"`)
	return b.String()
}

// Decode parses one line into a Record. The second return value is false
// when any of the required fields (ts, type, scope) is missing — callers
// must skip such lines. Decode never fails on malformed input.
func Decode(line string) (Record, bool) {
	var r Record
	for _, field := range splitFields(line) {
		key, value, ok := strings.Cut(field, "=")
		if !ok {
			continue
		}
		switch key {
		case "ts":
			r.Timestamp = value
		case "type":
			r.Type = value
		case "scope":
			r.Scope = value
		case "content":
			r.Content = unquote(value)
		case "issue":
			r.Issue = value
		case "tags":
			r.Tags = splitTags(value)
		}
	}
	if r.Timestamp == "" || r.Type == "" || r.Scope == "" {
		return Record{}, false
	}
	return r, true
}

// splitFields cuts a line into key=value tokens on whitespace, keeping a
// quoted value (with backslash-escaped quotes) as part of one token.
func splitFields(line string) []string {
	var fields []string
	i := 0
	for i < len(line) {
		// skip whitespace between tokens
		for i < len(line) && (line[i] == ' ' || line[i] == '\t') {
			i++
		}
		if i >= len(line) {
			break
		}
		start := i
		inQuote := false
		for i < len(line) {
			c := line[i]
			if inQuote {
				if c == '\\' && i+1 < len(line) {
					i += 2
					continue
				}
				if c == '"' {
					inQuote = false
				}
				i++
				continue
			}
			if c == '"' {
				inQuote = true
				i++
				continue
			}
			if c == ' ' || c == '\t' {
				break
			}
			i++
		}
		fields = append(fields, line[start:i])
	}
	return fields
}

// splitTags parses a comma-joined tag list, dropping empty entries.
func splitTags(v string) []string {
	var tags []string
	for _, t := range strings.Split(v, ",") {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

func escape(s string) string {
	return strings.ReplaceAll(s, `"`, `\"`)
}

// unquote strips surrounding quotes from a content value and restores
// escaped quote characters. Unterminated quotes are tolerated.
func unquote(v string) string {
	v = strings.TrimPrefix(v, `"`)
	v = strings.TrimSuffix(v, `"`)
	return strings.ReplaceAll(v, `\"`, `"`)
}
