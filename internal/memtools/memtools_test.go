package memtools

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/marmotdev/marmot/internal/eventlog"
	"github.com/marmotdev/marmot/internal/memory"
	"github.com/marmotdev/marmot/internal/record"
	"github.com/marmotdev/marmot/internal/session"
)

func makeReq(args map[string]interface{}) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Arguments = args
	return req
}

func resultText(r *mcp.CallToolResult) string {
	if r == nil || len(r.Content) == 0 {
		return ""
	}
	for _, c := range r.Content {
		if tc, ok := c.(mcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}

func newTestStore(t *testing.T) *memory.Store {
	t.Helper()
	s, err := memory.New(memory.Config{RootDir: t.TempDir(), MaxRecallResults: 20})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return s
}

// ─── mem_remember ────────────────────────────────────────────────────────────

func TestRememberTool_Definition(t *testing.T) {
	def := NewRememberTool(newTestStore(t)).Definition()
	if def.Name != "mem_remember" {
		t.Errorf("Name = %q", def.Name)
	}
}

func TestRememberTool_InvalidType(t *testing.T) {
	tool := NewRememberTool(newTestStore(t))
	res, err := tool.Handle(context.Background(), makeReq(map[string]interface{}{
		"content": "x", "type": "note", "scope": "auth",
	}))
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if !res.IsError {
		t.Error("want error result for invalid type")
	}
	if !strings.Contains(resultText(res), "invalid type") {
		t.Errorf("message = %q", resultText(res))
	}
}

func TestRememberTool_MissingContent(t *testing.T) {
	tool := NewRememberTool(newTestStore(t))
	res, err := tool.Handle(context.Background(), makeReq(map[string]interface{}{
		"type": "decision", "scope": "auth",
	}))
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if !res.IsError {
		t.Error("want error result for missing content")
	}
}

func TestRememberThenRecall(t *testing.T) {
	store := newTestStore(t)
	remember := NewRememberTool(store)
	recall := NewRecallTool(store)

	res, err := remember.Handle(context.Background(), makeReq(map[string]interface{}{
		"content": "jwt expiry is 15m",
		"type":    "decision",
		"scope":   "auth",
		"tags":    "jwt, expiry",
	}))
	if err != nil {
		t.Fatalf("remember: %v", err)
	}
	if res.IsError {
		t.Fatalf("remember failed: %s", resultText(res))
	}

	res, err = recall.Handle(context.Background(), makeReq(map[string]interface{}{
		"query": "jwt",
	}))
	if err != nil {
		t.Fatalf("recall: %v", err)
	}
	text := resultText(res)
	if !strings.Contains(text, "found all 1 of 1 total") {
		t.Errorf("recall header missing: %q", text)
	}
	if !strings.Contains(text, "- [decision] auth: jwt expiry is 15m (tags: jwt, expiry)") {
		t.Errorf("recall body = %q", text)
	}
}

// ─── mem_recall ──────────────────────────────────────────────────────────────

func TestRecallTool_LimitArgument(t *testing.T) {
	store := newTestStore(t)
	for i := 0; i < 3; i++ {
		if err := store.Append(record.Record{Type: "decision", Scope: "auth", Content: "note"}); err != nil {
			t.Fatal(err)
		}
	}

	// JSON numbers decode as float64
	res, err := NewRecallTool(store).Handle(context.Background(), makeReq(map[string]interface{}{
		"limit": float64(2),
	}))
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	text := resultText(res)
	if !strings.Contains(text, "showing last 2 of 3 filtered of 3 total") {
		t.Errorf("header = %q", text)
	}
}

// ─── mem_update ──────────────────────────────────────────────────────────────

func TestUpdateTool_NotFoundIsOrdinaryOutcome(t *testing.T) {
	res, err := NewUpdateTool(newTestStore(t)).Handle(context.Background(), makeReq(map[string]interface{}{
		"scope": "auth", "type": "decision", "content": "x",
	}))
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if res.IsError {
		t.Error("not-found must be a text result, not a tool error")
	}
	if !strings.Contains(resultText(res), "nothing updated") {
		t.Errorf("message = %q", resultText(res))
	}
}

func TestUpdateTool_AmbiguousAsksForQuery(t *testing.T) {
	store := newTestStore(t)
	for _, c := range []string{"a", "b"} {
		if err := store.Append(record.Record{Type: "decision", Scope: "auth", Content: c}); err != nil {
			t.Fatal(err)
		}
	}

	res, err := NewUpdateTool(store).Handle(context.Background(), makeReq(map[string]interface{}{
		"scope": "auth", "type": "decision", "content": "x",
	}))
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	text := resultText(res)
	if !strings.Contains(text, "2 decision records match") || !strings.Contains(text, "'query'") {
		t.Errorf("message = %q", text)
	}
}

func TestUpdateTool_Success(t *testing.T) {
	store := newTestStore(t)
	if err := store.Append(record.Record{Type: "decision", Scope: "auth", Content: "old"}); err != nil {
		t.Fatal(err)
	}

	res, err := NewUpdateTool(store).Handle(context.Background(), makeReq(map[string]interface{}{
		"scope": "auth", "type": "decision", "content": "new",
	}))
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if !strings.Contains(resultText(res), "previous version archived") {
		t.Errorf("message = %q", resultText(res))
	}

	records, err := store.ScanAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 1 || records[0].Content != "new" {
		t.Errorf("records = %+v", records)
	}
}

// ─── mem_forget ──────────────────────────────────────────────────────────────

func TestForgetTool_ZeroDeletions(t *testing.T) {
	res, err := NewForgetTool(newTestStore(t)).Handle(context.Background(), makeReq(map[string]interface{}{
		"scope": "auth", "type": "decision", "reason": "cleanup",
	}))
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if res.IsError {
		t.Error("zero deletions must not be a tool error")
	}
	if !strings.Contains(resultText(res), "nothing deleted") {
		t.Errorf("message = %q", resultText(res))
	}
}

func TestForgetTool_RequiresReason(t *testing.T) {
	res, err := NewForgetTool(newTestStore(t)).Handle(context.Background(), makeReq(map[string]interface{}{
		"scope": "auth", "type": "decision",
	}))
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if !res.IsError {
		t.Error("want error result for missing reason")
	}
}

func TestForgetTool_DeletesAndReportsCount(t *testing.T) {
	store := newTestStore(t)
	for _, c := range []string{"a", "b"} {
		if err := store.Append(record.Record{Type: "blocker", Scope: "ci", Content: c}); err != nil {
			t.Fatal(err)
		}
	}

	res, err := NewForgetTool(store).Handle(context.Background(), makeReq(map[string]interface{}{
		"scope": "ci", "type": "blocker", "reason": "resolved",
	}))
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if !strings.Contains(resultText(res), "Deleted 2 record(s)") {
		t.Errorf("message = %q", resultText(res))
	}
}

// ─── mem_list ────────────────────────────────────────────────────────────────

func TestListTool_Empty(t *testing.T) {
	res, err := NewListTool(newTestStore(t)).Handle(context.Background(), makeReq(nil))
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if got := resultText(res); got != "Memory is empty." {
		t.Errorf("message = %q", got)
	}
}

func TestListTool_Summary(t *testing.T) {
	store := newTestStore(t)
	seed := []record.Record{
		{Type: "decision", Scope: "auth", Content: "a"},
		{Type: "learning", Scope: "auth", Content: "b"},
		{Type: "decision", Scope: "db", Content: "c"},
	}
	for _, r := range seed {
		if err := store.Append(r); err != nil {
			t.Fatal(err)
		}
	}

	text := resultText(mustHandle(t, NewListTool(store)))
	if !strings.Contains(text, "3 memories") {
		t.Errorf("total missing: %q", text)
	}
	if !strings.Contains(text, "### By scope") || !strings.Contains(text, "### By type") {
		t.Errorf("sections missing: %q", text)
	}
	if !strings.Contains(text, "- **auth**: 2 (decision, learning)") {
		t.Errorf("scope line missing: %q", text)
	}
}

func mustHandle(t *testing.T, tool *ListTool) *mcp.CallToolResult {
	t.Helper()
	res, err := tool.Handle(context.Background(), makeReq(nil))
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	return res
}

// ─── mem_log_event ───────────────────────────────────────────────────────────

func newTestEventTool(t *testing.T, enabled bool) *LogEventTool {
	t.Helper()
	created := time.Date(2026, 2, 21, 0, 0, 0, 0, time.UTC).Unix()
	resolver := session.NewResolver(func(id string) (session.LookupResult, error) {
		return session.LookupResult{ID: id, Title: "Work", CreatedAt: created}, nil
	})
	w := eventlog.NewWriter(t.TempDir(), enabled, resolver, session.NewAgentTracker())
	return NewLogEventTool(w)
}

func TestLogEventTool_RequiresSessionAndEvent(t *testing.T) {
	res, err := newTestEventTool(t, true).Handle(context.Background(), makeReq(map[string]interface{}{
		"event": "tool.call",
	}))
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if !res.IsError {
		t.Error("want error result for missing session_id")
	}
}

func TestLogEventTool_BadPayload(t *testing.T) {
	res, err := newTestEventTool(t, true).Handle(context.Background(), makeReq(map[string]interface{}{
		"session_id": "s1", "event": "tool.call", "payload": "not json",
	}))
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if !res.IsError {
		t.Error("want error result for malformed payload")
	}
}

func TestLogEventTool_Logged(t *testing.T) {
	res, err := newTestEventTool(t, true).Handle(context.Background(), makeReq(map[string]interface{}{
		"session_id": "s1",
		"event":      "chat.message",
		"payload":    `{"text":"hello"}`,
	}))
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if !strings.Contains(resultText(res), `Logged "chat.message" for session s1`) {
		t.Errorf("message = %q", resultText(res))
	}
}

func TestLogEventTool_Disabled(t *testing.T) {
	res, err := newTestEventTool(t, false).Handle(context.Background(), makeReq(map[string]interface{}{
		"session_id": "s1", "event": "tool.call",
	}))
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if !strings.Contains(resultText(res), "disabled") {
		t.Errorf("message = %q", resultText(res))
	}
}
