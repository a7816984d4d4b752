// Package eventlog appends raw host events as JSON lines into a
// per-session file tree, separate from curated memory.
//
// Layout under the storage root:
//
//	sessions/<session-slug>/main.jsonl
//	sessions/<session-slug>/<agent>-<sub-session-id>.jsonl
//
// Each line is a self-contained JSON object: a fixed envelope plus the
// caller's payload merged at the top level. Payload keys never overwrite
// envelope keys.
package eventlog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/marmotdev/marmot/internal/session"
)

// Well-known event names reported by the host.
const (
	EventChatMessage = "chat.message"
	EventToolCall    = "tool.call"
)

// Event is one host lifecycle event to record.
type Event struct {
	SessionID string
	Name      string
	TaskID    string
	Payload   map[string]any
}

// Writer appends events into the session file tree.
type Writer struct {
	root     string
	enabled  bool
	resolver *session.Resolver
	agents   *session.AgentTracker
}

// NewWriter creates a Writer rooted at the storage root. When enabled is
// false every Append is a no-op.
func NewWriter(root string, enabled bool, resolver *session.Resolver, agents *session.AgentTracker) *Writer {
	return &Writer{root: root, enabled: enabled, resolver: resolver, agents: agents}
}

// Enabled reports whether event logging is active.
func (w *Writer) Enabled() bool { return w.enabled }

// Append records one event as a JSON line in the session's log file,
// creating the directory tree as needed. Chat-message events that name an
// agent update the last-seen agent hint before the path is resolved, so
// the current event already lands in the agent-tagged file.
func (w *Writer) Append(e Event) error {
	if !w.enabled {
		return nil
	}
	if e.SessionID == "" {
		return fmt.Errorf("eventlog: missing session id")
	}

	if e.Name == EventChatMessage {
		if agent, ok := e.Payload["agent"].(string); ok {
			w.agents.SetAgent(e.SessionID, agent)
		}
	}

	dir, file := w.resolver.ResolvePath(e.SessionID, w.agents)
	path := filepath.Join(w.root, "sessions", dir, file)
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("eventlog: create session dir: %w", err)
	}

	line, err := json.Marshal(w.envelope(e))
	if err != nil {
		return fmt.Errorf("eventlog: encode event: %w", err)
	}
	if err := appendLine(path, string(line)); err != nil {
		return fmt.Errorf("eventlog: append: %w", err)
	}
	return nil
}

// envelope builds the event object: fixed fields first, then payload
// fields that don't collide with them.
func (w *Writer) envelope(e Event) map[string]any {
	info := w.resolver.Resolve(e.SessionID)

	obj := map[string]any{
		"ts":                  time.Now().UTC().Format(time.RFC3339Nano),
		"event":               e.Name,
		"event_id":            uuid.NewString(),
		"session_id":          e.SessionID,
		"subagent_session_id": nil,
		"parent_session_id":   nil,
		"root_session_id":     w.resolver.RootSessionID(e.SessionID),
		"task_id":             nil,
		"agent":               nil,
	}
	if info.ParentID != "" {
		obj["subagent_session_id"] = e.SessionID
		obj["parent_session_id"] = info.ParentID
	}
	if e.TaskID != "" {
		obj["task_id"] = e.TaskID
	}
	if agent := w.agents.Agent(e.SessionID); agent != "" {
		obj["agent"] = agent
	}

	for k, v := range e.Payload {
		if _, fixed := obj[k]; fixed {
			continue
		}
		obj[k] = v
	}
	return obj
}

// appendLine uses the same whole-file read-then-concatenate discipline as
// the memory store: one full line per write.
func appendLine(path, line string) error {
	existing, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	content := string(existing)
	if content != "" && !strings.HasSuffix(content, "\n") {
		content += "\n"
	}
	content += line + "\n"
	return os.WriteFile(path, []byte(content), 0o600)
}
