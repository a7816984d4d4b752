package memtools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/marmotdev/marmot/internal/eventlog"
)

// LogEventTool handles the mem_log_event MCP tool. The host's lifecycle
// hooks (message sent, tool called) report through this entry point;
// events land in the per-session JSONL tree, not in curated memory.
type LogEventTool struct {
	writer *eventlog.Writer
}

// NewLogEventTool creates a LogEventTool.
func NewLogEventTool(writer *eventlog.Writer) *LogEventTool {
	return &LogEventTool{writer: writer}
}

// Definition returns the MCP tool definition for mem_log_event.
func (t *LogEventTool) Definition() mcp.Tool {
	return mcp.NewTool("mem_log_event",
		mcp.WithDescription(
			"Record a raw session event (chat message, tool call) in the per-session event log. "+
				"This is an audit trail, separate from curated memory — no-op when event logging is disabled.",
		),
		mcp.WithString("session_id",
			mcp.Required(),
			mcp.Description("Id of the session the event belongs to"),
		),
		mcp.WithString("event",
			mcp.Required(),
			mcp.Description("Event name (e.g. 'chat.message', 'tool.call')"),
		),
		mcp.WithString("task_id",
			mcp.Description("Optional task id the event is part of"),
		),
		mcp.WithString("agent",
			mcp.Description("Agent name, for chat messages produced by a named sub-agent"),
		),
		mcp.WithString("payload",
			mcp.Description("Optional JSON object with additional event fields"),
		),
	)
}

// Handle processes the mem_log_event tool call.
func (t *LogEventTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID := req.GetString("session_id", "")
	name := req.GetString("event", "")
	if sessionID == "" || name == "" {
		return mcp.NewToolResultError("'session_id' and 'event' are required"), nil
	}

	payload := map[string]any{}
	if raw := req.GetString("payload", ""); raw != "" {
		if err := json.Unmarshal([]byte(raw), &payload); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("'payload' is not a JSON object: %v", err)), nil
		}
	}
	if agent := req.GetString("agent", ""); agent != "" {
		payload["agent"] = agent
	}

	err := t.writer.Append(eventlog.Event{
		SessionID: sessionID,
		Name:      name,
		TaskID:    req.GetString("task_id", ""),
		Payload:   payload,
	})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to log event: %v", err)), nil
	}

	if !t.writer.Enabled() {
		return mcp.NewToolResultText("Event logging is disabled — event discarded."), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Logged %q for session %s", name, sessionID)), nil
}
