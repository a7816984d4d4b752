// Package memtools implements the marmot MCP tool surface: curated
// memory operations (remember/recall/update/forget/list) and the raw
// event-log entry point. Each tool is a small struct exposing a
// Definition for registration and a Handle for calls, mirroring the
// store's semantics one to one.
package memtools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/marmotdev/marmot/internal/memory"
	"github.com/marmotdev/marmot/internal/record"
)

// RememberTool handles the mem_remember MCP tool.
type RememberTool struct {
	store *memory.Store
}

// NewRememberTool creates a RememberTool with the given memory store.
func NewRememberTool(store *memory.Store) *RememberTool {
	return &RememberTool{store: store}
}

// Definition returns the MCP tool definition for mem_remember.
func (t *RememberTool) Definition() mcp.Tool {
	return mcp.NewTool("mem_remember",
		mcp.WithDescription(
			"Persist a short curated fact across sessions. Call this PROACTIVELY when a decision is made, "+
				"a lesson is learned, a preference is stated, or a blocker is hit — don't wait to be asked.",
		),
		mcp.WithString("content",
			mcp.Required(),
			mcp.Description("The fact to remember, one or two sentences"),
		),
		mcp.WithString("type",
			mcp.Required(),
			mcp.Description("One of: "+strings.Join(record.Types, ", ")),
		),
		mcp.WithString("scope",
			mcp.Required(),
			mcp.Description("Area or topic the fact belongs to (e.g. 'auth', 'build')"),
		),
		mcp.WithString("issue",
			mcp.Description("Optional issue/ticket reference (no whitespace)"),
		),
		mcp.WithString("tags",
			mcp.Description("Optional comma-separated tags"),
		),
	)
}

// Handle processes the mem_remember tool call.
func (t *RememberTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	content := req.GetString("content", "")
	typ := req.GetString("type", "")
	scope := req.GetString("scope", "")

	if content == "" {
		return mcp.NewToolResultError("'content' is required"), nil
	}
	if scope == "" {
		return mcp.NewToolResultError("'scope' is required"), nil
	}
	if !record.ValidType(typ) {
		return mcp.NewToolResultError(fmt.Sprintf(
			"invalid type %q — must be one of: %s", typ, strings.Join(record.Types, ", "),
		)), nil
	}

	rec := record.Record{
		Type:    typ,
		Scope:   scope,
		Content: content,
		Issue:   req.GetString("issue", ""),
		Tags:    parseTags(req.GetString("tags", "")),
	}
	if err := t.store.Append(rec); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to save memory: %v", err)), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Remembered [%s] in scope %q", typ, scope)), nil
}

// parseTags splits a comma-separated tag string, dropping blanks.
func parseTags(s string) []string {
	if s == "" {
		return nil
	}
	var tags []string
	for _, t := range strings.Split(s, ",") {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}
