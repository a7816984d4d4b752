package memtools

import (
	"context"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/marmotdev/marmot/internal/memory"
)

// UpdateTool handles the mem_update MCP tool.
type UpdateTool struct {
	store *memory.Store
}

// NewUpdateTool creates an UpdateTool.
func NewUpdateTool(store *memory.Store) *UpdateTool {
	return &UpdateTool{store: store}
}

// Definition returns the MCP tool definition for mem_update.
func (t *UpdateTool) Definition() mcp.Tool {
	return mcp.NewTool("mem_update",
		mcp.WithDescription(
			"Replace the content of an existing memory identified by scope and type. "+
				"The superseded version is kept in the audit trail. If several records match, "+
				"pass 'query' to pick the right one.",
		),
		mcp.WithString("scope",
			mcp.Required(),
			mcp.Description("Scope of the record to update (exact match)"),
		),
		mcp.WithString("type",
			mcp.Required(),
			mcp.Description("Type of the record to update (exact match)"),
		),
		mcp.WithString("content",
			mcp.Required(),
			mcp.Description("The new content"),
		),
		mcp.WithString("query",
			mcp.Description("Disambiguation query when multiple records match"),
		),
		mcp.WithString("issue",
			mcp.Description("New issue reference; omitted = inherit from the original"),
		),
		mcp.WithString("tags",
			mcp.Description("New comma-separated tags; omitted = inherit from the original"),
		),
	)
}

// Handle processes the mem_update tool call.
func (t *UpdateTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	p := memory.UpdateParams{
		Scope:   req.GetString("scope", ""),
		Type:    req.GetString("type", ""),
		Content: req.GetString("content", ""),
		Query:   req.GetString("query", ""),
	}
	if p.Scope == "" || p.Type == "" {
		return mcp.NewToolResultError("'scope' and 'type' are required"), nil
	}
	if p.Content == "" {
		return mcp.NewToolResultError("'content' is required"), nil
	}
	if issue := req.GetString("issue", ""); issue != "" {
		p.Issue = &issue
	}
	if raw := req.GetString("tags", ""); raw != "" {
		tags := parseTags(raw)
		p.Tags = &tags
	}

	updated, err := t.store.UpdateMatching(p)
	if err != nil {
		var notFound *memory.NotFoundError
		var ambiguous *memory.AmbiguousError
		switch {
		case errors.As(err, &notFound):
			return mcp.NewToolResultText(fmt.Sprintf(
				"No %s record found in scope %q — nothing updated.", p.Type, p.Scope,
			)), nil
		case errors.As(err, &ambiguous):
			return mcp.NewToolResultText(fmt.Sprintf(
				"%d %s records match scope %q. Re-run with a 'query' that identifies the one to update.",
				ambiguous.Count, p.Type, p.Scope,
			)), nil
		default:
			return mcp.NewToolResultError(fmt.Sprintf("update failed: %v", err)), nil
		}
	}

	return mcp.NewToolResultText(fmt.Sprintf(
		"Updated [%s] in scope %q — previous version archived.", updated.Type, updated.Scope,
	)), nil
}

// ─── ForgetTool ──────────────────────────────────────────────────────────────

// ForgetTool handles the mem_forget MCP tool.
type ForgetTool struct {
	store *memory.Store
}

// NewForgetTool creates a ForgetTool.
func NewForgetTool(store *memory.Store) *ForgetTool {
	return &ForgetTool{store: store}
}

// Definition returns the MCP tool definition for mem_forget.
func (t *ForgetTool) Definition() mcp.Tool {
	return mcp.NewTool("mem_forget",
		mcp.WithDescription(
			"Delete every memory matching a scope and type. Deleted records are preserved "+
				"in the audit trail with the given reason.",
		),
		mcp.WithString("scope",
			mcp.Required(),
			mcp.Description("Scope of the records to delete (exact match)"),
		),
		mcp.WithString("type",
			mcp.Required(),
			mcp.Description("Type of the records to delete (exact match)"),
		),
		mcp.WithString("reason",
			mcp.Required(),
			mcp.Description("Why these records are being deleted"),
		),
	)
}

// Handle processes the mem_forget tool call.
func (t *ForgetTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	scope := req.GetString("scope", "")
	typ := req.GetString("type", "")
	reason := req.GetString("reason", "")
	if scope == "" || typ == "" {
		return mcp.NewToolResultError("'scope' and 'type' are required"), nil
	}
	if reason == "" {
		return mcp.NewToolResultError("'reason' is required"), nil
	}

	n, err := t.store.DeleteMatching(scope, typ, reason)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("forget failed: %v", err)), nil
	}
	if n == 0 {
		return mcp.NewToolResultText(fmt.Sprintf(
			"No %s records found in scope %q — nothing deleted.", typ, scope,
		)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf(
		"Deleted %d record(s) from scope %q — archived in the audit trail.", n, scope,
	)), nil
}
