package memtools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/marmotdev/marmot/internal/memory"
)

// RecallTool handles the mem_recall MCP tool.
type RecallTool struct {
	store *memory.Store
}

// NewRecallTool creates a RecallTool.
func NewRecallTool(store *memory.Store) *RecallTool {
	return &RecallTool{store: store}
}

// Definition returns the MCP tool definition for mem_recall.
func (t *RecallTool) Definition() mcp.Tool {
	return mcp.NewTool("mem_recall",
		mcp.WithDescription(
			"Search persistent memory. Call this at the start of a session to recover context, "+
				"and before decisions to check for prior facts. All filters are optional.",
		),
		mcp.WithString("query",
			mcp.Description("Free-text query; records matching no query token are excluded"),
		),
		mcp.WithString("scope",
			mcp.Description("Scope filter (exact or substring match)"),
		),
		mcp.WithString("type",
			mcp.Description("Type filter (exact match)"),
		),
		mcp.WithNumber("limit",
			mcp.Description("Maximum results (default 20); the most recent matches are kept"),
		),
	)
}

// Handle processes the mem_recall tool call.
func (t *RecallTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	res, err := t.store.Recall(
		req.GetString("query", ""),
		req.GetString("scope", ""),
		req.GetString("type", ""),
		intArg(req, "limit", 0),
	)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("recall failed: %v", err)), nil
	}
	return mcp.NewToolResultText(FormatRecall(res)), nil
}

// FormatRecall renders a recall result as a markdown list under its
// summary header.
func FormatRecall(res *memory.RecallResult) string {
	var b strings.Builder
	b.WriteString(res.Header)
	b.WriteString("\n")
	for _, sr := range res.Records {
		r := sr.Record
		fmt.Fprintf(&b, "- [%s] %s: %s", r.Type, r.Scope, r.Content)
		if r.Issue != "" {
			fmt.Fprintf(&b, " (issue: %s)", r.Issue)
		}
		if len(r.Tags) > 0 {
			fmt.Fprintf(&b, " (tags: %s)", strings.Join(r.Tags, ", "))
		}
		b.WriteString("\n")
	}
	return b.String()
}
