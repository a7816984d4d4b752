package memtools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/marmotdev/marmot/internal/memory"
)

// ListTool handles the mem_list MCP tool.
type ListTool struct {
	store *memory.Store
}

// NewListTool creates a ListTool.
func NewListTool(store *memory.Store) *ListTool {
	return &ListTool{store: store}
}

// Definition returns the MCP tool definition for mem_list.
func (t *ListTool) Definition() mcp.Tool {
	return mcp.NewTool("mem_list",
		mcp.WithDescription(
			"Summarize persistent memory: how many records exist per scope and per type. "+
				"Use this to orient before a targeted mem_recall.",
		),
	)
}

// Handle processes the mem_list tool call.
func (t *ListTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sum, err := t.store.Summarize()
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("list failed: %v", err)), nil
	}
	return mcp.NewToolResultText(FormatSummary(sum)), nil
}

// FormatSummary renders a store summary as markdown.
func FormatSummary(sum *memory.Summary) string {
	if sum.Total == 0 {
		return "Memory is empty."
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%d memories\n\n", sum.Total)

	b.WriteString("### By scope\n")
	for _, sc := range sum.Scopes {
		fmt.Fprintf(&b, "- **%s**: %d (%s)\n", sc.Scope, sc.Count, strings.Join(sc.Types, ", "))
	}
	b.WriteString("\n### By type\n")
	for _, tc := range sum.Types {
		fmt.Fprintf(&b, "- %s: %d\n", tc.Type, tc.Count)
	}
	return b.String()
}
