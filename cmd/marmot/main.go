// marmot: persistent memory for AI coding sessions
//
// A file-backed memory store and session event logger that integrates
// with AI coding tools over MCP (stdio). Curated facts live in
// line-oriented day files; raw session events in per-session JSONL logs.
//
// Usage:
//
//	marmot serve                       # Start MCP server (stdio transport)
//	marmot remember -t decision -s api "..."
//	marmot recall auth
package main

import (
	"os"

	"github.com/marmotdev/marmot/internal/cli"
)

func main() {
	if err := cli.RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
