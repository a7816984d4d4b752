// Package server wires the marmot components and creates the MCP server.
//
// This is the composition root: it builds the memory store, the session
// resolver with its process-scoped caches, and the event log writer, and
// injects them into the tool handlers. No business logic lives here.
package server

import (
	"fmt"
	"log"

	"github.com/mark3labs/mcp-go/server"
	"github.com/marmotdev/marmot/internal/config"
	"github.com/marmotdev/marmot/internal/eventlog"
	"github.com/marmotdev/marmot/internal/memory"
	"github.com/marmotdev/marmot/internal/memtools"
	"github.com/marmotdev/marmot/internal/session"
)

// Version is set at build time via ldflags.
var Version = "dev"

// New creates the MCP server with all marmot tools registered.
//
// lookup is the host's session-info collaborator; it may be nil, in which
// case every session resolves to a degraded entry (raw id as slug) and
// event routing still works. If the memory store fails to initialize the
// event log keeps working: memory tools are simply not registered.
func New(settings config.Settings, lookup session.Lookup) (*server.MCPServer, error) {
	globs, err := settings.CompileScopeFilters()
	if err != nil {
		return nil, fmt.Errorf("creating server: %w", err)
	}

	s := server.NewMCPServer(
		"marmot",
		Version,
		server.WithToolCapabilities(true),
		server.WithRecovery(),
		server.WithInstructions(serverInstructions()),
	)

	// Process-scoped state, constructed once and injected — no ambient
	// singletons.
	resolver := session.NewResolver(lookup)
	agents := session.NewAgentTracker()
	writer := eventlog.NewWriter(settings.StorageRoot, settings.LoggingEnabled, resolver, agents)

	logEvent := memtools.NewLogEventTool(writer)
	s.AddTool(logEvent.Definition(), logEvent.Handle)

	store, err := memory.New(memory.Config{
		RootDir:          settings.StorageRoot,
		MaxRecallResults: settings.RecallLimit,
		ScopeFilters:     globs,
	})
	if err != nil {
		// Event logging still serves; memory tools are skipped.
		log.Printf("WARNING: memory subsystem disabled: %v", err)
		return s, nil
	}
	registerMemoryTools(s, store)

	return s, nil
}

// registerMemoryTools registers the curated-memory MCP tools.
func registerMemoryTools(s *server.MCPServer, store *memory.Store) {
	remember := memtools.NewRememberTool(store)
	s.AddTool(remember.Definition(), remember.Handle)

	recall := memtools.NewRecallTool(store)
	s.AddTool(recall.Definition(), recall.Handle)

	update := memtools.NewUpdateTool(store)
	s.AddTool(update.Definition(), update.Handle)

	forget := memtools.NewForgetTool(store)
	s.AddTool(forget.Definition(), forget.Handle)

	list := memtools.NewListTool(store)
	s.AddTool(list.Definition(), list.Handle)
}

// serverInstructions returns the system instructions that tell the AI
// how to use marmot effectively.
func serverInstructions() string {
	return `You have access to marmot, a persistent memory server for coding sessions.

## PERSISTENT MEMORY

Memory survives between conversations. Use it to build project knowledge
over time.

### When to remember (call mem_remember PROACTIVELY)
- A decision is made (type: decision)
- Something non-obvious is learned (type: learning)
- The user states a preference (type: preference)
- Work is blocked on something external (type: blocker)
- Background worth keeping (type: context) or a recurring approach (type: pattern)

Keep content to one or two sentences. Use scope as the area the fact
belongs to (e.g. "auth", "build", "api") — recall groups by scope.

### When to recall (call mem_recall)
- At the start of a session, to recover context
- Before architectural decisions, to check for prior facts
- When the user references earlier work

Use mem_list first to see which scopes exist, then mem_recall with a
scope or query. Results are capped; the most recent matches win.

### Updating and forgetting
- mem_update replaces a fact identified by scope + type; if several
  match, pass a query that identifies the right one. The old version is
  archived, never lost.
- mem_forget deletes all facts of a scope + type, with a reason. The
  audit trail keeps them.

### Event log (mem_log_event)
Raw session events (chat messages, tool calls) go to a separate
per-session log. Report the agent name on sub-agent chat messages so
their events are filed under the right name. This is an audit trail —
never use it for curated facts.`
}
