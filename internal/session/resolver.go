// Package session resolves conversation sessions into the nested file
// layout used by the event log.
//
// The host owns session metadata; this package only consumes a lookup
// collaborator and caches what it learns for the life of the process.
// A failed lookup degrades to a synthetic entry built from the raw id and
// is cached exactly like a success — failures are sticky, never retried.
package session

import (
	"strings"
	"sync"
	"time"
)

// FallbackAgent is the filename tag used when no agent name has been seen
// for a sub-agent session.
const FallbackAgent = "subagent"

// MainLogName is the fixed event log filename for root sessions.
const MainLogName = "main.jsonl"

// maxSlugTitle bounds the slugified-title part of a session slug.
const maxSlugTitle = 60

// LookupResult is what the host's session-info collaborator returns.
type LookupResult struct {
	ID        string
	Title     string
	ParentID  string
	CreatedAt int64 // unix epoch seconds
}

// Lookup fetches session metadata from the host. It may fail (host
// unreachable); the resolver absorbs failures into degraded entries.
type Lookup func(id string) (LookupResult, error)

// Info is a resolved session: host metadata plus the derived slug.
type Info struct {
	ID       string
	Title    string
	ParentID string
	Slug     string
}

// Resolver caches session resolution for the process lifetime. There is
// no eviction and no invalidation: a title or parent observed once is
// assumed stable, an accepted staleness trade-off.
type Resolver struct {
	lookup Lookup

	mu    sync.Mutex
	cache map[string]Info
}

// NewResolver creates a Resolver around the given lookup collaborator.
// A nil lookup degrades every resolution, which keeps the event log
// functional when no host connection exists.
func NewResolver(lookup Lookup) *Resolver {
	return &Resolver{lookup: lookup, cache: make(map[string]Info)}
}

// Resolve returns the session's Info, consulting the cache first. On
// lookup failure a degraded Info (raw id as title and slug, no parent)
// is cached and returned.
func (r *Resolver) Resolve(id string) Info {
	r.mu.Lock()
	if info, ok := r.cache[id]; ok {
		r.mu.Unlock()
		return info
	}
	r.mu.Unlock()

	info := Info{ID: id, Title: id, Slug: id}
	if r.lookup != nil {
		if res, err := r.lookup(id); err == nil {
			day := time.Unix(res.CreatedAt, 0).UTC().Format("2006-01-02")
			info = Info{
				ID:       res.ID,
				Title:    res.Title,
				ParentID: res.ParentID,
				Slug:     day + "-" + Slugify(res.Title),
			}
		}
	}

	r.mu.Lock()
	// first resolution wins if two raced
	if cached, ok := r.cache[id]; ok {
		info = cached
	} else {
		r.cache[id] = info
	}
	r.mu.Unlock()
	return info
}

// RootSessionID walks the parent chain to the nearest ancestor with no
// parent, falling back to the session's own id. A cycle in the chain
// stops at the first repeated id.
func (r *Resolver) RootSessionID(id string) string {
	seen := map[string]bool{}
	info := r.Resolve(id)
	for info.ParentID != "" && !seen[info.ID] {
		seen[info.ID] = true
		info = r.Resolve(info.ParentID)
	}
	return info.ID
}

// ResolvePath returns the directory slug and filename for a session's
// event log. Sub-agent sessions log into their parent's directory under
// "<agent>-<id>.jsonl"; root sessions log into their own directory as
// main.jsonl.
func (r *Resolver) ResolvePath(id string, agents *AgentTracker) (dir, file string) {
	info := r.Resolve(id)
	if info.ParentID == "" {
		return info.Slug, MainLogName
	}
	parent := r.Resolve(info.ParentID)
	agent := FallbackAgent
	if a := agents.Agent(id); a != "" {
		agent = a
	}
	return parent.Slug, agent + "-" + id + ".jsonl"
}

// Slugify lowercases a title, collapses non-alphanumeric runs into single
// hyphens, trims leading/trailing hyphens and truncates the result.
func Slugify(title string) string {
	var b strings.Builder
	lastHyphen := false
	for _, r := range strings.ToLower(title) {
		alnum := (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9')
		if alnum {
			b.WriteRune(r)
			lastHyphen = false
			continue
		}
		if !lastHyphen {
			b.WriteByte('-')
			lastHyphen = true
		}
	}
	slug := strings.Trim(b.String(), "-")
	if len(slug) > maxSlugTitle {
		slug = slug[:maxSlugTitle]
	}
	return slug
}

// ─── AgentTracker ────────────────────────────────────────────────────────────

// AgentTracker remembers the last-seen agent name per session id. It is
// process-wide state, constructed once and injected wherever needed.
type AgentTracker struct {
	mu     sync.Mutex
	agents map[string]string
}

// NewAgentTracker creates an empty tracker.
func NewAgentTracker() *AgentTracker {
	return &AgentTracker{agents: make(map[string]string)}
}

// SetAgent records the agent name last seen for a session. Empty names
// are ignored so a later anonymous event cannot erase the hint.
func (t *AgentTracker) SetAgent(sessionID, agent string) {
	if agent == "" {
		return
	}
	t.mu.Lock()
	t.agents[sessionID] = agent
	t.mu.Unlock()
}

// Agent returns the last-seen agent name for a session, or "".
func (t *AgentTracker) Agent(sessionID string) string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.agents[sessionID]
}
