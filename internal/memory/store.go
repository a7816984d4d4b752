// Package memory implements the file-backed memory engine for marmot.
//
// Curated records live in one line-oriented file per calendar day under a
// single root directory, with a fixed append-only audit file for deleted
// or superseded records. The engine assumes at most one logical writer
// touches the file set at a time: appends and rewrites are whole-file
// read-modify-write operations with no locking. Malformed lines are
// skipped during scans, never surfaced.
package memory

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/gobwas/glob"
	"github.com/marmotdev/marmot/internal/record"
)

// now is a package-level var to allow test injection.
var now = time.Now

// auditFile is the fixed audit trail filename, excluded from scans.
const auditFile = "deletions.record"

// dayFileExt is the suffix of per-day record files.
const dayFileExt = ".record"

// ─── Config ──────────────────────────────────────────────────────────────────

// Config holds memory store configuration.
type Config struct {
	// RootDir is the directory holding day files and the audit file.
	RootDir string
	// MaxRecallResults caps recall output when the caller passes no limit.
	MaxRecallResults int
	// ScopeFilters, when non-empty, restricts read paths (recall, summary)
	// to records whose scope matches at least one pattern. Writes are
	// never filtered.
	ScopeFilters []glob.Glob
}

// DefaultConfig returns the default configuration for the memory store.
func DefaultConfig() Config {
	home, _ := os.UserHomeDir()
	return Config{
		RootDir:          filepath.Join(home, ".marmot", "memory"),
		MaxRecallResults: 20,
	}
}

// ─── Store ───────────────────────────────────────────────────────────────────

// Store is the curated-memory engine over a directory of day files.
type Store struct {
	cfg Config
}

// New creates a Store, creating the root directory if needed.
func New(cfg Config) (*Store, error) {
	if cfg.MaxRecallResults <= 0 {
		cfg.MaxRecallResults = 20
	}
	if err := os.MkdirAll(cfg.RootDir, 0o700); err != nil {
		return nil, fmt.Errorf("memory: create root dir: %w", err)
	}
	return &Store{cfg: cfg}, nil
}

// located is a decoded record together with its physical position, used by
// the predicate update/delete paths to rewrite the right line.
type located struct {
	rec  record.Record
	file string // absolute path of the day file
	line int    // physical line index within the file
}

// Append writes one record to the current day's file, creating it if
// absent. An empty timestamp is assigned at write time.
func (s *Store) Append(r record.Record) error {
	if r.Timestamp == "" {
		r.Timestamp = now().UTC().Format(time.RFC3339)
	}
	path := filepath.Join(s.cfg.RootDir, now().UTC().Format("2006-01-02")+dayFileExt)
	if err := appendLine(path, record.Encode(r)); err != nil {
		return fmt.Errorf("memory: append: %w", err)
	}
	return nil
}

// ScanAll reads every day file and returns all decodable records in
// file-then-line order. File order follows directory enumeration, which is
// not guaranteed chronological. Blank and malformed lines are skipped.
func (s *Store) ScanAll() ([]record.Record, error) {
	locs, err := s.scanLocated()
	if err != nil {
		return nil, err
	}
	records := make([]record.Record, 0, len(locs))
	for _, l := range locs {
		records = append(records, l.rec)
	}
	return records, nil
}

func (s *Store) scanLocated() ([]located, error) {
	entries, err := os.ReadDir(s.cfg.RootDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("memory: scan: %w", err)
	}

	var locs []located
	for _, e := range entries {
		if e.IsDir() || !isDayFile(e.Name()) {
			continue
		}
		path := filepath.Join(s.cfg.RootDir, e.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("memory: scan %s: %w", e.Name(), err)
		}
		for i, line := range strings.Split(string(data), "\n") {
			if strings.TrimSpace(line) == "" {
				continue
			}
			rec, ok := record.Decode(line)
			if !ok {
				continue // malformed lines are dropped, never fatal
			}
			locs = append(locs, located{rec: rec, file: path, line: i})
		}
	}
	return locs, nil
}

// ─── Update ──────────────────────────────────────────────────────────────────

// UpdateParams holds the input for UpdateMatching. Issue and Tags are
// pointers so that "not specified" (inherit from the original) can be told
// apart from "set to empty".
type UpdateParams struct {
	Scope   string
	Type    string
	Content string
	// Query disambiguates when multiple records match (scope, type).
	Query string
	Issue *string
	Tags  *[]string
}

// UpdateMatching replaces the single record matching (scope, type) with a
// fresh-timestamped revision, appending an audit entry for the superseded
// version first. With zero matches it returns NotFoundError; with several
// matches and no query, AmbiguousError. A query ranks the candidates and
// picks the top scorer, failing as ambiguous only when nothing scores
// above zero.
//
// The rewrite reuses the line index from the scan without re-validating
// the file; under the single-writer model the file cannot have changed in
// between.
func (s *Store) UpdateMatching(p UpdateParams) (record.Record, error) {
	locs, err := s.scanLocated()
	if err != nil {
		return record.Record{}, err
	}

	var matches []located
	for _, l := range locs {
		if l.rec.Scope == p.Scope && l.rec.Type == p.Type {
			matches = append(matches, l)
		}
	}

	switch {
	case len(matches) == 0:
		return record.Record{}, &NotFoundError{Scope: p.Scope, Type: p.Type}
	case len(matches) > 1 && p.Query == "":
		return record.Record{}, &AmbiguousError{Scope: p.Scope, Type: p.Type, Count: len(matches)}
	}

	chosen := matches[0]
	if len(matches) > 1 {
		candidates := make([]record.Record, len(matches))
		for i, m := range matches {
			candidates[i] = m.rec
		}
		ranked := Rank(candidates, p.Query, "", "")
		if len(ranked) == 0 {
			return record.Record{}, &AmbiguousError{Scope: p.Scope, Type: p.Type, Count: len(matches)}
		}
		chosen = matches[ranked[0].Index]
	}

	updated := record.Record{
		Timestamp: now().UTC().Format(time.RFC3339),
		Type:      p.Type,
		Scope:     p.Scope,
		Content:   p.Content,
		Issue:     chosen.rec.Issue,
		Tags:      chosen.rec.Tags,
	}
	if p.Issue != nil {
		updated.Issue = *p.Issue
	}
	if p.Tags != nil {
		updated.Tags = *p.Tags
	}

	if err := s.appendAudit(chosen.rec, "superseded"); err != nil {
		return record.Record{}, err
	}
	if err := rewriteLine(chosen.file, chosen.line, record.Encode(updated)); err != nil {
		return record.Record{}, fmt.Errorf("memory: update: %w", err)
	}
	return updated, nil
}

// ─── Delete ──────────────────────────────────────────────────────────────────

// DeleteMatching removes every record matching (scope, type) from every
// day file, appending one audit entry per removed record with the given
// reason. It returns the number of deletions; zero is a valid outcome,
// not an error.
func (s *Store) DeleteMatching(scope, typ, reason string) (int, error) {
	entries, err := os.ReadDir(s.cfg.RootDir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("memory: delete: %w", err)
	}

	deleted := 0
	for _, e := range entries {
		if e.IsDir() || !isDayFile(e.Name()) {
			continue
		}
		path := filepath.Join(s.cfg.RootDir, e.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return deleted, fmt.Errorf("memory: delete %s: %w", e.Name(), err)
		}

		lines := strings.Split(string(data), "\n")
		kept := lines[:0]
		changed := false
		for _, line := range lines {
			rec, ok := record.Decode(line)
			if ok && rec.Scope == scope && rec.Type == typ {
				if err := s.appendAudit(rec, reason); err != nil {
					return deleted, err
				}
				deleted++
				changed = true
				continue
			}
			kept = append(kept, line)
		}
		if !changed {
			continue
		}
		if err := os.WriteFile(path, []byte(strings.Join(kept, "\n")), 0o600); err != nil {
			return deleted, fmt.Errorf("memory: delete rewrite %s: %w", e.Name(), err)
		}
	}
	return deleted, nil
}

// ─── Summary ─────────────────────────────────────────────────────────────────

// ScopeSummary aggregates one scope's records.
type ScopeSummary struct {
	Scope string   `json:"scope"`
	Count int      `json:"count"`
	Types []string `json:"types"`
}

// TypeSummary aggregates one record type.
type TypeSummary struct {
	Type  string `json:"type"`
	Count int    `json:"count"`
}

// Summary is the aggregate view of the whole store.
type Summary struct {
	Total  int            `json:"total"`
	Scopes []ScopeSummary `json:"scopes"`
	Types  []TypeSummary  `json:"types"`
}

// Summarize aggregates Scan results into per-scope and per-type counts,
// sorted by descending count (ties alphabetical for stable output).
func (s *Store) Summarize() (*Summary, error) {
	records, err := s.ScanAll()
	if err != nil {
		return nil, err
	}
	records = s.filterScopes(records)

	scopeCounts := map[string]int{}
	scopeTypes := map[string]map[string]bool{}
	typeCounts := map[string]int{}
	for _, r := range records {
		scopeCounts[r.Scope]++
		typeCounts[r.Type]++
		if scopeTypes[r.Scope] == nil {
			scopeTypes[r.Scope] = map[string]bool{}
		}
		scopeTypes[r.Scope][r.Type] = true
	}

	sum := &Summary{Total: len(records)}
	for scope, count := range scopeCounts {
		var types []string
		for t := range scopeTypes[scope] {
			types = append(types, t)
		}
		sort.Strings(types)
		sum.Scopes = append(sum.Scopes, ScopeSummary{Scope: scope, Count: count, Types: types})
	}
	sort.Slice(sum.Scopes, func(i, j int) bool {
		if sum.Scopes[i].Count != sum.Scopes[j].Count {
			return sum.Scopes[i].Count > sum.Scopes[j].Count
		}
		return sum.Scopes[i].Scope < sum.Scopes[j].Scope
	})
	for typ, count := range typeCounts {
		sum.Types = append(sum.Types, TypeSummary{Type: typ, Count: count})
	}
	sort.Slice(sum.Types, func(i, j int) bool {
		if sum.Types[i].Count != sum.Types[j].Count {
			return sum.Types[i].Count > sum.Types[j].Count
		}
		return sum.Types[i].Type < sum.Types[j].Type
	})
	return sum, nil
}

// ─── Helpers ─────────────────────────────────────────────────────────────────

func (s *Store) appendAudit(deleted record.Record, reason string) error {
	line := record.EncodeAudit(record.Audit{
		Timestamp:         now().UTC().Format(time.RFC3339),
		OriginalTimestamp: deleted.Timestamp,
		Record:            deleted,
		Reason:            reason,
	})
	path := filepath.Join(s.cfg.RootDir, auditFile)
	if err := appendLine(path, line); err != nil {
		return fmt.Errorf("memory: audit: %w", err)
	}
	return nil
}

// filterScopes applies the configured scope filter patterns to a read
// result. An empty filter list passes everything through.
func (s *Store) filterScopes(records []record.Record) []record.Record {
	if len(s.cfg.ScopeFilters) == 0 {
		return records
	}
	kept := records[:0]
	for _, r := range records {
		for _, g := range s.cfg.ScopeFilters {
			if g.Match(r.Scope) {
				kept = append(kept, r)
				break
			}
		}
	}
	return kept
}

// appendLine adds one full line to a file via whole-file read-modify-write.
// A single line is the unit of atomicity; partial-line corruption cannot
// occur because writes always add one complete line.
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

// rewriteLine replaces one physical line of a file in place.
func rewriteLine(path string, index int, line string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	lines := strings.Split(string(data), "\n")
	if index < 0 || index >= len(lines) {
		return fmt.Errorf("line %d out of range for %s", index, filepath.Base(path))
	}
	lines[index] = line
	return os.WriteFile(path, []byte(strings.Join(lines, "\n")), 0o600)
}

// isDayFile reports whether name is a per-day record file (YYYY-MM-DD.record).
func isDayFile(name string) bool {
	if name == auditFile || !strings.HasSuffix(name, dayFileExt) {
		return false
	}
	day := strings.TrimSuffix(name, dayFileExt)
	_, err := time.Parse("2006-01-02", day)
	return err == nil
}
