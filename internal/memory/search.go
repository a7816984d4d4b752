package memory

import (
	"fmt"
	"sort"
	"strings"

	"github.com/marmotdev/marmot/internal/record"
)

// Scored pairs a record with its query score and its index in the input
// slice, so callers can map a ranked result back to its source position.
type Scored struct {
	Record record.Record
	Score  int
	Index  int
}

// Rank filters and scores records against an optional free-text query.
//
// scopeFilter keeps records whose scope equals or contains the filter;
// typeFilter is an exact match. The query is tokenized on whitespace and
// lowercased: each token that occurs as a substring of the concatenated
// type, scope, content and tags earns one point, and the whole query earns
// two bonus points for exactly matching the scope and two more for exactly
// matching the type (case-insensitive). With a query present, zero-scoring
// records are dropped. The result is sorted by descending score; ties keep
// their original relative order.
func Rank(records []record.Record, query, scopeFilter, typeFilter string) []Scored {
	queryNorm := strings.ToLower(strings.TrimSpace(query))
	tokens := strings.Fields(queryNorm)

	var out []Scored
	for i, r := range records {
		if scopeFilter != "" && r.Scope != scopeFilter && !strings.Contains(r.Scope, scopeFilter) {
			continue
		}
		if typeFilter != "" && r.Type != typeFilter {
			continue
		}

		score := 0
		if len(tokens) > 0 {
			haystack := strings.ToLower(r.Type + " " + r.Scope + " " + r.Content + " " + strings.Join(r.Tags, " "))
			for _, tok := range tokens {
				if strings.Contains(haystack, tok) {
					score++
				}
			}
			if queryNorm == strings.ToLower(r.Scope) {
				score += 2
			}
			if queryNorm == strings.ToLower(r.Type) {
				score += 2
			}
			if score == 0 {
				continue
			}
		}
		out = append(out, Scored{Record: r, Score: score, Index: i})
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	return out
}

// RecallResult is the bounded, ranked output of a recall.
type RecallResult struct {
	Header  string   `json:"header"`
	Records []Scored `json:"records"`
	// Filtered is the match count before the cap; Total the store size.
	Filtered int `json:"filtered"`
	Total    int `json:"total"`
}

// Recall scans the store, applies the settings scope filters, ranks
// against the query and filters, and caps the output. limit <= 0 uses the
// configured default. The cap keeps the tail of the filtered list — the
// most recently appearing records.
func (s *Store) Recall(query, scopeFilter, typeFilter string, limit int) (*RecallResult, error) {
	all, err := s.ScanAll()
	if err != nil {
		return nil, err
	}
	total := len(all)
	ranked := Rank(s.filterScopes(all), query, scopeFilter, typeFilter)
	filtered := len(ranked)

	if limit <= 0 {
		limit = s.cfg.MaxRecallResults
	}

	res := &RecallResult{Filtered: filtered, Total: total}
	if filtered > limit {
		res.Records = ranked[filtered-limit:]
		res.Header = fmt.Sprintf("showing last %d of %d filtered of %d total", limit, filtered, total)
	} else {
		res.Records = ranked
		res.Header = fmt.Sprintf("found all %d of %d total", filtered, total)
	}
	return res, nil
}
