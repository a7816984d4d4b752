package memory

import "fmt"

// NotFoundError reports that no record matched the (scope, type) predicate
// of an update or delete. It is an ordinary outcome, not a storage failure.
type NotFoundError struct {
	Scope string
	Type  string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("memory: no %s record found in scope %q", e.Type, e.Scope)
}

// AmbiguousError reports that an update matched more than one record and
// either no disambiguation query was supplied or the query matched none of
// the candidates. Count is the number of candidates seen.
type AmbiguousError struct {
	Scope string
	Type  string
	Count int
}

func (e *AmbiguousError) Error() string {
	return fmt.Sprintf(
		"memory: %d %s records match scope %q — supply a query to pick one",
		e.Count, e.Type, e.Scope,
	)
}
