package srs

import (
	"sort"

	"github.com/mnemo-app/mnemo-api/internal/domain"
)

// Table is an ordered, read-only view of one user's interval rules.
// Lookup scans the rules sorted by minimum repetition; rules are replaced
// wholesale (bulk update or reset), never mutated in place, so a Table
// built from a loaded rule set is safe to share across card transitions.
type Table struct {
	rules []*domain.ReviewRule
}

// NewTable builds a Table from a user's rules, sorting them by
// MinRepetition ascending. The input slice is copied; the caller keeps
// ownership of the original.
func NewTable(rules []*domain.ReviewRule) *Table {
	sorted := make([]*domain.ReviewRule, len(rules))
	copy(sorted, rules)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].MinRepetition < sorted[j].MinRepetition
	})
	return &Table{rules: sorted}
}

// Len returns the number of rules in the table.
func (t *Table) Len() int {
	return len(t.rules)
}

// MaxRepetition returns the highest repetition count any rule covers,
// or 0 for an empty table.
func (t *Table) MaxRepetition() int {
	max := 0
	for _, r := range t.rules {
		if r.MaxRepetition > max {
			max = r.MaxRepetition
		}
	}
	return max
}

// Lookup returns the interval in days for the rule whose range contains
// repetition. The second return value is false when no rule matches,
// either because of a gap in the table or because repetition lies outside
// the covered range.
func (t *Table) Lookup(repetition int) (int, bool) {
	for _, r := range t.rules {
		if repetition < r.MinRepetition {
			// Rules are sorted; nothing further can match.
			return 0, false
		}
		if repetition <= r.MaxRepetition {
			return r.IntervalDays, true
		}
	}
	return 0, false
}

// Rules returns the table's rules in lookup order.
func (t *Table) Rules() []*domain.ReviewRule {
	return t.rules
}
