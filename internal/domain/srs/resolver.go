package srs

// fallbackIntervalDays is used when a user's table has a gap: a review must
// never be silently skipped, so the card comes back after one day.
const fallbackIntervalDays = 1

// ResolveInterval returns the interval in days for the given repetition
// count. It is a total function and never fails:
//
//   - An empty table yields the one-day fallback.
//   - A repetition beyond the table's maximum is clamped to the maximum and
//     reuses its interval, so pacing plateaus instead of collapsing back to
//     the fallback. Clamping, not falling back, is the deliberate policy
//     here: a learner past the last configured row keeps the longest
//     configured interval.
//   - A gap inside the covered range yields the one-day fallback.
func ResolveInterval(repetition int, table *Table) int {
	if table == nil || table.Len() == 0 {
		return fallbackIntervalDays
	}

	if max := table.MaxRepetition(); repetition > max {
		repetition = max
	}

	days, ok := table.Lookup(repetition)
	if !ok {
		return fallbackIntervalDays
	}
	return days
}
