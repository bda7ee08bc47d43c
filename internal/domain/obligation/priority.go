package obligation

import "time"

// Priority is the urgency band assigned to an obligation relative to a
// reference instant.
type Priority string

const (
	PriorityCritical Priority = "CRITICAL"
	PriorityHigh     Priority = "HIGH"
	PriorityMedium   Priority = "MEDIUM"
	PriorityLow      Priority = "LOW"
)

// Urgency band boundaries in days until due, inclusive.
const (
	highWindowDays   = 30
	mediumWindowDays = 90
)

// truncateToDay drops the time-of-day component in UTC.  All urgency
// arithmetic is date-only: an obligation due later today is still due in 0
// days regardless of the clock.
func truncateToDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// DaysUntil returns whole calendar days from now until due, negative when due
// is in the past.  ok is false when due is nil.
func DaysUntil(due *time.Time, now time.Time) (days int, ok bool) {
	if due == nil {
		return 0, false
	}
	d := truncateToDay(*due).Sub(truncateToDay(now))
	return int(d.Hours() / 24), true
}

// Classify maps a due date to an urgency band relative to now:
//
//	no due date      → LOW (ongoing duties never escalate)
//	overdue          → CRITICAL
//	due in 0–30 days → HIGH
//	due in 31–90     → MEDIUM
//	due in 91+       → LOW
//
// The reference instant is injected so classification is reproducible.
func Classify(due *time.Time, now time.Time) Priority {
	days, ok := DaysUntil(due, now)
	if !ok {
		return PriorityLow
	}
	switch {
	case days < 0:
		return PriorityCritical
	case days <= highWindowDays:
		return PriorityHigh
	case days <= mediumWindowDays:
		return PriorityMedium
	default:
		return PriorityLow
	}
}

// Rank orders priorities for sorting, most urgent first.
func (p Priority) Rank() int {
	switch p {
	case PriorityCritical:
		return 0
	case PriorityHigh:
		return 1
	case PriorityMedium:
		return 2
	default:
		return 3
	}
}
