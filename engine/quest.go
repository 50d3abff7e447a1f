/*
quest.go - Quest progress resolution and ranking

PURPOSE:
  Given a quest definition and the progress counters of its assigned
  employees, compute each employee's completion state and a deterministic
  ranking. This is the read side of the gamified incentive system: the
  counters themselves are maintained by the external data layer.

PROGRESS:
  progress  = round(min(100, current/target*100), 2)
  completed = current >= target
  points    = min(current, target)   (normalized score used for ranking)

  A target of 0 is a documented edge case, not a failure: the quest is
  treated as already complete with progress 100. Creation-time validation
  (quests package) rejects target <= 0, so this only arises for data
  produced before that rule existed.

RANKING:
  Sort by (completed desc, current desc, employeeId asc). The employeeId
  tie-break makes resolution idempotent and independent of input order:
  re-running on the same records always yields the same rank assignment.

EXPIRY:
  Expiry is informational only. A quest past its expiresAt is reported as
  inactive, but historical queries still resolve; the resolver never
  mutates anything based on expiry.

SEE ALSO:
  - salary.go: Consumes completed-quest rewards
  - errors.go: Resolution error types
*/
package engine

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// QUEST - Time-boxed, target-based incentive
// =============================================================================

// Quest is a time-boxed incentive with a numeric target and currency reward,
// assigned to one or more employees for a single calendar day.
type Quest struct {
	ID          QuestID
	Title       string
	Description string
	Reward      Money
	Target      int64
	Unit        string // what is being counted: "dessert", "steak", "orders"
	Date        Day
	ExpiresAt   time.Time // end of Date unless explicitly overridden
	EmployeeIDs []EmployeeID
}

// Expiry returns the quest's expiry instant, defaulting to the end of its
// day when no explicit expiry was set.
func (q Quest) Expiry() time.Time {
	if q.ExpiresAt.IsZero() {
		return q.Date.End()
	}
	return q.ExpiresAt
}

// ActiveAt reports whether the quest is still running at the given instant.
func (q Quest) ActiveAt(now time.Time) bool {
	return !now.After(q.Expiry())
}

// ProgressRecord is one employee's current standing on one quest,
// supplied by the external data layer.
type ProgressRecord struct {
	QuestID    QuestID
	EmployeeID EmployeeID
	Current    int64
}

// =============================================================================
// RESOLUTION OUTPUT
// =============================================================================

// Standing is one employee's resolved position on a quest.
type Standing struct {
	EmployeeID EmployeeID
	Progress   Percent // 0-100, two fraction digits
	Completed  bool
	Points     int64 // min(current, target), for ranking only
	Current    int64
	Rank       int // 1-based, assigned after sorting
}

// Resolution is the full resolved state of one quest.
type Resolution struct {
	Quest              Quest
	Standings          []Standing
	TotalEmployees     int
	CompletedEmployees int
	Active             bool // informational; historical queries still resolve
}

// =============================================================================
// RESOLVER
// =============================================================================

// ResolveQuestProgress computes completion state and ranking for every
// employee with a progress record on the quest. Pure: no clock reads, no
// I/O; "now" only feeds the informational Active flag.
func ResolveQuestProgress(quest Quest, records []ProgressRecord, now time.Time) (Resolution, error) {
	seen := make(map[EmployeeID]struct{}, len(records))
	standings := make([]Standing, 0, len(records))

	for _, rec := range records {
		if rec.Current < 0 {
			return Resolution{}, ErrInvalidProgress
		}
		if _, dup := seen[rec.EmployeeID]; dup {
			return Resolution{}, &DuplicateProgressError{EmployeeID: rec.EmployeeID}
		}
		seen[rec.EmployeeID] = struct{}{}

		standings = append(standings, Standing{
			EmployeeID: rec.EmployeeID,
			Progress:   ProgressPercent(rec.Current, quest.Target),
			Completed:  QuestCompleted(rec.Current, quest.Target),
			Points:     normalizedPoints(rec.Current, quest.Target),
			Current:    rec.Current,
		})
	}

	// Deterministic order: completed first, then higher counters, ties by
	// ascending employee id. Strict ordering, no shared tie value.
	sort.Slice(standings, func(i, j int) bool {
		a, b := standings[i], standings[j]
		if a.Completed != b.Completed {
			return a.Completed
		}
		if a.Current != b.Current {
			return a.Current > b.Current
		}
		return a.EmployeeID < b.EmployeeID
	})
	for i := range standings {
		standings[i].Rank = i + 1
	}

	completed := 0
	for _, s := range standings {
		if s.Completed {
			completed++
		}
	}

	return Resolution{
		Quest:              quest,
		Standings:          standings,
		TotalEmployees:     len(standings),
		CompletedEmployees: completed,
		Active:             quest.ActiveAt(now),
	}, nil
}

// StandingFor returns the standing of a single employee, if present.
func (r Resolution) StandingFor(id EmployeeID) (Standing, bool) {
	for _, s := range r.Standings {
		if s.EmployeeID == id {
			return s, true
		}
	}
	return Standing{}, false
}

// =============================================================================
// PROGRESS MATH
// =============================================================================

// ProgressPercent computes round(min(100, current/target*100), 2). A target
// of 0 yields 100: the quest is trivially complete, never a division error.
func ProgressPercent(current, target int64) Percent {
	if target <= 0 {
		return Percent{Value: hundred}
	}
	pct := decimal.NewFromInt(current).Mul(hundred).Div(decimal.NewFromInt(target))
	if pct.GreaterThan(hundred) {
		pct = hundred
	}
	return Percent{Value: pct.Round(2)}
}

// QuestCompleted reports whether a counter satisfies the target.
// Target 0 is trivially satisfied.
func QuestCompleted(current, target int64) bool {
	return current >= target
}

func normalizedPoints(current, target int64) int64 {
	if target >= 0 && current > target {
		return target
	}
	return current
}
