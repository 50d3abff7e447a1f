/*
Package quests provides the quest domain layered on the earnings engine.

PURPOSE:
  Quest definitions are created by managers ("sell 15 desserts today for
  15000"), assigned to waiters, and tracked through externally maintained
  progress counters. This package owns creation-time validation, the
  default expiry rule, and the manager-facing detail aggregation; the pure
  progress/ranking math lives in the engine package.

VALIDATION (creation time, not resolution time):
  - target > 0        (ErrInvalidTarget)
  - reward >= 0       (ErrInvalidAmount)
  - date required
  Resolution never re-validates the target: quests persisted before these
  rules existed still resolve via the engine's target-zero edge case.

EXPIRY:
  A quest expires at 23:59:59 of its date unless the creator set an
  explicit expiry. Expiry is informational: historical queries resolve.

SEE ALSO:
  - engine/quest.go: Progress math and ranking
  - payroll/: Consumes completed quests as salary rewards
*/
package quests

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/gastro/earnings-engine/engine"
)

// =============================================================================
// CREATION
// =============================================================================

// CreateParams describes a quest to be created.
type CreateParams struct {
	Title       string
	Description string
	Reward      engine.Money
	Target      int64
	Unit        string
	Date        engine.Day
	ExpiresAt   time.Time // zero = end of Date
	EmployeeIDs []engine.EmployeeID
	Organization engine.OrganizationID
}

// NewDefinition validates params and builds the quest. The id is assigned
// by the store on persist; callers get it back from Create.
func NewDefinition(p CreateParams) (engine.Quest, error) {
	if p.Target <= 0 {
		return engine.Quest{}, engine.ErrInvalidTarget
	}
	if p.Reward.IsNegative() {
		return engine.Quest{}, engine.ErrInvalidAmount
	}
	if p.Date.IsZero() {
		return engine.Quest{}, fmt.Errorf("quest date is required: %w", engine.ErrInconsistentInput)
	}

	title := p.Title
	if title == "" {
		title = "Quest of the day"
	}
	description := p.Description
	if description == "" {
		description = Describe(p.Target, p.Unit)
	}
	expires := p.ExpiresAt
	if expires.IsZero() {
		expires = p.Date.End()
	}

	return engine.Quest{
		Title:       title,
		Description: description,
		Reward:      p.Reward,
		Target:      p.Target,
		Unit:        p.Unit,
		Date:        p.Date,
		ExpiresAt:   expires,
		EmployeeIDs: p.EmployeeIDs,
	}, nil
}

// Describe builds the standard quest description for a sales target.
func Describe(target int64, unit string) string {
	if unit == "" {
		unit = "items"
	}
	return fmt.Sprintf("Sell %d %s", target, unit)
}

// =============================================================================
// STORE - Read-only fact provider boundary (implemented by store/sqlite)
// =============================================================================

// Store supplies quest facts. All organization filtering happens here,
// before facts reach the engine.
type Store interface {
	// QuestByID returns the quest definition, or nil when absent.
	QuestByID(ctx context.Context, id engine.QuestID) (*engine.Quest, error)

	// ProgressForQuest returns every assigned employee's counter,
	// restricted to the organization when one is given.
	ProgressForQuest(ctx context.Context, id engine.QuestID, org engine.OrganizationID) ([]engine.ProgressRecord, error)

	// QuestsOnDay returns the quests assigned to an employee whose date
	// window covers the given day.
	QuestsOnDay(ctx context.Context, employee engine.EmployeeID, day engine.Day, org engine.OrganizationID) ([]engine.Quest, error)

	// ProgressFor returns one employee's counter on one quest (0 when no
	// record exists yet).
	ProgressFor(ctx context.Context, id engine.QuestID, employee engine.EmployeeID) (int64, error)
}

// =============================================================================
// VIEWS
// =============================================================================

// EmployeeQuest is one quest seen through one employee's eyes: the
// definition plus that employee's standing.
type EmployeeQuest struct {
	Quest     engine.Quest
	Current   int64
	Progress  engine.Percent
	Completed bool
}

// Detail is the manager-facing view of one quest: every employee's
// standing with ranks plus aggregate counters.
type Detail struct {
	Quest              engine.Quest
	Standings          []engine.Standing
	TotalEmployees     int
	CompletedEmployees int
	AverageProgress    engine.Percent
	Active             bool
}

// =============================================================================
// SERVICE
// =============================================================================

// Service answers quest queries by combining stored facts with the engine
// resolver. "now" is always passed in; the service reads no clock.
type Service struct {
	store Store
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

// Detail resolves a quest for the manager view. Fails with ErrQuestNotFound
// when the id has no definition.
func (s *Service) Detail(ctx context.Context, id engine.QuestID, org engine.OrganizationID, now time.Time) (Detail, error) {
	quest, err := s.store.QuestByID(ctx, id)
	if err != nil {
		return Detail{}, err
	}
	if quest == nil {
		return Detail{}, engine.ErrQuestNotFound
	}

	records, err := s.store.ProgressForQuest(ctx, id, org)
	if err != nil {
		return Detail{}, err
	}

	res, err := engine.ResolveQuestProgress(*quest, records, now)
	if err != nil {
		return Detail{}, err
	}

	return Detail{
		Quest:              res.Quest,
		Standings:          res.Standings,
		TotalEmployees:     res.TotalEmployees,
		CompletedEmployees: res.CompletedEmployees,
		AverageProgress:    averageProgress(res.Standings),
		Active:             res.Active,
	}, nil
}

// EmployeeQuests returns the quests an employee is assigned on a day,
// each with that employee's standing.
func (s *Service) EmployeeQuests(ctx context.Context, employee engine.EmployeeID, day engine.Day, org engine.OrganizationID, now time.Time) ([]EmployeeQuest, error) {
	defs, err := s.store.QuestsOnDay(ctx, employee, day, org)
	if err != nil {
		return nil, err
	}

	result := make([]EmployeeQuest, 0, len(defs))
	for _, quest := range defs {
		current, err := s.store.ProgressFor(ctx, quest.ID, employee)
		if err != nil {
			return nil, err
		}
		if current < 0 {
			return nil, engine.ErrInvalidProgress
		}
		result = append(result, EmployeeQuest{
			Quest:     quest,
			Current:   current,
			Progress:  engine.ProgressPercent(current, quest.Target),
			Completed: engine.QuestCompleted(current, quest.Target),
		})
	}
	return result, nil
}

// CompletedRewards narrows a day's quests to the payable rewards, the
// shape the salary composer consumes.
func CompletedRewards(qs []EmployeeQuest) []engine.QuestReward {
	var rewards []engine.QuestReward
	for _, q := range qs {
		if !q.Completed {
			continue
		}
		rewards = append(rewards, engine.QuestReward{
			QuestID:   q.Quest.ID,
			QuestName: q.Quest.Description,
			Reward:    q.Quest.Reward,
		})
	}
	return rewards
}

func averageProgress(standings []engine.Standing) engine.Percent {
	if len(standings) == 0 {
		return engine.NewPercent(0)
	}
	sum := engine.NewPercent(0)
	for _, s := range standings {
		sum = engine.Percent{Value: sum.Value.Add(s.Progress.Value)}
	}
	avg := sum.Value.DivRound(decimal.NewFromInt(int64(len(standings))), 2)
	return engine.Percent{Value: avg}
}
