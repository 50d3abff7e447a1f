/*
Package payroll assembles daily salary statements for waiters.

PURPOSE:
  Binds the pure salary composer to the platform's fact providers: shift
  activity (tables + attributed revenue), per-employee percentage
  settings, fines, and the day's quest outcomes. The composition itself
  happens in engine.ComposeSalary; this package only gathers facts and
  applies house bonus policy.

BONUS POLICY:
  A shift whose attributed revenue exceeds the performance threshold earns
  a performance bonus of a configured rate of that revenue. Defaults
  (threshold 500000, rate 1%) match the platform's standing policy.

PURITY:
  The service reads no clock; callers pass the day and "now". Facts are
  fetched once per composition, so callers may parallelize freely across
  (employee, date) keys.

SEE ALSO:
  - engine/salary.go: The composition itself
  - quests/: Quest outcomes consumed as rewards
  - store/sqlite/: Provider implementations
*/
package payroll

import (
	"context"
	"time"

	"github.com/gastro/earnings-engine/engine"
	"github.com/gastro/earnings-engine/quests"
)

// =============================================================================
// SETTINGS
// =============================================================================

// DefaultPercentage is the revenue share a waiter earns when no explicit
// setting exists.
var DefaultPercentage = engine.NewPercent(5)

// =============================================================================
// PROVIDERS - Read-only fact boundary (implemented by store/sqlite)
// =============================================================================

// ShiftFactProvider returns raw shift activity. Organization filtering
// happens inside the provider, never in the engine.
type ShiftFactProvider interface {
	// ShiftFact aggregates an employee's completed tables and attributed
	// revenue for one day. Fails with ErrEmployeeNotFound for unknown
	// employees; a known employee with no orders yields a zero fact.
	ShiftFact(ctx context.Context, employee engine.EmployeeID, day engine.Day, org engine.OrganizationID) (engine.ShiftFact, error)
}

// FineProvider returns the fines recorded against an employee for a day.
type FineProvider interface {
	Fines(ctx context.Context, employee engine.EmployeeID, day engine.Day) ([]engine.Fine, error)
}

// SettingsProvider returns the configured revenue percentage for an
// employee, or DefaultPercentage when none is set.
type SettingsProvider interface {
	SalaryPercentage(ctx context.Context, employee engine.EmployeeID) (engine.Percent, error)
}

// QuestResolver supplies the day's quest outcomes for an employee.
// Satisfied by *quests.Service.
type QuestResolver interface {
	EmployeeQuests(ctx context.Context, employee engine.EmployeeID, day engine.Day, org engine.OrganizationID, now time.Time) ([]quests.EmployeeQuest, error)
}

// =============================================================================
// PERFORMANCE BONUS POLICY
// =============================================================================

// PerformanceBonusPolicy grants a revenue-share bonus for strong shifts.
type PerformanceBonusPolicy struct {
	RevenueThreshold engine.Money
	Rate             engine.Percent
	Description      string
}

// DefaultPerformanceBonus is the platform's standing policy: 1% of
// revenue on shifts above 500000.
func DefaultPerformanceBonus() PerformanceBonusPolicy {
	return PerformanceBonusPolicy{
		RevenueThreshold: engine.NewMoney(500000),
		Rate:             engine.NewPercent(1),
		Description:      "Outstanding shift bonus",
	}
}

// Evaluate returns the bonuses the policy produces for a shift. Threshold
// comparison is strict: revenue exactly at the threshold earns nothing.
func (p PerformanceBonusPolicy) Evaluate(fact engine.ShiftFact) []engine.Bonus {
	if !fact.TotalRevenue.GreaterThan(p.RevenueThreshold) {
		return nil
	}
	return []engine.Bonus{{
		Type:        engine.BonusPerformance,
		Amount:      fact.TotalRevenue.Percent(p.Rate),
		Description: p.Description,
	}}
}

// =============================================================================
// STATEMENT - Full daily view (statement + quest context)
// =============================================================================

// DayStatement is the complete salary answer for one employee/date: the
// engine statement plus the quest list the day was scored against.
type DayStatement struct {
	engine.Statement

	QuestDescription string
	Quests           []quests.EmployeeQuest
}

// =============================================================================
// SERVICE
// =============================================================================

// Service gathers facts and composes daily statements.
type Service struct {
	Facts    ShiftFactProvider
	Fines    FineProvider
	Settings SettingsProvider
	Quests   QuestResolver
	Bonus    PerformanceBonusPolicy
}

func NewService(facts ShiftFactProvider, fines FineProvider, settings SettingsProvider, questSvc QuestResolver) *Service {
	return &Service{
		Facts:    facts,
		Fines:    fines,
		Settings: settings,
		Quests:   questSvc,
		Bonus:    DefaultPerformanceBonus(),
	}
}

// ComposeDay builds the full statement for one employee and day.
func (s *Service) ComposeDay(ctx context.Context, employee engine.EmployeeID, day engine.Day, org engine.OrganizationID, now time.Time) (*DayStatement, error) {
	fact, err := s.Facts.ShiftFact(ctx, employee, day, org)
	if err != nil {
		return nil, err
	}

	percentage, err := s.Settings.SalaryPercentage(ctx, employee)
	if err != nil {
		return nil, err
	}

	fines, err := s.Fines.Fines(ctx, employee, day)
	if err != nil {
		return nil, err
	}

	questList, err := s.Quests.EmployeeQuests(ctx, employee, day, org, now)
	if err != nil {
		return nil, err
	}
	rewards := quests.CompletedRewards(questList)

	statement, err := engine.ComposeSalary(fact, percentage, s.Bonus.Evaluate(fact), fines, rewards)
	if err != nil {
		return nil, err
	}

	return &DayStatement{
		Statement:        statement,
		QuestDescription: questDescription(rewards),
		Quests:           questList,
	}, nil
}

// questDescription mirrors the platform's legacy summary line: the first
// completed quest names the bonus.
func questDescription(rewards []engine.QuestReward) string {
	if len(rewards) == 0 {
		return "No quest bonus earned"
	}
	return "Bonus for completing quest: " + rewards[0].QuestName
}
