/*
salary.go - Salary composition from daily facts

PURPOSE:
  Assembles one employee's full earnings breakdown for one calendar day
  from externally supplied facts: the shift record (tables, revenue), the
  configured revenue percentage, bonus rules, fines, and the rewards of
  quests completed that day.

COMPOSITION ORDER:
  1. baseSalary    = round(totalRevenue * percentage / 100)
  2. bonusesTotal  = sum(bonus.amount)
  3. questBonus    = sum(reward of each completed quest); multiple quests
                     on one day all pay out, listed separately, no cap
  4. penaltiesTotal = sum(fine.amount matching employee+date)
  5. totalEarnings = baseSalary + bonusesTotal + questBonus - penaltiesTotal

  No clamping: penalties exceeding earnings produce a negative total.
  That is surfaced, not hidden.

TWO VIEWS, ONE COMPUTATION:
  The Statement carries both the itemized Breakdown and flat summary
  fields (salary, bonuses, questBonus, penalties, totalEarnings). The flat
  fields are derived from the breakdown aggregates in the same pass and
  can never drift.

DETERMINISM:
  No hidden clock reads; the date comes from the ShiftFact. Composing
  twice with identical inputs yields identical output, which is what makes
  the engine testable and cacheable by the surrounding layers.

SEE ALSO:
  - quest.go: Produces the completed-quest rewards consumed here
  - errors.go: Composition error types
*/
package engine

// =============================================================================
// INPUT FACTS
// =============================================================================

// ShiftFact is the raw activity for one employee on one date. Revenue
// attribution to the employee happens upstream; the engine takes it as given.
type ShiftFact struct {
	EmployeeID      EmployeeID
	Date            Day
	TablesCompleted int
	TotalRevenue    Money
}

// BonusType classifies a bonus rule.
type BonusType string

const (
	BonusPerformance BonusType = "performance"
	BonusOther       BonusType = "other"
)

// Bonus is a policy-produced extra compensation item.
type Bonus struct {
	Type        BonusType
	Amount      Money
	Description string
}

// Fine is a deduction applied to an employee for a date.
type Fine struct {
	EmployeeID EmployeeID
	Date       Day
	Reason     string
	Amount     Money
}

// QuestReward is the payout of one completed quest.
type QuestReward struct {
	QuestID   QuestID
	QuestName string
	Reward    Money
}

// =============================================================================
// OUTPUT
// =============================================================================

// Breakdown is the itemized decomposition of a day's earnings.
type Breakdown struct {
	BaseSalary   Money
	Percentage   Percent
	Bonuses      []Bonus
	Penalties    []Fine
	QuestRewards []QuestReward
	TotalEarnings Money
}

// Statement is the complete computed output for one employee/date: the
// breakdown plus the flat summary fields that mirror its aggregates.
type Statement struct {
	EmployeeID      EmployeeID
	Date            Day
	TablesCompleted int
	TotalRevenue    Money

	// Flat summary view, derived from Breakdown. Never maintained
	// independently.
	Salary           Money
	SalaryPercentage Percent
	Bonuses          Money
	QuestBonus       Money
	Penalties        Money
	TotalEarnings    Money

	Breakdown Breakdown
}

// =============================================================================
// COMPOSER
// =============================================================================

// ComposeSalary assembles the earnings statement for the employee and date
// named by the fact. Every fine must reference that same employee and date;
// a mismatch fails with InconsistentInputError rather than silently
// polluting the breakdown.
func ComposeSalary(fact ShiftFact, percentage Percent, bonuses []Bonus, fines []Fine, rewards []QuestReward) (Statement, error) {
	if !percentage.InRange() {
		return Statement{}, &PercentageRangeError{Got: percentage}
	}
	if fact.TotalRevenue.IsNegative() {
		return Statement{}, ErrInvalidAmount
	}

	baseSalary := fact.TotalRevenue.Percent(percentage)

	bonusesTotal := ZeroMoney()
	for _, b := range bonuses {
		if b.Amount.IsNegative() {
			return Statement{}, ErrInvalidAmount
		}
		bonusesTotal = bonusesTotal.Add(b.Amount)
	}

	questBonus := ZeroMoney()
	for _, r := range rewards {
		if r.Reward.IsNegative() {
			return Statement{}, ErrInvalidAmount
		}
		questBonus = questBonus.Add(r.Reward)
	}

	penaltiesTotal := ZeroMoney()
	for _, f := range fines {
		if f.EmployeeID != fact.EmployeeID {
			return Statement{}, &InconsistentInputError{
				Field: "fine.employee",
				Want:  string(fact.EmployeeID),
				Got:   string(f.EmployeeID),
			}
		}
		if !f.Date.IsZero() && !f.Date.Equal(fact.Date) {
			return Statement{}, &InconsistentInputError{
				Field: "fine.date",
				Want:  fact.Date.String(),
				Got:   f.Date.String(),
			}
		}
		if f.Amount.IsNegative() {
			return Statement{}, ErrInvalidAmount
		}
		penaltiesTotal = penaltiesTotal.Add(f.Amount)
	}

	total := baseSalary.Add(bonusesTotal).Add(questBonus).Sub(penaltiesTotal)

	breakdown := Breakdown{
		BaseSalary:    baseSalary,
		Percentage:    percentage.Rounded(),
		Bonuses:       bonuses,
		Penalties:     fines,
		QuestRewards:  rewards,
		TotalEarnings: total,
	}

	return Statement{
		EmployeeID:       fact.EmployeeID,
		Date:             fact.Date,
		TablesCompleted:  fact.TablesCompleted,
		TotalRevenue:     fact.TotalRevenue,
		Salary:           breakdown.BaseSalary,
		SalaryPercentage: breakdown.Percentage,
		Bonuses:          bonusesTotal,
		QuestBonus:       questBonus,
		Penalties:        penaltiesTotal,
		TotalEarnings:    breakdown.TotalEarnings,
		Breakdown:        breakdown,
	}, nil
}

// CompletedRewards extracts the payable rewards from a resolution for one
// employee: only quests the employee actually completed pay out.
func CompletedRewards(resolutions []Resolution, employee EmployeeID) []QuestReward {
	var rewards []QuestReward
	for _, res := range resolutions {
		standing, ok := res.StandingFor(employee)
		if !ok || !standing.Completed {
			continue
		}
		rewards = append(rewards, QuestReward{
			QuestID:   res.Quest.ID,
			QuestName: res.Quest.Description,
			Reward:    res.Quest.Reward,
		})
	}
	return rewards
}
