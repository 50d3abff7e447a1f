/*
Package engine provides the core earnings computation engine.

PURPOSE:
  This package contains the pure types and algorithms that turn raw daily
  facts (completed tables, attributed revenue, quest progress counters,
  fines, bonus rules) into a deterministic earnings breakdown and quest
  standings for one employee on one calendar day.

KEY CONCEPTS IN THIS FILE (types.go):
  - Money: A whole-currency amount (no cents subdivision on this platform)
  - Percent: A rational in [0,100], rendered with two fraction digits
  - Employee/Quest/Organization IDs: Type-safe identifiers

DESIGN PRINCIPLES:
  1. Purity: The engine owns no state and reads no clock; "now" and "date"
     are always passed in, so identical inputs yield identical outputs
  2. Precision: Uses decimal.Decimal to avoid floating-point drift in
     percentage-of-revenue math
  3. Type Safety: Strong typing for IDs prevents mixing employee/quest IDs
  4. Explicitness: Errors are typed returns; nothing is logged or retried

USAGE:
  revenue := engine.NewMoney(1000192)
  base := revenue.Percent(engine.MustPercent("5")) // 50010 after rounding

SEE ALSO:
  - quest.go: Quest progress resolution and ranking
  - salary.go: Salary composition from daily facts
  - day.go: Calendar-day value type
*/
package engine

import (
	"github.com/shopspring/decimal"
)

// =============================================================================
// MONEY - Whole-currency amounts
// =============================================================================

// Money is an amount in the platform's currency. The surrounding system
// deals in whole-currency integers, so every derived amount is rounded to
// zero fraction digits before it leaves the engine.
type Money struct {
	Value decimal.Decimal
}

func NewMoney(value int64) Money {
	return Money{Value: decimal.NewFromInt(value)}
}

func NewMoneyFromFloat(value float64) Money {
	return Money{Value: decimal.NewFromFloat(value)}
}

func MustParseMoney(s string) Money {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{Value: decimal.Zero}
	}
	return Money{Value: d}
}

func ZeroMoney() Money { return Money{Value: decimal.Zero} }

func (m Money) Add(o Money) Money      { return Money{Value: m.Value.Add(o.Value)} }
func (m Money) Sub(o Money) Money      { return Money{Value: m.Value.Sub(o.Value)} }
func (m Money) Neg() Money             { return Money{Value: m.Value.Neg()} }
func (m Money) IsZero() bool           { return m.Value.IsZero() }
func (m Money) IsNegative() bool       { return m.Value.IsNegative() }
func (m Money) IsPositive() bool       { return m.Value.IsPositive() }
func (m Money) Equal(o Money) bool     { return m.Value.Equal(o.Value) }
func (m Money) GreaterThan(o Money) bool { return m.Value.GreaterThan(o.Value) }
func (m Money) LessThan(o Money) bool  { return m.Value.LessThan(o.Value) }

// Round normalizes to whole currency, half away from zero. This is the
// single rounding policy of the engine (the documented 58192 example in the
// source material is numerically inconsistent and treated as an error).
func (m Money) Round() Money { return Money{Value: m.Value.Round(0)} }

// Percent returns p percent of m, rounded to whole currency.
func (m Money) Percent(p Percent) Money {
	return Money{Value: m.Value.Mul(p.Value).Div(hundred)}.Round()
}

// Float64 is for JSON serialization at the API boundary only.
func (m Money) Float64() float64 {
	f, _ := m.Value.Float64()
	return f
}

// =============================================================================
// PERCENT - Rational in [0,100]
// =============================================================================

var hundred = decimal.NewFromInt(100)

// Percent is a percentage value. Valid range is [0,100]; validation happens
// where a percent enters a computation, not at construction.
type Percent struct {
	Value decimal.Decimal
}

func NewPercent(value float64) Percent {
	return Percent{Value: decimal.NewFromFloat(value)}
}

func MustPercent(s string) Percent {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Percent{Value: decimal.Zero}
	}
	return Percent{Value: d}
}

func (p Percent) InRange() bool {
	return !p.Value.IsNegative() && !p.Value.GreaterThan(hundred)
}

// Rounded returns the percent with two fraction digits, the precision the
// platform renders everywhere.
func (p Percent) Rounded() Percent { return Percent{Value: p.Value.Round(2)} }

func (p Percent) Equal(o Percent) bool { return p.Value.Equal(o.Value) }

func (p Percent) Float64() float64 {
	f, _ := p.Value.Float64()
	return f
}

// =============================================================================
// IDENTIFIERS
// =============================================================================

type EmployeeID string
type QuestID string
type OrganizationID string
