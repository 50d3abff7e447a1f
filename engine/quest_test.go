/*
quest_test.go - Specification tests for quest progress resolution

PURPOSE:
  These tests serve as executable documentation of the resolver's
  guarantees: progress bounds, the target-zero edge case, and the
  deterministic ranking with its employee-id tie-break.

READING THESE TESTS:
  Each test has GIVEN/WHEN/THEN comments explaining the scenario and
  assertions with explanatory messages.
*/
package engine_test

import (
	"testing"
	"time"

	"github.com/gastro/earnings-engine/engine"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func dessertQuest(target int64) engine.Quest {
	return engine.Quest{
		ID:          "quest-1",
		Title:       "Quest of the day",
		Description: "Sell 15 desserts",
		Reward:      engine.NewMoney(15000),
		Target:      target,
		Unit:        "dessert",
		Date:        engine.NewDay(2025, time.June, 10),
	}
}

func record(emp string, current int64) engine.ProgressRecord {
	return engine.ProgressRecord{
		QuestID:    "quest-1",
		EmployeeID: engine.EmployeeID(emp),
		Current:    current,
	}
}

func noon(d engine.Day) time.Time {
	return d.Start().Add(12 * time.Hour)
}

// =============================================================================
// PROGRESS TESTS
// =============================================================================

func TestResolve_PartialProgress(t *testing.T) {
	// GIVEN: Quest with target 15, employee at 10
	// WHEN: Resolving progress
	// THEN: progress=66.67, completed=false, points=10

	quest := dessertQuest(15)
	res, err := engine.ResolveQuestProgress(quest, []engine.ProgressRecord{
		record("emp-1", 10),
	}, noon(quest.Date))
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}

	s := res.Standings[0]
	if !s.Progress.Equal(engine.MustPercent("66.67")) {
		t.Errorf("expected progress 66.67, got %v", s.Progress.Value)
	}
	if s.Completed {
		t.Error("10 of 15 should not be completed")
	}
	if s.Points != 10 {
		t.Errorf("expected 10 points, got %d", s.Points)
	}
}

func TestResolve_ProgressBounds(t *testing.T) {
	// GIVEN: Counters below, at, and far above target
	// WHEN: Resolving each
	// THEN: progress stays in [0,100] and completed == (current >= target)

	cases := []struct {
		current   int64
		progress  string
		completed bool
	}{
		{0, "0", false},
		{15, "100", true},
		{45, "100", true}, // capped, points normalized to target
	}

	quest := dessertQuest(15)
	for _, tc := range cases {
		res, err := engine.ResolveQuestProgress(quest, []engine.ProgressRecord{
			record("emp-1", tc.current),
		}, noon(quest.Date))
		if err != nil {
			t.Fatalf("current=%d: %v", tc.current, err)
		}
		s := res.Standings[0]
		if !s.Progress.Equal(engine.MustPercent(tc.progress)) {
			t.Errorf("current=%d: expected progress %s, got %v", tc.current, tc.progress, s.Progress.Value)
		}
		if s.Completed != tc.completed {
			t.Errorf("current=%d: expected completed=%v", tc.current, tc.completed)
		}
	}
}

func TestResolve_ZeroTarget_TriviallyComplete(t *testing.T) {
	// GIVEN: A quest with target 0 (pre-validation legacy data)
	// WHEN: Resolving progress
	// THEN: progress=100, completed=true, no division error

	quest := dessertQuest(0)
	res, err := engine.ResolveQuestProgress(quest, []engine.ProgressRecord{
		record("emp-1", 0),
	}, noon(quest.Date))
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}

	s := res.Standings[0]
	if !s.Progress.Equal(engine.MustPercent("100")) {
		t.Errorf("expected progress 100, got %v", s.Progress.Value)
	}
	if !s.Completed {
		t.Error("target 0 should be trivially complete")
	}
}

func TestResolve_NegativeProgress_Rejected(t *testing.T) {
	// GIVEN: A corrupted counter below zero
	// WHEN: Resolving
	// THEN: Fails with ErrInvalidProgress (client error class)

	quest := dessertQuest(15)
	_, err := engine.ResolveQuestProgress(quest, []engine.ProgressRecord{
		record("emp-1", -3),
	}, noon(quest.Date))

	if err == nil {
		t.Fatal("negative progress should be rejected")
	}
	if !engine.IsClientError(err) {
		t.Errorf("expected client error, got %v", err)
	}
}

func TestResolve_DuplicateEmployee_Rejected(t *testing.T) {
	// GIVEN: Two records for the same employee
	// WHEN: Resolving
	// THEN: Fails with DuplicateProgressError (inconsistent input)

	quest := dessertQuest(15)
	_, err := engine.ResolveQuestProgress(quest, []engine.ProgressRecord{
		record("emp-1", 5),
		record("emp-1", 7),
	}, noon(quest.Date))

	if !engine.IsInconsistentInput(err) {
		t.Errorf("expected inconsistent-input error, got %v", err)
	}
}

// =============================================================================
// RANKING TESTS
// =============================================================================

func TestResolve_Ranking_TieBreakByEmployeeID(t *testing.T) {
	// GIVEN: Two employees both at 15/15 (completed, identical counters)
	// WHEN: Resolving
	// THEN: rank 1 = employee "1", rank 2 = employee "2" (ascending id)

	quest := dessertQuest(15)
	res, err := engine.ResolveQuestProgress(quest, []engine.ProgressRecord{
		record("2", 15),
		record("1", 15),
	}, noon(quest.Date))
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}

	if res.Standings[0].EmployeeID != "1" || res.Standings[0].Rank != 1 {
		t.Errorf("expected employee 1 at rank 1, got %s at %d",
			res.Standings[0].EmployeeID, res.Standings[0].Rank)
	}
	if res.Standings[1].EmployeeID != "2" || res.Standings[1].Rank != 2 {
		t.Errorf("expected employee 2 at rank 2, got %s at %d",
			res.Standings[1].EmployeeID, res.Standings[1].Rank)
	}
}

func TestResolve_Ranking_CompletedBeforeHigherCounter(t *testing.T) {
	// GIVEN: One completed employee at 15/15 and one incomplete at 14/15
	// WHEN: Resolving
	// THEN: Completion dominates the counter in the ordering

	quest := dessertQuest(15)
	res, err := engine.ResolveQuestProgress(quest, []engine.ProgressRecord{
		record("slow-but-done", 15),
		record("almost", 14),
	}, noon(quest.Date))
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}

	if res.Standings[0].EmployeeID != "slow-but-done" {
		t.Errorf("completed employee should rank first, got %s", res.Standings[0].EmployeeID)
	}
	if res.CompletedEmployees != 1 || res.TotalEmployees != 2 {
		t.Errorf("expected 1/2 completed, got %d/%d", res.CompletedEmployees, res.TotalEmployees)
	}
}

func TestResolve_Ranking_OrderIndependent(t *testing.T) {
	// GIVEN: The same records in two different input orders
	// WHEN: Resolving both
	// THEN: Rank assignment is identical (idempotent, order-independent)

	quest := dessertQuest(15)
	now := noon(quest.Date)

	forward := []engine.ProgressRecord{
		record("a", 12), record("b", 15), record("c", 12), record("d", 3),
	}
	reversed := []engine.ProgressRecord{
		record("d", 3), record("c", 12), record("b", 15), record("a", 12),
	}

	res1, err := engine.ResolveQuestProgress(quest, forward, now)
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	res2, err := engine.ResolveQuestProgress(quest, reversed, now)
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}

	for i := range res1.Standings {
		if res1.Standings[i].EmployeeID != res2.Standings[i].EmployeeID ||
			res1.Standings[i].Rank != res2.Standings[i].Rank {
			t.Errorf("position %d differs: %+v vs %+v", i, res1.Standings[i], res2.Standings[i])
		}
	}
}

// =============================================================================
// EXPIRY TESTS
// =============================================================================

func TestResolve_Expiry_InformationalOnly(t *testing.T) {
	// GIVEN: A quest whose day ended yesterday
	// WHEN: Resolving with "now" past the expiry
	// THEN: Data still resolves; only the Active flag flips

	quest := dessertQuest(15)
	dayAfter := quest.Date.End().Add(24 * time.Hour)

	res, err := engine.ResolveQuestProgress(quest, []engine.ProgressRecord{
		record("emp-1", 15),
	}, dayAfter)
	if err != nil {
		t.Fatalf("historical resolution should succeed: %v", err)
	}

	if res.Active {
		t.Error("quest past expiry should be inactive")
	}
	if !res.Standings[0].Completed {
		t.Error("historical completion state must still be reported")
	}
}

func TestQuest_DefaultExpiry_EndOfDay(t *testing.T) {
	// GIVEN: A quest without an explicit expiry
	// WHEN: Asking for its expiry
	// THEN: It is 23:59:59 of its date

	quest := dessertQuest(15)
	want := time.Date(2025, time.June, 10, 23, 59, 59, 0, time.UTC)
	if !quest.Expiry().Equal(want) {
		t.Errorf("expected expiry %v, got %v", want, quest.Expiry())
	}

	// An explicit expiry overrides the default.
	quest.ExpiresAt = quest.Date.Start().Add(20 * time.Hour)
	if !quest.Expiry().Equal(quest.ExpiresAt) {
		t.Error("explicit expiry should override end-of-day default")
	}
}
