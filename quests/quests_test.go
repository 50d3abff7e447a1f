package quests_test

import (
	"context"
	"testing"
	"time"

	"github.com/gastro/earnings-engine/engine"
	"github.com/gastro/earnings-engine/quests"
)

// =============================================================================
// TEST SETUP
// =============================================================================

// memStore is a minimal in-memory quests.Store for service tests.
type memStore struct {
	quests   map[engine.QuestID]engine.Quest
	progress map[engine.QuestID]map[engine.EmployeeID]int64
}

func newMemStore() *memStore {
	return &memStore{
		quests:   make(map[engine.QuestID]engine.Quest),
		progress: make(map[engine.QuestID]map[engine.EmployeeID]int64),
	}
}

func (m *memStore) add(q engine.Quest) {
	m.quests[q.ID] = q
	if m.progress[q.ID] == nil {
		m.progress[q.ID] = make(map[engine.EmployeeID]int64)
	}
	for _, emp := range q.EmployeeIDs {
		m.progress[q.ID][emp] = 0
	}
}

func (m *memStore) setProgress(id engine.QuestID, emp engine.EmployeeID, current int64) {
	m.progress[id][emp] = current
}

func (m *memStore) QuestByID(_ context.Context, id engine.QuestID) (*engine.Quest, error) {
	q, ok := m.quests[id]
	if !ok {
		return nil, nil
	}
	return &q, nil
}

func (m *memStore) ProgressForQuest(_ context.Context, id engine.QuestID, _ engine.OrganizationID) ([]engine.ProgressRecord, error) {
	var records []engine.ProgressRecord
	for emp, current := range m.progress[id] {
		records = append(records, engine.ProgressRecord{QuestID: id, EmployeeID: emp, Current: current})
	}
	return records, nil
}

func (m *memStore) QuestsOnDay(_ context.Context, employee engine.EmployeeID, day engine.Day, _ engine.OrganizationID) ([]engine.Quest, error) {
	var result []engine.Quest
	for _, q := range m.quests {
		if !q.Date.Equal(day) {
			continue
		}
		for _, emp := range q.EmployeeIDs {
			if emp == employee {
				result = append(result, q)
				break
			}
		}
	}
	return result, nil
}

func (m *memStore) ProgressFor(_ context.Context, id engine.QuestID, employee engine.EmployeeID) (int64, error) {
	return m.progress[id][employee], nil
}

func day() engine.Day { return engine.NewDay(2025, time.June, 10) }

func dessertParams() quests.CreateParams {
	return quests.CreateParams{
		Reward:      engine.NewMoney(15000),
		Target:      15,
		Unit:        "dessert",
		Date:        day(),
		EmployeeIDs: []engine.EmployeeID{"1", "2"},
	}
}

// =============================================================================
// CREATION VALIDATION
// =============================================================================

func TestNewDefinition_Defaults(t *testing.T) {
	// GIVEN: Minimal params (no title, description, or expiry)
	// WHEN: Building the definition
	// THEN: Standard title/description and end-of-day expiry are filled in

	quest, err := quests.NewDefinition(dessertParams())
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if quest.Title != "Quest of the day" {
		t.Errorf("unexpected title %q", quest.Title)
	}
	if quest.Description != "Sell 15 dessert" {
		t.Errorf("unexpected description %q", quest.Description)
	}
	want := time.Date(2025, time.June, 10, 23, 59, 59, 0, time.UTC)
	if !quest.ExpiresAt.Equal(want) {
		t.Errorf("expected expiry %v, got %v", want, quest.ExpiresAt)
	}
}

func TestNewDefinition_InvalidTarget(t *testing.T) {
	// GIVEN: Targets of 0 and below
	// WHEN: Building the definition
	// THEN: Rejected with ErrInvalidTarget (validated at creation, not
	//       resolution)

	for _, target := range []int64{0, -5} {
		p := dessertParams()
		p.Target = target
		if _, err := quests.NewDefinition(p); !engine.IsInvalidArgument(err) {
			t.Errorf("target %d: expected invalid-argument, got %v", target, err)
		}
	}
}

func TestNewDefinition_NegativeReward(t *testing.T) {
	p := dessertParams()
	p.Reward = engine.NewMoney(-1)
	if _, err := quests.NewDefinition(p); !engine.IsInvalidArgument(err) {
		t.Errorf("expected invalid-argument, got %v", err)
	}
}

func TestNewDefinition_ExplicitFieldsKept(t *testing.T) {
	p := dessertParams()
	p.Title = "Dessert rush"
	p.Description = "Push the new cheesecake"
	p.ExpiresAt = day().Start().Add(20 * time.Hour)

	quest, err := quests.NewDefinition(p)
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if quest.Title != "Dessert rush" || quest.Description != "Push the new cheesecake" {
		t.Error("explicit title/description should not be overwritten")
	}
	if !quest.ExpiresAt.Equal(p.ExpiresAt) {
		t.Error("explicit expiry should not be overwritten")
	}
}

// =============================================================================
// SERVICE - DETAIL VIEW
// =============================================================================

func TestService_Detail_AggregatesAndRanks(t *testing.T) {
	// GIVEN: A quest with three employees at 15, 10, 0 of 15
	// WHEN: Fetching the manager detail
	// THEN: Ranks follow the engine ordering and averages are computed

	store := newMemStore()
	quest, _ := quests.NewDefinition(dessertParams())
	quest.ID = "q-1"
	quest.EmployeeIDs = []engine.EmployeeID{"1", "2", "3"}
	store.add(quest)
	store.setProgress("q-1", "1", 15)
	store.setProgress("q-1", "2", 10)
	store.setProgress("q-1", "3", 0)

	svc := quests.NewService(store)
	detail, err := svc.Detail(context.Background(), "q-1", "", day().Start().Add(12*time.Hour))
	if err != nil {
		t.Fatalf("detail failed: %v", err)
	}

	if detail.TotalEmployees != 3 || detail.CompletedEmployees != 1 {
		t.Errorf("expected 1/3 completed, got %d/%d", detail.CompletedEmployees, detail.TotalEmployees)
	}
	if detail.Standings[0].EmployeeID != "1" || detail.Standings[0].Rank != 1 {
		t.Errorf("expected employee 1 first, got %+v", detail.Standings[0])
	}
	// (100 + 66.67 + 0) / 3 = 55.56
	if !detail.AverageProgress.Equal(engine.MustPercent("55.56")) {
		t.Errorf("expected average 55.56, got %v", detail.AverageProgress.Value)
	}
	if !detail.Active {
		t.Error("quest should be active at mid-day")
	}
}

func TestService_Detail_UnknownQuest(t *testing.T) {
	// GIVEN: An empty store
	// WHEN: Fetching a detail
	// THEN: ErrQuestNotFound

	svc := quests.NewService(newMemStore())
	_, err := svc.Detail(context.Background(), "nope", "", time.Now())
	if !engine.IsNotFound(err) {
		t.Errorf("expected not-found, got %v", err)
	}
}

// =============================================================================
// SERVICE - EMPLOYEE VIEW
// =============================================================================

func TestService_EmployeeQuests_And_Rewards(t *testing.T) {
	// GIVEN: Two quests on the day, one completed by employee 1
	// WHEN: Listing the employee's quests and extracting rewards
	// THEN: Both quests appear; only the completed one pays

	store := newMemStore()

	done, _ := quests.NewDefinition(dessertParams())
	done.ID = "q-done"
	store.add(done)
	store.setProgress("q-done", "1", 15)

	open := quests.CreateParams{
		Reward: engine.NewMoney(8000), Target: 10, Unit: "steak",
		Date: day(), EmployeeIDs: []engine.EmployeeID{"1"},
	}
	openQuest, _ := quests.NewDefinition(open)
	openQuest.ID = "q-open"
	store.add(openQuest)
	store.setProgress("q-open", "1", 4)

	svc := quests.NewService(store)
	list, err := svc.EmployeeQuests(context.Background(), "1", day(), "", day().Start().Add(12*time.Hour))
	if err != nil {
		t.Fatalf("employee quests failed: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 quests, got %d", len(list))
	}

	rewards := quests.CompletedRewards(list)
	if len(rewards) != 1 {
		t.Fatalf("expected 1 payable reward, got %d", len(rewards))
	}
	if rewards[0].QuestID != "q-done" || !rewards[0].Reward.Equal(engine.NewMoney(15000)) {
		t.Errorf("unexpected reward: %+v", rewards[0])
	}
}
