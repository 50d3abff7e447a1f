package factory_test

import (
	"testing"
	"time"

	"github.com/gastro/earnings-engine/engine"
	"github.com/gastro/earnings-engine/factory"
)

func TestParseQuest_FullDefinition(t *testing.T) {
	// GIVEN: A complete JSON quest definition
	// WHEN: Parsing and building
	// THEN: Every field survives, including the explicit expiry

	def := `{
		"title": "Dessert rush",
		"description": "Push the new cheesecake",
		"reward": 15000,
		"target": 15,
		"unit": "dessert",
		"date": "10.06.2025",
		"expires_at": "2025-06-10T20:00:00Z",
		"employee_ids": ["1", "2"]
	}`

	params, err := factory.ParseQuest([]byte(def))
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	quest, err := factory.BuildQuest(params)
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}

	if quest.Title != "Dessert rush" || quest.Target != 15 {
		t.Errorf("unexpected quest: %+v", quest)
	}
	if !quest.Reward.Equal(engine.NewMoney(15000)) {
		t.Errorf("unexpected reward %v", quest.Reward.Value)
	}
	if !quest.Date.Equal(engine.NewDay(2025, time.June, 10)) {
		t.Errorf("unexpected date %v", quest.Date)
	}
	if !quest.ExpiresAt.Equal(time.Date(2025, time.June, 10, 20, 0, 0, 0, time.UTC)) {
		t.Errorf("unexpected expiry %v", quest.ExpiresAt)
	}
	if len(quest.EmployeeIDs) != 2 {
		t.Errorf("expected 2 assignees, got %d", len(quest.EmployeeIDs))
	}
}

func TestParseQuest_PresetWithDefaults(t *testing.T) {
	// GIVEN: The dessert preset (no title, date, or expiry)
	// WHEN: Parsing, dating it, and building
	// THEN: Platform defaults fill the gaps

	params, err := factory.ParseQuest([]byte(factory.DessertQuestJSON))
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	params.Date = engine.NewDay(2025, time.June, 10)

	quest, err := factory.BuildQuest(params)
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	if quest.Title != "Quest of the day" || quest.Description != "Sell 15 dessert" {
		t.Errorf("unexpected defaults: %q / %q", quest.Title, quest.Description)
	}
}

func TestParseQuest_BadInput(t *testing.T) {
	cases := map[string]string{
		"malformed JSON": `{"reward": `,
		"bad date":       `{"reward": 1, "target": 1, "unit": "x", "date": "2025-06-10"}`,
		"bad expiry":     `{"reward": 1, "target": 1, "unit": "x", "expires_at": "tomorrow"}`,
	}
	for name, def := range cases {
		if _, err := factory.ParseQuest([]byte(def)); err == nil {
			t.Errorf("%s: expected parse error", name)
		}
	}
}

func TestBuildQuest_RejectsInvalidTarget(t *testing.T) {
	params, err := factory.ParseQuest([]byte(`{"reward": 1000, "target": 0, "unit": "dessert"}`))
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	params.Date = engine.NewDay(2025, time.June, 10)

	if _, err := factory.BuildQuest(params); !engine.IsInvalidArgument(err) {
		t.Errorf("expected invalid-argument, got %v", err)
	}
}
