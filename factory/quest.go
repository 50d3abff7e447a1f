/*
Package factory provides JSON to Go quest conversion.

PURPOSE:
  Converts JSON quest definitions into validated quest structs. This
  enables quest configuration without code changes - managers can define
  quest templates in JSON, and the factory creates the proper Go structs.

WHY JSON?
  - Non-developers can define quest templates
  - Easy integration with admin UI
  - Version control for quest presets
  - Database storage of quest configs

JSON SCHEMA:
  {
    "title": "Quest of the day",
    "description": "Sell 15 dessert",
    "reward": 15000,
    "target": 15,
    "unit": "dessert",
    "date": "10.06.2025",
    "expires_at": "2025-06-10T20:00:00Z",
    "employee_ids": ["1", "2"]
  }

  Every field except reward/target/unit is optional: title, description,
  and expiry fall back to the platform defaults, an empty employee list
  means "assign all waiters", and an empty date means "today" (resolved
  by the caller, not the factory).

USAGE:
  params, err := factory.ParseQuest(jsonBytes)
  params.Date = engine.DayOf(time.Now())   // when the preset has no date
  quest, err := factory.BuildQuest(params)
  id, err := store.CreateQuest(ctx, quest, org)

SEE ALSO:
  - quests/quests.go: Validation and defaults applied by BuildQuest
  - api/scenarios.go: Demo presets consumed through this factory
*/
package factory

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/gastro/earnings-engine/engine"
	"github.com/gastro/earnings-engine/quests"
)

// =============================================================================
// JSON SCHEMA TYPES
// =============================================================================

// QuestJSON is the JSON representation of a quest definition.
type QuestJSON struct {
	Title       string   `json:"title,omitempty"`
	Description string   `json:"description,omitempty"`
	Reward      float64  `json:"reward"`
	Target      int64    `json:"target"`
	Unit        string   `json:"unit"`
	Date        string   `json:"date,omitempty"`       // DD.MM.YYYY
	ExpiresAt   string   `json:"expires_at,omitempty"` // RFC3339
	EmployeeIDs []string `json:"employee_ids,omitempty"`
}

// =============================================================================
// PRESETS
// =============================================================================

// DessertQuestJSON is the canonical demo preset: sell 15 desserts for
// a 15000 reward.
const DessertQuestJSON = `{
	"reward": 15000,
	"target": 15,
	"unit": "dessert"
}`

// SteakQuestJSON is a second demo preset for multi-quest days.
const SteakQuestJSON = `{
	"title": "Grill night",
	"reward": 8000,
	"target": 10,
	"unit": "steak"
}`

// =============================================================================
// PARSING
// =============================================================================

// ParseQuest decodes a JSON quest definition into creation params. The
// params are not yet validated; BuildQuest applies the domain rules.
func ParseQuest(data []byte) (quests.CreateParams, error) {
	var qj QuestJSON
	if err := json.Unmarshal(data, &qj); err != nil {
		return quests.CreateParams{}, fmt.Errorf("invalid quest JSON: %w", err)
	}

	params := quests.CreateParams{
		Title:       qj.Title,
		Description: qj.Description,
		Reward:      engine.NewMoneyFromFloat(qj.Reward),
		Target:      qj.Target,
		Unit:        qj.Unit,
	}

	if qj.Date != "" {
		day, err := engine.ParseDay(qj.Date)
		if err != nil {
			return quests.CreateParams{}, fmt.Errorf("invalid quest date: %w", err)
		}
		params.Date = day
	}
	if qj.ExpiresAt != "" {
		expires, err := time.Parse(time.RFC3339, qj.ExpiresAt)
		if err != nil {
			return quests.CreateParams{}, fmt.Errorf("invalid quest expiry: %w", err)
		}
		params.ExpiresAt = expires
	}
	for _, id := range qj.EmployeeIDs {
		params.EmployeeIDs = append(params.EmployeeIDs, engine.EmployeeID(id))
	}
	return params, nil
}

// BuildQuest validates params and builds the quest, applying the
// platform defaults for title, description, and expiry.
func BuildQuest(params quests.CreateParams) (engine.Quest, error) {
	return quests.NewDefinition(params)
}
