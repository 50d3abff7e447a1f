/*
scenarios.go - Demo scenario loaders for testing and demonstrations

PURPOSE:

	Provides pre-built scenarios that populate the database with realistic
	data for testing and demos. Each scenario creates employees, quests,
	orders, and fines that demonstrate specific features.

AVAILABLE SCENARIOS:

	busy-shift:     One waiter over the bonus threshold with a completed quest
	quest-race:     Three waiters racing the same dessert quest
	rough-day:      Fines outweighing a small shift (negative total)

HOW SCENARIOS WORK:
 1. Reset database (clear all data)
 2. Create employees
 3. Create quests via the factory definitions
 4. Record orders, progress, and fines for today

USAGE VIA API:

	POST /api/scenarios/load
	{"scenarioId": "busy-shift"}

NOTE:

	Scenarios reset the database. Only use in development/demo environments.

SEE ALSO:
  - handlers.go: Shared response helpers
  - factory/quest.go: Quest JSON definitions
*/
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gastro/earnings-engine/engine"
	"github.com/gastro/earnings-engine/factory"
	"github.com/gastro/earnings-engine/store/sqlite"
)

// =============================================================================
// SCENARIO DEFINITIONS
// =============================================================================

var scenarios = []ScenarioResponse{
	{
		ID:          "busy-shift",
		Name:        "Busy Shift",
		Description: "One waiter over the performance threshold with a completed dessert quest",
	},
	{
		ID:          "quest-race",
		Name:        "Quest Race",
		Description: "Three waiters racing the same dessert quest, one finished",
	},
	{
		ID:          "rough-day",
		Name:        "Rough Day",
		Description: "Fines outweighing a small shift, showing a negative total",
	},
}

// ListScenarios returns available scenarios.
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, scenarios)
}

// GetCurrentScenario returns the currently loaded scenario, if any.
func (h *Handler) GetCurrentScenario(w http.ResponseWriter, r *http.Request) {
	if h.currentScenario == "" {
		writeJSON(w, http.StatusOK, nil)
		return
	}
	for _, s := range scenarios {
		if s.ID == h.currentScenario {
			writeJSON(w, http.StatusOK, s)
			return
		}
	}
	writeJSON(w, http.StatusOK, nil)
}

// LoadScenario resets the database and loads the requested scenario.
func (h *Handler) LoadScenario(w http.ResponseWriter, r *http.Request) {
	var req LoadScenarioRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	ctx := r.Context()
	if err := h.Store.Reset(ctx); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to reset database", err)
		return
	}

	var err error
	switch req.ScenarioID {
	case "busy-shift":
		err = loadBusyShift(ctx, h)
	case "quest-race":
		err = loadQuestRace(ctx, h)
	case "rough-day":
		err = loadRoughDay(ctx, h)
	default:
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Unknown scenario: %s", req.ScenarioID), nil)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load scenario", err)
		return
	}

	h.currentScenario = req.ScenarioID
	writeJSON(w, http.StatusOK, map[string]string{"status": "loaded", "scenarioId": req.ScenarioID})
}

// ResetDatabase wipes all data.
func (h *Handler) ResetDatabase(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.Reset(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to reset database", err)
		return
	}
	h.currentScenario = ""
	writeJSON(w, http.StatusOK, map[string]string{"status": "reset"})
}

// =============================================================================
// SCENARIO LOADERS
// =============================================================================

func seedWaiters(ctx context.Context, store *sqlite.Store, names map[string]string) error {
	for id, name := range names {
		err := store.SaveEmployee(ctx, sqlite.Employee{
			ID: engine.EmployeeID(id), Name: name, Role: "waiter", OrganizationID: "demo",
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func seedQuest(ctx context.Context, store *sqlite.Store, def string) (engine.QuestID, error) {
	params, err := factory.ParseQuest([]byte(def))
	if err != nil {
		return "", err
	}
	params.Date = engine.DayOf(time.Now().UTC())
	quest, err := factory.BuildQuest(params)
	if err != nil {
		return "", err
	}
	return store.CreateQuest(ctx, quest, "demo")
}

// loadBusyShift: one waiter, 1000192 revenue over three tables, dessert
// quest completed, one fine. The canonical full-statement demo.
func loadBusyShift(ctx context.Context, h *Handler) error {
	if err := seedWaiters(ctx, h.Store, map[string]string{"1": "Alice"}); err != nil {
		return err
	}

	questID, err := seedQuest(ctx, h.Store, factory.DessertQuestJSON)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	for _, amount := range []int64{500000, 400000, 100192} {
		if err := h.Store.RecordOrder(ctx, "1", "demo", now, engine.NewMoney(amount)); err != nil {
			return err
		}
	}
	if err := h.Store.AddQuestProgress(ctx, questID, "1", 15); err != nil {
		return err
	}

	_, err = h.Store.CreateFine(ctx, engine.Fine{
		EmployeeID: "1", Date: engine.DayOf(now), Reason: "Broken plates", Amount: engine.NewMoney(2000),
	})
	return err
}

// loadQuestRace: three waiters on one quest at 15/10/0 of 15.
func loadQuestRace(ctx context.Context, h *Handler) error {
	waiters := map[string]string{"1": "Alice", "2": "Bob", "3": "Carol"}
	if err := seedWaiters(ctx, h.Store, waiters); err != nil {
		return err
	}

	questID, err := seedQuest(ctx, h.Store, factory.DessertQuestJSON)
	if err != nil {
		return err
	}

	for emp, progress := range map[string]int64{"1": 15, "2": 10} {
		if err := h.Store.AddQuestProgress(ctx, questID, engine.EmployeeID(emp), progress); err != nil {
			return err
		}
	}
	return nil
}

// loadRoughDay: a 30000 shift against 5000 in fines.
func loadRoughDay(ctx context.Context, h *Handler) error {
	if err := seedWaiters(ctx, h.Store, map[string]string{"1": "Alice"}); err != nil {
		return err
	}

	now := time.Now().UTC()
	if err := h.Store.RecordOrder(ctx, "1", "demo", now, engine.NewMoney(30000)); err != nil {
		return err
	}

	for _, fine := range []engine.Fine{
		{EmployeeID: "1", Date: engine.DayOf(now), Reason: "Late to shift", Amount: engine.NewMoney(3000)},
		{EmployeeID: "1", Date: engine.DayOf(now), Reason: "Wrong order served", Amount: engine.NewMoney(2000)},
	} {
		if _, err := h.Store.CreateFine(ctx, fine); err != nil {
			return err
		}
	}
	return nil
}
