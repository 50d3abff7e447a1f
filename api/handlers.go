/*
handlers.go - HTTP API handlers for the earnings engine

PURPOSE:
  Exposes the quest and salary engine via REST API. Handles HTTP
  request/response, JSON serialization, and delegates to domain logic.

ENDPOINTS:
  Employees:
    GET    /api/employees                    List employees (?organizationId=)
    POST   /api/employees                    Create employee
    GET    /api/employees/{id}               Get employee details
    PUT    /api/employees/{id}/percentage    Set revenue share

  Quests:
    POST   /api/quests                       Create quest (manager)
    GET    /api/quests/{id}                  Quest detail with ranking
    POST   /api/quests/{id}/progress         Bump a progress counter
    GET    /api/quests/waiter/{id}           A waiter's quests for a day

  Salary:
    GET    /api/salary/waiter/{id}           Daily statement (?date=DD.MM.YYYY)

  Facts:
    POST   /api/fines                        Record a fine
    POST   /api/orders                       Record a closed order

  Scenarios:
    GET    /api/scenarios                    List demo scenarios
    POST   /api/scenarios/load               Load a demo scenario
    POST   /api/scenarios/reset              Wipe the database (dev only)

REQUEST FLOW:
  1. Parse HTTP request
  2. Validate input
  3. Call domain logic (quest service, payroll service)
  4. Serialize response
  5. Handle errors

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status via the
  engine's error classifiers:
  - 400: Invalid argument, inconsistent input
  - 404: Unknown quest or employee
  - 500: Internal errors

SECURITY NOTE:
  Currently NO authentication or authorization. All endpoints are public.

SEE ALSO:
  - dto.go: Request/response data structures
  - scenarios.go: Demo scenario loaders
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/gastro/earnings-engine/engine"
	"github.com/gastro/earnings-engine/payroll"
	"github.com/gastro/earnings-engine/quests"
	"github.com/gastro/earnings-engine/store/sqlite"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store   *sqlite.Store
	Quests  *quests.Service
	Payroll *payroll.Service

	// Track currently loaded scenario
	currentScenario string
}

// NewHandler creates a new handler with the given store.
func NewHandler(store *sqlite.Store) *Handler {
	questSvc := quests.NewService(store)
	return &Handler{
		Store:   store,
		Quests:  questSvc,
		Payroll: payroll.NewService(store, store, store, questSvc),
	}
}

// =============================================================================
// EMPLOYEE HANDLERS
// =============================================================================

// ListEmployees returns all employees, optionally filtered by organization.
func (h *Handler) ListEmployees(w http.ResponseWriter, r *http.Request) {
	org := engine.OrganizationID(r.URL.Query().Get("organizationId"))

	employees, err := h.Store.ListEmployees(r.Context(), org)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list employees", err)
		return
	}

	responses := make([]EmployeeResponse, len(employees))
	for i, e := range employees {
		responses[i] = toEmployeeResponse(e)
	}
	writeJSON(w, http.StatusOK, responses)
}

// GetEmployee returns a single employee.
func (h *Handler) GetEmployee(w http.ResponseWriter, r *http.Request) {
	id := engine.EmployeeID(chi.URLParam(r, "id"))

	emp, err := h.Store.GetEmployee(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get employee", err)
		return
	}
	if emp == nil {
		writeError(w, http.StatusNotFound, "Employee not found", nil)
		return
	}
	writeJSON(w, http.StatusOK, toEmployeeResponse(*emp))
}

// CreateEmployee creates a new employee.
func (h *Handler) CreateEmployee(w http.ResponseWriter, r *http.Request) {
	var req CreateEmployeeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.ID == "" || req.Name == "" {
		writeError(w, http.StatusBadRequest, "id and name are required", nil)
		return
	}

	emp := sqlite.Employee{
		ID:             engine.EmployeeID(req.ID),
		Name:           req.Name,
		Role:           req.Role,
		OrganizationID: engine.OrganizationID(req.OrganizationID),
	}
	if err := h.Store.SaveEmployee(r.Context(), emp); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create employee", err)
		return
	}
	writeJSON(w, http.StatusCreated, toEmployeeResponse(emp))
}

// SetPercentage configures an employee's revenue share.
func (h *Handler) SetPercentage(w http.ResponseWriter, r *http.Request) {
	id := engine.EmployeeID(chi.URLParam(r, "id"))

	var req SetPercentageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	if err := h.Store.SetSalaryPercentage(r.Context(), id, engine.NewPercent(req.Percentage)); err != nil {
		writeDomainError(w, "Failed to set percentage", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"employeeId": string(id), "percentage": req.Percentage})
}

// =============================================================================
// QUEST HANDLERS
// =============================================================================

// CreateQuest creates a quest and assigns it. An empty employeeIds list
// assigns every waiter in the organization.
func (h *Handler) CreateQuest(w http.ResponseWriter, r *http.Request) {
	var req CreateQuestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	day, err := engine.ParseDay(req.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date format (use DD.MM.YYYY)", err)
		return
	}

	var expires time.Time
	if req.ExpiresAt != "" {
		if expires, err = time.Parse(time.RFC3339, req.ExpiresAt); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid expiresAt (use RFC3339)", err)
			return
		}
	}

	employeeIDs := make([]engine.EmployeeID, len(req.EmployeeIDs))
	for i, id := range req.EmployeeIDs {
		employeeIDs[i] = engine.EmployeeID(id)
	}

	org := engine.OrganizationID(r.URL.Query().Get("organizationId"))
	quest, err := quests.NewDefinition(quests.CreateParams{
		Title:        req.Title,
		Description:  req.Description,
		Reward:       engine.NewMoneyFromFloat(req.Reward),
		Target:       req.Target,
		Unit:         req.Unit,
		Date:         day,
		ExpiresAt:    expires,
		EmployeeIDs:  employeeIDs,
		Organization: org,
	})
	if err != nil {
		writeDomainError(w, "Invalid quest", err)
		return
	}

	questID, err := h.Store.CreateQuest(r.Context(), quest, org)
	if err != nil {
		writeDomainError(w, "Failed to create quest", err)
		return
	}

	detail, err := h.Quests.Detail(r.Context(), questID, org, time.Now().UTC())
	if err != nil {
		writeDomainError(w, "Failed to load created quest", err)
		return
	}
	writeJSON(w, http.StatusCreated, toDetailResponse(detail))
}

// GetQuestDetail returns the manager view of one quest: every assignee's
// standing with ranks plus aggregate counters.
func (h *Handler) GetQuestDetail(w http.ResponseWriter, r *http.Request) {
	id := engine.QuestID(chi.URLParam(r, "id"))
	org := engine.OrganizationID(r.URL.Query().Get("organizationId"))

	detail, err := h.Quests.Detail(r.Context(), id, org, time.Now().UTC())
	if err != nil {
		writeDomainError(w, "Failed to resolve quest", err)
		return
	}
	writeJSON(w, http.StatusOK, toDetailResponse(detail))
}

// AddProgress bumps an employee's counter on a quest.
func (h *Handler) AddProgress(w http.ResponseWriter, r *http.Request) {
	id := engine.QuestID(chi.URLParam(r, "id"))

	var req AddProgressRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.EmployeeID == "" {
		writeError(w, http.StatusBadRequest, "employeeId is required", nil)
		return
	}

	err := h.Store.AddQuestProgress(r.Context(), id, engine.EmployeeID(req.EmployeeID), req.Delta)
	if err != nil {
		writeDomainError(w, "Failed to add progress", err)
		return
	}

	current, err := h.Store.ProgressFor(r.Context(), id, engine.EmployeeID(req.EmployeeID))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to read progress", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"questId":         string(id),
		"employeeId":      req.EmployeeID,
		"currentProgress": current,
	})
}

// GetWaiterQuests returns a waiter's quests for a day, each with that
// waiter's standing. Defaults to today when no date is given.
func (h *Handler) GetWaiterQuests(w http.ResponseWriter, r *http.Request) {
	id := engine.EmployeeID(chi.URLParam(r, "id"))
	org := engine.OrganizationID(r.URL.Query().Get("organizationId"))

	day, err := parseDayParam(r.URL.Query().Get("date"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date format (use DD.MM.YYYY)", err)
		return
	}

	list, err := h.Quests.EmployeeQuests(r.Context(), id, day, org, time.Now().UTC())
	if err != nil {
		writeDomainError(w, "Failed to list quests", err)
		return
	}
	writeJSON(w, http.StatusOK, toQuestResponses(list))
}

// =============================================================================
// SALARY HANDLERS
// =============================================================================

// GetWaiterSalary returns the daily earnings statement for a waiter.
func (h *Handler) GetWaiterSalary(w http.ResponseWriter, r *http.Request) {
	id := engine.EmployeeID(chi.URLParam(r, "id"))
	org := engine.OrganizationID(r.URL.Query().Get("organizationId"))

	day, err := parseDayParam(r.URL.Query().Get("date"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date format (use DD.MM.YYYY)", err)
		return
	}

	stmt, err := h.Payroll.ComposeDay(r.Context(), id, day, org, time.Now().UTC())
	if err != nil {
		writeDomainError(w, "Failed to compose salary", err)
		return
	}
	writeJSON(w, http.StatusOK, toSalaryResponse(stmt))
}

// =============================================================================
// FACT HANDLERS
// =============================================================================

// CreateFine records a deduction against an employee for a day.
func (h *Handler) CreateFine(w http.ResponseWriter, r *http.Request) {
	var req CreateFineRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	day, err := engine.ParseDay(req.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date format (use DD.MM.YYYY)", err)
		return
	}

	fine := engine.Fine{
		EmployeeID: engine.EmployeeID(req.EmployeeID),
		Date:       day,
		Reason:     req.Reason,
		Amount:     engine.NewMoneyFromFloat(req.Amount),
	}
	id, err := h.Store.CreateFine(r.Context(), fine)
	if err != nil {
		writeDomainError(w, "Failed to create fine", err)
		return
	}

	writeJSON(w, http.StatusCreated, CreateFineResponse{
		ID:         id,
		EmployeeID: req.EmployeeID,
		Date:       day.String(),
		Reason:     req.Reason,
		Amount:     req.Amount,
	})
}

// RecordOrder attributes a closed order to an employee. The order feeds
// the day's shift fact (tables + revenue).
func (h *Handler) RecordOrder(w http.ResponseWriter, r *http.Request) {
	var req RecordOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	at := time.Now().UTC()
	if req.OrderedAt != "" {
		var err error
		if at, err = time.Parse(time.RFC3339, req.OrderedAt); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid orderedAt (use RFC3339)", err)
			return
		}
	}

	err := h.Store.RecordOrder(r.Context(),
		engine.EmployeeID(req.EmployeeID),
		engine.OrganizationID(req.OrganizationID),
		at, engine.NewMoneyFromFloat(req.Amount))
	if err != nil {
		writeDomainError(w, "Failed to record order", err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"employeeId": req.EmployeeID,
		"orderedAt":  at.Format(time.RFC3339),
		"amount":     req.Amount,
	})
}

// =============================================================================
// RESPONSE HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

// writeDomainError maps the engine's error classes to HTTP status codes.
func writeDomainError(w http.ResponseWriter, message string, err error) {
	switch {
	case engine.IsNotFound(err):
		writeError(w, http.StatusNotFound, message, err)
	case engine.IsClientError(err):
		writeError(w, http.StatusBadRequest, message, err)
	default:
		writeError(w, http.StatusInternalServerError, message, err)
	}
}
