/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract, allowing:
  - Field renaming without breaking clients
  - API-specific validation
  - Version evolution

NAMING CONVENTION:
  - *Response: Response types returned to clients
  - *Request: Request body types from clients

WIRE FORMATS:
  - Calendar days: DD.MM.YYYY (the platform's display format)
  - Instants: RFC3339
  - Money/percent: JSON numbers; decimal exactness lives in the domain,
    the wire carries the rendered value

VALIDATION:
  Validation is done in handlers and domain constructors, not in DTOs.
  DTOs are pure data carriers.

SEE ALSO:
  - handlers.go: Uses these types
  - engine/day.go: The DD.MM.YYYY day codec
*/
package api

import (
	"time"

	"github.com/gastro/earnings-engine/engine"
	"github.com/gastro/earnings-engine/payroll"
	"github.com/gastro/earnings-engine/quests"
	"github.com/gastro/earnings-engine/store/sqlite"
)

// =============================================================================
// EMPLOYEES
// =============================================================================

// EmployeeResponse represents an employee in API responses.
type EmployeeResponse struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Role           string `json:"role"`
	OrganizationID string `json:"organizationId,omitempty"`
	CreatedAt      string `json:"createdAt,omitempty"`
}

// CreateEmployeeRequest is the request to create an employee.
type CreateEmployeeRequest struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Role           string `json:"role"`
	OrganizationID string `json:"organizationId"`
}

// SetPercentageRequest configures an employee's revenue share.
type SetPercentageRequest struct {
	Percentage float64 `json:"percentage"`
}

// =============================================================================
// QUESTS
// =============================================================================

// CreateQuestRequest is the manager's request to create a quest.
// An empty employeeIds list assigns the quest to every waiter.
type CreateQuestRequest struct {
	Title       string   `json:"title,omitempty"`
	Description string   `json:"description,omitempty"`
	Reward      float64  `json:"reward"`
	Target      int64    `json:"target"`
	Unit        string   `json:"unit"`
	Date        string   `json:"date"`                // DD.MM.YYYY
	ExpiresAt   string   `json:"expiresAt,omitempty"` // RFC3339
	EmployeeIDs []string `json:"employeeIds,omitempty"`
}

// QuestResponse is one quest seen through one employee's eyes.
type QuestResponse struct {
	QuestID            string  `json:"questId"`
	Title              string  `json:"title"`
	Description        string  `json:"description"`
	Reward             float64 `json:"reward"`
	Target             int64   `json:"target"`
	Unit               string  `json:"unit"`
	Date               string  `json:"date"`
	ExpiresAt          string  `json:"expiresAt"`
	CurrentProgress    int64   `json:"currentProgress"`
	ProgressPercentage float64 `json:"progressPercentage"`
	Completed          bool    `json:"completed"`
}

// EmployeeProgressResponse is one employee's standing on a quest.
type EmployeeProgressResponse struct {
	EmployeeID         string  `json:"employeeId"`
	CurrentProgress    int64   `json:"currentProgress"`
	ProgressPercentage float64 `json:"progressPercentage"`
	Completed          bool    `json:"completed"`
	Rank               int     `json:"rank"`
}

// QuestDetailResponse is the manager-facing quest view.
type QuestDetailResponse struct {
	QuestID            string                     `json:"questId"`
	Title              string                     `json:"title"`
	Description        string                     `json:"description"`
	Reward             float64                    `json:"reward"`
	Target             int64                      `json:"target"`
	Unit               string                     `json:"unit"`
	Date               string                     `json:"date"`
	ExpiresAt          string                     `json:"expiresAt"`
	Active             bool                       `json:"active"`
	TotalEmployees     int                        `json:"totalEmployees"`
	CompletedEmployees int                        `json:"completedEmployees"`
	AverageProgress    float64                    `json:"averageProgress"`
	EmployeeProgress   []EmployeeProgressResponse `json:"employeeProgress"`
}

// AddProgressRequest bumps a quest counter.
type AddProgressRequest struct {
	EmployeeID string `json:"employeeId"`
	Delta      int64  `json:"delta"`
}

// =============================================================================
// SALARY
// =============================================================================

// BonusItemResponse is one itemized bonus.
type BonusItemResponse struct {
	Type        string  `json:"type"`
	Amount      float64 `json:"amount"`
	Description string  `json:"description,omitempty"`
}

// PenaltyItemResponse is one itemized deduction.
type PenaltyItemResponse struct {
	Reason string  `json:"reason"`
	Amount float64 `json:"amount"`
}

// QuestRewardResponse is one payable quest reward.
type QuestRewardResponse struct {
	QuestID   string  `json:"questId"`
	QuestName string  `json:"questName"`
	Reward    float64 `json:"reward"`
}

// BreakdownResponse itemizes a day's earnings.
type BreakdownResponse struct {
	BaseSalary    float64               `json:"baseSalary"`
	Percentage    float64               `json:"percentage"`
	Bonuses       []BonusItemResponse   `json:"bonuses"`
	Penalties     []PenaltyItemResponse `json:"penalties"`
	QuestRewards  []QuestRewardResponse `json:"questRewards"`
	TotalEarnings float64               `json:"totalEarnings"`
}

// SalaryResponse is the complete daily statement for a waiter.
type SalaryResponse struct {
	EmployeeID       string            `json:"employeeId"`
	Date             string            `json:"date"`
	TablesCompleted  int               `json:"tablesCompleted"`
	TotalRevenue     float64           `json:"totalRevenue"`
	Salary           float64           `json:"salary"`
	SalaryPercentage float64           `json:"salaryPercentage"`
	Bonuses          float64           `json:"bonuses"`
	QuestBonus       float64           `json:"questBonus"`
	QuestDescription string            `json:"questDescription"`
	Penalties        float64           `json:"penalties"`
	TotalEarnings    float64           `json:"totalEarnings"`
	Breakdown        BreakdownResponse `json:"breakdown"`
}

// =============================================================================
// FINES / ORDERS
// =============================================================================

// CreateFineRequest records a deduction.
type CreateFineRequest struct {
	EmployeeID string  `json:"employeeId"`
	Date       string  `json:"date"` // DD.MM.YYYY
	Reason     string  `json:"reason"`
	Amount     float64 `json:"amount"`
}

// CreateFineResponse acknowledges a stored fine.
type CreateFineResponse struct {
	ID         int64   `json:"id"`
	EmployeeID string  `json:"employeeId"`
	Date       string  `json:"date"`
	Reason     string  `json:"reason"`
	Amount     float64 `json:"amount"`
}

// RecordOrderRequest attributes a closed order to an employee.
type RecordOrderRequest struct {
	EmployeeID     string  `json:"employeeId"`
	OrganizationID string  `json:"organizationId,omitempty"`
	OrderedAt      string  `json:"orderedAt,omitempty"` // RFC3339, empty = now
	Amount         float64 `json:"amount"`
}

// =============================================================================
// SCENARIOS / ERRORS
// =============================================================================

// ScenarioResponse represents a demo scenario.
type ScenarioResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// LoadScenarioRequest selects a scenario to load.
type LoadScenarioRequest struct {
	ScenarioID string `json:"scenarioId"`
}

// ErrorResponse is the standard error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details any    `json:"details,omitempty"`
}

// =============================================================================
// CONVERSION HELPERS
// =============================================================================

func toEmployeeResponse(e sqlite.Employee) EmployeeResponse {
	return EmployeeResponse{
		ID:             string(e.ID),
		Name:           e.Name,
		Role:           e.Role,
		OrganizationID: string(e.OrganizationID),
		CreatedAt:      e.CreatedAt.Format(time.RFC3339),
	}
}

func toQuestResponse(q quests.EmployeeQuest) QuestResponse {
	return QuestResponse{
		QuestID:            string(q.Quest.ID),
		Title:              q.Quest.Title,
		Description:        q.Quest.Description,
		Reward:             q.Quest.Reward.Float64(),
		Target:             q.Quest.Target,
		Unit:               q.Quest.Unit,
		Date:               q.Quest.Date.String(),
		ExpiresAt:          q.Quest.Expiry().UTC().Format(time.RFC3339),
		CurrentProgress:    q.Current,
		ProgressPercentage: q.Progress.Float64(),
		Completed:          q.Completed,
	}
}

func toQuestResponses(qs []quests.EmployeeQuest) []QuestResponse {
	responses := make([]QuestResponse, len(qs))
	for i, q := range qs {
		responses[i] = toQuestResponse(q)
	}
	return responses
}

func toDetailResponse(d quests.Detail) QuestDetailResponse {
	progress := make([]EmployeeProgressResponse, len(d.Standings))
	for i, s := range d.Standings {
		progress[i] = EmployeeProgressResponse{
			EmployeeID:         string(s.EmployeeID),
			CurrentProgress:    s.Current,
			ProgressPercentage: s.Progress.Float64(),
			Completed:          s.Completed,
			Rank:               s.Rank,
		}
	}
	return QuestDetailResponse{
		QuestID:            string(d.Quest.ID),
		Title:              d.Quest.Title,
		Description:        d.Quest.Description,
		Reward:             d.Quest.Reward.Float64(),
		Target:             d.Quest.Target,
		Unit:               d.Quest.Unit,
		Date:               d.Quest.Date.String(),
		ExpiresAt:          d.Quest.Expiry().UTC().Format(time.RFC3339),
		Active:             d.Active,
		TotalEmployees:     d.TotalEmployees,
		CompletedEmployees: d.CompletedEmployees,
		AverageProgress:    d.AverageProgress.Float64(),
		EmployeeProgress:   progress,
	}
}

func toSalaryResponse(s *payroll.DayStatement) SalaryResponse {
	b := s.Breakdown

	bonuses := make([]BonusItemResponse, len(b.Bonuses))
	for i, bonus := range b.Bonuses {
		bonuses[i] = BonusItemResponse{
			Type:        string(bonus.Type),
			Amount:      bonus.Amount.Float64(),
			Description: bonus.Description,
		}
	}
	penalties := make([]PenaltyItemResponse, len(b.Penalties))
	for i, fine := range b.Penalties {
		penalties[i] = PenaltyItemResponse{
			Reason: fine.Reason,
			Amount: fine.Amount.Float64(),
		}
	}
	rewards := make([]QuestRewardResponse, len(b.QuestRewards))
	for i, reward := range b.QuestRewards {
		rewards[i] = QuestRewardResponse{
			QuestID:   string(reward.QuestID),
			QuestName: reward.QuestName,
			Reward:    reward.Reward.Float64(),
		}
	}

	return SalaryResponse{
		EmployeeID:       string(s.EmployeeID),
		Date:             s.Date.String(),
		TablesCompleted:  s.TablesCompleted,
		TotalRevenue:     s.TotalRevenue.Float64(),
		Salary:           s.Salary.Float64(),
		SalaryPercentage: s.SalaryPercentage.Float64(),
		Bonuses:          s.Bonuses.Float64(),
		QuestBonus:       s.QuestBonus.Float64(),
		QuestDescription: s.QuestDescription,
		Penalties:        s.Penalties.Float64(),
		TotalEarnings:    s.TotalEarnings.Float64(),
		Breakdown: BreakdownResponse{
			BaseSalary:    b.BaseSalary.Float64(),
			Percentage:    b.Percentage.Float64(),
			Bonuses:       bonuses,
			Penalties:     penalties,
			QuestRewards:  rewards,
			TotalEarnings: b.TotalEarnings.Float64(),
		},
	}
}

func parseDayParam(s string) (engine.Day, error) {
	if s == "" {
		return engine.DayOf(time.Now().UTC()), nil
	}
	return engine.ParseDay(s)
}
