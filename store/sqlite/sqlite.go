/*
Package sqlite provides the SQLite-backed fact store for the earnings engine.

PURPOSE:
  Implements the read-only provider interfaces the engine's consumers
  declare (quests.Store, payroll.ShiftFactProvider/FineProvider/
  SettingsProvider) plus the mutation surface the surrounding CRUD layer
  needs: creating quests and fines, recording orders, bumping progress
  counters. The engine itself never touches this package.

KEY TABLES:
  employees:       Waiters and managers, with their organization
  quests:          Quest definitions (reward, target, unit, day, expiry)
  quest_progress:  One counter per (quest, employee) - the progress facts
  orders:          Closed orders attributed to an employee (shift facts)
  fines:           Deductions per employee and day
  salary_settings: Per-employee revenue percentage (default applied on read)

ORGANIZATION FILTERING:
  Every read that accepts an organization id applies it here, before facts
  reach the engine. An empty organization id means "all".

DATE STORAGE:
  Calendar days are stored ISO (YYYY-MM-DD) for sargable range queries;
  the DD.MM.YYYY wire format exists only at the API boundary. Instants
  are RFC3339. Money is stored as decimal text, never floats.

CONCURRENCY:
  Uses sync.RWMutex for thread-safety. SQLite is opened with WAL
  (Write-Ahead Logging) so readers don't block.

USAGE:
  store, err := sqlite.New("./data/earnings.db")  // ":memory:" for tests
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

MIGRATION:
  Schema is auto-migrated on New(). For production, use a proper
  migration tool (golang-migrate, goose) with versioned migrations.

SEE ALSO:
  - quests/quests.go: Store interface this implements
  - payroll/payroll.go: Provider interfaces this implements
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/gastro/earnings-engine/engine"
	"github.com/gastro/earnings-engine/payroll"
)

// Store implements the fact provider interfaces using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS employees (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		role TEXT NOT NULL DEFAULT 'waiter',
		organization_id TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_employees_org
		ON employees(organization_id);

	CREATE TABLE IF NOT EXISTS quests (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		title TEXT NOT NULL,
		description TEXT NOT NULL,
		reward TEXT NOT NULL,
		target INTEGER NOT NULL,
		unit TEXT NOT NULL,
		quest_date TEXT NOT NULL,
		expires_at TEXT NOT NULL,
		organization_id TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_quests_date
		ON quests(quest_date);

	CREATE TABLE IF NOT EXISTS quest_progress (
		quest_id INTEGER NOT NULL REFERENCES quests(id),
		employee_id TEXT NOT NULL REFERENCES employees(id),
		current INTEGER NOT NULL DEFAULT 0,
		updated_at TEXT NOT NULL,
		PRIMARY KEY (quest_id, employee_id)
	);

	CREATE INDEX IF NOT EXISTS idx_progress_employee
		ON quest_progress(employee_id);

	CREATE TABLE IF NOT EXISTS orders (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		employee_id TEXT NOT NULL REFERENCES employees(id),
		organization_id TEXT NOT NULL DEFAULT '',
		ordered_at TEXT NOT NULL,
		amount TEXT NOT NULL,
		deleted INTEGER NOT NULL DEFAULT 0,
		created_at TEXT NOT NULL
	);

	-- Hot path: daily shift aggregation per employee.
	CREATE INDEX IF NOT EXISTS idx_orders_employee_date
		ON orders(employee_id, ordered_at);

	CREATE TABLE IF NOT EXISTS fines (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		employee_id TEXT NOT NULL REFERENCES employees(id),
		reason TEXT NOT NULL,
		amount TEXT NOT NULL,
		fine_date TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_fines_employee_date
		ON fines(employee_id, fine_date);

	CREATE TABLE IF NOT EXISTS salary_settings (
		employee_id TEXT PRIMARY KEY REFERENCES employees(id),
		percentage TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Reset drops all data. Development/demo scenarios only.
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, table := range []string{"salary_settings", "fines", "orders", "quest_progress", "quests", "employees"} {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return err
		}
	}
	return nil
}

// =============================================================================
// DAY / MONEY STORAGE HELPERS
// =============================================================================

const isoDay = "2006-01-02"

func dayToISO(d engine.Day) string {
	return d.Start().Format(isoDay)
}

func isoToDay(s string) (engine.Day, error) {
	t, err := time.Parse(isoDay, s)
	if err != nil {
		return engine.Day{}, fmt.Errorf("bad stored day %q: %w", s, err)
	}
	return engine.DayOf(t), nil
}

func moneyToText(m engine.Money) string { return m.Value.String() }

func textToMoney(s string) (engine.Money, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return engine.Money{}, fmt.Errorf("bad stored amount %q: %w", s, err)
	}
	return engine.Money{Value: d}, nil
}

// =============================================================================
// EMPLOYEES
// =============================================================================

// Employee is the stored staff record.
type Employee struct {
	ID             engine.EmployeeID
	Name           string
	Role           string // "waiter" or "manager"
	OrganizationID engine.OrganizationID
	CreatedAt      time.Time
}

// SaveEmployee inserts or replaces an employee record. An empty role
// defaults to waiter.
func (s *Store) SaveEmployee(ctx context.Context, e Employee) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	role := e.Role
	if role == "" {
		role = "waiter"
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO employees (id, name, role, organization_id, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		string(e.ID), e.Name, role, string(e.OrganizationID), time.Now().UTC().Format(time.RFC3339))
	return err
}

// GetEmployee returns an employee, or nil when absent.
func (s *Store) GetEmployee(ctx context.Context, id engine.EmployeeID) (*Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.getEmployeeLocked(ctx, id)
}

func (s *Store) getEmployeeLocked(ctx context.Context, id engine.EmployeeID) (*Employee, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, role, organization_id, created_at
		FROM employees WHERE id = ?`, string(id))

	var e Employee
	var createdAt string
	err := row.Scan(&e.ID, &e.Name, &e.Role, &e.OrganizationID, &createdAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	e.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return &e, nil
}

// ListEmployees returns employees, optionally restricted to one organization.
func (s *Store) ListEmployees(ctx context.Context, org engine.OrganizationID) ([]Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `SELECT id, name, role, organization_id, created_at FROM employees`
	args := []any{}
	if org != "" {
		query += ` WHERE organization_id = ?`
		args = append(args, string(org))
	}
	query += ` ORDER BY id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var employees []Employee
	for rows.Next() {
		var e Employee
		var createdAt string
		if err := rows.Scan(&e.ID, &e.Name, &e.Role, &e.OrganizationID, &createdAt); err != nil {
			return nil, err
		}
		e.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		employees = append(employees, e)
	}
	return employees, rows.Err()
}

// =============================================================================
// QUESTS
// =============================================================================

// CreateQuest persists a quest and seeds zero-progress counters for its
// assignees. When the quest names no employees it is assigned to every
// waiter, restricted to the quest's organization when one is given.
func (s *Store) CreateQuest(ctx context.Context, quest engine.Quest, org engine.OrganizationID) (engine.QuestID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", err
	}
	defer tx.Rollback()

	now := time.Now().UTC().Format(time.RFC3339)
	res, err := tx.ExecContext(ctx, `
		INSERT INTO quests (title, description, reward, target, unit, quest_date, expires_at, organization_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		quest.Title, quest.Description, moneyToText(quest.Reward), quest.Target, quest.Unit,
		dayToISO(quest.Date), quest.Expiry().UTC().Format(time.RFC3339), string(org), now)
	if err != nil {
		return "", err
	}
	rowID, err := res.LastInsertId()
	if err != nil {
		return "", err
	}

	assignees := quest.EmployeeIDs
	if len(assignees) == 0 {
		assignees, err = waiterIDsTx(ctx, tx, org)
		if err != nil {
			return "", err
		}
	}

	for _, emp := range assignees {
		if _, err := tx.ExecContext(ctx, `
			INSERT OR IGNORE INTO quest_progress (quest_id, employee_id, current, updated_at)
			VALUES (?, ?, 0, ?)`, rowID, string(emp), now); err != nil {
			return "", err
		}
	}

	if err := tx.Commit(); err != nil {
		return "", err
	}
	return engine.QuestID(strconv.FormatInt(rowID, 10)), nil
}

func waiterIDsTx(ctx context.Context, tx *sql.Tx, org engine.OrganizationID) ([]engine.EmployeeID, error) {
	query := `SELECT id FROM employees WHERE role = 'waiter'`
	args := []any{}
	if org != "" {
		query += ` AND organization_id = ?`
		args = append(args, string(org))
	}

	rows, err := tx.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []engine.EmployeeID
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, engine.EmployeeID(id))
	}
	return ids, rows.Err()
}

// QuestByID returns the quest definition, or nil when absent.
func (s *Store) QuestByID(ctx context.Context, id engine.QuestID) (*engine.Quest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rowID, err := strconv.ParseInt(string(id), 10, 64)
	if err != nil {
		return nil, nil // non-numeric ids cannot exist
	}

	row := s.db.QueryRowContext(ctx, `
		SELECT id, title, description, reward, target, unit, quest_date, expires_at
		FROM quests WHERE id = ?`, rowID)

	quest, err := scanQuest(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	quest.EmployeeIDs, err = s.assigneeIDs(ctx, rowID)
	if err != nil {
		return nil, err
	}
	return quest, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanQuest(row rowScanner) (*engine.Quest, error) {
	var (
		rowID           int64
		reward, qd, exp string
		quest           engine.Quest
	)
	if err := row.Scan(&rowID, &quest.Title, &quest.Description, &reward, &quest.Target, &quest.Unit, &qd, &exp); err != nil {
		return nil, err
	}

	quest.ID = engine.QuestID(strconv.FormatInt(rowID, 10))

	var err error
	if quest.Reward, err = textToMoney(reward); err != nil {
		return nil, err
	}
	if quest.Date, err = isoToDay(qd); err != nil {
		return nil, err
	}
	if quest.ExpiresAt, err = time.Parse(time.RFC3339, exp); err != nil {
		return nil, err
	}
	return &quest, nil
}

func (s *Store) assigneeIDs(ctx context.Context, questRowID int64) ([]engine.EmployeeID, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT employee_id FROM quest_progress WHERE quest_id = ? ORDER BY employee_id`, questRowID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []engine.EmployeeID
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, engine.EmployeeID(id))
	}
	return ids, rows.Err()
}

// ProgressForQuest returns every assignee's counter, restricted to the
// organization when one is given.
func (s *Store) ProgressForQuest(ctx context.Context, id engine.QuestID, org engine.OrganizationID) ([]engine.ProgressRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rowID, err := strconv.ParseInt(string(id), 10, 64)
	if err != nil {
		return nil, nil
	}

	query := `
		SELECT qp.employee_id, qp.current
		FROM quest_progress qp
		JOIN employees e ON e.id = qp.employee_id
		WHERE qp.quest_id = ?`
	args := []any{rowID}
	if org != "" {
		query += ` AND e.organization_id = ?`
		args = append(args, string(org))
	}
	query += ` ORDER BY qp.employee_id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []engine.ProgressRecord
	for rows.Next() {
		rec := engine.ProgressRecord{QuestID: id}
		if err := rows.Scan(&rec.EmployeeID, &rec.Current); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// QuestsOnDay returns the quests assigned to an employee on the given day.
func (s *Store) QuestsOnDay(ctx context.Context, employee engine.EmployeeID, day engine.Day, org engine.OrganizationID) ([]engine.Quest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT q.id, q.title, q.description, q.reward, q.target, q.unit, q.quest_date, q.expires_at
		FROM quests q
		JOIN quest_progress qp ON qp.quest_id = q.id
		WHERE qp.employee_id = ? AND q.quest_date = ?`
	args := []any{string(employee), dayToISO(day)}
	if org != "" {
		// Quests created without an organization are visible everywhere.
		query += ` AND q.organization_id IN ('', ?)`
		args = append(args, string(org))
	}
	query += ` ORDER BY q.id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []engine.Quest
	for rows.Next() {
		quest, err := scanQuest(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *quest)
	}
	return result, rows.Err()
}

// ProgressFor returns one employee's counter on one quest, 0 when no
// record exists yet.
func (s *Store) ProgressFor(ctx context.Context, id engine.QuestID, employee engine.EmployeeID) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rowID, err := strconv.ParseInt(string(id), 10, 64)
	if err != nil {
		return 0, nil
	}

	var current int64
	row := s.db.QueryRowContext(ctx, `
		SELECT current FROM quest_progress WHERE quest_id = ? AND employee_id = ?`,
		rowID, string(employee))
	switch err := row.Scan(&current); err {
	case nil:
		return current, nil
	case sql.ErrNoRows:
		return 0, nil
	default:
		return 0, err
	}
}

// AddQuestProgress bumps an employee's counter. The serving layer calls
// this as orders close; the engine only ever reads the result.
func (s *Store) AddQuestProgress(ctx context.Context, id engine.QuestID, employee engine.EmployeeID, delta int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rowID, err := strconv.ParseInt(string(id), 10, 64)
	if err != nil {
		return engine.ErrQuestNotFound
	}

	now := time.Now().UTC().Format(time.RFC3339)
	res, err := s.db.ExecContext(ctx, `
		UPDATE quest_progress SET current = current + ?, updated_at = ?
		WHERE quest_id = ? AND employee_id = ?`,
		delta, now, rowID, string(employee))
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return engine.ErrQuestNotFound
	}
	return nil
}

// =============================================================================
// ORDERS / SHIFT FACTS
// =============================================================================

// RecordOrder stores a closed order attributed to an employee.
func (s *Store) RecordOrder(ctx context.Context, employee engine.EmployeeID, org engine.OrganizationID, at time.Time, amount engine.Money) error {
	if amount.IsNegative() {
		return engine.ErrInvalidAmount
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	emp, err := s.getEmployeeLocked(ctx, employee)
	if err != nil {
		return err
	}
	if emp == nil {
		return engine.ErrEmployeeNotFound
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO orders (employee_id, organization_id, ordered_at, amount, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		string(employee), string(org), at.UTC().Format(time.RFC3339), moneyToText(amount),
		time.Now().UTC().Format(time.RFC3339))
	return err
}

// ShiftFact aggregates an employee's completed tables and attributed
// revenue for one day. A known employee with no orders yields a zero fact;
// an unknown employee fails with ErrEmployeeNotFound.
func (s *Store) ShiftFact(ctx context.Context, employee engine.EmployeeID, day engine.Day, org engine.OrganizationID) (engine.ShiftFact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	emp, err := s.getEmployeeLocked(ctx, employee)
	if err != nil {
		return engine.ShiftFact{}, err
	}
	if emp == nil {
		return engine.ShiftFact{}, engine.ErrEmployeeNotFound
	}

	from := day.Start().Format(time.RFC3339)
	to := day.End().Format(time.RFC3339)

	query := `
		SELECT amount FROM orders
		WHERE employee_id = ? AND deleted = 0 AND ordered_at >= ? AND ordered_at <= ?`
	args := []any{string(employee), from, to}
	if org != "" {
		query += ` AND organization_id = ?`
		args = append(args, string(org))
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return engine.ShiftFact{}, err
	}
	defer rows.Close()

	fact := engine.ShiftFact{
		EmployeeID:   employee,
		Date:         day,
		TotalRevenue: engine.ZeroMoney(),
	}
	for rows.Next() {
		var amount string
		if err := rows.Scan(&amount); err != nil {
			return engine.ShiftFact{}, err
		}
		m, err := textToMoney(amount)
		if err != nil {
			return engine.ShiftFact{}, err
		}
		fact.TablesCompleted++
		fact.TotalRevenue = fact.TotalRevenue.Add(m)
	}
	return fact, rows.Err()
}

// =============================================================================
// FINES
// =============================================================================

// CreateFine records a deduction against an employee for a day.
func (s *Store) CreateFine(ctx context.Context, fine engine.Fine) (int64, error) {
	if fine.Amount.IsNegative() {
		return 0, engine.ErrInvalidAmount
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	emp, err := s.getEmployeeLocked(ctx, fine.EmployeeID)
	if err != nil {
		return 0, err
	}
	if emp == nil {
		return 0, engine.ErrEmployeeNotFound
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO fines (employee_id, reason, amount, fine_date, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		string(fine.EmployeeID), fine.Reason, moneyToText(fine.Amount), dayToISO(fine.Date),
		time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// Fines returns the fines recorded against an employee for one day.
func (s *Store) Fines(ctx context.Context, employee engine.EmployeeID, day engine.Day) ([]engine.Fine, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT reason, amount, fine_date FROM fines
		WHERE employee_id = ? AND fine_date = ?
		ORDER BY id`, string(employee), dayToISO(day))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var fines []engine.Fine
	for rows.Next() {
		var (
			f          engine.Fine
			amount, fd string
		)
		if err := rows.Scan(&f.Reason, &amount, &fd); err != nil {
			return nil, err
		}
		f.EmployeeID = employee
		if f.Amount, err = textToMoney(amount); err != nil {
			return nil, err
		}
		if f.Date, err = isoToDay(fd); err != nil {
			return nil, err
		}
		fines = append(fines, f)
	}
	return fines, rows.Err()
}

// =============================================================================
// SALARY SETTINGS
// =============================================================================

// SetSalaryPercentage stores a per-employee revenue share.
func (s *Store) SetSalaryPercentage(ctx context.Context, employee engine.EmployeeID, pct engine.Percent) error {
	if !pct.InRange() {
		return &engine.PercentageRangeError{Got: pct}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO salary_settings (employee_id, percentage, updated_at)
		VALUES (?, ?, ?)`,
		string(employee), pct.Value.String(), time.Now().UTC().Format(time.RFC3339))
	return err
}

// SalaryPercentage returns the configured share, or the platform default
// of 5% when none is set.
func (s *Store) SalaryPercentage(ctx context.Context, employee engine.EmployeeID) (engine.Percent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var pct string
	row := s.db.QueryRowContext(ctx, `
		SELECT percentage FROM salary_settings WHERE employee_id = ?`, string(employee))
	switch err := row.Scan(&pct); err {
	case nil:
		d, err := decimal.NewFromString(pct)
		if err != nil {
			return engine.Percent{}, fmt.Errorf("bad stored percentage %q: %w", pct, err)
		}
		return engine.Percent{Value: d}, nil
	case sql.ErrNoRows:
		return payroll.DefaultPercentage, nil
	default:
		return engine.Percent{}, err
	}
}
