package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"hourbook/timesheet"

	_ "modernc.org/sqlite"
)

type SQLiteStore struct {
	db *sql.DB
}

var (
	ErrEntryNotFound = errors.New("time entry not found")
	ErrEntryBilled   = errors.New("time entry is linked to an invoice")
	ErrTimerRunning  = errors.New("a timer is already running for this owner")
	ErrTimerStopped  = errors.New("time entry is already stopped")
)

// Scope narrows ListEntries. Zero values mean "no filter" except Owner,
// which is always required.
type Scope struct {
	Owner   string
	Since   time.Time
	Project string
}

func OpenSQLite(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.ensureSchema(); err != nil {
		_ = db.Close()
		return nil, err
	}

	return store, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) ensureSchema() error {
	// end_datetime, hourly_rate, and invoice_id are nullable on purpose:
	// NULL end means the timer is still running, NULL rate means no rate
	// was declared, NULL invoice_id means not yet billed.
	const schema = `
CREATE TABLE IF NOT EXISTS time_entries (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	owner TEXT NOT NULL,
	project TEXT NOT NULL DEFAULT '',
	task TEXT NOT NULL DEFAULT '',
	description TEXT NOT NULL DEFAULT '',
	start_datetime TEXT NOT NULL,
	end_datetime TEXT,
	billable INTEGER NOT NULL DEFAULT 0 CHECK(billable IN (0, 1)),
	hourly_rate REAL CHECK(hourly_rate IS NULL OR hourly_rate >= 0),
	invoice_id TEXT,
	created_at TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_time_entries_owner_start
	ON time_entries(owner, start_datetime);

CREATE TABLE IF NOT EXISTS invoices (
	id TEXT PRIMARY KEY,
	number TEXT NOT NULL UNIQUE,
	created_at TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

const entryColumns = `
	id,
	owner,
	project,
	task,
	description,
	start_datetime,
	end_datetime,
	billable,
	hourly_rate,
	invoice_id
`

// StartEntry inserts a running entry (no end time) and returns its ID.
// Only one timer may run per owner at a time.
func (s *SQLiteStore) StartEntry(entry timesheet.Entry) (int64, error) {
	if entry.Owner == "" {
		return 0, fmt.Errorf("entry owner is required")
	}
	if entry.StartTime.IsZero() {
		return 0, fmt.Errorf("entry start time is required")
	}

	if _, running, err := s.ActiveEntry(entry.Owner); err != nil {
		return 0, err
	} else if running {
		return 0, ErrTimerRunning
	}

	const insertStmt = `
INSERT INTO time_entries (
	owner,
	project,
	task,
	description,
	start_datetime,
	end_datetime,
	billable,
	hourly_rate,
	invoice_id
) VALUES (?, ?, ?, ?, ?, NULL, ?, ?, NULL);`

	res, err := s.db.Exec(
		insertStmt,
		entry.Owner,
		entry.Project,
		entry.Task,
		entry.Description,
		entry.StartTime.Format(time.RFC3339),
		boolToInt(entry.Billable),
		nullFloat(entry.HourlyRate),
	)
	if err != nil {
		return 0, fmt.Errorf("insert running entry: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("read inserted row id: %w", err)
	}
	return id, nil
}

// StopEntry finalizes a running entry. The end time must be after the
// recorded start so a stopped timer can never yield a negative duration.
func (s *SQLiteStore) StopEntry(id int64, end time.Time) error {
	entry, found, err := s.GetEntryByID(id)
	if err != nil {
		return err
	}
	if !found {
		return ErrEntryNotFound
	}
	if !entry.Active() {
		return ErrTimerStopped
	}
	if !end.After(entry.StartTime) {
		return fmt.Errorf("end time must be after start time")
	}

	if _, err := s.db.Exec(
		`UPDATE time_entries SET end_datetime = ? WHERE id = ?;`,
		end.Format(time.RFC3339),
		id,
	); err != nil {
		return fmt.Errorf("stop entry %d: %w", id, err)
	}
	return nil
}

// InsertEntry persists a manually logged, already finalized entry.
func (s *SQLiteStore) InsertEntry(entry timesheet.Entry) (int64, error) {
	if entry.Owner == "" {
		return 0, fmt.Errorf("entry owner is required")
	}
	if entry.StartTime.IsZero() {
		return 0, fmt.Errorf("entry start time is required")
	}
	if entry.EndTime == nil {
		return 0, fmt.Errorf("manually logged entries require an end time")
	}
	if !entry.EndTime.After(entry.StartTime) {
		return 0, fmt.Errorf("end time must be after start time")
	}

	const insertStmt = `
INSERT INTO time_entries (
	owner,
	project,
	task,
	description,
	start_datetime,
	end_datetime,
	billable,
	hourly_rate,
	invoice_id
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?);`

	res, err := s.db.Exec(
		insertStmt,
		entry.Owner,
		entry.Project,
		entry.Task,
		entry.Description,
		entry.StartTime.Format(time.RFC3339),
		entry.EndTime.Format(time.RFC3339),
		boolToInt(entry.Billable),
		nullFloat(entry.HourlyRate),
		nullString(entry.InvoiceID),
	)
	if err != nil {
		return 0, fmt.Errorf("insert entry: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("read inserted row id: %w", err)
	}
	return id, nil
}

// ListEntries returns the owner's entries ordered by start time, then ID.
// Consumers of this ordering (report, invoicing) never re-sort.
func (s *SQLiteStore) ListEntries(scope Scope) ([]timesheet.Entry, error) {
	if scope.Owner == "" {
		return nil, fmt.Errorf("scope owner is required")
	}

	query := `SELECT ` + entryColumns + ` FROM time_entries WHERE owner = ?`
	args := []any{scope.Owner}
	if !scope.Since.IsZero() {
		query += ` AND start_datetime >= ?`
		args = append(args, scope.Since.Format(time.RFC3339))
	}
	if scope.Project != "" {
		query += ` AND project = ?`
		args = append(args, scope.Project)
	}
	query += ` ORDER BY start_datetime, id;`

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query entries: %w", err)
	}
	defer rows.Close()

	entries := make([]timesheet.Entry, 0, 64)
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate entries: %w", err)
	}

	return entries, nil
}

// ActiveEntry returns the owner's currently running entry, if any.
func (s *SQLiteStore) ActiveEntry(owner string) (timesheet.Entry, bool, error) {
	if owner == "" {
		return timesheet.Entry{}, false, fmt.Errorf("owner is required")
	}

	query := `SELECT ` + entryColumns + `
FROM time_entries
WHERE owner = ? AND end_datetime IS NULL
ORDER BY start_datetime DESC, id DESC
LIMIT 1;`

	row := s.db.QueryRow(query, owner)
	entry, err := scanEntry(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return timesheet.Entry{}, false, nil
		}
		return timesheet.Entry{}, false, err
	}
	return entry, true, nil
}

// GetEntryByID returns one entry by ID.
func (s *SQLiteStore) GetEntryByID(id int64) (timesheet.Entry, bool, error) {
	if id <= 0 {
		return timesheet.Entry{}, false, fmt.Errorf("entry id must be > 0")
	}

	query := `SELECT ` + entryColumns + ` FROM time_entries WHERE id = ?;`
	entry, err := scanEntry(s.db.QueryRow(query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return timesheet.Entry{}, false, nil
		}
		return timesheet.Entry{}, false, fmt.Errorf("query entry %d: %w", id, err)
	}
	return entry, true, nil
}

// UpdateEntry replaces the user-editable fields of the row with the given
// ID. Entries already linked to an invoice are immutable here.
func (s *SQLiteStore) UpdateEntry(entry timesheet.Entry) error {
	if entry.ID <= 0 {
		return fmt.Errorf("entry id must be > 0")
	}
	if entry.EndTime != nil && !entry.EndTime.After(entry.StartTime) {
		return fmt.Errorf("end time must be after start time")
	}

	existing, found, err := s.GetEntryByID(entry.ID)
	if err != nil {
		return err
	}
	if !found {
		return ErrEntryNotFound
	}
	if existing.Billed() {
		return ErrEntryBilled
	}

	const updateStmt = `
UPDATE time_entries
SET project = ?,
	task = ?,
	description = ?,
	start_datetime = ?,
	end_datetime = ?,
	billable = ?,
	hourly_rate = ?
WHERE id = ?;`

	var endRaw any
	if entry.EndTime != nil {
		endRaw = entry.EndTime.Format(time.RFC3339)
	}

	if _, err := s.db.Exec(
		updateStmt,
		entry.Project,
		entry.Task,
		entry.Description,
		entry.StartTime.Format(time.RFC3339),
		endRaw,
		boolToInt(entry.Billable),
		nullFloat(entry.HourlyRate),
		entry.ID,
	); err != nil {
		return fmt.Errorf("update entry %d: %w", entry.ID, err)
	}

	return nil
}

// DeleteEntry removes the row with the given ID. Invoiced entries are
// retained as billing records and cannot be deleted here.
func (s *SQLiteStore) DeleteEntry(id int64) (bool, error) {
	if id <= 0 {
		return false, fmt.Errorf("entry id must be > 0")
	}

	existing, found, err := s.GetEntryByID(id)
	if err != nil {
		return false, err
	}
	if !found {
		return false, nil
	}
	if existing.Billed() {
		return false, ErrEntryBilled
	}

	res, err := s.db.Exec(`DELETE FROM time_entries WHERE id = ?;`, id)
	if err != nil {
		return false, fmt.Errorf("delete entry %d: %w", id, err)
	}

	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("read deleted row count: %w", err)
	}
	return rowsAffected > 0, nil
}

// SaveInvoiceDraft creates the invoice row and links the given entries to
// it in one transaction. Already-billed and running entries are skipped by
// the WHERE clause, so an entry can never be invoiced twice. Returns the
// number of entries linked.
func (s *SQLiteStore) SaveInvoiceDraft(invoiceID, number string, entryIDs []int64) (int, error) {
	if invoiceID == "" || number == "" {
		return 0, fmt.Errorf("invoice id and number are required")
	}
	if len(entryIDs) == 0 {
		return 0, fmt.Errorf("at least one entry id is required")
	}

	tx, err := s.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}

	if _, err := tx.Exec(
		`INSERT INTO invoices (id, number) VALUES (?, ?);`,
		invoiceID,
		number,
	); err != nil {
		_ = tx.Rollback()
		return 0, fmt.Errorf("insert invoice %s: %w", invoiceID, err)
	}

	const linkStmt = `
UPDATE time_entries
SET invoice_id = ?
WHERE id = ? AND invoice_id IS NULL AND end_datetime IS NOT NULL;`

	stmt, err := tx.Prepare(linkStmt)
	if err != nil {
		_ = tx.Rollback()
		return 0, fmt.Errorf("prepare link statement: %w", err)
	}
	defer stmt.Close()

	linked := 0
	for _, id := range entryIDs {
		if id <= 0 {
			continue
		}
		res, err := stmt.Exec(invoiceID, id)
		if err != nil {
			_ = tx.Rollback()
			return 0, fmt.Errorf("link entry %d to invoice %s: %w", id, invoiceID, err)
		}
		rowsAffected, err := res.RowsAffected()
		if err == nil && rowsAffected > 0 {
			linked++
		}
	}

	if err := tx.Commit(); err != nil {
		return linked, fmt.Errorf("commit invoice transaction: %w", err)
	}

	return linked, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(row rowScanner) (timesheet.Entry, error) {
	var (
		entry     timesheet.Entry
		startRaw  string
		endRaw    sql.NullString
		billable  int
		rate      sql.NullFloat64
		invoiceID sql.NullString
	)

	if err := row.Scan(
		&entry.ID,
		&entry.Owner,
		&entry.Project,
		&entry.Task,
		&entry.Description,
		&startRaw,
		&endRaw,
		&billable,
		&rate,
		&invoiceID,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return timesheet.Entry{}, err
		}
		return timesheet.Entry{}, fmt.Errorf("scan entry: %w", err)
	}

	start, err := time.Parse(time.RFC3339, startRaw)
	if err != nil {
		return timesheet.Entry{}, fmt.Errorf("parse start datetime %q: %w", startRaw, err)
	}
	entry.StartTime = start
	entry.Billable = billable != 0

	if endRaw.Valid {
		end, err := time.Parse(time.RFC3339, endRaw.String)
		if err != nil {
			return timesheet.Entry{}, fmt.Errorf("parse end datetime %q: %w", endRaw.String, err)
		}
		entry.EndTime = &end
	}
	if rate.Valid {
		value := rate.Float64
		entry.HourlyRate = &value
	}
	if invoiceID.Valid {
		value := invoiceID.String
		entry.InvoiceID = &value
	}

	return entry, nil
}

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}

func nullFloat(value *float64) any {
	if value == nil {
		return nil
	}
	return *value
}

func nullString(value *string) any {
	if value == nil {
		return nil
	}
	return *value
}
