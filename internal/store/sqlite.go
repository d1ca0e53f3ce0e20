package store

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"

	"FuyouSentinel/internal/model"
)

// ErrWorkplaceNotFound is returned when a shift or lookup references an unregistered workplace.
var ErrWorkplaceNotFound = errors.New("workplace not found")

// ErrDuplicateShift is returned by AddShift when an identical shift is already stored.
var ErrDuplicateShift = errors.New("duplicate shift")

// SQLiteStore persists shifts and the workplace registry. It implements collector.Source.
type SQLiteStore struct {
	db  *sql.DB
	mu  sync.Mutex
	log *logrus.Logger
}

// NewSQLiteStore opens (or creates) the SQLite database and runs migrations.
func NewSQLiteStore(dbPath string, log *logrus.Logger) (*SQLiteStore, error) {
	if log == nil {
		log = logrus.StandardLogger()
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	s := &SQLiteStore{db: db, log: log}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.WithField("path", dbPath).Info("sqlite store opened")
	return s, nil
}

func (s *SQLiteStore) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS workplaces (
			id          TEXT PRIMARY KEY,
			name        TEXT NOT NULL,
			hourly_wage REAL NOT NULL,
			updated_at  INTEGER NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS shifts (
			id           TEXT PRIMARY KEY,
			date         TEXT NOT NULL,
			workplace_id TEXT NOT NULL,
			earnings     REAL NOT NULL,
			hours        REAL NOT NULL,
			created_at   INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_shifts_date ON shifts(date)`,
		`CREATE INDEX IF NOT EXISTS idx_shifts_workplace ON shifts(workplace_id)`,

		// Collapse rows duplicated by repeated imports before enforcing the natural key.
		`DELETE FROM shifts WHERE rowid NOT IN (
			SELECT MIN(rowid) FROM shifts GROUP BY date, workplace_id, earnings, hours
		)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_shifts_natural ON shifts(date, workplace_id, earnings, hours)`,
	}

	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("exec %q: %w", stmt[:40], err)
		}
	}
	return nil
}

func (s *SQLiteStore) Name() string { return "sqlite" }

// UpsertWorkplace inserts or replaces a workplace registry entry.
func (s *SQLiteStore) UpsertWorkplace(w model.Workplace) error {
	if w.ID == "" {
		return fmt.Errorf("workplace id is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(`INSERT INTO workplaces (id, name, hourly_wage, updated_at)
		VALUES (?,?,?,?)
		ON CONFLICT(id) DO UPDATE SET name=excluded.name, hourly_wage=excluded.hourly_wage, updated_at=excluded.updated_at`,
		w.ID, w.Name, w.HourlyWage, time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("upsert workplace %s: %w", w.ID, err)
	}
	return nil
}

// GetWorkplace looks up a single workplace.
func (s *SQLiteStore) GetWorkplace(id string) (model.Workplace, error) {
	var w model.Workplace
	err := s.db.QueryRow(`SELECT id, name, hourly_wage FROM workplaces WHERE id = ?`, id).
		Scan(&w.ID, &w.Name, &w.HourlyWage)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Workplace{}, fmt.Errorf("%s: %w", id, ErrWorkplaceNotFound)
	}
	if err != nil {
		return model.Workplace{}, fmt.Errorf("get workplace %s: %w", id, err)
	}
	return w, nil
}

// AddShift stores a shift and returns its generated ID. The date must be a
// valid calendar date and the workplace must be registered.
func (s *SQLiteStore) AddShift(shift model.Shift) (string, error) {
	ids, err := s.ImportShifts([]model.Shift{shift})
	if err != nil {
		return "", err
	}
	if len(ids) == 0 {
		return "", fmt.Errorf("%s at %s: %w", shift.Date, shift.WorkplaceID, ErrDuplicateShift)
	}
	return ids[0], nil
}

// ImportShifts stores shifts in a single transaction and returns the IDs of
// the rows actually inserted. A shift identical to a stored one (same date,
// workplace, earnings and hours) is skipped, so re-importing an export is a no-op.
func (s *SQLiteStore) ImportShifts(shifts []model.Shift) ([]string, error) {
	for _, sh := range shifts {
		if _, ok := model.ParseDate(sh.Date); !ok {
			return nil, fmt.Errorf("invalid shift date %q", sh.Date)
		}
		if _, err := s.GetWorkplace(sh.WorkplaceID); err != nil {
			return nil, err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin import: %w", err)
	}
	defer tx.Rollback()

	ids := make([]string, 0, len(shifts))
	now := time.Now().Unix()
	for _, sh := range shifts {
		date, _ := model.ParseDate(sh.Date)
		id := uuid.NewString()
		res, err := tx.Exec(`INSERT INTO shifts (id, date, workplace_id, earnings, hours, created_at)
			VALUES (?,?,?,?,?,?)
			ON CONFLICT(date, workplace_id, earnings, hours) DO NOTHING`,
			id, date.Format(model.DateLayout), sh.WorkplaceID, sh.Earnings, sh.Hours, now,
		)
		if err != nil {
			return nil, fmt.Errorf("insert shift: %w", err)
		}
		if n, err := res.RowsAffected(); err == nil && n > 0 {
			ids = append(ids, id)
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit import: %w", err)
	}
	s.log.WithFields(logrus.Fields{
		"inserted": len(ids),
		"skipped":  len(shifts) - len(ids),
	}).Info("shifts imported")
	return ids, nil
}

// DeleteShift removes a shift by ID. Deleting a missing shift is not an error.
func (s *SQLiteStore) DeleteShift(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.Exec(`DELETE FROM shifts WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete shift %s: %w", id, err)
	}
	return nil
}

func (s *SQLiteStore) FetchShifts(from, to time.Time) ([]model.Shift, error) {
	rows, err := s.db.Query(`SELECT date, workplace_id, earnings, hours FROM shifts
		WHERE date >= ? AND date <= ? ORDER BY date, created_at`,
		from.Format(model.DateLayout), to.Format(model.DateLayout),
	)
	if err != nil {
		return nil, fmt.Errorf("query shifts: %w", err)
	}
	defer rows.Close()

	var shifts []model.Shift
	for rows.Next() {
		var sh model.Shift
		if err := rows.Scan(&sh.Date, &sh.WorkplaceID, &sh.Earnings, &sh.Hours); err != nil {
			return nil, fmt.Errorf("scan shift: %w", err)
		}
		shifts = append(shifts, sh)
	}
	return shifts, rows.Err()
}

func (s *SQLiteStore) FetchWorkplaces() ([]model.Workplace, error) {
	rows, err := s.db.Query(`SELECT id, name, hourly_wage FROM workplaces ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query workplaces: %w", err)
	}
	defer rows.Close()

	var workplaces []model.Workplace
	for rows.Next() {
		var w model.Workplace
		if err := rows.Scan(&w.ID, &w.Name, &w.HourlyWage); err != nil {
			return nil, fmt.Errorf("scan workplace: %w", err)
		}
		workplaces = append(workplaces, w)
	}
	return workplaces, rows.Err()
}

func (s *SQLiteStore) Close() error {
	s.log.Info("closing sqlite store")
	return s.db.Close()
}
