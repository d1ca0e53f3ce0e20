package recorder

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"

	"FuyouSentinel/internal/model"
)

// SQLiteRecorder persists report history to a SQLite database.
type SQLiteRecorder struct {
	db  *sql.DB
	mu  sync.Mutex
	log *logrus.Logger
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string, log *logrus.Logger) (*SQLiteRecorder, error) {
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

	// WAL mode so dashboards can read while the sentinel writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db, log: log}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.WithField("path", dbPath).Info("sqlite recorder opened")
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS report_snapshots (
			id                 INTEGER PRIMARY KEY AUTOINCREMENT,
			report_id          TEXT NOT NULL UNIQUE,
			timestamp          INTEGER NOT NULL,
			trigger_type       TEXT,
			current_income     REAL,
			risk_level         TEXT,
			dependent_progress REAL,
			safety_margin      REAL,
			conservative       REAL,
			realistic          REAL,
			optimistic         REAL,
			realistic_risk     TEXT,
			monthly_target     REAL,
			trend_multiplier   REAL,
			suggestion_count   INTEGER,
			alert_count        INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS idx_report_ts ON report_snapshots(timestamp)`,

		`CREATE TABLE IF NOT EXISTS alert_events (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp  INTEGER NOT NULL,
			report_id  TEXT,
			alert_type TEXT,
			title      TEXT,
			message    TEXT,
			notified   INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS idx_alert_ts ON alert_events(timestamp)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

func (r *SQLiteRecorder) RecordReport(snap *ReportSnapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rep := snap.Report
	st := rep.Status
	p := rep.Prediction

	_, err := r.db.Exec(`INSERT INTO report_snapshots
		(report_id, timestamp, trigger_type, current_income, risk_level, dependent_progress, safety_margin,
		 conservative, realistic, optimistic, realistic_risk, monthly_target, trend_multiplier,
		 suggestion_count, alert_count)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		snap.ReportID, snap.GeneratedAt.Unix(), snap.Trigger,
		rep.Summary.TotalIncome, string(st.RiskLevel), st.DependentProgress, st.SafetyMargin,
		p.Scenarios.Conservative, p.Scenarios.Realistic, p.Scenarios.Optimistic,
		string(p.RiskAssessment.Realistic), p.MonthlyTarget, p.TrendMultiplier,
		len(rep.Optimization), len(rep.Alerts),
	)
	return err
}

func (r *SQLiteRecorder) RecordAlerts(evts []AlertEvent) error {
	if len(evts) == 0 {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().Unix()
	for _, e := range evts {
		notified := 0
		if e.Notified {
			notified = 1
		}
		if _, err := tx.Exec(`INSERT INTO alert_events
			(timestamp, report_id, alert_type, title, message, notified)
			VALUES (?,?,?,?,?,?)`,
			now, e.ReportID, string(e.Alert.Type), e.Alert.Title, e.Alert.Message, notified,
		); err != nil {
			return fmt.Errorf("insert alert: %w", err)
		}
	}
	return tx.Commit()
}

// History returns the most recent report rows, newest first.
func (r *SQLiteRecorder) History(limit int) ([]HistoryPoint, error) {
	if limit <= 0 {
		limit = 30
	}
	rows, err := r.db.Query(`SELECT report_id, timestamp, current_income, risk_level, dependent_progress, realistic
		FROM report_snapshots ORDER BY timestamp DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	var out []HistoryPoint
	for rows.Next() {
		var (
			hp    HistoryPoint
			ts    int64
			level string
		)
		if err := rows.Scan(&hp.ReportID, &ts, &hp.CurrentIncome, &level, &hp.DependentProgress, &hp.Realistic); err != nil {
			return nil, fmt.Errorf("scan history: %w", err)
		}
		hp.GeneratedAt = time.Unix(ts, 0)
		hp.RiskLevel = model.RiskLevel(level)
		out = append(out, hp)
	}
	return out, rows.Err()
}

func (r *SQLiteRecorder) Close() error {
	r.log.Info("closing sqlite recorder")
	return r.db.Close()
}
