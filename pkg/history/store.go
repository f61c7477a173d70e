// Package history persists finished runs into a SQLite database so past
// results stay queryable across invocations.
package history

import (
	"database/sql"
	"time"

	"github.com/pkg/errors"

	"github.com/EgorDm/nauman/pkg/report"
)

// Store records run reports in SQLite.
//
// It expects an *sql.DB that uses a SQLite driver (for example,
// "modernc.org/sqlite"). The caller is responsible for importing
// the driver, e.g.:
//
//	import _ "modernc.org/sqlite"
type Store struct {
	db *sql.DB
}

// Run is one stored run, without its tasks.
type Run struct {
	ID        int64
	JobID     string
	JobName   string
	Status    report.Status
	StartTime time.Time
	Duration  int64 // milliseconds
	LogDir    string
}

// TaskRecord is one stored task result.
type TaskRecord struct {
	TaskID   string
	Name     string
	Hook     bool
	Status   report.Status
	ExitCode int
	Duration *int64 // milliseconds
}

// New initializes the required schema in the given database and returns a
// new Store.
func New(db *sql.DB) (*Store, error) {
	s := &Store{db: db}
	if err := s.initSchema(); err != nil {
		return nil, errors.Wrap(err, "failed to initialize history schema")
	}
	return s, nil
}

func (s *Store) initSchema() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			job_id TEXT NOT NULL,
			job_name TEXT NOT NULL,
			status TEXT NOT NULL,
			start_time INTEGER NOT NULL,
			duration_ms INTEGER NOT NULL,
			log_dir TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS run_tasks (
			run_id INTEGER NOT NULL REFERENCES runs(id),
			position INTEGER NOT NULL,
			task_id TEXT NOT NULL,
			name TEXT NOT NULL,
			hook INTEGER NOT NULL,
			status TEXT NOT NULL,
			exit_code INTEGER NOT NULL,
			duration_ms INTEGER,
			PRIMARY KEY (run_id, position)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_runs_job_id ON runs(job_id);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// RecordRun stores a finished run and all of its task results in one
// transaction. It returns the new run's row id.
func (s *Store) RecordRun(r *report.RunReport, logDir string) (int64, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return 0, errors.Wrap(err, "failed to begin history transaction")
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.Exec(`
		INSERT INTO runs (job_id, job_name, status, start_time, duration_ms, log_dir)
		VALUES (?, ?, ?, ?, ?, ?)`,
		r.JobID,
		r.JobName,
		string(r.Status),
		r.StartTime.UnixMilli(),
		r.Duration,
		logDir,
	)
	if err != nil {
		return 0, errors.Wrap(err, "failed to insert run")
	}
	runID, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}

	for i, task := range r.Tasks {
		_, err := tx.Exec(`
			INSERT INTO run_tasks (run_id, position, task_id, name, hook, status, exit_code, duration_ms)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			runID,
			i,
			task.ID,
			task.Name,
			task.Hook,
			string(task.Status),
			task.ExitCode,
			task.Duration,
		)
		if err != nil {
			return 0, errors.Wrapf(err, "failed to insert task %s", task.ID)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, errors.Wrap(err, "failed to commit history transaction")
	}
	return runID, nil
}

// RecentRuns returns up to limit runs of the given job, newest first. An
// empty jobID matches all jobs.
func (s *Store) RecentRuns(jobID string, limit int) ([]Run, error) {
	query := `
		SELECT id, job_id, job_name, status, start_time, duration_ms, log_dir
		FROM runs`
	var args []any
	if jobID != "" {
		query += " WHERE job_id = ?"
		args = append(args, jobID)
	}
	query += " ORDER BY id DESC LIMIT ?"
	args = append(args, limit)

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var status string
		var startMs int64
		if err := rows.Scan(&r.ID, &r.JobID, &r.JobName, &status, &startMs, &r.Duration, &r.LogDir); err != nil {
			return nil, err
		}
		r.Status = report.Status(status)
		r.StartTime = time.UnixMilli(startMs)
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// RunTasks returns the stored task results of a run in definition order.
func (s *Store) RunTasks(runID int64) ([]TaskRecord, error) {
	rows, err := s.db.Query(`
		SELECT task_id, name, hook, status, exit_code, duration_ms
		FROM run_tasks
		WHERE run_id = ?
		ORDER BY position`,
		runID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []TaskRecord
	for rows.Next() {
		var t TaskRecord
		var status string
		var duration sql.NullInt64
		if err := rows.Scan(&t.TaskID, &t.Name, &t.Hook, &status, &t.ExitCode, &duration); err != nil {
			return nil, err
		}
		t.Status = report.Status(status)
		if duration.Valid {
			t.Duration = &duration.Int64
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}
