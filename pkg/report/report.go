// Package report renders run results for humans (ANSI console output) and
// machines (a report.json file written into the run's log directory).
package report

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"

	"github.com/EgorDm/nauman/pkg/flow"
)

// Version is the report schema version.
const Version = "1.0.0"

// Status is the outcome of a task or of the whole run.
type Status string

// Status values.
const (
	StatusPassed  Status = "passed"
	StatusFailed  Status = "failed"
	StatusSkipped Status = "skipped"
)

// StatusOf maps a task result onto a report status.
func StatusOf(r flow.TaskResult) Status {
	switch {
	case r.Aborted:
		return StatusSkipped
	case r.ExitCode != 0:
		return StatusFailed
	default:
		return StatusPassed
	}
}

// RunReport is the machine-readable record of one run.
type RunReport struct {
	Version   string       `json:"version"`
	JobID     string       `json:"jobId"`
	JobName   string       `json:"jobName"`
	Status    Status       `json:"status"`
	StartTime time.Time    `json:"startTime"`
	EndTime   time.Time    `json:"endTime"`
	Duration  int64        `json:"duration"` // milliseconds
	Summary   Summary      `json:"summary"`
	Tasks     []TaskReport `json:"tasks"`
}

// Summary contains aggregated task counts.
type Summary struct {
	Total   int `json:"total"`
	Passed  int `json:"passed"`
	Failed  int `json:"failed"`
	Skipped int `json:"skipped"`
}

// TaskReport is the per-task record.
type TaskReport struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Hook     bool   `json:"hook,omitempty"`
	Status   Status `json:"status"`
	ExitCode int    `json:"exitCode"`
	Duration *int64 `json:"duration,omitempty"` // milliseconds, absent when skipped
}

// Build assembles a run report from the flow and its recorded results.
// Results arrive in feedback order, which matches definition order for a
// completed run.
func Build(f *flow.Flow, results []flow.TaskResult, failed bool, start, end time.Time) *RunReport {
	r := &RunReport{
		Version:   Version,
		JobID:     f.ID,
		JobName:   f.Name,
		Status:    StatusPassed,
		StartTime: start,
		EndTime:   end,
		Duration:  end.Sub(start).Milliseconds(),
		Tasks:     make([]TaskReport, 0, len(results)),
	}
	if failed {
		r.Status = StatusFailed
	}

	for _, res := range results {
		tr := TaskReport{
			ID:       string(res.ID),
			Name:     string(res.ID),
			Status:   StatusOf(res),
			ExitCode: res.ExitCode,
		}
		if task, ok := f.Task(res.ID); ok {
			tr.Name = task.Name
			tr.Hook = task.IsHook
		}
		if res.Duration != nil {
			ms := res.Duration.Milliseconds()
			tr.Duration = &ms
		}

		r.Summary.Total++
		switch tr.Status {
		case StatusPassed:
			r.Summary.Passed++
		case StatusFailed:
			r.Summary.Failed++
		case StatusSkipped:
			r.Summary.Skipped++
		}
		r.Tasks = append(r.Tasks, tr)
	}
	return r
}

// Write saves the report as report.json inside dir.
func Write(dir string, r *RunReport) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return errors.Wrap(err, "failed to encode run report")
	}
	path := filepath.Join(dir, "report.json")
	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.Wrapf(err, "failed to write run report %s", path)
	}
	return nil
}
