package history

import (
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/EgorDm/nauman/pkg/report"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = db.Close()
	})

	store, err := New(db)
	require.NoError(t, err)
	return store
}

func sampleReport(jobID string, status report.Status) *report.RunReport {
	ms := int64(120)
	return &report.RunReport{
		Version:   report.Version,
		JobID:     jobID,
		JobName:   "Sample Job",
		Status:    status,
		StartTime: time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC),
		Duration:  1500,
		Summary:   report.Summary{Total: 2, Passed: 1, Skipped: 1},
		Tasks: []report.TaskReport{
			{ID: "build", Name: "Build", Status: report.StatusPassed, ExitCode: 0, Duration: &ms},
			{ID: "deploy", Name: "Deploy", Status: report.StatusSkipped, ExitCode: 0},
		},
	}
}

func TestStore_RecordAndQuery(t *testing.T) {
	store := newTestStore(t)

	runID, err := store.RecordRun(sampleReport("job-a", report.StatusPassed), "/tmp/logs/job-a-1")
	require.NoError(t, err)

	runs, err := store.RecentRuns("job-a", 10)
	require.NoError(t, err)
	require.Len(t, runs, 1)

	run := runs[0]
	require.Equal(t, runID, run.ID)
	require.Equal(t, "job-a", run.JobID)
	require.Equal(t, "Sample Job", run.JobName)
	require.Equal(t, report.StatusPassed, run.Status)
	require.Equal(t, int64(1500), run.Duration)
	require.Equal(t, "/tmp/logs/job-a-1", run.LogDir)
	require.Equal(t, int64(1714557600000), run.StartTime.UnixMilli())

	tasks, err := store.RunTasks(runID)
	require.NoError(t, err)
	require.Len(t, tasks, 2)

	require.Equal(t, "build", tasks[0].TaskID)
	require.Equal(t, report.StatusPassed, tasks[0].Status)
	require.NotNil(t, tasks[0].Duration)
	require.Equal(t, int64(120), *tasks[0].Duration)

	require.Equal(t, "deploy", tasks[1].TaskID)
	require.Equal(t, report.StatusSkipped, tasks[1].Status)
	require.Nil(t, tasks[1].Duration)
}

func TestStore_RecentRunsOrderingAndFilter(t *testing.T) {
	store := newTestStore(t)

	_, err := store.RecordRun(sampleReport("job-a", report.StatusPassed), "dir1")
	require.NoError(t, err)
	_, err = store.RecordRun(sampleReport("job-b", report.StatusFailed), "dir2")
	require.NoError(t, err)
	_, err = store.RecordRun(sampleReport("job-a", report.StatusFailed), "dir3")
	require.NoError(t, err)

	// Newest first within a job.
	runs, err := store.RecentRuns("job-a", 10)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	require.Equal(t, "dir3", runs[0].LogDir)
	require.Equal(t, "dir1", runs[1].LogDir)

	// Empty job id matches everything; limit applies.
	all, err := store.RecentRuns("", 2)
	require.NoError(t, err)
	require.Len(t, all, 2)
	require.Equal(t, "dir3", all[0].LogDir)
	require.Equal(t, "dir2", all[1].LogDir)
}

func TestStore_SchemaIsIdempotent(t *testing.T) {
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = db.Close()
	})

	_, err = New(db)
	require.NoError(t, err)
	_, err = New(db)
	require.NoError(t, err)
}

func TestStore_RunTasksUnknownRun(t *testing.T) {
	store := newTestStore(t)

	tasks, err := store.RunTasks(999)
	require.NoError(t, err)
	require.Empty(t, tasks)
}
