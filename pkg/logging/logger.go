package logging

import (
	"fmt"
	"strings"
	"time"

	"github.com/EgorDm/nauman/pkg/config"
	"github.com/EgorDm/nauman/pkg/core"
	"github.com/EgorDm/nauman/pkg/flow"
)

// Event is an audit event the Logger accepts opaquely.
type Event interface {
	auditLine() string
}

// TaskStarting is emitted right before a task launches, carrying the
// resolved program, argument vector, environment and working directory.
type TaskStarting struct {
	ID      flow.TaskID
	Name    string
	Program string
	Args    []string
	Cwd     string
	Env     core.Env
	DryRun  bool
}

func (e TaskStarting) auditLine() string {
	if e.DryRun {
		return fmt.Sprintf("dry run: %s (%s): %s %s", e.Name, e.ID, e.Program, strings.Join(e.Args, " "))
	}
	return fmt.Sprintf("starting: %s (%s) in %s: %s %s", e.Name, e.ID, e.Cwd, e.Program, strings.Join(e.Args, " "))
}

// TaskFinished is emitted after a task completes or is skipped by policy.
type TaskFinished struct {
	Name   string
	Result flow.TaskResult
}

func (e TaskFinished) auditLine() string {
	if e.Result.Aborted {
		return fmt.Sprintf("skipped: %s (%s) by policy", e.Name, e.Result.ID)
	}
	line := fmt.Sprintf("finished: %s (%s) with exit code %d", e.Name, e.Result.ID, e.Result.ExitCode)
	if e.Result.Duration != nil {
		line += fmt.Sprintf(" in %s", e.Result.Duration.Round(time.Millisecond))
	}
	return line
}

// RunSummary is emitted once, after the last task.
type RunSummary struct {
	JobName string
	Failed  bool
	Results []flow.TaskResult
}

func (e RunSummary) auditLine() string {
	var failed, skipped int
	for _, r := range e.Results {
		if r.Failed() {
			failed++
		}
		if r.Aborted {
			skipped++
		}
	}
	state := "ok"
	if e.Failed {
		state = "failed"
	}
	return fmt.Sprintf("job %s %s: %d tasks, %d failed, %d skipped",
		e.JobName, state, len(e.Results), failed, skipped)
}

// Logger is the run's logging collaborator. It owns the configured sinks,
// re-resolves the capture pipeline on every task switch, and writes one
// timestamped audit line per event into the destinations marked internal.
type Logger struct {
	configs []config.LogConfig
	dir     string
	files   *FileRegistry

	dual     *DualOutputStream
	internal *MultiplexedOutput

	now func() time.Time
}

// NewLogger creates a logger writing into the run's log directory.
func NewLogger(configs []config.LogConfig, dir string) *Logger {
	l := &Logger{
		configs: configs,
		dir:     dir,
		files:   NewFileRegistry(),
		now:     time.Now,
	}
	// Until the first task switch, events go to the default destinations.
	l.dual = NewDualOutputStream(NewMultiplexedOutput(), NewMultiplexedOutput())
	l.internal = NewMultiplexedOutput(NewStdoutSink())
	return l
}

// SwitchTask re-resolves the destination set for the task at the given
// position. Split file destinations get their per-task file here.
func (l *Logger) SwitchTask(index int, id flow.TaskID, name string) error {
	taskID := flow.Slug(name)
	if taskID == "" {
		taskID = string(id)
	}
	spec, err := SpecFromConfig(l.configs, l.dir, index, taskID, l.files)
	if err != nil {
		return err
	}
	l.dual = spec.Dual()
	l.internal = spec.Internal()
	return nil
}

// Output returns the stream the capture consumer writes into.
func (l *Logger) Output() *DualOutputStream {
	return l.dual
}

// LogEvent writes the event's audit line to the internal destinations.
func (l *Logger) LogEvent(ev Event) error {
	line := fmt.Sprintf("[%s] ── %s\n", l.now().Format("15:04:05.000"), ev.auditLine())
	_, err := l.internal.Write([]byte(line))
	return err
}

// Flush pushes buffered bytes out of every destination.
func (l *Logger) Flush() error {
	if err := l.dual.Flush(); err != nil {
		return err
	}
	if err := l.internal.Flush(); err != nil {
		return err
	}
	return l.files.FlushAll()
}

// Close flushes and closes the file destinations.
func (l *Logger) Close() error {
	if err := l.Flush(); err != nil {
		l.files.CloseAll()
		return err
	}
	return l.files.CloseAll()
}
