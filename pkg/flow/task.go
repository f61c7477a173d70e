// Package flow models a job as an ordered sequence of identified tasks.
package flow

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/EgorDm/nauman/pkg/core"
	"github.com/EgorDm/nauman/pkg/shell"
)

// TaskID is an opaque, run-unique task identifier. Hook tasks additionally
// carry the id of the main task they decorate (their focus).
type TaskID string

// NewTaskID mints a fresh identifier for a task instance.
func NewTaskID() TaskID {
	return TaskID(uuid.NewString())
}

// Policy decides whether a task runs given prior outcomes. It is always
// evaluated against the execution context as it was before the task.
type Policy int

const (
	// NoPriorFailed runs the task unless the overall run state is failed.
	NoPriorFailed Policy = iota
	// PriorSuccess runs the task unless the previous non-hook task exited non-zero.
	PriorSuccess
	// Always runs the task regardless of prior outcomes.
	Always
)

// ParsePolicy parses a policy name from a job file. Empty means NoPriorFailed.
func ParsePolicy(s string) (Policy, error) {
	switch s {
	case "", "no_prior_failed":
		return NoPriorFailed, nil
	case "prior_success":
		return PriorSuccess, nil
	case "always":
		return Always, nil
	default:
		return 0, fmt.Errorf("unknown execution policy %q", s)
	}
}

// String returns the job-file name of the policy.
func (p Policy) String() string {
	switch p {
	case PriorSuccess:
		return "prior_success"
	case Always:
		return "always"
	default:
		return "no_prior_failed"
	}
}

// Kind selects the handler that executes a task. Shell is the sole variant;
// the enum stays closed so dispatch remains an explicit switch.
type Kind int

const (
	// KindShell runs the task's command text under a shell.
	KindShell Kind = iota
)

// Task is an immutable task definition.
type Task struct {
	Name      string
	Run       string     // Command text handed to the shell
	Env       core.Env   // Task-level environment overrides
	Cwd       string     // Optional working directory override
	Policy    Policy
	Kind      Kind
	IsHook    bool       // Hooks never affect overall run state
	Shell     shell.Kind // Empty means the run-wide default shell
	ShellPath string     // Optional executable path for Shell
}

// TaskResult captures the outcome of one task. It is immutable once created.
type TaskResult struct {
	ID       TaskID
	Focus    TaskID // Set when the task was a hook
	ExitCode int    // -1 when the process died without a code
	Aborted  bool   // Skipped by policy, never launched
	Duration *time.Duration
}

// Failed reports whether the task actually ran and exited non-zero.
// An aborted task is neither a success nor a failure.
func (r TaskResult) Failed() bool {
	return !r.Aborted && r.ExitCode != 0
}
