// Package executor drives a flow: policy gating, shell command handling,
// and concurrent capture of each task's output.
package executor

import (
	"path/filepath"

	"github.com/EgorDm/nauman/pkg/core"
	"github.com/EgorDm/nauman/pkg/flow"
	"github.com/EgorDm/nauman/pkg/shell"
)

// State is the overall run state. It is monotonic: once failed, a run never
// reverts to running, and hook task outcomes never move it either way.
type State int

const (
	// StateRunning means no non-hook task has failed so far.
	StateRunning State = iota
	// StateFailed means some non-hook, non-aborted task exited non-zero.
	StateFailed
)

// String returns the display name of the state.
func (s State) String() string {
	if s == StateFailed {
		return "failed"
	}
	return "running"
}

// Options is the snapshot of run-wide execution settings.
type Options struct {
	Shell     shell.Kind // Run-wide default shell
	ShellPath string     // Executable path override for the default shell
	DryRun    bool       // Announce tasks without spawning them
	SystemEnv bool       // Seed the base environment from the process environment
	Dotenv    string     // Optional dotenv file loaded at run start
	TempDir   string     // Base directory for task output files ("" = OS default)
	LogDir    string     // Base directory for run log directories
}

// Context is the run-wide mutable state. It is owned and mutated exclusively
// by the executing goroutine, strictly one task at a time, so it needs no
// locking.
type Context struct {
	Options Options
	Env     core.Env // Accumulated environment, last-write-wins
	Cwd     string
	LogDir  string

	State       State
	WillExecute bool // Policy decision for the current task

	CurrentID flow.TaskID
	Current   *flow.Task
	Focus     flow.TaskID // Focus of the current task when it is a hook

	Previous *flow.TaskResult // Last non-hook result, aborted included
}

// ResolveCwd applies the working directory rule: an absolute override wins,
// a relative one joins onto current, absence keeps current.
func ResolveCwd(current, override string) string {
	switch {
	case override == "":
		return current
	case filepath.IsAbs(override):
		return override
	default:
		return filepath.Join(current, override)
	}
}
