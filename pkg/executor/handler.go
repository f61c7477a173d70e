package executor

import (
	"os/exec"
	"time"

	"github.com/pkg/errors"

	"github.com/EgorDm/nauman/pkg/flow"
	"github.com/EgorDm/nauman/pkg/logging"
	"github.com/EgorDm/nauman/pkg/shell"
)

// Environment variables synthesized for each task's process. This is a fixed
// contract between the executor and child processes; nothing else is added.
const (
	EnvPrevName   = "NAUMAN_PREV_NAME"
	EnvPrevID     = "NAUMAN_PREV_ID"
	EnvPrevCode   = "NAUMAN_PREV_CODE"
	EnvJobName    = "NAUMAN_JOB_NAME"
	EnvJobID      = "NAUMAN_JOB_ID"
	EnvTaskName   = "NAUMAN_TASK_NAME"
	EnvTaskID     = "NAUMAN_TASK_ID"
	EnvOutputFile = "NAUMAN_OUTPUT_FILE"
)

// Execute dispatches a task to the handler for its kind. The kinds are a
// closed set with shell as the only variant today.
func Execute(task *flow.Task, ctx *Context, logger *logging.Logger) (flow.TaskResult, error) {
	switch task.Kind {
	case flow.KindShell:
		return executeShell(task, ctx, logger)
	default:
		return flow.TaskResult{}, errors.Errorf("task %q has unknown handler kind %d", task.Name, task.Kind)
	}
}

// executeShell runs the task's command text under the resolved shell,
// capturing both output streams until the child exits.
func executeShell(task *flow.Task, ctx *Context, logger *logging.Logger) (flow.TaskResult, error) {
	env := ctx.Env.Clone()
	env.Extend(task.Env)

	cwd := ResolveCwd(ctx.Cwd, task.Cwd)

	kind := task.Shell
	if kind == "" {
		kind = ctx.Options.Shell
	}
	path := task.ShellPath
	// The run-wide path override only applies to the run-wide shell.
	if path == "" && kind == ctx.Options.Shell {
		path = ctx.Options.ShellPath
	}
	program, args, err := shell.Resolve(kind, path, task.Run)
	if err != nil {
		return flow.TaskResult{}, errors.Wrapf(err, "task %q", task.Name)
	}

	if err := logger.LogEvent(logging.TaskStarting{
		ID:      ctx.CurrentID,
		Name:    task.Name,
		Program: program,
		Args:    args,
		Cwd:     cwd,
		Env:     env,
		DryRun:  ctx.Options.DryRun,
	}); err != nil {
		return flow.TaskResult{}, err
	}

	if ctx.Options.DryRun {
		return flow.TaskResult{ID: ctx.CurrentID, Focus: ctx.Focus, ExitCode: 0}, nil
	}

	start := time.Now()
	cmd := exec.Command(program, args...) //#nosec G204 -- running user commands is the point
	cmd.Env = env.ToOS()
	cmd.Dir = cwd

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return flow.TaskResult{}, errors.Wrap(err, "failed to open stdout pipe")
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return flow.TaskResult{}, errors.Wrap(err, "failed to open stderr pipe")
	}

	if err := cmd.Start(); err != nil {
		return flow.TaskResult{}, errors.Wrapf(err, "failed to execute command: %s", task.Run)
	}

	captureErr := Capture(stdout, stderr, logger.Output())
	waitErr := cmd.Wait()
	if captureErr != nil {
		return flow.TaskResult{}, captureErr
	}
	var exitErr *exec.ExitError
	if waitErr != nil && !errors.As(waitErr, &exitErr) {
		return flow.TaskResult{}, errors.Wrapf(waitErr, "failed to wait for command: %s", task.Run)
	}

	duration := time.Since(start)
	return flow.TaskResult{
		ID:       ctx.CurrentID,
		Focus:    ctx.Focus,
		ExitCode: cmd.ProcessState.ExitCode(), // -1 when killed by a signal
		Duration: &duration,
	}, nil
}
