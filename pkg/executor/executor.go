package executor

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/pkg/errors"

	"github.com/EgorDm/nauman/pkg/config"
	"github.com/EgorDm/nauman/pkg/core"
	"github.com/EgorDm/nauman/pkg/flow"
	"github.com/EgorDm/nauman/pkg/logger"
	"github.com/EgorDm/nauman/pkg/logging"
)

// Callbacks let the caller surface run progress (banners, live status)
// without the executor knowing how it is rendered.
type Callbacks struct {
	// OnTaskStart fires before a task's policy outcome is acted on.
	OnTaskStart func(position, total int, task *flow.Task, willExecute bool)
	// OnTaskEnd fires after a task's result is recorded.
	OnTaskEnd func(position, total int, task *flow.Task, result flow.TaskResult)
}

// Executor drives one run of a flow: strictly sequential tasks, policy
// gating, environment propagation, and output capture.
type Executor struct {
	flow      *flow.Flow
	ctx       *Context
	log       *logging.Logger
	Callbacks Callbacks
}

// New prepares a run: builds the base environment (process environment if
// enabled, then dotenv, then flow environment), creates the timestamped log
// directory, seeds the job-level variables, and opens the logging pipeline.
func New(f *flow.Flow, opts Options, logCfgs []config.LogConfig) (*Executor, error) {
	env := make(core.Env)
	if opts.SystemEnv {
		env = core.EnvFromOS()
	}
	if opts.Dotenv != "" {
		dotenv, err := loadDotenv(opts.Dotenv)
		if err != nil {
			return nil, err
		}
		env.Extend(dotenv)
	}
	env.Extend(f.Env)

	wd, err := os.Getwd()
	if err != nil {
		return nil, errors.Wrap(err, "failed to resolve working directory")
	}
	cwd := ResolveCwd(wd, f.Cwd)

	logDir := filepath.Join(opts.LogDir, fmt.Sprintf("%s-%s", f.ID, time.Now().Format("20060102-150405")))
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return nil, errors.Wrapf(err, "failed to create log directory %s", logDir)
	}

	env[EnvJobName] = f.Name
	env[EnvJobID] = f.ID

	return newWithLogger(f, opts, env, cwd, logDir, logging.NewLogger(logCfgs, logDir)), nil
}

// newWithLogger wires an executor around an existing logging pipeline.
func newWithLogger(f *flow.Flow, opts Options, env core.Env, cwd, logDir string, log *logging.Logger) *Executor {
	return &Executor{
		flow: f,
		ctx: &Context{
			Options: opts,
			Env:     env,
			Cwd:     cwd,
			LogDir:  logDir,
			State:   StateRunning,
		},
		log: log,
	}
}

// LogDir returns the run's log directory.
func (e *Executor) LogDir() string {
	return e.ctx.LogDir
}

// State returns the overall run state.
func (e *Executor) State() State {
	return e.ctx.State
}

// Run executes the flow's tasks in definition order. It returns the ordered
// results of every task that ran or was skipped; a fatal error aborts the
// remaining tasks and is returned alongside the results so far.
func (e *Executor) Run() ([]flow.TaskResult, error) {
	defer e.log.Close()

	total := e.flow.Len()
	for i, step := range e.flow.Steps() {
		if err := e.runStep(i+1, total, step); err != nil {
			return e.flow.Results(), err
		}
	}

	results := e.flow.Results()
	if err := e.log.LogEvent(logging.RunSummary{
		JobName: e.flow.Name,
		Failed:  e.ctx.State == StateFailed,
		Results: results,
	}); err != nil {
		return results, err
	}
	return results, e.log.Flush()
}

// runStep advances the state machine by one task.
func (e *Executor) runStep(position, total int, step flow.Step) error {
	ctx := e.ctx
	ctx.CurrentID, ctx.Current, ctx.Focus = step.ID, step.Task, step.Focus
	ctx.WillExecute = shouldExecute(step.Task.Policy, ctx)
	logger.Debug("task %s (%s): policy %s, will execute: %v",
		step.Task.Name, step.ID, step.Task.Policy, ctx.WillExecute)

	if err := e.log.SwitchTask(position, step.ID, step.Task.Name); err != nil {
		return err
	}
	if e.Callbacks.OnTaskStart != nil {
		e.Callbacks.OnTaskStart(position, total, step.Task, ctx.WillExecute)
	}

	var result flow.TaskResult
	if !ctx.WillExecute {
		// Policy skip: a first-class aborted result, never a failure.
		result = flow.TaskResult{ID: step.ID, Focus: step.Focus, ExitCode: 0, Aborted: true}
	} else {
		if ctx.Previous != nil {
			ctx.Env[EnvPrevID] = string(ctx.Previous.ID)
			ctx.Env[EnvPrevCode] = strconv.Itoa(ctx.Previous.ExitCode)
			if prev, ok := e.flow.Task(ctx.Previous.ID); ok {
				ctx.Env[EnvPrevName] = prev.Name
			}
		}
		ctx.Env[EnvTaskID] = string(step.ID)
		ctx.Env[EnvTaskName] = step.Task.Name

		err := core.WithTempFile(ctx.Options.TempDir, "nauman-*.env", func(path string) error {
			ctx.Env[EnvOutputFile] = path

			var execErr error
			result, execErr = Execute(step.Task, ctx, e.log)
			if execErr != nil {
				return execErr
			}

			exported, err := readTaskOutput(path)
			if err != nil {
				return err
			}
			ctx.Env.Extend(exported)
			return nil
		})
		if err != nil {
			return err
		}

		if err := e.log.LogEvent(logging.TaskFinished{Name: step.Task.Name, Result: result}); err != nil {
			return err
		}
	}

	e.flow.PutResult(result)
	if !step.Task.IsHook {
		if result.Failed() {
			ctx.State = StateFailed
		}
		prev := result
		ctx.Previous = &prev
	}

	if e.Callbacks.OnTaskEnd != nil {
		e.Callbacks.OnTaskEnd(position, total, step.Task, result)
	}
	return nil
}

// shouldExecute evaluates a task's policy against the context as it stands
// before the task modifies anything.
func shouldExecute(p flow.Policy, ctx *Context) bool {
	switch p {
	case flow.Always:
		return true
	case flow.PriorSuccess:
		return ctx.Previous == nil || ctx.Previous.ExitCode == 0
	default:
		return ctx.State != StateFailed
	}
}
