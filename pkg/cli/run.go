package cli

import (
	"database/sql"
	"fmt"
	"path/filepath"
	"time"

	"github.com/urfave/cli/v2"
	_ "modernc.org/sqlite"

	"github.com/EgorDm/nauman/pkg/config"
	"github.com/EgorDm/nauman/pkg/executor"
	"github.com/EgorDm/nauman/pkg/flow"
	"github.com/EgorDm/nauman/pkg/history"
	"github.com/EgorDm/nauman/pkg/logger"
	"github.com/EgorDm/nauman/pkg/report"
	"github.com/EgorDm/nauman/pkg/shell"
)

var runCommand = &cli.Command{
	Name:      "run",
	Usage:     "Run the tasks of a job file",
	ArgsUsage: "<job-file>",
	Description: `Run a job file's tasks in order. Each run gets its own timestamped
log directory under the log base directory, holding the configured log
files, the diagnostic log, and report.json.

The process exits with the code of the first failed task, or 1 when
the run could not be carried out at all.

Examples:
  nauman run job.yaml
  nauman run job.yaml --dry-run
  nauman run job.yaml --shell bash -e staging.env
  nauman run job.yaml --history-db ~/.nauman/history.db`,
	Flags: []cli.Flag{
		&cli.BoolFlag{
			Name:  "dry-run",
			Usage: "Announce tasks without spawning them",
		},
		&cli.StringFlag{
			Name:    "env-file",
			Aliases: []string{"e"},
			Usage:   "Dotenv file loaded before the job's environment",
			EnvVars: []string{"NAUMAN_ENV_FILE"},
		},
		&cli.BoolFlag{
			Name:  "no-system-env",
			Usage: "Do not inherit the process environment",
		},
		&cli.StringFlag{
			Name:    "shell",
			Usage:   "Default shell for tasks (sh, bash, zsh, fish, dash, pwsh, cmd)",
			EnvVars: []string{"NAUMAN_SHELL"},
		},
		&cli.StringFlag{
			Name:  "shell-path",
			Usage: "Executable path for the default shell",
		},
		&cli.StringFlag{
			Name:    "log-dir",
			Usage:   "Base directory for run log directories (default: ./logs)",
			EnvVars: []string{"NAUMAN_LOG_DIR"},
		},
		&cli.StringFlag{
			Name:    "history-db",
			Usage:   "SQLite database recording finished runs",
			EnvVars: []string{"NAUMAN_HISTORY_DB"},
		},
	},
	Action: runJob,
}

func runJob(c *cli.Context) error {
	if c.NArg() != 1 {
		return fmt.Errorf("expected exactly one job file, got %d arguments", c.NArg())
	}

	cfg, err := config.Load(c.Args().First())
	if err != nil {
		return err
	}
	applyRunFlags(c, cfg)

	f, err := flow.FromConfig(cfg)
	if err != nil {
		return err
	}

	kind, err := shell.ParseKind(cfg.Shell)
	if err != nil {
		return err
	}
	opts := executor.Options{
		Shell:     kind,
		ShellPath: cfg.Options.ShellPath,
		DryRun:    cfg.Options.DryRun,
		SystemEnv: cfg.Options.InheritSystemEnv(),
		Dotenv:    cfg.Options.Dotenv,
		TempDir:   cfg.Options.TempDir,
		LogDir:    cfg.Options.LogDir,
	}

	e, err := executor.New(f, opts, cfg.Logging)
	if err != nil {
		return err
	}

	if err := logger.Init(filepath.Join(e.LogDir(), "nauman.log")); err != nil {
		fmt.Printf("Warning: failed to initialize diagnostic log: %v\n", err)
	}
	defer logger.Close()
	logger.SetVerbose(c.Bool("verbose"))

	logger.Info("=== Job started ===")
	logger.Info("Job: %s (%s), %d tasks", f.Name, f.ID, f.Len())
	logger.Info("Log directory: %s", e.LogDir())

	e.Callbacks = executor.Callbacks{
		OnTaskStart: report.PrintTaskStart,
		OnTaskEnd: func(position, total int, task *flow.Task, result flow.TaskResult) {
			report.PrintTaskEnd(task, result)
		},
	}

	start := time.Now()
	results, runErr := e.Run()
	if runErr != nil {
		logger.Error("Job aborted: %v", runErr)
	}

	// An aborted run still gets a summary over the tasks that did execute.
	failed := runErr != nil || e.State() == executor.StateFailed
	r := report.Build(f, results, failed, start, time.Now())
	report.PrintSummary(r)
	if err := report.Write(e.LogDir(), r); err != nil {
		logger.Error("Failed to write run report: %v", err)
		fmt.Printf("Warning: %v\n", err)
	}
	fmt.Printf("\n  Logs:   %s\n", e.LogDir())

	if cfg.Options.HistoryDB != "" {
		if err := recordHistory(cfg.Options.HistoryDB, r, e.LogDir()); err != nil {
			logger.Error("Failed to record run history: %v", err)
			fmt.Printf("Warning: %v\n", err)
		}
	}

	logger.Info("Job finished: %d passed, %d failed, %d skipped",
		r.Summary.Passed, r.Summary.Failed, r.Summary.Skipped)

	if runErr != nil {
		return runErr
	}
	if e.State() == executor.StateFailed {
		return cli.Exit("", failureExitCode(f, results))
	}
	return nil
}

// applyRunFlags lets command-line flags override the job file's options.
func applyRunFlags(c *cli.Context, cfg *config.Config) {
	if c.Bool("dry-run") {
		cfg.Options.DryRun = true
	}
	if c.IsSet("env-file") {
		cfg.Options.Dotenv = c.String("env-file")
	}
	if c.Bool("no-system-env") {
		inherit := false
		cfg.Options.SystemEnv = &inherit
	}
	if c.IsSet("shell") {
		cfg.Shell = c.String("shell")
		cfg.Options.ShellPath = "" // A new shell invalidates the configured path
	}
	if c.IsSet("shell-path") {
		cfg.Options.ShellPath = c.String("shell-path")
	}
	if c.IsSet("log-dir") {
		cfg.Options.LogDir = c.String("log-dir")
	}
	if cfg.Options.LogDir == "" {
		cfg.Options.LogDir = "logs"
	}
	if c.IsSet("history-db") {
		cfg.Options.HistoryDB = c.String("history-db")
	}
}

// failureExitCode picks the process exit code for a failed run: the exit
// code of the first failed main task, or 1 when that code cannot stand in
// (signal deaths report -1).
func failureExitCode(f *flow.Flow, results []flow.TaskResult) int {
	for _, r := range results {
		task, ok := f.Task(r.ID)
		if ok && task.IsHook {
			continue
		}
		if r.Failed() {
			if r.ExitCode > 0 && r.ExitCode < 256 {
				return r.ExitCode
			}
			return 1
		}
	}
	return 1
}

func recordHistory(path string, r *report.RunReport, logDir string) error {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("failed to open history database: %w", err)
	}
	defer db.Close()

	store, err := history.New(db)
	if err != nil {
		return err
	}
	_, err = store.RecordRun(r, logDir)
	return err
}
