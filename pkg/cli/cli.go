// Package cli provides the command-line interface for nauman.
package cli

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/EgorDm/nauman/pkg/report"
)

// Version is set at build time.
var Version = "dev"

// GlobalFlags are available to all commands.
var GlobalFlags = []cli.Flag{
	&cli.BoolFlag{
		Name:    "verbose",
		Usage:   "Echo diagnostic log lines to stderr",
		EnvVars: []string{"NAUMAN_VERBOSE"},
	},
	&cli.BoolFlag{
		Name:  "no-ansi",
		Usage: "Disable ANSI colors",
	},
}

// Execute runs the CLI.
func Execute() {
	app := &cli.App{
		Name:    "nauman",
		Usage:   "A task runner for sequential shell jobs",
		Version: Version,
		Description: `Nauman runs the tasks of a job file one after another, applying
per-task execution policies, propagating environment between tasks,
and multiplexing command output to the console and log files.

Examples:
  nauman run job.yaml
  nauman run job.yaml --dry-run
  nauman run job.yaml --env-file .env --log-dir ./logs
  nauman validate job.yaml`,
		Flags: GlobalFlags,
		Before: func(c *cli.Context) error {
			if c.Bool("no-ansi") {
				report.DisableColors()
			}
			return nil
		},
		Commands: []*cli.Command{
			runCommand,
			validateCommand,
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
