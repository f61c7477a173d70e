package cli

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/EgorDm/nauman/pkg/config"
	"github.com/EgorDm/nauman/pkg/flow"
	"github.com/EgorDm/nauman/pkg/shell"
)

var validateCommand = &cli.Command{
	Name:      "validate",
	Usage:     "Check job files without running them",
	ArgsUsage: "<job-file>...",
	Description: `Parse the given job files and verify their structure: task ids,
policies, shells, hook nesting, and log destinations. Nothing is
executed; the planned task order is printed instead.

Examples:
  nauman validate job.yaml
  nauman validate jobs/*.yaml`,
	Flags: []cli.Flag{
		&cli.BoolFlag{
			Name:    "quiet",
			Aliases: []string{"q"},
			Usage:   "Only report validity, without the execution plan",
		},
	},
	Action: validateJobs,
}

func validateJobs(c *cli.Context) error {
	if c.NArg() == 0 {
		return fmt.Errorf("expected at least one job file")
	}

	failed := 0
	for _, path := range c.Args().Slice() {
		f, err := validateJob(path)
		if err != nil {
			fmt.Printf("✗ %s: %v\n", path, err)
			failed++
			continue
		}
		fmt.Printf("✓ %s\n", path)
		if !c.Bool("quiet") {
			printPlan(f)
		}
	}

	if failed > 0 {
		return cli.Exit(fmt.Sprintf("%d of %d job files invalid", failed, c.NArg()), 1)
	}
	return nil
}

// validateJob runs the full parse pipeline: structural validation, shell
// names, and flow construction with its policy checks.
func validateJob(path string) (*flow.Flow, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if _, err := shell.ParseKind(cfg.Shell); err != nil {
		return nil, err
	}
	return flow.FromConfig(cfg)
}

// printPlan lists the tasks in execution order, hooks indented under the
// task they decorate.
func printPlan(f *flow.Flow) {
	for i, step := range f.Steps() {
		marker := fmt.Sprintf("%d.", i+1)
		indent := "  "
		if step.Task.IsHook {
			indent = "    "
			marker = "-"
		}
		fmt.Printf("%s%s %s [%s]: %s\n", indent, marker, step.Task.Name, step.Task.Policy, step.Task.Run)
	}
}
