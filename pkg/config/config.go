// Package config handles job file parsing and run options for nauman.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config represents a parsed job file.
type Config struct {
	Name  string            `yaml:"name"`
	ID    string            `yaml:"id"`    // Defaults to a slug of Name
	Env   map[string]string `yaml:"env"`   // Job-level environment
	Cwd   string            `yaml:"cwd"`   // Job-level working directory
	Shell string            `yaml:"shell"` // Default shell for all tasks

	Options Options     `yaml:"options"`
	Logging []LogConfig `yaml:"logging"`
	Tasks   []TaskConfig `yaml:"tasks"`

	SourcePath string `yaml:"-"` // Path to the source file
}

// Options are the run-wide execution settings.
type Options struct {
	ShellPath string `yaml:"shell_path"` // Executable path for the default shell
	DryRun    bool   `yaml:"dry_run"`    // Announce tasks without spawning them
	SystemEnv *bool  `yaml:"system_env"` // Inherit the process environment (default true)
	Dotenv    string `yaml:"dotenv"`     // Optional dotenv file loaded at run start
	TempDir   string `yaml:"temp_dir"`   // Base directory for task output files
	LogDir    string `yaml:"log_dir"`    // Base directory for run log directories
	HistoryDB string `yaml:"history_db"` // Optional SQLite run-history database
}

// InheritSystemEnv reports whether the process environment seeds the run.
func (o Options) InheritSystemEnv() bool {
	return o.SystemEnv == nil || *o.SystemEnv
}

// TaskConfig is one task entry in the job file. Before and After hold hook
// tasks that decorate this one; hooks never affect the overall run state.
type TaskConfig struct {
	ID        string            `yaml:"id"` // Defaults to a generated identifier
	Name      string            `yaml:"name"`
	Run       string            `yaml:"run"`
	Env       map[string]string `yaml:"env"`
	Cwd       string            `yaml:"cwd"`
	Policy    string            `yaml:"policy"` // no_prior_failed | prior_success | always
	Shell     string            `yaml:"shell"`
	ShellPath string            `yaml:"shell_path"`

	Before []TaskConfig `yaml:"before"`
	After  []TaskConfig `yaml:"after"`
}

// LogConfig describes one output destination for captured task output.
type LogConfig struct {
	Type     string `yaml:"type"`     // console | file | null
	Stdout   *bool  `yaml:"stdout"`   // Receive the stdout stream (default true)
	Stderr   *bool  `yaml:"stderr"`   // Receive the stderr stream (default true)
	Internal bool   `yaml:"internal"` // Also receive audit events
	Name     string `yaml:"name"`     // File name within the run log directory
	Split    bool   `yaml:"split"`    // One file per task instead of one per run
}

// Log destination types.
const (
	LogConsole = "console"
	LogFile    = "file"
	LogNull    = "null"
)

// WantStdout reports whether the destination receives the stdout stream.
func (l LogConfig) WantStdout() bool { return l.Stdout == nil || *l.Stdout }

// WantStderr reports whether the destination receives the stderr stream.
func (l LogConfig) WantStderr() bool { return l.Stderr == nil || *l.Stderr }

// DefaultLogging is used when the job file configures no destinations:
// everything to the console, audit events included.
func DefaultLogging() []LogConfig {
	return []LogConfig{{Type: LogConsole, Internal: true}}
}

// Load reads and validates a job file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path) //#nosec G304 -- path is a user-provided job file
	if err != nil {
		return nil, fmt.Errorf("failed to read job file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("%s: invalid job file: %w", path, err)
	}
	cfg.SourcePath = path

	if cfg.Name == "" {
		base := filepath.Base(path)
		cfg.Name = base[:len(base)-len(filepath.Ext(base))]
	}
	if len(cfg.Logging) == 0 {
		cfg.Logging = DefaultLogging()
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &cfg, nil
}

// Validate checks the structural rules a job file must satisfy. Shell and
// policy names are validated later, when the flow is built.
func (c *Config) Validate() error {
	if len(c.Tasks) == 0 {
		return fmt.Errorf("job %q has no tasks", c.Name)
	}

	seen := make(map[string]bool)
	var checkTask func(t TaskConfig, hook bool) error
	checkTask = func(t TaskConfig, hook bool) error {
		if t.Run == "" {
			return fmt.Errorf("task %q has no run command", t.Name)
		}
		if t.ID != "" {
			if seen[t.ID] {
				return fmt.Errorf("duplicate task id %q", t.ID)
			}
			seen[t.ID] = true
		}
		if hook && (len(t.Before) > 0 || len(t.After) > 0) {
			return fmt.Errorf("hook task %q cannot have hooks of its own", t.Name)
		}
		for _, h := range t.Before {
			if err := checkTask(h, true); err != nil {
				return err
			}
		}
		for _, h := range t.After {
			if err := checkTask(h, true); err != nil {
				return err
			}
		}
		return nil
	}

	for _, t := range c.Tasks {
		if err := checkTask(t, false); err != nil {
			return err
		}
	}

	for _, l := range c.Logging {
		switch l.Type {
		case LogConsole, LogFile, LogNull:
		default:
			return fmt.Errorf("unknown log destination type %q", l.Type)
		}
		if l.Type == LogFile && l.Name == "" && !l.Split {
			return fmt.Errorf("file log destination needs a name or split: true")
		}
	}

	return nil
}
