package flow

import (
	"fmt"
	"strings"

	"github.com/EgorDm/nauman/pkg/config"
	"github.com/EgorDm/nauman/pkg/core"
	"github.com/EgorDm/nauman/pkg/shell"
)

// FromConfig builds an executable flow from a parsed job file. Each task's
// before-hooks precede it and its after-hooks follow it, all tagged with the
// main task's identifier as their focus.
func FromConfig(cfg *config.Config) (*Flow, error) {
	id := cfg.ID
	if id == "" {
		id = Slug(cfg.Name)
	}

	f := New(id, cfg.Name, core.Env(cfg.Env).Clone(), cfg.Cwd)

	for i, tc := range cfg.Tasks {
		mainID := taskID(tc)
		position := i + 1

		for _, hc := range tc.Before {
			hook, err := buildTask(hc, position, true)
			if err != nil {
				return nil, err
			}
			f.Append(taskID(hc), hook, mainID)
		}

		task, err := buildTask(tc, position, false)
		if err != nil {
			return nil, err
		}
		f.Append(mainID, task, "")

		for _, hc := range tc.After {
			hook, err := buildTask(hc, position, true)
			if err != nil {
				return nil, err
			}
			f.Append(taskID(hc), hook, mainID)
		}
	}

	return f, nil
}

func taskID(tc config.TaskConfig) TaskID {
	if tc.ID != "" {
		return TaskID(tc.ID)
	}
	return NewTaskID()
}

func buildTask(tc config.TaskConfig, position int, hook bool) (*Task, error) {
	name := tc.Name
	if name == "" {
		name = fmt.Sprintf("Task %d", position)
	}

	policy, err := ParsePolicy(tc.Policy)
	if err != nil {
		return nil, fmt.Errorf("task %q: %w", name, err)
	}

	var kind shell.Kind
	if tc.Shell != "" {
		kind, err = shell.ParseKind(tc.Shell)
		if err != nil {
			return nil, fmt.Errorf("task %q: %w", name, err)
		}
	}

	return &Task{
		Name:      name,
		Run:       tc.Run,
		Env:       core.Env(tc.Env).Clone(),
		Cwd:       tc.Cwd,
		Policy:    policy,
		Kind:      KindShell,
		IsHook:    hook,
		Shell:     kind,
		ShellPath: tc.ShellPath,
	}, nil
}

// Slug turns a display name into a filesystem and identifier friendly token.
func Slug(name string) string {
	var b strings.Builder
	lastDash := true
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
