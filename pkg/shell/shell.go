// Package shell resolves shell kinds to executable paths and argument vectors.
package shell

import (
	"fmt"
	"os/exec"
)

// Kind identifies a supported shell.
type Kind string

// Supported shells.
const (
	KindSh   Kind = "sh"
	KindBash Kind = "bash"
	KindZsh  Kind = "zsh"
	KindFish Kind = "fish"
	KindDash Kind = "dash"
	KindPwsh Kind = "pwsh"
	KindCmd  Kind = "cmd"
)

// DefaultKind is used when neither the job file nor a task names a shell.
const DefaultKind = KindSh

var kinds = map[Kind]bool{
	KindSh:   true,
	KindBash: true,
	KindZsh:  true,
	KindFish: true,
	KindDash: true,
	KindPwsh: true,
	KindCmd:  true,
}

// ParseKind validates a shell name from a job file or flag.
func ParseKind(s string) (Kind, error) {
	if s == "" {
		return DefaultKind, nil
	}
	k := Kind(s)
	if !kinds[k] {
		return "", fmt.Errorf("unknown shell %q", s)
	}
	return k, nil
}

// argv returns the flags that make the shell execute a command string
// passed as the final argument.
func (k Kind) argv() []string {
	switch k {
	case KindPwsh:
		return []string{"-NoProfile", "-Command"}
	case KindCmd:
		return []string{"/C"}
	default:
		return []string{"-c"}
	}
}

// Resolve returns the executable path and full argument vector that run
// command under the given shell. A non-empty path skips executable lookup.
func Resolve(kind Kind, path, command string) (string, []string, error) {
	prog := path
	if prog == "" {
		found, err := exec.LookPath(string(kind))
		if err != nil {
			return "", nil, fmt.Errorf("shell %q not found: %w", kind, err)
		}
		prog = found
	}
	return prog, append(kind.argv(), command), nil
}
