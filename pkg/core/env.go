// Package core provides the shared execution model types for nauman.
package core

import (
	"fmt"
	"os"
	"sort"
	"strings"
)

// Env is a set of environment variables. Merging is last-write-wins:
// a later Extend overrides earlier values on key collision.
type Env map[string]string

// EnvFromOS captures the current process environment.
func EnvFromOS() Env {
	env := make(Env)
	for _, kv := range os.Environ() {
		if k, v, ok := strings.Cut(kv, "="); ok {
			env[k] = v
		}
	}
	return env
}

// Clone returns an independent copy of the environment.
func (e Env) Clone() Env {
	out := make(Env, len(e))
	for k, v := range e {
		out[k] = v
	}
	return out
}

// Extend merges other into e in place, overriding existing keys.
func (e Env) Extend(other Env) {
	for k, v := range other {
		e[k] = v
	}
}

// ToOS renders the environment in the KEY=VALUE form expected by os/exec.
// Keys are sorted so the rendering is deterministic.
func (e Env) ToOS() []string {
	out := make([]string, 0, len(e))
	for k, v := range e {
		out = append(out, fmt.Sprintf("%s=%s", k, v))
	}
	sort.Strings(out)
	return out
}
