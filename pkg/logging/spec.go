package logging

import (
	"fmt"
	"path/filepath"

	"github.com/EgorDm/nauman/pkg/config"
)

// Pipe is one resolved destination: a sink plus which child streams it
// receives and whether audit events also land there.
type Pipe struct {
	Sink     Sink
	Stdout   bool
	Stderr   bool
	Internal bool
}

// Spec is the resolved destination set for one task.
type Spec struct {
	Pipes []Pipe
}

// Dual assembles the per-stream fan-outs the capture consumer writes into.
func (s Spec) Dual() *DualOutputStream {
	stdout := NewMultiplexedOutput()
	stderr := NewMultiplexedOutput()
	for _, p := range s.Pipes {
		if p.Stdout {
			stdout.Add(p.Sink)
		}
		if p.Stderr {
			stderr.Add(p.Sink)
		}
	}
	return NewDualOutputStream(stdout, stderr)
}

// Internal assembles the fan-out that receives audit events.
func (s Spec) Internal() *MultiplexedOutput {
	out := NewMultiplexedOutput()
	for _, p := range s.Pipes {
		if p.Internal {
			out.Add(p.Sink)
		}
	}
	return out
}

// FileRegistry hands out append-mode file sinks keyed by path, so a
// destination shared across tasks (such as the job log) keeps a single open
// handle and a single write lock for the whole run.
type FileRegistry struct {
	sinks map[string]*FileSink
	order []string
}

// NewFileRegistry creates an empty registry.
func NewFileRegistry() *FileRegistry {
	return &FileRegistry{sinks: make(map[string]*FileSink)}
}

// Sink returns the open sink for path, opening it on first use.
func (r *FileRegistry) Sink(path string) (*FileSink, error) {
	if s, ok := r.sinks[path]; ok {
		return s, nil
	}
	s, err := NewFileSink(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file %s: %w", path, err)
	}
	r.sinks[path] = s
	r.order = append(r.order, path)
	return s, nil
}

// FlushAll flushes every open file sink.
func (r *FileRegistry) FlushAll() error {
	for _, path := range r.order {
		if err := r.sinks[path].Flush(); err != nil {
			return err
		}
	}
	return nil
}

// CloseAll closes every open file sink, returning the first error.
func (r *FileRegistry) CloseAll() error {
	var first error
	for _, path := range r.order {
		if err := r.sinks[path].Close(); err != nil && first == nil {
			first = err
		}
	}
	r.sinks = make(map[string]*FileSink)
	r.order = nil
	return first
}

// SpecFromConfig resolves the configured destinations for one task. Console
// destinations expand to the shared console sinks, file destinations go
// through the registry, and split destinations get a per-task file named by
// task position and identifier.
func SpecFromConfig(cfgs []config.LogConfig, dir string, taskIndex int, taskID string, files *FileRegistry) (Spec, error) {
	var spec Spec
	for _, c := range cfgs {
		switch c.Type {
		case config.LogConsole:
			if c.WantStdout() {
				spec.Pipes = append(spec.Pipes, Pipe{
					Sink: NewStdoutSink(), Stdout: true, Internal: c.Internal,
				})
			}
			if c.WantStderr() {
				spec.Pipes = append(spec.Pipes, Pipe{
					// Audit events follow stdout so they are not emitted twice.
					Sink: NewStderrSink(), Stderr: true, Internal: c.Internal && !c.WantStdout(),
				})
			}

		case config.LogFile:
			name := c.Name
			if c.Split {
				name = fmt.Sprintf("%03d-%s.log", taskIndex, taskID)
				if c.Name != "" {
					name = fmt.Sprintf("%03d-%s", taskIndex, c.Name)
				}
			}
			sink, err := files.Sink(filepath.Join(dir, name))
			if err != nil {
				return Spec{}, err
			}
			spec.Pipes = append(spec.Pipes, Pipe{
				Sink:     sink,
				Stdout:   c.WantStdout(),
				Stderr:   c.WantStderr(),
				Internal: c.Internal,
			})

		case config.LogNull:
			spec.Pipes = append(spec.Pipes, Pipe{
				Sink:   NewNullSink(),
				Stdout: c.WantStdout(),
				Stderr: c.WantStderr(),
			})

		default:
			return Spec{}, fmt.Errorf("unknown log destination type %q", c.Type)
		}
	}
	return spec, nil
}
