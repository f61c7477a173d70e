// Package logging implements nauman's output pipeline: individual sinks, the
// multiplexed fan-out over them, and the run-level audit logger.
package logging

import (
	"bufio"
	"io"
	"os"
	"sync"
)

// Sink is a single output destination for captured bytes. Implementations
// serialize concurrent access internally, because a sink instance may be
// shared between a task's capture path and the run's audit path.
type Sink interface {
	io.Writer
	Flush() error
}

// consoleSink writes to one of the parent process's console streams.
type consoleSink struct {
	mu sync.Mutex
	w  *os.File
}

// The console sinks are shared singletons so every writer of a console
// stream goes through the same lock.
var (
	stdoutSink = &consoleSink{w: os.Stdout}
	stderrSink = &consoleSink{w: os.Stderr}
)

// NewStdoutSink returns the shared sink for the parent's stdout.
func NewStdoutSink() Sink { return stdoutSink }

// NewStderrSink returns the shared sink for the parent's stderr.
func NewStderrSink() Sink { return stderrSink }

func (s *consoleSink) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.Write(p)
}

// Flush is a no-op: console streams are unbuffered here.
func (s *consoleSink) Flush() error { return nil }

// FileSink appends to a file through a buffer. Writes are serialized so
// concurrent writers never interleave partial chunks.
type FileSink struct {
	mu  sync.Mutex
	f   *os.File
	buf *bufio.Writer
}

// NewFileSink opens path in append mode, creating it if needed.
func NewFileSink(path string) (*FileSink, error) {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644) //#nosec G304 -- path comes from the job file
	if err != nil {
		return nil, err
	}
	return &FileSink{f: f, buf: bufio.NewWriter(f)}, nil
}

func (s *FileSink) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf.Write(p)
}

func (s *FileSink) Flush() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf.Flush()
}

// Close flushes buffered bytes and closes the underlying file.
func (s *FileSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.buf.Flush(); err != nil {
		s.f.Close()
		return err
	}
	return s.f.Close()
}

// WriterSink adapts an arbitrary io.Writer into a serialized sink.
type WriterSink struct {
	mu sync.Mutex
	w  io.Writer
}

// NewWriterSink wraps w. If w implements Flush, sink flushes reach it.
func NewWriterSink(w io.Writer) *WriterSink {
	return &WriterSink{w: w}
}

func (s *WriterSink) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.Write(p)
}

func (s *WriterSink) Flush() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if f, ok := s.w.(interface{ Flush() error }); ok {
		return f.Flush()
	}
	return nil
}

// nullSink accepts and drops all bytes.
type nullSink struct{}

// NewNullSink returns a sink that discards everything.
func NewNullSink() Sink { return nullSink{} }

func (nullSink) Write(p []byte) (int, error) { return len(p), nil }
func (nullSink) Flush() error                { return nil }

// MultiplexedOutput fans every write out to an ordered list of sinks.
//
// Write forwards the entire buffer to each sink in registration order. On
// the first sink error the call returns immediately, so sinks later in the
// list do not receive the buffer for that call. Callers must treat such an
// error as fatal rather than as a partial success.
type MultiplexedOutput struct {
	sinks []Sink
}

// NewMultiplexedOutput creates a fan-out over the given sinks.
func NewMultiplexedOutput(sinks ...Sink) *MultiplexedOutput {
	return &MultiplexedOutput{sinks: sinks}
}

// Add appends a sink; it receives all subsequent writes, after the ones
// registered before it.
func (m *MultiplexedOutput) Add(s Sink) {
	m.sinks = append(m.sinks, s)
}

func (m *MultiplexedOutput) Write(p []byte) (int, error) {
	for _, s := range m.sinks {
		n, err := s.Write(p)
		if err != nil {
			return 0, err
		}
		if n < len(p) {
			return 0, io.ErrShortWrite
		}
	}
	return len(p), nil
}

// Flush forwards to every sink, short-circuiting on the first error.
func (m *MultiplexedOutput) Flush() error {
	for _, s := range m.sinks {
		if err := s.Flush(); err != nil {
			return err
		}
	}
	return nil
}
