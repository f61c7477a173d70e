package logging

// Stream tags captured bytes with the child stream they came from.
type Stream int

const (
	// StreamStdout is the child's standard output.
	StreamStdout Stream = iota
	// StreamStderr is the child's standard error.
	StreamStderr
)

// String returns the conventional stream name.
func (s Stream) String() string {
	if s == StreamStderr {
		return "stderr"
	}
	return "stdout"
}

// DualOutputStream routes stream-tagged writes to one multiplexed output per
// child stream. A buffer passed to WriteStream reaches each destination sink
// in a single call, so sinks never observe a torn chunk; no ordering is
// guaranteed between the two streams beyond write arrival order.
type DualOutputStream struct {
	stdout *MultiplexedOutput
	stderr *MultiplexedOutput
}

// NewDualOutputStream pairs the two per-stream outputs.
func NewDualOutputStream(stdout, stderr *MultiplexedOutput) *DualOutputStream {
	return &DualOutputStream{stdout: stdout, stderr: stderr}
}

// WriteStream writes p to the destinations registered for the given stream.
func (d *DualOutputStream) WriteStream(stream Stream, p []byte) error {
	out := d.stdout
	if stream == StreamStderr {
		out = d.stderr
	}
	_, err := out.Write(p)
	return err
}

// Flush flushes both stream outputs.
func (d *DualOutputStream) Flush() error {
	if err := d.stdout.Flush(); err != nil {
		return err
	}
	return d.stderr.Flush()
}
