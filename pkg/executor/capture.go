package executor

import (
	"io"
	"sync"

	"github.com/pkg/errors"

	"github.com/EgorDm/nauman/pkg/logging"
)

const (
	// captureBufferSize is the number of bytes per read from a child stream.
	captureBufferSize = 1024
	// captureBacklog is how many chunks may be in flight before the readers
	// block. The bound is what throttles a chatty child when a sink is slow.
	captureBacklog = 4
)

// chunk is one bounded unit of captured output, tagged by source stream.
type chunk struct {
	stream logging.Stream
	data   []byte
}

// Capture merges a child's two output streams into the dual output without
// losing bytes, buffering unboundedly, or deadlocking.
//
// One worker goroutine per stream performs blocking reads and forwards a
// copy of every non-empty read through a bounded channel. The calling
// goroutine consumes chunks in arrival order, the temporal interleaving the
// workers happened to produce, and writes each chunk to
// the output in a single call. A worker stops on EOF or keeps its read
// error; once both are done the channel closes, the consumer drains out,
// and the first worker error surfaces.
//
// If a sink write fails the consumer stops writing but keeps draining, so
// the workers can run to EOF instead of blocking on a full channel forever;
// the sink error is returned and is fatal to the task.
func Capture(stdout, stderr io.Reader, out *logging.DualOutputStream) error {
	chunks := make(chan chunk, captureBacklog)
	readErrs := make([]error, 2)
	var wg sync.WaitGroup

	reader := func(r io.Reader, stream logging.Stream, errSlot *error) {
		defer wg.Done()
		buf := make([]byte, captureBufferSize)
		for {
			n, err := r.Read(buf)
			if n > 0 {
				data := make([]byte, n)
				copy(data, buf[:n])
				chunks <- chunk{stream: stream, data: data}
			}
			if err == io.EOF {
				return
			}
			if err != nil {
				*errSlot = err
				return
			}
		}
	}

	wg.Add(2)
	go reader(stdout, logging.StreamStdout, &readErrs[0])
	go reader(stderr, logging.StreamStderr, &readErrs[1])
	go func() {
		wg.Wait()
		close(chunks)
	}()

	var sinkErr error
	for c := range chunks {
		if sinkErr != nil {
			continue
		}
		if err := out.WriteStream(c.stream, c.data); err != nil {
			sinkErr = err
		}
	}

	// The channel is closed, so both workers have exited and their error
	// slots are visible.
	if sinkErr != nil {
		return errors.Wrap(sinkErr, "failed to write captured output")
	}
	for _, err := range readErrs {
		if err != nil {
			return errors.Wrap(err, "failed to read command output")
		}
	}
	return nil
}
