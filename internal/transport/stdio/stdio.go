// Package stdio implements the line-delimited duplex channel transport:
// one JSON message per line on stdin/stdout, session implicit per
// process connection, grounded on the teacher's JSON-RPC-over-stdio loop.
package stdio

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"sync"

	"github.com/kodegraph/membank/internal/dispatch"
	"github.com/kodegraph/membank/internal/logging"
	"github.com/kodegraph/membank/internal/progress"
)

// connID is the single implicit session key for this transport — one
// process connection, one session, per spec.md §4.8.
const connID = "stdio"

// Request is one line of input: `{tool, arguments}`.
type Request struct {
	Tool      string         `json:"tool"`
	Arguments map[string]any `json:"arguments"`
}

// lockedWriter serializes every write across the connection so a
// streamed progress notification line can never tear a response line.
type lockedWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (l *lockedWriter) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.w.Write(p)
}

// Transport runs the read loop against one Dispatcher.
type Transport struct {
	scanner *bufio.Scanner
	out     *lockedWriter
	dispatcher *dispatch.Dispatcher
	logger  *logging.Logger
}

// New wraps r/w (normally os.Stdin/os.Stdout) around a Dispatcher.
func New(r io.Reader, w io.Writer, d *dispatch.Dispatcher) *Transport {
	buf := bufio.NewScanner(r)
	buf.Buffer(make([]byte, 0, 64*1024), 8*1024*1024)
	return &Transport{
		scanner:    buf,
		out:        &lockedWriter{w: w},
		dispatcher: d,
		logger:     logging.With("component", "stdio_transport"),
	}
}

// Run blocks reading lines until EOF or ctx is cancelled, dispatching
// each one and writing its envelope back as a single line.
func (t *Transport) Run(ctx context.Context) error {
	notifier := progress.NewLineNotifier(t.out)

	for t.scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		line := t.scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var req Request
		if err := json.Unmarshal(line, &req); err != nil {
			t.writeEnvelope(dispatch.Failure("parse error: " + err.Error()))
			continue
		}

		envelope := t.dispatcher.Dispatch(ctx, connID, req.Tool, req.Arguments, notifier)
		t.writeEnvelope(envelope)
	}
	return t.scanner.Err()
}

func (t *Transport) writeEnvelope(e *dispatch.Envelope) {
	payload, err := json.Marshal(e)
	if err != nil {
		t.logger.Error("failed to marshal envelope", "error", err)
		return
	}
	payload = append(payload, '\n')
	if _, err := t.out.Write(payload); err != nil {
		t.logger.Error("failed to write response line", "error", err)
	}
}
