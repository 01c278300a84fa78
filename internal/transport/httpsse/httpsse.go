// Package httpsse implements the HTTP+SSE transport: POST /mcp carries
// one request, GET /mcp upgrades to an SSE stream for progress
// notifications keyed by session id, DELETE /mcp ends the session, per
// spec.md §6.
package httpsse

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"

	"github.com/google/uuid"

	"github.com/kodegraph/membank/internal/dispatch"
	"github.com/kodegraph/membank/internal/logging"
	"github.com/kodegraph/membank/internal/progress"
)

const sessionHeader = "mcp-session-id"

// Request is one call body: `{tool, arguments}`.
type Request struct {
	Tool      string         `json:"tool"`
	Arguments map[string]any `json:"arguments"`
}

// Transport serves the three /mcp endpoints against one Dispatcher.
type Transport struct {
	dispatcher *dispatch.Dispatcher
	logger     *logging.Logger

	mu        sync.Mutex
	notifiers map[string]*progress.SSENotifier
}

// New constructs an httpsse Transport.
func New(d *dispatch.Dispatcher) *Transport {
	return &Transport{
		dispatcher: d,
		logger:     logging.With("component", "httpsse_transport"),
		notifiers:  make(map[string]*progress.SSENotifier),
	}
}

// Handler returns the net/http handler for /mcp, dispatching on method.
func (t *Transport) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/mcp", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
			t.handlePost(w, r)
		case http.MethodGet:
			t.handleStream(w, r)
		case http.MethodDelete:
			t.handleDelete(w, r)
		default:
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		}
	})
	return mux
}

func (t *Transport) handlePost(w http.ResponseWriter, r *http.Request) {
	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, dispatch.Failure("parse error: "+err.Error()))
		return
	}

	sessionID := r.Header.Get(sessionHeader)
	isInit := req.Tool == "init-memory-bank"
	if sessionID == "" {
		if !isInit {
			writeJSON(w, http.StatusBadRequest, dispatch.Failure("missing mcp-session-id header"))
			return
		}
		sessionID = uuid.NewString()
	}

	notifier := t.notifierFor(sessionID)
	envelope := t.dispatcher.Dispatch(r.Context(), sessionID, req.Tool, req.Arguments, notifier)

	w.Header().Set(sessionHeader, sessionID)
	writeJSON(w, http.StatusOK, envelope)
}

func (t *Transport) notifierFor(sessionID string) progress.Notifier {
	t.mu.Lock()
	defer t.mu.Unlock()
	if n, ok := t.notifiers[sessionID]; ok {
		return n
	}
	return progress.NoopNotifier{}
}

func (t *Transport) handleStream(w http.ResponseWriter, r *http.Request) {
	sessionID := r.Header.Get(sessionHeader)
	if sessionID == "" {
		http.Error(w, "missing mcp-session-id header", http.StatusBadRequest)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	notifier := progress.NewSSENotifier(32)
	t.mu.Lock()
	t.notifiers[sessionID] = notifier
	t.mu.Unlock()
	defer func() {
		t.mu.Lock()
		delete(t.notifiers, sessionID)
		t.mu.Unlock()
	}()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-notifier.Events():
			if !ok {
				return
			}
			payload, err := json.Marshal(event)
			if err != nil {
				continue
			}
			fmt.Fprintf(w, "data: %s\n\n", payload)
			flusher.Flush()
		}
	}
}

func (t *Transport) handleDelete(w http.ResponseWriter, r *http.Request) {
	sessionID := r.Header.Get(sessionHeader)
	if sessionID == "" {
		http.Error(w, "missing mcp-session-id header", http.StatusBadRequest)
		return
	}

	t.dispatcher.Sessions.Release(sessionID)

	t.mu.Lock()
	if n, ok := t.notifiers[sessionID]; ok {
		delete(t.notifiers, sessionID)
		n.Close()
	}
	t.mu.Unlock()

	w.WriteHeader(http.StatusNoContent)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// ListenAndServe is a thin convenience wrapper mirroring the stdio
// transport's Run, used by cmd/membank-server.
func (t *Transport) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: t.Handler()}
	go func() {
		<-ctx.Done()
		_ = srv.Close()
	}()
	return srv.ListenAndServe()
}
