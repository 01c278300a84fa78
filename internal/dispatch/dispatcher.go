// Package dispatch implements the Tool Dispatcher: a static table of
// named handlers, each wired to a typed argument parser and an
// Operations Layer call, per spec.md §4.7.
package dispatch

import (
	"context"

	"github.com/kodegraph/membank/internal/errors"
	"github.com/kodegraph/membank/internal/facade"
	"github.com/kodegraph/membank/internal/progress"
	"github.com/kodegraph/membank/internal/session"
)

// Handler is one tool's entry in the dispatch table. conn identifies the
// calling connection/session; args is the call's raw arguments object.
type Handler func(ctx context.Context, d *Dispatcher, conn string, sess *session.Session, args map[string]any, notify progress.Notifier) (any, error)

// Dispatcher holds the static handler table plus the façade and session
// manager every handler needs. One instance is shared across every
// connection a transport serves.
type Dispatcher struct {
	Facade   *facade.Facade
	Sessions *session.Manager
	handlers map[string]Handler
}

// New constructs a Dispatcher with the full tool table wired (see
// handlers.go for registerHandlers).
func New(f *facade.Facade) *Dispatcher {
	d := &Dispatcher{
		Facade:   f,
		Sessions: session.NewManager(),
		handlers: map[string]Handler{},
	}
	registerHandlers(d)
	return d
}

// Dispatch runs the six-step algorithm from spec.md §4.7 for one call and
// returns the envelope a transport writes back verbatim.
func (d *Dispatcher) Dispatch(ctx context.Context, conn, tool string, arguments map[string]any, notify progress.Notifier) *Envelope {
	if arguments == nil {
		arguments = map[string]any{}
	}
	if notify == nil {
		notify = progress.NoopNotifier{}
	}

	if tool == "init-memory-bank" {
		return d.dispatchInit(ctx, conn, arguments)
	}

	sess, err := d.Sessions.Get(conn)
	if err != nil {
		if root, ok := arguments["projectRoot"].(string); ok && root != "" {
			sess = &session.Session{ProjectRoot: root}
		} else {
			return Failure(err.Error())
		}
	}

	handler, ok := d.handlers[tool]
	if !ok {
		return Failure(errors.InvalidArgumentErrorf("unknown tool %q", tool).Error())
	}

	result, err := handler(ctx, d, conn, sess, arguments, notify)
	if err != nil {
		return Failure(err.Error())
	}
	return Success(result)
}

func (d *Dispatcher) dispatchInit(ctx context.Context, conn string, arguments map[string]any) *Envelope {
	root, _ := arguments["projectRoot"].(string)
	if root == "" {
		return Failure(errors.InvalidArgumentError("init-memory-bank requires projectRoot").Error())
	}
	repository, _ := arguments["repository"].(string)
	branch, _ := arguments["branch"].(string)

	sess := d.Sessions.Bind(conn, root, repository, branch)

	// Ensuring the client actually opens happens through the façade so a
	// failed cold-start surfaces here, not on the session's first real call.
	if _, err := d.Facade.EnsureClient(ctx, sess.ProjectRoot); err != nil {
		d.Sessions.Release(conn)
		return Failure(err.Error())
	}

	return Success(map[string]any{"projectRoot": sess.ProjectRoot, "repository": sess.Repository, "branch": sess.Branch})
}
