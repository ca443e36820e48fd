// Package workspace holds the client-side project collection, the
// project/activity selection and the create-or-edit session.
package workspace

import (
	"log/slog"
)

// Options configures New.
type Options struct {
	Logger *slog.Logger
}

// Workspace owns one Store, one selection Coordinator and one edit-session
// Controller. Independent workspaces share no state.
type Workspace struct {
	Store     *Store
	Selection *Coordinator
	Session   *Controller
}

// New creates an empty workspace backed by svc.
func New(svc ProjectService, opts Options) *Workspace {
	store := newStore(svc, opts.Logger)
	return &Workspace{
		Store:     store,
		Selection: &Coordinator{store: store},
		Session:   &Controller{store: store},
	}
}

// Close tears the workspace down. Later commands fail with ErrWorkspaceClosed
// and every Watch channel is closed. Calls already talking to the backend
// finish normally. Close is idempotent.
func (w *Workspace) Close() error {
	w.Session.Close()
	w.Store.close()
	return nil
}
