package workspace

import (
	"context"
	"sync"

	"github.com/rpggio/projector/internal/domain/project"
)

// Session is the state of the create-or-edit workflow. A nil TargetProjectID
// while open means a new project is being created.
type Session struct {
	TargetProjectID *int64
	IsOpen          bool
}

// Controller gates the single in-flight create-or-edit workflow.
type Controller struct {
	store *Store

	mu         sync.Mutex
	target     int64
	hasTarget  bool
	open       bool
	submitting bool
	// generation changes on every open and close so a submit can tell
	// whether the session it started in is still the current one.
	generation uint64
}

// OpenForCreate opens the session for a new project.
func (c *Controller) OpenForCreate() error {
	if err := c.store.checkOpen(); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resetLocked(true, 0, false)
	return nil
}

// OpenForEdit opens the session for an existing project. If pid is not loaded
// the session is closed and a not-found SelectionError is returned.
func (c *Controller) OpenForEdit(pid int64) error {
	if err := c.store.checkOpen(); err != nil {
		return err
	}
	_, ok := c.store.Project(pid)

	c.mu.Lock()
	defer c.mu.Unlock()
	if !ok {
		c.resetLocked(false, 0, false)
		return &SelectionError{Kind: SelectionNotFound, ID: pid}
	}
	c.resetLocked(true, pid, true)
	return nil
}

// Close closes the session. An in-flight Submit still completes and its
// result still reaches the store.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resetLocked(false, 0, false)
}

// State returns the current session.
func (c *Controller) State() Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.open {
		return Session{}
	}
	if !c.hasTarget {
		return Session{IsOpen: true}
	}
	target := c.target
	return Session{TargetProjectID: &target, IsOpen: true}
}

// Submit creates or renames the session's project. On success the session
// closes; on failure it stays open so the caller can retry or cancel. A target
// that disappeared from the store closes the session and fails with a
// not-found SelectionError; it is never recreated.
func (c *Controller) Submit(ctx context.Context, name string) (project.Project, error) {
	c.mu.Lock()
	if !c.open {
		c.mu.Unlock()
		return project.Project{}, ErrSessionClosed
	}
	if c.submitting {
		c.mu.Unlock()
		return project.Project{}, ErrSubmitInProgress
	}
	c.submitting = true
	generation := c.generation
	target, hasTarget := c.target, c.hasTarget
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.submitting = false
		c.mu.Unlock()
	}()

	if !hasTarget {
		created, err := c.store.Add(ctx, project.Draft{Name: name})
		if err != nil {
			return project.Project{}, err
		}
		c.closeIfCurrent(generation)
		return created, nil
	}

	existing, ok := c.store.Project(target)
	if !ok {
		c.closeIfCurrent(generation)
		return project.Project{}, &SelectionError{Kind: SelectionNotFound, ID: target}
	}
	existing.Name = name
	if err := c.store.Update(ctx, existing); err != nil {
		return project.Project{}, err
	}
	c.closeIfCurrent(generation)
	return existing, nil
}

func (c *Controller) closeIfCurrent(generation uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.generation == generation {
		c.resetLocked(false, 0, false)
	}
}

func (c *Controller) resetLocked(open bool, target int64, hasTarget bool) {
	c.open = open
	c.target = target
	c.hasTarget = hasTarget
	c.generation++
}
