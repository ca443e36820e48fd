package workspace

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"

	"github.com/rpggio/projector/internal/client"
	"github.com/rpggio/projector/internal/domain/project"
)

// ProjectService is the remote project API the store reconciles against.
// *client.Client implements it.
type ProjectService interface {
	Fetch(ctx context.Context, offset int) ([]project.Project, error)
	Create(ctx context.Context, draft project.Draft) (project.Project, error)
	Update(ctx context.Context, proj project.Project) error
	Delete(ctx context.Context, id int64) error
}

// Snapshot is a consistent copy of the store for rendering.
type Snapshot struct {
	Projects  []project.Project
	Selection Selection
}

// Store holds the loaded projects and the selection. No lock is held across a
// remote call; local state changes only after the service reports success.
type Store struct {
	svc    ProjectService
	logger *slog.Logger
	locks  *keyedMutex

	mu       sync.RWMutex
	projects []project.Project
	index    map[int64]int
	sel      selection
	watchers map[*watcher]struct{}
	closed   bool
}

type watcher struct {
	ch chan struct{}
}

func newStore(svc ProjectService, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Store{
		svc:      svc,
		logger:   logger,
		locks:    newKeyedMutex(),
		index:    make(map[int64]int),
		watchers: make(map[*watcher]struct{}),
	}
}

// Load fetches one page starting at offset. Offset 0 replaces the collection;
// a later offset appends, replacing entries whose id is already loaded.
func (s *Store) Load(ctx context.Context, offset int) error {
	_, err := s.load(ctx, offset)
	return err
}

// LoadAll replaces the collection with every page the backend returns.
func (s *Store) LoadAll(ctx context.Context) error {
	offset := 0
	for {
		n, err := s.load(ctx, offset)
		if err != nil {
			return err
		}
		if n < project.PageSize {
			return nil
		}
		offset += n
	}
}

func (s *Store) load(ctx context.Context, offset int) (int, error) {
	if err := s.checkOpen(); err != nil {
		return 0, err
	}

	fetched, err := s.svc.Fetch(ctx, offset)
	if err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if offset == 0 {
		s.projects = make([]project.Project, 0, len(fetched))
		s.index = make(map[int64]int, len(fetched))
	}
	for _, p := range fetched {
		s.putLocked(p)
	}
	s.reconcileLocked()
	s.notifyLocked()

	s.logger.Debug("projects loaded", "offset", offset, "fetched", len(fetched), "total", len(s.projects))
	return len(fetched), nil
}

// Add creates a project remotely and appends the result. Nothing is inserted
// before the service confirms.
func (s *Store) Add(ctx context.Context, draft project.Draft) (project.Project, error) {
	if err := s.checkOpen(); err != nil {
		return project.Project{}, err
	}
	if err := s.validateActivities("add", 0, draft.Activities); err != nil {
		return project.Project{}, err
	}

	created, err := s.svc.Create(ctx, draft)
	if err != nil {
		return project.Project{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.putLocked(created)
	s.notifyLocked()

	s.logger.Debug("project added", "project_id", created.ID)
	return created.Clone(), nil
}

// Update replaces a project remotely, then locally if it is loaded.
// Calls for the same id run one at a time.
func (s *Store) Update(ctx context.Context, proj project.Project) error {
	if err := s.checkOpen(); err != nil {
		return err
	}
	if err := s.validateActivities("update", proj.ID, proj.Activities); err != nil {
		return err
	}

	unlock, err := s.locks.Lock(ctx, proj.ID)
	if err != nil {
		return err
	}
	defer unlock()

	if err := s.svc.Update(ctx, proj); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if i, ok := s.index[proj.ID]; ok {
		updated := proj.Clone()
		if updated.Activities == nil {
			updated.Activities = []int64{}
		}
		updated.CreatedAt = s.projects[i].CreatedAt
		s.projects[i] = updated
		s.reconcileLocked()
		s.notifyLocked()
	}

	s.logger.Debug("project updated", "project_id", proj.ID)
	return nil
}

// Remove deletes a project remotely and locally. A project the backend no
// longer knows is treated as already deleted. Removing the selected project
// clears the selection.
func (s *Store) Remove(ctx context.Context, id int64) error {
	if err := s.checkOpen(); err != nil {
		return err
	}

	unlock, err := s.locks.Lock(ctx, id)
	if err != nil {
		return err
	}
	defer unlock()

	if err := s.svc.Delete(ctx, id); err != nil {
		if !errors.Is(err, client.ErrNotFound) {
			return err
		}
		s.logger.Debug("project already absent on backend", "project_id", id)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.deleteLocked(id) {
		s.reconcileLocked()
		s.notifyLocked()
	}
	return nil
}

// Projects returns a copy of the loaded projects in collection order.
func (s *Store) Projects() []project.Project {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneAll(s.projects)
}

// Project returns a copy of the loaded project with id.
func (s *Store) Project(id int64) (project.Project, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i, ok := s.index[id]
	if !ok {
		return project.Project{}, false
	}
	return s.projects[i].Clone(), true
}

// Len returns the number of loaded projects.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.projects)
}

// Snapshot returns the projects and selection as of one instant.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{Projects: cloneAll(s.projects), Selection: s.sel.public()}
}

// Watch returns a channel that receives after any change to projects or
// selection. Notifications coalesce; read Snapshot for the current state.
// The channel is closed by stop or when the workspace closes.
func (s *Store) Watch() (<-chan struct{}, func()) {
	w := &watcher{ch: make(chan struct{}, 1)}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		close(w.ch)
		return w.ch, func() {}
	}
	s.watchers[w] = struct{}{}

	return w.ch, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if _, ok := s.watchers[w]; ok {
			delete(s.watchers, w)
			close(w.ch)
		}
	}
}

func (s *Store) checkOpen() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return ErrWorkspaceClosed
	}
	return nil
}

// validateActivities rejects activity lists with repeats or with activities
// another loaded project already holds. owner is the project being written.
func (s *Store) validateActivities(op string, owner int64, activities []int64) error {
	seen := make(map[int64]struct{}, len(activities))
	for _, aid := range activities {
		if _, dup := seen[aid]; dup {
			return &client.ServiceError{Op: op, Kind: client.ValidationFailed, Err: ErrDuplicateActivity}
		}
		seen[aid] = struct{}{}
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.projects {
		if p.ID == owner {
			continue
		}
		for _, aid := range p.Activities {
			if _, ok := seen[aid]; ok {
				return &client.ServiceError{Op: op, Kind: client.ValidationFailed, Err: ErrActivityAssigned}
			}
		}
	}
	return nil
}

func (s *Store) close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	for w := range s.watchers {
		close(w.ch)
	}
	s.watchers = nil
}

// putLocked appends p, or replaces it in place when its id is already loaded.
func (s *Store) putLocked(p project.Project) {
	p = p.Clone()
	if p.Activities == nil {
		p.Activities = []int64{}
	}
	if i, ok := s.index[p.ID]; ok {
		s.projects[i] = p
		return
	}
	s.index[p.ID] = len(s.projects)
	s.projects = append(s.projects, p)
}

func (s *Store) deleteLocked(id int64) bool {
	i, ok := s.index[id]
	if !ok {
		return false
	}
	s.projects = append(s.projects[:i], s.projects[i+1:]...)
	delete(s.index, id)
	for j := i; j < len(s.projects); j++ {
		s.index[s.projects[j].ID] = j
	}
	return true
}

func (s *Store) notifyLocked() {
	for w := range s.watchers {
		select {
		case w.ch <- struct{}{}:
		default:
		}
	}
}

func cloneAll(projects []project.Project) []project.Project {
	out := make([]project.Project, len(projects))
	for i, p := range projects {
		out[i] = p.Clone()
	}
	return out
}
