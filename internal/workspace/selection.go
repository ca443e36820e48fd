package workspace

import (
	"fmt"

	"github.com/rpggio/projector/internal/domain/project"
)

// Selection is the current project/activity pair. ActivityID is only set
// when ProjectID is set and the activity belongs to that project.
type Selection struct {
	ProjectID  *int64
	ActivityID *int64
}

// NoSelection returns the empty selection.
func NoSelection() Selection { return Selection{} }

// ProjectSelected returns a selection of pid with no activity.
func ProjectSelected(pid int64) Selection {
	return Selection{ProjectID: &pid}
}

// ActivitySelected returns a selection of activity aid within project pid.
func ActivitySelected(pid, aid int64) Selection {
	return Selection{ProjectID: &pid, ActivityID: &aid}
}

func (s Selection) None() bool { return s.ProjectID == nil }

func (s Selection) String() string {
	switch {
	case s.ProjectID == nil:
		return "none"
	case s.ActivityID == nil:
		return fmt.Sprintf("project(%d)", *s.ProjectID)
	default:
		return fmt.Sprintf("project(%d)/activity(%d)", *s.ProjectID, *s.ActivityID)
	}
}

// selection is the store-internal form; it is only read or written under Store.mu.
type selection struct {
	projectID   int64
	activityID  int64
	hasProject  bool
	hasActivity bool
}

func (s selection) public() Selection {
	switch {
	case !s.hasProject:
		return NoSelection()
	case !s.hasActivity:
		return ProjectSelected(s.projectID)
	default:
		return ActivitySelected(s.projectID, s.activityID)
	}
}

// Coordinator enforces the project/activity selection rules over a Store.
type Coordinator struct {
	store *Store
}

// SelectProject selects pid and clears any activity selection.
func (c *Coordinator) SelectProject(pid int64) error {
	s := c.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrWorkspaceClosed
	}
	if _, ok := s.index[pid]; !ok {
		return &SelectionError{Kind: SelectionNotFound, ID: pid}
	}
	s.sel = selection{projectID: pid, hasProject: true}
	s.notifyLocked()
	return nil
}

// UnselectProject clears the selection.
func (c *Coordinator) UnselectProject() error {
	s := c.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrWorkspaceClosed
	}
	if s.sel.hasProject {
		s.sel = selection{}
		s.notifyLocked()
	}
	return nil
}

// SelectActivity selects aid within the selected project.
func (c *Coordinator) SelectActivity(aid int64) error {
	s := c.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrWorkspaceClosed
	}
	if !s.sel.hasProject {
		return &SelectionError{Kind: InvalidSelection, ID: aid}
	}
	proj := s.projects[s.index[s.sel.projectID]]
	if !proj.HasActivity(aid) {
		return &SelectionError{Kind: InvalidSelection, ID: aid}
	}
	s.sel.activityID = aid
	s.sel.hasActivity = true
	s.notifyLocked()
	return nil
}

// UnselectActivity keeps the selected project and clears the activity.
func (c *Coordinator) UnselectActivity() error {
	s := c.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrWorkspaceClosed
	}
	if s.sel.hasActivity {
		s.sel.activityID = 0
		s.sel.hasActivity = false
		s.notifyLocked()
	}
	return nil
}

// State returns the current selection.
func (c *Coordinator) State() Selection {
	s := c.store
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sel.public()
}

// SelectedProject returns a copy of the selected project, if any.
func (c *Coordinator) SelectedProject() (project.Project, bool) {
	s := c.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.sel.hasProject {
		return project.Project{}, false
	}
	return s.projects[s.index[s.sel.projectID]].Clone(), true
}

// reconcileLocked drops selection parts that no longer refer to loaded data.
// It reports whether the selection changed. Callers hold s.mu.
func (s *Store) reconcileLocked() bool {
	if !s.sel.hasProject {
		return false
	}
	i, ok := s.index[s.sel.projectID]
	if !ok {
		s.logger.Debug("selected project no longer loaded", "project_id", s.sel.projectID)
		s.sel = selection{}
		return true
	}
	if s.sel.hasActivity && !s.projects[i].HasActivity(s.sel.activityID) {
		s.logger.Debug("selected activity left project", "project_id", s.sel.projectID, "activity_id", s.sel.activityID)
		s.sel.activityID = 0
		s.sel.hasActivity = false
		return true
	}
	return false
}
