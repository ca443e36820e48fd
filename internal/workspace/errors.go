package workspace

import (
	"errors"
	"fmt"
)

// SelectionKind classifies selection failures.
type SelectionKind int

const (
	// SelectionNotFound means the referenced project is not in the store.
	SelectionNotFound SelectionKind = iota + 1
	// InvalidSelection means the activity does not belong to the selected project,
	// or no project is selected.
	InvalidSelection
)

func (k SelectionKind) String() string {
	switch k {
	case SelectionNotFound:
		return "project not found"
	case InvalidSelection:
		return "invalid selection"
	default:
		return "selection error"
	}
}

// SelectionError reports a rejected selection or edit-session command.
// State is never changed when one is returned.
type SelectionError struct {
	Kind SelectionKind
	ID   int64
}

var (
	ErrProjectNotFound  = &SelectionError{Kind: SelectionNotFound}
	ErrInvalidSelection = &SelectionError{Kind: InvalidSelection}
)

func (e *SelectionError) Error() string {
	if e.ID == 0 {
		return e.Kind.String()
	}
	return fmt.Sprintf("%s: %d", e.Kind, e.ID)
}

func (e *SelectionError) Is(target error) bool {
	t, ok := target.(*SelectionError)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && (t.ID == 0 || t.ID == e.ID)
}

var (
	ErrWorkspaceClosed   = errors.New("workspace closed")
	ErrSessionClosed     = errors.New("edit session is not open")
	ErrSubmitInProgress  = errors.New("edit session submit already in progress")
	ErrDuplicateActivity = errors.New("activity listed more than once")
	ErrActivityAssigned  = errors.New("activity belongs to another project")
)
