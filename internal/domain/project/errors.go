package project

import "errors"

var (
	// ErrProjectNotFound indicates the project doesn't exist.
	ErrProjectNotFound = errors.New("project not found")
	// ErrInvalidInput indicates invalid project input.
	ErrInvalidInput = errors.New("invalid project input")
	// ErrActivityConflict indicates an activity is already referenced by another project.
	ErrActivityConflict = errors.New("activity already belongs to another project")
)
