package project

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/rpggio/projector/internal/repository"
)

const maxNameLength = 100

// Service handles project operations.
type Service struct {
	repo   Repository
	logger *slog.Logger
}

// NewService creates a new project service.
func NewService(repo Repository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Service{repo: repo, logger: logger}
}

// List returns one page of projects ordered by id.
func (s *Service) List(ctx context.Context, opts ListOptions) ([]Project, error) {
	if opts.Offset < 0 {
		return nil, fmt.Errorf("%w: offset must not be negative", ErrInvalidInput)
	}
	if opts.Limit <= 0 || opts.Limit > PageSize {
		opts.Limit = PageSize
	}
	projects, err := s.repo.List(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("listing projects: %w", err)
	}
	return projects, nil
}

// Create validates the draft and stores it, returning the project with its new id.
func (s *Service) Create(ctx context.Context, draft Draft) (*Project, error) {
	draft.Name = strings.TrimSpace(draft.Name)
	if err := validate(draft.Name, draft.Activities); err != nil {
		return nil, err
	}

	proj, err := s.repo.Create(ctx, draft)
	if err != nil {
		return nil, mapRepoError("creating project", err)
	}
	s.logger.Debug("project created", "project_id", proj.ID, "activities", len(proj.Activities))
	return proj, nil
}

// Update replaces the name and activity list of an existing project.
func (s *Service) Update(ctx context.Context, proj Project) error {
	if proj.ID <= 0 {
		return ErrProjectNotFound
	}
	proj.Name = strings.TrimSpace(proj.Name)
	if err := validate(proj.Name, proj.Activities); err != nil {
		return err
	}

	if err := s.repo.Update(ctx, &proj); err != nil {
		return mapRepoError("updating project", err)
	}
	s.logger.Debug("project updated", "project_id", proj.ID)
	return nil
}

// Delete removes a project. Its activity references are released.
// Ids that were never issued report ErrProjectNotFound like any other missing project.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return ErrProjectNotFound
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return mapRepoError("deleting project", err)
	}
	s.logger.Debug("project deleted", "project_id", id)
	return nil
}

func validate(name string, activities []int64) error {
	if name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	if utf8.RuneCountInString(name) > maxNameLength {
		return fmt.Errorf("%w: name exceeds %d characters", ErrInvalidInput, maxNameLength)
	}
	seen := make(map[int64]struct{}, len(activities))
	for _, id := range activities {
		if id <= 0 {
			return fmt.Errorf("%w: invalid activity id %d", ErrInvalidInput, id)
		}
		if _, dup := seen[id]; dup {
			return fmt.Errorf("%w: activity %d listed twice", ErrInvalidInput, id)
		}
		seen[id] = struct{}{}
	}
	return nil
}

func mapRepoError(op string, err error) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return ErrProjectNotFound
	case errors.Is(err, repository.ErrConflict):
		return fmt.Errorf("%s: %w", op, ErrActivityConflict)
	case errors.Is(err, repository.ErrInvalidInput):
		return fmt.Errorf("%s: %w", op, ErrInvalidInput)
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}
