package mocks

import (
	"context"

	"github.com/rpggio/projector/internal/domain/project"
	"github.com/stretchr/testify/mock"
)

// ProjectRepository is a mock for project.Repository.
type ProjectRepository struct {
	mock.Mock
}

func (m *ProjectRepository) Create(ctx context.Context, draft project.Draft) (*project.Project, error) {
	args := m.Called(ctx, draft)
	if proj, ok := args.Get(0).(*project.Project); ok {
		return proj, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *ProjectRepository) List(ctx context.Context, opts project.ListOptions) ([]project.Project, error) {
	args := m.Called(ctx, opts)
	if list, ok := args.Get(0).([]project.Project); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *ProjectRepository) Update(ctx context.Context, proj *project.Project) error {
	args := m.Called(ctx, proj)
	return args.Error(0)
}

func (m *ProjectRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
