package mocks

import (
	"context"

	"github.com/rpggio/projector/internal/domain/project"
	"github.com/stretchr/testify/mock"
)

// ProjectService is a mock implementation of workspace.ProjectService.
type ProjectService struct {
	mock.Mock
}

func (m *ProjectService) Fetch(ctx context.Context, offset int) ([]project.Project, error) {
	args := m.Called(ctx, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]project.Project), args.Error(1)
}

func (m *ProjectService) Create(ctx context.Context, draft project.Draft) (project.Project, error) {
	args := m.Called(ctx, draft)
	return args.Get(0).(project.Project), args.Error(1)
}

func (m *ProjectService) Update(ctx context.Context, proj project.Project) error {
	args := m.Called(ctx, proj)
	return args.Error(0)
}

func (m *ProjectService) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
