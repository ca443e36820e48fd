package sqlite

import (
	"context"
	"fmt"
	"testing"

	"github.com/rpggio/projector/internal/domain/project"
	"github.com/rpggio/projector/internal/repository"
	"github.com/stretchr/testify/require"
)

func TestProjectRepository_Create(t *testing.T) {
	db := NewTestDB(t)
	repo := NewProjectRepository(db)
	ctx := context.Background()

	proj, err := repo.Create(ctx, project.Draft{Name: "Test Project", Activities: []int64{12, 10, 11}})
	require.NoError(t, err)
	require.NotZero(t, proj.ID)

	// Verify it was created with activity order preserved
	retrieved, err := repo.Get(ctx, proj.ID)
	require.NoError(t, err)
	require.Equal(t, "Test Project", retrieved.Name)
	require.Equal(t, []int64{12, 10, 11}, retrieved.Activities)
	require.False(t, retrieved.CreatedAt.IsZero())
}

func TestProjectRepository_CreateAssignsDistinctIDs(t *testing.T) {
	db := NewTestDB(t)
	repo := NewProjectRepository(db)
	ctx := context.Background()

	first, err := repo.Create(ctx, project.Draft{Name: "A"})
	require.NoError(t, err)
	second, err := repo.Create(ctx, project.Draft{Name: "B"})
	require.NoError(t, err)
	require.NotEqual(t, first.ID, second.ID)
	require.Empty(t, second.Activities)
}

func TestProjectRepository_Get(t *testing.T) {
	db := NewTestDB(t)
	repo := NewProjectRepository(db)
	ctx := context.Background()

	_, err := repo.Get(ctx, 42)
	require.Equal(t, repository.ErrNotFound, err)
}

func TestProjectRepository_ActivityOwnedOnce(t *testing.T) {
	db := NewTestDB(t)
	repo := NewProjectRepository(db)
	ctx := context.Background()

	_, err := repo.Create(ctx, project.Draft{Name: "A", Activities: []int64{10}})
	require.NoError(t, err)

	_, err = repo.Create(ctx, project.Draft{Name: "B", Activities: []int64{10}})
	require.ErrorIs(t, err, repository.ErrConflict)

	// The failed insert left nothing behind.
	projects, err := repo.List(ctx, project.ListOptions{Limit: project.PageSize})
	require.NoError(t, err)
	require.Len(t, projects, 1)
}

func TestProjectRepository_List(t *testing.T) {
	db := NewTestDB(t)
	repo := NewProjectRepository(db)
	ctx := context.Background()

	for i := 1; i <= 5; i++ {
		_, err := repo.Create(ctx, project.Draft{
			Name:       fmt.Sprintf("Project %d", i),
			Activities: []int64{int64(i * 100), int64(i*100 + 1)},
		})
		require.NoError(t, err)
	}

	page, err := repo.List(ctx, project.ListOptions{Offset: 1, Limit: 2})
	require.NoError(t, err)
	require.Len(t, page, 2)
	require.Equal(t, "Project 2", page[0].Name)
	require.Equal(t, []int64{200, 201}, page[0].Activities)
	require.Equal(t, "Project 3", page[1].Name)
	require.Equal(t, []int64{300, 301}, page[1].Activities)

	empty, err := repo.List(ctx, project.ListOptions{Offset: 10, Limit: 2})
	require.NoError(t, err)
	require.Empty(t, empty)
}

func TestProjectRepository_Update(t *testing.T) {
	db := NewTestDB(t)
	repo := NewProjectRepository(db)
	ctx := context.Background()

	proj, err := repo.Create(ctx, project.Draft{Name: "Before", Activities: []int64{1, 2}})
	require.NoError(t, err)

	proj.Name = "After"
	proj.Activities = []int64{3, 1}
	require.NoError(t, repo.Update(ctx, proj))

	retrieved, err := repo.Get(ctx, proj.ID)
	require.NoError(t, err)
	require.Equal(t, "After", retrieved.Name)
	require.Equal(t, []int64{3, 1}, retrieved.Activities)

	err = repo.Update(ctx, &project.Project{ID: 999, Name: "Missing"})
	require.Equal(t, repository.ErrNotFound, err)
}

func TestProjectRepository_UpdateConflictRollsBack(t *testing.T) {
	db := NewTestDB(t)
	repo := NewProjectRepository(db)
	ctx := context.Background()

	_, err := repo.Create(ctx, project.Draft{Name: "A", Activities: []int64{10}})
	require.NoError(t, err)
	b, err := repo.Create(ctx, project.Draft{Name: "B", Activities: []int64{20}})
	require.NoError(t, err)

	b.Name = "B2"
	b.Activities = []int64{20, 10}
	require.ErrorIs(t, repo.Update(ctx, b), repository.ErrConflict)

	retrieved, err := repo.Get(ctx, b.ID)
	require.NoError(t, err)
	require.Equal(t, "B", retrieved.Name)
	require.Equal(t, []int64{20}, retrieved.Activities)
}

func TestProjectRepository_Delete(t *testing.T) {
	db := NewTestDB(t)
	repo := NewProjectRepository(db)
	ctx := context.Background()

	proj, err := repo.Create(ctx, project.Draft{Name: "Doomed", Activities: []int64{7}})
	require.NoError(t, err)

	require.NoError(t, repo.Delete(ctx, proj.ID))
	_, err = repo.Get(ctx, proj.ID)
	require.Equal(t, repository.ErrNotFound, err)

	// Activity references cascade, so the id can be reused.
	_, err = repo.Create(ctx, project.Draft{Name: "Heir", Activities: []int64{7}})
	require.NoError(t, err)

	require.Equal(t, repository.ErrNotFound, repo.Delete(ctx, proj.ID))
}
