package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rpggio/projector/internal/domain/project"
	"github.com/rpggio/projector/internal/repository"
)

// ProjectRepository implements project.Repository for SQLite
type ProjectRepository struct {
	db *DB
}

// NewProjectRepository creates a new ProjectRepository
func NewProjectRepository(db *DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

// Create inserts a project and its activity references in one transaction.
func (r *ProjectRepository) Create(ctx context.Context, draft project.Draft) (*project.Project, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	result, err := tx.ExecContext(ctx,
		`INSERT INTO projects (name, created_at, updated_at) VALUES (?, ?, ?)`,
		draft.Name, now, now,
	)
	if err != nil {
		return nil, translateWriteError("failed to create project", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get project id: %w", err)
	}

	if err := insertActivities(ctx, tx, id, draft.Activities); err != nil {
		return nil, err
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return &project.Project{
		ID:         id,
		Name:       draft.Name,
		Activities: nonNil(draft.Activities),
		CreatedAt:  now,
		UpdatedAt:  now,
	}, nil
}

// Get retrieves a project by ID. Used to verify writes; the service reads through List.
func (r *ProjectRepository) Get(ctx context.Context, id int64) (*project.Project, error) {
	query := `
		SELECT id, name, created_at, updated_at
		FROM projects
		WHERE id = ?
	`

	var proj project.Project
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&proj.ID,
		&proj.Name,
		&proj.CreatedAt,
		&proj.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get project: %w", err)
	}

	activities, err := r.activitiesFor(ctx, id, id)
	if err != nil {
		return nil, err
	}
	proj.Activities = nonNil(activities[id])

	return &proj, nil
}

// List returns one page of projects in ascending id order.
func (r *ProjectRepository) List(ctx context.Context, opts project.ListOptions) ([]project.Project, error) {
	query := `
		SELECT id, name, created_at, updated_at
		FROM projects
		ORDER BY id ASC
		LIMIT ? OFFSET ?
	`

	rows, err := r.db.QueryContext(ctx, query, opts.Limit, opts.Offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	defer rows.Close()

	projects := []project.Project{}
	for rows.Next() {
		var proj project.Project
		if err := rows.Scan(&proj.ID, &proj.Name, &proj.CreatedAt, &proj.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan project: %w", err)
		}
		projects = append(projects, proj)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating project rows: %w", err)
	}
	if len(projects) == 0 {
		return projects, nil
	}

	activities, err := r.activitiesFor(ctx, projects[0].ID, projects[len(projects)-1].ID)
	if err != nil {
		return nil, err
	}
	for i := range projects {
		projects[i].Activities = nonNil(activities[projects[i].ID])
	}

	return projects, nil
}

// Update replaces the name and activity list of a project.
func (r *ProjectRepository) Update(ctx context.Context, proj *project.Project) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	result, err := tx.ExecContext(ctx,
		`UPDATE projects SET name = ?, updated_at = ? WHERE id = ?`,
		proj.Name, now, proj.ID,
	)
	if err != nil {
		return translateWriteError("failed to update project", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return repository.ErrNotFound
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM project_activities WHERE project_id = ?`, proj.ID); err != nil {
		return fmt.Errorf("failed to clear activities: %w", err)
	}
	if err := insertActivities(ctx, tx, proj.ID, proj.Activities); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	proj.UpdatedAt = now
	return nil
}

// Delete removes a project; its activity references cascade.
func (r *ProjectRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM projects WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// activitiesFor loads activity ids for every project with minID <= id <= maxID,
// keyed by project and ordered by position.
func (r *ProjectRepository) activitiesFor(ctx context.Context, minID, maxID int64) (map[int64][]int64, error) {
	query := `
		SELECT project_id, activity_id
		FROM project_activities
		WHERE project_id BETWEEN ? AND ?
		ORDER BY project_id, position
	`

	rows, err := r.db.QueryContext(ctx, query, minID, maxID)
	if err != nil {
		return nil, fmt.Errorf("failed to list activities: %w", err)
	}
	defer rows.Close()

	out := make(map[int64][]int64)
	for rows.Next() {
		var projectID, activityID int64
		if err := rows.Scan(&projectID, &activityID); err != nil {
			return nil, fmt.Errorf("failed to scan activity: %w", err)
		}
		out[projectID] = append(out[projectID], activityID)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating activity rows: %w", err)
	}

	return out, nil
}

func insertActivities(ctx context.Context, tx *sql.Tx, projectID int64, activities []int64) error {
	for pos, activityID := range activities {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO project_activities (project_id, activity_id, position) VALUES (?, ?, ?)`,
			projectID, activityID, pos,
		)
		if err != nil {
			return translateWriteError("failed to add activity", err)
		}
	}
	return nil
}

func translateWriteError(msg string, err error) error {
	switch {
	case isUniqueViolation(err):
		return fmt.Errorf("%s: %w", msg, repository.ErrConflict)
	case isCheckViolation(err):
		return fmt.Errorf("%s: %w", msg, repository.ErrInvalidInput)
	default:
		return fmt.Errorf("%s: %w", msg, err)
	}
}

func nonNil(ids []int64) []int64 {
	if ids == nil {
		return []int64{}
	}
	return append([]int64(nil), ids...)
}
