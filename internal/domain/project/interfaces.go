package project

import "context"

// Repository provides persistence for projects.
type Repository interface {
	Create(ctx context.Context, draft Draft) (*Project, error)
	List(ctx context.Context, opts ListOptions) ([]Project, error)
	Update(ctx context.Context, proj *Project) error
	Delete(ctx context.Context, id int64) error
}
