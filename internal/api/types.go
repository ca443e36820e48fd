package api

// Method names understood by the backend.
const (
	MethodListProjects  = "list_projects"
	MethodCreateProject = "create_project"
	MethodUpdateProject = "update_project"
	MethodDeleteProject = "delete_project"
)

type ListProjectsParams struct {
	Offset int `json:"offset"`
	Limit  int `json:"limit,omitempty"`
}

type CreateProjectParams struct {
	Name       string  `json:"name"`
	Activities []int64 `json:"activities"`
}

type UpdateProjectParams struct {
	ID         int64   `json:"id"`
	Name       string  `json:"name"`
	Activities []int64 `json:"activities"`
}

type DeleteProjectParams struct {
	ProjectID int64 `json:"project_id"`
}

type AckResponse struct {
	OK bool `json:"ok"`
}
