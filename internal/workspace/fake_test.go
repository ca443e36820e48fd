package workspace_test

import (
	"context"
	"errors"
	"sync"

	"github.com/rpggio/projector/internal/client"
	"github.com/rpggio/projector/internal/domain/project"
)

// fakeService is an in-memory backend. hook, when set, runs at the start of
// every call outside the lock so tests can block or reorder calls.
type fakeService struct {
	mu       sync.Mutex
	nextID   int64
	projects []project.Project
	calls    []string
	hook     func(op string, id int64)
}

func newFakeService(projects ...project.Project) *fakeService {
	f := &fakeService{}
	for _, p := range projects {
		f.projects = append(f.projects, p.Clone())
		if p.ID > f.nextID {
			f.nextID = p.ID
		}
	}
	return f
}

func (f *fakeService) before(op string, id int64) {
	f.mu.Lock()
	f.calls = append(f.calls, op)
	hook := f.hook
	f.mu.Unlock()
	if hook != nil {
		hook(op, id)
	}
}

func (f *fakeService) Fetch(_ context.Context, offset int) ([]project.Project, error) {
	f.before("fetch", 0)
	f.mu.Lock()
	defer f.mu.Unlock()
	if offset >= len(f.projects) {
		return []project.Project{}, nil
	}
	end := min(offset+project.PageSize, len(f.projects))
	out := make([]project.Project, 0, end-offset)
	for _, p := range f.projects[offset:end] {
		out = append(out, p.Clone())
	}
	return out, nil
}

func (f *fakeService) Create(_ context.Context, draft project.Draft) (project.Project, error) {
	f.before("create", 0)
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	activities := append([]int64{}, draft.Activities...)
	p := project.Project{ID: f.nextID, Name: draft.Name, Activities: activities}
	f.projects = append(f.projects, p)
	return p.Clone(), nil
}

func (f *fakeService) Update(_ context.Context, proj project.Project) error {
	f.before("update", proj.ID)
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.projects {
		if f.projects[i].ID == proj.ID {
			f.projects[i] = proj.Clone()
			return nil
		}
	}
	return &client.ServiceError{Op: "update", Kind: client.NotFound, Err: errors.New("project not found")}
}

func (f *fakeService) Delete(_ context.Context, id int64) error {
	f.before("delete", id)
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.projects {
		if f.projects[i].ID == id {
			f.projects = append(f.projects[:i], f.projects[i+1:]...)
			return nil
		}
	}
	return &client.ServiceError{Op: "delete", Kind: client.NotFound, Err: errors.New("project not found")}
}

func (f *fakeService) callCount(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c == op {
			n++
		}
	}
	return n
}

func (f *fakeService) setHook(hook func(op string, id int64)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.hook = hook
}

// seedProjects is the two-project fixture used by most tests.
func seedProjects() []project.Project {
	return []project.Project{
		{ID: 1, Name: "A", Activities: []int64{10, 11}},
		{ID: 2, Name: "B", Activities: []int64{}},
	}
}
