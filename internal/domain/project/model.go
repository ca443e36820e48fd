package project

import "time"

// PageSize is the number of projects returned by a single list call.
const PageSize = 50

// Project is a named collection of activity references. Activities are owned
// elsewhere; a project only keeps their ids, in order.
type Project struct {
	ID         int64     `json:"id"`
	Name       string    `json:"name"`
	Activities []int64   `json:"activities"`
	CreatedAt  time.Time `json:"created_at,omitzero"`
	UpdatedAt  time.Time `json:"updated_at,omitzero"`
}

// Draft is a project that has not been assigned an id yet.
type Draft struct {
	Name       string  `json:"name"`
	Activities []int64 `json:"activities"`
}

// HasActivity reports whether the activity id is referenced by the project.
func (p Project) HasActivity(activityID int64) bool {
	for _, id := range p.Activities {
		if id == activityID {
			return true
		}
	}
	return false
}

// Clone returns a copy that shares no memory with p.
func (p Project) Clone() Project {
	out := p
	if p.Activities != nil {
		out.Activities = make([]int64, len(p.Activities))
		copy(out.Activities, p.Activities)
	}
	return out
}

// ListOptions controls paging for List.
type ListOptions struct {
	Offset int
	Limit  int
}
