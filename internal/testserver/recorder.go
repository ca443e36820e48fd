package testserver

import (
	"sync"
	"time"
)

// Call is one observed RPC.
type Call struct {
	Method  string
	Outcome string
}

// CallRecorder collects RPC outcomes so tests can assert what reached the backend.
type CallRecorder struct {
	mu    sync.Mutex
	calls []Call
}

func (r *CallRecorder) ObserveCall(method, outcome string, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, Call{Method: method, Outcome: outcome})
}

// Calls returns a copy of the observed calls in arrival order.
func (r *CallRecorder) Calls() []Call {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Call(nil), r.calls...)
}

// Count returns how many calls to method were observed.
func (r *CallRecorder) Count(method string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, c := range r.calls {
		if c.Method == method {
			n++
		}
	}
	return n
}
