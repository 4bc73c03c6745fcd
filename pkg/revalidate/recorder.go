package revalidate

import (
	"context"
	"sync"
)

// Recorder keeps every invalidation in memory. Tests use it to assert which
// views a mutation marked stale.
type Recorder struct {
	mu    sync.Mutex
	calls [][]string
	Err   error
}

func (r *Recorder) Invalidate(_ context.Context, paths []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, append([]string(nil), paths...))
	return r.Err
}

// Calls returns the paths of each invalidation in order.
func (r *Recorder) Calls() [][]string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([][]string(nil), r.calls...)
}

// Last returns the paths of the latest invalidation.
func (r *Recorder) Last() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.calls) == 0 {
		return nil
	}
	return r.calls[len(r.calls)-1]
}
