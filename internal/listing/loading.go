package listing

import "sync"

// LoadingTracker aggregates the loading state of several views by reference
// count, so one view finishing never hides another view's spinner.
type LoadingTracker struct {
	mu    sync.Mutex
	count int
}

func NewLoadingTracker() *LoadingTracker { return &LoadingTracker{} }

func (t *LoadingTracker) Acquire() {
	t.mu.Lock()
	t.count++
	t.mu.Unlock()
}

func (t *LoadingTracker) Release() {
	t.mu.Lock()
	if t.count > 0 {
		t.count--
	}
	t.mu.Unlock()
}

// Busy reports whether any view is loading.
func (t *LoadingTracker) Busy() bool { return t.Count() > 0 }

func (t *LoadingTracker) Count() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.count
}
