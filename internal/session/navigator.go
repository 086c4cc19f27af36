package session

import "sync"

// RedirectRecorder is the Navigator handed to a session's controller. The UI
// polls it for a pending redirect instead of being pushed to.
type RedirectRecorder struct {
	mu      sync.Mutex
	pending string
	count   int
}

// RedirectTo implements submission.Navigator.
func (r *RedirectRecorder) RedirectTo(path string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pending = path
	r.count++
}

// Pending returns the redirect target without consuming it.
func (r *RedirectRecorder) Pending() (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pending, r.pending != ""
}

// Take returns and clears the pending redirect.
func (r *RedirectRecorder) Take() (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	path := r.pending
	r.pending = ""
	return path, path != ""
}

// Count returns how many redirects were requested.
func (r *RedirectRecorder) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.count
}
