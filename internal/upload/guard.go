package upload

import (
	"errors"
	"sync"
)

// ErrInFlight is returned when a user submits while an earlier upload is pending.
var ErrInFlight = errors.New("an upload is already in progress")

// MsgInFlight is shown when a submission is refused by the guard.
const MsgInFlight = "An upload is already in progress. Please wait for it to finish."

// Guard allows at most one pending upload per user. A second submission is
// refused, not queued, and the pending request is never cancelled.
type Guard struct {
	mu     sync.Mutex
	active map[string]struct{}
}

// NewGuard creates an empty guard.
func NewGuard() *Guard {
	return &Guard{active: make(map[string]struct{})}
}

// Acquire marks userID as uploading. The returned release must be called once
// the attempt finishes.
func (g *Guard) Acquire(userID string) (func(), error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, busy := g.active[userID]; busy {
		return nil, ErrInFlight
	}
	g.active[userID] = struct{}{}

	var once sync.Once
	return func() {
		once.Do(func() {
			g.mu.Lock()
			delete(g.active, userID)
			g.mu.Unlock()
		})
	}, nil
}

// InFlight reports whether userID has a pending upload.
func (g *Guard) InFlight(userID string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, busy := g.active[userID]
	return busy
}
