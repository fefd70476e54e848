package dashboard

import (
	"errors"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrViewNotFound is returned for unknown, expired or foreign views.
var ErrViewNotFound = errors.New("dashboard view not found")

// Default lifetimes for stored views.
const (
	DefaultViewTTL         = 30 * time.Minute
	DefaultCleanupInterval = 5 * time.Minute
)

type storedView struct {
	view       *View
	lastAccess time.Time
}

// Store keeps dashboard views between requests of the same page view.
// Idle views are dropped by a background cleanup loop.
type Store struct {
	mu            sync.Mutex
	views         map[string]*storedView
	ttl           time.Duration
	now           func() time.Time
	cleanupTicker *time.Ticker
	cleanupStop   chan struct{}
	stopOnce      sync.Once
}

// NewStore creates a store whose views expire after ttl of inactivity.
// A positive cleanupInterval starts the background cleanup loop.
func NewStore(ttl, cleanupInterval time.Duration) *Store {
	if ttl <= 0 {
		ttl = DefaultViewTTL
	}

	s := &Store{
		views: make(map[string]*storedView),
		ttl:   ttl,
		now:   time.Now,
	}

	if cleanupInterval > 0 {
		s.cleanupTicker = time.NewTicker(cleanupInterval)
		s.cleanupStop = make(chan struct{})
		go s.cleanup()
	}

	return s
}

// Create registers a new empty view owned by userID.
func (s *Store) Create(userID string, admin bool) *View {
	v := NewView(uuid.New().String(), userID, admin)

	s.mu.Lock()
	s.views[v.ID] = &storedView{view: v, lastAccess: s.now()}
	s.mu.Unlock()

	return v
}

// Get returns the view with id if it belongs to userID and has not expired.
func (s *Store) Get(id, userID string) (*View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sv, ok := s.views[id]
	if !ok || sv.view.UserID != userID {
		return nil, ErrViewNotFound
	}

	now := s.now()
	if now.Sub(sv.lastAccess) > s.ttl {
		delete(s.views, id)
		return nil, ErrViewNotFound
	}
	sv.lastAccess = now
	return sv.view, nil
}

// Len returns the number of stored views.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.views)
}

func (s *Store) cleanup() {
	for {
		select {
		case <-s.cleanupTicker.C:
			if n := s.removeExpired(); n > 0 {
				log.Printf("[views] removed %d expired views", n)
			}
		case <-s.cleanupStop:
			return
		}
	}
}

// removeExpired drops views idle for longer than the TTL.
func (s *Store) removeExpired() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := s.now().Add(-s.ttl)
	removed := 0
	for id, sv := range s.views {
		if sv.lastAccess.Before(cutoff) {
			delete(s.views, id)
			removed++
		}
	}
	return removed
}

// Stop stops the cleanup goroutine.
func (s *Store) Stop() {
	s.stopOnce.Do(func() {
		if s.cleanupTicker != nil {
			s.cleanupTicker.Stop()
		}
		if s.cleanupStop != nil {
			close(s.cleanupStop)
		}
	})
}
