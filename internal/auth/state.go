package auth

import (
	"context"
	"sync"

	"github.com/Rafamp34/soundstream/internal/models"
)

// Snapshot is one consistent view of the authentication state.
type Snapshot struct {
	Ready         bool
	Authenticated bool
	User          *models.User
}

// State holds session state and broadcasts changes to subscribers.
//
// Ready flips to true exactly once, when the initial session probe completes,
// and never reverts. Authenticated and User always change together under one
// lock, so a snapshot can never pair a stale user with a fresh flag.
type State struct {
	mu            sync.RWMutex
	ready         bool
	readyCh       chan struct{}
	authenticated bool
	user          *models.User
	subs          map[int]chan Snapshot
	nextSub       int
}

// NewState creates a State in the uninitialized (not ready) condition.
func NewState() *State {
	return &State{
		readyCh: make(chan struct{}),
		subs:    make(map[int]chan Snapshot),
	}
}

// MarkReady records that the startup session probe has completed.
// Subsequent calls are no-ops.
func (s *State) MarkReady() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ready {
		return
	}
	s.ready = true
	close(s.readyCh)
	s.broadcastLocked()
}

// Ready returns a channel that is closed once the session probe completes.
func (s *State) Ready() <-chan struct{} {
	return s.readyCh
}

// WaitReady blocks until the session probe completes or ctx is done.
func (s *State) WaitReady(ctx context.Context) error {
	select {
	case <-s.readyCh:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// SetSession atomically records an authenticated session.
func (s *State) SetSession(user models.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := user
	s.authenticated = true
	s.user = &u
	s.broadcastLocked()
}

// Clear atomically records the unauthenticated condition.
func (s *State) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.authenticated = false
	s.user = nil
	s.broadcastLocked()
}

// UpdateUser replaces the current-user snapshot without changing the
// authenticated flag. Used when a profile mutation returns fresher data.
func (s *State) UpdateUser(user models.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.authenticated {
		return
	}
	u := user
	s.user = &u
	s.broadcastLocked()
}

// Snapshot returns a consistent view of the current state.
func (s *State) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{Ready: s.ready, Authenticated: s.authenticated, User: s.user}
}

// Authenticated reports whether a session is currently valid.
func (s *State) Authenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.authenticated
}

// User returns the current identity snapshot, nil when unauthenticated.
func (s *State) User() *models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user
}

// Subscribe registers for state-change notifications. The channel carries
// the latest snapshot; a slow consumer only ever misses intermediate states,
// never the newest one. The returned cancel function releases the channel.
func (s *State) Subscribe() (<-chan Snapshot, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextSub
	s.nextSub++
	ch := make(chan Snapshot, 1)
	s.subs[id] = ch

	cancel := func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subs, id)
	}
	return ch, cancel
}

// broadcastLocked pushes the current snapshot to every subscriber,
// replacing any undelivered one. Callers hold s.mu.
func (s *State) broadcastLocked() {
	snap := Snapshot{Ready: s.ready, Authenticated: s.authenticated, User: s.user}
	for _, ch := range s.subs {
		select {
		case ch <- snap:
		default:
			select {
			case <-ch:
			default:
			}
			ch <- snap
		}
	}
}
