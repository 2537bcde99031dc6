package repository

import "sync"

// SessionLocks serializes mutating operations per session ID. A chat or
// suggestion-regeneration turn holds its session's lock end to end, so two
// concurrent turns on the same session cannot interleave their
// read-modify-write, while unrelated sessions proceed in parallel.
type SessionLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewSessionLocks() *SessionLocks {
	return &SessionLocks{locks: make(map[string]*sync.Mutex)}
}

// Lock acquires the mutex for sessionID and returns it. The caller unlocks
// the returned mutex directly, so a Forget racing an in-flight turn cannot
// detach that turn from the lock it holds and strand later waiters.
func (s *SessionLocks) Lock(sessionID string) *sync.Mutex {
	s.mu.Lock()
	l, ok := s.locks[sessionID]
	if !ok {
		l = &sync.Mutex{}
		s.locks[sessionID] = l
	}
	s.mu.Unlock()

	l.Lock()
	return l
}

// Forget drops the map entry for a deleted session. Goroutines already
// blocked on the old mutex still wake when its holder unlocks it.
func (s *SessionLocks) Forget(sessionID string) {
	s.mu.Lock()
	delete(s.locks, sessionID)
	s.mu.Unlock()
}
