package repository

import (
	"context"
	"sync"

	"github.com/gr1shq/showdesk/internal/models"
)

// MemorySessionStore keeps sessions in process memory. This is the default
// backend; sessions live for the process lifetime.
type MemorySessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*models.Session
}

func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{sessions: make(map[string]*models.Session)}
}

func (s *MemorySessionStore) Put(ctx context.Context, session *models.Session) error {
	cp := copySession(session)

	s.mu.Lock()
	s.sessions[session.ID] = cp
	s.mu.Unlock()
	return nil
}

func (s *MemorySessionStore) Get(ctx context.Context, sessionID string) (*models.Session, error) {
	s.mu.RLock()
	session, ok := s.sessions[sessionID]
	s.mu.RUnlock()

	if !ok {
		return nil, ErrSessionNotFound
	}
	return copySession(session), nil
}

func (s *MemorySessionStore) Delete(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[sessionID]; !ok {
		return ErrSessionNotFound
	}
	delete(s.sessions, sessionID)
	return nil
}

// copySession deep-copies the slices so callers can never mutate a stored
// record in place, and readers never see a half-applied append.
func copySession(in *models.Session) *models.Session {
	out := *in
	out.Segments = append([]models.TranscriptSegment(nil), in.Segments...)
	out.ChatHistory = append([]models.ChatMessage(nil), in.ChatHistory...)
	out.SuggestedQuestions = append([]string(nil), in.SuggestedQuestions...)
	return &out
}
