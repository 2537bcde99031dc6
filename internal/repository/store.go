package repository

import (
	"context"
	"errors"

	"github.com/gr1shq/showdesk/internal/models"
)

// ErrSessionNotFound is returned by Get and Delete when no session exists
// under the given ID.
var ErrSessionNotFound = errors.New("session not found")

// SessionStore owns all Session records. Put is create-or-replace keyed by
// session ID. Implementations must hand out copies (or fresh decodes) so a
// reader never observes a record mid-mutation; serialization of mutating
// call sequences is the caller's job (see SessionLocks).
type SessionStore interface {
	Put(ctx context.Context, session *models.Session) error
	Get(ctx context.Context, sessionID string) (*models.Session, error)
	Delete(ctx context.Context, sessionID string) error
}
