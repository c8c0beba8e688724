package service

import (
	"context"
	"database/sql"
	"time"

	"github.com/fuuti/storefront-api/internal/domain"
	"github.com/fuuti/storefront-api/internal/platform/postgres"
	"github.com/fuuti/storefront-api/internal/store"
)

// SessionService manages login session rows.
type SessionService struct {
	sessions *postgres.Repository[domain.LoginSession]
	timeFunc func() time.Time
}

// NewSessionService creates a SessionService.
func NewSessionService(db *sql.DB) *SessionService {
	return &SessionService{
		sessions: postgres.NewRepository[domain.LoginSession](db, domain.SessionTable),
		timeFunc: time.Now,
	}
}

// Create opens a new session for the user, valid for SessionValidity.
func (s *SessionService) Create(ctx context.Context, userID int64) (domain.LoginSession, error) {
	return s.sessions.Save(ctx, store.Payload{
		"user_id":           userID,
		"status":            domain.SessionOn,
		"validity_end_date": s.timeFunc().Add(domain.SessionValidity),
	}, nil)
}

// FindActive returns the session with the given id if it belongs to the user
// and is still switched on; nil otherwise.
func (s *SessionService) FindActive(ctx context.Context, sessionID, userID int64) (*domain.LoginSession, error) {
	return s.sessions.FindOne(ctx, postgres.FindOptions{
		Filter: &store.Query{
			Condition: "id = $1 AND user_id = $2 AND status = $3",
			Values:    []any{sessionID, userID, domain.SessionOn},
		},
	}, nil)
}

// End closes the given session, recording whether it was logged out while
// still valid or simply lapsed.
func (s *SessionService) End(ctx context.Context, session domain.LoginSession) error {
	patch := store.Payload{"status": domain.SessionOff}
	if session.ExpiredAt(s.timeFunc()) {
		patch["expired"] = true
	} else {
		patch["logged_out"] = true
		patch["validity_end_date"] = s.timeFunc()
	}

	_, err := s.sessions.UpdateOne(ctx, &store.Query{
		Condition: "id = $1",
		Values:    []any{session.ID},
	}, patch, nil)
	return err
}

// EndActiveSessions switches off every active session the user has, so a
// fresh login is the only live one.
func (s *SessionService) EndActiveSessions(ctx context.Context, userID int64) error {
	_, err := s.sessions.Update(ctx, &store.Query{
		Condition: "user_id = $1 AND status = $2",
		Values:    []any{userID, domain.SessionOn},
	}, store.Payload{"status": domain.SessionOff, "logged_out": true}, nil)
	return err
}

// MarkExpired records that the session lapsed before a request used it.
func (s *SessionService) MarkExpired(ctx context.Context, sessionID int64) error {
	_, err := s.sessions.UpdateOne(ctx, &store.Query{
		Condition: "id = $1",
		Values:    []any{sessionID},
	}, store.Payload{"status": domain.SessionOff, "expired": true}, nil)
	return err
}
