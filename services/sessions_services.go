package services

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"
	"google.golang.org/grpc/codes"
	grpcstatus "google.golang.org/grpc/status"

	"survivalboard/metrics"
	"survivalboard/models"
	"survivalboard/policy"
	"survivalboard/store"
)

// SessionService exposes the client-facing document operations. Every write
// is proposed to the store as-is and the access policy decides.
type SessionService struct {
	store *store.SessionStore
	log   logrus.FieldLogger
}

func NewSessionService(sessions *store.SessionStore, log logrus.FieldLogger) *SessionService {
	return &SessionService{store: sessions, log: log}
}

// Create proposes a new session document. Zero timestamps ask for the
// server's commit time.
func (s *SessionService) Create(ctx context.Context, doc models.GameSession) (models.GameSession, error) {
	created, err := s.store.Create(ctx, doc)
	if err != nil {
		return models.GameSession{}, s.mapStoreError(doc.SessionID, err)
	}
	metrics.SessionsCreated.Inc()
	return created, nil
}

// Get reads one session document
func (s *SessionService) Get(ctx context.Context, sessionID string) (models.GameSession, error) {
	session, err := s.store.Get(ctx, sessionID)
	if err != nil {
		return models.GameSession{}, s.mapStoreError(sessionID, err)
	}
	return session, nil
}

// List returns the audit trail of sessions, optionally restricted to one status
func (s *SessionService) List(ctx context.Context, status string) ([]models.GameSession, error) {
	if status == "" {
		sessions, err := s.store.ListAll(ctx)
		if err != nil {
			return nil, s.mapStoreError("", err)
		}
		return sessions, nil
	}
	st := models.SessionStatus(status)
	if !st.Valid() {
		return nil, grpcstatus.Errorf(codes.InvalidArgument, "unknown status %q", status)
	}
	sessions, err := s.store.ListByStatus(ctx, st)
	if err != nil {
		return nil, s.mapStoreError("", err)
	}
	return sessions, nil
}

// Delete proposes removing a session. The strict policy never allows it.
func (s *SessionService) Delete(ctx context.Context, sessionID string) error {
	if err := s.store.Delete(ctx, sessionID); err != nil {
		return s.mapStoreError(sessionID, err)
	}
	return nil
}

// Validate reports whether sessionID names an active session. The player name
// is accepted for compatibility with existing clients but not compared.
func (s *SessionService) Validate(ctx context.Context, sessionID, _ string) (bool, error) {
	if sessionID == "" {
		return false, grpcstatus.Error(codes.InvalidArgument, "sessionId is required")
	}
	_, err := s.store.FindActive(ctx, sessionID)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, store.ErrNotFound):
		return false, nil
	default:
		s.log.WithField("session_id", sessionID).WithError(err).Error("session validation failed")
		return false, grpcstatus.Error(codes.Internal, "internal error")
	}
}

func (s *SessionService) mapStoreError(sessionID string, err error) error {
	var v *policy.Violation
	switch {
	case errors.As(err, &v):
		return grpcstatus.Error(codes.PermissionDenied, v.Reason)
	case errors.Is(err, store.ErrNotFound):
		return grpcstatus.Error(codes.NotFound, "session not found")
	case errors.Is(err, store.ErrAlreadyExists):
		return grpcstatus.Error(codes.AlreadyExists, "session already exists")
	case errors.Is(err, store.ErrConflict):
		return grpcstatus.Error(codes.Aborted, "session was modified concurrently")
	default:
		s.log.WithField("session_id", sessionID).WithError(err).Error("session store failure")
		return grpcstatus.Error(codes.Internal, "internal error")
	}
}
