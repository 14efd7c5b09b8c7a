package services

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"survivalboard/metrics"
	"survivalboard/models"
	"survivalboard/policy"
	"survivalboard/store"
)

// SubmitRequest is the client-reported outcome of one game
type SubmitRequest struct {
	SessionID  string
	PlayerName string
	FinalTime  float64
}

// SubmitResult acknowledges a finished session
type SubmitResult struct {
	Success   bool   `json:"success"`
	SessionID string `json:"sessionId"`
}

// ScoreService is the only sanctioned path from an active session to a
// finished one.
type ScoreService struct {
	store *store.SessionStore
	rules policy.Rules
	log   logrus.FieldLogger
}

func NewScoreService(sessions *store.SessionStore, rules policy.Rules, log logrus.FieldLogger) *ScoreService {
	return &ScoreService{store: sessions, rules: rules, log: log}
}

// Submit validates the request against the stored session and finishes it.
// Checks run in a fixed order and each failure carries its own status code.
// On failure the session is left exactly as it was.
func (s *ScoreService) Submit(ctx context.Context, req SubmitRequest) (SubmitResult, error) {
	res, err := s.submit(ctx, req)
	metrics.ScoreSubmissions.WithLabelValues(resultCode(err)).Inc()
	return res, err
}

func (s *ScoreService) submit(ctx context.Context, req SubmitRequest) (SubmitResult, error) {
	if req.SessionID == "" || req.PlayerName == "" || req.FinalTime == 0 {
		return SubmitResult{}, status.Error(codes.InvalidArgument, "sessionId, playerName and finalTime are required")
	}

	session, err := s.store.FindActive(ctx, req.SessionID)
	if errors.Is(err, store.ErrNotFound) {
		return SubmitResult{}, status.Error(codes.FailedPrecondition, "no active session")
	}
	if err != nil {
		return SubmitResult{}, s.internal(req, err)
	}

	if session.PlayerName != req.PlayerName {
		return SubmitResult{}, status.Error(codes.PermissionDenied, "identity mismatch")
	}

	if !s.rules.FinalTimeInRange(req.FinalTime) {
		return SubmitResult{}, status.Errorf(codes.InvalidArgument, "finalTime must be in (0, %g]", s.rules.Config().MaxFinalTime)
	}

	if !s.rules.DurationPlausible(session.StartTime, s.store.Now()) {
		return SubmitResult{}, status.Error(codes.FailedPrecondition, "implausible session duration")
	}

	finalTime := req.FinalTime
	_, err = s.store.Update(ctx, req.SessionID, func(doc *models.GameSession) error {
		doc.Status = models.StatusFinished
		doc.EndTime = store.ServerTimestamp()
		doc.FinalTime = &finalTime
		return nil
	})
	switch {
	case err == nil:
	case errors.Is(err, store.ErrConflict), errors.Is(err, store.ErrNotFound):
		// Another writer finished, reaped or removed the session first
		return SubmitResult{}, status.Error(codes.FailedPrecondition, "no active session")
	case policy.IsDenied(err):
		// The state or the clock moved between validation and commit
		return SubmitResult{}, status.Error(codes.FailedPrecondition, "session can no longer be finished")
	default:
		return SubmitResult{}, s.internal(req, err)
	}

	s.log.WithFields(logrus.Fields{
		"session_id": req.SessionID,
		"player":     req.PlayerName,
		"final_time": finalTime,
	}).Info("score submitted")
	return SubmitResult{Success: true, SessionID: req.SessionID}, nil
}

func (s *ScoreService) internal(req SubmitRequest, err error) error {
	s.log.WithField("session_id", req.SessionID).WithError(err).Error("score submission failed")
	return status.Error(codes.Internal, "internal error")
}

func resultCode(err error) string {
	if err == nil {
		return "ok"
	}
	return status.Code(err).String()
}
