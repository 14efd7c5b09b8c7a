package services

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"survivalboard/config"
	"survivalboard/metrics"
	"survivalboard/models"
	"survivalboard/store"
)

// Reaper marks sessions abandoned once they stay active past the staleness threshold
type Reaper struct {
	store *store.SessionStore
	rules config.SessionRules
	log   logrus.FieldLogger
}

func NewReaper(sessions *store.SessionStore, rules config.SessionRules, log logrus.FieldLogger) *Reaper {
	return &Reaper{store: sessions, rules: rules, log: log}
}

// Sweep abandons every stale active session in one batch and returns the ids
// it transitioned. A session that is no longer active is skipped, so running
// Sweep twice abandons each session once.
func (r *Reaper) Sweep(ctx context.Context) ([]string, error) {
	defer func(start time.Time) {
		metrics.ReaperSweepDuration.Observe(time.Since(start).Seconds())
	}(time.Now())

	cutoff := r.store.Now().Add(-r.rules.StaleAfter)

	active, err := r.store.ListByStatus(ctx, models.StatusActive)
	if err != nil {
		return nil, err
	}
	var stale []string
	for _, s := range active {
		if s.CreatedAt.Before(cutoff) {
			stale = append(stale, s.SessionID)
		}
	}
	if len(stale) == 0 {
		return nil, nil
	}

	committed, err := r.store.UpdateBatch(ctx, stale, func(doc *models.GameSession) error {
		if doc.Status != models.StatusActive || !doc.CreatedAt.Before(cutoff) {
			return store.ErrSkip
		}
		doc.Status = models.StatusAbandoned
		doc.EndTime = store.ServerTimestamp()
		return nil
	})
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(committed))
	for _, s := range committed {
		ids = append(ids, s.SessionID)
	}
	metrics.ReaperAbandoned.Add(float64(len(ids)))
	r.log.WithFields(logrus.Fields{
		"abandoned": len(ids),
		"stale":     len(stale),
	}).Info("reaper sweep finished")
	return ids, nil
}

// Run sweeps once immediately and then on every ReapInterval tick until ctx is done
func (r *Reaper) Run(ctx context.Context) {
	ticker := time.NewTicker(r.rules.ReapInterval)
	defer ticker.Stop()

	for {
		if _, err := r.Sweep(ctx); err != nil && ctx.Err() == nil {
			r.log.WithError(err).Error("reaper sweep failed")
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
