package services

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"

	"survivalboard/metrics"
	"survivalboard/models"
	"survivalboard/policy"
	"survivalboard/store"
)

// Action is the auditor's decision for one committed write
type Action string

const (
	ActionKeep   Action = "keep"
	ActionPurge  Action = "purge"
	ActionRevert Action = "revert"
)

// Verdict pairs an Action with the reason it was taken
type Verdict struct {
	Action Action
	Reason string
}

var keep = Verdict{Action: ActionKeep}

// Compensator applies trusted corrective writes. store.SessionStore implements it.
type Compensator interface {
	Purge(ctx context.Context, expected models.GameSession) error
	Restore(ctx context.Context, expected, snapshot models.GameSession) (models.GameSession, error)
}

// Auditor re-inspects every committed write after the fact and compensates
// records that slipped past the access policy.
type Auditor struct {
	rules policy.Rules
	store Compensator
	log   logrus.FieldLogger
}

func NewAuditor(rules policy.Rules, compensator Compensator, log logrus.FieldLogger) *Auditor {
	return &Auditor{rules: rules, store: compensator, log: log}
}

// Review decides what to do with a change without touching the store
func (a *Auditor) Review(c store.Change) Verdict {
	if c.Compensation {
		return keep
	}

	switch c.Op {
	case policy.OpCreate:
		if c.After == nil {
			return keep
		}
		return a.reviewCreate(*c.After)
	case policy.OpUpdate:
		if c.Before == nil || c.After == nil {
			return keep
		}
		return a.reviewUpdate(*c.Before, *c.After)
	default:
		// Nothing is left to audit after a delete
		return keep
	}
}

func (a *Auditor) reviewCreate(doc models.GameSession) Verdict {
	if doc.Status != models.StatusActive {
		return Verdict{ActionPurge, "created with status " + string(doc.Status)}
	}
	if reason := a.rules.CheckShape(doc); reason != "" {
		return Verdict{ActionPurge, reason}
	}
	return keep
}

func (a *Auditor) reviewUpdate(before, after models.GameSession) Verdict {
	// A write that changed nothing leaves nothing to undo
	if after.SameContent(before) {
		return keep
	}
	if before.Status != models.StatusActive {
		return Verdict{ActionRevert, "mutated a " + string(before.Status) + " session"}
	}
	if after.PlayerName != before.PlayerName || !after.StartTime.Equal(before.StartTime) || !after.CreatedAt.Equal(before.CreatedAt) {
		return Verdict{ActionRevert, "rewrote an immutable field"}
	}
	// startTime is unchanged past this point, so the stored shape covers the elapsed time too
	if reason := a.rules.CheckShape(after); reason != "" {
		return Verdict{ActionRevert, reason}
	}
	return keep
}

// Audit reviews one change and applies the compensation it calls for.
// Compensations are best effort: failures are logged, never returned.
func (a *Auditor) Audit(ctx context.Context, c store.Change) Verdict {
	v := a.Review(c)
	if v.Action == ActionKeep {
		return v
	}

	log := a.log.WithFields(logrus.Fields{
		"session_id": c.SessionID,
		"action":     v.Action,
		"reason":     v.Reason,
	})

	var err error
	switch v.Action {
	case ActionPurge:
		err = a.store.Purge(ctx, *c.After)
	case ActionRevert:
		_, err = a.store.Restore(ctx, *c.After, *c.Before)
	}

	switch {
	case err == nil:
		metrics.AuditorCompensations.WithLabelValues(string(v.Action), "applied").Inc()
		log.Warn("compensated invalid write")
	case errors.Is(err, store.ErrConflict):
		// A newer write already replaced the audited one; it gets its own audit
		metrics.AuditorCompensations.WithLabelValues(string(v.Action), "superseded").Inc()
		log.Info("audited write already superseded, compensation skipped")
	default:
		metrics.AuditorCompensations.WithLabelValues(string(v.Action), "failed").Inc()
		log.WithError(err).Error("compensation failed")
	}
	return v
}

// Run audits changes until ctx is done or the channel is closed
func (a *Auditor) Run(ctx context.Context, changes <-chan store.Change) {
	for {
		select {
		case <-ctx.Done():
			return
		case c, ok := <-changes:
			if !ok {
				return
			}
			a.Audit(ctx, c)
		}
	}
}
