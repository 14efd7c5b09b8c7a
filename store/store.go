// Package store is the authoritative session store. Every client-visible write runs
// the access policy inside its transaction against the store's own clock, commits
// with a compare-and-swap on the record revision, and is then published to
// subscribers such as the write auditor.
package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"survivalboard/metrics"
	"survivalboard/models"
	"survivalboard/policy"
)

const table = "game_sessions"

var (
	ErrNotFound      = errors.New("session not found")
	ErrAlreadyExists = errors.New("session already exists")
	ErrConflict      = errors.New("session was modified concurrently")
	// ErrSkip is returned by an update mutator to leave the record untouched
	ErrSkip = errors.New("update skipped")
)

// Change describes one committed write
type Change struct {
	Op        policy.Op
	SessionID string
	Before    *models.GameSession // nil on create
	After     *models.GameSession // nil on delete
	// Compensation marks writes made by the auditor itself
	Compensation bool
}

// subscriber queues changes without bound so a commit never waits on a slow
// reader, including a reader that writes to the store itself.
type subscriber struct {
	ch   chan Change
	done chan struct{}
	wake chan struct{}

	mu    sync.Mutex
	queue []Change
}

func (sub *subscriber) push(c Change) {
	sub.mu.Lock()
	sub.queue = append(sub.queue, c)
	sub.mu.Unlock()

	select {
	case sub.wake <- struct{}{}:
	default:
	}
}

func (sub *subscriber) forward() {
	defer close(sub.ch)
	for {
		sub.mu.Lock()
		if len(sub.queue) == 0 {
			sub.mu.Unlock()
			select {
			case <-sub.wake:
				continue
			case <-sub.done:
				return
			}
		}
		next := sub.queue[0]
		sub.queue = sub.queue[1:]
		sub.mu.Unlock()

		select {
		case sub.ch <- next:
		case <-sub.done:
			return
		}
	}
}

// SessionStore persists game sessions
type SessionStore struct {
	db     *gorm.DB
	policy policy.Enforcer
	clock  Clock
	log    logrus.FieldLogger

	mu     sync.RWMutex
	nextID int
	subs   map[int]*subscriber

	generation atomic.Uint64
}

type Option func(*SessionStore)

func WithClock(c Clock) Option {
	return func(s *SessionStore) { s.clock = c }
}

func WithLogger(l logrus.FieldLogger) Option {
	return func(s *SessionStore) { s.log = l }
}

func New(db *gorm.DB, enforcer policy.Enforcer, opts ...Option) *SessionStore {
	s := &SessionStore{
		db:     db,
		policy: enforcer,
		clock:  SystemClock,
		log:    logrus.StandardLogger(),
		subs:   make(map[int]*subscriber),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.generation.Store(uint64(s.clock.Now().UnixNano()))
	return s
}

// Generation identifies the set of writes committed through this store. It
// advances after every commit and before subscribers hear of it, and it is
// seeded from the clock so a restarted process never goes backwards. A read
// that starts at generation g observes at least every write up to g.
func (s *SessionStore) Generation() uint64 {
	return s.generation.Load()
}

func (s *SessionStore) advanceGeneration() {
	now := uint64(s.clock.Now().UnixNano())
	for {
		cur := s.generation.Load()
		if s.generation.CompareAndSwap(cur, max(cur+1, now)) {
			return
		}
	}
}

// Now reads the authoritative clock
func (s *SessionStore) Now() time.Time {
	return s.clock.Now()
}

// Create commits a new session document after the access policy admits it.
// Zero StartTime/CreatedAt are filled with the commit time.
func (s *SessionStore) Create(ctx context.Context, doc models.GameSession) (models.GameSession, error) {
	defer metrics.RecordDBOperation("create", table, time.Now())

	var committed models.GameSession
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := s.clock.Now()
		proposed := doc.Clone()
		resolveServerTimestamps(&proposed, now)

		if err := s.policy.AllowCreate(proposed, now); err != nil {
			return err
		}

		var count int64
		if err := tx.Model(&models.GameSession{}).Where("session_id = ?", proposed.SessionID).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrAlreadyExists
		}

		proposed.Revision = 1
		if err := tx.Create(&proposed).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrAlreadyExists
			}
			return err
		}
		committed = proposed
		return nil
	})
	if err != nil {
		s.recordDenial(err)
		return models.GameSession{}, err
	}

	after := committed.Clone()
	s.publish(Change{Op: policy.OpCreate, SessionID: committed.SessionID, After: &after})
	return committed, nil
}

// Update re-reads the record, lets mutate propose the next document, runs the
// access policy against the re-read state and commits only if the revision is
// unchanged. A lost race returns ErrConflict.
func (s *SessionStore) Update(ctx context.Context, sessionID string, mutate func(*models.GameSession) error) (models.GameSession, error) {
	defer metrics.RecordDBOperation("update", table, time.Now())

	var change Change
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		c, err := s.guardedUpdate(tx, sessionID, mutate)
		change = c
		return err
	})
	if err != nil {
		s.recordDenial(err)
		return models.GameSession{}, err
	}

	s.publish(change)
	return change.After.Clone(), nil
}

// UpdateBatch applies mutate to every id in one transaction. Records the mutator
// skips, the policy denies or a concurrent writer changed are left out; any other
// failure rolls the whole batch back. It returns the committed documents.
func (s *SessionStore) UpdateBatch(ctx context.Context, sessionIDs []string, mutate func(*models.GameSession) error) ([]models.GameSession, error) {
	defer metrics.RecordDBOperation("update_batch", table, time.Now())

	var changes []Change
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, id := range sessionIDs {
			c, err := s.guardedUpdate(tx, id, mutate)
			switch {
			case err == nil:
				changes = append(changes, c)
			case errors.Is(err, ErrSkip), errors.Is(err, ErrNotFound), errors.Is(err, ErrConflict):
				s.log.WithField("session_id", id).WithError(err).Debug("batch update skipped record")
			case policy.IsDenied(err):
				s.recordDenial(err)
				s.log.WithField("session_id", id).WithError(err).Warn("batch update denied by access policy")
			default:
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	committed := make([]models.GameSession, 0, len(changes))
	for _, c := range changes {
		s.publish(c)
		committed = append(committed, c.After.Clone())
	}
	return committed, nil
}

func (s *SessionStore) guardedUpdate(tx *gorm.DB, sessionID string, mutate func(*models.GameSession) error) (Change, error) {
	existing, err := take(tx, sessionID)
	if err != nil {
		return Change{}, err
	}

	now := s.clock.Now()
	proposed := existing.Clone()
	if err := mutate(&proposed); err != nil {
		return Change{}, err
	}
	resolveServerTimestamps(&proposed, now)

	if err := s.policy.AllowUpdate(existing, proposed, now); err != nil {
		return Change{}, err
	}

	// The document id addresses the record and is never rewritten
	proposed.SessionID = existing.SessionID
	proposed.Revision = existing.Revision + 1

	res := tx.Model(&models.GameSession{}).
		Where("session_id = ? AND revision = ?", existing.SessionID, existing.Revision).
		Updates(columns(proposed))
	if res.Error != nil {
		return Change{}, res.Error
	}
	if res.RowsAffected == 0 {
		return Change{}, ErrConflict
	}

	before := existing.Clone()
	after := proposed.Clone()
	return Change{Op: policy.OpUpdate, SessionID: existing.SessionID, Before: &before, After: &after}, nil
}

// Delete asks the access policy to remove a record. The strict policy always denies.
func (s *SessionStore) Delete(ctx context.Context, sessionID string) error {
	defer metrics.RecordDBOperation("delete", table, time.Now())

	var removed models.GameSession
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, err := take(tx, sessionID)
		if err != nil {
			return err
		}
		if err := s.policy.AllowDelete(existing); err != nil {
			return err
		}
		res := tx.Where("session_id = ? AND revision = ?", sessionID, existing.Revision).Delete(&models.GameSession{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrConflict
		}
		removed = existing
		return nil
	})
	if err != nil {
		s.recordDenial(err)
		return err
	}

	s.publish(Change{Op: policy.OpDelete, SessionID: sessionID, Before: &removed})
	return nil
}

// Purge removes the record written by an audited change. It bypasses the access
// policy and only succeeds while the record is still at the audited revision.
func (s *SessionStore) Purge(ctx context.Context, expected models.GameSession) error {
	defer metrics.RecordDBOperation("purge", table, time.Now())

	res := s.db.WithContext(ctx).
		Where("session_id = ? AND revision = ?", expected.SessionID, expected.Revision).
		Delete(&models.GameSession{})
	if res.Error != nil {
		return fmt.Errorf("purge session: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrConflict
	}

	before := expected.Clone()
	s.publish(Change{Op: policy.OpDelete, SessionID: expected.SessionID, Before: &before, Compensation: true})
	return nil
}

// Restore overwrites the record written by an audited change with snapshot. Like
// Purge it bypasses the access policy and is guarded on the audited revision.
func (s *SessionStore) Restore(ctx context.Context, expected, snapshot models.GameSession) (models.GameSession, error) {
	defer metrics.RecordDBOperation("restore", table, time.Now())

	restored := snapshot.Clone()
	restored.SessionID = expected.SessionID
	restored.Revision = expected.Revision + 1

	res := s.db.WithContext(ctx).Model(&models.GameSession{}).
		Where("session_id = ? AND revision = ?", expected.SessionID, expected.Revision).
		Updates(columns(restored))
	if res.Error != nil {
		return models.GameSession{}, fmt.Errorf("restore session: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return models.GameSession{}, ErrConflict
	}

	before := expected.Clone()
	after := restored.Clone()
	s.publish(Change{Op: policy.OpUpdate, SessionID: expected.SessionID, Before: &before, After: &after, Compensation: true})
	return restored, nil
}

// Get reads one session by id
func (s *SessionStore) Get(ctx context.Context, sessionID string) (models.GameSession, error) {
	defer metrics.RecordDBOperation("get", table, time.Now())
	return take(s.db.WithContext(ctx), sessionID)
}

// FindActive reads the session only if it is still active
func (s *SessionStore) FindActive(ctx context.Context, sessionID string) (models.GameSession, error) {
	defer metrics.RecordDBOperation("find_active", table, time.Now())

	var session models.GameSession
	err := s.db.WithContext(ctx).
		Where("session_id = ? AND status = ?", sessionID, models.StatusActive).
		Take(&session).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.GameSession{}, ErrNotFound
	}
	return session, err
}

// ListByStatus returns every session in status, oldest first
func (s *SessionStore) ListByStatus(ctx context.Context, status models.SessionStatus) ([]models.GameSession, error) {
	defer metrics.RecordDBOperation("list", table, time.Now())

	var sessions []models.GameSession
	err := s.db.WithContext(ctx).
		Where("status = ?", status).
		Order("created_at ASC").Order("session_id ASC").
		Find(&sessions).Error
	return sessions, err
}

// ListAll returns every session, oldest first
func (s *SessionStore) ListAll(ctx context.Context) ([]models.GameSession, error) {
	defer metrics.RecordDBOperation("list", table, time.Now())

	var sessions []models.GameSession
	err := s.db.WithContext(ctx).Order("created_at ASC").Order("session_id ASC").Find(&sessions).Error
	return sessions, err
}

// Subscribe registers for committed changes, delivered in publish order. The
// channel is closed once cancel is called.
func (s *SessionStore) Subscribe(buffer int) (<-chan Change, func()) {
	sub := &subscriber{
		ch:   make(chan Change, buffer),
		done: make(chan struct{}),
		wake: make(chan struct{}, 1),
	}

	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = sub
	s.mu.Unlock()

	go sub.forward()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subs, id)
			s.mu.Unlock()
			close(sub.done)
		})
	}
	return sub.ch, cancel
}

func (s *SessionStore) publish(c Change) {
	s.advanceGeneration()

	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, sub := range s.subs {
		sub.push(c)
	}
}

func (s *SessionStore) recordDenial(err error) {
	var v *policy.Violation
	if errors.As(err, &v) {
		metrics.PolicyDenials.WithLabelValues(string(v.Op)).Inc()
		s.log.WithFields(logrus.Fields{
			"session_id": v.SessionID,
			"op":         v.Op,
			"reason":     v.Reason,
		}).Info("write denied by access policy")
	}
}

func take(db *gorm.DB, sessionID string) (models.GameSession, error) {
	var session models.GameSession
	err := db.Where("session_id = ?", sessionID).Take(&session).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.GameSession{}, ErrNotFound
	}
	return session, err
}

func columns(s models.GameSession) map[string]any {
	return map[string]any{
		"player_name": s.PlayerName,
		"status":      s.Status,
		"start_time":  s.StartTime,
		"created_at":  s.CreatedAt,
		"end_time":    s.EndTime,
		"final_time":  s.FinalTime,
		"revision":    s.Revision,
	}
}
