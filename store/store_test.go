package store

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"survivalboard/models"
	"survivalboard/policy"
	"survivalboard/testutil"
)

func newStore(t *testing.T, enforcer policy.Enforcer) (*SessionStore, *testutil.Clock) {
	t.Helper()
	clock := testutil.NewClock(testutil.Epoch)
	logger, _ := test.NewNullLogger()
	return New(testutil.NewDB(t), enforcer, WithClock(clock), WithLogger(logger)), clock
}

func strict() policy.Enforcer {
	return policy.NewStrict(policy.NewRules(testutil.Rules()))
}

func finish(finalTime float64) func(*models.GameSession) error {
	return func(s *models.GameSession) error {
		s.Status = models.StatusFinished
		s.EndTime = ServerTimestamp()
		s.FinalTime = &finalTime
		return nil
	}
}

func TestCreate_AssignsServerTimestamps(t *testing.T) {
	s, clock := newStore(t, strict())
	ctx := context.Background()

	created, err := s.Create(ctx, testutil.NewSession(testutil.SessionID(1), "Alice"))
	require.NoError(t, err)

	assert.True(t, created.StartTime.Equal(clock.Now()))
	assert.True(t, created.CreatedAt.Equal(clock.Now()))
	assert.Nil(t, created.EndTime)
	assert.Nil(t, created.FinalTime)
	assert.Equal(t, int64(1), created.Revision)

	stored, err := s.Get(ctx, created.SessionID)
	require.NoError(t, err)
	assert.True(t, created.SameContent(stored))
}

func TestCreate_RejectsForgedDocuments(t *testing.T) {
	s, clock := newStore(t, strict())
	ctx := context.Background()

	forged := testutil.NewSession(testutil.SessionID(1), "Alice")
	forged.StartTime = clock.Now().Add(-2 * time.Minute)
	_, err := s.Create(ctx, forged)
	assert.True(t, policy.IsDenied(err))

	cheat := testutil.Finished(testutil.SessionID(2), "Cheater", clock.Now(), time.Minute, 999.99)
	_, err = s.Create(ctx, cheat)
	assert.True(t, policy.IsDenied(err))

	_, err = s.Get(ctx, testutil.SessionID(1))
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.Get(ctx, testutil.SessionID(2))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCreate_DuplicateID(t *testing.T) {
	s, _ := newStore(t, strict())
	ctx := context.Background()

	_, err := s.Create(ctx, testutil.NewSession(testutil.SessionID(1), "Alice"))
	require.NoError(t, err)
	_, err = s.Create(ctx, testutil.NewSession(testutil.SessionID(1), "Bob"))
	assert.ErrorIs(t, err, ErrAlreadyExists)
}

func TestUpdate_FinishOnce(t *testing.T) {
	s, clock := newStore(t, strict())
	ctx := context.Background()
	id := testutil.SessionID(1)

	_, err := s.Create(ctx, testutil.NewSession(id, "Alice"))
	require.NoError(t, err)

	clock.Advance(30 * time.Second)
	finished, err := s.Update(ctx, id, finish(25.5))
	require.NoError(t, err)
	assert.Equal(t, models.StatusFinished, finished.Status)
	require.NotNil(t, finished.EndTime)
	assert.True(t, finished.EndTime.Equal(clock.Now()))
	assert.Equal(t, 25.5, *finished.FinalTime)
	assert.Equal(t, int64(2), finished.Revision)

	clock.Advance(5 * time.Second)
	_, err = s.Update(ctx, id, finish(299))
	assert.True(t, policy.IsDenied(err))

	stored, err := s.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 25.5, *stored.FinalTime)
}

func TestUpdate_ClientCannotPickEndTime(t *testing.T) {
	s, clock := newStore(t, strict())
	ctx := context.Background()
	id := testutil.SessionID(1)

	_, err := s.Create(ctx, testutil.NewSession(id, "Alice"))
	require.NoError(t, err)
	clock.Advance(30 * time.Second)

	_, err = s.Update(ctx, id, func(doc *models.GameSession) error {
		end := doc.StartTime.Add(5 * time.Minute)
		ft := 290.0
		doc.Status = models.StatusFinished
		doc.EndTime = &end
		doc.FinalTime = &ft
		return nil
	})
	assert.True(t, policy.IsDenied(err))
}

func TestUpdate_NotFoundAndSkip(t *testing.T) {
	s, _ := newStore(t, strict())
	ctx := context.Background()

	_, err := s.Update(ctx, "game_1_missing", finish(10))
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = s.Create(ctx, testutil.NewSession(testutil.SessionID(1), "Alice"))
	require.NoError(t, err)
	_, err = s.Update(ctx, testutil.SessionID(1), func(*models.GameSession) error { return ErrSkip })
	assert.ErrorIs(t, err, ErrSkip)
}

func TestDelete_AlwaysDeniedByStrictPolicy(t *testing.T) {
	s, _ := newStore(t, strict())
	ctx := context.Background()
	id := testutil.SessionID(1)

	_, err := s.Create(ctx, testutil.NewSession(id, "Alice"))
	require.NoError(t, err)

	err = s.Delete(ctx, id)
	var v *policy.Violation
	require.ErrorAs(t, err, &v)
	assert.Equal(t, policy.OpDelete, v.Op)

	_, err = s.Get(ctx, id)
	assert.NoError(t, err)
}

func TestUpdateBatch_SkipsNonActive(t *testing.T) {
	s, clock := newStore(t, strict())
	ctx := context.Background()

	for i := 1; i <= 3; i++ {
		_, err := s.Create(ctx, testutil.NewSession(testutil.SessionID(i), "P"))
		require.NoError(t, err)
	}
	clock.Advance(10 * time.Second)
	_, err := s.Update(ctx, testutil.SessionID(2), finish(9))
	require.NoError(t, err)

	clock.Advance(2 * time.Hour)
	abandon := func(doc *models.GameSession) error {
		if doc.Status != models.StatusActive {
			return ErrSkip
		}
		doc.Status = models.StatusAbandoned
		doc.EndTime = ServerTimestamp()
		return nil
	}
	ids := []string{testutil.SessionID(1), testutil.SessionID(2), testutil.SessionID(3), "game_9_gone"}
	committed, err := s.UpdateBatch(ctx, ids, abandon)
	require.NoError(t, err)
	require.Len(t, committed, 2)
	assert.Equal(t, testutil.SessionID(1), committed[0].SessionID)
	assert.Equal(t, testutil.SessionID(3), committed[1].SessionID)

	second, err := s.UpdateBatch(ctx, ids, abandon)
	require.NoError(t, err)
	assert.Empty(t, second)

	finished, err := s.Get(ctx, testutil.SessionID(2))
	require.NoError(t, err)
	assert.Equal(t, models.StatusFinished, finished.Status)
}

func TestSubscribe_PublishesCommittedChanges(t *testing.T) {
	s, clock := newStore(t, strict())
	ctx := context.Background()
	id := testutil.SessionID(1)

	changes, cancel := s.Subscribe(8)
	defer cancel()

	_, err := s.Create(ctx, testutil.NewSession(id, "Alice"))
	require.NoError(t, err)
	clock.Advance(20 * time.Second)
	_, err = s.Update(ctx, id, finish(19))
	require.NoError(t, err)

	// denied writes are not published
	_, err = s.Update(ctx, id, finish(20))
	require.Error(t, err)

	created := <-changes
	assert.Equal(t, policy.OpCreate, created.Op)
	assert.Nil(t, created.Before)
	require.NotNil(t, created.After)

	updated := <-changes
	assert.Equal(t, policy.OpUpdate, updated.Op)
	assert.Equal(t, models.StatusActive, updated.Before.Status)
	assert.Equal(t, models.StatusFinished, updated.After.Status)
	assert.False(t, updated.Compensation)

	select {
	case c := <-changes:
		t.Fatalf("unexpected change %+v", c)
	default:
	}
}

func TestSubscribe_SlowReaderNeverBlocksWriters(t *testing.T) {
	s, _ := newStore(t, strict())
	ctx := context.Background()

	changes, cancel := s.Subscribe(0)
	for i := 1; i <= 5; i++ {
		_, err := s.Create(ctx, testutil.NewSession(testutil.SessionID(i), "Alice"))
		require.NoError(t, err)
	}

	for i := 1; i <= 5; i++ {
		c := <-changes
		assert.Equal(t, testutil.SessionID(i), c.SessionID)
	}

	cancel()
	select {
	case _, ok := <-changes:
		assert.False(t, ok)
	case <-time.After(5 * time.Second):
		t.Fatal("channel not closed after cancel")
	}
}

func TestCompensations_AreGuardedByRevision(t *testing.T) {
	s, clock := newStore(t, policy.Open{})
	ctx := context.Background()
	id := testutil.SessionID(1)

	created, err := s.Create(ctx, testutil.NewSession(id, "Alice"))
	require.NoError(t, err)
	clock.Advance(time.Minute)

	tampered, err := s.Update(ctx, id, func(doc *models.GameSession) error {
		ft := 999.0
		doc.Status = models.StatusFinished
		doc.EndTime = ServerTimestamp()
		doc.FinalTime = &ft
		return nil
	})
	require.NoError(t, err)

	// a stale expectation never overwrites the newer record
	_, err = s.Restore(ctx, created, created)
	assert.ErrorIs(t, err, ErrConflict)
	assert.ErrorIs(t, s.Purge(ctx, created), ErrConflict)

	restored, err := s.Restore(ctx, tampered, created)
	require.NoError(t, err)
	assert.Equal(t, models.StatusActive, restored.Status)
	assert.Nil(t, restored.FinalTime)
	assert.Equal(t, tampered.Revision+1, restored.Revision)

	require.NoError(t, s.Purge(ctx, restored))
	_, err = s.Get(ctx, id)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestOpenPolicy_AllowsDelete(t *testing.T) {
	s, _ := newStore(t, policy.Open{})
	ctx := context.Background()
	id := testutil.SessionID(1)

	_, err := s.Create(ctx, testutil.NewSession(id, "Alice"))
	require.NoError(t, err)
	require.NoError(t, s.Delete(ctx, id))
	_, err = s.Get(ctx, id)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdate_ConcurrentFinishHasOneWinner(t *testing.T) {
	s, clock := newStore(t, strict())
	ctx := context.Background()
	id := testutil.SessionID(1)

	_, err := s.Create(ctx, testutil.NewSession(id, "Alice"))
	require.NoError(t, err)
	clock.Advance(45 * time.Second)

	times := []float64{40, 44}
	errs := make([]error, len(times))
	var wg sync.WaitGroup
	for i, ft := range times {
		wg.Add(1)
		go func(i int, ft float64) {
			defer wg.Done()
			_, errs[i] = s.Update(ctx, id, finish(ft))
		}(i, ft)
	}
	wg.Wait()

	var winners int
	var winner float64
	for i, err := range errs {
		if err == nil {
			winners++
			winner = times[i]
		} else {
			assert.True(t, policy.IsDenied(err) || err == ErrConflict, "unexpected error %v", err)
		}
	}
	require.Equal(t, 1, winners)

	stored, err := s.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, winner, *stored.FinalTime)
	assert.Equal(t, int64(2), stored.Revision)
}

func TestRecordDenial_LogsReason(t *testing.T) {
	clock := testutil.NewClock(testutil.Epoch)
	logger, hook := test.NewNullLogger()
	s := New(testutil.NewDB(t), strict(), WithClock(clock), WithLogger(logger))

	_, err := s.Create(context.Background(), models.GameSession{SessionID: "bad", PlayerName: "A", Status: models.StatusActive})
	require.Error(t, err)

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, logrus.InfoLevel, entry.Level)
	assert.Equal(t, policy.OpCreate, entry.Data["op"])
}

func TestGeneration_AdvancesOnCommitOnly(t *testing.T) {
	s, clock := newStore(t, strict())
	ctx := context.Background()

	start := s.Generation()
	_, err := s.Create(ctx, testutil.NewSession(testutil.SessionID(1), "Alice"))
	require.NoError(t, err)
	created := s.Generation()
	assert.Greater(t, created, start)

	require.Error(t, s.Delete(ctx, testutil.SessionID(1)))
	assert.Equal(t, created, s.Generation())

	clock.Advance(time.Minute)
	_, err = s.Update(ctx, testutil.SessionID(1), finish(42))
	require.NoError(t, err)
	assert.GreaterOrEqual(t, s.Generation(), uint64(clock.Now().UnixNano()))
}

func TestGeneration_RestartNeverGoesBackwards(t *testing.T) {
	db := testutil.NewDB(t)
	clock := testutil.NewClock(testutil.Epoch)
	first := New(db, policy.Open{}, WithClock(clock))
	for i := 1; i <= 3; i++ {
		_, err := first.Create(context.Background(), testutil.NewSession(testutil.SessionID(i), "Alice"))
		require.NoError(t, err)
	}

	clock.Advance(time.Millisecond)
	restarted := New(db, policy.Open{}, WithClock(clock))
	assert.Greater(t, restarted.Generation(), first.Generation())
}
