package services

import (
	"context"
	"sync"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"gorm.io/gorm"

	"survivalboard/models"
	"survivalboard/policy"
	"survivalboard/store"
	"survivalboard/testutil"
)

type fixture struct {
	db    *gorm.DB
	store *store.SessionStore
	clock *testutil.Clock
	rules policy.Rules
	log   *logrus.Logger
	hook  *test.Hook
}

func newFixture(t *testing.T, enforcer policy.Enforcer) *fixture {
	t.Helper()
	log, hook := test.NewNullLogger()
	log.SetLevel(logrus.DebugLevel)
	clock := testutil.NewClock(testutil.Epoch)
	db := testutil.NewDB(t)
	return &fixture{
		db:    db,
		store: store.New(db, enforcer, store.WithClock(clock), store.WithLogger(log)),
		clock: clock,
		rules: policy.NewRules(testutil.Rules()),
		log:   log,
		hook:  hook,
	}
}

func newStrictFixture(t *testing.T) *fixture {
	return newFixture(t, policy.NewStrict(policy.NewRules(testutil.Rules())))
}

func (f *fixture) start(t *testing.T, n int, player string) models.GameSession {
	t.Helper()
	s, err := f.store.Create(context.Background(), testutil.NewSession(testutil.SessionID(n), player))
	require.NoError(t, err)
	return s
}

func (f *fixture) get(t *testing.T, id string) models.GameSession {
	t.Helper()
	s, err := f.store.Get(context.Background(), id)
	require.NoError(t, err)
	return s
}

func requireCode(t *testing.T, want codes.Code, err error) {
	t.Helper()
	require.Error(t, err)
	require.Equal(t, want, status.Code(err), "error: %v", err)
}

// fakeCache is an in-memory LeaderboardCache that keeps the latest generation.
// beforeSet, when set before use, runs ahead of every write.
type fakeCache struct {
	mu          sync.Mutex
	entries     map[int][]LeaderboardEntry
	generations map[int]uint64
	gets        int
	sets        int
	beforeSet   func()
}

func newFakeCache() *fakeCache {
	return &fakeCache{
		entries:     make(map[int][]LeaderboardEntry),
		generations: make(map[int]uint64),
	}
}

func (c *fakeCache) Get(_ context.Context, n int) ([]LeaderboardEntry, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gets++
	e, ok := c.entries[n]
	return e, ok, nil
}

func (c *fakeCache) Set(_ context.Context, n int, generation uint64, entries []LeaderboardEntry) error {
	if c.beforeSet != nil {
		c.beforeSet()
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sets++
	if current, ok := c.generations[n]; ok && current > generation {
		return nil
	}
	c.entries[n] = entries
	c.generations[n] = generation
	return nil
}
