package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"survivalboard/metrics"
	"survivalboard/models"
	"survivalboard/store"
	"survivalboard/utils"
)

// LeaderboardEntry is one player's best finished session. It is derived on
// read and never stored.
type LeaderboardEntry struct {
	PlayerName string  `json:"playerName"`
	FinalTime  float64 `json:"finalTime"`
	SessionID  string  `json:"sessionId"`
}

// Rank reduces finished sessions to the best time per player, sorted
// descending, and keeps the first n. On equal times the session seen first wins.
func Rank(sessions []models.GameSession, n int) []LeaderboardEntry {
	best := make(map[string]int)
	entries := make([]LeaderboardEntry, 0)
	for _, s := range sessions {
		if s.Status != models.StatusFinished || s.FinalTime == nil || !(*s.FinalTime > 0) {
			continue
		}
		e := LeaderboardEntry{PlayerName: s.PlayerName, FinalTime: *s.FinalTime, SessionID: s.SessionID}
		if i, ok := best[s.PlayerName]; ok {
			if e.FinalTime > entries[i].FinalTime {
				entries[i] = e
			}
			continue
		}
		best[s.PlayerName] = len(entries)
		entries = append(entries, e)
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].FinalTime > entries[j].FinalTime
	})
	if n >= 0 && len(entries) > n {
		entries = entries[:n]
	}
	return entries
}

// LeaderboardCache stores computed leaderboards keyed by size. Each value is
// tagged with the store generation it was computed at, and Set never replaces
// a value computed at a later generation.
type LeaderboardCache interface {
	Get(ctx context.Context, n int) ([]LeaderboardEntry, bool, error)
	Set(ctx context.Context, n int, generation uint64, entries []LeaderboardEntry) error
}

const (
	LeaderboardCacheKey = "leaderboard:top:"

	cacheWriteAttempts = 3
)

type cachedLeaderboard struct {
	Generation uint64             `json:"generation"`
	Entries    []LeaderboardEntry `json:"entries"`
}

// RedisLeaderboardCache keeps leaderboards in redis as JSON with a TTL
type RedisLeaderboardCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisLeaderboardCache(client *redis.Client, ttl time.Duration) *RedisLeaderboardCache {
	return &RedisLeaderboardCache{client: client, ttl: ttl}
}

func (c *RedisLeaderboardCache) key(n int) string {
	return fmt.Sprintf("%s%d", LeaderboardCacheKey, n)
}

func (c *RedisLeaderboardCache) Get(ctx context.Context, n int) ([]LeaderboardEntry, bool, error) {
	data, err := c.client.Get(ctx, c.key(n)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var cached cachedLeaderboard
	if err := utils.UnmarshalJSON(data, &cached); err != nil {
		return nil, false, err
	}
	return cached.Entries, true, nil
}

// Set writes entries unless the key already holds a later generation. The
// compare and the write run under WATCH, so a concurrent writer forces a retry.
func (c *RedisLeaderboardCache) Set(ctx context.Context, n int, generation uint64, entries []LeaderboardEntry) error {
	data, err := utils.MarshalJSON(cachedLeaderboard{Generation: generation, Entries: entries})
	if err != nil {
		return err
	}
	key := c.key(n)

	write := func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, key).Bytes()
		switch {
		case errors.Is(err, redis.Nil):
		case err != nil:
			return err
		default:
			var cached cachedLeaderboard
			if err := utils.UnmarshalJSON(current, &cached); err == nil && cached.Generation > generation {
				return nil
			}
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, c.ttl)
			return nil
		})
		return err
	}

	for i := 0; i < cacheWriteAttempts; i++ {
		err = c.client.Watch(ctx, write, key)
		if !errors.Is(err, redis.TxFailedErr) {
			return err
		}
	}
	return err
}

// LeaderboardService serves the top-N view over finished sessions. The cache
// is optional; cache faults fall through to the store.
type LeaderboardService struct {
	store *store.SessionStore
	cache LeaderboardCache
	size  int
	log   logrus.FieldLogger
}

func NewLeaderboardService(sessions *store.SessionStore, cache LeaderboardCache, size int, log logrus.FieldLogger) *LeaderboardService {
	return &LeaderboardService{store: sessions, cache: cache, size: size, log: log}
}

// Top returns the current leaderboard, from cache when possible
func (l *LeaderboardService) Top(ctx context.Context) ([]LeaderboardEntry, error) {
	if l.cache != nil {
		entries, ok, err := l.cache.Get(ctx, l.size)
		switch {
		case err != nil:
			l.log.WithError(err).Warn("leaderboard cache read failed")
		case ok:
			metrics.CacheHits.Inc()
			return entries, nil
		}
		metrics.CacheMisses.Inc()
	}
	return l.compute(ctx)
}

// Refresh recomputes the view from the store and replaces the cached one.
// A concurrent computation that read the store earlier cannot overwrite it.
func (l *LeaderboardService) Refresh(ctx context.Context) ([]LeaderboardEntry, error) {
	return l.compute(ctx)
}

func (l *LeaderboardService) compute(ctx context.Context) ([]LeaderboardEntry, error) {
	generation := l.store.Generation()
	finished, err := l.store.ListByStatus(ctx, models.StatusFinished)
	if err != nil {
		return nil, err
	}
	entries := Rank(finished, l.size)

	if l.cache != nil {
		if err := l.cache.Set(ctx, l.size, generation, entries); err != nil {
			l.log.WithError(err).Warn("leaderboard cache write failed")
		}
	}
	return entries, nil
}

// Watch refreshes the leaderboard whenever a change can alter the finished set
// and hands every new snapshot to publish. It returns when ctx is done or the
// channel is closed.
func (l *LeaderboardService) Watch(ctx context.Context, changes <-chan store.Change, publish func([]LeaderboardEntry)) {
	for {
		select {
		case <-ctx.Done():
			return
		case c, ok := <-changes:
			if !ok {
				return
			}
			if !affectsLeaderboard(c) {
				continue
			}
			entries, err := l.Refresh(ctx)
			if err != nil {
				l.log.WithError(err).Error("leaderboard refresh failed")
				continue
			}
			publish(entries)
		}
	}
}

func affectsLeaderboard(c store.Change) bool {
	finished := func(s *models.GameSession) bool {
		return s != nil && s.Status == models.StatusFinished
	}
	return finished(c.Before) || finished(c.After)
}
