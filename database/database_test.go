package database

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"survivalboard/config"
	"survivalboard/models"
)

func TestOpenSQLite_MigratesAndRoundTrips(t *testing.T) {
	db, err := OpenSQLite(filepath.Join(t.TempDir(), "sessions.db"))
	require.NoError(t, err)
	t.Cleanup(func() { Close(db) })

	require.NoError(t, Migrate(db))
	// Migrate is idempotent
	require.NoError(t, Migrate(db))

	start := time.Date(2026, 3, 14, 12, 0, 0, 123456000, time.UTC)
	final := 42.5
	end := start.Add(45 * time.Second)
	in := models.GameSession{
		SessionID:  "game_1_abc",
		PlayerName: "Alice",
		Status:     models.StatusFinished,
		StartTime:  start,
		CreatedAt:  start,
		EndTime:    &end,
		FinalTime:  &final,
		Revision:   2,
	}
	require.NoError(t, db.Create(&in).Error)

	var out models.GameSession
	require.NoError(t, db.Take(&out, "session_id = ?", "game_1_abc").Error)
	assert.True(t, in.SameContent(out), "stored %+v, read %+v", in, out)
	assert.Equal(t, int64(2), out.Revision)
}

func TestOpen_RejectsUnknownDriver(t *testing.T) {
	cfg := &config.Config{DBDriver: "mysql"}
	_, err := Open(cfg, nil)
	assert.Error(t, err)
}
