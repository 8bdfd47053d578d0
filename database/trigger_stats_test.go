package database_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/nsneverhax/nhxinfobot/database"
)

func openStats(t *testing.T) *database.TriggerStatsDB {
	t.Helper()

	db, err := database.InitDB(filepath.Join(t.TempDir(), "nested", "stats.db"), zaptest.NewLogger(t))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	stats, err := database.NewTriggerStatsDB(db)
	require.NoError(t, err)
	t.Cleanup(func() { stats.Close() })
	return stats
}

func TestIncrementUse(t *testing.T) {
	t.Parallel()

	stats := openStats(t)
	ctx := context.Background()
	day := time.Date(2025, 3, 4, 23, 30, 0, 0, time.UTC)

	for range 3 {
		require.NoError(t, stats.IncrementUse(ctx, "g1", "dolphin", "en", day))
	}
	require.NoError(t, stats.IncrementUse(ctx, "g1", "dolphin", "esl", day))
	require.NoError(t, stats.IncrementUse(ctx, "g1", "dolphin", "en", day.Add(time.Hour)))
	require.NoError(t, stats.IncrementUse(ctx, "g2", "dolphin", "en", day))

	uses, err := stats.UsesOn(ctx, "g1", "dolphin", "en", day)
	require.NoError(t, err)
	assert.Equal(t, 3, uses)

	uses, err = stats.UsesOn(ctx, "g1", "dolphin", "en", day.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 1, uses, "next UTC day starts a new counter")

	uses, err = stats.UsesOn(ctx, "g1", "missing", "en", day)
	require.NoError(t, err)
	assert.Zero(t, uses)
}

func TestTopTriggers(t *testing.T) {
	t.Parallel()

	stats := openStats(t)
	ctx := context.Background()
	day := time.Date(2025, 3, 4, 12, 0, 0, 0, time.UTC)

	bump := func(trigger string, d time.Time, n int) {
		for range n {
			require.NoError(t, stats.IncrementUse(ctx, "g", trigger, "en", d))
		}
	}
	bump("wii", day, 2)
	bump("wii", day.AddDate(0, 0, 1), 2)
	bump("dolphin", day, 3)
	bump("xbox", day, 3)
	bump("old", day.AddDate(0, 0, -10), 9)

	top, err := stats.TopTriggers(ctx, "g", day, 2)
	require.NoError(t, err)
	assert.Equal(t, []database.TriggerUse{
		{Trigger: "wii", Lang: "en", Uses: 4},
		{Trigger: "dolphin", Lang: "en", Uses: 3},
	}, top)
}

func TestCleanupOldStats(t *testing.T) {
	t.Parallel()

	stats := openStats(t)
	ctx := context.Background()
	now := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)

	require.NoError(t, stats.IncrementUse(ctx, "g", "old", "en", now.AddDate(0, 0, -31)))
	require.NoError(t, stats.IncrementUse(ctx, "g", "edge", "en", now.AddDate(0, 0, -30)))
	require.NoError(t, stats.IncrementUse(ctx, "g", "new", "en", now))

	removed, err := stats.CleanupOldStats(ctx, now, 0)
	require.NoError(t, err)
	assert.Zero(t, removed, "zero retention keeps everything")

	removed, err = stats.CleanupOldStats(ctx, now, 30)
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)

	top, err := stats.TopTriggers(ctx, "g", now.AddDate(-1, 0, 0), 10)
	require.NoError(t, err)
	assert.Len(t, top, 2)
}
