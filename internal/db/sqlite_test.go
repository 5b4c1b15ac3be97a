package db

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RichardoC/envask/internal/models"
)

func newTestDB(t *testing.T) *Database {
	t.Helper()
	database, err := New(filepath.Join(t.TempDir(), "journal.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })
	return database
}

func TestSaveAndListExchanges(t *testing.T) {
	ctx := context.Background()
	database := newTestDB(t)
	base := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

	first := &models.Exchange{
		ID:         "a",
		Seq:        1,
		Query:      "how warm was 2023?",
		Answer:     "1.48 °C above pre-industrial",
		Status:     models.StatusApplied,
		StatusCode: 200,
		StartedAt:  base,
		FinishedAt: base.Add(time.Second),
	}
	second := &models.Exchange{
		ID:         "b",
		Seq:        2,
		Query:      "",
		Status:     models.StatusFailed,
		Error:      "connection refused",
		StartedAt:  base.Add(2 * time.Second),
		FinishedAt: base.Add(3 * time.Second),
	}
	require.NoError(t, database.SaveExchange(ctx, first))
	require.NoError(t, database.SaveExchange(ctx, second))

	got, err := database.RecentExchanges(ctx, 10)
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, "b", got[0].ID)
	assert.Equal(t, models.StatusFailed, got[0].Status)
	assert.Equal(t, "connection refused", got[0].Error)

	assert.Equal(t, "a", got[1].ID)
	assert.Equal(t, uint64(1), got[1].Seq)
	assert.Equal(t, first.Answer, got[1].Answer)
	assert.Equal(t, 200, got[1].StatusCode)
	assert.True(t, first.StartedAt.Equal(got[1].StartedAt))

	limited, err := database.RecentExchanges(ctx, 1)
	require.NoError(t, err)
	require.Len(t, limited, 1)
	assert.Equal(t, "b", limited[0].ID)
}

func TestSaveExchangeDuplicateID(t *testing.T) {
	ctx := context.Background()
	database := newTestDB(t)
	now := time.Now()

	ex := &models.Exchange{ID: "dup", Status: models.StatusApplied, StartedAt: now, FinishedAt: now}
	require.NoError(t, database.SaveExchange(ctx, ex))
	assert.Error(t, database.SaveExchange(ctx, ex))
}

func TestPrune(t *testing.T) {
	ctx := context.Background()
	database := newTestDB(t)
	old := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	recent := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, database.SaveExchange(ctx, &models.Exchange{ID: "old", Status: models.StatusApplied, StartedAt: old, FinishedAt: old}))
	require.NoError(t, database.SaveExchange(ctx, &models.Exchange{ID: "new", Status: models.StatusApplied, StartedAt: recent, FinishedAt: recent}))

	n, err := database.Prune(ctx, recent.Add(-time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	got, err := database.RecentExchanges(ctx, 10)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "new", got[0].ID)
}
