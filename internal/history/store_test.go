package history

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func entry(id, deployment, action string, started time.Time) Entry {
	return Entry{
		ID:          id,
		Deployment:  deployment,
		Environment: "env-a",
		Action:      action,
		Command:     "racectl " + action,
		Outcome:     OutcomeSuccess,
		StartedAt:   started,
		FinishedAt:  started.Add(90 * time.Second),
	}
}

func TestStore_RecordAndGet(t *testing.T) {
	s := &Store{DB: OpenTestDB(t)}
	ctx := context.Background()
	started := time.Date(2026, 3, 1, 12, 0, 0, 123456789, time.UTC)

	e := entry("op-1", "alpha", "up", started)
	e.Force = true
	e.Outcome = OutcomeFailure
	e.Error = "convergence timeout"
	require.NoError(t, s.Record(ctx, e))

	got, err := s.Get(ctx, "op-1")
	require.NoError(t, err)
	if diff := cmp.Diff(e, got); diff != "" {
		t.Errorf("Get() mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, 90*time.Second, got.Duration())

	assert.ErrorIs(t, s.Record(ctx, e), ErrAlreadyExists)
	_, err = s.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Error(t, s.Record(ctx, Entry{}))
}

func TestStore_ListNewestFirst(t *testing.T) {
	s := &Store{DB: OpenTestDB(t)}
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	// A non-UTC zone must not disturb ordering.
	est := time.FixedZone("EST", -5*3600)
	require.NoError(t, s.Record(ctx, entry("op-1", "alpha", "up", base)))
	require.NoError(t, s.Record(ctx, entry("op-2", "beta", "up", base.Add(time.Minute))))
	require.NoError(t, s.Record(ctx, entry("op-3", "alpha", "down", base.Add(2*time.Hour).In(est))))

	all, err := s.List(ctx, Filter{})
	require.NoError(t, err)
	ids := make([]string, 0, len(all))
	for _, e := range all {
		ids = append(ids, e.ID)
	}
	assert.Equal(t, []string{"op-3", "op-2", "op-1"}, ids)

	alpha, err := s.List(ctx, Filter{Deployment: "alpha", Limit: 1})
	require.NoError(t, err)
	require.Len(t, alpha, 1)
	assert.Equal(t, "op-3", alpha[0].ID)
	assert.True(t, alpha[0].StartedAt.Equal(base.Add(2*time.Hour)))

	n, err := s.Prune(ctx, "alpha")
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	rest, err := s.List(ctx, Filter{})
	require.NoError(t, err)
	require.Len(t, rest, 1)
	assert.Equal(t, "beta", rest[0].Deployment)
}

func TestOpen_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)

	db, err := Open(path)
	require.NoError(t, err)
	s := &Store{DB: db}
	require.NoError(t, s.Record(context.Background(), entry("op-1", "alpha", "up", time.Now())))
	require.NoError(t, db.Close())

	// Reopening runs no pending migrations and keeps the data.
	db, err = Open(path)
	require.NoError(t, err)
	defer db.Close()
	s = &Store{DB: db}
	entries, err := s.List(context.Background(), Filter{})
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}
