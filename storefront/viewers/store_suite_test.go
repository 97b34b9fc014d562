package viewers

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// behaviour every Store implementation must share
func runStoreSuite(t *testing.T, newStore func(t *testing.T) Store) {
	ctx := context.Background()

	t.Run("create and get", func(t *testing.T) {
		s := newStore(t)
		session := seedSession("11111111-1111-4111-8111-111111111111", "P1", t0, true)
		session.JoinedAt = t0.Add(-time.Minute)

		require.NoError(t, s.Create(ctx, session))

		got, err := s.Get(ctx, session.SessionID)
		require.NoError(t, err)
		assert.Equal(t, session.SessionID, got.SessionID)
		assert.Equal(t, "P1", got.ProductID)
		assert.Equal(t, "test-agent", got.UserAgent)
		assert.Equal(t, "203.0.113.7", got.IPAddress)
		assert.True(t, got.JoinedAt.Equal(session.JoinedAt))
		assert.True(t, got.LastSeen.Equal(t0))
		assert.True(t, got.IsActive)
	})

	t.Run("get missing", func(t *testing.T) {
		s := newStore(t)

		_, err := s.Get(ctx, "missing")
		assert.ErrorIs(t, err, ErrSessionNotFound)
	})

	t.Run("patch applies only set fields", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Create(ctx, seedSession("s1", "P1", t0, true)))

		require.NoError(t, s.Patch(ctx, "s1", Patch{IsActive: ptr(false)}))

		got, err := s.Get(ctx, "s1")
		require.NoError(t, err)
		assert.False(t, got.IsActive)
		assert.True(t, got.LastSeen.Equal(t0))

		later := t0.Add(time.Minute)
		require.NoError(t, s.Patch(ctx, "s1", Patch{LastSeen: &later, IsActive: ptr(true)}))

		got, err = s.Get(ctx, "s1")
		require.NoError(t, err)
		assert.True(t, got.IsActive)
		assert.True(t, got.LastSeen.Equal(later))
	})

	t.Run("patch missing", func(t *testing.T) {
		s := newStore(t)

		err := s.Patch(ctx, "missing", Patch{IsActive: ptr(false)})
		assert.ErrorIs(t, err, ErrSessionNotFound)
	})

	t.Run("delete is idempotent", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Create(ctx, seedSession("s1", "P1", t0, true)))

		require.NoError(t, s.Delete(ctx, "s1"))
		require.NoError(t, s.Delete(ctx, "s1"))

		_, err := s.Get(ctx, "s1")
		assert.ErrorIs(t, err, ErrSessionNotFound)

		n, err := s.CountActive(ctx, "P1", t0.Add(-time.Hour))
		require.NoError(t, err)
		assert.Zero(t, n)
	})

	t.Run("count active", func(t *testing.T) {
		s := newStore(t)
		since := t0.Add(-5 * time.Minute)

		require.NoError(t, s.Create(ctx, seedSession("in", "P1", t0, true)))
		require.NoError(t, s.Create(ctx, seedSession("edge", "P1", since, true)))
		require.NoError(t, s.Create(ctx, seedSession("old", "P1", since.Add(-time.Second), true)))
		require.NoError(t, s.Create(ctx, seedSession("left", "P1", t0, false)))
		require.NoError(t, s.Create(ctx, seedSession("other", "P2", t0, true)))

		n, err := s.CountActive(ctx, "P1", since)
		require.NoError(t, err)
		assert.Equal(t, 1, n)

		n, err = s.CountActive(ctx, "P9", since)
		require.NoError(t, err)
		assert.Zero(t, n)
	})

	t.Run("count follows patches", func(t *testing.T) {
		s := newStore(t)
		since := t0.Add(-5 * time.Minute)

		require.NoError(t, s.Create(ctx, seedSession("s1", "P1", t0, true)))
		require.NoError(t, s.Patch(ctx, "s1", Patch{IsActive: ptr(false)}))

		n, err := s.CountActive(ctx, "P1", since)
		require.NoError(t, err)
		assert.Zero(t, n)
	})

	t.Run("list stale", func(t *testing.T) {
		s := newStore(t)
		cutoff := t0.Add(-5 * time.Minute)

		require.NoError(t, s.Create(ctx, seedSession("a", "P1", t0.Add(-20*time.Minute), true)))
		require.NoError(t, s.Create(ctx, seedSession("b", "P2", t0.Add(-10*time.Minute), true)))
		require.NoError(t, s.Create(ctx, seedSession("c", "P1", t0.Add(-30*time.Minute), false)))
		require.NoError(t, s.Create(ctx, seedSession("d", "P1", cutoff, true)))
		require.NoError(t, s.Create(ctx, seedSession("e", "P1", t0, true)))

		active, err := s.ListStale(ctx, StaleQuery{Before: cutoff, ActiveOnly: true, Limit: 10})
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "b"}, ids(active))

		all, err := s.ListStale(ctx, StaleQuery{Before: cutoff, Limit: 10})
		require.NoError(t, err)
		assert.Equal(t, []string{"c", "a", "b"}, ids(all))

		capped, err := s.ListStale(ctx, StaleQuery{Before: cutoff, Limit: 2})
		require.NoError(t, err)
		assert.Equal(t, []string{"c", "a"}, ids(capped))
	})

	t.Run("stats", func(t *testing.T) {
		s := newStore(t)
		cutoff := t0.Add(-5 * time.Minute)

		require.NoError(t, s.Create(ctx, seedSession("live", "P1", t0, true)))
		require.NoError(t, s.Create(ctx, seedSession("pending", "P1", t0.Add(-6*time.Minute), true)))
		require.NoError(t, s.Create(ctx, seedSession("ended", "P2", t0, false)))

		stats, err := s.Stats(ctx, cutoff)
		require.NoError(t, err)
		assert.Equal(t, &Stats{ActiveSessions: 1, PendingInactive: 1, TotalSessions: 3}, stats)
	})
}

func ids(sessions []*ViewerSession) []string {
	out := make([]string, 0, len(sessions))
	for _, s := range sessions {
		out = append(out, s.SessionID)
	}

	return out
}

func TestMemoryStore(t *testing.T) {
	runStoreSuite(t, func(_ *testing.T) Store {
		return NewMemoryStore()
	})
}

func TestMemoryStore_ReturnsCopies(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	session := seedSession("s1", "P1", t0, true)
	require.NoError(t, s.Create(ctx, session))

	session.ProductID = "mutated"

	got, err := s.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "P1", got.ProductID)

	got.IsActive = false

	again, err := s.Get(ctx, "s1")
	require.NoError(t, err)
	assert.True(t, again.IsActive)
}
