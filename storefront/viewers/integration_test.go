//go:build integration

package viewers

import (
	"context"
	"fmt"
	"testing"
	"time"

	"codeberg.org/storefront/server/internal/database"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

func TestPostgresStore_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx, "postgres:15",
		postgres.WithDatabase("storefront"),
		postgres.WithUsername("storefront"),
		postgres.WithPassword("storefront"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err)
	defer func() { _ = pgContainer.Terminate(ctx) }()

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := database.Open(ctx, connStr)
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	require.NoError(t, database.Migrate(db))

	runStoreSuite(t, func(t *testing.T) Store {
		_, err := db.ExecContext(ctx, "TRUNCATE viewer_sessions")
		require.NoError(t, err)

		return NewPostgresStore(db)
	})

	t.Run("lifecycle", func(t *testing.T) {
		_, err := db.ExecContext(ctx, "TRUNCATE viewer_sessions")
		require.NoError(t, err)

		runLifecycle(t, NewPostgresStore(db))
	})
}

func TestRedisStore_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	ctx := context.Background()

	redisContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(30 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err)
	defer func() { _ = redisContainer.Terminate(ctx) }()

	endpoint, err := redisContainer.Endpoint(ctx, "")
	require.NoError(t, err)

	client, err := database.OpenRedis(ctx, fmt.Sprintf("redis://%s/0", endpoint))
	require.NoError(t, err)
	defer func() { _ = client.Close() }()

	fresh := func(t *testing.T) *RedisStore {
		require.NoError(t, client.FlushDB(ctx).Err())
		return NewRedisStore(client)
	}

	runStoreSuite(t, func(t *testing.T) Store {
		return fresh(t)
	})

	t.Run("lifecycle", func(t *testing.T) {
		runLifecycle(t, fresh(t))
	})

	t.Run("leave drops product index", func(t *testing.T) {
		store := fresh(t)
		require.NoError(t, store.Create(ctx, seedSession("s1", "P1", t0, true)))
		require.NoError(t, store.Patch(ctx, "s1", Patch{IsActive: ptr(false)}))

		members, err := client.ZRange(ctx, fmt.Sprintf(keyProductActive, "P1"), 0, -1).Result()
		require.NoError(t, err)
		require.Empty(t, members)

		all, err := client.ZRangeWithScores(ctx, keyAll, 0, -1).Result()
		require.NoError(t, err)
		require.Equal(t, []redis.Z{{Score: float64(t0.UnixMilli()), Member: "s1"}}, all)
	})
}

// join, heartbeat, sweep, and retention against a real backend
func runLifecycle(t *testing.T, store Store) {
	ctx := context.Background()
	clock := newFakeClock(t0)

	cfg := DefaultJanitorConfig()
	cfg.BatchPause = 0

	manager := NewManager(store, cfg.ActiveWindow).WithClock(clock.Now)
	janitor := NewJanitor(store, cfg).WithClock(clock.Now)

	session, err := manager.Join(ctx, "P1", ClientInfo{UserAgent: "integration"})
	require.NoError(t, err)

	n, err := manager.Count(ctx, "P1")
	require.NoError(t, err)
	require.Equal(t, 1, n)

	clock.Advance(time.Minute)
	_, err = manager.Heartbeat(ctx, session.SessionID)
	require.NoError(t, err)

	clock.Advance(6 * time.Minute)
	report, err := janitor.Sweep(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, report.Expired)

	n, err = manager.Count(ctx, "P1")
	require.NoError(t, err)
	require.Zero(t, n)

	clock.Advance(25 * time.Hour)
	report, err = janitor.Sweep(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, report.Deleted)

	_, err = store.Get(ctx, session.SessionID)
	require.ErrorIs(t, err, ErrSessionNotFound)
}
