package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"codeberg.org/storefront/server/internal/config"
	"codeberg.org/storefront/server/internal/database"
	"codeberg.org/storefront/server/internal/logger"
	"codeberg.org/storefront/server/storefront/viewers"
)

// one cleanup sweep, for an external scheduler (cron, k8s CronJob)
func main() {
	os.Exit(run(config.ParseJanitorFlags()))
}

// exit codes: 0 clean run, 1 setup or fetch failure, 2 some records failed.
// returns instead of exiting so deferred store cleanup always runs
func run(flags config.Flags) int {
	cfg, err := config.LoadEnvironmentVariables()
	if err != nil {
		logger.ErrorErr(err, "failed to load configuration")
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		logger.ErrorErr(err, "failed to open session store")
		return 1
	}
	defer closeStore()

	if flags.StatsOnly {
		stats, err := viewers.NewManager(store, cfg.Presence.ActiveWindow).Stats(ctx)
		if err != nil {
			logger.ErrorErr(err, "failed to read session stats")
			return 1
		}

		fmt.Printf("active=%d pending_inactive=%d total=%d\n",
			stats.ActiveSessions, stats.PendingInactive, stats.TotalSessions)
		return 0
	}

	report, err := viewers.NewJanitor(store, cfg.Presence.Janitor()).Sweep(ctx)
	if err != nil {
		logger.ErrorErr(err, "viewer cleanup failed")
		return 1
	}

	fmt.Println(report.String())

	if report.ExpireFailed+report.DeleteFailed > 0 {
		return 2
	}

	return 0
}

func openStore(ctx context.Context, cfg *config.Config) (viewers.Store, func(), error) {
	switch cfg.StoreBackend {
	case config.BackendPostgres:
		db, err := database.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}

		return viewers.NewPostgresStore(db), func() { db.Close() }, nil //nolint:errcheck,gosec // exiting

	case config.BackendRedis:
		client, err := database.OpenRedis(ctx, cfg.RedisURL)
		if err != nil {
			return nil, nil, err
		}

		return viewers.NewRedisStore(client), func() { client.Close() }, nil //nolint:errcheck,gosec // exiting

	default:
		logger.Warn("memory store has nothing to sweep outside the server process")

		return viewers.NewMemoryStore(), func() {}, nil
	}
}
