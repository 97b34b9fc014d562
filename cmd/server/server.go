package main

import (
	"context"
	"database/sql"
	"fmt"

	"codeberg.org/storefront/server/internal/config"
	"codeberg.org/storefront/server/internal/database"
	"codeberg.org/storefront/server/internal/logger"
	"codeberg.org/storefront/server/storefront/viewers"
	"github.com/gin-gonic/gin"
)

// creates and configures a new server instance with all dependencies
func NewServer(ctx context.Context, cfg *config.Config) (*Server, error) {
	server := &Server{config: cfg}

	store, err := server.openStore(ctx)
	if err != nil {
		server.Close()
		return nil, err
	}

	// a redis URL enables the shared rate-limit store even when sessions live elsewhere
	if server.redis == nil && cfg.RedisURL != "" {
		client, err := database.OpenRedis(ctx, cfg.RedisURL)
		if err != nil {
			logger.ErrorErr(err, "redis unavailable, falling back to in-memory rate limiting")
		} else {
			server.redis = client
		}
	}

	server.store = store
	server.manager = viewers.NewManager(store, cfg.Presence.ActiveWindow)
	server.janitor = viewers.NewJanitor(store, cfg.Presence.Janitor())

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	server.router = gin.New()

	if err := RegisterRoutes(server.router, server); err != nil {
		server.Close()
		return nil, fmt.Errorf("failed to register routes: %w", err)
	}

	return server, nil
}

func (s *Server) openStore(ctx context.Context) (viewers.Store, error) {
	switch s.config.StoreBackend {
	case config.BackendPostgres:
		db, err := database.Open(ctx, s.config.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}

		s.db = db

		if s.config.AutoMigrate {
			if err := migrateUp(db); err != nil {
				return nil, err
			}
		}

		logger.Info("using postgres session store")

		return viewers.NewPostgresStore(db), nil

	case config.BackendRedis:
		client, err := database.OpenRedis(ctx, s.config.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}

		s.redis = client

		logger.Info("using redis session store")

		return viewers.NewRedisStore(client), nil

	default:
		logger.Warn("using in-memory session store, counts are per process and lost on restart")

		return viewers.NewMemoryStore(), nil
	}
}

func migrateUp(db *sql.DB) error {
	if err := database.Migrate(db); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	version, dirty, err := database.MigrationVersion(db)
	if err != nil {
		return fmt.Errorf("failed to read migration version: %w", err)
	}

	logger.Info("database migrated", "version", version, "dirty", dirty)

	return nil
}
