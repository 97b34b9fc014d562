package main

import (
	"context"
	"database/sql"

	"codeberg.org/storefront/server/internal/config"
	"codeberg.org/storefront/server/storefront/viewers"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// holds all dependencies and state for the API server
type Server struct {
	db      *sql.DB
	redis   *redis.Client
	config  *config.Config
	store   viewers.Store
	manager *viewers.Manager
	janitor *viewers.Janitor
	router  *gin.Engine
}

// checks that the configured session store answers
func (s *Server) ping(ctx context.Context) error {
	switch {
	case s.db != nil:
		return s.db.PingContext(ctx)
	case s.redis != nil:
		return s.redis.Ping(ctx).Err()
	default:
		return nil
	}
}

// releases store connections
func (s *Server) Close() {
	if s.redis != nil {
		s.redis.Close() //nolint:errcheck,gosec // best-effort cleanup on shutdown
	}

	if s.db != nil {
		s.db.Close() //nolint:errcheck,gosec // best-effort cleanup on shutdown
	}
}
