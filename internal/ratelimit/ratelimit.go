package ratelimit

import (
	"fmt"

	"codeberg.org/storefront/server/internal/errors"
	"codeberg.org/storefront/server/internal/logger"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	limiter "github.com/ulule/limiter/v3"
	mgin "github.com/ulule/limiter/v3/drivers/middleware/gin"
	"github.com/ulule/limiter/v3/drivers/store/memory"
	sredis "github.com/ulule/limiter/v3/drivers/store/redis"
)

const keyPrefix = "storefront:ratelimit"

// per-client-IP request limiting. rate uses the limiter format, e.g. "300-M".
// counters live in redis when a client is given so replicas share them.
func Middleware(rate string, client *redis.Client) (gin.HandlerFunc, error) {
	parsed, err := limiter.NewRateFromFormatted(rate)
	if err != nil {
		return nil, fmt.Errorf("invalid rate limit %q: %w", rate, err)
	}

	store, err := newStore(client)
	if err != nil {
		return nil, err
	}

	instance := limiter.New(store, parsed)

	return mgin.NewMiddleware(instance,
		mgin.WithLimitReachedHandler(func(c *gin.Context) {
			logger.FromContext(c.Request.Context()).Warn("rate limit exceeded",
				"client_ip", c.ClientIP(),
				"path", c.Request.URL.Path,
			)
			errors.TooManyRequests(c, "too many requests, slow down")
		}),
		mgin.WithErrorHandler(func(c *gin.Context, err error) {
			errors.InternalError(c, "rate limiter unavailable", err)
		}),
	), nil
}

func newStore(client *redis.Client) (limiter.Store, error) {
	if client == nil {
		return memory.NewStoreWithOptions(limiter.StoreOptions{Prefix: keyPrefix}), nil
	}

	store, err := sredis.NewStoreWithOptions(client, limiter.StoreOptions{
		Prefix:   keyPrefix,
		MaxRetry: 3,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create redis rate limit store: %w", err)
	}

	return store, nil
}
