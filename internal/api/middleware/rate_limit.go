package middleware

import (
	"fmt"
	"time"

	"github.com/campusswap/backend/internal/config"
	"github.com/campusswap/backend/pkg/logger"
	"github.com/gin-gonic/gin"
	libredis "github.com/redis/go-redis/v9"
	"github.com/ulule/limiter/v3"
	mgin "github.com/ulule/limiter/v3/drivers/middleware/gin"
	"github.com/ulule/limiter/v3/drivers/store/memory"
	sredis "github.com/ulule/limiter/v3/drivers/store/redis"
)

// RateLimitMiddleware throttles per client IP and path. With REDIS_URL
// set the counters are shared across instances; otherwise an in-memory
// store is used.
func RateLimitMiddleware(cfg *config.Config) gin.HandlerFunc {
	rate := limiter.Rate{
		Period: time.Second,
		Limit:  int64(cfg.RateLimitRPS),
	}

	store := newStore(cfg)
	instance := limiter.New(store, rate, limiter.WithTrustForwardHeader(true))

	return mgin.NewMiddleware(instance, mgin.WithKeyGetter(func(c *gin.Context) string {
		return fmt.Sprintf("%s:%s", c.ClientIP(), c.Request.URL.Path)
	}))
}

func newStore(cfg *config.Config) limiter.Store {
	if cfg.RedisURL != "" {
		opts, err := libredis.ParseURL(cfg.RedisURL)
		if err == nil {
			client := libredis.NewClient(opts)
			store, err := sredis.NewStoreWithOptions(client, limiter.StoreOptions{
				Prefix: "campusswap:ratelimit",
			})
			if err == nil {
				return store
			}
			logger.Warn("redis rate limit store unavailable, using memory store: ", err)
		} else {
			logger.Warn("invalid REDIS_URL, using memory rate limit store: ", err)
		}
	}
	return memory.NewStore()
}
