package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"

	"github.com/jrprasath/paperhouse-backend/internal/logger"
	"github.com/jrprasath/paperhouse-backend/internal/utils"
)

// RateLimiter throttles contact-form submissions per client IP with a fixed
// window counter in Redis. It is optional: without REDIS_ADDR every request
// passes.
type RateLimiter struct {
	log    *logger.Logger
	rdb    *goredis.Client
	limit  int
	window time.Duration
}

func NewRateLimiter(log *logger.Logger) (*RateLimiter, error) {
	rlLog := log.With("middleware", "RateLimiter")
	addr := utils.GetEnv("REDIS_ADDR", "", log)
	if addr == "" {
		rlLog.Info("REDIS_ADDR not set, contact-form rate limiting disabled")
		return &RateLimiter{log: rlLog}, nil
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		Password:    utils.GetEnv("REDIS_PASSWORD", "", nil),
		DialTimeout: 5 * time.Second,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &RateLimiter{
		log:    rlLog,
		rdb:    rdb,
		limit:  utils.GetEnvAsInt("CONTACT_RATE_LIMIT", 3, log),
		window: time.Duration(utils.GetEnvAsInt("CONTACT_RATE_WINDOW_SECONDS", 60, log)) * time.Second,
	}, nil
}

func (rl *RateLimiter) Close() {
	if rl.rdb != nil {
		_ = rl.rdb.Close()
	}
}

func (rl *RateLimiter) Limit() gin.HandlerFunc {
	return func(c *gin.Context) {
		if rl.rdb == nil {
			c.Next()
			return
		}
		key := "contact_rl:" + strings.TrimSpace(c.ClientIP())
		ctx := c.Request.Context()

		count, err := rl.rdb.Incr(ctx, key).Result()
		if err != nil {
			// A broken limiter must not take the contact form down.
			rl.log.Warn("Rate limiter unavailable, letting request through", "error", err)
			c.Next()
			return
		}
		if count == 1 {
			if err := rl.rdb.Expire(ctx, key, rl.window).Err(); err != nil {
				rl.log.Warn("Could not set rate limit window", "error", err)
			}
		}
		if count > int64(rl.limit) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "too many messages, please try again later",
			})
			return
		}
		c.Next()
	}
}
