package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"NeighborWatch/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"
	sredis "github.com/ulule/limiter/v3/drivers/store/redis"
)

// RateLimiterConfig configures per-IP limiting.
//
// Rate uses the limiter format: "100-M", "1000-H", "10-S".
// SkipPaths are prefixes exempt from limiting, e.g. "/metrics", "/healthz".
type RateLimiterConfig struct {
	Rate       string   `json:"rate"`
	SkipPaths  []string `json:"skip_paths"`
	AddHeaders bool     `json:"add_headers"`
}

// MetricsObserver 指标上报接口
type MetricsObserver interface {
	IncEvent(event string)
}

// RateLimiter limits requests per client IP.
type RateLimiter struct {
	cfg      RateLimiterConfig
	lim      *limiter.Limiter
	observer MetricsObserver
}

// NewRateLimiter builds a limiter over store; a nil store means in-memory.
func NewRateLimiter(cfg RateLimiterConfig, store limiter.Store) (*RateLimiter, error) {
	rate, err := limiter.NewRateFromFormatted(cfg.Rate)
	if err != nil {
		return nil, fmt.Errorf("invalid rate %q: %w", cfg.Rate, err)
	}
	if store == nil {
		store = memory.NewStore()
	}
	return &RateLimiter{cfg: cfg, lim: limiter.New(store, rate)}, nil
}

// NewRedisStore shares counters between replicas through Redis.
func NewRedisStore(ctx context.Context, addr string) (limiter.Store, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return sredis.NewStoreWithOptions(client, limiter.StoreOptions{Prefix: "neighborwatch:ratelimit"})
}

// WithObserver 配置指标观察者
func (l *RateLimiter) WithObserver(observer MetricsObserver) *RateLimiter {
	l.observer = observer
	return l
}

// Middleware 返回 Gin 中间件
func (l *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if pathSkipped(l.cfg, c.Request.URL.Path) {
			c.Next()
			return
		}

		key := "ip:" + clientIPFromRequest(c)
		ctx, err := l.lim.Get(c.Request.Context(), key)
		if err != nil {
			// fail open: the store is not worth an outage
			c.Next()
			return
		}
		if l.cfg.AddHeaders {
			setStandardHeaders(c, ctx)
		}
		if ctx.Reached {
			setRetryAfter(c, time.Until(time.Unix(ctx.Reset, 0)))
			if l.observer != nil {
				l.observer.IncEvent("rate_limited")
			}
			response.Fail(c, http.StatusTooManyRequests, "Too Many Requests")
			return
		}
		c.Next()
	}
}

func pathSkipped(cfg RateLimiterConfig, path string) bool {
	for _, pref := range cfg.SkipPaths {
		if pref != "" && strings.HasPrefix(path, pref) {
			return true
		}
	}
	return false
}

func clientIPFromRequest(c *gin.Context) string {
	return strings.TrimPrefix(c.ClientIP(), "::ffff:")
}

func setStandardHeaders(c *gin.Context, ctx limiter.Context) {
	c.Header("X-RateLimit-Limit", strconv.FormatInt(ctx.Limit, 10))
	c.Header("X-RateLimit-Remaining", strconv.FormatInt(ctx.Remaining, 10))
	resetSec := int(time.Until(time.Unix(ctx.Reset, 0)).Seconds())
	if resetSec < 0 {
		resetSec = 0
	}
	c.Header("X-RateLimit-Reset", strconv.Itoa(resetSec))
}

func setRetryAfter(c *gin.Context, d time.Duration) {
	sec := int(d.Seconds())
	if sec < 0 {
		sec = 0
	}
	c.Header("Retry-After", strconv.Itoa(sec))
}
