// AngelaMos | 2026
// ratelimit.go

package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	redis_rate "github.com/go-redis/redis_rate/v10"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"

	"github.com/carterperez-dev/food-orders/internal/core"
)

type RateLimitConfig struct {
	Limit    redis_rate.Limit
	KeyFunc  func(*http.Request) string
	FailOpen bool
	Logger   *slog.Logger
}

// RateLimiter counts requests in Redis and falls back to an in-process
// token bucket per key while Redis is unreachable.
type RateLimiter struct {
	limiter  *redis_rate.Limiter
	fallback *localLimiter
	config   RateLimitConfig
}

func NewRateLimiter(rdb *redis.Client, cfg RateLimitConfig) *RateLimiter {
	if cfg.KeyFunc == nil {
		cfg.KeyFunc = KeyByClient
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	return &RateLimiter{
		limiter:  redis_rate.NewLimiter(rdb),
		fallback: newLocalLimiter(sweepInterval, bucketTTL),
		config:   cfg,
	}
}

// Close stops the fallback sweeper. It is safe to call more than once.
func (rl *RateLimiter) Close() {
	rl.fallback.close()
}

func (rl *RateLimiter) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := rl.config.KeyFunc(r)

		res, err := rl.allow(r.Context(), key)
		if err != nil {
			if rl.config.FailOpen {
				rl.config.Logger.Warn("rate limiter error, failing open",
					"error", err,
					"key", key,
				)
				next.ServeHTTP(w, r)
				return
			}
			core.JSONError(w, core.NewAppError(
				err,
				"rate limiter unavailable",
				http.StatusServiceUnavailable,
				"SERVICE_UNAVAILABLE",
			))
			return
		}

		setRateLimitHeaders(w, res, rl.config.Limit)

		if res.Allowed == 0 {
			writeRateLimitExceeded(w, res)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (rl *RateLimiter) allow(
	ctx context.Context,
	key string,
) (*redis_rate.Result, error) {
	res, err := rl.limiter.Allow(ctx, key, rl.config.Limit)
	if err != nil {
		return rl.fallback.allow(key, rl.config.Limit), nil
	}
	return res, nil
}

// KeyByClient keys on the client address. The right-most X-Forwarded-For
// entry is the one appended by our own proxy.
func KeyByClient(r *http.Request) string {
	return "ratelimit:client:" + clientIP(r)
}

// KeyByActor returns a key func that buckets requests per authenticated
// actor under scope. Anonymous requests share the client address bucket.
func KeyByActor(scope string) func(*http.Request) string {
	return func(r *http.Request) string {
		actor, ok := GetActor(r.Context())
		if !ok {
			return "ratelimit:" + scope + ":client:" + clientIP(r)
		}
		return "ratelimit:" + scope + ":actor:" + strconv.FormatInt(actor.ID, 10)
	}
}

func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if i := strings.LastIndexByte(xff, ','); i >= 0 {
			xff = xff[i+1:]
		}
		if ip := strings.TrimSpace(xff); ip != "" {
			return ip
		}
	}

	if xri := strings.TrimSpace(r.Header.Get("X-Real-IP")); xri != "" {
		return xri
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func setRateLimitHeaders(
	w http.ResponseWriter,
	res *redis_rate.Result,
	limit redis_rate.Limit,
) {
	h := w.Header()

	h.Set("X-RateLimit-Limit", strconv.Itoa(limit.Rate))
	h.Set("X-RateLimit-Remaining", strconv.Itoa(res.Remaining))
	h.Set("X-RateLimit-Reset", strconv.FormatInt(
		time.Now().Add(res.ResetAfter).Unix(), 10))
	h.Set("RateLimit-Policy",
		fmt.Sprintf("%d;w=%d", limit.Rate, int(limit.Period.Seconds())))
}

func writeRateLimitExceeded(w http.ResponseWriter, res *redis_rate.Result) {
	retryAfter := max(int(res.RetryAfter.Seconds()), 1)

	w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
	core.JSONError(w, core.NewAppError(
		nil,
		fmt.Sprintf("too many requests, retry after %d seconds", retryAfter),
		http.StatusTooManyRequests,
		"RATE_LIMITED",
	))
}

const (
	sweepInterval = 5 * time.Minute
	bucketTTL     = 10 * time.Minute
)

type bucket struct {
	limiter  *rate.Limiter
	lastSeen atomic.Int64
}

// localLimiter keeps one token bucket per key. Buckets idle for longer than
// ttl are dropped by a sweeper goroutine that runs until close.
type localLimiter struct {
	buckets  sync.Map
	ttl      time.Duration
	stop     chan struct{}
	done     chan struct{}
	stopOnce sync.Once
}

func newLocalLimiter(interval, ttl time.Duration) *localLimiter {
	l := &localLimiter{
		ttl:  ttl,
		stop: make(chan struct{}),
		done: make(chan struct{}),
	}
	go l.sweepLoop(interval)
	return l
}

func (l *localLimiter) sweepLoop(interval time.Duration) {
	defer close(l.done)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-l.stop:
			return
		case now := <-ticker.C:
			l.sweep(now)
		}
	}
}

func (l *localLimiter) sweep(now time.Time) {
	cutoff := now.Add(-l.ttl).UnixNano()
	l.buckets.Range(func(key, value any) bool {
		if b, ok := value.(*bucket); ok && b.lastSeen.Load() < cutoff {
			l.buckets.Delete(key)
		}
		return true
	})
}

func (l *localLimiter) close() {
	l.stopOnce.Do(func() {
		close(l.stop)
		<-l.done
	})
}

func (l *localLimiter) allow(key string, limit redis_rate.Limit) *redis_rate.Result {
	perSec := float64(limit.Rate) / limit.Period.Seconds()
	interval := time.Duration(float64(time.Second) / perSec)

	v, ok := l.buckets.Load(key)
	if !ok {
		v, _ = l.buckets.LoadOrStore(key, &bucket{
			limiter: rate.NewLimiter(rate.Limit(perSec), limit.Burst),
		})
	}
	b := v.(*bucket)
	b.lastSeen.Store(time.Now().UnixNano())

	res := &redis_rate.Result{
		Limit:      limit,
		Remaining:  max(int(b.limiter.Tokens()), 0),
		RetryAfter: -1,
		ResetAfter: interval,
	}
	if b.limiter.Allow() {
		res.Allowed = 1
		res.Remaining = max(res.Remaining-1, 0)
	} else {
		res.RetryAfter = interval
	}
	return res
}

// Per builds a limit of rate requests per window. A non-positive window
// means one minute.
func Per(rate, burst int, window time.Duration) redis_rate.Limit {
	if window <= 0 {
		window = time.Minute
	}
	return redis_rate.Limit{
		Rate:   rate,
		Burst:  burst,
		Period: window,
	}
}
