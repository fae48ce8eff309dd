package ratelimit

import (
	"net/http"
	"strconv"
	"time"

	redis "github.com/redis/go-redis/v9"
	limiter "github.com/ulule/limiter/v3"
	limiterredis "github.com/ulule/limiter/v3/drivers/store/redis"

	"github.com/noah-isme/backend-agency/internal/common"
)

// Handler enforces a request rate per derived key before delegating to the
// next handler. Login and PIN verification endpoints sit behind it.
type Handler struct {
	Limiter *limiter.Limiter
	Key     func(*http.Request) string
	OnError func(error)
}

// New builds a Redis-backed limiter from a rate expressed in ulule notation
// (e.g. "10-M" for ten per minute).
func New(rdb *redis.Client, rate string) (*limiter.Limiter, error) {
	parsed, err := limiter.NewRateFromFormatted(rate)
	if err != nil {
		return nil, err
	}
	store, err := limiterredis.NewStoreWithOptions(rdb, limiter.StoreOptions{
		Prefix: "agency:ratelimit",
	})
	if err != nil {
		return nil, err
	}
	return limiter.New(store, parsed), nil
}

// ByClientIP derives the rate limit key from the caller's IP address.
func ByClientIP(r *http.Request) string {
	return "ip:" + common.ClientIP(r)
}

// Middleware implements the http.Handler middleware interface.
func (h Handler) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h.Limiter == nil || h.Key == nil {
			next.ServeHTTP(w, r)
			return
		}
		res, err := h.Limiter.Get(r.Context(), h.Key(r))
		if err != nil {
			// A broken limiter store must not take the API down with it.
			if h.OnError != nil {
				h.OnError(err)
			}
			next.ServeHTTP(w, r)
			return
		}

		headers := w.Header()
		headers.Set("X-RateLimit-Limit", strconv.FormatInt(res.Limit, 10))
		headers.Set("X-RateLimit-Remaining", strconv.FormatInt(res.Remaining, 10))
		headers.Set("X-RateLimit-Reset", strconv.FormatInt(res.Reset, 10))

		if res.Reached {
			retryAfter := res.Reset - time.Now().Unix()
			if retryAfter < 0 {
				retryAfter = 0
			}
			headers.Set("Retry-After", strconv.FormatInt(retryAfter, 10))
			common.JSONError(w, http.StatusTooManyRequests, "RATE_LIMITED", "too many requests", nil)
			return
		}

		next.ServeHTTP(w, r)
	})
}
