package middleware

import (
	"fmt"

	"github.com/collegeprep/organizer/internal/pkg/apperrors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/ulule/limiter/v3"
	mgin "github.com/ulule/limiter/v3/drivers/middleware/gin"
	"github.com/ulule/limiter/v3/drivers/store/memory"
	sredis "github.com/ulule/limiter/v3/drivers/store/redis"
)

const rateLimitPrefix = "collegeprep:ratelimit:"

// RateLimiter builds per-client-IP limiters over a shared store
type RateLimiter struct {
	store limiter.Store
}

// NewRateLimiter uses redis when a client is given, memory otherwise
func NewRateLimiter(client *redis.Client) (*RateLimiter, error) {
	opts := limiter.StoreOptions{Prefix: rateLimitPrefix, MaxRetry: 3}
	if client == nil {
		return &RateLimiter{store: memory.NewStoreWithOptions(opts)}, nil
	}
	store, err := sredis.NewStoreWithOptions(client, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to create redis rate limit store: %w", err)
	}
	return &RateLimiter{store: store}, nil
}

// Limit returns a middleware enforcing a formatted rate such as "20-M".
// Each name counts separately per client IP.
func (r *RateLimiter) Limit(name, formatted string) (gin.HandlerFunc, error) {
	rate, err := limiter.NewRateFromFormatted(formatted)
	if err != nil {
		return nil, fmt.Errorf("invalid %s rate %q: %w", name, formatted, err)
	}
	return mgin.NewMiddleware(
		limiter.New(r.store, rate),
		mgin.WithLimitReachedHandler(rateLimitReached),
		mgin.WithKeyGetter(func(c *gin.Context) string {
			return name + ":" + c.ClientIP()
		}),
	), nil
}

func rateLimitReached(c *gin.Context) {
	HandleAPIError(c, apperrors.NewCustomError(apperrors.ErrRateLimited, "Too many requests, please wait before retrying"))
}
