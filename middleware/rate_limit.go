package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/olekhov/mediapress/config"
	"github.com/olekhov/mediapress/utils"
)

const limiterIdleTTL = 5 * time.Minute

type ipLimiter struct {
	bucket  *rate.Limiter
	expires time.Time
}

var (
	limiters   = map[string]*ipLimiter{}
	limitersMu sync.Mutex
)

// RateLimitMiddleware throttles mutating requests per client IP with a token
// bucket sized from configuration. Idle buckets are dropped after a few
// minutes so the map stays bounded.
func RateLimitMiddleware() gin.HandlerFunc {
	perMinute := config.Get().RateLimitPerMinute
	if perMinute < 1 {
		perMinute = 1
	}
	every := rate.Every(time.Minute / time.Duration(perMinute))
	burst := perMinute / 2
	if burst < 1 {
		burst = 1
	}

	return func(ctx *gin.Context) {
		if !takeToken(ctx.ClientIP(), every, burst) {
			utils.Error(ctx, http.StatusTooManyRequests, 42901, "rate limit exceeded")
			ctx.Abort()
			return
		}
		ctx.Next()
	}
}

func takeToken(ip string, limit rate.Limit, burst int) bool {
	limitersMu.Lock()
	defer limitersMu.Unlock()

	now := time.Now()
	for key, l := range limiters {
		if now.After(l.expires) {
			delete(limiters, key)
		}
	}

	l, ok := limiters[ip]
	if !ok {
		l = &ipLimiter{bucket: rate.NewLimiter(limit, burst)}
		limiters[ip] = l
	}
	l.expires = now.Add(limiterIdleTTL)
	return l.bucket.Allow()
}
