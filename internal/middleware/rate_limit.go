// internal/middleware/rate_limit.go
package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/javajoker/localshop-backend/internal/config"
	"github.com/javajoker/localshop-backend/internal/i18n"
	"github.com/javajoker/localshop-backend/internal/utils"
)

const visitorTTL = 3 * time.Minute

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter keeps one token bucket per client IP.
type RateLimiter struct {
	visitors  map[string]*visitor
	mtx       sync.Mutex
	rate      rate.Limit
	burst     int
	lastSweep time.Time
}

func NewRateLimiter(r rate.Limit, b int) *RateLimiter {
	return &RateLimiter{
		visitors: make(map[string]*visitor),
		rate:     r,
		burst:    b,
	}
}

func (rl *RateLimiter) getVisitor(ip string) *rate.Limiter {
	rl.mtx.Lock()
	defer rl.mtx.Unlock()

	now := time.Now()
	rl.evictStale(now)

	v, exists := rl.visitors[ip]
	if !exists {
		limiter := rate.NewLimiter(rl.rate, rl.burst)
		rl.visitors[ip] = &visitor{limiter, now}
		return limiter
	}

	v.lastSeen = now
	return v.limiter
}

// evictStale drops idle visitors at most once a minute; callers hold rl.mtx.
func (rl *RateLimiter) evictStale(now time.Time) {
	if now.Sub(rl.lastSweep) < time.Minute {
		return
	}
	rl.lastSweep = now
	for ip, v := range rl.visitors {
		if now.Sub(v.lastSeen) > visitorTTL {
			delete(rl.visitors, ip)
		}
	}
}

func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !rl.getVisitor(c.ClientIP()).Allow() {
			lang := utils.GetLangFromContext(c)
			utils.ErrorResponse(c, http.StatusTooManyRequests, "RATE_LIMITED", i18n.T(lang, i18n.KeyRateLimited), nil)
			return
		}
		c.Next()
	}
}

// RateLimiters are the per-route-group limiters built from config. A zero
// limit disables the corresponding limiter.
type RateLimiters struct {
	General  gin.HandlerFunc
	Auth     gin.HandlerFunc
	Checkout gin.HandlerFunc
}

func NewRateLimiters(cfg config.RateLimitConfig) RateLimiters {
	return RateLimiters{
		General:  limiterOrPass(cfg.GeneralPerSecond, time.Second),
		Auth:     limiterOrPass(cfg.AuthPerMinute, time.Minute),
		Checkout: limiterOrPass(cfg.CheckoutPerMinute, time.Minute),
	}
}

func limiterOrPass(events int, per time.Duration) gin.HandlerFunc {
	if events <= 0 {
		return func(c *gin.Context) { c.Next() }
	}
	return NewRateLimiter(rate.Every(per/time.Duration(events)), events).Middleware()
}
