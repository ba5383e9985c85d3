package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"
)

// visitor holds a per-IP limiter and the last time that IP was seen.
type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// LoginLimiter applies a per-IP rate limit to credential submissions so a
// single client cannot brute-force the authenticate action through us.
type LoginLimiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	rate     rate.Limit
	burst    int
}

// NewLoginLimiter creates a per-IP limiter allowing r requests per second
// with the given burst.
func NewLoginLimiter(r rate.Limit, burst int) *LoginLimiter {
	l := &LoginLimiter{
		visitors: make(map[string]*visitor),
		rate:     r,
		burst:    burst,
	}
	go l.evictLoop()
	return l
}

func (l *LoginLimiter) limiterFor(ip string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	if v, ok := l.visitors[ip]; ok {
		v.lastSeen = time.Now()
		return v.limiter
	}

	limiter := rate.NewLimiter(l.rate, l.burst)
	l.visitors[ip] = &visitor{limiter: limiter, lastSeen: time.Now()}
	return limiter
}

// evictLoop drops IPs not seen for a while so the map cannot grow without
// bound.
func (l *LoginLimiter) evictLoop() {
	ticker := time.NewTicker(3 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		l.mu.Lock()
		for ip, v := range l.visitors {
			if time.Since(v.lastSeen) > 5*time.Minute {
				delete(l.visitors, ip)
			}
		}
		l.mu.Unlock()
	}
}

// Middleware returns an Echo middleware enforcing the limit.
func (l *LoginLimiter) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !l.limiterFor(c.RealIP()).Allow() {
				retryAfter := max(int(1.0/float64(l.rate)), 1)
				c.Response().Header().Set("Retry-After", strconv.Itoa(retryAfter))
				return echo.NewHTTPError(http.StatusTooManyRequests, "rate limit exceeded")
			}
			return next(c)
		}
	}
}
