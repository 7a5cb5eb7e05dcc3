// Package middleware file: internal/transport/http/middleware/limiter.go
package middleware

import (
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"
)

const (
	ipEntryTTL      = 15 * time.Minute
	ipCleanupPeriod = 10 * time.Minute

	defaultGlobalRPS   = 100
	defaultGlobalBurst = 200
	defaultIPRPS       = 10
	defaultIPBurst     = 30
)

// RateLimitConfig is the rate_limit section of the configuration. Zero values take
// the defaults; a negative rate disables that layer.
type RateLimitConfig struct {
	GlobalRPS   float64 `mapstructure:"global_rps"`
	GlobalBurst int     `mapstructure:"global_burst"`
	IPRPS       float64 `mapstructure:"ip_rps"`
	IPBurst     int     `mapstructure:"ip_burst"`
}

// RateLimiter holds one global token bucket and one bucket per client IP.
// Idle IP buckets expire from the cache.
type RateLimiter struct {
	global *rate.Limiter

	ipMu    sync.Mutex
	ips     *cache.Cache
	ipRate  rate.Limit
	ipBurst int
}

func NewRateLimiter(cfg RateLimitConfig) *RateLimiter {
	globalRate, globalBurst := limitOf(cfg.GlobalRPS, cfg.GlobalBurst, defaultGlobalRPS, defaultGlobalBurst)
	ipRate, ipBurst := limitOf(cfg.IPRPS, cfg.IPBurst, defaultIPRPS, defaultIPBurst)

	slog.Info("rate limiter ready",
		"global_rps", float64(globalRate), "global_burst", globalBurst,
		"ip_rps", float64(ipRate), "ip_burst", ipBurst)

	return &RateLimiter{
		global:  rate.NewLimiter(globalRate, globalBurst),
		ips:     cache.New(ipEntryTTL, ipCleanupPeriod),
		ipRate:  ipRate,
		ipBurst: ipBurst,
	}
}

func limitOf(rps float64, burst int, defRPS float64, defBurst int) (rate.Limit, int) {
	switch {
	case rps < 0:
		return rate.Inf, 0
	case rps == 0:
		rps = defRPS
	}
	if burst <= 0 {
		burst = defBurst
	}
	return rate.Limit(rps), burst
}

// ipLimiter returns the bucket of ip and pushes its expiry forward.
func (l *RateLimiter) ipLimiter(ip string) *rate.Limiter {
	l.ipMu.Lock()
	defer l.ipMu.Unlock()
	if v, ok := l.ips.Get(ip); ok {
		lim := v.(*rate.Limiter)
		l.ips.SetDefault(ip, lim)
		return lim
	}
	lim := rate.NewLimiter(l.ipRate, l.ipBurst)
	l.ips.SetDefault(ip, lim)
	return lim
}

// TrackedIPs reports how many client buckets are live.
func (l *RateLimiter) TrackedIPs() int {
	return l.ips.ItemCount()
}

// Global rejects requests once the process-wide budget is spent.
func (l *RateLimiter) Global() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !l.global.Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "service saturé, réessayez plus tard"})
			return
		}
		c.Next()
	}
}

// PerIP rejects a client that exceeds its own budget.
func (l *RateLimiter) PerIP() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !l.ipLimiter(c.ClientIP()).Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "trop de requêtes, réessayez plus tard"})
			return
		}
		c.Next()
	}
}

// Chain is Global then PerIP.
func (l *RateLimiter) Chain() []gin.HandlerFunc {
	return []gin.HandlerFunc{l.Global(), l.PerIP()}
}
