package server

import (
	"sync"
	"time"

	"github.com/bluele/gcache"
	"golang.org/x/time/rate"
)

const (
	limiterCacheSize = 1000
	limiterTTL       = 24 * time.Hour
)

// ipRateLimiter 按客户端 IP 限制新建连接的速率，最近最少使用的 IP 会被淘汰
type ipRateLimiter struct {
	cache gcache.Cache
	mu    sync.Mutex
	r     rate.Limit
	b     int
}

func newIPRateLimiter(r rate.Limit, b int) *ipRateLimiter {
	return &ipRateLimiter{
		cache: gcache.New(limiterCacheSize).LRU().Build(),
		r:     r,
		b:     b,
	}
}

func (i *ipRateLimiter) getLimiter(ip string) *rate.Limiter {
	i.mu.Lock()
	defer i.mu.Unlock()

	if v, err := i.cache.Get(ip); err == nil {
		return v.(*rate.Limiter)
	}
	limiter := rate.NewLimiter(i.r, i.b)
	_ = i.cache.SetWithExpire(ip, limiter, limiterTTL)
	return limiter
}

func (i *ipRateLimiter) allow(ip string) bool {
	return i.getLimiter(ip).Allow()
}
