package middleware

import (
	"sync"

	"golang.org/x/time/rate"
)

// RateLimiter hands out one token bucket per key (API key id or client IP).
type RateLimiter struct {
	limiters  map[string]*rate.Limiter
	mu        sync.Mutex
	rateLimit rate.Limit
	burstRate int
}

func NewRateLimiter(r rate.Limit, b int) *RateLimiter {
	return &RateLimiter{limiters: make(map[string]*rate.Limiter), rateLimit: r, burstRate: b}
}

func (i *RateLimiter) GetLimiter(key string) *rate.Limiter {
	i.mu.Lock()
	defer i.mu.Unlock()
	limiter, exists := i.limiters[key]
	if !exists {
		limiter = rate.NewLimiter(i.rateLimit, i.burstRate)
		i.limiters[key] = limiter
	}
	return limiter
}

func (i *RateLimiter) Allow(key string) bool {
	return i.GetLimiter(key).Allow()
}

//TODO: when the users grow
// I must offload this key-value to redis
