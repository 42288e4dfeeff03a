package session

import (
	"fmt"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"
)

const ckLimiter = "limiter_user_%s"

// Limiters hands out one token bucket per user. Idle buckets expire.
type Limiters struct {
	perMinute int
	cache     *cache.Cache
	mu        sync.Mutex
}

// NewLimiters allows perMinute requests per user, bursting up to the same amount
func NewLimiters(perMinute int) *Limiters {
	if perMinute <= 0 {
		perMinute = 30
	}
	return &Limiters{
		perMinute: perMinute,
		cache:     cache.New(10*time.Minute, 10*time.Minute),
	}
}

// Allow reports whether user may make a request now
func (l *Limiters) Allow(user string) bool {
	return l.get(user).Allow()
}

func (l *Limiters) get(user string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	key := fmt.Sprintf(ckLimiter, user)
	if v, ok := l.cache.Get(key); ok {
		l.cache.SetDefault(key, v)
		return v.(*rate.Limiter)
	}

	limiter := rate.NewLimiter(rate.Every(time.Minute/time.Duration(l.perMinute)), l.perMinute)
	l.cache.SetDefault(key, limiter)
	return limiter
}
