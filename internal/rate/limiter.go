package rate

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dropDatabas3/bookjohn/internal/cache"
)

// Result es el veredicto del limiter para un hit.
type Result struct {
	Allowed     bool
	Remaining   int64
	RetryAfter  time.Duration
	CurrentHits int64
}

// Limiter decide si un hit identificado por key pasa o no.
type Limiter interface {
	Allow(ctx context.Context, key string) (Result, error)
}

// MemoryLimiter: fixed window sencillo sobre la cache en memoria.
// La key real incluye el inicio de la ventana, así el contador expira solo.
type MemoryLimiter struct {
	Cache  cache.Cache
	Prefix string
	Max    int64
	Window time.Duration
}

// NewMemoryLimiter crea un limiter de max hits por window.
func NewMemoryLimiter(c cache.Cache, prefix string, max int, window time.Duration) *MemoryLimiter {
	if prefix == "" {
		prefix = "rl:"
	}
	return &MemoryLimiter{Cache: c, Prefix: prefix, Max: int64(max), Window: window}
}

func (l *MemoryLimiter) Allow(_ context.Context, key string) (Result, error) {
	now := time.Now().UTC()
	winStart := now.Truncate(l.Window)
	k := fmt.Sprintf("%s%s:%d", l.Prefix, strings.ReplaceAll(key, " ", "_"), winStart.Unix())

	hits := l.Cache.Increment(k, 1, l.Window)
	allowed := hits <= l.Max
	remaining := l.Max - hits
	if remaining < 0 {
		remaining = 0
	}

	res := Result{Allowed: allowed, Remaining: remaining, CurrentHits: hits}
	if !allowed {
		// Retry after: resto de la ventana
		res.RetryAfter = winStart.Add(l.Window).Sub(now)
	}
	return res, nil
}
