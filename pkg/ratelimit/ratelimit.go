package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"go.uber.org/zap"

	cfgpkg "github.com/clubworks/memberpay/pkg/config"
)

// Limiter is a fixed-window request counter. With redis configured the
// window is shared across instances; without it the limiter degrades to a
// per-instance window, which is only adequate for single-instance
// deployments. Redis errors fail open: a degraded counter store must not
// take the API down.
type Limiter struct {
	rdb    *redis.Client
	max    int
	window time.Duration
	log    *zap.SugaredLogger

	mu    sync.Mutex
	local map[string]*localWindow
}

type localWindow struct {
	count   int
	startAt time.Time
}

func New(cfg *cfgpkg.Config, log *zap.SugaredLogger) *Limiter {
	l := &Limiter{
		max:    cfg.RateLimit.MaxRequests,
		window: time.Duration(cfg.RateLimit.WindowSeconds) * time.Second,
		log:    log,
		local:  make(map[string]*localWindow),
	}
	if cfg.Redis.Addr != "" {
		l.rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		log.Infow("rate limiter using redis window counter", "addr", cfg.Redis.Addr)
	} else {
		log.Warnw("rate limiter running per-instance; configure redis.addr for multi-instance deployments")
	}
	return l
}

// Allow reports whether the caller identified by key may proceed.
func (l *Limiter) Allow(ctx context.Context, key string) bool {
	if l.rdb != nil {
		return l.allowRedis(ctx, key)
	}
	return l.allowLocal(key)
}

func (l *Limiter) allowRedis(ctx context.Context, key string) bool {
	rkey := fmt.Sprintf("ratelimit:%s", key)
	pipe := l.rdb.TxPipeline()
	incr := pipe.Incr(ctx, rkey)
	pipe.ExpireNX(ctx, rkey, l.window)
	if _, err := pipe.Exec(ctx); err != nil {
		l.log.Warnw("rate limiter redis error, allowing request", "error", err.Error())
		return true
	}
	return incr.Val() <= int64(l.max)
}

func (l *Limiter) allowLocal(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	w, ok := l.local[key]
	if !ok || now.Sub(w.startAt) > l.window {
		l.local[key] = &localWindow{count: 1, startAt: now}
		return true
	}
	if w.count >= l.max {
		return false
	}
	w.count++
	return true
}

var Module = fx.Options(
	fx.Provide(New),
)
