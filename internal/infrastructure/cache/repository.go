// Package cache puts a Redis read-through layer in front of GetByID.
package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-course-platform/internal/domain/repository"
	"github.com/oksasatya/go-course-platform/internal/domain/specification"
	"github.com/oksasatya/go-course-platform/pkg/helpers"
)

// Keys is the set of cache keys touched by staged writes.
type Keys struct {
	mu   sync.Mutex
	keys map[string]struct{}
}

func (k *Keys) add(key string) {
	k.mu.Lock()
	if k.keys == nil {
		k.keys = map[string]struct{}{}
	}
	k.keys[key] = struct{}{}
	k.mu.Unlock()
}

func (k *Keys) drain() []string {
	k.mu.Lock()
	defer k.mu.Unlock()
	out := make([]string, 0, len(k.keys))
	for key := range k.keys {
		out = append(out, key)
	}
	k.keys = nil
	return out
}

// Repository caches GetByID results. Writes are passed through and their keys
// recorded in dirty; whoever commits the unit of work evicts them.
type Repository[E repository.Entity[K], K comparable] struct {
	inner  repository.Repository[E, K]
	rdb    *redis.Client
	table  string
	ttl    time.Duration
	dirty  *Keys
	Logger *logrus.Logger
}

func NewRepository[E repository.Entity[K], K comparable](inner repository.Repository[E, K], rdb *redis.Client, table string, ttl time.Duration, dirty *Keys) *Repository[E, K] {
	return &Repository[E, K]{inner: inner, rdb: rdb, table: table, ttl: ttl, dirty: dirty}
}

func (r *Repository[E, K]) key(id K) string {
	return helpers.RedisKey("cache", r.table, fmt.Sprint(id))
}

func (r *Repository[E, K]) Add(ctx context.Context, e E) error {
	return r.inner.Add(ctx, e)
}

func (r *Repository[E, K]) Update(ctx context.Context, e E) error {
	r.dirty.add(r.key(e.Key()))
	return r.inner.Update(ctx, e)
}

func (r *Repository[E, K]) Remove(ctx context.Context, e E) error {
	r.dirty.add(r.key(e.Key()))
	return r.inner.Remove(ctx, e)
}

func (r *Repository[E, K]) GetByID(ctx context.Context, id K) (E, bool, error) {
	key := r.key(id)
	var cached E
	hit, err := helpers.RedisGetJSON(ctx, r.rdb, key, &cached)
	if err != nil {
		r.warn(err, key, "cache read failed")
	}
	if hit {
		return cached, true, nil
	}

	e, ok, err := r.inner.GetByID(ctx, id)
	if err != nil || !ok {
		return e, ok, err
	}
	if err := helpers.RedisSetJSON(ctx, r.rdb, key, e, r.ttl); err != nil {
		r.warn(err, key, "cache write failed")
	}
	return e, true, nil
}

func (r *Repository[E, K]) GetAll(ctx context.Context) ([]E, error) {
	return r.inner.GetAll(ctx)
}

func (r *Repository[E, K]) GetBySpec(ctx context.Context, spec specification.Spec[E]) (E, bool, error) {
	return r.inner.GetBySpec(ctx, spec)
}

func (r *Repository[E, K]) GetAllBySpec(ctx context.Context, spec specification.Spec[E]) ([]E, error) {
	return r.inner.GetAllBySpec(ctx, spec)
}

func (r *Repository[E, K]) warn(err error, key, msg string) {
	if r.Logger != nil {
		r.Logger.WithError(err).WithField("key", key).Warn(msg)
	}
}
