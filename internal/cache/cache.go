// Package cache fronts read-heavy queries with a key/value store. Every
// failure is logged and swallowed: a broken cache degrades to the database,
// it never fails a request.
package cache

import (
	"context"
	"encoding/json"
	"net/url"
	"time"

	"github.com/sirupsen/logrus"
)

// Store is the minimal key/value contract both backends implement.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
	DelPrefix(ctx context.Context, prefix string) error
	FlushAll(ctx context.Context) error
	Ping(ctx context.Context) error
}

// Key is a structured cache key: an entity tag plus the filters that
// produced the cached value. Encoding sorts the filters so equal
// descriptors always map to the same key.
type Key struct {
	Entity  string
	Filters url.Values
}

// NewKey builds a key from alternating name/value pairs. Empty values are
// dropped so a blank filter and a missing one share a key.
func NewKey(entity string, pairs ...string) Key {
	k := Key{Entity: entity, Filters: url.Values{}}
	for i := 0; i+1 < len(pairs); i += 2 {
		if pairs[i+1] != "" {
			k.Filters.Set(pairs[i], pairs[i+1])
		}
	}
	return k
}

func (k Key) String() string {
	if len(k.Filters) == 0 {
		return Prefix(k.Entity) + "all"
	}
	return Prefix(k.Entity) + k.Filters.Encode()
}

// Prefix is the invalidation prefix shared by every key of an entity.
func Prefix(entity string) string {
	return entity + ":"
}

// Cache wraps a Store with JSON encoding, per-call timeouts and logging.
type Cache struct {
	store   Store
	ttl     time.Duration
	timeout time.Duration
}

func New(store Store, ttl, timeout time.Duration) *Cache {
	return &Cache{store: store, ttl: ttl, timeout: timeout}
}

// GetJSON decodes the cached value into dst. A value that does not decode is
// deleted and reported as a miss.
func (c *Cache) GetJSON(ctx context.Context, key Key, dst interface{}) bool {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	k := key.String()
	raw, ok, err := c.store.Get(ctx, k)
	if err != nil {
		logrus.WithError(err).WithField("key", k).Warn("cache: get failed")
		return false
	}
	if !ok {
		return false
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		logrus.WithError(err).WithField("key", k).Warn("cache: dropping undecodable entry")
		if err := c.store.Del(ctx, k); err != nil {
			logrus.WithError(err).WithField("key", k).Warn("cache: delete failed")
		}
		return false
	}
	return true
}

func (c *Cache) SetJSON(ctx context.Context, key Key, value interface{}) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	k := key.String()
	raw, err := json.Marshal(value)
	if err != nil {
		logrus.WithError(err).WithField("key", k).Warn("cache: encode failed")
		return
	}
	if err := c.store.Set(ctx, k, raw, c.ttl); err != nil {
		logrus.WithError(err).WithField("key", k).Warn("cache: set failed")
	}
}

// Invalidate drops every key of the given entities.
func (c *Cache) Invalidate(ctx context.Context, entities ...string) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	for _, e := range entities {
		if err := c.store.DelPrefix(ctx, Prefix(e)); err != nil {
			logrus.WithError(err).WithField("entity", e).Warn("cache: invalidate failed")
		}
	}
}

func (c *Cache) Flush(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	if err := c.store.FlushAll(ctx); err != nil {
		logrus.WithError(err).Warn("cache: flush failed")
	}
}

func (c *Cache) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	return c.store.Ping(ctx)
}

// ReadThrough returns the cached value for key or loads, caches and returns
// it. Load errors are returned and nothing is cached.
func ReadThrough[T any](ctx context.Context, c *Cache, key Key, load func(context.Context) (T, error)) (T, error) {
	var cached T
	if c != nil && c.GetJSON(ctx, key, &cached) {
		return cached, nil
	}
	v, err := load(ctx)
	if err != nil {
		return v, err
	}
	if c != nil {
		c.SetJSON(ctx, key, v)
	}
	return v, nil
}
