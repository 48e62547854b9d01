package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	productKeyPrefix = "catalog:product:"
	versionKeySuffix = ":version"
	// versionTTL outlives any in-flight read so an expired version cannot match a stale one.
	versionTTL = 24 * time.Hour
)

var _ ProductStore = (*CachedStore)(nil)

var errStaleRead = errors.New("product version changed during read")

// CachedStore decorates a ProductStore with a Redis read-through cache for FindByID.
// Update and DeleteByID bump a per-product version and evict the cached entry after the
// underlying write succeeds. A read fills the cache only if the version it saw before
// loading is still current, so a row loaded before a write is never cached after it.
// Redis failures are logged and never fail the call; the underlying store stays the source of truth.
type CachedStore struct {
	ProductStore
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

// NewCachedStore wraps next with a Redis cache whose entries expire after ttl.
func NewCachedStore(next ProductStore, client *redis.Client, ttl time.Duration, logger *slog.Logger) *CachedStore {
	return &CachedStore{
		ProductStore: next,
		client:       client,
		ttl:          ttl,
		logger:       logger.With("component", "product-cache"),
	}
}

// FindByID returns the cached product or loads it from the underlying store and caches it.
func (c *CachedStore) FindByID(ctx context.Context, id int64) (*Product, error) {
	key := productKey(id)
	raw, err := c.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var product Product
		if err := json.Unmarshal(raw, &product); err == nil {
			return &product, nil
		}
		c.logger.WarnContext(ctx, "Dropping undecodable cache entry", "key", key)
	case !errors.Is(err, redis.Nil):
		c.logger.WarnContext(ctx, "Cache read failed", "key", key, "error", err)
	}

	version, err := c.client.Get(ctx, versionKey(id)).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		c.logger.WarnContext(ctx, "Cache version read failed", "key", key, "error", err)
		return c.ProductStore.FindByID(ctx, id)
	}

	product, err := c.ProductStore.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	c.set(ctx, id, version, product)
	return product, nil
}

// Update writes through to the underlying store and evicts the cached entry.
func (c *CachedStore) Update(ctx context.Context, product Product) (*Product, error) {
	updated, err := c.ProductStore.Update(ctx, product)
	if err != nil {
		return nil, err
	}
	c.evict(ctx, product.ID)
	return updated, nil
}

// DeleteByID deletes in the underlying store and evicts the cached entry.
func (c *CachedStore) DeleteByID(ctx context.Context, id int64) (bool, error) {
	deleted, err := c.ProductStore.DeleteByID(ctx, id)
	if err != nil {
		return false, err
	}
	c.evict(ctx, id)
	return deleted, nil
}

// set caches product unless the version changed since seen was read.
func (c *CachedStore) set(ctx context.Context, id int64, seen string, product *Product) {
	key := productKey(id)
	raw, err := json.Marshal(product)
	if err != nil {
		c.logger.WarnContext(ctx, "Cache encode failed", "key", key, "error", err)
		return
	}
	vKey := versionKey(id)
	err = c.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, vKey).Result()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if current != seen {
			return errStaleRead
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, raw, c.ttl)
			return nil
		})
		return err
	}, vKey)
	switch {
	case err == nil:
	case errors.Is(err, errStaleRead), errors.Is(err, redis.TxFailedErr):
		c.logger.DebugContext(ctx, "Skipping cache fill after concurrent write", "key", key)
	default:
		c.logger.WarnContext(ctx, "Cache write failed", "key", key, "error", err)
	}
}

func (c *CachedStore) evict(ctx context.Context, id int64) {
	key := productKey(id)
	vKey := versionKey(id)
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, vKey)
		pipe.Expire(ctx, vKey, versionTTL)
		pipe.Del(ctx, key)
		return nil
	})
	if err != nil {
		c.logger.WarnContext(ctx, "Cache eviction failed", "key", key, "error", err)
	}
}

func productKey(id int64) string {
	return fmt.Sprintf("%s%d", productKeyPrefix, id)
}

func versionKey(id int64) string {
	return productKey(id) + versionKeySuffix
}
