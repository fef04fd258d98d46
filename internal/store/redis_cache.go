package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/bylanglois/views-api/internal/catalog"
	"github.com/redis/go-redis/v9"
)

const cacheVersionKey = "catalog:version"

// RedisCache wraps a catalog.Client with short-TTL page caching for the read
// path. Writes pass through and bump a version counter, which implicitly
// invalidates every cached page. Cache failures are soft: on any Redis error
// the call falls through to the inner client.
type RedisCache struct {
	inner  catalog.Client
	client *redis.Client
	ttl    time.Duration
}

// NewRedisCache creates the caching decorator.
func NewRedisCache(inner catalog.Client, client *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{
		inner:  inner,
		client: client,
		ttl:    ttl,
	}
}

func (r *RedisCache) ListRecords(ctx context.Context, recordType string, pageSize int, cursor string) (*catalog.Page, error) {
	key := r.pageKey(ctx, recordType, pageSize, cursor)

	if cached, err := r.client.Get(ctx, key).Bytes(); err == nil {
		var page catalog.Page
		if err := json.Unmarshal(cached, &page); err == nil {
			return &page, nil
		}
	}

	page, err := r.inner.ListRecords(ctx, recordType, pageSize, cursor)
	if err != nil {
		return nil, err
	}

	if payload, err := json.Marshal(page); err == nil {
		_ = r.client.Set(ctx, key, payload, r.ttl).Err()
	}

	return page, nil
}

func (r *RedisCache) UpdateRecords(ctx context.Context, updates []catalog.Update) ([]catalog.UpdateResult, error) {
	results, err := r.inner.UpdateRecords(ctx, updates)
	if err != nil {
		return nil, err
	}

	r.invalidate(ctx)

	return results, nil
}

// CreateRecord passes through when the inner client supports creation.
func (r *RedisCache) CreateRecord(ctx context.Context, recordType string, fields map[string]string) (*catalog.Record, error) {
	creator, ok := r.inner.(catalog.Creator)
	if !ok {
		return nil, fmt.Errorf("catalog does not support record creation")
	}

	record, err := creator.CreateRecord(ctx, recordType, fields)
	if err != nil {
		return nil, err
	}

	r.invalidate(ctx)

	return record, nil
}

func (r *RedisCache) invalidate(ctx context.Context) {
	_ = r.client.Incr(ctx, cacheVersionKey).Err()
}

func (r *RedisCache) pageKey(ctx context.Context, recordType string, pageSize int, cursor string) string {
	version, err := r.client.Get(ctx, cacheVersionKey).Int64()
	if err != nil {
		version = 0
	}

	return fmt.Sprintf("catalog:pages:%d:%s:%d:%s", version, recordType, pageSize, cursor)
}

var (
	_ catalog.Client  = (*RedisCache)(nil)
	_ catalog.Creator = (*RedisCache)(nil)
)
