package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/monkmode/tracker/internal/core/domain"
	"github.com/redis/go-redis/v9"
)

var _ domain.ProtocolRepository = (*CachedProtocolRepository)(nil)

const protocolCacheTTL = 30 * time.Minute

// CachedProtocolRepository is a read-through redis cache in front of the
// protocol store. The protocol is read on every engine operation but changes
// only on an explicit edit, so the hit rate is close to total. Cache failures
// degrade to the underlying store, never to an error.
type CachedProtocolRepository struct {
	next  domain.ProtocolRepository
	cache *redis.Client
}

func NewCachedProtocolRepository(next domain.ProtocolRepository, cache *redis.Client) *CachedProtocolRepository {
	return &CachedProtocolRepository{
		next:  next,
		cache: cache,
	}
}

func (r *CachedProtocolRepository) cacheKey(userID string) string {
	return fmt.Sprintf("protocol:%s", userID)
}

func (r *CachedProtocolRepository) Load(ctx context.Context, userID string) (*domain.Protocol, error) {
	key := r.cacheKey(userID)

	val, err := r.cache.Get(ctx, key).Result()
	if err == nil {
		var p domain.Protocol
		if err := json.Unmarshal([]byte(val), &p); err == nil {
			return &p, nil
		}

		log.Printf("[CACHE] Corrupted protocol for user %s, cleaning up key", userID)
		r.cache.Del(ctx, key)
	} else if err != redis.Nil {
		log.Printf("[CACHE] Redis read error: %v", err)
	}

	p, err := r.next.Load(ctx, userID)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(p); err == nil {
		if setErr := r.cache.Set(ctx, key, data, protocolCacheTTL).Err(); setErr != nil {
			log.Printf("[CACHE] Redis set error: %v", setErr)
		}
	}

	return p, nil
}

func (r *CachedProtocolRepository) Save(ctx context.Context, userID string, p *domain.Protocol) error {
	if err := r.next.Save(ctx, userID, p); err != nil {
		return err
	}

	if err := r.cache.Del(ctx, r.cacheKey(userID)).Err(); err != nil {
		log.Printf("[CACHE] Failed to invalidate protocol for user %s: %v", userID, err)
	}
	return nil
}
