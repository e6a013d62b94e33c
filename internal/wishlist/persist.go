package wishlist

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

const wishlistTTL = 90 * 24 * time.Hour

// Persister stores and loads a session's wishlist slugs.
type Persister interface {
	Load(ctx context.Context, sessionID string) ([]string, error)
	Save(ctx context.Context, sessionID string, slugs []string) error
}

// RedisPersister keeps wishlists as Redis sets.
type RedisPersister struct {
	client *redis.Client
}

func NewRedisPersister(client *redis.Client) *RedisPersister {
	return &RedisPersister{client: client}
}

func key(sessionID string) string {
	return fmt.Sprintf("wishlist:v1:%s", sessionID)
}

func (p *RedisPersister) Load(ctx context.Context, sessionID string) ([]string, error) {
	slugs, err := p.client.SMembers(ctx, key(sessionID)).Result()
	if err != nil {
		return nil, fmt.Errorf("wishlist load: %w", err)
	}
	return slugs, nil
}

func (p *RedisPersister) Save(ctx context.Context, sessionID string, slugs []string) error {
	k := key(sessionID)
	pipe := p.client.TxPipeline()
	pipe.Del(ctx, k)
	if len(slugs) > 0 {
		members := make([]interface{}, len(slugs))
		for i, s := range slugs {
			members[i] = s
		}
		pipe.SAdd(ctx, k, members...)
		pipe.Expire(ctx, k, wishlistTTL)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("wishlist save: %w", err)
	}
	return nil
}

// MemoryPersister is an in-process Persister for tests.
type MemoryPersister struct {
	mu    sync.Mutex
	lists map[string][]string

	FailSave error
	FailLoad error
}

func NewMemoryPersister() *MemoryPersister {
	return &MemoryPersister{lists: make(map[string][]string)}
}

func (p *MemoryPersister) Load(_ context.Context, sessionID string) ([]string, error) {
	if p.FailLoad != nil {
		return nil, p.FailLoad
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.lists[sessionID]))
	copy(out, p.lists[sessionID])
	return out, nil
}

func (p *MemoryPersister) Save(_ context.Context, sessionID string, slugs []string) error {
	if p.FailSave != nil {
		return p.FailSave
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	stored := make([]string, len(slugs))
	copy(stored, slugs)
	p.lists[sessionID] = stored
	return nil
}
