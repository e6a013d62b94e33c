package cart

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/insany/shop/internal/domain"
)

// keyVersion namespaces persisted payloads. Bumping it orphans carts
// written under an incompatible line shape instead of failing to decode
// them.
const keyVersion = "v2"

// cartTTL keeps abandoned guest carts around for a month.
const cartTTL = 30 * 24 * time.Hour

// Persister stores and loads a session's cart lines.
type Persister interface {
	Load(ctx context.Context, sessionID string) ([]domain.CartLine, error)
	Save(ctx context.Context, sessionID string, lines []domain.CartLine) error
	Delete(ctx context.Context, sessionID string) error
}

// RedisPersister keeps carts in Redis as JSON under a versioned key.
type RedisPersister struct {
	client *redis.Client
}

func NewRedisPersister(client *redis.Client) *RedisPersister {
	return &RedisPersister{client: client}
}

// Key returns the Redis key for a session's cart.
func Key(sessionID string) string {
	return fmt.Sprintf("cart:%s:%s", keyVersion, sessionID)
}

func (p *RedisPersister) Load(ctx context.Context, sessionID string) ([]domain.CartLine, error) {
	data, err := p.client.Get(ctx, Key(sessionID)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("cart load: %w", err)
	}
	var lines []domain.CartLine
	if err := json.Unmarshal(data, &lines); err != nil {
		return nil, fmt.Errorf("cart decode: %w", err)
	}
	return lines, nil
}

func (p *RedisPersister) Save(ctx context.Context, sessionID string, lines []domain.CartLine) error {
	if len(lines) == 0 {
		return p.Delete(ctx, sessionID)
	}
	data, err := json.Marshal(lines)
	if err != nil {
		return fmt.Errorf("cart encode: %w", err)
	}
	if err := p.client.Set(ctx, Key(sessionID), data, cartTTL).Err(); err != nil {
		return fmt.Errorf("cart save: %w", err)
	}
	return nil
}

func (p *RedisPersister) Delete(ctx context.Context, sessionID string) error {
	if err := p.client.Del(ctx, Key(sessionID)).Err(); err != nil {
		return fmt.Errorf("cart delete: %w", err)
	}
	return nil
}

// MemoryPersister is an in-process Persister for tests and local runs.
type MemoryPersister struct {
	mu    sync.Mutex
	carts map[string][]domain.CartLine

	// FailSave, when set, makes every Save return it.
	FailSave error
	// FailLoad, when set, makes every Load return it.
	FailLoad error
}

func NewMemoryPersister() *MemoryPersister {
	return &MemoryPersister{carts: make(map[string][]domain.CartLine)}
}

func (p *MemoryPersister) Load(_ context.Context, sessionID string) ([]domain.CartLine, error) {
	if p.FailLoad != nil {
		return nil, p.FailLoad
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	lines := make([]domain.CartLine, len(p.carts[sessionID]))
	copy(lines, p.carts[sessionID])
	return lines, nil
}

func (p *MemoryPersister) Save(_ context.Context, sessionID string, lines []domain.CartLine) error {
	if p.FailSave != nil {
		return p.FailSave
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	stored := make([]domain.CartLine, len(lines))
	copy(stored, lines)
	p.carts[sessionID] = stored
	return nil
}

func (p *MemoryPersister) Delete(_ context.Context, sessionID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.carts, sessionID)
	return nil
}
