package cache

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// MemoryClient é um Client em memória de processo, usado quando REDIS_ADDR está vazio
// (instância única, desenvolvimento) e nos testes.
type MemoryClient struct {
	mu   sync.Mutex
	data map[string]memoryItem
	now  func() time.Time

	// Varredura periódica dos expirados, feita nas escritas.
	sweepEvery time.Duration
	lastSweep  time.Time
}

const defaultSweepInterval = time.Minute

type memoryItem struct {
	value     string
	expiresAt time.Time // zero = sem expiração
}

func NewMemoryClient() *MemoryClient {
	return &MemoryClient{data: make(map[string]memoryItem), now: time.Now, sweepEvery: defaultSweepInterval}
}

// sweepLocked remove todos os itens expirados, no máximo uma vez por sweepEvery. Exige c.mu.
func (c *MemoryClient) sweepLocked() {
	now := c.now()
	if c.lastSweep.IsZero() {
		c.lastSweep = now
		return
	}
	if now.Sub(c.lastSweep) < c.sweepEvery {
		return
	}
	c.lastSweep = now
	for k, item := range c.data {
		if !item.expiresAt.IsZero() && !now.Before(item.expiresAt) {
			delete(c.data, k)
		}
	}
}

// getLocked devolve o item vivo; itens expirados são removidos. Exige c.mu.
func (c *MemoryClient) getLocked(key string) (memoryItem, bool) {
	item, ok := c.data[key]
	if !ok {
		return memoryItem{}, false
	}
	if !item.expiresAt.IsZero() && !c.now().Before(item.expiresAt) {
		delete(c.data, key)
		return memoryItem{}, false
	}
	return item, true
}

func (c *MemoryClient) Get(_ context.Context, key string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	item, ok := c.getLocked(key)
	if !ok {
		return "", ErrCacheMiss
	}
	return item.value, nil
}

func (c *MemoryClient) Set(_ context.Context, key string, value interface{}, expiration time.Duration) error {
	var s string
	switch v := value.(type) {
	case string:
		s = v
	case []byte:
		s = string(v)
	default:
		s = fmt.Sprint(v)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.sweepLocked()
	item := memoryItem{value: s}
	if expiration > 0 {
		item.expiresAt = c.now().Add(expiration)
	}
	c.data[key] = item
	return nil
}

func (c *MemoryClient) Delete(_ context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, k := range keys {
		delete(c.data, k)
	}
	return nil
}

func (c *MemoryClient) IncrWindow(_ context.Context, key string, window time.Duration) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.sweepLocked()
	item, ok := c.getLocked(key)
	var n int64
	if ok {
		if _, err := fmt.Sscan(item.value, &n); err != nil {
			return 0, fmt.Errorf("valor não numérico na chave %s: %w", key, err)
		}
	} else if window > 0 {
		item.expiresAt = c.now().Add(window)
	}
	n++
	item.value = fmt.Sprint(n)
	c.data[key] = item
	return n, nil
}
