package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/dgraph-io/ristretto/v2"
)

// Memory is an in-process cache backed by ristretto.
type Memory struct {
	cache *ristretto.Cache[string, []byte]
}

// NewMemory creates an in-process cache bounded by maxCost bytes.
func NewMemory(maxCost int64) (*Memory, error) {
	if maxCost <= 0 {
		maxCost = 1 << 26
	}
	c, err := ristretto.NewCache(&ristretto.Config[string, []byte]{
		NumCounters: max(maxCost/64, 1000),
		MaxCost:     maxCost,
		BufferItems: 64,
	})
	if err != nil {
		return nil, fmt.Errorf("create ristretto cache: %w", err)
	}
	return &Memory{cache: c}, nil
}

// Get implements Cache.
func (m *Memory) Get(_ context.Context, key string) ([]byte, bool, error) {
	v, ok := m.cache.Get(key)
	return v, ok, nil
}

// Set implements Cache. An admitted value is visible to Get once Set
// returns. Ristretto may still refuse an entry, such as one costing more
// than the cache holds or one dropped under contention; callers see that as
// a later miss, not an error.
func (m *Memory) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if !m.cache.SetWithTTL(key, value, int64(len(value)+len(key)), ttl) {
		return nil
	}
	m.cache.Wait()
	return nil
}

// Delete implements Cache.
func (m *Memory) Delete(_ context.Context, key string) error {
	m.cache.Del(key)
	return nil
}

// Close implements Cache.
func (m *Memory) Close() error {
	m.cache.Close()
	return nil
}
