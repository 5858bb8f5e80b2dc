// Package provider holds cache backends the invalidator can purge and probe.
package provider

import (
	"context"
	"sync"

	"deletionguard/internal/cache/invalidation"
)

// MemoryProvider is an in-process cache index. Keys are marked as cached by
// whatever serves content and removed by invalidation.
type MemoryProvider struct {
	mu     sync.RWMutex
	cached map[invalidation.Key]struct{}
}

func NewMemoryProvider() *MemoryProvider {
	return &MemoryProvider{cached: make(map[invalidation.Key]struct{})}
}

// Mark records keys as currently cached.
func (p *MemoryProvider) Mark(keys ...invalidation.Key) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, k := range keys {
		p.cached[k] = struct{}{}
	}
}

func (p *MemoryProvider) InvalidateTag(_ context.Context, tag string) error {
	p.remove(invalidation.Key{Kind: invalidation.KindTag, Value: tag})
	return nil
}

func (p *MemoryProvider) InvalidatePath(_ context.Context, path string) error {
	p.remove(invalidation.Key{Kind: invalidation.KindPath, Value: path})
	return nil
}

func (p *MemoryProvider) IsCached(_ context.Context, key invalidation.Key) (bool, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	_, ok := p.cached[key]
	return ok, nil
}

func (p *MemoryProvider) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.cached)
}

func (p *MemoryProvider) remove(key invalidation.Key) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.cached, key)
}
