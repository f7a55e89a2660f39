package scene

import (
	"sync"

	"github.com/udisondev/worldkit/internal/model"
)

// Assets stores shared assets addressed by handle.
// Thread-safe.
type Assets[T any] struct {
	mu    sync.RWMutex
	items map[model.AssetHandle]*T
	next  model.AssetHandle
}

// NewAssets creates an empty asset store.
func NewAssets[T any]() *Assets[T] {
	return &Assets[T]{
		items: make(map[model.AssetHandle]*T),
	}
}

// Add stores asset and returns its handle.
func (a *Assets[T]) Add(asset *T) model.AssetHandle {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.next++
	a.items[a.next] = asset
	return a.next
}

// Get returns asset by handle.
func (a *Assets[T]) Get(h model.AssetHandle) (*T, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	asset, ok := a.items[h]
	return asset, ok
}

// Remove deletes asset. Returns false if handle is unknown.
func (a *Assets[T]) Remove(h model.AssetHandle) bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	if _, ok := a.items[h]; !ok {
		return false
	}
	delete(a.items, h)
	return true
}

// Len returns number of stored assets.
func (a *Assets[T]) Len() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.items)
}
