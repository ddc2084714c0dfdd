package usecase

import (
	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"
)

// defaultCacheSize bounds the batches kept in memory per cache.
const defaultCacheSize = 256

func newLRU[V any](size int) *lru.Cache[uuid.UUID, V] {
	if size <= 0 {
		size = defaultCacheSize
	}
	// lru.New only fails on a non-positive size.
	cache, _ := lru.New[uuid.UUID, V](size)
	return cache
}
