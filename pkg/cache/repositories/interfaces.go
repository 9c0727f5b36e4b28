package cacherepositories

import (
	"github.com/thebartekbanach/imgcache/pkg/decoder"
)

type MemoryStats struct {
	Count      int   `json:"count"`
	Cost       int64 `json:"cost"`
	CountLimit int   `json:"countLimit"`
	CostLimit  int64 `json:"costLimit"`
	Hits       int64 `json:"hits"`
	Misses     int64 `json:"misses"`
	Evictions  int64 `json:"evictions"`
}

// MemoryImagesRepository keeps decoded images bounded by entry count
// and total cost, evicting least recently used entries.
type MemoryImagesRepository interface {
	Get(key string) (*decoder.Image, bool)
	Put(key string, img *decoder.Image) error
	Delete(key string) bool
	Clear()
	Stats() MemoryStats
}

// CachedImagesStorage keeps raw encoded images in the cache directory.
type CachedImagesStorage interface {
	Save(key string, data []byte) error
	Get(key string) ([]byte, error)
	Delete(key string) error
	Clear() error
}
