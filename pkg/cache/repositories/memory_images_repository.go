package cacherepositories

import (
	"container/list"
	"errors"
	"sync"

	"github.com/thebartekbanach/imgcache/pkg/decoder"
)

type MemoryConfig struct {
	CountLimit int
	CostLimit  int64
}

func DefaultMemoryConfig() MemoryConfig {
	return MemoryConfig{
		CountLimit: 100,
		CostLimit:  50 << 20,
	}
}

type memoryEntry struct {
	key  string
	img  *decoder.Image
	cost int64
}

type memoryImagesRepository struct {
	config MemoryConfig

	mu       sync.Mutex
	items    map[string]*list.Element
	eviction *list.List
	cost     int64

	hits      int64
	misses    int64
	evictions int64
}

var _ MemoryImagesRepository = (*memoryImagesRepository)(nil)

func NewMemoryImagesRepository(config MemoryConfig) MemoryImagesRepository {
	return &memoryImagesRepository{
		config:   config,
		items:    make(map[string]*list.Element),
		eviction: list.New(),
	}
}

func (r *memoryImagesRepository) Get(key string) (*decoder.Image, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	elem, ok := r.items[key]
	if !ok {
		r.misses++
		return nil, false
	}

	r.eviction.MoveToFront(elem)
	r.hits++
	return elem.Value.(*memoryEntry).img, true
}

func (r *memoryImagesRepository) Put(key string, img *decoder.Image) error {
	cost := img.Cost()
	if r.config.CostLimit > 0 && cost > r.config.CostLimit {
		return ErrImageTooLarge
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if elem, ok := r.items[key]; ok {
		entry := elem.Value.(*memoryEntry)
		r.cost += cost - entry.cost
		entry.img = img
		entry.cost = cost
		r.eviction.MoveToFront(elem)
	} else {
		elem := r.eviction.PushFront(&memoryEntry{key, img, cost})
		r.items[key] = elem
		r.cost += cost
	}

	for r.exceedsLimits() && r.eviction.Len() > 1 {
		r.evictOldest()
	}

	return nil
}

func (r *memoryImagesRepository) Delete(key string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	elem, ok := r.items[key]
	if !ok {
		return false
	}

	r.removeElement(elem)
	return true
}

func (r *memoryImagesRepository) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.items = make(map[string]*list.Element)
	r.eviction.Init()
	r.cost = 0
}

func (r *memoryImagesRepository) Stats() MemoryStats {
	r.mu.Lock()
	defer r.mu.Unlock()

	return MemoryStats{
		Count:      len(r.items),
		Cost:       r.cost,
		CountLimit: r.config.CountLimit,
		CostLimit:  r.config.CostLimit,
		Hits:       r.hits,
		Misses:     r.misses,
		Evictions:  r.evictions,
	}
}

// must be called with lock held
func (r *memoryImagesRepository) exceedsLimits() bool {
	if r.config.CountLimit > 0 && len(r.items) > r.config.CountLimit {
		return true
	}

	return r.config.CostLimit > 0 && r.cost > r.config.CostLimit
}

// must be called with lock held
func (r *memoryImagesRepository) evictOldest() {
	elem := r.eviction.Back()
	if elem != nil {
		r.removeElement(elem)
		r.evictions++
	}
}

// must be called with lock held
func (r *memoryImagesRepository) removeElement(elem *list.Element) {
	r.eviction.Remove(elem)
	entry := elem.Value.(*memoryEntry)
	delete(r.items, entry.key)
	r.cost -= entry.cost
}

var (
	ErrImageTooLarge = errors.New("image cost exceeds memory cache limit")
)
