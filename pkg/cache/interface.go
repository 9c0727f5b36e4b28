package cache

import (
	"context"
	"time"

	cacherepositories "github.com/thebartekbanach/imgcache/pkg/cache/repositories"
	"github.com/thebartekbanach/imgcache/pkg/decoder"
	"github.com/thebartekbanach/imgcache/pkg/hub"
)

//go:generate mockgen -destination=mocks/mock_image_cache.go -source=interface.go

// ImageCache resolves images by url through the memory tier, the disk
// tier and finally the network. Concurrent fetches of one url share a
// single download. Safe for concurrent use.
type ImageCache interface {
	StartMonitors(ctx context.Context)
	Fetch(ctx context.Context, url string) (*decoder.Image, bool)
	Remove(url string) bool
	Prefetch(ctx context.Context, urls []string) int
	Clear() error
	Stats() Stats
}

type InvalidationService interface {
	Invalidate(urls []string) InvalidationReport
	LastInvalidation() (InvalidationReport, bool)
}

type Stats struct {
	Memory         cacherepositories.MemoryStats `json:"memory"`
	DiskHits       int64                         `json:"diskHits"`
	NetworkFetches int64                         `json:"networkFetches"`
	FetchFailures  int64                         `json:"fetchFailures"`
	Pending        hub.Stats                     `json:"pending"`
}

type InvalidationReport struct {
	RequestedInvalidations []string  `json:"requestedInvalidations"`
	DoneInvalidations      []string  `json:"doneInvalidations"`
	InvalidationDate       time.Time `json:"invalidationDate"`
}
