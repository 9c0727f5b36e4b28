package cache

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync/atomic"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	cacherepositories "github.com/thebartekbanach/imgcache/pkg/cache/repositories"
	"github.com/thebartekbanach/imgcache/pkg/decoder"
	"github.com/thebartekbanach/imgcache/pkg/filefetcher"
	"github.com/thebartekbanach/imgcache/pkg/hub"
)

type Config struct {
	// PrefetchConcurrency limits parallel fetches started by Prefetch.
	PrefetchConcurrency int
}

type cacheService struct {
	config  Config
	logger  *log.Logger
	memory  cacherepositories.MemoryImagesRepository
	storage cacherepositories.CachedImagesStorage
	fetcher filefetcher.Fetcher
	decoder decoder.Decoder
	pending hub.PendingRequests[*decoder.Image]

	diskHits       atomic.Int64
	networkFetches atomic.Int64
	fetchFailures  atomic.Int64
}

var _ ImageCache = (*cacheService)(nil)

func NewImageCache(
	config Config,
	logger *log.Logger,
	memory cacherepositories.MemoryImagesRepository,
	storage cacherepositories.CachedImagesStorage,
	fetcher filefetcher.Fetcher,
	imageDecoder decoder.Decoder,
) ImageCache {
	if config.PrefetchConcurrency < 1 {
		config.PrefetchConcurrency = 1
	}

	return &cacheService{
		config:  config,
		logger:  logger,
		memory:  memory,
		storage: storage,
		fetcher: fetcher,
		decoder: imageDecoder,
		pending: hub.NewPendingRequests[*decoder.Image](),
	}
}

func (s *cacheService) StartMonitors(ctx context.Context) {
	s.pending.StartMonitor(ctx)
}

// Fetch never reports errors, every failure is logged and results in
// an absent image.
func (s *cacheService) Fetch(ctx context.Context, rawURL string) (*decoder.Image, bool) {
	key, err := makeCacheKey(rawURL)
	if err != nil {
		s.logger.Warn("Rejected image url", "url", rawURL, "err", err)
		return nil, false
	}

	if img, ok := s.lookupTiers(key); ok {
		return img, true
	}

	ticket, err := s.pending.Join(key)
	if err != nil {
		s.logger.Warn("Cannot join pending image request", "url", key, "err", err)
		return nil, false
	}

	if !ticket.Leader {
		img, resolved := ticket.Wait(ctx)
		return img, resolved && img != nil
	}

	img := s.lead(ctx, key)
	return img, img != nil
}

// lead performs the download for every caller waiting on key. Waiters
// are resolved only after both tiers have been written.
func (s *cacheService) lead(ctx context.Context, key string) (img *decoder.Image) {
	defer func() {
		if err := s.pending.Resolve(key, img); err != nil {
			s.logger.Warn("Cannot resolve pending image request", "url", key, "err", err)
		}
	}()

	// previous leader could store the image between lookup and join
	if cached, ok := s.lookupTiers(key); ok {
		return cached
	}

	// callers leaving early must not abort the download for the others
	downloaded, err := s.download(context.WithoutCancel(ctx), key)
	if err != nil {
		s.fetchFailures.Add(1)
		s.logger.Warn("Cannot fetch image", "url", key, "err", err)
		return nil
	}

	s.storeInMemory(key, downloaded)
	if err := s.storage.Save(key, downloaded.Data); err != nil {
		s.logger.Debug("Cannot write image to disk cache", "url", key, "err", err)
	}

	return downloaded
}

func (s *cacheService) download(ctx context.Context, key string) (*decoder.Image, error) {
	s.networkFetches.Add(1)

	data, err := s.fetcher.Fetch(ctx, key)
	if err != nil {
		return nil, err
	}

	img, err := s.decoder.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("cannot decode fetched image: %w", err)
	}

	return img, nil
}

func (s *cacheService) lookupTiers(key string) (*decoder.Image, bool) {
	if img, ok := s.memory.Get(key); ok {
		return img, true
	}

	data, err := s.storage.Get(key)
	if err != nil {
		if !errors.Is(err, cacherepositories.ErrImageNotFound) {
			s.logger.Debug("Cannot read image from disk cache", "url", key, "err", err)
		}
		return nil, false
	}

	img, err := s.decoder.Decode(data)
	if err != nil {
		s.logger.Debug("Dropping corrupted disk cache entry", "url", key, "err", err)
		s.storage.Delete(key)
		return nil, false
	}

	s.diskHits.Add(1)
	s.storeInMemory(key, img)
	return img, true
}

func (s *cacheService) storeInMemory(key string, img *decoder.Image) {
	if err := s.memory.Put(key, img); err != nil {
		s.logger.Debug("Image not kept in memory cache", "url", key, "cost", img.Cost(), "err", err)
	}
}

func (s *cacheService) Remove(rawURL string) bool {
	key, err := makeCacheKey(rawURL)
	if err != nil {
		return false
	}

	removedFromMemory := s.memory.Delete(key)

	err = s.storage.Delete(key)
	if err != nil && !errors.Is(err, cacherepositories.ErrImageNotFound) {
		s.logger.Warn("Cannot remove image from disk cache", "url", key, "err", err)
	}

	return removedFromMemory || err == nil
}

func (s *cacheService) Prefetch(ctx context.Context, urls []string) int {
	var loaded atomic.Int64

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(s.config.PrefetchConcurrency)

	for _, u := range urls {
		group.Go(func() error {
			if _, ok := s.Fetch(groupCtx, u); ok {
				loaded.Add(1)
			}
			return nil
		})
	}

	group.Wait()
	return int(loaded.Load())
}

// Clear always empties the memory tier. Downloads in flight are not
// affected and may store their results in the cleared tiers.
func (s *cacheService) Clear() error {
	s.memory.Clear()

	if err := s.storage.Clear(); err != nil {
		s.logger.Error("Cannot clear disk cache", "err", err)
		return fmt.Errorf("cannot clear disk cache: %w", err)
	}

	s.logger.Info("Image cache cleared")
	return nil
}

func (s *cacheService) Stats() Stats {
	pending, err := s.pending.Stats()
	if err != nil {
		s.logger.Debug("Pending requests stats unavailable", "err", err)
	}

	return Stats{
		Memory:         s.memory.Stats(),
		DiskHits:       s.diskHits.Load(),
		NetworkFetches: s.networkFetches.Load(),
		FetchFailures:  s.fetchFailures.Load(),
		Pending:        pending,
	}
}

// makeCacheKey canonicalizes rawURL, accepting only absolute http(s)
// urls with a host.
func makeCacheKey(rawURL string) (string, error) {
	info, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformedURL, err)
	}

	if (info.Scheme != "http" && info.Scheme != "https") || info.Host == "" {
		return "", ErrMalformedURL
	}

	return info.String(), nil
}

var (
	ErrMalformedURL = errors.New("malformed image url")
)
