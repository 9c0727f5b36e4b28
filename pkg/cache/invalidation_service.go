package cache

import (
	"sync"
	"time"
)

type InvalidationServiceImplementation struct {
	imageCache ImageCache

	mu   sync.Mutex
	last *InvalidationReport
}

var _ InvalidationService = (*InvalidationServiceImplementation)(nil)

func NewInvalidationService(imageCache ImageCache) InvalidationService {
	return &InvalidationServiceImplementation{imageCache: imageCache}
}

// Invalidate removes every given url from both tiers. Urls that were
// not cached are left out of DoneInvalidations.
func (s *InvalidationServiceImplementation) Invalidate(urls []string) InvalidationReport {
	report := InvalidationReport{
		RequestedInvalidations: urls,
		DoneInvalidations:      []string{},
	}

	for _, url := range urls {
		if s.imageCache.Remove(url) {
			report.DoneInvalidations = append(report.DoneInvalidations, url)
		}
	}

	report.InvalidationDate = time.Now()

	s.mu.Lock()
	s.last = &report
	s.mu.Unlock()

	return report
}

func (s *InvalidationServiceImplementation) LastInvalidation() (InvalidationReport, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.last == nil {
		return InvalidationReport{}, false
	}

	return *s.last, true
}
