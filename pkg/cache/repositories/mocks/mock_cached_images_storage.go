package mock_cacherepositories

import (
	"sync"

	cacherepositories "github.com/thebartekbanach/imgcache/pkg/cache/repositories"
)

type MockCachedImagesStorage struct {
	images map[string][]byte
	lock   sync.Mutex
	err    error
	saves  int
}

var _ cacherepositories.CachedImagesStorage = (*MockCachedImagesStorage)(nil)

func NewMockCachedImagesStorage() *MockCachedImagesStorage {
	return &MockCachedImagesStorage{
		images: make(map[string][]byte),
		lock:   sync.Mutex{},
	}
}

func (s *MockCachedImagesStorage) InstantSave(key string, data []byte) {
	s.lock.Lock()
	defer s.lock.Unlock()

	s.images[key] = data
}

// ReturnError makes every following call fail with err.
func (s *MockCachedImagesStorage) ReturnError(err error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	s.err = err
}

func (s *MockCachedImagesStorage) Save(key string, data []byte) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	s.saves++
	if s.err != nil {
		return s.err
	}

	s.images[key] = data
	return nil
}

func (s *MockCachedImagesStorage) Get(key string) ([]byte, error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	if s.err != nil {
		return nil, s.err
	}

	if data, ok := s.images[key]; ok {
		return data, nil
	}

	return nil, cacherepositories.ErrImageNotFound
}

func (s *MockCachedImagesStorage) Delete(key string) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	if s.err != nil {
		return s.err
	}

	if _, ok := s.images[key]; ok {
		delete(s.images, key)
		return nil
	}

	return cacherepositories.ErrImageNotFound
}

func (s *MockCachedImagesStorage) Clear() error {
	s.lock.Lock()
	defer s.lock.Unlock()

	s.images = make(map[string][]byte)
	return s.err
}

func (s *MockCachedImagesStorage) Exists(key string) bool {
	s.lock.Lock()
	defer s.lock.Unlock()

	_, ok := s.images[key]
	return ok
}

func (s *MockCachedImagesStorage) Saves() int {
	s.lock.Lock()
	defer s.lock.Unlock()

	return s.saves
}
