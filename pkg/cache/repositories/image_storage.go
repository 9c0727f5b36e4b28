package cacherepositories

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/afero"
	dirconnections "github.com/thebartekbanach/imgcache/pkg/cache/repositories/connections"
)

type cachedImagesStorage struct {
	conn dirconnections.CacheDirConnection
}

var _ CachedImagesStorage = (*cachedImagesStorage)(nil)

func NewCachedImagesStorage(conn dirconnections.CacheDirConnection) CachedImagesStorage {
	return &cachedImagesStorage{conn}
}

// Save writes data under a temporary name first and renames it into
// place, so readers never observe a partially written file.
func (s *cachedImagesStorage) Save(key string, data []byte) error {
	fs := s.conn.Fs()
	target := s.resourcePath(key)
	temp := target + "." + uuid.New().String() + ".tmp"

	if err := afero.WriteFile(fs, temp, data, 0o644); err != nil {
		return fmt.Errorf("cannot write cached image: %w", err)
	}

	if err := fs.Rename(temp, target); err != nil {
		fs.Remove(temp)
		return fmt.Errorf("cannot move cached image into place: %w", err)
	}

	return nil
}

func (s *cachedImagesStorage) Get(key string) ([]byte, error) {
	data, err := afero.ReadFile(s.conn.Fs(), s.resourcePath(key))
	if err != nil {
		return nil, s.convertToKnownError(err)
	}

	return data, nil
}

func (s *cachedImagesStorage) Delete(key string) error {
	fs := s.conn.Fs()
	target := s.resourcePath(key)

	if _, err := fs.Stat(target); err != nil {
		return s.convertToKnownError(err)
	}

	return fs.Remove(target)
}

// Clear drops the whole cache directory and recreates it empty.
func (s *cachedImagesStorage) Clear() error {
	fs := s.conn.Fs()

	if err := fs.RemoveAll(s.conn.Dir()); err != nil {
		return fmt.Errorf("cannot remove cache directory: %w", err)
	}

	if err := fs.MkdirAll(s.conn.Dir(), 0o755); err != nil {
		return fmt.Errorf("cannot recreate cache directory: %w", err)
	}

	return nil
}

func (s *cachedImagesStorage) convertToKnownError(err error) error {
	if errors.Is(err, os.ErrNotExist) {
		return ErrImageNotFound
	}

	return err
}

func (s *cachedImagesStorage) resourcePath(key string) string {
	return filepath.Join(s.conn.Dir(), s.makeResourceID(key))
}

// makeResourceID hashes the full key, keeping the extension of the last
// path segment so files stay recognizable on disk.
func (s *cachedImagesStorage) makeResourceID(key string) string {
	sum := sha256.Sum256([]byte(key))
	id := hex.EncodeToString(sum[:])

	info, err := url.Parse(key)
	if err != nil {
		return id
	}

	ext := strings.ToLower(path.Ext(info.Path))
	if len(ext) < 2 || len(ext) > 6 || !isAlphanumeric(ext[1:]) {
		return id
	}

	return id + ext
}

func isAlphanumeric(value string) bool {
	for _, r := range value {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') {
			return false
		}
	}

	return true
}

var (
	ErrImageNotFound = errors.New("image not found")
)
