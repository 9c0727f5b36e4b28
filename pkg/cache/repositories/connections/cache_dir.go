package dirconnections

import (
	"errors"
	"fmt"

	"github.com/spf13/afero"
)

type CacheDirProductionConnectionConfig struct {
	Path string
}

type CacheDirProductionConnection struct {
	config CacheDirProductionConnectionConfig
	fs     afero.Fs
}

var _ CacheDirConnection = (*CacheDirProductionConnection)(nil)

// NewCacheDirProductionConnection creates the cache directory on the
// OS filesystem when it does not exist yet.
func NewCacheDirProductionConnection(config CacheDirProductionConnectionConfig) (conn *CacheDirProductionConnection, err error) {
	return newCacheDirConnection(afero.NewOsFs(), config)
}

func newCacheDirConnection(fs afero.Fs, config CacheDirProductionConnectionConfig) (*CacheDirProductionConnection, error) {
	if config.Path == "" {
		return nil, ErrCacheDirNotConfigured
	}

	if err := fs.MkdirAll(config.Path, 0o755); err != nil {
		return nil, fmt.Errorf("cannot create cache directory %s: %w", config.Path, err)
	}

	return &CacheDirProductionConnection{config, fs}, nil
}

func (c *CacheDirProductionConnection) Fs() afero.Fs {
	return c.fs
}

func (c *CacheDirProductionConnection) Dir() string {
	return c.config.Path
}

var (
	ErrCacheDirNotConfigured = errors.New("cache directory path not configured")
)
