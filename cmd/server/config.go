package main

import (
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/dustin/go-humanize"
	gap "github.com/muesli/go-app-paths"
)

const envPrefix = "IMGCACHE_"

type Config struct {
	Addr     string `env:"ADDR" envDefault:":8080"`
	CacheDir string `env:"CACHE_DIR"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	MemoryCountLimit int      `env:"MEMORY_COUNT_LIMIT" envDefault:"100"`
	MemoryCostLimit  ByteSize `env:"MEMORY_COST_LIMIT" envDefault:"50MiB"`

	MaxImageSize      ByteSize      `env:"MAX_IMAGE_SIZE" envDefault:"20MiB"`
	MaxPixels         int64         `env:"MAX_PIXELS" envDefault:"50000000"`
	FetchTimeout      time.Duration `env:"FETCH_TIMEOUT" envDefault:"30s"`
	RequestsPerSecond float64       `env:"REQUESTS_PER_SECOND" envDefault:"0"`
	RequestsBurst     int           `env:"REQUESTS_BURST" envDefault:"1"`

	AllowedDomains []string `env:"ALLOWED_DOMAINS" envDefault:"*"`
	AllowedOrigins []string `env:"ALLOWED_ORIGINS" envDefault:"*"`

	PrefetchConcurrency int    `env:"PREFETCH_CONCURRENCY" envDefault:"8"`
	ClearSecurityToken  string `env:"CLEAR_SECURITY_TOKEN"`
}

// ByteSize is a size in bytes written in human form, e.g. 50MiB or 20MB.
type ByteSize int64

func (b *ByteSize) UnmarshalText(text []byte) error {
	size, err := humanize.ParseBytes(string(text))
	if err != nil {
		return err
	}

	*b = ByteSize(size)
	return nil
}

func (b ByteSize) String() string {
	return humanize.IBytes(uint64(b))
}

// LoadConfig reads IMGCACHE_* variables from environment, which
// defaults to the process environment when nil.
func LoadConfig(environment map[string]string) (Config, error) {
	config, err := env.ParseAsWithOptions[Config](env.Options{
		Prefix:      envPrefix,
		Environment: environment,
	})
	if err != nil {
		return Config{}, fmt.Errorf("cannot parse configuration: %w", err)
	}

	if config.CacheDir == "" {
		config.CacheDir, err = defaultCacheDir()
		if err != nil {
			return Config{}, err
		}
	}

	return config, config.Validate()
}

func (c Config) Validate() error {
	if c.MemoryCountLimit < 1 {
		return fmt.Errorf("%w: %sMEMORY_COUNT_LIMIT must be positive", ErrInvalidConfig, envPrefix)
	}

	if c.MemoryCostLimit < 1 {
		return fmt.Errorf("%w: %sMEMORY_COST_LIMIT must be positive", ErrInvalidConfig, envPrefix)
	}

	if c.MaxImageSize < 0 || c.MaxPixels < 0 {
		return fmt.Errorf("%w: image limits cannot be negative", ErrInvalidConfig)
	}

	if c.RequestsPerSecond < 0 {
		return fmt.Errorf("%w: %sREQUESTS_PER_SECOND cannot be negative", ErrInvalidConfig, envPrefix)
	}

	if c.PrefetchConcurrency < 1 {
		return fmt.Errorf("%w: %sPREFETCH_CONCURRENCY must be positive", ErrInvalidConfig, envPrefix)
	}

	if c.CacheDir == "" {
		return fmt.Errorf("%w: cache directory is empty", ErrInvalidConfig)
	}

	return nil
}

func defaultCacheDir() (string, error) {
	scope := gap.NewScope(gap.User, "imgcache")
	dir, err := scope.CacheDir()
	if err != nil {
		return "", fmt.Errorf("cannot find user cache directory: %w", err)
	}

	return filepath.Join(dir, "ImageCache"), nil
}

var (
	ErrInvalidConfig = errors.New("invalid configuration")
)
