package main

import (
	"fmt"

	"github.com/thebartekbanach/imgcache/pkg/cache"
	cacherepositories "github.com/thebartekbanach/imgcache/pkg/cache/repositories"
	dirconnections "github.com/thebartekbanach/imgcache/pkg/cache/repositories/connections"
	"github.com/thebartekbanach/imgcache/pkg/decoder"
	stdimagedecoder "github.com/thebartekbanach/imgcache/pkg/decoder/stdimage"
	"github.com/thebartekbanach/imgcache/pkg/filefetcher"
	"github.com/thebartekbanach/imgcache/pkg/proxy"
)

func ProvideCacheDirConnection(config Config) (dirconnections.CacheDirConnection, error) {
	conn, err := dirconnections.NewCacheDirProductionConnection(dirconnections.CacheDirProductionConnectionConfig{
		Path: config.CacheDir,
	})
	if err != nil {
		return nil, fmt.Errorf("cannot initialize disk cache: %w", err)
	}

	return conn, nil
}

func ProvideMemoryConfig(config Config) cacherepositories.MemoryConfig {
	return cacherepositories.MemoryConfig{
		CountLimit: config.MemoryCountLimit,
		CostLimit:  int64(config.MemoryCostLimit),
	}
}

func ProvideFetcherConfig(config Config) filefetcher.Config {
	return filefetcher.Config{
		AllowedDomains:    config.AllowedDomains,
		MaxImageSize:      int64(config.MaxImageSize),
		RequestsPerSecond: config.RequestsPerSecond,
		Burst:             config.RequestsBurst,
		Timeout:           config.FetchTimeout,
	}
}

func ProvideDecoder(config Config) decoder.Decoder {
	return stdimagedecoder.NewDecoder(stdimagedecoder.Config{
		MaxPixels: config.MaxPixels,
	})
}

func ProvideCacheConfig(config Config) cache.Config {
	return cache.Config{
		PrefetchConcurrency: config.PrefetchConcurrency,
	}
}

func ProvideProxyConfig(config Config) proxy.ProxyServiceConfig {
	return proxy.ProxyServiceConfig{
		AllowedDomains: config.AllowedDomains,
		AllowedOrigins: config.AllowedOrigins,
	}
}
