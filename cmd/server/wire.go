//go:build wireinject
// +build wireinject

package main

import (
	"github.com/charmbracelet/log"
	"github.com/google/wire"
	"github.com/thebartekbanach/imgcache/pkg/cache"
	cacherepositories "github.com/thebartekbanach/imgcache/pkg/cache/repositories"
	"github.com/thebartekbanach/imgcache/pkg/filefetcher"
	"github.com/thebartekbanach/imgcache/pkg/proxy"
)

func InitializeImageCache(config Config, logger *log.Logger) (cache.ImageCache, error) {
	wire.Build(
		ProvideCacheDirConnection,
		cacherepositories.NewCachedImagesStorage,

		ProvideMemoryConfig,
		cacherepositories.NewMemoryImagesRepository,

		ProvideFetcherConfig,
		filefetcher.NewHTTPFetcher,

		ProvideDecoder,
		ProvideCacheConfig,
		cache.NewImageCache,
	)

	return nil, nil
}

func InitializeInvalidator(imageCache cache.ImageCache) cache.InvalidationService {
	wire.Build(
		cache.NewInvalidationService,
	)

	return &cache.InvalidationServiceImplementation{}
}

func InitializeProxy(config Config, imageCache cache.ImageCache) proxy.ProxyService {
	wire.Build(
		ProvideProxyConfig,
		proxy.NewProxyService,
	)

	return nil
}
