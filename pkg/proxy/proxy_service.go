package proxy

import (
	"bytes"
	"context"
	"io"
	"net/url"

	"github.com/ryanuber/go-glob"
	"github.com/thebartekbanach/imgcache/pkg/cache"
)

type ProxyServiceConfig struct {
	AllowedDomains []string
	AllowedOrigins []string
}

type proxyService struct {
	config ProxyServiceConfig
	cache  cache.ImageCache
}

var _ ProxyService = (*proxyService)(nil)

func NewProxyService(config ProxyServiceConfig, imageCache cache.ImageCache) ProxyService {
	return &proxyService{
		config: config,
		cache:  imageCache,
	}
}

// Handle serves requests in form of /image?url=<source image url>.
func (p *proxyService) Handle(ctx context.Context, rawRequestPath, callerOrigin string, responseWriter ProxyResponseWriter) {
	if !p.isAllowedOrigin(callerOrigin) {
		responseWriter.WriteError(403, "request origin not allowed")
		return
	}

	request, err := url.Parse(rawRequestPath)
	if err != nil {
		responseWriter.WriteError(400, "bad request")
		return
	}

	if !request.Query().Has("url") {
		responseWriter.WriteError(400, "url param not included")
		return
	}

	sourceImageURL := request.Query().Get("url")
	if !p.isAllowedImageSourceDomain(sourceImageURL) {
		responseWriter.WriteError(403, "source image domain not allowed")
		return
	}

	img, ok := p.cache.Fetch(ctx, sourceImageURL)
	if !ok {
		responseWriter.WriteError(404, "image not found")
		return
	}

	responseWriter.WriteOK(img.ContentType(), io.NopCloser(bytes.NewReader(img.Data)))
}

func (p *proxyService) isAllowedOrigin(origin string) bool {
	if len(p.config.AllowedOrigins) == 0 {
		return true
	}

	for _, allowedOrigin := range p.config.AllowedOrigins {
		if glob.Glob(allowedOrigin, origin) {
			return true
		}
	}

	return false
}

func (p *proxyService) isAllowedImageSourceDomain(sourceImageURL string) bool {
	if len(p.config.AllowedDomains) == 0 {
		return true
	}

	url, err := url.Parse(sourceImageURL)
	if err != nil {
		return false
	}

	sourceImageDomain := url.Hostname()
	for _, allowedDomain := range p.config.AllowedDomains {
		if glob.Glob(allowedDomain, sourceImageDomain) {
			return true
		}
	}

	return false
}
