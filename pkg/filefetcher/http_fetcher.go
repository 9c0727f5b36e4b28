package filefetcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/ryanuber/go-glob"
	"golang.org/x/time/rate"
)

type httpGetFunc func(ctx context.Context, url string) (resp *http.Response, err error)

type Config struct {
	// AllowedDomains are glob patterns matched against the source host,
	// empty list allows every host.
	AllowedDomains []string

	// MaxImageSize limits the response body in bytes, zero disables the limit.
	MaxImageSize int64

	// RequestsPerSecond enables a token bucket limiter shared by all fetches.
	RequestsPerSecond float64
	Burst             int

	Timeout time.Duration
}

type HTTPFetcher struct {
	config  Config
	getter  httpGetFunc
	limiter *rate.Limiter
}

var _ Fetcher = (*HTTPFetcher)(nil)

func NewHTTPFetcher(config Config) Fetcher {
	client := &http.Client{Timeout: config.Timeout}
	getFunc := func(ctx context.Context, url string) (resp *http.Response, err error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, err
		}

		return client.Do(req)
	}

	return newHTTPFetcher(config, getFunc)
}

func newHTTPFetcher(config Config, getter httpGetFunc) *HTTPFetcher {
	limiter := rate.NewLimiter(rate.Inf, 0)
	if config.RequestsPerSecond > 0 {
		burst := config.Burst
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(config.RequestsPerSecond), burst)
	}

	return &HTTPFetcher{config, getter, limiter}
}

func (fetcher *HTTPFetcher) Fetch(ctx context.Context, sourceURL string) ([]byte, error) {
	if err := fetcher.validateSource(sourceURL); err != nil {
		return nil, err
	}

	if err := fetcher.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	response, err := fetcher.getter(ctx, sourceURL)
	if err != nil {
		return nil, err
	}
	defer response.Body.Close()

	if response.StatusCode == http.StatusNotFound {
		return nil, ErrResponseStatus404
	}
	if response.StatusCode < 200 || response.StatusCode > 299 {
		return nil, fmt.Errorf("%w: %d", ErrResponseStatusNotOK, response.StatusCode)
	}

	maxSize := fetcher.config.MaxImageSize
	if maxSize > 0 && response.ContentLength > maxSize {
		return nil, ErrImageTooLarge
	}

	var body io.Reader = response.Body
	if maxSize > 0 {
		body = io.LimitReader(response.Body, maxSize+1)
	}

	data, err := io.ReadAll(body)
	if err != nil {
		return nil, err
	}

	if maxSize > 0 && int64(len(data)) > maxSize {
		return nil, ErrImageTooLarge
	}

	return data, nil
}

func (fetcher *HTTPFetcher) validateSource(sourceURL string) error {
	info, err := url.Parse(sourceURL)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}

	if info.Scheme != "http" && info.Scheme != "https" {
		return ErrUnsupportedScheme
	}

	if info.Hostname() == "" {
		return ErrInvalidURL
	}

	if !fetcher.isAllowedDomain(info.Hostname()) {
		return ErrDomainNotAllowed
	}

	return nil
}

func (fetcher *HTTPFetcher) isAllowedDomain(domain string) bool {
	if len(fetcher.config.AllowedDomains) == 0 {
		return true
	}

	for _, allowedDomain := range fetcher.config.AllowedDomains {
		if glob.Glob(allowedDomain, domain) {
			return true
		}
	}

	return false
}

var (
	ErrResponseStatusNotOK = errors.New("response returned non-2xx status code")
	ErrResponseStatus404   = errors.New("response returned 404 status code")
	ErrInvalidURL          = errors.New("invalid source url")
	ErrUnsupportedScheme   = errors.New("only http and https sources are supported")
	ErrDomainNotAllowed    = errors.New("source domain not allowed")
	ErrImageTooLarge       = errors.New("image exceeds maximum size")
)
