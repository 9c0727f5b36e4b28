package filefetcher

import (
	"context"
)

//go:generate mockgen -destination=mocks/mock_fetcher.go -source=interface.go

// Fetcher downloads the whole body of a remote image.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}
