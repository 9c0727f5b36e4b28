package proxy

import (
	"context"
	"io"
)

//go:generate mockgen -destination=mocks/mock_proxy.go -source=interface.go

type ProxyResponseWriter interface {
	WriteOK(contentType string, reader io.ReadCloser)
	WriteError(code int, message string)
}

type ProxyService interface {
	Handle(ctx context.Context, requestPath, callerOrigin string, responseWriter ProxyResponseWriter)
}
