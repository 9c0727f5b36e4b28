package main

import (
	"io"
	"net/http"
	"strings"

	"github.com/thebartekbanach/imgcache/pkg/proxy"
)

type proxyResponseWriter struct {
	w http.ResponseWriter
}

var _ proxy.ProxyResponseWriter = (*proxyResponseWriter)(nil)

func (w *proxyResponseWriter) WriteOK(contentType string, reader io.ReadCloser) {
	w.w.Header().Set("Content-Type", contentType)
	w.w.WriteHeader(http.StatusOK)
	io.Copy(w.w, reader)
	reader.Close()
}

func (w *proxyResponseWriter) WriteError(code int, message string) {
	w.w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.w.WriteHeader(code)
	io.Copy(w.w, strings.NewReader(message))
}
