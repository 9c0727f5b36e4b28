package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/thebartekbanach/imgcache/pkg/cache"
	"github.com/thebartekbanach/imgcache/pkg/proxy"
)

const requestTimeout = time.Minute

func handleImageRequest(logger *log.Logger, proxyService proxy.ProxyService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
		defer cancel()

		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			w.Write([]byte("only GET method is allowed"))
			return
		}

		request := r.URL.Path + "?" + r.URL.RawQuery
		logger.Debug("Processing image request", "request", request)

		proxyService.Handle(ctx, request, r.Header.Get("Origin"), &proxyResponseWriter{w})
		r.Body.Close()
	}
}

// handleCacheDeleteRequest clears the whole cache, or only given
// urls when the urls query parameter is present.
func handleCacheDeleteRequest(
	logger *log.Logger,
	rawAccessToken string,
	imageCache cache.ImageCache,
	invalidationService cache.InvalidationService,
) http.HandlerFunc {
	accessToken := fmt.Sprintf("Bearer %s", rawAccessToken)

	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete {
			w.WriteHeader(http.StatusMethodNotAllowed)
			w.Write([]byte("only DELETE method is allowed"))
			return
		}

		if rawAccessToken != "" && r.Header.Get("Authorization") != accessToken {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte("access token authorization failed"))
			return
		}

		urls := r.URL.Query()["urls"]
		if len(urls) > 0 {
			report := invalidationService.Invalidate(urls)
			logger.Info("Invalidated cached images", "requested", len(urls), "removed", len(report.DoneInvalidations))
			writeJSON(w, logger, http.StatusOK, report)
			return
		}

		if err := imageCache.Clear(); err != nil {
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte("cannot clear disk cache"))
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

func handleLatestInvalidationInfoRequest(logger *log.Logger, rawAccessToken string, invalidationService cache.InvalidationService) http.HandlerFunc {
	accessToken := fmt.Sprintf("Bearer %s", rawAccessToken)

	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			w.Write([]byte("only GET method is allowed"))
			return
		}

		if rawAccessToken != "" && r.Header.Get("Authorization") != accessToken {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte("access token authorization failed"))
			return
		}

		report, ok := invalidationService.LastInvalidation()
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte("no invalidation was made yet"))
			return
		}

		writeJSON(w, logger, http.StatusOK, report)
	}
}

type prefetchResponse struct {
	Requested int `json:"requested"`
	Loaded    int `json:"loaded"`
}

func handlePrefetchRequest(logger *log.Logger, imageCache cache.ImageCache) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
		defer cancel()

		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			w.Write([]byte("only POST method is allowed"))
			return
		}

		urls := r.URL.Query()["urls"]
		if len(urls) == 0 {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte("urls query parameter is required"))
			return
		}

		loaded := imageCache.Prefetch(ctx, urls)
		writeJSON(w, logger, http.StatusOK, prefetchResponse{len(urls), loaded})
	}
}

func handleStatsRequest(logger *log.Logger, imageCache cache.ImageCache) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			w.Write([]byte("only GET method is allowed"))
			return
		}

		writeJSON(w, logger, http.StatusOK, imageCache.Stats())
	}
}

func writeJSON(w http.ResponseWriter, logger *log.Logger, status int, value any) {
	jsonResult, err := json.Marshal(value)
	if err != nil {
		logger.Error("Cannot marshal response", "err", err)
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("error ocurred when marshalling response"))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(jsonResult)
}
