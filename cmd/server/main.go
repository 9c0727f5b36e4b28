package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 10 * time.Second

var (
	addr       string
	cacheDir   string
	logLevel   string
	outputFile string

	rootCmd = &cobra.Command{
		Use:          "imgcache",
		Short:        "Request deduplicating memory and disk cache for remote images",
		SilenceUsage: true,
	}

	serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "Serve cached images over HTTP",
		Args:  cobra.NoArgs,
		RunE:  runServe,
	}

	fetchCmd = &cobra.Command{
		Use:   "fetch <url>",
		Short: "Fetch a single image through the cache",
		Args:  cobra.ExactArgs(1),
		RunE:  runFetch,
	}

	clearCmd = &cobra.Command{
		Use:   "clear",
		Short: "Remove every image from the disk cache",
		Args:  cobra.NoArgs,
		RunE:  runClear,
	}
)

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cacheDir, "cache-dir", "", "cache directory (overrides IMGCACHE_CACHE_DIR)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (overrides IMGCACHE_LOG_LEVEL)")
	serveCmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides IMGCACHE_ADDR)")
	fetchCmd.Flags().StringVarP(&outputFile, "output", "o", "", "write fetched image to file")

	rootCmd.AddCommand(serveCmd, fetchCmd, clearCmd)
}

// loadRuntime reads configuration from environment, applies command line
// overrides and builds the logger.
func loadRuntime(cmd *cobra.Command) (Config, *log.Logger, error) {
	config, err := LoadConfig(nil)
	if err != nil {
		return Config{}, nil, err
	}

	if cmd.Flags().Changed("addr") {
		config.Addr = addr
	}
	if cmd.Flags().Changed("cache-dir") {
		config.CacheDir = cacheDir
	}
	if cmd.Flags().Changed("log-level") {
		config.LogLevel = logLevel
	}

	if err := config.Validate(); err != nil {
		return Config{}, nil, err
	}

	logger, err := newLogger(os.Stderr, config.LogLevel)
	if err != nil {
		return Config{}, nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	return config, logger, nil
}

func runServe(cmd *cobra.Command, _ []string) error {
	config, logger, err := loadRuntime(cmd)
	if err != nil {
		return err
	}

	logger.Info("Initializing image cache", "cacheDir", config.CacheDir, "memoryLimit", config.MemoryCostLimit)
	imageCache, err := InitializeImageCache(config, logger)
	if err != nil {
		logger.Error("Cannot initialize image cache", "err", err)
		return err
	}

	// monitors outlive the signal context so requests in flight
	// during shutdown can still be resolved
	monitorsCtx, stopMonitors := context.WithCancel(context.WithoutCancel(cmd.Context()))
	defer stopMonitors()
	go imageCache.StartMonitors(monitorsCtx)

	proxyService := InitializeProxy(config, imageCache)
	invalidationService := InitializeInvalidator(imageCache)

	mux := http.NewServeMux()
	mux.HandleFunc("/image", handleImageRequest(logger, proxyService))
	mux.HandleFunc("/cache", handleCacheDeleteRequest(logger, config.ClearSecurityToken, imageCache, invalidationService))
	mux.HandleFunc("/invalidations/latest", handleLatestInvalidationInfoRequest(logger, config.ClearSecurityToken, invalidationService))
	mux.HandleFunc("/prefetch", handlePrefetchRequest(logger, imageCache))
	mux.HandleFunc("/stats", handleStatsRequest(logger, imageCache))

	server := &http.Server{
		Addr:              config.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- server.ListenAndServe()
	}()

	logger.Info("Listening", "addr", config.Addr)

	select {
	case err := <-serveErr:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server stopped", "err", err)
			return err
		}
		return nil

	case <-ctx.Done():
	}

	logger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	return server.Shutdown(shutdownCtx)
}

func runFetch(cmd *cobra.Command, args []string) error {
	config, logger, err := loadRuntime(cmd)
	if err != nil {
		return err
	}

	imageCache, err := InitializeImageCache(config, logger)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()
	go imageCache.StartMonitors(ctx)

	img, ok := imageCache.Fetch(ctx, args[0])
	if !ok {
		return fmt.Errorf("%w: %s", ErrImageUnavailable, args[0])
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s %dx%d %s\n", img.Format, img.Width, img.Height, humanize.IBytes(uint64(len(img.Data))))

	if outputFile != "" {
		if err := os.WriteFile(outputFile, img.Data, 0o644); err != nil {
			return fmt.Errorf("cannot write image to %s: %w", outputFile, err)
		}
	}

	return nil
}

func runClear(cmd *cobra.Command, _ []string) error {
	config, logger, err := loadRuntime(cmd)
	if err != nil {
		return err
	}

	imageCache, err := InitializeImageCache(config, logger)
	if err != nil {
		return err
	}

	return imageCache.Clear()
}

var (
	ErrImageUnavailable = errors.New("image unavailable")
)
