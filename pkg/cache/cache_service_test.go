package cache_test

import (
	"context"
	"errors"
	"io"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/golang/mock/gomock"

	"github.com/thebartekbanach/imgcache/pkg/cache"
	cacherepositories "github.com/thebartekbanach/imgcache/pkg/cache/repositories"
	dirconnections "github.com/thebartekbanach/imgcache/pkg/cache/repositories/connections"
	mock_cacherepositories "github.com/thebartekbanach/imgcache/pkg/cache/repositories/mocks"
	"github.com/thebartekbanach/imgcache/pkg/decoder"
	stdimagedecoder "github.com/thebartekbanach/imgcache/pkg/decoder/stdimage"
	"github.com/thebartekbanach/imgcache/pkg/filefetcher"
	mock_filefetcher "github.com/thebartekbanach/imgcache/pkg/filefetcher/mocks"
	"github.com/thebartekbanach/imgcache/pkg/hub"
	testutils "github.com/thebartekbanach/imgcache/test/utils"
)

const testImageURL = "https://example.com/news/photo.png"

type testingImageCacheDeps struct {
	memory  cacherepositories.MemoryImagesRepository
	storage cacherepositories.CachedImagesStorage
	conn    *dirconnections.CacheDirTestingConnection
	stop    context.CancelFunc
	stopped <-chan struct{}
}

func createTestingImageCache(t *testing.T, fetcher filefetcher.Fetcher) (cache.ImageCache, *testingImageCacheDeps) {
	conn := dirconnections.NewCacheDirTestingConnection(t)
	return createTestingImageCacheOnConnection(t, fetcher, conn)
}

func createTestingImageCacheOnConnection(t *testing.T, fetcher filefetcher.Fetcher, conn *dirconnections.CacheDirTestingConnection) (cache.ImageCache, *testingImageCacheDeps) {
	imageCache, deps := createTestingImageCacheWithStorage(t, fetcher, cacherepositories.NewCachedImagesStorage(conn))
	deps.conn = conn
	return imageCache, deps
}

func createTestingImageCacheWithStorage(t *testing.T, fetcher filefetcher.Fetcher, storage cacherepositories.CachedImagesStorage) (cache.ImageCache, *testingImageCacheDeps) {
	memory := cacherepositories.NewMemoryImagesRepository(cacherepositories.DefaultMemoryConfig())

	imageCache := cache.NewImageCache(
		cache.Config{PrefetchConcurrency: 4},
		log.New(io.Discard),
		memory,
		storage,
		fetcher,
		stdimagedecoder.NewDecoder(stdimagedecoder.Config{}),
	)

	ctx, stop := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		imageCache.StartMonitors(ctx)
		close(stopped)
	}()
	t.Cleanup(stop)

	return imageCache, &testingImageCacheDeps{memory, storage, nil, stop, stopped}
}

// blockingFetcher holds every fetch until release is closed.
type blockingFetcher struct {
	data    []byte
	err     error
	release chan struct{}
	calls   atomic.Int32

	mu      sync.Mutex
	ctxErrs []error
}

func newBlockingFetcher(data []byte, err error) *blockingFetcher {
	return &blockingFetcher{data: data, err: err, release: make(chan struct{})}
}

func (f *blockingFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	f.calls.Add(1)
	<-f.release

	f.mu.Lock()
	f.ctxErrs = append(f.ctxErrs, ctx.Err())
	f.mu.Unlock()

	return f.data, f.err
}

func waitForPending(t *testing.T, imageCache cache.ImageCache, expected hub.Stats) {
	t.Helper()

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if imageCache.Stats().Pending == expected {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}

	t.Fatalf("pending requests did not reach %+v, got %+v", expected, imageCache.Stats().Pending)
}

type fetchResult struct {
	img *decoder.Image
	ok  bool
}

func fetchConcurrently(ctx context.Context, imageCache cache.ImageCache, url string, count int) <-chan fetchResult {
	results := make(chan fetchResult, count)
	for i := 0; i < count; i++ {
		go func() {
			img, ok := imageCache.Fetch(ctx, url)
			results <- fetchResult{img, ok}
		}()
	}

	return results
}

func TestImageCache_ShouldServeSecondFetchFromMemory(t *testing.T) {
	mockCtrl := gomock.NewController(t)
	fetcher := mock_filefetcher.NewMockFetcher(mockCtrl)
	data := testutils.EncodePNG(t, 8, 8)
	fetcher.EXPECT().Fetch(gomock.Any(), testImageURL).Return(data, nil).Times(1)

	imageCache, _ := createTestingImageCache(t, fetcher)

	first, ok := imageCache.Fetch(context.Background(), testImageURL)
	if !ok {
		t.Fatalf("expected first fetch to succeed")
	}

	second, ok := imageCache.Fetch(context.Background(), testImageURL)
	if !ok || second != first {
		t.Errorf("expected second fetch to return the image held in memory")
	}

	stats := imageCache.Stats()
	if stats.NetworkFetches != 1 || stats.Memory.Count != 1 || stats.Memory.Hits < 1 {
		t.Errorf("unexpected stats after memory hit: %+v", stats)
	}
}

func TestImageCache_ShouldStoreFetchedImageInBothTiers(t *testing.T) {
	mockCtrl := gomock.NewController(t)
	fetcher := mock_filefetcher.NewMockFetcher(mockCtrl)
	data := testutils.EncodePNG(t, 8, 8)
	fetcher.EXPECT().Fetch(gomock.Any(), testImageURL).Return(data, nil).Times(1)

	imageCache, deps := createTestingImageCache(t, fetcher)
	img, ok := imageCache.Fetch(context.Background(), testImageURL)
	if !ok {
		t.Fatalf("expected fetch to succeed")
	}

	if img.Width != 8 || img.Height != 8 || img.Format != "png" {
		t.Errorf("unexpected image: %dx%d %s", img.Width, img.Height, img.Format)
	}

	if _, ok := deps.memory.Get(testImageURL); !ok {
		t.Errorf("expected image in memory tier")
	}

	stored, err := deps.storage.Get(testImageURL)
	if err != nil || len(stored) != len(data) {
		t.Errorf("expected raw bytes on disk, got %d bytes and %v", len(stored), err)
	}
}

func TestImageCache_ShouldFetchOnceForConcurrentRequests(t *testing.T) {
	const callers = 10
	fetcher := newBlockingFetcher(testutils.EncodePNG(t, 4, 4), nil)
	imageCache, _ := createTestingImageCache(t, fetcher)

	results := fetchConcurrently(context.Background(), imageCache, testImageURL, callers)
	waitForPending(t, imageCache, hub.Stats{Keys: 1, Waiters: callers - 1})
	close(fetcher.release)

	var first *decoder.Image
	for i := 0; i < callers; i++ {
		result := <-results
		if !result.ok {
			t.Fatalf("caller %d got absent image", i)
		}
		if first == nil {
			first = result.img
		}
		if result.img != first {
			t.Errorf("caller %d got a different image instance", i)
		}
	}

	if calls := fetcher.calls.Load(); calls != 1 {
		t.Errorf("expected exactly one network fetch, got %d", calls)
	}

	waitForPending(t, imageCache, hub.Stats{})
}

func TestImageCache_ShouldResolveAllConcurrentRequestsAsAbsentOnFetchFailure(t *testing.T) {
	const callers = 5
	fetcher := newBlockingFetcher(nil, filefetcher.ErrResponseStatus404)
	imageCache, deps := createTestingImageCache(t, fetcher)

	results := fetchConcurrently(context.Background(), imageCache, testImageURL, callers)
	waitForPending(t, imageCache, hub.Stats{Keys: 1, Waiters: callers - 1})
	close(fetcher.release)

	for i := 0; i < callers; i++ {
		if result := <-results; result.ok || result.img != nil {
			t.Errorf("caller %d expected absent image", i)
		}
	}

	if calls := fetcher.calls.Load(); calls != 1 {
		t.Errorf("expected exactly one network fetch, got %d", calls)
	}

	if _, err := deps.storage.Get(testImageURL); !errors.Is(err, cacherepositories.ErrImageNotFound) {
		t.Errorf("expected nothing on disk after failure, got %v", err)
	}

	// failures are not cached, next fetch goes to network again
	imageCache.Fetch(context.Background(), testImageURL)
	if calls := fetcher.calls.Load(); calls != 2 {
		t.Errorf("expected retry after failure, got %d fetches", calls)
	}

	if failures := imageCache.Stats().FetchFailures; failures != 2 {
		t.Errorf("expected 2 fetch failures, got %d", failures)
	}
}

func TestImageCache_ShouldResolveAllConcurrentRequestsAsAbsentOnDecodeFailure(t *testing.T) {
	const callers = 5
	fetcher := newBlockingFetcher([]byte("<html>captive portal</html>"), nil)
	imageCache, deps := createTestingImageCache(t, fetcher)

	results := fetchConcurrently(context.Background(), imageCache, testImageURL, callers)
	waitForPending(t, imageCache, hub.Stats{Keys: 1, Waiters: callers - 1})
	close(fetcher.release)

	for i := 0; i < callers; i++ {
		if result := <-results; result.ok {
			t.Errorf("caller %d expected absent image", i)
		}
	}

	if count := deps.memory.Stats().Count; count != 0 {
		t.Errorf("expected empty memory tier, got %d entries", count)
	}

	if _, err := deps.storage.Get(testImageURL); !errors.Is(err, cacherepositories.ErrImageNotFound) {
		t.Errorf("expected nothing on disk after decode failure, got %v", err)
	}

	imageCache.Fetch(context.Background(), testImageURL)
	if calls := fetcher.calls.Load(); calls != 2 {
		t.Errorf("expected retry after decode failure, got %d fetches", calls)
	}
}

func TestImageCache_ShouldFetchFromNetworkAgainAfterClear(t *testing.T) {
	mockCtrl := gomock.NewController(t)
	fetcher := mock_filefetcher.NewMockFetcher(mockCtrl)
	data := testutils.EncodePNG(t, 8, 8)
	fetcher.EXPECT().Fetch(gomock.Any(), testImageURL).Return(data, nil).Times(2)

	imageCache, deps := createTestingImageCache(t, fetcher)

	imageCache.Fetch(context.Background(), testImageURL)
	if err := imageCache.Clear(); err != nil {
		t.Fatalf("unexpected clear error: %v", err)
	}

	if count := deps.memory.Stats().Count; count != 0 {
		t.Errorf("expected empty memory tier after clear, got %d entries", count)
	}

	if _, ok := imageCache.Fetch(context.Background(), testImageURL); !ok {
		t.Errorf("expected fetch after clear to succeed")
	}
}

func TestImageCache_ShouldServeImageFromDiskWhenMemoryIsEmpty(t *testing.T) {
	mockCtrl := gomock.NewController(t)
	fetcher := mock_filefetcher.NewMockFetcher(mockCtrl)
	data := testutils.EncodePNG(t, 8, 8)
	fetcher.EXPECT().Fetch(gomock.Any(), testImageURL).Return(data, nil).Times(1)

	imageCache, deps := createTestingImageCache(t, fetcher)
	imageCache.Fetch(context.Background(), testImageURL)

	// simulate a restart: fresh memory tier over the same directory
	restartedFetcher := mock_filefetcher.NewMockFetcher(mockCtrl)
	restartedCache, restartedDeps := createTestingImageCacheOnConnection(t, restartedFetcher, deps.conn)

	img, ok := restartedCache.Fetch(context.Background(), testImageURL)
	if !ok || img.Width != 8 {
		t.Fatalf("expected image to be served from disk")
	}

	if _, ok := restartedDeps.memory.Get(testImageURL); !ok {
		t.Errorf("expected disk hit to be promoted to memory")
	}

	if hits := restartedCache.Stats().DiskHits; hits != 1 {
		t.Errorf("expected 1 disk hit, got %d", hits)
	}
}

func TestImageCache_ShouldReplaceCorruptedDiskEntry(t *testing.T) {
	mockCtrl := gomock.NewController(t)
	fetcher := mock_filefetcher.NewMockFetcher(mockCtrl)
	data := testutils.EncodePNG(t, 8, 8)
	fetcher.EXPECT().Fetch(gomock.Any(), testImageURL).Return(data, nil).Times(1)

	imageCache, deps := createTestingImageCache(t, fetcher)
	deps.storage.Save(testImageURL, []byte("truncated"))

	if _, ok := imageCache.Fetch(context.Background(), testImageURL); !ok {
		t.Fatalf("expected fetch to fall back to network")
	}

	stored, err := deps.storage.Get(testImageURL)
	if err != nil || len(stored) != len(data) {
		t.Errorf("expected corrupted entry to be replaced, got %d bytes and %v", len(stored), err)
	}
}

func TestImageCache_ShouldReturnAbsentForMalformedURLWithoutFetching(t *testing.T) {
	mockCtrl := gomock.NewController(t)
	fetcher := mock_filefetcher.NewMockFetcher(mockCtrl)
	imageCache, _ := createTestingImageCache(t, fetcher)

	for _, url := range []string{"", "not a url", "ftp://example.com/a.png", "/relative/path.png", "https://"} {
		if img, ok := imageCache.Fetch(context.Background(), url); ok || img != nil {
			t.Errorf("expected absent image for %q", url)
		}
	}
}

func TestImageCache_ShouldReturnImageEvenIfDiskWriteFails(t *testing.T) {
	mockCtrl := gomock.NewController(t)
	fetcher := mock_filefetcher.NewMockFetcher(mockCtrl)
	fetcher.EXPECT().Fetch(gomock.Any(), testImageURL).Return(testutils.EncodePNG(t, 8, 8), nil).Times(1)

	storage := mock_cacherepositories.NewMockCachedImagesStorage()
	storage.ReturnError(errors.New("disk full"))
	imageCache, _ := createTestingImageCacheWithStorage(t, fetcher, storage)

	if _, ok := imageCache.Fetch(context.Background(), testImageURL); !ok {
		t.Errorf("expected image despite disk write failure")
	}

	if _, ok := imageCache.Fetch(context.Background(), testImageURL); !ok {
		t.Errorf("expected image from memory tier")
	}

	if saves := storage.Saves(); saves != 1 {
		t.Errorf("expected one disk write attempt, got %d", saves)
	}
}

func TestImageCache_WaiterShouldStopWaitingWhenItsContextIsDone(t *testing.T) {
	fetcher := newBlockingFetcher(testutils.EncodePNG(t, 4, 4), nil)
	imageCache, _ := createTestingImageCache(t, fetcher)

	leader := fetchConcurrently(context.Background(), imageCache, testImageURL, 1)
	waitForPending(t, imageCache, hub.Stats{Keys: 1})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, ok := imageCache.Fetch(ctx, testImageURL); ok {
		t.Errorf("expected cancelled waiter to get absent image")
	}

	close(fetcher.release)
	if result := <-leader; !result.ok {
		t.Errorf("expected leader to finish fetching")
	}
}

func TestImageCache_LeaderShouldKeepFetchingWhenItsContextIsDone(t *testing.T) {
	fetcher := newBlockingFetcher(testutils.EncodePNG(t, 4, 4), nil)
	imageCache, _ := createTestingImageCache(t, fetcher)

	ctx, cancel := context.WithCancel(context.Background())
	leader := fetchConcurrently(ctx, imageCache, testImageURL, 1)
	waitForPending(t, imageCache, hub.Stats{Keys: 1})
	waiters := fetchConcurrently(context.Background(), imageCache, testImageURL, 2)
	waitForPending(t, imageCache, hub.Stats{Keys: 1, Waiters: 2})

	cancel()
	close(fetcher.release)

	<-leader
	for i := 0; i < 2; i++ {
		if result := <-waiters; !result.ok {
			t.Errorf("waiter %d expected image despite leader context cancellation", i)
		}
	}

	fetcher.mu.Lock()
	defer fetcher.mu.Unlock()
	if len(fetcher.ctxErrs) != 1 || fetcher.ctxErrs[0] != nil {
		t.Errorf("expected fetch context to be detached from caller, got %v", fetcher.ctxErrs)
	}
}

func TestImageCache_ShouldReturnAbsentWhenMonitorsAreStopped(t *testing.T) {
	mockCtrl := gomock.NewController(t)
	fetcher := mock_filefetcher.NewMockFetcher(mockCtrl)
	imageCache, deps := createTestingImageCache(t, fetcher)

	deps.stop()
	<-deps.stopped

	if _, ok := imageCache.Fetch(context.Background(), testImageURL); ok {
		t.Errorf("expected absent image when monitors are stopped")
	}
}

func TestImageCache_ShouldRemoveImageFromBothTiers(t *testing.T) {
	mockCtrl := gomock.NewController(t)
	fetcher := mock_filefetcher.NewMockFetcher(mockCtrl)
	fetcher.EXPECT().Fetch(gomock.Any(), testImageURL).Return(testutils.EncodePNG(t, 8, 8), nil).Times(2)

	imageCache, deps := createTestingImageCache(t, fetcher)
	imageCache.Fetch(context.Background(), testImageURL)

	if !imageCache.Remove(testImageURL) {
		t.Errorf("expected cached image to be removed")
	}
	if imageCache.Remove(testImageURL) {
		t.Errorf("expected second removal to report nothing removed")
	}
	if _, err := deps.storage.Get(testImageURL); !errors.Is(err, cacherepositories.ErrImageNotFound) {
		t.Errorf("expected image to be removed from disk, got %v", err)
	}

	imageCache.Fetch(context.Background(), testImageURL)
}

func TestImageCache_PrefetchShouldLoadEveryUniqueUrlOnce(t *testing.T) {
	mockCtrl := gomock.NewController(t)
	fetcher := mock_filefetcher.NewMockFetcher(mockCtrl)
	data := testutils.EncodePNG(t, 8, 8)
	urls := []string{
		"https://example.com/1.png",
		"https://example.com/2.png",
		"https://example.com/3.png",
	}
	for _, url := range urls {
		fetcher.EXPECT().Fetch(gomock.Any(), url).Return(data, nil).Times(1)
	}
	fetcher.EXPECT().Fetch(gomock.Any(), "https://example.com/missing.png").Return(nil, filefetcher.ErrResponseStatus404).Times(1)

	imageCache, _ := createTestingImageCache(t, fetcher)

	requested := append(urls, urls[0], urls[1], "https://example.com/missing.png")
	loaded := imageCache.Prefetch(context.Background(), requested)

	if loaded != 5 {
		t.Errorf("expected 5 of %d requested urls to resolve to an image, got %d", len(requested), loaded)
	}

	if count := imageCache.Stats().Memory.Count; count != 3 {
		t.Errorf("expected 3 images in memory, got %d", count)
	}
}
