package player

import (
	"context"
	"sync"
	"time"

	"jig_platform_backend/pkg/logger"

	"go.uber.org/zap"
)

const (
	// DefaultPreloadTimeout is the per-asset fetch timeout; on expiry the
	// asset is treated as known-missing.
	DefaultPreloadTimeout = 30 * time.Second
	// PlaceholderURL substitutes any known-missing asset.
	PlaceholderURL = "/static/placeholder.png"
)

// Fetcher resolves one media URL through the host's cache.
type Fetcher interface {
	Fetch(ctx context.Context, url string) error
}

// PreloadWarning 预加载缺失素材的非致命警告
type PreloadWarning struct {
	URL string
	Err error
}

// PreloadResult maps each requested URL to the URL the renderer should use:
// the original on success, the placeholder when known-missing.
type PreloadResult struct {
	Resolved map[string]string
	Warnings []PreloadWarning
}

// Preload fetches every URL concurrently. A known-missing asset substitutes
// the placeholder and records a warning; it never blocks play.
func Preload(ctx context.Context, fetcher Fetcher, urls []string, timeout time.Duration) *PreloadResult {
	if timeout <= 0 {
		timeout = DefaultPreloadTimeout
	}
	result := &PreloadResult{Resolved: make(map[string]string, len(urls))}

	var mu sync.Mutex
	var wg sync.WaitGroup
	seen := make(map[string]bool, len(urls))
	for _, url := range urls {
		if url == "" || seen[url] {
			continue
		}
		seen[url] = true
		wg.Add(1)
		go func(url string) {
			defer wg.Done()
			fetchCtx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()
			err := fetcher.Fetch(fetchCtx, url)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				logger.Log.Warn("preload: asset missing, using placeholder",
					zap.String("url", url), zap.Error(err))
				result.Resolved[url] = PlaceholderURL
				result.Warnings = append(result.Warnings, PreloadWarning{URL: url, Err: err})
				return
			}
			result.Resolved[url] = url
		}(url)
	}
	wg.Wait()
	return result
}
