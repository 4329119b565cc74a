package calendar

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	// fetchTimeout bounds one network fetch. A hanging feed costs at most
	// this long before the aggregation moves on to the next source.
	fetchTimeout = 30 * time.Second

	userAgent    = "s42-dashboard/1.0 (calendar aggregator)"
	acceptHeader = "text/calendar, text/plain, */*"
)

// Fetcher retrieves raw feed bodies, going through the cache first.
type Fetcher struct {
	client *http.Client
	cache  *Cache
}

func NewFetcher(cache *Cache) *Fetcher {
	return &Fetcher{
		client: &http.Client{Timeout: fetchTimeout},
		cache:  cache,
	}
}

// Fetch returns the feed body for url, reusing a fresh cache entry when one
// exists. Successful network fetches are stored back into the cache. The
// second return reports whether the body came from cache.
func (f *Fetcher) Fetch(ctx context.Context, url string) (string, bool, error) {
	if content, ok := f.cache.Get(url); ok {
		return content, true, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", false, fmt.Errorf("build feed request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", acceptHeader)

	resp, err := f.client.Do(req)
	if err != nil {
		return "", false, fmt.Errorf("fetch feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", false, fmt.Errorf("fetch feed: unexpected status %s", resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", false, fmt.Errorf("read feed body: %w", err)
	}

	content := string(body)
	f.cache.Put(url, content)
	return content, false, nil
}
