package calendar

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"github.com/jc230285/s42-dashboard/internal/metrics"
)

// Aggregator runs the whole pipeline: fetch (via cache) each source, parse,
// filter to the requested range, sort, then merge duplicates across sources.
type Aggregator struct {
	fetcher *Fetcher
}

// NewAggregator wires an aggregator around a shared feed cache. The cache is
// the only cross-request state; everything else lives for one call.
func NewAggregator(cache *Cache) *Aggregator {
	return &Aggregator{fetcher: NewFetcher(cache)}
}

// Aggregate fetches and parses every source sequentially and returns the
// merged event list for the inclusive [start, end] window, sorted by start.
// A source that fails to fetch is logged and skipped; one broken calendar
// never blocks the others, and an all-failed run yields an empty list rather
// than an error.
func (a *Aggregator) Aggregate(ctx context.Context, sources []Source, start, end time.Time) []Event {
	var all []Event

	for _, src := range sources {
		began := time.Now()
		content, fromCache, err := a.fetcher.Fetch(ctx, src.URL)
		if err != nil {
			metrics.ObserveFeedFetch(src.Name, metrics.FeedOutcomeError, time.Since(began))
			slog.Warn("calendar feed fetch failed, skipping source",
				"source", src.Name, "url", src.URL, "err", err)
			continue
		}
		outcome := metrics.FeedOutcomeNetwork
		if fromCache {
			outcome = metrics.FeedOutcomeCache
		}
		metrics.ObserveFeedFetch(src.Name, outcome, time.Since(began))

		events := ParseEvents(NewLineScanner(content), src.Name)
		kept := 0
		for _, ev := range events {
			if ev.Start.Before(start) || ev.Start.After(end) {
				continue
			}
			all = append(all, ev)
			kept++
		}
		slog.Debug("calendar feed parsed",
			"source", src.Name, "events", len(events), "in_range", kept, "from_cache", fromCache)
	}

	sort.SliceStable(all, func(i, j int) bool {
		return all[i].Start.Before(all[j].Start)
	})

	return Merge(all)
}
