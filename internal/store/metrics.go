package store

import (
	"context"
	"time"

	"github.com/jc230285/s42-dashboard/internal/metrics"
)

// observeDB returns a deferred-latency recorder for one database operation.
func observeDB(ctx context.Context, operation string) func() {
	start := time.Now()
	return func() {
		metrics.ObserveDBLatency(ctx, operation, start)
	}
}
