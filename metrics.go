package nasc

import (
	"time"

	metrics "github.com/rcrowley/go-metrics"
)

// Metric names registered by every container.
const (
	MetricConstructed = "nasc.instances.constructed"
	MetricCacheHits   = "nasc.singletons.hits"
	MetricLazy        = "nasc.lazy.resolved"
	MetricFailures    = "nasc.resolve.failures"
	MetricLatency     = "nasc.resolve.latency"
)

// instruments holds the container's go-metrics instruments.
type instruments struct {
	constructed metrics.Counter
	cacheHits   metrics.Counter
	lazy        metrics.Counter
	failures    metrics.Counter
	latency     metrics.Timer
}

func newInstruments(r metrics.Registry) *instruments {
	return &instruments{
		constructed: metrics.GetOrRegisterCounter(MetricConstructed, r),
		cacheHits:   metrics.GetOrRegisterCounter(MetricCacheHits, r),
		lazy:        metrics.GetOrRegisterCounter(MetricLazy, r),
		failures:    metrics.GetOrRegisterCounter(MetricFailures, r),
		latency:     metrics.GetOrRegisterTimer(MetricLatency, r),
	}
}

// observe records the outcome of a top-level call.
func (i *instruments) observe(start time.Time, err error) {
	i.latency.UpdateSince(start)
	if err != nil {
		i.failures.Inc(1)
	}
}
