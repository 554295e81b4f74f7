package chunkenc

import "github.com/prometheus/client_golang/prometheus"

// Metrics instrumented here mirror the kind of counters loki's pkg/chunkenc
// exposes for its own block codec calls, generalized to BLZ's chunk codec:
// how often each codec runs, and how often the decoded-chunk LRU pays off.
var (
	codecCalls = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "blz",
		Subsystem: "chunkenc",
		Name:      "codec_calls_total",
		Help:      "Number of codec compress/decompress calls, by operation and codec name.",
	}, []string{"op", "cname"})

	decodeCacheHits = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "blz",
		Subsystem: "chunkenc",
		Name:      "decode_cache_hits_total",
		Help:      "Number of DecompressInto calls served from the decoded-chunk LRU.",
	})

	decodeCacheMisses = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "blz",
		Subsystem: "chunkenc",
		Name:      "decode_cache_misses_total",
		Help:      "Number of DecompressInto calls that missed the decoded-chunk LRU.",
	})
)

func init() {
	prometheus.MustRegister(codecCalls, decodeCacheHits, decodeCacheMisses)
}
