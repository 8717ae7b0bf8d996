package metrics

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/gin-gonic/gin"
)

var (
	matchRequestsTotal      atomic.Uint64
	matchCacheHitsTotal     atomic.Uint64
	matchAITotal            atomic.Uint64
	matchFallbackTotal      atomic.Uint64
	matchPersistFailedTotal atomic.Uint64

	matchDuration = newHistogram([]float64{5, 25, 100, 250, 500, 1000, 2500, 5000, 10000, 20000, 30000})
)

// IncMatchRequests counts a match request that passed validation.
func IncMatchRequests() {
	matchRequestsTotal.Add(1)
}

// IncMatchCacheHits counts a request answered from the result cache.
func IncMatchCacheHits() {
	matchCacheHitsTotal.Add(1)
}

// IncMatchSource counts a computed result by provenance ("ai" or "fallback").
func IncMatchSource(source string) {
	if source == "ai" {
		matchAITotal.Add(1)
		return
	}
	matchFallbackTotal.Add(1)
}

// IncMatchPersistFailed counts a result that could not be written to the result log.
func IncMatchPersistFailed() {
	matchPersistFailedTotal.Add(1)
}

// ObserveMatchDurationMs records a match duration in milliseconds.
func ObserveMatchDurationMs(value float64) {
	if value < 0 {
		value = 0
	}
	matchDuration.Observe(value)
}

// Handler exposes metrics in Prometheus text format.
func Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Content-Type", "text/plain; version=0.0.4")
		c.String(http.StatusOK, Render())
	}
}

// Render renders metrics in Prometheus text format.
func Render() string {
	var buf bytes.Buffer
	writeCounter(&buf, "match_requests_total", "Match requests accepted", matchRequestsTotal.Load())
	writeCounter(&buf, "match_cache_hits_total", "Match requests served from cache", matchCacheHitsTotal.Load())
	writeCounter(&buf, "match_ai_total", "Match results sourced from the AI provider", matchAITotal.Load())
	writeCounter(&buf, "match_fallback_total", "Match results sourced from the local scorer", matchFallbackTotal.Load())
	writeCounter(&buf, "match_persist_failed_total", "Match results that failed to persist", matchPersistFailedTotal.Load())
	writeHistogram(&buf, "match_duration_ms", "Match duration in milliseconds", matchDuration.Snapshot())
	return buf.String()
}

type histogram struct {
	mu      sync.Mutex
	buckets []float64
	counts  []uint64
	sum     float64
	count   uint64
}

type histogramSnapshot struct {
	buckets []float64
	counts  []uint64
	sum     float64
	count   uint64
}

func newHistogram(buckets []float64) *histogram {
	return &histogram{
		buckets: buckets,
		counts:  make([]uint64, len(buckets)),
	}
}

func (h *histogram) Observe(value float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.count++
	h.sum += value
	for i, bound := range h.buckets {
		if value <= bound {
			h.counts[i]++
			break
		}
	}
}

func (h *histogram) Snapshot() histogramSnapshot {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := histogramSnapshot{
		buckets: append([]float64(nil), h.buckets...),
		counts:  append([]uint64(nil), h.counts...),
		sum:     h.sum,
		count:   h.count,
	}
	return out
}

func writeCounter(buf *bytes.Buffer, name, help string, value uint64) {
	fmt.Fprintf(buf, "# HELP %s %s\n", name, help)
	fmt.Fprintf(buf, "# TYPE %s counter\n", name)
	fmt.Fprintf(buf, "%s %d\n", name, value)
}

func writeHistogram(buf *bytes.Buffer, name, help string, snap histogramSnapshot) {
	fmt.Fprintf(buf, "# HELP %s %s\n", name, help)
	fmt.Fprintf(buf, "# TYPE %s histogram\n", name)
	var cumulative uint64
	for i, bound := range snap.buckets {
		cumulative += snap.counts[i]
		fmt.Fprintf(buf, "%s_bucket{le=\"%s\"} %d\n", name, formatFloat(bound), cumulative)
	}
	fmt.Fprintf(buf, "%s_bucket{le=\"+Inf\"} %d\n", name, snap.count)
	fmt.Fprintf(buf, "%s_sum %s\n", name, formatFloat(snap.sum))
	fmt.Fprintf(buf, "%s_count %d\n", name, snap.count)
}

func formatFloat(value float64) string {
	if value == float64(int64(value)) {
		return strconv.FormatInt(int64(value), 10)
	}
	return strconv.FormatFloat(value, 'f', -1, 64)
}
