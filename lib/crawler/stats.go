package crawler

import (
	"context"
	"maps"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

var meter = otel.Meter("lib/crawler")
var requestCounter, _ = meter.Int64Counter("crawler.requests")
var responseCounter, _ = meter.Int64Counter("crawler.responses")
var itemCounter, _ = meter.Int64Counter("crawler.items")

type Stats struct {
	RequestCount      int64
	ResponseCount     int64
	ItemCount         int64
	ErrorCount        int64
	PipelineErrors    int64
	DroppedDuplicates int64
	StatusCounts      map[int]int64
}

func (s Stats) Status(code int) int64 {
	return s.StatusCounts[code]
}

type statsCollector struct {
	spider string

	mu    sync.Mutex
	stats Stats
}

func newStatsCollector() *statsCollector {
	return &statsCollector{stats: Stats{StatusCounts: map[int]int64{}}}
}

func (c *statsCollector) attrs() metric.MeasurementOption {
	return metric.WithAttributes(attribute.String("spider", c.spider))
}

func (c *statsCollector) request(ctx context.Context) {
	c.mu.Lock()
	c.stats.RequestCount++
	c.mu.Unlock()
	requestCounter.Add(ctx, 1, c.attrs())
}

func (c *statsCollector) response(ctx context.Context, status int) {
	c.mu.Lock()
	c.stats.ResponseCount++
	c.stats.StatusCounts[status]++
	c.mu.Unlock()
	responseCounter.Add(ctx, 1, c.attrs(), metric.WithAttributes(attribute.Int("status", status)))
}

func (c *statsCollector) item(ctx context.Context) {
	c.mu.Lock()
	c.stats.ItemCount++
	c.mu.Unlock()
	itemCounter.Add(ctx, 1, c.attrs())
}

func (c *statsCollector) fetchError() {
	c.mu.Lock()
	c.stats.ErrorCount++
	c.mu.Unlock()
}

func (c *statsCollector) pipelineError() {
	c.mu.Lock()
	c.stats.PipelineErrors++
	c.mu.Unlock()
}

func (c *statsCollector) duplicate() {
	c.mu.Lock()
	c.stats.DroppedDuplicates++
	c.mu.Unlock()
}

func (c *statsCollector) snapshot() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := c.stats
	out.StatusCounts = maps.Clone(c.stats.StatusCounts)
	return out
}
