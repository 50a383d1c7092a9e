package ports

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// OTelMetrics implements Metrics on an OpenTelemetry meter. Instruments are
// created lazily per name and cached for reuse.
type OTelMetrics struct {
	meter metric.Meter

	mu       sync.Mutex
	counters map[string]metric.Int64Counter
	timers   map[string]metric.Float64Histogram
}

// NewOTelMetrics creates a metrics sink backed by the given meter.
func NewOTelMetrics(meter metric.Meter) *OTelMetrics {
	return &OTelMetrics{
		meter:    meter,
		counters: make(map[string]metric.Int64Counter),
		timers:   make(map[string]metric.Float64Histogram),
	}
}

// Incr increments the named counter by one.
func (m *OTelMetrics) Incr(name string, tags map[string]string) {
	m.mu.Lock()
	counter, ok := m.counters[name]
	if !ok {
		c, err := m.meter.Int64Counter(name)
		if err != nil {
			m.mu.Unlock()
			return
		}
		m.counters[name] = c
		counter = c
	}
	m.mu.Unlock()

	counter.Add(context.Background(), 1, metric.WithAttributes(tagAttributes(tags)...))
}

// Timing records a duration in milliseconds on the named histogram.
func (m *OTelMetrics) Timing(name string, ms float64, tags map[string]string) {
	m.mu.Lock()
	timer, ok := m.timers[name]
	if !ok {
		h, err := m.meter.Float64Histogram(name, metric.WithUnit("ms"))
		if err != nil {
			m.mu.Unlock()
			return
		}
		m.timers[name] = h
		timer = h
	}
	m.mu.Unlock()

	timer.Record(context.Background(), ms, metric.WithAttributes(tagAttributes(tags)...))
}

func tagAttributes(tags map[string]string) []attribute.KeyValue {
	attrs := make([]attribute.KeyValue, 0, len(tags))
	for k, v := range tags {
		attrs = append(attrs, attribute.String(k, v))
	}
	return attrs
}

// NopMetrics discards all measurements.
type NopMetrics struct{}

// NewNopMetrics creates a metrics sink that drops everything.
func NewNopMetrics() *NopMetrics {
	return &NopMetrics{}
}

func (*NopMetrics) Incr(string, map[string]string)            {}
func (*NopMetrics) Timing(string, float64, map[string]string) {}
