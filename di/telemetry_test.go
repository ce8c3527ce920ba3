package di

import (
	"context"
	"testing"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/kbukum/simpleioc/logger"
)

func newInstrumentedRegistry(t *testing.T) (*Registry, *tracetest.SpanRecorder, *sdkmetric.ManualReader) {
	t.Helper()
	spans := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(spans))
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() {
		_ = tp.Shutdown(context.Background())
		_ = mp.Shutdown(context.Background())
	})

	r := NewRegistry(
		WithLogger(logger.Nop()),
		WithTracerProvider(tp),
		WithMeterProvider(mp),
	)
	return r, spans, reader
}

func spanAttr(s sdktrace.ReadOnlySpan, key string) attribute.Value {
	for _, kv := range s.Attributes() {
		if string(kv.Key) == key {
			return kv.Value
		}
	}
	return attribute.Value{}
}

func TestResolveSpansFollowInjectionPath(t *testing.T) {
	r, spans, _ := newInstrumentedRegistry(t)
	_ = Register[*serviceB](r, newServiceB)
	_ = Register[*serviceC](r, newServiceC)

	if _, err := GetInstance[*serviceB](r, ""); err != nil {
		t.Fatalf("GetInstance failed: %v", err)
	}

	ended := spans.Ended()
	if len(ended) != 2 {
		t.Fatalf("expected 2 spans, got %d", len(ended))
	}
	child, parent := ended[0], ended[1]
	if spanAttr(child, "di.contract").AsString() != "*di.serviceC" {
		t.Errorf("unexpected child contract %q", spanAttr(child, "di.contract").AsString())
	}
	if child.Parent().SpanID() != parent.SpanContext().SpanID() {
		t.Error("expected dependency span nested under its dependent")
	}
	if spanAttr(parent, "di.outcome").AsString() != "created" {
		t.Errorf("unexpected outcome %q", spanAttr(parent, "di.outcome").AsString())
	}

	_, _ = GetInstance[*serviceB](r, "")
	last := spans.Ended()[2]
	if spanAttr(last, "di.outcome").AsString() != "hit" {
		t.Errorf("expected cache hit, got %q", spanAttr(last, "di.outcome").AsString())
	}
}

func TestResolveSpanRecordsError(t *testing.T) {
	r, spans, _ := newInstrumentedRegistry(t)

	if _, err := GetInstance[*Clock](r, "missing"); err == nil {
		t.Fatal("expected error")
	}
	ended := spans.Ended()
	if len(ended) != 1 {
		t.Fatalf("expected 1 span, got %d", len(ended))
	}
	if ended[0].Status().Code != codes.Error {
		t.Errorf("expected error status, got %v", ended[0].Status())
	}
	if spanAttr(ended[0], "di.key").AsString() != "missing" {
		t.Errorf("unexpected key attribute %q", spanAttr(ended[0], "di.key").AsString())
	}
}

func TestCounters(t *testing.T) {
	r, _, reader := newInstrumentedRegistry(t)
	calls := 0
	_ = RegisterFactory(r, clockFactory(&calls), WithKey("a"))
	_ = RegisterFactory(r, clockFactory(&calls), WithKey("b"))
	_, _ = GetInstance[*Clock](r, "a")
	_, _ = GetInstance[*Clock](r, "a")

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("Collect failed: %v", err)
	}

	totals := make(map[string]int64)
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			sum, ok := m.Data.(metricdata.Sum[int64])
			if !ok {
				continue
			}
			for _, dp := range sum.DataPoints {
				totals[m.Name] += dp.Value
			}
		}
	}

	if totals["di.registrations"] != 2 {
		t.Errorf("expected 2 registrations, got %d", totals["di.registrations"])
	}
	if totals["di.resolutions"] != 2 {
		t.Errorf("expected 2 resolutions, got %d", totals["di.resolutions"])
	}
}

func TestNoopTelemetryByDefault(t *testing.T) {
	r := newTestRegistry()
	_ = Register[*Clock](r, newClock)
	if _, err := GetInstance[*Clock](r, ""); err != nil {
		t.Fatalf("GetInstance failed: %v", err)
	}
}
