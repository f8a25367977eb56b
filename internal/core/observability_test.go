package core

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"expvar"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"labworks/pkg/domain"
)

func TestNoopImplementations(t *testing.T) {
	var logger noopLogger
	logger.Debug("noop")
	logger.Info("noop")
	logger.Warn("noop")
	logger.Error("noop")

	var audit noopAuditRecorder
	audit.Record(context.Background(), AuditEntry{})

	var metrics noopMetricsRecorder
	metrics.Observe(context.Background(), "noop", true, 0)

	ctx, span := noopTracer{}.Start(context.Background(), "op")
	if ctx == nil {
		t.Fatalf("expected context from tracer")
	}
	span.End(nil)
}

func TestClockFunc(t *testing.T) {
	if got := ClockFunc(nil).Now(); got.IsZero() || got.Location() != time.UTC {
		t.Fatalf("expected non-zero UTC time, got %v", got)
	}
	expected := time.Date(2024, 7, 4, 12, 34, 56, 0, time.FixedZone("offset", -5*3600))
	if got := ClockFunc(func() time.Time { return expected }).Now(); !got.Equal(expected) || got.Location() != time.UTC {
		t.Fatalf("expected %s in UTC, got %s", expected.UTC(), got)
	}
}

type bareStore struct{ PersistentStore }

func TestSelectNowFunc(t *testing.T) {
	storeTime := time.Date(2025, 1, 2, 3, 4, 5, 0, time.FixedZone("cet", 3600))
	store := NewMemoryStore(nil)
	store.SetNowFunc(func() time.Time { return storeTime })
	if got := selectNowFunc(store, nil)(); !got.Equal(storeTime) || got.Location() != time.UTC {
		t.Fatalf("expected store time in UTC, got %s", got)
	}

	clockTime := time.Date(2030, 5, 6, 7, 8, 9, 0, time.UTC)
	if got := selectNowFunc(bareStore{}, ClockFunc(func() time.Time { return clockTime }))(); !got.Equal(clockTime) {
		t.Fatalf("expected clock fallback, got %s", got)
	}
	if got := selectNowFunc(bareStore{}, nil)(); time.Since(got) > time.Second || got.Location() != time.UTC {
		t.Fatalf("expected current UTC time, got %s", got)
	}
	if extractRulesEngine(bareStore{}) != nil {
		t.Fatalf("expected nil engine for stores without provider")
	}
	engine := NewRulesEngine()
	if extractRulesEngine(NewMemoryStore(engine)) != engine {
		t.Fatalf("expected engine pointer")
	}
}

func TestLoggerNotifier(t *testing.T) {
	log := &captureLogger{}
	c := mustCoffee(t)
	c.SetNotifier(LoggerNotifier{Logger: log})
	if err := c.AddMilk(10); err != nil {
		t.Fatalf("add milk: %v", err)
	}
	if len(log.calls) != 1 || log.calls[0] != "i:Adding milk..." {
		t.Fatalf("unexpected log calls %v", log.calls)
	}
	LoggerNotifier{}.Notify("dropped")
	var _ domain.Notifier = LoggerNotifier{}
}

func TestExpvarMetricsRecorder(t *testing.T) {
	rec := NewExpvarMetricsRecorder("")
	if !strings.HasPrefix(rec.Name(), "labworks_bench_metrics_") {
		t.Fatalf("unexpected generated name %s", rec.Name())
	}
	ctx := context.Background()
	rec.Observe(ctx, "add_sugar", true, 2*time.Millisecond)
	rec.Observe(ctx, "add_sugar", false, 3*time.Millisecond)
	rec.Observe(ctx, "", true, time.Second)

	snap := rec.Snapshot()
	if snap.DurationsMS["add_sugar"] != 5 {
		t.Fatalf("expected 5ms total, got %v", snap.DurationsMS["add_sugar"])
	}
	if snap.Results["add_sugar"]["success"] != 1 || snap.Results["add_sugar"]["error"] != 1 {
		t.Fatalf("unexpected results %+v", snap.Results)
	}
	if len(snap.Results) != 1 {
		t.Fatalf("empty operation must be ignored")
	}
	snap.Results["add_sugar"]["success"] = 99
	if rec.Snapshot().Results["add_sugar"]["success"] != 1 {
		t.Fatalf("snapshot must be a copy")
	}

	published := expvar.Get(rec.Name())
	if published == nil {
		t.Fatalf("expected expvar publication")
	}
	var decoded ExpvarMetricsSnapshot
	if err := json.Unmarshal([]byte(published.String()), &decoded); err != nil {
		t.Fatalf("decode expvar: %v", err)
	}
	if decoded.Results["add_sugar"]["error"] != 1 {
		t.Fatalf("unexpected published value %+v", decoded)
	}
}

func TestPrometheusMetricsRecorder(t *testing.T) {
	reg := prometheus.NewRegistry()
	rec, err := NewPrometheusMetricsRecorder(reg)
	if err != nil {
		t.Fatalf("new recorder: %v", err)
	}
	ctx := context.Background()
	rec.Observe(ctx, "create_sample", true, 10*time.Millisecond)
	rec.Observe(ctx, "create_sample", true, 20*time.Millisecond)
	rec.Observe(ctx, "create_sample", false, time.Millisecond)
	rec.Observe(ctx, "", true, time.Millisecond)

	if got := testutil.ToFloat64(rec.total.WithLabelValues("create_sample", "success")); got != 2 {
		t.Fatalf("expected 2 successes, got %v", got)
	}
	if got := testutil.ToFloat64(rec.total.WithLabelValues("create_sample", "error")); got != 1 {
		t.Fatalf("expected 1 error, got %v", got)
	}
	if n := testutil.CollectAndCount(rec.latency, "labworks_bench_operation_duration_seconds"); n != 1 {
		t.Fatalf("expected one latency series, got %d", n)
	}
	if _, err := NewPrometheusMetricsRecorder(reg); err == nil {
		t.Fatalf("expected duplicate registration error")
	}
}

func TestMultiMetricsRecorder(t *testing.T) {
	a, b := &captureMetricsRecorder{}, &captureMetricsRecorder{}
	MultiMetricsRecorder{a, b}.Observe(context.Background(), "op", true, 0)
	if !a.has("op", true) || !b.has("op", true) {
		t.Fatalf("expected fan-out to both recorders")
	}
}

func TestJSONTraceTracer(t *testing.T) {
	var buf bytes.Buffer
	tracer := NewJSONTracer(&buf)
	_, span := tracer.Start(context.Background(), "add_book")
	span.End(nil)
	_, span = tracer.Start(context.Background(), "delete_record")
	span.End(errors.New("boom"))

	entries := tracer.Entries()
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].Status != "success" || entries[1].Status != "error" || entries[1].Error != "boom" {
		t.Fatalf("unexpected entries %+v", entries)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 json lines, got %q", buf.String())
	}
	var first JSONTraceEntry
	if err := json.Unmarshal([]byte(lines[0]), &first); err != nil || first.Operation != "add_book" {
		t.Fatalf("unexpected first line %q %v", lines[0], err)
	}

	silent := NewJSONTracer(nil)
	_, span = silent.Start(context.Background(), "op")
	span.End(nil)
	if len(silent.Entries()) != 1 {
		t.Fatalf("expected retained span without writer")
	}
}
