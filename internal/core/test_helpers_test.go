package core

import (
	"context"
	"fmt"
	"testing"
	"time"

	"labworks/internal/infra/persistence/memory"
	"labworks/pkg/domain"
)

type captureLogger struct{ calls []string }

func (c *captureLogger) Debug(msg string, _ ...any) { c.calls = append(c.calls, "d:"+msg) }
func (c *captureLogger) Info(msg string, _ ...any)  { c.calls = append(c.calls, "i:"+msg) }
func (c *captureLogger) Warn(msg string, _ ...any)  { c.calls = append(c.calls, "w:"+msg) }
func (c *captureLogger) Error(msg string, _ ...any) { c.calls = append(c.calls, "e:"+msg) }

func (c *captureLogger) count(prefix string) int {
	n := 0
	for _, call := range c.calls {
		if len(call) >= len(prefix) && call[:len(prefix)] == prefix {
			n++
		}
	}
	return n
}

type captureAuditRecorder struct {
	entries []AuditEntry
}

func (c *captureAuditRecorder) Record(_ context.Context, entry AuditEntry) {
	c.entries = append(c.entries, entry)
}

func (c *captureAuditRecorder) has(op string, status AuditStatus, predicate func(AuditEntry) bool) bool {
	for _, entry := range c.entries {
		if entry.Operation == op && entry.Status == status {
			if predicate == nil || predicate(entry) {
				return true
			}
		}
	}
	return false
}

type metricsCall struct {
	op      string
	success bool
}

type captureMetricsRecorder struct {
	calls []metricsCall
}

func (c *captureMetricsRecorder) Observe(_ context.Context, op string, success bool, _ time.Duration) {
	c.calls = append(c.calls, metricsCall{op: op, success: success})
}

func (c *captureMetricsRecorder) has(op string, success bool) bool {
	for _, call := range c.calls {
		if call.op == op && call.success == success {
			return true
		}
	}
	return false
}

type captureTracer struct {
	ended map[string][]error
}

func (c *captureTracer) Start(ctx context.Context, op string) (context.Context, TraceSpan) {
	return ctx, captureSpan{tracer: c, op: op}
}

type captureSpan struct {
	tracer *captureTracer
	op     string
}

func (s captureSpan) End(err error) {
	if s.tracer.ended == nil {
		s.tracer.ended = make(map[string][]error)
	}
	s.tracer.ended[s.op] = append(s.tracer.ended[s.op], err)
}

// newTestService returns a service over a memory store with sequential ids
// ("id-1", "id-2", ...) and a fixed clock.
func newTestService(t *testing.T, opts ...ServiceOption) (*Service, *memory.Store) {
	t.Helper()
	store := NewMemoryStore(NewDefaultRulesEngine())
	n := 0
	store.SetIDGenerator(func() (string, error) {
		n++
		return fmt.Sprintf("id-%d", n), nil
	})
	fixed := time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)
	opts = append([]ServiceOption{WithClock(ClockFunc(func() time.Time { return fixed }))}, opts...)
	return NewService(store, opts...), store
}

func mustKeyboard(t *testing.T) Keyboard {
	t.Helper()
	k, err := domain.NewKeyboard(103, domain.SwitchRed, true)
	if err != nil {
		t.Fatalf("keyboard: %v", err)
	}
	return k
}

func mustSample(t *testing.T, volume float64) Sample {
	t.Helper()
	s, err := domain.NewSample(volume, "tantalum")
	if err != nil {
		t.Fatalf("sample: %v", err)
	}
	return s
}

func mustCoffee(t *testing.T) Coffee {
	t.Helper()
	c, err := domain.NewCoffee(300, domain.SortArabica, false, true)
	if err != nil {
		t.Fatalf("coffee: %v", err)
	}
	return c
}

func mustBook(t *testing.T, id int, name string, pages int) Book {
	t.Helper()
	b, err := domain.NewBook(id, name, pages)
	if err != nil {
		t.Fatalf("book: %v", err)
	}
	return b
}
