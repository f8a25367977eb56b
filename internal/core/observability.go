package core

import (
	"context"
	"time"

	"labworks/pkg/domain"
)

// Logger is the structured logging surface used by the service. *slog.Logger
// satisfies it.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Clock supplies timestamps for audit entries and transactions.
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a function to Clock. A nil ClockFunc reports the system
// time; results are always UTC.
type ClockFunc func() time.Time

// Now implements Clock.
func (f ClockFunc) Now() time.Time {
	if f == nil {
		return time.Now().UTC()
	}
	return f().UTC()
}

// AuditStatus records whether an audited operation succeeded.
type AuditStatus string

const (
	AuditStatusSuccess AuditStatus = "success"
	AuditStatusError   AuditStatus = "error"
)

// AuditEntry describes one completed service operation.
type AuditEntry struct {
	Operation string
	Entity    EntityType
	Action    Action
	EntityID  string
	Status    AuditStatus
	Error     string
	Duration  time.Duration
	Timestamp time.Time
}

// AuditRecorder receives an entry for each audited operation.
type AuditRecorder interface {
	Record(ctx context.Context, entry AuditEntry)
}

type noopAuditRecorder struct{}

func (noopAuditRecorder) Record(context.Context, AuditEntry) {}

// MetricsRecorder observes operation outcomes and latencies.
type MetricsRecorder interface {
	Observe(ctx context.Context, operation string, success bool, duration time.Duration)
}

type noopMetricsRecorder struct{}

func (noopMetricsRecorder) Observe(context.Context, string, bool, time.Duration) {}

// Tracer starts a span per service operation.
type Tracer interface {
	Start(ctx context.Context, operation string) (context.Context, TraceSpan)
}

// TraceSpan is ended once with the operation's error, if any.
type TraceSpan interface {
	End(err error)
}

type noopTracer struct{}

func (noopTracer) Start(ctx context.Context, _ string) (context.Context, TraceSpan) {
	return ctx, noopSpan{}
}

type noopSpan struct{}

func (noopSpan) End(error) {}

// LoggerNotifier routes coffee announcements to a Logger at info level.
type LoggerNotifier struct {
	Logger Logger
}

var _ domain.Notifier = LoggerNotifier{}

// Notify implements domain.Notifier.
func (n LoggerNotifier) Notify(msg string) {
	if n.Logger == nil {
		return
	}
	n.Logger.Info(msg, "entity", EntityCoffee)
}

// auditTargets maps audited operations to the entity and action they touch.
// Operations missing here are not audited.
var auditTargets = map[string]struct {
	entity EntityType
	action Action
}{
	"create_keyboard":        {EntityKeyboard, ActionCreate},
	"switch_backlight":       {EntityKeyboard, ActionUpdate},
	"create_sample":          {EntitySample, ActionCreate},
	"add_water_to_sample":    {EntitySample, ActionUpdate},
	"add_material_to_sample": {EntitySample, ActionUpdate},
	"create_coffee":          {EntityCoffee, ActionCreate},
	"add_sugar":              {EntityCoffee, ActionUpdate},
	"add_milk":               {EntityCoffee, ActionUpdate},
	"create_plant":           {EntityPlant, ActionCreate},
	"create_araucaria":       {EntityAraucaria, ActionCreate},
	"create_fittonia":        {EntityFittonia, ActionCreate},
	"add_fertilizer":         {EntityPlant, ActionUpdate},
	"water_araucaria":        {EntityAraucaria, ActionUpdate},
	"prune_fittonia":         {EntityFittonia, ActionUpdate},
	"add_book":               {EntityBook, ActionCreate},
	"append_book":            {EntityBook, ActionCreate},
	"delete_record":          {"", ActionDelete},
}
