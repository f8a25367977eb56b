package core

import (
	"context"
	"fmt"
	"time"

	"labworks/pkg/domain"
)

// Record pairs a stored bench value with its id and bucket.
type Record[T any] struct {
	ID    string     `json:"id"`
	Kind  EntityType `json:"kind"`
	Value T          `json:"value"`
}

// Service exposes transactional bench operations over a PersistentStore.
type Service struct {
	store    PersistentStore
	engine   *RulesEngine
	clock    Clock
	now      func() time.Time
	logger   Logger
	audit    AuditRecorder
	metrics  MetricsRecorder
	tracer   Tracer
	notifier domain.Notifier
}

// ServiceOption customises a Service.
type ServiceOption func(*Service)

// WithLogger sets the operation logger; nil keeps the no-op logger.
func WithLogger(l Logger) ServiceOption {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithAuditRecorder sets the audit sink.
func WithAuditRecorder(r AuditRecorder) ServiceOption {
	return func(s *Service) {
		if r != nil {
			s.audit = r
		}
	}
}

// WithMetricsRecorder sets the metrics sink.
func WithMetricsRecorder(m MetricsRecorder) ServiceOption {
	return func(s *Service) {
		if m != nil {
			s.metrics = m
		}
	}
}

// WithTracer sets the span tracer.
func WithTracer(t Tracer) ServiceOption {
	return func(s *Service) {
		if t != nil {
			s.tracer = t
		}
	}
}

// WithClock overrides the time source. Stores exposing SetNowFunc adopt it
// for transaction timestamps too.
func WithClock(c Clock) ServiceOption {
	return func(s *Service) { s.clock = c }
}

// WithNotifier sets where coffee announcements go. The default routes them
// to the service logger.
func WithNotifier(n domain.Notifier) ServiceOption {
	return func(s *Service) { s.notifier = n }
}

// NewService constructs a service backed by store.
func NewService(store PersistentStore, opts ...ServiceOption) *Service {
	s := &Service{
		store:   store,
		logger:  noopLogger{},
		audit:   noopAuditRecorder{},
		metrics: noopMetricsRecorder{},
		tracer:  noopTracer{},
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.clock != nil {
		if setter, ok := store.(interface{ SetNowFunc(func() time.Time) }); ok {
			setter.SetNowFunc(s.clock.Now)
		}
	}
	if s.notifier == nil {
		s.notifier = LoggerNotifier{Logger: s.logger}
	}
	s.engine = extractRulesEngine(store)
	s.now = selectNowFunc(store, s.clock)
	return s
}

// NewInMemoryService creates a service over a fresh in-memory store. A nil
// engine selects NewDefaultRulesEngine.
func NewInMemoryService(engine *RulesEngine, opts ...ServiceOption) *Service {
	if engine == nil {
		engine = NewDefaultRulesEngine()
	}
	return NewService(NewMemoryStore(engine), opts...)
}

// Store returns the underlying storage implementation.
func (s *Service) Store() PersistentStore { return s.store }

// RulesEngine returns the store's engine, or nil when the store hides it.
func (s *Service) RulesEngine() *RulesEngine { return s.engine }

func extractRulesEngine(store PersistentStore) *RulesEngine {
	if p, ok := store.(interface{ RulesEngine() *RulesEngine }); ok {
		return p.RulesEngine()
	}
	return nil
}

func selectNowFunc(store PersistentStore, clock Clock) func() time.Time {
	if p, ok := store.(interface{ NowFunc() func() time.Time }); ok {
		if fn := p.NowFunc(); fn != nil {
			return func() time.Time { return fn().UTC() }
		}
	}
	if clock != nil {
		return clock.Now
	}
	return func() time.Time { return time.Now().UTC() }
}

type auditRef struct {
	entity EntityType
	id     string
}

// observe wraps fn with tracing, metrics, logging and audit.
func (s *Service) observe(ctx context.Context, op string, fn func(context.Context) (auditRef, error)) error {
	ctx, span := s.tracer.Start(ctx, op)
	start := time.Now()
	ref, err := fn(ctx)
	elapsed := time.Since(start)
	s.metrics.Observe(ctx, op, err == nil, elapsed)
	span.End(err)
	if err != nil {
		s.logger.Error("bench operation failed", "op", op, "id", ref.id, "error", err)
		s.recordAudit(ctx, op, ref, elapsed, err)
		return err
	}
	s.logger.Debug("bench operation completed", "op", op, "id", ref.id, "duration", elapsed)
	s.recordAudit(ctx, op, ref, elapsed, nil)
	return nil
}

// run executes fn in one store transaction under observe.
func (s *Service) run(ctx context.Context, op string, fn func(Transaction) (auditRef, error)) (Result, error) {
	var res Result
	err := s.observe(ctx, op, func(ctx context.Context) (auditRef, error) {
		var ref auditRef
		var err error
		res, err = s.store.RunInTransaction(ctx, func(tx Transaction) error {
			var ferr error
			ref, ferr = fn(tx)
			return ferr
		})
		return ref, err
	})
	for _, v := range res.Violations {
		if v.Severity == SeverityBlock {
			continue
		}
		s.logger.Warn("rule violation", "op", op, "rule", v.Rule, "severity", v.Severity, "entity", v.Entity, "id", v.EntityID, "message", v.Message)
	}
	return res, err
}

func (s *Service) recordAudit(ctx context.Context, op string, ref auditRef, elapsed time.Duration, err error) {
	target, ok := auditTargets[op]
	if !ok {
		return
	}
	entry := AuditEntry{
		Operation: op,
		Entity:    target.entity,
		Action:    target.action,
		EntityID:  ref.id,
		Status:    AuditStatusSuccess,
		Duration:  elapsed,
		Timestamp: s.now(),
	}
	if ref.entity != "" {
		entry.Entity = ref.entity
	}
	if err != nil {
		entry.Status = AuditStatusError
		entry.Error = err.Error()
	}
	s.audit.Record(ctx, entry)
}

func (s *Service) view(ctx context.Context, fn func(TransactionView) error) error {
	return s.store.View(ctx, fn)
}

// CreateKeyboard stores a validated keyboard.
func (s *Service) CreateKeyboard(ctx context.Context, k Keyboard) (Record[Keyboard], Result, error) {
	out := Record[Keyboard]{Kind: EntityKeyboard, Value: k}
	res, err := s.run(ctx, "create_keyboard", func(tx Transaction) (auditRef, error) {
		id, err := tx.CreateKeyboard(k)
		out.ID = id
		return auditRef{id: id}, err
	})
	return out, res, err
}

// SwitchBacklight turns the keyboard backlight on or off.
func (s *Service) SwitchBacklight(ctx context.Context, id string, on bool) (Record[Keyboard], Result, error) {
	out := Record[Keyboard]{ID: id, Kind: EntityKeyboard}
	res, err := s.run(ctx, "switch_backlight", func(tx Transaction) (auditRef, error) {
		var err error
		out.Value, err = tx.UpdateKeyboard(id, func(k *Keyboard) error {
			if on {
				k.BacklightOn()
			} else {
				k.BacklightOff()
			}
			return nil
		})
		return auditRef{id: id}, err
	})
	return out, res, err
}

// CreateSample stores a validated sample.
func (s *Service) CreateSample(ctx context.Context, sample Sample) (Record[Sample], Result, error) {
	out := Record[Sample]{Kind: EntitySample, Value: sample}
	res, err := s.run(ctx, "create_sample", func(tx Transaction) (auditRef, error) {
		id, err := tx.CreateSample(sample)
		out.ID = id
		return auditRef{id: id}, err
	})
	return out, res, err
}

// AddWaterToSample adds ml of water to a stored sample.
func (s *Service) AddWaterToSample(ctx context.Context, id string, ml float64) (Record[Sample], Result, error) {
	return s.updateSample(ctx, "add_water_to_sample", id, func(sm *Sample) error { return sm.AddWater(ml) })
}

// AddMaterialToSample adds ml of material to a stored sample.
func (s *Service) AddMaterialToSample(ctx context.Context, id string, ml float64) (Record[Sample], Result, error) {
	return s.updateSample(ctx, "add_material_to_sample", id, func(sm *Sample) error { return sm.AddMaterial(ml) })
}

func (s *Service) updateSample(ctx context.Context, op, id string, mutator func(*Sample) error) (Record[Sample], Result, error) {
	out := Record[Sample]{ID: id, Kind: EntitySample}
	res, err := s.run(ctx, op, func(tx Transaction) (auditRef, error) {
		var err error
		out.Value, err = tx.UpdateSample(id, mutator)
		return auditRef{id: id}, err
	})
	return out, res, err
}

// CreateCoffee stores a validated coffee.
func (s *Service) CreateCoffee(ctx context.Context, c Coffee) (Record[Coffee], Result, error) {
	out := Record[Coffee]{Kind: EntityCoffee, Value: c}
	res, err := s.run(ctx, "create_coffee", func(tx Transaction) (auditRef, error) {
		id, err := tx.CreateCoffee(c)
		out.ID = id
		return auditRef{id: id}, err
	})
	return out, res, err
}

// AddSugar adds grams of sugar to a stored coffee and announces it.
func (s *Service) AddSugar(ctx context.Context, id string, grams float64) (Record[Coffee], Result, error) {
	return s.updateCoffee(ctx, "add_sugar", id, func(c *Coffee) error { return c.AddSugar(grams) })
}

// AddMilk adds ml of milk to a stored coffee and announces it.
func (s *Service) AddMilk(ctx context.Context, id string, ml float64) (Record[Coffee], Result, error) {
	return s.updateCoffee(ctx, "add_milk", id, func(c *Coffee) error { return c.AddMilk(ml) })
}

func (s *Service) updateCoffee(ctx context.Context, op, id string, mutator func(*Coffee) error) (Record[Coffee], Result, error) {
	out := Record[Coffee]{ID: id, Kind: EntityCoffee}
	res, err := s.run(ctx, op, func(tx Transaction) (auditRef, error) {
		var err error
		out.Value, err = tx.UpdateCoffee(id, func(c *Coffee) error {
			c.SetNotifier(s.notifier)
			defer c.SetNotifier(nil)
			return mutator(c)
		})
		return auditRef{id: id}, err
	})
	return out, res, err
}

// CreatePlant stores a validated plain plant.
func (s *Service) CreatePlant(ctx context.Context, p Plant) (Record[Plant], Result, error) {
	out := Record[Plant]{Kind: EntityPlant, Value: p}
	res, err := s.run(ctx, "create_plant", func(tx Transaction) (auditRef, error) {
		id, err := tx.CreatePlant(p)
		out.ID = id
		return auditRef{id: id}, err
	})
	return out, res, err
}

// CreateAraucaria stores a validated araucaria.
func (s *Service) CreateAraucaria(ctx context.Context, a Araucaria) (Record[Araucaria], Result, error) {
	out := Record[Araucaria]{Kind: EntityAraucaria, Value: a}
	res, err := s.run(ctx, "create_araucaria", func(tx Transaction) (auditRef, error) {
		id, err := tx.CreateAraucaria(a)
		out.ID = id
		return auditRef{id: id}, err
	})
	return out, res, err
}

// CreateFittonia stores a validated fittonia.
func (s *Service) CreateFittonia(ctx context.Context, f Fittonia) (Record[Fittonia], Result, error) {
	out := Record[Fittonia]{Kind: EntityFittonia, Value: f}
	res, err := s.run(ctx, "create_fittonia", func(tx Transaction) (auditRef, error) {
		id, err := tx.CreateFittonia(f)
		out.ID = id
		return auditRef{id: id}, err
	})
	return out, res, err
}

// AddFertilizer fertilizes any stored plant kind. The returned record holds
// the shared plant attributes and the bucket the id was found in.
func (s *Service) AddFertilizer(ctx context.Context, id string, liters float64) (Record[Plant], Result, error) {
	out := Record[Plant]{ID: id}
	res, err := s.run(ctx, "add_fertilizer", func(tx Transaction) (auditRef, error) {
		kind, ok := tx.KindOf(id)
		if !ok {
			return auditRef{id: id}, domain.ErrNotFound{Entity: EntityPlant, ID: id}
		}
		out.Kind = kind
		ref := auditRef{entity: kind, id: id}
		switch kind {
		case EntityPlant:
			p, err := tx.UpdatePlant(id, func(p *Plant) error { return p.AddFertilizer(liters) })
			out.Value = p
			return ref, err
		case EntityAraucaria:
			a, err := tx.UpdateAraucaria(id, func(a *Araucaria) error { return a.AddFertilizer(liters) })
			out.Value = a.Plant
			return ref, err
		case EntityFittonia:
			f, err := tx.UpdateFittonia(id, func(f *Fittonia) error { return f.AddFertilizer(liters) })
			out.Value = f.Plant
			return ref, err
		default:
			return ref, domain.ErrNotFound{Entity: EntityPlant, ID: id}
		}
	})
	return out, res, err
}

// WaterAraucaria applies Watering with the caller's need flag.
func (s *Service) WaterAraucaria(ctx context.Context, id string, liters float64, need bool) (Record[Araucaria], Result, error) {
	out := Record[Araucaria]{ID: id, Kind: EntityAraucaria}
	res, err := s.run(ctx, "water_araucaria", func(tx Transaction) (auditRef, error) {
		var err error
		out.Value, err = tx.UpdateAraucaria(id, func(a *Araucaria) error { return a.Watering(liters, need) })
		return auditRef{id: id}, err
	})
	return out, res, err
}

// PruneFittonia applies Pruning, which leaves the plant as it is.
func (s *Service) PruneFittonia(ctx context.Context, id string, need bool) (Record[Fittonia], Result, error) {
	out := Record[Fittonia]{ID: id, Kind: EntityFittonia}
	res, err := s.run(ctx, "prune_fittonia", func(tx Transaction) (auditRef, error) {
		var err error
		out.Value, err = tx.UpdateFittonia(id, func(f *Fittonia) error {
			f.Pruning(need)
			return nil
		})
		return auditRef{id: id}, err
	})
	return out, res, err
}

// AddBook creates a book with the library's next id.
func (s *Service) AddBook(ctx context.Context, name string, pages int) (Book, Result, error) {
	var book Book
	res, err := s.run(ctx, "add_book", func(tx Transaction) (auditRef, error) {
		var err error
		book, err = tx.AddBook(name, pages)
		if err != nil {
			return auditRef{}, err
		}
		return auditRef{id: fmt.Sprint(book.ID())}, nil
	})
	return book, res, err
}

// AppendBook appends a caller-built book, keeping its id.
func (s *Service) AppendBook(ctx context.Context, book Book) (Result, error) {
	return s.run(ctx, "append_book", func(tx Transaction) (auditRef, error) {
		return auditRef{id: fmt.Sprint(book.ID())}, tx.AppendBook(book)
	})
}

// Library returns a copy of the stored library.
func (s *Service) Library(ctx context.Context) (Library, error) {
	var lib Library
	err := s.view(ctx, func(v TransactionView) error {
		lib = v.Library()
		return nil
	})
	return lib, err
}

// NextBookID returns the id AddBook would assign.
func (s *Service) NextBookID(ctx context.Context) (int, error) {
	lib, err := s.Library(ctx)
	if err != nil {
		return 0, err
	}
	return lib.NextBookID(), nil
}

// BookIndex returns the library position of the first book with id.
func (s *Service) BookIndex(ctx context.Context, id int) (int, error) {
	lib, err := s.Library(ctx)
	if err != nil {
		return 0, err
	}
	return lib.IndexByBookID(id)
}

// Delete removes a record from the named bucket.
func (s *Service) Delete(ctx context.Context, entity EntityType, id string) (Result, error) {
	return s.run(ctx, "delete_record", func(tx Transaction) (auditRef, error) {
		return auditRef{entity: entity, id: id}, tx.Delete(entity, id)
	})
}

// Snapshot returns a copy of the whole bench.
func (s *Service) Snapshot(ctx context.Context) (Snapshot, error) {
	var snap Snapshot
	err := s.view(ctx, func(v TransactionView) error {
		snap = v.Export()
		return nil
	})
	return snap, err
}
