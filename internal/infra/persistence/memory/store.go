// Package memory provides an in-memory implementation of the bench
// persistence store used for tests and ephemeral environments.
package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	gonanoid "github.com/matoous/go-nanoid"

	"labworks/pkg/domain"
)

// Compile-time contract assertions ensuring memory.Store adheres to the domain persistence interfaces.
var _ domain.PersistentStore = (*Store)(nil)

type (
	// Change aliases domain.Change captured in transactions.
	Change = domain.Change
	// Result aliases domain.Result summarizing rule evaluation.
	Result = domain.Result
	// RulesEngine aliases domain.RulesEngine used to evaluate rules.
	RulesEngine = domain.RulesEngine
	// Transaction aliases domain.Transaction representing a mutable unit of work.
	Transaction = domain.Transaction
	// TransactionView aliases domain.TransactionView providing read-only state.
	TransactionView = domain.TransactionView
	// Snapshot aliases domain.Snapshot, the exported store state.
	Snapshot = domain.Snapshot
)

const idAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

// IDLength is the length of generated record ids.
const IDLength = 16

// Store provides an in-memory transactional store for bench records.
type Store struct {
	mu     sync.RWMutex
	state  Snapshot
	engine *RulesEngine
	nowFn  func() time.Time
	idFn   func() (string, error)
}

// NewStore constructs an in-memory store backed by the provided rules engine.
func NewStore(engine *RulesEngine) *Store {
	if engine == nil {
		engine = domain.NewRulesEngine()
	}
	return &Store{
		state:  domain.NewSnapshot(),
		engine: engine,
		nowFn:  func() time.Time { return time.Now().UTC() },
		idFn:   func() (string, error) { return gonanoid.Generate(idAlphabet, IDLength) },
	}
}

// SetIDGenerator replaces the id generator; used by tests needing stable ids.
func (s *Store) SetIDGenerator(fn func() (string, error)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.idFn = fn
}

// ExportState clones the current store state for external persistence.
func (s *Store) ExportState() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Clone()
}

// ImportState replaces the store state with the provided snapshot.
func (s *Store) ImportState(snapshot Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = snapshot.Clone()
}

// RulesEngine exposes the currently configured engine.
func (s *Store) RulesEngine() *RulesEngine {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.engine
}

// NowFunc returns the time provider used by the in-memory store.
func (s *Store) NowFunc() func() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.nowFn
}

// SetNowFunc replaces the time provider.
func (s *Store) SetNowFunc(fn func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if fn != nil {
		s.nowFn = fn
	}
}

// RunInTransaction executes fn within a transactional copy of the store state.
// The copy is committed only when fn succeeds and no rule blocks.
func (s *Store) RunInTransaction(ctx context.Context, fn func(tx Transaction) error) (Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &transaction{
		store: s,
		state: s.state.Clone(),
		now:   s.nowFn(),
	}

	if err := fn(tx); err != nil {
		return Result{}, err
	}

	var result Result
	if s.engine != nil {
		res, err := s.engine.Evaluate(ctx, view{state: &tx.state}, tx.changes)
		if err != nil {
			return Result{}, err
		}
		result = res
		if res.HasBlocking() {
			return res, domain.RuleViolationError{Result: res}
		}
	}

	s.state = tx.state
	return result, nil
}

// View executes fn against a read-only snapshot of the store state.
func (s *Store) View(_ context.Context, fn func(TransactionView) error) error {
	s.mu.RLock()
	snapshot := s.state.Clone()
	s.mu.RUnlock()
	return fn(view{state: &snapshot})
}

// view exposes a read-only snapshot of a state to rules and readers.
type view struct {
	state *Snapshot
}

func (v view) Library() domain.Library {
	return domain.NewLibrary(v.state.Library.Books()...)
}

func (v view) FindKeyboard(id string) (domain.Keyboard, bool) {
	k, ok := v.state.Keyboards[id]
	return k, ok
}

func (v view) FindSample(id string) (domain.Sample, bool) {
	s, ok := v.state.Samples[id]
	return s, ok
}

func (v view) FindCoffee(id string) (domain.Coffee, bool) {
	c, ok := v.state.Coffees[id]
	return c, ok
}

func (v view) FindPlant(id string) (domain.Plant, bool) {
	p, ok := v.state.Plants[id]
	return p, ok
}

func (v view) FindAraucaria(id string) (domain.Araucaria, bool) {
	a, ok := v.state.Araucarias[id]
	return a, ok
}

func (v view) FindFittonia(id string) (domain.Fittonia, bool) {
	f, ok := v.state.Fittonias[id]
	return f, ok
}

func (v view) Export() Snapshot {
	return v.state.Clone()
}

type transaction struct {
	store   *Store
	state   Snapshot
	changes []Change
	now     time.Time
}

func (tx *transaction) recordChange(change Change) {
	tx.changes = append(tx.changes, change)
}

// Snapshot returns a read-only view over the transactional state.
func (tx *transaction) Snapshot() TransactionView {
	return view{state: &tx.state}
}

// Now returns the transaction timestamp.
func (tx *transaction) Now() time.Time { return tx.now }

// KindOf reports which bucket holds id.
func (tx *transaction) KindOf(id string) (domain.EntityType, bool) {
	return KindOf(tx.state, id)
}

// KindOf reports which bucket of state holds id.
func KindOf(state Snapshot, id string) (domain.EntityType, bool) {
	if _, ok := state.Keyboards[id]; ok {
		return domain.EntityKeyboard, true
	}
	if _, ok := state.Samples[id]; ok {
		return domain.EntitySample, true
	}
	if _, ok := state.Coffees[id]; ok {
		return domain.EntityCoffee, true
	}
	if _, ok := state.Plants[id]; ok {
		return domain.EntityPlant, true
	}
	if _, ok := state.Araucarias[id]; ok {
		return domain.EntityAraucaria, true
	}
	if _, ok := state.Fittonias[id]; ok {
		return domain.EntityFittonia, true
	}
	return "", false
}

func (tx *transaction) newID() (string, error) {
	for {
		id, err := tx.store.idFn()
		if err != nil {
			return "", fmt.Errorf("generate id: %w", err)
		}
		if _, taken := KindOf(tx.state, id); !taken {
			return id, nil
		}
	}
}

// insert stores v under a fresh id in bucket and records the change.
func insert[T any](tx *transaction, entity domain.EntityType, bucket map[string]T, v T) (string, error) {
	id, err := tx.newID()
	if err != nil {
		return "", err
	}
	bucket[id] = v
	tx.recordChange(Change{Entity: entity, Action: domain.ActionCreate, ID: id, After: v})
	return id, nil
}

// update applies mutator to a copy of the record; the bucket is only
// written when the mutator succeeds.
func update[T any](tx *transaction, entity domain.EntityType, bucket map[string]T, id string, mutator func(*T) error) (T, error) {
	var zero T
	current, ok := bucket[id]
	if !ok {
		return zero, domain.ErrNotFound{Entity: entity, ID: id}
	}
	before := current
	if err := mutator(&current); err != nil {
		return zero, err
	}
	bucket[id] = current
	tx.recordChange(Change{Entity: entity, Action: domain.ActionUpdate, ID: id, Before: before, After: current})
	return current, nil
}

func remove[T any](tx *transaction, entity domain.EntityType, bucket map[string]T, id string) error {
	current, ok := bucket[id]
	if !ok {
		return domain.ErrNotFound{Entity: entity, ID: id}
	}
	delete(bucket, id)
	tx.recordChange(Change{Entity: entity, Action: domain.ActionDelete, ID: id, Before: current})
	return nil
}

// CreateKeyboard stores a new keyboard within the transaction.
func (tx *transaction) CreateKeyboard(k domain.Keyboard) (string, error) {
	return insert(tx, domain.EntityKeyboard, tx.state.Keyboards, k)
}

// UpdateKeyboard mutates a keyboard using the provided mutator function.
func (tx *transaction) UpdateKeyboard(id string, mutator func(*domain.Keyboard) error) (domain.Keyboard, error) {
	return update(tx, domain.EntityKeyboard, tx.state.Keyboards, id, mutator)
}

// CreateSample stores a new sample within the transaction.
func (tx *transaction) CreateSample(s domain.Sample) (string, error) {
	return insert(tx, domain.EntitySample, tx.state.Samples, s)
}

// UpdateSample mutates a sample using the provided mutator function.
func (tx *transaction) UpdateSample(id string, mutator func(*domain.Sample) error) (domain.Sample, error) {
	return update(tx, domain.EntitySample, tx.state.Samples, id, mutator)
}

// CreateCoffee stores a new coffee within the transaction.
func (tx *transaction) CreateCoffee(c domain.Coffee) (string, error) {
	return insert(tx, domain.EntityCoffee, tx.state.Coffees, c)
}

// UpdateCoffee mutates a coffee using the provided mutator function.
func (tx *transaction) UpdateCoffee(id string, mutator func(*domain.Coffee) error) (domain.Coffee, error) {
	return update(tx, domain.EntityCoffee, tx.state.Coffees, id, mutator)
}

// CreatePlant stores a new plant within the transaction.
func (tx *transaction) CreatePlant(p domain.Plant) (string, error) {
	return insert(tx, domain.EntityPlant, tx.state.Plants, p)
}

// UpdatePlant mutates a plant using the provided mutator function.
func (tx *transaction) UpdatePlant(id string, mutator func(*domain.Plant) error) (domain.Plant, error) {
	return update(tx, domain.EntityPlant, tx.state.Plants, id, mutator)
}

// CreateAraucaria stores a new araucaria within the transaction.
func (tx *transaction) CreateAraucaria(a domain.Araucaria) (string, error) {
	return insert(tx, domain.EntityAraucaria, tx.state.Araucarias, a)
}

// UpdateAraucaria mutates an araucaria using the provided mutator function.
func (tx *transaction) UpdateAraucaria(id string, mutator func(*domain.Araucaria) error) (domain.Araucaria, error) {
	return update(tx, domain.EntityAraucaria, tx.state.Araucarias, id, mutator)
}

// CreateFittonia stores a new fittonia within the transaction.
func (tx *transaction) CreateFittonia(f domain.Fittonia) (string, error) {
	return insert(tx, domain.EntityFittonia, tx.state.Fittonias, f)
}

// UpdateFittonia mutates a fittonia using the provided mutator function.
func (tx *transaction) UpdateFittonia(id string, mutator func(*domain.Fittonia) error) (domain.Fittonia, error) {
	return update(tx, domain.EntityFittonia, tx.state.Fittonias, id, mutator)
}

// Delete removes a record from the bucket named by entity.
func (tx *transaction) Delete(entity domain.EntityType, id string) error {
	switch entity {
	case domain.EntityKeyboard:
		return remove(tx, entity, tx.state.Keyboards, id)
	case domain.EntitySample:
		return remove(tx, entity, tx.state.Samples, id)
	case domain.EntityCoffee:
		return remove(tx, entity, tx.state.Coffees, id)
	case domain.EntityPlant:
		return remove(tx, entity, tx.state.Plants, id)
	case domain.EntityAraucaria:
		return remove(tx, entity, tx.state.Araucarias, id)
	case domain.EntityFittonia:
		return remove(tx, entity, tx.state.Fittonias, id)
	default:
		return fmt.Errorf("delete: unsupported entity %q", entity)
	}
}

// AppendBook appends a caller-built book to the library.
func (tx *transaction) AppendBook(book domain.Book) error {
	tx.state.Library.Append(book)
	tx.recordChange(Change{Entity: domain.EntityBook, Action: domain.ActionCreate, ID: fmt.Sprint(book.ID()), After: book})
	return nil
}

// AddBook creates a book with the library's next id and appends it.
func (tx *transaction) AddBook(name string, pages int) (domain.Book, error) {
	book, err := tx.state.Library.AddBook(name, pages)
	if err != nil {
		return domain.Book{}, err
	}
	tx.recordChange(Change{Entity: domain.EntityBook, Action: domain.ActionCreate, ID: fmt.Sprint(book.ID()), After: book})
	return book, nil
}
