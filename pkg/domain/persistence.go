package domain

import (
	"context"
	"time"
)

// Transaction exposes the bench operations that a persistence implementation
// must support within an atomic scope. Mutators receive a copy of the stored
// record; returning an error discards the copy and aborts the transaction.
type Transaction interface {
	Snapshot() TransactionView
	Now() time.Time
	CreateKeyboard(Keyboard) (string, error)
	UpdateKeyboard(id string, mutator func(*Keyboard) error) (Keyboard, error)
	CreateSample(Sample) (string, error)
	UpdateSample(id string, mutator func(*Sample) error) (Sample, error)
	CreateCoffee(Coffee) (string, error)
	UpdateCoffee(id string, mutator func(*Coffee) error) (Coffee, error)
	CreatePlant(Plant) (string, error)
	UpdatePlant(id string, mutator func(*Plant) error) (Plant, error)
	CreateAraucaria(Araucaria) (string, error)
	UpdateAraucaria(id string, mutator func(*Araucaria) error) (Araucaria, error)
	CreateFittonia(Fittonia) (string, error)
	UpdateFittonia(id string, mutator func(*Fittonia) error) (Fittonia, error)
	Delete(entity EntityType, id string) error
	AppendBook(Book) error
	AddBook(name string, pages int) (Book, error)
	// KindOf reports which bucket holds id.
	KindOf(id string) (EntityType, bool)
}

// TransactionView provides read-only access to snapshot data for rules and readers.
type TransactionView interface {
	Library() Library
	FindKeyboard(id string) (Keyboard, bool)
	FindSample(id string) (Sample, bool)
	FindCoffee(id string) (Coffee, bool)
	FindPlant(id string) (Plant, bool)
	FindAraucaria(id string) (Araucaria, bool)
	FindFittonia(id string) (Fittonia, bool)
	Export() Snapshot
}

// PersistentStore is a minimal abstraction over durable backends. It mirrors
// the subset of store capabilities used directly by higher layers.
type PersistentStore interface {
	RunInTransaction(ctx context.Context, fn func(Transaction) error) (Result, error)
	View(ctx context.Context, fn func(TransactionView) error) error
	ExportState() Snapshot
	ImportState(Snapshot)
}

// Snapshot is the complete bench state, one bucket per entity kind.
type Snapshot struct {
	Keyboards  map[string]Keyboard  `json:"keyboards"`
	Samples    map[string]Sample    `json:"samples"`
	Coffees    map[string]Coffee    `json:"coffees"`
	Plants     map[string]Plant     `json:"plants"`
	Araucarias map[string]Araucaria `json:"araucarias"`
	Fittonias  map[string]Fittonia  `json:"fittonias"`
	Library    Library              `json:"library"`
}

// NewSnapshot returns an empty snapshot with all buckets allocated.
func NewSnapshot() Snapshot {
	return Snapshot{
		Keyboards:  make(map[string]Keyboard),
		Samples:    make(map[string]Sample),
		Coffees:    make(map[string]Coffee),
		Plants:     make(map[string]Plant),
		Araucarias: make(map[string]Araucaria),
		Fittonias:  make(map[string]Fittonia),
	}
}

// Clone returns a deep copy of s with nil buckets allocated.
func (s Snapshot) Clone() Snapshot {
	out := NewSnapshot()
	for k, v := range s.Keyboards {
		out.Keyboards[k] = v
	}
	for k, v := range s.Samples {
		out.Samples[k] = v
	}
	for k, v := range s.Coffees {
		out.Coffees[k] = v
	}
	for k, v := range s.Plants {
		out.Plants[k] = v
	}
	for k, v := range s.Araucarias {
		out.Araucarias[k] = v
	}
	for k, v := range s.Fittonias {
		out.Fittonias[k] = v
	}
	out.Library = NewLibrary(s.Library.books...)
	return out
}

// Count returns the number of records across all buckets, books included.
func (s Snapshot) Count() int {
	return len(s.Keyboards) + len(s.Samples) + len(s.Coffees) + len(s.Plants) +
		len(s.Araucarias) + len(s.Fittonias) + s.Library.Len()
}
