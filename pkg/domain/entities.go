// Package domain defines the validated lab records (keyboards, samples,
// coffee, books, plants), their closed value domains, constraint errors and
// the store/rule contracts used by the bench.
package domain

// EntityType identifies the kind of record stored on the bench.
type EntityType string

// Supported entity type identifiers used in errors, Change records and
// persistence buckets.
const (
	// EntityKeyboard identifies a keyboard record.
	EntityKeyboard EntityType = "keyboard"
	// EntitySample identifies a sample (solution) record.
	EntitySample EntityType = "sample"
	// EntityCoffee identifies a coffee record.
	EntityCoffee EntityType = "coffee"
	// EntityBook identifies a book record.
	EntityBook EntityType = "book"
	// EntityLibrary identifies the library collection.
	EntityLibrary EntityType = "library"
	// EntityPlant identifies a plain plant record.
	EntityPlant EntityType = "plant"
	// EntityAraucaria identifies an araucaria record.
	EntityAraucaria EntityType = "araucaria"
	// EntityFittonia identifies a fittonia record.
	EntityFittonia EntityType = "fittonia"
)

// Severity captures rule outcomes.
type Severity string

// Rule evaluation severities determine commit behavior and logging.
const (
	// SeverityBlock blocks transaction commit.
	SeverityBlock Severity = "block"
	// SeverityWarn logs a warning but allows commit.
	SeverityWarn Severity = "warn"
	SeverityLog  Severity = "log"
)

// Change describes a mutation applied to an entity during a transaction.
type Change struct {
	Entity EntityType
	Action Action
	ID     string
	Before any
	After  any
}

// Action indicates the type of modification performed.
type Action string

// Change actions enumerate the modifications captured in the change log.
const (
	// ActionCreate indicates an entity was created.
	ActionCreate Action = "create"
	// ActionUpdate indicates an entity was updated.
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// Violation reports a failed rule evaluation.
type Violation struct {
	Rule     string
	Severity Severity
	Message  string
	Entity   EntityType
	EntityID string
}

// Result aggregates violations from the rules engine.
type Result struct {
	Violations []Violation
}

// Merge appends violations from another result.
func (r *Result) Merge(other Result) {
	if len(other.Violations) == 0 {
		return
	}
	r.Violations = append(r.Violations, other.Violations...)
}

// HasBlocking returns true if the result contains blocking violations.
func (r Result) HasBlocking() bool {
	for _, v := range r.Violations {
		if v.Severity == SeverityBlock {
			return true
		}
	}
	return false
}

// RuleViolationError is returned when blocking violations are present.
type RuleViolationError struct {
	Result Result
}

func (e RuleViolationError) Error() string {
	return "transaction blocked by rules"
}
