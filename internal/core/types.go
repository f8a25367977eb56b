package core

import "labworks/pkg/domain"

type (
	EntityType         = domain.EntityType
	Severity           = domain.Severity
	Keyboard           = domain.Keyboard
	Sample             = domain.Sample
	Coffee             = domain.Coffee
	Book               = domain.Book
	Library            = domain.Library
	Plant              = domain.Plant
	Araucaria          = domain.Araucaria
	Fittonia           = domain.Fittonia
	Snapshot           = domain.Snapshot
	Change             = domain.Change
	Action             = domain.Action
	Violation          = domain.Violation
	Result             = domain.Result
	RuleViolationError = domain.RuleViolationError
	Rule               = domain.Rule
	RulesEngine        = domain.RulesEngine
	Transaction        = domain.Transaction
	TransactionView    = domain.TransactionView
	PersistentStore    = domain.PersistentStore
)

const (
	EntityKeyboard  = domain.EntityKeyboard
	EntitySample    = domain.EntitySample
	EntityCoffee    = domain.EntityCoffee
	EntityBook      = domain.EntityBook
	EntityLibrary   = domain.EntityLibrary
	EntityPlant     = domain.EntityPlant
	EntityAraucaria = domain.EntityAraucaria
	EntityFittonia  = domain.EntityFittonia
)

const (
	SeverityBlock = domain.SeverityBlock
	SeverityWarn  = domain.SeverityWarn
	SeverityLog   = domain.SeverityLog
)

const (
	ActionCreate = domain.ActionCreate
	ActionUpdate = domain.ActionUpdate
	ActionDelete = domain.ActionDelete
)

// NewRulesEngine constructs an empty engine.
func NewRulesEngine() *RulesEngine { return domain.NewRulesEngine() }
