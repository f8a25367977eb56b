package core

import (
	"context"
	"fmt"

	"labworks/pkg/domain"
)

// NewDefaultRulesEngine builds a rules engine with the built-in policy set.
func NewDefaultRulesEngine() *RulesEngine {
	engine := NewRulesEngine()
	engine.Register(NewLibrarySequenceRule())
	return engine
}

// NewLibrarySequenceRule warns when library ids stop increasing. Appended
// books keep their ids, so a duplicate or out-of-order id is allowed but
// makes IndexByBookID ambiguous.
func NewLibrarySequenceRule() domain.Rule {
	return librarySequenceRule{}
}

type librarySequenceRule struct{}

func (librarySequenceRule) Name() string { return "library_sequence" }

func (r librarySequenceRule) Evaluate(_ context.Context, view domain.RuleView, changes []domain.Change) (domain.Result, error) {
	if !touchesLibrary(changes) {
		return domain.Result{}, nil
	}
	res := domain.Result{}
	books := view.Library().Books()
	seen := make(map[int]struct{}, len(books))
	for i, book := range books {
		if _, dup := seen[book.ID()]; dup {
			res.Violations = append(res.Violations, r.violation(book, fmt.Sprintf("book id %d appears more than once", book.ID())))
		} else if i > 0 && book.ID() <= books[i-1].ID() {
			res.Violations = append(res.Violations, r.violation(book, fmt.Sprintf("book id %d follows %d", book.ID(), books[i-1].ID())))
		}
		seen[book.ID()] = struct{}{}
	}
	return res, nil
}

func (r librarySequenceRule) violation(book domain.Book, msg string) domain.Violation {
	return domain.Violation{
		Rule:     r.Name(),
		Severity: domain.SeverityWarn,
		Message:  msg,
		Entity:   domain.EntityBook,
		EntityID: fmt.Sprint(book.ID()),
	}
}

func touchesLibrary(changes []domain.Change) bool {
	for _, c := range changes {
		if c.Entity == domain.EntityBook || c.Entity == domain.EntityLibrary {
			return true
		}
	}
	return false
}
