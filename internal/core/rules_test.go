package core

import (
	"context"
	"testing"

	"labworks/internal/infra/persistence/memory"
	"labworks/pkg/domain"
)

type libraryView struct {
	domain.TransactionView
	lib domain.Library
}

func (v libraryView) Library() domain.Library { return v.lib }

func TestLibrarySequenceRule(t *testing.T) {
	rule := NewLibrarySequenceRule()
	if rule.Name() != "library_sequence" {
		t.Fatalf("unexpected name %s", rule.Name())
	}
	bookChange := []domain.Change{{Entity: domain.EntityBook, Action: domain.ActionCreate, ID: "1"}}

	cases := []struct {
		name    string
		ids     []int
		changes []domain.Change
		want    int
	}{
		{"increasing", []int{1, 2, 7}, bookChange, 0},
		{"out of order", []int{1, 5, 3}, bookChange, 1},
		{"duplicate", []int{1, 2, 1}, bookChange, 1},
		{"duplicate and decreasing", []int{4, 4, 2}, bookChange, 2},
		{"untouched library", []int{3, 1}, []domain.Change{{Entity: domain.EntitySample}}, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			books := make([]domain.Book, 0, len(tc.ids))
			for _, id := range tc.ids {
				books = append(books, mustBook(t, id, "b", 1))
			}
			res, err := rule.Evaluate(context.Background(), libraryView{lib: domain.NewLibrary(books...)}, tc.changes)
			if err != nil {
				t.Fatalf("evaluate: %v", err)
			}
			if len(res.Violations) != tc.want {
				t.Fatalf("expected %d violations, got %+v", tc.want, res.Violations)
			}
			for _, v := range res.Violations {
				if v.Severity != domain.SeverityWarn || v.Entity != domain.EntityBook {
					t.Fatalf("unexpected violation %+v", v)
				}
			}
		})
	}
}

func TestDefaultRulesEngineDoesNotBlockLibrary(t *testing.T) {
	store := memory.NewStore(NewDefaultRulesEngine())
	res, err := store.RunInTransaction(context.Background(), func(tx domain.Transaction) error {
		if err := tx.AppendBook(mustBook(t, 2, "b", 1)); err != nil {
			return err
		}
		return tx.AppendBook(mustBook(t, 2, "again", 1))
	})
	if err != nil {
		t.Fatalf("expected commit despite warnings: %v", err)
	}
	if len(res.Violations) != 1 || res.HasBlocking() {
		t.Fatalf("unexpected result %+v", res)
	}
	if store.ExportState().Library.Len() != 2 {
		t.Fatalf("expected both books stored")
	}
}
