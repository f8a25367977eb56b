package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// Book is an immutable catalogue entry identified by a caller-supplied id.
type Book struct {
	id    int
	name  string
	pages int
}

// NewBook validates id and page count and builds a book.
func NewBook(id int, name string, pages int) (Book, error) {
	if id <= 0 {
		return Book{}, RangeConstraintError{Entity: EntityBook, Field: "id", Value: id, Reason: "must be greater than 0"}
	}
	if pages <= 0 {
		return Book{}, RangeConstraintError{Entity: EntityBook, Field: "pages", Value: pages, Reason: "must be greater than 0"}
	}
	return Book{id: id, name: name, pages: pages}, nil
}

// ID returns the book id.
func (b Book) ID() int { return b.id }

// Name returns the book title.
func (b Book) Name() string { return b.name }

// Pages returns the page count.
func (b Book) Pages() int { return b.pages }

func (b Book) String() string {
	return fmt.Sprintf("Book %q", b.name)
}

// GoString renders the book in constructor form.
func (b Book) GoString() string {
	return fmt.Sprintf("Book(id_=%d, name=%q, pages=%d)", b.id, b.name, b.pages)
}

// Library is an ordered collection of books. Ids are expected to be appended
// in increasing order but this is not enforced.
type Library struct {
	books []Book
}

// NewLibrary builds a library holding a copy of books in the given order.
func NewLibrary(books ...Book) Library {
	return Library{books: append([]Book(nil), books...)}
}

// Books returns a copy of the books in order.
func (l Library) Books() []Book {
	return append([]Book(nil), l.books...)
}

// Len returns the number of books.
func (l Library) Len() int { return len(l.books) }

// Append adds book to the end of the collection.
func (l *Library) Append(book Book) {
	l.books = append(l.books, book)
}

// NextBookID returns 1 for an empty library, otherwise the last book's id + 1.
func (l Library) NextBookID() int {
	if len(l.books) == 0 {
		return 1
	}
	return l.books[len(l.books)-1].id + 1
}

// AddBook creates a book with the next id and appends it.
func (l *Library) AddBook(name string, pages int) (Book, error) {
	book, err := NewBook(l.NextBookID(), name, pages)
	if err != nil {
		return Book{}, err
	}
	l.Append(book)
	return book, nil
}

// IndexByBookID returns the position of the first book with the given id.
func (l Library) IndexByBookID(id int) (int, error) {
	if id <= 0 {
		return 0, RangeConstraintError{Entity: EntityBook, Field: "id", Value: id, Reason: "must be greater than 0"}
	}
	for i, b := range l.books {
		if b.id == id {
			return i, nil
		}
	}
	return 0, ErrNotFound{Entity: EntityBook, ID: strconv.Itoa(id)}
}

func (l Library) String() string {
	if len(l.books) == 0 {
		return "Library: empty."
	}
	names := make([]string, len(l.books))
	for i, b := range l.books {
		names[i] = b.String()
	}
	return fmt.Sprintf("Library: %s.", strings.Join(names, ", "))
}
