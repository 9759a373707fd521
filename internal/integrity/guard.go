// Package integrity validates uniqueness, referential, and safe-deletion
// constraints before any mutation commits. The guard only answers yes or no;
// issuing the mutation stays with the catalog engine, which must not proceed
// past a failed validation.
package integrity

import (
	"fmt"

	"github.com/avolkov/librarium/internal/entities"
)

// CustomerChecker is the slice of the customers repository the guard needs.
type CustomerChecker interface {
	Exists(id int64) (bool, error)
}

// BookChecker is the slice of the books repository the guard needs.
type BookChecker interface {
	Exists(isbn string) (bool, error)
	Get(isbn string) (*entities.Book, error)
}

// LoanChecker is the slice of the loans repository the guard needs.
type LoanChecker interface {
	OpenCountForCustomer(customerID int64) (int64, error)
	OpenCountForBook(isbn string) (int64, error)
}

// Guard validates cross-entity invariants against current storage state.
// Within one engine operation the validation and the mutation it protects run
// under the same lock, so no delete reaches storage without a preceding
// passing check. Across independent processes the database constraints are
// the only backstop.
type Guard struct {
	customers CustomerChecker
	books     BookChecker
	loans     LoanChecker
}

// NewGuard creates a guard over the three repositories.
func NewGuard(customers CustomerChecker, books BookChecker, loans LoanChecker) *Guard {
	return &Guard{customers: customers, books: books, loans: loans}
}

// ValidateNewCustomer rejects an insert that would collide with an existing ID.
func (g *Guard) ValidateNewCustomer(id int64) error {
	exists, err := g.customers.Exists(id)
	if err != nil {
		return fmt.Errorf("check customer %d: %w", id, err)
	}
	if exists {
		return entities.ErrDuplicateKey
	}
	return nil
}

// ValidateNewBook rejects an insert that would collide with an existing ISBN.
func (g *Guard) ValidateNewBook(isbn string) error {
	exists, err := g.books.Exists(isbn)
	if err != nil {
		return fmt.Errorf("check book %s: %w", isbn, err)
	}
	if exists {
		return entities.ErrDuplicateKey
	}
	return nil
}

// ValidateDeleteCustomer blocks deletion while the customer holds open loans.
func (g *Guard) ValidateDeleteCustomer(id int64) error {
	open, err := g.loans.OpenCountForCustomer(id)
	if err != nil {
		return fmt.Errorf("count open loans for customer %d: %w", id, err)
	}
	if open > 0 {
		return entities.ErrHasOpenLoans
	}
	return nil
}

// ValidateDeleteBook blocks deletion while copies of the book are on loan.
func (g *Guard) ValidateDeleteBook(isbn string) error {
	open, err := g.loans.OpenCountForBook(isbn)
	if err != nil {
		return fmt.Errorf("count open loans for book %s: %w", isbn, err)
	}
	if open > 0 {
		return entities.ErrHasOpenLoans
	}
	return nil
}

// ValidateLoan checks that both ends of a prospective loan exist and that at
// least one copy of the book is on the shelf.
func (g *Guard) ValidateLoan(customerID int64, isbn string) error {
	exists, err := g.customers.Exists(customerID)
	if err != nil {
		return fmt.Errorf("check customer %d: %w", customerID, err)
	}
	if !exists {
		return entities.ErrNotFound
	}

	book, err := g.books.Get(isbn)
	if err != nil {
		return err
	}
	if book.AvailableCopies <= 0 {
		return entities.ErrBookUnavailable
	}
	return nil
}
