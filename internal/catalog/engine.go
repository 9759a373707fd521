// Package catalog implements the engine behind every customer, book, and loan
// operation. The engine composes the integrity guard, the repositories, and
// the index cache; external callers touch nothing else.
//
// Side-effect order on every mutation is fixed: validate, write storage, then
// patch the cache. A failed cache update is logged and left for the next read
// to self-heal, so storage is always the source of truth.
package catalog

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/avolkov/librarium/internal/database/books"
	"github.com/avolkov/librarium/internal/database/customers"
	"github.com/avolkov/librarium/internal/database/loans"
	"github.com/avolkov/librarium/internal/entities"
	"github.com/avolkov/librarium/internal/integrity"
	"github.com/avolkov/librarium/internal/metadata"
)

// Enqueuer schedules a deferred metadata retry for a book created while the
// provider was unavailable. Optional.
type Enqueuer interface {
	EnqueueEnrichBook(isbn string) error
}

// Engine is the catalog facade. Mutations serialize on an internal mutex so a
// validation and the mutation it protects always run as one logical
// operation; reads go through the cache without locking.
type Engine struct {
	mu sync.Mutex

	customers *customers.Repository
	books     *books.Repository
	loans     *loans.Repository
	guard     *integrity.Guard
	cache     *Cache
	provider  metadata.Provider
	enqueuer  Enqueuer

	loanPeriod time.Duration
	now        func() time.Time
}

// Config carries the engine's collaborators and tuning.
type Config struct {
	Customers *customers.Repository
	Books     *books.Repository
	Loans     *loans.Repository
	Guard     *integrity.Guard
	Cache     *Cache

	// Provider is the external metadata collaborator. Optional; without it
	// every added book is tagged metadata-missing.
	Provider metadata.Provider

	// Enqueuer defers metadata retries to the task queue. Optional.
	Enqueuer Enqueuer

	// LoanPeriod is how long a loan runs before it is overdue. Default 30 days.
	LoanPeriod time.Duration
}

const defaultLoanPeriod = 30 * 24 * time.Hour

// NewEngine creates the catalog engine.
func NewEngine(cfg Config) *Engine {
	period := cfg.LoanPeriod
	if period <= 0 {
		period = defaultLoanPeriod
	}
	return &Engine{
		customers:  cfg.Customers,
		books:      cfg.Books,
		loans:      cfg.Loans,
		guard:      cfg.Guard,
		cache:      cfg.Cache,
		provider:   cfg.Provider,
		enqueuer:   cfg.Enqueuer,
		loanPeriod: period,
		now:        time.Now,
	}
}

// AddCustomer registers a member under their externally assigned ID.
func (e *Engine) AddCustomer(ctx context.Context, customer entities.Customer) (*entities.Customer, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.guard.ValidateNewCustomer(customer.ID); err != nil {
		return nil, err
	}
	if err := e.customers.Create(&customer); err != nil {
		return nil, err
	}
	e.cache.customers.Put(customer.ID, &customer)
	return &customer, nil
}

// UpdateCustomer rewrites a customer's contact fields.
func (e *Engine) UpdateCustomer(ctx context.Context, customer entities.Customer) (*entities.Customer, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.customers.Update(&customer); err != nil {
		return nil, err
	}
	e.refreshCustomer(customer.ID)
	return e.customers.Get(customer.ID)
}

// RemoveCustomer deletes a member, refusing while they hold open loans.
func (e *Engine) RemoveCustomer(ctx context.Context, id int64) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.guard.ValidateDeleteCustomer(id); err != nil {
		return err
	}
	if err := e.customers.Delete(id); err != nil {
		return err
	}
	e.cache.customers.Invalidate(id)
	return nil
}

// FindCustomer looks the member up in the cache first and falls back to
// storage on a miss, re-populating the cache on the way out.
func (e *Engine) FindCustomer(ctx context.Context, id int64) (*entities.Customer, error) {
	if customer, ok := e.cache.customers.Lookup(id); ok {
		return customer, nil
	}
	customer, err := e.customers.Get(id)
	if err != nil {
		return nil, err
	}
	e.cache.customers.Put(id, customer)
	return customer, nil
}

// ListCustomers returns all members from storage.
func (e *Engine) ListCustomers(ctx context.Context) ([]entities.Customer, error) {
	return e.customers.List()
}

// BookOverrides are caller-supplied fields for AddBook. Non-empty values win
// over whatever the metadata provider returns.
type BookOverrides struct {
	Title  string
	Author string
	Genre  string
	Pages  int
	Copies int
}

// AddBook catalogs a title by ISBN, consulting the metadata provider for
// descriptive fields. Provider failure or a malformed ISBN never aborts the
// operation: the book is created anyway and tagged metadata-missing so the
// presentation layer can say so and a deferred retry can fill it in.
func (e *Engine) AddBook(ctx context.Context, isbn string, overrides BookOverrides) (*entities.Book, error) {
	key := metadata.NormalizeISBN(isbn)
	wellFormed := key != ""
	if !wellFormed {
		key = strings.TrimSpace(isbn)
	}
	if key == "" {
		return nil, fmt.Errorf("book isbn is required: %w", entities.ErrInvalid)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.guard.ValidateNewBook(key); err != nil {
		return nil, err
	}

	book := entities.Book{
		ISBN:            key,
		Title:           overrides.Title,
		Author:          overrides.Author,
		Genre:           overrides.Genre,
		Pages:           overrides.Pages,
		AvailableCopies: overrides.Copies,
	}
	if book.AvailableCopies <= 0 {
		book.AvailableCopies = 1
	}

	if wellFormed && e.provider != nil {
		md, err := e.provider.LookupISBN(ctx, key)
		if err != nil {
			log.Printf("Metadata lookup for %s failed, cataloging without it: %v", key, err)
			book.MetadataMissing = true
		} else {
			applyMetadata(&book, md)
		}
	} else {
		book.MetadataMissing = true
	}

	if err := e.books.Create(&book); err != nil {
		return nil, err
	}
	e.cache.books.Put(book.ISBN, &book)

	if book.MetadataMissing && wellFormed && e.enqueuer != nil {
		if err := e.enqueuer.EnqueueEnrichBook(book.ISBN); err != nil {
			log.Printf("Failed to enqueue metadata retry for %s: %v", book.ISBN, err)
		}
	}
	return &book, nil
}

// UpdateBook rewrites a book's descriptive fields and copy count.
func (e *Engine) UpdateBook(ctx context.Context, book entities.Book) (*entities.Book, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.books.Update(&book); err != nil {
		return nil, err
	}
	e.refreshBook(book.ISBN)
	return e.books.Get(book.ISBN)
}

// RemoveBook deletes a title, refusing while copies are out on loan.
func (e *Engine) RemoveBook(ctx context.Context, isbn string) error {
	isbn = normalizeKey(isbn)

	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.guard.ValidateDeleteBook(isbn); err != nil {
		return err
	}
	if err := e.books.Delete(isbn); err != nil {
		return err
	}
	e.cache.books.Invalidate(isbn)
	return nil
}

// FindBook looks the title up in the cache first and falls back to storage.
func (e *Engine) FindBook(ctx context.Context, isbn string) (*entities.Book, error) {
	isbn = normalizeKey(isbn)
	if book, ok := e.cache.books.Lookup(isbn); ok {
		return book, nil
	}
	book, err := e.books.Get(isbn)
	if err != nil {
		return nil, err
	}
	e.cache.books.Put(isbn, book)
	return book, nil
}

// ListBooks returns all titles from storage.
func (e *Engine) ListBooks(ctx context.Context) ([]entities.Book, error) {
	return e.books.List()
}

// LookupISBN previews provider metadata for a title that is not cataloged
// yet. Unlike AddBook, a provider failure here is the whole result.
func (e *Engine) LookupISBN(ctx context.Context, isbn string) (*metadata.BookMetadata, error) {
	key := metadata.NormalizeISBN(isbn)
	if key == "" {
		return nil, entities.ErrMetadataUnavailable
	}
	exists, err := e.books.Exists(key)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, entities.ErrDuplicateKey
	}
	if e.provider == nil {
		return nil, entities.ErrMetadataUnavailable
	}
	md, err := e.provider.LookupISBN(ctx, key)
	if err != nil {
		log.Printf("Metadata preview for %s failed: %v", key, err)
		return nil, entities.ErrMetadataUnavailable
	}
	return md, nil
}

// RecordLoan issues a book to a customer, decrementing the available-copy
// count. Fails when either party is missing or no copy is on the shelf.
func (e *Engine) RecordLoan(ctx context.Context, customerID int64, isbn string) (*entities.Loan, error) {
	isbn = normalizeKey(isbn)

	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.guard.ValidateLoan(customerID, isbn); err != nil {
		return nil, err
	}
	if err := e.books.AdjustCopies(isbn, -1); err != nil {
		return nil, err
	}

	now := e.now()
	loan := entities.Loan{
		CustomerID: customerID,
		ISBN:       isbn,
		Status:     entities.LoanStatusOpen,
		IssuedAt:   now,
		DueAt:      now.Add(e.loanPeriod),
	}
	if err := e.loans.Create(&loan); err != nil {
		// Put the copy back; the loan row never landed.
		if restoreErr := e.books.AdjustCopies(isbn, 1); restoreErr != nil {
			log.Printf("Failed to restore copy count for %s: %v", isbn, restoreErr)
		}
		return nil, err
	}
	e.refreshBook(isbn)
	return &loan, nil
}

// ReturnLoan closes a loan and puts the copy back on the shelf.
func (e *Engine) ReturnLoan(ctx context.Context, loanID uint) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	loan, err := e.loans.Get(loanID)
	if err != nil {
		return err
	}
	if err := e.loans.Close(loanID, e.now()); err != nil {
		return err
	}
	if err := e.books.AdjustCopies(loan.ISBN, 1); err != nil {
		log.Printf("Failed to increment copies for %s after return: %v", loan.ISBN, err)
	}
	e.refreshBook(loan.ISBN)
	return nil
}

// ListLoans returns loan records, optionally only the open ones.
func (e *Engine) ListLoans(ctx context.Context, onlyOpen bool) ([]entities.Loan, error) {
	return e.loans.List(onlyOpen)
}

// OverdueLoans returns open loans past their due date.
func (e *Engine) OverdueLoans(ctx context.Context) ([]entities.Loan, error) {
	return e.loans.ListOverdue(e.now())
}

// refreshBook re-reads one book row into the cache. Non-fatal: storage
// already holds the truth and the next read heals a stale entry.
func (e *Engine) refreshBook(isbn string) {
	if err := e.cache.books.Refresh(isbn); err != nil {
		log.Printf("Book index refresh for %s failed: %v", isbn, err)
	}
}

func (e *Engine) refreshCustomer(id int64) {
	if err := e.cache.customers.Refresh(id); err != nil {
		log.Printf("Customer index refresh for %d failed: %v", id, err)
	}
}

// normalizeKey matches the key form AddBook stored: normalized ISBN when well
// formed, trimmed raw string otherwise.
func normalizeKey(isbn string) string {
	if key := metadata.NormalizeISBN(isbn); key != "" {
		return key
	}
	return strings.TrimSpace(isbn)
}

func applyMetadata(book *entities.Book, md *metadata.BookMetadata) {
	if book.Title == "" {
		book.Title = md.Title
	}
	if book.Author == "" {
		book.Author = md.Author
	}
	if book.Genre == "" {
		book.Genre = md.Genre
	}
	if book.Pages == 0 {
		book.Pages = md.Pages
	}
}
