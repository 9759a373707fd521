package catalog

import (
	"fmt"

	"github.com/avolkov/librarium/internal/database/books"
	"github.com/avolkov/librarium/internal/database/customers"
	"github.com/avolkov/librarium/internal/entities"
	"github.com/avolkov/librarium/internal/index"
)

// Cache is the process-wide index layer: one keyed index per entity type,
// loading through the corresponding repository. It starts empty, is warmed
// from storage at startup, and is discarded at process exit.
type Cache struct {
	customers *index.Index[int64, *entities.Customer]
	books     *index.Index[string, *entities.Book]

	customerRepo *customers.Repository
	bookRepo     *books.Repository
}

// NewCache builds the customer and book indexes, each bounded to maxEntries.
func NewCache(customerRepo *customers.Repository, bookRepo *books.Repository, maxEntries int64) (*Cache, error) {
	customerIdx, err := index.New(maxEntries, customerRepo.Get)
	if err != nil {
		return nil, fmt.Errorf("customer index: %w", err)
	}
	bookIdx, err := index.New(maxEntries, bookRepo.Get)
	if err != nil {
		customerIdx.Close()
		return nil, fmt.Errorf("book index: %w", err)
	}
	return &Cache{
		customers:    customerIdx,
		books:        bookIdx,
		customerRepo: customerRepo,
		bookRepo:     bookRepo,
	}, nil
}

// Warm populates both indexes from storage. Called once at process start;
// lookups before or without warming simply miss and fall back to storage.
func (c *Cache) Warm() error {
	allCustomers, err := c.customerRepo.List()
	if err != nil {
		return fmt.Errorf("warm customer index: %w", err)
	}
	for i := range allCustomers {
		customer := allCustomers[i]
		c.customers.Put(customer.ID, &customer)
	}

	allBooks, err := c.bookRepo.List()
	if err != nil {
		return fmt.Errorf("warm book index: %w", err)
	}
	for i := range allBooks {
		book := allBooks[i]
		c.books.Put(book.ISBN, &book)
	}
	return nil
}

// RefreshBook re-reads one book row from storage into the index. Used by the
// deferred enrichment task after it patches storage directly.
func (c *Cache) RefreshBook(isbn string) error {
	return c.books.Refresh(isbn)
}

// Close releases both indexes.
func (c *Cache) Close() {
	c.customers.Close()
	c.books.Close()
}
