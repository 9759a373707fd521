package http

import (
	"context"
	"fmt"
	"os"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/avolkov/librarium/internal/catalog"
	"github.com/avolkov/librarium/internal/database"
	"github.com/avolkov/librarium/internal/database/books"
	"github.com/avolkov/librarium/internal/database/customers"
	"github.com/avolkov/librarium/internal/database/loans"
	"github.com/avolkov/librarium/internal/integrity"
	"github.com/avolkov/librarium/internal/metadata"
)

// stubProvider serves canned metadata so controller tests never hit the network.
type stubProvider struct {
	records map[string]*metadata.BookMetadata
	err     error
}

func (s *stubProvider) LookupISBN(_ context.Context, isbn string) (*metadata.BookMetadata, error) {
	if s.err != nil {
		return nil, s.err
	}
	md, ok := s.records[isbn]
	if !ok {
		return nil, fmt.Errorf("ISBN not found: %s", isbn)
	}
	return md, nil
}

func setupTestRouter(t *testing.T) (*gin.Engine, *catalog.Engine, *stubProvider, func()) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dbPath := "./test_http_" + strings.ReplaceAll(t.Name(), "/", "_") + ".db"
	db, err := database.New(dbPath)
	require.NoError(t, err)

	customerRepo := customers.NewRepository(db.DB)
	bookRepo := books.NewRepository(db.DB)
	loanRepo := loans.NewRepository(db.DB)

	cache, err := catalog.NewCache(customerRepo, bookRepo, 1000)
	require.NoError(t, err)

	provider := &stubProvider{records: map[string]*metadata.BookMetadata{
		"9780134685991": {ISBN: "9780134685991", Title: "Effective Java", Author: "Joshua Bloch", Genre: "Computers", Pages: 416},
	}}

	engine := catalog.NewEngine(catalog.Config{
		Customers: customerRepo,
		Books:     bookRepo,
		Loans:     loanRepo,
		Guard:     integrity.NewGuard(customerRepo, bookRepo, loanRepo),
		Cache:     cache,
		Provider:  provider,
	})

	router := NewRouter(RouterConfig{
		Engine:   engine,
		Database: db,
		Version:  "test",
	})

	cleanup := func() {
		cache.Close()
		db.Close()
		os.Remove(dbPath)
	}
	return router, engine, provider, cleanup
}
