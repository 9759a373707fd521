package integrity

import (
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/avolkov/librarium/internal/database/books"
	"github.com/avolkov/librarium/internal/database/customers"
	"github.com/avolkov/librarium/internal/database/loans"
	"github.com/avolkov/librarium/internal/entities"
)

type fixture struct {
	guard     *Guard
	customers *customers.Repository
	books     *books.Repository
	loans     *loans.Repository
}

func setupGuard(t *testing.T) (*fixture, func()) {
	dbPath := "./test_guard_" + strings.ReplaceAll(t.Name(), "/", "_") + ".db"

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	err = db.AutoMigrate(&entities.Customer{}, &entities.Book{}, &entities.Loan{})
	require.NoError(t, err)

	f := &fixture{
		customers: customers.NewRepository(db),
		books:     books.NewRepository(db),
		loans:     loans.NewRepository(db),
	}
	f.guard = NewGuard(f.customers, f.books, f.loans)

	cleanup := func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
		os.Remove(dbPath)
	}

	return f, cleanup
}

func (f *fixture) addOpenLoan(t *testing.T, customerID int64, isbn string) *entities.Loan {
	t.Helper()
	loan := &entities.Loan{
		CustomerID: customerID,
		ISBN:       isbn,
		Status:     entities.LoanStatusOpen,
		IssuedAt:   time.Now(),
		DueAt:      time.Now().AddDate(0, 0, 30),
	}
	require.NoError(t, f.loans.Create(loan))
	return loan
}

func TestGuard_ValidateNewCustomer(t *testing.T) {
	f, cleanup := setupGuard(t)
	defer cleanup()

	assert.NoError(t, f.guard.ValidateNewCustomer(1))

	require.NoError(t, f.customers.Create(&entities.Customer{ID: 1, Name: "Ada"}))

	assert.ErrorIs(t, f.guard.ValidateNewCustomer(1), entities.ErrDuplicateKey)
}

func TestGuard_ValidateNewBook(t *testing.T) {
	f, cleanup := setupGuard(t)
	defer cleanup()

	assert.NoError(t, f.guard.ValidateNewBook("9780134685991"))

	require.NoError(t, f.books.Create(&entities.Book{ISBN: "9780134685991", AvailableCopies: 1}))

	assert.ErrorIs(t, f.guard.ValidateNewBook("9780134685991"), entities.ErrDuplicateKey)
}

func TestGuard_ValidateDeleteCustomer(t *testing.T) {
	f, cleanup := setupGuard(t)
	defer cleanup()

	require.NoError(t, f.customers.Create(&entities.Customer{ID: 1, Name: "Ada"}))

	// No loans: deletion allowed.
	assert.NoError(t, f.guard.ValidateDeleteCustomer(1))

	loan := f.addOpenLoan(t, 1, "9780134685991")
	assert.ErrorIs(t, f.guard.ValidateDeleteCustomer(1), entities.ErrHasOpenLoans)

	// Closed loans stop blocking.
	require.NoError(t, f.loans.Close(loan.ID, time.Now()))
	assert.NoError(t, f.guard.ValidateDeleteCustomer(1))
}

func TestGuard_ValidateDeleteBook(t *testing.T) {
	f, cleanup := setupGuard(t)
	defer cleanup()

	require.NoError(t, f.books.Create(&entities.Book{ISBN: "9780134685991", AvailableCopies: 1}))

	assert.NoError(t, f.guard.ValidateDeleteBook("9780134685991"))

	f.addOpenLoan(t, 1, "9780134685991")

	assert.ErrorIs(t, f.guard.ValidateDeleteBook("9780134685991"), entities.ErrHasOpenLoans)
}

func TestGuard_ValidateLoan(t *testing.T) {
	f, cleanup := setupGuard(t)
	defer cleanup()

	require.NoError(t, f.customers.Create(&entities.Customer{ID: 1, Name: "Ada"}))
	require.NoError(t, f.books.Create(&entities.Book{ISBN: "9780134685991", AvailableCopies: 1}))

	assert.NoError(t, f.guard.ValidateLoan(1, "9780134685991"))
}

func TestGuard_ValidateLoan_MissingCustomer(t *testing.T) {
	f, cleanup := setupGuard(t)
	defer cleanup()

	require.NoError(t, f.books.Create(&entities.Book{ISBN: "9780134685991", AvailableCopies: 1}))

	assert.ErrorIs(t, f.guard.ValidateLoan(42, "9780134685991"), entities.ErrNotFound)
}

func TestGuard_ValidateLoan_MissingBook(t *testing.T) {
	f, cleanup := setupGuard(t)
	defer cleanup()

	require.NoError(t, f.customers.Create(&entities.Customer{ID: 1, Name: "Ada"}))

	assert.ErrorIs(t, f.guard.ValidateLoan(1, "9999999999"), entities.ErrNotFound)
}

func TestGuard_ValidateLoan_NoCopies(t *testing.T) {
	f, cleanup := setupGuard(t)
	defer cleanup()

	require.NoError(t, f.customers.Create(&entities.Customer{ID: 1, Name: "Ada"}))
	require.NoError(t, f.books.Create(&entities.Book{ISBN: "9780134685991", AvailableCopies: 0}))

	assert.ErrorIs(t, f.guard.ValidateLoan(1, "9780134685991"), entities.ErrBookUnavailable)
}
