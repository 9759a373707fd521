package loans

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

	"github.com/avolkov/librarium/internal/entities"
)

func setupTestDB(t *testing.T) (*Repository, func()) {
	dbPath := "./test_loans_" + strings.ReplaceAll(t.Name(), "/", "_") + ".db"

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	err = db.AutoMigrate(&entities.Customer{}, &entities.Book{}, &entities.Loan{})
	require.NoError(t, err)

	repo := NewRepository(db)

	cleanup := func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
		os.Remove(dbPath)
	}

	return repo, cleanup
}

func newOpenLoan(customerID int64, isbn string, due time.Time) *entities.Loan {
	return &entities.Loan{
		CustomerID: customerID,
		ISBN:       isbn,
		Status:     entities.LoanStatusOpen,
		IssuedAt:   due.AddDate(0, 0, -30),
		DueAt:      due,
	}
}

func TestRepository_CreateAndGet(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	loan := newOpenLoan(1, "9780134685991", time.Now().AddDate(0, 0, 30))
	require.NoError(t, repo.Create(loan))
	assert.NotZero(t, loan.ID)

	fetched, err := repo.Get(loan.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), fetched.CustomerID)
	assert.Equal(t, "9780134685991", fetched.ISBN)
	assert.True(t, fetched.Open())
}

func TestRepository_Get_NotFound(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	_, err := repo.Get(999)

	assert.ErrorIs(t, err, entities.ErrNotFound)
}

func TestRepository_Close(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	loan := newOpenLoan(1, "9780134685991", time.Now().AddDate(0, 0, 30))
	require.NoError(t, repo.Create(loan))

	returnedAt := time.Now()
	require.NoError(t, repo.Close(loan.ID, returnedAt))

	fetched, err := repo.Get(loan.ID)
	require.NoError(t, err)
	assert.Equal(t, entities.LoanStatusClosed, fetched.Status)
	require.NotNil(t, fetched.ReturnedAt)
	assert.False(t, fetched.Open())
}

func TestRepository_Close_AlreadyClosed(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	loan := newOpenLoan(1, "9780134685991", time.Now().AddDate(0, 0, 30))
	require.NoError(t, repo.Create(loan))
	require.NoError(t, repo.Close(loan.ID, time.Now()))

	err := repo.Close(loan.ID, time.Now())

	assert.ErrorIs(t, err, entities.ErrLoanClosed)
}

func TestRepository_Close_NotFound(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	err := repo.Close(999, time.Now())

	assert.ErrorIs(t, err, entities.ErrNotFound)
}

func TestRepository_OpenCounts(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	due := time.Now().AddDate(0, 0, 30)
	first := newOpenLoan(1, "1111111111", due)
	second := newOpenLoan(1, "2222222222", due)
	other := newOpenLoan(2, "1111111111", due)
	require.NoError(t, repo.Create(first))
	require.NoError(t, repo.Create(second))
	require.NoError(t, repo.Create(other))
	require.NoError(t, repo.Close(second.ID, time.Now()))

	byCustomer, err := repo.OpenCountForCustomer(1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), byCustomer)

	byBook, err := repo.OpenCountForBook("1111111111")
	require.NoError(t, err)
	assert.Equal(t, int64(2), byBook)
}

func TestRepository_ListOverdue(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	now := time.Now()
	overdue := newOpenLoan(1, "1111111111", now.AddDate(0, 0, -5))
	onTime := newOpenLoan(1, "2222222222", now.AddDate(0, 0, 5))
	closedLate := newOpenLoan(2, "3333333333", now.AddDate(0, 0, -10))
	require.NoError(t, repo.Create(overdue))
	require.NoError(t, repo.Create(onTime))
	require.NoError(t, repo.Create(closedLate))
	require.NoError(t, repo.Close(closedLate.ID, now))

	loans, err := repo.ListOverdue(now)

	require.NoError(t, err)
	require.Len(t, loans, 1)
	assert.Equal(t, overdue.ID, loans[0].ID)
}

func TestRepository_List(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	due := time.Now().AddDate(0, 0, 30)
	open := newOpenLoan(1, "1111111111", due)
	closed := newOpenLoan(2, "2222222222", due)
	require.NoError(t, repo.Create(open))
	require.NoError(t, repo.Create(closed))
	require.NoError(t, repo.Close(closed.ID, time.Now()))

	all, err := repo.List(false)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	onlyOpen, err := repo.List(true)
	require.NoError(t, err)
	require.Len(t, onlyOpen, 1)
	assert.Equal(t, open.ID, onlyOpen[0].ID)
}
