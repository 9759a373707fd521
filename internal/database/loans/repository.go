// Package loans provides database operations for loan records.
package loans

import (
	"time"

	"gorm.io/gorm"

	"github.com/avolkov/librarium/internal/database"
	"github.com/avolkov/librarium/internal/entities"
)

// Repository handles all loan rows.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new loans repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a loan record.
func (r *Repository) Create(loan *entities.Loan) error {
	return database.Translate(r.db.Create(loan).Error)
}

// Get retrieves a loan by ID.
func (r *Repository) Get(id uint) (*entities.Loan, error) {
	var loan entities.Loan
	if err := r.db.First(&loan, id).Error; err != nil {
		return nil, database.Translate(err)
	}
	return &loan, nil
}

// Close marks a loan returned. Closing an already closed loan reports
// entities.ErrLoanClosed; a missing loan reports entities.ErrNotFound.
func (r *Repository) Close(id uint, returnedAt time.Time) error {
	result := r.db.Model(&entities.Loan{}).
		Where("id = ? AND status = ?", id, entities.LoanStatusOpen).
		Updates(map[string]any{
			"status":      entities.LoanStatusClosed,
			"returned_at": returnedAt,
		})
	if result.Error != nil {
		return database.Translate(result.Error)
	}
	if result.RowsAffected == 0 {
		if _, err := r.Get(id); err != nil {
			return err
		}
		return entities.ErrLoanClosed
	}
	return nil
}

// List returns loans, optionally restricted to open ones, newest first.
func (r *Repository) List(onlyOpen bool) ([]entities.Loan, error) {
	query := r.db.Order("issued_at DESC, id DESC")
	if onlyOpen {
		query = query.Where("status = ?", entities.LoanStatusOpen)
	}
	var loans []entities.Loan
	err := query.Find(&loans).Error
	return loans, database.Translate(err)
}

// OpenCountForCustomer counts the customer's open loans.
func (r *Repository) OpenCountForCustomer(customerID int64) (int64, error) {
	var count int64
	err := r.db.Model(&entities.Loan{}).
		Where("customer_id = ? AND status = ?", customerID, entities.LoanStatusOpen).
		Count(&count).Error
	return count, database.Translate(err)
}

// OpenCountForBook counts the open loans against an ISBN.
func (r *Repository) OpenCountForBook(isbn string) (int64, error) {
	var count int64
	err := r.db.Model(&entities.Loan{}).
		Where("isbn = ? AND status = ?", isbn, entities.LoanStatusOpen).
		Count(&count).Error
	return count, database.Translate(err)
}

// ListOverdue returns open loans whose due date has passed, oldest first.
func (r *Repository) ListOverdue(now time.Time) ([]entities.Loan, error) {
	var loans []entities.Loan
	err := r.db.
		Where("status = ? AND due_at < ?", entities.LoanStatusOpen, now).
		Order("due_at ASC").
		Find(&loans).Error
	return loans, database.Translate(err)
}
