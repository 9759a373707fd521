// Package customers provides database operations for library members.
package customers

import (
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/avolkov/librarium/internal/database"
	"github.com/avolkov/librarium/internal/entities"
)

// Repository handles all customer rows. Every returned error is either a
// taxonomy sentinel from internal/entities or a wrapped storage failure.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new customers repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a customer with its externally assigned ID. Inserting an ID
// that already exists fails with entities.ErrDuplicateKey and leaves the
// existing row untouched.
func (r *Repository) Create(customer *entities.Customer) error {
	if err := validate(customer); err != nil {
		return err
	}
	return database.Translate(r.db.Create(customer).Error)
}

// Update rewrites the mutable fields of an existing customer.
func (r *Repository) Update(customer *entities.Customer) error {
	if err := validate(customer); err != nil {
		return err
	}
	result := r.db.Model(&entities.Customer{}).
		Where("id = ?", customer.ID).
		Updates(map[string]any{
			"name":  customer.Name,
			"email": customer.Email,
			"phone": customer.Phone,
		})
	if result.Error != nil {
		return database.Translate(result.Error)
	}
	if result.RowsAffected == 0 {
		return entities.ErrNotFound
	}
	return nil
}

// Delete removes a customer row. Missing rows report entities.ErrNotFound.
// Loan checks are the integrity guard's responsibility, not this layer's.
func (r *Repository) Delete(id int64) error {
	result := r.db.Delete(&entities.Customer{}, id)
	if result.Error != nil {
		return database.Translate(result.Error)
	}
	if result.RowsAffected == 0 {
		return entities.ErrNotFound
	}
	return nil
}

// Get retrieves a customer by ID.
func (r *Repository) Get(id int64) (*entities.Customer, error) {
	var customer entities.Customer
	if err := r.db.First(&customer, id).Error; err != nil {
		return nil, database.Translate(err)
	}
	return &customer, nil
}

// List returns all customers ordered by ID.
func (r *Repository) List() ([]entities.Customer, error) {
	var customers []entities.Customer
	err := r.db.Order("id ASC").Find(&customers).Error
	return customers, database.Translate(err)
}

// Exists reports whether a customer row with the given ID is present.
func (r *Repository) Exists(id int64) (bool, error) {
	var count int64
	err := r.db.Model(&entities.Customer{}).Where("id = ?", id).Count(&count).Error
	if err != nil {
		return false, database.Translate(err)
	}
	return count > 0, nil
}

const maxNameLength = 256

func validate(customer *entities.Customer) error {
	if customer.ID <= 0 {
		return fmt.Errorf("customer id must be a positive integer: %w", entities.ErrInvalid)
	}
	name := strings.TrimSpace(customer.Name)
	if name == "" {
		return fmt.Errorf("customer name is required: %w", entities.ErrInvalid)
	}
	if len(name) > maxNameLength {
		return fmt.Errorf("customer name exceeds %d characters: %w", maxNameLength, entities.ErrInvalid)
	}
	if customer.Phone != "" && !digitsOnly(customer.Phone) {
		return fmt.Errorf("customer phone must contain digits only: %w", entities.ErrInvalid)
	}
	customer.Name = name
	return nil
}

func digitsOnly(s string) bool {
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}
