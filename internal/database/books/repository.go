// Package books provides database operations for cataloged titles.
package books

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/avolkov/librarium/internal/database"
	"github.com/avolkov/librarium/internal/entities"
)

// Repository handles all book rows, keyed by normalized ISBN.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new books repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a book. A colliding ISBN fails with entities.ErrDuplicateKey.
func (r *Repository) Create(book *entities.Book) error {
	if book.ISBN == "" {
		return fmt.Errorf("book isbn is required: %w", entities.ErrInvalid)
	}
	if book.AvailableCopies < 0 {
		return fmt.Errorf("available copies must not be negative: %w", entities.ErrInvalid)
	}
	return database.Translate(r.db.Create(book).Error)
}

// Update rewrites the descriptive fields of an existing book.
func (r *Repository) Update(book *entities.Book) error {
	if book.AvailableCopies < 0 {
		return fmt.Errorf("available copies must not be negative: %w", entities.ErrInvalid)
	}
	result := r.db.Model(&entities.Book{}).
		Where("isbn = ?", book.ISBN).
		Updates(map[string]any{
			"title":            book.Title,
			"author":           book.Author,
			"genre":            book.Genre,
			"pages":            book.Pages,
			"available_copies": book.AvailableCopies,
			"metadata_missing": book.MetadataMissing,
		})
	if result.Error != nil {
		return database.Translate(result.Error)
	}
	if result.RowsAffected == 0 {
		return entities.ErrNotFound
	}
	return nil
}

// Delete removes a book row. Open-loan checks belong to the integrity guard.
func (r *Repository) Delete(isbn string) error {
	result := r.db.Where("isbn = ?", isbn).Delete(&entities.Book{})
	if result.Error != nil {
		return database.Translate(result.Error)
	}
	if result.RowsAffected == 0 {
		return entities.ErrNotFound
	}
	return nil
}

// Get retrieves a book by ISBN.
func (r *Repository) Get(isbn string) (*entities.Book, error) {
	var book entities.Book
	if err := r.db.Where("isbn = ?", isbn).First(&book).Error; err != nil {
		return nil, database.Translate(err)
	}
	return &book, nil
}

// List returns all books ordered by title.
func (r *Repository) List() ([]entities.Book, error) {
	var books []entities.Book
	err := r.db.Order("title ASC, isbn ASC").Find(&books).Error
	return books, database.Translate(err)
}

// Exists reports whether a book row with the given ISBN is present.
func (r *Repository) Exists(isbn string) (bool, error) {
	var count int64
	err := r.db.Model(&entities.Book{}).Where("isbn = ?", isbn).Count(&count).Error
	if err != nil {
		return false, database.Translate(err)
	}
	return count > 0, nil
}

// AdjustCopies changes the available-copy count by delta in a single
// statement. The guard clause keeps the count from going negative even if two
// processes race on the same row.
func (r *Repository) AdjustCopies(isbn string, delta int) error {
	query := r.db.Model(&entities.Book{}).Where("isbn = ?", isbn)
	if delta < 0 {
		query = query.Where("available_copies >= ?", -delta)
	}
	result := query.Update("available_copies", gorm.Expr("available_copies + ?", delta))
	if result.Error != nil {
		return database.Translate(result.Error)
	}
	if result.RowsAffected == 0 {
		exists, err := r.Exists(isbn)
		if err != nil {
			return err
		}
		if !exists {
			return entities.ErrNotFound
		}
		return entities.ErrBookUnavailable
	}
	return nil
}

// MetadataFields carries the descriptive fields the enrichment path may set.
type MetadataFields struct {
	Title  string
	Author string
	Genre  string
	Pages  int
}

// ApplyMetadata fills descriptive fields fetched from the metadata provider
// and clears the metadata-missing marker.
func (r *Repository) ApplyMetadata(isbn string, md MetadataFields) error {
	updates := map[string]any{"metadata_missing": false}
	if md.Title != "" {
		updates["title"] = md.Title
	}
	if md.Author != "" {
		updates["author"] = md.Author
	}
	if md.Genre != "" {
		updates["genre"] = md.Genre
	}
	if md.Pages > 0 {
		updates["pages"] = md.Pages
	}
	result := r.db.Model(&entities.Book{}).Where("isbn = ?", isbn).Updates(updates)
	if result.Error != nil {
		return database.Translate(result.Error)
	}
	if result.RowsAffected == 0 {
		return entities.ErrNotFound
	}
	return nil
}

// MissingMetadata returns the books whose provider lookup never succeeded.
func (r *Repository) MissingMetadata() ([]entities.Book, error) {
	var books []entities.Book
	err := r.db.Where("metadata_missing = ?", true).Order("isbn ASC").Find(&books).Error
	return books, database.Translate(err)
}
