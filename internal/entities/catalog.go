package entities

import "time"

type LoanStatus string

const (
	LoanStatusOpen   LoanStatus = "open"
	LoanStatusClosed LoanStatus = "closed"
)

// Customer is a library member. IDs are assigned externally (membership card
// numbers), so the primary key is not auto-incremented: inserting an existing
// ID is a duplicate, never an overwrite.
type Customer struct {
	ID        int64     `gorm:"primaryKey;autoIncrement:false" json:"id"`
	Name      string    `gorm:"not null;size:256" json:"name"`
	Email     string    `gorm:"size:255" json:"email,omitempty"`
	Phone     string    `gorm:"size:32" json:"phone,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Book is a cataloged title, keyed by normalized ISBN. Descriptive fields are
// filled from the metadata provider when it answers; MetadataMissing marks
// records created while the provider was unavailable so the UI can say so and
// the enrichment task can retry later.
type Book struct {
	ISBN            string    `gorm:"primaryKey;size:20" json:"isbn"`
	Title           string    `gorm:"size:512" json:"title,omitempty"`
	Author          string    `gorm:"size:256" json:"author,omitempty"`
	Genre           string    `gorm:"size:128" json:"genre,omitempty"`
	Pages           int       `json:"pages,omitempty"`
	AvailableCopies int       `gorm:"not null;default:0" json:"available_copies"`
	MetadataMissing bool      `gorm:"default:false" json:"metadata_missing"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// Loan relates one customer to one book. Open loans block deletion of both
// ends of the relation.
type Loan struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	CustomerID int64      `gorm:"index;not null" json:"customer_id"`
	ISBN       string     `gorm:"index;size:20;not null" json:"isbn"`
	Status     LoanStatus `gorm:"size:10;default:'open'" json:"status"`
	IssuedAt   time.Time  `json:"issued_at"`
	DueAt      time.Time  `json:"due_at"`
	ReturnedAt *time.Time `json:"returned_at,omitempty"`

	Customer Customer `gorm:"foreignKey:CustomerID" json:"-"`
	Book     Book     `gorm:"foreignKey:ISBN;references:ISBN" json:"-"`
}

func (Customer) TableName() string {
	return "customers"
}

func (Book) TableName() string {
	return "books"
}

func (Loan) TableName() string {
	return "loans"
}

// Open reports whether the loan has not been returned yet.
func (l Loan) Open() bool {
	return l.Status == LoanStatusOpen
}

// Overdue reports whether the loan is open and past its due date.
func (l Loan) Overdue(now time.Time) bool {
	return l.Open() && now.After(l.DueAt)
}
