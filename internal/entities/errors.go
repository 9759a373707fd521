package entities

import "errors"

// Catalog error taxonomy. These are returned as values through every layer and
// translated to user-facing messages only at the presentation boundary.
var (
	// ErrDuplicateKey means an insert collided with an existing primary key.
	ErrDuplicateKey = errors.New("duplicate key")

	// ErrNotFound means the referenced record does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrHasOpenLoans blocks deletion of a customer or book with open loans.
	ErrHasOpenLoans = errors.New("record has open loans")

	// ErrBookUnavailable means a loan was requested with zero available copies.
	ErrBookUnavailable = errors.New("book unavailable")

	// ErrMetadataUnavailable means the metadata provider failed or returned
	// nothing. Book creation still succeeds; only the preview lookup fails.
	ErrMetadataUnavailable = errors.New("metadata unavailable")

	// ErrLoanClosed means the loan was already returned.
	ErrLoanClosed = errors.New("loan already closed")

	// ErrInvalid means the caller supplied a field that fails validation.
	ErrInvalid = errors.New("invalid field")
)
