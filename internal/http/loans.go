package http

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/avolkov/librarium/internal/entities"
)

// LoanStore is the slice of the catalog engine the loans controller uses.
type LoanStore interface {
	RecordLoan(ctx context.Context, customerID int64, isbn string) (*entities.Loan, error)
	ReturnLoan(ctx context.Context, loanID uint) error
	ListLoans(ctx context.Context, onlyOpen bool) ([]entities.Loan, error)
	OverdueLoans(ctx context.Context) ([]entities.Loan, error)
}

// LoansController handles loan endpoints.
type LoansController struct {
	store LoanStore
}

// NewLoansController creates a new LoansController.
func NewLoansController(store LoanStore) *LoansController {
	return &LoansController{store: store}
}

// RecordLoanRequest is the request body for issuing a book.
type RecordLoanRequest struct {
	CustomerID int64  `json:"customer_id"`
	ISBN       string `json:"isbn"`
}

// Create handles POST /api/loans.
func (lc *LoansController) Create(c *gin.Context) {
	var req RecordLoanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}
	if req.CustomerID <= 0 || req.ISBN == "" {
		respondBadRequest(c, "customer_id and isbn are required")
		return
	}

	loan, err := lc.store.RecordLoan(c.Request.Context(), req.CustomerID, req.ISBN)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, loan)
}

// Return handles POST /api/loans/:id/return.
func (lc *LoansController) Return(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		respondBadRequest(c, "invalid loan ID")
		return
	}
	if err := lc.store.ReturnLoan(c.Request.Context(), uint(id)); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// List handles GET /api/loans. Pass ?status=open to restrict to open loans.
func (lc *LoansController) List(c *gin.Context) {
	onlyOpen := c.Query("status") == string(entities.LoanStatusOpen)
	loans, err := lc.store.ListLoans(c.Request.Context(), onlyOpen)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, loans)
}

// Overdue handles GET /api/loans/overdue.
func (lc *LoansController) Overdue(c *gin.Context) {
	loans, err := lc.store.OverdueLoans(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, loans)
}
