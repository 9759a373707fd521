package http

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/avolkov/librarium/internal/entities"
)

// CustomerStore is the slice of the catalog engine the customers controller uses.
type CustomerStore interface {
	AddCustomer(ctx context.Context, customer entities.Customer) (*entities.Customer, error)
	UpdateCustomer(ctx context.Context, customer entities.Customer) (*entities.Customer, error)
	RemoveCustomer(ctx context.Context, id int64) error
	FindCustomer(ctx context.Context, id int64) (*entities.Customer, error)
	ListCustomers(ctx context.Context) ([]entities.Customer, error)
}

// CustomersController handles member management endpoints.
type CustomersController struct {
	store CustomerStore
}

// NewCustomersController creates a new CustomersController.
func NewCustomersController(store CustomerStore) *CustomersController {
	return &CustomersController{store: store}
}

// CustomerRequest is the request body for creating or updating a customer.
type CustomerRequest struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
}

// Create handles POST /api/customers.
func (cc *CustomersController) Create(c *gin.Context) {
	var req CustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	customer, err := cc.store.AddCustomer(c.Request.Context(), entities.Customer{
		ID:    req.ID,
		Name:  req.Name,
		Email: req.Email,
		Phone: req.Phone,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, customer)
}

// Update handles PUT /api/customers/:id.
func (cc *CustomersController) Update(c *gin.Context) {
	id, ok := customerID(c)
	if !ok {
		return
	}
	var req CustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	customer, err := cc.store.UpdateCustomer(c.Request.Context(), entities.Customer{
		ID:    id,
		Name:  req.Name,
		Email: req.Email,
		Phone: req.Phone,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, customer)
}

// Delete handles DELETE /api/customers/:id.
func (cc *CustomersController) Delete(c *gin.Context) {
	id, ok := customerID(c)
	if !ok {
		return
	}
	if err := cc.store.RemoveCustomer(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Get handles GET /api/customers/:id.
func (cc *CustomersController) Get(c *gin.Context) {
	id, ok := customerID(c)
	if !ok {
		return
	}
	customer, err := cc.store.FindCustomer(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, customer)
}

// List handles GET /api/customers.
func (cc *CustomersController) List(c *gin.Context) {
	customers, err := cc.store.ListCustomers(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, customers)
}

func customerID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		respondBadRequest(c, "invalid customer ID")
		return 0, false
	}
	return id, true
}
