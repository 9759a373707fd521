package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/avolkov/librarium/internal/entities"
)

// ErrorResponse is the JSON body for every failed request.
type ErrorResponse struct {
	Error string `json:"error"`
}

// respondError translates catalog taxonomy errors into HTTP statuses. Anything
// outside the taxonomy is a 500.
func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, entities.ErrInvalid):
		status = http.StatusBadRequest
	case errors.Is(err, entities.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, entities.ErrDuplicateKey),
		errors.Is(err, entities.ErrHasOpenLoans),
		errors.Is(err, entities.ErrBookUnavailable),
		errors.Is(err, entities.ErrLoanClosed):
		status = http.StatusConflict
	case errors.Is(err, entities.ErrMetadataUnavailable):
		status = http.StatusBadGateway
	}
	c.JSON(status, ErrorResponse{Error: err.Error()})
}

func respondBadRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: msg})
}
