package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// seedLoanFixtures catalogs one member and one title so loan endpoints have
// something to work with.
func seedLoanFixtures(t *testing.T, router *gin.Engine) {
	t.Helper()
	for _, r := range []struct{ path, body string }{
		{"/api/customers", `{"id": 1, "name": "Ada"}`},
		{"/api/books", `{"isbn": "9780134685991", "copies": 1}`},
	} {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", r.path, strings.NewReader(r.body))
		router.ServeHTTP(w, req)
		require.Equal(t, http.StatusCreated, w.Code)
	}
}

func recordLoan(t *testing.T, router *gin.Engine) map[string]interface{} {
	t.Helper()
	w := httptest.NewRecorder()
	body := `{"customer_id": 1, "isbn": "9780134685991"}`
	req, _ := http.NewRequest("POST", "/api/loans", strings.NewReader(body))
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code)

	var loan map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &loan))
	return loan
}

func TestLoansController_Create(t *testing.T) {
	t.Run("issues a book", func(t *testing.T) {
		router, _, _, cleanup := setupTestRouter(t)
		defer cleanup()
		seedLoanFixtures(t, router)

		loan := recordLoan(t, router)

		assert.Equal(t, "open", loan["status"])
		assert.Equal(t, float64(1), loan["customer_id"])
		assert.Equal(t, "9780134685991", loan["isbn"])

		// The copy left the shelf.
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/api/books/9780134685991", nil)
		router.ServeHTTP(w, req)
		var book map[string]interface{}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &book))
		assert.Equal(t, float64(0), book["available_copies"])
	})

	t.Run("returns 409 when no copy is available", func(t *testing.T) {
		router, _, _, cleanup := setupTestRouter(t)
		defer cleanup()
		seedLoanFixtures(t, router)
		recordLoan(t, router)

		w := httptest.NewRecorder()
		body := `{"customer_id": 1, "isbn": "9780134685991"}`
		req, _ := http.NewRequest("POST", "/api/loans", strings.NewReader(body))
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("returns 404 for an unknown customer", func(t *testing.T) {
		router, _, _, cleanup := setupTestRouter(t)
		defer cleanup()
		seedLoanFixtures(t, router)

		w := httptest.NewRecorder()
		body := `{"customer_id": 42, "isbn": "9780134685991"}`
		req, _ := http.NewRequest("POST", "/api/loans", strings.NewReader(body))
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("returns 400 for missing fields", func(t *testing.T) {
		router, _, _, cleanup := setupTestRouter(t)
		defer cleanup()

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/api/loans", strings.NewReader(`{"isbn": "9780134685991"}`))
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestLoansController_Return(t *testing.T) {
	t.Run("closes the loan and restores the copy", func(t *testing.T) {
		router, _, _, cleanup := setupTestRouter(t)
		defer cleanup()
		seedLoanFixtures(t, router)
		loan := recordLoan(t, router)

		w := httptest.NewRecorder()
		path := fmt.Sprintf("/api/loans/%v/return", loan["id"])
		req, _ := http.NewRequest("POST", path, nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNoContent, w.Code)

		w = httptest.NewRecorder()
		req, _ = http.NewRequest("GET", "/api/books/9780134685991", nil)
		router.ServeHTTP(w, req)
		var book map[string]interface{}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &book))
		assert.Equal(t, float64(1), book["available_copies"])
	})

	t.Run("returns 409 for an already returned loan", func(t *testing.T) {
		router, _, _, cleanup := setupTestRouter(t)
		defer cleanup()
		seedLoanFixtures(t, router)
		loan := recordLoan(t, router)

		path := fmt.Sprintf("/api/loans/%v/return", loan["id"])
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", path, nil)
		router.ServeHTTP(w, req)
		require.Equal(t, http.StatusNoContent, w.Code)

		w = httptest.NewRecorder()
		req, _ = http.NewRequest("POST", path, nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("returns 404 for an unknown loan", func(t *testing.T) {
		router, _, _, cleanup := setupTestRouter(t)
		defer cleanup()

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/api/loans/42/return", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestLoansController_List(t *testing.T) {
	router, _, _, cleanup := setupTestRouter(t)
	defer cleanup()
	seedLoanFixtures(t, router)
	loan := recordLoan(t, router)

	// Close the loan, then issue another one.
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", fmt.Sprintf("/api/loans/%v/return", loan["id"]), nil)
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusNoContent, w.Code)
	recordLoan(t, router)

	w = httptest.NewRecorder()
	req, _ = http.NewRequest("GET", "/api/loans", nil)
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	var all []map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &all))
	assert.Len(t, all, 2)

	w = httptest.NewRecorder()
	req, _ = http.NewRequest("GET", "/api/loans?status=open", nil)
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	var open []map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &open))
	require.Len(t, open, 1)
	assert.Equal(t, "open", open[0]["status"])
}

func TestLoansController_Overdue(t *testing.T) {
	router, _, _, cleanup := setupTestRouter(t)
	defer cleanup()
	seedLoanFixtures(t, router)
	recordLoan(t, router)

	// A fresh loan is not overdue.
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/loans/overdue", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var overdue []map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &overdue))
	assert.Empty(t, overdue)
}
