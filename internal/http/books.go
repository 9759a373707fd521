package http

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/avolkov/librarium/internal/catalog"
	"github.com/avolkov/librarium/internal/entities"
	"github.com/avolkov/librarium/internal/metadata"
)

// BookStore is the slice of the catalog engine the books controller uses.
type BookStore interface {
	AddBook(ctx context.Context, isbn string, overrides catalog.BookOverrides) (*entities.Book, error)
	UpdateBook(ctx context.Context, book entities.Book) (*entities.Book, error)
	RemoveBook(ctx context.Context, isbn string) error
	FindBook(ctx context.Context, isbn string) (*entities.Book, error)
	ListBooks(ctx context.Context) ([]entities.Book, error)
	LookupISBN(ctx context.Context, isbn string) (*metadata.BookMetadata, error)
}

// BooksController handles catalog title endpoints.
type BooksController struct {
	store BookStore
}

// NewBooksController creates a new BooksController.
func NewBooksController(store BookStore) *BooksController {
	return &BooksController{store: store}
}

// AddBookRequest is the request body for cataloging a title. Everything but
// the ISBN is optional; missing fields come from the metadata provider.
type AddBookRequest struct {
	ISBN   string `json:"isbn"`
	Title  string `json:"title,omitempty"`
	Author string `json:"author,omitempty"`
	Genre  string `json:"genre,omitempty"`
	Pages  int    `json:"pages,omitempty"`
	Copies int    `json:"copies,omitempty"`
}

// Create handles POST /api/books.
func (bc *BooksController) Create(c *gin.Context) {
	var req AddBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}
	if req.ISBN == "" {
		respondBadRequest(c, "isbn is required")
		return
	}

	book, err := bc.store.AddBook(c.Request.Context(), req.ISBN, catalog.BookOverrides{
		Title:  req.Title,
		Author: req.Author,
		Genre:  req.Genre,
		Pages:  req.Pages,
		Copies: req.Copies,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, book)
}

// UpdateBookRequest is the request body for updating a cataloged title.
type UpdateBookRequest struct {
	Title  string `json:"title"`
	Author string `json:"author"`
	Genre  string `json:"genre"`
	Pages  int    `json:"pages"`
	Copies int    `json:"copies"`
}

// Update handles PUT /api/books/:isbn.
func (bc *BooksController) Update(c *gin.Context) {
	var req UpdateBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	book, err := bc.store.UpdateBook(c.Request.Context(), entities.Book{
		ISBN:            c.Param("isbn"),
		Title:           req.Title,
		Author:          req.Author,
		Genre:           req.Genre,
		Pages:           req.Pages,
		AvailableCopies: req.Copies,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, book)
}

// Delete handles DELETE /api/books/:isbn.
func (bc *BooksController) Delete(c *gin.Context) {
	if err := bc.store.RemoveBook(c.Request.Context(), c.Param("isbn")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Get handles GET /api/books/:isbn.
func (bc *BooksController) Get(c *gin.Context) {
	book, err := bc.store.FindBook(c.Request.Context(), c.Param("isbn"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, book)
}

// List handles GET /api/books.
func (bc *BooksController) List(c *gin.Context) {
	books, err := bc.store.ListBooks(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, books)
}

// Lookup handles GET /api/books/:isbn/lookup — a provider metadata preview
// for a title that is not cataloged yet.
func (bc *BooksController) Lookup(c *gin.Context) {
	md, err := bc.store.LookupISBN(c.Request.Context(), c.Param("isbn"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, md)
}
