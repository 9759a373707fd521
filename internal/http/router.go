package http

import (
	"github.com/gin-gonic/gin"

	"github.com/avolkov/librarium/internal/catalog"
	"github.com/avolkov/librarium/internal/database"
)

// RouterConfig contains the dependencies needed to create the HTTP router.
type RouterConfig struct {
	Engine   *catalog.Engine
	Database *database.Database
	Version  string
}

// NewRouter creates and configures the HTTP router with all endpoints.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	health := NewHealthController(cfg.Database, cfg.Version)
	customersController := NewCustomersController(cfg.Engine)
	booksController := NewBooksController(cfg.Engine)
	loansController := NewLoansController(cfg.Engine)

	router.GET("/health", health.Status)

	api := router.Group("/api")
	{
		api.GET("/customers", customersController.List)
		api.POST("/customers", customersController.Create)
		api.GET("/customers/:id", customersController.Get)
		api.PUT("/customers/:id", customersController.Update)
		api.DELETE("/customers/:id", customersController.Delete)

		api.GET("/books", booksController.List)
		api.POST("/books", booksController.Create)
		api.GET("/books/:isbn", booksController.Get)
		api.GET("/books/:isbn/lookup", booksController.Lookup)
		api.PUT("/books/:isbn", booksController.Update)
		api.DELETE("/books/:isbn", booksController.Delete)

		api.GET("/loans", loansController.List)
		api.POST("/loans", loansController.Create)
		api.POST("/loans/:id/return", loansController.Return)
		api.GET("/loans/overdue", loansController.Overdue)
	}

	return router
}
