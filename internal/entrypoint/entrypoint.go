package entrypoint

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/avolkov/librarium/internal/catalog"
	"github.com/avolkov/librarium/internal/config"
	"github.com/avolkov/librarium/internal/database"
	"github.com/avolkov/librarium/internal/database/books"
	"github.com/avolkov/librarium/internal/database/customers"
	"github.com/avolkov/librarium/internal/database/loans"
	http_controllers "github.com/avolkov/librarium/internal/http"
	"github.com/avolkov/librarium/internal/integrity"
	"github.com/avolkov/librarium/internal/metadata"
	"github.com/avolkov/librarium/internal/scheduler"
	"github.com/avolkov/librarium/internal/tasks"
)

// ShutdownFunc is called during graceful shutdown to clean up resources.
type ShutdownFunc func(ctx context.Context)

// Serve runs the HTTP server until SIGINT/SIGTERM, then drains it within the
// configured timeout, calling onShutdown first.
func Serve(router *gin.Engine, cfg *config.Config, onShutdown ShutdownFunc) {
	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler: router,
	}

	go func() {
		fmt.Printf("Starting server at %s:%d\n", cfg.HTTP.Host, cfg.HTTP.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Printf("Shutdown Server, waiting %v before killing\n", timeout)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if onShutdown != nil {
		onShutdown(ctx)
	}

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server Shutdown:", err)
	}

	log.Println("Server exiting")
}

// Run wires the whole service together and serves it.
func Run(cfg *config.Config, version string) {
	log.Printf("Starting Librarium v%s", version)

	db, err := database.New(cfg.Database.Path)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("Error closing database: %v", err)
		}
	}()

	customerRepo := customers.NewRepository(db.DB)
	bookRepo := books.NewRepository(db.DB)
	loanRepo := loans.NewRepository(db.DB)
	guard := integrity.NewGuard(customerRepo, bookRepo, loanRepo)

	cache, err := catalog.NewCache(customerRepo, bookRepo, cfg.Cache.MaxEntries)
	if err != nil {
		log.Fatalf("Failed to initialize index cache: %v", err)
	}
	defer cache.Close()

	// Cold-start population; the cache self-heals afterwards, so a failure
	// here only costs the first lookups a storage round trip.
	if err := cache.Warm(); err != nil {
		log.Printf("WARNING: index warm-up failed: %v", err)
	}

	provider := metadata.NewGoogleBooksClient(cfg.Metadata.BaseURL, cfg.Metadata.Timeout)

	// Task queue for deferred metadata retries, if enabled.
	var taskClient *tasks.Client
	var taskCtxCancel context.CancelFunc
	if cfg.Tasks.Enabled {
		taskCfg := tasks.Config{
			Workers:           cfg.Tasks.Workers,
			ReleaseAfter:      cfg.Tasks.ReleaseAfter,
			CleanupInterval:   cfg.Tasks.CleanupInterval,
			RetentionDuration: cfg.Tasks.RetentionDuration,
		}

		taskClient, err = tasks.NewClient(cfg.Database.Path, taskCfg)
		if err != nil {
			log.Fatalf("Failed to initialize task queue: %v", err)
		}
		defer func() {
			if err := taskClient.Close(); err != nil {
				log.Printf("Error closing task client: %v", err)
			}
		}()

		taskClient.Register(
			tasks.NewEnrichBookQueue(provider, bookRepo, cache),
		)

		var taskCtx context.Context
		taskCtx, taskCtxCancel = context.WithCancel(context.Background())
		go taskClient.Start(taskCtx)
	}

	engineCfg := catalog.Config{
		Customers:  customerRepo,
		Books:      bookRepo,
		Loans:      loanRepo,
		Guard:      guard,
		Cache:      cache,
		Provider:   provider,
		LoanPeriod: time.Duration(cfg.Loans.PeriodDays) * 24 * time.Hour,
	}
	if taskClient != nil {
		engineCfg.Enqueuer = taskClient
	}
	engine := catalog.NewEngine(engineCfg)

	var sweep *scheduler.OverdueSweep
	if cfg.OverdueSweep.Enabled {
		sweep = scheduler.NewOverdueSweep(loanRepo, cfg.OverdueSweep.Schedule)
		if err := sweep.Start(context.Background()); err != nil {
			log.Printf("WARNING: overdue sweep not started: %v", err)
		}
	}

	router := http_controllers.NewRouter(http_controllers.RouterConfig{
		Engine:   engine,
		Database: db,
		Version:  version,
	})

	onShutdown := func(ctx context.Context) {
		if sweep != nil {
			sweep.Stop()
		}
		if taskClient != nil && taskCtxCancel != nil {
			taskClient.Stop(ctx)
			taskCtxCancel()
		}
	}

	Serve(router, cfg, onShutdown)
}
