package tasks

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/mikestefanello/backlite"

	"github.com/avolkov/librarium/internal/database/books"
	"github.com/avolkov/librarium/internal/metadata"
)

// BookRefresher re-reads one book row into the index cache after the task
// updated storage.
type BookRefresher interface {
	RefreshBook(isbn string) error
}

// EnrichBookTask retries the metadata lookup for a book that was cataloged
// while the provider was unavailable.
type EnrichBookTask struct {
	ISBN string `json:"isbn"`
}

// Config returns the queue configuration for metadata retry tasks.
func (t EnrichBookTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "enrich_book",
		MaxAttempts: 3,
		Backoff:     30 * time.Second,
		Timeout:     2 * time.Minute,
		Retention: &backlite.Retention{
			Duration:   24 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// EnrichBookProcessor creates the processor for EnrichBookTask. It fetches
// metadata, applies it to the stored row, and refreshes the book index.
func EnrichBookProcessor(provider metadata.Provider, repo *books.Repository, refresher BookRefresher) backlite.QueueProcessor[EnrichBookTask] {
	return func(ctx context.Context, task EnrichBookTask) error {
		if provider == nil {
			return fmt.Errorf("metadata provider not configured")
		}

		md, err := provider.LookupISBN(ctx, task.ISBN)
		if err != nil {
			return fmt.Errorf("lookup %s: %w", task.ISBN, err)
		}

		err = repo.ApplyMetadata(task.ISBN, books.MetadataFields{
			Title:  md.Title,
			Author: md.Author,
			Genre:  md.Genre,
			Pages:  md.Pages,
		})
		if err != nil {
			return fmt.Errorf("apply metadata for %s: %w", task.ISBN, err)
		}

		if refresher != nil {
			if err := refresher.RefreshBook(task.ISBN); err != nil {
				log.Printf("[TASK] Book index refresh for %s failed: %v", task.ISBN, err)
			}
		}

		log.Printf("[TASK] Enriched book %s (%s)", task.ISBN, md.Title)
		return nil
	}
}

// NewEnrichBookQueue creates a backlite queue for metadata retry tasks.
func NewEnrichBookQueue(provider metadata.Provider, repo *books.Repository, refresher BookRefresher) backlite.Queue {
	return backlite.NewQueue(EnrichBookProcessor(provider, repo, refresher))
}
