// Package scheduler runs periodic maintenance jobs against the catalog.
package scheduler

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/avolkov/librarium/internal/entities"
)

// OverdueLister is the slice of the loans repository the sweep needs.
type OverdueLister interface {
	ListOverdue(now time.Time) ([]entities.Loan, error)
}

// OverdueSweep periodically reports open loans past their due date.
type OverdueSweep struct {
	loans    OverdueLister
	schedule string

	cron      *cron.Cron
	entryID   cron.EntryID
	mu        sync.RWMutex
	isRunning bool
}

// NewOverdueSweep creates a sweep on the given cron schedule (standard
// five-field format).
func NewOverdueSweep(loans OverdueLister, schedule string) *OverdueSweep {
	return &OverdueSweep{
		loans:    loans,
		schedule: schedule,
		cron:     cron.New(cron.WithParser(cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow))),
	}
}

// Start begins the scheduler.
func (s *OverdueSweep) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return nil
	}

	entryID, err := s.cron.AddFunc(s.schedule, s.runSweep)
	if err != nil {
		return fmt.Errorf("failed to schedule overdue sweep: %w", err)
	}
	s.entryID = entryID

	s.cron.Start()
	s.isRunning = true
	log.Printf("Overdue sweep scheduled: %s", s.schedule)

	go func() {
		<-ctx.Done()
		s.Stop()
	}()

	return nil
}

// Stop halts the scheduler, waiting for a running sweep to finish.
func (s *OverdueSweep) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}
	stopCtx := s.cron.Stop()
	<-stopCtx.Done()
	s.isRunning = false
	log.Printf("Overdue sweep stopped")
}

func (s *OverdueSweep) runSweep() {
	now := time.Now()
	overdue, err := s.loans.ListOverdue(now)
	if err != nil {
		log.Printf("Overdue sweep failed: %v", err)
		return
	}
	if len(overdue) == 0 {
		return
	}
	oldest := overdue[0]
	log.Printf("Overdue sweep: %d open loans past due (oldest: loan %d for %s, due %s)",
		len(overdue), oldest.ID, oldest.ISBN, oldest.DueAt.Format("2006-01-02"))
}
