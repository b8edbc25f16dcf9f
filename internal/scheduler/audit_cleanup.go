// Package scheduler runs background maintenance on a cron schedule.
package scheduler

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// Pruner deletes audit events older than the retention window.
// audit.Service implements it.
type Pruner interface {
	DeleteOldEvents(ctx context.Context, retention time.Duration) (int64, error)
}

var parser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// ValidateCronSchedule checks a five-field cron expression.
func ValidateCronSchedule(schedule string) error {
	_, err := parser.Parse(schedule)
	return err
}

// AuditCleanupScheduler prunes the audit trail periodically.
type AuditCleanupScheduler struct {
	pruner    Pruner
	schedule  string
	retention time.Duration

	cron       *cron.Cron
	entryID    cron.EntryID
	mu         sync.RWMutex
	isRunning  bool
	cancelFunc context.CancelFunc
}

// NewAuditCleanupScheduler creates a scheduler that keeps retentionDays of
// audit events. A non-positive retention disables cleanup.
func NewAuditCleanupScheduler(pruner Pruner, schedule string, retentionDays int) *AuditCleanupScheduler {
	return &AuditCleanupScheduler{
		pruner:    pruner,
		schedule:  schedule,
		retention: time.Duration(retentionDays) * 24 * time.Hour,
		cron:      cron.New(cron.WithParser(parser)),
	}
}

// Start schedules the cleanup job. It stops on its own when ctx is done.
func (s *AuditCleanupScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return nil
	}

	if s.retention <= 0 {
		log.Printf("Audit cleanup scheduler: disabled")
		return nil
	}

	if err := ValidateCronSchedule(s.schedule); err != nil {
		return fmt.Errorf("invalid cron schedule '%s': %w", s.schedule, err)
	}

	entryID, err := s.cron.AddFunc(s.schedule, func() {
		_, _ = s.RunNow(context.Background())
	})
	if err != nil {
		return fmt.Errorf("failed to schedule audit cleanup: %w", err)
	}
	s.entryID = entryID

	var cancelCtx context.Context
	cancelCtx, s.cancelFunc = context.WithCancel(ctx)

	s.cron.Start()
	s.isRunning = true

	log.Printf("Audit cleanup scheduler: started with schedule '%s', keeping %v. Next run: %v",
		s.schedule, s.retention, s.cron.Entry(entryID).Next)

	go func() {
		<-cancelCtx.Done()
		s.Stop()
	}()

	return nil
}

// Stop waits for a running cleanup to finish and stops the scheduler.
func (s *AuditCleanupScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}

	ctx := s.cron.Stop()
	<-ctx.Done()

	s.cron.Remove(s.entryID)
	if s.cancelFunc != nil {
		s.cancelFunc()
		s.cancelFunc = nil
	}
	s.isRunning = false

	log.Printf("Audit cleanup scheduler: stopped")
}

// RunNow prunes immediately and returns the number of deleted events.
func (s *AuditCleanupScheduler) RunNow(ctx context.Context) (int64, error) {
	deleted, err := s.pruner.DeleteOldEvents(ctx, s.retention)
	if err != nil {
		log.Printf("Audit cleanup: failed: %v", err)
		return 0, err
	}
	log.Printf("Audit cleanup: removed %d events older than %v", deleted, s.retention)
	return deleted, nil
}

// IsRunning returns whether the scheduler is active.
func (s *AuditCleanupScheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// GetNextRunTime returns when the next cleanup will occur.
func (s *AuditCleanupScheduler) GetNextRunTime() *time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.isRunning {
		return nil
	}

	next := s.cron.Entry(s.entryID).Next
	return &next
}
