package audit

import (
	"context"
	"log"
	"time"

	"github.com/mrlokans/librarian/internal/database/audit"
	"github.com/mrlokans/librarian/internal/entities"
)

// Service records the audit trail of library mutations.
type Service struct {
	repo *audit.Repository
}

// NewService creates a new audit service.
func NewService(repo *audit.Repository) *Service {
	return &Service{repo: repo}
}

// Log records a generic audit event.
func (s *Service) Log(ctx context.Context, event *entities.AuditEvent) error {
	return s.repo.LogEvent(ctx, event)
}

// LogMutation records the outcome of a book or author mutation. It runs on
// the caller's goroutine so the storage never sees two statements at once;
// failures to write the trail are only logged.
func (s *Service) LogMutation(ctx context.Context, action entities.AuditAction, entityID uint, description string, err error) {
	event := &entities.AuditEvent{
		Action:      action,
		Description: truncate(description, 500),
		Status:      entities.AuditStatusSuccess,
	}
	if entityID != 0 {
		event.EntityID = &entityID
	}

	if err != nil {
		event.Status = entities.AuditStatusFailed
		event.ErrorMsg = truncate(err.Error(), 500)
	}

	if logErr := s.repo.LogEvent(ctx, event); logErr != nil {
		log.Printf("Failed to log audit event %s: %v", action, logErr)
	}
}

// GetEvents retrieves paginated audit events.
func (s *Service) GetEvents(ctx context.Context, limit, offset int) ([]entities.AuditEvent, int64, error) {
	return s.repo.GetEvents(ctx, limit, offset)
}

// GetEventsByAction retrieves audit events filtered by action.
func (s *Service) GetEventsByAction(ctx context.Context, action entities.AuditAction, limit, offset int) ([]entities.AuditEvent, int64, error) {
	return s.repo.GetEventsByAction(ctx, action, limit, offset)
}

// DeleteOldEvents removes events older than the specified duration.
func (s *Service) DeleteOldEvents(ctx context.Context, retention time.Duration) (int64, error) {
	cutoff := time.Now().Add(-retention)
	return s.repo.DeleteOldEvents(ctx, cutoff)
}

// truncate shortens a string to max length.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
