package audit

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/mrlokans/librarian/internal/entities"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// LogEvent saves an audit event to the database.
func (r *Repository) LogEvent(ctx context.Context, event *entities.AuditEvent) error {
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}
	return r.db.WithContext(ctx).Create(event).Error
}

// GetEvents retrieves paginated audit events, most recent first.
func (r *Repository) GetEvents(ctx context.Context, limit, offset int) ([]entities.AuditEvent, int64, error) {
	return r.page(ctx, r.db.WithContext(ctx).Model(&entities.AuditEvent{}), limit, offset)
}

// GetEventsByAction retrieves audit events filtered by action.
func (r *Repository) GetEventsByAction(ctx context.Context, action entities.AuditAction, limit, offset int) ([]entities.AuditEvent, int64, error) {
	query := r.db.WithContext(ctx).Model(&entities.AuditEvent{}).Where("action = ?", action)
	return r.page(ctx, query, limit, offset)
}

// DeleteOldEvents removes audit events older than the specified time.
// Returns the number of deleted events.
func (r *Repository) DeleteOldEvents(ctx context.Context, olderThan time.Time) (int64, error) {
	result := r.db.WithContext(ctx).Where("created_at < ?", olderThan).Delete(&entities.AuditEvent{})
	return result.RowsAffected, result.Error
}

func (r *Repository) page(ctx context.Context, query *gorm.DB, limit, offset int) ([]entities.AuditEvent, int64, error) {
	var events []entities.AuditEvent
	var total int64

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	err := query.Order("created_at DESC").Order("id DESC").Limit(limit).Offset(offset).Find(&events).Error
	return events, total, err
}
