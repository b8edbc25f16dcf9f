package entities

import "time"

type AuditAction string

const (
	AuditActionBookAdd    AuditAction = "book_add"
	AuditActionBookUpdate AuditAction = "book_update"
	AuditActionBookDelete AuditAction = "book_delete"
	AuditActionAuthorAdd  AuditAction = "author_add"
)

type AuditStatus string

const (
	AuditStatusSuccess AuditStatus = "success"
	AuditStatusFailed  AuditStatus = "failed"
)

type AuditEvent struct {
	ID          uint        `gorm:"primaryKey" json:"id"`
	Action      AuditAction `gorm:"index;size:50" json:"action"`
	EntityID    *uint       `gorm:"index" json:"entity_id,omitempty"`
	Description string      `gorm:"size:500" json:"description"`
	Status      AuditStatus `gorm:"size:20" json:"status"`
	ErrorMsg    string      `gorm:"size:500" json:"error_msg,omitempty"`
	CreatedAt   time.Time   `gorm:"index" json:"created_at"`
}

func (AuditEvent) TableName() string {
	return "audit_events"
}
