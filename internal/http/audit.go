package http

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/librarian/internal/entities"
)

const auditPageSize = 50

// AuditReader lists recorded mutations. audit.Service implements it.
type AuditReader interface {
	GetEvents(ctx context.Context, limit, offset int) ([]entities.AuditEvent, int64, error)
	GetEventsByAction(ctx context.Context, action entities.AuditAction, limit, offset int) ([]entities.AuditEvent, int64, error)
}

type AuditController struct {
	reader AuditReader
}

func NewAuditController(reader AuditReader) *AuditController {
	return &AuditController{
		reader: reader,
	}
}

// AuditLogPage renders the audit log UI
// GET /audit
func (ac *AuditController) AuditLogPage(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}
	action := c.Query("action")

	events, total, err := ac.load(c.Request.Context(), action, auditPageSize, (page-1)*auditPageSize)
	if err != nil {
		c.HTML(http.StatusServiceUnavailable, "error", gin.H{
			"Error": "Failed to load audit events",
		})
		return
	}

	totalPages := (int(total) + auditPageSize - 1) / auditPageSize
	if totalPages < 1 {
		totalPages = 1
	}

	c.HTML(http.StatusOK, "audit", gin.H{
		"Events":      events,
		"CurrentPage": page,
		"TotalPages":  totalPages,
		"TotalEvents": total,
		"Action":      action,
		"Actions":     getActionOptions(),
	})
}

// GetAuditEvents returns paginated audit events as JSON
// GET /api/audit
func (ac *AuditController) GetAuditEvents(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(auditPageSize)))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = auditPageSize
	}

	events, total, err := ac.load(c.Request.Context(), c.Query("action"), limit, (page-1)*limit)
	if err != nil {
		respondInternalError(c, err, "load audit events")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"events":       events,
		"page":         page,
		"limit":        limit,
		"total_events": total,
	})
}

func (ac *AuditController) load(ctx context.Context, action string, limit, offset int) ([]entities.AuditEvent, int64, error) {
	if action != "" {
		return ac.reader.GetEventsByAction(ctx, entities.AuditAction(action), limit, offset)
	}
	return ac.reader.GetEvents(ctx, limit, offset)
}

type ActionOption struct {
	Value string
	Label string
}

func getActionOptions() []ActionOption {
	return []ActionOption{
		{Value: "", Label: "All Events"},
		{Value: string(entities.AuditActionBookAdd), Label: "Book added"},
		{Value: string(entities.AuditActionBookUpdate), Label: "Book updated"},
		{Value: string(entities.AuditActionBookDelete), Label: "Book deleted"},
		{Value: string(entities.AuditActionAuthorAdd), Label: "Author added"},
	}
}
