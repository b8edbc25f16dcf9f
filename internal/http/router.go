package http

import (
	"fmt"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/librarian/internal/session"
)

// NewRouter creates and configures the HTTP router with all endpoints.
// Uses RouterConfig to receive all dependencies.
func NewRouter(cfg RouterConfig) (*gin.Engine, error) {
	if cfg.Catalog == nil || cfg.Sessions == nil {
		return nil, fmt.Errorf("router needs a catalog and a session manager")
	}

	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	router.Use(session.SecurityHeadersMiddleware())
	if cfg.SecureCookies {
		router.Use(session.StrictTransportSecurityMiddleware())
	}

	// Sessions load first so a CSRF failure can leave a flash message
	router.Use(cfg.Sessions.SessionLoadSave())
	if len(cfg.CSRFSecret) > 0 {
		router.Use(session.CSRFMiddleware(cfg.CSRFSecret, cfg.SecureCookies, cfg.Sessions))
	}

	if cfg.DemoMiddleware != nil && cfg.DemoMiddleware.IsEnabled() {
		router.Use(cfg.DemoMiddleware.InjectContext())
		router.Use(cfg.DemoMiddleware.Handler())
	}

	tmpl, err := loadTemplates(cfg.TemplatesPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load templates: %w", err)
	}
	router.SetHTMLTemplate(tmpl)

	health := NewHealthController(cfg.Database, cfg.Version)
	shell := NewShellController(cfg.Catalog, cfg.Sessions)
	books := NewBooksController(cfg.Catalog)

	// Health endpoints
	router.GET("/health", health.Status)
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "pong",
		})
	})

	// The library page and its actions
	router.GET("/", shell.Page)
	router.POST("/books", shell.Add)
	router.POST("/books/update", shell.Update)
	router.POST("/books/delete", shell.Delete)
	router.GET("/refresh", shell.Refresh)

	// Read-only JSON
	router.GET("/api/books", books.GetAllBooks)
	router.GET("/api/books/:id", books.GetBook)
	router.GET("/api/authors", books.GetAllAuthors)

	if cfg.AuditReader != nil {
		audit := NewAuditController(cfg.AuditReader)
		router.GET("/audit", audit.AuditLogPage)
		router.GET("/api/audit", audit.GetAuditEvents)
	}

	return router, nil
}
