package http

import (
	"github.com/mrlokans/librarian/internal/database"
	"github.com/mrlokans/librarian/internal/demo"
	"github.com/mrlokans/librarian/internal/session"
)

// RouterConfig contains all dependencies and configuration needed
// to create the HTTP router.
type RouterConfig struct {
	// Core dependencies
	Catalog  Catalog
	Sessions *session.Manager
	Database *database.Database // health checks; nil reports "not configured"

	// Audit trail page; nil disables /audit
	AuditReader AuditReader

	// CSRF protection; an empty secret disables it
	CSRFSecret    []byte
	SecureCookies bool

	// Read-only mode
	DemoMiddleware *demo.Middleware

	// Directory with *.html templates; empty uses the embedded ones
	TemplatesPath string

	// Application info
	Version string
}
