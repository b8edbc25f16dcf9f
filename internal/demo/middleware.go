// Package demo puts the server in read-only mode: every request that would
// change the library is refused.
package demo

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// Message is shown when a write is refused.
const Message = "This action is disabled in demo mode."

// ContextKeyDemoMode stores the demo flag for template rendering.
const ContextKeyDemoMode = "demo_mode"

// Flasher queues a message for the next rendered page. session.Manager
// implements it.
type Flasher interface {
	PutFlash(ctx context.Context, message string)
}

// Middleware blocks write operations in demo mode.
// Read-only operations (GET, HEAD, OPTIONS) are always allowed.
type Middleware struct {
	enabled bool
	flash   Flasher
}

// NewMiddleware creates a demo mode middleware. flash may be nil, in which
// case blocked form posts get a plain 403.
func NewMiddleware(enabled bool, flash Flasher) *Middleware {
	return &Middleware{enabled: enabled, flash: flash}
}

// IsEnabled returns whether demo mode is active.
func (m *Middleware) IsEnabled() bool {
	return m.enabled
}

// Handler returns a Gin middleware that blocks write operations.
func (m *Middleware) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !m.enabled {
			c.Next()
			return
		}

		switch c.Request.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			c.Next()
			return
		}

		m.respondBlocked(c)
	}
}

// respondBlocked answers JSON clients with 403 and sends form posts back to
// the page with the message in a flash.
func (m *Middleware) respondBlocked(c *gin.Context) {
	if strings.Contains(c.GetHeader("Accept"), "application/json") {
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
			"error":     Message,
			"demo_mode": true,
		})
		return
	}

	if m.flash != nil {
		m.flash.PutFlash(c.Request.Context(), Message)
		c.Redirect(http.StatusSeeOther, "/")
		c.Abort()
		return
	}

	c.String(http.StatusForbidden, Message)
	c.Abort()
}

// InjectContext adds the demo mode flag to the context for template rendering.
func (m *Middleware) InjectContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(ContextKeyDemoMode, m.enabled)
		c.Next()
	}
}
