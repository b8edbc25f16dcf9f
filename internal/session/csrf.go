package session

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/csrf"
)

// CSRFTokenField is the form field gorilla/csrf reads the token from.
const CSRFTokenField = "gorilla.csrf.Token"

// MessageSessionExpired is flashed when a form fails the CSRF check.
const MessageSessionExpired = "Your session expired. Please try again."

const csrfTokenKey = "csrf_token"

// CSRFMiddleware protects every unsafe method with gorilla/csrf. When secure
// is false requests are treated as plain HTTP, so the referer check that
// gorilla applies to HTTPS is skipped. Failures are flashed through m and
// redirected back to the page; m may be nil.
func CSRFMiddleware(secret []byte, secure bool, m *Manager) gin.HandlerFunc {
	protect := csrf.Protect(
		secret,
		csrf.Secure(secure),
		csrf.HttpOnly(true),
		csrf.SameSite(csrf.SameSiteStrictMode),
		csrf.Path("/"),
		csrf.FieldName(CSRFTokenField),
		csrf.ErrorHandler(csrfErrorHandler(m)),
	)

	return func(c *gin.Context) {
		passed := false
		handler := protect(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			passed = true
			c.Set(csrfTokenKey, csrf.Token(r))
			c.Request = r
			c.Next()
		}))

		r := c.Request
		if !secure {
			r = csrf.PlaintextHTTPRequest(r)
		}
		handler.ServeHTTP(c.Writer, r)

		// gorilla answered the request itself
		if !passed {
			c.Abort()
		}
	}
}

func csrfErrorHandler(m *Manager) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.Contains(r.Header.Get("Accept"), "application/json") {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusForbidden)
			_, _ = w.Write([]byte(`{"error":"CSRF token invalid or missing"}`))
			return
		}

		if m != nil {
			m.PutFlash(r.Context(), MessageSessionExpired)
			http.Redirect(w, r, "/", http.StatusSeeOther)
			return
		}

		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(MessageSessionExpired))
	})
}

// GetCSRFToken retrieves the CSRF token from the Gin context.
func GetCSRFToken(c *gin.Context) string {
	if token, exists := c.Get(csrfTokenKey); exists {
		if t, ok := token.(string); ok {
			return t
		}
	}
	return ""
}
