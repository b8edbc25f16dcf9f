// Package session carries per-browser state between the redirects of the
// book form: flash messages, the inputs of a rejected submission, CSRF
// protection and security headers.
//
// # Middleware order
//
//	router.Use(session.SecurityHeadersMiddleware())
//	router.Use(manager.SessionLoadSave())
//	router.Use(session.CSRFMiddleware(secret, secure, manager))
//
// The CSRF failure handler writes a flash message, so the session must be
// loaded before CSRF runs.
package session
