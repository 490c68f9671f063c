package web

import (
	"github.com/mergington/signup/internal/render"
	"github.com/mergington/signup/pkg/logger"
)

// Option configures the web server.
type Option func(*Server)

// WithApp sets the controller the handlers talk to.
func WithApp(app App) Option {
	return func(s *Server) {
		s.app = app
	}
}

// WithRenderer sets the page renderer.
func WithRenderer(r *render.Renderer) Option {
	return func(s *Server) {
		s.renderer = r
	}
}

// WithCSRFKey sets the 32-byte CSRF signing key.
func WithCSRFKey(key []byte) Option {
	return func(s *Server) {
		s.csrfKey = key
	}
}

// WithSecureCookies marks the CSRF cookie Secure; off for plain-HTTP dev.
func WithSecureCookies(secure bool) Option {
	return func(s *Server) {
		s.secureCookies = secure
	}
}

// WithLogger sets the logger used by the handlers.
func WithLogger(l logger.Logger) Option {
	return func(s *Server) {
		s.logger = l
	}
}
