// Package web exposes the sign-up page over HTTP: it renders the current
// snapshot and translates form posts into commands for the sync controller.
package web

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/csrf"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	service "github.com/mergington/signup/internal/app"
	"github.com/mergington/signup/internal/feedback"
	"github.com/mergington/signup/internal/domain/model"
	"github.com/mergington/signup/internal/render"
	"github.com/mergington/signup/pkg/logger"
	"github.com/mergington/signup/pkg/metrics"
)

// App bundles what the handlers need from the sync controller. An interface
// keeps the handler layer loosely coupled to the controller implementation.
type App interface {
	Snapshot() (model.Activities, bool)
	Dispatch(ctx context.Context, cmd service.Command) error
	Feedback() (feedback.Message, bool)
}

// Server wires HTTP routes for the sign-up page.
type Server struct {
	app      App
	renderer *render.Renderer

	csrfKey       []byte
	secureCookies bool
	logger        logger.Logger
}

// New creates a web server with the given options applied.
func New(opts ...Option) (*Server, error) {
	s := &Server{}

	// Apply all options
	for _, opt := range opts {
		opt(s)
	}

	if s.app == nil {
		return nil, ErrNoApp
	}
	if s.renderer == nil {
		return nil, ErrNoRenderer
	}
	if len(s.csrfKey) != 32 {
		return nil, fmt.Errorf("%w: need 32 bytes, got %d", ErrBadCSRFKey, len(s.csrfKey))
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("web")
	}
	return s, nil
}

// Handler builds the routed handler with the full middleware stack.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)

	// Operational endpoints stay outside the CSRF fence.
	r.Get("/healthz", metricsMiddleware(s.handleHealth, "healthz"))
	r.Get("/metrics", func(w http.ResponseWriter, req *http.Request) {
		promhttp.HandlerFor(metrics.GetRegistry(), promhttp.HandlerOpts{}).ServeHTTP(w, req)
	})

	protect := csrf.Protect(
		s.csrfKey,
		csrf.Secure(s.secureCookies),
		csrf.Path("/"),
	)
	r.Group(func(r chi.Router) {
		r.Use(protect)
		r.Get("/", metricsMiddleware(s.handleIndex, "index"))
		r.Post("/signup", metricsMiddleware(s.handleSignup, "signup"))
		r.Post("/unregister", metricsMiddleware(s.handleUnregister, "unregister"))
	})

	return r
}

// handleIndex renders the page from the current snapshot and banner state.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	snapshot, fetchFailed := s.app.Snapshot()
	msg, visible := s.app.Feedback()

	view := render.View{
		Activities:  snapshot,
		FetchFailed: fetchFailed,
		Message:     msg,
		ShowMessage: visible,
		CSRFField:   csrf.TemplateField(r),
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.renderer.Render(w, view); err != nil {
		s.logger.Error(r.Context(), "render failed", logger.Error(err))
	}
}

// handleSignup maps the sign-up form onto a signup command. The redirect
// back to the page happens after the command completes, so the next render
// already shows the post-mutation snapshot.
func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	s.dispatchForm(w, r, service.CommandSignup)
}

// handleUnregister maps the per-participant delete form onto an unregister
// command. Browsers cannot send DELETE from a form; the upstream method
// translation happens in the remote client.
func (s *Server) handleUnregister(w http.ResponseWriter, r *http.Request) {
	s.dispatchForm(w, r, service.CommandUnregister)
}

func (s *Server) dispatchForm(w http.ResponseWriter, r *http.Request, kind service.CommandKind) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}

	cmd := service.Command{
		Kind:     kind,
		Activity: r.PostFormValue("activity"),
		Email:    strings.TrimSpace(r.PostFormValue("email")),
	}

	err := s.app.Dispatch(r.Context(), cmd)
	switch {
	case errors.Is(err, service.ErrBusy):
		http.Error(w, "busy, try again", http.StatusServiceUnavailable)
		return
	case err != nil:
		s.logger.Error(r.Context(), "dispatch failed",
			logger.String("kind", string(kind)),
			logger.Error(err),
		)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	// 303 so the browser re-GETs the page; the form resets for free.
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// handleHealth serves metrics from the custom registry, matching what the
// scrape config expects from the health endpoint.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	promhttp.HandlerFor(metrics.GetRegistry(), promhttp.HandlerOpts{}).ServeHTTP(w, r)
}
