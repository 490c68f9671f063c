// Package service provides the sync controller that owns the current remote
// state and orchestrates fetch, render inputs, and mutation flows.
package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mergington/signup/internal/adapters/remote"
	"github.com/mergington/signup/internal/domain/model"
	"github.com/mergington/signup/internal/feedback"
	"github.com/mergington/signup/pkg/logger"
	"github.com/mergington/signup/pkg/metrics"
)

// Default service configuration constants.
const (
	defaultQueueSize = 64
)

// User-facing fallback copy. The server's own text wins whenever present.
const (
	signupFailedText     = "Failed to sign up. Please try again."
	unregisterFailedText = "Failed to unregister. Please try again."
	genericErrorText     = "An error occurred"
)

// Remote is the slice of the remote data client the controller needs.
type Remote interface {
	List(ctx context.Context) (model.Activities, error)
	Register(ctx context.Context, activity, email string) (remote.Outcome, error)
	Unregister(ctx context.Context, activity, email string) (remote.Outcome, error)
}

// CommandKind names a user action.
type CommandKind string

// Command kinds.
const (
	CommandSignup     CommandKind = "signup"
	CommandUnregister CommandKind = "unregister"
)

// Command is one user action: sign a participant up for an activity or
// remove them from it. ID is assigned on dispatch when empty and only used
// for log correlation.
type Command struct {
	ID       string
	Kind     CommandKind
	Activity string
	Email    string
}

// envelope pairs a command with its completion signal.
type envelope struct {
	cmd  Command
	done chan struct{}
}

// Service implements the sync controller. It owns the single current
// activities snapshot, replaced wholesale on every successful fetch and
// never mutated in place, and consumes user commands through one dispatch
// loop so duplicated success/error/refresh logic cannot drift between the
// signup and unregister paths.
type Service struct {
	mu sync.RWMutex

	// Dependencies
	remote Remote
	banner *feedback.Banner

	// Configuration
	queueSize int

	// State
	snapshot    model.Activities
	fetchFailed bool
	started     bool
	commands    chan envelope
	stopCh      chan struct{}

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithRemote sets the remote data client.
func WithRemote(r Remote) Option {
	return func(s *Service) {
		if r != nil {
			s.remote = r
		}
	}
}

// WithBanner sets the feedback banner shared with the page renderer.
func WithBanner(b *feedback.Banner) Option {
	return func(s *Service) {
		if b != nil {
			s.banner = b
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithQueueSize bounds the command dispatch queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		queueSize: defaultQueueSize,
		stopCh:    make(chan struct{}),
	}

	// Apply all options
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start launches the dispatch loop and performs the initial fetch. A failed
// initial fetch is not fatal: the page renders its static failure message
// and the next successful refresh recovers.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return nil
	}
	if s.remote == nil {
		s.mu.Unlock()
		return ErrNoRemote
	}
	if s.logger == nil {
		s.logger = logger.Get()
	}
	if s.banner == nil {
		s.banner = feedback.New()
	}
	s.commands = make(chan envelope, s.queueSize)
	s.started = true
	s.mu.Unlock()

	go s.dispatchLoop(ctx)

	s.logger.Info(ctx, "sync controller started", logger.Int("queueSize", s.queueSize))

	if err := s.Refresh(ctx); err != nil {
		s.logger.Warn(ctx, "initial fetch failed; serving failure page until refresh succeeds")
	}
	return nil
}

// Stop shuts down the dispatch loop.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	close(s.stopCh)
	s.started = false
	s.logger.Info(context.Background(), "sync controller stopped")
}

// Refresh refetches the wholesale snapshot and swaps it in atomically from
// the renderer's point of view. On failure the previous snapshot is kept and
// the failure flag set; the error is logged here, never silently dropped.
func (s *Service) Refresh(ctx context.Context) error {
	metrics.RecordRefresh()

	activities, err := s.remote.List(ctx)
	if err != nil {
		metrics.RecordRefreshFailure()
		s.mu.Lock()
		s.fetchFailed = true
		s.mu.Unlock()
		s.logger.Error(ctx, "fetching activities failed", logger.Error(err))
		return fmt.Errorf("%w: %w", ErrRefresh, err)
	}

	s.mu.Lock()
	s.snapshot = activities
	s.fetchFailed = false
	s.mu.Unlock()

	metrics.UpdateSnapshot(len(activities), activities.Participants(), time.Now().Unix())
	s.logger.Debug(ctx, "snapshot refreshed",
		logger.Int("activities", len(activities)),
		logger.Int("participants", activities.Participants()),
	)
	return nil
}

// Snapshot returns the current activities and whether the last fetch failed.
// The slice is replaced wholesale on refresh, never mutated, so callers can
// render from it without copying.
func (s *Service) Snapshot() (model.Activities, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot, s.fetchFailed
}

// Feedback returns the current banner message and visibility.
func (s *Service) Feedback() (feedback.Message, bool) {
	s.mu.RLock()
	b := s.banner
	s.mu.RUnlock()
	if b == nil {
		return feedback.Message{}, false
	}
	return b.Snapshot()
}

// Dispatch queues a command for the handler loop and waits for it to be
// processed, so a redirect after the post always renders post-mutation state.
// Returns ErrBusy when the queue is full; the caller may simply retry.
func (s *Service) Dispatch(ctx context.Context, cmd Command) error {
	s.mu.RLock()
	started := s.started
	s.mu.RUnlock()
	if !started {
		return ErrNotStarted
	}

	if cmd.ID == "" {
		cmd.ID = uuid.NewString()
	}

	env := envelope{cmd: cmd, done: make(chan struct{})}
	select {
	case s.commands <- env:
		metrics.UpdateCommandQueueDepth(len(s.commands))
	default:
		metrics.RecordCommand(string(cmd.Kind), "busy")
		return ErrBusy
	}

	select {
	case <-env.done:
		return nil
	case <-s.stopCh:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// dispatchLoop consumes commands one at a time. Serializing here removes the
// lost-update race between two back-to-back submissions racing their
// refetches.
func (s *Service) dispatchLoop(ctx context.Context) {
	for {
		select {
		case env := <-s.commands:
			s.handle(ctx, env.cmd)
			close(env.done)
			metrics.UpdateCommandQueueDepth(len(s.commands))
		case <-s.stopCh:
			return
		case <-ctx.Done():
			return
		}
	}
}

// handle runs one command through the submit -> feedback -> maybe-refresh
// state machine shared by both mutation kinds.
func (s *Service) handle(ctx context.Context, cmd Command) {
	s.logger.Debug(ctx, "handling command",
		logger.String("id", cmd.ID),
		logger.String("kind", string(cmd.Kind)),
		logger.String("activity", cmd.Activity),
	)

	var (
		outcome  remote.Outcome
		err      error
		failText string
	)
	switch cmd.Kind {
	case CommandSignup:
		outcome, err = s.remote.Register(ctx, cmd.Activity, cmd.Email)
		failText = signupFailedText
	case CommandUnregister:
		outcome, err = s.remote.Unregister(ctx, cmd.Activity, cmd.Email)
		failText = unregisterFailedText
	default:
		s.logger.Warn(ctx, "unknown command kind", logger.String("kind", string(cmd.Kind)))
		metrics.RecordCommand(string(cmd.Kind), "unknown")
		return
	}

	if err != nil {
		// Transport-level failure: generic copy to the user, details to the log.
		s.logger.Error(ctx, "command transport failed",
			logger.String("id", cmd.ID),
			logger.String("kind", string(cmd.Kind)),
			logger.Error(err),
		)
		s.banner.Show(failText, feedback.Error)
		metrics.RecordCommand(string(cmd.Kind), "error")
		return
	}

	if !outcome.OK {
		// Application failure: server state assumed unchanged, no refetch.
		detail := outcome.Detail
		if detail == "" {
			detail = genericErrorText
		}
		s.banner.Show(detail, feedback.Error)
		metrics.RecordCommand(string(cmd.Kind), "rejected")
		return
	}

	s.banner.Show(outcome.Message, feedback.Success)
	metrics.RecordCommand(string(cmd.Kind), "ok")

	// Success: refetch and fully re-render; no incremental patching.
	_ = s.Refresh(ctx)
}
