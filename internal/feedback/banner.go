// Package feedback holds the transient success/error banner shown after a
// user action.
package feedback

import (
	"sync"
	"time"

	"github.com/mergington/signup/pkg/metrics"
)

// Default banner configuration constants.
const (
	defaultTTL = 5 * time.Second
)

// Kind styles the banner.
type Kind string

// Banner kinds.
const (
	Success Kind = "success"
	Error   Kind = "error"
)

// Message is the text and styling of one banner display.
type Message struct {
	Text string
	Kind Kind
}

// Banner is the shared message area. Each Show replaces the content and
// restarts the hide timer: last write wins for both the text and the
// eventual hide.
type Banner struct {
	mu      sync.Mutex
	msg     Message
	visible bool
	ttl     time.Duration
	timer   *time.Timer
}

// New creates a Banner with default configuration.
func New(opts ...Option) *Banner {
	b := &Banner{
		ttl: defaultTTL,
	}

	// Apply all options
	for _, opt := range opts {
		opt(b)
	}

	return b
}

// Show sets the banner content, makes it visible, and schedules it to hide
// again after the configured delay. A later Show supersedes any pending hide.
func (b *Banner) Show(text string, kind Kind) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.msg = Message{Text: text, Kind: kind}
	b.visible = true

	if b.timer != nil {
		b.timer.Stop()
	}
	b.timer = time.AfterFunc(b.ttl, b.hide)

	metrics.RecordBannerShow(string(kind))
}

// Snapshot returns the current message and whether it is visible.
func (b *Banner) Snapshot() (Message, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.msg, b.visible
}

func (b *Banner) hide() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.visible = false
}
