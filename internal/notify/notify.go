// Package notify provides the single-slot transient status message shown
// after mutating operations.
package notify

import (
	"fmt"
	"sync"
	"time"
)

// DefaultTTL is the display duration before a message self-clears.
const DefaultTTL = 4 * time.Second

// Kind classifies a message.
type Kind int

const (
	Success Kind = iota
	Error
	Info
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case Success:
		return "success"
	case Error:
		return "error"
	case Info:
		return "info"
	default:
		return "unknown"
	}
}

// Message is one transient status message.
type Message struct {
	Text string
	Kind Kind
}

// Notifier holds at most one visible message. Setting a new message
// replaces the current one; each message self-clears after the TTL.
type Notifier struct {
	mu      sync.Mutex
	ttl     time.Duration
	current *Message
	gen     int
	timer   *time.Timer
}

// New creates a Notifier with the given display duration. A zero ttl uses
// DefaultTTL.
func New(ttl time.Duration) *Notifier {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Notifier{ttl: ttl}
}

// Show replaces the visible message and restarts the self-clear timer.
func (n *Notifier) Show(text string, kind Kind) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.timer != nil {
		n.timer.Stop()
	}
	n.gen++
	n.current = &Message{Text: text, Kind: kind}

	gen := n.gen
	n.timer = time.AfterFunc(n.ttl, func() {
		n.expire(gen)
	})
}

// expire clears the message only if it is still the one that armed the
// timer; a replacement bumps the generation.
func (n *Notifier) expire(gen int) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.gen == gen {
		n.current = nil
	}
}

// Successf shows a success message.
func (n *Notifier) Successf(format string, args ...any) {
	n.Show(fmt.Sprintf(format, args...), Success)
}

// Errorf shows an error message.
func (n *Notifier) Errorf(format string, args ...any) {
	n.Show(fmt.Sprintf(format, args...), Error)
}

// Infof shows an informational message.
func (n *Notifier) Infof(format string, args ...any) {
	n.Show(fmt.Sprintf(format, args...), Info)
}

// Current returns the visible message, or nil.
func (n *Notifier) Current() *Message {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.current == nil {
		return nil
	}
	m := *n.current
	return &m
}

// Dismiss clears the visible message immediately.
func (n *Notifier) Dismiss() {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.timer != nil {
		n.timer.Stop()
	}
	n.gen++
	n.current = nil
}
