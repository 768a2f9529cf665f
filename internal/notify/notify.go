// Package notify surfaces one-line, non-technical notifications to the user.
// It is the transient-toast analog of the dashboard: mutations report their
// outcome here instead of letting errors escape to a global handler.
package notify

import (
	"sync"

	"github.com/rs/zerolog"
)

// Notifier receives user-facing notifications. Implementations must be
// fire-and-forget: a notifier that fails does so silently.
type Notifier interface {
	Success(msg string)
	Error(msg string)
}

// LogNotifier writes notifications to the structured log.
type LogNotifier struct {
	logger zerolog.Logger
}

// NewLogNotifier creates a log-backed notifier.
func NewLogNotifier(logger zerolog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger.With().Str("component", "notify").Logger()}
}

func (n *LogNotifier) Success(msg string) {
	n.logger.Info().Str("kind", "success").Msg(msg)
}

func (n *LogNotifier) Error(msg string) {
	n.logger.Warn().Str("kind", "error").Msg(msg)
}

// Nop discards all notifications.
type Nop struct{}

func (Nop) Success(string) {}
func (Nop) Error(string)   {}

// Multi fans a notification out to several notifiers.
type Multi []Notifier

func (m Multi) Success(msg string) {
	for _, n := range m {
		n.Success(msg)
	}
}

func (m Multi) Error(msg string) {
	for _, n := range m {
		n.Error(msg)
	}
}

// Collector records notifications in memory, for tests and for the
// console facade's notification feed.
type Collector struct {
	mu        sync.Mutex
	successes []string
	errors    []string
}

// NewCollector creates an in-memory notifier.
func NewCollector() *Collector {
	return &Collector{}
}

func (c *Collector) Success(msg string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.successes = append(c.successes, msg)
}

func (c *Collector) Error(msg string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.errors = append(c.errors, msg)
}

// Successes returns a copy of the recorded success notifications.
func (c *Collector) Successes() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.successes...)
}

// Errors returns a copy of the recorded error notifications.
func (c *Collector) Errors() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.errors...)
}

// Reset clears all recorded notifications.
func (c *Collector) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.successes = nil
	c.errors = nil
}
