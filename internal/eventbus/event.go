package eventbus

import "time"

// Type identifies a build lifecycle event.
type Type string

const (
	// BuildStarted fires when a compiler begins a build or rebuild.
	BuildStarted Type = "build.started"

	// BuildSucceeded fires when a build finishes without errors.
	BuildSucceeded Type = "build.succeeded"

	// BuildFailed fires when a build finishes with errors.
	BuildFailed Type = "build.failed"
)

// Event is one build lifecycle notification.
type Event struct {
	Type      Type          `json:"type"`
	Target    string        `json:"target"`
	Timestamp time.Time     `json:"timestamp"`
	Duration  time.Duration `json:"duration,omitempty"`
	Errors    []string      `json:"errors,omitempty"`
	Warnings  int           `json:"warnings,omitempty"`
}

// Listener is a function that handles an event.
type Listener func(Event)
