package engine

import (
	"time"

	"github.com/Paintersrp/procwick/internal/platform"
)

// EventType captures the notifications emitted while watching the guardian
// and escalating against the targets.
type EventType string

const (
	EventTypeWatching      EventType = "watching"
	EventTypeLivenessError EventType = "liveness_error"
	EventTypeGuardianDead  EventType = "guardian_dead"
	EventTypeGroupSignaled EventType = "group_signaled"
	EventTypeGroupFailed   EventType = "group_failed"
	EventTypeTreeBuilt     EventType = "tree_built"
	EventTypeTreeError     EventType = "tree_error"
	EventTypeSignaled      EventType = "signaled"
	EventTypeSignalFailed  EventType = "signal_failed"
	EventTypeSignalSkipped EventType = "signal_skipped"
	EventTypeGraceWait     EventType = "grace_wait"
	EventTypeDone          EventType = "done"
	EventTypeCanceled      EventType = "canceled"
)

const (
	ReasonNotAlive      = "not_alive"
	ReasonProbeFailed   = "probe_failed"
	ReasonSelf          = "self"
	ReasonGroupFallback = "group_fallback"
)

// Event represents a single watchdog notification.
type Event struct {
	Timestamp time.Time
	Type      EventType
	Signal    platform.Signal
	PID       int
	// Depth is set on individual signal events: the pid's depth in the
	// target tree it was discovered in.
	Depth   int
	Count   int
	PIDs    []int
	Message string
	Reason  string
	Err     error
}

func sendEvent(events chan<- Event, evt Event) {
	if events == nil {
		return
	}
	if evt.Timestamp.IsZero() {
		evt.Timestamp = time.Now()
	}
	events <- evt
}
