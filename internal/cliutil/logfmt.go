package cliutil

import (
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/Paintersrp/procwick/internal/engine"
)

// EventFields converts an engine event into structured log fields. Zero
// values are omitted so entries stay short.
func EventFields(event engine.Event) log.Fields {
	fields := log.Fields{"event": string(event.Type)}
	if event.PID != 0 {
		fields["pid"] = event.PID
	}
	switch event.Type {
	case engine.EventTypeGroupSignaled, engine.EventTypeGroupFailed,
		engine.EventTypeTreeBuilt, engine.EventTypeTreeError,
		engine.EventTypeSignaled, engine.EventTypeSignalFailed, engine.EventTypeSignalSkipped:
		fields["phase"] = event.Signal.String()
	}
	switch event.Type {
	case engine.EventTypeSignaled, engine.EventTypeSignalFailed, engine.EventTypeSignalSkipped:
		fields["depth"] = event.Depth
	}
	if event.Count != 0 {
		fields["count"] = event.Count
	}
	if len(event.PIDs) > 0 {
		fields["pids"] = formatPIDs(event.PIDs)
	}
	if event.Reason != "" {
		fields["reason"] = event.Reason
	}
	if event.Err != nil {
		fields[log.ErrorKey] = event.Err.Error()
	}
	return fields
}

// EventLevel picks the log level for an engine event.
func EventLevel(event engine.Event) log.Level {
	switch event.Type {
	case engine.EventTypeGuardianDead, engine.EventTypeLivenessError,
		engine.EventTypeSignalFailed, engine.EventTypeTreeError:
		return log.WarnLevel
	case engine.EventTypeGroupFailed, engine.EventTypeSignalSkipped, engine.EventTypeTreeBuilt:
		return log.DebugLevel
	default:
		return log.InfoLevel
	}
}

// EventMessage renders a short human readable summary of the event.
func EventMessage(event engine.Event) string {
	var msg string
	switch event.Type {
	case engine.EventTypeWatching:
		msg = "watching guardian"
	case engine.EventTypeLivenessError:
		msg = "liveness check failed, assuming alive"
	case engine.EventTypeGuardianDead:
		msg = "guardian is gone, escalating"
	case engine.EventTypeGroupSignaled:
		msg = "signaled process group"
	case engine.EventTypeGroupFailed:
		msg = "group signal failed, walking tree"
	case engine.EventTypeTreeBuilt:
		msg = "built process tree"
	case engine.EventTypeTreeError:
		msg = "process tree incomplete"
	case engine.EventTypeSignaled:
		msg = "signaled process"
	case engine.EventTypeSignalFailed:
		msg = "signal failed"
	case engine.EventTypeSignalSkipped:
		msg = "skipped process"
	case engine.EventTypeGraceWait:
		msg = "grace period"
	case engine.EventTypeDone:
		msg = "escalation complete"
	case engine.EventTypeCanceled:
		msg = "stopped"
	default:
		msg = string(event.Type)
	}
	if event.Message != "" && event.Message != msg {
		msg = msg + ": " + event.Message
	}
	return msg
}

// LogEvent writes event to logger.
func LogEvent(logger log.FieldLogger, event engine.Event) {
	if logger == nil {
		return
	}
	entry := logger.WithFields(EventFields(event))
	if !event.Timestamp.IsZero() {
		entry = entry.WithTime(event.Timestamp)
	}
	entry.Log(EventLevel(event), EventMessage(event))
}

func formatPIDs(pids []int) string {
	parts := make([]string, len(pids))
	for i, pid := range pids {
		parts[i] = fmt.Sprint(pid)
	}
	return strings.Join(parts, ",")
}
