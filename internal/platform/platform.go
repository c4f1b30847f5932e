// Package platform exposes the operating system primitives the watchdog relies
// on: enumerating the process table, probing liveness and delivering
// termination signals to single processes or whole process groups.
//
// Implementations are selected with build tags. On Linux the process table is
// read from procfs; other platforms enumerate processes through gopsutil.
// Signals are delivered with kill(2) on Unix systems and through taskkill on
// Windows, where the group variant relies on taskkill's /T tree mode.
package platform

import (
	"context"
	"errors"
	"os"
)

// Signal selects the termination strength used for a delivery attempt.
type Signal int

const (
	// Graceful requests cooperative shutdown (SIGTERM, taskkill without /F).
	Graceful Signal = iota
	// Forced terminates unconditionally (SIGKILL, taskkill /F).
	Forced
)

func (s Signal) String() string {
	switch s {
	case Graceful:
		return "graceful"
	case Forced:
		return "forced"
	default:
		return "unknown"
	}
}

var (
	// ErrUnsupported is returned when the host has no notion of the
	// requested operation, such as process-group signaling.
	ErrUnsupported = errors.New("operation not supported on this platform")
	// ErrInvalidPID guards against pids that would address more than one
	// process (0 and negative values mean "my group" or "everyone" to kill(2)).
	ErrInvalidPID = errors.New("invalid pid")
	// ErrOwnGroup is returned instead of signaling the process group the
	// watchdog itself belongs to.
	ErrOwnGroup = errors.New("refusing to signal the watchdog's own process group")
)

// Record is a single process table entry.
type Record struct {
	PID  int
	PPID int
}

// Lister produces process table snapshots.
type Lister interface {
	// Processes returns every process visible to the caller. Entries that
	// cannot be read are omitted rather than reported as errors.
	Processes(ctx context.Context) ([]Record, error)
}

// Platform is the capability set consumed by the tree builder and the
// escalation engine.
type Platform interface {
	Lister

	// Alive reports whether pid refers to a running process. Exited,
	// unknown and zombie pids are reported as not alive. A non-nil error
	// means the probe was inconclusive.
	Alive(pid int) (bool, error)

	// Signal delivers sig to a single process. A pid that has already
	// exited is not an error.
	Signal(pid int, sig Signal) error

	// SignalGroup delivers sig to the process group (or the equivalent tree
	// facility) led by pid in a single operation.
	SignalGroup(pid int, sig Signal) error
}

const defaultProcfsPath = "/proc"

// Host is the Platform implementation for the running operating system.
type Host struct {
	procfsPath string
	self       int
}

// Option customises a Host.
type Option func(*Host)

// WithProcfsPath overrides the procfs mount point. It only has an effect on
// Linux.
func WithProcfsPath(path string) Option {
	return func(h *Host) {
		if path != "" {
			h.procfsPath = path
		}
	}
}

// New constructs the host platform.
func New(opts ...Option) *Host {
	h := &Host{procfsPath: defaultProcfsPath, self: os.Getpid()}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

var _ Platform = (*Host)(nil)

func validPID(pid int) error {
	if pid <= 0 {
		return ErrInvalidPID
	}
	return nil
}
