//go:build !windows

package platform

import (
	"errors"
	"fmt"

	"golang.org/x/sys/unix"
)

func unixSignal(sig Signal) unix.Signal {
	if sig == Forced {
		return unix.SIGKILL
	}
	return unix.SIGTERM
}

func (h *Host) Alive(pid int) (bool, error) {
	if err := validPID(pid); err != nil {
		return false, nil
	}
	err := unix.Kill(pid, 0)
	switch {
	case err == nil, errors.Is(err, unix.EPERM):
		// EPERM: the process exists but belongs to someone else.
		return !h.zombie(pid), nil
	case errors.Is(err, unix.ESRCH):
		return false, nil
	default:
		return false, fmt.Errorf("probe pid %d: %w", pid, err)
	}
}

func (h *Host) Signal(pid int, sig Signal) error {
	if err := validPID(pid); err != nil {
		return fmt.Errorf("signal %d: %w", pid, err)
	}
	if err := unix.Kill(pid, unixSignal(sig)); err != nil {
		if errors.Is(err, unix.ESRCH) {
			return nil
		}
		return fmt.Errorf("send %s to pid %d: %w", unixSignal(sig), pid, err)
	}
	return nil
}

// SignalGroup sends the signal to the process group whose id equals pid.
// kill(2) reports ESRCH when pid does not lead a group, which callers treat as
// a cue to fall back to walking the tree.
func (h *Host) SignalGroup(pid int, sig Signal) error {
	if pid <= 1 {
		return fmt.Errorf("signal group %d: %w", pid, ErrInvalidPID)
	}
	if own, err := unix.Getpgid(h.self); err == nil && own == pid {
		return fmt.Errorf("signal group %d: %w", pid, ErrOwnGroup)
	}
	if err := unix.Kill(-pid, unixSignal(sig)); err != nil {
		return fmt.Errorf("send %s to process group %d: %w", unixSignal(sig), pid, err)
	}
	return nil
}
