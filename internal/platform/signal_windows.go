//go:build windows

package platform

import (
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"golang.org/x/sys/windows"
)

const stillActive = 259

func (h *Host) Alive(pid int) (bool, error) {
	if err := validPID(pid); err != nil {
		return false, nil
	}
	handle, err := windows.OpenProcess(windows.PROCESS_QUERY_LIMITED_INFORMATION, false, uint32(pid))
	if err != nil {
		switch {
		case errors.Is(err, windows.ERROR_INVALID_PARAMETER):
			return false, nil
		case errors.Is(err, windows.ERROR_ACCESS_DENIED):
			return true, nil
		default:
			return false, fmt.Errorf("open pid %d: %w", pid, err)
		}
	}
	defer windows.CloseHandle(handle)

	var code uint32
	if err := windows.GetExitCodeProcess(handle, &code); err != nil {
		return false, fmt.Errorf("exit code for pid %d: %w", pid, err)
	}
	return code == stillActive, nil
}

func (h *Host) Signal(pid int, sig Signal) error {
	if err := validPID(pid); err != nil {
		return fmt.Errorf("signal %d: %w", pid, err)
	}
	alive, err := h.Alive(pid)
	if err == nil && !alive {
		return nil
	}
	return taskkill(pid, sig, false)
}

// SignalGroup uses taskkill /T, which walks the child tree on the Windows side.
func (h *Host) SignalGroup(pid int, sig Signal) error {
	if pid <= 0 {
		return fmt.Errorf("signal group %d: %w", pid, ErrInvalidPID)
	}
	return taskkill(pid, sig, true)
}

func taskkill(pid int, sig Signal, tree bool) error {
	args := []string{"/PID", strconv.Itoa(pid)}
	if tree {
		args = append(args, "/T")
	}
	if sig == Forced {
		args = append(args, "/F")
	}
	cmd := exec.Command("taskkill", args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("taskkill %s: %w: %s", strings.Join(args, " "), err, strings.TrimSpace(string(output)))
	}
	return nil
}
