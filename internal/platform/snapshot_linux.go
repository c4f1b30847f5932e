//go:build linux

package platform

import (
	"context"
	"fmt"

	"github.com/prometheus/procfs"
)

// Processes reads /proc/<pid>/stat for every numeric entry under the procfs
// mount. Processes that exit between the directory listing and the stat read
// are skipped.
func (h *Host) Processes(ctx context.Context) ([]Record, error) {
	fs, err := procfs.NewFS(h.procfsPath)
	if err != nil {
		return nil, fmt.Errorf("open procfs %s: %w", h.procfsPath, err)
	}
	procs, err := fs.AllProcs()
	if err != nil {
		return nil, fmt.Errorf("list processes: %w", err)
	}

	records := make([]Record, 0, len(procs))
	for _, proc := range procs {
		if err := ctx.Err(); err != nil {
			return records, err
		}
		stat, err := proc.Stat()
		if err != nil {
			continue
		}
		records = append(records, Record{PID: proc.PID, PPID: stat.PPID})
	}
	return records, nil
}

// zombie reports whether pid has exited but not yet been reaped. kill(pid, 0)
// succeeds for zombies, so liveness needs the extra state check.
func (h *Host) zombie(pid int) bool {
	fs, err := procfs.NewFS(h.procfsPath)
	if err != nil {
		return false
	}
	proc, err := fs.Proc(pid)
	if err != nil {
		return false
	}
	stat, err := proc.Stat()
	if err != nil {
		return false
	}
	return stat.State == "Z" || stat.State == "X"
}
