//go:build !linux

package platform

import (
	"context"
	"fmt"

	"github.com/shirou/gopsutil/v4/process"
)

func (h *Host) Processes(ctx context.Context) ([]Record, error) {
	procs, err := process.ProcessesWithContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("list processes: %w", err)
	}

	records := make([]Record, 0, len(procs))
	for _, proc := range procs {
		ppid, err := proc.PpidWithContext(ctx)
		if err != nil {
			continue
		}
		records = append(records, Record{PID: int(proc.Pid), PPID: int(ppid)})
	}
	return records, nil
}

func (h *Host) zombie(pid int) bool {
	proc, err := process.NewProcess(int32(pid))
	if err != nil {
		return false
	}
	status, err := proc.Status()
	if err != nil {
		return false
	}
	for _, s := range status {
		if s == process.Zombie {
			return true
		}
	}
	return false
}
