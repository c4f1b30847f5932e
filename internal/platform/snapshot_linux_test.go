//go:build linux

package platform

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"
)

// writeStat creates a minimal /proc/<pid>/stat file that procfs can parse.
func writeStat(t *testing.T, root string, pid, ppid int, state string) {
	t.Helper()
	dir := filepath.Join(root, fmt.Sprint(pid))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", dir, err)
	}
	fields := make([]string, 0, 52)
	fields = append(fields, fmt.Sprint(pid), "(proc "+fmt.Sprint(pid)+")", state, fmt.Sprint(ppid))
	for len(fields) < 52 {
		fields = append(fields, "0")
	}
	line := strings.Join(fields, " ") + "\n"
	if err := os.WriteFile(filepath.Join(dir, "stat"), []byte(line), 0o644); err != nil {
		t.Fatalf("write stat: %v", err)
	}
}

func TestProcessesReadsSyntheticProcfs(t *testing.T) {
	root := t.TempDir()
	writeStat(t, root, 1, 0, "S")
	writeStat(t, root, 100, 1, "S")
	writeStat(t, root, 101, 100, "R")
	writeStat(t, root, 102, 100, "Z")
	if err := os.MkdirAll(filepath.Join(root, "self"), 0o755); err != nil {
		t.Fatalf("mkdir self: %v", err)
	}
	// A pid directory without a stat file vanished mid-scan.
	if err := os.MkdirAll(filepath.Join(root, "555"), 0o755); err != nil {
		t.Fatalf("mkdir 555: %v", err)
	}

	host := New(WithProcfsPath(root))
	records, err := host.Processes(context.Background())
	if err != nil {
		t.Fatalf("Processes: %v", err)
	}
	sort.Slice(records, func(i, j int) bool { return records[i].PID < records[j].PID })

	want := []Record{{PID: 1, PPID: 0}, {PID: 100, PPID: 1}, {PID: 101, PPID: 100}, {PID: 102, PPID: 100}}
	if len(records) != len(want) {
		t.Fatalf("expected %d records, got %v", len(want), records)
	}
	for i := range want {
		if records[i] != want[i] {
			t.Fatalf("record %d: expected %+v, got %+v", i, want[i], records[i])
		}
	}
}

func TestZombieDetectedFromProcfs(t *testing.T) {
	root := t.TempDir()
	writeStat(t, root, 200, 1, "Z")
	writeStat(t, root, 201, 1, "S")

	host := New(WithProcfsPath(root))
	if !host.zombie(200) {
		t.Fatalf("expected pid 200 to be reported as zombie")
	}
	if host.zombie(201) {
		t.Fatalf("expected pid 201 to be running")
	}
	if host.zombie(999) {
		t.Fatalf("missing pid must not be reported as zombie")
	}
}

func TestProcessesMissingMount(t *testing.T) {
	host := New(WithProcfsPath(filepath.Join(t.TempDir(), "absent")))
	if _, err := host.Processes(context.Background()); err == nil {
		t.Fatalf("expected error for missing procfs mount")
	}
}
