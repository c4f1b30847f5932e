package engine

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/Paintersrp/procwick/internal/platform"
)

type call struct {
	group bool
	pid   int
	sig   platform.Signal
}

// fakePlatform is an in-memory process table. Processes listed in
// ignoreTerm survive graceful signals; group signals only succeed for pids in
// groups.
type fakePlatform struct {
	mu         sync.Mutex
	procs      map[int]int
	groups     map[int]bool
	ignoreTerm map[int]bool
	aliveErr   map[int]error
	signalErr  map[int]error
	calls      []call
}

func newFakePlatform() *fakePlatform {
	return &fakePlatform{
		procs:      map[int]int{},
		groups:     map[int]bool{},
		ignoreTerm: map[int]bool{},
		aliveErr:   map[int]error{},
		signalErr:  map[int]error{},
	}
}

func (f *fakePlatform) spawn(pid, ppid int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.procs[pid] = ppid
}

func (f *fakePlatform) exit(pid int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.procs, pid)
}

func (f *fakePlatform) running(pid int) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.procs[pid]
	return ok
}

func (f *fakePlatform) Processes(context.Context) ([]platform.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	records := make([]platform.Record, 0, len(f.procs))
	for pid, ppid := range f.procs {
		records = append(records, platform.Record{PID: pid, PPID: ppid})
	}
	sort.Slice(records, func(i, j int) bool { return records[i].PID < records[j].PID })
	return records, nil
}

func (f *fakePlatform) Alive(pid int) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.aliveErr[pid]; err != nil {
		return false, err
	}
	_, ok := f.procs[pid]
	return ok, nil
}

func (f *fakePlatform) Signal(pid int, sig platform.Signal) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call{pid: pid, sig: sig})
	if err := f.signalErr[pid]; err != nil {
		return err
	}
	f.deliver(pid, sig)
	return nil
}

func (f *fakePlatform) SignalGroup(pid int, sig platform.Signal) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call{group: true, pid: pid, sig: sig})
	if !f.groups[pid] {
		return errors.New("no such process group")
	}
	for _, member := range f.descendants(pid) {
		f.deliver(member, sig)
	}
	f.deliver(pid, sig)
	return nil
}

// deliver must be called with mu held.
func (f *fakePlatform) deliver(pid int, sig platform.Signal) {
	if sig == platform.Graceful && f.ignoreTerm[pid] {
		return
	}
	delete(f.procs, pid)
}

// descendants must be called with mu held.
func (f *fakePlatform) descendants(root int) []int {
	var out []int
	queue := []int{root}
	for len(queue) > 0 {
		pid := queue[0]
		queue = queue[1:]
		for child, parent := range f.procs {
			if parent == pid && child != pid {
				out = append(out, child)
				queue = append(queue, child)
			}
		}
	}
	return out
}

func (f *fakePlatform) signalCalls(group bool, sig platform.Signal) []int {
	f.mu.Lock()
	defer f.mu.Unlock()
	var pids []int
	for _, c := range f.calls {
		if c.group == group && c.sig == sig {
			pids = append(pids, c.pid)
		}
	}
	return pids
}
