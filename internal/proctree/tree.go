// Package proctree discovers the descendants of a process and plans the order
// in which they can be terminated so that children die before their parents.
package proctree

import (
	"context"
	"fmt"
	"slices"
	"sort"

	mapset "github.com/deckarep/golang-set/v2"
	"go.uber.org/multierr"

	"github.com/Paintersrp/procwick/internal/platform"
)

// Node is a single process discovered while expanding a tree.
type Node struct {
	PID      int
	PPID     int
	Children []int
	Depth    int
}

func (n *Node) addChild(pid int) {
	if pid == n.PID || slices.Contains(n.Children, pid) {
		return
	}
	n.Children = append(n.Children, pid)
}

// Tree maps pids to nodes reachable from Root. The map doubles as the arena
// for traversal: children are referenced by pid, never by pointer.
type Tree struct {
	Root  int
	nodes map[int]*Node
}

func newTree(root int) *Tree {
	return &Tree{
		Root:  root,
		nodes: map[int]*Node{root: {PID: root}},
	}
}

// Node returns the node for pid.
func (t *Tree) Node(pid int) (*Node, bool) {
	if t == nil {
		return nil, false
	}
	n, ok := t.nodes[pid]
	return n, ok
}

// Len returns the number of known processes, root included.
func (t *Tree) Len() int {
	if t == nil {
		return 0
	}
	return len(t.nodes)
}

// PIDs returns every known pid in ascending order.
func (t *Tree) PIDs() []int {
	if t == nil {
		return nil
	}
	pids := make([]int, 0, len(t.nodes))
	for pid := range t.nodes {
		pids = append(pids, pid)
	}
	sort.Ints(pids)
	return pids
}

// Depth returns the depth of pid, or -1 when pid is unknown.
func (t *Tree) Depth(pid int) int {
	if n, ok := t.Node(pid); ok {
		return n.Depth
	}
	return -1
}

// Build expands the tree rooted at root breadth first. Every expansion takes a
// fresh snapshot from lister because processes keep forking while the walk is
// in progress. Each pid is expanded at most once, so cycles in a corrupted or
// racy process table cannot stall the walk.
//
// Build always returns a usable tree. Snapshot failures are accumulated into
// the returned error and treated as "no children seen" for that expansion; a
// cancelled context stops the walk and returns what was discovered so far.
func Build(ctx context.Context, lister platform.Lister, root int) (*Tree, error) {
	tree := newTree(root)
	queue := []int{root}
	visited := mapset.NewThreadUnsafeSet[int]()

	var errs error
	for len(queue) > 0 {
		if err := ctx.Err(); err != nil {
			return tree, multierr.Append(errs, err)
		}
		pid := queue[0]
		queue = queue[1:]
		if !visited.Add(pid) {
			continue
		}

		records, err := lister.Processes(ctx)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("snapshot expanding pid %d: %w", pid, err))
			continue
		}

		current := tree.nodes[pid]
		for _, rec := range records {
			if rec.PPID != pid || rec.PID == pid || rec.PID <= 0 {
				continue
			}
			if _, known := tree.nodes[rec.PID]; !known {
				tree.nodes[rec.PID] = &Node{PID: rec.PID, PPID: pid, Depth: current.Depth + 1}
				queue = append(queue, rec.PID)
			}
			current.addChild(rec.PID)
		}
	}
	return tree, errs
}
