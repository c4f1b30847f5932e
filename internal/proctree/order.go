package proctree

import (
	"sort"

	mapset "github.com/deckarep/golang-set/v2"
)

// KillOrder returns the pids of the tree in post order: every child is
// emitted before its parent and the root is always last. The traversal keeps
// a visited set, so a pid is emitted once even if the children lists contain
// a cycle.
func (t *Tree) KillOrder() []int {
	root, ok := t.Node(t.Root)
	if !ok {
		return nil
	}

	type frame struct {
		node *Node
		next int
	}

	order := make([]int, 0, len(t.nodes))
	visited := mapset.NewThreadUnsafeSet(t.Root)
	stack := []frame{{node: root}}
	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		if top.next < len(top.node.Children) {
			pid := top.node.Children[top.next]
			top.next++
			child, ok := t.nodes[pid]
			if !ok || !visited.Add(pid) {
				continue
			}
			stack = append(stack, frame{node: child})
			continue
		}
		order = append(order, top.node.PID)
		stack = stack[:len(stack)-1]
	}
	return order
}

// DepthOrder returns every known pid sorted by depth, deepest first. Pids at
// the same depth are ordered ascending. Unlike KillOrder it does not keep
// siblings of one branch together.
func (t *Tree) DepthOrder() []int {
	if t == nil {
		return nil
	}
	nodes := make([]*Node, 0, len(t.nodes))
	for _, n := range t.nodes {
		nodes = append(nodes, n)
	}
	sort.Slice(nodes, func(i, j int) bool {
		if nodes[i].Depth != nodes[j].Depth {
			return nodes[i].Depth > nodes[j].Depth
		}
		return nodes[i].PID < nodes[j].PID
	})
	order := make([]int, len(nodes))
	for i, n := range nodes {
		order[i] = n.PID
	}
	return order
}
