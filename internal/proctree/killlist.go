package proctree

import mapset "github.com/deckarep/golang-set/v2"

// KillList accumulates pids slated for individual signaling. Insertion order
// is preserved and a pid is kept only once, so lists from several trees (and
// from both escalation phases) can be merged without losing earlier entries.
type KillList struct {
	order []int
	seen  mapset.Set[int]
}

// NewKillList returns an empty list.
func NewKillList() *KillList {
	return &KillList{seen: mapset.NewThreadUnsafeSet[int]()}
}

// Merge appends pids that are not yet present and returns how many were added.
func (k *KillList) Merge(pids ...int) int {
	added := 0
	for _, pid := range pids {
		if !k.seen.Add(pid) {
			continue
		}
		k.order = append(k.order, pid)
		added++
	}
	return added
}

// Contains reports whether pid has been merged.
func (k *KillList) Contains(pid int) bool {
	return k.seen.Contains(pid)
}

// Len returns the number of pids in the list.
func (k *KillList) Len() int {
	return len(k.order)
}

// PIDs returns a copy of the list in insertion order.
func (k *KillList) PIDs() []int {
	return append([]int(nil), k.order...)
}
