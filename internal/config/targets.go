package config

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	mapset "github.com/deckarep/golang-set/v2"
)

var (
	// ErrNoTargets is returned when a target specification holds no pids.
	ErrNoTargets = errors.New("no valid targets")
	// ErrInvalidTarget is wrapped with the token that failed to parse.
	ErrInvalidTarget = errors.New("invalid target pid")
)

// ParseTargets parses one or more target specifications. Each token may hold
// a comma-separated list; empty entries are ignored, whitespace is trimmed
// and duplicates collapse. The result is sorted ascending.
func ParseTargets(tokens ...string) ([]int, error) {
	set := mapset.NewThreadUnsafeSet[int]()
	for _, token := range tokens {
		for _, raw := range strings.Split(token, ",") {
			field := strings.TrimSpace(raw)
			if field == "" {
				continue
			}
			pid, err := strconv.Atoi(field)
			if err != nil || pid <= 0 {
				return nil, fmt.Errorf("%w: %q", ErrInvalidTarget, field)
			}
			set.Add(pid)
		}
	}
	if set.Cardinality() == 0 {
		return nil, ErrNoTargets
	}
	pids := set.ToSlice()
	sort.Ints(pids)
	return pids, nil
}
