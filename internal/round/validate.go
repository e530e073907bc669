package round

import (
	"fmt"

	"github.com/mauv0809/scorekeeper/internal/schema"
)

// checkDuplicates rejects a delta list that names the same player twice.
func checkDuplicates(deltas []schema.Delta) error {
	seen := make(map[int64]struct{}, len(deltas))
	for _, d := range deltas {
		if _, ok := seen[d.PlayerID]; ok {
			return fmt.Errorf("%w: %d", schema.ErrDuplicateDelta, d.PlayerID)
		}
		seen[d.PlayerID] = struct{}{}
	}
	return nil
}

// missingPlayers returns the active player ids that have no delta. Deltas for
// inactive or unknown players are allowed.
func missingPlayers(active []int64, deltas []schema.Delta) []int64 {
	supplied := make(map[int64]struct{}, len(deltas))
	for _, d := range deltas {
		supplied[d.PlayerID] = struct{}{}
	}
	var missing []int64
	for _, id := range active {
		if _, ok := supplied[id]; !ok {
			missing = append(missing, id)
		}
	}
	return missing
}

// IsZeroSum reports whether the deltas cancel out. The service never enforces
// this; it is an optional rule for callers.
func IsZeroSum(deltas []schema.Delta) bool {
	sum := 0
	for _, d := range deltas {
		sum += d.Delta
	}
	return sum == 0
}
