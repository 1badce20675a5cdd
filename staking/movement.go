// Copyright (c) 2024 The Ternoa staking exporter developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staking

// MovementTracker compares the latest snapshots against the previous poll
// cycle to derive inbound/outbound stake movement. It is owned by the poll
// loop; Commit replaces the previous state wholesale, never merges.
type MovementTracker struct {
	prev map[string]Snapshot
}

func NewMovementTracker() *MovementTracker {
	return &MovementTracker{}
}

// Track returns the stake moved in and out of a validator since the last
// committed cycle. Without a previous entry (first cycle, or a validator that
// just appeared) there is no delta to compute and both sides are zero; a new
// validator must not show up as a drop to zero. At most one side is non-zero.
func (t *MovementTracker) Track(validator string, currentTotal float64) (in, out float64) {
	prev, ok := t.prev[validator]
	if !ok {
		return 0, 0
	}

	diff := currentTotal - prev.TotalStake
	switch {
	case diff > 0:
		return diff, 0
	case diff < 0:
		return 0, -diff
	default:
		return 0, 0
	}
}

// Previous returns the snapshot committed for a validator in the last cycle.
func (t *MovementTracker) Previous(validator string) (Snapshot, bool) {
	snapshot, ok := t.prev[validator]
	return snapshot, ok
}

// Tracked returns the number of validators carried from the last cycle.
func (t *MovementTracker) Tracked() int {
	return len(t.prev)
}

// Commit replaces the previous-cycle state with the given snapshots.
// Validators absent from the map drop out of tracking.
func (t *MovementTracker) Commit(snapshots map[string]Snapshot) {
	t.prev = snapshots
}
