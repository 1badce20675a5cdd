// Copyright (c) 2024 The Ternoa staking exporter developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package node

import (
	"github.com/ternoa-network/staking-exporter/metrics"
)

var (
	metricSelfStake      = metrics.LazyLoadGaugeVec("validator_self_stake", []string{"validator", "name", "status"})
	metricCapsIn         = metrics.LazyLoadGaugeVec("validator_caps_in", []string{"validator", "name", "type"})
	metricCapsOut        = metrics.LazyLoadGaugeVec("validator_caps_out", []string{"validator", "name", "type"})
	metricRewards        = metrics.LazyLoadGaugeVec("validator_rewards", []string{"validator", "name", "era"})
	metricNominations    = metrics.LazyLoadGaugeVec("validator_nominations", []string{"validator", "name", "status"})
	metricTotalStake     = metrics.LazyLoadGaugeVec("validator_total_stake", []string{"validator", "name", "status"})
	metricNominatorCount = metrics.LazyLoadGaugeVec("validator_nominator_count", []string{"validator", "name", "status"})

	metricCycleCount        = metrics.LazyLoadCounterVec("poll_cycle_count", []string{"status"})
	metricCycleDuration     = metrics.LazyLoadHistogram("poll_cycle_duration_ms", metrics.BucketCycle)
	metricConnected         = metrics.LazyLoadGauge("chain_connected")
	metricTrackedValidators = metrics.LazyLoadGauge("tracked_validator_count")
)
