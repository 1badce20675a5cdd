// Copyright (c) 2024 The Ternoa staking exporter developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staking

import (
	"github.com/ternoa-network/staking-exporter/chainclient"
)

// RewardShare allocates an era's reward pool proportionally to a validator's
// share of the era's reward points. The validator's points are taken from the
// first matching entry; a table summing to zero points substitutes a total of
// 1 so an empty era yields 0 rather than a division by zero.
func RewardShare(points *chainclient.EraRewardPoints, validator string, pool float64) float64 {
	var total float64
	for _, entry := range points.Individual {
		total += float64(entry.Points)
	}

	var own float64
	for _, entry := range points.Individual {
		if entry.Who == validator {
			own = float64(entry.Points)
			break
		}
	}

	if total == 0 {
		total = 1
	}
	return (own / total) * pool
}

// eraReward computes the validator's share of the era reward pool. Any data
// error degrades to 0 for this validator only.
func (b *Builder) eraReward(era uint32, validator string) float64 {
	points, err := b.reader.EraRewardPoints(era)
	if err != nil {
		logger.Error("reading era reward points", "validator", validator, "era", era, "err", err)
		return 0
	}

	pool, err := b.reader.EraValidatorReward(era)
	if err != nil {
		logger.Error("reading era reward pool", "validator", validator, "era", era, "err", err)
		return 0
	}
	if pool == nil {
		// era reward not recorded yet
		return 0
	}

	return RewardShare(points, validator, ToCAPS(pool.Uint256()))
}

// eraSlashes is a placeholder until slash events are indexed; it reports 0
// for every validator.
func (b *Builder) eraSlashes(_ uint32, _ string) float64 {
	return 0
}
