// Copyright (c) 2024 The Ternoa staking exporter developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staking

import (
	"github.com/pkg/errors"

	"github.com/ternoa-network/staking-exporter/chainclient"
	"github.com/ternoa-network/staking-exporter/log"
)

var logger = log.WithContext("pkg", "staking")

// StateReader is the chain state surface the snapshot builder needs.
type StateReader interface {
	ActiveEra() (*chainclient.ActiveEra, error)
	EraStakers(era uint32, validator string) (*chainclient.Exposure, error)
	EraRewardPoints(era uint32) (*chainclient.EraRewardPoints, error)
	EraValidatorReward(era uint32) (*chainclient.Balance, error)
}

// Snapshot is one validator's stake state for an era, in decimal CAPS.
// TotalStake == SelfStake + Nominations holds by construction.
type Snapshot struct {
	SelfStake      float64
	TotalStake     float64
	Nominations    float64
	NominatorCount int
	Rewards        float64
	Slashes        float64
}

// Builder assembles per-validator snapshots for the active era.
type Builder struct {
	reader StateReader
}

func NewBuilder(reader StateReader) *Builder {
	return &Builder{reader: reader}
}

// Build produces one snapshot per validator for the active era and returns
// the era index the snapshots belong to.
//
// The active era read is the only fatal failure: nothing era-indexed is
// meaningful without it. Everything after is isolated per validator. A
// failing validator gets a zero-value snapshot and processing continues, so
// one malformed entry never blanks out the rest of the cycle.
func (b *Builder) Build(validators []string) (map[string]Snapshot, uint32, error) {
	era, err := b.reader.ActiveEra()
	if err != nil {
		return nil, 0, errors.Wrap(err, "read active era")
	}

	snapshots := make(map[string]Snapshot, len(validators))
	for _, validator := range validators {
		snapshot, err := b.build(era.Index, validator)
		if err != nil {
			logger.Error("building validator snapshot", "validator", validator, "era", era.Index, "err", err)
			snapshots[validator] = Snapshot{}
			continue
		}
		snapshots[validator] = snapshot
	}
	return snapshots, era.Index, nil
}

func (b *Builder) build(era uint32, validator string) (Snapshot, error) {
	exposure, err := b.reader.EraStakers(era, validator)
	if err != nil {
		return Snapshot{}, errors.Wrap(err, "read exposure")
	}

	own := ToCAPS(exposure.Own.Uint256())
	total := ToCAPS(exposure.Total.Uint256())

	return Snapshot{
		SelfStake:      own,
		TotalStake:     total,
		Nominations:    total - own,
		NominatorCount: len(exposure.Others),
		Rewards:        b.eraReward(era, validator),
		Slashes:        b.eraSlashes(era, validator),
	}, nil
}
