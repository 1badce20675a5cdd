// Copyright (c) 2024 The Ternoa staking exporter developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package staking derives per-validator stake snapshots, era reward shares
// and cycle-over-cycle stake movement from chain state.
package staking

import (
	"math/big"

	"github.com/holiman/uint256"
)

// Decimals is the number of decimal places of the CAPS token. Raw on-chain
// balances are fixed-point integers scaled by 10^Decimals.
const Decimals = 18

var capsDivisor = new(big.Float).SetInt(new(big.Int).Exp(big.NewInt(10), big.NewInt(Decimals), nil))

// ToCAPS converts a raw fixed-point balance to decimal CAPS.
func ToCAPS(raw *uint256.Int) float64 {
	if raw == nil || raw.IsZero() {
		return 0
	}
	f := new(big.Float).SetInt(raw.ToBig())
	f.Quo(f, capsDivisor)
	out, _ := f.Float64()
	return out
}
