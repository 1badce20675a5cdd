// Copyright (c) 2024 The Ternoa staking exporter developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package chainclient

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/holiman/uint256"
	"github.com/pkg/errors"
)

// Balance is a raw chain balance, an 18-decimal fixed-point integer. The node
// serializes balances as decimal strings, hex strings or plain numbers
// depending on magnitude; all three decode here.
type Balance struct {
	i uint256.Int
}

func (b *Balance) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(bytes.TrimSpace(data)), `"`)
	if s == "null" || s == "" {
		return nil
	}

	var (
		v   *uint256.Int
		err error
	)
	if strings.HasPrefix(s, "0x") {
		v, err = uint256.FromHex(s)
	} else {
		v, err = uint256.FromDecimal(s)
	}
	if err != nil {
		return errors.Wrapf(err, "decode balance [%v]", s)
	}
	b.i = *v
	return nil
}

// NewBalance wraps a raw fixed-point value.
func NewBalance(v *uint256.Int) Balance {
	var b Balance
	if v != nil {
		b.i = *v
	}
	return b
}

// Uint256 returns the raw fixed-point value.
func (b *Balance) Uint256() *uint256.Int {
	return &b.i
}

// ActiveEra is the Staking.ActiveEra storage value.
type ActiveEra struct {
	Index uint32 `json:"index"`
	Start uint64 `json:"start"`
}

// IndividualExposure is one nominator's stake behind a validator.
type IndividualExposure struct {
	Who   string  `json:"who"`
	Value Balance `json:"value"`
}

// Exposure is the Staking.ErasStakers storage value: a validator's own stake
// plus its nominators' stakes for one era.
type Exposure struct {
	Total  Balance              `json:"total"`
	Own    Balance              `json:"own"`
	Others []IndividualExposure `json:"others"`
}

// RewardPointsEntry is one ["<address>", points] pair of an era's reward
// points table. The wire order is preserved: when an address appears twice,
// callers take the first match.
type RewardPointsEntry struct {
	Who    string
	Points uint32
}

func (e *RewardPointsEntry) UnmarshalJSON(data []byte) error {
	var pair [2]json.RawMessage
	if err := json.Unmarshal(data, &pair); err != nil {
		return errors.Wrap(err, "decode reward points entry")
	}
	if err := json.Unmarshal(pair[0], &e.Who); err != nil {
		return errors.Wrap(err, "decode reward points address")
	}
	if err := json.Unmarshal(pair[1], &e.Points); err != nil {
		return errors.Wrap(err, "decode reward points value")
	}
	return nil
}

// EraRewardPoints is the Staking.ErasRewardPoints storage value.
type EraRewardPoints struct {
	Total      uint32              `json:"total"`
	Individual []RewardPointsEntry `json:"individual"`
}

// Data is the identity pallet's Data type. On the wire it is either a bare
// string, {"Raw": "..."}, {"None": null}, or null. Hashed variants
// (BlakeTwo256 and friends) carry no displayable text and decode to the zero
// value. Decoding happens once here so nothing downstream probes shapes.
type Data struct {
	Raw string
}

func (d *Data) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		return nil
	}

	if data[0] == '"' {
		return json.Unmarshal(data, &d.Raw)
	}

	var variants map[string]json.RawMessage
	if err := json.Unmarshal(data, &variants); err != nil {
		return errors.Wrap(err, "decode identity data")
	}
	if raw, ok := variants["Raw"]; ok {
		return json.Unmarshal(raw, &d.Raw)
	}
	return nil
}

func (d Data) String() string {
	return d.Raw
}

// IdentityInfo is the set of fields registered under Identity.IdentityOf.
type IdentityInfo struct {
	Display Data `json:"display"`
	Legal   Data `json:"legal"`
	Web     Data `json:"web"`
	Riot    Data `json:"riot"`
	Email   Data `json:"email"`
	Twitter Data `json:"twitter"`
}

// Registration is the Identity.IdentityOf storage value.
type Registration struct {
	Info IdentityInfo `json:"info"`
}

// SubIdentity is the Identity.SuperOf storage value, a
// [parentAddress, subName] pair.
type SubIdentity struct {
	Parent string
	Name   Data
}

func (s *SubIdentity) UnmarshalJSON(data []byte) error {
	var pair [2]json.RawMessage
	if err := json.Unmarshal(data, &pair); err != nil {
		return errors.Wrap(err, "decode sub-identity")
	}
	if err := json.Unmarshal(pair[0], &s.Parent); err != nil {
		return errors.Wrap(err, "decode sub-identity parent")
	}
	return json.Unmarshal(pair[1], &s.Name)
}

// MapEntry is one (key, value) pair of a full storage-map iteration.
type MapEntry struct {
	Key   json.RawMessage `json:"key"`
	Value json.RawMessage `json:"value"`
}
