// Copyright (c) 2024 The Ternoa staking exporter developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package chainclient provides a typed client for the staking, session and
// identity state of a Ternoa node. It speaks to the node's decoded-storage
// RPC over a websocket; SS58 formatting and runtime type registry decoding
// are node-side concerns.
package chainclient

import (
	"bytes"
	"encoding/json"

	"github.com/pkg/errors"

	"github.com/ternoa-network/staking-exporter/chainclient/wsrpc"
)

const (
	methodQueryStorage    = "state_queryStorage"
	methodQueryStorageMap = "state_queryStorageMap"
)

// Client wraps one node connection. It is not safe for concurrent use; the
// poll loop is its only caller.
type Client struct {
	rpc *wsrpc.Client
	url string
}

// Connect dials the node and verifies liveness by reading the current block
// number, so a half-open endpoint fails here instead of mid-cycle.
func Connect(url string) (*Client, error) {
	rpc, err := wsrpc.Dial(url)
	if err != nil {
		return nil, errors.Wrap(err, "dial chain node")
	}

	c := &Client{rpc: rpc, url: url}
	if _, err := c.BlockNumber(); err != nil {
		rpc.Close()
		return nil, errors.Wrap(err, "liveness check")
	}
	return c, nil
}

// URL returns the endpoint this client is bound to.
func (c *Client) URL() string {
	return c.url
}

// Close tears down the underlying connection. In-flight queries are abandoned.
func (c *Client) Close() {
	c.rpc.Close()
}

func (c *Client) query(pallet, item string, keys ...any) (json.RawMessage, error) {
	if keys == nil {
		keys = []any{}
	}
	return c.rpc.Call(methodQueryStorage, []any{pallet, item, keys})
}

func (c *Client) queryMap(pallet, item string) ([]MapEntry, error) {
	result, err := c.rpc.Call(methodQueryStorageMap, []any{pallet, item})
	if err != nil {
		return nil, err
	}

	var entries []MapEntry
	if err := json.Unmarshal(result, &entries); err != nil {
		return nil, errors.Wrapf(err, "decode %v.%v entries", pallet, item)
	}
	return entries, nil
}

func isNull(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) == 0 || string(raw) == "null"
}

// BlockNumber reads System.Number, the current best block height.
func (c *Client) BlockNumber() (uint64, error) {
	result, err := c.query("System", "Number")
	if err != nil {
		return 0, err
	}

	var number uint64
	if err := json.Unmarshal(result, &number); err != nil {
		return 0, errors.Wrap(err, "decode block number")
	}
	return number, nil
}

// ActiveEra reads Staking.ActiveEra. An unset value is an error: nothing
// era-indexed can be read without it.
func (c *Client) ActiveEra() (*ActiveEra, error) {
	result, err := c.query("Staking", "ActiveEra")
	if err != nil {
		return nil, err
	}
	if isNull(result) {
		return nil, errors.New("no active era")
	}

	var era ActiveEra
	if err := json.Unmarshal(result, &era); err != nil {
		return nil, errors.Wrap(err, "decode active era")
	}
	return &era, nil
}

// EraStakers reads Staking.ErasStakers, the validator's exposure for an era.
func (c *Client) EraStakers(era uint32, validator string) (*Exposure, error) {
	result, err := c.query("Staking", "ErasStakers", era, validator)
	if err != nil {
		return nil, err
	}
	if isNull(result) {
		return nil, errors.Errorf("no exposure for validator %v in era %v", validator, era)
	}

	var exposure Exposure
	if err := json.Unmarshal(result, &exposure); err != nil {
		return nil, errors.Wrap(err, "decode exposure")
	}
	return &exposure, nil
}

// EraRewardPoints reads Staking.ErasRewardPoints for an era. The entry order
// reported by the node is preserved.
func (c *Client) EraRewardPoints(era uint32) (*EraRewardPoints, error) {
	result, err := c.query("Staking", "ErasRewardPoints", era)
	if err != nil {
		return nil, err
	}
	if isNull(result) {
		return &EraRewardPoints{}, nil
	}

	var points EraRewardPoints
	if err := json.Unmarshal(result, &points); err != nil {
		return nil, errors.Wrap(err, "decode era reward points")
	}
	return &points, nil
}

// EraValidatorReward reads Staking.ErasValidatorReward, the era's total
// reward pool. Returns nil when the era has no reward recorded yet.
func (c *Client) EraValidatorReward(era uint32) (*Balance, error) {
	result, err := c.query("Staking", "ErasValidatorReward", era)
	if err != nil {
		return nil, err
	}
	if isNull(result) {
		return nil, nil
	}

	var reward Balance
	if err := json.Unmarshal(result, &reward); err != nil {
		return nil, errors.Wrap(err, "decode era reward pool")
	}
	return &reward, nil
}

// RegisteredValidators iterates the Staking.Validators map and returns every
// registered validator address, elected or not.
func (c *Client) RegisteredValidators() ([]string, error) {
	entries, err := c.queryMap("Staking", "Validators")
	if err != nil {
		return nil, err
	}

	validators := make([]string, 0, len(entries))
	for _, entry := range entries {
		var addr string
		if err := json.Unmarshal(entry.Key, &addr); err != nil {
			return nil, errors.Wrap(err, "decode validator address")
		}
		validators = append(validators, addr)
	}
	return validators, nil
}

// SessionValidators reads Session.Validators, the currently elected set.
func (c *Client) SessionValidators() ([]string, error) {
	result, err := c.query("Session", "Validators")
	if err != nil {
		return nil, err
	}

	var validators []string
	if err := json.Unmarshal(result, &validators); err != nil {
		return nil, errors.Wrap(err, "decode session validators")
	}
	return validators, nil
}

// SuperOf reads Identity.SuperOf. Returns nil when the address is not a
// sub-identity of any parent.
func (c *Client) SuperOf(addr string) (*SubIdentity, error) {
	result, err := c.query("Identity", "SuperOf", addr)
	if err != nil {
		return nil, err
	}
	if isNull(result) {
		return nil, nil
	}

	var sub SubIdentity
	if err := json.Unmarshal(result, &sub); err != nil {
		return nil, errors.Wrap(err, "decode sub-identity")
	}
	return &sub, nil
}

// IdentityOf reads Identity.IdentityOf. Returns nil when the address has no
// registered identity.
func (c *Client) IdentityOf(addr string) (*Registration, error) {
	result, err := c.query("Identity", "IdentityOf", addr)
	if err != nil {
		return nil, err
	}
	if isNull(result) {
		return nil, nil
	}

	var reg Registration
	if err := json.Unmarshal(result, &reg); err != nil {
		return nil, errors.Wrap(err, "decode identity registration")
	}
	return &reg, nil
}
