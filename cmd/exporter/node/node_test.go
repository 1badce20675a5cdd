// Copyright (c) 2024 The Ternoa staking exporter developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package node

import (
	"context"
	"maps"
	"testing"
	"time"

	"github.com/holiman/uint256"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ternoa-network/staking-exporter/chainclient"
	"github.com/ternoa-network/staking-exporter/health"
	"github.com/ternoa-network/staking-exporter/metrics"
)

type fakeChain struct {
	registered    []string
	active        []string
	era           *chainclient.ActiveEra
	eraErr        error
	exposures     map[string]*chainclient.Exposure
	points        *chainclient.EraRewardPoints
	pool          *chainclient.Balance
	registrations map[string]*chainclient.Registration
	closed        bool
}

func (f *fakeChain) ActiveEra() (*chainclient.ActiveEra, error) {
	return f.era, f.eraErr
}

func (f *fakeChain) EraStakers(_ uint32, validator string) (*chainclient.Exposure, error) {
	exposure, ok := f.exposures[validator]
	if !ok {
		return nil, errors.Errorf("no exposure for %v", validator)
	}
	return exposure, nil
}

func (f *fakeChain) EraRewardPoints(uint32) (*chainclient.EraRewardPoints, error) {
	if f.points == nil {
		return &chainclient.EraRewardPoints{}, nil
	}
	return f.points, nil
}

func (f *fakeChain) EraValidatorReward(uint32) (*chainclient.Balance, error) {
	return f.pool, nil
}

func (f *fakeChain) RegisteredValidators() ([]string, error) {
	return f.registered, nil
}

func (f *fakeChain) SessionValidators() ([]string, error) {
	return f.active, nil
}

func (f *fakeChain) SuperOf(string) (*chainclient.SubIdentity, error) {
	return nil, nil
}

func (f *fakeChain) IdentityOf(addr string) (*chainclient.Registration, error) {
	return f.registrations[addr], nil
}

func (f *fakeChain) Close() {
	f.closed = true
}

func capsAmount(t *testing.T, dec string) Balance {
	v, err := uint256.FromDecimal(dec)
	require.NoError(t, err)
	return chainclient.NewBalance(v)
}

// Balance aliases the chain balance type for test brevity.
type Balance = chainclient.Balance

func exposureOf(t *testing.T, own, total string, nominators int) *chainclient.Exposure {
	exp := &chainclient.Exposure{
		Own:   capsAmount(t, own),
		Total: capsAmount(t, total),
	}
	for i := 0; i < nominators; i++ {
		exp.Others = append(exp.Others, chainclient.IndividualExposure{})
	}
	return exp
}

func gaugeValue(t *testing.T, name string, labels map[string]string) (float64, bool) {
	families, err := prometheus.DefaultGatherer.Gather()
	require.NoError(t, err)

	for _, family := range families {
		if family.GetName() != name {
			continue
		}
		for _, m := range family.GetMetric() {
			got := map[string]string{}
			for _, label := range m.GetLabel() {
				got[label.GetName()] = label.GetValue()
			}
			if maps.Equal(got, labels) {
				return m.GetGauge().GetValue(), true
			}
		}
	}
	return 0, false
}

func newTestNode(opts Options) *Node {
	metrics.InitializePrometheusMetrics()
	return New(opts, health.New(time.Minute))
}

func TestRunCycle(t *testing.T) {
	pool := capsAmount(t, "1000000000000000000000") // 1000 CAPS
	chain := &fakeChain{
		registered: []string{"5CycleVal1", "5CycleVal2"},
		active:     []string{"5CycleVal1"},
		era:        &chainclient.ActiveEra{Index: 812},
		exposures: map[string]*chainclient.Exposure{
			"5CycleVal1": exposureOf(t, "1000000000000000000000", "3000000000000000000000", 2),
			"5CycleVal2": exposureOf(t, "500000000000000000000", "500000000000000000000", 0),
		},
		points: &chainclient.EraRewardPoints{
			Individual: []chainclient.RewardPointsEntry{
				{Who: "5CycleVal1", Points: 30},
				{Who: "5CycleVal2", Points: 70},
			},
		},
		pool: &pool,
		registrations: map[string]*chainclient.Registration{
			"5CycleVal1": {
				Info: chainclient.IdentityInfo{Display: chainclient.Data{Raw: "Alice"}},
			},
		},
	}

	n := newTestNode(Options{})
	era, count, err := n.runCycle(chain)
	require.NoError(t, err)
	assert.Equal(t, uint32(812), era)
	assert.Equal(t, 2, count)

	activeLabels := map[string]string{"validator": "5CycleVal1", "name": "Alice", "status": "active"}
	v, ok := gaugeValue(t, "ternoa_validator_self_stake", activeLabels)
	require.True(t, ok)
	assert.Equal(t, 1000.0, v)

	v, ok = gaugeValue(t, "ternoa_validator_nominations", activeLabels)
	require.True(t, ok)
	assert.Equal(t, 2000.0, v)

	v, ok = gaugeValue(t, "ternoa_validator_nominator_count", activeLabels)
	require.True(t, ok)
	assert.Equal(t, 2.0, v)

	// the unregistered identity falls back to the raw address
	waitingLabels := map[string]string{"validator": "5CycleVal2", "name": "5CycleVal2", "status": "waiting"}
	v, ok = gaugeValue(t, "ternoa_validator_total_stake", waitingLabels)
	require.True(t, ok)
	assert.Equal(t, 500.0, v)

	v, ok = gaugeValue(t, "ternoa_validator_rewards", map[string]string{
		"validator": "5CycleVal1", "name": "Alice", "era": "812",
	})
	require.True(t, ok)
	assert.Equal(t, 300.0, v)
}

func TestRunCycleMovement(t *testing.T) {
	chain := &fakeChain{
		registered: []string{"5MoveVal1"},
		active:     []string{"5MoveVal1"},
		era:        &chainclient.ActiveEra{Index: 812},
		exposures: map[string]*chainclient.Exposure{
			"5MoveVal1": exposureOf(t, "100000000000000000000", "100000000000000000000", 0),
		},
	}

	n := newTestNode(Options{})
	_, _, err := n.runCycle(chain)
	require.NoError(t, err)

	// no movement gauges before a previous cycle exists
	inLabels := map[string]string{"validator": "5MoveVal1", "name": "5MoveVal1", "type": "nomination"}
	outLabels := map[string]string{"validator": "5MoveVal1", "name": "5MoveVal1", "type": "unstake"}
	_, ok := gaugeValue(t, "ternoa_validator_caps_in", inLabels)
	assert.False(t, ok)

	chain.exposures["5MoveVal1"] = exposureOf(t, "100000000000000000000", "120000000000000000000", 1)
	_, _, err = n.runCycle(chain)
	require.NoError(t, err)

	v, ok := gaugeValue(t, "ternoa_validator_caps_in", inLabels)
	require.True(t, ok)
	assert.Equal(t, 20.0, v)

	chain.exposures["5MoveVal1"] = exposureOf(t, "100000000000000000000", "90000000000000000000", 0)
	_, _, err = n.runCycle(chain)
	require.NoError(t, err)

	v, ok = gaugeValue(t, "ternoa_validator_caps_out", outLabels)
	require.True(t, ok)
	assert.Equal(t, 30.0, v)
}

func TestRunCycleRewardGating(t *testing.T) {
	pool := capsAmount(t, "1000000000000000000000")
	chain := &fakeChain{
		registered: []string{"5GateVal1"},
		active:     []string{"5GateVal1"},
		era:        &chainclient.ActiveEra{Index: 812},
		exposures: map[string]*chainclient.Exposure{
			"5GateVal1": exposureOf(t, "100000000000000000000", "100000000000000000000", 0),
		},
		points: &chainclient.EraRewardPoints{
			Individual: []chainclient.RewardPointsEntry{
				{Who: "5GateVal2", Points: 100},
			},
		},
		pool: &pool,
	}

	n := newTestNode(Options{})
	_, _, err := n.runCycle(chain)
	require.NoError(t, err)

	// a zero reward never publishes a reward sample
	_, ok := gaugeValue(t, "ternoa_validator_rewards", map[string]string{
		"validator": "5GateVal1", "name": "5GateVal1", "era": "812",
	})
	assert.False(t, ok)
}

func TestRunCycleFatalEraPreservesState(t *testing.T) {
	chain := &fakeChain{
		registered: []string{"5FatalVal1"},
		active:     []string{"5FatalVal1"},
		era:        &chainclient.ActiveEra{Index: 812},
		exposures: map[string]*chainclient.Exposure{
			"5FatalVal1": exposureOf(t, "100000000000000000000", "100000000000000000000", 0),
		},
	}

	n := newTestNode(Options{})
	_, _, err := n.runCycle(chain)
	require.NoError(t, err)

	chain.eraErr = errors.New("connection reset")
	_, _, err = n.runCycle(chain)
	require.Error(t, err)

	// the failed cycle left the previous state untouched
	prev, ok := n.tracker.Previous("5FatalVal1")
	require.True(t, ok)
	assert.Equal(t, 100.0, prev.TotalStake)

	// the next good cycle measures movement against the pre-failure state
	chain.eraErr = nil
	chain.exposures["5FatalVal1"] = exposureOf(t, "100000000000000000000", "120000000000000000000", 1)
	_, _, err = n.runCycle(chain)
	require.NoError(t, err)

	v, ok := gaugeValue(t, "ternoa_validator_caps_in", map[string]string{
		"validator": "5FatalVal1", "name": "5FatalVal1", "type": "nomination",
	})
	require.True(t, ok)
	assert.Equal(t, 20.0, v)
}

func TestRunCycleWatchList(t *testing.T) {
	chain := &fakeChain{
		registered: []string{"5WatchVal1", "5WatchVal2", "5WatchVal3"},
		active:     []string{"5WatchVal1", "5WatchVal2"},
		era:        &chainclient.ActiveEra{Index: 812},
		exposures: map[string]*chainclient.Exposure{
			"5WatchVal2": exposureOf(t, "100000000000000000000", "100000000000000000000", 0),
		},
	}

	n := newTestNode(Options{Validators: []string{"5WatchVal2"}})
	_, count, err := n.runCycle(chain)
	require.NoError(t, err)

	assert.Equal(t, 1, count)
	assert.Equal(t, 1, n.tracker.Tracked())

	_, ok := n.tracker.Previous("5WatchVal1")
	assert.False(t, ok)
}

func TestRunStopsOnCancel(t *testing.T) {
	n := newTestNode(Options{Endpoint: "ws://localhost:1"})
	n.connect = func(string) (ChainReader, error) {
		return nil, errors.New("refused")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- n.Run(ctx)
	}()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not stop on cancellation")
	}
}
