// Copyright (c) 2024 The Ternoa staking exporter developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package node drives the poll loop: connect to the chain, snapshot validator
// stakes once per interval and publish them as gauges.
package node

import (
	"context"
	"strconv"
	"time"

	"github.com/pkg/errors"

	"github.com/ternoa-network/staking-exporter/chainclient"
	"github.com/ternoa-network/staking-exporter/co"
	"github.com/ternoa-network/staking-exporter/health"
	"github.com/ternoa-network/staking-exporter/identity"
	"github.com/ternoa-network/staking-exporter/log"
	"github.com/ternoa-network/staking-exporter/staking"
)

var logger = log.WithContext("pkg", "node")

const (
	defaultPollInterval = 60 * time.Second

	connectAttempts = 5
	retryDelay      = 5 * time.Second
)

// ChainReader is everything one poll cycle needs from the chain.
type ChainReader interface {
	staking.StateReader
	identity.ChainReader
	RegisteredValidators() ([]string, error)
	SessionValidators() ([]string, error)
	Close()
}

// Options configures the poll loop.
type Options struct {
	Endpoint     string
	PollInterval time.Duration
	// Validators restricts polling to a watch list. Empty means every
	// registered validator.
	Validators []string
}

type Node struct {
	opts    Options
	tracker *staking.MovementTracker
	health  *health.Health
	connect func(url string) (ChainReader, error)
}

func New(opts Options, healthStatus *health.Health) *Node {
	if opts.PollInterval <= 0 {
		opts.PollInterval = defaultPollInterval
	}
	return &Node{
		opts:    opts,
		tracker: staking.NewMovementTracker(),
		health:  healthStatus,
		connect: func(url string) (ChainReader, error) {
			return chainclient.Connect(url)
		},
	}
}

// Run polls until ctx is canceled. Connection loss and cycle errors reconnect
// and continue forever; cancellation is the only way out.
func (n *Node) Run(ctx context.Context) error {
	for {
		reader, err := n.connectWithRetry(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			logger.Error("connection attempts exhausted, restarting", "err", err)
			if !sleep(ctx, retryDelay) {
				return nil
			}
			continue
		}

		n.health.ConnectionStatus(true)
		metricConnected().Set(1)

		// closing the connection on cancel abandons any in-flight query
		done := make(chan struct{})
		var goes co.Goes
		goes.Go(func() {
			select {
			case <-ctx.Done():
				reader.Close()
			case <-done:
			}
		})

		err = n.pollLoop(ctx, reader)

		close(done)
		reader.Close()
		goes.Wait()

		n.health.ConnectionStatus(false)
		metricConnected().Set(0)

		if ctx.Err() != nil {
			return nil
		}
		logger.Warn("poll loop interrupted, reconnecting", "err", err)
		if !sleep(ctx, retryDelay) {
			return nil
		}
	}
}

func (n *Node) connectWithRetry(ctx context.Context) (ChainReader, error) {
	var lastErr error
	for attempt := 1; attempt <= connectAttempts; attempt++ {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		reader, err := n.connect(n.opts.Endpoint)
		if err == nil {
			logger.Info("connected to chain", "endpoint", n.opts.Endpoint)
			return reader, nil
		}
		lastErr = err
		logger.Warn("connect failed", "endpoint", n.opts.Endpoint, "attempt", attempt, "err", err)

		if attempt < connectAttempts && !sleep(ctx, retryDelay) {
			return nil, ctx.Err()
		}
	}
	return nil, errors.Wrapf(lastErr, "connect to [%v] after %d attempts", n.opts.Endpoint, connectAttempts)
}

func (n *Node) pollLoop(ctx context.Context, reader ChainReader) error {
	for {
		startTime := time.Now()

		era, count, err := n.runCycle(reader)
		if err != nil {
			metricCycleCount().AddWithLabel(1, map[string]string{"status": "failed"})
			return err
		}

		elapsed := time.Since(startTime)
		metricCycleCount().AddWithLabel(1, map[string]string{"status": "completed"})
		metricCycleDuration().Observe(elapsed.Milliseconds())
		n.health.NewGoodCycle(era, count)
		logger.Info("metrics updated", "era", era, "validators", count, "elapsed", elapsed)

		if !sleep(ctx, n.opts.PollInterval) {
			return nil
		}
	}
}

// runCycle performs one full snapshot-and-publish pass. On error the tracker
// keeps the previous cycle's state.
func (n *Node) runCycle(reader ChainReader) (uint32, int, error) {
	validators, err := reader.RegisteredValidators()
	if err != nil {
		return 0, 0, errors.Wrap(err, "list registered validators")
	}
	validators = filterValidators(validators, n.opts.Validators)

	active, err := reader.SessionValidators()
	if err != nil {
		return 0, 0, errors.Wrap(err, "list session validators")
	}
	activeSet := make(map[string]bool, len(active))
	for _, addr := range active {
		activeSet[addr] = true
	}

	snapshots, era, err := staking.NewBuilder(reader).Build(validators)
	if err != nil {
		return 0, 0, err
	}

	resolver := identity.NewResolver(reader)
	for _, validator := range validators {
		status := "waiting"
		if activeSet[validator] {
			status = "active"
		}
		n.publish(validator, resolver.DisplayName(validator), status, era, snapshots[validator])
	}

	n.tracker.Commit(snapshots)
	metricTrackedValidators().Set(float64(len(snapshots)))
	return era, len(snapshots), nil
}

func (n *Node) publish(validator, name, status string, era uint32, snap staking.Snapshot) {
	in, out := n.tracker.Track(validator, snap.TotalStake)
	if in > 0 {
		metricCapsIn().SetWithLabel(in, map[string]string{
			"validator": validator, "name": name, "type": "nomination",
		})
	}
	if out > 0 {
		metricCapsOut().SetWithLabel(out, map[string]string{
			"validator": validator, "name": name, "type": "unstake",
		})
	}

	labels := map[string]string{"validator": validator, "name": name, "status": status}
	metricSelfStake().SetWithLabel(snap.SelfStake, labels)
	metricNominations().SetWithLabel(snap.Nominations, labels)
	metricTotalStake().SetWithLabel(snap.TotalStake, labels)
	metricNominatorCount().SetWithLabel(float64(snap.NominatorCount), labels)

	if snap.Rewards > 0 {
		metricRewards().SetWithLabel(snap.Rewards, map[string]string{
			"validator": validator, "name": name, "era": strconv.FormatUint(uint64(era), 10),
		})
	}
}

func filterValidators(registered, watch []string) []string {
	if len(watch) == 0 {
		return registered
	}
	watched := make(map[string]bool, len(watch))
	for _, addr := range watch {
		watched[addr] = true
	}
	filtered := make([]string, 0, len(watch))
	for _, addr := range registered {
		if watched[addr] {
			filtered = append(filtered, addr)
		}
	}
	return filtered
}

func sleep(ctx context.Context, d time.Duration) bool {
	select {
	case <-ctx.Done():
		return false
	case <-time.After(d):
		return true
	}
}
