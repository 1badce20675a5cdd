// Copyright (c) 2024 The Ternoa staking exporter developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package health tracks poll-cycle liveness for the admin endpoint.
package health

import (
	"sync"
	"time"
)

// defaultCycleTolerance is how many poll intervals may pass without a good
// cycle before the exporter reports unhealthy.
const defaultCycleTolerance = 2

type CycleIngestion struct {
	Era            uint32     `json:"era"`
	ValidatorCount int        `json:"validatorCount"`
	Timestamp      *time.Time `json:"timestamp"`
}

type Status struct {
	Healthy        bool            `json:"healthy"`
	Connected      bool            `json:"connected"`
	CycleIngestion *CycleIngestion `json:"cycleIngestion"`
}

type Health struct {
	lock           sync.RWMutex
	maxCycleGap    time.Duration
	lastGoodCycle  time.Time
	era            uint32
	validatorCount int
	connected      bool
}

func New(pollInterval time.Duration) *Health {
	return &Health{
		maxCycleGap: defaultCycleTolerance * pollInterval,
	}
}

// NewGoodCycle records a completed poll cycle.
func (h *Health) NewGoodCycle(era uint32, validatorCount int) {
	h.lock.Lock()
	defer h.lock.Unlock()

	h.lastGoodCycle = time.Now()
	h.era = era
	h.validatorCount = validatorCount
}

// ConnectionStatus records whether the chain connection is currently up.
func (h *Health) ConnectionStatus(connected bool) {
	h.lock.Lock()
	defer h.lock.Unlock()

	h.connected = connected
}

func (h *Health) Status() (*Status, error) {
	h.lock.RLock()
	defer h.lock.RUnlock()

	// copy so the pointer handed out never aliases the guarded field
	lastGoodCycle := h.lastGoodCycle
	ingestion := &CycleIngestion{
		Era:            h.era,
		ValidatorCount: h.validatorCount,
		Timestamp:      &lastGoodCycle,
	}

	healthy := h.connected &&
		!h.lastGoodCycle.IsZero() &&
		time.Since(h.lastGoodCycle) < h.maxCycleGap

	return &Status{
		Healthy:        healthy,
		Connected:      h.connected,
		CycleIngestion: ingestion,
	}, nil
}
