// Copyright (c) 2024 The Ternoa staking exporter developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package metrics

import "net/http"

// noopMetrics implements a no operations metrics service
type noopMetrics struct{}

func defaultNoopMetrics() Metrics { return &noopMetrics{} }

func (n *noopMetrics) GetOrCreateHistogramMeter(string, []int64) HistogramMeter { return &noopMetric }

func (n *noopMetrics) GetOrCreateCountMeter(string) CountMeter { return &noopMetric }

func (n *noopMetrics) GetOrCreateCountVecMeter(string, []string) CountVecMeter { return &noopMetric }

func (n *noopMetrics) GetOrCreateGaugeMeter(string) GaugeMeter { return &noopGaugeMetric }

func (n *noopMetrics) GetOrCreateGaugeVecMeter(string, []string) GaugeVecMeter {
	return &noopGaugeMetric
}

func (n *noopMetrics) GetOrCreateHandler() http.Handler { return nil }

var (
	noopMetric      = noopMeters{}
	noopGaugeMetric = noopGaugeMeters{}
)

type noopMeters struct{}

func (n noopMeters) Add(int64) {}

func (n noopMeters) AddWithLabel(int64, map[string]string) {}

func (n noopMeters) Observe(int64) {}

// noopGaugeMeters is split off from noopMeters since gauges carry float64 values.
type noopGaugeMeters struct{}

func (n noopGaugeMeters) Add(float64) {}

func (n noopGaugeMeters) Set(float64) {}

func (n noopGaugeMeters) AddWithLabel(float64, map[string]string) {}

func (n noopGaugeMeters) SetWithLabel(float64, map[string]string) {}
