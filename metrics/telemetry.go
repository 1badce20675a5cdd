// Copyright (c) 2024 The Ternoa staking exporter developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package metrics

import (
	"net/http"
	"sync"
)

// metrics is a singleton service that provides global access to a set of meters.
// It defaults to a no-op implementation until InitializePrometheusMetrics is called.
var metrics = defaultNoopMetrics()

// Metrics defines the interface for metrics service implementations.
type Metrics interface {
	GetOrCreateCountMeter(name string) CountMeter
	GetOrCreateCountVecMeter(name string, labels []string) CountVecMeter
	GetOrCreateGaugeMeter(name string) GaugeMeter
	GetOrCreateGaugeVecMeter(name string, labels []string) GaugeVecMeter
	GetOrCreateHistogramMeter(name string, buckets []int64) HistogramMeter
	GetOrCreateHandler() http.Handler
}

// HTTPHandler returns the http handler for retrieving metrics.
func HTTPHandler() http.Handler {
	return metrics.GetOrCreateHandler()
}

// Bucket10s covers durations up to 10 seconds, in milliseconds.
var Bucket10s = []int64{0, 500, 1000, 2000, 3000, 4000, 5000, 7500, 10_000}

// BucketCycle covers poll cycle durations, in milliseconds. A full cycle
// issues one query per validator, so it can run well past Bucket10s.
var BucketCycle = []int64{
	0, 1000, 2000, 5000, 10_000, 15_000, 20_000,
	30_000, 45_000, 60_000, 90_000, 120_000,
}

// HistogramMeter aggregates reported measurements as a histogram.
type HistogramMeter interface {
	Observe(int64)
}

func Histogram(name string, buckets []int64) HistogramMeter {
	return metrics.GetOrCreateHistogramMeter(name, buckets)
}

// CountMeter is a cumulative metric that represents a single monotonically increasing counter.
type CountMeter interface {
	Add(int64)
}

func Counter(name string) CountMeter { return metrics.GetOrCreateCountMeter(name) }

// CountVecMeter is the same as CountMeter but with a vector of label values.
type CountVecMeter interface {
	AddWithLabel(int64, map[string]string)
}

func CounterVec(name string, labels []string) CountVecMeter {
	return metrics.GetOrCreateCountVecMeter(name, labels)
}

// GaugeMeter is a metric holding a single numeric value which can arbitrarily
// go up and down. Gauges carry float64 values since stake amounts are
// fractional CAPS.
type GaugeMeter interface {
	Add(float64)
	Set(float64)
}

func Gauge(name string) GaugeMeter {
	return metrics.GetOrCreateGaugeMeter(name)
}

// GaugeVecMeter is the same as GaugeMeter but with a vector of label values.
type GaugeVecMeter interface {
	AddWithLabel(float64, map[string]string)
	SetWithLabel(float64, map[string]string)
}

func GaugeVec(name string, labels []string) GaugeVecMeter {
	return metrics.GetOrCreateGaugeVecMeter(name, labels)
}

// LazyLoad defers the instantiation of a metric while allowing its definition. More clearly:
// - it allows metrics to be defined and used package wide (using var)
// - it avoids metrics definition to determine the singleton to use (noop vs prometheus)
func LazyLoad[T any](f func() T) func() T {
	var result T
	var once sync.Once
	return func() T {
		once.Do(func() {
			result = f()
		})
		return result
	}
}

func LazyLoadHistogram(name string, buckets []int64) func() HistogramMeter {
	return LazyLoad(func() HistogramMeter {
		return Histogram(name, buckets)
	})
}

func LazyLoadCounter(name string) func() CountMeter {
	return LazyLoad(func() CountMeter {
		return Counter(name)
	})
}

func LazyLoadCounterVec(name string, labels []string) func() CountVecMeter {
	return LazyLoad(func() CountVecMeter {
		return CounterVec(name, labels)
	})
}

func LazyLoadGauge(name string) func() GaugeMeter {
	return LazyLoad(func() GaugeMeter {
		return Gauge(name)
	})
}

func LazyLoadGaugeVec(name string, labels []string) func() GaugeVecMeter {
	return LazyLoad(func() GaugeVecMeter {
		return GaugeVec(name, labels)
	})
}
