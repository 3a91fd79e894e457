// Fusion
// Copyright (C) James Shubin and the project contributors
// Written by James Shubin <james@shubin.ca> and the project contributors
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.
//
// Additional permission under GNU GPL version 3 section 7
//
// If you modify this program, or any covered work, by linking or combining it
// with embedded mcl code and modules (and that the embedded mcl code and
// modules which link with this program, contain a copy of their source code in
// the authoritative form) containing parts covered by the terms of any other
// license, the licensors of this program grant you additional permission to
// convey the resulting work. Furthermore, the licensors of this program grant
// the original author, James Shubin, additional permission to update this
// additional permission if he deems it necessary to achieve the goals of this
// additional permission.

// Package prometheus provides the metrics of the evaluation runtime. They are
// registered on a registerer that the caller provides, and gathered in-process.
package prometheus

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// DefaultPrometheusListen is registered in
// https://github.com/prometheus/prometheus/wiki/Default-port-allocations
const DefaultPrometheusListen = "127.0.0.1:9233"

// Outcomes of an evaluation, used as label values.
const (
	OutcomeValue     = "value"
	OutcomeCancelled = "cancelled"
	OutcomeError     = "error"
)

// Metrics is the struct that contains the metrics of a runtime. Run Init() on
// it. A nil *Metrics is valid, and records nothing.
type Metrics struct {
	evaluationsTotal  *prometheus.CounterVec // total of top-level evaluations
	attributesTotal   *prometheus.CounterVec // total of evaluated attributes
	cacheLookupsTotal *prometheus.CounterVec // total of cache lookups
	evaluationSeconds prometheus.Histogram   // duration of top-level evaluations
}

// Init builds the metrics and registers them.
func (obj *Metrics) Init(reg prometheus.Registerer) error {
	obj.evaluationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fusion_evaluations_total",
			Help: "Number of top-level evaluations that have run.",
		},
		// Labels for this metric.
		// outcome: value, cancelled or error
		[]string{"outcome"},
	)
	obj.attributesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fusion_attribute_evaluations_total",
			Help: "Number of attribute evaluation chains that have been built.",
		},
		// Labels for this metric.
		// cancelled: if an @if condition cancelled the attribute
		[]string{"cancelled"},
	)
	obj.cacheLookupsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fusion_cache_lookups_total",
			Help: "Number of cache lookups before object evaluations.",
		},
		// Labels for this metric.
		// result: hit or miss
		[]string{"result"},
	)
	obj.evaluationSeconds = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "fusion_evaluation_seconds",
			Help:    "Duration of top-level evaluations in seconds.",
			Buckets: prometheus.ExponentialBuckets(0.0001, 4, 10),
		},
	)

	for _, c := range []prometheus.Collector{obj.evaluationsTotal, obj.attributesTotal, obj.cacheLookupsTotal, obj.evaluationSeconds} {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

// UpdateEvaluationsTotal counts a finished top-level evaluation and its
// duration.
func (obj *Metrics) UpdateEvaluationsTotal(outcome string, duration time.Duration) {
	if obj == nil || obj.evaluationsTotal == nil {
		return
	}
	obj.evaluationsTotal.With(prometheus.Labels{"outcome": outcome}).Inc()
	obj.evaluationSeconds.Observe(duration.Seconds())
}

// UpdateAttributesTotal counts a built attribute evaluation chain.
func (obj *Metrics) UpdateAttributesTotal(cancelled bool) {
	if obj == nil || obj.attributesTotal == nil {
		return
	}
	label := "false"
	if cancelled {
		label = "true"
	}
	obj.attributesTotal.With(prometheus.Labels{"cancelled": label}).Inc()
}

// UpdateCacheLookupsTotal counts a cache lookup.
func (obj *Metrics) UpdateCacheLookupsTotal(hit bool) {
	if obj == nil || obj.cacheLookupsTotal == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	obj.cacheLookupsTotal.With(prometheus.Labels{"result": result}).Inc()
}

// Serve runs a http server which responds to /metrics with what the gatherer
// collects. It returns once the context is done, or if the server fails.
func Serve(ctx context.Context, listen string, gatherer prometheus.Gatherer) error {
	if listen == "" {
		listen = DefaultPrometheusListen
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	server := &http.Server{
		Addr:    listen,
		Handler: mux,
	}

	errChan := make(chan error, 1)
	go func() {
		errChan <- server.ListenAndServe()
	}()

	select {
	case err := <-errChan:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
