// Copyright 2017 The Bazel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package metrics records Prometheus metrics of bundling runs.
package metrics // import "go.jsbundle.dev/internal/metrics"

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"go.jsbundle.dev/bundler"
)

// Metrics holds the metrics of one process.
type Metrics struct {
	reg *prometheus.Registry

	resolves     *prometheus.CounterVec
	loads        *prometheus.CounterVec
	loadDuration prometheus.Histogram
	runs         *prometheus.CounterVec
	bundles      *prometheus.GaugeVec
	outputBytes  *prometheus.GaugeVec
	modules      prometheus.Gauge
}

// New creates the metrics in a new registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)
	return &Metrics{
		reg: reg,
		resolves: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "jsbundle_resolve_total",
				Help: "Total number of Resolve calls",
			},
			[]string{"result"},
		),
		loads: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "jsbundle_load_total",
				Help: "Total number of Load calls",
			},
			[]string{"result"},
		),
		loadDuration: f.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "jsbundle_load_duration_seconds",
				Help:    "Load latency in seconds",
				Buckets: []float64{.0001, .0005, .001, .005, .01, .05, .1, .5, 1},
			},
		),
		runs: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "jsbundle_runs_total",
				Help: "Total number of bundling runs by final state",
			},
			[]string{"state"},
		),
		bundles: f.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "jsbundle_bundles",
				Help: "Number of bundles emitted by the last run",
			},
			[]string{"kind"},
		),
		outputBytes: f.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "jsbundle_output_bytes",
				Help: "Size of the printed bundles of the last run",
			},
			[]string{"kind"},
		),
		modules: f.NewGauge(
			prometheus.GaugeOpts{
				Name: "jsbundle_graph_modules",
				Help: "Number of modules in the graph of the last run",
			},
		),
	}
}

// Registry returns the registry holding the metrics.
func (m *Metrics) Registry() *prometheus.Registry { return m.reg }

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

// Instrument returns a Resolver and a Loader that count the calls
// made to r and l.
func (m *Metrics) Instrument(r bundler.Resolver, l bundler.Loader) (bundler.Resolver, bundler.Loader) {
	resolver := bundler.ResolverFunc(func(ctx context.Context, importer bundler.ModuleId, specifier string) (bundler.ModuleId, error) {
		id, err := r.Resolve(ctx, importer, specifier)
		m.resolves.WithLabelValues(result(err)).Inc()
		return id, err
	})
	loader := bundler.LoaderFunc(func(ctx context.Context, id bundler.ModuleId) (*bundler.LoadedModule, error) {
		start := time.Now()
		lm, err := l.Load(ctx, id)
		m.loadDuration.Observe(time.Since(start).Seconds())
		m.loads.WithLabelValues(result(err)).Inc()
		return lm, err
	})
	return resolver, loader
}

// Record records the outcome of a bundling run: its final state,
// and on success the graph size and the bundles by kind.
func (m *Metrics) Record(b *bundler.Bundler, bundles []*bundler.Bundle, err error) {
	m.runs.WithLabelValues(b.State().String()).Inc()
	if err != nil {
		return
	}
	if g := b.Graph(); g != nil {
		m.modules.Set(float64(len(g.Modules)))
	}
	m.bundles.Reset()
	m.outputBytes.Reset()
	for _, kind := range []bundler.BundleKind{bundler.EntryBundle, bundler.SharedBundle, bundler.DynamicBundle} {
		m.bundles.WithLabelValues(kind.String())
		m.outputBytes.WithLabelValues(kind.String())
	}
	for _, bundle := range bundles {
		kind := bundle.Kind.String()
		m.bundles.WithLabelValues(kind).Inc()
		m.outputBytes.WithLabelValues(kind).Add(float64(len(bundle.Text())))
	}
}

// WriteTextfile writes the metrics to a file in the text exposition
// format, for collection by the node exporter.
func (m *Metrics) WriteTextfile(filename string) error {
	return prometheus.WriteToTextfile(filename, m.reg)
}
