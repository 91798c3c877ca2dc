// Package metrics provides Prometheus metrics for a resolve or package run.
// A run is a batch job, so metrics are exported as a node_exporter textfile
// rather than served.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/stoneharry/WoW-Map-Asset-Parser/internal/resolver"
)

const namespace = "assetparser"

// Collector records run metrics into its own registry.
// It implements resolver.Recorder and packager.Recorder.
type Collector struct {
	registry *prometheus.Registry

	FilesParsed        *prometheus.CounterVec
	FilesMissing       *prometheus.CounterVec
	ReferencesRejected *prometheus.CounterVec
	FilesPackaged      *prometheus.CounterVec
	AssetsResolved     *prometheus.GaugeVec
	StageDuration      *prometheus.GaugeVec
	LastRun            prometheus.Gauge
}

// New creates a collector with a fresh registry.
func New() *Collector {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Collector{
		registry: reg,
		FilesParsed: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "files_parsed_total",
				Help:      "Asset files parsed successfully",
			},
			[]string{"kind"},
		),
		FilesMissing: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "files_missing_total",
				Help:      "Referenced asset files not found",
			},
			[]string{"kind"},
		),
		ReferencesRejected: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "references_rejected_total",
				Help:      "Embedded strings discarded as invalid references",
			},
			[]string{"reason"},
		),
		FilesPackaged: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "files_packaged_total",
				Help:      "Manifest entries handled by the packager",
			},
			[]string{"result"},
		),
		AssetsResolved: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "assets_resolved",
				Help:      "Size of each resolved asset set",
			},
			[]string{"kind"},
		),
		StageDuration: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "stage_duration_seconds",
				Help:      "Wall time of each run stage",
			},
			[]string{"stage"},
		),
		LastRun: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_timestamp_seconds",
			Help:      "Unix time the run finished",
		}),
	}
}

func (c *Collector) FileParsed(kind string) {
	c.FilesParsed.WithLabelValues(kind).Inc()
}

func (c *Collector) FileMissing(kind string) {
	c.FilesMissing.WithLabelValues(kind).Inc()
}

func (c *Collector) ReferenceRejected(reason string) {
	c.ReferencesRejected.WithLabelValues(reason).Inc()
}

func (c *Collector) FilePackaged(result string) {
	c.FilesPackaged.WithLabelValues(result).Inc()
}

// ObserveResult records the size of each set in res.
func (c *Collector) ObserveResult(res *resolver.Result) {
	c.AssetsResolved.WithLabelValues(resolver.KindObject).Set(float64(len(res.Objects)))
	c.AssetsResolved.WithLabelValues(resolver.KindModel).Set(float64(len(res.Models)))
	c.AssetsResolved.WithLabelValues(resolver.KindTexture).Set(float64(len(res.Textures)))
}

// ObserveStage records how long a stage took.
func (c *Collector) ObserveStage(stage string, d time.Duration) {
	c.StageDuration.WithLabelValues(stage).Set(d.Seconds())
}

// WriteTextfile stamps the finish time and writes every metric to path in
// the Prometheus text format. The file is replaced atomically.
func (c *Collector) WriteTextfile(path string) error {
	c.LastRun.SetToCurrentTime()
	if err := prometheus.WriteToTextfile(path, c.registry); err != nil {
		return fmt.Errorf("failed to write metrics: %w", err)
	}
	return nil
}
