// Package metrics exposes pipeline counters to Prometheus.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"KBeautyBriefing/internal/domain"
	"KBeautyBriefing/internal/ports"
)

const namespace = "kbeauty"

// Collector records run outcomes in Prometheus metrics.
type Collector struct {
	runs         *prometheus.CounterVec
	runDuration  prometheus.Histogram
	lastSuccess  prometheus.Gauge
	postsScraped prometheus.Counter
	postsKept    prometheus.Counter
	trends       prometheus.Gauge
	recoveries   *prometheus.CounterVec
	sinkWrites   *prometheus.CounterVec
}

var _ ports.RunMetrics = (*Collector)(nil)

// NewCollector registers the pipeline metrics with reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Finished pipeline runs by final state.",
		}, []string{"state"}),
		runDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Wall time of pipeline runs.",
			Buckets:   []float64{5, 15, 30, 60, 120, 300, 600, 1200},
		}),
		lastSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_success_timestamp_seconds",
			Help:      "Unix time of the last completed run.",
		}),
		postsScraped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "posts_scraped_total",
			Help:      "Posts collected from content sources.",
		}),
		postsKept: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "posts_relevant_total",
			Help:      "Posts that passed the relevance filter.",
		}),
		trends: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "trends_last_run",
			Help:      "Trends extracted by the most recent run.",
		}),
		recoveries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "llm_recoveries_total",
			Help:      "LLM steps that fell back to an empty result.",
		}, []string{"step"}),
		sinkWrites: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sink_writes_total",
			Help:      "Briefing writes per sink and outcome.",
		}, []string{"sink", "ok"}),
	}

	reg.MustRegister(
		c.runs,
		c.runDuration,
		c.lastSuccess,
		c.postsScraped,
		c.postsKept,
		c.trends,
		c.recoveries,
		c.sinkWrites,
	)

	return c
}

// RecordRun implements ports.RunMetrics.
func (c *Collector) RecordRun(state domain.RunState, duration time.Duration) {
	c.runs.WithLabelValues(string(state)).Inc()
	c.runDuration.Observe(duration.Seconds())
	if state == domain.RunCompleted {
		c.lastSuccess.SetToCurrentTime()
	}
}

// RecordPosts implements ports.RunMetrics.
func (c *Collector) RecordPosts(scraped, relevant int) {
	c.postsScraped.Add(float64(scraped))
	c.postsKept.Add(float64(relevant))
}

// RecordTrends implements ports.RunMetrics.
func (c *Collector) RecordTrends(count int) {
	c.trends.Set(float64(count))
}

// RecordRecovery implements ports.RunMetrics.
func (c *Collector) RecordRecovery(step string) {
	c.recoveries.WithLabelValues(step).Inc()
}

// RecordSinkWrite implements ports.RunMetrics.
func (c *Collector) RecordSinkWrite(sink string, ok bool) {
	c.sinkWrites.WithLabelValues(sink, strconv.FormatBool(ok)).Inc()
}

// Handler serves the registry in the Prometheus text format.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
