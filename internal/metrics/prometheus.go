package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"FuyouSentinel/internal/model"
)

// Collector owns a private registry with the engine and API metrics.
type Collector struct {
	registry           *prometheus.Registry
	reportsGenerated   prometheus.Counter
	alertsEmitted      *prometheus.CounterVec
	dependentProgress  prometheus.Gauge
	projectedIncome    *prometheus.GaugeVec
	requestDuration    *prometheus.HistogramVec
	collectionFailures prometheus.Counter
}

func NewCollector() *Collector {
	registry := prometheus.NewRegistry()
	f := promauto.With(registry)

	return &Collector{
		registry: registry,
		reportsGenerated: f.NewCounter(prometheus.CounterOpts{
			Name: "fuyou_reports_generated_total",
			Help: "Total number of detailed reports generated",
		}),
		alertsEmitted: f.NewCounterVec(prometheus.CounterOpts{
			Name: "fuyou_alerts_emitted_total",
			Help: "Alerts emitted by type",
		}, []string{"type"}),
		dependentProgress: f.NewGauge(prometheus.GaugeOpts{
			Name: "fuyou_dependent_progress",
			Help: "Share of the dependent limit consumed by the last scheduled check",
		}),
		projectedIncome: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: "fuyou_projected_income_yen",
			Help: "Projected year-end income by scenario",
		}, []string{"scenario"}),
		requestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "fuyou_request_duration_seconds",
			Help:    "HTTP API request latency",
			Buckets: prometheus.DefBuckets,
		}, []string{"path"}),
		collectionFailures: f.NewCounter(prometheus.CounterOpts{
			Name: "fuyou_collection_failures_total",
			Help: "Failed shift collections",
		}),
	}
}

// ObserveReport counts a report and its alerts.
func (c *Collector) ObserveReport(r *model.Report) {
	c.reportsGenerated.Inc()
	c.ObserveAlerts(r.Alerts)
}

func (c *Collector) ObserveAlerts(alerts []model.Alert) {
	for _, a := range alerts {
		c.alertsEmitted.WithLabelValues(string(a.Type)).Inc()
	}
}

// SetStanding publishes the gauges from a scheduled check.
func (c *Collector) SetStanding(r *model.Report) {
	c.dependentProgress.Set(r.Status.DependentProgress)
	s := r.Prediction.Scenarios
	c.projectedIncome.WithLabelValues("conservative").Set(s.Conservative)
	c.projectedIncome.WithLabelValues("realistic").Set(s.Realistic)
	c.projectedIncome.WithLabelValues("optimistic").Set(s.Optimistic)
}

func (c *Collector) ObserveRequest(path string, d time.Duration) {
	c.requestDuration.WithLabelValues(path).Observe(d.Seconds())
}

func (c *Collector) CollectionFailed() {
	c.collectionFailures.Inc()
}

func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}
