package metrics

import (
	"net/http"
	"sync"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	promcollect "github.com/prometheus/client_golang/prometheus/collectors"
	promhttp "github.com/prometheus/client_golang/prometheus/promhttp"
)

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	once         sync.Once
	runDuration  prom.Histogram
	runOutcomes  *prom.CounterVec
	tasksFound   prom.Counter
	tasksMatched prom.Counter
	logResults   *prom.CounterVec
	stateSaves   prom.Counter
}

// NewPrometheusRecorder constructs and registers Prometheus metrics (idempotent).
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{}
	pr.once.Do(func() {
		pr.runDuration = prom.NewHistogram(prom.HistogramOpts{
			Namespace: "habitsync",
			Name:      "run_duration_seconds",
			Help:      "Duration of complete sync runs",
			Buckets:   prom.DefBuckets,
		})
		pr.runOutcomes = prom.NewCounterVec(prom.CounterOpts{
			Namespace: "habitsync",
			Name:      "run_outcomes_total",
			Help:      "Sync run outcomes by final status",
		}, []string{"outcome"})
		pr.tasksFound = prom.NewCounter(prom.CounterOpts{
			Namespace: "habitsync",
			Name:      "tasks_found_total",
			Help:      "Completed tasks returned by the task service",
		})
		pr.tasksMatched = prom.NewCounter(prom.CounterOpts{
			Namespace: "habitsync",
			Name:      "tasks_matched_total",
			Help:      "Completed tasks matched to a habit by name",
		})
		pr.logResults = prom.NewCounterVec(prom.CounterOpts{
			Namespace: "habitsync",
			Name:      "log_writes_total",
			Help:      "Habit log write attempts by result",
		}, []string{"result"})
		pr.stateSaves = prom.NewCounter(prom.CounterOpts{
			Namespace: "habitsync",
			Name:      "state_save_failures_total",
			Help:      "Watermark save failures (non-fatal)",
		})
		reg.MustRegister(pr.runDuration, pr.runOutcomes, pr.tasksFound, pr.tasksMatched, pr.logResults, pr.stateSaves)
	})
	return pr
}

func (p *PrometheusRecorder) ObserveRunDuration(d time.Duration) {
	if p == nil || p.runDuration == nil {
		return
	}
	p.runDuration.Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncRunOutcome(outcome OutcomeLabel) {
	if p == nil || p.runOutcomes == nil {
		return
	}
	p.runOutcomes.WithLabelValues(string(outcome)).Inc()
}

func (p *PrometheusRecorder) AddTasksFound(n int) {
	if p == nil || p.tasksFound == nil {
		return
	}
	p.tasksFound.Add(float64(n))
}

func (p *PrometheusRecorder) AddTasksMatched(n int) {
	if p == nil || p.tasksMatched == nil {
		return
	}
	p.tasksMatched.Add(float64(n))
}

func (p *PrometheusRecorder) IncLogResult(success bool) {
	if p == nil || p.logResults == nil {
		return
	}
	label := "failure"
	if success {
		label = "success"
	}
	p.logResults.WithLabelValues(label).Inc()
}

func (p *PrometheusRecorder) IncStateSaveFailure() {
	if p == nil || p.stateSaves == nil {
		return
	}
	p.stateSaves.Inc()
}

// HTTPHandler returns an http.Handler that serves Prometheus metrics for the
// provided registry, with process and Go runtime collectors registered.
func HTTPHandler(reg *prom.Registry) http.Handler {
	reg.MustRegister(promcollect.NewGoCollector(), promcollect.NewProcessCollector(promcollect.ProcessCollectorOpts{}))
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{EnableOpenMetrics: true})
}
