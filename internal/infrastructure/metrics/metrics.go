package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"section3/internal/ports"
)

var _ ports.JobMetrics = (*Metrics)(nil)

// Metrics owns its registry so that several apps in one process do not collide.
type Metrics struct {
	registry          *prometheus.Registry
	jobRunsTotal      *prometheus.CounterVec
	jobDuration       *prometheus.HistogramVec
	jobCreatedTotal   *prometheus.CounterVec
	notificationsMade *prometheus.CounterVec
	httpRequestsTotal *prometheus.CounterVec
	httpDuration      *prometheus.HistogramVec
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		jobRunsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "section3",
			Name:      "job_runs_total",
			Help:      "Scheduled job runs by job and result.",
		}, []string{"job", "result"}),
		jobDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "section3",
			Name:      "job_duration_seconds",
			Help:      "Scheduled job durations by job.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"job"}),
		jobCreatedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "section3",
			Name:      "job_rows_created_total",
			Help:      "Rows created by scheduled jobs.",
		}, []string{"job"}),
		notificationsMade: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "section3",
			Name:      "notifications_created_total",
			Help:      "Notifications created by type.",
		}, []string{"type"}),
		httpRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "section3",
			Name:      "http_requests_total",
			Help:      "HTTP requests processed by route and status.",
		}, []string{"route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "section3",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request durations by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
	}

	m.registry.MustRegister(
		m.jobRunsTotal,
		m.jobDuration,
		m.jobCreatedTotal,
		m.notificationsMade,
		m.httpRequestsTotal,
		m.httpDuration,
	)

	return m
}

func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

func (m *Metrics) ObserveJob(job string, success bool, created int, elapsed time.Duration) {
	if m == nil {
		return
	}
	result := "success"
	if !success {
		result = "failure"
	}
	m.jobRunsTotal.WithLabelValues(job, result).Inc()
	m.jobDuration.WithLabelValues(job).Observe(elapsed.Seconds())
	if created > 0 {
		m.jobCreatedTotal.WithLabelValues(job).Add(float64(created))
	}
}

func (m *Metrics) ObserveNotifications(notificationType string, count int) {
	if m == nil || count <= 0 {
		return
	}
	m.notificationsMade.WithLabelValues(notificationType).Add(float64(count))
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(status int) {
	s.status = status
	s.ResponseWriter.WriteHeader(status)
}

func (m *Metrics) WrapHandler(route string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()

		next.ServeHTTP(recorder, r)

		if m != nil {
			m.httpRequestsTotal.WithLabelValues(route, strconv.Itoa(recorder.status)).Inc()
			m.httpDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
		}
	})
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
