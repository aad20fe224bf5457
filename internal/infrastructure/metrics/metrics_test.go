package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func counterValue(t *testing.T, m *Metrics, name string, labels map[string]string) float64 {
	t.Helper()

	families, err := m.Registry().Gather()
	if err != nil {
		t.Fatalf("Gather() error = %v", err)
	}
	for _, family := range families {
		if family.GetName() != name {
			continue
		}
		for _, metric := range family.GetMetric() {
			matched := 0
			for _, pair := range metric.GetLabel() {
				if labels[pair.GetName()] == pair.GetValue() {
					matched++
				}
			}
			if matched == len(labels) {
				return metric.GetCounter().GetValue()
			}
		}
	}
	return 0
}

func TestObserveJobCountsByResult(t *testing.T) {
	m := New()

	m.ObserveJob("quarterly_reminders", true, 3, 10*time.Millisecond)
	m.ObserveJob("quarterly_reminders", false, 0, time.Millisecond)
	m.ObserveJob("quarterly_reminders", true, 2, time.Millisecond)

	if got := counterValue(t, m, "section3_job_runs_total", map[string]string{"job": "quarterly_reminders", "result": "success"}); got != 2 {
		t.Fatalf("success runs = %v, want 2", got)
	}
	if got := counterValue(t, m, "section3_job_runs_total", map[string]string{"job": "quarterly_reminders", "result": "failure"}); got != 1 {
		t.Fatalf("failure runs = %v, want 1", got)
	}
	if got := counterValue(t, m, "section3_job_rows_created_total", map[string]string{"job": "quarterly_reminders"}); got != 5 {
		t.Fatalf("rows created = %v, want 5", got)
	}
}

func TestObserveNotificationsIgnoresEmpty(t *testing.T) {
	m := New()

	m.ObserveNotifications("overdue_task", 0)
	m.ObserveNotifications("overdue_task", 4)

	if got := counterValue(t, m, "section3_notifications_created_total", map[string]string{"type": "overdue_task"}); got != 4 {
		t.Fatalf("notifications = %v, want 4", got)
	}
}

func TestHandlerExposesRegistry(t *testing.T) {
	m := New()
	m.ObserveNotifications("below_benchmark", 1)

	wrapped := m.WrapHandler("/metrics", m.Handler())
	rec := httptest.NewRecorder()
	wrapped.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "section3_notifications_created_total") {
		t.Fatalf("metrics body missing notifications counter")
	}
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.ObserveJob("notifications", true, 1, time.Millisecond)
	m.ObserveNotifications("overdue_task", 1)
}
