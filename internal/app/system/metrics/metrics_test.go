package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetrics_Counters(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.DonorCreated("batch", 3)
	m.DonorCreated("single", 1)
	m.DonorCreated("single", 0)
	m.ObserveSearch("O-", time.Now())
	m.ObserveSearch("", time.Now())
	m.ImportResult(5, 2)
	m.Login("invalid")

	if got := testutil.ToFloat64(m.DonorsCreated.WithLabelValues("batch")); got != 3 {
		t.Errorf("batch created = %v, want 3", got)
	}
	if got := testutil.ToFloat64(m.DonorsCreated.WithLabelValues("single")); got != 1 {
		t.Errorf("single created = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.Searches.WithLabelValues("any")); got != 1 {
		t.Errorf("searches[any] = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.ImportRows.WithLabelValues("rejected")); got != 2 {
		t.Errorf("rejected rows = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.LoginAttempts.WithLabelValues("invalid")); got != 1 {
		t.Errorf("invalid logins = %v, want 1", got)
	}
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	m.DonorCreated("single", 1)
	m.DonorDeleted()
	m.ObserveSearch("A+", time.Now())
	m.ImportResult(1, 1)
	m.Exported(4)
	m.Login("success")
	m.SetRegistry(RegistrySnapshot{Available: 1}, time.Now())
}

func TestMetrics_SetRegistry(t *testing.T) {
	m := New(prometheus.NewRegistry())
	at := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	m.SetRegistry(RegistrySnapshot{
		Available:   4,
		Unavailable: 2,
		ByGroup:     map[string]int{"O-": 3, "AB+": 0},
	}, at)

	if got := testutil.ToFloat64(m.RegistryDonors.WithLabelValues("available")); got != 4 {
		t.Errorf("available = %v, want 4", got)
	}
	if got := testutil.ToFloat64(m.DonorsByGroup.WithLabelValues("O-")); got != 3 {
		t.Errorf("O- = %v, want 3", got)
	}
	if got := testutil.ToFloat64(m.RegistryUpdated); got != float64(at.Unix()) {
		t.Errorf("updated = %v, want %d", got, at.Unix())
	}

	// A later refresh overwrites rather than accumulates.
	m.SetRegistry(RegistrySnapshot{Available: 1}, at)
	if got := testutil.ToFloat64(m.RegistryDonors.WithLabelValues("available")); got != 1 {
		t.Errorf("available after refresh = %v, want 1", got)
	}
}

func TestMetrics_Handler(t *testing.T) {
	m := New(prometheus.NewRegistry())
	m.Exported(7)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "donorhub_exported_rows_total 7") {
		t.Errorf("exposition missing exported rows:\n%s", rec.Body.String())
	}
}
