package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics tracks donor registrations, searches and the batch paths.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	DonorsCreated  *prometheus.CounterVec
	DonorsDeleted  prometheus.Counter
	Searches       *prometheus.CounterVec
	SearchDuration prometheus.Histogram
	ImportRows     *prometheus.CounterVec
	ExportedRows   prometheus.Counter
	LoginAttempts  *prometheus.CounterVec

	// Registry gauges, refreshed by the registry worker.
	RegistryDonors  *prometheus.GaugeVec
	DonorsByGroup   *prometheus.GaugeVec
	RegistryUpdated prometheus.Gauge

	gatherer prometheus.Gatherer
}

// New registers the donorhub metrics with reg. Pass prometheus.NewRegistry()
// in tests; production uses the default registry.
func New(reg *prometheus.Registry) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		DonorsCreated: f.NewCounterVec(prometheus.CounterOpts{
			Name: "donorhub_donors_created_total",
			Help: "Donors registered, by entry path (single, batch, import)",
		}, []string{"source"}),
		DonorsDeleted: f.NewCounter(prometheus.CounterOpts{
			Name: "donorhub_donors_deleted_total",
			Help: "Donors removed",
		}),
		Searches: f.NewCounterVec(prometheus.CounterOpts{
			Name: "donorhub_searches_total",
			Help: "Donor searches, labelled by whether a blood group was requested",
		}, []string{"blood_group"}),
		SearchDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "donorhub_search_duration_seconds",
			Help:    "Time to load, filter and rank the donor snapshot",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
		ImportRows: f.NewCounterVec(prometheus.CounterOpts{
			Name: "donorhub_import_rows_total",
			Help: "CSV import rows by outcome (accepted, rejected)",
		}, []string{"outcome"}),
		ExportedRows: f.NewCounter(prometheus.CounterOpts{
			Name: "donorhub_exported_rows_total",
			Help: "Donor rows written to CSV exports",
		}),
		LoginAttempts: f.NewCounterVec(prometheus.CounterOpts{
			Name: "donorhub_login_attempts_total",
			Help: "Sign-in attempts by outcome (success, invalid, throttled)",
		}, []string{"outcome"}),
		RegistryDonors: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: "donorhub_registry_donors",
			Help: "Donors on file by availability state (available, unavailable, graduated)",
		}, []string{"state"}),
		DonorsByGroup: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: "donorhub_registry_donors_by_group",
			Help: "Donors on file per blood group",
		}, []string{"group"}),
		RegistryUpdated: f.NewGauge(prometheus.GaugeOpts{
			Name: "donorhub_registry_updated_timestamp_seconds",
			Help: "Unix time of the last registry gauge refresh",
		}),
		gatherer: reg,
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

// DonorCreated records n donors registered through source.
func (m *Metrics) DonorCreated(source string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.DonorsCreated.WithLabelValues(source).Add(float64(n))
}

// DonorDeleted records one removal.
func (m *Metrics) DonorDeleted() {
	if m == nil {
		return
	}
	m.DonorsDeleted.Inc()
}

// ObserveSearch records one search. Call with time.Now() taken before the
// snapshot was loaded.
func (m *Metrics) ObserveSearch(group string, start time.Time) {
	if m == nil {
		return
	}
	if group == "" {
		group = "any"
	}
	m.Searches.WithLabelValues(group).Inc()
	m.SearchDuration.Observe(time.Since(start).Seconds())
}

// ImportResult records the row outcome of one CSV upload.
func (m *Metrics) ImportResult(accepted, rejected int) {
	if m == nil {
		return
	}
	m.ImportRows.WithLabelValues("accepted").Add(float64(accepted))
	m.ImportRows.WithLabelValues("rejected").Add(float64(rejected))
}

// Exported records n rows written to a CSV export.
func (m *Metrics) Exported(n int) {
	if m == nil {
		return
	}
	m.ExportedRows.Add(float64(n))
}

// Login records a sign-in attempt outcome.
func (m *Metrics) Login(outcome string) {
	if m == nil {
		return
	}
	m.LoginAttempts.WithLabelValues(outcome).Inc()
}

// RegistrySnapshot is the subset of a donor summary the registry gauges show.
type RegistrySnapshot struct {
	Available   int
	Unavailable int
	Graduated   int
	ByGroup     map[string]int
}

// SetRegistry replaces the registry gauges with snap, taken at at.
func (m *Metrics) SetRegistry(snap RegistrySnapshot, at time.Time) {
	if m == nil {
		return
	}
	m.RegistryDonors.WithLabelValues("available").Set(float64(snap.Available))
	m.RegistryDonors.WithLabelValues("unavailable").Set(float64(snap.Unavailable))
	m.RegistryDonors.WithLabelValues("graduated").Set(float64(snap.Graduated))
	for group, n := range snap.ByGroup {
		m.DonorsByGroup.WithLabelValues(group).Set(float64(n))
	}
	m.RegistryUpdated.Set(float64(at.Unix()))
}
