package workers

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dalemusser/donorhub/internal/app/system/metrics"
	"github.com/dalemusser/donorhub/internal/domain/models"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/zap"
)

type fakeLister struct {
	donors []models.Donor
	err    error
	calls  chan struct{}
}

func (f *fakeLister) List(context.Context) ([]models.Donor, error) {
	if f.calls != nil {
		select {
		case f.calls <- struct{}{}:
		default:
		}
	}
	return f.donors, f.err
}

func datePtr(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func TestRegistryGauges_Refresh(t *testing.T) {
	m := metrics.New(prometheus.NewRegistry())
	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

	lister := &fakeLister{donors: []models.Donor{
		{Name: "never", BloodGroup: "O-"},
		{Name: "long ago", BloodGroup: "O-", LastDonationDate: datePtr(2024, 1, 1)},
		{Name: "recent", BloodGroup: "A+", LastDonationDate: datePtr(2024, 6, 1)},
		{Name: "graduated", BloodGroup: "B+", SemesterEndDate: datePtr(2023, 12, 31)},
	}}

	w := NewRegistryGauges(lister, m, zap.NewNop(), time.Minute)
	w.now = func() time.Time { return now }

	if err := w.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh: %v", err)
	}

	if got := testutil.ToFloat64(m.RegistryDonors.WithLabelValues("available")); got != 3 {
		t.Errorf("available = %v, want 3", got)
	}
	if got := testutil.ToFloat64(m.RegistryDonors.WithLabelValues("unavailable")); got != 1 {
		t.Errorf("unavailable = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.RegistryDonors.WithLabelValues("graduated")); got != 1 {
		t.Errorf("graduated = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.DonorsByGroup.WithLabelValues("O-")); got != 2 {
		t.Errorf("O- = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.DonorsByGroup.WithLabelValues("AB-")); got != 0 {
		t.Errorf("AB- = %v, want 0", got)
	}
	if got := testutil.ToFloat64(m.RegistryUpdated); got != float64(now.Unix()) {
		t.Errorf("updated = %v, want %d", got, now.Unix())
	}
}

func TestRegistryGauges_RefreshError(t *testing.T) {
	m := metrics.New(prometheus.NewRegistry())
	boom := errors.New("boom")
	w := NewRegistryGauges(&fakeLister{err: boom}, m, zap.NewNop(), time.Minute)

	if err := w.Refresh(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("Refresh err = %v, want boom", err)
	}
	if got := testutil.ToFloat64(m.RegistryUpdated); got != 0 {
		t.Errorf("gauges touched on failure: updated = %v", got)
	}
}

func TestRegistryGauges_StartStop(t *testing.T) {
	lister := &fakeLister{calls: make(chan struct{}, 1)}
	w := NewRegistryGauges(lister, nil, zap.NewNop(), time.Hour)

	w.Start()
	select {
	case <-lister.calls:
	case <-time.After(5 * time.Second):
		t.Fatal("worker did not refresh on start")
	}
	w.Stop()
}
