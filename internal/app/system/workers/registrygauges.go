// internal/app/system/workers/registrygauges.go
package workers

import (
	"context"
	"sync"
	"time"

	"github.com/dalemusser/donorhub/internal/app/system/donorquery"
	"github.com/dalemusser/donorhub/internal/app/system/metrics"
	"github.com/dalemusser/donorhub/internal/domain/models"
	"go.uber.org/zap"
)

// DonorLister loads the full donor snapshot. *donorstore.Store satisfies it.
type DonorLister interface {
	List(ctx context.Context) ([]models.Donor, error)
}

// RegistryGauges is a background worker that keeps the registry gauges
// (available donors, donors per blood group) current. Availability changes
// with the calendar, not only on writes, so the gauges are recomputed on a
// timer.
type RegistryGauges struct {
	donors   DonorLister
	metrics  *metrics.Metrics
	log      *zap.Logger
	interval time.Duration
	now      func() time.Time
	stopCh   chan struct{}
	wg       sync.WaitGroup
}

// NewRegistryGauges creates the worker. interval is how often the snapshot is
// reloaded (e.g. 1 minute).
func NewRegistryGauges(donors DonorLister, m *metrics.Metrics, logger *zap.Logger, interval time.Duration) *RegistryGauges {
	return &RegistryGauges{
		donors:   donors,
		metrics:  m,
		log:      logger,
		interval: interval,
		now:      time.Now,
		stopCh:   make(chan struct{}),
	}
}

// Start refreshes once, then keeps refreshing every interval until Stop.
func (w *RegistryGauges) Start() {
	w.wg.Add(1)
	go w.run()
	w.log.Info("registry gauge worker started", zap.Duration("interval", w.interval))
}

// Stop signals the worker to stop and waits for it to finish.
func (w *RegistryGauges) Stop() {
	close(w.stopCh)
	w.wg.Wait()
	w.log.Info("registry gauge worker stopped")
}

func (w *RegistryGauges) run() {
	defer w.wg.Done()

	w.refreshWithTimeout()

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-w.stopCh:
			return
		case <-ticker.C:
			w.refreshWithTimeout()
		}
	}
}

func (w *RegistryGauges) refreshWithTimeout() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := w.Refresh(ctx); err != nil {
		w.log.Error("failed to refresh registry gauges", zap.Error(err))
	}
}

// Refresh loads the donor snapshot and publishes it to the gauges.
func (w *RegistryGauges) Refresh(ctx context.Context) error {
	donors, err := w.donors.List(ctx)
	if err != nil {
		return err
	}

	now := w.now()
	sum := donorquery.Summarize(donors, now)
	snap := metrics.RegistrySnapshot{
		Available:   sum.Available,
		Unavailable: sum.Unavailable,
		Graduated:   sum.Graduated,
		ByGroup:     make(map[string]int, len(sum.ByGroup)),
	}
	for _, g := range sum.ByGroup {
		snap.ByGroup[g.Group] = g.Count
	}
	w.metrics.SetRegistry(snap, now)
	return nil
}
