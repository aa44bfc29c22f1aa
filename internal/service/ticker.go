package service

import (
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/edflow/edflow/internal/domain/patient"
	"github.com/edflow/edflow/internal/registry"
	"github.com/edflow/edflow/pkg/metrics"
)

var errArrivalInFuture = errors.New("arrival timestamp is in the future")

// WaitRefresher is the background tick that recomputes waitTimeMinutes for
// all active patients. Refreshes are idempotent, so a skipped or delayed
// tick cannot corrupt state. One bad record is skipped and logged without
// aborting the sweep.
type WaitRefresher struct {
	patients *registry.Patients
	interval time.Duration
	log      *zap.Logger
	metrics  *metrics.Collector
	now      func() time.Time

	stop chan struct{}
	done chan struct{}
}

func NewWaitRefresher(patients *registry.Patients, interval time.Duration, collector *metrics.Collector, log *zap.Logger) *WaitRefresher {
	if interval <= 0 {
		interval = time.Minute
	}
	return &WaitRefresher{
		patients: patients,
		interval: interval,
		log:      log,
		metrics:  collector,
		now:      time.Now,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

func (w *WaitRefresher) Start() {
	go w.run()
}

// Stop ceases new ticks and waits for an in-flight refresh to finish.
func (w *WaitRefresher) Stop() {
	close(w.stop)
	select {
	case <-w.done:
	case <-time.After(10 * time.Second):
		w.log.Warn("wait refresher shutdown timed out")
	}
}

func (w *WaitRefresher) run() {
	defer close(w.done)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-w.stop:
			return
		case <-ticker.C:
			w.Refresh()
		}
	}
}

// Refresh sweeps every active patient once. Exported so operators can
// force a recomputation between ticks.
func (w *WaitRefresher) Refresh() {
	start := w.now()
	refreshed, skipped := 0, 0

	for _, id := range w.patients.IDs() {
		_, err := w.patients.Update(id, func(p *patient.Patient) error {
			if !p.IsActive() {
				return nil
			}
			now := w.now()
			if p.ArrivalAt.After(now) {
				return errArrivalInFuture
			}
			mins := int(now.Sub(p.ArrivalAt).Minutes())
			// Wait time never decreases while the patient remains active.
			if mins > p.WaitMinutes {
				p.WaitMinutes = mins
			}
			return nil
		})
		switch {
		case err == nil:
			refreshed++
		case errors.Is(err, patient.ErrRecordNotFound):
			// Discharged mid-sweep; nothing to refresh.
		default:
			skipped++
			w.log.Warn("skipping wait-time refresh for inconsistent record",
				zap.String("patient_id", id.String()),
				zap.Error(err),
			)
		}
	}

	if w.metrics != nil {
		w.metrics.WaitRefreshDuration.Observe(time.Since(start).Seconds())
	}
	if skipped > 0 {
		w.log.Warn("wait-time sweep finished with skips",
			zap.Int("refreshed", refreshed),
			zap.Int("skipped", skipped),
		)
	}
}
