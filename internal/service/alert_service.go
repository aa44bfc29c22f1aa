package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/edflow/edflow/internal/domain/alert"
	"github.com/edflow/edflow/internal/domain/patient"
	"github.com/edflow/edflow/internal/triage"
)

// AlertService detects protocol trigger conditions on patient records and
// emits each activation to the paging collaborator exactly once.
// Activation is idempotent per (patient, kind): while an unacknowledged
// activation of a kind exists, re-evaluation is a no-op.
type AlertService struct {
	mu        sync.RWMutex
	byPatient map[uuid.UUID][]*alert.Activation
	closed    bool

	notifier alert.Notifier
	pending  chan *alert.Activation
	done     chan struct{}

	log *zap.Logger
	now func() time.Time
}

const defaultAlertBuffer = 1024

func NewAlertService(notifier alert.Notifier, bufferSize int, log *zap.Logger) *AlertService {
	if bufferSize <= 0 {
		bufferSize = defaultAlertBuffer
	}
	svc := &AlertService{
		byPatient: make(map[uuid.UUID][]*alert.Activation),
		notifier:  notifier,
		pending:   make(chan *alert.Activation, bufferSize),
		done:      make(chan struct{}),
		log:       log,
		now:       time.Now,
	}
	go svc.worker()
	return svc
}

// Evaluate scans the record for trigger conditions and creates any missing
// activations. A trauma marker only activates when an explicit activation
// level was chosen. Returns the activations created by this scan.
func (s *AlertService) Evaluate(p *patient.Patient) []*alert.Activation {
	markers := triage.ScanComplaint(p.ChiefComplaint)

	s.mu.Lock()
	var created []*alert.Activation
	if markers.STEMI {
		if a := s.activateLocked(p.ID, alert.KindSTEMI, nil); a != nil {
			created = append(created, a)
		}
	}
	if markers.Stroke {
		if a := s.activateLocked(p.ID, alert.KindStroke, nil); a != nil {
			created = append(created, a)
		}
	}
	if markers.Trauma && p.TraumaActivationLevel != nil {
		if a := s.activateLocked(p.ID, alert.KindTrauma, p.TraumaActivationLevel); a != nil {
			created = append(created, a)
		}
	}
	s.mu.Unlock()

	for _, a := range created {
		s.enqueue(a)
	}
	return created
}

func (s *AlertService) activateLocked(patientID uuid.UUID, kind alert.Kind, traumaLevel *int) *alert.Activation {
	for _, existing := range s.byPatient[patientID] {
		if existing.Kind == kind && !existing.Acknowledged {
			return nil
		}
	}

	a := &alert.Activation{
		ID:          uuid.New(),
		PatientID:   patientID,
		Kind:        kind,
		ActivatedAt: s.now(),
	}
	if traumaLevel != nil {
		lvl := *traumaLevel
		a.TraumaLevel = &lvl
	}
	s.byPatient[patientID] = append(s.byPatient[patientID], a)
	return a.Clone()
}

// Acknowledge marks the newest unacknowledged activation of the kind. A
// later re-trigger of the same condition creates a fresh activation.
func (s *AlertService) Acknowledge(patientID uuid.UUID, kind alert.Kind) (*alert.Activation, error) {
	if !kind.IsValid() {
		return nil, alert.ErrInvalidKind
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	activations := s.byPatient[patientID]
	for i := len(activations) - 1; i >= 0; i-- {
		a := activations[i]
		if a.Kind == kind && !a.Acknowledged {
			ts := s.now()
			a.Acknowledged = true
			a.AcknowledgedAt = &ts
			return a.Clone(), nil
		}
	}
	return nil, alert.ErrAlertNotFound
}

// ForPatient returns every activation recorded for the patient, oldest
// first.
func (s *AlertService) ForPatient(patientID uuid.UUID) []*alert.Activation {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*alert.Activation, 0, len(s.byPatient[patientID]))
	for _, a := range s.byPatient[patientID] {
		out = append(out, a.Clone())
	}
	return out
}

// Unacknowledged returns all open activations across patients, oldest
// first, for the paging dashboard.
func (s *AlertService) Unacknowledged() []*alert.Activation {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*alert.Activation
	for _, activations := range s.byPatient {
		for _, a := range activations {
			if !a.Acknowledged {
				out = append(out, a.Clone())
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ActivatedAt.Before(out[j].ActivatedAt) })
	return out
}

// enqueue holds the read lock across the send so Shutdown cannot close
// the buffer mid-send.
func (s *AlertService) enqueue(a *alert.Activation) {
	if s.notifier == nil {
		return
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		s.log.Warn("alert service shutting down, dropping activation",
			zap.String("patient_id", a.PatientID.String()),
			zap.String("kind", a.Label()),
		)
		return
	}

	select {
	case s.pending <- a:
	default:
		s.log.Warn("alert notify buffer full, dropping activation",
			zap.String("patient_id", a.PatientID.String()),
			zap.String("kind", a.Label()),
		)
	}
}

// Shutdown stops accepting new activations and drains the notify buffer.
// Safe to call more than once.
func (s *AlertService) Shutdown() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.mu.Unlock()

	close(s.pending)
	select {
	case <-s.done:
	case <-time.After(10 * time.Second):
		s.log.Warn("alert service shutdown timed out; some pages may be lost")
	}
}

func (s *AlertService) worker() {
	defer close(s.done)
	for a := range s.pending {
		if s.notifier == nil {
			continue
		}
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := s.notifier.Notify(ctx, a); err != nil {
			s.log.Error("failed to deliver alert activation",
				zap.String("patient_id", a.PatientID.String()),
				zap.String("kind", a.Label()),
				zap.Error(err),
			)
		}
		cancel()
	}
}
