package service

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/edflow/edflow/internal/domain/alert"
	"github.com/edflow/edflow/internal/domain/bed"
	"github.com/edflow/edflow/internal/domain/patient"
	"github.com/edflow/edflow/internal/registry"
	"github.com/edflow/edflow/internal/triage"
	"github.com/edflow/edflow/pkg/metrics"
)

// FlowService is the façade collaborators call. Every operation validates
// all preconditions before mutating anything; on failure the registries
// are left exactly as they were and the specific error is returned.
// Operations that touch both aggregates lock the patient before the bed.
type FlowService struct {
	patients *registry.Patients
	beds     *registry.Beds
	alerts   *AlertService
	recorder Recorder
	metrics  *metrics.Collector
	log      *zap.Logger

	defaultAcuity int
	now           func() time.Time
}

func NewFlowService(
	patients *registry.Patients,
	beds *registry.Beds,
	alerts *AlertService,
	recorder Recorder,
	collector *metrics.Collector,
	defaultAcuity int,
	log *zap.Logger,
) *FlowService {
	if defaultAcuity < 1 || defaultAcuity > 5 {
		defaultAcuity = 3
	}
	return &FlowService{
		patients:      patients,
		beds:          beds,
		alerts:        alerts,
		recorder:      recorder,
		metrics:       collector,
		log:           log,
		defaultAcuity: defaultAcuity,
		now:           time.Now,
	}
}

// RegisterPatient creates the visit record: arrival stamped now, status
// triage, default acuity pending formal triage. The chief complaint is
// scanned for protocol markers immediately.
func (s *FlowService) RegisterPatient(ctx context.Context, cmd patient.RegisterCommand) (*patient.Patient, error) {
	if err := validateRegisterCommand(&cmd); err != nil {
		return nil, err
	}

	now := s.now()
	markers := triage.ScanComplaint(cmd.ChiefComplaint)

	p := &patient.Patient{
		ID:                  uuid.New(),
		ProtocolNumber:      strings.TrimSpace(cmd.ProtocolNumber),
		MedicalRecordNumber: strings.TrimSpace(cmd.MedicalRecordNumber),
		FirstName:           strings.TrimSpace(cmd.FirstName),
		LastName:            strings.TrimSpace(cmd.LastName),
		Age:                 cmd.Age,
		Sex:                 cmd.Sex,
		ArrivalMethod:       cmd.ArrivalMethod,
		ArrivalAt:           now,
		AcuityLevel:         s.defaultAcuity,
		PriorityRank:        triage.DefaultRank(s.defaultAcuity),
		ChiefComplaint:      strings.TrimSpace(cmd.ChiefComplaint),
		Status:              patient.StatusTriage,
		STEMIAlert:          markers.STEMI,
		StrokeAlert:         markers.Stroke,
		IsRepeatVisit:       cmd.IsRepeatVisit,
	}

	if err := s.patients.Insert(p); err != nil {
		return nil, err
	}

	s.dispatchAlerts(ctx, p)
	s.persistPatient(ctx, p)

	if s.metrics != nil {
		s.metrics.RegistrationsTotal.Inc()
		s.metrics.ActivePatients.Set(float64(len(s.patients.OrderedActive())))
	}
	s.log.Info("patient registered",
		zap.String("patient_id", p.ID.String()),
		zap.String("protocol", p.ProtocolNumber),
		zap.String("arrival_method", string(p.ArrivalMethod)),
	)

	return p.Clone(), nil
}

// AssignTriage records the clinician's acuity judgment. The rank is
// validated against the level's band and rejected when out of band; the
// engine never invents the rank from vitals.
func (s *FlowService) AssignTriage(ctx context.Context, id uuid.UUID, level, rank int, traumaLevel *int) (*patient.Patient, error) {
	if err := triage.ValidateAssignment(level, rank); err != nil {
		return nil, err
	}
	if traumaLevel != nil && (*traumaLevel < 1 || *traumaLevel > 3) {
		return nil, alert.ErrInvalidTraumaTier
	}

	updated, err := s.patients.Update(id, func(p *patient.Patient) error {
		if !p.IsActive() {
			return patient.ErrIllegalStateTransition
		}
		p.AcuityLevel = level
		p.PriorityRank = rank
		if traumaLevel != nil {
			lvl := *traumaLevel
			p.TraumaActivationLevel = &lvl
		}
		markers := triage.ScanComplaint(p.ChiefComplaint)
		p.STEMIAlert = markers.STEMI
		p.StrokeAlert = markers.Stroke
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.dispatchAlerts(ctx, updated)
	s.persistPatient(ctx, updated)

	if s.metrics != nil {
		s.metrics.TriageAssignments.WithLabelValues(strconv.Itoa(level)).Inc()
	}
	s.log.Info("triage assigned",
		zap.String("patient_id", id.String()),
		zap.Int("acuity_level", level),
		zap.Int("priority_rank", rank),
	)

	return updated, nil
}

// UpdateVitals replaces the stored snapshot atomically; readers see the
// old snapshot or the new one, never a mix.
func (s *FlowService) UpdateVitals(ctx context.Context, id uuid.UUID, v patient.VitalSigns) (*patient.Patient, error) {
	if fields := v.Validate(); len(fields) > 0 {
		return nil, &ValidationError{Fields: fields}
	}

	updated, err := s.patients.Update(id, func(p *patient.Patient) error {
		if !p.IsActive() {
			return patient.ErrIllegalStateTransition
		}
		snapshot := v
		p.Vitals = &snapshot
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.persistPatient(ctx, updated)
	return updated, nil
}

// UpdateChiefComplaint amends the complaint and re-runs the protocol
// marker scan.
func (s *FlowService) UpdateChiefComplaint(ctx context.Context, id uuid.UUID, complaint string) (*patient.Patient, error) {
	complaint = strings.TrimSpace(complaint)
	if complaint == "" {
		return nil, &ValidationError{Fields: []string{"chief_complaint is required"}}
	}

	updated, err := s.patients.Update(id, func(p *patient.Patient) error {
		if !p.IsActive() {
			return patient.ErrIllegalStateTransition
		}
		p.ChiefComplaint = complaint
		markers := triage.ScanComplaint(complaint)
		p.STEMIAlert = markers.STEMI
		p.StrokeAlert = markers.Stroke
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.dispatchAlerts(ctx, updated)
	s.persistPatient(ctx, updated)
	return updated, nil
}

// AssignBed rooms the patient in an available bed. One bed per patient,
// one patient per bed.
func (s *FlowService) AssignBed(ctx context.Context, patientID, bedID uuid.UUID) (*patient.Patient, error) {
	var occupiedBed *bed.Bed

	updated, err := s.patients.Update(patientID, func(p *patient.Patient) error {
		if !p.IsActive() {
			return patient.ErrIllegalStateTransition
		}
		if p.BedID != nil {
			return bed.ErrPatientBedded
		}

		now := s.now()
		b, err := s.beds.Update(bedID, func(b *bed.Bed) error {
			return b.Occupy(patientID, now)
		})
		if err != nil {
			return err
		}
		occupiedBed = b

		id := bedID
		p.BedID = &id
		if p.Status == patient.StatusTriage {
			return p.TransitionTo(patient.StatusRoomed, now)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.persistPatient(ctx, updated)
	s.persistBed(ctx, occupiedBed)
	s.refreshBedGauge()

	s.log.Info("bed assigned",
		zap.String("patient_id", patientID.String()),
		zap.String("bed", occupiedBed.Number),
	)
	return updated, nil
}

// ReleaseBed frees an occupied bed into housekeeping turnaround and clears
// the occupant's link.
func (s *FlowService) ReleaseBed(ctx context.Context, bedID uuid.UUID) (*bed.Bed, error) {
	current, err := s.beds.Get(bedID)
	if err != nil {
		return nil, err
	}
	if current.Status != bed.StatusOccupied || current.OccupantID == nil {
		return nil, bed.ErrBedNotOccupied
	}

	occupantID := *current.OccupantID
	var released *bed.Bed

	updatedPatient, err := s.patients.Update(occupantID, func(p *patient.Patient) error {
		b, err := s.beds.Update(bedID, func(b *bed.Bed) error {
			return b.Release()
		})
		if err != nil {
			return err
		}
		released = b
		p.BedID = nil
		return nil
	})
	if err != nil {
		// The occupant may have already left the working set; release the
		// bed on its own.
		if !errors.Is(err, patient.ErrRecordNotFound) {
			return nil, err
		}
		released, err = s.beds.Update(bedID, func(b *bed.Bed) error {
			return b.Release()
		})
		if err != nil {
			return nil, err
		}
	} else {
		s.persistPatient(ctx, updatedPatient)
	}

	s.persistBed(ctx, released)
	s.refreshBedGauge()
	return released, nil
}

// MarkBedAvailable completes cleaning turnaround or unblocks a bed.
func (s *FlowService) MarkBedAvailable(ctx context.Context, bedID uuid.UUID) (*bed.Bed, error) {
	updated, err := s.beds.Update(bedID, func(b *bed.Bed) error {
		return b.MarkAvailable()
	})
	if err != nil {
		return nil, err
	}
	s.persistBed(ctx, updated)
	s.refreshBedGauge()
	return updated, nil
}

// TransitionStatus advances the patient along the care pathway. Entering
// a terminal state releases any held bed as part of the same unit of work.
func (s *FlowService) TransitionStatus(ctx context.Context, id uuid.UUID, next patient.Status) (*patient.Patient, error) {
	if !next.IsValid() {
		return nil, patient.ErrIllegalStateTransition
	}
	if next == patient.StatusDischarged {
		return s.Discharge(ctx, id, patient.DispositionRoutine)
	}

	var freedBed *bed.Bed
	updated, err := s.patients.Update(id, func(p *patient.Patient) error {
		if !p.Status.CanTransitionTo(next) {
			return patient.ErrIllegalStateTransition
		}
		if next.IsTerminal() {
			b, err := s.releaseHeldBed(p)
			if err != nil {
				return err
			}
			freedBed = b
		}
		if next == patient.StatusAdmitted {
			d := patient.DispositionAdmitted
			p.Disposition = &d
		}
		return p.TransitionTo(next, s.now())
	})
	if err != nil {
		return nil, err
	}

	s.persistPatient(ctx, updated)
	s.persistBed(ctx, freedBed)
	s.refreshBedGauge()
	if s.metrics != nil {
		s.metrics.ActivePatients.Set(float64(len(s.patients.OrderedActive())))
	}

	s.log.Info("status transition",
		zap.String("patient_id", id.String()),
		zap.String("status", string(next)),
	)
	return updated, nil
}

// TransferOrAdmit ends the ED episode: admission keeps the terminal record
// in the registry for the admitting service, transfer discharges with a
// transfer disposition. Either way any held bed is released.
func (s *FlowService) TransferOrAdmit(ctx context.Context, id uuid.UUID, admit bool) (*patient.Patient, error) {
	if admit {
		return s.TransitionStatus(ctx, id, patient.StatusAdmitted)
	}
	return s.Discharge(ctx, id, patient.DispositionTransfer)
}

// Discharge is legal from any non-terminal state and removes the record
// from the active set after releasing any held bed.
func (s *FlowService) Discharge(ctx context.Context, id uuid.UUID, disposition patient.Disposition) (*patient.Patient, error) {
	if !disposition.IsValid() {
		return nil, patient.ErrInvalidDisposition
	}
	return s.discharge(ctx, id, disposition, false)
}

// FastTrackDischarge is the expedited path for low-acuity patients
// (acuity level 4 or 5): discharge plus bed release as one unit.
func (s *FlowService) FastTrackDischarge(ctx context.Context, id uuid.UUID) (*patient.Patient, error) {
	return s.discharge(ctx, id, patient.DispositionRoutine, true)
}

func (s *FlowService) discharge(ctx context.Context, id uuid.UUID, disposition patient.Disposition, fastTrack bool) (*patient.Patient, error) {
	var freedBed *bed.Bed

	updated, err := s.patients.Update(id, func(p *patient.Patient) error {
		if fastTrack && p.AcuityLevel < 4 {
			return ErrIneligibleForFastTrack
		}
		if !p.Status.CanTransitionTo(patient.StatusDischarged) {
			return patient.ErrIllegalStateTransition
		}
		b, err := s.releaseHeldBed(p)
		if err != nil {
			return err
		}
		freedBed = b
		d := disposition
		p.Disposition = &d
		return p.TransitionTo(patient.StatusDischarged, s.now())
	})
	if err != nil {
		return nil, err
	}

	if _, err := s.patients.Remove(id); err != nil {
		return nil, fmt.Errorf("removing discharged patient: %w", err)
	}

	s.persistPatient(ctx, updated)
	s.persistBed(ctx, freedBed)
	s.refreshBedGauge()
	if s.metrics != nil {
		s.metrics.Discharges.WithLabelValues(string(disposition)).Inc()
		s.metrics.ActivePatients.Set(float64(len(s.patients.OrderedActive())))
	}

	s.log.Info("patient discharged",
		zap.String("patient_id", id.String()),
		zap.String("disposition", string(disposition)),
		zap.Bool("fast_track", fastTrack),
	)
	return updated, nil
}

// releaseHeldBed frees the patient's bed, if any, while the patient lock
// is held. Callers must only invoke it inside a patients.Update callback.
func (s *FlowService) releaseHeldBed(p *patient.Patient) (*bed.Bed, error) {
	if p.BedID == nil {
		return nil, nil
	}
	b, err := s.beds.Update(*p.BedID, func(b *bed.Bed) error {
		return b.Release()
	})
	if err != nil {
		return nil, err
	}
	p.BedID = nil
	return b, nil
}

// GetPatient returns a defensive copy of the record.
func (s *FlowService) GetPatient(id uuid.UUID) (*patient.Patient, error) {
	return s.patients.Get(id)
}

// Queue is the authoritative priority ordering, restartable per query.
func (s *FlowService) Queue() iter.Seq[*patient.Patient] {
	return s.patients.Queue()
}

// QueueSnapshot materializes the queue for display collaborators.
func (s *FlowService) QueueSnapshot() []*patient.Patient {
	return s.patients.OrderedActive()
}

// BedBoard is the bed dashboard snapshot, ordered by bed number.
func (s *FlowService) BedBoard() []*bed.Bed {
	return s.beds.Snapshot()
}

// ActiveAlerts lists open activations across all patients.
func (s *FlowService) ActiveAlerts() []*alert.Activation {
	return s.alerts.Unacknowledged()
}

// PatientAlerts lists every activation recorded for one patient.
func (s *FlowService) PatientAlerts(id uuid.UUID) []*alert.Activation {
	return s.alerts.ForPatient(id)
}

// AcknowledgeAlert closes the open activation of the kind for the patient.
func (s *FlowService) AcknowledgeAlert(ctx context.Context, patientID uuid.UUID, kind alert.Kind) (*alert.Activation, error) {
	a, err := s.alerts.Acknowledge(patientID, kind)
	if err != nil {
		return nil, err
	}
	s.persistAlert(ctx, a)
	return a, nil
}

// Census computes on-demand statistics over a point-in-time snapshot.
func (s *FlowService) Census() CensusStats {
	return ComputeStats(s.patients.OrderedActive(), s.beds.Snapshot(), s.alerts.Unacknowledged())
}

func (s *FlowService) dispatchAlerts(ctx context.Context, p *patient.Patient) {
	created := s.alerts.Evaluate(p)
	for _, a := range created {
		if s.metrics != nil {
			s.metrics.AlertActivations.WithLabelValues(string(a.Kind)).Inc()
		}
		s.log.Info("alert activated",
			zap.String("patient_id", p.ID.String()),
			zap.String("kind", a.Label()),
		)
		s.persistAlert(ctx, a)
	}
}

// Durability is the collaborator's concern; a failed write never fails the
// flow operation, it is logged and the in-memory state stays authoritative.
// Discharged records are upserted with their final state and kept as visit
// history after removal from the working set.
func (s *FlowService) persistPatient(ctx context.Context, p *patient.Patient) {
	if s.recorder == nil || p == nil {
		return
	}
	if err := s.recorder.RecordPatient(ctx, p); err != nil {
		s.log.Error("failed to record patient snapshot", zap.Error(err))
	}
}

func (s *FlowService) persistBed(ctx context.Context, b *bed.Bed) {
	if s.recorder == nil || b == nil {
		return
	}
	if err := s.recorder.RecordBed(ctx, b); err != nil {
		s.log.Error("failed to record bed snapshot", zap.Error(err))
	}
}

func (s *FlowService) persistAlert(ctx context.Context, a *alert.Activation) {
	if s.recorder == nil || a == nil {
		return
	}
	if err := s.recorder.RecordAlert(ctx, a); err != nil {
		s.log.Error("failed to record alert activation", zap.Error(err))
	}
}

func (s *FlowService) refreshBedGauge() {
	if s.metrics == nil {
		return
	}
	occupied := 0
	for _, b := range s.beds.Snapshot() {
		if b.Status == bed.StatusOccupied {
			occupied++
		}
	}
	s.metrics.BedsOccupied.Set(float64(occupied))
}

func validateRegisterCommand(cmd *patient.RegisterCommand) error {
	var errs []string

	if strings.TrimSpace(cmd.ProtocolNumber) == "" {
		errs = append(errs, "protocol_number is required")
	}
	if strings.TrimSpace(cmd.FirstName) == "" {
		errs = append(errs, "first_name is required")
	}
	if strings.TrimSpace(cmd.LastName) == "" {
		errs = append(errs, "last_name is required")
	}
	if cmd.Age < 0 || cmd.Age > 130 {
		errs = append(errs, "age must be between 0 and 130")
	}
	if !cmd.ArrivalMethod.IsValid() {
		errs = append(errs, "arrival_method is invalid")
	}
	if strings.TrimSpace(cmd.ChiefComplaint) == "" {
		errs = append(errs, "chief_complaint is required")
	}

	if len(errs) > 0 {
		return &ValidationError{Fields: errs}
	}
	return nil
}
