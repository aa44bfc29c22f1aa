package patient

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type ArrivalMethod string

const (
	ArrivalWalkIn           ArrivalMethod = "walk_in"
	ArrivalEMS              ArrivalMethod = "ems"
	ArrivalPrivateAmbulance ArrivalMethod = "private_ambulance"
	ArrivalPolice           ArrivalMethod = "police"
	ArrivalTransfer         ArrivalMethod = "transfer"
)

func (m ArrivalMethod) IsValid() bool {
	switch m {
	case ArrivalWalkIn, ArrivalEMS, ArrivalPrivateAmbulance, ArrivalPolice, ArrivalTransfer:
		return true
	}
	return false
}

// Status is the patient's position in the care pathway.
//
// Legal transitions:
//
//	triage → roomed → provider_eval → diagnostics → treatment → observation → {admitted | discharged}
//
// plus a direct discharge from any non-terminal state. Left before being
// seen, AMA, and deceased are recorded as dispositions, not states.
type Status string

const (
	StatusTriage       Status = "triage"
	StatusRoomed       Status = "roomed"
	StatusProviderEval Status = "provider_eval"
	StatusDiagnostics  Status = "diagnostics"
	StatusTreatment    Status = "treatment"
	StatusObservation  Status = "observation"
	StatusAdmitted     Status = "admitted"
	StatusDischarged   Status = "discharged"
)

var transitions = map[Status][]Status{
	StatusTriage:       {StatusRoomed},
	StatusRoomed:       {StatusProviderEval},
	StatusProviderEval: {StatusDiagnostics},
	StatusDiagnostics:  {StatusTreatment},
	StatusTreatment:    {StatusObservation},
	StatusObservation:  {StatusAdmitted, StatusDischarged},
	StatusAdmitted:     {},
	StatusDischarged:   {},
}

func (s Status) IsValid() bool {
	_, ok := transitions[s]
	return ok
}

func (s Status) IsTerminal() bool {
	return s == StatusAdmitted || s == StatusDischarged
}

func (s Status) CanTransitionTo(next Status) bool {
	if !next.IsValid() {
		return false
	}
	// Any non-terminal state may discharge directly.
	if next == StatusDischarged {
		return !s.IsTerminal()
	}
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Disposition records why a patient left the department.
type Disposition string

const (
	DispositionRoutine        Disposition = "routine"
	DispositionAMA            Disposition = "ama"
	DispositionDeceased       Disposition = "deceased"
	DispositionLeftBeforeSeen Disposition = "left_before_seen"
	DispositionTransfer       Disposition = "transfer"
	DispositionAdmitted       Disposition = "admitted"
)

func (d Disposition) IsValid() bool {
	switch d {
	case DispositionRoutine, DispositionAMA, DispositionDeceased,
		DispositionLeftBeforeSeen, DispositionTransfer, DispositionAdmitted:
		return true
	}
	return false
}

type Patient struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`

	ProtocolNumber      string `gorm:"column:protocol_number;type:varchar(20);uniqueIndex"`
	MedicalRecordNumber string `gorm:"column:medical_record_number;type:varchar(20);index"`

	FirstName string `gorm:"column:first_name;type:varchar(100);not null"`
	LastName  string `gorm:"column:last_name;type:varchar(100);not null"`
	Age       int    `gorm:"column:age"`
	Sex       string `gorm:"column:sex;type:varchar(20)"`

	ArrivalMethod ArrivalMethod `gorm:"column:arrival_method;type:varchar(30);not null"`
	ArrivalAt     time.Time     `gorm:"column:arrival_at;not null;index"`

	AcuityLevel    int    `gorm:"column:acuity_level;not null;index"`
	PriorityRank   int    `gorm:"column:priority_rank;not null"`
	ChiefComplaint string `gorm:"column:chief_complaint;type:text"`

	Vitals *VitalSigns `gorm:"column:vitals;serializer:json"`

	Status Status     `gorm:"column:status;type:varchar(30);not null;index"`
	BedID  *uuid.UUID `gorm:"column:bed_id;type:uuid;index"`

	TraumaActivationLevel *int `gorm:"column:trauma_activation_level"`
	STEMIAlert            bool `gorm:"column:stemi_alert"`
	StrokeAlert           bool `gorm:"column:stroke_alert"`
	IsRepeatVisit         bool `gorm:"column:is_repeat_visit"`

	// WaitMinutes is derived and refreshed by the background tick.
	WaitMinutes int `gorm:"column:wait_minutes"`
	// DoorToDoctorMinutes is stamped once at first provider evaluation
	// and never recomputed.
	DoorToDoctorMinutes *int `gorm:"column:door_to_doctor_minutes"`

	Disposition  *Disposition `gorm:"column:disposition;type:varchar(30)"`
	DischargedAt *time.Time   `gorm:"column:discharged_at"`
}

func (Patient) TableName() string {
	return "ed.patients"
}

func (p *Patient) FullName() string {
	return strings.TrimSpace(p.FirstName + " " + p.LastName)
}

// IsActive reports whether the patient still occupies a slot in the
// department's working set (non-terminal state).
func (p *Patient) IsActive() bool {
	return !p.Status.IsTerminal()
}

// TransitionTo moves the patient along the care pathway. It stamps the
// door-to-doctor interval on first provider evaluation and the discharge
// time on discharge. The record is unchanged on error.
func (p *Patient) TransitionTo(next Status, now time.Time) error {
	if !p.Status.CanTransitionTo(next) {
		return ErrIllegalStateTransition
	}

	p.Status = next

	if next == StatusProviderEval && p.DoorToDoctorMinutes == nil {
		mins := int(now.Sub(p.ArrivalAt).Minutes())
		if mins < 0 {
			mins = 0
		}
		p.DoorToDoctorMinutes = &mins
	}
	if next == StatusDischarged {
		p.DischargedAt = &now
	}
	return nil
}

// Clone returns a deep copy so readers never observe a record mid-mutation.
func (p *Patient) Clone() *Patient {
	cp := *p
	if p.Vitals != nil {
		cp.Vitals = p.Vitals.clone()
	}
	if p.BedID != nil {
		id := *p.BedID
		cp.BedID = &id
	}
	if p.TraumaActivationLevel != nil {
		lvl := *p.TraumaActivationLevel
		cp.TraumaActivationLevel = &lvl
	}
	if p.DoorToDoctorMinutes != nil {
		mins := *p.DoorToDoctorMinutes
		cp.DoorToDoctorMinutes = &mins
	}
	if p.Disposition != nil {
		d := *p.Disposition
		cp.Disposition = &d
	}
	if p.DischargedAt != nil {
		ts := *p.DischargedAt
		cp.DischargedAt = &ts
	}
	return &cp
}

type RegisterCommand struct {
	ProtocolNumber      string
	MedicalRecordNumber string
	FirstName           string
	LastName            string
	Age                 int
	Sex                 string
	ArrivalMethod       ArrivalMethod
	ChiefComplaint      string
	IsRepeatVisit       bool
}
