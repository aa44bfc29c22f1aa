package v1

import (
	"time"

	"github.com/edflow/edflow/internal/domain/alert"
	"github.com/edflow/edflow/internal/domain/bed"
	"github.com/edflow/edflow/internal/domain/patient"
	"github.com/edflow/edflow/internal/triage"
)

// The façade exchanges serializable value objects only; internal aggregate
// types never leak to collaborators.

type VitalSignsPayload struct {
	HeartRate        int     `json:"heart_rate"`
	BPSystolic       int     `json:"bp_systolic"`
	BPDiastolic      int     `json:"bp_diastolic"`
	TemperatureF     float64 `json:"temperature_f"`
	OxygenSaturation int     `json:"oxygen_saturation"`
	RespiratoryRate  int     `json:"respiratory_rate"`
	GlasgowComaScale int     `json:"glasgow_coma_scale"`
	PainScale        *int    `json:"pain_scale,omitempty"`
}

func (p VitalSignsPayload) toDomain() patient.VitalSigns {
	return patient.VitalSigns{
		HeartRate:        p.HeartRate,
		BPSystolic:       p.BPSystolic,
		BPDiastolic:      p.BPDiastolic,
		TemperatureF:     p.TemperatureF,
		OxygenSaturation: p.OxygenSaturation,
		RespiratoryRate:  p.RespiratoryRate,
		GlasgowComaScale: p.GlasgowComaScale,
		PainScale:        p.PainScale,
	}
}

type PatientView struct {
	ID                  string             `json:"id"`
	ProtocolNumber      string             `json:"protocol_number"`
	MedicalRecordNumber string             `json:"medical_record_number,omitempty"`
	FullName            string             `json:"full_name"`
	Age                 int                `json:"age"`
	Sex                 string             `json:"sex,omitempty"`
	ArrivalMethod       string             `json:"arrival_method"`
	ArrivalAt           time.Time          `json:"arrival_at"`
	AcuityLevel         int                `json:"acuity_level"`
	PriorityRank        int                `json:"priority_rank"`
	ChiefComplaint      string             `json:"chief_complaint"`
	Vitals              *VitalSignsPayload `json:"vitals,omitempty"`
	VitalFlags          []string           `json:"vital_flags,omitempty"`
	Status              string             `json:"status"`
	BedID               *string            `json:"bed_id,omitempty"`
	TraumaLevel         *int               `json:"trauma_activation_level,omitempty"`
	STEMIAlert          bool               `json:"stemi_alert"`
	StrokeAlert         bool               `json:"stroke_alert"`
	IsRepeatVisit       bool               `json:"is_repeat_visit"`
	WaitMinutes         int                `json:"wait_time_minutes"`
	DoorToDoctorMinutes *int               `json:"door_to_doctor_minutes,omitempty"`
	Disposition         *string            `json:"disposition,omitempty"`
	DischargedAt        *time.Time         `json:"discharged_at,omitempty"`
}

func patientView(p *patient.Patient) PatientView {
	view := PatientView{
		ID:                  p.ID.String(),
		ProtocolNumber:      p.ProtocolNumber,
		MedicalRecordNumber: p.MedicalRecordNumber,
		FullName:            p.FullName(),
		Age:                 p.Age,
		Sex:                 p.Sex,
		ArrivalMethod:       string(p.ArrivalMethod),
		ArrivalAt:           p.ArrivalAt,
		AcuityLevel:         p.AcuityLevel,
		PriorityRank:        p.PriorityRank,
		ChiefComplaint:      p.ChiefComplaint,
		Status:              string(p.Status),
		TraumaLevel:         p.TraumaActivationLevel,
		STEMIAlert:          p.STEMIAlert,
		StrokeAlert:         p.StrokeAlert,
		IsRepeatVisit:       p.IsRepeatVisit,
		WaitMinutes:         p.WaitMinutes,
		DoorToDoctorMinutes: p.DoorToDoctorMinutes,
		DischargedAt:        p.DischargedAt,
	}
	if p.Vitals != nil {
		v := *p.Vitals
		view.Vitals = &VitalSignsPayload{
			HeartRate:        v.HeartRate,
			BPSystolic:       v.BPSystolic,
			BPDiastolic:      v.BPDiastolic,
			TemperatureF:     v.TemperatureF,
			OxygenSaturation: v.OxygenSaturation,
			RespiratoryRate:  v.RespiratoryRate,
			GlasgowComaScale: v.GlasgowComaScale,
			PainScale:        v.PainScale,
		}
		eval := triage.EvaluateVitals(v)
		for _, f := range eval.Flags {
			view.VitalFlags = append(view.VitalFlags, string(f))
		}
	}
	if p.BedID != nil {
		id := p.BedID.String()
		view.BedID = &id
	}
	if p.Disposition != nil {
		d := string(*p.Disposition)
		view.Disposition = &d
	}
	return view
}

func patientViews(ps []*patient.Patient) []PatientView {
	out := make([]PatientView, 0, len(ps))
	for _, p := range ps {
		out = append(out, patientView(p))
	}
	return out
}

type BedView struct {
	ID            string     `json:"id"`
	Number        string     `json:"number"`
	Status        string     `json:"status"`
	OccupantID    *string    `json:"occupant_patient_id,omitempty"`
	OccupiedSince *time.Time `json:"occupied_since,omitempty"`
}

func bedView(b *bed.Bed) BedView {
	view := BedView{
		ID:            b.ID.String(),
		Number:        b.Number,
		Status:        string(b.Status),
		OccupiedSince: b.OccupiedSince,
	}
	if b.OccupantID != nil {
		id := b.OccupantID.String()
		view.OccupantID = &id
	}
	return view
}

func bedViews(bs []*bed.Bed) []BedView {
	out := make([]BedView, 0, len(bs))
	for _, b := range bs {
		out = append(out, bedView(b))
	}
	return out
}

type AlertView struct {
	ID             string               `json:"id"`
	PatientID      string               `json:"patient_id"`
	Kind           string               `json:"kind"`
	ActivatedAt    time.Time            `json:"activated_at"`
	Acknowledged   bool                 `json:"acknowledged"`
	AcknowledgedAt *time.Time           `json:"acknowledged_at,omitempty"`
	Targets        []alert.TargetBudget `json:"targets"`
}

func alertView(a *alert.Activation) AlertView {
	return AlertView{
		ID:             a.ID.String(),
		PatientID:      a.PatientID.String(),
		Kind:           a.Label(),
		ActivatedAt:    a.ActivatedAt,
		Acknowledged:   a.Acknowledged,
		AcknowledgedAt: a.AcknowledgedAt,
		Targets:        a.Kind.TargetBudgets(),
	}
}

func alertViews(as []*alert.Activation) []AlertView {
	out := make([]AlertView, 0, len(as))
	for _, a := range as {
		out = append(out, alertView(a))
	}
	return out
}
