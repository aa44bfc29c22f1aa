package alert

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type Kind string

const (
	KindSTEMI  Kind = "stemi"
	KindStroke Kind = "stroke"
	KindTrauma Kind = "trauma"
)

func (k Kind) IsValid() bool {
	switch k {
	case KindSTEMI, KindStroke, KindTrauma:
		return true
	}
	return false
}

// TargetBudget is a protocol time target surfaced for display and
// reporting. The engine never enforces these as deadlines.
type TargetBudget struct {
	Name    string `json:"name"`
	Minutes int    `json:"minutes"`
}

func (k Kind) TargetBudgets() []TargetBudget {
	switch k {
	case KindSTEMI:
		return []TargetBudget{{Name: "door_to_balloon", Minutes: 90}}
	case KindStroke:
		return []TargetBudget{
			{Name: "door_to_ct", Minutes: 25},
			{Name: "door_to_needle", Minutes: 60},
		}
	case KindTrauma:
		return []TargetBudget{{Name: "team_response", Minutes: 15}}
	}
	return nil
}

// Activation is created at most once per (patient, kind) while the prior
// activation of that kind remains unacknowledged.
type Activation struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	CreatedAt time.Time `gorm:"autoCreateTime"`

	PatientID   uuid.UUID `gorm:"column:patient_id;type:uuid;not null;index"`
	Kind        Kind      `gorm:"column:kind;type:varchar(20);not null;index"`
	TraumaLevel *int      `gorm:"column:trauma_level"`

	ActivatedAt    time.Time  `gorm:"column:activated_at;not null"`
	Acknowledged   bool       `gorm:"column:acknowledged;index"`
	AcknowledgedAt *time.Time `gorm:"column:acknowledged_at"`
}

func (Activation) TableName() string {
	return "ed.alert_activations"
}

// Label renders the tiered trauma form ("trauma-level1") for display and
// paging payloads.
func (a *Activation) Label() string {
	if a.Kind == KindTrauma && a.TraumaLevel != nil {
		return fmt.Sprintf("trauma-level%d", *a.TraumaLevel)
	}
	return string(a.Kind)
}

func (a *Activation) Clone() *Activation {
	cp := *a
	if a.TraumaLevel != nil {
		lvl := *a.TraumaLevel
		cp.TraumaLevel = &lvl
	}
	if a.AcknowledgedAt != nil {
		ts := *a.AcknowledgedAt
		cp.AcknowledgedAt = &ts
	}
	return &cp
}

// Notifier is the paging/notification collaborator. The engine's only
// obligation is to hand over each activation exactly once.
type Notifier interface {
	Notify(ctx context.Context, activation *Activation) error
}
