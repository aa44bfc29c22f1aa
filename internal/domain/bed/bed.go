package bed

import (
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusAvailable Status = "available"
	StatusOccupied  Status = "occupied"
	StatusCleaning  Status = "cleaning"
	StatusBlocked   Status = "blocked"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusAvailable, StatusOccupied, StatusCleaning, StatusBlocked:
		return true
	}
	return false
}

// Bed is a physical resource slot. Invariant: Status == occupied iff
// OccupantID is set.
type Bed struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`

	Number string `gorm:"column:number;type:varchar(20);uniqueIndex;not null"`
	Status Status `gorm:"column:status;type:varchar(20);not null;index"`

	OccupantID    *uuid.UUID `gorm:"column:occupant_id;type:uuid;index"`
	OccupiedSince *time.Time `gorm:"column:occupied_since"`
}

func (Bed) TableName() string {
	return "ed.beds"
}

// Occupy links a patient to an available bed. The bed is unchanged on error.
func (b *Bed) Occupy(patientID uuid.UUID, now time.Time) error {
	if b.Status != StatusAvailable {
		return ErrBedNotAvailable
	}
	b.Status = StatusOccupied
	b.OccupantID = &patientID
	b.OccupiedSince = &now
	return nil
}

// Release clears the occupant and sends the bed to housekeeping. Beds never
// go straight back to available; MarkAvailable completes the turnaround.
func (b *Bed) Release() error {
	if b.Status != StatusOccupied {
		return ErrBedNotOccupied
	}
	b.Status = StatusCleaning
	b.OccupantID = nil
	b.OccupiedSince = nil
	return nil
}

// MarkAvailable completes housekeeping turnaround or unblocks a bed.
// Only cleaning and blocked beds can become available.
func (b *Bed) MarkAvailable() error {
	switch b.Status {
	case StatusOccupied:
		return ErrBedOccupied
	case StatusAvailable:
		return ErrBedAlreadyAvailable
	}
	b.Status = StatusAvailable
	b.OccupantID = nil
	b.OccupiedSince = nil
	return nil
}

// CheckInvariant verifies occupancy agrees with status.
func (b *Bed) CheckInvariant() error {
	if !b.Status.IsValid() {
		return ErrInvariantViolated
	}
	occupied := b.Status == StatusOccupied
	if occupied != (b.OccupantID != nil) {
		return ErrInvariantViolated
	}
	return nil
}

func (b *Bed) Clone() *Bed {
	cp := *b
	if b.OccupantID != nil {
		id := *b.OccupantID
		cp.OccupantID = &id
	}
	if b.OccupiedSince != nil {
		ts := *b.OccupiedSince
		cp.OccupiedSince = &ts
	}
	return &cp
}
