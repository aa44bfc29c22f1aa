package patient

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func activePatient(status Status) *Patient {
	return &Patient{
		ID:             uuid.New(),
		ProtocolNumber: "P-1001",
		FirstName:      "Ana",
		LastName:       "Souza",
		ArrivalMethod:  ArrivalWalkIn,
		ArrivalAt:      time.Now().Add(-30 * time.Minute),
		AcuityLevel:    3,
		PriorityRank:   120,
		Status:         status,
	}
}

func TestStatusTransitions(t *testing.T) {
	t.Run("pathway edges are legal", func(t *testing.T) {
		assert.True(t, StatusTriage.CanTransitionTo(StatusRoomed))
		assert.True(t, StatusRoomed.CanTransitionTo(StatusProviderEval))
		assert.True(t, StatusProviderEval.CanTransitionTo(StatusDiagnostics))
		assert.True(t, StatusDiagnostics.CanTransitionTo(StatusTreatment))
		assert.True(t, StatusTreatment.CanTransitionTo(StatusObservation))
		assert.True(t, StatusObservation.CanTransitionTo(StatusAdmitted))
		assert.True(t, StatusObservation.CanTransitionTo(StatusDischarged))
	})

	t.Run("any non-terminal state can discharge directly", func(t *testing.T) {
		for _, s := range []Status{StatusTriage, StatusRoomed, StatusProviderEval, StatusDiagnostics, StatusTreatment} {
			assert.True(t, s.CanTransitionTo(StatusDischarged), "from %s", s)
		}
	})

	t.Run("edges outside the graph are illegal", func(t *testing.T) {
		assert.False(t, StatusTriage.CanTransitionTo(StatusProviderEval))
		assert.False(t, StatusTriage.CanTransitionTo(StatusAdmitted))
		assert.False(t, StatusRoomed.CanTransitionTo(StatusTriage))
		assert.False(t, StatusTreatment.CanTransitionTo(StatusDiagnostics))
	})

	t.Run("terminal states have no exits", func(t *testing.T) {
		assert.False(t, StatusAdmitted.CanTransitionTo(StatusDischarged))
		assert.False(t, StatusDischarged.CanTransitionTo(StatusTriage))
		assert.True(t, StatusAdmitted.IsTerminal())
		assert.True(t, StatusDischarged.IsTerminal())
	})
}

func TestTransitionTo(t *testing.T) {
	t.Run("illegal transition leaves record unchanged", func(t *testing.T) {
		p := activePatient(StatusTriage)
		err := p.TransitionTo(StatusTreatment, time.Now())
		require.ErrorIs(t, err, ErrIllegalStateTransition)
		assert.Equal(t, StatusTriage, p.Status)
		assert.Nil(t, p.DischargedAt)
	})

	t.Run("door-to-doctor stamped once at provider eval", func(t *testing.T) {
		p := activePatient(StatusRoomed)
		now := p.ArrivalAt.Add(45 * time.Minute)

		require.NoError(t, p.TransitionTo(StatusProviderEval, now))
		require.NotNil(t, p.DoorToDoctorMinutes)
		assert.Equal(t, 45, *p.DoorToDoctorMinutes)

		// A later pass through the pathway never restamps it.
		stamped := *p.DoorToDoctorMinutes
		require.NoError(t, p.TransitionTo(StatusDiagnostics, now.Add(time.Hour)))
		assert.Equal(t, stamped, *p.DoorToDoctorMinutes)
	})

	t.Run("discharge stamps timestamp", func(t *testing.T) {
		p := activePatient(StatusTriage)
		now := time.Now()
		require.NoError(t, p.TransitionTo(StatusDischarged, now))
		require.NotNil(t, p.DischargedAt)
		assert.True(t, p.DischargedAt.Equal(now))
		assert.False(t, p.IsActive())
	})
}

func TestClone(t *testing.T) {
	pain := 8
	p := activePatient(StatusTriage)
	p.Vitals = &VitalSigns{HeartRate: 80, GlasgowComaScale: 15, PainScale: &pain}
	bedID := uuid.New()
	p.BedID = &bedID

	cp := p.Clone()
	require.Equal(t, p.ID, cp.ID)

	// Mutating the copy never leaks into the original.
	cp.Vitals.HeartRate = 140
	*cp.Vitals.PainScale = 2
	*cp.BedID = uuid.New()

	assert.Equal(t, 80, p.Vitals.HeartRate)
	assert.Equal(t, 8, *p.Vitals.PainScale)
	assert.Equal(t, bedID, *p.BedID)
}

func TestVitalSignsValidate(t *testing.T) {
	t.Run("valid snapshot", func(t *testing.T) {
		v := VitalSigns{
			HeartRate: 70, BPSystolic: 118, BPDiastolic: 76,
			TemperatureF: 98.2, OxygenSaturation: 99,
			RespiratoryRate: 14, GlasgowComaScale: 15,
		}
		assert.Empty(t, v.Validate())
	})

	t.Run("out-of-range fields are reported", func(t *testing.T) {
		bad := -1
		v := VitalSigns{GlasgowComaScale: 2, PainScale: &bad}
		fields := v.Validate()
		assert.Contains(t, fields, "glasgow_coma_scale must be between 3 and 15")
		assert.Contains(t, fields, "pain_scale must be between 0 and 10")
	})
}

func TestArrivalMethodAndDisposition(t *testing.T) {
	assert.True(t, ArrivalEMS.IsValid())
	assert.False(t, ArrivalMethod("helicopter").IsValid())
	assert.True(t, DispositionAMA.IsValid())
	assert.False(t, Disposition("eloped?").IsValid())
}
