package triage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/edflow/edflow/internal/domain/patient"
)

func normalVitals() patient.VitalSigns {
	return patient.VitalSigns{
		HeartRate:        72,
		BPSystolic:       120,
		BPDiastolic:      80,
		TemperatureF:     98.6,
		OxygenSaturation: 98,
		RespiratoryRate:  16,
		GlasgowComaScale: 15,
	}
}

func TestEvaluateVitals(t *testing.T) {
	t.Run("normal snapshot produces no flags", func(t *testing.T) {
		eval := EvaluateVitals(normalVitals())
		assert.Empty(t, eval.Flags)
		assert.Equal(t, 5, eval.AcuityHint)
	})

	t.Run("each threshold flags independently", func(t *testing.T) {
		v := normalVitals()
		v.HeartRate = 130
		assert.True(t, EvaluateVitals(v).Has(FlagAbnormalHeartRate))

		v = normalVitals()
		v.HeartRate = 45
		assert.True(t, EvaluateVitals(v).Has(FlagAbnormalHeartRate))

		v = normalVitals()
		v.OxygenSaturation = 93
		assert.True(t, EvaluateVitals(v).Has(FlagHypoxia))

		v = normalVitals()
		v.TemperatureF = 101.2
		assert.True(t, EvaluateVitals(v).Has(FlagAbnormalTemp))

		v = normalVitals()
		v.RespiratoryRate = 26
		assert.True(t, EvaluateVitals(v).Has(FlagAbnormalRespRate))

		v = normalVitals()
		v.GlasgowComaScale = 12
		assert.True(t, EvaluateVitals(v).Has(FlagDepressedGCS))
	})

	t.Run("missing pain scale is never flagged", func(t *testing.T) {
		v := normalVitals()
		assert.False(t, EvaluateVitals(v).Has(FlagSeverePain))
	})

	t.Run("severe pain flags at seven or above", func(t *testing.T) {
		pain := 7
		v := normalVitals()
		v.PainScale = &pain
		assert.True(t, EvaluateVitals(v).Has(FlagSeverePain))

		mild := 4
		v.PainScale = &mild
		assert.False(t, EvaluateVitals(v).Has(FlagSeverePain))
	})

	t.Run("consciousness compromise dominates the hint", func(t *testing.T) {
		v := normalVitals()
		v.GlasgowComaScale = 7
		assert.Equal(t, 1, EvaluateVitals(v).AcuityHint)

		v = normalVitals()
		v.OxygenSaturation = 85
		assert.Equal(t, 1, EvaluateVitals(v).AcuityHint)
	})

	t.Run("hint degrades with flag count", func(t *testing.T) {
		v := normalVitals()
		v.HeartRate = 120
		assert.Equal(t, 4, EvaluateVitals(v).AcuityHint)

		v.RespiratoryRate = 24
		assert.Equal(t, 3, EvaluateVitals(v).AcuityHint)

		v.TemperatureF = 102
		assert.Equal(t, 2, EvaluateVitals(v).AcuityHint)
	})

	t.Run("deterministic for identical input", func(t *testing.T) {
		v := normalVitals()
		v.HeartRate = 120
		first := EvaluateVitals(v)
		second := EvaluateVitals(v)
		assert.Equal(t, first, second)
	})
}
