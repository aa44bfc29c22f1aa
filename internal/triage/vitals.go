package triage

import "github.com/edflow/edflow/internal/domain/patient"

// VitalFlag marks a single vital sign outside its clinical threshold.
type VitalFlag string

const (
	FlagAbnormalHeartRate VitalFlag = "abnormal_heart_rate"
	FlagHypoxia           VitalFlag = "hypoxia"
	FlagAbnormalTemp      VitalFlag = "abnormal_temperature"
	FlagAbnormalRespRate  VitalFlag = "abnormal_respiratory_rate"
	FlagDepressedGCS      VitalFlag = "depressed_gcs"
	FlagSeverePain        VitalFlag = "severe_pain"
)

// Clinical threshold table. Values outside these ranges are flagged.
const (
	heartRateLow    = 60
	heartRateHigh   = 100
	spo2Low         = 95
	tempLowF        = 96.0
	tempHighF       = 100.4
	respRateLow     = 12
	respRateHigh    = 20
	gcsThreshold    = 13
	severePainFloor = 7
)

// VitalsEvaluation is the output of the pure threshold scan: the set of
// abnormal-value flags and a coarse acuity hint (1 most severe, 5 least).
// The hint is advisory for display; acuity assignment stays a clinical
// judgment input.
type VitalsEvaluation struct {
	Flags      []VitalFlag `json:"flags"`
	AcuityHint int         `json:"acuity_hint"`
}

func (e VitalsEvaluation) Has(flag VitalFlag) bool {
	for _, f := range e.Flags {
		if f == flag {
			return true
		}
	}
	return false
}

// EvaluateVitals computes abnormality flags against the threshold table.
// Deterministic and side-effect free. A missing optional field (pain
// scale) is never flagged by omission.
func EvaluateVitals(v patient.VitalSigns) VitalsEvaluation {
	var flags []VitalFlag

	if v.HeartRate < heartRateLow || v.HeartRate > heartRateHigh {
		flags = append(flags, FlagAbnormalHeartRate)
	}
	if v.OxygenSaturation < spo2Low {
		flags = append(flags, FlagHypoxia)
	}
	if v.TemperatureF < tempLowF || v.TemperatureF > tempHighF {
		flags = append(flags, FlagAbnormalTemp)
	}
	if v.RespiratoryRate < respRateLow || v.RespiratoryRate > respRateHigh {
		flags = append(flags, FlagAbnormalRespRate)
	}
	if v.GlasgowComaScale < gcsThreshold {
		flags = append(flags, FlagDepressedGCS)
	}
	if v.PainScale != nil && *v.PainScale >= severePainFloor {
		flags = append(flags, FlagSeverePain)
	}

	return VitalsEvaluation{Flags: flags, AcuityHint: acuityHint(v, flags)}
}

func acuityHint(v patient.VitalSigns, flags []VitalFlag) int {
	// Airway/consciousness compromise dominates everything else.
	if v.GlasgowComaScale < 9 || v.OxygenSaturation < 90 {
		return 1
	}
	switch len(flags) {
	case 0:
		return 5
	case 1:
		return 4
	case 2:
		return 3
	default:
		return 2
	}
}
