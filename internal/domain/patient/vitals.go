package patient

// VitalSigns is an immutable snapshot. A new snapshot replaces the previous
// one atomically; the engine never mutates fields of a stored snapshot.
type VitalSigns struct {
	HeartRate        int     `json:"heart_rate"`
	BPSystolic       int     `json:"bp_systolic"`
	BPDiastolic      int     `json:"bp_diastolic"`
	TemperatureF     float64 `json:"temperature_f"`
	OxygenSaturation int     `json:"oxygen_saturation"`
	RespiratoryRate  int     `json:"respiratory_rate"`
	GlasgowComaScale int     `json:"glasgow_coma_scale"`
	PainScale        *int    `json:"pain_scale,omitempty"`
}

// Validate rejects physiologically impossible snapshots before they replace
// the stored one.
func (v VitalSigns) Validate() []string {
	var errs []string

	if v.HeartRate <= 0 || v.HeartRate > 300 {
		errs = append(errs, "heart_rate must be between 1 and 300")
	}
	if v.BPSystolic <= 0 || v.BPSystolic > 300 {
		errs = append(errs, "bp_systolic must be between 1 and 300")
	}
	if v.BPDiastolic <= 0 || v.BPDiastolic > 200 {
		errs = append(errs, "bp_diastolic must be between 1 and 200")
	}
	if v.TemperatureF < 75 || v.TemperatureF > 115 {
		errs = append(errs, "temperature_f must be between 75 and 115")
	}
	if v.OxygenSaturation < 0 || v.OxygenSaturation > 100 {
		errs = append(errs, "oxygen_saturation must be between 0 and 100")
	}
	if v.RespiratoryRate <= 0 || v.RespiratoryRate > 80 {
		errs = append(errs, "respiratory_rate must be between 1 and 80")
	}
	if v.GlasgowComaScale < 3 || v.GlasgowComaScale > 15 {
		errs = append(errs, "glasgow_coma_scale must be between 3 and 15")
	}
	if v.PainScale != nil && (*v.PainScale < 0 || *v.PainScale > 10) {
		errs = append(errs, "pain_scale must be between 0 and 10")
	}

	return errs
}

func (v *VitalSigns) clone() *VitalSigns {
	cp := *v
	if v.PainScale != nil {
		pain := *v.PainScale
		cp.PainScale = &pain
	}
	return &cp
}
