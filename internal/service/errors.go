package service

import (
	"context"
	"errors"
	"strings"

	"github.com/edflow/edflow/internal/domain/alert"
	"github.com/edflow/edflow/internal/domain/bed"
	"github.com/edflow/edflow/internal/domain/patient"
)

var ErrIneligibleForFastTrack = errors.New("fast track requires acuity level 4 or 5")

type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Fields, "; ")
}

// Recorder is the durability collaborator of the flow façade, invoked
// after each successful operation. The in-memory registries stay
// authoritative; the engine never reads back through it. Discharged
// records are upserted like any other and retained as visit history
// after the patient leaves the working set.
type Recorder interface {
	RecordPatient(ctx context.Context, p *patient.Patient) error
	RecordBed(ctx context.Context, b *bed.Bed) error
	RecordAlert(ctx context.Context, a *alert.Activation) error
}
