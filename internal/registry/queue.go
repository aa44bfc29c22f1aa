package registry

import (
	"bytes"
	"iter"
	"sort"

	"github.com/edflow/edflow/internal/domain/patient"
)

// Queue returns the authoritative ordering of all non-terminal patients:
// acuity level ascending, priority rank ascending, arrival time ascending,
// then patient identity for full determinism. The sequence is a
// point-in-time snapshot, finite and restartable on each range, so
// repeated reads with no intervening mutation yield the same order.
func (r *Patients) Queue() iter.Seq[*patient.Patient] {
	snap := r.orderedActive()
	return func(yield func(*patient.Patient) bool) {
		for _, p := range snap {
			if !yield(p.Clone()) {
				return
			}
		}
	}
}

// OrderedActive returns the queue materialized as a slice, for census
// statistics and display collaborators.
func (r *Patients) OrderedActive() []*patient.Patient {
	snap := r.orderedActive()
	out := make([]*patient.Patient, len(snap))
	for i, p := range snap {
		out[i] = p.Clone()
	}
	return out
}

func (r *Patients) orderedActive() []*patient.Patient {
	r.mu.RLock()
	active := make([]*patient.Patient, 0, len(r.byID))
	for _, p := range r.byID {
		if p.IsActive() {
			active = append(active, p.Clone())
		}
	}
	r.mu.RUnlock()

	sort.Slice(active, func(i, j int) bool {
		a, b := active[i], active[j]
		if a.AcuityLevel != b.AcuityLevel {
			return a.AcuityLevel < b.AcuityLevel
		}
		if a.PriorityRank != b.PriorityRank {
			return a.PriorityRank < b.PriorityRank
		}
		if !a.ArrivalAt.Equal(b.ArrivalAt) {
			return a.ArrivalAt.Before(b.ArrivalAt)
		}
		return bytes.Compare(a.ID[:], b.ID[:]) < 0
	})
	return active
}
