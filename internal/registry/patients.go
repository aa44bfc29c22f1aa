// Package registry owns the authoritative in-memory working set of
// patients and beds. Each registry guards its aggregates with a single
// mutex; mutations are applied to a private copy and swapped in whole, so
// concurrent readers see either the pre- or post-mutation record, never a
// torn one. Operations that touch both registries must lock patients
// before beds.
package registry

import (
	"sync"

	"github.com/google/uuid"

	"github.com/edflow/edflow/internal/domain/patient"
)

type Patients struct {
	mu         sync.RWMutex
	byID       map[uuid.UUID]*patient.Patient
	byProtocol map[string]uuid.UUID
}

func NewPatients() *Patients {
	return &Patients{
		byID:       make(map[uuid.UUID]*patient.Patient),
		byProtocol: make(map[string]uuid.UUID),
	}
}

func (r *Patients) Insert(p *patient.Patient) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byID[p.ID]; exists {
		return patient.ErrDuplicateProtocol
	}
	if _, exists := r.byProtocol[p.ProtocolNumber]; exists {
		return patient.ErrDuplicateProtocol
	}

	r.byID[p.ID] = p.Clone()
	r.byProtocol[p.ProtocolNumber] = p.ID
	return nil
}

// Get returns a defensive copy of the record.
func (r *Patients) Get(id uuid.UUID) (*patient.Patient, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.byID[id]
	if !ok {
		return nil, patient.ErrRecordNotFound
	}
	return p.Clone(), nil
}

// Update applies fn to a private copy of the record and commits the copy
// only when fn succeeds, so a failed operation leaves the registry exactly
// as it was. The committed copy is returned.
func (r *Patients) Update(id uuid.UUID, fn func(p *patient.Patient) error) (*patient.Patient, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.byID[id]
	if !ok {
		return nil, patient.ErrRecordNotFound
	}

	next := current.Clone()
	if err := fn(next); err != nil {
		return nil, err
	}

	r.byID[id] = next
	return next.Clone(), nil
}

// Remove deletes the record from the working set, returning its final
// state. Only discharged patients leave the active set.
func (r *Patients) Remove(id uuid.UUID) (*patient.Patient, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.byID[id]
	if !ok {
		return nil, patient.ErrRecordNotFound
	}
	delete(r.byID, id)
	delete(r.byProtocol, p.ProtocolNumber)
	return p.Clone(), nil
}

// IDs returns the identifiers of all records, for sweeps that must not
// hold the registry lock across the whole pass.
func (r *Patients) IDs() []uuid.UUID {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]uuid.UUID, 0, len(r.byID))
	for id := range r.byID {
		ids = append(ids, id)
	}
	return ids
}

// Snapshot returns defensive copies of every record.
func (r *Patients) Snapshot() []*patient.Patient {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*patient.Patient, 0, len(r.byID))
	for _, p := range r.byID {
		out = append(out, p.Clone())
	}
	return out
}

func (r *Patients) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byID)
}
