package registry

import (
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/edflow/edflow/internal/domain/bed"
)

type Beds struct {
	mu       sync.RWMutex
	byID     map[uuid.UUID]*bed.Bed
	byNumber map[string]uuid.UUID
}

func NewBeds() *Beds {
	return &Beds{
		byID:     make(map[uuid.UUID]*bed.Bed),
		byNumber: make(map[string]uuid.UUID),
	}
}

func (r *Beds) Insert(b *bed.Bed) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byNumber[b.Number]; exists {
		return bed.ErrInvariantViolated
	}
	r.byID[b.ID] = b.Clone()
	r.byNumber[b.Number] = b.ID
	return nil
}

func (r *Beds) Get(id uuid.UUID) (*bed.Bed, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	b, ok := r.byID[id]
	if !ok {
		return nil, bed.ErrBedNotFound
	}
	return b.Clone(), nil
}

func (r *Beds) GetByNumber(number string) (*bed.Bed, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byNumber[number]
	if !ok {
		return nil, bed.ErrBedNotFound
	}
	return r.byID[id].Clone(), nil
}

// Update applies fn to a private copy and commits only on success; the bed
// invariant is re-checked before the copy is swapped in.
func (r *Beds) Update(id uuid.UUID, fn func(b *bed.Bed) error) (*bed.Bed, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.byID[id]
	if !ok {
		return nil, bed.ErrBedNotFound
	}

	next := current.Clone()
	if err := fn(next); err != nil {
		return nil, err
	}
	if err := next.CheckInvariant(); err != nil {
		return nil, err
	}

	r.byID[id] = next
	return next.Clone(), nil
}

// Snapshot returns the bed board ordered by bed number.
func (r *Beds) Snapshot() []*bed.Bed {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*bed.Bed, 0, len(r.byID))
	for _, b := range r.byID {
		out = append(out, b.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Number < out[j].Number })
	return out
}

func (r *Beds) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byID)
}
