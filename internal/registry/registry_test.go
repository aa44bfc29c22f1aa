package registry

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edflow/edflow/internal/domain/bed"
	"github.com/edflow/edflow/internal/domain/patient"
)

func newPatient(protocol string, acuity, rank int, arrival time.Time) *patient.Patient {
	return &patient.Patient{
		ID:             uuid.New(),
		ProtocolNumber: protocol,
		FirstName:      "Test",
		LastName:       protocol,
		ArrivalMethod:  patient.ArrivalWalkIn,
		ArrivalAt:      arrival,
		AcuityLevel:    acuity,
		PriorityRank:   rank,
		Status:         patient.StatusTriage,
	}
}

func TestPatientsRegistry(t *testing.T) {
	t.Run("insert and get return copies", func(t *testing.T) {
		r := NewPatients()
		p := newPatient("P-1", 3, 100, time.Now())
		require.NoError(t, r.Insert(p))

		got, err := r.Get(p.ID)
		require.NoError(t, err)
		got.AcuityLevel = 1

		again, err := r.Get(p.ID)
		require.NoError(t, err)
		assert.Equal(t, 3, again.AcuityLevel)
	})

	t.Run("duplicate protocol rejected", func(t *testing.T) {
		r := NewPatients()
		require.NoError(t, r.Insert(newPatient("P-1", 3, 100, time.Now())))
		assert.ErrorIs(t, r.Insert(newPatient("P-1", 2, 50, time.Now())), patient.ErrDuplicateProtocol)
	})

	t.Run("failed update leaves record unchanged", func(t *testing.T) {
		r := NewPatients()
		p := newPatient("P-1", 3, 100, time.Now())
		require.NoError(t, r.Insert(p))

		boom := errors.New("boom")
		_, err := r.Update(p.ID, func(p *patient.Patient) error {
			p.AcuityLevel = 1
			return boom
		})
		require.ErrorIs(t, err, boom)

		got, err := r.Get(p.ID)
		require.NoError(t, err)
		assert.Equal(t, 3, got.AcuityLevel)
	})

	t.Run("unknown id", func(t *testing.T) {
		r := NewPatients()
		_, err := r.Get(uuid.New())
		assert.ErrorIs(t, err, patient.ErrRecordNotFound)
		_, err = r.Update(uuid.New(), func(p *patient.Patient) error { return nil })
		assert.ErrorIs(t, err, patient.ErrRecordNotFound)
		_, err = r.Remove(uuid.New())
		assert.ErrorIs(t, err, patient.ErrRecordNotFound)
	})
}

func TestQueueOrdering(t *testing.T) {
	base := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	r := NewPatients()

	late1 := newPatient("A", 1, 10, base.Add(10*time.Minute))
	early1 := newPatient("B", 1, 10, base)
	level1 := newPatient("C", 1, 5, base.Add(time.Hour))
	level3 := newPatient("D", 3, 100, base)
	level2 := newPatient("E", 2, 30, base.Add(2*time.Hour))

	for _, p := range []*patient.Patient{late1, early1, level1, level3, level2} {
		require.NoError(t, r.Insert(p))
	}

	t.Run("ordered by acuity, rank, arrival", func(t *testing.T) {
		got := r.OrderedActive()
		protocols := make([]string, 0, len(got))
		for _, p := range got {
			protocols = append(protocols, p.ProtocolNumber)
		}
		assert.Equal(t, []string{"C", "B", "A", "E", "D"}, protocols)
	})

	t.Run("equal rank and arrival break ties on identity", func(t *testing.T) {
		r2 := NewPatients()
		p1 := newPatient("X", 2, 40, base)
		p2 := newPatient("Y", 2, 40, base)
		require.NoError(t, r2.Insert(p1))
		require.NoError(t, r2.Insert(p2))

		first := r2.OrderedActive()
		second := r2.OrderedActive()
		assert.Equal(t, first[0].ID, second[0].ID)
		assert.Equal(t, first[1].ID, second[1].ID)
	})

	t.Run("sequence is restartable", func(t *testing.T) {
		seq := r.Queue()

		var firstPass, secondPass []string
		for p := range seq {
			firstPass = append(firstPass, p.ProtocolNumber)
		}
		for p := range seq {
			secondPass = append(secondPass, p.ProtocolNumber)
		}
		assert.Equal(t, firstPass, secondPass)
		assert.Len(t, firstPass, 5)
	})

	t.Run("terminal patients are excluded", func(t *testing.T) {
		_, err := r.Update(level3.ID, func(p *patient.Patient) error {
			p.Status = patient.StatusAdmitted
			return nil
		})
		require.NoError(t, err)

		for p := range r.Queue() {
			assert.NotEqual(t, "D", p.ProtocolNumber)
		}
	})
}

func TestBedsRegistry(t *testing.T) {
	t.Run("update rejects invariant violations", func(t *testing.T) {
		r := NewBeds()
		b := &bed.Bed{ID: uuid.New(), Number: "ED-01", Status: bed.StatusAvailable}
		require.NoError(t, r.Insert(b))

		_, err := r.Update(b.ID, func(b *bed.Bed) error {
			b.Status = bed.StatusOccupied // no occupant set
			return nil
		})
		require.ErrorIs(t, err, bed.ErrInvariantViolated)

		got, err := r.Get(b.ID)
		require.NoError(t, err)
		assert.Equal(t, bed.StatusAvailable, got.Status)
	})

	t.Run("snapshot ordered by number", func(t *testing.T) {
		r := NewBeds()
		for _, n := range []string{"ED-03", "ED-01", "ED-02"} {
			require.NoError(t, r.Insert(&bed.Bed{ID: uuid.New(), Number: n, Status: bed.StatusAvailable}))
		}
		snap := r.Snapshot()
		assert.Equal(t, "ED-01", snap[0].Number)
		assert.Equal(t, "ED-03", snap[2].Number)
	})

	t.Run("lookup by number", func(t *testing.T) {
		r := NewBeds()
		b := &bed.Bed{ID: uuid.New(), Number: "ED-07", Status: bed.StatusBlocked}
		require.NoError(t, r.Insert(b))

		got, err := r.GetByNumber("ED-07")
		require.NoError(t, err)
		assert.Equal(t, b.ID, got.ID)

		_, err = r.GetByNumber("ED-99")
		assert.ErrorIs(t, err, bed.ErrBedNotFound)
	})
}

func TestConcurrentReadersSeeWholeRecords(t *testing.T) {
	r := NewPatients()
	p := newPatient("P-1", 3, 100, time.Now().Add(-time.Hour))
	snapA := &patient.VitalSigns{HeartRate: 60, BPSystolic: 110, BPDiastolic: 70, TemperatureF: 98, OxygenSaturation: 99, RespiratoryRate: 14, GlasgowComaScale: 15}
	snapB := &patient.VitalSigns{HeartRate: 120, BPSystolic: 90, BPDiastolic: 60, TemperatureF: 101, OxygenSaturation: 91, RespiratoryRate: 24, GlasgowComaScale: 13}
	p.Vitals = snapA
	require.NoError(t, r.Insert(p))

	var wg sync.WaitGroup
	stop := make(chan struct{})

	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 500; i++ {
			next := snapA
			if i%2 == 0 {
				next = snapB
			}
			_, _ = r.Update(p.ID, func(p *patient.Patient) error {
				v := *next
				p.Vitals = &v
				return nil
			})
		}
		close(stop)
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-stop:
				return
			default:
			}
			got, err := r.Get(p.ID)
			if err != nil || got.Vitals == nil {
				continue
			}
			// Every observed snapshot must be exactly A or exactly B,
			// never a mix of fields from both.
			if got.Vitals.HeartRate == snapA.HeartRate {
				assert.Equal(t, snapA.OxygenSaturation, got.Vitals.OxygenSaturation)
			} else {
				assert.Equal(t, snapB.OxygenSaturation, got.Vitals.OxygenSaturation)
			}
		}
	}()

	wg.Wait()
}
