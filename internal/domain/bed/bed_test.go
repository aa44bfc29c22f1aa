package bed

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func availableBed() *Bed {
	return &Bed{ID: uuid.New(), Number: "ED-01", Status: StatusAvailable}
}

func TestOccupy(t *testing.T) {
	t.Run("occupies an available bed", func(t *testing.T) {
		b := availableBed()
		patientID := uuid.New()
		now := time.Now()

		require.NoError(t, b.Occupy(patientID, now))
		assert.Equal(t, StatusOccupied, b.Status)
		require.NotNil(t, b.OccupantID)
		assert.Equal(t, patientID, *b.OccupantID)
		require.NotNil(t, b.OccupiedSince)
		assert.True(t, b.OccupiedSince.Equal(now))
		assert.NoError(t, b.CheckInvariant())
	})

	t.Run("rejects any non-available status", func(t *testing.T) {
		for _, s := range []Status{StatusOccupied, StatusCleaning, StatusBlocked} {
			b := availableBed()
			b.Status = s
			if s == StatusOccupied {
				id := uuid.New()
				b.OccupantID = &id
			}
			assert.ErrorIs(t, b.Occupy(uuid.New(), time.Now()), ErrBedNotAvailable, "status %s", s)
		}
	})
}

func TestRelease(t *testing.T) {
	t.Run("release goes to cleaning, never straight to available", func(t *testing.T) {
		b := availableBed()
		require.NoError(t, b.Occupy(uuid.New(), time.Now()))

		require.NoError(t, b.Release())
		assert.Equal(t, StatusCleaning, b.Status)
		assert.Nil(t, b.OccupantID)
		assert.Nil(t, b.OccupiedSince)
		assert.NoError(t, b.CheckInvariant())
	})

	t.Run("releasing an unoccupied bed fails", func(t *testing.T) {
		b := availableBed()
		assert.ErrorIs(t, b.Release(), ErrBedNotOccupied)
	})
}

func TestMarkAvailable(t *testing.T) {
	t.Run("cleaning and blocked beds can be made available", func(t *testing.T) {
		for _, s := range []Status{StatusCleaning, StatusBlocked} {
			b := availableBed()
			b.Status = s
			require.NoError(t, b.MarkAvailable())
			assert.Equal(t, StatusAvailable, b.Status)
		}
	})

	t.Run("occupied beds cannot be made available", func(t *testing.T) {
		b := availableBed()
		require.NoError(t, b.Occupy(uuid.New(), time.Now()))
		assert.ErrorIs(t, b.MarkAvailable(), ErrBedOccupied)
		assert.Equal(t, StatusOccupied, b.Status)
	})

	t.Run("available beds are rejected, not silently accepted", func(t *testing.T) {
		b := availableBed()
		assert.ErrorIs(t, b.MarkAvailable(), ErrBedAlreadyAvailable)
	})
}

func TestCheckInvariant(t *testing.T) {
	b := availableBed()
	id := uuid.New()
	b.OccupantID = &id
	assert.ErrorIs(t, b.CheckInvariant(), ErrInvariantViolated)

	b = availableBed()
	b.Status = StatusOccupied
	assert.ErrorIs(t, b.CheckInvariant(), ErrInvariantViolated)
}
