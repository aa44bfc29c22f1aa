package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/edflow/edflow/internal/domain/alert"
	"github.com/edflow/edflow/internal/domain/patient"
)

type fakeNotifier struct {
	mu        sync.Mutex
	delivered []*alert.Activation
}

func (n *fakeNotifier) Notify(_ context.Context, a *alert.Activation) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.delivered = append(n.delivered, a)
	return nil
}

func (n *fakeNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.delivered)
}

func stemiPatient() *patient.Patient {
	return &patient.Patient{
		ID:             uuid.New(),
		ProtocolNumber: "P-1",
		ChiefComplaint: "crushing chest pain, ST elevation",
		Status:         patient.StatusTriage,
	}
}

func TestEvaluate(t *testing.T) {
	t.Run("idempotent while unacknowledged", func(t *testing.T) {
		svc := NewAlertService(nil, 16, zap.NewNop())
		defer svc.Shutdown()
		p := stemiPatient()

		created := svc.Evaluate(p)
		require.Len(t, created, 1)
		assert.Equal(t, alert.KindSTEMI, created[0].Kind)

		assert.Empty(t, svc.Evaluate(p))
		assert.Len(t, svc.ForPatient(p.ID), 1)
	})

	t.Run("acknowledged activation can re-trigger", func(t *testing.T) {
		svc := NewAlertService(nil, 16, zap.NewNop())
		defer svc.Shutdown()
		p := stemiPatient()

		require.Len(t, svc.Evaluate(p), 1)

		acked, err := svc.Acknowledge(p.ID, alert.KindSTEMI)
		require.NoError(t, err)
		assert.True(t, acked.Acknowledged)
		require.NotNil(t, acked.AcknowledgedAt)

		again := svc.Evaluate(p)
		require.Len(t, again, 1)
		assert.NotEqual(t, acked.ID, again[0].ID)
		assert.Len(t, svc.ForPatient(p.ID), 2)
	})

	t.Run("trauma marker requires explicit level", func(t *testing.T) {
		svc := NewAlertService(nil, 16, zap.NewNop())
		defer svc.Shutdown()

		p := &patient.Patient{ID: uuid.New(), ChiefComplaint: "GSW to abdomen", Status: patient.StatusTriage}
		assert.Empty(t, svc.Evaluate(p))

		lvl := 1
		p.TraumaActivationLevel = &lvl
		created := svc.Evaluate(p)
		require.Len(t, created, 1)
		assert.Equal(t, "trauma-level1", created[0].Label())
	})

	t.Run("one complaint can trigger multiple kinds", func(t *testing.T) {
		svc := NewAlertService(nil, 16, zap.NewNop())
		defer svc.Shutdown()

		p := &patient.Patient{ID: uuid.New(), ChiefComplaint: "stroke symptoms after MVC", Status: patient.StatusTriage}
		lvl := 2
		p.TraumaActivationLevel = &lvl

		created := svc.Evaluate(p)
		assert.Len(t, created, 2)
	})
}

func TestAcknowledgeUnknown(t *testing.T) {
	svc := NewAlertService(nil, 16, zap.NewNop())
	defer svc.Shutdown()

	_, err := svc.Acknowledge(uuid.New(), alert.KindStroke)
	assert.ErrorIs(t, err, alert.ErrAlertNotFound)

	_, err = svc.Acknowledge(uuid.New(), alert.Kind("tornado"))
	assert.ErrorIs(t, err, alert.ErrInvalidKind)
}

func TestUnacknowledgedOrdering(t *testing.T) {
	svc := NewAlertService(nil, 16, zap.NewNop())
	defer svc.Shutdown()

	base := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	tick := 0
	svc.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Minute)
	}

	p1 := stemiPatient()
	p2 := &patient.Patient{ID: uuid.New(), ChiefComplaint: "facial droop", Status: patient.StatusTriage}

	svc.Evaluate(p1)
	svc.Evaluate(p2)

	open := svc.Unacknowledged()
	require.Len(t, open, 2)
	assert.Equal(t, p1.ID, open[0].PatientID)
	assert.Equal(t, p2.ID, open[1].PatientID)

	_, err := svc.Acknowledge(p1.ID, alert.KindSTEMI)
	require.NoError(t, err)
	assert.Len(t, svc.Unacknowledged(), 1)
}

func TestEvaluateAfterShutdown(t *testing.T) {
	notifier := &fakeNotifier{}
	svc := NewAlertService(notifier, 16, zap.NewNop())
	svc.Shutdown()

	// A detection racing shutdown must drop the page, not panic on the
	// closed buffer. The activation itself is still recorded.
	created := svc.Evaluate(stemiPatient())
	require.Len(t, created, 1)
	assert.Equal(t, 0, notifier.count())

	// Repeated shutdown is a no-op.
	svc.Shutdown()
}

func TestNotifierDelivery(t *testing.T) {
	notifier := &fakeNotifier{}
	svc := NewAlertService(notifier, 16, zap.NewNop())
	p := stemiPatient()

	svc.Evaluate(p)
	require.Eventually(t, func() bool { return notifier.count() == 1 }, time.Second, 5*time.Millisecond)

	svc.Shutdown()
	assert.Equal(t, alert.KindSTEMI, notifier.delivered[0].Kind)
}
