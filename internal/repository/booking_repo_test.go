package repository

import (
	"testing"
	"time"

	"allure/internal/domain"
	"allure/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBookingTransitionStatus(t *testing.T) {
	repo := NewBookingRepository(newTestDB(t))
	b := &models.Booking{
		CustomerID: 1, ModelID: 2, PriceCents: 1000, CommissionRatePct: 20,
		Status: domain.BookingConfirmed, PaymentStatus: domain.PaymentHeld,
	}
	require.NoError(t, repo.Create(b))

	err := repo.TransitionStatus(b.ID, []string{domain.BookingConfirmed}, domain.BookingDisputed,
		map[string]interface{}{"dispute_reason": "no-show"})
	require.NoError(t, err)

	got, err := repo.GetByID(b.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.BookingDisputed, got.Status)
	assert.Equal(t, "no-show", got.DisputeReason)

	// Already moved: the swap fails.
	err = repo.TransitionStatus(b.ID, []string{domain.BookingConfirmed}, domain.BookingDisputed, nil)
	require.ErrorIs(t, err, domain.ErrInvalidState)

	err = repo.TransitionStatus(4242, []string{domain.BookingConfirmed}, domain.BookingDisputed, nil)
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCancelStalePending(t *testing.T) {
	repo := NewBookingRepository(newTestDB(t))
	old := time.Now().Add(-48 * time.Hour)

	stale := &models.Booking{
		CustomerID: 1, ModelID: 2, PriceCents: 1000,
		Status: domain.BookingPending, PaymentStatus: domain.PaymentPending,
		CreatedAt: old,
	}
	require.NoError(t, repo.Create(stale))
	fresh := &models.Booking{
		CustomerID: 1, ModelID: 2, PriceCents: 1000,
		Status: domain.BookingPending, PaymentStatus: domain.PaymentPending,
	}
	require.NoError(t, repo.Create(fresh))
	// Paid bookings are never swept, no matter how old.
	paid := &models.Booking{
		CustomerID: 1, ModelID: 2, PriceCents: 1000,
		Status: domain.BookingConfirmed, PaymentStatus: domain.PaymentHeld,
		CreatedAt: old,
	}
	require.NoError(t, repo.Create(paid))

	n, err := repo.CancelStalePending(time.Now().Add(-24 * time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	got, err := repo.GetByID(stale.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.BookingCancelled, got.Status)

	got, err = repo.GetByID(paid.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.BookingConfirmed, got.Status)
}
