package service

import (
	"testing"

	"allure/internal/domain"
	"allure/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHoldBooking(t *testing.T) {
	env := newEscrowEnv(t)
	customerID := env.seedCustomer(t, 100000)
	modelID := env.seedModel(t, 20, nil, "")

	b, err := env.escrow.HoldBooking(HoldBookingInput{CustomerID: customerID, ModelID: modelID, PriceCents: 100000})
	require.NoError(t, err)
	assert.Equal(t, domain.BookingConfirmed, b.Status)
	assert.Equal(t, domain.PaymentHeld, b.PaymentStatus)
	assert.Equal(t, 20, b.CommissionRatePct)
	require.NotNil(t, b.HoldTransactionID)
	require.NotNil(t, b.ReleaseTransactionID)

	hold, err := env.ledger.Get(*b.HoldTransactionID)
	require.NoError(t, err)
	assert.Equal(t, domain.TxKindBookingHold, hold.Kind)
	assert.Equal(t, domain.TxStatusHeld, hold.Status)
	assert.Equal(t, int64(100000), hold.AmountCents)
	assert.Equal(t, int64(20000), hold.CommissionCents)
	require.NotNil(t, hold.CustomerID)
	assert.Equal(t, customerID, *hold.CustomerID)

	placeholder, err := env.ledger.Get(*b.ReleaseTransactionID)
	require.NoError(t, err)
	assert.Equal(t, domain.TxKindBookingEarning, placeholder.Kind)
	assert.Equal(t, domain.TxStatusPending, placeholder.Status)
	assert.Equal(t, int64(80000), placeholder.AmountCents)

	cw := env.customerWallet(t, customerID)
	assert.Equal(t, int64(100000), cw.TotalSpendCents)
	assert.Zero(t, cw.AvailableCents())

	mw := env.modelWallet(t, modelID)
	assert.Equal(t, int64(80000), mw.TotalPendingCents)
	assert.Zero(t, mw.TotalBalanceCents)
}

func TestHoldBookingInsufficientFunds(t *testing.T) {
	env := newEscrowEnv(t)
	customerID := env.seedCustomer(t, 5000)
	modelID := env.seedModel(t, 20, nil, "")

	_, err := env.escrow.HoldBooking(HoldBookingInput{CustomerID: customerID, ModelID: modelID, PriceCents: 10000})
	require.ErrorIs(t, err, domain.ErrInsufficientFunds)

	// Nothing committed: no booking, no ledger rows, wallet untouched.
	var bookings int64
	env.db.Model(&models.Booking{}).Count(&bookings)
	assert.Zero(t, bookings)
	var txs int64
	env.db.Model(&models.Transaction{}).Count(&txs)
	assert.Zero(t, txs)
	cw := env.customerWallet(t, customerID)
	assert.Zero(t, cw.TotalSpendCents)
}

func TestHoldBookingMissingWallet(t *testing.T) {
	env := newEscrowEnv(t)
	u := &models.User{Username: "nowallet", Email: "nowallet@test.local", Role: domain.RoleCustomer}
	require.NoError(t, env.users.Create(u))
	modelID := env.seedModel(t, 20, nil, "")

	_, err := env.escrow.HoldBooking(HoldBookingInput{CustomerID: u.ID, ModelID: modelID, PriceCents: 1000})
	require.ErrorIs(t, err, domain.ErrMissingWallet)
}

func TestHoldBookingSuspendedWallet(t *testing.T) {
	env := newEscrowEnv(t)
	customerID := env.seedCustomer(t, 100000)
	modelID := env.seedModel(t, 20, nil, "")
	cw := env.customerWallet(t, customerID)
	require.NoError(t, env.wallets.SetStatus(cw.ID, domain.WalletSuspended))

	_, err := env.escrow.HoldBooking(HoldBookingInput{CustomerID: customerID, ModelID: modelID, PriceCents: 1000})
	require.ErrorIs(t, err, domain.ErrWalletSuspended)
}

func TestReleaseBooking(t *testing.T) {
	env := newEscrowEnv(t)
	customerID := env.seedCustomer(t, 100000)
	modelID := env.seedModel(t, 20, nil, "")
	approver := uint(999)

	b, err := env.escrow.HoldBooking(HoldBookingInput{CustomerID: customerID, ModelID: modelID, PriceCents: 100000})
	require.NoError(t, err)

	released, err := env.escrow.ReleaseBooking(b.ID, approver)
	require.NoError(t, err)
	assert.Equal(t, domain.BookingCompleted, released.Status)
	assert.Equal(t, domain.PaymentReleased, released.PaymentStatus)
	assert.NotNil(t, released.CompletedAt)

	hold, err := env.ledger.Get(*b.HoldTransactionID)
	require.NoError(t, err)
	assert.Equal(t, domain.TxStatusReleased, hold.Status)

	earning, err := env.ledger.Get(*b.ReleaseTransactionID)
	require.NoError(t, err)
	assert.Equal(t, domain.TxStatusApproved, earning.Status)
	assert.Equal(t, int64(80000), earning.AmountCents)

	mw := env.modelWallet(t, modelID)
	assert.Equal(t, int64(80000), mw.TotalBalanceCents)
	assert.Equal(t, int64(80000), mw.TotalDepositCents)
	assert.Zero(t, mw.TotalPendingCents)
	assert.Equal(t, int64(80000), mw.AvailableCents())

	// Conservation: what the customer paid equals commission plus payout.
	assert.Equal(t, hold.AmountCents, hold.CommissionCents+earning.AmountCents)
}

func TestReleaseBookingTwice(t *testing.T) {
	env := newEscrowEnv(t)
	customerID := env.seedCustomer(t, 50000)
	modelID := env.seedModel(t, 20, nil, "")

	b, err := env.escrow.HoldBooking(HoldBookingInput{CustomerID: customerID, ModelID: modelID, PriceCents: 50000})
	require.NoError(t, err)
	_, err = env.escrow.ReleaseBooking(b.ID, 1)
	require.NoError(t, err)

	_, err = env.escrow.ReleaseBooking(b.ID, 2)
	require.ErrorIs(t, err, domain.ErrAlreadyResolved)

	// Second attempt paid nothing.
	mw := env.modelWallet(t, modelID)
	assert.Equal(t, int64(40000), mw.TotalBalanceCents)
}

func TestRefundBooking(t *testing.T) {
	env := newEscrowEnv(t)
	customerID := env.seedCustomer(t, 100000)
	modelID := env.seedModel(t, 20, nil, "")

	b, err := env.escrow.HoldBooking(HoldBookingInput{CustomerID: customerID, ModelID: modelID, PriceCents: 60000})
	require.NoError(t, err)

	refunded, err := env.escrow.RefundBooking(b.ID, 1, "model no-show")
	require.NoError(t, err)
	assert.Equal(t, domain.BookingCancelled, refunded.Status)
	assert.Equal(t, domain.PaymentRefunded, refunded.PaymentStatus)

	hold, err := env.ledger.Get(*b.HoldTransactionID)
	require.NoError(t, err)
	assert.Equal(t, domain.TxStatusRefunded, hold.Status)

	placeholder, err := env.ledger.Get(*b.ReleaseTransactionID)
	require.NoError(t, err)
	assert.Equal(t, domain.TxStatusRefunded, placeholder.Status)

	cw := env.customerWallet(t, customerID)
	assert.Equal(t, int64(60000), cw.TotalRefundedCents)
	assert.Equal(t, int64(100000), cw.AvailableCents())

	mw := env.modelWallet(t, modelID)
	assert.Zero(t, mw.TotalPendingCents)
	assert.Zero(t, mw.TotalBalanceCents)

	txs, err := env.ledger.ListByBookingID(b.ID)
	require.NoError(t, err)
	var refundRows int
	for _, tx := range txs {
		if tx.Kind == domain.TxKindBookingRefund {
			refundRows++
			assert.Equal(t, domain.TxStatusApproved, tx.Status)
			assert.Equal(t, int64(60000), tx.AmountCents)
		}
	}
	assert.Equal(t, 1, refundRows)
}

func TestRefundBookingTwice(t *testing.T) {
	env := newEscrowEnv(t)
	customerID := env.seedCustomer(t, 60000)
	modelID := env.seedModel(t, 20, nil, "")

	b, err := env.escrow.HoldBooking(HoldBookingInput{CustomerID: customerID, ModelID: modelID, PriceCents: 60000})
	require.NoError(t, err)
	_, err = env.escrow.RefundBooking(b.ID, 1, "")
	require.NoError(t, err)

	_, err = env.escrow.RefundBooking(b.ID, 1, "")
	require.ErrorIs(t, err, domain.ErrAlreadyResolved)

	cw := env.customerWallet(t, customerID)
	assert.Equal(t, int64(60000), cw.TotalRefundedCents)
}

func TestDisputeAndResolveReleased(t *testing.T) {
	env := newEscrowEnv(t)
	customerID := env.seedCustomer(t, 100000)
	modelID := env.seedModel(t, 25, nil, "")

	b, err := env.escrow.HoldBooking(HoldBookingInput{CustomerID: customerID, ModelID: modelID, PriceCents: 100000})
	require.NoError(t, err)

	disputed, err := env.escrow.DisputeBooking(b.ID, customerID, "service not as described")
	require.NoError(t, err)
	assert.Equal(t, domain.BookingDisputed, disputed.Status)
	assert.Equal(t, domain.PaymentHeld, disputed.PaymentStatus)
	assert.Equal(t, "service not as described", disputed.DisputeReason)

	// A disputed booking cannot be released through the normal path.
	_, err = env.escrow.ReleaseBooking(b.ID, 1)
	require.ErrorIs(t, err, domain.ErrInvalidState)

	resolved, err := env.escrow.ResolveDispute(b.ID, 1, domain.ResolutionReleased)
	require.NoError(t, err)
	assert.Equal(t, domain.BookingCompleted, resolved.Status)
	require.NotNil(t, resolved.DisputeResolution)
	assert.Equal(t, domain.ResolutionReleased, *resolved.DisputeResolution)
	assert.NotNil(t, resolved.DisputeResolvedAt)

	mw := env.modelWallet(t, modelID)
	assert.Equal(t, int64(75000), mw.TotalBalanceCents)
}

func TestDisputeAndResolveRefunded(t *testing.T) {
	env := newEscrowEnv(t)
	customerID := env.seedCustomer(t, 80000)
	modelID := env.seedModel(t, 20, nil, "")

	b, err := env.escrow.HoldBooking(HoldBookingInput{CustomerID: customerID, ModelID: modelID, PriceCents: 80000})
	require.NoError(t, err)
	_, err = env.escrow.DisputeBooking(b.ID, modelID, "customer cancelled on arrival")
	require.NoError(t, err)

	resolved, err := env.escrow.ResolveDispute(b.ID, 1, domain.ResolutionRefunded)
	require.NoError(t, err)
	assert.Equal(t, domain.BookingCancelled, resolved.Status)
	assert.Equal(t, domain.PaymentRefunded, resolved.PaymentStatus)

	cw := env.customerWallet(t, customerID)
	assert.Equal(t, int64(80000), cw.AvailableCents())

	// Resolving again reports the booking as settled.
	_, err = env.escrow.ResolveDispute(b.ID, 1, domain.ResolutionReleased)
	require.ErrorIs(t, err, domain.ErrAlreadyResolved)
}

func TestResolveValidation(t *testing.T) {
	env := newEscrowEnv(t)
	customerID := env.seedCustomer(t, 10000)
	modelID := env.seedModel(t, 20, nil, "")

	b, err := env.escrow.HoldBooking(HoldBookingInput{CustomerID: customerID, ModelID: modelID, PriceCents: 10000})
	require.NoError(t, err)

	var verr *domain.ValidationError
	_, err = env.escrow.ResolveDispute(b.ID, 1, "split")
	require.ErrorAs(t, err, &verr)

	// Resolving a booking that was never disputed.
	_, err = env.escrow.ResolveDispute(b.ID, 1, domain.ResolutionReleased)
	require.ErrorIs(t, err, domain.ErrInvalidState)

	_, err = env.escrow.ResolveDispute(9999, 1, domain.ResolutionReleased)
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestHoldBookingInputValidation(t *testing.T) {
	env := newEscrowEnv(t)
	customerID := env.seedCustomer(t, 10000)
	modelID := env.seedModel(t, 20, nil, "")

	var verr *domain.ValidationError
	_, err := env.escrow.HoldBooking(HoldBookingInput{CustomerID: customerID, ModelID: modelID, PriceCents: 0})
	require.ErrorAs(t, err, &verr)

	_, err = env.escrow.HoldBooking(HoldBookingInput{CustomerID: customerID, ModelID: customerID, PriceCents: 1000})
	require.ErrorAs(t, err, &verr)

	_, err = env.escrow.HoldBooking(HoldBookingInput{CustomerID: customerID, ModelID: 4242, PriceCents: 1000})
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestReferralCascadeOnRelease(t *testing.T) {
	env := newEscrowEnv(t)
	referrerID := env.seedModel(t, 20, nil, domain.TierSpecial)
	modelID := env.seedModel(t, 20, &referrerID, "")
	customerID := env.seedCustomer(t, 100000)

	b, err := env.escrow.HoldBooking(HoldBookingInput{CustomerID: customerID, ModelID: modelID, PriceCents: 100000})
	require.NoError(t, err)
	_, err = env.escrow.ReleaseBooking(b.ID, 1)
	require.NoError(t, err)

	// Special tier: 2% of the gross price, additive to the model's payout.
	rw := env.modelWallet(t, referrerID)
	assert.Equal(t, int64(2000), rw.TotalBalanceCents)
	assert.Equal(t, int64(2000), rw.TotalDepositCents)

	mw := env.modelWallet(t, modelID)
	assert.Equal(t, int64(80000), mw.TotalBalanceCents)

	var referralRows []models.Transaction
	require.NoError(t, env.db.Where("kind = ?", domain.TxKindBookingReferral).Find(&referralRows).Error)
	require.Len(t, referralRows, 1)
	assert.Equal(t, int64(2000), referralRows[0].AmountCents)
	assert.Equal(t, domain.TxStatusApproved, referralRows[0].Status)
	require.NotNil(t, referralRows[0].BookingID)
	assert.Equal(t, b.ID, *referralRows[0].BookingID)

	// The cascade is additive: total platform outflow exceeds the price.
	hold, err := env.ledger.Get(*b.HoldTransactionID)
	require.NoError(t, err)
	payout := mw.TotalBalanceCents + hold.CommissionCents + rw.TotalBalanceCents
	assert.Greater(t, payout, b.PriceCents)
}

func TestReferralCascadePartnerTier(t *testing.T) {
	env := newEscrowEnv(t)
	referrerID := env.seedModel(t, 20, nil, domain.TierPartner)
	modelID := env.seedModel(t, 20, &referrerID, "")
	customerID := env.seedCustomer(t, 100000)

	b, err := env.escrow.HoldBooking(HoldBookingInput{CustomerID: customerID, ModelID: modelID, PriceCents: 100000})
	require.NoError(t, err)
	_, err = env.escrow.ReleaseBooking(b.ID, 1)
	require.NoError(t, err)

	rw := env.modelWallet(t, referrerID)
	assert.Equal(t, int64(4000), rw.TotalBalanceCents)
}

func TestNoReferralCascadeOnRefund(t *testing.T) {
	env := newEscrowEnv(t)
	referrerID := env.seedModel(t, 20, nil, domain.TierSpecial)
	modelID := env.seedModel(t, 20, &referrerID, "")
	customerID := env.seedCustomer(t, 100000)

	b, err := env.escrow.HoldBooking(HoldBookingInput{CustomerID: customerID, ModelID: modelID, PriceCents: 100000})
	require.NoError(t, err)
	_, err = env.escrow.RefundBooking(b.ID, 1, "")
	require.NoError(t, err)

	var count int64
	env.db.Model(&models.Transaction{}).Where("kind = ?", domain.TxKindBookingReferral).Count(&count)
	assert.Zero(t, count)
}

func TestNotificationsWritten(t *testing.T) {
	env := newEscrowEnv(t)
	customerID := env.seedCustomer(t, 50000)
	modelID := env.seedModel(t, 20, nil, "")

	b, err := env.escrow.HoldBooking(HoldBookingInput{CustomerID: customerID, ModelID: modelID, PriceCents: 50000})
	require.NoError(t, err)
	_, err = env.escrow.ReleaseBooking(b.ID, 1)
	require.NoError(t, err)

	var modelNotifs []models.Notification
	require.NoError(t, env.db.Where("user_id = ?", modelID).Find(&modelNotifs).Error)
	types := make([]string, 0, len(modelNotifs))
	for _, n := range modelNotifs {
		types = append(types, n.Type)
	}
	assert.Contains(t, types, "BOOKING_PAID")
	assert.Contains(t, types, "EARNING_RELEASED")

	var customerNotifs int64
	env.db.Model(&models.Notification{}).Where("user_id = ? AND type = ?", customerID, "BOOKING_COMPLETED").Count(&customerNotifs)
	assert.Equal(t, int64(1), customerNotifs)
}
