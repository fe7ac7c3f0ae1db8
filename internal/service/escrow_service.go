package service

import (
	"errors"
	"fmt"
	"time"

	"allure/internal/domain"
	"allure/internal/models"
	"allure/internal/repository"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// EscrowService owns the payment lifecycle of a booking:
// hold -> (confirm/dispute) -> release or refund. Each operation runs its
// ledger and wallet writes as one database transaction; the compare-and-swap
// on the hold transaction's status is the serialization point between
// concurrent administrators. Referral payouts, notifications and audit
// writes happen strictly after commit and never fail the operation.
type EscrowService struct {
	db        *gorm.DB
	profiles  *repository.ModelProfileRepository
	referrals *ReferralService
	notifier  *NotificationService
	audit     *repository.AuditLogRepository
}

func NewEscrowService(
	db *gorm.DB,
	profiles *repository.ModelProfileRepository,
	referrals *ReferralService,
	notifier *NotificationService,
	audit *repository.AuditLogRepository,
) *EscrowService {
	return &EscrowService{
		db:        db,
		profiles:  profiles,
		referrals: referrals,
		notifier:  notifier,
		audit:     audit,
	}
}

type HoldBookingInput struct {
	CustomerID uint
	ModelID    uint
	PriceCents int64
}

// HoldBooking creates a booking together with its hold transaction and the
// optimistic pending placeholder for the eventual release. The customer's
// funds are reserved and the model's pending balance tracks the net amount
// that a release would pay out.
func (s *EscrowService) HoldBooking(in HoldBookingInput) (*models.Booking, error) {
	if in.PriceCents <= 0 {
		return nil, domain.NewValidationError("price_cents", "must be positive")
	}
	if in.CustomerID == 0 || in.ModelID == 0 {
		return nil, domain.NewValidationError("owner", "customer_id and model_id are required")
	}
	if in.CustomerID == in.ModelID {
		return nil, domain.NewValidationError("model_id", "customer and model must differ")
	}
	profile, err := s.profiles.GetByUserID(in.ModelID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("model profile: %w", domain.ErrNotFound)
		}
		return nil, err
	}
	commission, net, err := Split(in.PriceCents, profile.CommissionRatePct)
	if err != nil {
		return nil, err
	}

	var booking *models.Booking
	err = s.db.Transaction(func(tx *gorm.DB) error {
		ledger := repository.NewLedgerRepository(tx)
		wallets := repository.NewWalletRepository(tx)
		bookings := repository.NewBookingRepository(tx)

		cw, err := wallets.RequireCustomerWallet(in.CustomerID)
		if err != nil {
			return err
		}
		if err := wallets.Spend(cw.ID, in.PriceCents); err != nil {
			return err
		}
		mw, err := wallets.EnsureModelWallet(in.ModelID)
		if err != nil {
			return err
		}
		if err := wallets.Credit(mw.ID, repository.FieldTotalPending, net); err != nil {
			return err
		}

		b := &models.Booking{
			CustomerID:        in.CustomerID,
			ModelID:           in.ModelID,
			PriceCents:        in.PriceCents,
			CommissionRatePct: profile.CommissionRatePct,
			Status:            domain.BookingConfirmed,
			PaymentStatus:     domain.PaymentHeld,
		}
		if err := bookings.Create(b); err != nil {
			return err
		}

		hold := &models.Transaction{
			Kind:            domain.TxKindBookingHold,
			AmountCents:     in.PriceCents,
			CommissionCents: commission,
			Status:          domain.TxStatusHeld,
			CustomerID:      &in.CustomerID,
			BookingID:       &b.ID,
			Reason:          fmt.Sprintf("hold for booking %d", b.ID),
		}
		if err := ledger.Append(hold); err != nil {
			return err
		}
		placeholder := &models.Transaction{
			Kind:        domain.TxKindBookingEarning,
			AmountCents: net,
			Status:      domain.TxStatusPending,
			ModelID:     &in.ModelID,
			BookingID:   &b.ID,
			Reason:      fmt.Sprintf("pending earning for booking %d", b.ID),
		}
		if err := ledger.Append(placeholder); err != nil {
			return err
		}

		if err := bookings.UpdateFields(b.ID, map[string]interface{}{
			"hold_transaction_id":    hold.ID,
			"release_transaction_id": placeholder.ID,
		}); err != nil {
			return err
		}
		b.HoldTransactionID = &hold.ID
		b.ReleaseTransactionID = &placeholder.ID
		booking = b
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notifyQuiet(s.notifier.NotifyBookingPaid(booking.ModelID, booking.ID, booking.PriceCents))
	s.recordAudit("booking.hold", nil, fmt.Sprintf("held %d for booking %d", booking.PriceCents, booking.ID), "success", booking)
	return booking, nil
}

// ReleaseBooking completes a confirmed booking: the hold is released, the
// model is paid net of commission, and the referral cascade runs after
// commit. Retried calls on an already terminal booking fail with
// ErrAlreadyResolved.
func (s *EscrowService) ReleaseBooking(bookingID, approverID uint) (*models.Booking, error) {
	b, err := s.loadForResolution(bookingID, domain.BookingConfirmed)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	var out releaseOutcome
	err = s.db.Transaction(func(tx *gorm.DB) error {
		out, err = s.releaseLocked(tx, b, approverID, nil, now)
		return err
	})
	if err != nil {
		s.recordAudit("booking.release", &approverID, fmt.Sprintf("release booking %d failed: %v", bookingID, err), "failure", nil)
		return nil, err
	}
	s.afterRelease(b, approverID, out)
	return s.reload(bookingID, b)
}

// RefundBooking cancels a confirmed booking and returns the held funds to
// the customer. The model's pending estimate is wound back by the net
// amount, clamped at zero.
func (s *EscrowService) RefundBooking(bookingID, approverID uint, reason string) (*models.Booking, error) {
	b, err := s.loadForResolution(bookingID, domain.BookingConfirmed)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	err = s.db.Transaction(func(tx *gorm.DB) error {
		return s.refundLocked(tx, b, approverID, reason, nil, now)
	})
	if err != nil {
		s.recordAudit("booking.refund", &approverID, fmt.Sprintf("refund booking %d failed: %v", bookingID, err), "failure", nil)
		return nil, err
	}
	s.afterRefund(b, approverID)
	return s.reload(bookingID, b)
}

// DisputeBooking moves a confirmed booking into the disputed state, parking
// the held funds until an administrator resolves it.
func (s *EscrowService) DisputeBooking(bookingID uint, actorID uint, reason string) (*models.Booking, error) {
	b, err := s.loadForResolution(bookingID, domain.BookingConfirmed)
	if err != nil {
		return nil, err
	}
	bookings := repository.NewBookingRepository(s.db)
	if err := bookings.TransitionStatus(b.ID, []string{domain.BookingConfirmed}, domain.BookingDisputed,
		map[string]interface{}{"dispute_reason": reason}); err != nil {
		return nil, err
	}
	s.notifyQuiet(s.notifier.NotifyBookingDisputed(b.CustomerID, b.ID))
	s.notifyQuiet(s.notifier.NotifyBookingDisputed(b.ModelID, b.ID))
	s.recordAudit("booking.dispute", &actorID, fmt.Sprintf("booking %d disputed: %s", bookingID, reason), "success", nil)
	return s.reload(bookingID, b)
}

// ResolveDispute forces a disputed booking to a terminal state. "released"
// pays the model (and runs the referral cascade); "refunded" returns the
// funds to the customer.
func (s *EscrowService) ResolveDispute(bookingID, approverID uint, resolution string) (*models.Booking, error) {
	if resolution != domain.ResolutionReleased && resolution != domain.ResolutionRefunded {
		return nil, domain.NewValidationError("resolution", "must be released or refunded")
	}
	b, err := s.loadForResolution(bookingID, domain.BookingDisputed)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	if resolution == domain.ResolutionReleased {
		var out releaseOutcome
		err = s.db.Transaction(func(tx *gorm.DB) error {
			out, err = s.releaseLocked(tx, b, approverID, &resolution, now)
			return err
		})
		if err != nil {
			s.recordAudit("booking.resolve", &approverID, fmt.Sprintf("resolve booking %d failed: %v", bookingID, err), "failure", nil)
			return nil, err
		}
		s.afterRelease(b, approverID, out)
		return s.reload(bookingID, b)
	}
	err = s.db.Transaction(func(tx *gorm.DB) error {
		return s.refundLocked(tx, b, approverID, "dispute resolved in customer's favor", &resolution, now)
	})
	if err != nil {
		s.recordAudit("booking.resolve", &approverID, fmt.Sprintf("resolve booking %d failed: %v", bookingID, err), "failure", nil)
		return nil, err
	}
	s.afterRefund(b, approverID)
	return s.reload(bookingID, b)
}

// loadForResolution fetches the booking and applies the uniform precondition
// discipline: terminal bookings are rejected with ErrAlreadyResolved so a
// retried admin click surfaces "already done", anything outside wantStatus
// with ErrInvalidState.
func (s *EscrowService) loadForResolution(bookingID uint, wantStatus string) (*models.Booking, error) {
	b, err := repository.NewBookingRepository(s.db).GetByID(bookingID)
	if err != nil {
		return nil, err
	}
	if b.IsTerminal() {
		return nil, domain.ErrAlreadyResolved
	}
	if b.Status != wantStatus || b.HoldTransactionID == nil {
		return nil, domain.ErrInvalidState
	}
	return b, nil
}

type releaseOutcome struct {
	NetCents        int64
	CommissionCents int64
}

// releaseLocked applies the ledger and wallet half of a release inside tx.
// The hold transaction CAS comes first: the loser of a race observes an
// already transitioned status and aborts before touching any wallet.
func (s *EscrowService) releaseLocked(tx *gorm.DB, b *models.Booking, approverID uint, resolution *string, now time.Time) (releaseOutcome, error) {
	if b.HoldTransactionID == nil {
		return releaseOutcome{}, domain.ErrInvalidState
	}
	ledger := repository.NewLedgerRepository(tx)
	wallets := repository.NewWalletRepository(tx)
	bookings := repository.NewBookingRepository(tx)

	if _, err := ledger.Transition(*b.HoldTransactionID,
		[]string{domain.TxStatusHeld}, domain.TxStatusReleased,
		map[string]interface{}{"approved_by": approverID}); err != nil {
		if errors.Is(err, domain.ErrInvalidTransition) {
			return releaseOutcome{}, domain.ErrAlreadyResolved
		}
		return releaseOutcome{}, err
	}

	commission, net, err := Split(b.PriceCents, b.CommissionRatePct)
	if err != nil {
		return releaseOutcome{}, err
	}

	reason := fmt.Sprintf("earning released for booking %d", b.ID)
	var releaseTxID uint
	if b.ReleaseTransactionID != nil {
		// Placeholder created at hold time: finalize it.
		if _, err := ledger.Transition(*b.ReleaseTransactionID,
			[]string{domain.TxStatusPending}, domain.TxStatusApproved,
			map[string]interface{}{"reason": reason, "approved_by": approverID}); err != nil {
			return releaseOutcome{}, err
		}
		releaseTxID = *b.ReleaseTransactionID
	} else {
		// Older bookings have no placeholder: append the earning row.
		earning := &models.Transaction{
			Kind:        domain.TxKindBookingEarning,
			AmountCents: net,
			Status:      domain.TxStatusApproved,
			ModelID:     &b.ModelID,
			BookingID:   &b.ID,
			Reason:      reason,
			ApprovedBy:  &approverID,
		}
		if err := ledger.Append(earning); err != nil {
			return releaseOutcome{}, err
		}
		releaseTxID = earning.ID
	}

	mw, err := wallets.EnsureModelWallet(b.ModelID)
	if err != nil {
		return releaseOutcome{}, err
	}
	if err := wallets.Credit(mw.ID, repository.FieldTotalBalance, net); err != nil {
		return releaseOutcome{}, err
	}
	if err := wallets.Credit(mw.ID, repository.FieldTotalDeposit, net); err != nil {
		return releaseOutcome{}, err
	}
	if err := wallets.DebitPendingClamped(mw.ID, net); err != nil {
		return releaseOutcome{}, err
	}

	fields := map[string]interface{}{
		"status":                 domain.BookingCompleted,
		"payment_status":         domain.PaymentReleased,
		"completed_at":           now,
		"release_transaction_id": releaseTxID,
	}
	if resolution != nil {
		fields["dispute_resolution"] = *resolution
		fields["dispute_resolved_at"] = now
	}
	if err := bookings.UpdateFields(b.ID, fields); err != nil {
		return releaseOutcome{}, err
	}
	return releaseOutcome{NetCents: net, CommissionCents: commission}, nil
}

// refundLocked applies the ledger and wallet half of a refund inside tx.
func (s *EscrowService) refundLocked(tx *gorm.DB, b *models.Booking, approverID uint, reason string, resolution *string, now time.Time) error {
	if b.HoldTransactionID == nil {
		return domain.ErrInvalidState
	}
	ledger := repository.NewLedgerRepository(tx)
	wallets := repository.NewWalletRepository(tx)
	bookings := repository.NewBookingRepository(tx)

	cw, err := wallets.RequireCustomerWallet(b.CustomerID)
	if err != nil {
		return err
	}

	if _, err := ledger.Transition(*b.HoldTransactionID,
		[]string{domain.TxStatusHeld}, domain.TxStatusRefunded,
		map[string]interface{}{"approved_by": approverID, "reason": reason}); err != nil {
		if errors.Is(err, domain.ErrInvalidTransition) {
			return domain.ErrAlreadyResolved
		}
		return err
	}

	if reason == "" {
		reason = fmt.Sprintf("refund for booking %d", b.ID)
	}
	refund := &models.Transaction{
		Kind:        domain.TxKindBookingRefund,
		AmountCents: b.PriceCents,
		Status:      domain.TxStatusApproved,
		CustomerID:  &b.CustomerID,
		BookingID:   &b.ID,
		Reason:      reason,
		ApprovedBy:  &approverID,
	}
	if err := ledger.Append(refund); err != nil {
		return err
	}
	if err := wallets.Credit(cw.ID, repository.FieldTotalRefunded, b.PriceCents); err != nil {
		return err
	}

	// Wind back the model-side pending estimate by what the release would
	// have paid, not the gross price.
	if b.ReleaseTransactionID != nil {
		if _, err := ledger.Transition(*b.ReleaseTransactionID,
			[]string{domain.TxStatusPending}, domain.TxStatusRefunded,
			map[string]interface{}{"reason": reason}); err != nil && !errors.Is(err, domain.ErrInvalidTransition) {
			return err
		}
		_, net, err := Split(b.PriceCents, b.CommissionRatePct)
		if err != nil {
			return err
		}
		mw, err := wallets.EnsureModelWallet(b.ModelID)
		if err != nil {
			return err
		}
		if err := wallets.DebitPendingClamped(mw.ID, net); err != nil {
			return err
		}
	}

	fields := map[string]interface{}{
		"status":         domain.BookingCancelled,
		"payment_status": domain.PaymentRefunded,
	}
	if resolution != nil {
		fields["dispute_resolution"] = *resolution
		fields["dispute_resolved_at"] = now
	}
	return bookings.UpdateFields(b.ID, fields)
}

// afterRelease runs the post-commit side effects of a successful release.
// The referral cascade is tied to the hold CAS that just succeeded, so it
// runs at most once per booking completion; its failure must never make a
// paid booking unpaid, so it is logged and swallowed.
func (s *EscrowService) afterRelease(b *models.Booking, approverID uint, out releaseOutcome) {
	referralAmount, referrerID, err := s.referrals.RewardBookingCompletion(b)
	if err != nil {
		logrus.WithError(err).WithField("booking_id", b.ID).Warn("referral cascade failed")
	}
	s.notifyQuiet(s.notifier.NotifyBookingCompleted(b.CustomerID, b.ID))
	s.notifyQuiet(s.notifier.NotifyEarningReleased(b.ModelID, b.ID, out.NetCents))
	if referralAmount > 0 {
		s.notifyQuiet(s.notifier.NotifyReferralCommission(referrerID, b.ID, referralAmount))
	}
	s.recordAudit("booking.release", &approverID,
		fmt.Sprintf("released %d (commission %d) for booking %d", out.NetCents, out.CommissionCents, b.ID),
		"success", out)
}

func (s *EscrowService) afterRefund(b *models.Booking, approverID uint) {
	s.notifyQuiet(s.notifier.NotifyBookingRefunded(b.CustomerID, b.ID, b.PriceCents))
	s.notifyQuiet(s.notifier.NotifyBookingCancelled(b.ModelID, b.ID))
	s.recordAudit("booking.refund", &approverID,
		fmt.Sprintf("refunded %d for booking %d", b.PriceCents, b.ID), "success", nil)
}

func (s *EscrowService) reload(bookingID uint, fallback *models.Booking) (*models.Booking, error) {
	b, err := repository.NewBookingRepository(s.db).GetByID(bookingID)
	if err != nil {
		return fallback, nil
	}
	return b, nil
}

func (s *EscrowService) notifyQuiet(err error) {
	if err != nil {
		logrus.WithError(err).Warn("notification intent failed")
	}
}

func (s *EscrowService) recordAudit(action string, actorID *uint, description, status string, payload interface{}) {
	if s.audit == nil {
		return
	}
	if err := s.audit.Record(action, actorID, description, status, payload); err != nil {
		logrus.WithError(err).WithField("action", action).Warn("audit write failed")
	}
}
