package service

import (
	"errors"
	"fmt"

	"allure/internal/domain"
	"allure/internal/models"
	"allure/internal/repository"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// ReferralService pays referrers. Two distinct payouts exist: the one-time
// signup bonus guarded by the referral_reward_paid flag, and the per-booking
// commission cascade that runs after every successful release.
type ReferralService struct {
	db       *gorm.DB
	profiles *repository.ModelProfileRepository
	settings *repository.SettingRepository
}

func NewReferralService(db *gorm.DB, profiles *repository.ModelProfileRepository, settings *repository.SettingRepository) *ReferralService {
	return &ReferralService{db: db, profiles: profiles, settings: settings}
}

// RewardBookingCompletion pays the model's referrer a tier-rated share of
// the gross booking price. The amount is additive to the commission/net
// split: it is new platform money, not carved out of the model's payout,
// so net + commission + referral may exceed the price. Callers guarantee
// at-most-once execution by tying this to the hold transaction CAS; the
// cascade itself does not re-check.
func (s *ReferralService) RewardBookingCompletion(b *models.Booking) (int64, uint, error) {
	profile, err := s.profiles.GetByUserID(b.ModelID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return 0, 0, nil
		}
		return 0, 0, err
	}
	if profile.ReferredByID == nil {
		return 0, 0, nil
	}
	referrerID := *profile.ReferredByID
	referrer, err := s.profiles.GetByUserID(referrerID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			logrus.WithField("referrer_id", referrerID).Warn("referrer has no model profile, skipping cascade")
			return 0, 0, nil
		}
		return 0, 0, err
	}
	rate := s.tierRatePct(referrer.ReferralTier)
	amount := b.PriceCents * int64(rate) / 100
	if amount <= 0 {
		return 0, 0, nil
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		ledger := repository.NewLedgerRepository(tx)
		wallets := repository.NewWalletRepository(tx)
		w, err := wallets.EnsureModelWallet(referrerID)
		if err != nil {
			return err
		}
		t := &models.Transaction{
			Kind:        domain.TxKindBookingReferral,
			AmountCents: amount,
			Status:      domain.TxStatusApproved,
			ModelID:     &referrerID,
			BookingID:   &b.ID,
			Reason:      fmt.Sprintf("referral commission for booking %d", b.ID),
		}
		if err := ledger.Append(t); err != nil {
			return err
		}
		if err := wallets.Credit(w.ID, repository.FieldTotalBalance, amount); err != nil {
			return err
		}
		return wallets.Credit(w.ID, repository.FieldTotalDeposit, amount)
	})
	if err != nil {
		return 0, 0, err
	}
	return amount, referrerID, nil
}

// PaySignupBonus pays the one-time bonus for referring a model who got
// approved. The referral_reward_paid flag is flipped by compare-and-swap in
// the same transaction as the payout, so retries are no-ops.
func (s *ReferralService) PaySignupBonus(modelUserID uint) error {
	profile, err := s.profiles.GetByUserID(modelUserID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil
		}
		return err
	}
	if profile.ReferredByID == nil || profile.ReferralRewardPaid {
		return nil
	}
	referrerID := *profile.ReferredByID
	bonus := int64(s.settings.GetInt(domain.SettingReferralSignupBonus, 50000))
	if bonus <= 0 {
		return nil
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		profiles := repository.NewModelProfileRepository(tx)
		won, err := profiles.ClaimSignupReward(modelUserID)
		if err != nil {
			return err
		}
		if !won {
			return nil
		}
		ledger := repository.NewLedgerRepository(tx)
		wallets := repository.NewWalletRepository(tx)
		w, err := wallets.EnsureModelWallet(referrerID)
		if err != nil {
			return err
		}
		t := &models.Transaction{
			Kind:        domain.TxKindReferral,
			AmountCents: bonus,
			Status:      domain.TxStatusApproved,
			ModelID:     &referrerID,
			Reason:      fmt.Sprintf("signup bonus for referring model %d", modelUserID),
		}
		if err := ledger.Append(t); err != nil {
			return err
		}
		if err := wallets.Credit(w.ID, repository.FieldTotalBalance, bonus); err != nil {
			return err
		}
		return wallets.Credit(w.ID, repository.FieldTotalDeposit, bonus)
	})
}

func (s *ReferralService) tierRatePct(tier string) int {
	switch tier {
	case domain.TierPartner:
		return s.settings.GetInt(domain.SettingReferralRatePartner, 4)
	default:
		return s.settings.GetInt(domain.SettingReferralRateSpecial, 2)
	}
}
