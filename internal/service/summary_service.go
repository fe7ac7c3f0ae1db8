package service

import (
	"allure/internal/domain"
	"allure/internal/models"
	"allure/internal/repository"
)

// WalletSummary is a full financial picture of one wallet, recomputed from
// the ledger. The cached wallet counters ride along so dashboards can spot
// drift between the cache and the ledger truth.
type WalletSummary struct {
	WalletID       uint   `json:"wallet_id"`
	OwnerRole      string `json:"owner_role"`
	OwnerID        uint   `json:"owner_id"`
	Status         string `json:"status"`
	AvailableCents int64  `json:"available_cents"`

	// Model side.
	EarningsCents  int64 `json:"earnings_cents,omitempty"`
	PendingCents   int64 `json:"pending_cents,omitempty"`
	WithdrawnCents int64 `json:"withdrawn_cents,omitempty"`

	// Customer side.
	RechargedCents int64 `json:"recharged_cents,omitempty"`
	SpentCents     int64 `json:"spent_cents,omitempty"`
	RefundedCents  int64 `json:"refunded_cents,omitempty"`

	Cached *models.Wallet `json:"cached"`
}

// SummaryService answers wallet summary queries by re-summing the ledger
// rather than trusting the cached counters.
type SummaryService struct {
	wallets *repository.WalletRepository
	ledger  *repository.LedgerRepository
}

func NewSummaryService(wallets *repository.WalletRepository, ledger *repository.LedgerRepository) *SummaryService {
	return &SummaryService{wallets: wallets, ledger: ledger}
}

func (s *SummaryService) GetWalletSummary(walletID uint) (*WalletSummary, error) {
	w, err := s.wallets.GetByID(walletID)
	if err != nil {
		return nil, err
	}
	if w.ModelID != nil {
		return s.modelSummary(w)
	}
	if w.CustomerID != nil {
		return s.customerSummary(w)
	}
	return nil, domain.ErrInvalidState
}

func (s *SummaryService) modelSummary(w *models.Wallet) (*WalletSummary, error) {
	owner := models.ModelRef(*w.ModelID)
	earnings, err := s.ledger.SumByOwnerAndKind(owner,
		[]string{domain.TxKindBookingEarning, domain.TxKindBookingReferral, domain.TxKindReferral},
		[]string{domain.TxStatusApproved, domain.TxStatusReleased}, nil, nil)
	if err != nil {
		return nil, err
	}
	pending, err := s.ledger.SumByOwnerAndKind(owner,
		[]string{domain.TxKindBookingEarning},
		[]string{domain.TxStatusPending}, nil, nil)
	if err != nil {
		return nil, err
	}
	withdrawn, err := s.ledger.SumByOwnerAndKind(owner,
		[]string{domain.TxKindWithdrawal},
		[]string{domain.TxStatusApproved}, nil, nil)
	if err != nil {
		return nil, err
	}
	return &WalletSummary{
		WalletID:       w.ID,
		OwnerRole:      domain.RoleModel,
		OwnerID:        *w.ModelID,
		Status:         w.Status,
		AvailableCents: earnings - withdrawn,
		EarningsCents:  earnings,
		PendingCents:   pending,
		WithdrawnCents: withdrawn,
		Cached:         w,
	}, nil
}

func (s *SummaryService) customerSummary(w *models.Wallet) (*WalletSummary, error) {
	owner := models.CustomerRef(*w.CustomerID)
	recharged, err := s.ledger.SumByOwnerAndKind(owner,
		[]string{domain.TxKindRecharge},
		[]string{domain.TxStatusApproved}, nil, nil)
	if err != nil {
		return nil, err
	}
	// Held money is already spent from the customer's point of view; the
	// refund row gives it back, so refunded holds stay counted here.
	spent, err := s.ledger.SumByOwnerAndKind(owner,
		[]string{domain.TxKindBookingHold, domain.TxKindPayment, domain.TxKindSubscription},
		[]string{domain.TxStatusHeld, domain.TxStatusReleased, domain.TxStatusRefunded, domain.TxStatusApproved}, nil, nil)
	if err != nil {
		return nil, err
	}
	refunded, err := s.ledger.SumByOwnerAndKind(owner,
		[]string{domain.TxKindBookingRefund},
		[]string{domain.TxStatusApproved}, nil, nil)
	if err != nil {
		return nil, err
	}
	return &WalletSummary{
		WalletID:       w.ID,
		OwnerRole:      domain.RoleCustomer,
		OwnerID:        *w.CustomerID,
		Status:         w.Status,
		AvailableCents: recharged - spent + refunded,
		RechargedCents: recharged,
		SpentCents:     spent,
		RefundedCents:  refunded,
		Cached:         w,
	}, nil
}
