package service

import (
	"fmt"

	"allure/internal/domain"
	"allure/internal/models"
	"allure/internal/repository"

	"gorm.io/gorm"
)

// WalletService covers the non-booking money movements: customer top-ups and
// model payouts. Same rule as everywhere: the ledger row and the wallet
// counter move in one transaction.
type WalletService struct {
	db      *gorm.DB
	wallets *repository.WalletRepository
}

func NewWalletService(db *gorm.DB, wallets *repository.WalletRepository) *WalletService {
	return &WalletService{db: db, wallets: wallets}
}

// Recharge credits a customer wallet after an approved top-up.
func (s *WalletService) Recharge(customerID uint, amountCents int64, approverID uint) (*models.Transaction, error) {
	if amountCents <= 0 {
		return nil, domain.NewValidationError("amount_cents", "must be positive")
	}
	w, err := s.wallets.RequireCustomerWallet(customerID)
	if err != nil {
		return nil, err
	}
	t := &models.Transaction{
		Kind:        domain.TxKindRecharge,
		AmountCents: amountCents,
		Status:      domain.TxStatusApproved,
		CustomerID:  &customerID,
		Reason:      fmt.Sprintf("wallet recharge %d", amountCents),
		ApprovedBy:  &approverID,
	}
	err = s.db.Transaction(func(tx *gorm.DB) error {
		wallets := repository.NewWalletRepository(tx)
		if err := repository.NewLedgerRepository(tx).Append(t); err != nil {
			return err
		}
		if err := wallets.Credit(w.ID, repository.FieldTotalBalance, amountCents); err != nil {
			return err
		}
		return wallets.Credit(w.ID, repository.FieldTotalRecharge, amountCents)
	})
	if err != nil {
		return nil, err
	}
	return t, nil
}

// Withdraw pays out from a model wallet, guarded by the derived withdrawable
// balance.
func (s *WalletService) Withdraw(modelID uint, amountCents int64, approverID uint) (*models.Transaction, error) {
	if amountCents <= 0 {
		return nil, domain.NewValidationError("amount_cents", "must be positive")
	}
	w, err := s.wallets.GetByOwner(models.ModelRef(modelID))
	if err != nil {
		return nil, err
	}
	t := &models.Transaction{
		Kind:        domain.TxKindWithdrawal,
		AmountCents: amountCents,
		Status:      domain.TxStatusApproved,
		ModelID:     &modelID,
		Reason:      fmt.Sprintf("withdrawal %d", amountCents),
		ApprovedBy:  &approverID,
	}
	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := repository.NewWalletRepository(tx).Withdraw(w.ID, amountCents); err != nil {
			return err
		}
		return repository.NewLedgerRepository(tx).Append(t)
	})
	if err != nil {
		return nil, err
	}
	return t, nil
}
