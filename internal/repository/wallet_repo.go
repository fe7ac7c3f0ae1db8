package repository

import (
	"errors"

	"allure/internal/domain"
	"allure/internal/models"

	"gorm.io/gorm"
)

// BalanceField names a wallet counter that Credit/Debit may touch. Keeping
// this a closed set avoids column names leaking in from request input.
type BalanceField string

const (
	FieldTotalBalance  BalanceField = "total_balance_cents"
	FieldTotalRecharge BalanceField = "total_recharge_cents"
	FieldTotalDeposit  BalanceField = "total_deposit_cents"
	FieldTotalPending  BalanceField = "total_pending_cents"
	FieldTotalWithdraw BalanceField = "total_withdraw_cents"
	FieldTotalSpend    BalanceField = "total_spend_cents"
	FieldTotalRefunded BalanceField = "total_refunded_cents"
)

// WalletRepository is the wallet projector: it keeps the per-owner aggregate
// counters in lockstep with ledger writes. Callers run it on the same
// *gorm.DB transaction handle as the matching LedgerRepository calls.
type WalletRepository struct {
	db *gorm.DB
}

func NewWalletRepository(db *gorm.DB) *WalletRepository {
	return &WalletRepository{db: db}
}

func (r *WalletRepository) GetByID(id uint) (*models.Wallet, error) {
	var w models.Wallet
	if err := r.db.First(&w, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &w, nil
}

func (r *WalletRepository) GetByOwner(owner models.OwnerRef) (*models.Wallet, error) {
	if !owner.Valid() {
		return nil, domain.NewValidationError("owner", "exactly one of customer_id/model_id must be set")
	}
	var w models.Wallet
	q := r.db
	if owner.CustomerID != nil {
		q = q.Where("customer_id = ?", *owner.CustomerID)
	} else {
		q = q.Where("model_id = ?", *owner.ModelID)
	}
	if err := q.First(&w).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &w, nil
}

// Create inserts a zero-balance active wallet for the owner. Exactly one
// active wallet per owner: a second create is rejected up front and the
// unique index backs this under races.
func (r *WalletRepository) Create(owner models.OwnerRef) (*models.Wallet, error) {
	if _, err := r.GetByOwner(owner); err == nil {
		return nil, domain.ErrDuplicateWallet
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}
	w := &models.Wallet{
		CustomerID: owner.CustomerID,
		ModelID:    owner.ModelID,
		Status:     domain.WalletActive,
	}
	if err := r.db.Create(w).Error; err != nil {
		return nil, err
	}
	return w, nil
}

// EnsureModelWallet returns the model's wallet, creating a zero-balance one
// if none exists yet. A model approved without any balance-affecting action
// may legitimately have no wallet.
func (r *WalletRepository) EnsureModelWallet(modelID uint) (*models.Wallet, error) {
	w, err := r.GetByOwner(models.ModelRef(modelID))
	if err == nil {
		return w, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}
	return r.Create(models.ModelRef(modelID))
}

// RequireCustomerWallet returns the customer's wallet. Customer wallets are
// created at signup, so absence is a hard failure, never an auto-create.
func (r *WalletRepository) RequireCustomerWallet(customerID uint) (*models.Wallet, error) {
	w, err := r.GetByOwner(models.CustomerRef(customerID))
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.ErrMissingWallet
	}
	return w, err
}

// Credit atomically adds amount to one wallet counter.
func (r *WalletRepository) Credit(walletID uint, field BalanceField, amount int64) error {
	if amount < 0 {
		return domain.NewValidationError("amount", "must be non-negative")
	}
	res := r.db.Model(&models.Wallet{}).
		Where("id = ?", walletID).
		UpdateColumn(string(field), gorm.Expr(string(field)+" + ?", amount))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Debit atomically subtracts amount from one wallet counter, failing with
// ErrInsufficientFunds when the counter would go below zero.
func (r *WalletRepository) Debit(walletID uint, field BalanceField, amount int64) error {
	if amount < 0 {
		return domain.NewValidationError("amount", "must be non-negative")
	}
	res := r.db.Model(&models.Wallet{}).
		Where("id = ? AND "+string(field)+" >= ?", walletID, amount).
		UpdateColumn(string(field), gorm.Expr(string(field)+" - ?", amount))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		if _, err := r.GetByID(walletID); err != nil {
			return err
		}
		return domain.ErrInsufficientFunds
	}
	return nil
}

// DebitPendingClamped subtracts from total_pending, clamping at zero instead
// of erroring. Commission-rate edits between hold and release can leave the
// tracked pending estimate slightly stale; total_pending is the only field
// allowed this treatment.
func (r *WalletRepository) DebitPendingClamped(walletID uint, amount int64) error {
	err := r.Debit(walletID, FieldTotalPending, amount)
	if !errors.Is(err, domain.ErrInsufficientFunds) {
		return err
	}
	return r.db.Model(&models.Wallet{}).
		Where("id = ?", walletID).
		UpdateColumn("total_pending_cents", 0).Error
}

// Withdraw records a model outflow, guarded by the derived withdrawable
// balance (total_balance - total_withdraw) and an active wallet status, in
// one atomic statement.
func (r *WalletRepository) Withdraw(walletID uint, amount int64) error {
	if amount < 0 {
		return domain.NewValidationError("amount", "must be non-negative")
	}
	res := r.db.Model(&models.Wallet{}).
		Where("id = ? AND status = ? AND total_balance_cents - total_withdraw_cents >= ?",
			walletID, domain.WalletActive, amount).
		UpdateColumn("total_withdraw_cents", gorm.Expr("total_withdraw_cents + ?", amount))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		w, err := r.GetByID(walletID)
		if err != nil {
			return err
		}
		if w.Status != domain.WalletActive {
			return domain.ErrWalletSuspended
		}
		return domain.ErrInsufficientFunds
	}
	return nil
}

// SetStatus suspends or reactivates a wallet.
func (r *WalletRepository) SetStatus(walletID uint, status string) error {
	if status != domain.WalletActive && status != domain.WalletSuspended {
		return domain.NewValidationError("status", "must be active or suspended")
	}
	res := r.db.Model(&models.Wallet{}).Where("id = ?", walletID).Update("status", status)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Spend records a customer outflow of price, guarded by the derived
// available balance (total_balance - total_spend + total_refunded) and an
// active wallet status, in one atomic statement.
func (r *WalletRepository) Spend(walletID uint, price int64) error {
	if price < 0 {
		return domain.NewValidationError("price", "must be non-negative")
	}
	res := r.db.Model(&models.Wallet{}).
		Where("id = ? AND status = ? AND total_balance_cents - total_spend_cents + total_refunded_cents >= ?",
			walletID, domain.WalletActive, price).
		UpdateColumn("total_spend_cents", gorm.Expr("total_spend_cents + ?", price))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		w, err := r.GetByID(walletID)
		if err != nil {
			return err
		}
		if w.Status != domain.WalletActive {
			return domain.ErrWalletSuspended
		}
		return domain.ErrInsufficientFunds
	}
	return nil
}
