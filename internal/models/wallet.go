package models

import (
	"time"

	"gorm.io/gorm"
)

// OwnerRef identifies the owner of a wallet or ledger row: exactly one of
// CustomerID / ModelID is set, never both.
type OwnerRef struct {
	CustomerID *uint
	ModelID    *uint
}

func CustomerRef(id uint) OwnerRef { return OwnerRef{CustomerID: &id} }
func ModelRef(id uint) OwnerRef    { return OwnerRef{ModelID: &id} }

func (o OwnerRef) Valid() bool {
	return (o.CustomerID != nil) != (o.ModelID != nil)
}

// Wallet is a per-owner aggregate over the ledger. The balances here are a
// performance cache; the ledger is the source of truth and every mutation of
// these counters happens in the same database transaction as the matching
// ledger write.
//
// Invariants: every counter stays >= 0. Model available funds are derived as
// total_balance - total_withdraw; customer available funds as
// total_balance - total_spend + total_refunded. Neither is stored.
type Wallet struct {
	ID                 uint           `gorm:"primaryKey" json:"id"`
	CustomerID         *uint          `gorm:"uniqueIndex" json:"customer_id"`
	ModelID            *uint          `gorm:"uniqueIndex" json:"model_id"`
	TotalBalanceCents  int64          `gorm:"not null;default:0" json:"total_balance_cents"`
	TotalRechargeCents int64          `gorm:"not null;default:0" json:"total_recharge_cents"` // customer lifetime inflow
	TotalDepositCents  int64          `gorm:"not null;default:0" json:"total_deposit_cents"`  // model lifetime inflow
	TotalPendingCents  int64          `gorm:"not null;default:0" json:"total_pending_cents"`  // model: earned, not yet released
	TotalWithdrawCents int64          `gorm:"not null;default:0" json:"total_withdraw_cents"` // model lifetime outflow
	TotalSpendCents    int64          `gorm:"not null;default:0" json:"total_spend_cents"`    // customer lifetime outflow
	TotalRefundedCents int64          `gorm:"not null;default:0" json:"total_refunded_cents"` // customer refunds returned
	Status             string         `gorm:"size:20;not null;default:'active'" json:"status"` // active | suspended
	CreatedAt          time.Time      `json:"created_at"`
	UpdatedAt          time.Time      `json:"updated_at"`
	DeletedAt          gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Wallet) TableName() string { return "wallets" }

// AvailableCents returns spendable (customer) or withdrawable (model) funds.
func (w *Wallet) AvailableCents() int64 {
	if w.ModelID != nil {
		return w.TotalBalanceCents - w.TotalWithdrawCents
	}
	return w.TotalBalanceCents - w.TotalSpendCents + w.TotalRefundedCents
}
