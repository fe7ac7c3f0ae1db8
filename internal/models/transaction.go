package models

import (
	"time"
)

// Transaction is one row of the money ledger. Rows are append-only: after
// creation only status, reason and approved_by may change, and a row is
// never deleted. Amounts are in the smallest currency unit.
type Transaction struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	Reference       string    `gorm:"uniqueIndex;size:64;not null" json:"reference"`
	Kind            string    `gorm:"size:30;not null;index" json:"kind"`
	AmountCents     int64     `gorm:"not null" json:"amount_cents"`
	CommissionCents int64     `gorm:"not null;default:0" json:"commission_cents"`
	FeeCents        int64     `gorm:"not null;default:0" json:"fee_cents"`
	Status          string    `gorm:"size:20;not null;index" json:"status"`
	CustomerID      *uint     `gorm:"index" json:"customer_id"`
	ModelID         *uint     `gorm:"index" json:"model_id"`
	BookingID       *uint     `gorm:"index" json:"booking_id"`
	Reason          string    `gorm:"size:255" json:"reason"`
	ApprovedBy      *uint     `json:"approved_by"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func (Transaction) TableName() string { return "transactions" }
