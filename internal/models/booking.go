package models

import (
	"time"

	"allure/internal/domain"

	"gorm.io/gorm"
)

// Booking is one paid engagement between a customer and a model. It
// references exactly one hold transaction and at most one release
// transaction in the ledger. Once terminal (completed/cancelled) its payment
// fields are immutable.
type Booking struct {
	ID                   uint           `gorm:"primaryKey" json:"id"`
	CustomerID           uint           `gorm:"not null;index" json:"customer_id"`
	ModelID              uint           `gorm:"not null;index" json:"model_id"`
	PriceCents           int64          `gorm:"not null" json:"price_cents"`
	CommissionRatePct    int            `gorm:"not null" json:"commission_rate_pct"` // snapshot taken at hold time
	Status               string         `gorm:"size:20;not null;index" json:"status"`         // pending, confirmed, disputed, completed, cancelled
	PaymentStatus        string         `gorm:"size:20;not null;index" json:"payment_status"` // pending, held, released, refunded
	HoldTransactionID    *uint          `gorm:"index" json:"hold_transaction_id"`
	ReleaseTransactionID *uint          `gorm:"index" json:"release_transaction_id"`
	DisputeReason        string         `gorm:"size:255" json:"dispute_reason"`
	DisputeResolution    *string        `gorm:"size:20" json:"dispute_resolution"` // released | refunded
	DisputeResolvedAt    *time.Time     `json:"dispute_resolved_at"`
	CompletedAt          *time.Time     `json:"completed_at"`
	CreatedAt            time.Time      `json:"created_at"`
	UpdatedAt            time.Time      `json:"updated_at"`
	DeletedAt            gorm.DeletedAt `gorm:"index" json:"-"`

	Customer User `gorm:"foreignKey:CustomerID" json:"-"`
	Model    User `gorm:"foreignKey:ModelID" json:"-"`
}

func (Booking) TableName() string { return "bookings" }

func (b *Booking) IsTerminal() bool { return domain.IsTerminalBooking(b.Status) }
