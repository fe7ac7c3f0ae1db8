package models

import (
	"time"

	"gorm.io/gorm"
)

// ModelProfile is the earning side of the marketplace. CommissionRatePct is
// the platform's current cut for this model's bookings; bookings snapshot it
// at hold time, so later edits never change a booking already in flight.
type ModelProfile struct {
	ID                uint           `gorm:"primaryKey" json:"id"`
	UserID            uint           `gorm:"uniqueIndex;not null" json:"user_id"`
	DisplayName       string         `gorm:"size:100" json:"display_name"`
	CommissionRatePct int            `gorm:"not null;default:20" json:"commission_rate_pct"`
	ReferredByID      *uint          `gorm:"index" json:"referred_by_id"` // user id of the referring model
	ReferralTier      string         `gorm:"size:20;default:'special'" json:"referral_tier"` // special | partner
	ReferralRewardPaid bool          `gorm:"not null;default:false" json:"referral_reward_paid"`
	CreatedAt         time.Time      `json:"created_at"`
	UpdatedAt         time.Time      `json:"updated_at"`
	DeletedAt         gorm.DeletedAt `gorm:"index" json:"-"`

	User       User  `gorm:"foreignKey:UserID" json:"-"`
	ReferredBy *User `gorm:"foreignKey:ReferredByID" json:"-"`
}

func (ModelProfile) TableName() string { return "model_profiles" }
