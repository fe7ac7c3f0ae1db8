package domain

const (
	RoleCustomer = "CUSTOMER"
	RoleModel    = "MODEL"
	RoleAdmin    = "ADMIN"
)

// Transaction kinds. One ledger row per monetary event.
const (
	TxKindRecharge             = "recharge"
	TxKindWithdrawal           = "withdrawal"
	TxKindPayment              = "payment"
	TxKindBookingHold          = "booking_hold"
	TxKindBookingRefund        = "booking_refund"
	TxKindBookingEarning       = "booking_earning"
	TxKindBookingReferral      = "booking_referral"
	TxKindSubscription         = "subscription"
	TxKindSubscriptionReferral = "subscription_referral"
	TxKindReferral             = "referral"
)

// Transaction statuses. A row only moves forward along kind-specific paths
// and is never deleted.
const (
	TxStatusPending  = "pending"
	TxStatusHeld     = "held"
	TxStatusApproved = "approved"
	TxStatusReleased = "released"
	TxStatusRefunded = "refunded"
	TxStatusRejected = "rejected"
)

const (
	BookingPending   = "pending"
	BookingConfirmed = "confirmed"
	BookingDisputed  = "disputed"
	BookingCompleted = "completed"
	BookingCancelled = "cancelled"
)

const (
	PaymentPending  = "pending"
	PaymentHeld     = "held"
	PaymentReleased = "released"
	PaymentRefunded = "refunded"
)

const (
	ResolutionReleased = "released"
	ResolutionRefunded = "refunded"
)

const (
	WalletActive    = "active"
	WalletSuspended = "suspended"
)

// Referrer tiers for the per-booking referral cascade. The tier rate applies
// to the gross booking price, not the net.
const (
	TierSpecial = "special"
	TierPartner = "partner"
)

// System setting keys.
const (
	SettingReferralRateSpecial    = "referral_rate_special_pct"
	SettingReferralRatePartner    = "referral_rate_partner_pct"
	SettingReferralSignupBonus    = "referral_signup_bonus_cents"
	SettingBookingPendingTTLHours = "booking_pending_ttl_hours"
)

// IsTerminalBooking reports whether a booking status admits no further
// payment mutations.
func IsTerminalBooking(status string) bool {
	return status == BookingCompleted || status == BookingCancelled
}
