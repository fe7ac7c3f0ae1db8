package service

import "allure/internal/domain"

// Split computes the platform commission and the net payout for a booking
// price at a commission rate. Rounding floors the commission in the
// platform's favor, so commission + net == price holds exactly for every
// valid input. The rate is always the snapshot taken at hold time.
func Split(priceCents int64, ratePct int) (commissionCents, netCents int64, err error) {
	if priceCents < 0 {
		return 0, 0, domain.NewValidationError("price_cents", "must be non-negative")
	}
	if ratePct < 0 || ratePct > 100 {
		return 0, 0, domain.NewValidationError("commission_rate_pct", "must be within [0, 100]")
	}
	commissionCents = priceCents * int64(ratePct) / 100
	return commissionCents, priceCents - commissionCents, nil
}
