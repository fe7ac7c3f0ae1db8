package repository

import (
	"time"

	"allure/internal/models"

	"gorm.io/gorm"
)

// LeaseRepository manages scheduler lease rows. Jobs claim a named lease via
// compare-and-swap before running, which replaces in-process "is running"
// flags and stays correct across multiple server instances.
type LeaseRepository struct {
	db *gorm.DB
}

func NewLeaseRepository(db *gorm.DB) *LeaseRepository {
	return &LeaseRepository{db: db}
}

// Claim attempts to take the named lease for ttl. It succeeds when the lease
// is unheld, expired, or already held by the same holder (renewal).
func (r *LeaseRepository) Claim(name, holder string, ttl time.Duration, now time.Time) (bool, error) {
	lease := models.SchedulerLease{Name: name, ExpiresAt: now}
	if err := r.db.Where("name = ?", name).FirstOrCreate(&lease).Error; err != nil {
		return false, err
	}
	res := r.db.Model(&models.SchedulerLease{}).
		Where("name = ? AND (holder = '' OR holder = ? OR expires_at <= ?)", name, holder, now).
		Updates(map[string]interface{}{"holder": holder, "expires_at": now.Add(ttl)})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// Release gives the lease back; a holder mismatch is a no-op.
func (r *LeaseRepository) Release(name, holder string) error {
	return r.db.Model(&models.SchedulerLease{}).
		Where("name = ? AND holder = ?", name, holder).
		Updates(map[string]interface{}{"holder": "", "expires_at": time.Now()}).Error
}
