package repository

import (
	"errors"
	"time"

	"allure/internal/domain"
	"allure/internal/models"

	"gorm.io/gorm"
)

type BookingRepository struct {
	db *gorm.DB
}

func NewBookingRepository(db *gorm.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

func (r *BookingRepository) Create(b *models.Booking) error {
	return r.db.Create(b).Error
}

func (r *BookingRepository) GetByID(id uint) (*models.Booking, error) {
	var b models.Booking
	if err := r.db.First(&b, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &b, nil
}

// UpdateFields patches the given columns on one booking.
func (r *BookingRepository) UpdateFields(id uint, fields map[string]interface{}) error {
	res := r.db.Model(&models.Booking{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// TransitionStatus is a compare-and-swap on booking.status, used for
// non-payment moves such as confirmed -> disputed.
func (r *BookingRepository) TransitionStatus(id uint, fromStatuses []string, toStatus string, fields map[string]interface{}) error {
	updates := map[string]interface{}{"status": toStatus}
	for k, v := range fields {
		updates[k] = v
	}
	res := r.db.Model(&models.Booking{}).
		Where("id = ? AND status IN ?", id, fromStatuses).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		var count int64
		if err := r.db.Model(&models.Booking{}).Where("id = ?", id).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return domain.ErrNotFound
		}
		return domain.ErrInvalidState
	}
	return nil
}

// List returns a page of bookings for admin screens, newest first.
func (r *BookingRepository) List(status string, limit, offset int) ([]models.Booking, int64, error) {
	q := r.db.Model(&models.Booking{})
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var list []models.Booking
	err := q.Order("created_at DESC").Limit(limit).Offset(offset).Find(&list).Error
	return list, total, err
}

// CancelStalePending cancels bookings still pending (never paid, no hold)
// created before the cutoff. Returns the number of bookings cancelled.
func (r *BookingRepository) CancelStalePending(before time.Time) (int64, error) {
	res := r.db.Model(&models.Booking{}).
		Where("status = ? AND payment_status = ? AND created_at < ?",
			domain.BookingPending, domain.PaymentPending, before).
		Update("status", domain.BookingCancelled)
	return res.RowsAffected, res.Error
}
