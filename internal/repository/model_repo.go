package repository

import (
	"errors"

	"allure/internal/domain"
	"allure/internal/models"

	"gorm.io/gorm"
)

type ModelProfileRepository struct {
	db *gorm.DB
}

func NewModelProfileRepository(db *gorm.DB) *ModelProfileRepository {
	return &ModelProfileRepository{db: db}
}

func (r *ModelProfileRepository) Create(p *models.ModelProfile) error {
	return r.db.Create(p).Error
}

func (r *ModelProfileRepository) GetByUserID(userID uint) (*models.ModelProfile, error) {
	var p models.ModelProfile
	if err := r.db.Where("user_id = ?", userID).First(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

// UpdateCommissionRate changes the model's current commission rate. Bookings
// already holding a snapshot are unaffected.
func (r *ModelProfileRepository) UpdateCommissionRate(userID uint, ratePct int) error {
	if ratePct < 0 || ratePct > 100 {
		return domain.NewValidationError("commission_rate_pct", "must be within [0, 100]")
	}
	res := r.db.Model(&models.ModelProfile{}).
		Where("user_id = ?", userID).
		Update("commission_rate_pct", ratePct)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ClaimSignupReward flips referral_reward_paid from false to true and
// reports whether this call won. The flag guards the one-time signup bonus,
// so only the winner pays out.
func (r *ModelProfileRepository) ClaimSignupReward(userID uint) (bool, error) {
	res := r.db.Model(&models.ModelProfile{}).
		Where("user_id = ? AND referral_reward_paid = ?", userID, false).
		Update("referral_reward_paid", true)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}
