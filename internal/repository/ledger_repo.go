package repository

import (
	"errors"
	"time"

	"allure/internal/domain"
	"allure/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// LedgerRepository is the append-and-update log of monetary transactions.
// Rows are appended once and afterwards only transitioned forward via
// Transition, which is a compare-and-swap on status.
type LedgerRepository struct {
	db *gorm.DB
}

func NewLedgerRepository(db *gorm.DB) *LedgerRepository {
	return &LedgerRepository{db: db}
}

// Append inserts a new ledger row. The owner must be exactly one of
// customer/model; a missing reference gets a generated one.
func (r *LedgerRepository) Append(t *models.Transaction) error {
	if (t.CustomerID != nil) == (t.ModelID != nil) {
		return domain.NewValidationError("owner", "exactly one of customer_id/model_id must be set")
	}
	if t.AmountCents < 0 {
		return domain.NewValidationError("amount_cents", "must be non-negative")
	}
	if t.CommissionCents < 0 || t.CommissionCents > t.AmountCents {
		return domain.NewValidationError("commission_cents", "must be within [0, amount]")
	}
	if t.Reference == "" {
		t.Reference = uuid.NewString()
	}
	return r.db.Create(t).Error
}

// Transition moves a transaction from one of fromStatuses to toStatus and
// applies patch in the same statement. It is a compare-and-swap: when the
// current status is outside fromStatuses nothing is written and
// ErrInvalidTransition is returned, which makes it safe under concurrent
// administrator actions.
func (r *LedgerRepository) Transition(id uint, fromStatuses []string, toStatus string, patch map[string]interface{}) (*models.Transaction, error) {
	updates := map[string]interface{}{"status": toStatus}
	for k, v := range patch {
		updates[k] = v
	}
	res := r.db.Model(&models.Transaction{}).
		Where("id = ? AND status IN ?", id, fromStatuses).
		Updates(updates)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		var count int64
		if err := r.db.Model(&models.Transaction{}).Where("id = ?", id).Count(&count).Error; err != nil {
			return nil, err
		}
		if count == 0 {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrInvalidTransition
	}
	return r.Get(id)
}

func (r *LedgerRepository) Get(id uint) (*models.Transaction, error) {
	var t models.Transaction
	if err := r.db.First(&t, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &t, nil
}

// SumByOwnerAndKind reconstructs a monetary aggregate straight from the
// ledger. Dashboards and summaries use this instead of trusting the cached
// wallet counters.
func (r *LedgerRepository) SumByOwnerAndKind(owner models.OwnerRef, kinds, statuses []string, from, to *time.Time) (int64, error) {
	if !owner.Valid() {
		return 0, domain.NewValidationError("owner", "exactly one of customer_id/model_id must be set")
	}
	q := r.db.Model(&models.Transaction{})
	if owner.CustomerID != nil {
		q = q.Where("customer_id = ?", *owner.CustomerID)
	} else {
		q = q.Where("model_id = ?", *owner.ModelID)
	}
	if len(kinds) > 0 {
		q = q.Where("kind IN ?", kinds)
	}
	if len(statuses) > 0 {
		q = q.Where("status IN ?", statuses)
	}
	if from != nil {
		q = q.Where("created_at >= ?", *from)
	}
	if to != nil {
		q = q.Where("created_at <= ?", *to)
	}
	var sum int64
	err := q.Select("COALESCE(SUM(amount_cents), 0)").Scan(&sum).Error
	return sum, err
}

// ListByBookingID returns every ledger row tied to a booking, oldest first.
func (r *LedgerRepository) ListByBookingID(bookingID uint) ([]models.Transaction, error) {
	var list []models.Transaction
	err := r.db.Where("booking_id = ?", bookingID).Order("id ASC").Find(&list).Error
	return list, err
}

// TransactionFilter narrows the admin transaction list.
type TransactionFilter struct {
	Kind   string
	Status string
	Owner  *models.OwnerRef
}

// List returns a page of ledger rows for admin screens, newest first.
func (r *LedgerRepository) List(f TransactionFilter, limit, offset int) ([]models.Transaction, int64, error) {
	q := r.db.Model(&models.Transaction{})
	if f.Kind != "" {
		q = q.Where("kind = ?", f.Kind)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.Owner != nil {
		if f.Owner.CustomerID != nil {
			q = q.Where("customer_id = ?", *f.Owner.CustomerID)
		} else if f.Owner.ModelID != nil {
			q = q.Where("model_id = ?", *f.Owner.ModelID)
		}
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var list []models.Transaction
	err := q.Order("created_at DESC").Limit(limit).Offset(offset).Find(&list).Error
	return list, total, err
}
