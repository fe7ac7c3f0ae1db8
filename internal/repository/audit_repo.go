package repository

import (
	"encoding/json"

	"allure/internal/models"

	"gorm.io/gorm"
)

type AuditLogRepository struct {
	db *gorm.DB
}

func NewAuditLogRepository(db *gorm.DB) *AuditLogRepository {
	return &AuditLogRepository{db: db}
}

// Record writes one audit entry. Callers treat it as fire-and-forget: the
// returned error is logged at most, never propagated as the action's result.
func (r *AuditLogRepository) Record(action string, actorID *uint, description, status string, payload interface{}) error {
	var payloadJSON string
	if payload != nil {
		b, _ := json.Marshal(payload)
		payloadJSON = string(b)
	}
	return r.db.Create(&models.AuditLog{
		ActorID:     actorID,
		Action:      action,
		Description: description,
		Status:      status,
		Payload:     payloadJSON,
	}).Error
}

func (r *AuditLogRepository) List(limit, offset int) ([]models.AuditLog, error) {
	var list []models.AuditLog
	err := r.db.Order("created_at DESC").Limit(limit).Offset(offset).Find(&list).Error
	return list, err
}
