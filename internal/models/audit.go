package models

import "time"

// AuditLog records administrator actions. Writes are fire-and-forget; a
// failed audit write never fails the action it describes.
type AuditLog struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	ActorID     *uint     `gorm:"index" json:"actor_id"`
	Action      string    `gorm:"size:100;not null;index" json:"action"`
	Description string    `gorm:"size:512" json:"description"`
	Status      string    `gorm:"size:20;index" json:"status"` // success | failure
	Payload     string    `gorm:"type:text" json:"payload"`
	CreatedAt   time.Time `json:"created_at"`
}

func (AuditLog) TableName() string { return "audit_logs" }
