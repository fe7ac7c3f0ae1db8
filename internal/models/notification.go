package models

import (
	"time"

	"gorm.io/gorm"
)

// Notification is a stored notification intent. Delivery (SMS, push, email,
// WhatsApp) is handled outside this service.
type Notification struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	UserID    uint           `gorm:"not null;index" json:"user_id"`
	Type      string         `gorm:"size:40;not null;index" json:"type"`
	Title     string         `gorm:"size:120" json:"title"`
	Body      string         `gorm:"size:512" json:"body"`
	Data      string         `gorm:"type:text" json:"data"` // JSON payload
	ReadAt    *time.Time     `json:"read_at"`
	CreatedAt time.Time      `json:"created_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	User User `gorm:"foreignKey:UserID" json:"-"`
}

func (Notification) TableName() string { return "notifications" }
