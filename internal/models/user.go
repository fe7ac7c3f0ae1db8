package models

import (
	"time"

	"allure/internal/domain"

	"gorm.io/gorm"
)

type User struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	Username     string         `gorm:"uniqueIndex;size:64;not null;default:''" json:"username"`
	Email        string         `gorm:"uniqueIndex;size:255;not null" json:"email"`
	PasswordHash string         `gorm:"size:255" json:"-"`
	Role         string         `gorm:"size:20;not null;index" json:"role"` // CUSTOMER | MODEL | ADMIN
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`

	ModelProfile *ModelProfile `gorm:"foreignKey:UserID" json:"model_profile,omitempty"`
}

func (User) TableName() string { return "users" }

func (u *User) IsModel() bool    { return u.Role == domain.RoleModel }
func (u *User) IsCustomer() bool { return u.Role == domain.RoleCustomer }
