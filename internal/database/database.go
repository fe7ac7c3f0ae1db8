package database

import (
	"errors"

	"allure/config"
	"allure/internal/domain"
	"allure/internal/models"
	"allure/internal/repository"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func NewDB(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	db, err := gorm.Open(mysql.Open(cfg.DSN), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Error),
	})
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	return db, nil
}

// AutoMigrate runs Gorm auto-migration for all models.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.ModelProfile{},
		&models.Wallet{},
		&models.Transaction{},
		&models.Booking{},
		&models.Notification{},
		&models.AuditLog{},
		&models.SystemSetting{},
		&models.SchedulerLease{},
	)
}

// SeedAdmin creates the bootstrap admin account if it does not exist.
func SeedAdmin(db *gorm.DB, cfg *config.AdminConfig) {
	users := repository.NewUserRepository(db)
	if _, err := users.GetByEmail(cfg.Email); err == nil {
		return
	} else if !errors.Is(err, domain.ErrNotFound) {
		logrus.WithError(err).Warn("admin seed lookup failed")
		return
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(cfg.Password), bcrypt.DefaultCost)
	if err != nil {
		logrus.WithError(err).Warn("admin seed hash failed")
		return
	}
	admin := &models.User{
		Username:     "admin",
		Email:        cfg.Email,
		PasswordHash: string(hash),
		Role:         domain.RoleAdmin,
	}
	if err := users.Create(admin); err != nil {
		logrus.WithError(err).Warn("admin seed create failed")
		return
	}
	logrus.WithField("email", cfg.Email).Info("seeded admin account")
}

// SeedSettings inserts the tunable defaults the escrow flows read at runtime.
func SeedSettings(db *gorm.DB) error {
	return repository.NewSettingRepository(db).SeedDefaults(map[string]string{
		domain.SettingReferralRateSpecial:    "2",
		domain.SettingReferralRatePartner:    "4",
		domain.SettingReferralSignupBonus:    "50000",
		domain.SettingBookingPendingTTLHours: "24",
	})
}
