package repository

import (
	"fmt"
	"strings"
	"testing"

	"allure/internal/models"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.ModelProfile{},
		&models.Wallet{},
		&models.Transaction{},
		&models.Booking{},
		&models.Notification{},
		&models.AuditLog{},
		&models.SystemSetting{},
		&models.SchedulerLease{},
	))
	return db
}

func uintPtr(v uint) *uint { return &v }
