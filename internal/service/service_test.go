package service

import (
	"fmt"
	"strings"
	"testing"

	"allure/internal/domain"
	"allure/internal/models"
	"allure/internal/repository"

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

type escrowEnv struct {
	db        *gorm.DB
	seq       int
	escrow    *EscrowService
	referrals *ReferralService
	wallets   *repository.WalletRepository
	ledger    *repository.LedgerRepository
	bookings  *repository.BookingRepository
	profiles  *repository.ModelProfileRepository
	users     *repository.UserRepository
	settings  *repository.SettingRepository
}

func newEscrowEnv(t *testing.T) *escrowEnv {
	t.Helper()
	db := newTestDB(t)
	env := &escrowEnv{
		db:       db,
		wallets:  repository.NewWalletRepository(db),
		ledger:   repository.NewLedgerRepository(db),
		bookings: repository.NewBookingRepository(db),
		profiles: repository.NewModelProfileRepository(db),
		users:    repository.NewUserRepository(db),
		settings: repository.NewSettingRepository(db),
	}
	env.referrals = NewReferralService(db, env.profiles, env.settings)
	notifier := NewNotificationService(repository.NewNotificationRepository(db))
	audit := repository.NewAuditLogRepository(db)
	env.escrow = NewEscrowService(db, env.profiles, env.referrals, notifier, audit)
	return env
}

func (e *escrowEnv) seedCustomer(t *testing.T, balanceCents int64) uint {
	t.Helper()
	e.seq++
	u := &models.User{
		Username: fmt.Sprintf("customer%d", e.seq),
		Email:    fmt.Sprintf("customer%d@test.local", e.seq),
		Role:     domain.RoleCustomer,
	}
	require.NoError(t, e.users.Create(u))
	w, err := e.wallets.Create(models.CustomerRef(u.ID))
	require.NoError(t, err)
	if balanceCents > 0 {
		require.NoError(t, e.wallets.Credit(w.ID, repository.FieldTotalBalance, balanceCents))
		require.NoError(t, e.wallets.Credit(w.ID, repository.FieldTotalRecharge, balanceCents))
	}
	return u.ID
}

func (e *escrowEnv) seedModel(t *testing.T, ratePct int, referredBy *uint, tier string) uint {
	t.Helper()
	e.seq++
	u := &models.User{
		Username: fmt.Sprintf("model%d", e.seq),
		Email:    fmt.Sprintf("model%d@test.local", e.seq),
		Role:     domain.RoleModel,
	}
	require.NoError(t, e.users.Create(u))
	if tier == "" {
		tier = domain.TierSpecial
	}
	require.NoError(t, e.profiles.Create(&models.ModelProfile{
		UserID:            u.ID,
		CommissionRatePct: ratePct,
		ReferredByID:      referredBy,
		ReferralTier:      tier,
	}))
	return u.ID
}

func (e *escrowEnv) customerWallet(t *testing.T, customerID uint) *models.Wallet {
	t.Helper()
	w, err := e.wallets.GetByOwner(models.CustomerRef(customerID))
	require.NoError(t, err)
	return w
}

func (e *escrowEnv) modelWallet(t *testing.T, modelID uint) *models.Wallet {
	t.Helper()
	w, err := e.wallets.GetByOwner(models.ModelRef(modelID))
	require.NoError(t, err)
	return w
}
