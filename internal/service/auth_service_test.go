package service

import (
	"testing"
	"time"

	"allure/config"
	"allure/internal/auth"
	"allure/internal/domain"
	"allure/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testAuthConfig() *config.Config {
	return &config.Config{
		JWT: config.JWTConfig{
			AccessSecret:  "test-access",
			RefreshSecret: "test-refresh",
			AccessExpiry:  time.Minute,
			RefreshExpiry: time.Hour,
			Issuer:        "test",
		},
	}
}

func TestRegisterCustomerCreatesWallet(t *testing.T) {
	env := newEscrowEnv(t)
	cfg := testAuthConfig()
	svc := NewAuthService(cfg, env.db, env.users, env.profiles)

	u, access, refresh, err := svc.Register(RegisterInput{
		Email: "alice@test.local", Username: "alice", Password: "secret-password",
		Role: domain.RoleCustomer,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, access)
	assert.NotEmpty(t, refresh)

	w, err := env.wallets.GetByOwner(models.CustomerRef(u.ID))
	require.NoError(t, err)
	assert.Zero(t, w.TotalBalanceCents)

	claims, err := auth.ParseAccessToken(&cfg.JWT, access)
	require.NoError(t, err)
	assert.Equal(t, u.ID, claims.UserID)
	assert.Equal(t, domain.RoleCustomer, claims.Role)
}

func TestRegisterModelWithReferral(t *testing.T) {
	env := newEscrowEnv(t)
	svc := NewAuthService(testAuthConfig(), env.db, env.users, env.profiles)
	referrerID := env.seedModel(t, 20, nil, "")

	u, _, _, err := svc.Register(RegisterInput{
		Email: "bella@test.local", Username: "bella", Password: "secret-password",
		Role: domain.RoleModel, DisplayName: "Bella", ReferredByID: &referrerID,
	})
	require.NoError(t, err)

	p, err := env.profiles.GetByUserID(u.ID)
	require.NoError(t, err)
	assert.Equal(t, 20, p.CommissionRatePct)
	require.NotNil(t, p.ReferredByID)
	assert.Equal(t, referrerID, *p.ReferredByID)
	assert.False(t, p.ReferralRewardPaid)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	env := newEscrowEnv(t)
	svc := NewAuthService(testAuthConfig(), env.db, env.users, env.profiles)

	_, _, _, err := svc.Register(RegisterInput{
		Email: "dup@test.local", Username: "dup1", Password: "secret-password", Role: domain.RoleCustomer,
	})
	require.NoError(t, err)
	_, _, _, err = svc.Register(RegisterInput{
		Email: "dup@test.local", Username: "dup2", Password: "secret-password", Role: domain.RoleCustomer,
	})
	require.ErrorIs(t, err, ErrEmailExists)
}

func TestLogin(t *testing.T) {
	env := newEscrowEnv(t)
	svc := NewAuthService(testAuthConfig(), env.db, env.users, env.profiles)

	_, _, _, err := svc.Register(RegisterInput{
		Email: "carol@test.local", Username: "carol", Password: "secret-password", Role: domain.RoleCustomer,
	})
	require.NoError(t, err)

	u, access, _, err := svc.Login("carol@test.local", "secret-password")
	require.NoError(t, err)
	assert.Equal(t, "carol", u.Username)
	assert.NotEmpty(t, access)

	_, _, _, err = svc.Login("carol@test.local", "wrong")
	require.ErrorIs(t, err, ErrInvalidCreds)
	_, _, _, err = svc.Login("nobody@test.local", "whatever")
	require.ErrorIs(t, err, ErrInvalidCreds)
}
