package service

import (
	"errors"

	"allure/config"
	"allure/internal/auth"
	"allure/internal/domain"
	"allure/internal/models"
	"allure/internal/repository"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var ErrEmailExists = errors.New("email already registered")
var ErrInvalidCreds = errors.New("invalid email or password")

type AuthService struct {
	cfg      *config.Config
	db       *gorm.DB
	users    *repository.UserRepository
	profiles *repository.ModelProfileRepository
}

func NewAuthService(cfg *config.Config, db *gorm.DB, users *repository.UserRepository, profiles *repository.ModelProfileRepository) *AuthService {
	return &AuthService{cfg: cfg, db: db, users: users, profiles: profiles}
}

type RegisterInput struct {
	Email        string
	Username     string
	Password     string
	Role         string
	DisplayName  string
	ReferredByID *uint
}

// Register creates the account plus its role-specific rows in one
// transaction: customers get their wallet up front, models get a profile
// carrying the commission rate default and the referral link.
func (s *AuthService) Register(in RegisterInput) (*models.User, string, string, error) {
	if in.Role != domain.RoleCustomer && in.Role != domain.RoleModel {
		return nil, "", "", domain.NewValidationError("role", "must be CUSTOMER or MODEL")
	}
	if _, err := s.users.GetByEmail(in.Email); err == nil {
		return nil, "", "", ErrEmailExists
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, "", "", err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", "", err
	}

	u := &models.User{
		Email:        in.Email,
		Username:     in.Username,
		PasswordHash: string(hash),
		Role:         in.Role,
	}
	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := repository.NewUserRepository(tx).Create(u); err != nil {
			return err
		}
		switch in.Role {
		case domain.RoleCustomer:
			_, err := repository.NewWalletRepository(tx).Create(models.CustomerRef(u.ID))
			return err
		case domain.RoleModel:
			return repository.NewModelProfileRepository(tx).Create(&models.ModelProfile{
				UserID:       u.ID,
				DisplayName:  in.DisplayName,
				ReferredByID: in.ReferredByID,
			})
		}
		return nil
	})
	if err != nil {
		return nil, "", "", err
	}

	access, err := auth.GenerateAccessToken(&s.cfg.JWT, u.ID, u.Email, u.Role)
	if err != nil {
		return u, "", "", err
	}
	refresh, err := auth.GenerateRefreshToken(&s.cfg.JWT, u.ID)
	if err != nil {
		return u, access, "", err
	}
	return u, access, refresh, nil
}

func (s *AuthService) Login(email, password string) (*models.User, string, string, error) {
	u, err := s.users.GetByEmail(email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, "", "", ErrInvalidCreds
		}
		return nil, "", "", err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return nil, "", "", ErrInvalidCreds
	}
	access, err := auth.GenerateAccessToken(&s.cfg.JWT, u.ID, u.Email, u.Role)
	if err != nil {
		return nil, "", "", err
	}
	refresh, err := auth.GenerateRefreshToken(&s.cfg.JWT, u.ID)
	if err != nil {
		return nil, "", "", err
	}
	return u, access, refresh, nil
}
