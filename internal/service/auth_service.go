package service

import (
	"errors"
	"log"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/smmonirhasan92/man2man-sub004/config"
	"github.com/smmonirhasan92/man2man-sub004/internal/auth"
	"github.com/smmonirhasan92/man2man-sub004/internal/domain"
	"github.com/smmonirhasan92/man2man-sub004/internal/models"
	"github.com/smmonirhasan92/man2man-sub004/internal/repository"
	"github.com/smmonirhasan92/man2man-sub004/pkg/synthid"
)

var (
	ErrPhoneExists  = errors.New("phone already registered")
	ErrInvalidCreds = errors.New("invalid phone or password")
	ErrUserBlocked  = errors.New("account is not active")
)

type AuthService struct {
	cfg      *config.Config
	db       *gorm.DB
	userRepo *repository.UserRepository
	wallet   *repository.WalletRepository
}

func NewAuthService(cfg *config.Config, db *gorm.DB, userRepo *repository.UserRepository, wallet *repository.WalletRepository) *AuthService {
	return &AuthService{cfg: cfg, db: db, userRepo: userRepo, wallet: wallet}
}

// Register creates the user plus wallet row and links the referrer when a
// valid referral code is supplied. User and wallet are created together;
// every later money movement assumes the wallet row exists.
func (s *AuthService) Register(fullName, phone, password, referralCode string) (*models.User, string, string, error) {
	_, err := s.userRepo.GetByPhone(phone)
	if err == nil {
		return nil, "", "", ErrPhoneExists
	}
	if !errors.Is(err, repository.ErrUserNotFound) {
		return nil, "", "", err
	}

	var referrer *models.User
	if referralCode != "" {
		referrer, err = s.userRepo.GetByReferralCode(referralCode)
		if err != nil && !errors.Is(err, repository.ErrUserNotFound) {
			return nil, "", "", err
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", "", err
	}
	u := &models.User{
		FullName:     fullName,
		Phone:        phone,
		PasswordHash: string(hash),
		Role:         domain.RoleUser,
		Status:       domain.UserStatusActive,
		ReferralCode: synthid.ReferralCode(),
	}
	if referrer != nil {
		u.ReferredByID = &referrer.ID
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.userRepo.WithTx(tx).Create(u); err != nil {
			return err
		}
		if _, err := s.wallet.WithTx(tx).Create(u.ID); err != nil {
			return err
		}
		if referrer != nil {
			return s.userRepo.WithTx(tx).IncrementReferralCount(referrer.ID)
		}
		return nil
	})
	if err != nil {
		return nil, "", "", err
	}
	if referrer != nil {
		log.Printf("[auth] user %d registered under referrer %d", u.ID, referrer.ID)
	}

	access, err := auth.GenerateAccessToken(&s.cfg.JWT, u.ID, u.Phone, u.Role)
	if err != nil {
		return u, "", "", err
	}
	refresh, err := auth.GenerateRefreshToken(&s.cfg.JWT, u.ID)
	if err != nil {
		return u, access, "", err
	}
	return u, access, refresh, nil
}

func (s *AuthService) Login(phone, password string) (*models.User, string, string, error) {
	u, err := s.userRepo.GetByPhone(phone)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, "", "", ErrInvalidCreds
		}
		return nil, "", "", err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, "", "", ErrInvalidCreds
	}
	if u.Status != domain.UserStatusActive {
		return nil, "", "", ErrUserBlocked
	}
	access, _ := auth.GenerateAccessToken(&s.cfg.JWT, u.ID, u.Phone, u.Role)
	refresh, _ := auth.GenerateRefreshToken(&s.cfg.JWT, u.ID)
	return u, access, refresh, nil
}

func (s *AuthService) Refresh(refreshToken string) (string, error) {
	userID, err := auth.ParseRefreshToken(&s.cfg.JWT, refreshToken)
	if err != nil {
		return "", err
	}
	u, err := s.userRepo.GetByID(userID)
	if err != nil {
		return "", ErrInvalidCreds
	}
	if u.Status != domain.UserStatusActive {
		return "", ErrUserBlocked
	}
	return auth.GenerateAccessToken(&s.cfg.JWT, u.ID, u.Phone, u.Role)
}

// CreateAgent is used by admins to promote cash-exchange agents.
func (s *AuthService) CreateAgent(fullName, phone, password string) (*models.User, error) {
	_, err := s.userRepo.GetByPhone(phone)
	if err == nil {
		return nil, ErrPhoneExists
	}
	if !errors.Is(err, repository.ErrUserNotFound) {
		return nil, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	u := &models.User{
		FullName:     fullName,
		Phone:        phone,
		PasswordHash: string(hash),
		Role:         domain.RoleAgent,
		Status:       domain.UserStatusActive,
		ReferralCode: synthid.ReferralCode(),
	}
	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.userRepo.WithTx(tx).Create(u); err != nil {
			return err
		}
		_, err := s.wallet.WithTx(tx).Create(u.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return u, nil
}
