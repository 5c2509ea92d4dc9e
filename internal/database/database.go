package database

import (
	"log"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/smmonirhasan92/man2man-sub004/config"
	"github.com/smmonirhasan92/man2man-sub004/internal/domain"
	"github.com/smmonirhasan92/man2man-sub004/internal/models"
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
		&models.Wallet{},
		&models.Transaction{},
		&models.Plan{},
		&models.UserPlan{},
		&models.TaskAd{},
		&models.TaskCompletion{},
		&models.SystemSetting{},
		&models.AuditLog{},
	)
}

// SeedAdmin creates the super admin account if no admin exists yet.
func SeedAdmin(db *gorm.DB) {
	var count int64
	db.Model(&models.User{}).Where("role = ?", domain.RoleSuperAdmin).Count(&count)
	if count > 0 {
		return
	}
	hash, err := bcrypt.GenerateFromPassword([]byte("admin123"), bcrypt.DefaultCost)
	if err != nil {
		log.Printf("[seed] bcrypt: %v", err)
		return
	}
	admin := &models.User{
		FullName:     "Super Admin",
		Phone:        "01700000000",
		PasswordHash: string(hash),
		Role:         domain.RoleSuperAdmin,
		Status:       domain.UserStatusActive,
		ReferralCode: "ADMIN001",
	}
	if err := db.Create(admin).Error; err != nil {
		log.Printf("[seed] admin: %v", err)
		return
	}
	db.Create(&models.Wallet{UserID: admin.ID})
	log.Printf("[seed] super admin created (phone 01700000000)")
}

// SeedPlans inserts the default rental plans once. RewardCents is derived
// here from price x ROI over the validity window and baked into the row;
// request handling reads it back, never recomputes it.
func SeedPlans(db *gorm.DB) {
	var count int64
	db.Model(&models.Plan{}).Count(&count)
	if count > 0 {
		return
	}
	type seed struct {
		name     string
		price    int64 // cents
		days     int
		daily    int
		roiBps   int64 // total return over validity, basis points of price
		serverID string
	}
	seeds := []seed{
		{"Starter", 50000, 30, 5, 15000, "sv-1"},
		{"Silver", 200000, 30, 10, 16000, "sv-2"},
		{"Gold", 500000, 45, 15, 18000, "sv-3"},
		{"Diamond", 1500000, 60, 20, 20000, "sv-4"},
	}
	for _, s := range seeds {
		totalReturn := s.price * s.roiBps / 10000
		reward := totalReturn / int64(s.days) / int64(s.daily)
		p := &models.Plan{
			Name:         s.name,
			PriceCents:   s.price,
			ValidityDays: s.days,
			DailyTasks:   s.daily,
			RewardCents:  reward,
			ServerID:     s.serverID,
			IsActive:     true,
		}
		if err := db.Create(p).Error; err != nil {
			log.Printf("[seed] plan %s: %v", s.name, err)
		}
	}
	log.Printf("[seed] %d plans created", len(seeds))
}
