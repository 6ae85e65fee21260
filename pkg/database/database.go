package database

import (
	"fmt"
	"log"

	"github.com/demodev-lab/demo-funnel-sub000/internal/config"
	"github.com/demodev-lab/demo-funnel-sub000/internal/model"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func InitDB(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=%t&loc=Local",
		cfg.User,
		cfg.Password,
		cfg.Host,
		cfg.Port,
		cfg.DBName,
		cfg.Charset,
		cfg.ParseTime,
	)

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, err
	}

	log.Println("Database connection established")
	return db, nil
}

func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&model.User{},
		&model.Challenge{},
		&model.Lecture{},
		&model.ScheduleSlot{},
		&model.Enrollment{},
		&model.Assignment{},
		&model.Submission{},
	)
	if err != nil {
		return err
	}

	log.Println("Database migration completed")

	// Seed an admin account on an empty users table so the API is
	// reachable on first boot. The password must be rotated after login.
	var count int64
	db.Model(&model.User{}).Where("role = ?", model.Admin).Count(&count)
	if count == 0 {
		hashed, err := bcrypt.GenerateFromPassword([]byte("admin1234"), bcrypt.DefaultCost)
		if err != nil {
			return err
		}
		admin := model.User{
			Name:     "Administrator",
			Email:    "admin@demo-funnel.local",
			Password: string(hashed),
			Role:     model.Admin,
		}
		if err := db.Create(&admin).Error; err != nil {
			return err
		}
		log.Println("Seeded default admin account")
	}

	return nil
}
