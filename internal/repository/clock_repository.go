package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
)

// ClockRepository reads the current time from the database server.
// Deadline decisions must never trust a caller-side clock, so this is
// the only source of "now" for gate checks.
type ClockRepository struct {
	DB *gorm.DB
}

func NewClockRepository(db *gorm.DB) *ClockRepository {
	return &ClockRepository{DB: db}
}

func (r *ClockRepository) Now(ctx context.Context) (time.Time, error) {
	var now time.Time
	if err := r.DB.WithContext(ctx).Raw("SELECT NOW(6)").Scan(&now).Error; err != nil {
		return time.Time{}, err
	}
	return now, nil
}
