package repository

import (
	"github.com/demodev-lab/demo-funnel-sub000/internal/model"

	"gorm.io/gorm"
)

type ChallengeRepository struct {
	DB *gorm.DB
}

func NewChallengeRepository(db *gorm.DB) *ChallengeRepository {
	return &ChallengeRepository{DB: db}
}

func (r *ChallengeRepository) Create(challenge *model.Challenge) error {
	return r.DB.Create(challenge).Error
}

func (r *ChallengeRepository) FindByID(id uint) (*model.Challenge, error) {
	var challenge model.Challenge
	if err := r.DB.First(&challenge, id).Error; err != nil {
		return nil, err
	}
	return &challenge, nil
}

func (r *ChallengeRepository) Update(challenge *model.Challenge) error {
	return r.DB.Save(challenge).Error
}

// Delete removes the challenge and cascades into its schedule slots.
func (r *ChallengeRepository) Delete(id uint) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("challenge_id = ?", id).Delete(&model.ScheduleSlot{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.Challenge{}, id).Error
	})
}

func (r *ChallengeRepository) List(offset, limit int) ([]model.Challenge, int64, error) {
	var total int64
	if err := r.DB.Model(&model.Challenge{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var challenges []model.Challenge
	err := r.DB.Order("open_date DESC, id DESC").Offset(offset).Limit(limit).Find(&challenges).Error
	if err != nil {
		return nil, 0, err
	}
	return challenges, total, nil
}

func (r *ChallengeRepository) AddLectureCount(id uint, delta int) error {
	return r.DB.Model(&model.Challenge{}).Where("id = ?", id).
		UpdateColumn("lecture_count", gorm.Expr("lecture_count + ?", delta)).Error
}
