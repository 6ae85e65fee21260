package repository

import (
	"github.com/demodev-lab/demo-funnel-sub000/internal/model"

	"gorm.io/gorm"
)

type LectureRepository struct {
	DB *gorm.DB
}

func NewLectureRepository(db *gorm.DB) *LectureRepository {
	return &LectureRepository{DB: db}
}

func (r *LectureRepository) Create(lecture *model.Lecture) error {
	return r.DB.Create(lecture).Error
}

func (r *LectureRepository) FindByID(id uint) (*model.Lecture, error) {
	var lecture model.Lecture
	if err := r.DB.First(&lecture, id).Error; err != nil {
		return nil, err
	}
	return &lecture, nil
}

func (r *LectureRepository) Update(lecture *model.Lecture) error {
	return r.DB.Save(lecture).Error
}

// Delete removes the lecture, its assignment and any schedule slots
// pointing at it.
func (r *LectureRepository) Delete(id uint) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("lecture_id = ?", id).Delete(&model.ScheduleSlot{}).Error; err != nil {
			return err
		}
		if err := tx.Where("lecture_id = ?", id).Delete(&model.Assignment{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.Lecture{}, id).Error
	})
}

func (r *LectureRepository) List(offset, limit int) ([]model.Lecture, int64, error) {
	var total int64
	if err := r.DB.Model(&model.Lecture{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var lectures []model.Lecture
	err := r.DB.Order("id DESC").Offset(offset).Limit(limit).Find(&lectures).Error
	if err != nil {
		return nil, 0, err
	}
	return lectures, total, nil
}
