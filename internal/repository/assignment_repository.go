package repository

import (
	"errors"

	"github.com/demodev-lab/demo-funnel-sub000/internal/model"

	"gorm.io/gorm"
)

type AssignmentRepository struct {
	DB *gorm.DB
}

func NewAssignmentRepository(db *gorm.DB) *AssignmentRepository {
	return &AssignmentRepository{DB: db}
}

// Upsert creates or replaces the single assignment of a lecture.
func (r *AssignmentRepository) Upsert(assignment *model.Assignment) error {
	var existing model.Assignment
	err := r.DB.Where("lecture_id = ?", assignment.LectureID).First(&existing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return r.DB.Create(assignment).Error
	}
	if err != nil {
		return err
	}

	existing.Title = assignment.Title
	existing.Body = assignment.Body
	if err := r.DB.Save(&existing).Error; err != nil {
		return err
	}
	*assignment = existing
	return nil
}

func (r *AssignmentRepository) FindByLecture(lectureID uint) (*model.Assignment, error) {
	var assignment model.Assignment
	if err := r.DB.Where("lecture_id = ?", lectureID).First(&assignment).Error; err != nil {
		return nil, err
	}
	return &assignment, nil
}

func (r *AssignmentRepository) DeleteByLecture(lectureID uint) error {
	return r.DB.Where("lecture_id = ?", lectureID).Delete(&model.Assignment{}).Error
}
