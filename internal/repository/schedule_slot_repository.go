package repository

import (
	"time"

	"github.com/demodev-lab/demo-funnel-sub000/internal/model"

	"gorm.io/gorm"
)

type ScheduleSlotRepository struct {
	DB *gorm.DB
}

func NewScheduleSlotRepository(db *gorm.DB) *ScheduleSlotRepository {
	return &ScheduleSlotRepository{DB: db}
}

func (r *ScheduleSlotRepository) Create(slot *model.ScheduleSlot) error {
	return r.DB.Create(slot).Error
}

func (r *ScheduleSlotRepository) FindByID(id uint) (*model.ScheduleSlot, error) {
	var slot model.ScheduleSlot
	if err := r.DB.Preload("Lecture").First(&slot, id).Error; err != nil {
		return nil, err
	}
	return &slot, nil
}

// FindByChallenge returns every slot of a challenge in sequence order.
// Duplicate sequence values are allowed; id breaks ties stably.
func (r *ScheduleSlotRepository) FindByChallenge(challengeID uint) ([]model.ScheduleSlot, error) {
	var slots []model.ScheduleSlot
	err := r.DB.Preload("Lecture").
		Where("challenge_id = ?", challengeID).
		Order("sequence ASC, id ASC").
		Find(&slots).Error
	return slots, err
}

// FindAssignmentBacked returns the challenge's slots whose lecture
// carries an assignment, in sequence order. Only these slots take part
// in completion tracking.
func (r *ScheduleSlotRepository) FindAssignmentBacked(challengeID uint) ([]model.ScheduleSlot, error) {
	var slots []model.ScheduleSlot
	err := r.DB.Preload("Lecture").
		Joins("JOIN assignments ON assignments.lecture_id = schedule_slots.lecture_id AND assignments.deleted_at IS NULL").
		Where("schedule_slots.challenge_id = ?", challengeID).
		Order("schedule_slots.sequence ASC, schedule_slots.id ASC").
		Find(&slots).Error
	return slots, err
}

func (r *ScheduleSlotRepository) UpdateTimes(id uint, openAt, dueAt time.Time) error {
	return r.DB.Model(&model.ScheduleSlot{}).Where("id = ?", id).
		Updates(map[string]interface{}{"open_at": openAt, "due_at": dueAt}).Error
}

func (r *ScheduleSlotRepository) Delete(id uint) error {
	return r.DB.Delete(&model.ScheduleSlot{}, id).Error
}
