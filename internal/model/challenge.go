package model

import "time"

// Challenge is a time-boxed cohort: learners enroll once and work
// through an ordered sequence of lectures between OpenDate and
// CloseDate. OpenDate/CloseDate are calendar dates; the per-lecture
// open/due timestamps live on ScheduleSlot.
// swagger:model Challenge
type Challenge struct {
	BaseModel
	Name         string    `gorm:"size:255;not null" json:"name"`
	OpenDate     time.Time `gorm:"not null" json:"openDate"`
	CloseDate    time.Time `gorm:"not null" json:"closeDate"`
	LectureCount int       `gorm:"default:0" json:"lectureCount"`
}

func (Challenge) TableName() string {
	return "challenges"
}
