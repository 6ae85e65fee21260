package model

import "time"

// ScheduleSlot joins a lecture into a challenge at a 1-based sequence
// position and carries the computed open/due timestamps. Sequence is
// not unique within a challenge; duplicate positions unlock
// independently.
// swagger:model ScheduleSlot
type ScheduleSlot struct {
	BaseModel
	ChallengeID uint      `gorm:"index;not null" json:"challengeId"`
	LectureID   uint      `gorm:"index;not null" json:"lectureId"`
	Sequence    int       `gorm:"not null" json:"sequence"`
	OpenAt      time.Time `gorm:"index;not null" json:"openAt"`
	DueAt       time.Time `gorm:"not null" json:"dueAt"`

	Lecture *Lecture `gorm:"foreignKey:LectureID;constraint:OnDelete:CASCADE" json:"lecture,omitempty"`
}

func (ScheduleSlot) TableName() string {
	return "schedule_slots"
}

// IsOpen reports whether the slot may be viewed at the given time.
// Reads never expire once open. Callers must pass clock-source time,
// never a client-supplied timestamp.
func (s *ScheduleSlot) IsOpen(now time.Time) bool {
	return !now.Before(s.OpenAt)
}

// IsWithinDeadline reports whether writes (submit/amend) are still
// accepted at the given time.
func (s *ScheduleSlot) IsWithinDeadline(now time.Time) bool {
	return !now.After(s.DueAt)
}
