package service

import (
	"errors"

	"github.com/demodev-lab/demo-funnel-sub000/internal/model"
	"github.com/demodev-lab/demo-funnel-sub000/internal/util"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type LectureService struct {
	Lectures    LectureStore
	Assignments AssignmentStore
	Logger      *zap.Logger
}

func NewLectureService(lectures LectureStore, assignments AssignmentStore, logger *zap.Logger) *LectureService {
	return &LectureService{Lectures: lectures, Assignments: assignments, Logger: logger}
}

func (s *LectureService) Create(name, description, videoURL string) (*model.Lecture, error) {
	lecture := &model.Lecture{
		Name:        name,
		Description: description,
		VideoURL:    videoURL,
	}
	if err := s.Lectures.Create(lecture); err != nil {
		return nil, err
	}
	return lecture, nil
}

func (s *LectureService) Get(id uint) (*model.Lecture, error) {
	lecture, err := s.Lectures.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrLectureNotFound
		}
		return nil, err
	}
	return lecture, nil
}

func (s *LectureService) Update(id uint, name, description, videoURL string) (*model.Lecture, error) {
	lecture, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	lecture.Name = name
	lecture.Description = description
	lecture.VideoURL = videoURL
	if err := s.Lectures.Update(lecture); err != nil {
		return nil, err
	}
	return lecture, nil
}

// Delete cascades into the lecture's assignment and schedule slots.
func (s *LectureService) Delete(id uint) error {
	if _, err := s.Get(id); err != nil {
		return err
	}
	return s.Lectures.Delete(id)
}

func (s *LectureService) List(page, limit int) ([]model.Lecture, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	return s.Lectures.List((page-1)*limit, limit)
}

// SetAssignment creates or replaces the lecture's single assignment.
func (s *LectureService) SetAssignment(lectureID uint, title, body string) (*model.Assignment, error) {
	if _, err := s.Get(lectureID); err != nil {
		return nil, err
	}

	assignment := &model.Assignment{
		LectureID: lectureID,
		Title:     title,
		Body:      body,
	}
	if err := s.Assignments.Upsert(assignment); err != nil {
		return nil, err
	}
	return assignment, nil
}

func (s *LectureService) GetAssignment(lectureID uint) (*model.Assignment, error) {
	assignment, err := s.Assignments.FindByLecture(lectureID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrAssignmentNotFound
		}
		return nil, err
	}
	return assignment, nil
}

// RemoveAssignment drops the lecture's assignment; its slots then
// leave completion tracking entirely.
func (s *LectureService) RemoveAssignment(lectureID uint) error {
	if _, err := s.GetAssignment(lectureID); err != nil {
		return err
	}
	return s.Assignments.DeleteByLecture(lectureID)
}
