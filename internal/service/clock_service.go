package service

import (
	"context"
	"fmt"
	"time"

	"github.com/demodev-lab/demo-funnel-sub000/internal/repository"
	"github.com/demodev-lab/demo-funnel-sub000/internal/util"
)

// ClockService exposes the database clock as the single authoritative
// time source. An unreachable source is a hard failure; there is no
// fallback to the process-local clock.
type ClockService struct {
	ClockRepo *repository.ClockRepository
}

func NewClockService(clockRepo *repository.ClockRepository) *ClockService {
	return &ClockService{ClockRepo: clockRepo}
}

func (s *ClockService) Now(ctx context.Context) (time.Time, error) {
	now, err := s.ClockRepo.Now(ctx)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %v", util.ErrClockUnavailable, err)
	}
	return now, nil
}
