package service

import (
	"context"
	"hiring_tool_backend/internal/model"
	"hiring_tool_backend/internal/repository"
	"hiring_tool_backend/internal/util"
	"math"
	"time"
)

const DefaultStreakMaxDays = 3650

// ComputeStreak 从 today 开始逐日向前，统计连续完成的天数，最多回溯 maxDays 天
func ComputeStreak(today time.Time, hasCompletedOnDate func(time.Time) bool, maxDays int) int {
	if maxDays <= 0 {
		maxDays = DefaultStreakMaxDays
	}
	day := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, today.Location())
	streak := 0
	for streak < maxDays && hasCompletedOnDate(day) {
		streak++
		// AddDate 按日历日后退，跨夏令时不受 24h 偏差影响
		day = day.AddDate(0, 0, -1)
	}
	return streak
}

type StreakService struct {
	TodoRepo *repository.TodoRepository
	Target   int
	MaxDays  int

	now func() time.Time
}

func NewStreakService(todoRepo *repository.TodoRepository, target, maxDays int) *StreakService {
	if target <= 0 {
		target = 5
	}
	return &StreakService{
		TodoRepo: todoRepo,
		Target:   target,
		MaxDays:  maxDays,
		now:      time.Now,
	}
}

func (s *StreakService) Current(ctx context.Context) (*model.StreakStatus, error) {
	todos, err := s.TodoRepo.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	completed := make(map[string]bool)
	for _, t := range todos {
		if t.Completed {
			completed[t.Date] = true
		}
	}

	today := s.now()
	streak := ComputeStreak(today, func(d time.Time) bool {
		return completed[util.DateKey(d)]
	}, s.MaxDays)

	progress := math.Min(float64(streak)/float64(s.Target)*100, 100)
	return &model.StreakStatus{
		Streak:             streak,
		Target:             s.Target,
		ProgressPercentage: progress,
		CompletedToday:     completed[util.DateKey(today)],
	}, nil
}
