package service

import (
	"context"
	"hiring_tool_backend/internal/model"
	"hiring_tool_backend/internal/repository"
	"hiring_tool_backend/internal/util"
	"hiring_tool_backend/pkg/logger"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type TodoService struct {
	TodoRepo *repository.TodoRepository
}

func NewTodoService(todoRepo *repository.TodoRepository) *TodoService {
	return &TodoService{TodoRepo: todoRepo}
}

// normalizeDate 日期键统一为 yyyy-mm-dd
func normalizeDate(date string) (string, error) {
	t, err := util.ParseDateKey(date)
	if err != nil {
		return "", util.ValidationError("Date must be in YYYY-MM-DD format")
	}
	return util.DateKey(t), nil
}

func (s *TodoService) GetByDate(ctx context.Context, date string) ([]model.Todo, error) {
	key, err := normalizeDate(date)
	if err != nil {
		return nil, err
	}
	return s.TodoRepo.FindByDate(ctx, key)
}

func (s *TodoService) All(ctx context.Context) ([]model.Todo, error) {
	return s.TodoRepo.FindAll(ctx)
}

func (s *TodoService) Add(ctx context.Context, date, text string) (*model.Todo, error) {
	key, err := normalizeDate(date)
	if err != nil {
		return nil, err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, util.ValidationError("Todo text is required")
	}

	todo := model.Todo{
		ID:   uuid.New().String(),
		Date: key,
		Text: text,
	}
	if err := s.TodoRepo.Create(ctx, todo); err != nil {
		return nil, err
	}
	logger.Log.Debug("Todo added", zap.String("id", todo.ID), zap.String("date", key))
	return &todo, nil
}

func (s *TodoService) Update(ctx context.Context, id, text string) (*model.Todo, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, util.ValidationError("Todo text is required")
	}
	todo, err := s.TodoRepo.Update(ctx, id, func(t *model.Todo) {
		t.Text = text
	})
	if err != nil {
		return nil, err
	}
	logger.Log.Debug("Todo updated", zap.String("id", id))
	return todo, nil
}

func (s *TodoService) Toggle(ctx context.Context, id string) (*model.Todo, error) {
	todo, err := s.TodoRepo.Update(ctx, id, func(t *model.Todo) {
		t.Completed = !t.Completed
	})
	if err != nil {
		return nil, err
	}
	logger.Log.Debug("Todo toggled", zap.String("id", id), zap.Bool("completed", todo.Completed))
	return todo, nil
}

func (s *TodoService) Delete(ctx context.Context, id string) error {
	if err := s.TodoRepo.Delete(ctx, id); err != nil {
		return err
	}
	logger.Log.Debug("Todo deleted", zap.String("id", id))
	return nil
}

func (s *TodoService) HasCompletedTask(ctx context.Context, date time.Time) (bool, error) {
	return s.TodoRepo.HasCompleted(ctx, util.DateKey(date))
}
