package repository

import (
	"context"
	"hiring_tool_backend/internal/model"
	"hiring_tool_backend/internal/util"
	"sync"
)

// TodoRepository 待办列表整体保存在 todos 键下
type TodoRepository struct {
	Store KVStore
	mu    sync.Mutex
}

func NewTodoRepository(store KVStore) *TodoRepository {
	return &TodoRepository{Store: store}
}

func (r *TodoRepository) FindAll(ctx context.Context) ([]model.Todo, error) {
	var todos []model.Todo
	if _, err := loadJSON(ctx, r.Store, util.KeyTodos, &todos); err != nil {
		return nil, err
	}
	if todos == nil {
		todos = []model.Todo{}
	}
	return todos, nil
}

func (r *TodoRepository) FindByDate(ctx context.Context, date string) ([]model.Todo, error) {
	todos, err := r.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	result := make([]model.Todo, 0)
	for _, t := range todos {
		if t.Date == date {
			result = append(result, t)
		}
	}
	return result, nil
}

func (r *TodoRepository) Create(ctx context.Context, todo model.Todo) error {
	return r.mutate(ctx, func(todos []model.Todo) ([]model.Todo, error) {
		return append(todos, todo), nil
	})
}

// Update 对指定 id 的待办执行 fn，返回更新后的副本
func (r *TodoRepository) Update(ctx context.Context, id string, fn func(*model.Todo)) (*model.Todo, error) {
	var updated *model.Todo
	err := r.mutate(ctx, func(todos []model.Todo) ([]model.Todo, error) {
		for i := range todos {
			if todos[i].ID == id {
				fn(&todos[i])
				t := todos[i]
				updated = &t
				return todos, nil
			}
		}
		return nil, util.ErrTodoNotFound
	})
	return updated, err
}

func (r *TodoRepository) Delete(ctx context.Context, id string) error {
	return r.mutate(ctx, func(todos []model.Todo) ([]model.Todo, error) {
		for i := range todos {
			if todos[i].ID == id {
				return append(todos[:i], todos[i+1:]...), nil
			}
		}
		return nil, util.ErrTodoNotFound
	})
}

// HasCompleted 指定日期是否至少有一条已完成的待办
func (r *TodoRepository) HasCompleted(ctx context.Context, date string) (bool, error) {
	todos, err := r.FindAll(ctx)
	if err != nil {
		return false, err
	}
	for _, t := range todos {
		if t.Date == date && t.Completed {
			return true, nil
		}
	}
	return false, nil
}

func (r *TodoRepository) mutate(ctx context.Context, fn func([]model.Todo) ([]model.Todo, error)) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	todos, err := r.FindAll(ctx)
	if err != nil {
		return err
	}
	todos, err = fn(todos)
	if err != nil {
		return err
	}
	return saveJSON(ctx, r.Store, util.KeyTodos, todos)
}
