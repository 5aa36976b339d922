package service

import (
	"context"
	"hiring_tool_backend/internal/repository"
	"hiring_tool_backend/internal/util"
	"hiring_tool_backend/pkg/logger"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTodoService(t *testing.T) {
	logger.InitNop()
	ctx := context.Background()
	svc := NewTodoService(repository.NewTodoRepository(repository.NewMemoryKVStore()))

	todo, err := svc.Add(ctx, "2024-03-10", "  practise SQL  ")
	require.NoError(t, err)
	assert.Equal(t, "practise SQL", todo.Text)
	assert.False(t, todo.Completed)

	_, err = svc.Add(ctx, "10/03/2024", "bad date")
	assert.Equal(t, util.KindValidation, util.KindOf(err))
	_, err = svc.Add(ctx, "2024-03-10", "   ")
	assert.Equal(t, util.KindValidation, util.KindOf(err))

	toggled, err := svc.Toggle(ctx, todo.ID)
	require.NoError(t, err)
	assert.True(t, toggled.Completed)

	done, err := svc.HasCompletedTask(ctx, time.Date(2024, 3, 10, 22, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.True(t, done)

	updated, err := svc.Update(ctx, todo.ID, "practise Go")
	require.NoError(t, err)
	assert.Equal(t, "practise Go", updated.Text)
	assert.True(t, updated.Completed)

	list, err := svc.GetByDate(ctx, "2024-03-10")
	require.NoError(t, err)
	assert.Len(t, list, 1)

	empty, err := svc.GetByDate(ctx, "2024-03-11")
	require.NoError(t, err)
	assert.Empty(t, empty)

	require.NoError(t, svc.Delete(ctx, todo.ID))
	assert.ErrorIs(t, svc.Delete(ctx, todo.ID), util.ErrTodoNotFound)

	_, err = svc.Toggle(ctx, "missing")
	assert.Equal(t, util.KindNotFound, util.KindOf(err))
}
