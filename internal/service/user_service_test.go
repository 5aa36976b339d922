package service

import (
	"bytes"
	"context"
	"hiring_tool_backend/internal/config"
	"hiring_tool_backend/internal/util"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00")

func TestUploadAvatar(t *testing.T) {
	ctx := context.Background()
	auth, _ := newTestAuth()
	dir := t.TempDir()
	storage := NewStorageService(&config.StorageConfig{Type: util.StorageLocal, LocalPath: dir})
	svc := NewUserService(auth.Users, storage, auth)

	resp, err := auth.SignUp(ctx, validSignUp())
	require.NoError(t, err)

	user, err := svc.UploadAvatar(ctx, resp.User.ID, bytes.NewReader(pngHeader), int64(len(pngHeader)), "me.PNG")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(user.Avatar, "/uploads/avatars/"+resp.User.ID+"/"))
	assert.True(t, strings.HasSuffix(user.Avatar, ".png"))

	stored := filepath.Join(dir, strings.TrimPrefix(user.Avatar, "/uploads/"))
	_, err = os.Stat(stored)
	assert.NoError(t, err)

	// 当前会话视图同步更新
	assert.Equal(t, user.Avatar, auth.GetCurrentUser(ctx).Avatar)

	profile, err := svc.GetProfile(ctx, resp.User.ID)
	require.NoError(t, err)
	assert.Equal(t, user.Avatar, profile.Avatar)
}

func TestUploadAvatarRejectsInvalidFiles(t *testing.T) {
	ctx := context.Background()
	auth, _ := newTestAuth()
	storage := NewStorageService(&config.StorageConfig{Type: util.StorageLocal, LocalPath: t.TempDir()})
	svc := NewUserService(auth.Users, storage, auth)

	resp, err := auth.SignUp(ctx, validSignUp())
	require.NoError(t, err)

	text := []byte("just some text")
	_, err = svc.UploadAvatar(ctx, resp.User.ID, bytes.NewReader(text), int64(len(text)), "a.txt")
	assert.Equal(t, util.KindValidation, util.KindOf(err))

	_, err = svc.UploadAvatar(ctx, resp.User.ID, bytes.NewReader(pngHeader), util.MaxAvatarSize+1, "big.png")
	assert.Equal(t, util.KindValidation, util.KindOf(err))

	_, err = svc.UploadAvatar(ctx, "user_0_missing", bytes.NewReader(pngHeader), int64(len(pngHeader)), "a.png")
	assert.ErrorIs(t, err, util.ErrUserNotFound)

	_, err = svc.GetProfile(ctx, "user_0_missing")
	assert.ErrorIs(t, err, util.ErrUserNotFound)
}
