package service

import (
	"context"
	"fmt"
	"hiring_tool_backend/internal/model"
	"hiring_tool_backend/internal/repository"
	"hiring_tool_backend/internal/util"
	"hiring_tool_backend/pkg/logger"
	"io"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// UserService 处理用户资料相关的业务逻辑
type UserService struct {
	UserRepo *repository.UserRepository
	Storage  *StorageService
	Auth     *AuthService
}

func NewUserService(userRepo *repository.UserRepository, storage *StorageService, auth *AuthService) *UserService {
	return &UserService{
		UserRepo: userRepo,
		Storage:  storage,
		Auth:     auth,
	}
}

// GetProfile 读取凭据库中的最新记录，不存在时退回持久化的公开视图
func (s *UserService) GetProfile(ctx context.Context, userID string) (*model.PublicUser, error) {
	record, err := s.UserRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, util.ErrUserNotFound
	}
	public := ToPublicUser(record)
	return &public, nil
}

// UploadAvatar 校验图片类型后写入存储，并更新用户记录与当前会话视图
func (s *UserService) UploadAvatar(ctx context.Context, userID string, file io.ReadSeeker, size int64, filename string) (*model.PublicUser, error) {
	if size > util.MaxAvatarSize {
		return nil, util.ValidationError("Avatar must be at most 2MB")
	}

	mimeType, err := util.ValidateMimeType(file, []string{util.MimeImage})
	if err != nil {
		return nil, err
	}

	key := fmt.Sprintf("avatars/%s/%s%s", userID, uuid.New().String(), util.ExtensionFor(mimeType, filename))
	url, err := s.Storage.Upload(ctx, key, file, size, mimeType)
	if err != nil {
		return nil, err
	}

	record, err := s.UserRepo.UpdateAvatar(ctx, userID, url)
	if err != nil {
		if delErr := s.Storage.Delete(ctx, key); delErr != nil {
			logger.Log.Warn("Failed to remove orphaned avatar", zap.Error(delErr), zap.String("key", key))
		}
		return nil, err
	}

	if s.Auth != nil {
		if err := s.Auth.RefreshCurrentUser(ctx, record); err != nil {
			logger.Log.Warn("Failed to refresh session user", zap.Error(err))
		}
	}

	logger.Log.Info("Avatar updated", zap.String("userID", userID), zap.String("url", url))
	public := ToPublicUser(record)
	return &public, nil
}
