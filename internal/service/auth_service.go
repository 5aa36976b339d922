package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"hiring_tool_backend/internal/model"
	"hiring_tool_backend/internal/repository"
	"hiring_tool_backend/internal/util"
	"hiring_tool_backend/pkg/logger"
	"hiring_tool_backend/pkg/monitoring"
	"strings"
	"sync"
	"time"

	"github.com/jinzhu/copier"
	"go.uber.org/zap"
)

// AuthService 单用户会话管理：令牌与公开用户视图保存在键值后端
type AuthService struct {
	Users *repository.UserRepository
	Store repository.KVStore

	mu      sync.RWMutex
	latency time.Duration
}

func NewAuthService(users *repository.UserRepository, store repository.KVStore, latency time.Duration) *AuthService {
	return &AuthService{
		Users:   users,
		Store:   store,
		latency: latency,
	}
}

// SetLatency 配置热更新时调整模拟延迟
func (s *AuthService) SetLatency(d time.Duration) {
	s.mu.Lock()
	s.latency = d
	s.mu.Unlock()
}

func (s *AuthService) Latency() time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.latency
}

// wait 模拟网络延迟，ctx 取消时立即返回错误
func (s *AuthService) wait(ctx context.Context) error {
	d := s.Latency()
	if d <= 0 {
		if err := ctx.Err(); err != nil {
			return util.RequestCanceled(err)
		}
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return util.RequestCanceled(ctx.Err())
	case <-t.C:
		return nil
	}
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*model.AuthResponse, error) {
	resp, err := s.login(ctx, email, password)
	recordAuth("login", err)
	return resp, err
}

func (s *AuthService) login(ctx context.Context, email, password string) (*model.AuthResponse, error) {
	if email == "" || password == "" {
		return nil, util.ValidationError("Email and password are required")
	}
	if !util.IsValidEmail(email) {
		return nil, util.InvalidFormat("Invalid email format")
	}
	if len(password) < 6 {
		return nil, util.WeakInput("Password must be at least 6 characters")
	}
	if len(password) > util.MaxPasswordBytes {
		return nil, util.WeakInput(util.PasswordTooLongMessage)
	}

	if err := s.wait(ctx); err != nil {
		return nil, err
	}

	user, err := s.Users.VerifyCredentials(ctx, email, password)
	if err != nil {
		return nil, err
	}
	if user == nil {
		logger.Log.Info("Login rejected", zap.String("email", email))
		return nil, util.ErrInvalidLogin
	}

	resp, err := s.openSession(ctx, user)
	if err != nil {
		return nil, err
	}
	logger.Log.Info("User logged in", zap.String("userID", user.ID))
	return resp, nil
}

func (s *AuthService) SignUp(ctx context.Context, req model.SignUpRequest) (*model.AuthResponse, error) {
	resp, err := s.signUp(ctx, req)
	recordAuth("signup", err)
	return resp, err
}

func (s *AuthService) signUp(ctx context.Context, req model.SignUpRequest) (*model.AuthResponse, error) {
	if err := ValidateSignUp(req); err != nil {
		return nil, err
	}

	if err := s.wait(ctx); err != nil {
		return nil, err
	}

	user, err := s.Users.CreateUser(ctx, model.NewUserInput{
		Name:        strings.TrimSpace(req.Name),
		Email:       req.Email,
		Password:    req.Password,
		Username:    req.Username,
		Country:     req.Country,
		Role:        req.Role,
		Institution: req.Institution,
	})
	if err != nil {
		return nil, err
	}

	resp, err := s.openSession(ctx, user)
	if err != nil {
		return nil, err
	}
	logger.Log.Info("User signed up", zap.String("userID", user.ID))
	return resp, nil
}

// ValidateSignUp 按顺序校验注册信息，返回第一条失败的规则
func ValidateSignUp(req model.SignUpRequest) error {
	name := strings.TrimSpace(req.Name)
	switch {
	case req.Name == "" || req.Email == "" || req.Password == "":
		return util.ValidationError("All fields are required")
	case len(name) < 3:
		return util.ValidationError("Name must be at least 3 characters long")
	case !util.IsValidEmail(req.Email):
		return util.InvalidFormat("Invalid email format")
	case len(strings.TrimSpace(req.Username)) < 3:
		return util.ValidationError("Username must be at least 3 characters long")
	case strings.TrimSpace(req.Country) == "":
		return util.ValidationError("Country is required")
	case strings.TrimSpace(req.Role) == "":
		return util.ValidationError("Role is required")
	case len(strings.TrimSpace(req.Institution)) < 3:
		return util.ValidationError("Institution must be at least 3 characters long")
	}
	if msg := util.CheckPasswordStrength(req.Password); msg != "" {
		return util.WeakInput(msg)
	}
	return nil
}

func (s *AuthService) openSession(ctx context.Context, user *model.UserRecord) (*model.AuthResponse, error) {
	public := ToPublicUser(user)
	token := s.Users.GenerateToken()

	if err := s.Store.Set(ctx, util.KeyAuthToken, token); err != nil {
		return nil, util.StorageUnavailable(err)
	}
	if err := repository.SaveJSON(ctx, s.Store, util.KeyUser, public); err != nil {
		// 保持全有或全无
		_ = s.Store.Remove(ctx, util.KeyAuthToken)
		return nil, err
	}

	return &model.AuthResponse{Token: token, User: public}, nil
}

// Logout 重复调用安全
func (s *AuthService) Logout(ctx context.Context) error {
	if err := s.Store.Remove(ctx, util.KeyAuthToken); err != nil {
		return util.StorageUnavailable(err)
	}
	if err := s.Store.Remove(ctx, util.KeyUser); err != nil {
		return util.StorageUnavailable(err)
	}
	logger.Log.Info("User logged out")
	return nil
}

func (s *AuthService) IsLoggedIn(ctx context.Context) bool {
	return s.GetToken(ctx) != ""
}

// GetToken 后端不可用时视为未登录
func (s *AuthService) GetToken(ctx context.Context) string {
	token, err := s.Store.Get(ctx, util.KeyAuthToken)
	if err != nil {
		if !errors.Is(err, util.ErrKeyNotFound) {
			logger.Log.Warn("Token lookup failed", zap.Error(err))
		}
		return ""
	}
	return token
}

func (s *AuthService) GetCurrentUser(ctx context.Context) *model.PublicUser {
	var user model.PublicUser
	found, err := repository.LoadJSON(ctx, s.Store, util.KeyUser, &user)
	if err != nil {
		logger.Log.Warn("Current user lookup failed", zap.Error(err))
		return nil
	}
	if !found {
		return nil
	}
	return &user
}

// ValidateToken 令牌必须与当前持久化的令牌一致
func (s *AuthService) ValidateToken(ctx context.Context, token string) bool {
	if token == "" {
		return false
	}
	current := s.GetToken(ctx)
	if current == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(current), []byte(token)) == 1
}

// RefreshCurrentUser 用户记录变更后同步已持久化的公开视图
func (s *AuthService) RefreshCurrentUser(ctx context.Context, user *model.UserRecord) error {
	current := s.GetCurrentUser(ctx)
	if current == nil || current.ID != user.ID {
		return nil
	}
	return repository.SaveJSON(ctx, s.Store, util.KeyUser, ToPublicUser(user))
}

// ToPublicUser 去掉密码哈希
func ToPublicUser(user *model.UserRecord) model.PublicUser {
	var public model.PublicUser
	if err := copier.Copy(&public, user); err != nil {
		logger.Log.Error("Failed to copy user view", zap.Error(err))
	}
	return public
}

func recordAuth(action string, err error) {
	outcome := "success"
	if err != nil {
		outcome = string(util.KindOf(err))
		if outcome == "" {
			outcome = "error"
		}
	}
	monitoring.AuthAttempts.WithLabelValues(action, outcome).Inc()
}
