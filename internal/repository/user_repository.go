package repository

import (
	"context"
	"crypto/rand"
	"fmt"
	"hiring_tool_backend/internal/model"
	"hiring_tool_backend/internal/util"
	"math/big"
	"strings"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// UserRepository 基于键值后端的凭据库，用户列表整体序列化在 hiring_tool_users 下
type UserRepository struct {
	Store      KVStore
	BcryptCost int

	mu  sync.Mutex
	now func() time.Time
}

func NewUserRepository(store KVStore, bcryptCost int) *UserRepository {
	if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
		bcryptCost = bcrypt.DefaultCost
	}
	return &UserRepository{
		Store:      store,
		BcryptCost: bcryptCost,
		now:        time.Now,
	}
}

func (r *UserRepository) GetAllUsers(ctx context.Context) ([]model.UserRecord, error) {
	var users []model.UserRecord
	if _, err := loadJSON(ctx, r.Store, util.KeyUsers, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// FindUserByEmail 邮箱完整匹配，不区分大小写
func (r *UserRepository) FindUserByEmail(ctx context.Context, email string) (*model.UserRecord, error) {
	users, err := r.GetAllUsers(ctx)
	if err != nil {
		return nil, err
	}
	return findByEmail(users, email), nil
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*model.UserRecord, error) {
	users, err := r.GetAllUsers(ctx)
	if err != nil {
		return nil, err
	}
	for i := range users {
		if users[i].ID == id {
			u := users[i]
			return &u, nil
		}
	}
	return nil, nil
}

func findByEmail(users []model.UserRecord, email string) *model.UserRecord {
	for i := range users {
		if strings.EqualFold(users[i].Email, email) {
			u := users[i]
			return &u
		}
	}
	return nil
}

// CreateUser 写入新用户，邮箱重复返回 DuplicateEmail；失败时不会留下部分数据
func (r *UserRepository) CreateUser(ctx context.Context, input model.NewUserInput) (*model.UserRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	users, err := r.GetAllUsers(ctx)
	if err != nil {
		return nil, err
	}
	if findByEmail(users, input.Email) != nil {
		return nil, util.ErrDuplicateEmail
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), r.BcryptCost)
	if err != nil {
		return nil, err
	}

	user := model.UserRecord{
		ID:           generateID("user"),
		Name:         input.Name,
		Email:        input.Email,
		PasswordHash: string(hash),
		Username:     input.Username,
		Country:      input.Country,
		Role:         input.Role,
		Institution:  input.Institution,
		CreatedAt:    r.now().UTC(),
	}

	users = append(users, user)
	if err := saveJSON(ctx, r.Store, util.KeyUsers, users); err != nil {
		return nil, err
	}
	return &user, nil
}

// VerifyCredentials 邮箱存在且密码哈希匹配时返回用户，否则返回 nil
func (r *UserRepository) VerifyCredentials(ctx context.Context, email, password string) (*model.UserRecord, error) {
	user, err := r.FindUserByEmail(ctx, email)
	if err != nil || user == nil {
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, nil
	}
	return user, nil
}

// UpdateAvatar 头像是用户记录唯一可变的字段
func (r *UserRepository) UpdateAvatar(ctx context.Context, id, avatar string) (*model.UserRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	users, err := r.GetAllUsers(ctx)
	if err != nil {
		return nil, err
	}
	for i := range users {
		if users[i].ID != id {
			continue
		}
		users[i].Avatar = avatar
		if err := saveJSON(ctx, r.Store, util.KeyUsers, users); err != nil {
			return nil, err
		}
		u := users[i]
		return &u, nil
	}
	return nil, util.ErrUserNotFound
}

// GenerateToken 生成不含任何声明的会话令牌
func (r *UserRepository) GenerateToken() string {
	return generateID("token")
}

const idAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

// generateID 形如 prefix_<毫秒时间戳>_<9位随机串>
func generateID(prefix string) string {
	var sb strings.Builder
	max := big.NewInt(int64(len(idAlphabet)))
	for i := 0; i < 9; i++ {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			panic(fmt.Sprintf("crypto/rand unavailable: %v", err))
		}
		sb.WriteByte(idAlphabet[n.Int64()])
	}
	return fmt.Sprintf("%s_%d_%s", prefix, time.Now().UnixMilli(), sb.String())
}
