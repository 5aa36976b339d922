package service

import (
	"context"
	"hiring_tool_backend/internal/model"
	"hiring_tool_backend/internal/repository"
	"hiring_tool_backend/internal/util"
	"hiring_tool_backend/pkg/logger"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newTestAuth() (*AuthService, *repository.MemoryKVStore) {
	logger.InitNop()
	store := repository.NewMemoryKVStore()
	users := repository.NewUserRepository(store, bcrypt.MinCost)
	return NewAuthService(users, store, 0), store
}

func validSignUp() model.SignUpRequest {
	return model.SignUpRequest{
		Name:        "Ada Lovelace",
		Email:       "ada@example.com",
		Password:    "Abcdefg1",
		Username:    "ada",
		Country:     "UK",
		Role:        "Engineer",
		Institution: "Analytical Engines",
	}
}

func TestSignUpOpensSession(t *testing.T) {
	ctx := context.Background()
	auth, _ := newTestAuth()

	resp, err := auth.SignUp(ctx, validSignUp())
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, "ada@example.com", resp.User.Email)
	assert.Equal(t, "Ada Lovelace", resp.User.Name)

	assert.True(t, auth.IsLoggedIn(ctx))
	assert.Equal(t, resp.Token, auth.GetToken(ctx))
	current := auth.GetCurrentUser(ctx)
	require.NotNil(t, current)
	assert.Equal(t, resp.User.ID, current.ID)
}

func TestSignUpRejectsWeakPasswordsWithoutWriting(t *testing.T) {
	ctx := context.Background()
	for _, pw := range []string{"abcdefgh", "12345678", "Ab1", "ABCDEFG1", "Abcdefgh"} {
		auth, store := newTestAuth()
		req := validSignUp()
		req.Password = pw

		_, err := auth.SignUp(ctx, req)
		require.Error(t, err, pw)
		assert.Equal(t, util.KindWeakInput, util.KindOf(err), pw)
		assert.Equal(t, 0, store.Len(), pw)
		assert.False(t, auth.IsLoggedIn(ctx))
	}
}

func TestValidateSignUpOrder(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*model.SignUpRequest)
		kind   util.ErrorKind
		msg    string
	}{
		{"missing email", func(r *model.SignUpRequest) { r.Email = "" }, util.KindValidation, "All fields are required"},
		{"empty name", func(r *model.SignUpRequest) { r.Name = "" }, util.KindValidation, "All fields are required"},
		{"blank name", func(r *model.SignUpRequest) { r.Name = "   " }, util.KindValidation, "Name must be at least 3 characters long"},
		{"short name", func(r *model.SignUpRequest) { r.Name = "Al" }, util.KindValidation, "Name must be at least 3 characters long"},
		{"bad email", func(r *model.SignUpRequest) { r.Email = "ada@example" }, util.KindInvalidFormat, "Invalid email format"},
		{"short username", func(r *model.SignUpRequest) { r.Username = "ad" }, util.KindValidation, "Username must be at least 3 characters long"},
		{"no country", func(r *model.SignUpRequest) { r.Country = "" }, util.KindValidation, "Country is required"},
		{"no role", func(r *model.SignUpRequest) { r.Role = " " }, util.KindValidation, "Role is required"},
		{"short institution", func(r *model.SignUpRequest) { r.Institution = "MI" }, util.KindValidation, "Institution must be at least 3 characters long"},
		{"weak password", func(r *model.SignUpRequest) { r.Password = "abcdefgh" }, util.KindWeakInput, "Password must contain uppercase letters"},
		// 多条规则同时失败时只报第一条
		{"name before email", func(r *model.SignUpRequest) { r.Name = "Al"; r.Email = "bad" }, util.KindValidation, "Name must be at least 3 characters long"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := validSignUp()
			tc.mutate(&req)
			err := ValidateSignUp(req)
			require.Error(t, err)
			var appErr *util.AppError
			require.ErrorAs(t, err, &appErr)
			assert.Equal(t, tc.kind, appErr.Kind)
			assert.Equal(t, tc.msg, appErr.Message)
		})
	}

	assert.NoError(t, ValidateSignUp(validSignUp()))
}

func TestSignUpDuplicateEmail(t *testing.T) {
	ctx := context.Background()
	auth, _ := newTestAuth()

	_, err := auth.SignUp(ctx, validSignUp())
	require.NoError(t, err)

	req := validSignUp()
	req.Email = "ADA@example.com"
	_, err = auth.SignUp(ctx, req)
	assert.Equal(t, util.KindDuplicateEmail, util.KindOf(err))
}

func TestLogin(t *testing.T) {
	ctx := context.Background()
	auth, _ := newTestAuth()

	signed, err := auth.SignUp(ctx, validSignUp())
	require.NoError(t, err)
	require.NoError(t, auth.Logout(ctx))
	assert.False(t, auth.IsLoggedIn(ctx))

	_, err = auth.Login(ctx, "", "Abcdefg1")
	assert.Equal(t, util.KindValidation, util.KindOf(err))

	_, err = auth.Login(ctx, "not-an-email", "Abcdefg1")
	assert.Equal(t, util.KindInvalidFormat, util.KindOf(err))

	_, err = auth.Login(ctx, "ada@example.com", "Ab1")
	assert.Equal(t, util.KindWeakInput, util.KindOf(err))

	_, err = auth.Login(ctx, "ada@example.com", "Abcdefg2")
	assert.ErrorIs(t, err, util.ErrInvalidLogin)
	assert.False(t, auth.IsLoggedIn(ctx))

	resp, err := auth.Login(ctx, "ADA@example.com", "Abcdefg1")
	require.NoError(t, err)
	assert.Equal(t, signed.User.ID, resp.User.ID)
	assert.NotEqual(t, signed.Token, resp.Token)
	assert.True(t, auth.ValidateToken(ctx, resp.Token))
	assert.False(t, auth.ValidateToken(ctx, signed.Token))
}

func TestLogoutIsIdempotent(t *testing.T) {
	ctx := context.Background()
	auth, _ := newTestAuth()

	_, err := auth.SignUp(ctx, validSignUp())
	require.NoError(t, err)

	require.NoError(t, auth.Logout(ctx))
	require.NoError(t, auth.Logout(ctx))
	assert.Empty(t, auth.GetToken(ctx))
	assert.Nil(t, auth.GetCurrentUser(ctx))
	assert.False(t, auth.ValidateToken(ctx, ""))
}

func TestLatencyHonoursContext(t *testing.T) {
	auth, store := newTestAuth()
	auth.SetLatency(time.Minute)
	assert.Equal(t, time.Minute, auth.Latency())

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := auth.SignUp(ctx, validSignUp())
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, util.KindRequestCanceled, util.KindOf(err))
	assert.Less(t, time.Since(start), time.Second)
	assert.Equal(t, 0, store.Len())
}

func TestCanceledLoginIsTyped(t *testing.T) {
	auth, _ := newTestAuth()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := auth.Login(ctx, "ada@example.com", "Abcdefg1")
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, util.KindRequestCanceled, util.KindOf(err))
}

func TestOverlongPasswordIsWeakInput(t *testing.T) {
	ctx := context.Background()
	auth, store := newTestAuth()
	long := "Abcdefg1" + strings.Repeat("x", 70)

	req := validSignUp()
	req.Password = long
	_, err := auth.SignUp(ctx, req)
	require.Error(t, err)
	assert.Equal(t, util.KindWeakInput, util.KindOf(err))
	assert.Equal(t, 0, store.Len())

	_, err = auth.Login(ctx, "ada@example.com", long)
	assert.Equal(t, util.KindWeakInput, util.KindOf(err))

	// 恰好 72 字节仍可注册并登录
	req.Password = "Abcdefg1" + strings.Repeat("x", 64)
	_, err = auth.SignUp(ctx, req)
	require.NoError(t, err)
	_, err = auth.Login(ctx, req.Email, req.Password)
	require.NoError(t, err)
}

func TestRefreshCurrentUser(t *testing.T) {
	ctx := context.Background()
	auth, _ := newTestAuth()

	resp, err := auth.SignUp(ctx, validSignUp())
	require.NoError(t, err)

	record, err := auth.Users.UpdateAvatar(ctx, resp.User.ID, "/uploads/a.png")
	require.NoError(t, err)
	require.NoError(t, auth.RefreshCurrentUser(ctx, record))

	current := auth.GetCurrentUser(ctx)
	require.NotNil(t, current)
	assert.Equal(t, "/uploads/a.png", current.Avatar)
}

func TestToPublicUserDropsHash(t *testing.T) {
	record := &model.UserRecord{ID: "user_1", Email: "a@b.co", PasswordHash: "secret"}
	public := ToPublicUser(record)
	assert.Equal(t, "user_1", public.ID)
	assert.Equal(t, "a@b.co", public.Email)
}
