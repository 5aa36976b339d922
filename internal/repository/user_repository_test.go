package repository

import (
	"context"
	"hiring_tool_backend/internal/model"
	"hiring_tool_backend/internal/util"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newTestUserRepo() (*UserRepository, *MemoryKVStore) {
	store := NewMemoryKVStore()
	return NewUserRepository(store, bcrypt.MinCost), store
}

func adaInput() model.NewUserInput {
	return model.NewUserInput{
		Name:        "Ada Lovelace",
		Email:       "Ada@Example.com",
		Password:    "Abcdefg1",
		Username:    "ada",
		Country:     "UK",
		Role:        "Engineer",
		Institution: "Analytical Engines",
	}
}

func TestCreateUserAndVerify(t *testing.T) {
	ctx := context.Background()
	repo, _ := newTestUserRepo()

	user, err := repo.CreateUser(ctx, adaInput())
	require.NoError(t, err)
	assert.Regexp(t, regexp.MustCompile(`^user_\d+_[0-9a-z]{9}$`), user.ID)
	assert.NotEqual(t, "Abcdefg1", user.PasswordHash)
	assert.False(t, user.CreatedAt.IsZero())

	found, err := repo.VerifyCredentials(ctx, "ada@example.com", "Abcdefg1")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, user.ID, found.ID)

	wrong, err := repo.VerifyCredentials(ctx, "ada@example.com", "Abcdefg2")
	require.NoError(t, err)
	assert.Nil(t, wrong)

	unknown, err := repo.VerifyCredentials(ctx, "nobody@example.com", "Abcdefg1")
	require.NoError(t, err)
	assert.Nil(t, unknown)
}

func TestCreateUserDuplicateEmailIsCaseInsensitive(t *testing.T) {
	ctx := context.Background()
	repo, _ := newTestUserRepo()

	_, err := repo.CreateUser(ctx, adaInput())
	require.NoError(t, err)

	dup := adaInput()
	dup.Email = "ADA@EXAMPLE.COM"
	_, err = repo.CreateUser(ctx, dup)
	assert.ErrorIs(t, err, util.ErrDuplicateEmail)

	users, err := repo.GetAllUsers(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 1)
}

func TestCreateUserGeneratesDistinctIDs(t *testing.T) {
	ctx := context.Background()
	repo, _ := newTestUserRepo()

	first := adaInput()
	second := adaInput()
	second.Email = "grace@example.com"

	a, err := repo.CreateUser(ctx, first)
	require.NoError(t, err)
	b, err := repo.CreateUser(ctx, second)
	require.NoError(t, err)
	assert.NotEqual(t, a.ID, b.ID)

	byID, err := repo.FindByID(ctx, b.ID)
	require.NoError(t, err)
	require.NotNil(t, byID)
	assert.Equal(t, "grace@example.com", byID.Email)

	missing, err := repo.FindByID(ctx, "user_0_missing")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestUpdateAvatar(t *testing.T) {
	ctx := context.Background()
	repo, _ := newTestUserRepo()

	user, err := repo.CreateUser(ctx, adaInput())
	require.NoError(t, err)

	updated, err := repo.UpdateAvatar(ctx, user.ID, "/uploads/avatars/a.png")
	require.NoError(t, err)
	assert.Equal(t, "/uploads/avatars/a.png", updated.Avatar)

	_, err = repo.UpdateAvatar(ctx, "user_0_missing", "x")
	assert.ErrorIs(t, err, util.ErrUserNotFound)
}

func TestGenerateToken(t *testing.T) {
	repo, _ := newTestUserRepo()
	a := repo.GenerateToken()
	b := repo.GenerateToken()
	assert.Regexp(t, regexp.MustCompile(`^token_\d+_[0-9a-z]{9}$`), a)
	assert.NotEqual(t, a, b)
}

func TestUserRepositoryStorageFailure(t *testing.T) {
	repo := NewUserRepository(brokenStore{}, bcrypt.MinCost)
	_, err := repo.CreateUser(context.Background(), adaInput())
	assert.Equal(t, util.KindStorageUnavailable, util.KindOf(err))
}
