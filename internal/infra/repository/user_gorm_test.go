package repository_test

import (
	"context"
	"testing"
	"time"

	"app/internal/domain/model"
	infrarepo "app/internal/infra/repository"
	repo "app/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedUser(t *testing.T, r repo.UserRepository) *model.User {
	t.Helper()

	u := &model.User{
		Email:        "tanaka@example.com",
		PasswordHash: "bcrypt-hash",
		FirstName:    "Yuki",
		LastName:     "Tanaka",
		IsActive:     true,
		Roles: []model.Role{
			{Name: model.RoleNameNurse},
			{Name: model.RoleNameStaff},
		},
	}
	require.NoError(t, r.Create(context.Background(), u))
	return u
}

func TestUserRepository_FindByEmail_PreloadsRoles(t *testing.T) {
	ctx := context.Background()
	r := infrarepo.NewUserRepository(newTestDB(t))
	seedUser(t, r)

	u, err := r.FindByEmail(ctx, "tanaka@example.com")
	require.NoError(t, err)

	assert.Equal(t, "Yuki", u.FirstName)
	assert.ElementsMatch(t, []string{model.RoleNameNurse, model.RoleNameStaff}, u.RoleNames())

	_, err = r.FindByEmail(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, repo.ErrUserNotFound)
}

func TestUserRepository_DuplicateEmail(t *testing.T) {
	ctx := context.Background()
	r := infrarepo.NewUserRepository(newTestDB(t))
	seedUser(t, r)

	// email重複は専用エラーに翻訳される（接続障害と区別するため）
	err := r.Create(ctx, &model.User{
		Email:        "tanaka@example.com",
		PasswordHash: "other-hash",
		IsActive:     true,
	})
	assert.ErrorIs(t, err, repo.ErrUserConflict)
}

func TestUserRepository_UpdatePasswordHash(t *testing.T) {
	ctx := context.Background()
	r := infrarepo.NewUserRepository(newTestDB(t))
	u := seedUser(t, r)

	require.NoError(t, r.UpdatePasswordHash(ctx, u.ID, "new-hash"))

	got, err := r.FindByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "new-hash", got.PasswordHash)

	// いないユーザーは0件更新
	assert.ErrorIs(t, r.UpdatePasswordHash(ctx, 9999, "x"), repo.ErrUserNotFound)
}

func TestUserRepository_UpdateLastLogin(t *testing.T) {
	ctx := context.Background()
	r := infrarepo.NewUserRepository(newTestDB(t))
	u := seedUser(t, r)

	at := time.Now()
	require.NoError(t, r.UpdateLastLogin(ctx, u.ID, at))

	got, err := r.FindByID(ctx, u.ID)
	require.NoError(t, err)
	require.NotNil(t, got.LastLoginAt)
	assert.WithinDuration(t, at, *got.LastLoginAt, time.Second)

	// last_login_at以外の列や関連は触らない
	assert.Equal(t, "bcrypt-hash", got.PasswordHash)
	assert.ElementsMatch(t, []string{model.RoleNameNurse, model.RoleNameStaff}, got.RoleNames())

	assert.ErrorIs(t, r.UpdateLastLogin(ctx, 9999, at), repo.ErrUserNotFound)
}

func TestUserRepository_ClearExpiredResetTokens(t *testing.T) {
	ctx := context.Background()
	r := infrarepo.NewUserRepository(newTestDB(t))

	stale := seedUser(t, r)
	live := &model.User{
		Email:        "sato@example.com",
		PasswordHash: "bcrypt-hash",
		IsActive:     true,
	}
	require.NoError(t, r.Create(ctx, live))

	now := time.Now()
	require.NoError(t, r.SetResetToken(ctx, stale.ID, "stale-hash", now.Add(-time.Minute)))
	require.NoError(t, r.SetResetToken(ctx, live.ID, "live-hash", now.Add(time.Hour)))

	cleared, err := r.ClearExpiredResetTokens(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, int64(1), cleared)

	// 期限切れだけ消える
	_, err = r.FindByResetTokenHash(ctx, "stale-hash")
	assert.ErrorIs(t, err, repo.ErrUserNotFound)

	_, err = r.FindByResetTokenHash(ctx, "live-hash")
	assert.NoError(t, err)
}

func TestUserRepository_ResetTokenRoundTrip(t *testing.T) {
	ctx := context.Background()
	r := infrarepo.NewUserRepository(newTestDB(t))
	u := seedUser(t, r)

	exp := time.Now().Add(time.Hour)
	require.NoError(t, r.SetResetToken(ctx, u.ID, "reset-hash", exp))

	got, err := r.FindByResetTokenHash(ctx, "reset-hash")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
	require.NotNil(t, got.ResetTokenExpires)
	assert.WithinDuration(t, exp, *got.ResetTokenExpires, time.Second)

	// 上書きで前のトークンは無効になる
	require.NoError(t, r.SetResetToken(ctx, u.ID, "reset-hash-2", exp))
	_, err = r.FindByResetTokenHash(ctx, "reset-hash")
	assert.ErrorIs(t, err, repo.ErrUserNotFound)

	// クリアしたら引けない
	require.NoError(t, r.ClearResetToken(ctx, u.ID))
	_, err = r.FindByResetTokenHash(ctx, "reset-hash-2")
	assert.ErrorIs(t, err, repo.ErrUserNotFound)
}
