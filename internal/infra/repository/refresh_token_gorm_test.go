package repository_test

import (
	"context"
	"testing"
	"time"

	"app/internal/domain/model"
	infrarepo "app/internal/infra/repository"
	repo "app/internal/repository"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("failed to connect to in-memory db: %v", err)
	}

	if err := db.AutoMigrate(&model.User{}, &model.Role{}, &model.RefreshToken{}); err != nil {
		t.Fatalf("failed to migrate tables: %v", err)
	}

	return db
}

func newToken(userID int64, hash string, expiresAt time.Time) *model.RefreshToken {
	return &model.RefreshToken{
		ID:        uuid.NewString(),
		UserID:    userID,
		TokenHash: hash,
		Platform:  "web",
		ExpiresAt: expiresAt,
	}
}

func TestRefreshTokenRepository_CreateAndFind(t *testing.T) {
	ctx := context.Background()
	r := infrarepo.NewRefreshTokenRepository(newTestDB(t))

	exp := time.Now().Add(7 * 24 * time.Hour)
	require.NoError(t, r.Create(ctx, newToken(1, "hash-1", exp)))

	rt, err := r.FindByTokenHash(ctx, "hash-1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), rt.UserID)
	assert.WithinDuration(t, exp, rt.ExpiresAt, time.Second)

	_, err = r.FindByTokenHash(ctx, "no-such-hash")
	assert.ErrorIs(t, err, repo.ErrRefreshTokenNotFound)
}

func TestRefreshTokenRepository_DuplicateHash(t *testing.T) {
	ctx := context.Background()
	r := infrarepo.NewRefreshTokenRepository(newTestDB(t))

	exp := time.Now().Add(time.Hour)
	require.NoError(t, r.Create(ctx, newToken(1, "same-hash", exp)))

	// token_hashはunique
	err := r.Create(ctx, newToken(2, "same-hash", exp))
	assert.Error(t, err)
}

func TestRefreshTokenRepository_DeleteByTokenHash_OnlyOnce(t *testing.T) {
	ctx := context.Background()
	r := infrarepo.NewRefreshTokenRepository(newTestDB(t))

	require.NoError(t, r.Create(ctx, newToken(1, "hash-1", time.Now().Add(time.Hour))))

	// 1回目だけ成功。2回目は「もうない」
	require.NoError(t, r.DeleteByTokenHash(ctx, "hash-1"))
	assert.ErrorIs(t, r.DeleteByTokenHash(ctx, "hash-1"), repo.ErrRefreshTokenNotFound)

	_, err := r.FindByTokenHash(ctx, "hash-1")
	assert.ErrorIs(t, err, repo.ErrRefreshTokenNotFound)
}

func TestRefreshTokenRepository_DeleteAllByUserID(t *testing.T) {
	ctx := context.Background()
	r := infrarepo.NewRefreshTokenRepository(newTestDB(t))

	exp := time.Now().Add(time.Hour)
	require.NoError(t, r.Create(ctx, newToken(1, "hash-a", exp)))
	require.NoError(t, r.Create(ctx, newToken(1, "hash-b", exp)))
	require.NoError(t, r.Create(ctx, newToken(2, "hash-c", exp)))

	require.NoError(t, r.DeleteAllByUserID(ctx, 1))

	_, err := r.FindByTokenHash(ctx, "hash-a")
	assert.ErrorIs(t, err, repo.ErrRefreshTokenNotFound)
	_, err = r.FindByTokenHash(ctx, "hash-b")
	assert.ErrorIs(t, err, repo.ErrRefreshTokenNotFound)

	// 他ユーザーのトークンは残る
	_, err = r.FindByTokenHash(ctx, "hash-c")
	assert.NoError(t, err)
}

func TestRefreshTokenRepository_DeleteExpired(t *testing.T) {
	ctx := context.Background()
	r := infrarepo.NewRefreshTokenRepository(newTestDB(t))

	now := time.Now()
	require.NoError(t, r.Create(ctx, newToken(1, "old-1", now.Add(-time.Hour))))
	require.NoError(t, r.Create(ctx, newToken(1, "old-2", now.Add(-time.Minute))))
	require.NoError(t, r.Create(ctx, newToken(1, "live", now.Add(time.Hour))))

	deleted, err := r.DeleteExpired(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, int64(2), deleted)

	_, err = r.FindByTokenHash(ctx, "live")
	assert.NoError(t, err)
}
