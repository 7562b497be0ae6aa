package service

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"store_rating/internal/domain"
	"store_rating/internal/utils"
)

func newAuth(t *testing.T, h *harness) (*AuthService, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	auth := NewAuthService(
		h.repo,
		utils.NewJWTManager("test-secret", time.Hour),
		utils.BcryptHasher{Cost: bcrypt.MinCost},
		utils.NewTokenRevoker(rdb),
		utils.NewLoginThrottle(rdb, 3, time.Minute),
	)
	return auth, mr
}

func TestLoginAndIdentify(t *testing.T) {
	h := newHarness(t)
	auth, _ := newAuth(t, h)
	ctx := context.Background()
	user := h.addRater(t, 1)

	session, err := auth.Login(ctx, LoginInput{Email: "USER01@example.com", Password: testPassword})
	require.NoError(t, err)
	assert.NotEmpty(t, session.AccessToken)
	assert.Equal(t, user.ID, session.User.ID)
	assert.True(t, session.ExpiresAt.After(time.Now()))

	actor, claims, err := auth.Identify(ctx, session.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user, actor)
	assert.Equal(t, user.ID, claims.UserID)
}

func TestIdentifyReadsRoleFromStorage(t *testing.T) {
	h := newHarness(t)
	auth, _ := newAuth(t, h)
	ctx := context.Background()
	user := h.addRater(t, 1)

	session, err := auth.Login(ctx, LoginInput{Email: "user01@example.com", Password: testPassword})
	require.NoError(t, err)

	role := domain.RoleStoreOwner
	_, err = h.users.Update(ctx, h.admin, user.ID, UpdateUserInput{Role: &role})
	require.NoError(t, err)

	actor, _, err := auth.Identify(ctx, session.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleStoreOwner, actor.Role)

	require.NoError(t, h.users.Delete(ctx, h.admin, user.ID))
	_, _, err = auth.Identify(ctx, session.AccessToken)
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	h := newHarness(t)
	auth, _ := newAuth(t, h)
	ctx := context.Background()
	h.addRater(t, 1)

	_, err := auth.Login(ctx, LoginInput{Email: "user01@example.com", Password: "Wrong@123"})
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)
	_, err = auth.Login(ctx, LoginInput{Email: "nobody@example.com", Password: testPassword})
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)
	_, err = auth.Login(ctx, LoginInput{Email: "", Password: testPassword})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestLoginThrottle(t *testing.T) {
	h := newHarness(t)
	auth, mr := newAuth(t, h)
	ctx := context.Background()
	h.addRater(t, 1)

	for i := 0; i < 3; i++ {
		_, err := auth.Login(ctx, LoginInput{Email: "user01@example.com", Password: "Wrong@123"})
		require.ErrorIs(t, err, domain.ErrUnauthenticated)
	}
	_, err := auth.Login(ctx, LoginInput{Email: "user01@example.com", Password: testPassword})
	assert.ErrorIs(t, err, domain.ErrRateLimited)

	mr.FastForward(2 * time.Minute)
	_, err = auth.Login(ctx, LoginInput{Email: "user01@example.com", Password: testPassword})
	assert.NoError(t, err)
}

func TestLogoutRevokesToken(t *testing.T) {
	h := newHarness(t)
	auth, _ := newAuth(t, h)
	ctx := context.Background()
	h.addRater(t, 1)

	session, err := auth.Login(ctx, LoginInput{Email: "user01@example.com", Password: testPassword})
	require.NoError(t, err)
	_, claims, err := auth.Identify(ctx, session.AccessToken)
	require.NoError(t, err)

	require.NoError(t, auth.Logout(ctx, claims))
	_, _, err = auth.Identify(ctx, session.AccessToken)
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)
}

func TestIdentifyRejectsGarbage(t *testing.T) {
	h := newHarness(t)
	auth, _ := newAuth(t, h)
	_, _, err := auth.Identify(context.Background(), "not-a-token")
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)
}

func TestAuthWithoutRedis(t *testing.T) {
	h := newHarness(t)
	auth := NewAuthService(h.repo, utils.NewJWTManager("test-secret", time.Hour), utils.BcryptHasher{Cost: bcrypt.MinCost}, nil, nil)
	ctx := context.Background()
	h.addRater(t, 1)

	session, err := auth.Login(ctx, LoginInput{Email: "user01@example.com", Password: testPassword})
	require.NoError(t, err)
	_, claims, err := auth.Identify(ctx, session.AccessToken)
	require.NoError(t, err)
	assert.NoError(t, auth.Logout(ctx, claims))
}
