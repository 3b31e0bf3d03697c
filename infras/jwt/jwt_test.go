package jwt_test

import (
	"context"
	"testing"
	"time"

	"stagehand/config"
	"stagehand/infras/jwt"
	"stagehand/shared/timezone/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func newService(t *testing.T, now *time.Time) jwt.JWT {
	t.Helper()

	ctrl := gomock.NewController(t)
	clock := mocks.NewMockClock(ctrl)
	clock.EXPECT().Now().DoAndReturn(func() time.Time { return *now }).AnyTimes()

	cfg := &config.Config{}
	cfg.App.Name = "stagehand"
	cfg.JWT.AccessSecret = "access-secret"
	cfg.JWT.RefreshSecret = "refresh-secret"
	cfg.JWT.AccessExpireMin = 15
	cfg.JWT.RefreshExpireMin = 60

	return jwt.New(cfg, clock)
}

func TestService_GenerateAndValidate(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Second)
	svc := newService(t, &now)

	pair, err := svc.GenerateTokenPair("user-1", "director@studio.test", "admin")
	require.NoError(t, err)
	assert.Equal(t, "Bearer", pair.TokenType)
	assert.Equal(t, int64(900), pair.ExpiresIn)

	claims, err := svc.ValidateToken(context.Background(), pair.AccessToken, jwt.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "director@studio.test", claims.Email)
	assert.Equal(t, "admin", claims.Role)

	_, err = svc.ValidateToken(context.Background(), pair.AccessToken, jwt.RefreshToken)
	assert.ErrorIs(t, err, jwt.ErrInvalidToken)

	_, err = svc.ValidateToken(context.Background(), "not-a-token", jwt.AccessToken)
	assert.ErrorIs(t, err, jwt.ErrInvalidToken)
}

func TestService_ValidateToken_Expired(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Second)
	svc := newService(t, &now)

	pair, err := svc.GenerateTokenPair("user-1", "director@studio.test", "admin")
	require.NoError(t, err)

	now = now.Add(16 * time.Minute)

	_, err = svc.ValidateToken(context.Background(), pair.AccessToken, jwt.AccessToken)
	assert.ErrorIs(t, err, jwt.ErrExpiredToken)

	refreshed, err := svc.RefreshTokens(context.Background(), pair.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, refreshed.AccessToken)
}

func TestExtractTokenFromHeader(t *testing.T) {
	token, err := jwt.ExtractTokenFromHeader("Bearer abc.def")
	require.NoError(t, err)
	assert.Equal(t, "abc.def", token)

	_, err = jwt.ExtractTokenFromHeader("")
	assert.ErrorIs(t, err, jwt.ErrMissingHeader)

	_, err = jwt.ExtractTokenFromHeader("Basic abc")
	assert.ErrorIs(t, err, jwt.ErrInvalidHeader)

	_, err = jwt.ExtractTokenFromHeader("Bearer ")
	assert.ErrorIs(t, err, jwt.ErrInvalidHeader)
}
