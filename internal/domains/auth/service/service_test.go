package service_test

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"stagehand/config"
	"stagehand/infras/jwt"
	jwtMocks "stagehand/infras/jwt/mocks"
	"stagehand/infras/otel/mocks"
	"stagehand/internal/domains/auth/model/dto"
	"stagehand/internal/domains/auth/service"
	userMocks "stagehand/internal/domains/user/mocks"
	userModel "stagehand/internal/domains/user/model"
	"stagehand/shared/constant"
	gDto "stagehand/shared/dto"
	"stagehand/shared/failure"
	"stagehand/shared/timezone"
	clockMocks "stagehand/shared/timezone/mocks"
)

// passwordHash is the bcrypt hash of "password".
const passwordHash = "$2a$10$92IXUNpkjO0rOQ5byMi.Ye4oKoEa3Ro9llC/.og/at2.uheWG/igi"

var now = time.Date(2024, 6, 15, 16, 0, 0, 0, time.UTC)

type fixture struct {
	userRepo *userMocks.MockUser
	jwt      *jwtMocks.MockJWT
	svc      service.Auth
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	ctrl := gomock.NewController(t)

	clock := clockMocks.NewMockClock(ctrl)
	clock.EXPECT().Now().Return(now).AnyTimes()

	conv, err := timezone.NewConverter("America/New_York", "ET", clock)
	require.NoError(t, err)

	f := &fixture{
		userRepo: userMocks.NewMockUser(ctrl),
		jwt:      jwtMocks.NewMockJWT(ctrl),
	}

	f.svc = service.New(f.userRepo, &config.Config{}, mocks.NewOtel(), f.jwt, conv)

	return f
}

func director() userModel.User {
	name := "Test Director"

	return userModel.User{
		ID:       "user-id-123",
		Email:    "director@example.com",
		Password: passwordHash,
		Role:     constant.RoleDirector,
		FullName: &name,
		Active:   true,
	}
}

func TestAuthService_Register(t *testing.T) {
	req := dto.RegisterRequest{Email: "new@example.com", Password: "password"}

	t.Run("success", func(t *testing.T) {
		f := newFixture(t)

		f.userRepo.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(false, nil)
		f.userRepo.EXPECT().Insert(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, m userModel.User) error {
			assert.Equal(t, "new@example.com", m.Email)
			assert.NotEqual(t, "password", m.Password)
			assert.False(t, m.Active)

			return nil
		})

		assert.NoError(t, f.svc.Register(context.Background(), req))
	})

	t.Run("email taken", func(t *testing.T) {
		f := newFixture(t)

		f.userRepo.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(true, nil)

		err := f.svc.Register(context.Background(), req)
		require.Error(t, err)
		assert.Equal(t, http.StatusConflict, failure.GetCode(err))
	})
}

func TestAuthService_Login(t *testing.T) {
	tests := []struct {
		name      string
		req       dto.LoginRequest
		setupMock func(f *fixture)
		wantErr   bool
		wantCode  int
	}{
		{
			name: "successful login",
			req:  dto.LoginRequest{Email: "director@example.com", Password: "password"},
			setupMock: func(f *fixture) {
				user := director()

				f.userRepo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(user, nil)
				f.jwt.EXPECT().GenerateTokenPair(user.ID, user.Email, user.Role).Return(&jwt.TokenPair{
					AccessToken:  "access-token",
					RefreshToken: "refresh-token",
					TokenType:    "Bearer",
				}, nil)
				f.userRepo.EXPECT().Update(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, m map[string]any, _ gDto.FilterGroup) error {
					assert.Equal(t, now, m[userModel.FieldLastLogin])

					return nil
				})
			},
		},
		{
			name: "last login failure does not block",
			req:  dto.LoginRequest{Email: "director@example.com", Password: "password"},
			setupMock: func(f *fixture) {
				f.userRepo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(director(), nil)
				f.jwt.EXPECT().GenerateTokenPair(gomock.Any(), gomock.Any(), gomock.Any()).Return(&jwt.TokenPair{AccessToken: "access-token", RefreshToken: "refresh-token"}, nil)
				f.userRepo.EXPECT().Update(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("database error"))
			},
		},
		{
			name: "unknown email",
			req:  dto.LoginRequest{Email: "nobody@example.com", Password: "password"},
			setupMock: func(f *fixture) {
				f.userRepo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(userModel.User{}, nil)
			},
			wantErr:  true,
			wantCode: http.StatusUnauthorized,
		},
		{
			name: "wrong password",
			req:  dto.LoginRequest{Email: "director@example.com", Password: "wrongpassword"},
			setupMock: func(f *fixture) {
				f.userRepo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(director(), nil)
			},
			wantErr:  true,
			wantCode: http.StatusUnauthorized,
		},
		{
			name: "inactive user",
			req:  dto.LoginRequest{Email: "director@example.com", Password: "password"},
			setupMock: func(f *fixture) {
				user := director()
				user.Active = false

				f.userRepo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(user, nil)
			},
			wantErr:  true,
			wantCode: http.StatusForbidden,
		},
		{
			name: "token generation error",
			req:  dto.LoginRequest{Email: "director@example.com", Password: "password"},
			setupMock: func(f *fixture) {
				f.userRepo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(director(), nil)
				f.jwt.EXPECT().GenerateTokenPair(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, errors.New("signing error"))
			},
			wantErr:  true,
			wantCode: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			tt.setupMock(f)

			res, err := f.svc.Login(context.Background(), tt.req)

			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, tt.wantCode, failure.GetCode(err))

				return
			}

			require.NoError(t, err)
			assert.Equal(t, "access-token", res.AccessToken)
			assert.Equal(t, "refresh-token", res.RefreshToken)
		})
	}
}

func TestAuthService_RefreshToken(t *testing.T) {
	t.Run("successful token refresh", func(t *testing.T) {
		f := newFixture(t)

		f.jwt.EXPECT().RefreshTokens(gomock.Any(), "valid-refresh-token").Return(&jwt.TokenPair{
			AccessToken:  "new-access-token",
			RefreshToken: "new-refresh-token",
		}, nil)

		res, err := f.svc.RefreshToken(context.Background(), dto.RefreshTokenRequest{RefreshToken: "valid-refresh-token"})

		require.NoError(t, err)
		assert.Equal(t, "new-access-token", res.AccessToken)
		assert.Equal(t, "new-refresh-token", res.RefreshToken)
	})

	t.Run("invalid refresh token", func(t *testing.T) {
		f := newFixture(t)

		f.jwt.EXPECT().RefreshTokens(gomock.Any(), "invalid-refresh-token").Return(nil, jwt.ErrInvalidToken)

		_, err := f.svc.RefreshToken(context.Background(), dto.RefreshTokenRequest{RefreshToken: "invalid-refresh-token"})

		require.Error(t, err)
		assert.Equal(t, http.StatusUnauthorized, failure.GetCode(err))
	})
}

func TestAuthService_ChangePassword(t *testing.T) {
	signedIn := context.WithValue(context.Background(), constant.ContextKeyUserID, "user-id-123")

	tests := []struct {
		name      string
		ctx       context.Context
		req       dto.ChangePasswordRequest
		setupMock func(f *fixture)
		wantErr   bool
		wantCode  int
	}{
		{
			name: "success",
			ctx:  signedIn,
			req:  dto.ChangePasswordRequest{CurrentPassword: "password", NewPassword: "new-password"},
			setupMock: func(f *fixture) {
				f.userRepo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(director(), nil)
				f.userRepo.EXPECT().Update(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, m map[string]any, _ gDto.FilterGroup) error {
					hashed, ok := m[userModel.FieldPassword].(string)
					require.True(t, ok)
					assert.NotEqual(t, "new-password", hashed)
					assert.Equal(t, "user-id-123", m[constant.FieldModifiedBy])

					return nil
				})
			},
		},
		{
			name: "wrong current password",
			ctx:  signedIn,
			req:  dto.ChangePasswordRequest{CurrentPassword: "not-it", NewPassword: "new-password"},
			setupMock: func(f *fixture) {
				f.userRepo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(director(), nil)
			},
			wantErr:  true,
			wantCode: http.StatusBadRequest,
		},
		{
			name: "user not found",
			ctx:  signedIn,
			req:  dto.ChangePasswordRequest{CurrentPassword: "password", NewPassword: "new-password"},
			setupMock: func(f *fixture) {
				f.userRepo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(userModel.User{}, nil)
			},
			wantErr:  true,
			wantCode: http.StatusNotFound,
		},
		{
			name:      "no user in context",
			ctx:       context.Background(),
			req:       dto.ChangePasswordRequest{CurrentPassword: "password", NewPassword: "new-password"},
			setupMock: func(_ *fixture) {},
			wantErr:   true,
			wantCode:  http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			tt.setupMock(f)

			err := f.svc.ChangePassword(tt.ctx, tt.req)

			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, tt.wantCode, failure.GetCode(err))

				return
			}

			require.NoError(t, err)
		})
	}
}

func TestAuthService_Me(t *testing.T) {
	t.Run("returns the profile without the password", func(t *testing.T) {
		f := newFixture(t)

		f.userRepo.EXPECT().Get(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, filter gDto.FilterGroup, _ ...string) (userModel.User, error) {
			_, args := filter.GetWhereClause()
			assert.Equal(t, "user-id-123", args[userModel.FieldID])

			return director(), nil
		})

		res, err := f.svc.Me(context.WithValue(context.Background(), constant.ContextKeyUserID, "user-id-123"))

		require.NoError(t, err)
		assert.Equal(t, "director@example.com", res.Email)
		assert.Equal(t, constant.RoleDirector, res.Role)
	})

	t.Run("anonymous", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.svc.Me(context.Background())
		require.Error(t, err)
		assert.Equal(t, http.StatusUnauthorized, failure.GetCode(err))
	})

	t.Run("repository error", func(t *testing.T) {
		f := newFixture(t)

		f.userRepo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(userModel.User{}, errors.New("database error"))

		_, err := f.svc.Me(context.WithValue(context.Background(), constant.ContextKeyUserID, "user-id-123"))
		require.Error(t, err)
		assert.Equal(t, http.StatusInternalServerError, failure.GetCode(err))
	})
}
