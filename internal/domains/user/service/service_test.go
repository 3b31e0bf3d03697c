package service_test

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"
	_ "time/tzdata"

	"stagehand/config"
	"stagehand/infras/otel/mocks"
	userMocks "stagehand/internal/domains/user/mocks"
	"stagehand/internal/domains/user/model"
	"stagehand/internal/domains/user/model/dto"
	"stagehand/internal/domains/user/service"
	cacheMocks "stagehand/shared/cache/mocks"
	"stagehand/shared/constant"
	gDto "stagehand/shared/dto"
	"stagehand/shared/failure"
	"stagehand/shared/timezone"
	clockMocks "stagehand/shared/timezone/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type fixture struct {
	repo  *userMocks.MockUser
	cache *cacheMocks.MockRedisCache
	svc   service.User
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	ctrl := gomock.NewController(t)

	clock := clockMocks.NewMockClock(ctrl)
	clock.EXPECT().Now().Return(time.Date(2024, 6, 15, 16, 0, 0, 0, time.UTC)).AnyTimes()

	conv, err := timezone.NewConverter("America/New_York", "ET", clock)
	require.NoError(t, err)

	cfg := &config.Config{}
	cfg.Cache.TTL = 3600

	f := &fixture{
		repo:  userMocks.NewMockUser(ctrl),
		cache: cacheMocks.NewMockRedisCache(ctrl),
	}

	f.cache.EXPECT().Save(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	f.cache.EXPECT().Delete(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	f.cache.EXPECT().Clear(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()

	f.svc = service.New(f.repo, cfg, f.cache, mocks.NewOtel(), conv)

	return f
}

func adminContext() context.Context {
	return context.WithValue(context.Background(), constant.ContextKeyUserID, "admin-id")
}

func TestUserService_Create(t *testing.T) {
	req := dto.CreateUserRequest{Email: "staff@example.com", Password: "password"}

	t.Run("defaults to staff", func(t *testing.T) {
		f := newFixture(t)

		f.repo.EXPECT().Exist(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, filter gDto.FilterGroup) (bool, error) {
			_, args := filter.GetWhereClause()
			assert.Equal(t, "staff@example.com", args[model.FieldEmail])

			return false, nil
		})
		f.repo.EXPECT().Insert(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, m model.User) error {
			assert.Equal(t, constant.RoleStaff, m.Role)
			assert.True(t, m.Active)
			assert.Equal(t, "admin-id", m.CreatedBy)

			return nil
		})

		err := f.svc.Create(adminContext(), req)
		time.Sleep(10 * time.Millisecond)

		assert.NoError(t, err)
	})

	t.Run("email taken", func(t *testing.T) {
		f := newFixture(t)

		f.repo.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(true, nil)

		err := f.svc.Create(adminContext(), req)
		require.Error(t, err)
		assert.Equal(t, http.StatusConflict, failure.GetCode(err))
	})
}

func TestUserService_Get(t *testing.T) {
	f := newFixture(t)

	lastLogin := time.Date(2024, 6, 14, 12, 30, 0, 0, time.UTC)

	f.cache.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("cache miss"))
	f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(model.User{ID: "user-1", Email: "a@example.com", Role: constant.RoleAdmin, LastLogin: &lastLogin}, nil)

	res, err := f.svc.Get(context.Background(), "user-1")
	time.Sleep(10 * time.Millisecond)

	require.NoError(t, err)
	require.NotNil(t, res.LastLogin)
	assert.Equal(t, "2024-06-14T12:30:00.000Z", *res.LastLogin)
}

func member(role string) model.User {
	return model.User{ID: "user-1", Email: "member@studio.test", Role: role, Active: true}
}

func TestUserService_Update(t *testing.T) {
	inactive := false

	tests := []struct {
		name      string
		req       dto.UpdateUserRequest
		id        string
		setupMock func(f *fixture)
		wantErr   bool
		wantCode  int
	}{
		{
			name: "promote",
			req:  dto.UpdateUserRequest{Role: constant.RoleDirector},
			id:   "user-1",
			setupMock: func(f *fixture) {
				f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(member(constant.RoleStaff), nil)
				f.repo.EXPECT().Update(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, m map[string]any, _ gDto.FilterGroup) error {
					assert.Equal(t, constant.RoleDirector, m[model.FieldRole])

					return nil
				})
			},
		},
		{
			name: "deactivate another account",
			req:  dto.UpdateUserRequest{Active: &inactive},
			id:   "user-1",
			setupMock: func(f *fixture) {
				f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(member(constant.RoleStaff), nil)
				f.repo.EXPECT().Update(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, m map[string]any, _ gDto.FilterGroup) error {
					assert.Equal(t, false, m[model.FieldActive])

					return nil
				})
			},
		},
		{
			name:      "deactivate self",
			req:       dto.UpdateUserRequest{Active: &inactive},
			id:        "admin-id",
			setupMock: func(_ *fixture) {},
			wantErr:   true,
			wantCode:  http.StatusBadRequest,
		},
		{
			name:      "empty request",
			req:       dto.UpdateUserRequest{},
			id:        "user-1",
			setupMock: func(_ *fixture) {},
			wantErr:   true,
			wantCode:  http.StatusBadRequest,
		},
		{
			name: "not found",
			req:  dto.UpdateUserRequest{Role: constant.RoleStaff},
			id:   "missing",
			setupMock: func(f *fixture) {
				f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(model.User{}, nil)
			},
			wantErr:  true,
			wantCode: http.StatusNotFound,
		},
		{
			name: "demote one of several admins",
			req:  dto.UpdateUserRequest{Role: constant.RoleDirector},
			id:   "user-1",
			setupMock: func(f *fixture) {
				f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(member(constant.RoleAdmin), nil)
				f.repo.EXPECT().CountActiveAdmins(gomock.Any()).Return(2, nil)
				f.repo.EXPECT().Update(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
			},
		},
		{
			name: "deactivate the last admin",
			req:  dto.UpdateUserRequest{Active: &inactive},
			id:   "user-1",
			setupMock: func(f *fixture) {
				f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(member(constant.RoleAdmin), nil)
				f.repo.EXPECT().CountActiveAdmins(gomock.Any()).Return(1, nil)
			},
			wantErr:  true,
			wantCode: http.StatusConflict,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			tt.setupMock(f)

			err := f.svc.Update(adminContext(), tt.req, tt.id)
			time.Sleep(10 * time.Millisecond)

			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, tt.wantCode, failure.GetCode(err))

				return
			}

			require.NoError(t, err)
		})
	}
}

func TestUserService_Delete(t *testing.T) {
	t.Run("self", func(t *testing.T) {
		f := newFixture(t)

		err := f.svc.Delete(adminContext(), "admin-id")
		require.Error(t, err)
		assert.Equal(t, http.StatusBadRequest, failure.GetCode(err))
	})

	t.Run("success", func(t *testing.T) {
		f := newFixture(t)

		f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(member(constant.RoleStaff), nil)
		f.repo.EXPECT().Delete(gomock.Any(), gomock.Any()).Return(nil)

		err := f.svc.Delete(adminContext(), "user-1")
		time.Sleep(10 * time.Millisecond)

		assert.NoError(t, err)
	})

	t.Run("last admin", func(t *testing.T) {
		f := newFixture(t)

		f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(member(constant.RoleAdmin), nil)
		f.repo.EXPECT().CountActiveAdmins(gomock.Any()).Return(1, nil)

		err := f.svc.Delete(adminContext(), "user-1")
		require.Error(t, err)
		assert.Equal(t, http.StatusConflict, failure.GetCode(err))
	})

	t.Run("admin count error", func(t *testing.T) {
		f := newFixture(t)

		f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(member(constant.RoleAdmin), nil)
		f.repo.EXPECT().CountActiveAdmins(gomock.Any()).Return(0, errors.New("database error"))

		err := f.svc.Delete(adminContext(), "user-1")
		require.Error(t, err)
		assert.Equal(t, http.StatusInternalServerError, failure.GetCode(err))
	})
}
