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
	partMocks "stagehand/internal/domains/part/mocks"
	performanceMocks "stagehand/internal/domains/performance/mocks"
	performanceModel "stagehand/internal/domains/performance/model"
	signupMocks "stagehand/internal/domains/signup/mocks"
	"stagehand/internal/domains/signup/model"
	"stagehand/internal/domains/signup/model/dto"
	"stagehand/internal/domains/signup/service"
	studentMocks "stagehand/internal/domains/student/mocks"
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

const (
	performanceID = "5f0c1a8e-8d0b-4c1e-9a53-2b8e6f1d7c44"
	studentID     = "0b7d6b7e-3f3c-4a55-8a4f-2d2f4bde9a02"
	partID        = "9a4e2c1d-6b7f-4e3a-8c5d-1f2e3d4c5b6a"
)

// now is 12:00 in New York.
var now = time.Date(2024, 6, 15, 16, 0, 0, 0, time.UTC)

type fixture struct {
	repo        *signupMocks.MockSignup
	performance *performanceMocks.MockPerformance
	student     *studentMocks.MockStudent
	part        *partMocks.MockPart
	cache       *cacheMocks.MockRedisCache
	svc         service.Signup
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	ctrl := gomock.NewController(t)

	clock := clockMocks.NewMockClock(ctrl)
	clock.EXPECT().Now().Return(now).AnyTimes()

	conv, err := timezone.NewConverter("America/New_York", "ET", clock)
	require.NoError(t, err)

	cfg := &config.Config{}
	cfg.Cache.TTL = 3600

	f := &fixture{
		repo:        signupMocks.NewMockSignup(ctrl),
		performance: performanceMocks.NewMockPerformance(ctrl),
		student:     studentMocks.NewMockStudent(ctrl),
		part:        partMocks.NewMockPart(ctrl),
		cache:       cacheMocks.NewMockRedisCache(ctrl),
	}

	f.cache.EXPECT().Save(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	f.cache.EXPECT().Delete(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	f.cache.EXPECT().Clear(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()

	f.svc = service.New(f.repo, f.performance, f.student, f.part, cfg, f.cache, mocks.NewOtel(), conv)

	return f
}

func userContext() context.Context {
	return context.WithValue(context.Background(), constant.ContextKeyUserID, "director-id")
}

func recital(startsIn time.Duration, open bool) performanceModel.Performance {
	return performanceModel.Performance{
		ID:         performanceID,
		Title:      "Spring Recital",
		StartsAt:   now.Add(startsIn),
		SignupOpen: open,
	}
}

func TestSignupService_Create(t *testing.T) {
	part := partID

	tests := []struct {
		name      string
		req       dto.CreateSignupRequest
		setupMock func(f *fixture)
		wantErr   bool
		wantCode  int
	}{
		{
			name: "success",
			req:  dto.CreateSignupRequest{PerformanceID: performanceID, StudentID: studentID, PartID: &part},
			setupMock: func(f *fixture) {
				f.performance.EXPECT().Get(gomock.Any(), gomock.Any()).Return(recital(48*time.Hour, true), nil)
				f.student.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(true, nil)
				f.part.EXPECT().Exist(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, filter gDto.FilterGroup) (bool, error) {
					_, args := filter.GetWhereClause()
					assert.Equal(t, partID, args["id"])
					assert.Equal(t, performanceID, args["performance_id"])

					return true, nil
				})
				f.repo.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(false, nil)
				f.repo.EXPECT().Insert(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, m model.Signup) error {
					assert.Equal(t, model.StatusPending, m.Status)
					assert.Equal(t, now, m.CreatedAt)

					return nil
				})
			},
		},
		{
			name: "performance not found",
			req:  dto.CreateSignupRequest{PerformanceID: performanceID, StudentID: studentID},
			setupMock: func(f *fixture) {
				f.performance.EXPECT().Get(gomock.Any(), gomock.Any()).Return(performanceModel.Performance{}, nil)
			},
			wantErr:  true,
			wantCode: http.StatusNotFound,
		},
		{
			name: "signups closed",
			req:  dto.CreateSignupRequest{PerformanceID: performanceID, StudentID: studentID},
			setupMock: func(f *fixture) {
				f.performance.EXPECT().Get(gomock.Any(), gomock.Any()).Return(recital(48*time.Hour, false), nil)
			},
			wantErr:  true,
			wantCode: http.StatusForbidden,
		},
		{
			name: "inside the lock window",
			req:  dto.CreateSignupRequest{PerformanceID: performanceID, StudentID: studentID},
			setupMock: func(f *fixture) {
				f.performance.EXPECT().Get(gomock.Any(), gomock.Any()).Return(recital(time.Hour, true), nil)
			},
			wantErr:  true,
			wantCode: http.StatusLocked,
		},
		{
			name: "unknown student",
			req:  dto.CreateSignupRequest{PerformanceID: performanceID, StudentID: studentID},
			setupMock: func(f *fixture) {
				f.performance.EXPECT().Get(gomock.Any(), gomock.Any()).Return(recital(61*time.Minute, true), nil)
				f.student.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(false, nil)
			},
			wantErr:  true,
			wantCode: http.StatusNotFound,
		},
		{
			name: "part from another performance",
			req:  dto.CreateSignupRequest{PerformanceID: performanceID, StudentID: studentID, PartID: &part},
			setupMock: func(f *fixture) {
				f.performance.EXPECT().Get(gomock.Any(), gomock.Any()).Return(recital(48*time.Hour, true), nil)
				f.student.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(true, nil)
				f.part.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(false, nil)
			},
			wantErr:  true,
			wantCode: http.StatusNotFound,
		},
		{
			name: "already signed up",
			req:  dto.CreateSignupRequest{PerformanceID: performanceID, StudentID: studentID},
			setupMock: func(f *fixture) {
				f.performance.EXPECT().Get(gomock.Any(), gomock.Any()).Return(recital(48*time.Hour, true), nil)
				f.student.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(true, nil)
				f.repo.EXPECT().Exist(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, filter gDto.FilterGroup) (bool, error) {
					where, _ := filter.GetWhereClause()
					assert.Contains(t, where, "signups.performance_id = :performance_id")
					assert.Contains(t, where, "signups.student_id = :student_id")

					return true, nil
				})
			},
			wantErr:  true,
			wantCode: http.StatusConflict,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			tt.setupMock(f)

			id, err := f.svc.Create(userContext(), tt.req)
			time.Sleep(10 * time.Millisecond)

			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, tt.wantCode, failure.GetCode(err))

				return
			}

			require.NoError(t, err)
			assert.NotEmpty(t, id)
		})
	}
}

func TestSignupService_GetAll(t *testing.T) {
	f := newFixture(t)

	first, last, title := "Ada", "Lovelace", "Spring Recital"

	f.cache.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("cache miss")).Times(2)
	f.repo.EXPECT().Count(gomock.Any(), gomock.Any()).Return(1, nil)
	f.repo.EXPECT().GetAll(gomock.Any(), gomock.Any(), gomock.Any()).Return([]model.Signup{{
		ID:               "signup-1",
		PerformanceID:    performanceID,
		StudentID:        studentID,
		Status:           model.StatusConfirmed,
		StudentFirstName: &first,
		StudentLastName:  &last,
		PerformanceTitle: &title,
	}}, nil)

	res, err := f.svc.GetAll(context.Background(), gDto.QueryParams{Page: 1, Limit: 10}, gDto.FilterGroup{})
	time.Sleep(10 * time.Millisecond)

	require.NoError(t, err)
	require.Len(t, res.Signups, 1)
	assert.Equal(t, "Ada Lovelace", res.Signups[0].StudentName)
	assert.Equal(t, "Spring Recital", res.Signups[0].PerformanceTitle)
}

func TestSignupService_Update(t *testing.T) {
	existing := model.Signup{ID: "signup-1", PerformanceID: performanceID, StudentID: studentID, Status: model.StatusPending}

	t.Run("confirms", func(t *testing.T) {
		f := newFixture(t)

		f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(existing, nil)
		f.performance.EXPECT().Get(gomock.Any(), gomock.Any()).Return(recital(48*time.Hour, true), nil)
		f.repo.EXPECT().Update(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, m map[string]any, _ gDto.FilterGroup) error {
			assert.Equal(t, model.StatusConfirmed, m[model.FieldStatus])
			assert.Equal(t, "director-id", m[constant.FieldModifiedBy])

			return nil
		})

		err := f.svc.Update(userContext(), dto.UpdateSignupRequest{Status: model.StatusConfirmed}, "signup-1")
		time.Sleep(10 * time.Millisecond)

		assert.NoError(t, err)
	})

	t.Run("frozen inside the lock window", func(t *testing.T) {
		f := newFixture(t)

		f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(existing, nil)
		f.performance.EXPECT().Get(gomock.Any(), gomock.Any()).Return(recital(30*time.Minute, true), nil)

		err := f.svc.Update(userContext(), dto.UpdateSignupRequest{Status: model.StatusWithdrawn}, "signup-1")
		require.Error(t, err)
		assert.Equal(t, http.StatusLocked, failure.GetCode(err))
	})

	t.Run("empty request", func(t *testing.T) {
		f := newFixture(t)

		err := f.svc.Update(userContext(), dto.UpdateSignupRequest{}, "signup-1")
		require.Error(t, err)
		assert.Equal(t, http.StatusBadRequest, failure.GetCode(err))
	})
}

func TestSignupService_Delete(t *testing.T) {
	t.Run("not found", func(t *testing.T) {
		f := newFixture(t)

		f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(model.Signup{}, nil)

		err := f.svc.Delete(userContext(), "missing")
		require.Error(t, err)
		assert.Equal(t, http.StatusNotFound, failure.GetCode(err))
	})

	t.Run("success", func(t *testing.T) {
		f := newFixture(t)

		f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(model.Signup{ID: "signup-1"}, nil)
		f.repo.EXPECT().Delete(gomock.Any(), gomock.Any()).Return(nil)

		err := f.svc.Delete(userContext(), "signup-1")
		time.Sleep(10 * time.Millisecond)

		assert.NoError(t, err)
	})
}
