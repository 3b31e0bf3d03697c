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
	"stagehand/internal/domains/part/model"
	"stagehand/internal/domains/part/model/dto"
	"stagehand/internal/domains/part/service"
	performanceMocks "stagehand/internal/domains/performance/mocks"
	positionMocks "stagehand/internal/domains/position/mocks"
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
	repo        *partMocks.MockPart
	performance *performanceMocks.MockPerformance
	position    *positionMocks.MockPosition
	cache       *cacheMocks.MockRedisCache
	svc         service.Part
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
		repo:        partMocks.NewMockPart(ctrl),
		performance: performanceMocks.NewMockPerformance(ctrl),
		position:    positionMocks.NewMockPosition(ctrl),
		cache:       cacheMocks.NewMockRedisCache(ctrl),
	}

	f.cache.EXPECT().Save(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	f.cache.EXPECT().Delete(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	f.cache.EXPECT().Clear(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()

	f.svc = service.New(f.repo, f.performance, f.position, cfg, f.cache, mocks.NewOtel(), conv)

	return f
}

func userContext() context.Context {
	return context.WithValue(context.Background(), constant.ContextKeyUserID, "director-id")
}

func chorus() model.Part {
	return model.Part{
		ID:            "part-1",
		PerformanceID: "perf-1",
		Name:          "Chorus",
		Capacity:      24,
		GridRows:      4,
		GridCols:      6,
	}
}

func intPtr(v int) *int {
	return &v
}

func TestPartService_Create(t *testing.T) {
	req := dto.CreatePartRequest{
		PerformanceID: "perf-1",
		Name:          "Chorus",
		GridRows:      4,
		GridCols:      6,
	}

	tests := []struct {
		name      string
		setupMock func(f *fixture)
		wantErr   bool
		wantCode  int
	}{
		{
			name: "success",
			setupMock: func(f *fixture) {
				f.performance.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(true, nil)
				f.repo.EXPECT().Insert(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, m model.Part) error {
					assert.Equal(t, "perf-1", m.PerformanceID)
					assert.Equal(t, "director-id", m.CreatedBy)

					return nil
				})
			},
		},
		{
			name: "performance not found",
			setupMock: func(f *fixture) {
				f.performance.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(false, nil)
			},
			wantErr:  true,
			wantCode: http.StatusNotFound,
		},
		{
			name: "repository error",
			setupMock: func(f *fixture) {
				f.performance.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(true, nil)
				f.repo.EXPECT().Insert(gomock.Any(), gomock.Any()).Return(errors.New("database error"))
			},
			wantErr:  true,
			wantCode: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			tt.setupMock(f)

			id, err := f.svc.Create(userContext(), req)
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

func TestPartService_GetAll(t *testing.T) {
	f := newFixture(t)

	f.cache.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("cache miss")).Times(2)
	f.repo.EXPECT().Count(gomock.Any(), gomock.Any()).Return(1, nil)
	f.repo.EXPECT().GetAll(gomock.Any(), gomock.Any(), gomock.Any()).Return([]model.Part{chorus()}, nil)

	res, err := f.svc.GetAll(context.Background(), gDto.QueryParams{Page: 1, Limit: 10}, gDto.FilterGroup{})
	time.Sleep(10 * time.Millisecond)

	require.NoError(t, err)
	assert.Equal(t, 1, res.TotalPage)
	require.Len(t, res.Parts, 1)
	assert.Equal(t, 6, res.Parts[0].GridCols)
}

func TestPartService_Get(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		f := newFixture(t)

		f.cache.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("cache miss"))
		f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(chorus(), nil)

		res, err := f.svc.Get(context.Background(), "part-1")
		time.Sleep(10 * time.Millisecond)

		require.NoError(t, err)
		assert.Equal(t, "Chorus", res.Name)
	})

	t.Run("not found", func(t *testing.T) {
		f := newFixture(t)

		f.cache.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("cache miss"))
		f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(model.Part{}, nil)

		_, err := f.svc.Get(context.Background(), "missing")
		require.Error(t, err)
		assert.Equal(t, http.StatusNotFound, failure.GetCode(err))
	})
}

func TestPartService_Update(t *testing.T) {
	tests := []struct {
		name      string
		req       dto.UpdatePartRequest
		setupMock func(f *fixture)
		wantErr   bool
		wantCode  int
	}{
		{
			name:      "empty request",
			req:       dto.UpdatePartRequest{},
			setupMock: func(_ *fixture) {},
			wantErr:   true,
			wantCode:  http.StatusBadRequest,
		},
		{
			name: "growing the grid skips the position check",
			req:  dto.UpdatePartRequest{GridRows: intPtr(6)},
			setupMock: func(f *fixture) {
				f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(chorus(), nil)
				f.repo.EXPECT().Update(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, m map[string]any, _ gDto.FilterGroup) error {
					assert.Equal(t, 6, m[model.FieldGridRows])

					return nil
				})
			},
		},
		{
			name: "shrinking an empty area",
			req:  dto.UpdatePartRequest{GridCols: intPtr(3)},
			setupMock: func(f *fixture) {
				f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(chorus(), nil)
				f.position.EXPECT().Count(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, filter gDto.FilterGroup) (int, error) {
					where, args := filter.GetWhereClause()
					assert.Contains(t, where, "positions.grid_col >= :grid_col")
					assert.Equal(t, 3, args["grid_col"])
					assert.Equal(t, 4, args["grid_row"])

					return 0, nil
				})
				f.repo.EXPECT().Update(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
			},
		},
		{
			name: "shrinking over placed students",
			req:  dto.UpdatePartRequest{GridRows: intPtr(2)},
			setupMock: func(f *fixture) {
				f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(chorus(), nil)
				f.position.EXPECT().Count(gomock.Any(), gomock.Any()).Return(3, nil)
			},
			wantErr:  true,
			wantCode: http.StatusConflict,
		},
		{
			name: "not found",
			req:  dto.UpdatePartRequest{Name: "Soloists"},
			setupMock: func(f *fixture) {
				f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(model.Part{}, nil)
			},
			wantErr:  true,
			wantCode: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			tt.setupMock(f)

			err := f.svc.Update(userContext(), tt.req, "part-1")
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

func TestPartService_Delete(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		f := newFixture(t)

		f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(chorus(), nil)
		f.repo.EXPECT().Delete(gomock.Any(), gomock.Any()).Return(nil)

		err := f.svc.Delete(userContext(), "part-1")
		time.Sleep(10 * time.Millisecond)

		assert.NoError(t, err)
	})

	t.Run("repository error", func(t *testing.T) {
		f := newFixture(t)

		f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(chorus(), nil)
		f.repo.EXPECT().Delete(gomock.Any(), gomock.Any()).Return(errors.New("database error"))

		err := f.svc.Delete(userContext(), "part-1")
		assert.Error(t, err)
	})
}
