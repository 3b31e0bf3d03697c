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
	performanceMocks "stagehand/internal/domains/performance/mocks"
	rehearsalMocks "stagehand/internal/domains/rehearsal/mocks"
	"stagehand/internal/domains/rehearsal/model"
	"stagehand/internal/domains/rehearsal/model/dto"
	"stagehand/internal/domains/rehearsal/service"
	cacheMocks "stagehand/shared/cache/mocks"
	"stagehand/shared/constant"
	gDto "stagehand/shared/dto"
	"stagehand/shared/failure"
	"stagehand/shared/timezone"
	clockMocks "stagehand/shared/timezone/mocks"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

const performanceID = "0b6f2c5e-3a4d-4c8e-9f10-2b3c4d5e6f70"

type fixture struct {
	repo        *rehearsalMocks.MockRehearsal
	performance *performanceMocks.MockPerformance
	cache       *cacheMocks.MockRedisCache
	svc         service.Rehearsal
}

// newFixture pins the clock at 2024-06-15 12:00 EDT.
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
		repo:        rehearsalMocks.NewMockRehearsal(ctrl),
		performance: performanceMocks.NewMockPerformance(ctrl),
		cache:       cacheMocks.NewMockRedisCache(ctrl),
	}

	f.cache.EXPECT().Save(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	f.cache.EXPECT().Delete(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	f.cache.EXPECT().Clear(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()

	f.svc = service.New(f.repo, f.performance, cfg, f.cache, mocks.NewOtel(), conv)

	return f
}

func userContext() context.Context {
	return context.WithValue(context.Background(), constant.ContextKeyUserID, "director-id")
}

func TestRehearsalService_Create(t *testing.T) {
	valid := dto.CreateRehearsalRequest{
		PerformanceID: performanceID,
		Date:          "2024-06-18",
		StartTime:     "18:00",
		EndTime:       "21:00",
		Location:      "Studio A",
	}

	tests := []struct {
		name      string
		req       dto.CreateRehearsalRequest
		setupMock func(f *fixture)
		wantCode  int
	}{
		{
			name: "success",
			req:  valid,
			setupMock: func(f *fixture) {
				f.performance.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(true, nil)
				f.repo.EXPECT().Insert(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, m model.Rehearsal) error {
					assert.Equal(t, time.Date(2024, 6, 18, 0, 0, 0, 0, time.UTC), m.RehearsalDate)
					assert.Nil(t, m.SeriesID)

					return nil
				})
			},
		},
		{
			name: "end before start",
			req: dto.CreateRehearsalRequest{
				PerformanceID: performanceID,
				Date:          "2024-06-18",
				StartTime:     "21:00",
				EndTime:       "18:00",
				Location:      "Studio A",
			},
			setupMock: func(_ *fixture) {},
			wantCode:  http.StatusBadRequest,
		},
		{
			name: "unknown performance",
			req:  valid,
			setupMock: func(f *fixture) {
				f.performance.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(false, nil)
			},
			wantCode: http.StatusNotFound,
		},
		{
			name: "repository error",
			req:  valid,
			setupMock: func(f *fixture) {
				f.performance.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(true, nil)
				f.repo.EXPECT().Insert(gomock.Any(), gomock.Any()).Return(errors.New("database error"))
			},
			wantCode: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			tt.setupMock(f)

			id, err := f.svc.Create(userContext(), tt.req)
			time.Sleep(10 * time.Millisecond)

			if tt.wantCode != 0 {
				require.Error(t, err)
				assert.Equal(t, tt.wantCode, failure.GetCode(err))

				return
			}

			require.NoError(t, err)
			assert.NotEmpty(t, id)
		})
	}
}

func TestRehearsalService_CreateSeries(t *testing.T) {
	req := dto.CreateSeriesRequest{
		PerformanceID: performanceID,
		StartDate:     "2024-06-17",
		RRule:         "FREQ=WEEKLY;BYDAY=TU,TH;COUNT=8",
		StartTime:     "18:00",
		EndTime:       "20:00",
		Location:      "Studio B",
	}

	t.Run("inserts every occurrence in one transaction", func(t *testing.T) {
		f := newFixture(t)

		var inserted []model.Rehearsal

		f.performance.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(true, nil)
		f.repo.EXPECT().WithTx(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, fn func(tx *sqlx.Tx) error) error {
			return fn(nil)
		})
		f.repo.EXPECT().InsertBulkTx(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, _ *sqlx.Tx, models []model.Rehearsal) error {
			inserted = models

			return nil
		})

		res, err := f.svc.CreateSeries(userContext(), req)
		time.Sleep(10 * time.Millisecond)

		require.NoError(t, err)
		assert.Equal(t, 8, res.Created)
		assert.False(t, res.Truncated)
		require.Len(t, inserted, 8)
		assert.Equal(t, "2024-06-18", inserted[0].DateKey())
		assert.Equal(t, "2024-07-11", inserted[7].DateKey())

		for _, rehearsal := range inserted {
			require.NotNil(t, rehearsal.SeriesID)
			assert.Equal(t, res.SeriesID, *rehearsal.SeriesID)
		}
	})

	t.Run("transaction failure", func(t *testing.T) {
		f := newFixture(t)

		f.performance.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(true, nil)
		f.repo.EXPECT().WithTx(gomock.Any(), gomock.Any()).Return(errors.New("database error"))

		_, err := f.svc.CreateSeries(userContext(), req)
		assert.Error(t, err)
	})

	t.Run("rule without occurrences", func(t *testing.T) {
		f := newFixture(t)

		empty := req
		empty.RRule = "FREQ=DAILY;UNTIL=20240101T000000Z"

		f.performance.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(true, nil)

		_, err := f.svc.CreateSeries(userContext(), empty)
		require.Error(t, err)
		assert.Equal(t, http.StatusBadRequest, failure.GetCode(err))
	})
}

func TestRehearsalService_Get(t *testing.T) {
	f := newFixture(t)

	f.cache.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("cache miss"))
	f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(model.Rehearsal{
		ID:            "reh-1",
		PerformanceID: performanceID,
		RehearsalDate: time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC),
		StartTime:     "12:30",
		EndTime:       "14:00",
		Location:      "Studio A",
	}, nil)

	res, err := f.svc.Get(context.Background(), "reh-1")
	time.Sleep(10 * time.Millisecond)

	require.NoError(t, err)
	assert.Equal(t, "2024-06-15T16:30:00.000Z", res.StartsAt)
	assert.Equal(t, "2024-06-15T18:00:00.000Z", res.EndsAt)
	assert.Equal(t, "12:30 PM", res.StartDisplay)
	assert.Equal(t, "Saturday, Jun 15, 2024", res.DateHeading)
	assert.True(t, res.Locked)
}

func TestRehearsalService_GetAll(t *testing.T) {
	f := newFixture(t)

	f.cache.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("cache miss")).Times(2)
	f.repo.EXPECT().Count(gomock.Any(), gomock.Any()).Return(2, nil)
	f.repo.EXPECT().GetAll(gomock.Any(), gomock.Any(), gomock.Any()).Return([]model.Rehearsal{
		{ID: "reh-1", RehearsalDate: time.Date(2024, 6, 18, 0, 0, 0, 0, time.UTC), StartTime: "18:00", EndTime: "20:00"},
		{ID: "reh-2", RehearsalDate: time.Date(2024, 6, 20, 0, 0, 0, 0, time.UTC), StartTime: "18:00", EndTime: "20:00"},
	}, nil)

	res, err := f.svc.GetAll(context.Background(), gDto.QueryParams{Page: 1, Limit: 10}, gDto.FilterGroup{})
	time.Sleep(10 * time.Millisecond)

	require.NoError(t, err)
	assert.Equal(t, 2, res.TotalData)
	require.Len(t, res.Rehearsals, 2)
	assert.False(t, res.Rehearsals[0].Locked)
}

func TestRehearsalService_Update(t *testing.T) {
	later := model.Rehearsal{
		ID:            "reh-1",
		RehearsalDate: time.Date(2024, 6, 18, 0, 0, 0, 0, time.UTC),
		StartTime:     "18:00",
		EndTime:       "20:00",
	}

	t.Run("moves the date", func(t *testing.T) {
		f := newFixture(t)

		f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(later, nil)
		f.repo.EXPECT().Update(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, fields map[string]any, _ gDto.FilterGroup) error {
			assert.Equal(t, time.Date(2024, 6, 19, 0, 0, 0, 0, time.UTC), fields[model.FieldRehearsalDate])
			assert.Equal(t, "19:00", fields[model.FieldEndTime])

			return nil
		})

		err := f.svc.Update(userContext(), dto.UpdateRehearsalRequest{Date: "2024-06-19", EndTime: "19:00"}, "reh-1")
		time.Sleep(10 * time.Millisecond)

		assert.NoError(t, err)
	})

	t.Run("end before existing start", func(t *testing.T) {
		f := newFixture(t)

		f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(later, nil)

		err := f.svc.Update(userContext(), dto.UpdateRehearsalRequest{EndTime: "17:00"}, "reh-1")
		require.Error(t, err)
		assert.Equal(t, http.StatusBadRequest, failure.GetCode(err))
	})

	t.Run("locked", func(t *testing.T) {
		f := newFixture(t)

		soon := later
		soon.RehearsalDate = time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)
		soon.StartTime = "12:45"
		soon.EndTime = "14:00"

		f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(soon, nil)

		err := f.svc.Update(userContext(), dto.UpdateRehearsalRequest{StartTime: "13:00"}, "reh-1")
		require.Error(t, err)
		assert.Equal(t, http.StatusLocked, failure.GetCode(err))
	})
}

func TestRehearsalService_DeleteSeries(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		f := newFixture(t)

		f.repo.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(true, nil)
		f.repo.EXPECT().Delete(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, filter gDto.FilterGroup) error {
			where, args := filter.GetWhereClause()
			assert.Equal(t, "(rehearsals.series_id = :series_id)", where)
			assert.Equal(t, "series-1", args[model.FieldSeriesID])

			return nil
		})

		err := f.svc.DeleteSeries(userContext(), "series-1")
		time.Sleep(10 * time.Millisecond)

		assert.NoError(t, err)
	})

	t.Run("unknown series", func(t *testing.T) {
		f := newFixture(t)

		f.repo.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(false, nil)

		err := f.svc.DeleteSeries(userContext(), "series-1")
		require.Error(t, err)
		assert.Equal(t, http.StatusNotFound, failure.GetCode(err))
	})
}

func TestRehearsalService_Delete(t *testing.T) {
	f := newFixture(t)

	f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(model.Rehearsal{}, nil)

	err := f.svc.Delete(userContext(), "missing")
	require.Error(t, err)
	assert.Equal(t, http.StatusNotFound, failure.GetCode(err))
}
