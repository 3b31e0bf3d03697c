package service_test

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"
	_ "time/tzdata"

	"stagehand/config"
	kafkaMocks "stagehand/infras/kafka/mocks"
	"stagehand/infras/otel/mocks"
	performanceMocks "stagehand/internal/domains/performance/mocks"
	"stagehand/internal/domains/performance/model"
	"stagehand/internal/domains/performance/model/dto"
	"stagehand/internal/domains/performance/service"
	rehearsalMocks "stagehand/internal/domains/rehearsal/mocks"
	rehearsalModel "stagehand/internal/domains/rehearsal/model"
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
	repo      *performanceMocks.MockPerformance
	rehearsal *rehearsalMocks.MockRehearsal
	cache     *cacheMocks.MockRedisCache
	kafka     *kafkaMocks.MockClient
	svc       service.Performance
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
	cfg.Kafka.Topics.Performance = "stagehand.performance.changed"

	f := &fixture{
		repo:      performanceMocks.NewMockPerformance(ctrl),
		rehearsal: rehearsalMocks.NewMockRehearsal(ctrl),
		cache:     cacheMocks.NewMockRedisCache(ctrl),
		kafka:     kafkaMocks.NewMockClient(ctrl),
	}

	f.cache.EXPECT().Save(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	f.cache.EXPECT().Delete(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	f.cache.EXPECT().Clear(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	f.kafka.EXPECT().SendMessages(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil).AnyTimes()

	f.svc = service.New(f.repo, f.rehearsal, cfg, f.cache, mocks.NewOtel(), conv, f.kafka)

	return f
}

func userContext() context.Context {
	return context.WithValue(context.Background(), constant.ContextKeyUserID, "director-id")
}

func gala(startsAt time.Time) model.Performance {
	return model.Performance{
		ID:        "perf-1",
		Title:     "Summer Gala",
		VenueName: "Main Hall",
		StartsAt:  startsAt,
		Timezone:  "America/New_York",
		CallTime:  "18:30",
	}
}

func TestPerformanceService_Create(t *testing.T) {
	tests := []struct {
		name         string
		req          dto.CreatePerformanceRequest
		setupMock    func(f *fixture, captured *model.Performance)
		wantErr      bool
		wantCode     int
		wantStartsAt time.Time
		wantCallTime string
		wantZone     string
	}{
		{
			name: "defaults zone and derives call time",
			req: dto.CreatePerformanceRequest{
				Title:     "Summer Gala",
				VenueName: "Main Hall",
				StartsAt:  "2024-06-20T19:30",
			},
			setupMock: func(f *fixture, captured *model.Performance) {
				f.repo.EXPECT().Insert(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, m model.Performance) error {
					*captured = m

					return nil
				})
			},
			wantStartsAt: time.Date(2024, 6, 20, 23, 30, 0, 0, time.UTC),
			wantCallTime: "18:30",
			wantZone:     "America/New_York",
		},
		{
			name: "explicit zone and call time",
			req: dto.CreatePerformanceRequest{
				Title:     "Tour Stop",
				VenueName: "Hollywood Bowl",
				StartsAt:  "2024-12-01T20:00",
				Timezone:  "America/Los_Angeles",
				CallTime:  "17:45",
			},
			setupMock: func(f *fixture, captured *model.Performance) {
				f.repo.EXPECT().Insert(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, m model.Performance) error {
					*captured = m

					return nil
				})
			},
			wantStartsAt: time.Date(2024, 12, 2, 4, 0, 0, 0, time.UTC),
			wantCallTime: "17:45",
			wantZone:     "America/Los_Angeles",
		},
		{
			name: "malformed start",
			req: dto.CreatePerformanceRequest{
				Title:     "Summer Gala",
				VenueName: "Main Hall",
				StartsAt:  "June 20th",
			},
			setupMock: func(_ *fixture, _ *model.Performance) {},
			wantErr:   true,
			wantCode:  http.StatusBadRequest,
		},
		{
			name: "repository error",
			req: dto.CreatePerformanceRequest{
				Title:     "Summer Gala",
				VenueName: "Main Hall",
				StartsAt:  "2024-06-20T19:30",
			},
			setupMock: func(f *fixture, _ *model.Performance) {
				f.repo.EXPECT().Insert(gomock.Any(), gomock.Any()).Return(errors.New("database error"))
			},
			wantErr:  true,
			wantCode: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)

			var captured model.Performance

			tt.setupMock(f, &captured)

			id, err := f.svc.Create(userContext(), tt.req)
			time.Sleep(10 * time.Millisecond)

			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, tt.wantCode, failure.GetCode(err))

				return
			}

			require.NoError(t, err)
			assert.Equal(t, captured.ID, id)
			assert.True(t, tt.wantStartsAt.Equal(captured.StartsAt))
			assert.Equal(t, tt.wantCallTime, captured.CallTime)
			assert.Equal(t, tt.wantZone, captured.Timezone)
			assert.Equal(t, "director-id", captured.CreatedBy)
		})
	}
}

func TestPerformanceService_GetAll(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		f := newFixture(t)

		f.cache.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("cache miss")).Times(2)
		f.repo.EXPECT().Count(gomock.Any(), gomock.Any()).Return(11, nil)
		f.repo.EXPECT().GetAll(gomock.Any(), gomock.Any(), gomock.Any()).Return([]model.Performance{
			gala(time.Date(2024, 6, 20, 23, 30, 0, 0, time.UTC)),
		}, nil)

		res, err := f.svc.GetAll(context.Background(), gDto.QueryParams{Page: 1, Limit: 10}, gDto.FilterGroup{})
		time.Sleep(10 * time.Millisecond)

		require.NoError(t, err)
		assert.Equal(t, 11, res.TotalData)
		assert.Equal(t, 2, res.TotalPage)
		require.Len(t, res.Performances, 1)
		assert.Equal(t, "2024-06-20T19:30", res.Performances[0].StartsAtLocal)
		assert.Equal(t, "6:30 PM", res.Performances[0].CallTimeDisplay)
		assert.False(t, res.Performances[0].Locked)
	})

	t.Run("count error", func(t *testing.T) {
		f := newFixture(t)

		f.cache.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("cache miss")).Times(2)
		f.repo.EXPECT().Count(gomock.Any(), gomock.Any()).Return(0, errors.New("count error"))

		_, err := f.svc.GetAll(context.Background(), gDto.QueryParams{Page: 1, Limit: 10}, gDto.FilterGroup{})
		assert.Error(t, err)
	})
}

func TestPerformanceService_Get(t *testing.T) {
	t.Run("locked within the hour", func(t *testing.T) {
		f := newFixture(t)

		f.cache.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("cache miss"))
		f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(gala(time.Date(2024, 6, 15, 16, 45, 0, 0, time.UTC)), nil)

		res, err := f.svc.Get(context.Background(), "perf-1")
		time.Sleep(10 * time.Millisecond)

		require.NoError(t, err)
		assert.True(t, res.Locked)
		assert.Equal(t, "2024-06-15", res.DateKey)
		assert.Equal(t, "12:45 PM EDT", res.StartTimeDisplay)
	})

	t.Run("cache hit recomputes lock", func(t *testing.T) {
		f := newFixture(t)

		f.cache.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, _ string, value any) error {
			cached, ok := value.(*dto.PerformanceResponse)
			require.True(t, ok)

			cached.ID = "perf-1"
			cached.StartsAt = "2024-06-15T16:30:00.000Z"
			cached.Locked = false

			return nil
		})

		res, err := f.svc.Get(context.Background(), "perf-1")
		require.NoError(t, err)
		assert.True(t, res.Locked)
	})

	t.Run("not found", func(t *testing.T) {
		f := newFixture(t)

		f.cache.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("cache miss"))
		f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(model.Performance{}, nil)

		_, err := f.svc.Get(context.Background(), "missing")
		require.Error(t, err)
		assert.Equal(t, http.StatusNotFound, failure.GetCode(err))
	})
}

func TestPerformanceService_Update(t *testing.T) {
	future := time.Date(2024, 6, 20, 23, 30, 0, 0, time.UTC)
	soon := time.Date(2024, 6, 15, 16, 30, 0, 0, time.UTC)

	tests := []struct {
		name      string
		req       dto.UpdatePerformanceRequest
		setupMock func(f *fixture, fields *map[string]any)
		wantErr   bool
		wantCode  int
		check     func(t *testing.T, fields map[string]any)
	}{
		{
			name:      "empty request",
			req:       dto.UpdatePerformanceRequest{},
			setupMock: func(_ *fixture, _ *map[string]any) {},
			wantErr:   true,
			wantCode:  http.StatusBadRequest,
		},
		{
			name: "moving the start re-derives call time",
			req:  dto.UpdatePerformanceRequest{StartsAt: "2024-06-21T20:00"},
			setupMock: func(f *fixture, fields *map[string]any) {
				f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(gala(future), nil).AnyTimes()
				f.repo.EXPECT().Update(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, m map[string]any, _ gDto.FilterGroup) error {
					*fields = m

					return nil
				})
			},
			check: func(t *testing.T, fields map[string]any) {
				t.Helper()

				assert.Equal(t, time.Date(2024, 6, 22, 0, 0, 0, 0, time.UTC), fields[model.FieldStartsAt])
				assert.Equal(t, "19:00", fields[model.FieldCallTime])
			},
		},
		{
			name: "zone change keeps the wall clock",
			req:  dto.UpdatePerformanceRequest{Timezone: "America/Chicago"},
			setupMock: func(f *fixture, fields *map[string]any) {
				f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(gala(future), nil).AnyTimes()
				f.repo.EXPECT().Update(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, m map[string]any, _ gDto.FilterGroup) error {
					*fields = m

					return nil
				})
			},
			check: func(t *testing.T, fields map[string]any) {
				t.Helper()

				assert.Equal(t, time.Date(2024, 6, 21, 0, 30, 0, 0, time.UTC), fields[model.FieldStartsAt])
				assert.Equal(t, "America/Chicago", fields[model.FieldTimezone])
				assert.NotContains(t, fields, model.FieldCallTime)
			},
		},
		{
			name: "title edit allowed while locked",
			req:  dto.UpdatePerformanceRequest{Title: "Summer Gala (Encore)"},
			setupMock: func(f *fixture, fields *map[string]any) {
				f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(gala(soon), nil).AnyTimes()
				f.repo.EXPECT().Update(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, m map[string]any, _ gDto.FilterGroup) error {
					*fields = m

					return nil
				})
			},
			check: func(t *testing.T, fields map[string]any) {
				t.Helper()

				assert.Equal(t, "Summer Gala (Encore)", fields[model.FieldTitle])
				assert.Equal(t, "director-id", fields[constant.FieldModifiedBy])
			},
		},
		{
			name: "schedule edit refused while locked",
			req:  dto.UpdatePerformanceRequest{CallTime: "14:00"},
			setupMock: func(f *fixture, _ *map[string]any) {
				f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(gala(soon), nil)
			},
			wantErr:  true,
			wantCode: http.StatusLocked,
		},
		{
			name: "not found",
			req:  dto.UpdatePerformanceRequest{Title: "x"},
			setupMock: func(f *fixture, _ *map[string]any) {
				f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(model.Performance{}, nil)
			},
			wantErr:  true,
			wantCode: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)

			var fields map[string]any

			tt.setupMock(f, &fields)

			err := f.svc.Update(userContext(), tt.req, "perf-1")
			time.Sleep(10 * time.Millisecond)

			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, tt.wantCode, failure.GetCode(err))

				return
			}

			require.NoError(t, err)
			tt.check(t, fields)
		})
	}
}

func TestPerformanceService_Delete(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		f := newFixture(t)

		f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(gala(time.Date(2024, 6, 20, 23, 30, 0, 0, time.UTC)), nil)
		f.repo.EXPECT().Delete(gomock.Any(), gomock.Any()).Return(nil)

		err := f.svc.Delete(userContext(), "perf-1")
		time.Sleep(10 * time.Millisecond)

		assert.NoError(t, err)
	})

	t.Run("repository error", func(t *testing.T) {
		f := newFixture(t)

		f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(gala(time.Date(2024, 6, 20, 23, 30, 0, 0, time.UTC)), nil)
		f.repo.EXPECT().Delete(gomock.Any(), gomock.Any()).Return(errors.New("database error"))

		assert.Error(t, f.svc.Delete(userContext(), "perf-1"))
	})
}

func schedule() []rehearsalModel.Rehearsal {
	return []rehearsalModel.Rehearsal{
		{
			ID:            "reh-2",
			PerformanceID: "perf-1",
			RehearsalDate: time.Date(2024, 6, 18, 0, 0, 0, 0, time.UTC),
			StartTime:     "18:00",
			EndTime:       "21:00",
			Location:      "Studio B",
		},
		{
			ID:            "reh-1",
			PerformanceID: "perf-1",
			RehearsalDate: time.Date(2024, 6, 17, 0, 0, 0, 0, time.UTC),
			StartTime:     "09:00",
			EndTime:       "11:30",
			Location:      "Studio A",
		},
	}
}

func TestPerformanceService_Schedule(t *testing.T) {
	t.Run("groups by studio day", func(t *testing.T) {
		f := newFixture(t)

		// 23:30 EDT on the 18th is 03:30 UTC on the 19th
		f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(gala(time.Date(2024, 6, 19, 3, 30, 0, 0, time.UTC)), nil)
		f.rehearsal.EXPECT().GetAll(gomock.Any(), gomock.Any(), gomock.Any()).Return(schedule(), nil)

		res, err := f.svc.Schedule(context.Background(), "perf-1")
		require.NoError(t, err)

		require.Len(t, res.Days, 2)
		assert.Equal(t, "2024-06-17", res.Days[0].DateKey)
		assert.Equal(t, "Monday, Jun 17, 2024", res.Days[0].Heading)
		assert.Equal(t, "2024-06-18", res.Days[1].DateKey)
		require.Len(t, res.Days[1].Items, 2)
		assert.Equal(t, dto.ScheduleKindRehearsal, res.Days[1].Items[0].Kind)
		assert.Equal(t, dto.ScheduleKindPerformance, res.Days[1].Items[1].Kind)
	})

	t.Run("rehearsal lookup fails", func(t *testing.T) {
		f := newFixture(t)

		f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(gala(time.Date(2024, 6, 19, 3, 30, 0, 0, time.UTC)), nil).AnyTimes()
		f.rehearsal.EXPECT().GetAll(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, errors.New("database error"))

		_, err := f.svc.Schedule(context.Background(), "perf-1")
		assert.Error(t, err)
	})
}

func TestPerformanceService_Calendar(t *testing.T) {
	f := newFixture(t)

	f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(gala(time.Date(2024, 6, 20, 23, 30, 0, 0, time.UTC)), nil)
	f.rehearsal.EXPECT().GetAll(gomock.Any(), gomock.Any(), gomock.Any()).Return(schedule(), nil)

	body, err := f.svc.Calendar(context.Background(), "perf-1")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(body, "BEGIN:VCALENDAR"))
	assert.Equal(t, 3, strings.Count(body, "BEGIN:VEVENT"))
	assert.Contains(t, body, "performance-perf-1@stagehand")
	assert.Contains(t, body, "rehearsal-reh-1@stagehand")
	// 09:00 EDT
	assert.Contains(t, body, "DTSTART:20240617T130000Z")
}
