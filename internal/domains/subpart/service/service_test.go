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
	subpartMocks "stagehand/internal/domains/subpart/mocks"
	"stagehand/internal/domains/subpart/model"
	"stagehand/internal/domains/subpart/model/dto"
	"stagehand/internal/domains/subpart/service"
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
	repo  *subpartMocks.MockSubpart
	part  *partMocks.MockPart
	cache *cacheMocks.MockRedisCache
	svc   service.Subpart
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
		repo:  subpartMocks.NewMockSubpart(ctrl),
		part:  partMocks.NewMockPart(ctrl),
		cache: cacheMocks.NewMockRedisCache(ctrl),
	}

	f.cache.EXPECT().Save(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	f.cache.EXPECT().Delete(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	f.cache.EXPECT().Clear(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()

	f.svc = service.New(f.repo, f.part, cfg, f.cache, mocks.NewOtel(), conv)

	return f
}

func userContext() context.Context {
	return context.WithValue(context.Background(), constant.ContextKeyUserID, "director-id")
}

func TestSubpartService_Create(t *testing.T) {
	second := 1

	tests := []struct {
		name      string
		req       dto.CreateSubpartRequest
		setupMock func(f *fixture)
		wantErr   bool
		wantCode  int
	}{
		{
			name: "appends after siblings",
			req:  dto.CreateSubpartRequest{PartID: "part-1", Name: "Sopranos"},
			setupMock: func(f *fixture) {
				f.part.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(true, nil)
				f.repo.EXPECT().Count(gomock.Any(), gomock.Any()).Return(3, nil)
				f.repo.EXPECT().Insert(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, m model.Subpart) error {
					assert.Equal(t, 3, m.SortOrder)

					return nil
				})
			},
		},
		{
			name: "explicit order",
			req:  dto.CreateSubpartRequest{PartID: "part-1", Name: "Altos", SortOrder: &second},
			setupMock: func(f *fixture) {
				f.part.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(true, nil)
				f.repo.EXPECT().Insert(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, m model.Subpart) error {
					assert.Equal(t, 1, m.SortOrder)

					return nil
				})
			},
		},
		{
			name: "part not found",
			req:  dto.CreateSubpartRequest{PartID: "missing", Name: "Tenors"},
			setupMock: func(f *fixture) {
				f.part.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(false, nil)
			},
			wantErr:  true,
			wantCode: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			tt.setupMock(f)

			_, err := f.svc.Create(userContext(), tt.req)
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

func TestSubpartService_GetAll(t *testing.T) {
	f := newFixture(t)

	f.cache.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("cache miss")).Times(2)
	f.repo.EXPECT().Count(gomock.Any(), gomock.Any()).Return(2, nil)
	f.repo.EXPECT().GetAll(gomock.Any(), gomock.Any(), gomock.Any()).Return([]model.Subpart{
		{ID: "sp-1", PartID: "part-1", Name: "Sopranos"},
		{ID: "sp-2", PartID: "part-1", Name: "Altos", SortOrder: 1},
	}, nil)

	res, err := f.svc.GetAll(context.Background(), gDto.QueryParams{Page: 1, Limit: 10}, gDto.FilterGroup{})
	time.Sleep(10 * time.Millisecond)

	require.NoError(t, err)
	assert.Equal(t, 2, res.TotalData)
	require.Len(t, res.Subparts, 2)
	assert.Equal(t, "Altos", res.Subparts[1].Name)
}

func TestSubpartService_Update(t *testing.T) {
	t.Run("empty request", func(t *testing.T) {
		f := newFixture(t)

		err := f.svc.Update(userContext(), dto.UpdateSubpartRequest{}, "sp-1")
		require.Error(t, err)
		assert.Equal(t, http.StatusBadRequest, failure.GetCode(err))
	})

	t.Run("success", func(t *testing.T) {
		f := newFixture(t)

		f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(model.Subpart{ID: "sp-1"}, nil)
		f.repo.EXPECT().Update(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, m map[string]any, _ gDto.FilterGroup) error {
			assert.Equal(t, "Mezzos", m[model.FieldName])

			return nil
		})

		err := f.svc.Update(userContext(), dto.UpdateSubpartRequest{Name: "Mezzos"}, "sp-1")
		time.Sleep(10 * time.Millisecond)

		assert.NoError(t, err)
	})
}

func TestSubpartService_Delete(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		f := newFixture(t)

		f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(model.Subpart{ID: "sp-1"}, nil)
		f.repo.EXPECT().Delete(gomock.Any(), gomock.Any()).Return(nil)

		err := f.svc.Delete(userContext(), "sp-1")
		time.Sleep(10 * time.Millisecond)

		assert.NoError(t, err)
	})

	t.Run("not found", func(t *testing.T) {
		f := newFixture(t)

		f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(model.Subpart{}, nil)

		err := f.svc.Delete(userContext(), "missing")
		require.Error(t, err)
		assert.Equal(t, http.StatusNotFound, failure.GetCode(err))
	})
}
