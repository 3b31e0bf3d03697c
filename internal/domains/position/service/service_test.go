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
	partModel "stagehand/internal/domains/part/model"
	positionMocks "stagehand/internal/domains/position/mocks"
	"stagehand/internal/domains/position/model"
	"stagehand/internal/domains/position/model/dto"
	"stagehand/internal/domains/position/service"
	studentMocks "stagehand/internal/domains/student/mocks"
	subpartMocks "stagehand/internal/domains/subpart/mocks"
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
	partID    = "6f1f0a52-5a8e-4c1a-9d8e-6f9b8f3a1c01"
	studentID = "0b7d6b7e-3f3c-4a55-8a4f-2d2f4bde9a02"
	subpartID = "c4f6f0c1-2f7e-4c8a-a2a9-1d9a1d5b6e03"
)

type fixture struct {
	repo    *positionMocks.MockPosition
	part    *partMocks.MockPart
	subpart *subpartMocks.MockSubpart
	student *studentMocks.MockStudent
	cache   *cacheMocks.MockRedisCache
	svc     service.Position
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
		repo:    positionMocks.NewMockPosition(ctrl),
		part:    partMocks.NewMockPart(ctrl),
		subpart: subpartMocks.NewMockSubpart(ctrl),
		student: studentMocks.NewMockStudent(ctrl),
		cache:   cacheMocks.NewMockRedisCache(ctrl),
	}

	f.cache.EXPECT().Save(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	f.cache.EXPECT().Delete(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	f.cache.EXPECT().Clear(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()

	f.svc = service.New(f.repo, f.part, f.subpart, f.student, cfg, f.cache, mocks.NewOtel(), conv)

	return f
}

func userContext() context.Context {
	return context.WithValue(context.Background(), constant.ContextKeyUserID, "director-id")
}

func intPtr(v int) *int {
	return &v
}

func grid() partModel.Part {
	return partModel.Part{ID: partID, GridRows: 4, GridCols: 6}
}

func TestCell_Resolve(t *testing.T) {
	tests := []struct {
		name    string
		cell    dto.Cell
		wantRow int
		wantCol int
		wantErr bool
	}{
		{name: "row and col", cell: dto.Cell{Row: intPtr(2), Col: intPtr(5)}, wantRow: 2, wantCol: 5},
		{name: "pixels", cell: dto.Cell{X: intPtr(250), Y: intPtr(99), CellSize: 50}, wantRow: 1, wantCol: 5},
		{name: "pixel on a cell edge", cell: dto.Cell{X: intPtr(100), Y: intPtr(0), CellSize: 50}, wantRow: 0, wantCol: 2},
		{name: "row and col win over pixels", cell: dto.Cell{Row: intPtr(0), Col: intPtr(0), X: intPtr(500), Y: intPtr(500), CellSize: 10}},
		{name: "pixels without cell size", cell: dto.Cell{X: intPtr(10), Y: intPtr(10)}, wantErr: true},
		{name: "row only", cell: dto.Cell{Row: intPtr(1)}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			row, col, err := tt.cell.Resolve()
			if tt.wantErr {
				assert.ErrorIs(t, err, dto.ErrNoCell)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantRow, row)
			assert.Equal(t, tt.wantCol, col)
		})
	}
}

func TestPositionService_Assign(t *testing.T) {
	sub := subpartID

	tests := []struct {
		name      string
		req       dto.AssignPositionRequest
		setupMock func(f *fixture)
		wantErr   bool
		wantCode  int
	}{
		{
			name: "pixel placement",
			req: dto.AssignPositionRequest{
				PartID:    partID,
				StudentID: studentID,
				Cell:      dto.Cell{X: intPtr(130), Y: intPtr(70), CellSize: 60},
			},
			setupMock: func(f *fixture) {
				f.part.EXPECT().Get(gomock.Any(), gomock.Any()).Return(grid(), nil)
				f.repo.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(false, nil).Times(2)
				f.student.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(true, nil)
				f.repo.EXPECT().Insert(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, m model.Position) error {
					assert.Equal(t, 1, m.GridRow)
					assert.Equal(t, 2, m.GridCol)

					return nil
				})
			},
		},
		{
			name: "with subpart",
			req: dto.AssignPositionRequest{
				PartID:    partID,
				SubpartID: &sub,
				StudentID: studentID,
				Cell:      dto.Cell{Row: intPtr(0), Col: intPtr(0)},
			},
			setupMock: func(f *fixture) {
				f.part.EXPECT().Get(gomock.Any(), gomock.Any()).Return(grid(), nil)
				f.subpart.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(true, nil)
				f.repo.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(false, nil).Times(2)
				f.student.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(true, nil)
				f.repo.EXPECT().Insert(gomock.Any(), gomock.Any()).Return(nil)
			},
		},
		{
			name:      "no cell",
			req:       dto.AssignPositionRequest{PartID: partID, StudentID: studentID},
			setupMock: func(_ *fixture) {},
			wantErr:   true,
			wantCode:  http.StatusBadRequest,
		},
		{
			name: "outside the grid",
			req: dto.AssignPositionRequest{
				PartID:    partID,
				StudentID: studentID,
				Cell:      dto.Cell{Row: intPtr(4), Col: intPtr(0)},
			},
			setupMock: func(f *fixture) {
				f.part.EXPECT().Get(gomock.Any(), gomock.Any()).Return(grid(), nil)
			},
			wantErr:  true,
			wantCode: http.StatusBadRequest,
		},
		{
			name: "cell taken",
			req: dto.AssignPositionRequest{
				PartID:    partID,
				StudentID: studentID,
				Cell:      dto.Cell{Row: intPtr(1), Col: intPtr(1)},
			},
			setupMock: func(f *fixture) {
				f.part.EXPECT().Get(gomock.Any(), gomock.Any()).Return(grid(), nil)
				f.repo.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(true, nil)
			},
			wantErr:  true,
			wantCode: http.StatusConflict,
		},
		{
			name: "student already placed",
			req: dto.AssignPositionRequest{
				PartID:    partID,
				StudentID: studentID,
				Cell:      dto.Cell{Row: intPtr(1), Col: intPtr(1)},
			},
			setupMock: func(f *fixture) {
				f.part.EXPECT().Get(gomock.Any(), gomock.Any()).Return(grid(), nil)
				f.student.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(true, nil)
				gomock.InOrder(
					f.repo.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(false, nil),
					f.repo.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(true, nil),
				)
			},
			wantErr:  true,
			wantCode: http.StatusConflict,
		},
		{
			name: "unknown student",
			req: dto.AssignPositionRequest{
				PartID:    partID,
				StudentID: studentID,
				Cell:      dto.Cell{Row: intPtr(1), Col: intPtr(1)},
			},
			setupMock: func(f *fixture) {
				f.part.EXPECT().Get(gomock.Any(), gomock.Any()).Return(grid(), nil)
				f.repo.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(false, nil)
				f.student.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(false, nil)
			},
			wantErr:  true,
			wantCode: http.StatusNotFound,
		},
		{
			name: "unknown part",
			req: dto.AssignPositionRequest{
				PartID:    partID,
				StudentID: studentID,
				Cell:      dto.Cell{Row: intPtr(1), Col: intPtr(1)},
			},
			setupMock: func(f *fixture) {
				f.part.EXPECT().Get(gomock.Any(), gomock.Any()).Return(partModel.Part{}, nil)
			},
			wantErr:  true,
			wantCode: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			tt.setupMock(f)

			_, err := f.svc.Assign(userContext(), tt.req)
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

func TestPositionService_Move(t *testing.T) {
	current := model.Position{ID: "pos-1", PartID: partID, StudentID: studentID, GridRow: 0, GridCol: 0}

	t.Run("success excludes itself from the occupancy check", func(t *testing.T) {
		f := newFixture(t)

		f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(current, nil)
		f.part.EXPECT().Get(gomock.Any(), gomock.Any()).Return(grid(), nil)
		f.repo.EXPECT().Exist(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, filter gDto.FilterGroup) (bool, error) {
			where, args := filter.GetWhereClause()
			assert.Contains(t, where, "positions.id != :id")
			assert.Equal(t, "pos-1", args["id"])

			return false, nil
		})
		f.repo.EXPECT().Update(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, m map[string]any, _ gDto.FilterGroup) error {
			assert.Equal(t, 3, m[model.FieldGridRow])
			assert.Equal(t, 5, m[model.FieldGridCol])
			assert.NotContains(t, m, model.FieldSubpartID)

			return nil
		})

		err := f.svc.Move(userContext(), dto.MovePositionRequest{Cell: dto.Cell{Row: intPtr(3), Col: intPtr(5)}}, "pos-1")
		time.Sleep(10 * time.Millisecond)

		assert.NoError(t, err)
	})

	t.Run("out of bounds", func(t *testing.T) {
		f := newFixture(t)

		f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(current, nil)
		f.part.EXPECT().Get(gomock.Any(), gomock.Any()).Return(grid(), nil)

		err := f.svc.Move(userContext(), dto.MovePositionRequest{Cell: dto.Cell{Row: intPtr(0), Col: intPtr(6)}}, "pos-1")
		require.Error(t, err)
		assert.Equal(t, http.StatusBadRequest, failure.GetCode(err))
	})

	t.Run("not found", func(t *testing.T) {
		f := newFixture(t)

		f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(model.Position{}, nil)

		err := f.svc.Move(userContext(), dto.MovePositionRequest{Cell: dto.Cell{Row: intPtr(0), Col: intPtr(1)}}, "missing")
		require.Error(t, err)
		assert.Equal(t, http.StatusNotFound, failure.GetCode(err))
	})
}

func TestPositionService_GetAll(t *testing.T) {
	first, last := "Ada", "Lovelace"

	f := newFixture(t)

	f.cache.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("cache miss")).Times(2)
	f.repo.EXPECT().Count(gomock.Any(), gomock.Any()).Return(1, nil)
	f.repo.EXPECT().GetAll(gomock.Any(), gomock.Any(), gomock.Any()).Return([]model.Position{
		{ID: "pos-1", PartID: partID, StudentID: studentID, GridRow: 1, GridCol: 2, StudentFirstName: &first, StudentLastName: &last},
	}, nil)

	res, err := f.svc.GetAll(context.Background(), gDto.QueryParams{Page: 1, Limit: 50}, gDto.FilterGroup{})
	time.Sleep(10 * time.Millisecond)

	require.NoError(t, err)
	require.Len(t, res.Positions, 1)
	assert.Equal(t, "Ada Lovelace", res.Positions[0].StudentName)
	assert.Equal(t, 2, res.Positions[0].Col)
}

func TestPositionService_Remove(t *testing.T) {
	f := newFixture(t)

	f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(model.Position{ID: "pos-1"}, nil)
	f.repo.EXPECT().Delete(gomock.Any(), gomock.Any()).Return(nil)

	err := f.svc.Remove(userContext(), "pos-1")
	time.Sleep(10 * time.Millisecond)

	assert.NoError(t, err)
}
