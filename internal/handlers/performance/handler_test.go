package performance_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	otelMocks "stagehand/infras/otel/mocks"
	"stagehand/internal/domains/performance/model/dto"
	serviceMocks "stagehand/internal/domains/performance/service/mocks"
	"stagehand/internal/handlers/performance"
	"stagehand/shared/constant"
	gDto "stagehand/shared/dto"
	"stagehand/shared/failure"
	"stagehand/shared/timezone"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func newRouter(t *testing.T) (*serviceMocks.MockPerformance, http.Handler) {
	t.Helper()

	conv, err := timezone.NewConverter("America/New_York", "ET", nil)
	require.NoError(t, err)

	svc := serviceMocks.NewMockPerformance(gomock.NewController(t))
	handler := performance.New(svc, otelMocks.NewOtel(), conv)

	router := chi.NewRouter()
	handler.Router(router)

	return svc, router
}

func serve(router http.Handler, method, target, body string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(method, target, strings.NewReader(body)))

	return rec
}

func TestHandler_GetPerformances(t *testing.T) {
	t.Run("studio days bound starts_at", func(t *testing.T) {
		svc, router := newRouter(t)

		svc.EXPECT().GetAll(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, params gDto.QueryParams, filter gDto.FilterGroup) (dto.GetPerformancesResponse, error) {
				where, args := filter.GetWhereClause()

				assert.Equal(t,
					"(performances.starts_at >= :starts_from AND performances.starts_at <= :starts_to AND LOWER(performances.title) LIKE LOWER(:title))",
					where,
				)
				assert.Equal(t, time.Date(2024, 6, 15, 4, 0, 0, 0, time.UTC), args["starts_from"])
				assert.Equal(t, time.Date(2024, 6, 17, 3, 59, 59, 999999000, time.UTC), args["starts_to"])
				assert.Equal(t, "%gala%", args["title"])

				assert.Equal(t, "starts_at", params.SortBy)
				assert.Equal(t, gDto.SortDirAsc, params.SortDir)

				return dto.GetPerformancesResponse{}, nil
			})

		rec := serve(router, http.MethodGet, "/performances?from=2024-06-15&to=2024-06-16&title=gala", "")

		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("malformed day is rejected before the service", func(t *testing.T) {
		_, router := newRouter(t)

		rec := serve(router, http.MethodGet, "/performances?from=15/06/2024", "")

		require.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "from must be a date like 2024-06-15")
	})
}

func TestHandler_GetCalendar(t *testing.T) {
	t.Run("attachment", func(t *testing.T) {
		svc, router := newRouter(t)

		body := "BEGIN:VCALENDAR\r\nVERSION:2.0\r\nEND:VCALENDAR\r\n"
		svc.EXPECT().Calendar(gomock.Any(), "perf-1").Return(body, nil)

		rec := serve(router, http.MethodGet, "/performances/perf-1/calendar.ics", "")

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, constant.ContentTypeCalendar, rec.Header().Get(constant.RequestHeaderContentType))
		assert.Equal(t, `attachment; filename="performance.ics"`, rec.Header().Get(constant.ResponseHeaderContentDisposition))
		assert.Equal(t, body, rec.Body.String())
	})

	t.Run("unknown performance", func(t *testing.T) {
		svc, router := newRouter(t)

		svc.EXPECT().Calendar(gomock.Any(), "missing").Return("", failure.NotFound("performance"))

		rec := serve(router, http.MethodGet, "/performances/missing/calendar.ics", "")

		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, constant.ContentTypeJSON, rec.Header().Get(constant.RequestHeaderContentType))
	})
}

func TestHandler_UpdatePerformance(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		setup    func(svc *serviceMocks.MockPerformance)
		wantCode int
		wantBody string
	}{
		{
			name: "new start",
			body: `{"starts_at":"2024-11-03T01:30","call_time":"00:45"}`,
			setup: func(svc *serviceMocks.MockPerformance) {
				svc.EXPECT().Update(gomock.Any(), dto.UpdatePerformanceRequest{StartsAt: "2024-11-03T01:30", CallTime: "00:45"}, "perf-1").Return(nil)
			},
			wantCode: http.StatusOK,
		},
		{
			name:     "impossible date",
			body:     `{"starts_at":"2024-02-30T19:00"}`,
			setup:    func(_ *serviceMocks.MockPerformance) {},
			wantCode: http.StatusBadRequest,
			wantBody: "starts_at must be a local date-time like 2024-06-15T14:00",
		},
		{
			name: "schedule locked",
			body: `{"call_time":"17:00"}`,
			setup: func(svc *serviceMocks.MockPerformance) {
				svc.EXPECT().Update(gomock.Any(), gomock.Any(), "perf-1").Return(failure.Locked("performance starts within the hour"))
			},
			wantCode: http.StatusLocked,
			wantBody: "performance starts within the hour",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, router := newRouter(t)
			tt.setup(svc)

			rec := serve(router, http.MethodPatch, "/performances/perf-1", tt.body)

			require.Equal(t, tt.wantCode, rec.Code)

			if tt.wantBody != "" {
				assert.Contains(t, rec.Body.String(), tt.wantBody)
			}
		})
	}
}
