package user_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	otelMocks "stagehand/infras/otel/mocks"
	"stagehand/internal/domains/user/model/dto"
	serviceMocks "stagehand/internal/domains/user/service/mocks"
	"stagehand/internal/handlers/user"
	"stagehand/shared/constant"
	gDto "stagehand/shared/dto"
	"stagehand/shared/failure"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func newRouter(t *testing.T) (*serviceMocks.MockUser, http.Handler) {
	t.Helper()

	svc := serviceMocks.NewMockUser(gomock.NewController(t))
	handler := user.New(svc, otelMocks.NewOtel())

	router := chi.NewRouter()
	handler.Router(router)

	return svc, router
}

func serve(router http.Handler, method, target, body string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(method, target, strings.NewReader(body)))

	return rec
}

func TestHandler_GetUsers(t *testing.T) {
	t.Run("filters and paging come from the query string", func(t *testing.T) {
		svc, router := newRouter(t)

		want := gDto.QueryParams{Page: 1, Limit: constant.MaxValueLimit, SortBy: "email", SortDir: gDto.SortDirAsc}

		svc.EXPECT().GetAll(gomock.Any(), want, gomock.Any()).DoAndReturn(
			func(_ context.Context, _ gDto.QueryParams, filter gDto.FilterGroup) (dto.GetUsersResponse, error) {
				where, args := filter.GetWhereClause()

				assert.Equal(t, "(LOWER(users.email) LIKE LOWER(:email) AND users.role = :role AND users.active = :active)", where)
				assert.Equal(t, map[string]any{"email": "%ann%", "role": "director", "active": true}, args)

				return dto.GetUsersResponse{Users: []dto.UserResponse{{ID: "user-1", Email: "ann@studio.test"}}, TotalPage: 1, TotalData: 1}, nil
			})

		rec := serve(router, http.MethodGet, "/users?email=ann&role=director&active=true&sort_by=password&limit=500", "")
		require.Equal(t, http.StatusOK, rec.Code)

		var body struct {
			Data dto.GetUsersResponse `json:"data"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		require.Len(t, body.Data.Users, 1)
		assert.Equal(t, "ann@studio.test", body.Data.Users[0].Email)
	})

	t.Run("no filters", func(t *testing.T) {
		svc, router := newRouter(t)

		svc.EXPECT().GetAll(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, params gDto.QueryParams, filter gDto.FilterGroup) (dto.GetUsersResponse, error) {
				where, _ := filter.GetWhereClause()

				assert.Empty(t, where)
				assert.Equal(t, "last_login", params.SortBy)
				assert.Equal(t, gDto.SortDirDesc, params.SortDir)

				return dto.GetUsersResponse{}, nil
			})

		rec := serve(router, http.MethodGet, "/users?sort_by=last_login&sort_dir=desc", "")

		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestHandler_UpdateUser(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		setup    func(svc *serviceMocks.MockUser)
		wantCode int
		wantBody string
	}{
		{
			name:     "unknown role",
			body:     `{"role":"owner"}`,
			setup:    func(_ *serviceMocks.MockUser) {},
			wantCode: http.StatusBadRequest,
			wantBody: "role must be one of admin director staff",
		},
		{
			name: "activating an account",
			body: `{"active":true}`,
			setup: func(svc *serviceMocks.MockUser) {
				svc.EXPECT().Update(gomock.Any(), gomock.Any(), "user-2").DoAndReturn(func(_ context.Context, req dto.UpdateUserRequest, _ string) error {
					require.NotNil(t, req.Active)
					assert.True(t, *req.Active)

					return nil
				})
			},
			wantCode: http.StatusOK,
		},
		{
			name: "last admin",
			body: `{"role":"staff"}`,
			setup: func(svc *serviceMocks.MockUser) {
				svc.EXPECT().Update(gomock.Any(), gomock.Any(), "user-2").Return(failure.Conflict("at least one active admin must remain"))
			},
			wantCode: http.StatusConflict,
			wantBody: "at least one active admin must remain",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, router := newRouter(t)
			tt.setup(svc)

			rec := serve(router, http.MethodPatch, "/users/user-2", tt.body)

			require.Equal(t, tt.wantCode, rec.Code)

			if tt.wantBody != "" {
				assert.Contains(t, rec.Body.String(), tt.wantBody)
			}
		})
	}
}

func TestHandler_DeleteUser(t *testing.T) {
	svc, router := newRouter(t)

	svc.EXPECT().Delete(gomock.Any(), "missing").Return(failure.NotFound("user"))

	rec := serve(router, http.MethodDelete, "/users/missing", "")

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
