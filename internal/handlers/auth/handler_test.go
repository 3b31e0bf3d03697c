package auth_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	otelMocks "stagehand/infras/otel/mocks"
	"stagehand/internal/domains/auth/model/dto"
	serviceMocks "stagehand/internal/domains/auth/service/mocks"
	userDto "stagehand/internal/domains/user/model/dto"
	"stagehand/internal/handlers/auth"
	"stagehand/shared/failure"
	"stagehand/transport/http/response"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func newRouter(t *testing.T) (*serviceMocks.MockAuth, http.Handler) {
	t.Helper()

	svc := serviceMocks.NewMockAuth(gomock.NewController(t))
	handler := auth.New(svc, otelMocks.NewOtel())

	router := chi.NewRouter()
	handler.Router(router)

	return svc, router
}

func serve(router http.Handler, method, target, body string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(method, target, strings.NewReader(body)))

	return rec
}

func errorBody(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()

	var body response.Error
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.NotNil(t, body.Error)
	assert.Equal(t, rec.Code, body.Code)

	return *body.Error
}

func TestHandler_Login(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		svc, router := newRouter(t)

		svc.EXPECT().Login(gomock.Any(), dto.LoginRequest{Email: "director@studio.test", Password: "secret"}).
			Return(dto.LoginResponse{AccessToken: "access", RefreshToken: "refresh", TokenType: "Bearer", ExpiresIn: 900}, nil)

		rec := serve(router, http.MethodPost, "/auth/login", `{"email":"director@studio.test","password":"secret"}`)
		require.Equal(t, http.StatusOK, rec.Code)

		var body struct {
			Data dto.LoginResponse `json:"data"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "access", body.Data.AccessToken)
		assert.Equal(t, int64(900), body.Data.ExpiresIn)
	})

	t.Run("every invalid field is reported", func(t *testing.T) {
		_, router := newRouter(t)

		rec := serve(router, http.MethodPost, "/auth/login", `{"email":"nope"}`)

		require.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "email must be a valid email address; password is required", errorBody(t, rec))
	})

	t.Run("malformed body", func(t *testing.T) {
		_, router := newRouter(t)

		rec := serve(router, http.MethodPost, "/auth/login", `{"email":`)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("wrong credentials", func(t *testing.T) {
		svc, router := newRouter(t)

		svc.EXPECT().Login(gomock.Any(), gomock.Any()).Return(dto.LoginResponse{}, failure.Unauthorized("invalid email or password"))

		rec := serve(router, http.MethodPost, "/auth/login", `{"email":"director@studio.test","password":"wrong"}`)

		require.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "invalid email or password", errorBody(t, rec))
	})
}

func TestHandler_Register(t *testing.T) {
	svc, router := newRouter(t)

	svc.EXPECT().Register(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, req dto.RegisterRequest) error {
		assert.Equal(t, "new@studio.test", req.Email)

		return nil
	})

	rec := serve(router, http.MethodPost, "/auth/register", `{"email":"new@studio.test","password":"long enough"}`)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.JSONEq(t, `{"message":"User registered successfully"}`, rec.Body.String())
}

func TestHandler_ChangePassword(t *testing.T) {
	t.Run("new password must differ", func(t *testing.T) {
		_, router := newRouter(t)

		rec := serve(router, http.MethodPut, "/auth/password", `{"current_password":"same-password","new_password":"same-password"}`)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("success", func(t *testing.T) {
		svc, router := newRouter(t)

		svc.EXPECT().ChangePassword(gomock.Any(), dto.ChangePasswordRequest{CurrentPassword: "old-password", NewPassword: "new-password"}).Return(nil)

		rec := serve(router, http.MethodPut, "/auth/password", `{"current_password":"old-password","new_password":"new-password"}`)

		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestHandler_Me(t *testing.T) {
	t.Run("profile", func(t *testing.T) {
		svc, router := newRouter(t)

		svc.EXPECT().Me(gomock.Any()).Return(userDto.UserResponse{ID: "user-1", Email: "director@studio.test", Role: "director", Active: true}, nil)

		rec := serve(router, http.MethodGet, "/auth/me", "")
		require.Equal(t, http.StatusOK, rec.Code)

		var body struct {
			Data userDto.UserResponse `json:"data"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "director", body.Data.Role)
		assert.True(t, body.Data.Active)
	})

	t.Run("server errors are masked", func(t *testing.T) {
		svc, router := newRouter(t)

		svc.EXPECT().Me(gomock.Any()).Return(userDto.UserResponse{}, errors.New("pq: connection refused"))

		rec := serve(router, http.MethodGet, "/auth/me", "")

		require.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Equal(t, http.StatusText(http.StatusInternalServerError), errorBody(t, rec))
	})
}
