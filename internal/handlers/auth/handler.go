package auth

import (
	"context"
	"net/http"

	"stagehand/infras/otel"
	"stagehand/internal/domains/auth/model/dto"
	"stagehand/internal/domains/auth/service"
	userDto "stagehand/internal/domains/user/model/dto"
	"stagehand/shared/constant"
	"stagehand/shared/validator"
	"stagehand/transport/http/response"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

// Handler serves sign-in and the caller's own account.
type Handler struct {
	service service.Auth
	otel    otel.Otel
}

func New(service service.Auth, otel otel.Otel) Handler {
	return Handler{
		service: service,
		otel:    otel,
	}
}

// Router mounts /auth. register, login and refresh-token are skipped by the JWT middleware.
func (handler *Handler) Router(router chi.Router) {
	router.Route("/auth", func(auth chi.Router) {
		auth.Post("/register", handler.Register)
		auth.Post("/login", handler.Login)
		auth.Post("/refresh-token", handler.RefreshToken)
		auth.Put("/password", handler.ChangePassword)
		auth.Get("/me", handler.Me)
	})
}

func (handler *Handler) span(r *http.Request, name string) (context.Context, otel.Scope) {
	return handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+"."+name)
}

func fail(w http.ResponseWriter, scope otel.Scope, err error, action string) {
	scope.TraceError(err)
	log.Error().Err(err).Msgf("failed to %s", action)

	response.WithError(w, err)
}

// bind decodes and validates the body into req. On failure the 400 has already been written.
func bind[T any](w http.ResponseWriter, r *http.Request, scope otel.Scope, req *T) bool {
	if err := validator.Validate(r.Body, req); err != nil {
		fail(w, scope, err, "validate request body")

		return false
	}

	return true
}

// Register creates a self-service account.
// @Summary Register an account
// @Description The account starts inactive with the staff role. An admin activates it through PATCH /v1/users/{id}.
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body dto.RegisterRequest true "Email, password and optional full name"
// @Success 201 {object} response.Message "User registered successfully"
// @Failure 400 {object} response.Error
// @Failure 409 {object} response.Error "Email already registered"
// @Failure 500 {object} response.Error
// @Router /v1/auth/register [post]
func (handler *Handler) Register(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.span(r, "Register")
	defer scope.End()

	var req dto.RegisterRequest
	if !bind(w, r, scope, &req) {
		return
	}

	if err := handler.service.Register(ctx, req); err != nil {
		fail(w, scope, err, "register user")

		return
	}

	scope.AddEvent("account registered: " + req.Email)

	response.WithMessage(w, http.StatusCreated, "User registered successfully")
}

// Login exchanges credentials for a token pair.
// @Summary Sign in
// @Description Inactive accounts are refused with 403 until an admin activates them.
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body dto.LoginRequest true "Credentials"
// @Success 200 {object} dto.LoginResponse "Access and refresh tokens"
// @Failure 400 {object} response.Error
// @Failure 401 {object} response.Error
// @Failure 403 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/auth/login [post]
func (handler *Handler) Login(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.span(r, "Login")
	defer scope.End()

	var req dto.LoginRequest
	if !bind(w, r, scope, &req) {
		return
	}

	tokens, err := handler.service.Login(ctx, req)
	if err != nil {
		fail(w, scope, err, "sign in")

		return
	}

	response.WithJSON(w, http.StatusOK, tokens)
}

// RefreshToken issues a new pair for an unexpired refresh token.
// @Summary Refresh tokens
// @Description The new pair carries the role recorded in the refresh token.
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body dto.RefreshTokenRequest true "Refresh token"
// @Success 200 {object} dto.RefreshTokenResponse "New token pair"
// @Failure 400 {object} response.Error
// @Failure 401 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/auth/refresh-token [post]
func (handler *Handler) RefreshToken(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.span(r, "RefreshToken")
	defer scope.End()

	var req dto.RefreshTokenRequest
	if !bind(w, r, scope, &req) {
		return
	}

	tokens, err := handler.service.RefreshToken(ctx, req)
	if err != nil {
		fail(w, scope, err, "refresh token")

		return
	}

	response.WithJSON(w, http.StatusOK, tokens)
}

// ChangePassword changes the signed-in user's password.
// @Summary Change password
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body dto.ChangePasswordRequest true "Current and new password"
// @Success 200 {object} response.Message "Password changed successfully"
// @Failure 400 {object} response.Error
// @Failure 401 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/auth/password [put]
// @Security BearerAuth
func (handler *Handler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.span(r, "ChangePassword")
	defer scope.End()

	var req dto.ChangePasswordRequest
	if !bind(w, r, scope, &req) {
		return
	}

	if err := handler.service.ChangePassword(ctx, req); err != nil {
		fail(w, scope, err, "change password")

		return
	}

	response.WithMessage(w, http.StatusOK, "Password changed successfully")
}

// Me returns the signed-in user's profile.
// @Summary Current user
// @Tags Auth
// @Produce json
// @Success 200 {object} userDto.UserResponse "Profile of the token's owner"
// @Failure 401 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/auth/me [get]
// @Security BearerAuth
func (handler *Handler) Me(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.span(r, "Me")
	defer scope.End()

	var (
		profile userDto.UserResponse
		err     error
	)

	if profile, err = handler.service.Me(ctx); err != nil {
		fail(w, scope, err, "load current user")

		return
	}

	response.WithJSON(w, http.StatusOK, profile)
}
