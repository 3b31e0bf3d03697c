package user

import (
	"context"
	"net/http"

	"stagehand/infras/otel"
	"stagehand/internal/domains/user/model"
	"stagehand/internal/domains/user/model/dto"
	"stagehand/internal/domains/user/service"
	"stagehand/shared"
	"stagehand/shared/constant"
	gDto "stagehand/shared/dto"
	"stagehand/shared/validator"
	"stagehand/transport/http/response"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

type Handler struct {
	service service.User
	otel    otel.Otel
}

func New(service service.User, otel otel.Otel) Handler {
	return Handler{
		service: service,
		otel:    otel,
	}
}

// Router mounts account management. Every route is admin only.
func (handler *Handler) Router(router chi.Router) {
	router.Route("/users", func(users chi.Router) {
		users.Post("/", handler.CreateUser)
		users.Get("/", handler.GetUsers)
		users.Get("/{id}", handler.GetUserByID)
		users.Patch("/{id}", handler.UpdateUser)
		users.Delete("/{id}", handler.DeleteUser)
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

// CreateUser creates an active account on behalf of an admin.
// @Summary Create a user
// @Tags User
// @Accept json
// @Produce json
// @Param request body dto.CreateUserRequest true "Account details"
// @Success 201 {object} response.Message "User created successfully"
// @Failure 400 {object} response.Error
// @Failure 409 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/users [post]
// @Security BearerAuth
func (handler *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.span(r, "CreateUser")
	defer scope.End()

	var req dto.CreateUserRequest
	if err := validator.Validate(r.Body, &req); err != nil {
		fail(w, scope, err, "validate request")

		return
	}

	if err := handler.service.Create(ctx, req); err != nil {
		fail(w, scope, err, "create user")

		return
	}

	response.WithMessage(w, http.StatusCreated, "User created successfully")
}

// GetUsers lists accounts.
// @Summary List users
// @Description sort_by accepts email, role, last_login and created_at. The default is email ascending.
// @Tags User
// @Produce json
// @Param pagination query gDto.QueryParams false "Pagination parameters"
// @Param email query string false "Case-insensitive email fragment"
// @Param role query string false "Exact role" Enums(admin, director, staff)
// @Param active query bool false "Activation state"
// @Success 200 {object} dto.GetUsersResponse "Page of users"
// @Failure 500 {object} response.Error
// @Router /v1/users [get]
// @Security BearerAuth
func (handler *Handler) GetUsers(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.span(r, "GetUsers")
	defer scope.End()

	var params gDto.QueryParams

	params.FromRequest(r, true)
	params.RestrictSortBy(model.FieldEmail, model.FieldRole, model.FieldLastLogin, constant.FieldCreatedAt)
	params.WithDefaultSort(model.FieldEmail, gDto.SortDirAsc)

	page, err := handler.service.GetAll(ctx, params, usersFilter(r))
	if err != nil {
		fail(w, scope, err, "list users")

		return
	}

	response.WithJSON(w, http.StatusOK, page)
}

// usersFilter ANDs the email, role and active query parameters that are present.
func usersFilter(r *http.Request) gDto.FilterGroup {
	query := r.URL.Query()
	filter := gDto.And()

	on := func(field, operator string, value any) {
		filter.Filters = append(filter.Filters, gDto.Filter{
			Field:    field,
			Operator: operator,
			Value:    value,
			Table:    model.TableName,
		})
	}

	if email := query.Get(model.FieldEmail); email != "" {
		on(model.FieldEmail, gDto.FilterOperatorLike, email)
	}

	if role := query.Get(model.FieldRole); role != "" {
		on(model.FieldRole, gDto.FilterOperatorEq, role)
	}

	if active := shared.ConvertStringToBool(query.Get(model.FieldActive)); active != nil {
		on(model.FieldActive, gDto.FilterOperatorEq, *active)
	}

	return filter
}

// GetUserByID retrieves an account.
// @Summary Get a user
// @Tags User
// @Produce json
// @Param id path string true "User ID"
// @Success 200 {object} dto.UserResponse "User details"
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/users/{id} [get]
// @Security BearerAuth
func (handler *Handler) GetUserByID(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.span(r, "GetUserByID")
	defer scope.End()

	account, err := handler.service.Get(ctx, chi.URLParam(r, constant.RequestParamID))
	if err != nil {
		fail(w, scope, err, "get user")

		return
	}

	response.WithJSON(w, http.StatusOK, account)
}

// UpdateUser changes an account's role, name or activation.
// @Summary Update a user
// @Description Activating a self-registered account is done here. Demoting or deactivating the last active admin fails with 409.
// @Tags User
// @Accept json
// @Produce json
// @Param id path string true "User ID"
// @Param request body dto.UpdateUserRequest true "Fields to update"
// @Success 200 {object} response.Message "User updated successfully"
// @Failure 400 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 409 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/users/{id} [patch]
// @Security BearerAuth
func (handler *Handler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.span(r, "UpdateUser")
	defer scope.End()

	var req dto.UpdateUserRequest
	if err := validator.Validate(r.Body, &req); err != nil {
		fail(w, scope, err, "validate request")

		return
	}

	id := chi.URLParam(r, constant.RequestParamID)

	if err := handler.service.Update(ctx, req, id); err != nil {
		fail(w, scope, err, "update user "+id)

		return
	}

	response.WithMessage(w, http.StatusOK, "User updated successfully")
}

// DeleteUser removes an account.
// @Summary Delete a user
// @Description Callers cannot delete themselves or the last active admin.
// @Tags User
// @Produce json
// @Param id path string true "User ID"
// @Success 200 {object} response.Message "User deleted successfully"
// @Failure 400 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 409 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/users/{id} [delete]
// @Security BearerAuth
func (handler *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.span(r, "DeleteUser")
	defer scope.End()

	id := chi.URLParam(r, constant.RequestParamID)

	if err := handler.service.Delete(ctx, id); err != nil {
		fail(w, scope, err, "delete user "+id)

		return
	}

	response.WithMessage(w, http.StatusOK, "User deleted successfully")
}
