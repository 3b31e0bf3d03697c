package signup

import (
	"net/http"

	"stagehand/infras/otel"
	"stagehand/internal/domains/signup/model"
	"stagehand/internal/domains/signup/model/dto"
	"stagehand/internal/domains/signup/service"
	"stagehand/shared/constant"
	gDto "stagehand/shared/dto"
	"stagehand/shared/validator"
	"stagehand/transport/http/response"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

type Handler struct {
	service service.Signup
	otel    otel.Otel
}

func New(service service.Signup, otel otel.Otel) Handler {
	return Handler{
		service: service,
		otel:    otel,
	}
}

func (handler *Handler) Router(router chi.Router) {
	router.Route("/signups", func(routerGroup chi.Router) {
		routerGroup.Post("/", handler.CreateSignup)
		routerGroup.Get("/", handler.GetSignups)
		routerGroup.Get("/{id}", handler.GetSignupByID)
		routerGroup.Patch("/{id}", handler.UpdateSignup)
		routerGroup.Delete("/{id}", handler.DeleteSignup)
	})
}

// CreateSignup signs a student up for a performance.
// @Summary Sign a student up for a performance
// @Description Fails with 403 while signups are closed and with 423 within one hour of the start.
// @Tags Signup
// @Accept json
// @Produce json
// @Param request body dto.CreateSignupRequest true "Signup details"
// @Success 201 {object} response.Message "Signup created successfully"
// @Failure 400 {object} response.Error
// @Failure 403 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 409 {object} response.Error
// @Failure 423 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/signups [post]
// @Security BearerAuth
func (handler *Handler) CreateSignup(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".CreateSignup")
	defer scope.End()

	var req dto.CreateSignupRequest
	if err := validator.Validate(r.Body, &req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request")

		response.WithError(w, err)

		return
	}

	if _, err := handler.service.Create(ctx, req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to create signup")

		response.WithError(w, err)

		return
	}

	response.WithMessage(w, http.StatusCreated, "Signup created successfully")
}

// GetSignups lists signups.
// @Summary Get all signups
// @Tags Signup
// @Produce json
// @Param pagination query gDto.QueryParams false "Pagination parameters"
// @Param performance_id query string false "Filter by performance"
// @Param student_id query string false "Filter by student"
// @Param part_id query string false "Filter by part"
// @Param status query string false "Filter by status" Enums(pending, confirmed, withdrawn)
// @Success 200 {object} dto.GetSignupsResponse "List of signups"
// @Failure 500 {object} response.Error
// @Router /v1/signups [get]
func (handler *Handler) GetSignups(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetSignups")
	defer scope.End()

	queryParams := gDto.QueryParams{}
	queryParams.FromRequest(r, true)
	queryParams.RestrictSortBy(model.FieldStatus, constant.FieldCreatedAt)
	queryParams.WithDefaultSort(constant.FieldCreatedAt, gDto.SortDirAsc)

	query := r.URL.Query()

	filterGroup := gDto.FilterGroup{
		Operator: gDto.FilterGroupOperatorAnd,
		Filters:  []any{},
	}

	for _, field := range []string{model.FieldPerformanceID, model.FieldStudentID, model.FieldPartID, model.FieldStatus} {
		if value := query.Get(field); value != "" {
			filterGroup.Filters = append(filterGroup.Filters, gDto.Filter{
				Field:    field,
				Operator: gDto.FilterOperatorEq,
				Value:    value,
				Table:    model.TableName,
			})
		}
	}

	signups, err := handler.service.GetAll(ctx, queryParams, filterGroup)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get signups")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, signups)
}

// GetSignupByID retrieves a signup by its ID.
// @Summary Get a signup by ID
// @Tags Signup
// @Produce json
// @Param id path string true "Signup ID"
// @Success 200 {object} dto.SignupResponse "Signup details"
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/signups/{id} [get]
func (handler *Handler) GetSignupByID(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetSignupByID")
	defer scope.End()

	signup, err := handler.service.Get(ctx, chi.URLParam(r, constant.RequestParamID))
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get signup by ID")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, signup)
}

// UpdateSignup updates a signup.
// @Summary Update a signup by ID
// @Tags Signup
// @Accept json
// @Produce json
// @Param id path string true "Signup ID"
// @Param request body dto.UpdateSignupRequest true "Fields to update"
// @Success 200 {object} response.Message "Signup updated successfully"
// @Failure 400 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 423 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/signups/{id} [patch]
// @Security BearerAuth
func (handler *Handler) UpdateSignup(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".UpdateSignup")
	defer scope.End()

	var req dto.UpdateSignupRequest
	if err := validator.Validate(r.Body, &req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request")

		response.WithError(w, err)

		return
	}

	if err := handler.service.Update(ctx, req, chi.URLParam(r, constant.RequestParamID)); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to update signup")

		response.WithError(w, err)

		return
	}

	response.WithMessage(w, http.StatusOK, "Signup updated successfully")
}

// DeleteSignup deletes a signup.
// @Summary Delete a signup by ID
// @Tags Signup
// @Produce json
// @Param id path string true "Signup ID"
// @Success 200 {object} response.Message "Signup deleted successfully"
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/signups/{id} [delete]
// @Security BearerAuth
func (handler *Handler) DeleteSignup(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".DeleteSignup")
	defer scope.End()

	if err := handler.service.Delete(ctx, chi.URLParam(r, constant.RequestParamID)); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to delete signup")

		response.WithError(w, err)

		return
	}

	response.WithMessage(w, http.StatusOK, "Signup deleted successfully")
}
