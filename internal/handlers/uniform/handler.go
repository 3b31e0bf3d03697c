package uniform

import (
	"net/http"

	"stagehand/infras/otel"
	"stagehand/internal/domains/uniform/model"
	"stagehand/internal/domains/uniform/model/dto"
	"stagehand/internal/domains/uniform/service"
	"stagehand/shared"
	"stagehand/shared/constant"
	gDto "stagehand/shared/dto"
	"stagehand/shared/validator"
	"stagehand/transport/http/response"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

const formFieldImage = "image"

type Handler struct {
	service service.Uniform
	otel    otel.Otel
}

func New(service service.Uniform, otel otel.Otel) Handler {
	return Handler{
		service: service,
		otel:    otel,
	}
}

func (handler *Handler) Router(router chi.Router) {
	router.Route("/uniforms", func(routerGroup chi.Router) {
		routerGroup.Post("/", handler.CreateUniform)
		routerGroup.Get("/", handler.GetUniforms)
		routerGroup.Get("/assignments", handler.GetAssignments)
		routerGroup.Post("/assignments/{id}/return", handler.ReturnUniform)
		routerGroup.Get("/{id}", handler.GetUniformByID)
		routerGroup.Patch("/{id}", handler.UpdateUniform)
		routerGroup.Delete("/{id}", handler.DeleteUniform)
		routerGroup.Post("/{id}/checkout", handler.CheckoutUniform)
	})
}

// CreateUniform handles the creation of a new uniform item.
// @Summary Create a uniform
// @Tags Uniform
// @Accept multipart/form-data
// @Produce json
// @Param name formData string true "Uniform name"
// @Param category formData string false "Category"
// @Param size formData string false "Size"
// @Param quantity_total formData int false "Units owned"
// @Param notes formData string false "Notes"
// @Param image formData file false "Uniform image"
// @Success 201 {object} response.Message "Uniform created successfully"
// @Failure 400 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/uniforms [post]
// @Security BearerAuth
func (handler *Handler) CreateUniform(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".CreateUniform")
	defer scope.End()

	if err := r.ParseMultipartForm(constant.RequestMaxMemory); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to parse multipart form")
		response.WithError(w, err)

		return
	}

	req := dto.CreateUniformRequest{
		Name:     r.FormValue(model.FieldName),
		Category: r.FormValue(model.FieldCategory),
		Size:     r.FormValue(model.FieldSize),
		Notes:    r.FormValue("notes"),
	}

	if total := r.FormValue(model.FieldQuantityTotal); total != "" {
		if n, err := shared.ConvertStringToInt(total); err == nil {
			req.QuantityTotal = n
		}
	}

	file, fileHeader, err := r.FormFile(formFieldImage)
	if err == nil {
		req.Image = fileHeader
		req.ImageFile = file

		defer file.Close()
	}

	if err := validator.ValidateStruct(&req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request")

		response.WithError(w, err)

		return
	}

	if _, err := handler.service.Create(ctx, req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to create uniform")

		response.WithError(w, err)

		return
	}

	response.WithMessage(w, http.StatusCreated, "Uniform created successfully")
}

// GetUniforms lists uniform items.
// @Summary Get all uniforms
// @Tags Uniform
// @Produce json
// @Param pagination query gDto.QueryParams false "Pagination parameters"
// @Param name query string false "Filter by name"
// @Param category query string false "Filter by category"
// @Param size query string false "Filter by size"
// @Success 200 {object} dto.GetUniformsResponse "List of uniforms"
// @Failure 500 {object} response.Error
// @Router /v1/uniforms [get]
func (handler *Handler) GetUniforms(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetUniforms")
	defer scope.End()

	queryParams := gDto.QueryParams{}
	queryParams.FromRequest(r, true)
	queryParams.RestrictSortBy(model.FieldName, model.FieldCategory, model.FieldQuantityAvailable, constant.FieldCreatedAt)
	queryParams.WithDefaultSort(model.FieldName, gDto.SortDirAsc)

	query := r.URL.Query()

	filterGroup := gDto.FilterGroup{
		Operator: gDto.FilterGroupOperatorAnd,
		Filters:  []any{},
	}

	if name := query.Get(model.FieldName); name != "" {
		filterGroup.Filters = append(filterGroup.Filters, gDto.Filter{
			Field:    model.FieldName,
			Operator: gDto.FilterOperatorLike,
			Value:    name,
			Table:    model.TableName,
		})
	}

	for _, field := range []string{model.FieldCategory, model.FieldSize} {
		if value := query.Get(field); value != "" {
			filterGroup.Filters = append(filterGroup.Filters, gDto.Filter{
				Field:    field,
				Operator: gDto.FilterOperatorEq,
				Value:    value,
				Table:    model.TableName,
			})
		}
	}

	uniforms, err := handler.service.GetAll(ctx, queryParams, filterGroup)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get uniforms")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, uniforms)
}

// GetUniformByID retrieves a uniform by its ID.
// @Summary Get a uniform by ID
// @Tags Uniform
// @Produce json
// @Param id path string true "Uniform ID"
// @Success 200 {object} dto.UniformResponse "Uniform details"
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/uniforms/{id} [get]
func (handler *Handler) GetUniformByID(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetUniformByID")
	defer scope.End()

	uniform, err := handler.service.Get(ctx, chi.URLParam(r, constant.RequestParamID))
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get uniform by ID")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, uniform)
}

// UpdateUniform updates a uniform item.
// @Summary Update a uniform by ID
// @Description Lowering quantity_total below the units currently checked out fails with 409.
// @Tags Uniform
// @Accept multipart/form-data
// @Produce json
// @Param id path string true "Uniform ID"
// @Param name formData string false "Uniform name"
// @Param category formData string false "Category"
// @Param size formData string false "Size"
// @Param quantity_total formData int false "Units owned"
// @Param notes formData string false "Notes"
// @Param image formData file false "Uniform image"
// @Success 200 {object} response.Message "Uniform updated successfully"
// @Failure 400 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 409 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/uniforms/{id} [patch]
// @Security BearerAuth
func (handler *Handler) UpdateUniform(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".UpdateUniform")
	defer scope.End()

	if err := r.ParseMultipartForm(constant.RequestMaxMemory); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to parse multipart form")
		response.WithError(w, err)

		return
	}

	req := dto.UpdateUniformRequest{
		Name:     r.FormValue(model.FieldName),
		Category: r.FormValue(model.FieldCategory),
		Size:     r.FormValue(model.FieldSize),
	}

	if r.MultipartForm != nil {
		if values, ok := r.MultipartForm.Value["notes"]; ok && len(values) > 0 {
			req.Notes = &values[0]
		}
	}

	if total := r.FormValue(model.FieldQuantityTotal); total != "" {
		if n, err := shared.ConvertStringToInt(total); err == nil {
			req.QuantityTotal = &n
		}
	}

	file, fileHeader, err := r.FormFile(formFieldImage)
	if err == nil {
		req.Image = fileHeader
		req.ImageFile = file

		defer file.Close()
	}

	if err := validator.ValidateStruct(&req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request")

		response.WithError(w, err)

		return
	}

	if err := handler.service.Update(ctx, req, chi.URLParam(r, constant.RequestParamID)); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to update uniform")

		response.WithError(w, err)

		return
	}

	response.WithMessage(w, http.StatusOK, "Uniform updated successfully")
}

// DeleteUniform deletes a uniform item.
// @Summary Delete a uniform by ID
// @Tags Uniform
// @Produce json
// @Param id path string true "Uniform ID"
// @Success 200 {object} response.Message "Uniform deleted successfully"
// @Failure 404 {object} response.Error
// @Failure 409 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/uniforms/{id} [delete]
// @Security BearerAuth
func (handler *Handler) DeleteUniform(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".DeleteUniform")
	defer scope.End()

	if err := handler.service.Delete(ctx, chi.URLParam(r, constant.RequestParamID)); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to delete uniform")

		response.WithError(w, err)

		return
	}

	response.WithMessage(w, http.StatusOK, "Uniform deleted successfully")
}

// CheckoutUniform hands units of a uniform to a student.
// @Summary Check out a uniform
// @Tags Uniform
// @Accept json
// @Produce json
// @Param id path string true "Uniform ID"
// @Param request body dto.CheckoutRequest true "Checkout details"
// @Success 201 {object} response.Message "Uniform checked out successfully"
// @Failure 400 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 409 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/uniforms/{id}/checkout [post]
// @Security BearerAuth
func (handler *Handler) CheckoutUniform(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".CheckoutUniform")
	defer scope.End()

	var req dto.CheckoutRequest
	if err := validator.Validate(r.Body, &req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request")

		response.WithError(w, err)

		return
	}

	assignmentID, err := handler.service.Checkout(ctx, req, chi.URLParam(r, constant.RequestParamID))
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to check out uniform")

		response.WithError(w, err)

		return
	}

	scope.AddEvent("Uniform assignment " + assignmentID + " opened")

	response.WithMessage(w, http.StatusCreated, "Uniform checked out successfully")
}

// ReturnUniform closes a uniform assignment.
// @Summary Return a checked out uniform
// @Tags Uniform
// @Produce json
// @Param id path string true "Assignment ID"
// @Success 200 {object} response.Message "Uniform returned successfully"
// @Failure 404 {object} response.Error
// @Failure 409 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/uniforms/assignments/{id}/return [post]
// @Security BearerAuth
func (handler *Handler) ReturnUniform(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".ReturnUniform")
	defer scope.End()

	if err := handler.service.Return(ctx, chi.URLParam(r, constant.RequestParamID)); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to return uniform")

		response.WithError(w, err)

		return
	}

	response.WithMessage(w, http.StatusOK, "Uniform returned successfully")
}

// GetAssignments lists uniform checkouts.
// @Summary Get uniform assignments
// @Tags Uniform
// @Produce json
// @Param pagination query gDto.QueryParams false "Pagination parameters"
// @Param uniform_id query string false "Filter by uniform"
// @Param student_id query string false "Filter by student"
// @Param open query bool false "Only assignments not yet returned"
// @Success 200 {object} dto.GetAssignmentsResponse "List of assignments"
// @Failure 500 {object} response.Error
// @Router /v1/uniforms/assignments [get]
func (handler *Handler) GetAssignments(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetAssignments")
	defer scope.End()

	queryParams := gDto.QueryParams{}
	queryParams.FromRequest(r, true)
	queryParams.RestrictSortBy(model.FieldAssignmentCheckedOutAt, model.FieldAssignmentReturnedAt)
	queryParams.WithDefaultSort(model.FieldAssignmentCheckedOutAt, gDto.SortDirDesc)

	query := r.URL.Query()

	filterGroup := gDto.FilterGroup{
		Operator: gDto.FilterGroupOperatorAnd,
		Filters:  []any{},
	}

	for _, field := range []string{model.FieldAssignmentUniformID, model.FieldAssignmentStudentID} {
		if value := query.Get(field); value != "" {
			filterGroup.Filters = append(filterGroup.Filters, gDto.Filter{
				Field:    field,
				Operator: gDto.FilterOperatorEq,
				Value:    value,
				Table:    model.AssignmentTableName,
			})
		}
	}

	if open := shared.ConvertStringToBool(query.Get("open")); open != nil {
		operator := gDto.FilterIsNotNull
		if *open {
			operator = gDto.FilterIsNull
		}

		filterGroup.Filters = append(filterGroup.Filters, gDto.Filter{
			Field:    model.FieldAssignmentReturnedAt,
			Operator: operator,
			Table:    model.AssignmentTableName,
		})
	}

	assignments, err := handler.service.GetAssignments(ctx, queryParams, filterGroup)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get uniform assignments")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, assignments)
}
