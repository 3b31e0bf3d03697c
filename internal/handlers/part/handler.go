package part

import (
	"net/http"

	"stagehand/infras/otel"
	"stagehand/internal/domains/part/model"
	"stagehand/internal/domains/part/model/dto"
	"stagehand/internal/domains/part/service"
	"stagehand/shared/constant"
	gDto "stagehand/shared/dto"
	"stagehand/shared/validator"
	"stagehand/transport/http/response"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

type Handler struct {
	service service.Part
	otel    otel.Otel
}

func New(service service.Part, otel otel.Otel) Handler {
	return Handler{
		service: service,
		otel:    otel,
	}
}

func (handler *Handler) Router(router chi.Router) {
	router.Route("/parts", func(routerGroup chi.Router) {
		routerGroup.Post("/", handler.CreatePart)
		routerGroup.Get("/", handler.GetParts)
		routerGroup.Get("/{id}", handler.GetPartByID)
		routerGroup.Patch("/{id}", handler.UpdatePart)
		routerGroup.Delete("/{id}", handler.DeletePart)
	})
}

// CreatePart handles the creation of a new part.
// @Summary Create a part
// @Tags Part
// @Accept json
// @Produce json
// @Param request body dto.CreatePartRequest true "Part details"
// @Success 201 {object} response.Message "Part created successfully"
// @Failure 400 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/parts [post]
// @Security BearerAuth
func (handler *Handler) CreatePart(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".CreatePart")
	defer scope.End()

	var req dto.CreatePartRequest
	if err := validator.Validate(r.Body, &req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request")

		response.WithError(w, err)

		return
	}

	if _, err := handler.service.Create(ctx, req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to create part")

		response.WithError(w, err)

		return
	}

	response.WithMessage(w, http.StatusCreated, "Part created successfully")
}

// GetParts lists parts.
// @Summary Get all parts
// @Tags Part
// @Produce json
// @Param pagination query gDto.QueryParams false "Pagination parameters"
// @Param performance_id query string false "Filter by performance"
// @Param name query string false "Filter by name"
// @Success 200 {object} dto.GetPartsResponse "List of parts"
// @Failure 500 {object} response.Error
// @Router /v1/parts [get]
func (handler *Handler) GetParts(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetParts")
	defer scope.End()

	queryParams := gDto.QueryParams{}
	queryParams.FromRequest(r, true)
	queryParams.RestrictSortBy(model.FieldName, model.FieldCapacity, constant.FieldCreatedAt)
	queryParams.WithDefaultSort(model.FieldName, gDto.SortDirAsc)

	filterGroup := gDto.FilterGroup{
		Operator: gDto.FilterGroupOperatorAnd,
		Filters:  []any{},
	}

	if performanceID := r.URL.Query().Get(model.FieldPerformanceID); performanceID != "" {
		filterGroup.Filters = append(filterGroup.Filters, gDto.Filter{
			Field:    model.FieldPerformanceID,
			Operator: gDto.FilterOperatorEq,
			Value:    performanceID,
			Table:    model.TableName,
		})
	}

	if name := r.URL.Query().Get(model.FieldName); name != "" {
		filterGroup.Filters = append(filterGroup.Filters, gDto.Filter{
			Field:    model.FieldName,
			Operator: gDto.FilterOperatorLike,
			Value:    name,
			Table:    model.TableName,
		})
	}

	parts, err := handler.service.GetAll(ctx, queryParams, filterGroup)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get parts")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, parts)
}

// GetPartByID retrieves a part by its ID.
// @Summary Get a part by ID
// @Tags Part
// @Produce json
// @Param id path string true "Part ID"
// @Success 200 {object} dto.PartResponse "Part details"
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/parts/{id} [get]
func (handler *Handler) GetPartByID(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetPartByID")
	defer scope.End()

	part, err := handler.service.Get(ctx, chi.URLParam(r, constant.RequestParamID))
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get part by ID")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, part)
}

// UpdatePart updates a part.
// @Summary Update a part by ID
// @Description Shrinking the grid fails with 409 while students stand in the cells being removed.
// @Tags Part
// @Accept json
// @Produce json
// @Param id path string true "Part ID"
// @Param request body dto.UpdatePartRequest true "Fields to update"
// @Success 200 {object} response.Message "Part updated successfully"
// @Failure 400 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 409 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/parts/{id} [patch]
// @Security BearerAuth
func (handler *Handler) UpdatePart(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".UpdatePart")
	defer scope.End()

	var req dto.UpdatePartRequest
	if err := validator.Validate(r.Body, &req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request")

		response.WithError(w, err)

		return
	}

	if err := handler.service.Update(ctx, req, chi.URLParam(r, constant.RequestParamID)); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to update part")

		response.WithError(w, err)

		return
	}

	response.WithMessage(w, http.StatusOK, "Part updated successfully")
}

// DeletePart deletes a part with its subparts and positions.
// @Summary Delete a part by ID
// @Tags Part
// @Produce json
// @Param id path string true "Part ID"
// @Success 200 {object} response.Message "Part deleted successfully"
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/parts/{id} [delete]
// @Security BearerAuth
func (handler *Handler) DeletePart(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".DeletePart")
	defer scope.End()

	if err := handler.service.Delete(ctx, chi.URLParam(r, constant.RequestParamID)); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to delete part")

		response.WithError(w, err)

		return
	}

	response.WithMessage(w, http.StatusOK, "Part deleted successfully")
}
