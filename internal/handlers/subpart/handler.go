package subpart

import (
	"net/http"

	"stagehand/infras/otel"
	"stagehand/internal/domains/subpart/model"
	"stagehand/internal/domains/subpart/model/dto"
	"stagehand/internal/domains/subpart/service"
	"stagehand/shared/constant"
	gDto "stagehand/shared/dto"
	"stagehand/shared/validator"
	"stagehand/transport/http/response"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

type Handler struct {
	service service.Subpart
	otel    otel.Otel
}

func New(service service.Subpart, otel otel.Otel) Handler {
	return Handler{
		service: service,
		otel:    otel,
	}
}

func (handler *Handler) Router(router chi.Router) {
	router.Route("/subparts", func(routerGroup chi.Router) {
		routerGroup.Post("/", handler.CreateSubpart)
		routerGroup.Get("/", handler.GetSubparts)
		routerGroup.Get("/{id}", handler.GetSubpartByID)
		routerGroup.Patch("/{id}", handler.UpdateSubpart)
		routerGroup.Delete("/{id}", handler.DeleteSubpart)
	})
}

// CreateSubpart handles the creation of a new subpart.
// @Summary Create a subpart
// @Tags Subpart
// @Accept json
// @Produce json
// @Param request body dto.CreateSubpartRequest true "Subpart details"
// @Success 201 {object} response.Message "Subpart created successfully"
// @Failure 400 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/subparts [post]
// @Security BearerAuth
func (handler *Handler) CreateSubpart(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".CreateSubpart")
	defer scope.End()

	var req dto.CreateSubpartRequest
	if err := validator.Validate(r.Body, &req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request")

		response.WithError(w, err)

		return
	}

	if _, err := handler.service.Create(ctx, req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to create subpart")

		response.WithError(w, err)

		return
	}

	response.WithMessage(w, http.StatusCreated, "Subpart created successfully")
}

// GetSubparts lists subparts.
// @Summary Get all subparts
// @Tags Subpart
// @Produce json
// @Param pagination query gDto.QueryParams false "Pagination parameters"
// @Param part_id query string false "Filter by part"
// @Success 200 {object} dto.GetSubpartsResponse "List of subparts"
// @Failure 500 {object} response.Error
// @Router /v1/subparts [get]
func (handler *Handler) GetSubparts(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetSubparts")
	defer scope.End()

	queryParams := gDto.QueryParams{}
	queryParams.FromRequest(r, true)
	queryParams.RestrictSortBy(model.FieldSortOrder, model.FieldName, constant.FieldCreatedAt)
	queryParams.WithDefaultSort(model.FieldSortOrder, gDto.SortDirAsc)

	filterGroup := gDto.FilterGroup{
		Operator: gDto.FilterGroupOperatorAnd,
		Filters:  []any{},
	}

	if partID := r.URL.Query().Get(model.FieldPartID); partID != "" {
		filterGroup.Filters = append(filterGroup.Filters, gDto.Filter{
			Field:    model.FieldPartID,
			Operator: gDto.FilterOperatorEq,
			Value:    partID,
			Table:    model.TableName,
		})
	}

	subparts, err := handler.service.GetAll(ctx, queryParams, filterGroup)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get subparts")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, subparts)
}

// GetSubpartByID retrieves a subpart by its ID.
// @Summary Get a subpart by ID
// @Tags Subpart
// @Produce json
// @Param id path string true "Subpart ID"
// @Success 200 {object} dto.SubpartResponse "Subpart details"
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/subparts/{id} [get]
func (handler *Handler) GetSubpartByID(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetSubpartByID")
	defer scope.End()

	subpart, err := handler.service.Get(ctx, chi.URLParam(r, constant.RequestParamID))
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get subpart by ID")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, subpart)
}

// UpdateSubpart updates a subpart.
// @Summary Update a subpart by ID
// @Tags Subpart
// @Accept json
// @Produce json
// @Param id path string true "Subpart ID"
// @Param request body dto.UpdateSubpartRequest true "Fields to update"
// @Success 200 {object} response.Message "Subpart updated successfully"
// @Failure 400 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/subparts/{id} [patch]
// @Security BearerAuth
func (handler *Handler) UpdateSubpart(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".UpdateSubpart")
	defer scope.End()

	var req dto.UpdateSubpartRequest
	if err := validator.Validate(r.Body, &req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request")

		response.WithError(w, err)

		return
	}

	if err := handler.service.Update(ctx, req, chi.URLParam(r, constant.RequestParamID)); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to update subpart")

		response.WithError(w, err)

		return
	}

	response.WithMessage(w, http.StatusOK, "Subpart updated successfully")
}

// DeleteSubpart deletes a subpart. Its positions stay on the part.
// @Summary Delete a subpart by ID
// @Tags Subpart
// @Produce json
// @Param id path string true "Subpart ID"
// @Success 200 {object} response.Message "Subpart deleted successfully"
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/subparts/{id} [delete]
// @Security BearerAuth
func (handler *Handler) DeleteSubpart(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".DeleteSubpart")
	defer scope.End()

	if err := handler.service.Delete(ctx, chi.URLParam(r, constant.RequestParamID)); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to delete subpart")

		response.WithError(w, err)

		return
	}

	response.WithMessage(w, http.StatusOK, "Subpart deleted successfully")
}
