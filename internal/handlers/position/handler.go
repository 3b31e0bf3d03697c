package position

import (
	"net/http"

	"stagehand/infras/otel"
	"stagehand/internal/domains/position/model"
	"stagehand/internal/domains/position/model/dto"
	"stagehand/internal/domains/position/service"
	"stagehand/shared/constant"
	gDto "stagehand/shared/dto"
	"stagehand/shared/validator"
	"stagehand/transport/http/response"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

type Handler struct {
	service service.Position
	otel    otel.Otel
}

func New(service service.Position, otel otel.Otel) Handler {
	return Handler{
		service: service,
		otel:    otel,
	}
}

func (handler *Handler) Router(router chi.Router) {
	router.Route("/positions", func(routerGroup chi.Router) {
		routerGroup.Post("/", handler.AssignPosition)
		routerGroup.Get("/", handler.GetPositions)
		routerGroup.Get("/{id}", handler.GetPositionByID)
		routerGroup.Patch("/{id}", handler.MovePosition)
		routerGroup.Delete("/{id}", handler.RemovePosition)
	})
}

// AssignPosition places a student on a part's stage grid.
// @Summary Assign a stage position
// @Description Send row and col, or x, y and cell_size from the rendered grid; pixels map to cell (y / cell_size, x / cell_size).
// @Tags Position
// @Accept json
// @Produce json
// @Param request body dto.AssignPositionRequest true "Placement"
// @Success 201 {object} response.Message "Position assigned successfully"
// @Failure 400 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 409 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/positions [post]
// @Security BearerAuth
func (handler *Handler) AssignPosition(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".AssignPosition")
	defer scope.End()

	var req dto.AssignPositionRequest
	if err := validator.Validate(r.Body, &req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request")

		response.WithError(w, err)

		return
	}

	if _, err := handler.service.Assign(ctx, req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to assign position")

		response.WithError(w, err)

		return
	}

	response.WithMessage(w, http.StatusCreated, "Position assigned successfully")
}

// GetPositions lists stage positions.
// @Summary Get all positions
// @Tags Position
// @Produce json
// @Param pagination query gDto.QueryParams false "Pagination parameters"
// @Param part_id query string false "Filter by part"
// @Param subpart_id query string false "Filter by subpart"
// @Param student_id query string false "Filter by student"
// @Success 200 {object} dto.GetPositionsResponse "List of positions"
// @Failure 500 {object} response.Error
// @Router /v1/positions [get]
func (handler *Handler) GetPositions(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetPositions")
	defer scope.End()

	queryParams := gDto.QueryParams{}
	queryParams.FromRequest(r, true)
	queryParams.RestrictSortBy(model.FieldGridRow, model.FieldGridCol, constant.FieldCreatedAt)
	queryParams.WithDefaultSort(model.FieldGridRow, gDto.SortDirAsc)

	filterGroup := gDto.FilterGroup{
		Operator: gDto.FilterGroupOperatorAnd,
		Filters:  []any{},
	}

	for _, field := range []string{model.FieldPartID, model.FieldSubpartID, model.FieldStudentID} {
		if value := r.URL.Query().Get(field); value != "" {
			filterGroup.Filters = append(filterGroup.Filters, gDto.Filter{
				Field:    field,
				Operator: gDto.FilterOperatorEq,
				Value:    value,
				Table:    model.TableName,
			})
		}
	}

	positions, err := handler.service.GetAll(ctx, queryParams, filterGroup)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get positions")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, positions)
}

// GetPositionByID retrieves a position by its ID.
// @Summary Get a position by ID
// @Tags Position
// @Produce json
// @Param id path string true "Position ID"
// @Success 200 {object} dto.PositionResponse "Position details"
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/positions/{id} [get]
func (handler *Handler) GetPositionByID(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetPositionByID")
	defer scope.End()

	position, err := handler.service.Get(ctx, chi.URLParam(r, constant.RequestParamID))
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get position by ID")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, position)
}

// MovePosition moves a student to another cell.
// @Summary Move a stage position
// @Tags Position
// @Accept json
// @Produce json
// @Param id path string true "Position ID"
// @Param request body dto.MovePositionRequest true "New cell"
// @Success 200 {object} response.Message "Position moved successfully"
// @Failure 400 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 409 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/positions/{id} [patch]
// @Security BearerAuth
func (handler *Handler) MovePosition(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".MovePosition")
	defer scope.End()

	var req dto.MovePositionRequest
	if err := validator.Validate(r.Body, &req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request")

		response.WithError(w, err)

		return
	}

	if err := handler.service.Move(ctx, req, chi.URLParam(r, constant.RequestParamID)); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to move position")

		response.WithError(w, err)

		return
	}

	response.WithMessage(w, http.StatusOK, "Position moved successfully")
}

// RemovePosition takes a student off the grid.
// @Summary Remove a stage position
// @Tags Position
// @Produce json
// @Param id path string true "Position ID"
// @Success 200 {object} response.Message "Position removed successfully"
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/positions/{id} [delete]
// @Security BearerAuth
func (handler *Handler) RemovePosition(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".RemovePosition")
	defer scope.End()

	if err := handler.service.Remove(ctx, chi.URLParam(r, constant.RequestParamID)); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to remove position")

		response.WithError(w, err)

		return
	}

	response.WithMessage(w, http.StatusOK, "Position removed successfully")
}
