package rehearsal

import (
	"net/http"

	"stagehand/infras/otel"
	"stagehand/internal/domains/rehearsal/model"
	"stagehand/internal/domains/rehearsal/model/dto"
	"stagehand/internal/domains/rehearsal/service"
	"stagehand/shared/constant"
	gDto "stagehand/shared/dto"
	"stagehand/shared/validator"
	"stagehand/transport/http/response"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

type Handler struct {
	service service.Rehearsal
	otel    otel.Otel
}

func New(service service.Rehearsal, otel otel.Otel) Handler {
	return Handler{
		service: service,
		otel:    otel,
	}
}

func (handler *Handler) Router(router chi.Router) {
	router.Route("/rehearsals", func(routerGroup chi.Router) {
		routerGroup.Post("/", handler.CreateRehearsal)
		routerGroup.Get("/", handler.GetRehearsals)
		routerGroup.Post("/series", handler.CreateSeries)
		routerGroup.Delete("/series/{id}", handler.DeleteSeries)
		routerGroup.Get("/{id}", handler.GetRehearsalByID)
		routerGroup.Patch("/{id}", handler.UpdateRehearsal)
		routerGroup.Delete("/{id}", handler.DeleteRehearsal)
	})
}

// CreateRehearsal handles the creation of a single rehearsal.
// @Summary Create a rehearsal
// @Description date is a studio-local day; start_time and end_time are "HH:MM" clocks.
// @Tags Rehearsal
// @Accept json
// @Produce json
// @Param request body dto.CreateRehearsalRequest true "Rehearsal details"
// @Success 201 {object} response.Message "Rehearsal created successfully"
// @Failure 400 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/rehearsals [post]
// @Security BearerAuth
func (handler *Handler) CreateRehearsal(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".CreateRehearsal")
	defer scope.End()

	var req dto.CreateRehearsalRequest
	if err := validator.Validate(r.Body, &req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request")

		response.WithError(w, err)

		return
	}

	if _, err := handler.service.Create(ctx, req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to create rehearsal")

		response.WithError(w, err)

		return
	}

	response.WithMessage(w, http.StatusCreated, "Rehearsal created successfully")
}

// CreateSeries expands a recurrence rule into rehearsals.
// @Summary Create a recurring rehearsal series
// @Description rrule is an RFC 5545 rule such as FREQ=WEEKLY;BYDAY=TU,TH;COUNT=8, expanded from start_date in the studio zone. At most 200 rehearsals are created.
// @Tags Rehearsal
// @Accept json
// @Produce json
// @Param request body dto.CreateSeriesRequest true "Series details"
// @Success 201 {object} dto.CreateSeriesResponse "Series created"
// @Failure 400 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/rehearsals/series [post]
// @Security BearerAuth
func (handler *Handler) CreateSeries(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".CreateSeries")
	defer scope.End()

	var req dto.CreateSeriesRequest
	if err := validator.Validate(r.Body, &req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request")

		response.WithError(w, err)

		return
	}

	res, err := handler.service.CreateSeries(ctx, req)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to create rehearsal series")

		response.WithError(w, err)

		return
	}

	scope.AddEvent("Rehearsal series " + res.SeriesID + " created")

	response.WithJSON(w, http.StatusCreated, res)
}

// GetRehearsals lists rehearsals.
// @Summary Get all rehearsals
// @Tags Rehearsal
// @Produce json
// @Param pagination query gDto.QueryParams false "Pagination parameters"
// @Param performance_id query string false "Filter by performance"
// @Param series_id query string false "Filter by series"
// @Param from query string false "First studio-local day"
// @Param to query string false "Last studio-local day"
// @Success 200 {object} dto.GetRehearsalsResponse "List of rehearsals"
// @Failure 400 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/rehearsals [get]
func (handler *Handler) GetRehearsals(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetRehearsals")
	defer scope.End()

	queryParams := gDto.QueryParams{}
	queryParams.FromRequest(r, true)
	queryParams.RestrictSortBy(model.FieldRehearsalDate, model.FieldStartTime, model.FieldLocation, constant.FieldCreatedAt)
	queryParams.WithDefaultSort(model.FieldRehearsalDate, gDto.SortDirAsc)

	query := r.URL.Query()

	filterGroup := gDto.FilterGroup{
		Operator: gDto.FilterGroupOperatorAnd,
		Filters:  []any{},
	}

	for _, field := range []string{model.FieldPerformanceID, model.FieldSeriesID} {
		if value := query.Get(field); value != "" {
			filterGroup.Filters = append(filterGroup.Filters, gDto.Filter{
				Field:    field,
				Operator: gDto.FilterOperatorEq,
				Value:    value,
				Table:    model.TableName,
			})
		}
	}

	bounds := []struct {
		param    string
		argName  string
		operator string
	}{
		{param: "from", argName: "date_from", operator: gDto.FilterOperatorGreaterEq},
		{param: "to", argName: "date_to", operator: gDto.FilterOperatorLessEq},
	}

	for _, bound := range bounds {
		value := query.Get(bound.param)
		if value == "" {
			continue
		}

		date, err := model.DateFromKey(value)
		if err != nil {
			response.WithError(w, validator.ValidateVar(value, "datekey"))

			return
		}

		filterGroup.Filters = append(filterGroup.Filters, gDto.Filter{
			ArgName:  bound.argName,
			Field:    model.FieldRehearsalDate,
			Operator: bound.operator,
			Value:    date,
			Table:    model.TableName,
		})
	}

	rehearsals, err := handler.service.GetAll(ctx, queryParams, filterGroup)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get rehearsals")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, rehearsals)
}

// GetRehearsalByID retrieves a rehearsal by its ID.
// @Summary Get a rehearsal by ID
// @Tags Rehearsal
// @Produce json
// @Param id path string true "Rehearsal ID"
// @Success 200 {object} dto.RehearsalResponse "Rehearsal details"
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/rehearsals/{id} [get]
func (handler *Handler) GetRehearsalByID(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetRehearsalByID")
	defer scope.End()

	rehearsal, err := handler.service.Get(ctx, chi.URLParam(r, constant.RequestParamID))
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get rehearsal by ID")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, rehearsal)
}

// UpdateRehearsal updates a rehearsal.
// @Summary Update a rehearsal by ID
// @Tags Rehearsal
// @Accept json
// @Produce json
// @Param id path string true "Rehearsal ID"
// @Param request body dto.UpdateRehearsalRequest true "Fields to update"
// @Success 200 {object} response.Message "Rehearsal updated successfully"
// @Failure 400 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 423 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/rehearsals/{id} [patch]
// @Security BearerAuth
func (handler *Handler) UpdateRehearsal(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".UpdateRehearsal")
	defer scope.End()

	var req dto.UpdateRehearsalRequest
	if err := validator.Validate(r.Body, &req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request")

		response.WithError(w, err)

		return
	}

	if err := handler.service.Update(ctx, req, chi.URLParam(r, constant.RequestParamID)); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to update rehearsal")

		response.WithError(w, err)

		return
	}

	response.WithMessage(w, http.StatusOK, "Rehearsal updated successfully")
}

// DeleteRehearsal deletes a single rehearsal.
// @Summary Delete a rehearsal by ID
// @Tags Rehearsal
// @Produce json
// @Param id path string true "Rehearsal ID"
// @Success 200 {object} response.Message "Rehearsal deleted successfully"
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/rehearsals/{id} [delete]
// @Security BearerAuth
func (handler *Handler) DeleteRehearsal(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".DeleteRehearsal")
	defer scope.End()

	if err := handler.service.Delete(ctx, chi.URLParam(r, constant.RequestParamID)); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to delete rehearsal")

		response.WithError(w, err)

		return
	}

	response.WithMessage(w, http.StatusOK, "Rehearsal deleted successfully")
}

// DeleteSeries deletes every rehearsal of a series.
// @Summary Delete a rehearsal series
// @Tags Rehearsal
// @Produce json
// @Param id path string true "Series ID"
// @Success 200 {object} response.Message "Rehearsal series deleted successfully"
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/rehearsals/series/{id} [delete]
// @Security BearerAuth
func (handler *Handler) DeleteSeries(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".DeleteSeries")
	defer scope.End()

	if err := handler.service.DeleteSeries(ctx, chi.URLParam(r, constant.RequestParamID)); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to delete rehearsal series")

		response.WithError(w, err)

		return
	}

	response.WithMessage(w, http.StatusOK, "Rehearsal series deleted successfully")
}
