package performance

import (
	"net/http"

	"stagehand/infras/otel"
	"stagehand/internal/domains/performance/model"
	"stagehand/internal/domains/performance/model/dto"
	"stagehand/internal/domains/performance/service"
	"stagehand/shared"
	"stagehand/shared/constant"
	gDto "stagehand/shared/dto"
	"stagehand/shared/timezone"
	"stagehand/shared/validator"
	"stagehand/transport/http/response"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

const calendarFileName = "performance.ics"

type Handler struct {
	service service.Performance
	otel    otel.Otel
	conv    *timezone.Converter
}

func New(service service.Performance, otel otel.Otel, conv *timezone.Converter) Handler {
	return Handler{
		service: service,
		otel:    otel,
		conv:    conv,
	}
}

func (handler *Handler) Router(router chi.Router) {
	router.Route("/performances", func(routerGroup chi.Router) {
		routerGroup.Post("/", handler.CreatePerformance)
		routerGroup.Get("/", handler.GetPerformances)
		routerGroup.Get("/{id}", handler.GetPerformanceByID)
		routerGroup.Get("/{id}/schedule", handler.GetSchedule)
		routerGroup.Get("/{id}/calendar.ics", handler.GetCalendar)
		routerGroup.Patch("/{id}", handler.UpdatePerformance)
		routerGroup.Delete("/{id}", handler.DeletePerformance)
	})
}

// CreatePerformance handles the creation of a new performance.
// @Summary Create a new performance
// @Description starts_at is a wall-clock "YYYY-MM-DDTHH:MM" read in timezone (studio zone when omitted).
// @Tags Performance
// @Accept json
// @Produce json
// @Param request body dto.CreatePerformanceRequest true "Performance details"
// @Success 201 {object} response.Message "Performance created successfully"
// @Failure 400 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/performances [post]
// @Security BearerAuth
func (handler *Handler) CreatePerformance(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".CreatePerformance")
	defer scope.End()

	var req dto.CreatePerformanceRequest
	if err := validator.Validate(r.Body, &req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request")

		response.WithError(w, err)

		return
	}

	id, err := handler.service.Create(ctx, req)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to create performance")

		response.WithError(w, err)

		return
	}

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)
	scope.AddEvent("Performance " + id + " created successfully by user " + user)

	response.WithMessage(w, http.StatusCreated, "Performance created successfully")
}

// GetPerformances retrieves performances based on query parameters.
// @Summary Get all performances
// @Description from/to are studio-local days (YYYY-MM-DD) bounding starts_at, inclusive.
// @Tags Performance
// @Accept json
// @Produce json
// @Param pagination query gDto.QueryParams false "Pagination parameters"
// @Param title query string false "Filter by title"
// @Param from query string false "First studio-local day"
// @Param to query string false "Last studio-local day"
// @Param signup_open query boolean false "Filter by signup status"
// @Success 200 {object} dto.GetPerformancesResponse "List of performances"
// @Failure 400 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/performances [get]
func (handler *Handler) GetPerformances(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetPerformances")
	defer scope.End()

	queryParams := gDto.QueryParams{}
	queryParams.FromRequest(r, true)
	queryParams.RestrictSortBy(model.FieldStartsAt, model.FieldTitle, constant.FieldCreatedAt)
	queryParams.WithDefaultSort(model.FieldStartsAt, gDto.SortDirAsc)

	window := dto.DateWindow{
		From: r.URL.Query().Get("from"),
		To:   r.URL.Query().Get("to"),
	}

	if err := validator.ValidateStruct(&window); err != nil {
		scope.TraceError(err)
		response.WithError(w, err)

		return
	}

	filterGroup := gDto.FilterGroup{
		Operator: gDto.FilterGroupOperatorAnd,
		Filters:  window.Filters(handler.conv),
	}

	if title := r.URL.Query().Get(model.FieldTitle); title != "" {
		filterGroup.Filters = append(filterGroup.Filters, gDto.Filter{
			Field:    model.FieldTitle,
			Operator: gDto.FilterOperatorLike,
			Value:    title,
			Table:    model.TableName,
		})
	}

	if open := shared.ConvertStringToBool(r.URL.Query().Get(model.FieldSignupOpen)); open != nil {
		filterGroup.Filters = append(filterGroup.Filters, gDto.Filter{
			Field:    model.FieldSignupOpen,
			Operator: gDto.FilterOperatorEq,
			Value:    *open,
			Table:    model.TableName,
		})
	}

	performances, err := handler.service.GetAll(ctx, queryParams, filterGroup)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get performances")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, performances)
}

// GetPerformanceByID retrieves a performance by its ID.
// @Summary Get a performance by ID
// @Tags Performance
// @Produce json
// @Param id path string true "Performance ID"
// @Success 200 {object} dto.PerformanceResponse "Performance details"
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/performances/{id} [get]
func (handler *Handler) GetPerformanceByID(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetPerformanceByID")
	defer scope.End()

	id := chi.URLParam(r, constant.RequestParamID)

	performance, err := handler.service.Get(ctx, id)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get performance by ID")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, performance)
}

// GetSchedule returns the performance and its rehearsals grouped by studio-local day.
// @Summary Get a performance schedule
// @Tags Performance
// @Produce json
// @Param id path string true "Performance ID"
// @Success 200 {object} dto.ScheduleResponse "Schedule"
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/performances/{id}/schedule [get]
func (handler *Handler) GetSchedule(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetSchedule")
	defer scope.End()

	schedule, err := handler.service.Schedule(ctx, chi.URLParam(r, constant.RequestParamID))
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get performance schedule")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, schedule)
}

// GetCalendar exports the schedule as an iCalendar feed.
// @Summary Export a performance schedule as iCalendar
// @Tags Performance
// @Produce text/calendar
// @Param id path string true "Performance ID"
// @Success 200 {string} string "VCALENDAR body"
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/performances/{id}/calendar.ics [get]
func (handler *Handler) GetCalendar(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetCalendar")
	defer scope.End()

	body, err := handler.service.Calendar(ctx, chi.URLParam(r, constant.RequestParamID))
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to render performance calendar")

		response.WithError(w, err)

		return
	}

	response.WithFile(w, constant.ContentTypeCalendar, calendarFileName, []byte(body))
}

// UpdatePerformance updates an existing performance by its ID.
// @Summary Update a performance by ID
// @Description Changes to starts_at, timezone and call_time are refused within one hour of the start.
// @Tags Performance
// @Accept json
// @Produce json
// @Param id path string true "Performance ID"
// @Param request body dto.UpdatePerformanceRequest true "Fields to update"
// @Success 200 {object} response.Message "Performance updated successfully"
// @Failure 400 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 423 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/performances/{id} [patch]
// @Security BearerAuth
func (handler *Handler) UpdatePerformance(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".UpdatePerformance")
	defer scope.End()

	id := chi.URLParam(r, constant.RequestParamID)

	var req dto.UpdatePerformanceRequest
	if err := validator.Validate(r.Body, &req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request")

		response.WithError(w, err)

		return
	}

	if err := handler.service.Update(ctx, req, id); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to update performance")

		response.WithError(w, err)

		return
	}

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)
	scope.AddEvent("Performance updated successfully by user " + user)

	response.WithMessage(w, http.StatusOK, "Performance updated successfully")
}

// DeletePerformance deletes a performance by its ID.
// @Summary Delete a performance by ID
// @Tags Performance
// @Produce json
// @Param id path string true "Performance ID"
// @Success 200 {object} response.Message "Performance deleted successfully"
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/performances/{id} [delete]
// @Security BearerAuth
func (handler *Handler) DeletePerformance(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".DeletePerformance")
	defer scope.End()

	if err := handler.service.Delete(ctx, chi.URLParam(r, constant.RequestParamID)); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to delete performance")

		response.WithError(w, err)

		return
	}

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)
	scope.AddEvent("Performance deleted successfully by user " + user)

	response.WithMessage(w, http.StatusOK, "Performance deleted successfully")
}
