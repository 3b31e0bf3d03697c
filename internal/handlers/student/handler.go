package student

import (
	"net/http"

	"stagehand/infras/otel"
	"stagehand/internal/domains/student/model"
	"stagehand/internal/domains/student/model/dto"
	"stagehand/internal/domains/student/service"
	"stagehand/shared"
	"stagehand/shared/constant"
	gDto "stagehand/shared/dto"
	"stagehand/shared/validator"
	"stagehand/transport/http/response"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

const (
	formFieldPhoto = "photo"
	queryParamName = "q"
)

type Handler struct {
	service service.Student
	otel    otel.Otel
}

func New(service service.Student, otel otel.Otel) Handler {
	return Handler{
		service: service,
		otel:    otel,
	}
}

func (handler *Handler) Router(router chi.Router) {
	router.Route("/students", func(routerGroup chi.Router) {
		routerGroup.Post("/", handler.CreateStudent)
		routerGroup.Get("/", handler.GetStudents)
		routerGroup.Get("/{id}", handler.GetStudentByID)
		routerGroup.Patch("/{id}", handler.UpdateStudent)
		routerGroup.Delete("/{id}", handler.DeleteStudent)
		routerGroup.Put("/{id}/photo", handler.UploadPhoto)
		routerGroup.Delete("/{id}/photo", handler.RemovePhoto)
	})
}

// CreateStudent adds a student to the roster.
// @Summary Create a student
// @Tags Student
// @Accept json
// @Produce json
// @Param request body dto.CreateStudentRequest true "Student details"
// @Success 201 {object} response.Message "Student created successfully"
// @Failure 400 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/students [post]
// @Security BearerAuth
func (handler *Handler) CreateStudent(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".CreateStudent")
	defer scope.End()

	var req dto.CreateStudentRequest
	if err := validator.Validate(r.Body, &req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request")

		response.WithError(w, err)

		return
	}

	if _, err := handler.service.Create(ctx, req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to create student")

		response.WithError(w, err)

		return
	}

	response.WithMessage(w, http.StatusCreated, "Student created successfully")
}

// GetStudents lists the roster.
// @Summary Get all students
// @Tags Student
// @Produce json
// @Param pagination query gDto.QueryParams false "Pagination parameters"
// @Param q query string false "Search first or last name"
// @Param grade query integer false "Filter by grade"
// @Param active query boolean false "Filter by active status"
// @Success 200 {object} dto.GetStudentsResponse "List of students"
// @Failure 500 {object} response.Error
// @Router /v1/students [get]
func (handler *Handler) GetStudents(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetStudents")
	defer scope.End()

	queryParams := gDto.QueryParams{}
	queryParams.FromRequest(r, true)
	queryParams.RestrictSortBy(model.FieldLastName, model.FieldFirstName, model.FieldGrade, constant.FieldCreatedAt)
	queryParams.WithDefaultSort(model.FieldLastName, gDto.SortDirAsc)

	query := r.URL.Query()

	filterGroup := gDto.FilterGroup{
		Operator: gDto.FilterGroupOperatorAnd,
		Filters:  []any{},
	}

	if q := query.Get(queryParamName); q != "" {
		filterGroup.Filters = append(filterGroup.Filters, dto.NameSearch(q))
	}

	if grade := query.Get(model.FieldGrade); grade != "" {
		if value, err := shared.ConvertStringToInt(grade); err == nil {
			filterGroup.Filters = append(filterGroup.Filters, gDto.Filter{
				Field:    model.FieldGrade,
				Operator: gDto.FilterOperatorEq,
				Value:    value,
				Table:    model.TableName,
			})
		}
	}

	if active := shared.ConvertStringToBool(query.Get(model.FieldActive)); active != nil {
		filterGroup.Filters = append(filterGroup.Filters, gDto.Filter{
			Field:    model.FieldActive,
			Operator: gDto.FilterOperatorEq,
			Value:    *active,
			Table:    model.TableName,
		})
	}

	students, err := handler.service.GetAll(ctx, queryParams, filterGroup)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get students")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, students)
}

// GetStudentByID retrieves a student by ID.
// @Summary Get a student by ID
// @Tags Student
// @Produce json
// @Param id path string true "Student ID"
// @Success 200 {object} dto.StudentResponse "Student details"
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/students/{id} [get]
func (handler *Handler) GetStudentByID(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetStudentByID")
	defer scope.End()

	student, err := handler.service.Get(ctx, chi.URLParam(r, constant.RequestParamID))
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get student by ID")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, student)
}

// UpdateStudent updates a student.
// @Summary Update a student by ID
// @Tags Student
// @Accept json
// @Produce json
// @Param id path string true "Student ID"
// @Param request body dto.UpdateStudentRequest true "Fields to update"
// @Success 200 {object} response.Message "Student updated successfully"
// @Failure 400 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/students/{id} [patch]
// @Security BearerAuth
func (handler *Handler) UpdateStudent(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".UpdateStudent")
	defer scope.End()

	var req dto.UpdateStudentRequest
	if err := validator.Validate(r.Body, &req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request")

		response.WithError(w, err)

		return
	}

	if err := handler.service.Update(ctx, req, chi.URLParam(r, constant.RequestParamID)); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to update student")

		response.WithError(w, err)

		return
	}

	response.WithMessage(w, http.StatusOK, "Student updated successfully")
}

// UploadPhoto replaces a student's photo.
// @Summary Upload a student photo
// @Tags Student
// @Accept multipart/form-data
// @Produce json
// @Param id path string true "Student ID"
// @Param photo formData file true "PNG or JPEG up to 2 MB"
// @Success 200 {object} dto.PhotoResponse "Stored photo"
// @Failure 400 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/students/{id}/photo [put]
// @Security BearerAuth
func (handler *Handler) UploadPhoto(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".UploadPhoto")
	defer scope.End()

	if err := r.ParseMultipartForm(constant.RequestMaxMemory); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to parse multipart form")
		response.WithError(w, err)

		return
	}

	var req dto.UploadPhotoRequest

	file, fileHeader, err := r.FormFile(formFieldPhoto)
	if err == nil {
		req.Photo = fileHeader
		req.PhotoFile = file

		defer file.Close()
	}

	if err := validator.ValidateStruct(&req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request")

		response.WithError(w, err)

		return
	}

	url, err := handler.service.UploadPhoto(ctx, req, chi.URLParam(r, constant.RequestParamID))
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to upload student photo")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, dto.PhotoResponse{PhotoURL: url})
}

// RemovePhoto clears a student's photo.
// @Summary Remove a student photo
// @Tags Student
// @Produce json
// @Param id path string true "Student ID"
// @Success 200 {object} response.Message "Photo removed successfully"
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/students/{id}/photo [delete]
// @Security BearerAuth
func (handler *Handler) RemovePhoto(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".RemovePhoto")
	defer scope.End()

	if err := handler.service.RemovePhoto(ctx, chi.URLParam(r, constant.RequestParamID)); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to remove student photo")

		response.WithError(w, err)

		return
	}

	response.WithMessage(w, http.StatusOK, "Photo removed successfully")
}

// DeleteStudent removes a student with their positions and signups.
// @Summary Delete a student by ID
// @Tags Student
// @Produce json
// @Param id path string true "Student ID"
// @Success 200 {object} response.Message "Student deleted successfully"
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/students/{id} [delete]
// @Security BearerAuth
func (handler *Handler) DeleteStudent(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".DeleteStudent")
	defer scope.End()

	if err := handler.service.Delete(ctx, chi.URLParam(r, constant.RequestParamID)); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to delete student")

		response.WithError(w, err)

		return
	}

	response.WithMessage(w, http.StatusOK, "Student deleted successfully")
}
