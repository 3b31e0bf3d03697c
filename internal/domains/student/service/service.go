package service

import (
	"context"
	"fmt"

	"stagehand/config"
	"stagehand/infras/otel"
	"stagehand/infras/s3"
	"stagehand/internal/domains/student/model"
	"stagehand/internal/domains/student/model/dto"
	"stagehand/internal/domains/student/repository"
	"stagehand/shared"
	"stagehand/shared/cache"
	"stagehand/shared/constant"
	gDto "stagehand/shared/dto"
	"stagehand/shared/failure"
	"stagehand/shared/timezone"

	"github.com/rs/zerolog/log"
)

const (
	cacheGetStudent    = "student:get"
	cacheGetAllStudent = "student:gets"
	cacheCountStudent  = "student:count"
	cachePositions     = "position:"
)

type Student interface {
	Create(ctx context.Context, req dto.CreateStudentRequest) (string, error)
	GetAll(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (dto.GetStudentsResponse, error)
	Count(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (int, error)
	Get(ctx context.Context, id string) (dto.StudentResponse, error)
	Update(ctx context.Context, req dto.UpdateStudentRequest, id string) error
	UploadPhoto(ctx context.Context, req dto.UploadPhotoRequest, id string) (string, error)
	RemovePhoto(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
}

type serviceImpl struct {
	repo  repository.Student
	cfg   *config.Config
	cache cache.RedisCache
	otel  otel.Otel
	s3    s3.S3
	conv  *timezone.Converter
}

func New(repo repository.Student, cfg *config.Config, cache cache.RedisCache, otel otel.Otel, s3 s3.S3, conv *timezone.Converter) Student {
	return &serviceImpl{
		repo:  repo,
		cfg:   cfg,
		cache: cache,
		otel:  otel,
		s3:    s3,
		conv:  conv,
	}
}

func (s *serviceImpl) Create(ctx context.Context, req dto.CreateStudentRequest) (id string, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Create")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)
	student := req.ToModel(user, s.conv.Now())

	if err = s.repo.Insert(ctx, student); err != nil {
		log.Error().Err(err).Msg("failed to create student")

		return "", fmt.Errorf("failed to create student: %w", err)
	}

	go s.invalidateLists(context.WithoutCancel(ctx))

	return student.ID, nil
}

func (s *serviceImpl) GetAll(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (res dto.GetStudentsResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".GetAll")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	cacheKey := shared.BuildCacheKeyWithQuery(cacheGetAllStudent, req, filter)

	err = s.cache.Get(ctx, cacheKey, &res)
	if err == nil {
		log.Info().Str("cacheKey", cacheKey).Msg("cache hit for students")

		return res, nil
	}

	total, err := s.Count(ctx, req, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to count students")

		return res, fmt.Errorf("failed to count students: %w", err)
	}

	models, err := s.repo.GetAll(ctx, req, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to get students")

		return res, fmt.Errorf("failed to get students: %w", err)
	}

	res.FromModels(models, total, req.Limit)

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save students to cache")
		}
	}()

	return res, nil
}

func (s *serviceImpl) Count(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (res int, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Count")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	cacheKey := shared.BuildCacheKeyWithQuery(cacheCountStudent, req, filter)

	err = s.cache.Get(ctx, cacheKey, &res)
	if err == nil {
		return res, nil
	}

	res, err = s.repo.Count(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to count students")

		return res, fmt.Errorf("failed to count students: %w", err)
	}

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save student count to cache")
		}
	}()

	return res, nil
}

func (s *serviceImpl) Get(ctx context.Context, id string) (res dto.StudentResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Get")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	cacheKey := shared.BuildCacheKey(cacheGetStudent, id)

	err = s.cache.Get(ctx, cacheKey, &res)
	if err == nil {
		return res, nil
	}

	student, err := s.find(ctx, id)
	if err != nil {
		return res, err
	}

	res.FromModel(student)

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save student to cache")
		}
	}()

	return res, nil
}

func (s *serviceImpl) Update(ctx context.Context, req dto.UpdateStudentRequest, id string) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Update")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	if req.IsEmpty() {
		return failure.BadRequestFromString("update request cannot be empty") // nolint:wrapcheck
	}

	if _, err = s.find(ctx, id); err != nil {
		return err
	}

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)

	if err = s.repo.Update(ctx, shared.TransformFields(req, user, s.conv.Now()), shared.FilterByID(id, model.FieldID, model.TableName)); err != nil {
		log.Error().Err(err).Msg("failed to update student")

		return fmt.Errorf("failed to update student: %w", err)
	}

	go func() {
		c := context.WithoutCancel(ctx)

		s.invalidate(c, id)
		shared.InvalidateCaches(c, s.cache, cachePositions)
	}()

	return nil
}

// UploadPhoto stores the new photo, points the student at it and then drops the old object.
func (s *serviceImpl) UploadPhoto(ctx context.Context, req dto.UploadPhotoRequest, id string) (url string, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".UploadPhoto")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	current, err := s.find(ctx, id)
	if err != nil {
		return "", err
	}

	bucketName := s.cfg.External.S3.BucketName
	fileName := shared.ObjectFileName(req.Photo.Filename)

	url, err = s.s3.UploadFile(ctx, bucketName, model.EntityName, req.PhotoFile, req.Photo, fileName)
	if err != nil {
		log.Error().Err(err).Msg("failed to upload student photo")

		return "", fmt.Errorf("failed to upload photo: %w", err)
	}

	if err = s.setPhoto(ctx, id, url); err != nil {
		if delErr := s.s3.DeleteFile(ctx, bucketName, model.EntityName, fileName); delErr != nil {
			log.Error().Err(delErr).Msg("failed to clean up uploaded photo")
		}

		return "", err
	}

	s.deleteObject(ctx, current.PhotoURL)

	return url, nil
}

func (s *serviceImpl) RemovePhoto(ctx context.Context, id string) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".RemovePhoto")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	current, err := s.find(ctx, id)
	if err != nil {
		return err
	}

	if current.PhotoURL == constant.Empty {
		return nil
	}

	if err = s.setPhoto(ctx, id, constant.Empty); err != nil {
		return err
	}

	s.deleteObject(ctx, current.PhotoURL)

	return nil
}

func (s *serviceImpl) Delete(ctx context.Context, id string) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Delete")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	current, err := s.find(ctx, id)
	if err != nil {
		return err
	}

	if err = s.repo.Delete(ctx, shared.FilterByID(id, model.FieldID, model.TableName)); err != nil {
		log.Error().Err(err).Msg("failed to delete student")

		return fmt.Errorf("failed to delete student: %w", err)
	}

	s.deleteObject(ctx, current.PhotoURL)

	go func() {
		c := context.WithoutCancel(ctx)

		s.invalidate(c, id)
		shared.InvalidateCaches(c, s.cache, cachePositions)
	}()

	return nil
}

func (s *serviceImpl) setPhoto(ctx context.Context, id, url string) error {
	user, _ := ctx.Value(constant.ContextKeyUserID).(string)

	fields := map[string]any{
		model.FieldPhotoURL:      url,
		constant.FieldModifiedAt: s.conv.Now(),
		constant.FieldModifiedBy: user,
	}

	if err := s.repo.Update(ctx, fields, shared.FilterByID(id, model.FieldID, model.TableName)); err != nil {
		log.Error().Err(err).Msg("failed to update student photo")

		return fmt.Errorf("failed to update student photo: %w", err)
	}

	go s.invalidate(context.WithoutCancel(ctx), id)

	return nil
}

// deleteObject removes a stored photo. Failures only leave an orphaned object behind.
func (s *serviceImpl) deleteObject(ctx context.Context, url string) {
	if url == constant.Empty {
		return
	}

	bucketName := s.cfg.External.S3.BucketName

	objectName := s.s3.GetObjectNameFromURL(bucketName, url)
	if objectName == constant.Empty {
		return
	}

	if err := s.s3.DeleteFile(ctx, bucketName, constant.Empty, objectName); err != nil {
		log.Warn().Err(err).Str("object", objectName).Msg("failed to delete student photo")
	}
}

func (s *serviceImpl) find(ctx context.Context, id string) (model.Student, error) {
	student, err := s.repo.Get(ctx, shared.FilterByID(id, model.FieldID, model.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to get student")

		return student, fmt.Errorf("failed to get student: %w", err)
	}

	if student.ID == constant.Empty {
		return student, failure.NotFound("student not found") // nolint:wrapcheck
	}

	return student, nil
}

func (s *serviceImpl) invalidate(ctx context.Context, id string) {
	if err := s.cache.Delete(ctx, shared.BuildCacheKey(cacheGetStudent, id)); err != nil {
		log.Error().Err(err).Msg("failed to delete student from cache")
	}

	s.invalidateLists(ctx)
}

func (s *serviceImpl) invalidateLists(ctx context.Context) {
	shared.InvalidateCaches(ctx, s.cache, cacheGetAllStudent)
	shared.InvalidateCaches(ctx, s.cache, cacheCountStudent)
}
