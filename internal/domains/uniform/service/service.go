package service

import (
	"context"
	"fmt"

	"stagehand/config"
	"stagehand/infras/otel"
	"stagehand/infras/s3"
	studentModel "stagehand/internal/domains/student/model"
	studentRepo "stagehand/internal/domains/student/repository"
	"stagehand/internal/domains/uniform/model"
	"stagehand/internal/domains/uniform/model/dto"
	"stagehand/internal/domains/uniform/repository"
	"stagehand/shared"
	"stagehand/shared/cache"
	"stagehand/shared/constant"
	gDto "stagehand/shared/dto"
	"stagehand/shared/failure"
	"stagehand/shared/timezone"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"
)

const (
	cacheGetUniform    = "uniform:get"
	cacheGetAllUniform = "uniform:gets"
	cacheCountUniform  = "uniform:count"
)

type Uniform interface {
	Create(ctx context.Context, req dto.CreateUniformRequest) (string, error)
	GetAll(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (dto.GetUniformsResponse, error)
	Count(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (int, error)
	Get(ctx context.Context, id string) (dto.UniformResponse, error)
	Update(ctx context.Context, req dto.UpdateUniformRequest, id string) error
	Delete(ctx context.Context, id string) error
	Checkout(ctx context.Context, req dto.CheckoutRequest, id string) (string, error)
	Return(ctx context.Context, assignmentID string) error
	GetAssignments(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (dto.GetAssignmentsResponse, error)
}

type serviceImpl struct {
	repo           repository.Uniform
	assignmentRepo repository.Assignment
	studentRepo    studentRepo.Student
	cfg            *config.Config
	cache          cache.RedisCache
	otel           otel.Otel
	s3             s3.S3
	conv           *timezone.Converter
}

func New(
	repo repository.Uniform,
	assignmentRepo repository.Assignment,
	studentRepo studentRepo.Student,
	cfg *config.Config,
	cache cache.RedisCache,
	otel otel.Otel,
	s3 s3.S3,
	conv *timezone.Converter,
) Uniform {
	return &serviceImpl{
		repo:           repo,
		assignmentRepo: assignmentRepo,
		studentRepo:    studentRepo,
		cfg:            cfg,
		cache:          cache,
		otel:           otel,
		s3:             s3,
		conv:           conv,
	}
}

func (s *serviceImpl) Create(ctx context.Context, req dto.CreateUniformRequest) (id string, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Create")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)
	bucketName := s.cfg.External.S3.BucketName

	imageURL := constant.Empty
	uploadedObjectName := constant.Empty

	if req.Image != nil {
		uploadedObjectName = shared.ObjectFileName(req.Image.Filename)

		imageURL, err = s.s3.UploadFile(ctx, bucketName, model.EntityName, req.ImageFile, req.Image, uploadedObjectName)
		if err != nil {
			log.Error().Err(err).Msg("failed to upload image to S3")

			return "", fmt.Errorf("failed to upload image: %w", err)
		}
	}

	uniform := req.ToModel(user, imageURL, s.conv.Now())

	if err = s.repo.Insert(ctx, uniform); err != nil {
		log.Error().Err(err).Msg("failed to create uniform")

		if uploadedObjectName != constant.Empty {
			if delErr := s.s3.DeleteFile(ctx, bucketName, model.EntityName, uploadedObjectName); delErr != nil {
				log.Error().Err(delErr).Msg("failed to clean up uploaded image")
			}
		}

		return "", fmt.Errorf("failed to create uniform: %w", err)
	}

	go s.invalidateLists(context.WithoutCancel(ctx))

	return uniform.ID, nil
}

func (s *serviceImpl) GetAll(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (res dto.GetUniformsResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".GetAll")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	cacheKey := shared.BuildCacheKeyWithQuery(cacheGetAllUniform, req, filter)

	err = s.cache.Get(ctx, cacheKey, &res)
	if err == nil {
		log.Info().Str("cacheKey", cacheKey).Msg("cache hit for uniforms")

		return res, nil
	}

	total, err := s.Count(ctx, req, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to count uniforms")

		return res, fmt.Errorf("failed to count uniforms: %w", err)
	}

	models, err := s.repo.GetAll(ctx, req, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to get uniforms")

		return res, fmt.Errorf("failed to get uniforms: %w", err)
	}

	res.FromModels(models, total, req.Limit)

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save uniforms to cache")
		}
	}()

	return res, nil
}

func (s *serviceImpl) Count(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (res int, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Count")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	cacheKey := shared.BuildCacheKeyWithQuery(cacheCountUniform, req, filter)

	err = s.cache.Get(ctx, cacheKey, &res)
	if err == nil {
		return res, nil
	}

	res, err = s.repo.Count(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to count uniforms")

		return res, fmt.Errorf("failed to count uniforms: %w", err)
	}

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save uniform count to cache")
		}
	}()

	return res, nil
}

func (s *serviceImpl) Get(ctx context.Context, id string) (res dto.UniformResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Get")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	cacheKey := shared.BuildCacheKey(cacheGetUniform, id)

	err = s.cache.Get(ctx, cacheKey, &res)
	if err == nil {
		return res, nil
	}

	uniform, err := s.find(ctx, id)
	if err != nil {
		return res, err
	}

	res.FromModel(uniform)

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save uniform to cache")
		}
	}()

	return res, nil
}

// Update edits a uniform. A new quantity_total shifts quantity_available by the same amount and
// is refused when more units are checked out than the new total.
func (s *serviceImpl) Update(ctx context.Context, req dto.UpdateUniformRequest, id string) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Update")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	if req.IsEmpty() {
		return failure.BadRequestFromString("update request cannot be empty") // nolint:wrapcheck
	}

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)
	bucketName := s.cfg.External.S3.BucketName
	filter := shared.FilterByID(id, model.FieldID, model.TableName)

	imageURL := constant.Empty
	uploadedObjectName := constant.Empty

	if req.Image != nil {
		uploadedObjectName = shared.ObjectFileName(req.Image.Filename)

		imageURL, err = s.s3.UploadFile(ctx, bucketName, model.EntityName, req.ImageFile, req.Image, uploadedObjectName)
		if err != nil {
			log.Error().Err(err).Msg("failed to upload image to S3")

			return fmt.Errorf("failed to upload image: %w", err)
		}
	}

	var previousImage string

	err = s.repo.WithTx(ctx, func(tx *sqlx.Tx) error {
		current, err := s.repo.GetForUpdateTx(ctx, tx, filter)
		if err != nil {
			return fmt.Errorf("failed to lock uniform: %w", err)
		}

		if current.ID == constant.Empty {
			return failure.NotFound("uniform not found") // nolint:wrapcheck
		}

		fields := shared.TransformFields(req, user, s.conv.Now())

		if req.QuantityTotal != nil {
			available := current.QuantityAvailable + *req.QuantityTotal - current.QuantityTotal
			if available < 0 {
				return failure.Conflict(fmt.Sprintf("%d units are checked out; total cannot drop to %d", current.CheckedOut(), *req.QuantityTotal)) // nolint:wrapcheck
			}

			fields[model.FieldQuantityTotal] = *req.QuantityTotal
			fields[model.FieldQuantityAvailable] = available
		}

		if imageURL != constant.Empty {
			fields[model.FieldImageURL] = imageURL
			previousImage = current.ImageURL
		}

		return s.repo.UpdateTx(ctx, tx, fields, filter) // nolint:wrapcheck
	})
	if err != nil {
		log.Error().Err(err).Msg("failed to update uniform")

		if uploadedObjectName != constant.Empty {
			if delErr := s.s3.DeleteFile(ctx, bucketName, model.EntityName, uploadedObjectName); delErr != nil {
				log.Error().Err(delErr).Msg("failed to clean up uploaded image")
			}
		}

		return err
	}

	s.deleteObject(ctx, previousImage)

	go s.invalidate(context.WithoutCancel(ctx), id)

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

	if current.CheckedOut() > 0 {
		return failure.Conflict(fmt.Sprintf("%d units are still checked out", current.CheckedOut())) // nolint:wrapcheck
	}

	if err = s.repo.Delete(ctx, shared.FilterByID(id, model.FieldID, model.TableName)); err != nil {
		log.Error().Err(err).Msg("failed to delete uniform")

		return fmt.Errorf("failed to delete uniform: %w", err)
	}

	s.deleteObject(ctx, current.ImageURL)

	go s.invalidate(context.WithoutCancel(ctx), id)

	return nil
}

// Checkout hands units to a student. The uniform row stays locked while stock is checked and moved.
func (s *serviceImpl) Checkout(ctx context.Context, req dto.CheckoutRequest, id string) (assignmentID string, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Checkout")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	exist, err := s.studentRepo.Exist(ctx, shared.FilterByID(req.StudentID, studentModel.FieldID, studentModel.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to check student")

		return "", fmt.Errorf("failed to check student: %w", err)
	}

	if !exist {
		return "", failure.NotFound("student not found") // nolint:wrapcheck
	}

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)
	now := s.conv.Now()
	assignment := req.ToModel(user, id, now)
	filter := shared.FilterByID(id, model.FieldID, model.TableName)

	err = s.repo.WithTx(ctx, func(tx *sqlx.Tx) error {
		uniform, err := s.repo.GetForUpdateTx(ctx, tx, filter)
		if err != nil {
			return fmt.Errorf("failed to lock uniform: %w", err)
		}

		if uniform.ID == constant.Empty {
			return failure.NotFound("uniform not found") // nolint:wrapcheck
		}

		if uniform.QuantityAvailable < assignment.Quantity {
			return failure.Conflict(fmt.Sprintf("only %d of %s available", uniform.QuantityAvailable, uniform.Name)) // nolint:wrapcheck
		}

		if err := s.assignmentRepo.InsertTx(ctx, tx, assignment); err != nil {
			return fmt.Errorf("failed to record checkout: %w", err)
		}

		return s.repo.UpdateTx(ctx, tx, map[string]any{ // nolint:wrapcheck
			model.FieldQuantityAvailable: uniform.QuantityAvailable - assignment.Quantity,
			constant.FieldModifiedAt:     now,
			constant.FieldModifiedBy:     user,
		}, filter)
	})
	if err != nil {
		log.Error().Err(err).Msg("failed to check out uniform")

		return "", err
	}

	go s.invalidate(context.WithoutCancel(ctx), id)

	return assignment.ID, nil
}

// Return closes an open assignment and puts its units back on the shelf.
func (s *serviceImpl) Return(ctx context.Context, assignmentID string) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Return")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)
	now := s.conv.Now()

	var uniformID string

	err = s.repo.WithTx(ctx, func(tx *sqlx.Tx) error {
		assignmentFilter := shared.FilterByID(assignmentID, model.FieldID, model.AssignmentTableName)

		assignment, err := s.assignmentRepo.GetForUpdateTx(ctx, tx, assignmentFilter)
		if err != nil {
			return fmt.Errorf("failed to lock assignment: %w", err)
		}

		if assignment.ID == constant.Empty {
			return failure.NotFound("assignment not found") // nolint:wrapcheck
		}

		if assignment.Returned() {
			return failure.Conflict("assignment already returned") // nolint:wrapcheck
		}

		uniformID = assignment.UniformID
		uniformFilter := shared.FilterByID(uniformID, model.FieldID, model.TableName)

		uniform, err := s.repo.GetForUpdateTx(ctx, tx, uniformFilter)
		if err != nil {
			return fmt.Errorf("failed to lock uniform: %w", err)
		}

		if err := s.assignmentRepo.UpdateTx(ctx, tx, map[string]any{
			model.FieldAssignmentReturnedAt: now,
			constant.FieldModifiedAt:        now,
			constant.FieldModifiedBy:        user,
		}, assignmentFilter); err != nil {
			return fmt.Errorf("failed to close assignment: %w", err)
		}

		return s.repo.UpdateTx(ctx, tx, map[string]any{ // nolint:wrapcheck
			model.FieldQuantityAvailable: min(uniform.QuantityTotal, uniform.QuantityAvailable+assignment.Quantity),
			constant.FieldModifiedAt:     now,
			constant.FieldModifiedBy:     user,
		}, uniformFilter)
	})
	if err != nil {
		log.Error().Err(err).Msg("failed to return uniform")

		return err
	}

	go s.invalidate(context.WithoutCancel(ctx), uniformID)

	return nil
}

func (s *serviceImpl) GetAssignments(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (res dto.GetAssignmentsResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".GetAssignments")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	total, err := s.assignmentRepo.Count(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to count uniform assignments")

		return res, fmt.Errorf("failed to count uniform assignments: %w", err)
	}

	models, err := s.assignmentRepo.GetAll(ctx, req, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to get uniform assignments")

		return res, fmt.Errorf("failed to get uniform assignments: %w", err)
	}

	res.FromModels(models, total, req.Limit, s.conv)

	return res, nil
}

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
		log.Warn().Err(err).Str("object", objectName).Msg("failed to delete uniform image")
	}
}

func (s *serviceImpl) find(ctx context.Context, id string) (model.Uniform, error) {
	uniform, err := s.repo.Get(ctx, shared.FilterByID(id, model.FieldID, model.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to get uniform")

		return uniform, fmt.Errorf("failed to get uniform: %w", err)
	}

	if uniform.ID == constant.Empty {
		return uniform, failure.NotFound("uniform not found") // nolint:wrapcheck
	}

	return uniform, nil
}

func (s *serviceImpl) invalidate(ctx context.Context, id string) {
	if err := s.cache.Delete(ctx, shared.BuildCacheKey(cacheGetUniform, id)); err != nil {
		log.Error().Err(err).Msg("failed to delete uniform from cache")
	}

	s.invalidateLists(ctx)
}

func (s *serviceImpl) invalidateLists(ctx context.Context) {
	shared.InvalidateCaches(ctx, s.cache, cacheGetAllUniform)
	shared.InvalidateCaches(ctx, s.cache, cacheCountUniform)
}
