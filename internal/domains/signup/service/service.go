package service

import (
	"context"
	"fmt"

	"stagehand/config"
	"stagehand/infras/otel"
	partModel "stagehand/internal/domains/part/model"
	partRepo "stagehand/internal/domains/part/repository"
	performanceModel "stagehand/internal/domains/performance/model"
	performanceRepo "stagehand/internal/domains/performance/repository"
	"stagehand/internal/domains/signup/model"
	"stagehand/internal/domains/signup/model/dto"
	"stagehand/internal/domains/signup/repository"
	studentModel "stagehand/internal/domains/student/model"
	studentRepo "stagehand/internal/domains/student/repository"
	"stagehand/shared"
	"stagehand/shared/cache"
	"stagehand/shared/constant"
	gDto "stagehand/shared/dto"
	"stagehand/shared/failure"
	"stagehand/shared/timezone"

	"github.com/rs/zerolog/log"
)

const (
	cacheGetSignup    = "signup:get"
	cacheGetAllSignup = "signup:gets"
	cacheCountSignup  = "signup:count"
)

type Signup interface {
	Create(ctx context.Context, req dto.CreateSignupRequest) (string, error)
	GetAll(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (dto.GetSignupsResponse, error)
	Count(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (int, error)
	Get(ctx context.Context, id string) (dto.SignupResponse, error)
	Update(ctx context.Context, req dto.UpdateSignupRequest, id string) error
	Delete(ctx context.Context, id string) error
}

type serviceImpl struct {
	repo            repository.Signup
	performanceRepo performanceRepo.Performance
	studentRepo     studentRepo.Student
	partRepo        partRepo.Part
	cfg             *config.Config
	cache           cache.RedisCache
	otel            otel.Otel
	conv            *timezone.Converter
}

func New(
	repo repository.Signup,
	performanceRepo performanceRepo.Performance,
	studentRepo studentRepo.Student,
	partRepo partRepo.Part,
	cfg *config.Config,
	cache cache.RedisCache,
	otel otel.Otel,
	conv *timezone.Converter,
) Signup {
	return &serviceImpl{
		repo:            repo,
		performanceRepo: performanceRepo,
		studentRepo:     studentRepo,
		partRepo:        partRepo,
		cfg:             cfg,
		cache:           cache,
		otel:            otel,
		conv:            conv,
	}
}

// Create accepts a signup only while the performance is open for signups and outside the lock window.
func (s *serviceImpl) Create(ctx context.Context, req dto.CreateSignupRequest) (id string, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Create")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	performance, err := s.performanceRepo.Get(ctx, shared.FilterByID(req.PerformanceID, performanceModel.FieldID, performanceModel.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to get performance")

		return "", fmt.Errorf("failed to get performance: %w", err)
	}

	if performance.ID == constant.Empty {
		return "", failure.NotFound("performance not found") // nolint:wrapcheck
	}

	if !performance.SignupOpen {
		return "", failure.Forbidden("signups are closed for this performance") // nolint:wrapcheck
	}

	if s.conv.IsInstantPastLockBoundary(performance.StartsAt) {
		return "", failure.Locked("signups are locked within one hour of the start") // nolint:wrapcheck
	}

	exist, err := s.studentRepo.Exist(ctx, shared.FilterByID(req.StudentID, studentModel.FieldID, studentModel.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to check student")

		return "", fmt.Errorf("failed to check student: %w", err)
	}

	if !exist {
		return "", failure.NotFound("student not found") // nolint:wrapcheck
	}

	if req.PartID != nil {
		if err = s.checkPart(ctx, *req.PartID, req.PerformanceID); err != nil {
			return "", err
		}
	}

	taken, err := s.repo.Exist(ctx, signupOf(req.PerformanceID, req.StudentID))
	if err != nil {
		log.Error().Err(err).Msg("failed to check existing signup")

		return "", fmt.Errorf("failed to check existing signup: %w", err)
	}

	if taken {
		return "", failure.Conflict("student already signed up for this performance") // nolint:wrapcheck
	}

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)
	signup := req.ToModel(user, s.conv.Now())

	if err = s.repo.Insert(ctx, signup); err != nil {
		log.Error().Err(err).Msg("failed to create signup")

		return "", fmt.Errorf("failed to create signup: %w", err)
	}

	go s.invalidateLists(context.WithoutCancel(ctx))

	return signup.ID, nil
}

func (s *serviceImpl) GetAll(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (res dto.GetSignupsResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".GetAll")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	cacheKey := shared.BuildCacheKeyWithQuery(cacheGetAllSignup, req, filter)

	err = s.cache.Get(ctx, cacheKey, &res)
	if err == nil {
		log.Info().Str("cacheKey", cacheKey).Msg("cache hit for signups")

		return res, nil
	}

	total, err := s.Count(ctx, req, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to count signups")

		return res, fmt.Errorf("failed to count signups: %w", err)
	}

	models, err := s.repo.GetAll(ctx, req, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to get signups")

		return res, fmt.Errorf("failed to get signups: %w", err)
	}

	res.FromModels(models, total, req.Limit)

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save signups to cache")
		}
	}()

	return res, nil
}

func (s *serviceImpl) Count(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (res int, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Count")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	cacheKey := shared.BuildCacheKeyWithQuery(cacheCountSignup, req, filter)

	err = s.cache.Get(ctx, cacheKey, &res)
	if err == nil {
		return res, nil
	}

	res, err = s.repo.Count(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to count signups")

		return res, fmt.Errorf("failed to count signups: %w", err)
	}

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save signup count to cache")
		}
	}()

	return res, nil
}

func (s *serviceImpl) Get(ctx context.Context, id string) (res dto.SignupResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Get")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	cacheKey := shared.BuildCacheKey(cacheGetSignup, id)

	err = s.cache.Get(ctx, cacheKey, &res)
	if err == nil {
		return res, nil
	}

	signup, err := s.find(ctx, id)
	if err != nil {
		return res, err
	}

	res.FromModel(signup)

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save signup to cache")
		}
	}()

	return res, nil
}

// Update changes status, part or notes. Signups freeze once their performance enters the lock window.
func (s *serviceImpl) Update(ctx context.Context, req dto.UpdateSignupRequest, id string) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Update")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	if req.IsEmpty() {
		return failure.BadRequestFromString("update request cannot be empty") // nolint:wrapcheck
	}

	current, err := s.find(ctx, id)
	if err != nil {
		return err
	}

	performance, err := s.performanceRepo.Get(ctx, shared.FilterByID(current.PerformanceID, performanceModel.FieldID, performanceModel.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to get performance")

		return fmt.Errorf("failed to get performance: %w", err)
	}

	if performance.ID != constant.Empty && s.conv.IsInstantPastLockBoundary(performance.StartsAt) {
		return failure.Locked("signups are locked within one hour of the start") // nolint:wrapcheck
	}

	if req.PartID != nil {
		if err = s.checkPart(ctx, *req.PartID, current.PerformanceID); err != nil {
			return err
		}
	}

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)

	if err = s.repo.Update(ctx, shared.TransformFields(req, user, s.conv.Now()), shared.FilterByID(id, model.FieldID, model.TableName)); err != nil {
		log.Error().Err(err).Msg("failed to update signup")

		return fmt.Errorf("failed to update signup: %w", err)
	}

	go s.invalidate(context.WithoutCancel(ctx), id)

	return nil
}

func (s *serviceImpl) Delete(ctx context.Context, id string) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Delete")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	if _, err = s.find(ctx, id); err != nil {
		return err
	}

	if err = s.repo.Delete(ctx, shared.FilterByID(id, model.FieldID, model.TableName)); err != nil {
		log.Error().Err(err).Msg("failed to delete signup")

		return fmt.Errorf("failed to delete signup: %w", err)
	}

	go s.invalidate(context.WithoutCancel(ctx), id)

	return nil
}

// checkPart requires the part to belong to the performance being signed up for.
func (s *serviceImpl) checkPart(ctx context.Context, partID, performanceID string) error {
	exist, err := s.partRepo.Exist(ctx, gDto.FilterGroup{
		Operator: gDto.FilterGroupOperatorAnd,
		Filters: []any{
			gDto.Filter{Field: partModel.FieldID, Operator: gDto.FilterOperatorEq, Value: partID, Table: partModel.TableName},
			gDto.Filter{Field: partModel.FieldPerformanceID, Operator: gDto.FilterOperatorEq, Value: performanceID, Table: partModel.TableName},
		},
	})
	if err != nil {
		log.Error().Err(err).Msg("failed to check part")

		return fmt.Errorf("failed to check part: %w", err)
	}

	if !exist {
		return failure.NotFound("part not found in this performance") // nolint:wrapcheck
	}

	return nil
}

func (s *serviceImpl) find(ctx context.Context, id string) (model.Signup, error) {
	signup, err := s.repo.Get(ctx, shared.FilterByID(id, model.FieldID, model.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to get signup")

		return signup, fmt.Errorf("failed to get signup: %w", err)
	}

	if signup.ID == constant.Empty {
		return signup, failure.NotFound("signup not found") // nolint:wrapcheck
	}

	return signup, nil
}

func (s *serviceImpl) invalidate(ctx context.Context, id string) {
	if err := s.cache.Delete(ctx, shared.BuildCacheKey(cacheGetSignup, id)); err != nil {
		log.Error().Err(err).Msg("failed to delete signup from cache")
	}

	s.invalidateLists(ctx)
}

func (s *serviceImpl) invalidateLists(ctx context.Context) {
	shared.InvalidateCaches(ctx, s.cache, cacheGetAllSignup)
	shared.InvalidateCaches(ctx, s.cache, cacheCountSignup)
}

func signupOf(performanceID, studentID string) gDto.FilterGroup {
	return gDto.FilterGroup{
		Operator: gDto.FilterGroupOperatorAnd,
		Filters: []any{
			gDto.Filter{Field: model.FieldPerformanceID, Operator: gDto.FilterOperatorEq, Value: performanceID, Table: model.TableName},
			gDto.Filter{Field: model.FieldStudentID, Operator: gDto.FilterOperatorEq, Value: studentID, Table: model.TableName},
		},
	}
}
