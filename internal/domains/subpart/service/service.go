package service

import (
	"context"
	"fmt"

	"stagehand/config"
	"stagehand/infras/otel"
	partModel "stagehand/internal/domains/part/model"
	partRepo "stagehand/internal/domains/part/repository"
	"stagehand/internal/domains/subpart/model"
	"stagehand/internal/domains/subpart/model/dto"
	"stagehand/internal/domains/subpart/repository"
	"stagehand/shared"
	"stagehand/shared/cache"
	"stagehand/shared/constant"
	gDto "stagehand/shared/dto"
	"stagehand/shared/failure"
	"stagehand/shared/timezone"

	"github.com/rs/zerolog/log"
)

const (
	cacheGetSubpart    = "subpart:get"
	cacheGetAllSubpart = "subpart:gets"
	cacheCountSubpart  = "subpart:count"
	cachePositions     = "position:"
)

type Subpart interface {
	Create(ctx context.Context, req dto.CreateSubpartRequest) (string, error)
	GetAll(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (dto.GetSubpartsResponse, error)
	Count(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (int, error)
	Get(ctx context.Context, id string) (dto.SubpartResponse, error)
	Update(ctx context.Context, req dto.UpdateSubpartRequest, id string) error
	Delete(ctx context.Context, id string) error
}

type serviceImpl struct {
	repo     repository.Subpart
	partRepo partRepo.Part
	cfg      *config.Config
	cache    cache.RedisCache
	otel     otel.Otel
	conv     *timezone.Converter
}

func New(
	repo repository.Subpart,
	partRepo partRepo.Part,
	cfg *config.Config,
	cache cache.RedisCache,
	otel otel.Otel,
	conv *timezone.Converter,
) Subpart {
	return &serviceImpl{
		repo:     repo,
		partRepo: partRepo,
		cfg:      cfg,
		cache:    cache,
		otel:     otel,
		conv:     conv,
	}
}

// Create appends the subpart after its siblings unless a sort order is given.
func (s *serviceImpl) Create(ctx context.Context, req dto.CreateSubpartRequest) (id string, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Create")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	exist, err := s.partRepo.Exist(ctx, shared.FilterByID(req.PartID, partModel.FieldID, partModel.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to check part")

		return "", fmt.Errorf("failed to check part: %w", err)
	}

	if !exist {
		return "", failure.NotFound("part not found") // nolint:wrapcheck
	}

	order := 0

	if req.SortOrder == nil {
		order, err = s.repo.Count(ctx, shared.FilterByID(req.PartID, model.FieldPartID, model.TableName))
		if err != nil {
			log.Error().Err(err).Msg("failed to count subparts")

			return "", fmt.Errorf("failed to count subparts: %w", err)
		}
	}

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)
	subpart := req.ToModel(user, order, s.conv.Now())

	if err = s.repo.Insert(ctx, subpart); err != nil {
		log.Error().Err(err).Msg("failed to create subpart")

		return "", fmt.Errorf("failed to create subpart: %w", err)
	}

	go s.invalidateLists(context.WithoutCancel(ctx))

	return subpart.ID, nil
}

func (s *serviceImpl) GetAll(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (res dto.GetSubpartsResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".GetAll")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	cacheKey := shared.BuildCacheKeyWithQuery(cacheGetAllSubpart, req, filter)

	err = s.cache.Get(ctx, cacheKey, &res)
	if err == nil {
		return res, nil
	}

	total, err := s.Count(ctx, req, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to count subparts")

		return res, fmt.Errorf("failed to count subparts: %w", err)
	}

	models, err := s.repo.GetAll(ctx, req, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to get subparts")

		return res, fmt.Errorf("failed to get subparts: %w", err)
	}

	res.FromModels(models, total, req.Limit)

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save subparts to cache")
		}
	}()

	return res, nil
}

func (s *serviceImpl) Count(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (res int, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Count")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	cacheKey := shared.BuildCacheKeyWithQuery(cacheCountSubpart, req, filter)

	err = s.cache.Get(ctx, cacheKey, &res)
	if err == nil {
		return res, nil
	}

	res, err = s.repo.Count(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to count subparts")

		return res, fmt.Errorf("failed to count subparts: %w", err)
	}

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save subpart count to cache")
		}
	}()

	return res, nil
}

func (s *serviceImpl) Get(ctx context.Context, id string) (res dto.SubpartResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Get")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	cacheKey := shared.BuildCacheKey(cacheGetSubpart, id)

	err = s.cache.Get(ctx, cacheKey, &res)
	if err == nil {
		return res, nil
	}

	subpart, err := s.find(ctx, id)
	if err != nil {
		return res, err
	}

	res.FromModel(subpart)

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save subpart to cache")
		}
	}()

	return res, nil
}

func (s *serviceImpl) Update(ctx context.Context, req dto.UpdateSubpartRequest, id string) (err error) {
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
		log.Error().Err(err).Msg("failed to update subpart")

		return fmt.Errorf("failed to update subpart: %w", err)
	}

	go s.invalidate(context.WithoutCancel(ctx), id)

	return nil
}

// Delete removes the subpart. Its positions stay on the part without a subpart.
func (s *serviceImpl) Delete(ctx context.Context, id string) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Delete")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	if _, err = s.find(ctx, id); err != nil {
		return err
	}

	if err = s.repo.Delete(ctx, shared.FilterByID(id, model.FieldID, model.TableName)); err != nil {
		log.Error().Err(err).Msg("failed to delete subpart")

		return fmt.Errorf("failed to delete subpart: %w", err)
	}

	go func() {
		c := context.WithoutCancel(ctx)

		s.invalidate(c, id)
		shared.InvalidateCaches(c, s.cache, cachePositions)
	}()

	return nil
}

func (s *serviceImpl) find(ctx context.Context, id string) (model.Subpart, error) {
	subpart, err := s.repo.Get(ctx, shared.FilterByID(id, model.FieldID, model.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to get subpart")

		return subpart, fmt.Errorf("failed to get subpart: %w", err)
	}

	if subpart.ID == constant.Empty {
		return subpart, failure.NotFound("subpart not found") // nolint:wrapcheck
	}

	return subpart, nil
}

func (s *serviceImpl) invalidate(ctx context.Context, id string) {
	if err := s.cache.Delete(ctx, shared.BuildCacheKey(cacheGetSubpart, id)); err != nil {
		log.Error().Err(err).Msg("failed to delete subpart from cache")
	}

	s.invalidateLists(ctx)
}

func (s *serviceImpl) invalidateLists(ctx context.Context) {
	shared.InvalidateCaches(ctx, s.cache, cacheGetAllSubpart)
	shared.InvalidateCaches(ctx, s.cache, cacheCountSubpart)
}
