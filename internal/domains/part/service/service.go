package service

import (
	"context"
	"fmt"

	"stagehand/config"
	"stagehand/infras/otel"
	"stagehand/internal/domains/part/model"
	"stagehand/internal/domains/part/model/dto"
	"stagehand/internal/domains/part/repository"
	performanceModel "stagehand/internal/domains/performance/model"
	performanceRepo "stagehand/internal/domains/performance/repository"
	positionModel "stagehand/internal/domains/position/model"
	positionRepo "stagehand/internal/domains/position/repository"
	"stagehand/shared"
	"stagehand/shared/cache"
	"stagehand/shared/constant"
	gDto "stagehand/shared/dto"
	"stagehand/shared/failure"
	"stagehand/shared/timezone"

	"github.com/rs/zerolog/log"
)

const (
	cacheGetPart    = "part:get"
	cacheGetAllPart = "part:gets"
	cacheCountPart  = "part:count"
	cacheSubparts   = "subpart:"
	cachePositions  = "position:"
)

type Part interface {
	Create(ctx context.Context, req dto.CreatePartRequest) (string, error)
	GetAll(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (dto.GetPartsResponse, error)
	Count(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (int, error)
	Get(ctx context.Context, id string) (dto.PartResponse, error)
	Update(ctx context.Context, req dto.UpdatePartRequest, id string) error
	Delete(ctx context.Context, id string) error
}

type serviceImpl struct {
	repo            repository.Part
	performanceRepo performanceRepo.Performance
	positionRepo    positionRepo.Position
	cfg             *config.Config
	cache           cache.RedisCache
	otel            otel.Otel
	conv            *timezone.Converter
}

func New(
	repo repository.Part,
	performanceRepo performanceRepo.Performance,
	positionRepo positionRepo.Position,
	cfg *config.Config,
	cache cache.RedisCache,
	otel otel.Otel,
	conv *timezone.Converter,
) Part {
	return &serviceImpl{
		repo:            repo,
		performanceRepo: performanceRepo,
		positionRepo:    positionRepo,
		cfg:             cfg,
		cache:           cache,
		otel:            otel,
		conv:            conv,
	}
}

func (s *serviceImpl) Create(ctx context.Context, req dto.CreatePartRequest) (id string, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Create")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	exist, err := s.performanceRepo.Exist(ctx, shared.FilterByID(req.PerformanceID, performanceModel.FieldID, performanceModel.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to check performance")

		return "", fmt.Errorf("failed to check performance: %w", err)
	}

	if !exist {
		return "", failure.NotFound("performance not found") // nolint:wrapcheck
	}

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)
	part := req.ToModel(user, s.conv.Now())

	if err = s.repo.Insert(ctx, part); err != nil {
		log.Error().Err(err).Msg("failed to create part")

		return "", fmt.Errorf("failed to create part: %w", err)
	}

	go func() {
		c := context.WithoutCancel(ctx)

		shared.InvalidateCaches(c, s.cache, cacheGetAllPart)
		shared.InvalidateCaches(c, s.cache, cacheCountPart)
	}()

	return part.ID, nil
}

func (s *serviceImpl) GetAll(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (res dto.GetPartsResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".GetAll")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	cacheKey := shared.BuildCacheKeyWithQuery(cacheGetAllPart, req, filter)

	err = s.cache.Get(ctx, cacheKey, &res)
	if err == nil {
		log.Info().Str("cacheKey", cacheKey).Msg("cache hit for parts")

		return res, nil
	}

	total, err := s.Count(ctx, req, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to count parts")

		return res, fmt.Errorf("failed to count parts: %w", err)
	}

	models, err := s.repo.GetAll(ctx, req, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to get parts")

		return res, fmt.Errorf("failed to get parts: %w", err)
	}

	res.FromModels(models, total, req.Limit)

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save parts to cache")
		}
	}()

	return res, nil
}

func (s *serviceImpl) Count(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (res int, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Count")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	cacheKey := shared.BuildCacheKeyWithQuery(cacheCountPart, req, filter)

	err = s.cache.Get(ctx, cacheKey, &res)
	if err == nil {
		return res, nil
	}

	res, err = s.repo.Count(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to count parts")

		return res, fmt.Errorf("failed to count parts: %w", err)
	}

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save part count to cache")
		}
	}()

	return res, nil
}

func (s *serviceImpl) Get(ctx context.Context, id string) (res dto.PartResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Get")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	cacheKey := shared.BuildCacheKey(cacheGetPart, id)

	err = s.cache.Get(ctx, cacheKey, &res)
	if err == nil {
		return res, nil
	}

	part, err := s.find(ctx, id)
	if err != nil {
		return res, err
	}

	res.FromModel(part)

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save part to cache")
		}
	}()

	return res, nil
}

func (s *serviceImpl) Update(ctx context.Context, req dto.UpdatePartRequest, id string) (err error) {
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

	rows, cols := req.Grid(current)
	if rows < current.GridRows || cols < current.GridCols {
		outside, err := s.positionRepo.Count(ctx, outsideGrid(id, rows, cols))
		if err != nil {
			log.Error().Err(err).Msg("failed to count positions outside grid")

			return fmt.Errorf("failed to count positions: %w", err)
		}

		if outside > 0 {
			return failure.Conflict(fmt.Sprintf("%d positions lie outside a %dx%d grid", outside, rows, cols)) // nolint:wrapcheck
		}
	}

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)

	if err = s.repo.Update(ctx, shared.TransformFields(req, user, s.conv.Now()), shared.FilterByID(id, model.FieldID, model.TableName)); err != nil {
		log.Error().Err(err).Msg("failed to update part")

		return fmt.Errorf("failed to update part: %w", err)
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
		log.Error().Err(err).Msg("failed to delete part")

		return fmt.Errorf("failed to delete part: %w", err)
	}

	go func() {
		c := context.WithoutCancel(ctx)

		s.invalidate(c, id)
		shared.InvalidateCaches(c, s.cache, cacheSubparts)
		shared.InvalidateCaches(c, s.cache, cachePositions)
	}()

	return nil
}

func (s *serviceImpl) find(ctx context.Context, id string) (model.Part, error) {
	part, err := s.repo.Get(ctx, shared.FilterByID(id, model.FieldID, model.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to get part")

		return part, fmt.Errorf("failed to get part: %w", err)
	}

	if part.ID == constant.Empty {
		return part, failure.NotFound("part not found") // nolint:wrapcheck
	}

	return part, nil
}

func (s *serviceImpl) invalidate(ctx context.Context, id string) {
	if err := s.cache.Delete(ctx, shared.BuildCacheKey(cacheGetPart, id)); err != nil {
		log.Error().Err(err).Msg("failed to delete part from cache")
	}

	shared.InvalidateCaches(ctx, s.cache, cacheGetAllPart)
	shared.InvalidateCaches(ctx, s.cache, cacheCountPart)
}

// outsideGrid matches the part's positions that a rows x cols grid would no longer hold.
func outsideGrid(partID string, rows, cols int) gDto.FilterGroup {
	return gDto.FilterGroup{
		Operator: gDto.FilterGroupOperatorAnd,
		Filters: []any{
			gDto.Filter{
				Field:    positionModel.FieldPartID,
				Operator: gDto.FilterOperatorEq,
				Value:    partID,
				Table:    positionModel.TableName,
			},
			gDto.FilterGroup{
				Operator: gDto.FilterGroupOperatorOr,
				Filters: []any{
					gDto.Filter{
						Field:    positionModel.FieldGridRow,
						Operator: gDto.FilterOperatorGreaterEq,
						Value:    rows,
						Table:    positionModel.TableName,
					},
					gDto.Filter{
						Field:    positionModel.FieldGridCol,
						Operator: gDto.FilterOperatorGreaterEq,
						Value:    cols,
						Table:    positionModel.TableName,
					},
				},
			},
		},
	}
}
