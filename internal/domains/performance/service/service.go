package service

//go:generate go run go.uber.org/mock/mockgen -source=./service.go -destination=./mocks/service_mock.go -package=mocks

import (
	"context"
	"fmt"

	"stagehand/config"
	"stagehand/infras/kafka"
	"stagehand/infras/otel"
	"stagehand/internal/domains/performance/model"
	"stagehand/internal/domains/performance/model/dto"
	"stagehand/internal/domains/performance/repository"
	rehearsalModel "stagehand/internal/domains/rehearsal/model"
	rehearsalRepo "stagehand/internal/domains/rehearsal/repository"
	"stagehand/shared"
	"stagehand/shared/cache"
	"stagehand/shared/constant"
	gDto "stagehand/shared/dto"
	"stagehand/shared/failure"
	"stagehand/shared/timezone"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

const (
	cacheGetPerformance    = "performance:get"
	cacheGetAllPerformance = "performance:gets"
	cacheCountPerformance  = "performance:count"
	cacheRehearsals        = "rehearsal:"
)

type Performance interface {
	Create(ctx context.Context, req dto.CreatePerformanceRequest) (string, error)
	GetAll(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (dto.GetPerformancesResponse, error)
	Count(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (int, error)
	Get(ctx context.Context, id string) (dto.PerformanceResponse, error)
	Update(ctx context.Context, req dto.UpdatePerformanceRequest, id string) error
	Delete(ctx context.Context, id string) error
	Schedule(ctx context.Context, id string) (dto.ScheduleResponse, error)
	Calendar(ctx context.Context, id string) (string, error)
}

type serviceImpl struct {
	repo          repository.Performance
	rehearsalRepo rehearsalRepo.Rehearsal
	cfg           *config.Config
	cache         cache.RedisCache
	otel          otel.Otel
	conv          *timezone.Converter
	kafka         kafka.Client
}

func New(
	repo repository.Performance,
	rehearsalRepo rehearsalRepo.Rehearsal,
	cfg *config.Config,
	cache cache.RedisCache,
	otel otel.Otel,
	conv *timezone.Converter,
	kafka kafka.Client,
) Performance {
	return &serviceImpl{
		repo:          repo,
		rehearsalRepo: rehearsalRepo,
		cfg:           cfg,
		cache:         cache,
		otel:          otel,
		conv:          conv,
		kafka:         kafka,
	}
}

func (s *serviceImpl) Create(ctx context.Context, req dto.CreatePerformanceRequest) (id string, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Create")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)

	zone := req.Timezone
	if zone == "" {
		zone = s.conv.DefaultZone()
	}

	startsAt, err := s.conv.Instant(req.StartsAt, zone)
	if err != nil {
		return "", failure.BadRequest(err) // nolint:wrapcheck
	}

	callTime := req.CallTime
	if callTime == "" {
		callTime = s.conv.DeriveCallTimeOffset(req.StartsAt)
	}

	performance := req.ToModel(user, startsAt, zone, callTime, s.conv.Now())

	if err = s.repo.Insert(ctx, performance); err != nil {
		log.Error().Err(err).Msg("failed to create performance")

		return "", fmt.Errorf("failed to create performance: %w", err)
	}

	go func() {
		c := context.WithoutCancel(ctx)

		shared.InvalidateCaches(c, s.cache, cacheGetAllPerformance)
		shared.InvalidateCaches(c, s.cache, cacheCountPerformance)

		s.publish(c, model.EventCreated, performance, user)
	}()

	return performance.ID, nil
}

func (s *serviceImpl) GetAll(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (res dto.GetPerformancesResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".GetAll")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	cacheKey := shared.BuildCacheKeyWithQuery(cacheGetAllPerformance, req, filter)

	err = s.cache.Get(ctx, cacheKey, &res)
	if err == nil {
		log.Info().Str("cacheKey", cacheKey).Msg("cache hit for performances")

		res.RefreshLocks(s.conv)

		return res, nil
	}

	total, err := s.Count(ctx, req, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to count performances")

		return res, fmt.Errorf("failed to count performances: %w", err)
	}

	models, err := s.repo.GetAll(ctx, req, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to get performances")

		return res, fmt.Errorf("failed to get performances: %w", err)
	}

	res.FromModels(models, total, req.Limit, s.conv)

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save performances to cache")
		}
	}()

	return res, nil
}

func (s *serviceImpl) Count(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (res int, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Count")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	cacheKey := shared.BuildCacheKeyWithQuery(cacheCountPerformance, req, filter)

	err = s.cache.Get(ctx, cacheKey, &res)
	if err == nil {
		return res, nil
	}

	res, err = s.repo.Count(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to count performances")

		return res, fmt.Errorf("failed to count performances: %w", err)
	}

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save performance count to cache")
		}
	}()

	return res, nil
}

func (s *serviceImpl) Get(ctx context.Context, id string) (res dto.PerformanceResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Get")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	cacheKey := shared.BuildCacheKey(cacheGetPerformance, id)

	err = s.cache.Get(ctx, cacheKey, &res)
	if err == nil {
		log.Info().Str("cacheKey", cacheKey).Msg("cache hit for performance")

		res.RefreshLock(s.conv)

		return res, nil
	}

	performance, err := s.find(ctx, id)
	if err != nil {
		return res, err
	}

	res.FromModel(performance, s.conv)

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save performance to cache")
		}
	}()

	return res, nil
}

func (s *serviceImpl) Update(ctx context.Context, req dto.UpdatePerformanceRequest, id string) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Update")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	if req.IsEmpty() {
		return failure.BadRequestFromString("update request cannot be empty") // nolint:wrapcheck
	}

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)

	existing, err := s.find(ctx, id)
	if err != nil {
		return err
	}

	if req.TouchesSchedule() && s.conv.IsInstantPastLockBoundary(existing.StartsAt) {
		return failure.Locked("performance schedule is locked within one hour of the start") // nolint:wrapcheck
	}

	updatedFields := shared.TransformFields(req, user, s.conv.Now())

	if req.StartsAt != "" || req.Timezone != "" {
		zone := existing.Timezone
		if req.Timezone != "" {
			zone = req.Timezone
		}

		// a zone change alone keeps the wall-clock start and re-reads it in the new zone
		local := req.StartsAt
		if local == "" {
			local = s.conv.FormatForEditing(timezone.FormatInstant(existing.StartsAt), existing.Timezone)
		}

		startsAt, err := s.conv.Instant(local, zone)
		if err != nil {
			return failure.BadRequest(err) // nolint:wrapcheck
		}

		updatedFields[model.FieldStartsAt] = startsAt.UTC()

		if req.StartsAt != "" && req.CallTime == "" {
			updatedFields[model.FieldCallTime] = s.conv.DeriveCallTimeOffset(req.StartsAt)
		}
	}

	filter := shared.FilterByID(id, model.FieldID, model.TableName)
	if err = s.repo.Update(ctx, updatedFields, filter); err != nil {
		log.Error().Err(err).Msg("failed to update performance")

		return fmt.Errorf("failed to update performance: %w", err)
	}

	go func() {
		c := context.WithoutCancel(ctx)

		s.invalidate(c, id)

		if updated, err := s.repo.Get(c, filter); err == nil && updated.ID != "" {
			s.publish(c, model.EventUpdated, updated, user)
		}
	}()

	return nil
}

func (s *serviceImpl) Delete(ctx context.Context, id string) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Delete")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)

	existing, err := s.find(ctx, id)
	if err != nil {
		return err
	}

	if err = s.repo.Delete(ctx, shared.FilterByID(id, model.FieldID, model.TableName)); err != nil {
		log.Error().Err(err).Msg("failed to delete performance")

		return fmt.Errorf("failed to delete performance: %w", err)
	}

	go func() {
		c := context.WithoutCancel(ctx)

		s.invalidate(c, id)
		shared.InvalidateCaches(c, s.cache, cacheRehearsals)

		s.publish(c, model.EventDeleted, existing, user)
	}()

	return nil
}

func (s *serviceImpl) Schedule(ctx context.Context, id string) (res dto.ScheduleResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Schedule")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	performance, rehearsals, err := s.load(ctx, id)
	if err != nil {
		return res, err
	}

	res.FromModels(performance, rehearsals, s.conv)

	return res, nil
}

func (s *serviceImpl) Calendar(ctx context.Context, id string) (res string, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Calendar")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	performance, rehearsals, err := s.load(ctx, id)
	if err != nil {
		return res, err
	}

	return renderCalendar(performance, rehearsals, s.conv), nil
}

// load fetches a performance and its rehearsals concurrently.
func (s *serviceImpl) load(ctx context.Context, id string) (model.Performance, []rehearsalModel.Rehearsal, error) {
	var (
		performance model.Performance
		rehearsals  []rehearsalModel.Rehearsal
	)

	group, gctx := errgroup.WithContext(ctx)

	group.Go(func() error {
		var err error

		performance, err = s.find(gctx, id)

		return err
	})

	group.Go(func() error {
		params := gDto.QueryParams{SortBy: rehearsalModel.FieldRehearsalDate, SortDir: gDto.SortDirAsc}
		filter := shared.FilterByID(id, rehearsalModel.FieldPerformanceID, rehearsalModel.TableName)

		var err error

		rehearsals, err = s.rehearsalRepo.GetAll(gctx, params, filter)
		if err != nil {
			log.Error().Err(err).Str("performance_id", id).Msg("failed to get rehearsals for schedule")

			return fmt.Errorf("failed to get rehearsals: %w", err)
		}

		return nil
	})

	if err := group.Wait(); err != nil {
		return performance, nil, err //nolint:wrapcheck
	}

	return performance, rehearsals, nil
}

func (s *serviceImpl) find(ctx context.Context, id string) (model.Performance, error) {
	performance, err := s.repo.Get(ctx, shared.FilterByID(id, model.FieldID, model.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to get performance")

		return performance, fmt.Errorf("failed to get performance: %w", err)
	}

	if performance.ID == constant.Empty {
		return performance, failure.NotFound("performance not found") // nolint:wrapcheck
	}

	return performance, nil
}

func (s *serviceImpl) invalidate(ctx context.Context, id string) {
	if err := s.cache.Delete(ctx, shared.BuildCacheKey(cacheGetPerformance, id)); err != nil {
		log.Error().Err(err).Msg("failed to delete performance from cache")
	}

	shared.InvalidateCaches(ctx, s.cache, cacheGetAllPerformance)
	shared.InvalidateCaches(ctx, s.cache, cacheCountPerformance)
}

func (s *serviceImpl) publish(ctx context.Context, action string, performance model.Performance, actor string) {
	event := model.Changed{
		ID:         performance.ID,
		Action:     action,
		Title:      performance.Title,
		StartsAt:   timezone.FormatInstant(performance.StartsAt),
		Timezone:   performance.Timezone,
		OccurredAt: timezone.FormatInstant(s.conv.Now()),
		Actor:      actor,
	}

	if err := s.kafka.SendMessages(ctx, s.cfg.Kafka.Topics.Performance, kafka.Message{Key: performance.ID, Value: event}); err != nil {
		log.Error().Err(err).Str("performance_id", performance.ID).Str("action", action).Msg("failed to publish performance change")
	}
}
