package service

import (
	"context"
	"fmt"

	"stagehand/config"
	"stagehand/infras/otel"
	performanceModel "stagehand/internal/domains/performance/model"
	performanceRepo "stagehand/internal/domains/performance/repository"
	"stagehand/internal/domains/rehearsal/model"
	"stagehand/internal/domains/rehearsal/model/dto"
	"stagehand/internal/domains/rehearsal/repository"
	"stagehand/shared"
	"stagehand/shared/cache"
	"stagehand/shared/constant"
	gDto "stagehand/shared/dto"
	"stagehand/shared/failure"
	"stagehand/shared/timezone"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"
)

const (
	cacheGetRehearsal    = "rehearsal:get"
	cacheGetAllRehearsal = "rehearsal:gets"
	cacheCountRehearsal  = "rehearsal:count"
)

type Rehearsal interface {
	Create(ctx context.Context, req dto.CreateRehearsalRequest) (string, error)
	CreateSeries(ctx context.Context, req dto.CreateSeriesRequest) (dto.CreateSeriesResponse, error)
	GetAll(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (dto.GetRehearsalsResponse, error)
	Count(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (int, error)
	Get(ctx context.Context, id string) (dto.RehearsalResponse, error)
	Update(ctx context.Context, req dto.UpdateRehearsalRequest, id string) error
	Delete(ctx context.Context, id string) error
	DeleteSeries(ctx context.Context, seriesID string) error
}

type serviceImpl struct {
	repo            repository.Rehearsal
	performanceRepo performanceRepo.Performance
	cfg             *config.Config
	cache           cache.RedisCache
	otel            otel.Otel
	conv            *timezone.Converter
}

func New(
	repo repository.Rehearsal,
	performanceRepo performanceRepo.Performance,
	cfg *config.Config,
	cache cache.RedisCache,
	otel otel.Otel,
	conv *timezone.Converter,
) Rehearsal {
	return &serviceImpl{
		repo:            repo,
		performanceRepo: performanceRepo,
		cfg:             cfg,
		cache:           cache,
		otel:            otel,
		conv:            conv,
	}
}

func (s *serviceImpl) Create(ctx context.Context, req dto.CreateRehearsalRequest) (id string, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Create")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	if err = checkTimeRange(req.StartTime, req.EndTime); err != nil {
		return "", err
	}

	if err = s.checkPerformance(ctx, req.PerformanceID); err != nil {
		return "", err
	}

	date, err := model.DateFromKey(req.Date)
	if err != nil {
		return "", failure.BadRequest(err) // nolint:wrapcheck
	}

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)
	rehearsal := req.ToModel(user, date, s.conv.Now())

	if err = s.repo.Insert(ctx, rehearsal); err != nil {
		log.Error().Err(err).Msg("failed to create rehearsal")

		return "", fmt.Errorf("failed to create rehearsal: %w", err)
	}

	go s.invalidateLists(context.WithoutCancel(ctx))

	return rehearsal.ID, nil
}

func (s *serviceImpl) CreateSeries(ctx context.Context, req dto.CreateSeriesRequest) (res dto.CreateSeriesResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".CreateSeries")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	if err = checkTimeRange(req.StartTime, req.EndTime); err != nil {
		return res, err
	}

	if err = s.checkPerformance(ctx, req.PerformanceID); err != nil {
		return res, err
	}

	loc, err := s.conv.Location("")
	if err != nil {
		return res, fmt.Errorf("failed to resolve studio zone: %w", err)
	}

	dates, truncated, err := expandSeries(req.RRule, req.StartDate, loc)
	if err != nil {
		return res, failure.BadRequest(err) // nolint:wrapcheck
	}

	if len(dates) == 0 {
		return res, failure.BadRequestFromString("recurrence rule produces no rehearsals") // nolint:wrapcheck
	}

	if truncated {
		log.Warn().Str("rrule", req.RRule).Int("limit", MaxSeriesOccurrences).Msg("rehearsal series truncated")
	}

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)
	seriesID := uuid.NewString()
	rehearsals := req.ToModels(user, seriesID, dates, s.conv.Now())

	err = s.repo.WithTx(ctx, func(tx *sqlx.Tx) error {
		return s.repo.InsertBulkTx(ctx, tx, rehearsals)
	})
	if err != nil {
		log.Error().Err(err).Str("series_id", seriesID).Msg("failed to create rehearsal series")

		return res, fmt.Errorf("failed to create rehearsal series: %w", err)
	}

	go s.invalidateLists(context.WithoutCancel(ctx))

	return dto.CreateSeriesResponse{
		SeriesID:  seriesID,
		Created:   len(rehearsals),
		Truncated: truncated,
	}, nil
}

func (s *serviceImpl) GetAll(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (res dto.GetRehearsalsResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".GetAll")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	cacheKey := shared.BuildCacheKeyWithQuery(cacheGetAllRehearsal, req, filter)

	err = s.cache.Get(ctx, cacheKey, &res)
	if err == nil {
		res.RefreshLocks(s.conv)

		return res, nil
	}

	total, err := s.Count(ctx, req, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to count rehearsals")

		return res, fmt.Errorf("failed to count rehearsals: %w", err)
	}

	models, err := s.repo.GetAll(ctx, req, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to get rehearsals")

		return res, fmt.Errorf("failed to get rehearsals: %w", err)
	}

	res.FromModels(models, total, req.Limit, s.conv)

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save rehearsals to cache")
		}
	}()

	return res, nil
}

func (s *serviceImpl) Count(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (res int, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Count")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	cacheKey := shared.BuildCacheKeyWithQuery(cacheCountRehearsal, req, filter)

	err = s.cache.Get(ctx, cacheKey, &res)
	if err == nil {
		return res, nil
	}

	res, err = s.repo.Count(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to count rehearsals")

		return res, fmt.Errorf("failed to count rehearsals: %w", err)
	}

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save rehearsal count to cache")
		}
	}()

	return res, nil
}

func (s *serviceImpl) Get(ctx context.Context, id string) (res dto.RehearsalResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Get")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	cacheKey := shared.BuildCacheKey(cacheGetRehearsal, id)

	err = s.cache.Get(ctx, cacheKey, &res)
	if err == nil {
		res.RefreshLock(s.conv)

		return res, nil
	}

	rehearsal, err := s.find(ctx, id)
	if err != nil {
		return res, err
	}

	res.FromModel(rehearsal, s.conv)

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save rehearsal to cache")
		}
	}()

	return res, nil
}

func (s *serviceImpl) Update(ctx context.Context, req dto.UpdateRehearsalRequest, id string) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Update")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	if req.IsEmpty() {
		return failure.BadRequestFromString("update request cannot be empty") // nolint:wrapcheck
	}

	existing, err := s.find(ctx, id)
	if err != nil {
		return err
	}

	if req.TouchesSchedule() && s.conv.IsPastLockBoundary(existing.StartLocal(), "") {
		return failure.Locked("rehearsal is locked within one hour of the start") // nolint:wrapcheck
	}

	startTime, endTime := existing.StartTime, existing.EndTime
	if req.StartTime != "" {
		startTime = req.StartTime
	}

	if req.EndTime != "" {
		endTime = req.EndTime
	}

	if err = checkTimeRange(startTime, endTime); err != nil {
		return err
	}

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)
	updatedFields := shared.TransformFields(req, user, s.conv.Now())

	if req.Date != "" {
		date, err := model.DateFromKey(req.Date)
		if err != nil {
			return failure.BadRequest(err) // nolint:wrapcheck
		}

		updatedFields[model.FieldRehearsalDate] = date
	}

	if err = s.repo.Update(ctx, updatedFields, shared.FilterByID(id, model.FieldID, model.TableName)); err != nil {
		log.Error().Err(err).Msg("failed to update rehearsal")

		return fmt.Errorf("failed to update rehearsal: %w", err)
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
		log.Error().Err(err).Msg("failed to delete rehearsal")

		return fmt.Errorf("failed to delete rehearsal: %w", err)
	}

	go s.invalidate(context.WithoutCancel(ctx), id)

	return nil
}

func (s *serviceImpl) DeleteSeries(ctx context.Context, seriesID string) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".DeleteSeries")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	filter := shared.FilterByID(seriesID, model.FieldSeriesID, model.TableName)

	exist, err := s.repo.Exist(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to check rehearsal series")

		return fmt.Errorf("failed to check rehearsal series: %w", err)
	}

	if !exist {
		return failure.NotFound("rehearsal series not found") // nolint:wrapcheck
	}

	if err = s.repo.Delete(ctx, filter); err != nil {
		log.Error().Err(err).Str("series_id", seriesID).Msg("failed to delete rehearsal series")

		return fmt.Errorf("failed to delete rehearsal series: %w", err)
	}

	go func() {
		c := context.WithoutCancel(ctx)

		shared.InvalidateCaches(c, s.cache, cacheGetRehearsal)
		s.invalidateLists(c)
	}()

	return nil
}

func (s *serviceImpl) find(ctx context.Context, id string) (model.Rehearsal, error) {
	rehearsal, err := s.repo.Get(ctx, shared.FilterByID(id, model.FieldID, model.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to get rehearsal")

		return rehearsal, fmt.Errorf("failed to get rehearsal: %w", err)
	}

	if rehearsal.ID == constant.Empty {
		return rehearsal, failure.NotFound("rehearsal not found") // nolint:wrapcheck
	}

	return rehearsal, nil
}

func (s *serviceImpl) checkPerformance(ctx context.Context, performanceID string) error {
	exist, err := s.performanceRepo.Exist(ctx, shared.FilterByID(performanceID, performanceModel.FieldID, performanceModel.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to check performance")

		return fmt.Errorf("failed to check performance: %w", err)
	}

	if !exist {
		return failure.NotFound("performance not found") // nolint:wrapcheck
	}

	return nil
}

func (s *serviceImpl) invalidate(ctx context.Context, id string) {
	if err := s.cache.Delete(ctx, shared.BuildCacheKey(cacheGetRehearsal, id)); err != nil {
		log.Error().Err(err).Msg("failed to delete rehearsal from cache")
	}

	s.invalidateLists(ctx)
}

func (s *serviceImpl) invalidateLists(ctx context.Context) {
	shared.InvalidateCaches(ctx, s.cache, cacheGetAllRehearsal)
	shared.InvalidateCaches(ctx, s.cache, cacheCountRehearsal)
}

func checkTimeRange(startTime, endTime string) error {
	startHour, startMinute, err := timezone.ParseClockTime(startTime)
	if err != nil {
		return failure.BadRequest(err) // nolint:wrapcheck
	}

	endHour, endMinute, err := timezone.ParseClockTime(endTime)
	if err != nil {
		return failure.BadRequest(err) // nolint:wrapcheck
	}

	if endHour*60+endMinute <= startHour*60+startMinute {
		return failure.BadRequestFromString("end_time must be after start_time") // nolint:wrapcheck
	}

	return nil
}
