package service

import (
	"context"
	"fmt"

	"stagehand/config"
	"stagehand/infras/otel"
	partModel "stagehand/internal/domains/part/model"
	partRepo "stagehand/internal/domains/part/repository"
	"stagehand/internal/domains/position/model"
	"stagehand/internal/domains/position/model/dto"
	"stagehand/internal/domains/position/repository"
	studentModel "stagehand/internal/domains/student/model"
	studentRepo "stagehand/internal/domains/student/repository"
	subpartModel "stagehand/internal/domains/subpart/model"
	subpartRepo "stagehand/internal/domains/subpart/repository"
	"stagehand/shared"
	"stagehand/shared/cache"
	"stagehand/shared/constant"
	gDto "stagehand/shared/dto"
	"stagehand/shared/failure"
	"stagehand/shared/timezone"

	"github.com/rs/zerolog/log"
)

const (
	cacheGetPosition    = "position:get"
	cacheGetAllPosition = "position:gets"
	cacheCountPosition  = "position:count"
)

type Position interface {
	Assign(ctx context.Context, req dto.AssignPositionRequest) (string, error)
	GetAll(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (dto.GetPositionsResponse, error)
	Count(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (int, error)
	Get(ctx context.Context, id string) (dto.PositionResponse, error)
	Move(ctx context.Context, req dto.MovePositionRequest, id string) error
	Remove(ctx context.Context, id string) error
}

type serviceImpl struct {
	repo        repository.Position
	partRepo    partRepo.Part
	subpartRepo subpartRepo.Subpart
	studentRepo studentRepo.Student
	cfg         *config.Config
	cache       cache.RedisCache
	otel        otel.Otel
	conv        *timezone.Converter
}

func New(
	repo repository.Position,
	partRepo partRepo.Part,
	subpartRepo subpartRepo.Subpart,
	studentRepo studentRepo.Student,
	cfg *config.Config,
	cache cache.RedisCache,
	otel otel.Otel,
	conv *timezone.Converter,
) Position {
	return &serviceImpl{
		repo:        repo,
		partRepo:    partRepo,
		subpartRepo: subpartRepo,
		studentRepo: studentRepo,
		cfg:         cfg,
		cache:       cache,
		otel:        otel,
		conv:        conv,
	}
}

// Assign places a student on a free cell of the part's grid. A student holds at most one cell per part.
func (s *serviceImpl) Assign(ctx context.Context, req dto.AssignPositionRequest) (id string, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Assign")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	row, col, err := req.Resolve()
	if err != nil {
		return "", failure.BadRequest(err) // nolint:wrapcheck
	}

	if err = s.checkPlacement(ctx, req.PartID, req.SubpartID, row, col, constant.Empty); err != nil {
		return "", err
	}

	exist, err := s.studentRepo.Exist(ctx, shared.FilterByID(req.StudentID, studentModel.FieldID, studentModel.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to check student")

		return "", fmt.Errorf("failed to check student: %w", err)
	}

	if !exist {
		return "", failure.NotFound("student not found") // nolint:wrapcheck
	}

	placed, err := s.repo.Exist(ctx, gDto.FilterGroup{
		Operator: gDto.FilterGroupOperatorAnd,
		Filters: []any{
			gDto.Filter{Field: model.FieldPartID, Operator: gDto.FilterOperatorEq, Value: req.PartID, Table: model.TableName},
			gDto.Filter{Field: model.FieldStudentID, Operator: gDto.FilterOperatorEq, Value: req.StudentID, Table: model.TableName},
		},
	})
	if err != nil {
		log.Error().Err(err).Msg("failed to check student placement")

		return "", fmt.Errorf("failed to check student placement: %w", err)
	}

	if placed {
		return "", failure.Conflict("student already holds a position in this part") // nolint:wrapcheck
	}

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)
	position := req.ToModel(user, row, col, s.conv.Now())

	if err = s.repo.Insert(ctx, position); err != nil {
		log.Error().Err(err).Msg("failed to assign position")

		return "", fmt.Errorf("failed to assign position: %w", err)
	}

	go s.invalidateLists(context.WithoutCancel(ctx))

	return position.ID, nil
}

func (s *serviceImpl) GetAll(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (res dto.GetPositionsResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".GetAll")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	cacheKey := shared.BuildCacheKeyWithQuery(cacheGetAllPosition, req, filter)

	err = s.cache.Get(ctx, cacheKey, &res)
	if err == nil {
		return res, nil
	}

	total, err := s.Count(ctx, req, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to count positions")

		return res, fmt.Errorf("failed to count positions: %w", err)
	}

	models, err := s.repo.GetAll(ctx, req, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to get positions")

		return res, fmt.Errorf("failed to get positions: %w", err)
	}

	res.FromModels(models, total, req.Limit)

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save positions to cache")
		}
	}()

	return res, nil
}

func (s *serviceImpl) Count(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (res int, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Count")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	cacheKey := shared.BuildCacheKeyWithQuery(cacheCountPosition, req, filter)

	err = s.cache.Get(ctx, cacheKey, &res)
	if err == nil {
		return res, nil
	}

	res, err = s.repo.Count(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to count positions")

		return res, fmt.Errorf("failed to count positions: %w", err)
	}

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save position count to cache")
		}
	}()

	return res, nil
}

func (s *serviceImpl) Get(ctx context.Context, id string) (res dto.PositionResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Get")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	cacheKey := shared.BuildCacheKey(cacheGetPosition, id)

	err = s.cache.Get(ctx, cacheKey, &res)
	if err == nil {
		return res, nil
	}

	position, err := s.find(ctx, id)
	if err != nil {
		return res, err
	}

	res.FromModel(position)

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save position to cache")
		}
	}()

	return res, nil
}

// Move puts an existing position on another cell, optionally switching subpart.
func (s *serviceImpl) Move(ctx context.Context, req dto.MovePositionRequest, id string) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Move")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	row, col, err := req.Resolve()
	if err != nil {
		return failure.BadRequest(err) // nolint:wrapcheck
	}

	current, err := s.find(ctx, id)
	if err != nil {
		return err
	}

	if err = s.checkPlacement(ctx, current.PartID, req.SubpartID, row, col, id); err != nil {
		return err
	}

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)

	fields := map[string]any{
		model.FieldGridRow:       row,
		model.FieldGridCol:       col,
		constant.FieldModifiedAt: s.conv.Now(),
		constant.FieldModifiedBy: user,
	}

	if req.SubpartID != nil {
		fields[model.FieldSubpartID] = *req.SubpartID
	}

	if err = s.repo.Update(ctx, fields, shared.FilterByID(id, model.FieldID, model.TableName)); err != nil {
		log.Error().Err(err).Msg("failed to move position")

		return fmt.Errorf("failed to move position: %w", err)
	}

	go s.invalidate(context.WithoutCancel(ctx), id)

	return nil
}

func (s *serviceImpl) Remove(ctx context.Context, id string) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Remove")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	if _, err = s.find(ctx, id); err != nil {
		return err
	}

	if err = s.repo.Delete(ctx, shared.FilterByID(id, model.FieldID, model.TableName)); err != nil {
		log.Error().Err(err).Msg("failed to remove position")

		return fmt.Errorf("failed to remove position: %w", err)
	}

	go s.invalidate(context.WithoutCancel(ctx), id)

	return nil
}

// checkPlacement verifies the cell lies on the part's grid and is free. selfID is skipped so a
// position can be re-saved on its own cell.
func (s *serviceImpl) checkPlacement(ctx context.Context, partID string, subpartID *string, row, col int, selfID string) error {
	part, err := s.partRepo.Get(ctx, shared.FilterByID(partID, partModel.FieldID, partModel.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to get part")

		return fmt.Errorf("failed to get part: %w", err)
	}

	if part.ID == constant.Empty {
		return failure.NotFound("part not found") // nolint:wrapcheck
	}

	if !part.Contains(row, col) {
		return failure.BadRequestFromString(fmt.Sprintf("cell (%d, %d) is outside the %dx%d grid", row, col, part.GridRows, part.GridCols)) // nolint:wrapcheck
	}

	if subpartID != nil {
		exist, err := s.subpartRepo.Exist(ctx, gDto.FilterGroup{
			Operator: gDto.FilterGroupOperatorAnd,
			Filters: []any{
				gDto.Filter{Field: subpartModel.FieldID, Operator: gDto.FilterOperatorEq, Value: *subpartID, Table: subpartModel.TableName},
				gDto.Filter{Field: subpartModel.FieldPartID, Operator: gDto.FilterOperatorEq, Value: partID, Table: subpartModel.TableName},
			},
		})
		if err != nil {
			log.Error().Err(err).Msg("failed to check subpart")

			return fmt.Errorf("failed to check subpart: %w", err)
		}

		if !exist {
			return failure.NotFound("subpart not found in this part") // nolint:wrapcheck
		}
	}

	occupied, err := s.repo.Exist(ctx, cellFilter(partID, row, col, selfID))
	if err != nil {
		log.Error().Err(err).Msg("failed to check cell")

		return fmt.Errorf("failed to check cell: %w", err)
	}

	if occupied {
		return failure.Conflict(fmt.Sprintf("cell (%d, %d) is already taken", row, col)) // nolint:wrapcheck
	}

	return nil
}

func cellFilter(partID string, row, col int, selfID string) gDto.FilterGroup {
	filter := gDto.FilterGroup{
		Operator: gDto.FilterGroupOperatorAnd,
		Filters: []any{
			gDto.Filter{Field: model.FieldPartID, Operator: gDto.FilterOperatorEq, Value: partID, Table: model.TableName},
			gDto.Filter{Field: model.FieldGridRow, Operator: gDto.FilterOperatorEq, Value: row, Table: model.TableName},
			gDto.Filter{Field: model.FieldGridCol, Operator: gDto.FilterOperatorEq, Value: col, Table: model.TableName},
		},
	}

	if selfID != constant.Empty {
		filter.Filters = append(filter.Filters, gDto.Filter{
			Field:    model.FieldID,
			Operator: gDto.FilterOperatorNotEq,
			Value:    selfID,
			Table:    model.TableName,
		})
	}

	return filter
}

func (s *serviceImpl) find(ctx context.Context, id string) (model.Position, error) {
	position, err := s.repo.Get(ctx, shared.FilterByID(id, model.FieldID, model.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to get position")

		return position, fmt.Errorf("failed to get position: %w", err)
	}

	if position.ID == constant.Empty {
		return position, failure.NotFound("position not found") // nolint:wrapcheck
	}

	return position, nil
}

func (s *serviceImpl) invalidate(ctx context.Context, id string) {
	if err := s.cache.Delete(ctx, shared.BuildCacheKey(cacheGetPosition, id)); err != nil {
		log.Error().Err(err).Msg("failed to delete position from cache")
	}

	s.invalidateLists(ctx)
}

func (s *serviceImpl) invalidateLists(ctx context.Context) {
	shared.InvalidateCaches(ctx, s.cache, cacheGetAllPosition)
	shared.InvalidateCaches(ctx, s.cache, cacheCountPosition)
}
