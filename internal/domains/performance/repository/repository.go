package repository

//go:generate go run go.uber.org/mock/mockgen -source=./repository.go -destination=../mocks/repository_mock.go -package=mocks

import (
	"context"

	"stagehand/infras/otel"
	"stagehand/infras/postgres"
	"stagehand/internal/domains/performance/model"
	gDto "stagehand/shared/dto"
	gRepo "stagehand/shared/repository"
)

type Performance interface {
	Insert(ctx context.Context, model model.Performance) error
	Get(ctx context.Context, filter gDto.FilterGroup, columns ...string) (model.Performance, error)
	GetAll(ctx context.Context, params gDto.QueryParams, filter gDto.FilterGroup, columns ...string) ([]model.Performance, error)
	Exist(ctx context.Context, filter gDto.FilterGroup) (bool, error)
	Count(ctx context.Context, filter gDto.FilterGroup) (int, error)
	Update(ctx context.Context, req map[string]any, filter gDto.FilterGroup) error
	Delete(ctx context.Context, filter gDto.FilterGroup) error
}

type repositoryImpl struct {
	gRepo.Repository[model.Performance]
}

func New(db *postgres.Connection, otel otel.Otel) Performance {
	return &repositoryImpl{
		Repository: gRepo.NewRepository[model.Performance](model.EntityName, model.TableName, model.FieldID, db, otel),
	}
}
