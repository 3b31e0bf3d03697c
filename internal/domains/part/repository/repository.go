package repository

//go:generate go run go.uber.org/mock/mockgen -source=./repository.go -destination=../mocks/repository_mock.go -package=mocks

import (
	"context"

	"stagehand/infras/otel"
	"stagehand/infras/postgres"
	"stagehand/internal/domains/part/model"
	gDto "stagehand/shared/dto"
	gRepo "stagehand/shared/repository"
)

type Part interface {
	Insert(ctx context.Context, model model.Part) error
	Get(ctx context.Context, filter gDto.FilterGroup, columns ...string) (model.Part, error)
	GetAll(ctx context.Context, params gDto.QueryParams, filter gDto.FilterGroup, columns ...string) ([]model.Part, error)
	Exist(ctx context.Context, filter gDto.FilterGroup) (bool, error)
	Count(ctx context.Context, filter gDto.FilterGroup) (int, error)
	Update(ctx context.Context, req map[string]any, filter gDto.FilterGroup) error
	Delete(ctx context.Context, filter gDto.FilterGroup) error
}

type repositoryImpl struct {
	gRepo.Repository[model.Part]
}

func New(db *postgres.Connection, otel otel.Otel) Part {
	return &repositoryImpl{
		Repository: gRepo.NewRepository[model.Part](model.EntityName, model.TableName, model.FieldID, db, otel),
	}
}
