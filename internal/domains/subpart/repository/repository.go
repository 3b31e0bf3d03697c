package repository

//go:generate go run go.uber.org/mock/mockgen -source=./repository.go -destination=../mocks/repository_mock.go -package=mocks

import (
	"context"

	"stagehand/infras/otel"
	"stagehand/infras/postgres"
	"stagehand/internal/domains/subpart/model"
	gDto "stagehand/shared/dto"
	gRepo "stagehand/shared/repository"
)

type Subpart interface {
	Insert(ctx context.Context, model model.Subpart) error
	Get(ctx context.Context, filter gDto.FilterGroup, columns ...string) (model.Subpart, error)
	GetAll(ctx context.Context, params gDto.QueryParams, filter gDto.FilterGroup, columns ...string) ([]model.Subpart, error)
	Exist(ctx context.Context, filter gDto.FilterGroup) (bool, error)
	Count(ctx context.Context, filter gDto.FilterGroup) (int, error)
	Update(ctx context.Context, req map[string]any, filter gDto.FilterGroup) error
	Delete(ctx context.Context, filter gDto.FilterGroup) error
}

type repositoryImpl struct {
	gRepo.Repository[model.Subpart]
}

func New(db *postgres.Connection, otel otel.Otel) Subpart {
	return &repositoryImpl{
		Repository: gRepo.NewRepository[model.Subpart](model.EntityName, model.TableName, model.FieldID, db, otel),
	}
}
