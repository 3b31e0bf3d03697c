package repository

//go:generate go run go.uber.org/mock/mockgen -source=./repository.go -destination=../mocks/repository_mock.go -package=mocks

import (
	"context"

	"stagehand/infras/otel"
	"stagehand/infras/postgres"
	"stagehand/internal/domains/signup/model"
	gDto "stagehand/shared/dto"
	gRepo "stagehand/shared/repository"
)

type Signup interface {
	Insert(ctx context.Context, model model.Signup) error
	Get(ctx context.Context, filter gDto.FilterGroup, columns ...string) (model.Signup, error)
	GetAll(ctx context.Context, params gDto.QueryParams, filter gDto.FilterGroup, columns ...string) ([]model.Signup, error)
	Exist(ctx context.Context, filter gDto.FilterGroup) (bool, error)
	Count(ctx context.Context, filter gDto.FilterGroup) (int, error)
	Update(ctx context.Context, req map[string]any, filter gDto.FilterGroup) error
	Delete(ctx context.Context, filter gDto.FilterGroup) error
}

type repositoryImpl struct {
	gRepo.Repository[model.Signup]
}

func New(db *postgres.Connection, otel otel.Otel) Signup {
	return &repositoryImpl{
		Repository: gRepo.NewRepository[model.Signup](model.EntityName, model.TableName, model.FieldID, db, otel),
	}
}
