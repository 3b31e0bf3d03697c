package repository

//go:generate go run go.uber.org/mock/mockgen -source=./repository.go -destination=../mocks/repository_mock.go -package=mocks

import (
	"context"

	"stagehand/infras/otel"
	"stagehand/infras/postgres"
	"stagehand/internal/domains/uniform/model"
	gDto "stagehand/shared/dto"
	gRepo "stagehand/shared/repository"

	"github.com/jmoiron/sqlx"
)

type Uniform interface {
	Insert(ctx context.Context, model model.Uniform) error
	Get(ctx context.Context, filter gDto.FilterGroup, columns ...string) (model.Uniform, error)
	GetAll(ctx context.Context, params gDto.QueryParams, filter gDto.FilterGroup, columns ...string) ([]model.Uniform, error)
	Exist(ctx context.Context, filter gDto.FilterGroup) (bool, error)
	Count(ctx context.Context, filter gDto.FilterGroup) (int, error)
	Update(ctx context.Context, req map[string]any, filter gDto.FilterGroup) error
	Delete(ctx context.Context, filter gDto.FilterGroup) error
	WithTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error
	GetForUpdateTx(ctx context.Context, sqltx *sqlx.Tx, filter gDto.FilterGroup) (model.Uniform, error)
	UpdateTx(ctx context.Context, sqltx *sqlx.Tx, mod map[string]any, filter gDto.FilterGroup) error
}

type repositoryImpl struct {
	gRepo.Repository[model.Uniform]
}

func New(db *postgres.Connection, otel otel.Otel) Uniform {
	return &repositoryImpl{
		Repository: gRepo.NewRepository[model.Uniform](model.EntityName, model.TableName, model.FieldID, db, otel),
	}
}
