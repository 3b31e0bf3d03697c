package repository

//go:generate go run go.uber.org/mock/mockgen -source=./repository.go -destination=../mocks/repository_mock.go -package=mocks

import (
	"context"

	"stagehand/infras/otel"
	"stagehand/infras/postgres"
	"stagehand/internal/domains/rehearsal/model"
	gDto "stagehand/shared/dto"
	gRepo "stagehand/shared/repository"

	"github.com/jmoiron/sqlx"
)

type Rehearsal interface {
	Insert(ctx context.Context, model model.Rehearsal) error
	InsertBulkTx(ctx context.Context, sqltx *sqlx.Tx, models []model.Rehearsal) error
	WithTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error
	Get(ctx context.Context, filter gDto.FilterGroup, columns ...string) (model.Rehearsal, error)
	GetAll(ctx context.Context, params gDto.QueryParams, filter gDto.FilterGroup, columns ...string) ([]model.Rehearsal, error)
	Exist(ctx context.Context, filter gDto.FilterGroup) (bool, error)
	Count(ctx context.Context, filter gDto.FilterGroup) (int, error)
	Update(ctx context.Context, req map[string]any, filter gDto.FilterGroup) error
	Delete(ctx context.Context, filter gDto.FilterGroup) error
}

type repositoryImpl struct {
	gRepo.Repository[model.Rehearsal]
}

func New(db *postgres.Connection, otel otel.Otel) Rehearsal {
	return &repositoryImpl{
		Repository: gRepo.NewRepository[model.Rehearsal](model.EntityName, model.TableName, model.FieldID, db, otel),
	}
}
