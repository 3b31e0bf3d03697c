package repository

//go:generate go run go.uber.org/mock/mockgen -source=./assignment.go -destination=../mocks/assignment_mock.go -package=mocks

import (
	"context"

	"stagehand/infras/otel"
	"stagehand/infras/postgres"
	"stagehand/internal/domains/uniform/model"
	gDto "stagehand/shared/dto"
	gRepo "stagehand/shared/repository"

	"github.com/jmoiron/sqlx"
)

// Assignment has no Insert outside a transaction: every checkout also moves the uniform's stock.
type Assignment interface {
	Get(ctx context.Context, filter gDto.FilterGroup, columns ...string) (model.Assignment, error)
	GetAll(ctx context.Context, params gDto.QueryParams, filter gDto.FilterGroup, columns ...string) ([]model.Assignment, error)
	Count(ctx context.Context, filter gDto.FilterGroup) (int, error)
	InsertTx(ctx context.Context, sqltx *sqlx.Tx, model model.Assignment) error
	GetForUpdateTx(ctx context.Context, sqltx *sqlx.Tx, filter gDto.FilterGroup) (model.Assignment, error)
	UpdateTx(ctx context.Context, sqltx *sqlx.Tx, mod map[string]any, filter gDto.FilterGroup) error
}

type assignmentImpl struct {
	gRepo.Repository[model.Assignment]
}

func NewAssignment(db *postgres.Connection, otel otel.Otel) Assignment {
	return &assignmentImpl{
		Repository: gRepo.NewRepository[model.Assignment](model.AssignmentEntityName, model.AssignmentTableName, model.FieldID, db, otel),
	}
}
