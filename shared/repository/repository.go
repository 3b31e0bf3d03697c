package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"maps"
	"reflect"
	"slices"
	"strings"

	"stagehand/infras/otel"
	"stagehand/infras/postgres"
	"stagehand/shared/constant"
	"stagehand/shared/dto"
	"stagehand/shared/logger"

	"github.com/jmoiron/sqlx"
)

var errRequiredFilter = errors.New("required filter")

type column struct {
	name  string
	table string
	alias string
}

type execer interface {
	NamedExecContext(ctx context.Context, query string, arg any) (sql.Result, error)
}

type preparer interface {
	PrepareNamedContext(ctx context.Context, query string) (*sqlx.NamedStmt, error)
}

// Repository is the generic sqlx-backed store every domain repository embeds. Columns come from the
// `db` tags of T; a `table` tag marks a joined column that is selected but never inserted.
type Repository[T any] struct {
	db            *postgres.Connection
	otel          otel.Otel
	table         string
	entity        string
	primaryColumn string
	columns       []column
	join          string
	insertQuery   string
	InsertColumns []string
}

func NewRepository[T any](entityName, tableName, primaryColumn string, dbConnection *postgres.Connection, otl otel.Otel) Repository[T] {
	var zero T

	columns, insertColumns := getColumns(tableName, reflect.TypeOf(zero))

	placeholders := make([]string, 0, len(insertColumns))
	for _, col := range insertColumns {
		placeholders = append(placeholders, ":"+col)
	}

	return Repository[T]{
		db:            dbConnection,
		otel:          otl,
		table:         tableName,
		entity:        entityName,
		primaryColumn: primaryColumn,
		columns:       columns,
		join:          joinQuery(zero),
		insertQuery:   fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", tableName, strings.Join(insertColumns, ", "), strings.Join(placeholders, ", ")),
		InsertColumns: insertColumns,
	}
}

// joinQuery returns the JOIN fragment of models that declare one through GetJoinQuery.
func joinQuery(model any) string {
	if joiner, ok := model.(interface{ GetJoinQuery() string }); ok {
		return joiner.GetJoinQuery()
	}

	return ""
}

func (repo *Repository[T]) span(ctx context.Context, operation string) (context.Context, otel.Scope) {
	return repo.otel.NewScope(ctx, constant.OtelRepositoryScopeName, fmt.Sprintf("%s.%s.%s", constant.OtelRepositoryScopeName, repo.entity, operation))
}

func (repo *Repository[T]) fail(scope otel.Scope, action string, err error) error {
	logger.ErrorWithStack(err)
	scope.TraceError(err)

	return fmt.Errorf("failed to %s (%s): %w", action, repo.entity, err)
}

// read prepares query on db and scans into dest, a pointer to one row or to a slice when many is set.
func (repo *Repository[T]) read(ctx context.Context, scope otel.Scope, db preparer, query, action string, dest any, args map[string]any, many bool) error {
	scope.SetAttribute(constant.OtelQueryAttributeKey, query)

	stmt, err := db.PrepareNamedContext(ctx, query)
	if err != nil {
		return repo.fail(scope, "prepare statement", err)
	}
	defer stmt.Close()

	if many {
		err = stmt.SelectContext(ctx, dest, args)
	} else {
		err = stmt.GetContext(ctx, dest, args)
	}

	if err != nil {
		return repo.fail(scope, action, err)
	}

	return nil
}

func (repo *Repository[T]) exec(ctx context.Context, scope otel.Scope, db execer, query, action string, arg any) error {
	scope.SetAttribute(constant.OtelQueryAttributeKey, query)

	if _, err := db.NamedExecContext(ctx, query, arg); err != nil {
		return repo.fail(scope, action, err)
	}

	return nil
}

func (repo *Repository[T]) Insert(ctx context.Context, model T) error {
	ctx, scope := repo.span(ctx, "Insert")
	defer scope.End()

	return repo.exec(ctx, scope, repo.db.Write, repo.insertQuery, "insert data", model)
}

func (repo *Repository[T]) InsertTx(ctx context.Context, sqltx *sqlx.Tx, model T) error {
	ctx, scope := repo.span(ctx, "InsertTx")
	defer scope.End()

	return repo.exec(ctx, scope, sqltx, repo.insertQuery, "insert data", model)
}

// InsertBulk writes every model in a single multi-row statement. An empty slice is a no-op.
func (repo *Repository[T]) InsertBulk(ctx context.Context, models []T) error {
	return repo.InsertBulkTx(ctx, nil, models)
}

// InsertBulkTx is InsertBulk on sqltx, or on the write pool when sqltx is nil.
func (repo *Repository[T]) InsertBulkTx(ctx context.Context, sqltx *sqlx.Tx, models []T) error {
	ctx, scope := repo.span(ctx, "InsertBulk")
	defer scope.End()

	if len(models) == 0 {
		return nil
	}

	scope.SetAttribute(constant.OtelRowsAttributeKey, len(models))

	var db execer = repo.db.Write
	if sqltx != nil {
		db = sqltx
	}

	return repo.exec(ctx, scope, db, repo.insertQuery, "bulk insert data", models)
}

func (repo *Repository[T]) Exist(ctx context.Context, filter dto.FilterGroup) (bool, error) {
	ctx, scope := repo.span(ctx, "Exist")
	defer scope.End()

	where, args := repo.BuildWhereClause(filter)
	if where == "" {
		return false, errRequiredFilter
	}

	var exist bool

	query := fmt.Sprintf("SELECT EXISTS(SELECT 1 FROM %s %s)", repo.table, where)
	if err := repo.read(ctx, scope, repo.db.Read, query, "check exist data", &exist, args, false); err != nil {
		return false, err
	}

	return exist, nil
}

// Get returns the first matching row, or the zero T when nothing matches.
func (repo *Repository[T]) Get(ctx context.Context, filter dto.FilterGroup, columns ...string) (T, error) {
	ctx, scope := repo.span(ctx, "Get")
	defer scope.End()

	where, args := repo.BuildWhereClause(filter)
	query := fmt.Sprintf("SELECT %s FROM %s %s %s", repo.selectList(columns...), repo.table, repo.join, where)

	return repo.getOne(ctx, scope, repo.db.Read, query, "get data", args)
}

// GetForUpdateTx reads one row and locks it until tx ends.
func (repo *Repository[T]) GetForUpdateTx(ctx context.Context, sqltx *sqlx.Tx, filter dto.FilterGroup) (T, error) {
	ctx, scope := repo.span(ctx, "GetForUpdateTx")
	defer scope.End()

	where, args := repo.BuildWhereClause(filter)
	if where == "" {
		var zero T

		return zero, errRequiredFilter
	}

	query := fmt.Sprintf("SELECT %s FROM %s %s FOR UPDATE", repo.selectList(), repo.table, where)

	return repo.getOne(ctx, scope, sqltx, query, "get data for update", args)
}

func (repo *Repository[T]) getOne(ctx context.Context, scope otel.Scope, db preparer, query, action string, args map[string]any) (T, error) {
	var model T

	err := repo.read(ctx, scope, db, query, action, &model, args, false)
	if errors.Is(err, sql.ErrNoRows) {
		return model, nil
	}

	return model, err
}

func (repo *Repository[T]) GetAll(ctx context.Context, params dto.QueryParams, filter dto.FilterGroup, columns ...string) ([]T, error) {
	ctx, scope := repo.span(ctx, "GetAll")
	defer scope.End()

	where, args := repo.BuildWhereClause(filter)
	ordering, pagination := repo.clauses(params, args)

	query := fmt.Sprintf("SELECT %s FROM %s %s %s %s %s", repo.selectList(columns...), repo.table, repo.join, where, ordering, pagination)

	var models []T
	if err := repo.read(ctx, scope, repo.db.Read, query, "get all data", &models, args, true); err != nil {
		return nil, err
	}

	return models, nil
}

func (repo *Repository[T]) Count(ctx context.Context, filter dto.FilterGroup) (int, error) {
	ctx, scope := repo.span(ctx, "Count")
	defer scope.End()

	where, args := repo.BuildWhereClause(filter)
	query := fmt.Sprintf("SELECT COUNT(%s.%s) FROM %s %s %s", repo.table, repo.primaryColumn, repo.table, repo.join, where)

	var count int
	if err := repo.read(ctx, scope, repo.db.Read, query, "count data", &count, args, false); err != nil {
		return 0, err
	}

	return count, nil
}

func (repo *Repository[T]) Delete(ctx context.Context, filter dto.FilterGroup) error {
	return repo.DeleteTx(ctx, nil, filter)
}

// DeleteTx deletes on sqltx, or on the write pool when sqltx is nil. An empty filter is refused.
func (repo *Repository[T]) DeleteTx(ctx context.Context, sqltx *sqlx.Tx, filter dto.FilterGroup) error {
	ctx, scope := repo.span(ctx, "Delete")
	defer scope.End()

	where, args := repo.BuildWhereClause(filter)
	if where == "" {
		return errRequiredFilter
	}

	var db execer = repo.db.Write
	if sqltx != nil {
		db = sqltx
	}

	return repo.exec(ctx, scope, db, fmt.Sprintf("DELETE FROM %s %s", repo.table, where), "delete data", args)
}

func (repo *Repository[T]) Update(ctx context.Context, mod map[string]any, filter dto.FilterGroup) error {
	return repo.UpdateTx(ctx, nil, mod, filter)
}

// UpdateTx sets the columns in mod on sqltx, or on the write pool when sqltx is nil.
func (repo *Repository[T]) UpdateTx(ctx context.Context, sqltx *sqlx.Tx, mod map[string]any, filter dto.FilterGroup) error {
	ctx, scope := repo.span(ctx, "Update")
	defer scope.End()

	query, args := repo.updateQuery(mod, filter)

	var db execer = repo.db.Write
	if sqltx != nil {
		db = sqltx
	}

	return repo.exec(ctx, scope, db, query, "update data", args)
}

func (repo *Repository[T]) updateQuery(mod map[string]any, filter dto.FilterGroup) (string, map[string]any) {
	assignments := make([]string, 0, len(mod))
	for _, col := range slices.Sorted(maps.Keys(mod)) {
		assignments = append(assignments, fmt.Sprintf("%s = :%s", col, col))
	}

	where, args := repo.BuildWhereClause(filter)
	maps.Copy(args, mod)

	return fmt.Sprintf("UPDATE %s SET %s %s", repo.table, strings.Join(assignments, ", "), where), args
}

// WithTx runs fn inside a write transaction, committing when fn returns nil.
func (repo *Repository[T]) WithTx(ctx context.Context, fn func(tx *sqlx.Tx) error) (err error) {
	ctx, scope := repo.span(ctx, "WithTx")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	tx, err := repo.db.Write.BeginTxx(ctx, nil)
	if err != nil {
		logger.ErrorWithStack(err)

		return fmt.Errorf("failed to begin transaction (%s): %w", repo.entity, err)
	}

	if err = fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			logger.ErrorWithStack(rbErr)
		}

		return err
	}

	if err = tx.Commit(); err != nil {
		logger.ErrorWithStack(err)

		return fmt.Errorf("failed to commit transaction (%s): %w", repo.entity, err)
	}

	return nil
}

// clauses renders ORDER BY and LIMIT/OFFSET for params, adding the bound values to args.
// Unqualified sort columns are qualified with the repository table so joins stay unambiguous.
func (repo *Repository[T]) clauses(params dto.QueryParams, args map[string]any) (ordering, pagination string) {
	if params.SortBy != "" && params.SortDir != "" {
		sortBy := params.SortBy
		if !strings.Contains(sortBy, ".") {
			sortBy = repo.table + "." + sortBy
		}

		ordering = fmt.Sprintf("ORDER BY %s %s", sortBy, params.SortDir)
	}

	if params.Limit <= 0 {
		return ordering, ""
	}

	args["limit"] = params.Limit
	pagination = "LIMIT :limit"

	if params.Page > 0 {
		args["offset"] = (params.Page - 1) * params.Limit
		pagination += " OFFSET :offset"
	}

	return ordering, pagination
}

// selectList renders the column list, restricted to only when given.
func (repo *Repository[T]) selectList(only ...string) string {
	columns := make([]string, 0, len(repo.columns))

	for _, col := range repo.columns {
		if len(only) > 0 && !slices.Contains(only, col.name) {
			continue
		}

		switch {
		case col.table == "":
			columns = append(columns, col.name)
		case col.alias != "":
			columns = append(columns, fmt.Sprintf("%s.%s AS %s", col.table, col.name, col.alias))
		default:
			columns = append(columns, col.table+"."+col.name)
		}
	}

	return strings.Join(columns, ", ")
}

func (repo *Repository[T]) BuildWhereClause(filter dto.FilterGroup) (string, map[string]any) {
	where, args := filter.GetWhereClause()
	if where == "" {
		return "", map[string]any{}
	}

	return fmt.Sprintf(" WHERE %s ", where), args
}

func getColumns(table string, reflectType reflect.Type) (columns []column, insertColumns []string) {
	for i := range reflectType.NumField() {
		field := reflectType.Field(i)

		if field.Anonymous && field.Type.Kind() == reflect.Struct {
			embedded, embeddedInsert := getColumns(table, field.Type)
			columns = append(columns, embedded...)
			insertColumns = append(insertColumns, embeddedInsert...)

			continue
		}

		dbTag := field.Tag.Get("db")
		if dbTag == "" {
			continue
		}

		tableField := field.Tag.Get("table")
		if tableField == "" {
			tableField = table
			insertColumns = append(insertColumns, dbTag)
		}

		if colTag := field.Tag.Get("column"); colTag != "" {
			columns = append(columns, column{name: colTag, table: tableField, alias: dbTag})
		} else {
			columns = append(columns, column{name: dbTag, table: tableField})
		}
	}

	return columns, insertColumns
}
