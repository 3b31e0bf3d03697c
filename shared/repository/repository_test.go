package repository

import (
	"context"
	"testing"

	"stagehand/infras/otel/mocks"
	"stagehand/shared/dto"
	"stagehand/shared/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type seat struct {
	ID          string  `db:"id"`
	PartID      string  `db:"part_id"`
	StudentName *string `column:"first_name" db:"student_name" table:"students"`
	model.Metadata
}

func (seat) GetJoinQuery() string {
	return "LEFT JOIN students ON students.id = seats.student_id"
}

func newSeats() Repository[seat] {
	return NewRepository[seat]("seat", "seats", "id", nil, mocks.NewOtel())
}

func TestNewRepository(t *testing.T) {
	repo := newSeats()

	assert.Equal(t, "LEFT JOIN students ON students.id = seats.student_id", repo.join)
	assert.Equal(t, []string{"id", "part_id", "created_at", "modified_at", "created_by", "modified_by"}, repo.InsertColumns)
	assert.Equal(t,
		"INSERT INTO seats (id, part_id, created_at, modified_at, created_by, modified_by) VALUES (:id, :part_id, :created_at, :modified_at, :created_by, :modified_by)",
		repo.insertQuery,
	)
}

func TestRepository_SelectList(t *testing.T) {
	repo := newSeats()

	assert.Equal(t,
		"seats.id, seats.part_id, students.first_name AS student_name, seats.created_at, seats.modified_at, seats.created_by, seats.modified_by",
		repo.selectList(),
	)
	assert.Equal(t, "seats.id, students.first_name AS student_name", repo.selectList("id", "first_name"))
}

func TestRepository_Clauses(t *testing.T) {
	tests := []struct {
		name       string
		params     dto.QueryParams
		ordering   string
		pagination string
		args       map[string]any
	}{
		{
			name:       "page and limit",
			params:     dto.QueryParams{Page: 3, Limit: 10, SortBy: "part_id", SortDir: dto.SortDirAsc},
			ordering:   "ORDER BY seats.part_id ASC",
			pagination: "LIMIT :limit OFFSET :offset",
			args:       map[string]any{"limit": 10, "offset": 20},
		},
		{
			name:       "limit only",
			params:     dto.QueryParams{Limit: 5},
			pagination: "LIMIT :limit",
			args:       map[string]any{"limit": 5},
		},
		{
			name:     "qualified sort column is kept",
			params:   dto.QueryParams{SortBy: "students.first_name", SortDir: dto.SortDirDesc},
			ordering: "ORDER BY students.first_name DESC",
			args:     map[string]any{},
		},
		{
			name:   "nothing requested",
			params: dto.QueryParams{},
			args:   map[string]any{},
		},
	}

	repo := newSeats()

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := map[string]any{}

			ordering, pagination := repo.clauses(tt.params, args)

			assert.Equal(t, tt.ordering, ordering)
			assert.Equal(t, tt.pagination, pagination)
			assert.Equal(t, tt.args, args)
		})
	}
}

func TestRepository_UpdateQuery(t *testing.T) {
	repo := newSeats()

	query, args := repo.updateQuery(
		map[string]any{"part_id": "part-2", "modified_by": "director-id"},
		dto.And(dto.Filter{Field: "id", Operator: dto.FilterOperatorEq, Value: "seat-1", Table: "seats"}),
	)

	assert.Equal(t, "UPDATE seats SET modified_by = :modified_by, part_id = :part_id  WHERE (seats.id = :id) ", query)
	assert.Equal(t, map[string]any{"id": "seat-1", "part_id": "part-2", "modified_by": "director-id"}, args)
}

func TestRepository_BuildWhereClause(t *testing.T) {
	repo := newSeats()

	where, args := repo.BuildWhereClause(dto.FilterGroup{})

	assert.Empty(t, where)
	assert.NotNil(t, args)
}

func TestRepository_RequiresFilter(t *testing.T) {
	repo := newSeats()
	ctx := context.Background()

	_, err := repo.Exist(ctx, dto.FilterGroup{})
	require.ErrorIs(t, err, errRequiredFilter)

	err = repo.Delete(ctx, dto.FilterGroup{})
	require.ErrorIs(t, err, errRequiredFilter)

	_, err = repo.GetForUpdateTx(ctx, nil, dto.FilterGroup{})
	require.ErrorIs(t, err, errRequiredFilter)
}
