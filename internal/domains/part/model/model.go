package model

import "stagehand/shared/model"

const (
	TableName  = "parts"
	EntityName = "part"

	FieldID            = "id"
	FieldPerformanceID = "performance_id"
	FieldName          = "name"
	FieldCapacity      = "capacity"
	FieldGridRows      = "grid_rows"
	FieldGridCols      = "grid_cols"
)

// Part is a cast role within a performance. GridRows x GridCols is the stage grid its students are
// placed on.
type Part struct {
	ID            string `db:"id"`
	PerformanceID string `db:"performance_id"`
	Name          string `db:"name"`
	Description   string `db:"description"`
	Capacity      int    `db:"capacity"`
	GridRows      int    `db:"grid_rows"`
	GridCols      int    `db:"grid_cols"`
	model.Metadata
}

// Contains reports whether the zero-based cell lies on the grid.
func (p Part) Contains(row, col int) bool {
	return row >= 0 && col >= 0 && row < p.GridRows && col < p.GridCols
}
