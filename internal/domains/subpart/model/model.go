package model

import "stagehand/shared/model"

const (
	TableName  = "subparts"
	EntityName = "subpart"

	FieldID        = "id"
	FieldPartID    = "part_id"
	FieldName      = "name"
	FieldSortOrder = "sort_order"
)

type Subpart struct {
	ID          string `db:"id"`
	PartID      string `db:"part_id"`
	Name        string `db:"name"`
	Description string `db:"description"`
	SortOrder   int    `db:"sort_order"`
	model.Metadata
}
