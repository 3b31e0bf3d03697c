package model

import (
	"strings"

	"stagehand/shared/model"
)

const (
	TableName  = "positions"
	EntityName = "position"

	FieldID        = "id"
	FieldPartID    = "part_id"
	FieldSubpartID = "subpart_id"
	FieldStudentID = "student_id"
	FieldGridRow   = "grid_row"
	FieldGridCol   = "grid_col"
)

// Position places one student on one cell of a part's stage grid. Rows and columns are zero-based.
type Position struct {
	ID               string  `db:"id"`
	PartID           string  `db:"part_id"`
	SubpartID        *string `db:"subpart_id"`
	StudentID        string  `db:"student_id"`
	GridRow          int     `db:"grid_row"`
	GridCol          int     `db:"grid_col"`
	StudentFirstName *string `column:"first_name" db:"student_first_name" table:"students"`
	StudentLastName  *string `column:"last_name"  db:"student_last_name"  table:"students"`
	model.Metadata
}

func (Position) GetJoinQuery() string {
	return "LEFT JOIN students ON students.id = positions.student_id"
}

func (p Position) StudentName() string {
	var first, last string

	if p.StudentFirstName != nil {
		first = *p.StudentFirstName
	}

	if p.StudentLastName != nil {
		last = *p.StudentLastName
	}

	return strings.TrimSpace(first + " " + last)
}
