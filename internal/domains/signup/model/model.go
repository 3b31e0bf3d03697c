package model

import (
	"strings"

	"stagehand/shared/model"
)

const (
	TableName  = "signups"
	EntityName = "signup"

	FieldID            = "id"
	FieldPerformanceID = "performance_id"
	FieldStudentID     = "student_id"
	FieldPartID        = "part_id"
	FieldStatus        = "status"

	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
	StatusWithdrawn = "withdrawn"
)

// Signup is a student's request to take part in a performance.
type Signup struct {
	ID               string  `db:"id"`
	PerformanceID    string  `db:"performance_id"`
	StudentID        string  `db:"student_id"`
	PartID           *string `db:"part_id"`
	Status           string  `db:"status"`
	Notes            string  `db:"notes"`
	StudentFirstName *string `column:"first_name" db:"student_first_name" table:"students"`
	StudentLastName  *string `column:"last_name"  db:"student_last_name"  table:"students"`
	PerformanceTitle *string `column:"title"      db:"performance_title"  table:"performances"`
	model.Metadata
}

func (Signup) GetJoinQuery() string {
	return "LEFT JOIN students ON students.id = signups.student_id " +
		"LEFT JOIN performances ON performances.id = signups.performance_id"
}

func (s Signup) StudentName() string {
	var first, last string

	if s.StudentFirstName != nil {
		first = *s.StudentFirstName
	}

	if s.StudentLastName != nil {
		last = *s.StudentLastName
	}

	return strings.TrimSpace(first + " " + last)
}
