package model

import (
	"time"

	"stagehand/shared/model"
)

const (
	TableName  = "uniforms"
	EntityName = "uniform"

	FieldID                = "id"
	FieldName              = "name"
	FieldCategory          = "category"
	FieldSize              = "size"
	FieldQuantityTotal     = "quantity_total"
	FieldQuantityAvailable = "quantity_available"
	FieldImageURL          = "image_url"
)

type Uniform struct {
	ID                string `db:"id"`
	Name              string `db:"name"`
	Category          string `db:"category"`
	Size              string `db:"size"`
	QuantityTotal     int    `db:"quantity_total"`
	QuantityAvailable int    `db:"quantity_available"`
	ImageURL          string `db:"image_url"`
	Notes             string `db:"notes"`
	model.Metadata
}

// CheckedOut is the number of units currently with students.
func (u Uniform) CheckedOut() int {
	return u.QuantityTotal - u.QuantityAvailable
}

const (
	AssignmentTableName  = "uniform_assignments"
	AssignmentEntityName = "uniform_assignment"

	FieldAssignmentUniformID     = "uniform_id"
	FieldAssignmentStudentID     = "student_id"
	FieldAssignmentPerformanceID = "performance_id"
	FieldAssignmentCheckedOutAt  = "checked_out_at"
	FieldAssignmentReturnedAt    = "returned_at"
)

// Assignment records units of a uniform handed to a student. ReturnedAt stays nil while out.
type Assignment struct {
	ID            string     `db:"id"`
	UniformID     string     `db:"uniform_id"`
	StudentID     string     `db:"student_id"`
	PerformanceID *string    `db:"performance_id"`
	Quantity      int        `db:"quantity"`
	CheckedOutAt  time.Time  `db:"checked_out_at"`
	ReturnedAt    *time.Time `db:"returned_at"`
	Notes         string     `db:"notes"`
	model.Metadata
}

func (a Assignment) Returned() bool {
	return a.ReturnedAt != nil
}
