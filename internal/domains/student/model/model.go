package model

import "stagehand/shared/model"

const (
	TableName  = "students"
	EntityName = "student"

	FieldID        = "id"
	FieldFirstName = "first_name"
	FieldLastName  = "last_name"
	FieldEmail     = "email"
	FieldGrade     = "grade"
	FieldPhotoURL  = "photo_url"
	FieldActive    = "active"
)

type Student struct {
	ID            string `db:"id"`
	FirstName     string `db:"first_name"`
	LastName      string `db:"last_name"`
	Email         string `db:"email"`
	Grade         int    `db:"grade"`
	GuardianName  string `db:"guardian_name"`
	GuardianEmail string `db:"guardian_email"`
	Phone         string `db:"phone"`
	PhotoURL      string `db:"photo_url"`
	Active        bool   `db:"active"`
	model.Metadata
}

func (s Student) FullName() string {
	if s.LastName == "" {
		return s.FirstName
	}

	return s.FirstName + " " + s.LastName
}
