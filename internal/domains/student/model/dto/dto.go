package dto

import (
	"mime/multipart"
	"time"

	"stagehand/internal/domains/student/model"
	"stagehand/shared"
	gDto "stagehand/shared/dto"
	gModel "stagehand/shared/model"

	"github.com/google/uuid"
)

type CreateStudentRequest struct {
	FirstName     string `json:"first_name"     validate:"required,max=100"`
	LastName      string `json:"last_name"      validate:"omitempty,max=100"`
	Email         string `json:"email"          validate:"omitempty,email"`
	Grade         int    `json:"grade"          validate:"omitempty,min=0,max=12"`
	GuardianName  string `json:"guardian_name"  validate:"omitempty,max=200"`
	GuardianEmail string `json:"guardian_email" validate:"omitempty,email"`
	Phone         string `json:"phone"          validate:"omitempty,max=30"`
	Active        *bool  `json:"active"`
}

func (c *CreateStudentRequest) ToModel(user string, now time.Time) model.Student {
	active := true
	if c.Active != nil {
		active = *c.Active
	}

	return model.Student{
		ID:            uuid.NewString(),
		FirstName:     c.FirstName,
		LastName:      c.LastName,
		Email:         c.Email,
		Grade:         c.Grade,
		GuardianName:  c.GuardianName,
		GuardianEmail: c.GuardianEmail,
		Phone:         c.Phone,
		Active:        active,
		Metadata:      gModel.NewMetadata(user, now),
	}
}

type UpdateStudentRequest struct {
	FirstName     string  `db:"first_name"     json:"first_name"     validate:"omitempty,max=100"`
	LastName      *string `db:"last_name"      json:"last_name"      validate:"omitempty,max=100"`
	Email         *string `db:"email"          json:"email"          validate:"omitempty,email"`
	Grade         *int    `db:"grade"          json:"grade"          validate:"omitempty,min=0,max=12"`
	GuardianName  *string `db:"guardian_name"  json:"guardian_name"  validate:"omitempty,max=200"`
	GuardianEmail *string `db:"guardian_email" json:"guardian_email" validate:"omitempty,email"`
	Phone         *string `db:"phone"          json:"phone"          validate:"omitempty,max=30"`
	Active        *bool   `db:"active"         json:"active"`
}

func (u *UpdateStudentRequest) IsEmpty() bool {
	return *u == UpdateStudentRequest{}
}

type UploadPhotoRequest struct {
	Photo     *multipart.FileHeader `json:"photo" validate:"required,mimetypes=image/png image/jpg image/jpeg,maxfilesize=2"`
	PhotoFile multipart.File        `json:"-"`
}

type PhotoResponse struct {
	PhotoURL string `json:"photo_url"`
}

type StudentResponse struct {
	ID            string `json:"id"`
	FirstName     string `json:"first_name"`
	LastName      string `json:"last_name"`
	FullName      string `json:"full_name"`
	Email         string `json:"email"`
	Grade         int    `json:"grade"`
	GuardianName  string `json:"guardian_name"`
	GuardianEmail string `json:"guardian_email"`
	Phone         string `json:"phone"`
	PhotoURL      string `json:"photo_url"`
	Active        bool   `json:"active"`
	gDto.Metadata
}

func (r *StudentResponse) FromModel(mod model.Student) {
	r.ID = mod.ID
	r.FirstName = mod.FirstName
	r.LastName = mod.LastName
	r.FullName = mod.FullName()
	r.Email = mod.Email
	r.Grade = mod.Grade
	r.GuardianName = mod.GuardianName
	r.GuardianEmail = mod.GuardianEmail
	r.Phone = mod.Phone
	r.PhotoURL = mod.PhotoURL
	r.Active = mod.Active
	r.Metadata.FromModel(mod.Metadata)
}

type GetStudentsResponse struct {
	Students  []StudentResponse `json:"students"`
	TotalPage int               `json:"total_page"`
	TotalData int               `json:"total_data"`
}

func (r *GetStudentsResponse) FromModels(models []model.Student, totalData, limit int) {
	r.TotalData = totalData
	r.TotalPage = shared.CalculateTotalPage(totalData, limit)

	r.Students = make([]StudentResponse, len(models))
	for i, mod := range models {
		r.Students[i].FromModel(mod)
	}
}

// NameSearch matches q against either name column.
func NameSearch(q string) gDto.FilterGroup {
	return gDto.FilterGroup{
		Operator: gDto.FilterGroupOperatorOr,
		Filters: []any{
			gDto.Filter{
				ArgName:  "search_first_name",
				Field:    model.FieldFirstName,
				Operator: gDto.FilterOperatorLike,
				Value:    q,
				Table:    model.TableName,
			},
			gDto.Filter{
				ArgName:  "search_last_name",
				Field:    model.FieldLastName,
				Operator: gDto.FilterOperatorLike,
				Value:    q,
				Table:    model.TableName,
			},
		},
	}
}
