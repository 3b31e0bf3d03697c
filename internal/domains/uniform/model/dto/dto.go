package dto

import (
	"mime/multipart"
	"time"

	"stagehand/internal/domains/uniform/model"
	"stagehand/shared"
	gDto "stagehand/shared/dto"
	gModel "stagehand/shared/model"
	"stagehand/shared/timezone"

	"github.com/google/uuid"
)

type CreateUniformRequest struct {
	Name          string                `json:"name"           validate:"required,max=100"`
	Category      string                `json:"category"       validate:"omitempty,max=50"`
	Size          string                `json:"size"           validate:"omitempty,max=20"`
	QuantityTotal int                   `json:"quantity_total" validate:"min=0"`
	Notes         string                `json:"notes"          validate:"omitempty,max=2000"`
	Image         *multipart.FileHeader `json:"image"          validate:"omitempty,mimetypes=image/png image/jpg image/jpeg,maxfilesize=1"`
	ImageFile     multipart.File        `json:"-"`
}

// ToModel starts every unit on the shelf.
func (c *CreateUniformRequest) ToModel(user, imageURL string, now time.Time) model.Uniform {
	return model.Uniform{
		ID:                uuid.NewString(),
		Name:              c.Name,
		Category:          c.Category,
		Size:              c.Size,
		QuantityTotal:     c.QuantityTotal,
		QuantityAvailable: c.QuantityTotal,
		ImageURL:          imageURL,
		Notes:             c.Notes,
		Metadata:          gModel.NewMetadata(user, now),
	}
}

type UpdateUniformRequest struct {
	Name          string                `db:"name"           json:"name"           validate:"omitempty,max=100"`
	Category      string                `db:"category"       json:"category"       validate:"omitempty,max=50"`
	Size          string                `db:"size"           json:"size"           validate:"omitempty,max=20"`
	QuantityTotal *int                  `db:"-"              json:"quantity_total" validate:"omitempty,min=0"`
	Notes         *string               `db:"notes"          json:"notes"          validate:"omitempty,max=2000"`
	Image         *multipart.FileHeader `db:"-"              json:"image"          validate:"omitempty,mimetypes=image/png image/jpg image/jpeg,maxfilesize=1"`
	ImageFile     multipart.File        `db:"-"              json:"-"`
}

func (u *UpdateUniformRequest) IsEmpty() bool {
	return u.Name == "" && u.Category == "" && u.Size == "" && u.QuantityTotal == nil && u.Notes == nil && u.Image == nil
}

type UniformResponse struct {
	ID                string `json:"id"`
	Name              string `json:"name"`
	Category          string `json:"category"`
	Size              string `json:"size"`
	QuantityTotal     int    `json:"quantity_total"`
	QuantityAvailable int    `json:"quantity_available"`
	CheckedOut        int    `json:"checked_out"`
	ImageURL          string `json:"image_url"`
	Notes             string `json:"notes"`
	gDto.Metadata
}

func (r *UniformResponse) FromModel(mod model.Uniform) {
	r.ID = mod.ID
	r.Name = mod.Name
	r.Category = mod.Category
	r.Size = mod.Size
	r.QuantityTotal = mod.QuantityTotal
	r.QuantityAvailable = mod.QuantityAvailable
	r.CheckedOut = mod.CheckedOut()
	r.ImageURL = mod.ImageURL
	r.Notes = mod.Notes
	r.Metadata.FromModel(mod.Metadata)
}

type GetUniformsResponse struct {
	Uniforms  []UniformResponse `json:"uniforms"`
	TotalPage int               `json:"total_page"`
	TotalData int               `json:"total_data"`
}

func (r *GetUniformsResponse) FromModels(models []model.Uniform, totalData, limit int) {
	r.TotalData = totalData
	r.TotalPage = shared.CalculateTotalPage(totalData, limit)

	r.Uniforms = make([]UniformResponse, len(models))
	for i, mod := range models {
		r.Uniforms[i].FromModel(mod)
	}
}

type CheckoutRequest struct {
	StudentID     string  `json:"student_id"     validate:"required,uuid"`
	PerformanceID *string `json:"performance_id" validate:"omitempty,uuid"`
	Quantity      int     `json:"quantity"       validate:"omitempty,min=1,max=20"`
	Notes         string  `json:"notes"          validate:"omitempty,max=2000"`
}

// Units defaults an omitted quantity to one.
func (c *CheckoutRequest) Units() int {
	if c.Quantity == 0 {
		return 1
	}

	return c.Quantity
}

func (c *CheckoutRequest) ToModel(user, uniformID string, now time.Time) model.Assignment {
	return model.Assignment{
		ID:            uuid.NewString(),
		UniformID:     uniformID,
		StudentID:     c.StudentID,
		PerformanceID: c.PerformanceID,
		Quantity:      c.Units(),
		CheckedOutAt:  now,
		Notes:         c.Notes,
		Metadata:      gModel.NewMetadata(user, now),
	}
}

type AssignmentResponse struct {
	ID                string  `json:"id"`
	UniformID         string  `json:"uniform_id"`
	StudentID         string  `json:"student_id"`
	PerformanceID     *string `json:"performance_id"`
	Quantity          int     `json:"quantity"`
	CheckedOutAt      string  `json:"checked_out_at"`
	CheckedOutDisplay string  `json:"checked_out_display"`
	ReturnedAt        *string `json:"returned_at"`
	Notes             string  `json:"notes"`
	gDto.Metadata
}

func (r *AssignmentResponse) FromModel(mod model.Assignment, conv *timezone.Converter) {
	r.ID = mod.ID
	r.UniformID = mod.UniformID
	r.StudentID = mod.StudentID
	r.PerformanceID = mod.PerformanceID
	r.Quantity = mod.Quantity
	r.CheckedOutAt = timezone.FormatInstant(mod.CheckedOutAt)
	r.CheckedOutDisplay = conv.FormatForDisplay(r.CheckedOutAt, "")
	r.Notes = mod.Notes
	r.Metadata.FromModel(mod.Metadata)

	if mod.ReturnedAt != nil {
		returned := timezone.FormatInstant(*mod.ReturnedAt)
		r.ReturnedAt = &returned
	}
}

type GetAssignmentsResponse struct {
	Assignments []AssignmentResponse `json:"assignments"`
	TotalPage   int                  `json:"total_page"`
	TotalData   int                  `json:"total_data"`
}

func (r *GetAssignmentsResponse) FromModels(models []model.Assignment, totalData, limit int, conv *timezone.Converter) {
	r.TotalData = totalData
	r.TotalPage = shared.CalculateTotalPage(totalData, limit)

	r.Assignments = make([]AssignmentResponse, len(models))
	for i, mod := range models {
		r.Assignments[i].FromModel(mod, conv)
	}
}
