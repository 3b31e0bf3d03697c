package dto

import (
	"time"

	"stagehand/internal/domains/signup/model"
	"stagehand/shared"
	gDto "stagehand/shared/dto"
	gModel "stagehand/shared/model"

	"github.com/google/uuid"
)

type CreateSignupRequest struct {
	PerformanceID string  `json:"performance_id" validate:"required,uuid"`
	StudentID     string  `json:"student_id"     validate:"required,uuid"`
	PartID        *string `json:"part_id"        validate:"omitempty,uuid"`
	Notes         string  `json:"notes"          validate:"omitempty,max=2000"`
}

// ToModel opens every signup as pending.
func (c *CreateSignupRequest) ToModel(user string, now time.Time) model.Signup {
	return model.Signup{
		ID:            uuid.NewString(),
		PerformanceID: c.PerformanceID,
		StudentID:     c.StudentID,
		PartID:        c.PartID,
		Status:        model.StatusPending,
		Notes:         c.Notes,
		Metadata:      gModel.NewMetadata(user, now),
	}
}

type UpdateSignupRequest struct {
	Status string  `db:"status"  json:"status"  validate:"omitempty,oneof=pending confirmed withdrawn"`
	PartID *string `db:"part_id" json:"part_id" validate:"omitempty,uuid"`
	Notes  *string `db:"notes"   json:"notes"   validate:"omitempty,max=2000"`
}

func (u *UpdateSignupRequest) IsEmpty() bool {
	return u.Status == "" && u.PartID == nil && u.Notes == nil
}

type SignupResponse struct {
	ID               string  `json:"id"`
	PerformanceID    string  `json:"performance_id"`
	PerformanceTitle string  `json:"performance_title"`
	StudentID        string  `json:"student_id"`
	StudentName      string  `json:"student_name"`
	PartID           *string `json:"part_id"`
	Status           string  `json:"status"`
	Notes            string  `json:"notes"`
	gDto.Metadata
}

func (r *SignupResponse) FromModel(mod model.Signup) {
	r.ID = mod.ID
	r.PerformanceID = mod.PerformanceID
	r.StudentID = mod.StudentID
	r.StudentName = mod.StudentName()
	r.PartID = mod.PartID
	r.Status = mod.Status
	r.Notes = mod.Notes
	r.Metadata.FromModel(mod.Metadata)

	if mod.PerformanceTitle != nil {
		r.PerformanceTitle = *mod.PerformanceTitle
	}
}

type GetSignupsResponse struct {
	Signups   []SignupResponse `json:"signups"`
	TotalPage int              `json:"total_page"`
	TotalData int              `json:"total_data"`
}

func (r *GetSignupsResponse) FromModels(models []model.Signup, totalData, limit int) {
	r.TotalData = totalData
	r.TotalPage = shared.CalculateTotalPage(totalData, limit)

	r.Signups = make([]SignupResponse, len(models))
	for i, mod := range models {
		r.Signups[i].FromModel(mod)
	}
}
