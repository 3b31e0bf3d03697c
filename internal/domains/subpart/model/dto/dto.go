package dto

import (
	"time"

	"stagehand/internal/domains/subpart/model"
	"stagehand/shared"
	gDto "stagehand/shared/dto"
	gModel "stagehand/shared/model"

	"github.com/google/uuid"
)

type CreateSubpartRequest struct {
	PartID      string `json:"part_id"     validate:"required,uuid"`
	Name        string `json:"name"        validate:"required,max=255"`
	Description string `json:"description" validate:"omitempty,max=2000"`
	SortOrder   *int   `json:"sort_order"  validate:"omitempty,min=0"`
}

// ToModel places the subpart at order, the caller's choice when SortOrder is nil.
func (c *CreateSubpartRequest) ToModel(user string, order int, now time.Time) model.Subpart {
	if c.SortOrder != nil {
		order = *c.SortOrder
	}

	return model.Subpart{
		ID:          uuid.NewString(),
		PartID:      c.PartID,
		Name:        c.Name,
		Description: c.Description,
		SortOrder:   order,
		Metadata:    gModel.NewMetadata(user, now),
	}
}

type UpdateSubpartRequest struct {
	Name        string  `db:"name"        json:"name"        validate:"omitempty,max=255"`
	Description *string `db:"description" json:"description" validate:"omitempty,max=2000"`
	SortOrder   *int    `db:"sort_order"  json:"sort_order"  validate:"omitempty,min=0"`
}

func (u *UpdateSubpartRequest) IsEmpty() bool {
	return *u == UpdateSubpartRequest{}
}

type SubpartResponse struct {
	ID          string `json:"id"`
	PartID      string `json:"part_id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	SortOrder   int    `json:"sort_order"`
	gDto.Metadata
}

func (r *SubpartResponse) FromModel(mod model.Subpart) {
	r.ID = mod.ID
	r.PartID = mod.PartID
	r.Name = mod.Name
	r.Description = mod.Description
	r.SortOrder = mod.SortOrder
	r.Metadata.FromModel(mod.Metadata)
}

type GetSubpartsResponse struct {
	Subparts  []SubpartResponse `json:"subparts"`
	TotalPage int               `json:"total_page"`
	TotalData int               `json:"total_data"`
}

func (r *GetSubpartsResponse) FromModels(models []model.Subpart, totalData, limit int) {
	r.TotalData = totalData
	r.TotalPage = shared.CalculateTotalPage(totalData, limit)

	r.Subparts = make([]SubpartResponse, len(models))
	for i, mod := range models {
		r.Subparts[i].FromModel(mod)
	}
}
