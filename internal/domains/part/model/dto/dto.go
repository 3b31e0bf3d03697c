package dto

import (
	"time"

	"stagehand/internal/domains/part/model"
	"stagehand/shared"
	gDto "stagehand/shared/dto"
	gModel "stagehand/shared/model"

	"github.com/google/uuid"
)

type CreatePartRequest struct {
	PerformanceID string `json:"performance_id" validate:"required,uuid"`
	Name          string `json:"name"           validate:"required,max=255"`
	Description   string `json:"description"    validate:"omitempty,max=2000"`
	Capacity      int    `json:"capacity"       validate:"omitempty,min=0"`
	GridRows      int    `json:"grid_rows"      validate:"required,min=1,max=50"`
	GridCols      int    `json:"grid_cols"      validate:"required,min=1,max=50"`
}

func (c *CreatePartRequest) ToModel(user string, now time.Time) model.Part {
	return model.Part{
		ID:            uuid.NewString(),
		PerformanceID: c.PerformanceID,
		Name:          c.Name,
		Description:   c.Description,
		Capacity:      c.Capacity,
		GridRows:      c.GridRows,
		GridCols:      c.GridCols,
		Metadata:      gModel.NewMetadata(user, now),
	}
}

type UpdatePartRequest struct {
	Name        string  `db:"name"        json:"name"        validate:"omitempty,max=255"`
	Description *string `db:"description" json:"description" validate:"omitempty,max=2000"`
	Capacity    *int    `db:"capacity"    json:"capacity"    validate:"omitempty,min=0"`
	GridRows    *int    `db:"grid_rows"   json:"grid_rows"   validate:"omitempty,min=1,max=50"`
	GridCols    *int    `db:"grid_cols"   json:"grid_cols"   validate:"omitempty,min=1,max=50"`
}

func (u *UpdatePartRequest) IsEmpty() bool {
	return *u == UpdatePartRequest{}
}

// Grid returns the grid size after applying the update to current.
func (u *UpdatePartRequest) Grid(current model.Part) (rows, cols int) {
	rows, cols = current.GridRows, current.GridCols

	if u.GridRows != nil {
		rows = *u.GridRows
	}

	if u.GridCols != nil {
		cols = *u.GridCols
	}

	return rows, cols
}

type PartResponse struct {
	ID            string `json:"id"`
	PerformanceID string `json:"performance_id"`
	Name          string `json:"name"`
	Description   string `json:"description"`
	Capacity      int    `json:"capacity"`
	GridRows      int    `json:"grid_rows"`
	GridCols      int    `json:"grid_cols"`
	gDto.Metadata
}

func (r *PartResponse) FromModel(mod model.Part) {
	r.ID = mod.ID
	r.PerformanceID = mod.PerformanceID
	r.Name = mod.Name
	r.Description = mod.Description
	r.Capacity = mod.Capacity
	r.GridRows = mod.GridRows
	r.GridCols = mod.GridCols
	r.Metadata.FromModel(mod.Metadata)
}

type GetPartsResponse struct {
	Parts     []PartResponse `json:"parts"`
	TotalPage int            `json:"total_page"`
	TotalData int            `json:"total_data"`
}

func (r *GetPartsResponse) FromModels(models []model.Part, totalData, limit int) {
	r.TotalData = totalData
	r.TotalPage = shared.CalculateTotalPage(totalData, limit)

	r.Parts = make([]PartResponse, len(models))
	for i, mod := range models {
		r.Parts[i].FromModel(mod)
	}
}
