package dto

import (
	"errors"
	"time"

	"stagehand/internal/domains/position/model"
	"stagehand/shared"
	gDto "stagehand/shared/dto"
	gModel "stagehand/shared/model"

	"github.com/google/uuid"
)

var ErrNoCell = errors.New("either row and col or x, y and cell_size are required")

// Cell locates a grid cell directly by row/col, or by a pixel point on the rendered grid.
type Cell struct {
	Row      *int `json:"row"       validate:"omitempty,min=0"`
	Col      *int `json:"col"       validate:"omitempty,min=0"`
	X        *int `json:"x"         validate:"omitempty,min=0"`
	Y        *int `json:"y"         validate:"omitempty,min=0"`
	CellSize int  `json:"cell_size" validate:"omitempty,min=1"`
}

// Resolve returns the zero-based cell. Row/col win over pixels when both are sent.
func (c Cell) Resolve() (row, col int, err error) {
	switch {
	case c.Row != nil && c.Col != nil:
		return *c.Row, *c.Col, nil
	case c.X != nil && c.Y != nil && c.CellSize > 0:
		return *c.Y / c.CellSize, *c.X / c.CellSize, nil
	default:
		return 0, 0, ErrNoCell
	}
}

type AssignPositionRequest struct {
	PartID    string  `json:"part_id"    validate:"required,uuid"`
	SubpartID *string `json:"subpart_id" validate:"omitempty,uuid"`
	StudentID string  `json:"student_id" validate:"required,uuid"`
	Cell
}

func (a *AssignPositionRequest) ToModel(user string, row, col int, now time.Time) model.Position {
	return model.Position{
		ID:        uuid.NewString(),
		PartID:    a.PartID,
		SubpartID: a.SubpartID,
		StudentID: a.StudentID,
		GridRow:   row,
		GridCol:   col,
		Metadata:  gModel.NewMetadata(user, now),
	}
}

type MovePositionRequest struct {
	SubpartID *string `json:"subpart_id" validate:"omitempty,uuid"`
	Cell
}

type PositionResponse struct {
	ID          string  `json:"id"`
	PartID      string  `json:"part_id"`
	SubpartID   *string `json:"subpart_id"`
	StudentID   string  `json:"student_id"`
	StudentName string  `json:"student_name"`
	Row         int     `json:"row"`
	Col         int     `json:"col"`
	gDto.Metadata
}

func (r *PositionResponse) FromModel(mod model.Position) {
	r.ID = mod.ID
	r.PartID = mod.PartID
	r.SubpartID = mod.SubpartID
	r.StudentID = mod.StudentID
	r.StudentName = mod.StudentName()
	r.Row = mod.GridRow
	r.Col = mod.GridCol
	r.Metadata.FromModel(mod.Metadata)
}

type GetPositionsResponse struct {
	Positions []PositionResponse `json:"positions"`
	TotalPage int                `json:"total_page"`
	TotalData int                `json:"total_data"`
}

func (r *GetPositionsResponse) FromModels(models []model.Position, totalData, limit int) {
	r.TotalData = totalData
	r.TotalPage = shared.CalculateTotalPage(totalData, limit)

	r.Positions = make([]PositionResponse, len(models))
	for i, mod := range models {
		r.Positions[i].FromModel(mod)
	}
}
